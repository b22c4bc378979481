package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/profilehub/apiserver/internal/services"
)

const formFieldFile = "file"

// multipartMemory bounds the in-memory portion of the parsed form; the
// overall request body is capped separately at the picture size limit.
const multipartMemory = 4 << 20

// ProfilePictureHandler provides upload and retrieval endpoints for
// profile pictures.
type ProfilePictureHandler struct {
	pictureService *services.ProfilePictureService
}

// NewProfilePictureHandler constructs a handler with the provided service.
func NewProfilePictureHandler(pictureService *services.ProfilePictureService) *ProfilePictureHandler {
	return &ProfilePictureHandler{pictureService: pictureService}
}

// ProfilePictureRouter registers picture routes on the given router.
// The public route is deliberately unauthenticated; the generated object
// name is its only protection.
func ProfilePictureRouter(r chi.Router, pictureService *services.ProfilePictureService, requireAuth func(http.Handler) http.Handler) {
	handler := NewProfilePictureHandler(pictureService)

	r.With(requireAuth).Post("/upload", handler.Upload)
	r.With(requireAuth).Get("/current", handler.Current)
	r.With(requireAuth).Get("/secure/{fileName}", handler.FetchSecure)
	r.Get("/public/{fileName}", handler.FetchPublic)
}

// Current returns the metadata of the caller's most recent picture.
func (h *ProfilePictureHandler) Current(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	picture, err := h.pictureService.Current(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err, "failed to fetch picture")
		return
	}

	writeJSON(w, http.StatusOK, picture)
}

// Upload stores a new profile picture for the authenticated user.
func (h *ProfilePictureHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	// Cap the request body before parsing; a little headroom covers the
	// multipart framing around a maximally sized picture.
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxPictureBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile(formFieldFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, services.MaxPictureBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	contentType := strings.TrimSpace(header.Header.Get("Content-Type"))

	picture, err := h.pictureService.Upload(r.Context(), userID, data, contentType)
	if err != nil {
		writeDomainError(w, err, "failed to upload file")
		return
	}

	writeJSON(w, http.StatusCreated, UploadResponse{
		Message: "file uploaded successfully",
		File: UploadedFile{
			FileName:    picture.FileName,
			ContentType: picture.ContentType,
			Size:        picture.Size,
		},
	})
}

// FetchSecure serves a picture to its owner.
func (h *ProfilePictureHandler) FetchSecure(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	fileName := chi.URLParam(r, "fileName")
	data, contentType, err := h.pictureService.FetchSecure(r.Context(), userID, fileName)
	if err != nil {
		writeDomainError(w, err, "failed to fetch file")
		return
	}

	serveObject(w, data, contentType)
}

// FetchPublic serves a picture to any caller presenting its generated name.
func (h *ProfilePictureHandler) FetchPublic(w http.ResponseWriter, r *http.Request) {
	fileName := chi.URLParam(r, "fileName")
	data, contentType, err := h.pictureService.FetchPublic(r.Context(), fileName)
	if err != nil {
		writeDomainError(w, err, "failed to fetch file")
		return
	}

	serveObject(w, data, contentType)
}

func serveObject(w http.ResponseWriter, data []byte, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// UploadResponse is the upload confirmation payload.
type UploadResponse struct {
	Message string       `json:"message"`
	File    UploadedFile `json:"file"`
}

// UploadedFile describes the stored object. The client-chosen filename is
// never echoed back.
type UploadedFile struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}
