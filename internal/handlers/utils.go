package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/profilehub/apiserver/internal/services"
	"github.com/profilehub/apiserver/internal/store"
)

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeDomainError maps service-layer errors to stable HTTP statuses.
// Unrecognized errors fall back to a 500 with the handler-supplied
// message; upstream failures become a 502 without transport detail.
func writeDomainError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		writeError(w, http.StatusConflict, services.ErrEmailTaken.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, services.ErrInvalidCredentials.Error())
	case errors.Is(err, services.ErrInvalidResetCode):
		writeError(w, http.StatusUnauthorized, services.ErrInvalidResetCode.Error())
	case errors.Is(err, services.ErrAccountInactive):
		writeError(w, http.StatusForbidden, services.ErrAccountInactive.Error())
	case errors.Is(err, services.ErrNotOwner):
		writeError(w, http.StatusForbidden, services.ErrNotOwner.Error())
	case errors.Is(err, services.ErrInvalidRoles):
		writeError(w, http.StatusNotAcceptable, services.ErrInvalidRoles.Error())
	case errors.Is(err, services.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, services.ErrUnsupportedFormat.Error())
	case errors.Is(err, services.ErrFileTooLarge):
		writeError(w, http.StatusBadRequest, services.ErrFileTooLarge.Error())
	case errors.Is(err, services.ErrEmptyFile):
		writeError(w, http.StatusBadRequest, services.ErrEmptyFile.Error())
	case errors.Is(err, services.ErrUpstream):
		writeError(w, http.StatusBadGateway, services.ErrUpstream.Error())
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
