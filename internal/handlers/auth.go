package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/profilehub/apiserver/internal/auth"
	"github.com/profilehub/apiserver/internal/services"
	"github.com/profilehub/apiserver/types"
)

// AuthHandler provides the account and session endpoints.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// AuthRouter registers auth routes on the given router. Role requirements
// are declared here, per route, and enforced by middleware before the
// handler runs.
func AuthRouter(r chi.Router, authService *services.AuthService, requireAuth func(http.Handler) http.Handler) {
	handler := NewAuthHandler(authService)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Post("/reset-password", handler.ResetPassword)
	r.Post("/reset-password-confirm", handler.ResetPasswordConfirm)
	r.With(requireAuth).Delete("/account", handler.DeactivateAccount)
	r.With(requireAuth, RequireRoles(auth.RoleAdmin)).Post("/roles/grant", handler.GrantRoles)
	r.With(requireAuth, RequireRoles(auth.RoleAdmin)).Post("/roles/revoke", handler.RevokeRoles)
}

// Register creates a new user account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	user, err := h.authService.Register(r.Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, UserResponse{User: user})
}

// Login verifies credentials and returns a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	token, user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err, "failed to authenticate")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

// ResetPassword mails a recovery code to the account's address.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "missing email")
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeDomainError(w, err, "failed to request password reset")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "reset password mail has been sent"})
}

// ResetPasswordConfirm verifies the recovery code and sets the new
// password. The response never echoes the password.
func (h *AuthHandler) ResetPasswordConfirm(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Token = strings.TrimSpace(req.Token)
	if req.Email == "" || req.Token == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	if err := h.authService.ConfirmPasswordReset(r.Context(), req.Email, req.Token, req.Password); err != nil {
		writeDomainError(w, err, "failed to reset password")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "password successfully updated"})
}

// DeactivateAccount flips the authenticated account inactive after a
// password check. There is no undo.
func (h *AuthHandler) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req DeactivateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing password")
		return
	}

	user, err := h.authService.DeactivateAccount(r.Context(), userID, req.Password)
	if err != nil {
		writeDomainError(w, err, "failed to deactivate account")
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{User: user})
}

// GrantRoles adds roles to the target user's set.
func (h *AuthHandler) GrantRoles(w http.ResponseWriter, r *http.Request) {
	h.mutateRoles(w, r, h.authService.GrantRoles)
}

// RevokeRoles removes roles from the target user's set.
func (h *AuthHandler) RevokeRoles(w http.ResponseWriter, r *http.Request) {
	h.mutateRoles(w, r, h.authService.RevokeRoles)
}

func (h *AuthHandler) mutateRoles(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, userID int, roles []string) (types.User, error)) {
	var req RolesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.UserID < 1 {
		writeError(w, http.StatusBadRequest, "missing user id")
		return
	}

	user, err := apply(r.Context(), req.UserID, req.Roles)
	if err != nil {
		writeDomainError(w, err, "failed to update roles")
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{User: user})
}

type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordConfirmRequest struct {
	Email    string `json:"email"`
	Token    string `json:"token"`
	Password string `json:"password"`
}

type DeactivateAccountRequest struct {
	Password string `json:"password"`
}

type RolesRequest struct {
	UserID int      `json:"user_id"`
	Roles  []string `json:"roles"`
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

type UserResponse struct {
	User types.User `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
