package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/techflow/techflow-backend/internal/auth"
)

// SignUp handles POST /v1/auth/signup
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	session, err := h.authSvc.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, sessionResponse(session, true))
}

// SignIn handles POST /v1/auth/login
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	session, err := h.authSvc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, sessionResponse(session, true))
}

// SignOut handles POST /v1/auth/logout
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if err := h.authSvc.SignOut(r.Context(), token); err != nil {
		h.writeError(w, http.StatusInternalServerError, "SIGNOUT_ERROR", "failed to sign out")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSession handles GET /v1/auth/session
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	if session == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	h.writeJSON(w, http.StatusOK, sessionResponse(session, false))
}

func (h *Handler) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		h.writeError(w, http.StatusConflict, "EMAIL_TAKEN", "email already registered")
	case errors.Is(err, auth.ErrInvalidCredentials):
		h.writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
	default:
		h.writeError(w, http.StatusInternalServerError, "AUTH_ERROR", "unexpected error")
	}
}

func sessionResponse(session *auth.Session, includeToken bool) SessionResponse {
	resp := SessionResponse{
		UserID:    session.UserID,
		Email:     session.Email,
		IsAdmin:   session.IsAdmin,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
	}
	if includeToken {
		resp.Token = session.Token
	}
	return resp
}
