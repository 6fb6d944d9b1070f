package api

import "github.com/techflow/techflow-backend/internal/db/entities"

// ErrorResponse is the standard error envelope
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// PostListResponse is one page of posts
type PostListResponse struct {
	Posts   []entities.Post `json:"posts"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
	HasMore bool            `json:"has_more"`
}

// CredentialsRequest is the sign-up/sign-in body
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse describes an active session
type SessionResponse struct {
	Token     string `json:"token,omitempty"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
	ExpiresAt string `json:"expires_at"`
}

// ContactErrorResponse keeps the legacy contact-form error shape
type ContactErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HealthResponse is the detailed health status document
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}
