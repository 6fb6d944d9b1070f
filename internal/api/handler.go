package api

import (
	"encoding/json"
	"net/http"

	"github.com/techflow/techflow-backend/internal/auth"
	"github.com/techflow/techflow-backend/internal/config"
	"github.com/techflow/techflow-backend/internal/contact"
	"github.com/techflow/techflow-backend/internal/db/interfaces"
	"github.com/techflow/techflow-backend/internal/posts"
	"github.com/techflow/techflow-backend/internal/site"
	"github.com/techflow/techflow-backend/internal/sitemap"
	"github.com/techflow/techflow-backend/internal/store"
	"go.uber.org/zap"
)

// Version reported by the health document
const Version = "1.0.0"

type Handler struct {
	postsSvc   *posts.Service
	authSvc    *auth.Service
	contactSvc *contact.Service
	sitemapSvc *sitemap.Service
	profile    *site.Profile
	db         interfaces.Database
	cache      *store.Cache
	config     *config.Config
	logger     *zap.SugaredLogger
}

func NewHandler(
	postsSvc *posts.Service,
	authSvc *auth.Service,
	contactSvc *contact.Service,
	sitemapSvc *sitemap.Service,
	profile *site.Profile,
	db interfaces.Database,
	cache *store.Cache,
	cfg *config.Config,
	logger *zap.SugaredLogger,
) *Handler {
	return &Handler{
		postsSvc:   postsSvc,
		authSvc:    authSvc,
		contactSvc: contactSvc,
		sitemapSvc: sitemapSvc,
		profile:    profile,
		db:         db,
		cache:      cache,
		config:     cfg,
		logger:     logger,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeErrorDetails(w, status, code, message, nil)
}

func (h *Handler) writeErrorDetails(w http.ResponseWriter, status int, code, message string, details map[string]string) {
	if h.logger != nil {
		h.logger.Errorw("API error", "code", code, "message", message, "status", status)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// decodeJSON reads a JSON request body into dest
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return false
	}
	return true
}
