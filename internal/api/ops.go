package api

import (
	"net/http"
	"time"
)

// Healthz is the liveness probe
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Readyz reports readiness based on the database and cache
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	if !h.db.IsHealthy(r.Context()) {
		h.writeError(w, http.StatusServiceUnavailable, "NOT_READY", "database unavailable")
		return
	}
	if err := h.cache.Ping(r.Context()); err != nil {
		h.writeError(w, http.StatusServiceUnavailable, "NOT_READY", "cache unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// GetHealth handles GET /api/health with per-service detail
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	services := map[string]string{
		"database": "up",
		"cache":    "up",
	}
	status := "healthy"

	if !h.db.IsHealthy(r.Context()) {
		services["database"] = "down"
		status = "degraded"
	}
	if err := h.cache.Ping(r.Context()); err != nil {
		services["cache"] = "down"
		status = "degraded"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	h.writeJSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
		Services:  services,
	})
}

// Sitemap handles GET /sitemap.xml
func (h *Handler) Sitemap(w http.ResponseWriter, r *http.Request) {
	body, err := h.sitemapSvc.Render(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "SITEMAP_ERROR", "failed to render sitemap")
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// GetSite handles GET /v1/site and returns the active site profile
func (h *Handler) GetSite(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.profile)
}
