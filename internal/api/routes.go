package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes builds the router with the full middleware chain
func (h *Handler) Routes(m *Middleware, corsOrigins []string, rateLimitRPM int) *chi.Mux {
	r := chi.NewRouter()

	r.Use(m.RequestID)
	r.Use(m.RequestLogger)
	r.Use(m.Recoverer)
	r.Use(m.SecurityHeaders)
	r.Use(m.Compress)
	r.Use(m.Timeout(15 * time.Second))
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(m.CORS(corsOrigins))
	r.Use(m.RateLimit(rateLimitRPM))
	r.Use(m.Session)

	// Probes and crawler surface
	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	r.Get("/api/health", h.GetHealth)
	r.Get("/sitemap.xml", h.Sitemap)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/site", h.GetSite)

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.ListPosts)
			r.Get("/stats", h.GetPostStats)
			r.Get("/{id}", h.GetPost)

			r.Group(func(r chi.Router) {
				r.Use(m.RequireAdmin)
				r.Post("/", h.CreatePost)
				r.Patch("/{id}", h.UpdatePost)
				r.Delete("/{id}", h.DeletePost)
			})
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.SignUp)
			r.Post("/login", h.SignIn)
			r.Post("/logout", h.SignOut)
			r.Get("/session", h.GetSession)
		})

		r.Post("/contact", h.SubmitContact)
	})

	return r
}

// MountMetrics attaches the Prometheus scrape endpoint
func (h *Handler) MountMetrics(r *chi.Mux, metricsHandler http.Handler) {
	r.Method(http.MethodGet, "/metrics", metricsHandler)
}
