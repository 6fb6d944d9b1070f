package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/techflow/techflow-backend/internal/posts"
)

func (h *Handler) viewer(r *http.Request) posts.Viewer {
	session := SessionFromContext(r.Context())
	if session == nil {
		return posts.Viewer{}
	}
	return posts.Viewer{UserID: session.UserID, IsAdmin: session.IsAdmin}
}

// ListPosts handles GET /v1/posts
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filters := posts.Filters{
		Category: query.Get("category"),
		Search:   query.Get("search"),
		AuthorID: query.Get("author_id"),
	}
	if page, err := strconv.Atoi(query.Get("page")); err == nil {
		filters.Page = page
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil {
		filters.Limit = limit
	}
	if raw := query.Get("published"); raw != "" {
		published, err := strconv.ParseBool(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "INVALID_QUERY", "published must be a boolean")
			return
		}
		filters.Published = &published
	}

	result, err := h.postsSvc.List(r.Context(), h.viewer(r), filters)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "POSTS_LIST_ERROR", "failed to list posts")
		return
	}

	h.writeJSON(w, http.StatusOK, PostListResponse{
		Posts:   result.Posts,
		Total:   result.Total,
		Page:    result.Page,
		Limit:   result.Limit,
		HasMore: result.HasMore,
	})
}

// GetPost handles GET /v1/posts/{id}
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	post, err := h.postsSvc.Get(r.Context(), h.viewer(r), id)
	if err != nil {
		if errors.Is(err, posts.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "POST_NOT_FOUND", "post not found")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "POST_GET_ERROR", "failed to load post")
		return
	}

	h.writeJSON(w, http.StatusOK, post)
}

// GetPostStats handles GET /v1/posts/stats
func (h *Handler) GetPostStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.postsSvc.CategoryStats(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "POST_STATS_ERROR", "failed to compute stats")
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// CreatePost handles POST /v1/posts (admin)
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var input posts.CreateInput
	if !h.decodeJSON(w, r, &input) {
		return
	}

	post, err := h.postsSvc.Create(r.Context(), h.viewer(r), input)
	if err != nil {
		h.writePostError(w, err, "POST_CREATE_ERROR")
		return
	}

	h.invalidateSitemap(r)
	h.writeJSON(w, http.StatusCreated, post)
}

// UpdatePost handles PATCH /v1/posts/{id} (admin)
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input posts.UpdateInput
	if !h.decodeJSON(w, r, &input) {
		return
	}

	post, err := h.postsSvc.Update(r.Context(), h.viewer(r), id, input)
	if err != nil {
		h.writePostError(w, err, "POST_UPDATE_ERROR")
		return
	}

	h.invalidateSitemap(r)
	h.writeJSON(w, http.StatusOK, post)
}

// DeletePost handles DELETE /v1/posts/{id} (admin)
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.postsSvc.Delete(r.Context(), h.viewer(r), id); err != nil {
		h.writePostError(w, err, "POST_DELETE_ERROR")
		return
	}

	h.invalidateSitemap(r)
	w.WriteHeader(http.StatusNoContent)
}

// invalidateSitemap drops the cached sitemap after a post mutation so
// crawlers never see a stale document for the full 24h window.
func (h *Handler) invalidateSitemap(r *http.Request) {
	if err := h.sitemapSvc.Invalidate(r.Context()); err != nil {
		h.logger.Warnw("Sitemap invalidation failed", "error", err)
	}
}

func (h *Handler) writePostError(w http.ResponseWriter, err error, fallbackCode string) {
	var verr *posts.ValidationError
	switch {
	case errors.Is(err, posts.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "POST_NOT_FOUND", "post not found")
	case errors.Is(err, posts.ErrForbidden):
		h.writeError(w, http.StatusForbidden, "FORBIDDEN", "admin privileges required")
	case errors.As(err, &verr):
		h.writeErrorDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid post input", verr.Fields)
	default:
		h.writeError(w, http.StatusInternalServerError, fallbackCode, "unexpected error")
	}
}
