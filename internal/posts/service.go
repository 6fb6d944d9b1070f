package posts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/techflow/techflow-backend/internal/db/entities"
	"github.com/techflow/techflow-backend/internal/db/interfaces"
	"github.com/techflow/techflow-backend/internal/metrics"
	"github.com/techflow/techflow-backend/internal/store"
	"github.com/techflow/techflow-backend/internal/util"
	"go.uber.org/zap"
)

var (
	// ErrNotFound covers both missing posts and posts the viewer may not see
	ErrNotFound = errors.New("post not found")
	// ErrForbidden is returned for write attempts by non-admin viewers
	ErrForbidden = errors.New("admin privileges required")
)

// ValidationError carries field-level messages for a rejected input
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid post input: %d field(s)", len(e.Fields))
}

const (
	DefaultLimit = 10
	MaxLimit     = 100

	listCacheTTL  = 5 * time.Minute
	statsCacheTTL = 5 * time.Minute
)

// Viewer identifies who is asking. A zero Viewer is an anonymous reader.
type Viewer struct {
	UserID  string
	IsAdmin bool
}

// Filters narrows a post listing. Published is only honored for admins;
// everyone else is pinned to published posts regardless of what they ask for.
type Filters struct {
	Category  string
	Search    string
	Page      int
	Limit     int
	Published *bool
	AuthorID  string
}

// ListResult is one page of posts plus paging info
type ListResult struct {
	Posts   []entities.Post `json:"posts"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
	HasMore bool            `json:"has_more"`
}

// CreateInput holds the fields accepted when creating a post
type CreateInput struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Category    string `json:"category"`
	IsPublished bool   `json:"is_published"`
}

// UpdateInput holds the patchable fields of a post
type UpdateInput struct {
	Title       *string `json:"title,omitempty"`
	Content     *string `json:"content,omitempty"`
	Category    *string `json:"category,omitempty"`
	IsPublished *bool   `json:"is_published,omitempty"`
}

// CategoryStat carries per-category counts. Count covers published posts
// only; Total includes drafts so admin dashboards can show both.
type CategoryStat struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Count    int64  `json:"count"`
	Total    int64  `json:"total"`
}

// Service implements post listing and management. Read paths are cached
// under a version counter that every mutation bumps, so a page rendered
// against stale data can never be served after a write.
type Service struct {
	repo    interfaces.Repository
	cache   *store.Cache
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
	flight  util.Group
}

func NewService(db interfaces.Database, cache *store.Cache, logger *zap.SugaredLogger, m *metrics.Metrics) *Service {
	return &Service{
		repo:    db.Repository(entities.PostSchema),
		cache:   cache,
		logger:  logger,
		metrics: m,
	}
}

// List returns one page of posts visible to the viewer
func (s *Service) List(ctx context.Context, viewer Viewer, filters Filters) (*ListResult, error) {
	filters = s.normalize(viewer, filters)

	version, err := s.version(ctx)
	if err != nil {
		version = 0 // degrade to uncached reads rather than failing
	}

	cacheKey := s.listCacheKey(version, filters)
	if s.cache != nil && version > 0 {
		var cached ListResult
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	q := s.buildListQuery(filters)

	start := time.Now()
	page, err := s.repo.FindMany(ctx, q)
	if s.metrics != nil {
		s.metrics.RecordPostQuery(ctx, "list", time.Since(start))
	}
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	result := &ListResult{
		Posts:   make([]entities.Post, 0, len(page.Data)),
		Total:   page.Total,
		Page:    filters.Page,
		Limit:   filters.Limit,
		HasMore: page.Total > int64(filters.Page*filters.Limit),
	}
	for _, record := range page.Data {
		result.Posts = append(result.Posts, entities.PostFromRecord(record))
	}

	if s.cache != nil && version > 0 {
		if err := s.cache.Set(ctx, cacheKey, result, listCacheTTL); err != nil && s.logger != nil {
			s.logger.Warnw("Failed to cache post page", "key", cacheKey, "error", err)
		}
	}

	return result, nil
}

// Get returns a single post. Drafts are only visible to admins and
// their own author.
func (s *Service) Get(ctx context.Context, viewer Viewer, id string) (*entities.Post, error) {
	start := time.Now()
	record, err := s.repo.GetByID(ctx, interfaces.StringID(id))
	if s.metrics != nil {
		s.metrics.RecordPostQuery(ctx, "get", time.Since(start))
	}
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}

	post := entities.PostFromRecord(record)
	if !post.IsPublished && !viewer.IsAdmin && (viewer.UserID == "" || viewer.UserID != post.AuthorID) {
		return nil, ErrNotFound
	}

	return &post, nil
}

// Create stores a new post authored by the viewer. Admin only.
func (s *Service) Create(ctx context.Context, viewer Viewer, input CreateInput) (*entities.Post, error) {
	if !viewer.IsAdmin {
		return nil, ErrForbidden
	}

	if input.Category == "" {
		input.Category = "general"
	}
	if err := validatePostFields(input.Title, input.Content, input.Category); err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"title":        input.Title,
		"content":      input.Content,
		"category":     input.Category,
		"is_published": input.IsPublished,
	}
	if viewer.UserID != "" {
		data["author_id"] = viewer.UserID
	}

	start := time.Now()
	record, err := s.repo.Create(ctx, data)
	if s.metrics != nil {
		s.metrics.RecordPostQuery(ctx, "create", time.Since(start))
	}
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.bumpVersion(ctx)

	post := entities.PostFromRecord(record)
	if s.logger != nil {
		s.logger.Infow("Post created", "id", post.ID, "category", post.Category, "published", post.IsPublished)
	}
	return &post, nil
}

// Update patches an existing post. Admin only.
func (s *Service) Update(ctx context.Context, viewer Viewer, id string, input UpdateInput) (*entities.Post, error) {
	if !viewer.IsAdmin {
		return nil, ErrForbidden
	}

	data := map[string]interface{}{}
	fields := map[string]string{}

	if input.Title != nil {
		if *input.Title == "" {
			fields["title"] = "title must not be empty"
		}
		data["title"] = *input.Title
	}
	if input.Content != nil {
		if *input.Content == "" {
			fields["content"] = "content must not be empty"
		}
		data["content"] = *input.Content
	}
	if input.Category != nil {
		if !entities.IsValidCategory(*input.Category) {
			fields["category"] = fmt.Sprintf("unknown category %q", *input.Category)
		}
		data["category"] = *input.Category
	}
	if input.IsPublished != nil {
		data["is_published"] = *input.IsPublished
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	if len(data) == 0 {
		return nil, &ValidationError{Fields: map[string]string{"body": "no updatable fields provided"}}
	}

	start := time.Now()
	record, err := s.repo.Update(ctx, interfaces.StringID(id), data)
	if s.metrics != nil {
		s.metrics.RecordPostQuery(ctx, "update", time.Since(start))
	}
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update post: %w", err)
	}

	s.bumpVersion(ctx)

	post := entities.PostFromRecord(record)
	return &post, nil
}

// Delete removes a post. Admin only.
func (s *Service) Delete(ctx context.Context, viewer Viewer, id string) error {
	if !viewer.IsAdmin {
		return ErrForbidden
	}

	start := time.Now()
	err := s.repo.Delete(ctx, interfaces.StringID(id))
	if s.metrics != nil {
		s.metrics.RecordPostQuery(ctx, "delete", time.Since(start))
	}
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}

	s.bumpVersion(ctx)
	return nil
}

// CategoryStats returns published-post counts per category, ordered by
// category key. Concurrent callers share a single computation.
func (s *Service) CategoryStats(ctx context.Context) ([]CategoryStat, error) {
	version, err := s.version(ctx)
	if err != nil {
		version = 0
	}

	cacheKey := fmt.Sprintf("%s:v%d", store.KeyCategoryStats, version)
	if s.cache != nil && version > 0 {
		var cached []CategoryStat
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	val, err, _ := s.flight.DoWithContext(ctx, cacheKey, func(ctx context.Context) (interface{}, error) {
		return s.computeCategoryStats(ctx)
	})
	if err != nil {
		return nil, err
	}
	stats := val.([]CategoryStat)

	if s.cache != nil && version > 0 {
		if err := s.cache.Set(ctx, cacheKey, stats, statsCacheTTL); err != nil && s.logger != nil {
			s.logger.Warnw("Failed to cache category stats", "error", err)
		}
	}

	return stats, nil
}

func (s *Service) computeCategoryStats(ctx context.Context) ([]CategoryStat, error) {
	categories := make([]string, 0, len(entities.PostCategories))
	for category := range entities.PostCategories {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	start := time.Now()
	stats := make([]CategoryStat, 0, len(categories))
	for _, category := range categories {
		published, err := s.repo.Count(ctx, &interfaces.Query{
			Where: &interfaces.Filters{
				Conditions: []interfaces.Filter{
					{Field: "category", Value: category},
					{Field: "is_published", Value: true},
				},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("count category %s: %w", category, err)
		}
		total, err := s.repo.Count(ctx, &interfaces.Query{
			Where: &interfaces.Filters{
				Conditions: []interfaces.Filter{
					{Field: "category", Value: category},
				},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("count category %s: %w", category, err)
		}
		stats = append(stats, CategoryStat{
			Category: category,
			Label:    entities.PostCategories[category],
			Count:    published,
			Total:    total,
		})
	}
	if s.metrics != nil {
		s.metrics.RecordPostQuery(ctx, "stats", time.Since(start))
	}

	return stats, nil
}

// RecentPublished returns the newest published posts, used by the sitemap
func (s *Service) RecentPublished(ctx context.Context, limit int) ([]entities.Post, error) {
	if limit <= 0 {
		limit = 50
	}

	result, err := s.List(ctx, Viewer{}, Filters{Page: 1, Limit: limit})
	if err != nil {
		return nil, err
	}
	return result.Posts, nil
}

func (s *Service) normalize(viewer Viewer, filters Filters) Filters {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.Limit < 1 {
		filters.Limit = DefaultLimit
	}
	if filters.Limit > MaxLimit {
		filters.Limit = MaxLimit
	}

	if !viewer.IsAdmin {
		published := true
		filters.Published = &published
	}

	return filters
}

func (s *Service) buildListQuery(filters Filters) *interfaces.Query {
	where := &interfaces.Filters{}

	if filters.Published != nil {
		where.Conditions = append(where.Conditions, interfaces.Filter{
			Field: "is_published", Value: *filters.Published,
		})
	}
	if filters.Category != "" {
		where.Conditions = append(where.Conditions, interfaces.Filter{
			Field: "category", Value: filters.Category,
		})
	}
	if filters.AuthorID != "" {
		where.Conditions = append(where.Conditions, interfaces.Filter{
			Field: "author_id", Value: filters.AuthorID,
		})
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		where.OR = []*interfaces.Filters{
			{Conditions: []interfaces.Filter{{Field: "title", Operator: &interfaces.FilterOperator{Like: pattern}}}},
			{Conditions: []interfaces.Filter{{Field: "content", Operator: &interfaces.FilterOperator{Like: pattern}}}},
		}
	}

	offset := (filters.Page - 1) * filters.Limit
	limit := filters.Limit

	q := &interfaces.Query{
		OrderBy: []interfaces.OrderBy{{Field: "created_at", Direction: "desc"}},
		Limit:   &limit,
		Offset:  &offset,
	}
	if len(where.Conditions) > 0 || len(where.OR) > 0 {
		q.Where = where
	}
	return q
}

func (s *Service) listCacheKey(version int64, filters Filters) string {
	published := "any"
	if filters.Published != nil {
		published = fmt.Sprintf("%t", *filters.Published)
	}
	return fmt.Sprintf("%s:v%d:c=%s:q=%s:p=%d:l=%d:pub=%s:a=%s",
		store.KeyPostsPage, version, filters.Category, filters.Search,
		filters.Page, filters.Limit, published, filters.AuthorID)
}

// version reads the current posts version counter. Zero means the
// counter is unavailable and caching is skipped.
func (s *Service) version(ctx context.Context) (int64, error) {
	if s.cache == nil {
		return 0, nil
	}
	v, err := s.cache.GetCounter(ctx, store.KeyPostsVersion)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		// First read: initialize so cached pages become addressable
		return s.cache.Incr(ctx, store.KeyPostsVersion)
	}
	return v, nil
}

// bumpVersion invalidates every cached page and stats entry at once
func (s *Service) bumpVersion(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(ctx, store.KeyPostsVersion); err != nil && s.logger != nil {
		s.logger.Warnw("Failed to bump posts cache version", "error", err)
	}
}

func validatePostFields(title, content, category string) error {
	fields := map[string]string{}
	if title == "" {
		fields["title"] = "title is required"
	}
	if content == "" {
		fields["content"] = "content is required"
	}
	if !entities.IsValidCategory(category) {
		fields["category"] = fmt.Sprintf("unknown category %q", category)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
