package posts

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techflow/techflow-backend/internal/db"
	"github.com/techflow/techflow-backend/internal/db/entities"
	"github.com/techflow/techflow-backend/internal/store"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	ctx := context.Background()

	database := db.NewInMemoryDatabase()
	require.NoError(t, db.ConnectAndMigrate(ctx, database, db.AllSchemas()))
	t.Cleanup(func() { database.Disconnect(ctx) })

	userRepo := database.Repository(entities.UserSchema)
	author, err := userRepo.Create(ctx, map[string]interface{}{
		"email":         "author@techflow.co.kr",
		"password_hash": "not-a-real-hash",
	})
	require.NoError(t, err)

	logger, _ := zap.NewDevelopment()
	cache, err := store.NewCache("invalid:6379", logger.Sugar(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	return NewService(database, cache, logger.Sugar(), nil), author["id"].(string)
}

func seedPosts(t *testing.T, svc *Service, admin Viewer) {
	t.Helper()
	ctx := context.Background()

	inputs := []CreateInput{
		{Title: "신제품 출시", Content: "새로운 플랫폼을 소개합니다", Category: "product", IsPublished: true},
		{Title: "시스템 점검 안내", Content: "정기 점검이 예정되어 있습니다", Category: "maintenance", IsPublished: true},
		{Title: "채용 이벤트", Content: "개발자 채용 설명회", Category: "event", IsPublished: true},
		{Title: "하반기 로드맵 초안", Content: "아직 공개 전입니다", Category: "update", IsPublished: false},
	}
	for _, input := range inputs {
		_, err := svc.Create(ctx, admin, input)
		require.NoError(t, err)
	}
}

func TestListHidesDraftsFromAnonymous(t *testing.T) {
	svc, authorID := newTestService(t)
	admin := Viewer{UserID: authorID, IsAdmin: true}
	seedPosts(t, svc, admin)
	ctx := context.Background()

	result, err := svc.List(ctx, Viewer{}, Filters{})
	require.NoError(t, err)

	assert.Equal(t, int64(3), result.Total)
	for _, post := range result.Posts {
		assert.True(t, post.IsPublished)
	}

	// Asking for drafts explicitly must not widen visibility
	published := false
	result, err = svc.List(ctx, Viewer{}, Filters{Published: &published})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Total)
}

func TestListAdminSeesDrafts(t *testing.T) {
	svc, authorID := newTestService(t)
	admin := Viewer{UserID: authorID, IsAdmin: true}
	seedPosts(t, svc, admin)
	ctx := context.Background()

	result, err := svc.List(ctx, admin, Filters{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.Total)

	published := false
	result, err = svc.List(ctx, admin, Filters{Published: &published})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
	assert.Equal(t, "하반기 로드맵 초안", result.Posts[0].Title)
}

func TestListPaginationAndHasMore(t *testing.T) {
	svc, authorID := newTestService(t)
	admin := Viewer{UserID: authorID, IsAdmin: true}
	seedPosts(t, svc, admin)
	ctx := context.Background()

	result, err := svc.List(ctx, Viewer{}, Filters{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, result.Posts, 2)
	assert.Equal(t, int64(3), result.Total)
	assert.True(t, result.HasMore)

	result, err = svc.List(ctx, Viewer{}, Filters{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, result.Posts, 1)
	assert.False(t, result.HasMore)

	// Limit is clamped to the allowed range
	result, err = svc.List(ctx, Viewer{}, Filters{Page: 1, Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, result.Limit)
}

func TestListLastPartialPage(t *testing.T) {
	svc, authorID := newTestService(t)
	admin := Viewer{UserID: authorID, IsAdmin: true}
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := svc.Create(ctx, admin, CreateInput{
			Title:       fmt.Sprintf("공지 %d", i),
			Content:     "내용",
			IsPublished: true,
		})
		require.NoError(t, err)
	}

	result, err := svc.List(ctx, Viewer{}, Filters{Page: 2, Limit: 6})
	require.NoError(t, err)
	assert.Equal(t, int64(10), result.Total)
	assert.Len(t, result.Posts, 4)
	assert.False(t, result.HasMore)
}

func TestListOrderedNewestFirst(t *testing.T) {
	svc, authorID := newTestService(t)
	admin := Viewer{UserID: authorID, IsAdmin: true}
	seedPosts(t, svc, admin)
	ctx := context.Background()

	result, err := svc.List(ctx, admin, Filters{})
	require.NoError(t, err)
	require.True(t, len(result.Posts) > 1)
	for i := 1; i < len(result.Posts); i++ {
		assert.False(t, result.Posts[i].CreatedAt.After(result.Posts[i-1].CreatedAt))
	}
}

func TestListSearchAndCategory(t *testing.T) {
	svc, authorID := newTestService(t)
	admin := Viewer{UserID: authorID, IsAdmin: true}
	seedPosts(t, svc, admin)
	ctx := context.Background()

	result, err := svc.List(ctx, Viewer{}, Filters{Search: "점검"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
	assert.Equal(t, "시스템 점검 안내", result.Posts[0].Title)

	result, err = svc.List(ctx, Viewer{}, Filters{Category: "event"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
	assert.Equal(t, "채용 이벤트", result.Posts[0].Title)
}

func TestListCacheInvalidatedByWrite(t *testing.T) {
	svc, authorID := newTestService(t)
	admin := Viewer{UserID: authorID, IsAdmin: true}
	seedPosts(t, svc, admin)
	ctx := context.Background()

	first, err := svc.List(ctx, Viewer{}, Filters{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), first.Total)

	_, err = svc.Create(ctx, admin, CreateInput{
		Title: "긴급 공지", Content: "신규 공지입니다", Category: "notice", IsPublished: true,
	})
	require.NoError(t, err)

	// The version bump makes the cached page unreachable
	second, err := svc.List(ctx, Viewer{}, Filters{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), second.Total)
}

func TestGetDraftVisibility(t *testing.T) {
	svc, authorID := newTestService(t)
	admin := Viewer{UserID: authorID, IsAdmin: true}
	ctx := context.Background()

	draft, err := svc.Create(ctx, admin, CreateInput{
		Title: "초안", Content: "본문", Category: "general", IsPublished: false,
	})
	require.NoError(t, err)

	_, err = svc.Get(ctx, Viewer{}, draft.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(ctx, Viewer{UserID: "someone-else"}, draft.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := svc.Get(ctx, Viewer{UserID: authorID}, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)

	got, err = svc.Get(ctx, admin, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)
}

func TestWritesRequireAdmin(t *testing.T) {
	svc, authorID := newTestService(t)
	ctx := context.Background()
	reader := Viewer{UserID: authorID}

	_, err := svc.Create(ctx, reader, CreateInput{Title: "t", Content: "c", Category: "general"})
	assert.ErrorIs(t, err, ErrForbidden)

	title := "t"
	_, err = svc.Update(ctx, reader, "any-id", UpdateInput{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.Delete(ctx, reader, "any-id")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateValidation(t *testing.T) {
	svc, authorID := newTestService(t)
	admin := Viewer{UserID: authorID, IsAdmin: true}
	ctx := context.Background()

	_, err := svc.Create(ctx, admin, CreateInput{Title: "", Content: "", Category: "bogus"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "content")
	assert.Contains(t, verr.Fields, "category")

	// Empty category falls back to the default
	post, err := svc.Create(ctx, admin, CreateInput{Title: "t", Content: "c"})
	require.NoError(t, err)
	assert.Equal(t, "general", post.Category)
}

func TestUpdateAndDelete(t *testing.T) {
	svc, authorID := newTestService(t)
	admin := Viewer{UserID: authorID, IsAdmin: true}
	ctx := context.Background()

	post, err := svc.Create(ctx, admin, CreateInput{
		Title: "원본", Content: "본문", Category: "general", IsPublished: false,
	})
	require.NoError(t, err)

	published := true
	title := "수정본"
	updated, err := svc.Update(ctx, admin, post.ID, UpdateInput{Title: &title, IsPublished: &published})
	require.NoError(t, err)
	assert.Equal(t, "수정본", updated.Title)
	assert.True(t, updated.IsPublished)
	assert.Equal(t, "본문", updated.Content)

	// Reapplying the same patch changes nothing
	again, err := svc.Update(ctx, admin, post.ID, UpdateInput{Title: &title, IsPublished: &published})
	require.NoError(t, err)
	assert.Equal(t, updated.Title, again.Title)
	assert.Equal(t, updated.Content, again.Content)
	assert.Equal(t, updated.IsPublished, again.IsPublished)

	require.NoError(t, svc.Delete(ctx, admin, post.ID))
	assert.ErrorIs(t, svc.Delete(ctx, admin, post.ID), ErrNotFound)

	_, err = svc.Update(ctx, admin, post.ID, UpdateInput{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategoryStats(t *testing.T) {
	svc, authorID := newTestService(t)
	admin := Viewer{UserID: authorID, IsAdmin: true}
	seedPosts(t, svc, admin)
	ctx := context.Background()

	stats, err := svc.CategoryStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, len(entities.PostCategories))

	byCategory := map[string]CategoryStat{}
	for _, stat := range stats {
		byCategory[stat.Category] = stat
		assert.NotEmpty(t, stat.Label)
	}

	assert.Equal(t, int64(1), byCategory["product"].Count)
	assert.Equal(t, int64(1), byCategory["maintenance"].Count)
	assert.Equal(t, int64(1), byCategory["event"].Count)
	// Drafts stay out of the published count but show in the total
	assert.Equal(t, int64(0), byCategory["update"].Count)
	assert.Equal(t, int64(1), byCategory["update"].Total)
}
