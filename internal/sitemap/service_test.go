package sitemap

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techflow/techflow-backend/internal/db"
	"github.com/techflow/techflow-backend/internal/db/entities"
	"github.com/techflow/techflow-backend/internal/posts"
	"github.com/techflow/techflow-backend/internal/store"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*Service, *posts.Service, posts.Viewer) {
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

	postsService := posts.NewService(database, cache, logger.Sugar(), nil)
	svc := NewService(postsService, cache, "https://techflow.co.kr", logger.Sugar())

	return svc, postsService, posts.Viewer{UserID: author["id"].(string), IsAdmin: true}
}

func TestRenderContainsStaticRoutes(t *testing.T) {
	svc, _, _ := newTestService(t)

	doc, err := svc.Render(context.Background())
	require.NoError(t, err)
	body := string(doc)

	assert.True(t, strings.HasPrefix(body, "<?xml"))
	assert.Contains(t, body, `xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"`)

	for _, path := range []string{"", "/about", "/services", "/news", "/contact"} {
		assert.Contains(t, body, "<loc>https://techflow.co.kr"+path+"</loc>")
	}

	assert.Contains(t, body, `hreflang="ko"`)
	assert.Contains(t, body, `hreflang="en"`)
	assert.Contains(t, body, "?lang=ko")
	assert.Contains(t, body, "?lang=en")
	assert.Contains(t, body, "<priority>1.0</priority>")
}

func TestRenderIncludesPublishedPostsOnly(t *testing.T) {
	svc, postsService, admin := newTestService(t)
	ctx := context.Background()

	published, err := postsService.Create(ctx, admin, posts.CreateInput{
		Title: "공개 글", Content: "본문", Category: "notice", IsPublished: true,
	})
	require.NoError(t, err)

	draft, err := postsService.Create(ctx, admin, posts.CreateInput{
		Title: "초안", Content: "본문", Category: "general", IsPublished: false,
	})
	require.NoError(t, err)

	doc, err := svc.Render(ctx)
	require.NoError(t, err)
	body := string(doc)

	assert.Contains(t, body, "/news/"+published.ID)
	assert.NotContains(t, body, "/news/"+draft.ID)
}

func TestRenderUsesCacheUntilInvalidated(t *testing.T) {
	svc, postsService, admin := newTestService(t)
	ctx := context.Background()

	first, err := svc.Render(ctx)
	require.NoError(t, err)

	post, err := postsService.Create(ctx, admin, posts.CreateInput{
		Title: "새 글", Content: "본문", Category: "notice", IsPublished: true,
	})
	require.NoError(t, err)

	cached, err := svc.Render(ctx)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(cached))
	assert.NotContains(t, string(cached), post.ID)

	require.NoError(t, svc.Invalidate(ctx))

	fresh, err := svc.Render(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(fresh), "/news/"+post.ID)
}
