package db

import (
	"context"
	"testing"

	"github.com/techflow/techflow-backend/internal/db/entities"
	"github.com/techflow/techflow-backend/internal/db/interfaces"
)

func TestInMemoryDatabase(t *testing.T) {
	ctx := context.Background()

	db := NewInMemoryDatabase()

	if err := ConnectAndMigrate(ctx, db, AllSchemas()); err != nil {
		t.Fatalf("Failed to connect and migrate: %v", err)
	}
	defer db.Disconnect(ctx)

	if !db.IsHealthy(ctx) {
		t.Fatal("Database should be healthy")
	}

	userRepo := db.Repository(entities.UserSchema)
	postRepo := db.Repository(entities.PostSchema)

	t.Run("CRUD Operations", func(t *testing.T) {
		testCRUDOperations(t, ctx, postRepo, userRepo)
	})

	t.Run("Query Operations", func(t *testing.T) {
		testQueryOperations(t, ctx, postRepo, userRepo)
	})

	t.Run("Constraint Validation", func(t *testing.T) {
		testConstraintValidation(t, ctx, userRepo, postRepo)
	})

	t.Run("Transactions", func(t *testing.T) {
		testTransactions(t, ctx, db, userRepo)
	})
}

func createAuthor(t *testing.T, ctx context.Context, userRepo interfaces.Repository, email string) string {
	t.Helper()

	user, err := userRepo.Create(ctx, map[string]interface{}{
		"email":         email,
		"password_hash": "not-a-real-hash",
	})
	if err != nil {
		t.Fatalf("Failed to create author: %v", err)
	}
	return user["id"].(string)
}

func testCRUDOperations(t *testing.T, ctx context.Context, postRepo, userRepo interfaces.Repository) {
	authorID := createAuthor(t, ctx, userRepo, "crud@techflow.co.kr")

	postData := map[string]interface{}{
		"title":     "점검 공지",
		"content":   "새벽 2시부터 점검이 진행됩니다.",
		"category":  "maintenance",
		"author_id": authorID,
	}

	post, err := postRepo.Create(ctx, postData)
	if err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}

	if post["title"] != "점검 공지" {
		t.Errorf("Expected title '점검 공지', got '%v'", post["title"])
	}

	// Schema default applies when is_published is omitted
	if post["is_published"] != false {
		t.Errorf("Expected is_published false by default, got '%v'", post["is_published"])
	}

	postID := post["id"].(string)
	if postID == "" {
		t.Fatal("Post ID should not be empty")
	}

	retrieved, err := postRepo.GetByID(ctx, interfaces.StringID(postID))
	if err != nil {
		t.Fatalf("Failed to get post by ID: %v", err)
	}

	if retrieved["category"] != "maintenance" {
		t.Errorf("Expected category 'maintenance', got '%v'", retrieved["category"])
	}

	updated, err := postRepo.Update(ctx, interfaces.StringID(postID), map[string]interface{}{
		"title":        "점검 완료 공지",
		"is_published": true,
	})
	if err != nil {
		t.Fatalf("Failed to update post: %v", err)
	}

	if updated["title"] != "점검 완료 공지" {
		t.Errorf("Expected updated title, got '%v'", updated["title"])
	}
	if updated["is_published"] != true {
		t.Errorf("Expected is_published true, got '%v'", updated["is_published"])
	}

	if err := postRepo.Delete(ctx, interfaces.StringID(postID)); err != nil {
		t.Fatalf("Failed to delete post: %v", err)
	}

	_, err = postRepo.GetByID(ctx, interfaces.StringID(postID))
	if err != interfaces.ErrNotFound {
		t.Errorf("Expected ErrNotFound after deletion, got: %v", err)
	}
}

func testQueryOperations(t *testing.T, ctx context.Context, postRepo, userRepo interfaces.Repository) {
	authorID := createAuthor(t, ctx, userRepo, "query@techflow.co.kr")

	posts := []map[string]interface{}{
		{"title": "신제품 발표", "content": "플랫폼 신규 기능", "category": "product", "author_id": authorID, "is_published": true},
		{"title": "채용 이벤트", "content": "개발자 채용 행사", "category": "event", "author_id": authorID, "is_published": false},
		{"title": "장애 안내", "content": "일부 기능 장애", "category": "notice", "author_id": authorID, "is_published": true},
	}

	for _, postData := range posts {
		if _, err := postRepo.Create(ctx, postData); err != nil {
			t.Fatalf("Failed to create test post: %v", err)
		}
	}

	// Filtering on the published flag
	result, err := postRepo.FindMany(ctx, &interfaces.Query{
		Where: &interfaces.Filters{
			Conditions: []interfaces.Filter{
				{Field: "is_published", Value: true},
			},
		},
	})
	if err != nil {
		t.Fatalf("Failed to find published posts: %v", err)
	}

	if result.Total != 2 {
		t.Errorf("Expected 2 published posts, got %d", result.Total)
	}

	// Case-insensitive search over title OR content
	result, err = postRepo.FindMany(ctx, &interfaces.Query{
		Where: &interfaces.Filters{
			OR: []*interfaces.Filters{
				{Conditions: []interfaces.Filter{{Field: "title", Operator: &interfaces.FilterOperator{Like: "%이벤트%"}}}},
				{Conditions: []interfaces.Filter{{Field: "content", Operator: &interfaces.FilterOperator{Like: "%이벤트%"}}}},
			},
		},
	})
	if err != nil {
		t.Fatalf("Failed to search posts: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("Expected 1 search hit, got %d", result.Total)
	}

	// Sorting newest first
	result, err = postRepo.FindMany(ctx, &interfaces.Query{
		OrderBy: []interfaces.OrderBy{
			{Field: "created_at", Direction: "desc"},
		},
	})
	if err != nil {
		t.Fatalf("Failed to sort posts: %v", err)
	}

	if len(result.Data) != 3 {
		t.Errorf("Expected 3 posts, got %d", len(result.Data))
	}

	// Pagination keeps the unpaged total
	limit := 2
	result, err = postRepo.FindMany(ctx, &interfaces.Query{
		Limit: &limit,
		OrderBy: []interfaces.OrderBy{
			{Field: "title", Direction: "asc"},
		},
	})
	if err != nil {
		t.Fatalf("Failed to paginate posts: %v", err)
	}

	if len(result.Data) != 2 {
		t.Errorf("Expected 2 posts per page, got %d", len(result.Data))
	}
	if result.Total != 3 {
		t.Errorf("Expected total 3 posts, got %d", result.Total)
	}

	count, err := postRepo.Count(ctx, &interfaces.Query{
		Where: &interfaces.Filters{
			Conditions: []interfaces.Filter{
				{Field: "category", Value: "notice"},
			},
		},
	})
	if err != nil {
		t.Fatalf("Failed to count notices: %v", err)
	}

	if count != 1 {
		t.Errorf("Expected count 1, got %d", count)
	}
}

func testConstraintValidation(t *testing.T, ctx context.Context, userRepo, postRepo interfaces.Repository) {
	user, err := userRepo.Create(ctx, map[string]interface{}{
		"email":         "constraint@techflow.co.kr",
		"password_hash": "not-a-real-hash",
	})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	userID := user["id"].(string)

	// Duplicate email violates the unique constraint
	_, err = userRepo.Create(ctx, map[string]interface{}{
		"email":         "constraint@techflow.co.kr",
		"password_hash": "other-hash",
	})
	if err == nil {
		t.Error("Expected unique constraint error for duplicate email")
	}

	_, err = postRepo.Create(ctx, map[string]interface{}{
		"title":     "유효한 글",
		"content":   "본문",
		"category":  "general",
		"author_id": userID,
	})
	if err != nil {
		t.Fatalf("Failed to create post with valid foreign key: %v", err)
	}

	_, err = postRepo.Create(ctx, map[string]interface{}{
		"title":     "잘못된 글",
		"content":   "본문",
		"category":  "general",
		"author_id": "non-existent-id",
	})
	if err == nil {
		t.Error("Expected foreign key constraint error for invalid author_id")
	}
}

func testTransactions(t *testing.T, ctx context.Context, db interfaces.Database, repo interfaces.Repository) {
	err := db.Transaction(ctx, func(ctx context.Context, tx interfaces.Transaction) error {
		_, err := repo.Create(ctx, map[string]interface{}{
			"email":         "tx@techflow.co.kr",
			"password_hash": "not-a-real-hash",
		})
		return err
	})
	if err != nil {
		t.Fatalf("Transaction should succeed: %v", err)
	}

	result, err := repo.FindMany(ctx, &interfaces.Query{
		Where: &interfaces.Filters{
			Conditions: []interfaces.Filter{
				{Field: "email", Value: "tx@techflow.co.kr"},
			},
		},
	})
	if err != nil {
		t.Fatalf("Failed to find transaction user: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("Expected 1 user from successful transaction, got %d", result.Total)
	}

	err = db.Transaction(ctx, func(ctx context.Context, tx interfaces.Transaction) error {
		_, err := repo.Create(ctx, map[string]interface{}{
			"email":         "rollback@techflow.co.kr",
			"password_hash": "not-a-real-hash",
		})
		if err != nil {
			return err
		}

		return interfaces.ErrInvalidQuery
	})
	if err == nil {
		t.Error("Transaction should fail")
	}

	result, err = repo.FindMany(ctx, &interfaces.Query{
		Where: &interfaces.Filters{
			Conditions: []interfaces.Filter{
				{Field: "email", Value: "rollback@techflow.co.kr"},
			},
		},
	})
	if err != nil {
		t.Fatalf("Failed to search for rollback user: %v", err)
	}
	if result.Total != 0 {
		t.Errorf("Expected 0 users after rollback, got %d", result.Total)
	}
}
