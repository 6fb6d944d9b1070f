package main

import (
	"context"
	"fmt"
	"log"

	"github.com/techflow/techflow-backend/internal/db"
	"github.com/techflow/techflow-backend/internal/db/entities"
	"github.com/techflow/techflow-backend/internal/db/interfaces"
)

// Demonstrates the database abstraction layer against the in-memory
// backend. Useful for poking at query semantics without a server.
func main() {
	ctx := context.Background()

	fmt.Println("=== Database Abstraction Layer Demo ===")

	database := db.NewInMemoryDatabase()

	if err := db.ConnectAndMigrate(ctx, database, db.AllSchemas()); err != nil {
		log.Fatalf("Failed to setup database: %v", err)
	}
	defer database.Disconnect(ctx)

	userRepo := database.Repository(entities.UserSchema)
	postRepo := database.Repository(entities.PostSchema)

	fmt.Println("--- Basic CRUD Operations ---")

	fmt.Println("Creating users...")
	var userIDs []string
	for _, userData := range db.UserFixtures {
		user, err := userRepo.Create(ctx, userData)
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			continue
		}
		userIDs = append(userIDs, user["id"].(string))
		fmt.Printf("Created user: %s\n", user["email"])
	}

	fmt.Println("\nCreating posts...")
	for _, postData := range db.PostFixtures(userIDs) {
		post, err := postRepo.Create(ctx, postData)
		if err != nil {
			log.Printf("Failed to create post: %v", err)
			continue
		}
		fmt.Printf("Created post: %s [%s]\n", post["title"], post["category"])
	}

	fmt.Println("\n--- Query Operations ---")

	published, err := postRepo.FindMany(ctx, &interfaces.Query{
		Where: &interfaces.Filters{
			Conditions: []interfaces.Filter{
				{Field: "is_published", Value: true},
			},
		},
		OrderBy: []interfaces.OrderBy{
			{Field: "created_at", Direction: "desc"},
		},
	})
	if err != nil {
		log.Fatalf("Failed to find published posts: %v", err)
	}

	fmt.Printf("Found %d published posts:\n", published.Total)
	for _, post := range published.Data {
		fmt.Printf("  - %s\n", post["title"])
	}

	// Case-insensitive title search
	searchResults, err := postRepo.FindMany(ctx, &interfaces.Query{
		Where: &interfaces.Filters{
			Conditions: []interfaces.Filter{
				{
					Field: "title",
					Operator: &interfaces.FilterOperator{
						Like: "%안내%",
					},
				},
			},
		},
	})
	if err != nil {
		log.Fatalf("Failed to search posts: %v", err)
	}

	fmt.Printf("\nPosts matching '안내' (%d found):\n", searchResults.Total)
	for _, post := range searchResults.Data {
		fmt.Printf("  - %s\n", post["title"])
	}

	fmt.Println("\n--- Pagination Example ---")

	limit := 2
	offset := 0
	page := 1

	for {
		pageResult, err := postRepo.FindMany(ctx, &interfaces.Query{
			Limit:  &limit,
			Offset: &offset,
			OrderBy: []interfaces.OrderBy{
				{Field: "created_at", Direction: "desc"},
			},
		})
		if err != nil {
			log.Fatalf("Failed to get page: %v", err)
		}

		if len(pageResult.Data) == 0 {
			break
		}

		fmt.Printf("Page %d (total: %d):\n", page, pageResult.Total)
		for _, post := range pageResult.Data {
			fmt.Printf("  - %s\n", post["title"])
		}

		offset += limit
		page++

		if offset >= int(pageResult.Total) {
			break
		}
	}

	fmt.Println("\n--- Transaction Example ---")

	err = database.Transaction(ctx, func(ctx context.Context, tx interfaces.Transaction) error {
		user, err := userRepo.Create(ctx, map[string]interface{}{
			"email":         "transaction@techflow.co.kr",
			"password_hash": "placeholder",
		})
		if err != nil {
			return err
		}

		_, err = postRepo.Create(ctx, map[string]interface{}{
			"title":     "트랜잭션 테스트",
			"content":   "같은 트랜잭션에서 작성된 게시물입니다.",
			"author_id": user["id"],
		})
		if err != nil {
			return err
		}

		fmt.Println("Transaction completed successfully")
		return nil
	})
	if err != nil {
		log.Printf("Transaction failed: %v", err)
	}

	// Failed transaction (should rollback)
	err = database.Transaction(ctx, func(ctx context.Context, tx interfaces.Transaction) error {
		_, err := userRepo.Create(ctx, map[string]interface{}{
			"email":         "rollback@techflow.co.kr",
			"password_hash": "placeholder",
		})
		if err != nil {
			return err
		}

		return fmt.Errorf("simulated error")
	})
	if err != nil {
		fmt.Printf("Transaction failed as expected: %v\n", err)
	}

	_, err = userRepo.FindOne(ctx, &interfaces.Query{
		Where: &interfaces.Filters{
			Conditions: []interfaces.Filter{
				{Field: "email", Value: "rollback@techflow.co.kr"},
			},
		},
	})
	if err == interfaces.ErrNotFound {
		fmt.Println("Rollback successful - user was not created")
	} else if err != nil {
		log.Printf("Error checking rollback: %v", err)
	} else {
		log.Println("Rollback failed - user still exists")
	}

	fmt.Println("\n--- Constraint Examples ---")

	_, err = userRepo.Create(ctx, map[string]interface{}{
		"email":         "editor@techflow.co.kr", // duplicate
		"password_hash": "placeholder",
	})
	if err != nil {
		fmt.Printf("Unique constraint error (expected): %v\n", err)
	}

	_, err = postRepo.Create(ctx, map[string]interface{}{
		"title":     "잘못된 게시물",
		"content":   "존재하지 않는 작성자입니다.",
		"author_id": "non-existent-user-id",
	})
	if err != nil {
		fmt.Printf("Foreign key constraint error (expected): %v\n", err)
	}

	fmt.Println("\n--- Final Statistics ---")

	userCount, _ := userRepo.Count(ctx, nil)
	postCount, _ := postRepo.Count(ctx, nil)
	publishedCount, _ := postRepo.Count(ctx, &interfaces.Query{
		Where: &interfaces.Filters{
			Conditions: []interfaces.Filter{
				{Field: "is_published", Value: true},
			},
		},
	})

	fmt.Printf("Total users: %d\n", userCount)
	fmt.Printf("Total posts: %d\n", postCount)
	fmt.Printf("Published posts: %d\n", publishedCount)

	fmt.Println("\n=== Demo completed ===")
}
