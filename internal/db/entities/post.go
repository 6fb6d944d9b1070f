package entities

import (
	"time"

	"github.com/techflow/techflow-backend/internal/db/interfaces"
)

// Post represents a news/announcement entry shown on the site.
type Post struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Content     string    `json:"content" db:"content"`
	Category    string    `json:"category" db:"category"`
	AuthorID    string    `json:"author_id,omitempty" db:"author_id"`
	IsPublished bool      `json:"is_published" db:"is_published"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// PostCategories is the fixed category set. Labels mirror the site copy.
var PostCategories = map[string]string{
	"general":     "일반",
	"product":     "제품 출시",
	"event":       "이벤트",
	"update":      "업데이트",
	"maintenance": "시스템 점검",
	"case_study":  "성공 사례",
	"notice":      "공지사항",
}

// IsValidCategory reports whether c is a member of the fixed category set.
func IsValidCategory(c string) bool {
	_, ok := PostCategories[c]
	return ok
}

// PostSchema defines the database schema for posts
var PostSchema = &interfaces.Schema{
	TableName: "posts",
	Fields: map[string]interfaces.FieldSchema{
		"id": {
			Type:       "string",
			PrimaryKey: true,
		},
		"title": {
			Type: "string",
		},
		"content": {
			Type: "string",
		},
		"category": {
			Type:         "string",
			DefaultValue: "general",
		},
		"author_id": {
			Type:     "string",
			Nullable: true,
			ForeignKey: &interfaces.ForeignKey{
				Table:    "users",
				Column:   "id",
				OnDelete: "SET NULL",
			},
		},
		"is_published": {
			Type:         "bool",
			DefaultValue: false,
		},
		"created_at": {
			Type: "time",
		},
		"updated_at": {
			Type: "time",
		},
	},
	Indexes: []interfaces.Index{
		{
			Name:    "idx_posts_published_created_desc",
			Columns: []string{"is_published", "created_at"},
		},
		{
			Name:    "idx_posts_category_published_created",
			Columns: []string{"category", "is_published", "created_at"},
		},
	},
}

// PostFromRecord maps a raw repository record onto a Post.
func PostFromRecord(record map[string]interface{}) Post {
	p := Post{}
	if v, ok := record["id"].(string); ok {
		p.ID = v
	}
	if v, ok := record["title"].(string); ok {
		p.Title = v
	}
	if v, ok := record["content"].(string); ok {
		p.Content = v
	}
	if v, ok := record["category"].(string); ok {
		p.Category = v
	}
	if v, ok := record["author_id"].(string); ok {
		p.AuthorID = v
	}
	if v, ok := record["is_published"].(bool); ok {
		p.IsPublished = v
	}
	if v, ok := record["created_at"].(time.Time); ok {
		p.CreatedAt = v
	}
	if v, ok := record["updated_at"].(time.Time); ok {
		p.UpdatedAt = v
	}
	return p
}
