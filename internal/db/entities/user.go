package entities

import (
	"time"

	"github.com/techflow/techflow-backend/internal/db/interfaces"
)

// User represents an authenticated account (site editors and admins).
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UserSchema defines the database schema for users
var UserSchema = &interfaces.Schema{
	TableName: "users",
	Fields: map[string]interfaces.FieldSchema{
		"id": {
			Type:       "string",
			PrimaryKey: true,
		},
		"email": {
			Type:   "string",
			Unique: true,
		},
		"password_hash": {
			Type: "string",
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
			Name:    "idx_users_email",
			Columns: []string{"email"},
			Unique:  true,
		},
	},
}

// UserFromRecord maps a raw repository record onto a User.
func UserFromRecord(record map[string]interface{}) User {
	u := User{}
	if v, ok := record["id"].(string); ok {
		u.ID = v
	}
	if v, ok := record["email"].(string); ok {
		u.Email = v
	}
	if v, ok := record["password_hash"].(string); ok {
		u.PasswordHash = v
	}
	if v, ok := record["created_at"].(time.Time); ok {
		u.CreatedAt = v
	}
	if v, ok := record["updated_at"].(time.Time); ok {
		u.UpdatedAt = v
	}
	return u
}
