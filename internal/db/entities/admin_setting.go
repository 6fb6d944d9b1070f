package entities

import (
	"time"

	"github.com/techflow/techflow-backend/internal/db/interfaces"
)

// AdminSetting is a per-user privilege flag. Absence of a row means
// the user is not an admin.
type AdminSetting struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	IsAdmin   bool      `json:"is_admin" db:"is_admin"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AdminSettingSchema defines the database schema for admin_settings
var AdminSettingSchema = &interfaces.Schema{
	TableName: "admin_settings",
	Fields: map[string]interfaces.FieldSchema{
		"id": {
			Type:       "string",
			PrimaryKey: true,
		},
		"user_id": {
			Type:   "string",
			Unique: true,
			ForeignKey: &interfaces.ForeignKey{
				Table:    "users",
				Column:   "id",
				OnDelete: "CASCADE",
			},
		},
		"is_admin": {
			Type:         "bool",
			DefaultValue: false,
		},
		"created_at": {
			Type: "time",
		},
		"updated_at": {
			Type:     "time",
			Nullable: true,
		},
	},
	Indexes: []interfaces.Index{
		{
			Name:    "idx_admin_settings_user",
			Columns: []string{"user_id"},
			Unique:  true,
		},
	},
}

// AdminSettingFromRecord maps a raw repository record onto an AdminSetting.
func AdminSettingFromRecord(record map[string]interface{}) AdminSetting {
	a := AdminSetting{}
	if v, ok := record["id"].(string); ok {
		a.ID = v
	}
	if v, ok := record["user_id"].(string); ok {
		a.UserID = v
	}
	if v, ok := record["is_admin"].(bool); ok {
		a.IsAdmin = v
	}
	if v, ok := record["created_at"].(time.Time); ok {
		a.CreatedAt = v
	}
	return a
}
