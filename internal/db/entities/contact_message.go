package entities

import (
	"time"

	"github.com/techflow/techflow-backend/internal/db/interfaces"
)

// ContactMessage is an accepted contact-form submission, kept as an
// audit trail alongside the mailer forward.
type ContactMessage struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Email       string    `json:"email" db:"email"`
	Company     string    `json:"company,omitempty" db:"company"`
	Phone       string    `json:"phone,omitempty" db:"phone"`
	InquiryType string    `json:"inquiry_type,omitempty" db:"inquiry_type"`
	Message     string    `json:"message" db:"message"`
	UserAgent   string    `json:"user_agent,omitempty" db:"user_agent"`
	SubmittedAt string    `json:"submitted_at" db:"submitted_at"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ContactMessageSchema defines the database schema for contact_messages
var ContactMessageSchema = &interfaces.Schema{
	TableName: "contact_messages",
	Fields: map[string]interfaces.FieldSchema{
		"id": {
			Type:       "string",
			PrimaryKey: true,
		},
		"name": {
			Type: "string",
		},
		"email": {
			Type: "string",
		},
		"company": {
			Type:     "string",
			Nullable: true,
		},
		"phone": {
			Type:     "string",
			Nullable: true,
		},
		"inquiry_type": {
			Type:     "string",
			Nullable: true,
		},
		"message": {
			Type: "string",
		},
		"user_agent": {
			Type:     "string",
			Nullable: true,
		},
		"submitted_at": {
			Type:     "string",
			Nullable: true,
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
			Name:    "idx_contact_messages_created",
			Columns: []string{"created_at"},
		},
	},
}
