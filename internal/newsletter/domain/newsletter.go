package domain

import (
	"time"

	"gorm.io/gorm"
)

// Newsletter is one imported message. The (email_account_id, message_id)
// unique index is the dedup key: a second sync observing the same provider
// id is a no-op.
type Newsletter struct {
	ID             string  `json:"id" gorm:"primaryKey"`
	UserID         string  `json:"user_id" gorm:"index;not null"`
	EmailAccountID *string `json:"email_account_id" gorm:"index:idx_account_message,unique"`
	MessageID      string  `json:"message_id" gorm:"index:idx_account_message,unique;not null"`

	Subject     string `json:"subject"`
	SenderName  string `json:"sender_name"`
	SenderEmail string `json:"sender_email" gorm:"index"`
	BodyText    string `json:"body_text" gorm:"type:text"`
	BodyHTML    string `json:"body_html" gorm:"type:text"`

	IsRead     bool   `json:"is_read" gorm:"default:false"`
	IsStarred  bool   `json:"is_starred" gorm:"default:false"`
	IsArchived bool   `json:"is_archived" gorm:"default:false"`
	Category   string `json:"category" gorm:"default:''"`
	Priority   string `json:"priority" gorm:"default:''"`
	Folder     string `json:"folder" gorm:"default:''"`

	ReceivedAt time.Time      `json:"received_at"`
	ImportedAt time.Time      `json:"imported_at"`
	ArchivedAt *time.Time     `json:"archived_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}
