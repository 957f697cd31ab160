package domain

import (
	"strings"
	"time"
)

// WhitelistEntry is a sender address the user approved for import. Unique
// per (user_id, email). Created explicitly or when a sender is accepted
// during preview.
type WhitelistEntry struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index:idx_user_sender,unique;not null"`
	Email     string    `json:"email" gorm:"index:idx_user_sender,unique;not null"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DomainOf derives the domain part of a sender address. Returns "" when the
// address has no @.
func DomainOf(email string) string {
	if idx := strings.LastIndex(email, "@"); idx >= 0 && idx < len(email)-1 {
		return strings.ToLower(email[idx+1:])
	}
	return ""
}
