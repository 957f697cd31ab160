package repository

import newsletterdomain "newsbox-backend/internal/newsletter/domain"

// WhitelistRepository defines the store operations for sender whitelists.
type WhitelistRepository interface {
	FindByUser(userID string) ([]*newsletterdomain.WhitelistEntry, error)
	// Upsert creates the entry if absent and is a no-op when the
	// (user_id, email) pair already exists.
	Upsert(entry *newsletterdomain.WhitelistEntry) error
	Delete(userID, email string) error
}
