package repository

import (
	"time"

	newsletterdomain "newsbox-backend/internal/newsletter/domain"
)

// NewsletterFilter narrows newsletter listings.
type NewsletterFilter struct {
	Category   string
	Folder     string
	UnreadOnly bool
	Archived   *bool
	Limit      int
	Offset     int
}

// NewsletterRepository defines the store operations for imported newsletters.
type NewsletterRepository interface {
	// Insert persists a newsletter. A duplicate (email_account_id,
	// message_id) pair returns ErrDuplicateNewsletter.
	Insert(newsletter *newsletterdomain.Newsletter) error
	FindByID(userID, id string) (*newsletterdomain.Newsletter, error)
	FindByAccountAndMessageID(accountID, messageID string) (*newsletterdomain.Newsletter, error)
	// ListMessageIDsByAccount returns the imported provider ids for the
	// dedup check at the start of a sync run.
	ListMessageIDsByAccount(accountID string) ([]string, error)
	ListByUser(userID string, filter NewsletterFilter) ([]*newsletterdomain.Newsletter, int64, error)
	UpdateFields(id string, fields map[string]interface{}) error
	CountByAccount(accountID string) (int64, error)
	// DetachAccount nulls the account reference on every newsletter of a
	// disconnected account so rows are never left dangling.
	DetachAccount(accountID string) error
	Delete(userID, id string) error
	// PurgeArchivedBefore hard-deletes archived newsletters older than the
	// retention cutoff.
	PurgeArchivedBefore(cutoff time.Time) (int64, error)
}
