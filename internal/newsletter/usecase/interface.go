package usecase

import (
	"context"
	"errors"

	newsletterdomain "newsbox-backend/internal/newsletter/domain"
	newsletterdto "newsbox-backend/internal/newsletter/dto"
)

var (
	ErrNewsletterNotFound = errors.New("newsletter not found")
	ErrRuleNotFound       = errors.New("rule not found")
)

// SyncUsecase orchestrates provider fetching, classification, whitelist
// gating and import for the user's connected accounts.
type SyncUsecase interface {
	// Preview fetches candidates for one account and groups them by
	// sender without importing anything.
	Preview(ctx context.Context, userID, accountID string) (*newsletterdto.PreviewResponse, error)

	// CommitImport whitelists the accepted senders and imports their
	// candidates from a prior preview.
	CommitImport(ctx context.Context, userID string, req *newsletterdto.ImportRequest) (*newsletterdto.ImportResult, error)

	// RunManualSync syncs the user's connected accounts, or just one when
	// accountID is non-empty. Accounts run concurrently; one failing
	// account does not stop the others.
	RunManualSync(ctx context.Context, userID, accountID string) (*newsletterdto.SyncResult, error)

	// RunScheduledSync syncs every due account across all users.
	RunScheduledSync(ctx context.Context)

	// Progress reports the cached sync snapshot for one account, falling
	// back to stored counts when the cache entry expired.
	Progress(userID, accountID string) (*newsletterdomain.SyncProgress, error)
}

// NewsletterUsecase covers the read/manage surface over imported
// newsletters plus the whitelist, rule and category settings.
type NewsletterUsecase interface {
	List(userID string, filter newsletterdto.ListFilter) ([]*newsletterdomain.Newsletter, int64, error)
	GetByID(userID, id string) (*newsletterdomain.Newsletter, error)
	Search(userID, query string, limit int) ([]*newsletterdomain.Newsletter, error)
	MarkRead(userID, id string, read bool) error
	ToggleStar(userID, id string) (*newsletterdomain.Newsletter, error)
	Archive(userID, id string, archived bool) error
	Update(userID, id string, req *newsletterdto.UpdateNewsletterRequest) (*newsletterdomain.Newsletter, error)
	Delete(userID, id string) error

	ListWhitelist(userID string) ([]*newsletterdomain.WhitelistEntry, error)
	AddWhitelist(userID string, req *newsletterdto.WhitelistRequest) error
	RemoveWhitelist(userID, email string) error

	ListRules(userID string) ([]*newsletterdomain.Rule, error)
	CreateRule(userID string, req *newsletterdto.RuleRequest) (*newsletterdomain.Rule, error)
	UpdateRule(userID, id string, req *newsletterdto.RuleRequest) (*newsletterdomain.Rule, error)
	DeleteRule(userID, id string) error
	ApplyRules(userID, newsletterID string) (*newsletterdomain.Newsletter, error)

	ListCategories(userID string) ([]*newsletterdomain.Category, error)
	CreateCategory(userID string, req *newsletterdto.CategoryRequest) (*newsletterdomain.Category, error)
	DeleteCategory(userID, id string) error
}
