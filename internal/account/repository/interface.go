package repository

import (
	"time"

	accountdomain "newsbox-backend/internal/account/domain"
)

// AccountRepository defines the store operations for email accounts.
type AccountRepository interface {
	Create(account *accountdomain.EmailAccount) error
	FindByID(id string) (*accountdomain.EmailAccount, error)
	FindByUser(userID string) ([]*accountdomain.EmailAccount, error)
	FindByUserProviderEmail(userID, provider, email string) (*accountdomain.EmailAccount, error)
	// UpdateTokens persists a refreshed or re-issued token pair in place.
	UpdateTokens(id, accessToken, refreshToken string, expiresAt time.Time) error
	Update(account *accountdomain.EmailAccount) error
	Delete(id string) error
	// FindSyncEnabled returns every account eligible for scheduled sync.
	FindSyncEnabled() ([]*accountdomain.EmailAccount, error)
}
