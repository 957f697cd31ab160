package repository

import (
	"strings"
	"time"

	newsletterdomain "newsbox-backend/internal/newsletter/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// whitelistRepository implements WhitelistRepository interface
type whitelistRepository struct {
	db *gorm.DB
}

// NewWhitelistRepository creates a new instance of whitelistRepository
func NewWhitelistRepository(db *gorm.DB) WhitelistRepository {
	return &whitelistRepository{
		db: db,
	}
}

func (r *whitelistRepository) FindByUser(userID string) ([]*newsletterdomain.WhitelistEntry, error) {
	var entries []*newsletterdomain.WhitelistEntry
	err := r.db.Where("user_id = ?", userID).Order("email ASC").Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *whitelistRepository) Upsert(entry *newsletterdomain.WhitelistEntry) error {
	entry.Email = strings.ToLower(strings.TrimSpace(entry.Email))
	if entry.Domain == "" {
		entry.Domain = newsletterdomain.DomainOf(entry.Email)
	}

	now := time.Now()
	var existing newsletterdomain.WhitelistEntry
	result := r.db.Where("user_id = ? AND email = ?", entry.UserID, entry.Email).
		FirstOrCreate(&existing, newsletterdomain.WhitelistEntry{
			ID:        uuid.New().String(),
			UserID:    entry.UserID,
			Email:     entry.Email,
			Name:      entry.Name,
			Domain:    entry.Domain,
			CreatedAt: now,
			UpdatedAt: now,
		})
	return result.Error
}

func (r *whitelistRepository) Delete(userID, email string) error {
	return r.db.Where("user_id = ? AND email = ?", userID, strings.ToLower(email)).
		Delete(&newsletterdomain.WhitelistEntry{}).Error
}
