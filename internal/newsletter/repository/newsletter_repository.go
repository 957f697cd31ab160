package repository

import (
	"errors"
	"time"

	newsletterdomain "newsbox-backend/internal/newsletter/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrDuplicateNewsletter marks an insert rejected by the dedup key. It is
// an expected idempotent outcome, not a failure.
var ErrDuplicateNewsletter = errors.New("newsletter already imported")

// newsletterRepository implements NewsletterRepository interface
type newsletterRepository struct {
	db *gorm.DB
}

// NewNewsletterRepository creates a new instance of newsletterRepository
func NewNewsletterRepository(db *gorm.DB) NewsletterRepository {
	return &newsletterRepository{
		db: db,
	}
}

func (r *newsletterRepository) Insert(newsletter *newsletterdomain.Newsletter) error {
	if newsletter.ID == "" {
		newsletter.ID = uuid.New().String()
	}
	now := time.Now()
	if newsletter.ImportedAt.IsZero() {
		newsletter.ImportedAt = now
	}
	newsletter.CreatedAt = now
	newsletter.UpdatedAt = now

	err := r.db.Create(newsletter).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateNewsletter
	}
	return err
}

func (r *newsletterRepository) FindByID(userID, id string) (*newsletterdomain.Newsletter, error) {
	var newsletter newsletterdomain.Newsletter
	err := r.db.Where("user_id = ? AND id = ?", userID, id).First(&newsletter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &newsletter, nil
}

func (r *newsletterRepository) FindByAccountAndMessageID(accountID, messageID string) (*newsletterdomain.Newsletter, error) {
	var newsletter newsletterdomain.Newsletter
	err := r.db.Where("email_account_id = ? AND message_id = ?", accountID, messageID).First(&newsletter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &newsletter, nil
}

func (r *newsletterRepository) ListMessageIDsByAccount(accountID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&newsletterdomain.Newsletter{}).
		Where("email_account_id = ?", accountID).
		Pluck("message_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *newsletterRepository) ListByUser(userID string, filter NewsletterFilter) ([]*newsletterdomain.Newsletter, int64, error) {
	query := r.db.Model(&newsletterdomain.Newsletter{}).Where("user_id = ?", userID)

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Folder != "" {
		query = query.Where("folder = ?", filter.Folder)
	}
	if filter.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if filter.Archived != nil {
		query = query.Where("is_archived = ?", *filter.Archived)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	var newsletters []*newsletterdomain.Newsletter
	err := query.Order("received_at DESC").Limit(limit).Offset(filter.Offset).Find(&newsletters).Error
	if err != nil {
		return nil, 0, err
	}
	return newsletters, total, nil
}

func (r *newsletterRepository) UpdateFields(id string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	return r.db.Model(&newsletterdomain.Newsletter{}).Where("id = ?", id).Updates(fields).Error
}

func (r *newsletterRepository) CountByAccount(accountID string) (int64, error) {
	var count int64
	err := r.db.Model(&newsletterdomain.Newsletter{}).Where("email_account_id = ?", accountID).Count(&count).Error
	return count, err
}

func (r *newsletterRepository) DetachAccount(accountID string) error {
	return r.db.Model(&newsletterdomain.Newsletter{}).
		Where("email_account_id = ?", accountID).
		Updates(map[string]interface{}{"email_account_id": nil, "updated_at": time.Now()}).Error
}

func (r *newsletterRepository) Delete(userID, id string) error {
	return r.db.Where("user_id = ? AND id = ?", userID, id).Delete(&newsletterdomain.Newsletter{}).Error
}

func (r *newsletterRepository) PurgeArchivedBefore(cutoff time.Time) (int64, error) {
	result := r.db.Unscoped().
		Where("is_archived = ? AND archived_at < ?", true, cutoff).
		Delete(&newsletterdomain.Newsletter{})
	return result.RowsAffected, result.Error
}
