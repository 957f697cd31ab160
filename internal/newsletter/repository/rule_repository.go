package repository

import (
	"errors"

	newsletterdomain "newsbox-backend/internal/newsletter/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ruleRepository implements RuleRepository interface
type ruleRepository struct {
	db *gorm.DB
}

// NewRuleRepository creates a new instance of ruleRepository
func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{
		db: db,
	}
}

func (r *ruleRepository) Create(rule *newsletterdomain.Rule) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	return r.db.Create(rule).Error
}

func (r *ruleRepository) FindByID(userID, id string) (*newsletterdomain.Rule, error) {
	var rule newsletterdomain.Rule
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *ruleRepository) FindByUser(userID string) ([]*newsletterdomain.Rule, error) {
	var rules []*newsletterdomain.Rule
	err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *ruleRepository) FindActiveByUser(userID string) ([]*newsletterdomain.Rule, error) {
	var rules []*newsletterdomain.Rule
	err := r.db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at ASC").Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *ruleRepository) Update(rule *newsletterdomain.Rule) error {
	return r.db.Save(rule).Error
}

func (r *ruleRepository) Delete(userID, id string) error {
	return r.db.Where("id = ? AND user_id = ?", id, userID).
		Delete(&newsletterdomain.Rule{}).Error
}
