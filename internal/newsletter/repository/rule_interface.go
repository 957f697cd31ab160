package repository

import (
	newsletterdomain "newsbox-backend/internal/newsletter/domain"
)

type RuleRepository interface {
	Create(rule *newsletterdomain.Rule) error
	FindByID(userID, id string) (*newsletterdomain.Rule, error)
	FindByUser(userID string) ([]*newsletterdomain.Rule, error)
	FindActiveByUser(userID string) ([]*newsletterdomain.Rule, error)
	Update(rule *newsletterdomain.Rule) error
	Delete(userID, id string) error
}

type CategoryRepository interface {
	Create(category *newsletterdomain.Category) error
	FindByUser(userID string) ([]*newsletterdomain.Category, error)
	Delete(userID, id string) error
}
