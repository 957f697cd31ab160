package domain

import "time"

// Rule condition and action vocabularies.
const (
	ConditionSender  = "sender"
	ConditionSubject = "subject"
	ConditionContent = "content"

	ActionCategory = "category"
	ActionPriority = "priority"
	ActionFolder   = "folder"
)

// Rule is a user-defined condition/action pair applied to newsletters after
// import. Rules are evaluated in creation order; a later matching rule may
// overwrite fields set by an earlier one.
type Rule struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	UserID         string    `json:"user_id" gorm:"index;not null"`
	Name           string    `json:"name" gorm:"not null"`
	ConditionType  string    `json:"condition_type" gorm:"not null"`
	ConditionValue string    `json:"condition_value" gorm:"not null"`
	ActionType     string    `json:"action_type" gorm:"not null"`
	ActionValue    string    `json:"action_value" gorm:"not null"`
	IsActive       bool      `json:"is_active" gorm:"default:true"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Category is a user-owned label a rule action (or the user) can assign to
// a newsletter.
type Category struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index:idx_user_category,unique;not null"`
	Name      string    `json:"name" gorm:"index:idx_user_category,unique;not null"`
	Color     string    `json:"color" gorm:"default:''"`
	Order     int       `json:"order" gorm:"column:display_order;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
