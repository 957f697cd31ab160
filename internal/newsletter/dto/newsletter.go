package dto

import (
	newsletterdomain "newsbox-backend/internal/newsletter/domain"
)

// SenderGroup is one sender's candidates in a preview, ordered so the
// highest-confidence senders surface first.
type SenderGroup struct {
	SenderEmail string                              `json:"sender_email"`
	SenderName  string                              `json:"sender_name"`
	Confidence  newsletterdomain.Confidence         `json:"confidence"`
	Score       float64                             `json:"score"`
	Count       int                                 `json:"count"`
	Whitelisted bool                                `json:"whitelisted"`
	Candidates  []newsletterdomain.CandidateMessage `json:"candidates"`
}

type PreviewResponse struct {
	AccountID      string        `json:"account_id"`
	TotalProcessed int           `json:"total_processed"`
	Senders        []SenderGroup `json:"senders"`
}

// ImportRequest commits a preview: the accepted senders are whitelisted and
// their candidates imported in one step.
type ImportRequest struct {
	AccountID       string                              `json:"account_id" binding:"required"`
	AcceptedSenders []string                            `json:"accepted_senders" binding:"required"`
	Candidates      []newsletterdomain.CandidateMessage `json:"candidates"`
}

type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// AccountSyncResult is one account's outcome within a sync run.
type AccountSyncResult struct {
	AccountID string `json:"account_id"`
	Provider  string `json:"provider"`
	Email     string `json:"email"`
	Imported  int    `json:"imported"`
	Skipped   int    `json:"skipped"`
	Error     string `json:"error,omitempty"`
}

type SyncResult struct {
	Accounts []AccountSyncResult `json:"accounts"`
	Imported int                 `json:"imported"`
}

// ListFilter narrows a newsletter listing, bound from query parameters.
type ListFilter struct {
	Category   string
	Folder     string
	UnreadOnly bool
	Archived   *bool
	Limit      int
	Offset     int
}

type NewslettersResponse struct {
	Newsletters []*newsletterdomain.Newsletter `json:"newsletters"`
	Limit       int                            `json:"limit"`
	Offset      int                            `json:"offset"`
	Total       int64                          `json:"total"`
}

type UpdateNewsletterRequest struct {
	Category *string `json:"category"`
	Priority *string `json:"priority"`
	Folder   *string `json:"folder"`
}

type WhitelistRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
}

type WhitelistResponse struct {
	Entries []*newsletterdomain.WhitelistEntry `json:"entries"`
}

type RuleRequest struct {
	Name           string `json:"name" binding:"required"`
	ConditionType  string `json:"condition_type" binding:"required,oneof=sender subject content"`
	ConditionValue string `json:"condition_value" binding:"required"`
	ActionType     string `json:"action_type" binding:"required,oneof=category priority folder"`
	ActionValue    string `json:"action_value" binding:"required"`
	IsActive       *bool  `json:"is_active"`
}

type RulesResponse struct {
	Rules []*newsletterdomain.Rule `json:"rules"`
}

type CategoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
	Order int    `json:"order"`
}

type CategoriesResponse struct {
	Categories []*newsletterdomain.Category `json:"categories"`
}
