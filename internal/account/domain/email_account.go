package domain

import "time"

// EmailAccount is one connected external mailbox. Unique per
// (user_id, provider, email); a re-connection updates tokens in place
// rather than inserting a second row.
type EmailAccount struct {
	ID       string `json:"id" gorm:"primaryKey"`
	UserID   string `json:"user_id" gorm:"index:idx_user_provider_email,unique;not null"`
	Provider string `json:"provider" gorm:"index:idx_user_provider_email,unique;not null"` // "gmail" or "outlook"
	Email    string `json:"email" gorm:"index:idx_user_provider_email,unique;not null"`

	AccessToken    string    `json:"-" gorm:"type:text"`
	RefreshToken   string    `json:"-" gorm:"type:text"`
	TokenExpiresAt time.Time `json:"token_expires_at"`

	SyncEnabled   bool       `json:"sync_enabled" gorm:"default:true"`
	SyncFrequency int        `json:"sync_frequency" gorm:"default:60"` // minutes
	LastSyncedAt  *time.Time `json:"last_synced_at,omitempty"`
	LastSyncError string     `json:"last_sync_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SyncDue reports whether a scheduled run should pick this account up.
func (a *EmailAccount) SyncDue(now time.Time) bool {
	if !a.SyncEnabled {
		return false
	}
	if a.LastSyncedAt == nil {
		return true
	}
	interval := time.Duration(a.SyncFrequency) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}
	return now.Sub(*a.LastSyncedAt) >= interval
}
