package dto

import accountdomain "newsbox-backend/internal/account/domain"

type AuthURLResponse struct {
	URL string `json:"url"`
}

type UpdateSyncSettingsRequest struct {
	SyncEnabled   *bool `json:"sync_enabled"`
	SyncFrequency *int  `json:"sync_frequency" binding:"omitempty,min=5"`
}

type AccountsResponse struct {
	Accounts []*accountdomain.EmailAccount `json:"accounts"`
}
