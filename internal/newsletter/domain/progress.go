package domain

import "time"

// SyncStatus is the per-account sync state machine:
// idle -> syncing -> success | error.
type SyncStatus string

const (
	SyncStatusIdle    SyncStatus = "idle"
	SyncStatusSyncing SyncStatus = "syncing"
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusError   SyncStatus = "error"
)

// Per-sender outcome within one sync run.
const (
	SenderStatusSuccess = "success"
	SenderStatusError   = "error"
	SenderStatusSkipped = "skipped"
)

// SenderResult records the outcome for one sender within a sync run.
type SenderResult struct {
	Sender string `json:"sender"`
	Status string `json:"status"`
	Count  int    `json:"count"`
	Error  string `json:"error,omitempty"`
}

// SyncProgress is the cache-resident snapshot observed by UI polling. Not
// durable; approximate counts are re-derived from the store when the cache
// entry has expired.
type SyncProgress struct {
	UserID         string         `json:"user_id"`
	AccountID      string         `json:"account_id"`
	Status         SyncStatus     `json:"status"`
	Percent        int            `json:"percent"`
	SyncedCount    int            `json:"synced_count"`
	TotalProcessed int            `json:"total_processed"`
	Senders        []SenderResult `json:"senders,omitempty"`
	Message        string         `json:"message,omitempty"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
