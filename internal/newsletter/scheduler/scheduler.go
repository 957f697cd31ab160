package scheduler

import (
	"context"
	"log"
	"time"

	"newsbox-backend/internal/newsletter/repository"
	"newsbox-backend/internal/newsletter/usecase"
)

const archivedRetention = 15 * 24 * time.Hour

// SyncScheduler drives the background sync runs and the archived
// newsletter retention purge.
type SyncScheduler struct {
	syncUsecase    usecase.SyncUsecase
	newsletterRepo repository.NewsletterRepository
	syncInterval   time.Duration
	purgeInterval  time.Duration
	stopChan       chan struct{}
}

// NewSyncScheduler creates a new scheduler
func NewSyncScheduler(syncUsecase usecase.SyncUsecase, newsletterRepo repository.NewsletterRepository) *SyncScheduler {
	return &SyncScheduler{
		syncUsecase:    syncUsecase,
		newsletterRepo: newsletterRepo,
		syncInterval:   1 * time.Minute, // Check for due accounts every minute
		purgeInterval:  1 * time.Hour,
		stopChan:       make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *SyncScheduler) Start() {
	log.Println("[SyncScheduler] Starting background sync scheduler (interval: 1 minute)")

	go func() {
		syncTicker := time.NewTicker(s.syncInterval)
		defer syncTicker.Stop()
		purgeTicker := time.NewTicker(s.purgeInterval)
		defer purgeTicker.Stop()

		// Run an initial purge on start so a long-stopped server catches up
		s.purgeArchived()

		for {
			select {
			case <-syncTicker.C:
				s.syncUsecase.RunScheduledSync(context.Background())
			case <-purgeTicker.C:
				s.purgeArchived()
			case <-s.stopChan:
				log.Println("[SyncScheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *SyncScheduler) Stop() {
	close(s.stopChan)
}

// purgeArchived hard-deletes archived newsletters past the retention window.
func (s *SyncScheduler) purgeArchived() {
	cutoff := time.Now().Add(-archivedRetention)
	purged, err := s.newsletterRepo.PurgeArchivedBefore(cutoff)
	if err != nil {
		log.Printf("[SyncScheduler] Error purging archived newsletters: %v", err)
		return
	}
	if purged > 0 {
		log.Printf("[SyncScheduler] Purged %d archived newsletters older than %s", purged, cutoff.Format("2006-01-02"))
	}
}
