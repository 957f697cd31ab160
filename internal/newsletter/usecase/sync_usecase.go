package usecase

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	accountdomain "newsbox-backend/internal/account/domain"
	accountrepo "newsbox-backend/internal/account/repository"
	accountusecase "newsbox-backend/internal/account/usecase"
	newsletterdomain "newsbox-backend/internal/newsletter/domain"
	newsletterdto "newsbox-backend/internal/newsletter/dto"
	"newsbox-backend/internal/newsletter/repository"
	"newsbox-backend/pkg/cache"
	"newsbox-backend/pkg/classifier"
	"newsbox-backend/pkg/config"
	"newsbox-backend/pkg/provider"

	"golang.org/x/oauth2"
)

// syncUsecase implements SyncUsecase interface
type syncUsecase struct {
	accountRepo    accountrepo.AccountRepository
	newsletterRepo repository.NewsletterRepository
	whitelistRepo  repository.WhitelistRepository
	ruleRepo       repository.RuleRepository
	providers      *provider.Registry
	ruleEngine     *RuleEngine
	cache          cache.Cache
	config         *config.Config

	// commitMu serializes imports per account so a manual run and a
	// scheduled run never interleave inserts for the same mailbox.
	mu       sync.Mutex
	commitMu map[string]*sync.Mutex
}

// NewSyncUsecase creates a new instance of syncUsecase
func NewSyncUsecase(
	accountRepo accountrepo.AccountRepository,
	newsletterRepo repository.NewsletterRepository,
	whitelistRepo repository.WhitelistRepository,
	ruleRepo repository.RuleRepository,
	providers *provider.Registry,
	ruleEngine *RuleEngine,
	c cache.Cache,
	cfg *config.Config,
) SyncUsecase {
	return &syncUsecase{
		accountRepo:    accountRepo,
		newsletterRepo: newsletterRepo,
		whitelistRepo:  whitelistRepo,
		ruleRepo:       ruleRepo,
		providers:      providers,
		ruleEngine:     ruleEngine,
		cache:          c,
		config:         cfg,
		commitMu:       make(map[string]*sync.Mutex),
	}
}

func (u *syncUsecase) Preview(ctx context.Context, userID, accountID string) (*newsletterdto.PreviewResponse, error) {
	account, err := u.ownedAccount(userID, accountID)
	if err != nil {
		return nil, err
	}

	candidates, err := u.fetchCandidates(ctx, account)
	if err != nil {
		return nil, err
	}

	entries, err := u.whitelistRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	whitelisted := whitelistSet(entries)

	groups := groupBySender(candidates, whitelisted)
	return &newsletterdto.PreviewResponse{
		AccountID:      account.ID,
		TotalProcessed: len(candidates),
		Senders:        groups,
	}, nil
}

func (u *syncUsecase) CommitImport(ctx context.Context, userID string, req *newsletterdto.ImportRequest) (*newsletterdto.ImportResult, error) {
	account, err := u.ownedAccount(userID, req.AccountID)
	if err != nil {
		return nil, err
	}

	for _, sender := range req.AcceptedSenders {
		entry := &newsletterdomain.WhitelistEntry{
			UserID: userID,
			Email:  sender,
		}
		if err := u.whitelistRepo.Upsert(entry); err != nil {
			return nil, err
		}
	}

	entries, err := u.whitelistRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	whitelisted := whitelistSet(entries)

	messageIDs, err := u.newsletterRepo.ListMessageIDsByAccount(account.ID)
	if err != nil {
		return nil, err
	}

	// Reuse preview data supplied by the caller; without it, fetch the
	// candidate set fresh from the provider.
	candidates := req.Candidates
	if len(candidates) == 0 {
		candidates, err = u.fetchCandidates(ctx, account)
		if err != nil {
			return nil, err
		}
	}

	admitted := admitCandidates(candidates, whitelisted, importedSet(messageIDs))
	skippedAtGate := len(candidates) - len(admitted)

	rules, err := u.ruleRepo.FindActiveByUser(userID)
	if err != nil {
		return nil, err
	}

	imported, skipped, failed := u.importCandidates(ctx, account, admitted, rules)
	return &newsletterdto.ImportResult{
		Imported: imported,
		Skipped:  skipped + skippedAtGate,
		Failed:   failed,
	}, nil
}

func (u *syncUsecase) RunManualSync(ctx context.Context, userID, accountID string) (*newsletterdto.SyncResult, error) {
	var accounts []*accountdomain.EmailAccount
	if accountID != "" {
		account, err := u.ownedAccount(userID, accountID)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	} else {
		var err error
		accounts, err = u.accountRepo.FindByUser(userID)
		if err != nil {
			return nil, err
		}
	}

	results := make([]newsletterdto.AccountSyncResult, len(accounts))
	var wg sync.WaitGroup
	for i, account := range accounts {
		wg.Add(1)
		go func(i int, account *accountdomain.EmailAccount) {
			defer wg.Done()
			results[i] = u.syncAccount(ctx, account)
		}(i, account)
	}
	wg.Wait()

	result := &newsletterdto.SyncResult{Accounts: results}
	for _, r := range results {
		result.Imported += r.Imported
	}
	return result, nil
}

func (u *syncUsecase) RunScheduledSync(ctx context.Context) {
	accounts, err := u.accountRepo.FindSyncEnabled()
	if err != nil {
		log.Printf("[Sync] Failed to load sync-enabled accounts: %v", err)
		return
	}

	now := time.Now()
	var wg sync.WaitGroup
	for _, account := range accounts {
		if !account.SyncDue(now) {
			continue
		}
		wg.Add(1)
		go func(account *accountdomain.EmailAccount) {
			defer wg.Done()
			r := u.syncAccount(ctx, account)
			if r.Error != "" {
				log.Printf("[Sync] Scheduled sync failed for account %s: %s", account.ID, r.Error)
			}
		}(account)
	}
	wg.Wait()
}

func (u *syncUsecase) Progress(userID, accountID string) (*newsletterdomain.SyncProgress, error) {
	if cached, ok := u.cache.Get(progressKey(userID, accountID)); ok {
		if progress, ok := cached.(*newsletterdomain.SyncProgress); ok {
			return progress, nil
		}
	}

	// Cache entry expired; re-derive an idle snapshot from stored counts.
	count, err := u.newsletterRepo.CountByAccount(accountID)
	if err != nil {
		return nil, err
	}
	return &newsletterdomain.SyncProgress{
		UserID:      userID,
		AccountID:   accountID,
		Status:      newsletterdomain.SyncStatusIdle,
		SyncedCount: int(count),
		UpdatedAt:   time.Now(),
	}, nil
}

// syncAccount runs the full pipeline for one account: fetch, classify,
// gate, import, apply rules. Errors are recorded on the account and in the
// progress snapshot rather than propagated, so sibling accounts are never
// affected.
func (u *syncUsecase) syncAccount(ctx context.Context, account *accountdomain.EmailAccount) newsletterdto.AccountSyncResult {
	result := newsletterdto.AccountSyncResult{
		AccountID: account.ID,
		Provider:  account.Provider,
		Email:     account.Email,
	}

	u.writeProgress(&newsletterdomain.SyncProgress{
		UserID:    account.UserID,
		AccountID: account.ID,
		Status:    newsletterdomain.SyncStatusSyncing,
	})

	entries, err := u.whitelistRepo.FindByUser(account.UserID)
	if err != nil {
		return u.failSync(account, result, err)
	}
	if len(entries) == 0 {
		// Nothing can be admitted without a whitelist; not an error.
		u.writeProgress(&newsletterdomain.SyncProgress{
			UserID:    account.UserID,
			AccountID: account.ID,
			Status:    newsletterdomain.SyncStatusSuccess,
			Percent:   100,
			Message:   "no whitelisted senders configured",
		})
		u.markSynced(account, "")
		return result
	}

	candidates, err := u.fetchCandidates(ctx, account)
	if err != nil {
		return u.failSync(account, result, err)
	}

	messageIDs, err := u.newsletterRepo.ListMessageIDsByAccount(account.ID)
	if err != nil {
		return u.failSync(account, result, err)
	}

	admitted := admitCandidates(candidates, whitelistSet(entries), importedSet(messageIDs))

	rules, err := u.ruleRepo.FindActiveByUser(account.UserID)
	if err != nil {
		return u.failSync(account, result, err)
	}

	imported, skipped, failed := u.importCandidates(ctx, account, admitted, rules)
	result.Imported = imported
	result.Skipped = skipped + (len(candidates) - len(admitted))

	u.markSynced(account, "")
	log.Printf("[Sync] Account %s (%s): %d imported, %d skipped, %d failed",
		account.Email, account.Provider, imported, result.Skipped, failed)
	return result
}

// importCandidates persists admitted candidates one by one, updating the
// progress snapshot as it goes. Duplicate inserts count as skipped; body
// fetch or insert failures count as failed and do not stop the run.
func (u *syncUsecase) importCandidates(ctx context.Context, account *accountdomain.EmailAccount, admitted []newsletterdomain.CandidateMessage, rules []*newsletterdomain.Rule) (imported, skipped, failed int) {
	mu := u.accountMutex(account.ID)
	mu.Lock()
	defer mu.Unlock()

	client, clientErr := u.providers.ForName(account.Provider)

	progress := &newsletterdomain.SyncProgress{
		UserID:    account.UserID,
		AccountID: account.ID,
		Status:    newsletterdomain.SyncStatusSyncing,
	}
	senderResults := make(map[string]*newsletterdomain.SenderResult)

	for i, candidate := range admitted {
		sender := strings.ToLower(candidate.SenderEmail)
		sr, ok := senderResults[sender]
		if !ok {
			sr = &newsletterdomain.SenderResult{Sender: sender, Status: newsletterdomain.SenderStatusSuccess}
			senderResults[sender] = sr
		}

		if !candidate.HasBody() && clientErr == nil {
			text, html, err := client.FetchBody(ctx, credsFor(account), candidate.MessageID, u.persistTokens(account))
			if err != nil {
				log.Printf("[Sync] Failed to fetch body for message %s: %v", candidate.MessageID, err)
				failed++
				sr.Status = newsletterdomain.SenderStatusError
				sr.Error = err.Error()
				continue
			}
			candidate.BodyText = text
			candidate.BodyHTML = html
		}

		n := newsletterFromCandidate(account, &candidate)
		u.ruleEngine.Apply(n, rules)

		err := u.newsletterRepo.Insert(n)
		switch {
		case err == nil:
			imported++
			sr.Count++
			if sr.Status == newsletterdomain.SenderStatusSkipped {
				sr.Status = newsletterdomain.SenderStatusSuccess
			}
		case errors.Is(err, repository.ErrDuplicateNewsletter):
			skipped++
			if sr.Count == 0 && sr.Status == newsletterdomain.SenderStatusSuccess {
				sr.Status = newsletterdomain.SenderStatusSkipped
			}
		default:
			log.Printf("[Sync] Failed to store newsletter %s: %v", candidate.MessageID, err)
			failed++
			sr.Status = newsletterdomain.SenderStatusError
			sr.Error = err.Error()
		}

		progress.SyncedCount = imported
		progress.TotalProcessed = i + 1
		progress.Percent = (i + 1) * 100 / len(admitted)
		progress.Senders = flattenSenderResults(senderResults)
		u.writeProgress(progress)
	}

	final := &newsletterdomain.SyncProgress{
		UserID:         account.UserID,
		AccountID:      account.ID,
		Status:         newsletterdomain.SyncStatusSuccess,
		Percent:        100,
		SyncedCount:    imported,
		TotalProcessed: len(admitted),
		Senders:        flattenSenderResults(senderResults),
	}
	if failed > 0 && imported == 0 && len(admitted) > 0 {
		final.Status = newsletterdomain.SyncStatusError
		final.Message = "no messages could be imported"
	}
	u.writeProgress(final)
	return imported, skipped, failed
}

// fetchCandidates lists and classifies messages for one account.
func (u *syncUsecase) fetchCandidates(ctx context.Context, account *accountdomain.EmailAccount) ([]newsletterdomain.CandidateMessage, error) {
	client, err := u.providers.ForName(account.Provider)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, u.config.ProviderTimeout)
	defer cancel()

	opts := provider.ListOptions{
		MaxResults: u.config.SyncMaxMessages,
		Since:      time.Now().AddDate(0, 0, -u.config.SyncLookbackDays),
	}

	candidates, err := client.ListCandidates(ctx, credsFor(account), opts, u.persistTokens(account))
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		result := classifier.Classify(&candidates[i])
		candidates[i].Confidence = result.Confidence
		candidates[i].Score = result.Score
	}
	return candidates, nil
}

func (u *syncUsecase) failSync(account *accountdomain.EmailAccount, result newsletterdto.AccountSyncResult, err error) newsletterdto.AccountSyncResult {
	result.Error = err.Error()

	message := err.Error()
	if errors.Is(err, provider.ErrAuthExpired) {
		// Sync stays off until the user reconnects the account.
		account.SyncEnabled = false
		message = "authorization expired, please reconnect the account"
	}
	u.markSyncFailed(account, message)

	u.writeProgress(&newsletterdomain.SyncProgress{
		UserID:    account.UserID,
		AccountID: account.ID,
		Status:    newsletterdomain.SyncStatusError,
		Message:   message,
	})
	return result
}

func (u *syncUsecase) markSynced(account *accountdomain.EmailAccount, syncError string) {
	now := time.Now()
	account.LastSyncedAt = &now
	account.LastSyncError = syncError
	if err := u.accountRepo.Update(account); err != nil {
		log.Printf("[Sync] Failed to update account %s after sync: %v", account.ID, err)
	}
}

func (u *syncUsecase) markSyncFailed(account *accountdomain.EmailAccount, syncError string) {
	account.LastSyncError = syncError
	if err := u.accountRepo.Update(account); err != nil {
		log.Printf("[Sync] Failed to record sync error for account %s: %v", account.ID, err)
	}
}

// persistTokens returns the refresh callback that stores any new token
// pair before the sync proceeds.
func (u *syncUsecase) persistTokens(account *accountdomain.EmailAccount) provider.TokenUpdateFunc {
	return func(tok *oauth2.Token) error {
		account.AccessToken = tok.AccessToken
		if tok.RefreshToken != "" {
			account.RefreshToken = tok.RefreshToken
		}
		account.TokenExpiresAt = tok.Expiry
		return u.accountRepo.UpdateTokens(account.ID, tok.AccessToken, tok.RefreshToken, tok.Expiry)
	}
}

// writeProgress stores a value copy so later mutations of the caller's
// snapshot never show through to concurrent Progress readers.
func (u *syncUsecase) writeProgress(progress *newsletterdomain.SyncProgress) {
	progress.UpdatedAt = time.Now()
	snapshot := *progress
	u.cache.Set(progressKey(progress.UserID, progress.AccountID), &snapshot, u.config.ProgressTTL)
}

func (u *syncUsecase) ownedAccount(userID, accountID string) (*accountdomain.EmailAccount, error) {
	account, err := u.accountRepo.FindByID(accountID)
	if err != nil {
		return nil, err
	}
	if account == nil || account.UserID != userID {
		return nil, accountusecase.ErrAccountNotFound
	}
	return account, nil
}

func (u *syncUsecase) accountMutex(accountID string) *sync.Mutex {
	u.mu.Lock()
	defer u.mu.Unlock()
	mu, ok := u.commitMu[accountID]
	if !ok {
		mu = &sync.Mutex{}
		u.commitMu[accountID] = mu
	}
	return mu
}

func progressKey(userID, accountID string) string {
	return "sync:progress:" + userID + ":" + accountID
}

func credsFor(account *accountdomain.EmailAccount) provider.Credentials {
	return provider.Credentials{
		AccessToken:  account.AccessToken,
		RefreshToken: account.RefreshToken,
		Expiry:       account.TokenExpiresAt,
	}
}

func newsletterFromCandidate(account *accountdomain.EmailAccount, c *newsletterdomain.CandidateMessage) *newsletterdomain.Newsletter {
	accountID := account.ID
	return &newsletterdomain.Newsletter{
		UserID:         account.UserID,
		EmailAccountID: &accountID,
		MessageID:      c.MessageID,
		Subject:        c.Subject,
		SenderName:     c.SenderName,
		SenderEmail:    strings.ToLower(c.SenderEmail),
		BodyText:       c.BodyText,
		BodyHTML:       c.BodyHTML,
		ReceivedAt:     c.ReceivedAt,
		ImportedAt:     time.Now(),
	}
}

// groupBySender buckets classified candidates per sender for the preview.
// A group carries its best candidate's tier and score; groups order by
// tier rank, then candidate count, then score, with the sender address as
// a final tiebreak for a stable listing.
func groupBySender(candidates []newsletterdomain.CandidateMessage, whitelisted map[string]bool) []newsletterdto.SenderGroup {
	bySender := make(map[string]*newsletterdto.SenderGroup)
	for _, c := range candidates {
		sender := strings.ToLower(c.SenderEmail)
		group, ok := bySender[sender]
		if !ok {
			group = &newsletterdto.SenderGroup{
				SenderEmail: sender,
				SenderName:  c.SenderName,
				Confidence:  c.Confidence,
				Score:       c.Score,
				Whitelisted: whitelisted[sender],
			}
			bySender[sender] = group
		}
		if c.Confidence.Rank() > group.Confidence.Rank() {
			group.Confidence = c.Confidence
		}
		if c.Score > group.Score {
			group.Score = c.Score
		}
		if group.SenderName == "" {
			group.SenderName = c.SenderName
		}
		group.Candidates = append(group.Candidates, c)
		group.Count = len(group.Candidates)
	}

	groups := make([]newsletterdto.SenderGroup, 0, len(bySender))
	for _, g := range bySender {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Confidence.Rank() != groups[j].Confidence.Rank() {
			return groups[i].Confidence.Rank() > groups[j].Confidence.Rank()
		}
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		if groups[i].Score != groups[j].Score {
			return groups[i].Score > groups[j].Score
		}
		return groups[i].SenderEmail < groups[j].SenderEmail
	})
	return groups
}

func flattenSenderResults(m map[string]*newsletterdomain.SenderResult) []newsletterdomain.SenderResult {
	out := make([]newsletterdomain.SenderResult, 0, len(m))
	for _, sr := range m {
		out = append(out, *sr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sender < out[j].Sender })
	return out
}
