package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	accountdomain "newsbox-backend/internal/account/domain"
	newsletterdomain "newsbox-backend/internal/newsletter/domain"
	newsletterdto "newsbox-backend/internal/newsletter/dto"
	"newsbox-backend/internal/newsletter/repository"
	"newsbox-backend/pkg/cache"
	"newsbox-backend/pkg/config"
	"newsbox-backend/pkg/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*accountdomain.EmailAccount
}

func newFakeAccountRepo(accounts ...*accountdomain.EmailAccount) *fakeAccountRepo {
	r := &fakeAccountRepo{accounts: make(map[string]*accountdomain.EmailAccount)}
	for _, a := range accounts {
		r.accounts[a.ID] = a
	}
	return r
}

func (r *fakeAccountRepo) Create(account *accountdomain.EmailAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.ID] = account
	return nil
}

func (r *fakeAccountRepo) FindByID(id string) (*accountdomain.EmailAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts[id], nil
}

func (r *fakeAccountRepo) FindByUser(userID string) ([]*accountdomain.EmailAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*accountdomain.EmailAccount
	for _, a := range r.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) FindByUserProviderEmail(userID, providerName, email string) (*accountdomain.EmailAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.UserID == userID && a.Provider == providerName && a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) UpdateTokens(id, accessToken, refreshToken string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		a.AccessToken = accessToken
		if refreshToken != "" {
			a.RefreshToken = refreshToken
		}
		a.TokenExpiresAt = expiresAt
	}
	return nil
}

func (r *fakeAccountRepo) Update(account *accountdomain.EmailAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.ID] = account
	return nil
}

func (r *fakeAccountRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.accounts, id)
	return nil
}

func (r *fakeAccountRepo) FindSyncEnabled() ([]*accountdomain.EmailAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*accountdomain.EmailAccount
	for _, a := range r.accounts {
		if a.SyncEnabled {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeNewsletterRepo struct {
	mu     sync.Mutex
	stored map[string]*newsletterdomain.Newsletter // keyed by accountID+messageID
}

func newFakeNewsletterRepo() *fakeNewsletterRepo {
	return &fakeNewsletterRepo{stored: make(map[string]*newsletterdomain.Newsletter)}
}

func dedupKey(accountID, messageID string) string {
	return accountID + "/" + messageID
}

func (r *fakeNewsletterRepo) Insert(n *newsletterdomain.Newsletter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	accountID := ""
	if n.EmailAccountID != nil {
		accountID = *n.EmailAccountID
	}
	key := dedupKey(accountID, n.MessageID)
	if _, exists := r.stored[key]; exists {
		return repository.ErrDuplicateNewsletter
	}
	r.stored[key] = n
	return nil
}

func (r *fakeNewsletterRepo) FindByID(userID, id string) (*newsletterdomain.Newsletter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.stored {
		if n.ID == id && n.UserID == userID {
			return n, nil
		}
	}
	return nil, nil
}

func (r *fakeNewsletterRepo) FindByAccountAndMessageID(accountID, messageID string) (*newsletterdomain.Newsletter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stored[dedupKey(accountID, messageID)], nil
}

func (r *fakeNewsletterRepo) ListMessageIDsByAccount(accountID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for key, n := range r.stored {
		if strings.HasPrefix(key, accountID+"/") {
			ids = append(ids, n.MessageID)
		}
	}
	return ids, nil
}

func (r *fakeNewsletterRepo) ListByUser(userID string, filter repository.NewsletterFilter) ([]*newsletterdomain.Newsletter, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*newsletterdomain.Newsletter
	for _, n := range r.stored {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeNewsletterRepo) UpdateFields(id string, fields map[string]interface{}) error {
	return nil
}

func (r *fakeNewsletterRepo) CountByAccount(accountID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for key := range r.stored {
		if strings.HasPrefix(key, accountID+"/") {
			count++
		}
	}
	return count, nil
}

func (r *fakeNewsletterRepo) DetachAccount(accountID string) error { return nil }

func (r *fakeNewsletterRepo) Delete(userID, id string) error { return nil }

func (r *fakeNewsletterRepo) PurgeArchivedBefore(cutoff time.Time) (int64, error) { return 0, nil }

type fakeWhitelistRepo struct {
	mu      sync.Mutex
	entries map[string][]*newsletterdomain.WhitelistEntry
}

func newFakeWhitelistRepo() *fakeWhitelistRepo {
	return &fakeWhitelistRepo{entries: make(map[string][]*newsletterdomain.WhitelistEntry)}
}

func (r *fakeWhitelistRepo) FindByUser(userID string) ([]*newsletterdomain.WhitelistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[userID], nil
}

func (r *fakeWhitelistRepo) Upsert(entry *newsletterdomain.WhitelistEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.Email = strings.ToLower(entry.Email)
	for _, e := range r.entries[entry.UserID] {
		if e.Email == entry.Email {
			return nil
		}
	}
	r.entries[entry.UserID] = append(r.entries[entry.UserID], entry)
	return nil
}

func (r *fakeWhitelistRepo) Delete(userID, email string) error {
	return nil
}

type fakeRuleRepo struct {
	rules []*newsletterdomain.Rule
}

func (r *fakeRuleRepo) Create(rule *newsletterdomain.Rule) error { return nil }
func (r *fakeRuleRepo) FindByID(userID, id string) (*newsletterdomain.Rule, error) {
	return nil, nil
}
func (r *fakeRuleRepo) FindByUser(userID string) ([]*newsletterdomain.Rule, error) {
	return r.rules, nil
}
func (r *fakeRuleRepo) FindActiveByUser(userID string) ([]*newsletterdomain.Rule, error) {
	return r.rules, nil
}
func (r *fakeRuleRepo) Update(rule *newsletterdomain.Rule) error { return nil }
func (r *fakeRuleRepo) Delete(userID, id string) error           { return nil }

type fakeProviderClient struct {
	name       provider.Name
	candidates []newsletterdomain.CandidateMessage
	listErr    error
	bodyErrs   map[string]error
}

func (c *fakeProviderClient) Name() provider.Name    { return c.name }
func (c *fakeProviderClient) AuthURL(string) string  { return "https://consent.example.com" }
func (c *fakeProviderClient) Exchange(context.Context, string) (*provider.TokenPair, error) {
	return &provider.TokenPair{}, nil
}
func (c *fakeProviderClient) UserInfo(context.Context, string) (string, error) {
	return "user@example.com", nil
}
func (c *fakeProviderClient) ListCandidates(ctx context.Context, creds provider.Credentials, opts provider.ListOptions, onRefresh provider.TokenUpdateFunc) ([]newsletterdomain.CandidateMessage, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	return c.candidates, nil
}
func (c *fakeProviderClient) FetchBody(ctx context.Context, creds provider.Credentials, messageID string, onRefresh provider.TokenUpdateFunc) (string, string, error) {
	if err, ok := c.bodyErrs[messageID]; ok {
		return "", "", err
	}
	return "plain body", "<p>html body</p>", nil
}

// --- harness ---

type syncFixture struct {
	accounts    *fakeAccountRepo
	newsletters *fakeNewsletterRepo
	whitelist   *fakeWhitelistRepo
	rules       *fakeRuleRepo
	cache       cache.Cache
	usecase     SyncUsecase
}

func newSyncFixture(t *testing.T, clients []provider.Client, accounts ...*accountdomain.EmailAccount) *syncFixture {
	t.Helper()

	accountRepo := newFakeAccountRepo(accounts...)
	newsletterRepo := newFakeNewsletterRepo()
	whitelistRepo := newFakeWhitelistRepo()
	ruleRepo := &fakeRuleRepo{}
	memCache := cache.NewMemoryCache()
	t.Cleanup(memCache.Close)

	cfg := &config.Config{
		SyncMaxMessages:  100,
		SyncLookbackDays: 30,
		ProviderTimeout:  5 * time.Second,
		ProgressTTL:      time.Minute,
	}

	engine := NewRuleEngine(ruleRepo, newsletterRepo)
	uc := NewSyncUsecase(accountRepo, newsletterRepo, whitelistRepo, ruleRepo, provider.NewRegistry(clients...), engine, memCache, cfg)

	return &syncFixture{
		accounts:    accountRepo,
		newsletters: newsletterRepo,
		whitelist:   whitelistRepo,
		rules:       ruleRepo,
		cache:       memCache,
		usecase:     uc,
	}
}

func gmailAccount(id, userID string) *accountdomain.EmailAccount {
	return &accountdomain.EmailAccount{
		ID:          id,
		UserID:      userID,
		Provider:    "gmail",
		Email:       "user@gmail.com",
		SyncEnabled: true,
	}
}

func newsLetterCandidates() []newsletterdomain.CandidateMessage {
	return []newsletterdomain.CandidateMessage{
		{
			MessageID:   "m1",
			SenderEmail: "news@golangweekly.com",
			SenderName:  "Golang Weekly",
			Subject:     "Issue #500",
			BodyText:    "body",
			Headers:     map[string]string{"List-Unsubscribe": "<mailto:unsub@golangweekly.com>"},
			ReceivedAt:  time.Now(),
		},
		{
			MessageID:   "m2",
			SenderEmail: "news@golangweekly.com",
			SenderName:  "Golang Weekly",
			Subject:     "Issue #501",
			BodyText:    "body",
			Headers:     map[string]string{"List-Unsubscribe": "<mailto:unsub@golangweekly.com>"},
			ReceivedAt:  time.Now(),
		},
		{
			MessageID:   "m3",
			SenderEmail: "colleague@work.example.com",
			SenderName:  "A Colleague",
			Subject:     "Lunch?",
			BodyText:    "body",
			ReceivedAt:  time.Now(),
		},
	}
}

func bodilessCandidate(id, sender string) newsletterdomain.CandidateMessage {
	return newsletterdomain.CandidateMessage{
		MessageID:   id,
		SenderEmail: sender,
		Subject:     "Weekly digest",
		Headers:     map[string]string{"List-Unsubscribe": "<mailto:unsub@" + newsletterdomain.DomainOf(sender) + ">"},
		ReceivedAt:  time.Now(),
	}
}

// --- tests ---

func TestPreviewGroupsBySenderOrderedByConfidence(t *testing.T) {
	client := &fakeProviderClient{name: provider.Gmail, candidates: newsLetterCandidates()}
	f := newSyncFixture(t, []provider.Client{client}, gmailAccount("a1", "u1"))

	preview, err := f.usecase.Preview(context.Background(), "u1", "a1")
	require.NoError(t, err)

	assert.Equal(t, 3, preview.TotalProcessed)
	require.Len(t, preview.Senders, 2)

	// The newsletter sender carries classifier signals, so it sorts first.
	assert.Equal(t, "news@golangweekly.com", preview.Senders[0].SenderEmail)
	assert.Len(t, preview.Senders[0].Candidates, 2)
	assert.Equal(t, 2, preview.Senders[0].Count)
	assert.Equal(t, "colleague@work.example.com", preview.Senders[1].SenderEmail)
	assert.Equal(t, newsletterdomain.ConfidenceLow, preview.Senders[1].Confidence)

	// Nothing gets stored by a preview.
	count, _ := f.newsletters.CountByAccount("a1")
	assert.Zero(t, count)
}

func TestPreviewMarksWhitelistedSenders(t *testing.T) {
	client := &fakeProviderClient{name: provider.Gmail, candidates: newsLetterCandidates()}
	f := newSyncFixture(t, []provider.Client{client}, gmailAccount("a1", "u1"))
	require.NoError(t, f.whitelist.Upsert(&newsletterdomain.WhitelistEntry{UserID: "u1", Email: "news@golangweekly.com"}))

	preview, err := f.usecase.Preview(context.Background(), "u1", "a1")
	require.NoError(t, err)

	assert.True(t, preview.Senders[0].Whitelisted)
	assert.False(t, preview.Senders[1].Whitelisted)
}

func TestPreviewRejectsForeignAccount(t *testing.T) {
	client := &fakeProviderClient{name: provider.Gmail, candidates: nil}
	f := newSyncFixture(t, []provider.Client{client}, gmailAccount("a1", "u1"))

	_, err := f.usecase.Preview(context.Background(), "someone-else", "a1")
	assert.Error(t, err)
}

func TestCommitImportWhitelistsAndImportsAcceptedSenders(t *testing.T) {
	client := &fakeProviderClient{name: provider.Gmail}
	f := newSyncFixture(t, []provider.Client{client}, gmailAccount("a1", "u1"))

	result, err := f.usecase.CommitImport(context.Background(), "u1", &newsletterdto.ImportRequest{
		AccountID:       "a1",
		AcceptedSenders: []string{"news@golangweekly.com"},
		Candidates:      newsLetterCandidates(),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped) // the colleague was not accepted
	assert.Zero(t, result.Failed)

	entries, _ := f.whitelist.FindByUser("u1")
	require.Len(t, entries, 1)
	assert.Equal(t, "news@golangweekly.com", entries[0].Email)
}

func TestCommitImportIsIdempotent(t *testing.T) {
	client := &fakeProviderClient{name: provider.Gmail}
	f := newSyncFixture(t, []provider.Client{client}, gmailAccount("a1", "u1"))

	req := &newsletterdto.ImportRequest{
		AccountID:       "a1",
		AcceptedSenders: []string{"news@golangweekly.com"},
		Candidates:      newsLetterCandidates(),
	}

	first, err := f.usecase.CommitImport(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Imported)

	second, err := f.usecase.CommitImport(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.Zero(t, second.Imported)
	assert.Equal(t, 3, second.Skipped)

	count, _ := f.newsletters.CountByAccount("a1")
	assert.EqualValues(t, 2, count)
}

func TestCommitImportRefetchesWhenNoPreviewSupplied(t *testing.T) {
	client := &fakeProviderClient{name: provider.Gmail, candidates: newsLetterCandidates()}
	f := newSyncFixture(t, []provider.Client{client}, gmailAccount("a1", "u1"))

	result, err := f.usecase.CommitImport(context.Background(), "u1", &newsletterdto.ImportRequest{
		AccountID:       "a1",
		AcceptedSenders: []string{"news@golangweekly.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)

	count, _ := f.newsletters.CountByAccount("a1")
	assert.EqualValues(t, 2, count)
}

func TestRunManualSyncImportsWhitelistedOnly(t *testing.T) {
	client := &fakeProviderClient{name: provider.Gmail, candidates: newsLetterCandidates()}
	f := newSyncFixture(t, []provider.Client{client}, gmailAccount("a1", "u1"))
	require.NoError(t, f.whitelist.Upsert(&newsletterdomain.WhitelistEntry{UserID: "u1", Email: "news@golangweekly.com"}))

	result, err := f.usecase.RunManualSync(context.Background(), "u1", "")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	require.Len(t, result.Accounts, 1)
	assert.Empty(t, result.Accounts[0].Error)

	account, _ := f.accounts.FindByID("a1")
	assert.NotNil(t, account.LastSyncedAt)
	assert.Empty(t, account.LastSyncError)
}

func TestRunManualSyncWithoutWhitelistImportsNothing(t *testing.T) {
	client := &fakeProviderClient{name: provider.Gmail, candidates: newsLetterCandidates()}
	f := newSyncFixture(t, []provider.Client{client}, gmailAccount("a1", "u1"))

	result, err := f.usecase.RunManualSync(context.Background(), "u1", "")
	require.NoError(t, err)

	assert.Zero(t, result.Imported)

	progress, err := f.usecase.Progress("u1", "a1")
	require.NoError(t, err)
	assert.Equal(t, newsletterdomain.SyncStatusSuccess, progress.Status)
	assert.Equal(t, 100, progress.Percent)
}

func TestRunManualSyncIsolatesFailingAccount(t *testing.T) {
	healthy := &fakeProviderClient{name: provider.Gmail, candidates: newsLetterCandidates()}
	broken := &fakeProviderClient{name: provider.Outlook, listErr: provider.ErrAuthExpired}

	outlookAccount := &accountdomain.EmailAccount{
		ID:          "a2",
		UserID:      "u1",
		Provider:    "outlook",
		Email:       "user@outlook.com",
		SyncEnabled: true,
	}
	f := newSyncFixture(t, []provider.Client{healthy, broken}, gmailAccount("a1", "u1"), outlookAccount)
	require.NoError(t, f.whitelist.Upsert(&newsletterdomain.WhitelistEntry{UserID: "u1", Email: "news@golangweekly.com"}))

	result, err := f.usecase.RunManualSync(context.Background(), "u1", "")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)

	var failing *newsletterdto.AccountSyncResult
	for i := range result.Accounts {
		if result.Accounts[i].AccountID == "a2" {
			failing = &result.Accounts[i]
		}
	}
	require.NotNil(t, failing)
	assert.NotEmpty(t, failing.Error)

	// The expired account is switched off until reconnect; the healthy one
	// stays enabled.
	a2, _ := f.accounts.FindByID("a2")
	assert.False(t, a2.SyncEnabled)
	assert.NotEmpty(t, a2.LastSyncError)

	a1, _ := f.accounts.FindByID("a1")
	assert.True(t, a1.SyncEnabled)
}

func TestRunManualSyncTargetsSingleAccount(t *testing.T) {
	client := &fakeProviderClient{name: provider.Gmail, candidates: newsLetterCandidates()}
	second := gmailAccount("a2", "u1")
	second.Email = "second@gmail.com"
	f := newSyncFixture(t, []provider.Client{client}, gmailAccount("a1", "u1"), second)
	require.NoError(t, f.whitelist.Upsert(&newsletterdomain.WhitelistEntry{UserID: "u1", Email: "news@golangweekly.com"}))

	result, err := f.usecase.RunManualSync(context.Background(), "u1", "a1")
	require.NoError(t, err)

	require.Len(t, result.Accounts, 1)
	assert.Equal(t, "a1", result.Accounts[0].AccountID)
	assert.Equal(t, 2, result.Imported)

	// The untargeted account stays untouched.
	count, _ := f.newsletters.CountByAccount("a2")
	assert.Zero(t, count)

	_, err = f.usecase.RunManualSync(context.Background(), "u1", "no-such-account")
	assert.Error(t, err)
}

func TestRunManualSyncIsolatesFailingSenderBodyFetch(t *testing.T) {
	candidates := []newsletterdomain.CandidateMessage{
		bodilessCandidate("x1", "alerts@broken.example.com"),
		bodilessCandidate("y1", "news@golangweekly.com"),
		bodilessCandidate("y2", "news@golangweekly.com"),
	}
	client := &fakeProviderClient{
		name:       provider.Gmail,
		candidates: candidates,
		bodyErrs:   map[string]error{"x1": errors.New("message fetch timed out")},
	}
	f := newSyncFixture(t, []provider.Client{client}, gmailAccount("a1", "u1"))
	require.NoError(t, f.whitelist.Upsert(&newsletterdomain.WhitelistEntry{UserID: "u1", Email: "alerts@broken.example.com"}))
	require.NoError(t, f.whitelist.Upsert(&newsletterdomain.WhitelistEntry{UserID: "u1", Email: "news@golangweekly.com"}))

	result, err := f.usecase.RunManualSync(context.Background(), "u1", "")
	require.NoError(t, err)

	// The failing sender does not stop the rest of the import.
	assert.Equal(t, 2, result.Imported)

	progress, err := f.usecase.Progress("u1", "a1")
	require.NoError(t, err)
	require.Len(t, progress.Senders, 2)

	assert.Equal(t, "alerts@broken.example.com", progress.Senders[0].Sender)
	assert.Equal(t, newsletterdomain.SenderStatusError, progress.Senders[0].Status)
	assert.Zero(t, progress.Senders[0].Count)
	assert.NotEmpty(t, progress.Senders[0].Error)

	assert.Equal(t, "news@golangweekly.com", progress.Senders[1].Sender)
	assert.Equal(t, newsletterdomain.SenderStatusSuccess, progress.Senders[1].Status)
	assert.Equal(t, 2, progress.Senders[1].Count)
}

func TestScheduledSyncSkipsAccountsNotDue(t *testing.T) {
	client := &fakeProviderClient{name: provider.Gmail, candidates: newsLetterCandidates()}
	account := gmailAccount("a1", "u1")
	recent := time.Now().Add(-time.Minute)
	account.LastSyncedAt = &recent
	account.SyncFrequency = 60

	f := newSyncFixture(t, []provider.Client{client}, account)
	require.NoError(t, f.whitelist.Upsert(&newsletterdomain.WhitelistEntry{UserID: "u1", Email: "news@golangweekly.com"}))

	f.usecase.RunScheduledSync(context.Background())

	count, _ := f.newsletters.CountByAccount("a1")
	assert.Zero(t, count)
}

func TestScheduledSyncRunsDueAccounts(t *testing.T) {
	client := &fakeProviderClient{name: provider.Gmail, candidates: newsLetterCandidates()}
	account := gmailAccount("a1", "u1")
	stale := time.Now().Add(-2 * time.Hour)
	account.LastSyncedAt = &stale
	account.SyncFrequency = 60

	f := newSyncFixture(t, []provider.Client{client}, account)
	require.NoError(t, f.whitelist.Upsert(&newsletterdomain.WhitelistEntry{UserID: "u1", Email: "news@golangweekly.com"}))

	f.usecase.RunScheduledSync(context.Background())

	count, _ := f.newsletters.CountByAccount("a1")
	assert.EqualValues(t, 2, count)
}

func TestProgressFallsBackToStoredCounts(t *testing.T) {
	client := &fakeProviderClient{name: provider.Gmail}
	f := newSyncFixture(t, []provider.Client{client}, gmailAccount("a1", "u1"))

	accountID := "a1"
	require.NoError(t, f.newsletters.Insert(&newsletterdomain.Newsletter{
		ID:             "n1",
		UserID:         "u1",
		EmailAccountID: &accountID,
		MessageID:      "m1",
	}))

	progress, err := f.usecase.Progress("u1", "a1")
	require.NoError(t, err)

	assert.Equal(t, newsletterdomain.SyncStatusIdle, progress.Status)
	assert.Equal(t, 1, progress.SyncedCount)
}

func TestProgressReflectsCompletedRun(t *testing.T) {
	client := &fakeProviderClient{name: provider.Gmail, candidates: newsLetterCandidates()}
	f := newSyncFixture(t, []provider.Client{client}, gmailAccount("a1", "u1"))
	require.NoError(t, f.whitelist.Upsert(&newsletterdomain.WhitelistEntry{UserID: "u1", Email: "news@golangweekly.com"}))

	_, err := f.usecase.RunManualSync(context.Background(), "u1", "")
	require.NoError(t, err)

	progress, err := f.usecase.Progress("u1", "a1")
	require.NoError(t, err)

	assert.Equal(t, newsletterdomain.SyncStatusSuccess, progress.Status)
	assert.Equal(t, 100, progress.Percent)
	assert.Equal(t, 2, progress.SyncedCount)
	require.Len(t, progress.Senders, 1)
	assert.Equal(t, "news@golangweekly.com", progress.Senders[0].Sender)
	assert.Equal(t, 2, progress.Senders[0].Count)
}

func TestProgressSnapshotUnaffectedByLaterMutation(t *testing.T) {
	client := &fakeProviderClient{name: provider.Gmail}
	f := newSyncFixture(t, []provider.Client{client}, gmailAccount("a1", "u1"))

	u, ok := f.usecase.(*syncUsecase)
	require.True(t, ok)

	snapshot := &newsletterdomain.SyncProgress{
		UserID:    "u1",
		AccountID: "a1",
		Status:    newsletterdomain.SyncStatusSyncing,
		Percent:   40,
	}
	u.writeProgress(snapshot)

	// The writer keeps mutating its snapshot between writes; readers must
	// only see whole published states.
	snapshot.Percent = 90
	snapshot.Status = newsletterdomain.SyncStatusError

	progress, err := f.usecase.Progress("u1", "a1")
	require.NoError(t, err)
	assert.Equal(t, 40, progress.Percent)
	assert.Equal(t, newsletterdomain.SyncStatusSyncing, progress.Status)
}

func TestImportMarksDuplicateOnlySendersSkipped(t *testing.T) {
	client := &fakeProviderClient{name: provider.Gmail}
	f := newSyncFixture(t, []provider.Client{client}, gmailAccount("a1", "u1"))

	u, ok := f.usecase.(*syncUsecase)
	require.True(t, ok)
	account, err := f.accounts.FindByID("a1")
	require.NoError(t, err)

	admitted := newsLetterCandidates()[:2]
	imported, skipped, failed := u.importCandidates(context.Background(), account, admitted, nil)
	assert.Equal(t, 2, imported)
	assert.Zero(t, skipped)
	assert.Zero(t, failed)

	// A run that listed its candidates before the first one committed
	// sees every insert rejected as a duplicate.
	imported, skipped, failed = u.importCandidates(context.Background(), account, admitted, nil)
	assert.Zero(t, imported)
	assert.Equal(t, 2, skipped)
	assert.Zero(t, failed)

	progress, err := f.usecase.Progress("u1", "a1")
	require.NoError(t, err)
	require.Len(t, progress.Senders, 1)
	assert.Equal(t, newsletterdomain.SenderStatusSkipped, progress.Senders[0].Status)
	assert.Zero(t, progress.Senders[0].Count)
}
