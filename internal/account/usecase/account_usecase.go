package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	accountdomain "newsbox-backend/internal/account/domain"
	accountdto "newsbox-backend/internal/account/dto"
	accountrepo "newsbox-backend/internal/account/repository"
	newsletterrepo "newsbox-backend/internal/newsletter/repository"
	"newsbox-backend/pkg/cache"
	"newsbox-backend/pkg/provider"

	"github.com/google/uuid"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidState    = errors.New("invalid or expired oauth state")
)

const oauthStateTTL = 10 * time.Minute

// oauthState binds a pending consent redirect to the user who started it.
type oauthState struct {
	UserID   string
	Provider string
}

// accountUsecase implements AccountUsecase interface
type accountUsecase struct {
	accountRepo    accountrepo.AccountRepository
	newsletterRepo newsletterrepo.NewsletterRepository
	providers      *provider.Registry
	cache          cache.Cache
}

// NewAccountUsecase creates a new instance of accountUsecase
func NewAccountUsecase(
	accountRepo accountrepo.AccountRepository,
	newsletterRepo newsletterrepo.NewsletterRepository,
	providers *provider.Registry,
	c cache.Cache,
) AccountUsecase {
	return &accountUsecase{
		accountRepo:    accountRepo,
		newsletterRepo: newsletterRepo,
		providers:      providers,
		cache:          c,
	}
}

func (u *accountUsecase) List(userID string) ([]*accountdomain.EmailAccount, error) {
	return u.accountRepo.FindByUser(userID)
}

func (u *accountUsecase) AuthURL(userID, providerName string) (string, error) {
	client, err := u.providers.ForName(providerName)
	if err != nil {
		return "", err
	}

	state := uuid.New().String()
	u.cache.Set(stateKey(state), oauthState{UserID: userID, Provider: providerName}, oauthStateTTL)

	return client.AuthURL(state), nil
}

func (u *accountUsecase) HandleCallback(ctx context.Context, state, code string) (*accountdomain.EmailAccount, error) {
	cached, ok := u.cache.Get(stateKey(state))
	if !ok {
		return nil, ErrInvalidState
	}
	u.cache.Delete(stateKey(state))

	pending, ok := cached.(oauthState)
	if !ok {
		return nil, ErrInvalidState
	}

	client, err := u.providers.ForName(pending.Provider)
	if err != nil {
		return nil, err
	}

	tokens, err := client.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	email, err := client.UserInfo(ctx, tokens.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve mailbox address: %w", err)
	}

	// Re-connecting an already linked mailbox refreshes its tokens in place.
	existing, err := u.accountRepo.FindByUserProviderEmail(pending.UserID, pending.Provider, email)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if err := u.accountRepo.UpdateTokens(existing.ID, tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresAt); err != nil {
			return nil, err
		}
		existing.LastSyncError = ""
		existing.SyncEnabled = true
		if err := u.accountRepo.Update(existing); err != nil {
			return nil, err
		}
		log.Printf("[Account] Reconnected %s account %s for user %s", pending.Provider, email, pending.UserID)
		return u.accountRepo.FindByID(existing.ID)
	}

	account := &accountdomain.EmailAccount{
		UserID:         pending.UserID,
		Provider:       pending.Provider,
		Email:          email,
		AccessToken:    tokens.AccessToken,
		RefreshToken:   tokens.RefreshToken,
		TokenExpiresAt: tokens.ExpiresAt,
		SyncEnabled:    true,
	}
	if err := u.accountRepo.Create(account); err != nil {
		return nil, err
	}

	log.Printf("[Account] Connected %s account %s for user %s", pending.Provider, email, pending.UserID)
	return account, nil
}

func (u *accountUsecase) Disconnect(userID, accountID string) error {
	account, err := u.ownedAccount(userID, accountID)
	if err != nil {
		return err
	}

	// Imported newsletters survive a disconnect; only the account link goes.
	if err := u.newsletterRepo.DetachAccount(account.ID); err != nil {
		return err
	}

	if err := u.accountRepo.Delete(account.ID); err != nil {
		return err
	}

	log.Printf("[Account] Disconnected %s account %s for user %s", account.Provider, account.Email, userID)
	return nil
}

func (u *accountUsecase) UpdateSyncSettings(userID, accountID string, req *accountdto.UpdateSyncSettingsRequest) (*accountdomain.EmailAccount, error) {
	account, err := u.ownedAccount(userID, accountID)
	if err != nil {
		return nil, err
	}

	if req.SyncEnabled != nil {
		account.SyncEnabled = *req.SyncEnabled
	}
	if req.SyncFrequency != nil {
		account.SyncFrequency = *req.SyncFrequency
	}

	if err := u.accountRepo.Update(account); err != nil {
		return nil, err
	}
	return account, nil
}

func (u *accountUsecase) ownedAccount(userID, accountID string) (*accountdomain.EmailAccount, error) {
	account, err := u.accountRepo.FindByID(accountID)
	if err != nil {
		return nil, err
	}
	if account == nil || account.UserID != userID {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

func stateKey(state string) string {
	return "oauth:state:" + state
}
