package usecase

import (
	"context"

	accountdomain "newsbox-backend/internal/account/domain"
	accountdto "newsbox-backend/internal/account/dto"
)

type AccountUsecase interface {
	List(userID string) ([]*accountdomain.EmailAccount, error)
	// AuthURL starts the OAuth flow for a provider. The returned URL carries
	// an opaque state bound to the requesting user.
	AuthURL(userID, providerName string) (string, error)
	// HandleCallback finishes the OAuth flow. It exchanges the code,
	// resolves the mailbox address and upserts the account.
	HandleCallback(ctx context.Context, state, code string) (*accountdomain.EmailAccount, error)
	Disconnect(userID, accountID string) error
	UpdateSyncSettings(userID, accountID string, req *accountdto.UpdateSyncSettingsRequest) (*accountdomain.EmailAccount, error)
}
