package outlook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"newsbox-backend/internal/newsletter/domain"
	"newsbox-backend/pkg/provider"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	"github.com/microsoftgraph/msgraph-sdk-go/models/odataerrors"
	"github.com/microsoftgraph/msgraph-sdk-go/users"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

// refreshMargin forces a token refresh when expiry is this close.
const refreshMargin = 2 * time.Minute

// Client implements provider.Client for Outlook via Microsoft Graph.
type Client struct {
	clientID     string
	clientSecret string
	redirectURL  string
}

func New(clientID, clientSecret, redirectURL string) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
	}
}

func (c *Client) Name() provider.Name {
	return provider.Outlook
}

func (c *Client) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		RedirectURL:  c.redirectURL,
		Endpoint:     microsoft.AzureADEndpoint("common"),
		Scopes: []string{
			"offline_access",
			"https://graph.microsoft.com/Mail.Read",
			"https://graph.microsoft.com/User.Read",
		},
	}
}

func (c *Client) AuthURL(state string) string {
	return c.oauthConfig().AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (c *Client) Exchange(ctx context.Context, code string) (*provider.TokenPair, error) {
	token, err := c.oauthConfig().Exchange(ctx, code)
	if err != nil {
		return nil, wrapErr("exchange authorization code", err)
	}
	return &provider.TokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}, nil
}

func (c *Client) UserInfo(ctx context.Context, accessToken string) (string, error) {
	client, err := c.graphClient(accessToken)
	if err != nil {
		return "", err
	}

	me, err := client.Me().Get(ctx, nil)
	if err != nil {
		return "", wrapErr("get user info", err)
	}

	if mail := me.GetMail(); mail != nil && *mail != "" {
		return *mail, nil
	}
	if upn := me.GetUserPrincipalName(); upn != nil {
		return *upn, nil
	}
	return "", fmt.Errorf("user has no mailbox address: %w", provider.ErrPermanent)
}

// ensureToken refreshes the access token when it is near expiry and reports
// the new pair through onRefresh so it is persisted before any API call.
func (c *Client) ensureToken(ctx context.Context, creds provider.Credentials, onRefresh provider.TokenUpdateFunc) (string, error) {
	if creds.AccessToken != "" && !creds.Expiry.IsZero() && time.Until(creds.Expiry) > refreshMargin {
		return creds.AccessToken, nil
	}

	ts := c.oauthConfig().TokenSource(ctx, &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		Expiry:       creds.Expiry,
	})

	token, err := ts.Token()
	if err != nil {
		return "", wrapErr("refresh token", err)
	}

	if onRefresh != nil && token.AccessToken != creds.AccessToken {
		if err := onRefresh(token); err != nil {
			return "", fmt.Errorf("persist refreshed token: %w", err)
		}
	}
	return token.AccessToken, nil
}

func (c *Client) graphClient(accessToken string) (*msgraphsdk.GraphServiceClient, error) {
	cred := &staticTokenCredential{token: accessToken}
	client, err := msgraphsdk.NewGraphServiceClientWithCredentials(cred, []string{})
	if err != nil {
		return nil, fmt.Errorf("create graph client: %v: %w", err, provider.ErrPermanent)
	}
	return client, nil
}

func (c *Client) ListCandidates(ctx context.Context, creds provider.Credentials, opts provider.ListOptions, onRefresh provider.TokenUpdateFunc) ([]domain.CandidateMessage, error) {
	access, err := c.ensureToken(ctx, creds, onRefresh)
	if err != nil {
		return nil, err
	}

	client, err := c.graphClient(access)
	if err != nil {
		return nil, err
	}

	top := int32(100) // Graph page maximum for messages
	if opts.MaxResults > 0 && opts.MaxResults < int64(top) {
		top = int32(opts.MaxResults)
	}

	query := &users.ItemMessagesRequestBuilderGetQueryParameters{
		Top:     &top,
		Select:  []string{"id", "subject", "from", "receivedDateTime", "body", "bodyPreview", "internetMessageHeaders"},
		Orderby: []string{"receivedDateTime desc"},
	}
	if !opts.Since.IsZero() {
		filter := fmt.Sprintf("receivedDateTime ge %s", opts.Since.UTC().Format(time.RFC3339))
		query.Filter = &filter
	}

	result, err := client.Me().Messages().Get(ctx, &users.ItemMessagesRequestBuilderGetRequestConfiguration{
		QueryParameters: query,
	})
	if err != nil {
		return nil, wrapErr("list messages", err)
	}

	messages := result.GetValue()
	candidates := make([]domain.CandidateMessage, 0, len(messages))
	for _, msg := range messages {
		candidate, ok := normalize(msg)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func (c *Client) FetchBody(ctx context.Context, creds provider.Credentials, messageID string, onRefresh provider.TokenUpdateFunc) (string, string, error) {
	access, err := c.ensureToken(ctx, creds, onRefresh)
	if err != nil {
		return "", "", err
	}

	client, err := c.graphClient(access)
	if err != nil {
		return "", "", err
	}

	msg, err := client.Me().Messages().ByMessageId(messageID).Get(ctx, nil)
	if err != nil {
		return "", "", wrapErr(fmt.Sprintf("get message %s", messageID), err)
	}

	text, html := extractBodies(msg)
	return text, html, nil
}

func wrapErr(op string, err error) error {
	var odataErr *odataerrors.ODataError
	if errors.As(err, &odataErr) {
		if kind := provider.ClassifyStatus(odataErr.ResponseStatusCode); kind != nil {
			return fmt.Errorf("%s: %v: %w", op, err, kind)
		}
	}
	return fmt.Errorf("%s: %v: %w", op, err, provider.Classify(err))
}

// staticTokenCredential satisfies the Azure credential interface with an
// already-obtained access token; refresh happens through oauth2 instead.
type staticTokenCredential struct {
	token string
}

func (c *staticTokenCredential) GetToken(ctx context.Context, options policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{
		Token:     c.token,
		ExpiresOn: time.Now().Add(1 * time.Hour),
	}, nil
}
