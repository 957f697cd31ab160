package gmail

import (
	"context"
	"errors"
	"fmt"
	"log"

	"newsbox-backend/internal/newsletter/domain"
	"newsbox-backend/pkg/provider"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Client implements provider.Client for Gmail.
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
	return provider.Gmail
}

func (c *Client) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		RedirectURL:  c.redirectURL,
		Endpoint:     google.Endpoint,
		Scopes: []string{
			gmail.GmailReadonlyScope,
			"https://www.googleapis.com/auth/userinfo.email",
		},
	}
}

func (c *Client) AuthURL(state string) string {
	// AccessTypeOffline + ApprovalForce so Google returns a refresh token
	// on every re-connection, not just the first consent.
	return c.oauthConfig().AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
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
	srv, err := c.service(ctx, provider.Credentials{AccessToken: accessToken}, nil)
	if err != nil {
		return "", err
	}

	profile, err := srv.Users.GetProfile("me").Do()
	if err != nil {
		return "", wrapErr("get profile", err)
	}
	return profile.EmailAddress, nil
}

// notifyTokenSource wraps the oauth2 token source to detect refreshes and
// report the new token to the caller for persistence.
type notifyTokenSource struct {
	src      oauth2.TokenSource
	current  *oauth2.Token
	callback provider.TokenUpdateFunc
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.callback != nil && s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := s.callback(t); err != nil {
			log.Printf("[Gmail] Failed to persist refreshed token: %v", err)
		}
	}
	return t, nil
}

func (c *Client) service(ctx context.Context, creds provider.Credentials, onRefresh provider.TokenUpdateFunc) (*gmail.Service, error) {
	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       creds.Expiry,
	}

	wrapped := &notifyTokenSource{
		src:      c.oauthConfig().TokenSource(ctx, token),
		current:  token,
		callback: onRefresh,
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, wrapped)))
	if err != nil {
		return nil, wrapErr("create gmail service", err)
	}
	return srv, nil
}

func (c *Client) ListCandidates(ctx context.Context, creds provider.Credentials, opts provider.ListOptions, onRefresh provider.TokenUpdateFunc) ([]domain.CandidateMessage, error) {
	srv, err := c.service(ctx, creds, onRefresh)
	if err != nil {
		return nil, err
	}

	q := "-in:chats -in:sent -in:draft"
	if !opts.Since.IsZero() {
		q += " after:" + opts.Since.Format("2006/01/02")
	}

	max := opts.MaxResults
	if max <= 0 {
		max = 500
	}

	// List message ids first, then fetch each full message. The list call
	// is paginated; stop once the cap is reached.
	var ids []string
	pageToken := ""
	for int64(len(ids)) < max {
		perPage := max - int64(len(ids))
		if perPage > 500 {
			perPage = 500 // Gmail API maximum
		}

		call := srv.Users.Messages.List("me").Q(q).MaxResults(perPage)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Context(ctx).Do()
		if err != nil {
			return nil, wrapErr("list messages", err)
		}
		for _, m := range resp.Messages {
			ids = append(ids, m.Id)
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	candidates := make([]domain.CandidateMessage, 0, len(ids))
	for _, id := range ids {
		msg, err := srv.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
		if err != nil {
			// One unfetchable message never aborts the listing.
			log.Printf("[Gmail] Skipping message %s: %v", id, err)
			continue
		}

		candidate, ok := normalize(msg)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

func (c *Client) FetchBody(ctx context.Context, creds provider.Credentials, messageID string, onRefresh provider.TokenUpdateFunc) (string, string, error) {
	srv, err := c.service(ctx, creds, onRefresh)
	if err != nil {
		return "", "", err
	}

	msg, err := srv.Users.Messages.Get("me", messageID).Format("full").Context(ctx).Do()
	if err != nil {
		return "", "", wrapErr(fmt.Sprintf("get message %s", messageID), err)
	}

	text, html := extractBodies(msg.Payload)
	return text, html, nil
}

func wrapErr(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if kind := provider.ClassifyStatus(gerr.Code); kind != nil {
			return fmt.Errorf("%s: %v: %w", op, err, kind)
		}
	}
	return fmt.Errorf("%s: %v: %w", op, err, provider.Classify(err))
}
