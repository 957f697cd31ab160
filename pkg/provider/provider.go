// Package provider abstracts the external mail APIs behind one client
// interface. Provider selection happens once at the orchestrator boundary;
// everything above it is provider-agnostic.
package provider

import (
	"context"
	"fmt"
	"time"

	newsletterdomain "newsbox-backend/internal/newsletter/domain"

	"golang.org/x/oauth2"
)

// Name identifies a supported provider.
type Name string

const (
	Gmail   Name = "gmail"
	Outlook Name = "outlook"
)

// TokenPair is the result of an OAuth code exchange.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Credentials carries the stored token state for authenticated calls.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// TokenUpdateFunc is invoked whenever a client refreshes a token, so the
// caller can persist the new pair before proceeding.
type TokenUpdateFunc func(*oauth2.Token) error

// ListOptions bounds a candidate listing.
type ListOptions struct {
	MaxResults int64
	Since      time.Time
}

// Client is the uniform interface over the Gmail and Outlook message APIs.
type Client interface {
	Name() Name

	// AuthURL returns the provider consent URL for the given opaque state.
	AuthURL(state string) string

	// Exchange trades an authorization code for tokens.
	Exchange(ctx context.Context, code string) (*TokenPair, error)

	// UserInfo resolves the mailbox address behind an access token.
	UserInfo(ctx context.Context, accessToken string) (string, error)

	// ListCandidates fetches and normalizes candidate messages. Token
	// refresh is transparent; onRefresh is called with any new token.
	ListCandidates(ctx context.Context, creds Credentials, opts ListOptions, onRefresh TokenUpdateFunc) ([]newsletterdomain.CandidateMessage, error)

	// FetchBody retrieves the full text/HTML body of one message.
	FetchBody(ctx context.Context, creds Credentials, messageID string, onRefresh TokenUpdateFunc) (text, html string, err error)
}

// Registry holds the configured clients, one per provider.
type Registry struct {
	clients map[Name]Client
}

func NewRegistry(clients ...Client) *Registry {
	r := &Registry{clients: make(map[Name]Client)}
	for _, c := range clients {
		r.clients[c.Name()] = c
	}
	return r
}

// ForName returns the client for a provider tag. An unknown tag is a
// permanent error.
func (r *Registry) ForName(name string) (Client, error) {
	if c, ok := r.clients[Name(name)]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("unsupported provider %q: %w", name, ErrPermanent)
}
