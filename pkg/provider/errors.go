package provider

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/oauth2"
)

// Common error taxonomy across providers. Callers branch with errors.Is.
var (
	// ErrAuthExpired means the refresh token is revoked or invalid; the
	// account needs user re-connection. Not retryable.
	ErrAuthExpired = errors.New("provider authorization expired")

	// ErrTransient covers timeouts, rate limits and 5xx responses.
	// Retryable on the next scheduled tick.
	ErrTransient = errors.New("transient provider failure")

	// ErrPermanent covers malformed requests and unsupported providers.
	// Logged, not retried.
	ErrPermanent = errors.New("permanent provider failure")
)

// ClassifyStatus maps an HTTP status from a provider API into the taxonomy.
// Returns nil for non-error statuses.
func ClassifyStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrAuthExpired
	case code == http.StatusTooManyRequests || code >= 500:
		return ErrTransient
	case code >= 400:
		return ErrPermanent
	default:
		return nil
	}
}

// Classify maps a raw provider error into the taxonomy.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		// A failing token endpoint means the grant is gone.
		return ErrAuthExpired
	}

	if errors.Is(err, ErrAuthExpired) || errors.Is(err, ErrPermanent) || errors.Is(err, ErrTransient) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrTransient
	}

	return ErrTransient
}
