// Package identity models the authenticated user supplied by the external
// session provider. The checkout core never reads ambient session state: an
// Identity (or its absence) is resolved by the host and injected at
// initialization.
package identity

import (
	"context"
	"errors"
)

// ErrNoSession signals that the session provider reports no authenticated
// identity for the presented token. The host is expected to redirect away
// from checkout in that case.
var ErrNoSession = errors.New("no active session")

// Identity is the authenticated user record.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
}

// Provider resolves the identity behind a session token.
type Provider interface {
	// Current returns the identity for the token, or ErrNoSession when the
	// session is absent or expired.
	Current(ctx context.Context, token string) (*Identity, error)
}
