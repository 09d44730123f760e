package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"storefront/config"
	"storefront/domain/identity"
)

// SessionClient resolves the caller's identity from the upstream session
// endpoint.
type SessionClient struct {
	client *Client
}

// NewSessionClient builds an identity provider backed by the session API.
func NewSessionClient(cfg config.EndpointConfig) *SessionClient {
	return &SessionClient{client: NewClient(cfg)}
}

var _ identity.Provider = (*SessionClient)(nil)

type sessionResponse struct {
	Status string `json:"status"`
	User   struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Mobile   string `json:"mobile"`
	} `json:"user"`
}

// Current returns the identity bound to the session token. An absent,
// expired or otherwise inactive session maps to identity.ErrNoSession.
func (s *SessionClient) Current(ctx context.Context, token string) (*identity.Identity, error) {
	if token == "" {
		return nil, identity.ErrNoSession
	}

	var resp sessionResponse
	if err := s.client.getJSON(ctx, "/api/auth/check-session", token, &resp); err != nil {
		var se *statusError
		if errors.As(err, &se) && (se.Status == http.StatusUnauthorized || se.Status == http.StatusForbidden) {
			return nil, identity.ErrNoSession
		}
		return nil, fmt.Errorf("check session: %w", err)
	}

	if resp.Status != "active" {
		return nil, identity.ErrNoSession
	}

	return &identity.Identity{
		ID:       resp.User.ID,
		Username: resp.User.Username,
		FullName: resp.User.FullName,
		Email:    resp.User.Email,
		Mobile:   resp.User.Mobile,
	}, nil
}

// Ping probes the session endpoint.
func (s *SessionClient) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
