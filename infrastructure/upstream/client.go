// Package upstream implements the HTTP clients for the remote storefront
// API. Identity, catalog data and order placement all live behind it; this
// service only holds the in-flight checkout session.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront/config"
	"storefront/pkg/retry"
)

// Client is a thin JSON client for one upstream endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the given endpoint.
func NewClient(cfg config.EndpointConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// statusError reports a non-2xx upstream response.
type statusError struct {
	Status int
	Body   string
}

func (e *statusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream returned status %d", e.Status)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Body)
}

// doJSON issues a request with an optional JSON body and decodes the JSON
// response into out when out is non-nil. Non-2xx responses become a
// statusError.
func (c *Client) doJSON(ctx context.Context, method, path string, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &statusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// getJSON is doJSON for idempotent reads, with bounded retries on transport
// failures and 5xx responses.
func (c *Client) getJSON(ctx context.Context, path string, token string, out any) error {
	cfg := retry.DefaultConfig
	cfg.Retryable = isTransient
	return retry.Do(ctx, cfg, func(ctx context.Context) error {
		return c.doJSON(ctx, http.MethodGet, path, token, nil, out)
	})
}

// isTransient reports whether a read failure is worth retrying. Client
// errors are final; server errors, throttling and transport failures are
// not.
func isTransient(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.Status >= 500 || se.Status == http.StatusTooManyRequests
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	// url.Error wraps connection refusals and DNS failures.
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// Ping checks that the endpoint is reachable. Any HTTP response counts,
// the health probe only cares about connectivity.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}
