package acme

import (
	"crypto/ecdsa"
	"log/slog"
	"net/http"
	"time"
)

// Option configures a Client during construction.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for all ACME requests. Useful for
// custom transports and for pointing tests at an httptest server.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger; slog.Default() is used otherwise.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithAccountKey supplies an existing account key instead of generating a
// fresh one during Initialize, allowing account reuse across restarts.
func WithAccountKey(key *ecdsa.PrivateKey) Option {
	return func(c *Client) {
		c.key = key
	}
}

// WithPollInterval overrides the delay between order status polls.
// Primarily for tests; the protocol default is 2 seconds.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithPollLimit overrides the number of order status polls before giving up.
// Primarily for tests; the protocol default is 30 attempts.
func WithPollLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pollLimit = n
		}
	}
}
