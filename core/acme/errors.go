package acme

import (
	"errors"
	"fmt"
)

var (
	// ErrDirectoryURLRequired is returned when a client is constructed
	// without a CA directory URL.
	ErrDirectoryURLRequired = errors.New("acme: directory URL is required")

	// ErrUnsupportedChallengeType is returned for challenge types this client
	// cannot respond to.
	ErrUnsupportedChallengeType = errors.New("acme: unsupported challenge type")

	// ErrNotInitialized is returned when an operation needs the registered
	// account but Initialize has not succeeded yet.
	ErrNotInitialized = errors.New("acme: client is not initialized")

	// ErrMissingLocation is returned when a creation response lacks the
	// Location header that carries the new resource URL.
	ErrMissingLocation = errors.New("acme: response is missing the Location header")

	// ErrMissingNonce is returned when no replay nonce could be obtained.
	ErrMissingNonce = errors.New("acme: no replay nonce available")

	// ErrNoChallenge is returned when an authorization offers no challenge of
	// the configured type.
	ErrNoChallenge = errors.New("acme: no challenge of the configured type offered")

	// ErrOrderInvalid is returned when an order or authorization reaches the
	// terminal invalid state.
	ErrOrderInvalid = errors.New("acme: order reached invalid state")

	// ErrOrderNotReady is returned when the order did not become ready within
	// the bounded polling window.
	ErrOrderNotReady = errors.New("acme: order did not become ready in time")

	// ErrCertificateNotReady is returned when the finalized order did not
	// produce a certificate within the bounded polling window.
	ErrCertificateNotReady = errors.New("acme: certificate was not issued in time")
)

// ProtocolError is any non-2xx ACME response, carrying the HTTP status code
// and the parsed RFC 7807 problem document the server returned.
type ProtocolError struct {
	StatusCode int    `json:"-"`
	Type       string `json:"type"`
	Detail     string `json:"detail"`
}

func (e *ProtocolError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("acme: server returned %d %s: %s", e.StatusCode, e.Type, e.Detail)
	}
	return fmt.Sprintf("acme: server returned %d %s", e.StatusCode, e.Type)
}
