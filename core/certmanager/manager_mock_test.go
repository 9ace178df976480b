package certmanager_test

import (
	"context"
	"sync"

	"github.com/JejuNetwork/certkit/core/acme"
)

// acmeClientMock is a hand-rolled ACME client double. Configure the fields,
// then assert on the call counters.
type acmeClientMock struct {
	mu sync.Mutex

	initErr     error
	requestErr  error
	completeErr error
	revokeErr   error

	challenges []acme.Challenge
	certPEM    []byte
	keyPEM     []byte

	// onComplete runs inside CompleteChallenges, while challenge tokens
	// are registered with the manager.
	onComplete func()

	initCalls     int
	requestCalls  int
	completeCalls int
	revokeCalls   int
}

func (m *acmeClientMock) Initialize(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initCalls++
	return m.initErr
}

func (m *acmeClientMock) RequestCertificate(_ context.Context, domain string, _ []string) (*acme.Order, []acme.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCalls++
	if m.requestErr != nil {
		return nil, nil, m.requestErr
	}
	order := &acme.Order{
		URL:    "https://ca.test/order/1",
		Status: acme.StatusPending,
		Identifiers: []acme.Identifier{
			{Type: "dns", Value: domain},
		},
		Finalize: "https://ca.test/order/1/finalize",
	}
	return order, m.challenges, nil
}

func (m *acmeClientMock) CompleteChallenges(_ context.Context, _ *acme.Order, _ []acme.Challenge) ([]byte, []byte, error) {
	m.mu.Lock()
	m.completeCalls++
	hook := m.onComplete
	m.mu.Unlock()
	if hook != nil {
		hook()
	}
	if m.completeErr != nil {
		return nil, nil, m.completeErr
	}
	return m.certPEM, m.keyPEM, nil
}

func (m *acmeClientMock) RevokeCertificate(_ context.Context, _ []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revokeCalls++
	return m.revokeErr
}
