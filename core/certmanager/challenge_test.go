package certmanager_test

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JejuNetwork/certkit/core/acme"
	"github.com/JejuNetwork/certkit/core/certmanager"
)

func TestChallengeHandler(t *testing.T) {
	t.Parallel()

	certPEM, keyPEM, _ := issuedPair(t, "handler.example.com")
	mock := &acmeClientMock{
		certPEM: certPEM,
		keyPEM:  keyPEM,
		challenges: []acme.Challenge{{
			Type:             acme.ChallengeHTTP01,
			Token:            "handler-token",
			KeyAuthorization: "handler-token.thumb",
			Domain:           "handler.example.com",
		}},
	}
	m := newManager(t, certmanager.WithACMEClient(mock))
	srv := httptest.NewServer(m.ChallengeHandler())
	defer srv.Close()

	// The CA fetches the token mid-flow, so probe from inside the flow.
	type probe struct {
		status int
		body   string
	}
	var inFlight probe
	mock.onComplete = func() {
		res, err := http.Get(srv.URL + "/.well-known/acme-challenge/handler-token")
		require.NoError(t, err)
		defer res.Body.Close()
		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		inFlight = probe{status: res.StatusCode, body: string(body)}
	}

	_, err := m.RequestCertificate(context.Background(), "handler.example.com", "alice", certmanager.RequestOptions{})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, inFlight.status)
	assert.Equal(t, "handler-token.thumb", inFlight.body)

	res, err := http.Get(srv.URL + "/.well-known/acme-challenge/handler-token")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode, "token expires with the flow")
}

func TestChallengeHandlerRejects(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	srv := httptest.NewServer(m.ChallengeHandler())
	t.Cleanup(srv.Close)

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"unknown token", http.MethodGet, "/.well-known/acme-challenge/nope", http.StatusNotFound},
		{"empty token", http.MethodGet, "/.well-known/acme-challenge/", http.StatusNotFound},
		{"nested path", http.MethodGet, "/.well-known/acme-challenge/a/b", http.StatusNotFound},
		{"wrong prefix", http.MethodGet, "/acme-challenge/tok", http.StatusNotFound},
		{"post", http.MethodPost, "/.well-known/acme-challenge/tok", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req, err := http.NewRequest(tt.method, srv.URL+tt.path, nil)
			require.NoError(t, err)
			res, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			res.Body.Close()
			assert.Equal(t, tt.status, res.StatusCode)
		})
	}
}

func TestDNS01Record(t *testing.T) {
	t.Parallel()

	certPEM, keyPEM, _ := issuedPair(t, "dns.example.com")
	keyAuth := "dns-token.thumb"
	mock := &acmeClientMock{
		certPEM: certPEM,
		keyPEM:  keyPEM,
		challenges: []acme.Challenge{{
			Type:             acme.ChallengeDNS01,
			Token:            "dns-token",
			KeyAuthorization: keyAuth,
			Domain:           "dns.example.com",
		}},
	}
	m := newManager(t, certmanager.WithACMEClient(mock))

	var record string
	var ok bool
	mock.onComplete = func() {
		record, ok = m.DNS01Record("dns-token")
	}

	_, err := m.RequestCertificate(context.Background(), "dns.example.com", "alice", certmanager.RequestOptions{})
	require.NoError(t, err)

	require.True(t, ok)
	sum := sha256.Sum256([]byte(keyAuth))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(sum[:]), record)

	_, ok = m.DNS01Record("dns-token")
	assert.False(t, ok)
}
