package certmanager

import (
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/JejuNetwork/certkit/core/acme"
	"github.com/JejuNetwork/certkit/core/logger"
)

const challengePathPrefix = "/.well-known/acme-challenge/"

// challengeEntry is an in-flight validation token. Entries live only for the
// duration of an ACME flow.
type challengeEntry struct {
	domain  string
	keyAuth string
}

func (m *Manager) registerChallenges(challenges []acme.Challenge) {
	m.chMu.Lock()
	defer m.chMu.Unlock()
	for _, ch := range challenges {
		m.challenges[ch.Token] = challengeEntry{domain: ch.Domain, keyAuth: ch.KeyAuthorization}
	}
}

func (m *Manager) clearChallenges(challenges []acme.Challenge) {
	m.chMu.Lock()
	defer m.chMu.Unlock()
	for _, ch := range challenges {
		delete(m.challenges, ch.Token)
	}
}

// HTTP01Response returns the key authorization to serve for an HTTP-01
// validation token, and whether the token is currently in flight.
func (m *Manager) HTTP01Response(token string) (string, bool) {
	m.chMu.RLock()
	defer m.chMu.RUnlock()
	entry, ok := m.challenges[token]
	return entry.keyAuth, ok
}

// DNS01Record returns the TXT record value for a DNS-01 validation token:
// base64url(SHA-256(key authorization)).
func (m *Manager) DNS01Record(token string) (string, bool) {
	m.chMu.RLock()
	entry, ok := m.challenges[token]
	m.chMu.RUnlock()
	if !ok {
		return "", false
	}
	sum := sha256.Sum256([]byte(entry.keyAuth))
	return base64.RawURLEncoding.EncodeToString(sum[:]), true
}

// ChallengeHandler serves HTTP-01 validations on
// /.well-known/acme-challenge/{token}. Mount it on the plain-HTTP listener
// the CA will reach on port 80.
func (m *Manager) ChallengeHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		token, ok := strings.CutPrefix(r.URL.Path, challengePathPrefix)
		if !ok || token == "" || strings.Contains(token, "/") {
			http.NotFound(w, r)
			return
		}

		keyAuth, ok := m.HTTP01Response(token)
		if !ok {
			m.log.DebugContext(r.Context(), "challenge token not in flight", logger.Token(token))
			http.NotFound(w, r)
			return
		}

		m.log.InfoContext(r.Context(), "serving http-01 challenge", logger.Token(token))
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(keyAuth))
	})
}
