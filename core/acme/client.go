package acme

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/JejuNetwork/certkit/core/logger"
	"github.com/JejuNetwork/certkit/core/pki"
)

const (
	contentTypeJOSE = "application/jose+json"
	userAgent       = "certkit-acme/1.0"

	defaultPollInterval = 2 * time.Second
	defaultPollLimit    = 30

	// Generous ceiling for any single response body; a full PEM chain is a
	// few dozen kilobytes at most.
	maxResponseSize = 1 << 20
)

// Config holds the client configuration. Values map to environment variables
// for loading through core/config.
type Config struct {
	DirectoryURL  string `env:"ACME_DIRECTORY_URL" envDefault:"https://acme-v02.api.letsencrypt.org/directory"`
	Email         string `env:"ACME_EMAIL"`
	ChallengeType string `env:"ACME_CHALLENGE_TYPE" envDefault:"http-01"`
}

// Client talks to one ACME CA on behalf of one account. All exported methods
// are safe for concurrent use. The account state (directory, key, account
// URL, thumbprint) is written once under mu during Initialize and read-only
// afterwards; only the replay nonce stays mutable, behind its own lock, so
// flows for different domains proceed concurrently instead of serializing on
// a long-lived critical section while one of them polls.
type Client struct {
	cfg          Config
	httpClient   *http.Client
	log          *slog.Logger
	pollInterval time.Duration
	pollLimit    int

	mu          sync.Mutex
	directory   Directory
	key         *ecdsa.PrivateKey
	accountURL  string
	thumbprint  string
	initialized bool

	nonceMu sync.Mutex
	nonce   string
}

// New creates a client for the CA at cfg.DirectoryURL. The account is not
// registered until Initialize.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.DirectoryURL == "" {
		return nil, ErrDirectoryURLRequired
	}
	if cfg.ChallengeType == "" {
		cfg.ChallengeType = ChallengeHTTP01
	}
	if cfg.ChallengeType != ChallengeHTTP01 && cfg.ChallengeType != ChallengeDNS01 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedChallengeType, cfg.ChallengeType)
	}

	c := &Client{
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		log:          slog.Default(),
		pollInterval: defaultPollInterval,
		pollLimit:    defaultPollLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Initialize fetches the directory, primes the replay nonce, generates the
// account key if none was supplied, and registers the account. It is
// idempotent: once it has succeeded, further calls return immediately.
func (c *Client) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		return nil
	}

	if err := c.fetchDirectory(ctx); err != nil {
		return err
	}

	// Prime the nonce pool so the first signed request does not need an
	// extra round trip, and so an unreachable newNonce endpoint fails here.
	nonce, err := c.takeNonce(ctx)
	if err != nil {
		return err
	}
	c.putNonce(nonce)

	if c.key == nil {
		key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return fmt.Errorf("acme: generate account key: %w", err)
		}
		c.key = key
	}

	if err := c.registerAccount(ctx); err != nil {
		return err
	}

	c.thumbprint = jwkThumbprint(&c.key.PublicKey)
	c.initialized = true
	c.log.InfoContext(ctx, "acme account initialized",
		slog.String("directory", c.cfg.DirectoryURL),
		slog.String("account", c.accountURL))
	return nil
}

// AccountURL returns the registered account URL, or "" before Initialize.
func (c *Client) AccountURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accountURL
}

// ChallengeType returns the challenge type this client selects.
func (c *Client) ChallengeType() string {
	return c.cfg.ChallengeType
}

// RequestCertificate submits a new order for domain plus altNames and fetches
// every authorization, returning the order and one prepared challenge per
// identifier with its key authorization computed.
func (c *Client) RequestCertificate(ctx context.Context, domain string, altNames []string) (*Order, []Challenge, error) {
	if err := c.Initialize(ctx); err != nil {
		return nil, nil, err
	}

	identifiers := []Identifier{{Type: "dns", Value: domain}}
	for _, alt := range altNames {
		if alt != domain {
			identifiers = append(identifiers, Identifier{Type: "dns", Value: alt})
		}
	}

	payload, err := json.Marshal(struct {
		Identifiers []Identifier `json:"identifiers"`
	}{identifiers})
	if err != nil {
		return nil, nil, fmt.Errorf("acme: marshal new order: %w", err)
	}

	res, err := c.signedPost(ctx, c.directory.NewOrder, payload, false)
	if err != nil {
		return nil, nil, err
	}

	order := &Order{}
	if err := json.Unmarshal(res.body, order); err != nil {
		return nil, nil, fmt.Errorf("acme: decode order: %w", err)
	}
	order.URL = res.header.Get("Location")
	if order.URL == "" {
		return nil, nil, ErrMissingLocation
	}
	c.log.InfoContext(ctx, "acme order created",
		logger.Domain(domain),
		slog.String("order_url", order.URL),
		slog.Int("identifiers", len(identifiers)))

	challenges := make([]Challenge, 0, len(order.Authorizations))
	for _, authzURL := range order.Authorizations {
		authz, err := c.getAuthorization(ctx, authzURL)
		if err != nil {
			return nil, nil, err
		}

		ch, ok := selectChallenge(authz, c.cfg.ChallengeType)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s for %s", ErrNoChallenge, c.cfg.ChallengeType, authz.Identifier.Value)
		}
		ch.Domain = authz.Identifier.Value
		ch.KeyAuthorization = ch.Token + "." + c.thumbprint
		challenges = append(challenges, ch)
	}

	return order, challenges, nil
}

// CompleteChallenges triggers validation of every challenge, waits for the
// order to become ready, finalizes it with a CSR over all identifiers, waits
// for issuance, and downloads the certificate. It returns the PEM chain and
// the PEM-encoded PKCS#8 private key generated for the certificate.
//
// The caller must have published the challenge responses before calling this.
func (c *Client) CompleteChallenges(ctx context.Context, order *Order, challenges []Challenge) (certPEM, keyPEM []byte, err error) {
	if err := c.requireInit(); err != nil {
		return nil, nil, err
	}

	for _, ch := range challenges {
		// An empty JSON object tells the server to start validating.
		if _, err := c.signedPost(ctx, ch.URL, []byte("{}"), false); err != nil {
			return nil, nil, fmt.Errorf("acme: trigger %s challenge for %s: %w", ch.Type, ch.Domain, err)
		}
	}

	updated, err := c.pollOrder(ctx, order.URL, StatusReady, ErrOrderNotReady)
	if err != nil {
		return nil, nil, err
	}
	if len(updated.Identifiers) == 0 {
		updated.Identifiers = order.Identifiers
	}

	certKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("acme: generate certificate key: %w", err)
	}
	csr, err := pki.CreateCertificateRequestBase64(certKey, updated.Domains())
	if err != nil {
		return nil, nil, err
	}

	finalize := updated.Finalize
	if finalize == "" {
		finalize = order.Finalize
	}
	payload, err := json.Marshal(struct {
		CSR string `json:"csr"`
	}{csr})
	if err != nil {
		return nil, nil, fmt.Errorf("acme: marshal finalize: %w", err)
	}
	if _, err := c.signedPost(ctx, finalize, payload, false); err != nil {
		return nil, nil, fmt.Errorf("acme: finalize order: %w", err)
	}

	issued, err := c.pollOrder(ctx, order.URL, StatusValid, ErrCertificateNotReady)
	if err != nil {
		return nil, nil, err
	}
	if issued.Certificate == "" {
		return nil, nil, ErrCertificateNotReady
	}

	res, err := c.signedPost(ctx, issued.Certificate, nil, false)
	if err != nil {
		return nil, nil, fmt.Errorf("acme: download certificate: %w", err)
	}

	keyDER, err := x509.MarshalPKCS8PrivateKey(certKey)
	if err != nil {
		return nil, nil, fmt.Errorf("acme: marshal certificate key: %w", err)
	}
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})

	c.log.InfoContext(ctx, "acme certificate issued",
		slog.String("order_url", order.URL),
		slog.Int("chain_bytes", len(res.body)))
	return res.body, keyPEM, nil
}

// RevokeCertificate asks the CA to revoke the first certificate in certPEM.
func (c *Client) RevokeCertificate(ctx context.Context, certPEM []byte) error {
	if err := c.requireInit(); err != nil {
		return err
	}

	block, _ := pem.Decode(certPEM)
	if block == nil || block.Type != "CERTIFICATE" {
		return fmt.Errorf("acme: revoke: input is not a certificate PEM")
	}

	payload, err := json.Marshal(struct {
		Certificate string `json:"certificate"`
	}{base64.RawURLEncoding.EncodeToString(block.Bytes)})
	if err != nil {
		return fmt.Errorf("acme: marshal revocation: %w", err)
	}

	if _, err := c.signedPost(ctx, c.directory.RevokeCert, payload, false); err != nil {
		return fmt.Errorf("acme: revoke certificate: %w", err)
	}
	return nil
}

// KeyAuthorization computes token.thumbprint for the account key. This is the
// HTTP-01 response body.
func (c *Client) KeyAuthorization(token string) (string, error) {
	if err := c.requireInit(); err != nil {
		return "", err
	}
	return token + "." + c.thumbprint, nil
}

// DNS01TXT computes the DNS-01 TXT record value for token:
// base64url(SHA-256(key authorization)). Publishing the record is the
// caller's concern.
func (c *Client) DNS01TXT(token string) (string, error) {
	keyAuth, err := c.KeyAuthorization(token)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(keyAuth))
	return base64.RawURLEncoding.EncodeToString(sum[:]), nil
}

// --- protocol plumbing -----------------------------------------------------

type response struct {
	statusCode int
	header     http.Header
	body       []byte
}

func (c *Client) fetchDirectory(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.DirectoryURL, nil)
	if err != nil {
		return fmt.Errorf("acme: build directory request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := c.do(req)
	if err != nil {
		return fmt.Errorf("acme: fetch directory: %w", err)
	}
	if res.statusCode != http.StatusOK {
		return problemFrom(res)
	}
	if err := json.Unmarshal(res.body, &c.directory); err != nil {
		return fmt.Errorf("acme: decode directory: %w", err)
	}
	return nil
}

// requireInit checks initialization under the state lock. Its unlock also
// orders the Initialize writes before the caller's lock-free reads of the
// account fields.
func (c *Client) requireInit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return ErrNotInitialized
	}
	return nil
}

// takeNonce pops the pooled nonce, or asks newNonce for a fresh one. Each
// nonce is single use, so the pool is emptied on take.
func (c *Client) takeNonce(ctx context.Context) (string, error) {
	c.nonceMu.Lock()
	nonce := c.nonce
	c.nonce = ""
	c.nonceMu.Unlock()
	if nonce != "" {
		return nonce, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.directory.NewNonce, nil)
	if err != nil {
		return "", fmt.Errorf("acme: build nonce request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("acme: fetch nonce: %w", err)
	}
	nonce = res.header.Get("Replay-Nonce")
	if nonce == "" {
		return "", ErrMissingNonce
	}
	return nonce, nil
}

func (c *Client) putNonce(nonce string) {
	if nonce == "" {
		return
	}
	c.nonceMu.Lock()
	c.nonce = nonce
	c.nonceMu.Unlock()
}

func (c *Client) registerAccount(ctx context.Context) error {
	reg := struct {
		TermsOfServiceAgreed bool     `json:"termsOfServiceAgreed"`
		Contact              []string `json:"contact,omitempty"`
	}{TermsOfServiceAgreed: true}
	if c.cfg.Email != "" {
		reg.Contact = []string{"mailto:" + c.cfg.Email}
	}
	payload, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("acme: marshal registration: %w", err)
	}

	// The one call signed with the embedded JWK: no kid exists yet.
	res, err := c.signedPost(ctx, c.directory.NewAccount, payload, true)
	if err != nil {
		return err
	}

	c.accountURL = res.header.Get("Location")
	if c.accountURL == "" {
		return ErrMissingLocation
	}
	return nil
}

func (c *Client) getAuthorization(ctx context.Context, url string) (*Authorization, error) {
	res, err := c.signedPost(ctx, url, nil, false)
	if err != nil {
		return nil, err
	}
	authz := &Authorization{}
	if err := json.Unmarshal(res.body, authz); err != nil {
		return nil, fmt.Errorf("acme: decode authorization: %w", err)
	}
	authz.URL = url
	return authz, nil
}

func (c *Client) getOrder(ctx context.Context, url string) (*Order, error) {
	res, err := c.signedPost(ctx, url, nil, false)
	if err != nil {
		return nil, err
	}
	order := &Order{}
	if err := json.Unmarshal(res.body, order); err != nil {
		return nil, fmt.Errorf("acme: decode order: %w", err)
	}
	order.URL = url
	return order, nil
}

// pollOrder fetches the order until it reaches want, the terminal invalid
// state, or the polling budget runs out. The budget is pollLimit attempts
// spaced pollInterval apart; ctx cancels the wait between attempts.
func (c *Client) pollOrder(ctx context.Context, url, want string, timeoutErr error) (*Order, error) {
	for attempt := 0; attempt < c.pollLimit; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.pollInterval):
			}
		}

		order, err := c.getOrder(ctx, url)
		if err != nil {
			return nil, err
		}
		switch order.Status {
		case want:
			return order, nil
		case StatusInvalid:
			return nil, fmt.Errorf("%w: %s", ErrOrderInvalid, url)
		}
		// Orders only move forward; a server may jump straight past ready.
		if want == StatusReady && order.Status == StatusValid {
			return order, nil
		}
	}
	return nil, timeoutErr
}

// signedPost sends a JWS-signed POST, taking a nonce from the pool (or
// fetching a fresh one) and pooling the Replay-Nonce of the response for the
// next call.
func (c *Client) signedPost(ctx context.Context, url string, payload []byte, useJWK bool) (*response, error) {
	nonce, err := c.takeNonce(ctx)
	if err != nil {
		return nil, err
	}

	kid := c.accountURL
	if useJWK {
		kid = ""
	}
	body, err := signJWS(c.key, url, nonce, kid, payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("acme: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJOSE)
	req.Header.Set("User-Agent", userAgent)

	res, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("acme: post %s: %w", url, err)
	}
	c.putNonce(res.header.Get("Replay-Nonce"))
	if res.statusCode < 200 || res.statusCode > 299 {
		return nil, problemFrom(res)
	}
	return res, nil
}

func (c *Client) do(req *http.Request) (*response, error) {
	httpRes, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = httpRes.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(httpRes.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return &response{statusCode: httpRes.StatusCode, header: httpRes.Header, body: body}, nil
}

func selectChallenge(authz *Authorization, challengeType string) (Challenge, bool) {
	for _, ch := range authz.Challenges {
		if ch.Type == challengeType {
			return ch, true
		}
	}
	return Challenge{}, false
}

func problemFrom(res *response) error {
	pe := &ProtocolError{StatusCode: res.statusCode}
	if err := json.Unmarshal(res.body, pe); err != nil {
		pe.Detail = string(res.body)
	}
	return pe
}
