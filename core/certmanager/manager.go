package certmanager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JejuNetwork/certkit/core/acme"
	"github.com/JejuNetwork/certkit/core/logger"
	"github.com/JejuNetwork/certkit/core/pki"
)

// Config holds certificate lifecycle settings.
type Config struct {
	// RenewalDays is how many days before expiry a certificate becomes
	// due for renewal.
	RenewalDays int `env:"CERT_RENEWAL_DAYS" envDefault:"30"`

	// SweepInterval is how often the background sweep scans for
	// certificates due for renewal.
	SweepInterval time.Duration `env:"CERT_SWEEP_INTERVAL" envDefault:"1h"`

	// SelfSignedValidityDays is the validity of generated self-signed
	// certificates, including ACME fallbacks.
	SelfSignedValidityDays int `env:"CERT_SELF_SIGNED_VALIDITY_DAYS" envDefault:"90"`
}

// ACMEClient is the ACME surface the manager depends on. *acme.Client
// satisfies it; tests substitute mocks.
type ACMEClient interface {
	Initialize(ctx context.Context) error
	RequestCertificate(ctx context.Context, domain string, altNames []string) (*acme.Order, []acme.Challenge, error)
	CompleteChallenges(ctx context.Context, order *acme.Order, challenges []acme.Challenge) (certPEM, keyPEM []byte, err error)
	RevokeCertificate(ctx context.Context, certPEM []byte) error
}

var _ ACMEClient = (*acme.Client)(nil)

// RequestOptions carries the optional parts of a certificate request.
type RequestOptions struct {
	// AltNames are additional DNS names to cover. The domain itself is
	// always included.
	AltNames []string

	// Type selects the certificate type; empty means TypeACME.
	Type string

	// CustomCert and CustomKey are the uploaded PEM pair for TypeCustom.
	CustomCert []byte
	CustomKey  []byte
}

// Manager owns the certificate lifecycle. Flows for the same certificate ID
// are serialized, so concurrent requests for one domain collapse into a
// single flow; different domains proceed independently.
type Manager struct {
	cfg    Config
	store  Store
	acme   ACMEClient
	sealer *Sealer
	log    *slog.Logger
	now    func() time.Time

	flowMu sync.Mutex
	flows  map[string]*sync.Mutex

	chMu       sync.RWMutex
	challenges map[string]challengeEntry

	sweepMu   sync.Mutex
	sweepStop chan struct{}
	sweepDone chan struct{}
}

// New creates a Manager. sealingSecret may be nil, in which case the manager
// works but fails with ErrSealingKeyRequired the first time it has to seal or
// open certificate material.
func New(cfg Config, sealingSecret []byte, opts ...Option) (*Manager, error) {
	if cfg.RenewalDays <= 0 {
		cfg.RenewalDays = 30
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Hour
	}
	if cfg.SelfSignedValidityDays <= 0 {
		cfg.SelfSignedValidityDays = 90
	}

	m := &Manager{
		cfg:        cfg,
		store:      NewMemoryStore(),
		log:        slog.Default(),
		now:        time.Now,
		flows:      make(map[string]*sync.Mutex),
		challenges: make(map[string]challengeEntry),
	}
	for _, opt := range opts {
		opt(m)
	}

	if len(sealingSecret) > 0 {
		sealer, err := NewSealer(sealingSecret)
		if err != nil {
			return nil, err
		}
		m.sealer = sealer
	}
	return m, nil
}

// RequestCertificate creates or refreshes the certificate record for domain
// and runs the issuance flow for its type. An already issued certificate that
// is not yet due for renewal is returned as-is.
//
// ACME failures do not surface as errors: the flow degrades to self-signed
// material and records the degradation in the certificate's Reason. An error
// is returned only for rejected input, or when even the self-signed fallback
// could not produce material.
func (m *Manager) RequestCertificate(ctx context.Context, domain, owner string, opts RequestOptions) (*Certificate, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return nil, ErrDomainRequired
	}
	if strings.TrimSpace(owner) == "" {
		return nil, ErrOwnerRequired
	}
	certType := opts.Type
	if certType == "" {
		certType = TypeACME
	}
	if !validType(certType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, certType)
	}
	if certType == TypeCustom && (len(opts.CustomCert) == 0 || len(opts.CustomKey) == 0) {
		return nil, ErrCustomMaterialRequired
	}

	id := CertID(domain)
	unlock := m.lockFlow(id)
	defer unlock()

	if existing, err := m.store.Get(ctx, id); err == nil {
		if existing.Status == StatusIssued && !m.renewalDue(existing) {
			return existing, nil
		}
	}

	now := m.now()
	cert := &Certificate{
		ID:        id,
		Domain:    domain,
		AltNames:  dedupAltNames(domain, opts.AltNames),
		Type:      certType,
		Status:    StatusPending,
		Owner:     owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Put(ctx, cert); err != nil {
		return nil, fmt.Errorf("store certificate record: %w", err)
	}

	if err := m.runFlow(ctx, cert, opts); err != nil {
		return cert, err
	}
	return cert, nil
}

// RenewCertificate re-runs the issuance flow for an existing record. Custom
// certificates cannot be renewed; the owner must upload new material.
func (m *Manager) RenewCertificate(ctx context.Context, certID string) (*Certificate, error) {
	unlock := m.lockFlow(certID)
	defer unlock()

	cert, err := m.store.Get(ctx, certID)
	if err != nil {
		return nil, err
	}
	if cert.Type == TypeCustom {
		return nil, ErrCustomNotRenewable
	}

	cert.Status = StatusPending
	cert.Reason = ""
	cert.LastError = ""
	cert.UpdatedAt = m.now()
	if err := m.store.Put(ctx, cert); err != nil {
		return nil, fmt.Errorf("store certificate record: %w", err)
	}

	if err := m.runFlow(ctx, cert, RequestOptions{}); err != nil {
		return cert, err
	}
	return cert, nil
}

// RevokeCertificate revokes the certificate. For ACME-issued material a
// best-effort revocation request is sent to the CA; a CA failure is logged
// but does not block the local revocation. The sealed material is dropped.
func (m *Manager) RevokeCertificate(ctx context.Context, certID, accessor string) error {
	unlock := m.lockFlow(certID)
	defer unlock()

	cert, err := m.store.Get(ctx, certID)
	if err != nil {
		return err
	}
	if !strings.EqualFold(cert.Owner, accessor) {
		return ErrAccessDenied
	}

	if m.acme != nil && cert.EncryptedCert != "" && (cert.Type == TypeACME || cert.Type == TypeManaged) {
		if certPEM, err := m.open(cert.EncryptedCert); err != nil {
			m.log.WarnContext(ctx, "cannot unseal certificate for CA revocation",
				logger.CertID(certID), logger.Error(err))
		} else if err := m.acme.RevokeCertificate(ctx, certPEM); err != nil {
			m.log.WarnContext(ctx, "CA revocation failed, revoking locally",
				logger.CertID(certID), logger.Domain(cert.Domain), logger.Error(err))
		}
	}

	cert.Status = StatusRevoked
	cert.EncryptedCert = ""
	cert.EncryptedKey = ""
	cert.UpdatedAt = m.now()
	if err := m.store.Put(ctx, cert); err != nil {
		return fmt.Errorf("store certificate record: %w", err)
	}

	m.log.InfoContext(ctx, "certificate revoked",
		logger.CertID(certID), logger.Domain(cert.Domain))
	return nil
}

// DeleteCertificate removes the record entirely.
func (m *Manager) DeleteCertificate(ctx context.Context, certID, accessor string) error {
	unlock := m.lockFlow(certID)
	defer unlock()

	cert, err := m.store.Get(ctx, certID)
	if err != nil {
		return err
	}
	if !strings.EqualFold(cert.Owner, accessor) {
		return ErrAccessDenied
	}
	if err := m.store.Delete(ctx, certID); err != nil {
		return err
	}

	m.log.InfoContext(ctx, "certificate deleted",
		logger.CertID(certID), logger.Domain(cert.Domain))
	return nil
}

// GetCertificate returns the record for a domain.
func (m *Manager) GetCertificate(ctx context.Context, domain string) (*Certificate, error) {
	return m.store.Get(ctx, CertID(domain))
}

// ListCertificates returns every record owned by owner.
func (m *Manager) ListCertificates(ctx context.Context, owner string) ([]*Certificate, error) {
	all, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Certificate, 0, len(all))
	for _, cert := range all {
		if strings.EqualFold(cert.Owner, owner) {
			out = append(out, cert)
		}
	}
	return out, nil
}

// GetDecryptedCertificate unseals and returns the PEM material for an issued
// certificate. Only the owner may read it.
func (m *Manager) GetDecryptedCertificate(ctx context.Context, certID, accessor string) (certPEM, keyPEM []byte, err error) {
	cert, err := m.store.Get(ctx, certID)
	if err != nil {
		return nil, nil, err
	}
	if !strings.EqualFold(cert.Owner, accessor) {
		return nil, nil, ErrAccessDenied
	}
	if cert.Status != StatusIssued || cert.EncryptedCert == "" || cert.EncryptedKey == "" {
		return nil, nil, fmt.Errorf("%w: certificate %s is not issued", ErrNotFound, certID)
	}

	certPEM, err = m.open(cert.EncryptedCert)
	if err != nil {
		return nil, nil, err
	}
	keyPEM, err = m.open(cert.EncryptedKey)
	if err != nil {
		return nil, nil, err
	}
	return certPEM, keyPEM, nil
}

// Health reports inventory counts for a health endpoint.
func (m *Manager) Health(ctx context.Context) (*Health, error) {
	all, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}

	h := &Health{Status: "healthy", Total: len(all)}
	for _, cert := range all {
		switch cert.Status {
		case StatusIssued:
			h.Issued++
			if m.renewalDue(cert) {
				h.Expiring++
			}
		case StatusPending, StatusValidating:
			h.Pending++
		case StatusError:
			h.Errored++
		}
	}
	return h, nil
}

// Start launches the background renewal sweep. Safe to call once; Stop ends
// it. The sweep runs sequentially, so a slow renewal pass never overlaps the
// next one.
func (m *Manager) Start() {
	m.sweepMu.Lock()
	defer m.sweepMu.Unlock()
	if m.sweepStop != nil {
		return
	}
	m.sweepStop = make(chan struct{})
	m.sweepDone = make(chan struct{})
	go m.sweepLoop(m.sweepStop, m.sweepDone)
}

// Stop halts the renewal sweep and waits for an in-progress pass to finish.
func (m *Manager) Stop() {
	m.sweepMu.Lock()
	stop, done := m.sweepStop, m.sweepDone
	m.sweepStop, m.sweepDone = nil, nil
	m.sweepMu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (m *Manager) sweepLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// Background context so Stop never cancels an in-flight
			// renewal mid-issuance.
			m.RenewDue(context.Background())
		}
	}
}

// RenewDue runs one renewal pass: every issued, non-custom certificate past
// its renewal time is renewed. Returns how many renewals succeeded.
func (m *Manager) RenewDue(ctx context.Context) int {
	all, err := m.store.List(ctx)
	if err != nil {
		m.log.ErrorContext(ctx, "renewal sweep cannot list certificates", logger.Error(err))
		return 0
	}

	renewed := 0
	for _, cert := range all {
		if cert.Status != StatusIssued || cert.Type == TypeCustom || !m.renewalDue(cert) {
			continue
		}
		m.log.InfoContext(ctx, "renewing certificate",
			logger.CertID(cert.ID), logger.Domain(cert.Domain))
		result, err := m.RenewCertificate(ctx, cert.ID)
		if err != nil {
			m.log.ErrorContext(ctx, "renewal failed",
				logger.CertID(cert.ID), logger.Domain(cert.Domain), logger.Error(err))
			continue
		}
		if result.Status == StatusIssued {
			renewed++
		}
	}
	return renewed
}

// runFlow dispatches on certificate type. The caller holds the flow lock.
func (m *Manager) runFlow(ctx context.Context, cert *Certificate, opts RequestOptions) error {
	flowID := uuid.NewString()
	m.log.InfoContext(ctx, "starting certificate flow",
		logger.FlowID(flowID), logger.CertID(cert.ID),
		logger.Domain(cert.Domain), slog.String("type", cert.Type))

	switch cert.Type {
	case TypeCustom:
		return m.storeCustom(ctx, cert, opts.CustomCert, opts.CustomKey)
	case TypeSelfSigned:
		return m.selfSign(ctx, cert)
	default: // TypeACME, TypeManaged
		return m.runACMEFlow(ctx, cert, flowID)
	}
}

// runACMEFlow drives the full ACME issuance. Any failure degrades to
// self-signed material; the error surfaces only if the fallback fails too.
func (m *Manager) runACMEFlow(ctx context.Context, cert *Certificate, flowID string) error {
	if m.acme == nil {
		return m.degrade(ctx, cert, flowID, errors.New("no ACME client configured"))
	}
	if err := m.acme.Initialize(ctx); err != nil {
		return m.degrade(ctx, cert, flowID, fmt.Errorf("initialize ACME client: %w", err))
	}

	cert.Status = StatusValidating
	cert.UpdatedAt = m.now()
	if err := m.store.Put(ctx, cert); err != nil {
		return fmt.Errorf("store certificate record: %w", err)
	}

	order, challenges, err := m.acme.RequestCertificate(ctx, cert.Domain, cert.AltNames)
	if err != nil {
		return m.degrade(ctx, cert, flowID, fmt.Errorf("create order: %w", err))
	}

	m.registerChallenges(challenges)
	defer m.clearChallenges(challenges)

	certPEM, keyPEM, err := m.acme.CompleteChallenges(ctx, order, challenges)
	if err != nil {
		return m.degrade(ctx, cert, flowID, fmt.Errorf("complete challenges: %w", err))
	}

	issuedAt := m.now()
	notAfter := issuedAt.AddDate(0, 0, m.cfg.SelfSignedValidityDays)
	if _, na, err := pki.ParseValidity(certPEM); err != nil {
		m.log.WarnContext(ctx, "cannot read certificate validity, assuming default",
			logger.FlowID(flowID), logger.CertID(cert.ID), logger.Error(err))
	} else {
		notAfter = na
	}

	if err := m.storeIssued(ctx, cert, certPEM, keyPEM, issuedAt, notAfter); err != nil {
		return err
	}

	m.log.InfoContext(ctx, "certificate issued",
		logger.FlowID(flowID), logger.CertID(cert.ID), logger.Domain(cert.Domain),
		slog.Time("expires_at", cert.ExpiresAt))
	return nil
}

// degrade records the ACME failure and falls back to self-signed material so
// the domain still has a serveable certificate.
func (m *Manager) degrade(ctx context.Context, cert *Certificate, flowID string, cause error) error {
	m.log.WarnContext(ctx, "ACME issuance failed, falling back to self-signed",
		logger.FlowID(flowID), logger.CertID(cert.ID),
		logger.Domain(cert.Domain), logger.Error(cause))

	cert.LastError = cause.Error()
	cert.Reason = "acme unavailable, self-signed fallback"
	return m.selfSign(ctx, cert)
}

func (m *Manager) selfSign(ctx context.Context, cert *Certificate) error {
	info, err := pki.GenerateSelfSigned(pki.CertificateRequest{
		CommonName:   cert.Domain,
		AltNames:     cert.AltNames,
		ValidityDays: m.cfg.SelfSignedValidityDays,
	})
	if err != nil {
		return m.fail(ctx, cert, fmt.Errorf("generate self-signed certificate: %w", err))
	}
	return m.storeIssued(ctx, cert, []byte(info.CertificatePEM), []byte(info.PrivateKeyPEM), info.NotBefore, info.NotAfter)
}

// customExpiryFallbackDays is the validity assumed for an uploaded
// certificate whose expiry cannot be read. Short on purpose: an unreadable
// certificate should come up for renewal attention soon, not in a year.
const customExpiryFallbackDays = 30

func (m *Manager) storeCustom(ctx context.Context, cert *Certificate, certPEM, keyPEM []byte) error {
	issuedAt := m.now()
	notAfter := issuedAt.AddDate(0, 0, customExpiryFallbackDays)
	if notBefore, na, err := pki.ParseValidity(certPEM); err != nil {
		m.log.WarnContext(ctx, "cannot read uploaded certificate validity, assuming 30 days",
			logger.CertID(cert.ID), logger.Domain(cert.Domain), logger.Error(err))
		cert.Reason = "uploaded certificate expiry unreadable, assumed 30 days"
	} else {
		notAfter = na
		if !notBefore.IsZero() {
			issuedAt = notBefore
		}
	}
	return m.storeIssued(ctx, cert, certPEM, keyPEM, issuedAt, notAfter)
}

// storeIssued seals the material and marks the record issued. A sealing
// failure marks the record errored instead.
func (m *Manager) storeIssued(ctx context.Context, cert *Certificate, certPEM, keyPEM []byte, issuedAt, expiresAt time.Time) error {
	sealedCert, err := m.seal(certPEM)
	if err != nil {
		return m.fail(ctx, cert, fmt.Errorf("seal certificate: %w", err))
	}
	sealedKey, err := m.seal(keyPEM)
	if err != nil {
		return m.fail(ctx, cert, fmt.Errorf("seal private key: %w", err))
	}

	cert.Status = StatusIssued
	cert.EncryptedCert = sealedCert
	cert.EncryptedKey = sealedKey
	cert.IssuedAt = issuedAt
	cert.ExpiresAt = expiresAt
	cert.RenewsAt = expiresAt.AddDate(0, 0, -m.cfg.RenewalDays)
	cert.UpdatedAt = m.now()
	if err := m.store.Put(ctx, cert); err != nil {
		return fmt.Errorf("store certificate record: %w", err)
	}
	return nil
}

// fail marks the record errored and returns the cause. This is the terminal
// path: nothing could produce certificate material.
func (m *Manager) fail(ctx context.Context, cert *Certificate, cause error) error {
	cert.Status = StatusError
	cert.LastError = cause.Error()
	cert.UpdatedAt = m.now()
	if err := m.store.Put(ctx, cert); err != nil {
		m.log.ErrorContext(ctx, "cannot store errored certificate record",
			logger.CertID(cert.ID), logger.Error(err))
	}
	return cause
}

func (m *Manager) seal(plaintext []byte) (string, error) {
	if m.sealer == nil {
		return "", ErrSealingKeyRequired
	}
	return m.sealer.Seal(plaintext)
}

func (m *Manager) open(sealed string) ([]byte, error) {
	if m.sealer == nil {
		return nil, ErrSealingKeyRequired
	}
	return m.sealer.Open(sealed)
}

func (m *Manager) renewalDue(cert *Certificate) bool {
	return !cert.RenewsAt.IsZero() && !m.now().Before(cert.RenewsAt)
}

// lockFlow serializes flows per certificate ID and returns the unlock func.
func (m *Manager) lockFlow(id string) func() {
	m.flowMu.Lock()
	mu, ok := m.flows[id]
	if !ok {
		mu = &sync.Mutex{}
		m.flows[id] = mu
	}
	m.flowMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

func dedupAltNames(domain string, altNames []string) []string {
	seen := map[string]bool{domain: true}
	out := make([]string, 0, len(altNames))
	for _, name := range altNames {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
