package certmanager

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Certificate types.
const (
	TypeACME       = "acme"        // issued by an ACME certificate authority
	TypeSelfSigned = "self-signed" // generated locally
	TypeManaged    = "managed"     // platform-managed, issued through ACME
	TypeCustom     = "custom"      // uploaded by the owner
)

// Certificate statuses.
const (
	StatusPending    = "pending"    // record created, no flow outcome yet
	StatusValidating = "validating" // ACME challenges in flight
	StatusIssued     = "issued"     // material sealed and ready to serve
	StatusExpired    = "expired"    // past its notAfter
	StatusRevoked    = "revoked"    // revoked by the owner
	StatusError      = "error"      // no material could be produced
)

// Certificate is the stored lifecycle record for one domain. Certificate
// material is kept sealed; use Manager.GetDecryptedCertificate to read it.
type Certificate struct {
	ID       string   `json:"id"`
	Domain   string   `json:"domain"`
	AltNames []string `json:"alt_names,omitempty"`
	Type     string   `json:"type"`
	Status   string   `json:"status"`
	Owner    string   `json:"owner"`

	// Reason records a degradation, such as a fallback to self-signed
	// material after an ACME failure. Empty for a clean issuance.
	Reason    string `json:"reason,omitempty"`
	LastError string `json:"last_error,omitempty"`

	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	RenewsAt  time.Time `json:"renews_at"`

	EncryptedCert string `json:"encrypted_cert,omitempty"`
	EncryptedKey  string `json:"encrypted_key,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Health summarizes the certificate inventory for a health endpoint.
type Health struct {
	Status   string `json:"status"`
	Total    int    `json:"total_certificates"`
	Issued   int    `json:"issued_certificates"`
	Pending  int    `json:"pending_certificates"`
	Errored  int    `json:"errored_certificates"`
	Expiring int    `json:"expiring_certificates"`
}

// CertID derives the stable certificate ID for a domain. Domains are
// lowercased first so lookups are case-insensitive; the ID is the first half
// of the SHA-256 digest in hex, which keeps keys short without collisions at
// any realistic inventory size.
func CertID(domain string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(domain))))
	return hex.EncodeToString(sum[:16])
}

func validType(t string) bool {
	switch t {
	case TypeACME, TypeSelfSigned, TypeManaged, TypeCustom:
		return true
	}
	return false
}
