// Package pki assembles PKCS#10 certification requests and self-signed X.509
// certificates on top of the core/der encoder.
//
// The CSR builder feeds the ACME finalize step: CN is the first domain, every
// domain lands in a subjectAltName extension request, and the request is
// signed ecdsa-with-SHA256. The self-signed generator backs the fallback path
// when no ACME CA is reachable; the CertificateInfo it returns is the
// authoritative source for notBefore/notAfter bookkeeping because the module
// carries no general-purpose certificate parser.
//
// ParseValidity is the one concession to parsing: a minimal walk of a DER
// certificate that extracts the Validity field only, used to read expiry off
// uploaded custom certificates and downloaded ACME chains.
//
// # Errors
//
//   - ErrNoDomains: certificate request without a single domain
//   - ErrInvalidPEM: input that does not decode as a CERTIFICATE block
//   - ErrValidityNotFound: certificate structure the validity walk cannot follow
package pki
