// Package certmanager orchestrates the certificate lifecycle per domain:
// request, renewal, revocation and deletion, with certificate material sealed
// at rest and a periodic renewal sweep.
//
// A Manager dispatches each request by certificate type. ACME-backed
// certificates run the full order/challenge/finalize flow through an injected
// ACME client; self-signed certificates come straight from core/pki; custom
// certificates are uploaded PEM pairs sealed as-is. When the ACME path fails
// for any reason — no client configured, CA unreachable, order invalid — the
// manager degrades to self-signed material rather than leaving the domain
// uncertified, and records the degradation on the certificate so it is
// observable.
//
// Records live in an injected Store keyed by certificate ID (a truncated hash
// of the lowercased domain, one record per domain). NewMemoryStore covers
// tests and single-process deployments; integration/store/redis persists
// records in Redis.
//
// Certificate material is sealed with AES-256-GCM under a key derived from
// the injected sealing secret via HKDF-SHA256. The sealed form is
// base64(nonce ‖ ciphertext); the secret itself comes from an external key
// management service and is process-lifetime state.
//
// The manager also serves as the challenge responder: in-flight HTTP-01 and
// DNS-01 tokens map to their key authorizations for the duration of a flow,
// exposed through HTTP01Response, DNS01Record, and the ChallengeHandler HTTP
// handler for /.well-known/acme-challenge/ requests.
//
// # Errors
//
//   - ErrNotFound: no record for the certificate ID or domain
//   - ErrAccessDenied: accessor does not own the record
//   - ErrSealingKeyRequired: seal/open attempted without a sealing secret
//   - ErrOwnerRequired / ErrDomainRequired: rejected input
package certmanager
