package pki

import "errors"

var (
	// ErrNoDomains is returned when a request names no domain at all.
	ErrNoDomains = errors.New("pki: at least one domain is required")

	// ErrNilKey is returned when a signing key is missing.
	ErrNilKey = errors.New("pki: signing key is required")

	// ErrInvalidPEM is returned when input does not decode as a PEM
	// CERTIFICATE block.
	ErrInvalidPEM = errors.New("pki: invalid certificate PEM")

	// ErrValidityNotFound is returned when the minimal DER walk cannot locate
	// the Validity field of a certificate.
	ErrValidityNotFound = errors.New("pki: certificate validity not found")
)
