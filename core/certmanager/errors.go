package certmanager

import "errors"

var (
	// ErrNotFound is returned when no certificate record exists for the
	// requested ID or domain, or when the record holds no issued material.
	ErrNotFound = errors.New("certificate not found")

	// ErrAccessDenied is returned when the accessor does not own the record.
	ErrAccessDenied = errors.New("access denied")

	// ErrSealingKeyRequired is returned on the first seal or open attempt
	// when the manager was constructed without a sealing secret.
	ErrSealingKeyRequired = errors.New("sealing key required")

	// ErrDomainRequired is returned when a request names no domain.
	ErrDomainRequired = errors.New("domain is required")

	// ErrOwnerRequired is returned when a request names no owner.
	ErrOwnerRequired = errors.New("owner is required")

	// ErrInvalidType is returned for an unrecognized certificate type.
	ErrInvalidType = errors.New("invalid certificate type")

	// ErrCustomMaterialRequired is returned when a custom certificate
	// request carries no PEM material.
	ErrCustomMaterialRequired = errors.New("custom certificate and key PEM are required")

	// ErrCustomNotRenewable is returned when renewal is requested for an
	// uploaded custom certificate; new material must be uploaded instead.
	ErrCustomNotRenewable = errors.New("custom certificates cannot be renewed")
)
