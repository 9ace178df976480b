package pki

import (
	"encoding/pem"
	"fmt"
	"time"

	"github.com/JejuNetwork/certkit/core/der"
)

// ParseValidity extracts the notBefore/notAfter window from the first
// CERTIFICATE block in pemData. It walks exactly the prefix of the
// TBSCertificate needed to reach the Validity field; everything after it is
// ignored. Works for any issuer, not only certificates this module generated.
func ParseValidity(pemData []byte) (notBefore, notAfter time.Time, err error) {
	block, _ := pem.Decode(pemData)
	if block == nil || block.Type != "CERTIFICATE" {
		return time.Time{}, time.Time{}, ErrInvalidPEM
	}

	tag, certBody, _, err := der.ReadElement(block.Bytes)
	if err != nil || tag != der.TagSequence {
		return time.Time{}, time.Time{}, ErrValidityNotFound
	}
	tag, tbs, _, err := der.ReadElement(certBody)
	if err != nil || tag != der.TagSequence {
		return time.Time{}, time.Time{}, ErrValidityNotFound
	}

	// TBSCertificate prefix: [0] version (optional), serialNumber, signature
	// AlgorithmIdentifier, issuer Name, validity.
	rest := tbs
	var content []byte
	tag, _, rest, err = der.ReadElement(rest)
	if err != nil {
		return time.Time{}, time.Time{}, ErrValidityNotFound
	}
	if tag == 0xA0 { // explicit version present, skip the serial that follows
		if tag, _, rest, err = der.ReadElement(rest); err != nil || tag != der.TagInteger {
			return time.Time{}, time.Time{}, ErrValidityNotFound
		}
	}
	for _, want := range []byte{der.TagSequence, der.TagSequence} { // signature, issuer
		if tag, _, rest, err = der.ReadElement(rest); err != nil || tag != want {
			return time.Time{}, time.Time{}, ErrValidityNotFound
		}
	}
	if tag, content, _, err = der.ReadElement(rest); err != nil || tag != der.TagSequence {
		return time.Time{}, time.Time{}, ErrValidityNotFound
	}

	notBefore, content, err = readTime(content)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	notAfter, _, err = readTime(content)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return notBefore, notAfter, nil
}

func readTime(b []byte) (time.Time, []byte, error) {
	tag, content, rest, err := der.ReadElement(b)
	if err != nil {
		return time.Time{}, nil, ErrValidityNotFound
	}

	var layout string
	switch tag {
	case der.TagUTCTime:
		layout = "060102150405Z"
	case der.TagGeneralizedTime:
		layout = "20060102150405Z"
	default:
		return time.Time{}, nil, ErrValidityNotFound
	}

	t, err := time.Parse(layout, string(content))
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("%w: %s", ErrValidityNotFound, err)
	}
	return t, rest, nil
}
