package pki

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"github.com/JejuNetwork/certkit/core/der"
)

// Object identifiers shared by the CSR and certificate builders.
var (
	oidCommonName       = der.MustOID(2, 5, 4, 3)
	oidOrganization     = der.MustOID(2, 5, 4, 10)
	oidCountry          = der.MustOID(2, 5, 4, 6)
	oidECPublicKey      = der.MustOID(1, 2, 840, 10045, 2, 1)
	oidPrime256v1       = der.MustOID(1, 2, 840, 10045, 3, 1, 7)
	oidECDSAWithSHA256  = der.MustOID(1, 2, 840, 10045, 4, 3, 2)
	oidExtensionRequest = der.MustOID(1, 2, 840, 113549, 1, 9, 14)
	oidSubjectAltName   = der.MustOID(2, 5, 29, 17)
	oidBasicConstraints = der.MustOID(2, 5, 29, 19)
	oidKeyUsage         = der.MustOID(2, 5, 29, 15)
	oidExtKeyUsage      = der.MustOID(2, 5, 29, 37)
	oidServerAuth       = der.MustOID(1, 3, 6, 1, 5, 5, 7, 3, 1)
)

// subjectName describes the distinguished name fields the builders emit.
type subjectName struct {
	commonName   string
	organization string
	country      string
}

// buildName encodes an RDNSequence with one attribute per RDN, in the
// conventional C, O, CN order.
func buildName(n subjectName) ([]byte, error) {
	var rdns [][]byte

	add := func(oid []byte, value []byte) error {
		attr, err := der.Sequence(oid, value)
		if err != nil {
			return err
		}
		rdn, err := der.Set(attr)
		if err != nil {
			return err
		}
		rdns = append(rdns, rdn)
		return nil
	}

	if n.country != "" {
		v, err := der.PrintableString(n.country)
		if err != nil {
			return nil, err
		}
		if err := add(oidCountry, v); err != nil {
			return nil, err
		}
	}
	if n.organization != "" {
		v, err := der.UTF8String(n.organization)
		if err != nil {
			return nil, err
		}
		if err := add(oidOrganization, v); err != nil {
			return nil, err
		}
	}
	v, err := der.UTF8String(n.commonName)
	if err != nil {
		return nil, err
	}
	if err := add(oidCommonName, v); err != nil {
		return nil, err
	}

	return der.Sequence(rdns...)
}

// buildSubjectPublicKeyInfo encodes the SPKI for a P-256 public key with the
// uncompressed point form.
func buildSubjectPublicKeyInfo(pub *ecdsa.PublicKey) ([]byte, error) {
	algorithm, err := der.Sequence(oidECPublicKey, oidPrime256v1)
	if err != nil {
		return nil, err
	}

	point := make([]byte, 65)
	point[0] = 0x04
	pub.X.FillBytes(point[1:33])
	pub.Y.FillBytes(point[33:65])

	keyBits, err := der.BitString(point, 0)
	if err != nil {
		return nil, err
	}
	return der.Sequence(algorithm, keyBits)
}

// buildSubjectAltNames encodes the GeneralNames value listing each domain as
// a dNSName.
func buildSubjectAltNames(domains []string) ([]byte, error) {
	names := make([][]byte, 0, len(domains))
	for _, d := range domains {
		name, err := der.ContextTag(2, false, []byte(d))
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return der.Sequence(names...)
}

// signatureAlgorithm is the fixed ecdsa-with-SHA256 AlgorithmIdentifier; ECDSA
// carries no parameters.
func signatureAlgorithm() ([]byte, error) {
	return der.Sequence(oidECDSAWithSHA256)
}

// signECDSASHA256 signs message and returns the DER signature value. The sign
// step produces the raw concatenated r‖s form; the codec converts it to the
// SEQUENCE form the certificate and CSR signature fields require.
func signECDSASHA256(key *ecdsa.PrivateKey, message []byte) ([]byte, error) {
	if key == nil {
		return nil, ErrNilKey
	}
	digest := sha256.Sum256(message)
	r, s, err := ecdsa.Sign(rand.Reader, key, digest[:])
	if err != nil {
		return nil, fmt.Errorf("pki: ecdsa sign: %w", err)
	}

	raw := make([]byte, 64)
	r.FillBytes(raw[:32])
	s.FillBytes(raw[32:])
	return der.SignatureToDER(raw)
}
