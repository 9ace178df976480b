package pki

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"time"

	"github.com/JejuNetwork/certkit/core/der"
)

const defaultValidityDays = 365

// CertificateRequest describes a self-signed certificate to generate.
type CertificateRequest struct {
	CommonName   string
	Organization string
	Country      string
	AltNames     []string
	ValidityDays int
	IsCA         bool
}

// CertificateInfo carries the generated material plus the validity window the
// generator committed to. Callers rely on these fields for renewal
// bookkeeping instead of re-parsing the certificate.
type CertificateInfo struct {
	CertificatePEM string
	PrivateKeyPEM  string
	PublicKeyPEM   string
	SerialNumber   string
	NotBefore      time.Time
	NotAfter       time.Time
}

// GenerateSelfSigned creates a fresh P-256 key pair and a v3 certificate
// signed by it. The subjectAltName extension always lists the common name
// first, followed by the alt names.
func GenerateSelfSigned(req CertificateRequest) (*CertificateInfo, error) {
	if req.CommonName == "" {
		return nil, ErrNoDomains
	}
	validityDays := req.ValidityDays
	if validityDays <= 0 {
		validityDays = defaultValidityDays
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("pki: generate key: %w", err)
	}

	serial := make([]byte, 16)
	if _, err := rand.Read(serial); err != nil {
		return nil, fmt.Errorf("pki: generate serial: %w", err)
	}
	// Keep the serial positive without relying on the INTEGER pad byte.
	serial[0] &= 0x7F

	notBefore := time.Now().UTC().Truncate(time.Second)
	notAfter := notBefore.Add(time.Duration(validityDays) * 24 * time.Hour)

	spki, err := buildSubjectPublicKeyInfo(&key.PublicKey)
	if err != nil {
		return nil, err
	}

	tbs, err := buildTBSCertificate(req, serial, notBefore, notAfter, spki)
	if err != nil {
		return nil, err
	}

	algorithm, err := signatureAlgorithm()
	if err != nil {
		return nil, err
	}
	signature, err := signECDSASHA256(key, tbs)
	if err != nil {
		return nil, err
	}
	signatureBits, err := der.BitString(signature, 0)
	if err != nil {
		return nil, err
	}
	cert, err := der.Sequence(tbs, algorithm, signatureBits)
	if err != nil {
		return nil, err
	}

	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("pki: marshal private key: %w", err)
	}

	return &CertificateInfo{
		CertificatePEM: string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert})),
		PrivateKeyPEM:  string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})),
		PublicKeyPEM:   string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: spki})),
		SerialNumber:   hex.EncodeToString(serial),
		NotBefore:      notBefore,
		NotAfter:       notAfter,
	}, nil
}

func buildTBSCertificate(req CertificateRequest, serial []byte, notBefore, notAfter time.Time, spki []byte) ([]byte, error) {
	versionInt, err := der.Integer([]byte{0x02}) // v3
	if err != nil {
		return nil, err
	}
	version, err := der.ContextTag(0, true, versionInt)
	if err != nil {
		return nil, err
	}

	serialNumber, err := der.Integer(serial)
	if err != nil {
		return nil, err
	}

	algorithm, err := signatureAlgorithm()
	if err != nil {
		return nil, err
	}

	// Issuer and subject are the same DN on a self-signed certificate.
	name, err := buildName(subjectName{
		commonName:   req.CommonName,
		organization: req.Organization,
		country:      req.Country,
	})
	if err != nil {
		return nil, err
	}

	nb, err := encodeTime(notBefore)
	if err != nil {
		return nil, err
	}
	na, err := encodeTime(notAfter)
	if err != nil {
		return nil, err
	}
	validity, err := der.Sequence(nb, na)
	if err != nil {
		return nil, err
	}

	extensions, err := buildExtensions(req)
	if err != nil {
		return nil, err
	}

	return der.Sequence(version, serialNumber, algorithm, name, validity, name, spki, extensions)
}

// encodeTime follows RFC 5280: UTCTime through 2049, GeneralizedTime from
// 2050 on.
func encodeTime(t time.Time) ([]byte, error) {
	if t.UTC().Year() >= 2050 {
		return der.GeneralizedTime(t)
	}
	return der.UTCTime(t)
}

func buildExtensions(req CertificateRequest) ([]byte, error) {
	basicConstraints, err := buildBasicConstraints(req.IsCA)
	if err != nil {
		return nil, err
	}
	keyUsage, err := buildKeyUsage()
	if err != nil {
		return nil, err
	}
	extKeyUsage, err := buildExtKeyUsage()
	if err != nil {
		return nil, err
	}

	domains := make([]string, 0, 1+len(req.AltNames))
	domains = append(domains, req.CommonName)
	for _, alt := range req.AltNames {
		if alt != req.CommonName {
			domains = append(domains, alt)
		}
	}
	san, err := buildSANExtension(domains)
	if err != nil {
		return nil, err
	}

	list, err := der.Sequence(basicConstraints, keyUsage, extKeyUsage, san)
	if err != nil {
		return nil, err
	}
	return der.ContextTag(3, true, list)
}

func buildBasicConstraints(isCA bool) ([]byte, error) {
	var value []byte
	var err error
	if isCA {
		ca, cerr := der.Boolean(true)
		if cerr != nil {
			return nil, cerr
		}
		value, err = der.Sequence(ca)
	} else {
		value, err = der.Sequence()
	}
	if err != nil {
		return nil, err
	}
	return buildExtension(oidBasicConstraints, true, value)
}

func buildKeyUsage() ([]byte, error) {
	// digitalSignature (bit 0) and keyEncipherment (bit 2): one content octet
	// 0xA0 with five unused trailing bits.
	value, err := der.BitString([]byte{0xA0}, 5)
	if err != nil {
		return nil, err
	}
	return buildExtension(oidKeyUsage, true, value)
}

func buildExtKeyUsage() ([]byte, error) {
	value, err := der.Sequence(oidServerAuth)
	if err != nil {
		return nil, err
	}
	return buildExtension(oidExtKeyUsage, false, value)
}

func buildSANExtension(domains []string) ([]byte, error) {
	value, err := buildSubjectAltNames(domains)
	if err != nil {
		return nil, err
	}
	return buildExtension(oidSubjectAltName, false, value)
}

func buildExtension(oid []byte, critical bool, value []byte) ([]byte, error) {
	octets, err := der.OctetString(value)
	if err != nil {
		return nil, err
	}
	if !critical {
		return der.Sequence(oid, octets)
	}
	flag, err := der.Boolean(true)
	if err != nil {
		return nil, err
	}
	return der.Sequence(oid, flag, octets)
}
