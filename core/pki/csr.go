package pki

import (
	"crypto/ecdsa"
	"encoding/base64"

	"github.com/JejuNetwork/certkit/core/der"
)

// CreateCertificateRequest builds a PKCS#10 CertificationRequest in DER form.
// The first domain becomes the subject CN; all domains are carried in a
// subjectAltName extension request attribute; the request is signed with
// ecdsa-with-SHA256 using key.
func CreateCertificateRequest(key *ecdsa.PrivateKey, domains []string) ([]byte, error) {
	if len(domains) == 0 {
		return nil, ErrNoDomains
	}
	if key == nil {
		return nil, ErrNilKey
	}

	version, err := der.Integer([]byte{0x00})
	if err != nil {
		return nil, err
	}

	subject, err := buildName(subjectName{commonName: domains[0]})
	if err != nil {
		return nil, err
	}

	spki, err := buildSubjectPublicKeyInfo(&key.PublicKey)
	if err != nil {
		return nil, err
	}

	attributes, err := buildExtensionRequestAttribute(domains)
	if err != nil {
		return nil, err
	}

	info, err := der.Sequence(version, subject, spki, attributes)
	if err != nil {
		return nil, err
	}

	algorithm, err := signatureAlgorithm()
	if err != nil {
		return nil, err
	}

	signature, err := signECDSASHA256(key, info)
	if err != nil {
		return nil, err
	}
	signatureBits, err := der.BitString(signature, 0)
	if err != nil {
		return nil, err
	}

	return der.Sequence(info, algorithm, signatureBits)
}

// CreateCertificateRequestBase64 returns the CSR in the unpadded base64url
// form ACME's finalize call expects.
func CreateCertificateRequestBase64(key *ecdsa.PrivateKey, domains []string) (string, error) {
	csr, err := CreateCertificateRequest(key, domains)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(csr), nil
}

// buildExtensionRequestAttribute encodes the [0] attributes field holding a
// single pkcs-9 extensionRequest with the SAN extension over all domains.
func buildExtensionRequestAttribute(domains []string) ([]byte, error) {
	sanValue, err := buildSubjectAltNames(domains)
	if err != nil {
		return nil, err
	}
	sanOctets, err := der.OctetString(sanValue)
	if err != nil {
		return nil, err
	}
	sanExtension, err := der.Sequence(oidSubjectAltName, sanOctets)
	if err != nil {
		return nil, err
	}
	extensions, err := der.Sequence(sanExtension)
	if err != nil {
		return nil, err
	}
	values, err := der.Set(extensions)
	if err != nil {
		return nil, err
	}
	attribute, err := der.Sequence(oidExtensionRequest, values)
	if err != nil {
		return nil, err
	}
	return der.ContextTag(0, true, attribute)
}
