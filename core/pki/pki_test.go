package pki_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JejuNetwork/certkit/core/pki"
)

func TestCreateCertificateRequest(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	domains := []string{"a.example", "b.example"}
	csrDER, err := pki.CreateCertificateRequest(key, domains)
	require.NoError(t, err)

	// The standard library is the independent referee for our hand-rolled DER.
	csr, err := x509.ParseCertificateRequest(csrDER)
	require.NoError(t, err)

	assert.Equal(t, "a.example", csr.Subject.CommonName)
	assert.ElementsMatch(t, domains, csr.DNSNames)
	assert.Equal(t, x509.ECDSAWithSHA256, csr.SignatureAlgorithm)

	// Signature must verify against the embedded public key.
	require.NoError(t, csr.CheckSignature())

	pub, ok := csr.PublicKey.(*ecdsa.PublicKey)
	require.True(t, ok)
	assert.True(t, pub.Equal(&key.PublicKey))
}

func TestCreateCertificateRequestSingleDomain(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	csrDER, err := pki.CreateCertificateRequest(key, []string{"example.com"})
	require.NoError(t, err)

	csr, err := x509.ParseCertificateRequest(csrDER)
	require.NoError(t, err)
	assert.Equal(t, "example.com", csr.Subject.CommonName)
	assert.Equal(t, []string{"example.com"}, csr.DNSNames)
	require.NoError(t, csr.CheckSignature())
}

func TestCreateCertificateRequestBase64(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	encoded, err := pki.CreateCertificateRequestBase64(key, []string{"example.com"})
	require.NoError(t, err)
	assert.NotContains(t, encoded, "=", "finalize wants unpadded base64url")

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	require.NoError(t, err)
	_, err = x509.ParseCertificateRequest(raw)
	require.NoError(t, err)
}

func TestCreateCertificateRequestValidation(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	_, err = pki.CreateCertificateRequest(key, nil)
	assert.ErrorIs(t, err, pki.ErrNoDomains)

	_, err = pki.CreateCertificateRequest(nil, []string{"example.com"})
	assert.ErrorIs(t, err, pki.ErrNilKey)
}

func TestGenerateSelfSigned(t *testing.T) {
	info, err := pki.GenerateSelfSigned(pki.CertificateRequest{
		CommonName:   "example.com",
		Organization: "Example Org",
		Country:      "US",
		AltNames:     []string{"www.example.com", "api.example.com"},
		ValidityDays: 90,
	})
	require.NoError(t, err)

	assert.True(t, info.NotBefore.Before(info.NotAfter))
	assert.InDelta(t, (90 * 24 * time.Hour).Seconds(), info.NotAfter.Sub(info.NotBefore).Seconds(), 1)

	block, _ := pem.Decode([]byte(info.CertificatePEM))
	require.NotNil(t, block)
	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)

	assert.Equal(t, "example.com", cert.Subject.CommonName)
	assert.Equal(t, []string{"Example Org"}, cert.Subject.Organization)
	assert.Equal(t, []string{"US"}, cert.Subject.Country)
	assert.ElementsMatch(t, []string{"example.com", "www.example.com", "api.example.com"}, cert.DNSNames)
	assert.Equal(t, cert.Issuer.String(), cert.Subject.String())
	assert.False(t, cert.IsCA)
	assert.True(t, cert.BasicConstraintsValid)
	assert.Equal(t, x509.KeyUsageDigitalSignature|x509.KeyUsageKeyEncipherment, cert.KeyUsage)
	assert.Equal(t, []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth}, cert.ExtKeyUsage)

	assert.WithinDuration(t, info.NotBefore, cert.NotBefore, time.Second)
	assert.WithinDuration(t, info.NotAfter, cert.NotAfter, time.Second)

	// Self-signature must verify.
	require.NoError(t, cert.CheckSignatureFrom(cert))

	// Key material round-trips as a TLS pair.
	keyBlock, _ := pem.Decode([]byte(info.PrivateKeyPEM))
	require.NotNil(t, keyBlock)
	assert.Equal(t, "PRIVATE KEY", keyBlock.Type)
	priv, err := x509.ParsePKCS8PrivateKey(keyBlock.Bytes)
	require.NoError(t, err)
	ecKey, ok := priv.(*ecdsa.PrivateKey)
	require.True(t, ok)
	assert.True(t, ecKey.PublicKey.Equal(cert.PublicKey))

	pubBlock, _ := pem.Decode([]byte(info.PublicKeyPEM))
	require.NotNil(t, pubBlock)
	pub, err := x509.ParsePKIXPublicKey(pubBlock.Bytes)
	require.NoError(t, err)
	assert.True(t, ecKey.PublicKey.Equal(pub))
}

func TestGenerateSelfSignedCA(t *testing.T) {
	info, err := pki.GenerateSelfSigned(pki.CertificateRequest{
		CommonName: "ca.internal",
		IsCA:       true,
	})
	require.NoError(t, err)

	block, _ := pem.Decode([]byte(info.CertificatePEM))
	require.NotNil(t, block)
	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)

	assert.True(t, cert.IsCA)
	// Default validity applies when none is given.
	assert.InDelta(t, (365 * 24 * time.Hour).Seconds(), cert.NotAfter.Sub(cert.NotBefore).Seconds(), 1)
}

func TestGenerateSelfSignedSerialIsPositive(t *testing.T) {
	for range 8 {
		info, err := pki.GenerateSelfSigned(pki.CertificateRequest{CommonName: "example.com"})
		require.NoError(t, err)

		block, _ := pem.Decode([]byte(info.CertificatePEM))
		require.NotNil(t, block)
		cert, err := x509.ParseCertificate(block.Bytes)
		require.NoError(t, err)
		assert.Equal(t, 1, cert.SerialNumber.Sign())
	}
}

func TestGenerateSelfSignedLongValidity(t *testing.T) {
	// A notAfter past 2049 must come out as GeneralizedTime; with a
	// two-digit UTCTime year it would wrap back into the nineteen fifties.
	info, err := pki.GenerateSelfSigned(pki.CertificateRequest{
		CommonName:   "example.com",
		ValidityDays: 10000,
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, info.NotAfter.Year(), 2050)

	block, _ := pem.Decode([]byte(info.CertificatePEM))
	require.NotNil(t, block)
	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)
	assert.True(t, cert.NotAfter.Equal(info.NotAfter))
	assert.True(t, cert.NotBefore.Equal(info.NotBefore))

	notBefore, notAfter, err := pki.ParseValidity([]byte(info.CertificatePEM))
	require.NoError(t, err)
	assert.True(t, notBefore.Equal(info.NotBefore))
	assert.True(t, notAfter.Equal(info.NotAfter))
}

func TestGenerateSelfSignedRequiresCommonName(t *testing.T) {
	_, err := pki.GenerateSelfSigned(pki.CertificateRequest{})
	assert.ErrorIs(t, err, pki.ErrNoDomains)
}

func TestParseValidity(t *testing.T) {
	info, err := pki.GenerateSelfSigned(pki.CertificateRequest{
		CommonName:   "example.com",
		ValidityDays: 30,
	})
	require.NoError(t, err)

	notBefore, notAfter, err := pki.ParseValidity([]byte(info.CertificatePEM))
	require.NoError(t, err)
	assert.True(t, notBefore.Equal(info.NotBefore))
	assert.True(t, notAfter.Equal(info.NotAfter))
}

func TestParseValidityForeignCertificate(t *testing.T) {
	// A certificate produced by the standard library exercises the walk on
	// DER this module did not emit itself.
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		NotBefore:    time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC),
		NotAfter:     time.Date(2026, time.July, 2, 3, 4, 5, 0, time.UTC),
		DNSNames:     []string{"upload.example"},
	}
	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})

	notBefore, notAfter, err := pki.ParseValidity(certPEM)
	require.NoError(t, err)
	assert.True(t, notBefore.Equal(template.NotBefore))
	assert.True(t, notAfter.Equal(template.NotAfter))
}

func TestParseValidityErrors(t *testing.T) {
	_, _, err := pki.ParseValidity([]byte("not pem at all"))
	assert.ErrorIs(t, err, pki.ErrInvalidPEM)

	garbage := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte{0x30, 0x03, 0x02, 0x01, 0x01}})
	_, _, err = pki.ParseValidity(garbage)
	assert.ErrorIs(t, err, pki.ErrValidityNotFound)
}
