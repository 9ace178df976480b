package certmanager_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JejuNetwork/certkit/core/certmanager"
)

func TestSealerRoundTrip(t *testing.T) {
	t.Parallel()

	s, err := certmanager.NewSealer([]byte("secret"))
	require.NoError(t, err)

	plaintext := []byte("-----BEGIN CERTIFICATE-----\npayload\n-----END CERTIFICATE-----\n")
	sealed, err := s.Seal(plaintext)
	require.NoError(t, err)
	assert.NotContains(t, sealed, "CERTIFICATE")

	opened, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestSealerFreshNonces(t *testing.T) {
	t.Parallel()

	s, err := certmanager.NewSealer([]byte("secret"))
	require.NoError(t, err)

	a, err := s.Seal([]byte("same"))
	require.NoError(t, err)
	b, err := s.Seal([]byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "each seal uses a fresh nonce")
}

func TestSealerRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := certmanager.NewSealer(nil)
	assert.ErrorIs(t, err, certmanager.ErrSealingKeyRequired)
}

func TestSealerRejectsTamperedValue(t *testing.T) {
	t.Parallel()

	s, err := certmanager.NewSealer([]byte("secret"))
	require.NoError(t, err)
	sealed, err := s.Seal([]byte("payload"))
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(sealed)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01
	_, err = s.Open(base64.StdEncoding.EncodeToString(raw))
	assert.Error(t, err)
}

func TestSealerRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	a, err := certmanager.NewSealer([]byte("secret-a"))
	require.NoError(t, err)
	b, err := certmanager.NewSealer([]byte("secret-b"))
	require.NoError(t, err)

	sealed, err := a.Seal([]byte("payload"))
	require.NoError(t, err)
	_, err = b.Open(sealed)
	assert.Error(t, err)
}

func TestSealerRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	s, err := certmanager.NewSealer([]byte("secret"))
	require.NoError(t, err)

	_, err = s.Open("not base64!!!")
	assert.Error(t, err)

	_, err = s.Open(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.Error(t, err)
}
