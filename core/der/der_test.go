package der_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JejuNetwork/certkit/core/der"
)

func TestEncodeLength(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want []byte
	}{
		{name: "zero", n: 0, want: []byte{0x00}},
		{name: "short form upper interior", n: 126, want: []byte{0x7E}},
		{name: "short form boundary", n: 127, want: []byte{0x7F}},
		{name: "first long form value", n: 128, want: []byte{0x81, 0x80}},
		{name: "one byte long form max", n: 255, want: []byte{0x81, 0xFF}},
		{name: "two byte long form min", n: 256, want: []byte{0x82, 0x01, 0x00}},
		{name: "two byte long form max", n: 65535, want: []byte{0x82, 0xFF, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := der.EncodeLength(tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// Every encoded form must decode back to the original value.
			decoded, consumed, err := der.DecodeLength(got)
			require.NoError(t, err)
			assert.Equal(t, tt.n, decoded)
			assert.Equal(t, len(got), consumed)
		})
	}
}

func TestEncodeLengthTooLong(t *testing.T) {
	_, err := der.EncodeLength(65536)
	assert.ErrorIs(t, err, der.ErrLengthTooLong)

	_, err = der.EncodeLength(-1)
	assert.Error(t, err)
}

func TestTagWrapsContent(t *testing.T) {
	long := bytes.Repeat([]byte{0xAB}, 300)

	tests := []struct {
		name    string
		content []byte
		prefix  []byte
	}{
		{name: "short content", content: []byte{0x01, 0x02}, prefix: []byte{der.TagSequence, 0x02}},
		{name: "long content", content: long, prefix: []byte{der.TagSequence, 0x82, 0x01, 0x2C}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := der.Tag(der.TagSequence, tt.content)
			require.NoError(t, err)
			assert.Equal(t, tt.prefix, got[:len(tt.prefix)])
			assert.Equal(t, tt.content, got[len(tt.prefix):])
		})
	}
}

func TestInteger(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{name: "zero", in: []byte{0x00}, want: []byte{0x02, 0x01, 0x00}},
		{name: "small positive", in: []byte{0x2A}, want: []byte{0x02, 0x01, 0x2A}},
		{name: "high bit set gets pad", in: []byte{0x80}, want: []byte{0x02, 0x02, 0x00, 0x80}},
		{name: "leading zeros stripped", in: []byte{0x00, 0x00, 0x01}, want: []byte{0x02, 0x01, 0x01}},
		{name: "strip then repad", in: []byte{0x00, 0x00, 0xFF}, want: []byte{0x02, 0x02, 0x00, 0xFF}},
		{name: "empty input is zero", in: nil, want: []byte{0x02, 0x01, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := der.Integer(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIntegerHighBitRule32Bytes(t *testing.T) {
	highSet := bytes.Repeat([]byte{0xFF}, 32)
	highClear := append([]byte{0x7F}, bytes.Repeat([]byte{0xFF}, 31)...)

	set, err := der.Integer(highSet)
	require.NoError(t, err)
	assert.Equal(t, byte(33), set[1], "high-bit value must gain a pad byte")
	assert.Equal(t, byte(0x00), set[2])

	clear, err := der.Integer(highClear)
	require.NoError(t, err)
	assert.Equal(t, byte(32), clear[1], "clear high bit must stay unpadded")
	assert.Equal(t, byte(0x7F), clear[2])
}

func TestOID(t *testing.T) {
	tests := []struct {
		name string
		arcs []int
		want []byte
	}{
		{
			name: "ecdsa-with-SHA256",
			arcs: []int{1, 2, 840, 10045, 4, 3, 2},
			want: []byte{0x06, 0x08, 0x2A, 0x86, 0x48, 0xCE, 0x3D, 0x04, 0x03, 0x02},
		},
		{
			name: "commonName",
			arcs: []int{2, 5, 4, 3},
			want: []byte{0x06, 0x03, 0x55, 0x04, 0x03},
		},
		{
			name: "subjectAltName",
			arcs: []int{2, 5, 29, 17},
			want: []byte{0x06, 0x03, 0x55, 0x1D, 0x11},
		},
		{
			name: "extensionRequest",
			arcs: []int{1, 2, 840, 113549, 1, 9, 14},
			want: []byte{0x06, 0x09, 0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x09, 0x0E},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := der.OID(tt.arcs...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOIDInvalid(t *testing.T) {
	_, err := der.OID(1)
	assert.Error(t, err)

	_, err = der.OID(1, 40)
	assert.Error(t, err)
}

func TestBitString(t *testing.T) {
	got, err := der.BitString([]byte{0xA0}, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03, 0x02, 0x05, 0xA0}, got)

	got, err = der.BitString([]byte{0x01, 0x02}, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03, 0x03, 0x00, 0x01, 0x02}, got)

	_, err = der.BitString([]byte{0x00}, 8)
	assert.Error(t, err)
}

func TestBoolean(t *testing.T) {
	got, err := der.Boolean(true)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x01, 0xFF}, got)

	got, err = der.Boolean(false)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x01, 0x00}, got)
}

func TestUTCTime(t *testing.T) {
	ts := time.Date(2026, time.March, 7, 14, 30, 45, 0, time.UTC)
	got, err := der.UTCTime(ts)
	require.NoError(t, err)
	assert.Equal(t, byte(der.TagUTCTime), got[0])
	assert.Equal(t, "260307143045Z", string(got[2:]))

	// Non-UTC inputs must be normalized before formatting.
	loc := time.FixedZone("UTC+2", 2*60*60)
	got, err = der.UTCTime(ts.In(loc))
	require.NoError(t, err)
	assert.Equal(t, "260307143045Z", string(got[2:]))
}

func TestUTCTimeRange(t *testing.T) {
	// The two-digit year only covers 1950 through 2049; anything outside
	// must be rejected instead of wrapping around.
	got, err := der.UTCTime(time.Date(2049, time.December, 31, 23, 59, 59, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "491231235959Z", string(got[2:]))

	_, err = der.UTCTime(time.Date(2050, time.January, 1, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err)

	_, err = der.UTCTime(time.Date(1949, time.December, 31, 23, 59, 59, 0, time.UTC))
	assert.Error(t, err)
}

func TestGeneralizedTime(t *testing.T) {
	got, err := der.GeneralizedTime(time.Date(2052, time.March, 7, 14, 30, 45, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, byte(der.TagGeneralizedTime), got[0])
	assert.Equal(t, "20520307143045Z", string(got[2:]))
}

func TestContextTag(t *testing.T) {
	inner, err := der.Integer([]byte{0x02})
	require.NoError(t, err)

	got, err := der.ContextTag(0, true, inner)
	require.NoError(t, err)
	assert.Equal(t, byte(0xA0), got[0])

	got, err = der.ContextTag(2, false, []byte("example.com"))
	require.NoError(t, err)
	assert.Equal(t, byte(0x82), got[0])
	assert.Equal(t, []byte("example.com"), got[2:])
}

func TestSequenceAndSetNesting(t *testing.T) {
	a, err := der.Integer([]byte{0x01})
	require.NoError(t, err)
	b, err := der.UTF8String("example.com")
	require.NoError(t, err)

	set, err := der.Set(a)
	require.NoError(t, err)
	seq, err := der.Sequence(set, b)
	require.NoError(t, err)

	tag, content, rest, err := der.ReadElement(seq)
	require.NoError(t, err)
	assert.Equal(t, byte(der.TagSequence), tag)
	assert.Empty(t, rest)

	tag, inner, content, err := der.ReadElement(content)
	require.NoError(t, err)
	assert.Equal(t, byte(der.TagSet), tag)
	assert.Equal(t, a, inner, "set content is the full integer element")

	tag, str, rest, err := der.ReadElement(content)
	require.NoError(t, err)
	assert.Equal(t, byte(der.TagUTF8String), tag)
	assert.Equal(t, "example.com", string(str))
	assert.Empty(t, rest)
}

func TestReadElementTruncated(t *testing.T) {
	_, _, _, err := der.ReadElement([]byte{0x30})
	assert.ErrorIs(t, err, der.ErrTruncated)

	_, _, _, err = der.ReadElement([]byte{0x30, 0x05, 0x01})
	assert.ErrorIs(t, err, der.ErrTruncated)
}
