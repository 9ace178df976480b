package der

import (
	"errors"
	"fmt"
	"time"
)

// Universal class tag numbers used by the builders below.
const (
	TagBoolean         = 0x01
	TagInteger         = 0x02
	TagBitString       = 0x03
	TagOctetString     = 0x04
	TagOID             = 0x06
	TagUTF8String      = 0x0C
	TagPrintableString = 0x13
	TagUTCTime         = 0x17
	TagGeneralizedTime = 0x18
	TagSequence        = 0x30
	TagSet             = 0x31
)

var (
	// ErrLengthTooLong is returned when content exceeds the two-byte long-form
	// length limit (65535 bytes). Nothing this module emits comes close.
	ErrLengthTooLong = errors.New("der: content length exceeds two-byte encoding")

	// ErrTruncated is returned by the reader when an element claims more
	// content than the buffer holds.
	ErrTruncated = errors.New("der: truncated element")
)

// EncodeLength encodes n using the definite length form: short form below 128,
// one-byte long form below 256, two-byte long form below 65536.
func EncodeLength(n int) ([]byte, error) {
	switch {
	case n < 0:
		return nil, fmt.Errorf("der: negative length %d", n)
	case n < 0x80:
		return []byte{byte(n)}, nil
	case n < 0x100:
		return []byte{0x81, byte(n)}, nil
	case n < 0x10000:
		return []byte{0x82, byte(n >> 8), byte(n)}, nil
	default:
		return nil, ErrLengthTooLong
	}
}

// DecodeLength decodes a definite length produced by EncodeLength. It returns
// the content length and the number of length bytes consumed.
func DecodeLength(b []byte) (length, consumed int, err error) {
	if len(b) == 0 {
		return 0, 0, ErrTruncated
	}
	first := b[0]
	if first < 0x80 {
		return int(first), 1, nil
	}
	n := int(first & 0x7F)
	if n == 0 || n > 2 {
		return 0, 0, fmt.Errorf("der: unsupported length form 0x%02x", first)
	}
	if len(b) < 1+n {
		return 0, 0, ErrTruncated
	}
	for _, c := range b[1 : 1+n] {
		length = length<<8 | int(c)
	}
	return length, 1 + n, nil
}

// Tag prepends the identifier octet and encoded length to content.
func Tag(tag byte, content []byte) ([]byte, error) {
	length, err := EncodeLength(len(content))
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 1+len(length)+len(content))
	out = append(out, tag)
	out = append(out, length...)
	out = append(out, content...)
	return out, nil
}

// Integer encodes b as a positive INTEGER. Leading zero bytes are stripped and
// a single 0x00 is re-added iff the high bit of the first remaining byte is
// set. The same rule serves serial numbers and ECDSA r/s values.
func Integer(b []byte) ([]byte, error) {
	i := 0
	for i < len(b)-1 && b[i] == 0 {
		i++
	}
	trimmed := b[i:]
	if len(trimmed) == 0 {
		trimmed = []byte{0}
	}
	if trimmed[0]&0x80 != 0 {
		padded := make([]byte, 0, len(trimmed)+1)
		padded = append(padded, 0x00)
		trimmed = append(padded, trimmed...)
	}
	return Tag(TagInteger, trimmed)
}

// Boolean encodes a BOOLEAN. DER requires TRUE to be 0xFF.
func Boolean(v bool) ([]byte, error) {
	content := byte(0x00)
	if v {
		content = 0xFF
	}
	return Tag(TagBoolean, []byte{content})
}

// OID encodes an OBJECT IDENTIFIER. The first two arcs collapse into a single
// octet 40*a+b; remaining arcs use base-128 with the continuation bit.
func OID(arcs ...int) ([]byte, error) {
	if len(arcs) < 2 {
		return nil, fmt.Errorf("der: oid needs at least two arcs, got %d", len(arcs))
	}
	if arcs[0] > 2 || (arcs[0] < 2 && arcs[1] >= 40) {
		return nil, fmt.Errorf("der: invalid oid leading arcs %d.%d", arcs[0], arcs[1])
	}
	content := []byte{byte(arcs[0]*40 + arcs[1])}
	for _, arc := range arcs[2:] {
		if arc < 0 {
			return nil, fmt.Errorf("der: negative oid arc %d", arc)
		}
		content = append(content, base128(arc)...)
	}
	return Tag(TagOID, content)
}

// MustOID is OID for compile-time constant identifiers; it panics on error.
func MustOID(arcs ...int) []byte {
	b, err := OID(arcs...)
	if err != nil {
		panic(err)
	}
	return b
}

func base128(n int) []byte {
	if n == 0 {
		return []byte{0}
	}
	var rev []byte
	for n > 0 {
		rev = append(rev, byte(n&0x7F))
		n >>= 7
	}
	out := make([]byte, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		c := rev[i]
		if i != 0 {
			c |= 0x80
		}
		out = append(out, c)
	}
	return out
}

// Sequence concatenates elems into a SEQUENCE.
func Sequence(elems ...[]byte) ([]byte, error) {
	return Tag(TagSequence, flatten(elems))
}

// Set concatenates elems into a SET.
func Set(elems ...[]byte) ([]byte, error) {
	return Tag(TagSet, flatten(elems))
}

// BitString encodes b as a BIT STRING with the given count of unused trailing
// bits in the final octet. Public keys and signatures use zero unused bits;
// named-bit lists such as keyUsage need a non-zero count.
func BitString(b []byte, unusedBits int) ([]byte, error) {
	if unusedBits < 0 || unusedBits > 7 {
		return nil, fmt.Errorf("der: unused bit count %d out of range", unusedBits)
	}
	content := make([]byte, 0, len(b)+1)
	content = append(content, byte(unusedBits))
	content = append(content, b...)
	return Tag(TagBitString, content)
}

// OctetString encodes b as an OCTET STRING.
func OctetString(b []byte) ([]byte, error) {
	return Tag(TagOctetString, b)
}

// UTF8String encodes s as a UTF8String.
func UTF8String(s string) ([]byte, error) {
	return Tag(TagUTF8String, []byte(s))
}

// PrintableString encodes s as a PrintableString. The caller is responsible
// for restricting s to the PrintableString alphabet (country codes here).
func PrintableString(s string) ([]byte, error) {
	return Tag(TagPrintableString, []byte(s))
}

// UTCTime encodes t as YYMMDDHHMMSSZ in UTC. The two-digit year covers only
// 1950 through 2049 per RFC 5280; dates outside that window are rejected
// rather than silently wrapped, use GeneralizedTime for them.
func UTCTime(t time.Time) ([]byte, error) {
	u := t.UTC()
	if y := u.Year(); y < 1950 || y >= 2050 {
		return nil, fmt.Errorf("der: year %d outside the UTCTime range", y)
	}
	return Tag(TagUTCTime, []byte(u.Format("060102150405Z")))
}

// GeneralizedTime encodes t as YYYYMMDDHHMMSSZ in UTC.
func GeneralizedTime(t time.Time) ([]byte, error) {
	return Tag(TagGeneralizedTime, []byte(t.UTC().Format("20060102150405Z")))
}

// ContextTag wraps content in a context-specific tag [n]. Constructed tags
// hold nested elements (explicit tagging); primitive ones hold raw content
// such as SAN dNSName values.
func ContextTag(n byte, constructed bool, content []byte) ([]byte, error) {
	if n > 0x1E {
		return nil, fmt.Errorf("der: context tag number %d too large", n)
	}
	tag := 0x80 | n
	if constructed {
		tag |= 0x20
	}
	return Tag(tag, content)
}

// ReadElement splits the first TLV element off b, returning its identifier
// octet, content, and the remainder of the buffer.
func ReadElement(b []byte) (tag byte, content, rest []byte, err error) {
	if len(b) < 2 {
		return 0, nil, nil, ErrTruncated
	}
	length, consumed, err := DecodeLength(b[1:])
	if err != nil {
		return 0, nil, nil, err
	}
	start := 1 + consumed
	if len(b) < start+length {
		return 0, nil, nil, ErrTruncated
	}
	return b[0], b[start : start+length], b[start+length:], nil
}

func flatten(elems [][]byte) []byte {
	size := 0
	for _, e := range elems {
		size += len(e)
	}
	out := make([]byte, 0, size)
	for _, e := range elems {
		out = append(out, e...)
	}
	return out
}
