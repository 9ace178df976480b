package der

import "errors"

// ErrInvalidSignature is returned for raw signatures that are not an even
// split of two equally sized integers, or DER signatures that do not parse
// as SEQUENCE{INTEGER r, INTEGER s}.
var ErrInvalidSignature = errors.New("der: invalid ecdsa signature")

// SignatureToDER converts a raw concatenated r‖s ECDSA signature (the form a
// generic sign primitive produces, 64 bytes for P-256) into the DER
// SEQUENCE{INTEGER r, INTEGER s} that X.509 and PKCS#10 signature fields
// expect. JWS keeps the raw form; never route a JOSE signature through here.
func SignatureToDER(raw []byte) ([]byte, error) {
	if len(raw) == 0 || len(raw)%2 != 0 {
		return nil, ErrInvalidSignature
	}
	half := len(raw) / 2
	r, err := Integer(raw[:half])
	if err != nil {
		return nil, err
	}
	s, err := Integer(raw[half:])
	if err != nil {
		return nil, err
	}
	return Sequence(r, s)
}

// SignatureFromDER parses SEQUENCE{INTEGER r, INTEGER s} back into the raw
// concatenated form, left-padding each integer to size bytes (32 for P-256).
func SignatureFromDER(sig []byte, size int) ([]byte, error) {
	tag, content, rest, err := ReadElement(sig)
	if err != nil || tag != TagSequence || len(rest) != 0 {
		return nil, ErrInvalidSignature
	}
	r, content, err := readSignatureInt(content, size)
	if err != nil {
		return nil, err
	}
	s, content, err := readSignatureInt(content, size)
	if err != nil || len(content) != 0 {
		return nil, ErrInvalidSignature
	}
	out := make([]byte, 0, 2*size)
	out = append(out, r...)
	out = append(out, s...)
	return out, nil
}

func readSignatureInt(b []byte, size int) (padded, rest []byte, err error) {
	tag, content, rest, err := ReadElement(b)
	if err != nil || tag != TagInteger {
		return nil, nil, ErrInvalidSignature
	}
	// Drop the sign padding the encoder added for high-bit values.
	for len(content) > 1 && content[0] == 0 {
		content = content[1:]
	}
	if len(content) > size {
		return nil, nil, ErrInvalidSignature
	}
	padded = make([]byte, size)
	copy(padded[size-len(content):], content)
	return padded, rest, nil
}
