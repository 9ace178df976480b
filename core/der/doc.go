// Package der provides a minimal ASN.1 DER encoder for the structures this
// module has to emit on the wire: PKCS#10 certification requests, X.509
// certificates, and ECDSA signature values.
//
// The package deliberately covers only the primitives those structures need
// (SEQUENCE, SET, INTEGER, BIT STRING, OCTET STRING, OBJECT IDENTIFIER,
// UTF8String, PrintableString, UTCTime, BOOLEAN and context-specific tags).
// It is an encoder first; the small reader side (ReadElement, DecodeLength)
// exists so signature values and certificate validity fields can be walked
// without pulling in a general-purpose ASN.1 parser.
//
// # Types
//
//   - none; the package is a set of pure functions over byte slices
//
// # Errors
//
//   - ErrLengthTooLong: content longer than the supported two-byte length form
//   - ErrInvalidSignature: malformed raw or DER ECDSA signature
//   - ErrTruncated: reader ran out of bytes mid-element
//
// # Basic Usage
//
//	seq, err := der.Sequence(
//		der.MustOID(1, 2, 840, 10045, 4, 3, 2),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// All functions return fresh slices; inputs are never modified.
package der
