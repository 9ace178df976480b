package acme

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// jsonWebKey is the public half of the account key in JWK form, used in the
// newAccount protected header and for the key authorization thumbprint.
type jsonWebKey struct {
	Crv string `json:"crv"`
	Kty string `json:"kty"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

func jwkFromKey(pub *ecdsa.PublicKey) jsonWebKey {
	x := make([]byte, 32)
	y := make([]byte, 32)
	pub.X.FillBytes(x)
	pub.Y.FillBytes(y)
	return jsonWebKey{
		Crv: "P-256",
		Kty: "EC",
		X:   base64.RawURLEncoding.EncodeToString(x),
		Y:   base64.RawURLEncoding.EncodeToString(y),
	}
}

// jwkThumbprint computes the RFC 7638 thumbprint: SHA-256 over the JWK JSON
// with its required members in lexicographic order, base64url encoded.
func jwkThumbprint(pub *ecdsa.PublicKey) string {
	k := jwkFromKey(pub)
	canonical := fmt.Sprintf(`{"crv":%q,"kty":%q,"x":%q,"y":%q}`, k.Crv, k.Kty, k.X, k.Y)
	sum := sha256.Sum256([]byte(canonical))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

type jwsHeader struct {
	Alg   string      `json:"alg"`
	Nonce string      `json:"nonce"`
	URL   string      `json:"url"`
	Kid   string      `json:"kid,omitempty"`
	Jwk   *jsonWebKey `json:"jwk,omitempty"`
}

type jwsBody struct {
	Protected string `json:"protected"`
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

// signJWS builds the flattened JWS envelope ACME expects. kid must be empty
// only for the account-registration call, in which case the JWK is embedded
// instead. An empty payload produces the "" payload of a POST-as-GET.
//
// JOSE signatures are the raw concatenated r‖s form, base64url encoded; the
// DER conversion in core/der is for certificate signature fields only and
// must never be applied here.
func signJWS(key *ecdsa.PrivateKey, url, nonce, kid string, payload []byte) ([]byte, error) {
	header := jwsHeader{Alg: "ES256", Nonce: nonce, URL: url}
	if kid != "" {
		header.Kid = kid
	} else {
		jwk := jwkFromKey(&key.PublicKey)
		header.Jwk = &jwk
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("acme: marshal protected header: %w", err)
	}

	protected := base64.RawURLEncoding.EncodeToString(headerJSON)
	encodedPayload := base64.RawURLEncoding.EncodeToString(payload)

	digest := sha256.Sum256([]byte(protected + "." + encodedPayload))
	r, s, err := ecdsa.Sign(rand.Reader, key, digest[:])
	if err != nil {
		return nil, fmt.Errorf("acme: sign request: %w", err)
	}

	raw := make([]byte, 64)
	r.FillBytes(raw[:32])
	s.FillBytes(raw[32:])

	body, err := json.Marshal(jwsBody{
		Protected: protected,
		Payload:   encodedPayload,
		Signature: base64.RawURLEncoding.EncodeToString(raw),
	})
	if err != nil {
		return nil, fmt.Errorf("acme: marshal jws body: %w", err)
	}
	return body, nil
}
