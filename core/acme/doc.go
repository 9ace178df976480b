// Package acme implements the client side of the ACME v2 protocol (RFC 8555)
// directly on net/http: directory discovery, replay-nonce management,
// JWS-signed requests, account registration, order and authorization
// handling, challenge key authorizations, finalization with a PKCS#10 CSR,
// and certificate download.
//
// The client owns a single ECDSA P-256 account key that never leaves it. The
// first signed request (newAccount) embeds the public key as a JWK; every
// request after that references the account URL through the kid header field.
// JWS signatures stay in the raw r‖s form JOSE requires — only the CSR and
// certificate signature fields use the DER form from core/der.
//
// # Flow
//
//	client, err := acme.New(acme.Config{
//		DirectoryURL: "https://acme-staging-v02.api.letsencrypt.org/directory",
//		Email:        "admin@example.com",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := client.Initialize(ctx); err != nil {
//		log.Fatal(err)
//	}
//
//	order, challenges, err := client.RequestCertificate(ctx, "example.com", nil)
//	// ... publish challenges (HTTP-01 responder / DNS TXT record) ...
//	certPEM, keyPEM, err := client.CompleteChallenges(ctx, order, challenges)
//
// # Errors
//
//   - ProtocolError: any non-2xx ACME response, carrying status code and the
//     parsed problem document
//   - ErrOrderNotReady / ErrCertificateNotReady: bounded polling timed out
//   - ErrOrderInvalid: the order reached its terminal failure state
//   - ErrNoChallenge: no challenge of the configured type was offered
package acme
