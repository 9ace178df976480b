package acme

// Order and challenge status values defined by RFC 8555. Orders move
// strictly forward through pending, ready, processing, valid; invalid is
// terminal at any point.
const (
	StatusPending    = "pending"
	StatusReady      = "ready"
	StatusProcessing = "processing"
	StatusValid      = "valid"
	StatusInvalid    = "invalid"
)

// Challenge types a CA may offer.
const (
	ChallengeHTTP01    = "http-01"
	ChallengeDNS01     = "dns-01"
	ChallengeTLSALPN01 = "tls-alpn-01"
)

// Directory maps ACME operation names to their URLs. Immutable once fetched.
type Directory struct {
	NewNonce   string `json:"newNonce"`
	NewAccount string `json:"newAccount"`
	NewOrder   string `json:"newOrder"`
	RevokeCert string `json:"revokeCert"`
	KeyChange  string `json:"keyChange"`
}

// Identifier names a subject a certificate should cover.
type Identifier struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Order mirrors the ACME order object. URL is the resource location captured
// from the Location header; it is not part of the JSON body.
type Order struct {
	URL            string       `json:"-"`
	Status         string       `json:"status"`
	Expires        string       `json:"expires,omitempty"`
	Identifiers    []Identifier `json:"identifiers"`
	Authorizations []string     `json:"authorizations"`
	Finalize       string       `json:"finalize"`
	Certificate    string       `json:"certificate,omitempty"`
}

// Domains returns the DNS identifier values of the order, in order.
func (o *Order) Domains() []string {
	domains := make([]string, 0, len(o.Identifiers))
	for _, id := range o.Identifiers {
		domains = append(domains, id.Value)
	}
	return domains
}

// Authorization mirrors the ACME authorization object, one per identifier.
type Authorization struct {
	URL        string      `json:"-"`
	Identifier Identifier  `json:"identifier"`
	Status     string      `json:"status"`
	Challenges []Challenge `json:"challenges"`
}

// Challenge mirrors the ACME challenge object. KeyAuthorization and Domain
// are computed client-side for the challenge responder; the server never
// sends them.
type Challenge struct {
	Type             string `json:"type"`
	URL              string `json:"url"`
	Token            string `json:"token"`
	Status           string `json:"status"`
	KeyAuthorization string `json:"-"`
	Domain           string `json:"-"`
}
