package domain

// Offering is one sellable service listed on the marketplace. The JSON form
// is the registration payload; NeedsFlights and WebSearch steer report
// assembly and stay internal.
type Offering struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	PriceUSD    float64  `json:"price_usd"`
	Keywords    []string `json:"keywords,omitempty"`

	NeedsFlights bool `json:"-"`
	WebSearch    bool `json:"-"`
}
