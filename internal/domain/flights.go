package domain

import "context"

// FlightOffer is one priced itinerary returned by a flight-search provider.
// Times are the provider's local ISO-8601 strings, passed through to prompts
// unparsed.
type FlightOffer struct {
	Carrier  string
	DepartAt string
	ArriveAt string
	Stops    int
	Price    string
	Currency string
}

// FlightSearcher looks up live flight prices for a one-way date. An empty
// offer list with a nil error means prices are unavailable for that route,
// which callers degrade gracefully.
type FlightSearcher interface {
	SearchOffers(ctx context.Context, origin, destination, departDate string, limit int) ([]FlightOffer, error)
}
