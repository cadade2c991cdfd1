package offering

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/couchcryptid/conference-travel-agent/internal/domain"
)

// totalCostRe matches the budget line the travel-plan template asks for,
// e.g. "Total estimated cost: $1,840 USD".
var totalCostRe = regexp.MustCompile(`(?i)total estimated cost:?\s*\$\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)

// ExtractFields pulls machine-readable fields out of a generated report.
// Reports are free-form Markdown, so extraction is best-effort: absent
// patterns simply leave the field out.
func ExtractFields(report string) map[string]string {
	fields := make(map[string]string)
	if m := totalCostRe.FindStringSubmatch(report); m != nil {
		fields["total_cost_usd"] = strings.ReplaceAll(m[1], ",", "")
	}
	return fields
}

// cheapestOfferUSD returns the lowest-priced offer's price string. Offers
// with unparsable prices are skipped.
func cheapestOfferUSD(offers []domain.FlightOffer) (string, bool) {
	var cheapest string
	best := 0.0
	found := false
	for _, offer := range offers {
		price, err := strconv.ParseFloat(offer.Price, 64)
		if err != nil {
			continue
		}
		if !found || price < best {
			best = price
			cheapest = offer.Price
			found = true
		}
	}
	return cheapest, found
}
