// Package offering defines the services this agent sells on the marketplace
// and turns accepted jobs into finished reports.
package offering

import (
	"fmt"
	"sort"
	"strings"

	"github.com/couchcryptid/conference-travel-agent/internal/domain"
)

// Defaults returns the offerings the agent lists on the marketplace.
func Defaults() []domain.Offering {
	return []domain.Offering{
		{
			Slug:         "conference-travel-planner",
			Title:        "Conference Travel Planner",
			Description:  "A complete travel plan for one conference trip: flights, hotel areas, a day-by-day schedule, visa requirements, and an itemised budget.",
			PriceUSD:     5,
			Keywords:     []string{"travel", "plan", "flights", "hotel", "itinerary", "budget"},
			NeedsFlights: true,
			WebSearch:    true,
		},
		{
			Slug:        "conference-brief",
			Title:       "Conference Brief",
			Description: "A one-page brief on a conference: what it is, when and where it runs, why to attend, and a travel snapshot.",
			PriceUSD:    2,
			Keywords:    []string{"brief", "summary", "overview", "agenda"},
			WebSearch:   true,
		},
		{
			Slug:         "flight-price-brief",
			Title:        "Flight Price Brief",
			Description:  "Current flight prices from your city to a conference, with the cheapest and fastest options called out.",
			PriceUSD:     1,
			Keywords:     []string{"flight", "flights", "price", "prices", "fare", "airfare"},
			NeedsFlights: true,
		},
	}
}

// Registry resolves the offering named in a job request. Lookups normalize
// the same way catalog lookups do: exact slug first, then a keyword fallback
// over titles and keywords for loosely-worded requests.
type Registry struct {
	bySlug      map[string]domain.Offering
	ordered     []domain.Offering
	searchables []string
}

// NewRegistry builds a registry from the given offerings. Slugs must be
// non-empty and unique after normalization.
func NewRegistry(offerings []domain.Offering) (*Registry, error) {
	r := &Registry{bySlug: make(map[string]domain.Offering, len(offerings))}

	for i, off := range offerings {
		slug := strings.ToLower(strings.TrimSpace(off.Slug))
		if slug == "" {
			return nil, fmt.Errorf("offering %d (%q): empty slug", i, off.Title)
		}
		if _, exists := r.bySlug[slug]; exists {
			return nil, fmt.Errorf("offering %d: duplicate slug %q", i, slug)
		}
		off.Slug = slug
		r.bySlug[slug] = off
	}

	for slug := range r.bySlug {
		r.ordered = append(r.ordered, r.bySlug[slug])
	}
	sort.Slice(r.ordered, func(i, j int) bool { return r.ordered[i].Slug < r.ordered[j].Slug })

	r.searchables = make([]string, len(r.ordered))
	for i, off := range r.ordered {
		parts := append([]string{off.Title, off.Slug}, off.Keywords...)
		r.searchables[i] = strings.ToLower(strings.Join(parts, " "))
	}

	return r, nil
}

// All returns the offerings in slug order.
func (r *Registry) All() []domain.Offering {
	out := make([]domain.Offering, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Match resolves a requested offering by exact slug, falling back to keyword
// scoring when the request names the service loosely ("flight prices please").
// The boolean reports whether anything matched.
func (r *Registry) Match(query string) (domain.Offering, bool) {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if off, ok := r.bySlug[normalized]; ok {
		return off, true
	}

	var best domain.Offering
	bestScore := 0
	for i, off := range r.ordered {
		if score := domain.ScoreKeywords(r.searchables[i], normalized); score > bestScore {
			best = off
			bestScore = score
		}
	}
	if bestScore == 0 {
		return domain.Offering{}, false
	}
	return best, true
}
