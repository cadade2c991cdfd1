package offering

import (
	"fmt"
	"sort"
	"strings"

	"github.com/couchcryptid/conference-travel-agent/internal/domain"
)

const travelPlanTemplate = `You are a travel planner for conference-goers. Produce a complete, practical
travel plan in Markdown for the trip described below.

Structure the plan with these sections:

- Summary: the conference, its dates, and the traveller's origin.
- Flights: recommend specific options. Prefer the live offers listed below
  when present; otherwise estimate from public fares and say so.
- Where to stay: hotel area recommendations with walking or transit times to
  the venue. Prefer the listed hotel areas when present.
- Day-by-day schedule: arrival through departure, including side events.
- Visa and entry: requirements for the traveller's likely passport, or how to
  check them.
- Budget: itemised in USD, ending with a line "Total estimated cost: $<amount> USD".

Keep recommendations concrete. Cite all prices in USD.`

const briefTemplate = `You are a conference researcher. Produce a one-page brief in Markdown on the
conference described below.

Cover, in order: what the conference is and who it is for, when and where it
runs, why it is worth attending this year, the main tracks and notable side
events, and a short travel snapshot (airport, typical hotel areas, visa
pointers).

Be specific and current. Skip filler.`

const flightBriefTemplate = `You are a flight pricing analyst. Produce a short Markdown brief on current
flight prices for the trip described below.

List the live offers below from cheapest to most expensive, call out the
cheapest and the fastest option, and note whether fares on this route tend to
rise or fall close to departure. If no live offers are listed, estimate from
public fares and say they are estimates.

Cite all prices in USD.`

var templates = map[string]string{
	"conference-travel-planner": travelPlanTemplate,
	"conference-brief":          briefTemplate,
	"flight-price-brief":        flightBriefTemplate,
}

// BuildPrompt assembles the generation prompt for one job: the offering's
// template, the request parameters, what the catalog knows about the
// conference, and any live flight offers. The returned warnings are
// user-facing caveats that ride along with the result (conference over,
// conference not in catalog).
func BuildPrompt(off domain.Offering, job domain.Job, conf *domain.Conference, offers []domain.FlightOffer) (string, []string) {
	var b strings.Builder
	var warnings []string

	template, ok := templates[off.Slug]
	if !ok {
		template = briefTemplate
	}
	b.WriteString(template)

	b.WriteString("\n\n# Request\n\n")
	b.WriteString("Offering: " + off.Title + "\n")
	keys := make([]string, 0, len(job.Params))
	for k := range job.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, job.Params[k])
	}

	warnings = append(warnings, writeConferenceSection(&b, job, conf)...)

	if len(offers) > 0 {
		b.WriteString("\n# Live flight offers\n\n")
		for _, offer := range offers {
			fmt.Fprintf(&b, "- %s: depart %s, arrive %s, stops %d, price %s %s\n",
				offer.Carrier, offer.DepartAt, offer.ArriveAt, offer.Stops, offer.Price, offer.Currency)
		}
	} else if off.NeedsFlights {
		b.WriteString("\nNo live flight offers were available for this request. Estimate fares from public sources and state that they are estimates.\n")
	}

	return b.String(), warnings
}

// writeConferenceSection appends what the catalog knows about the requested
// conference and returns the temporal caveats for the result.
func writeConferenceSection(b *strings.Builder, job domain.Job, conf *domain.Conference) []string {
	if conf == nil {
		requested := job.Params["conference"]
		if requested == "" {
			return nil
		}
		fmt.Fprintf(b, "\n# Conference\n\nThe requested conference is %q. It is not in this agent's catalog, so research it from public sources.\n", requested)
		return []string{fmt.Sprintf("conference %q is not in the catalog; the report relies on public information only", requested)}
	}

	var warnings []string

	b.WriteString("\n# Conference\n\n")
	fmt.Fprintf(b, "Name: %s\n", conf.Name)
	fmt.Fprintf(b, "Dates: %s\n", conf.DateRange)
	if window, ok := domain.ParseDateRange(conf.DateRange, domain.Now()); ok {
		fmt.Fprintf(b, "Date window: %s to %s\n", window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"))
	}
	location := conf.Location.City
	if conf.Location.Subdivision != "" {
		location += ", " + conf.Location.Subdivision
	}
	location += ", " + conf.Location.Country
	fmt.Fprintf(b, "Location: %s\n", location)
	fmt.Fprintf(b, "Airport: %s\n", conf.Location.Airport)
	if conf.Location.AltAirport != "" {
		fmt.Fprintf(b, "Alternate airport: %s\n", conf.Location.AltAirport)
	}
	if conf.ArriveBy != "" {
		fmt.Fprintf(b, "Arrive by: %s\n", conf.ArriveBy)
	}
	if conf.DepartAfter != "" {
		fmt.Fprintf(b, "Depart after: %s\n", conf.DepartAfter)
	}
	if len(conf.HotelAreas) > 0 {
		fmt.Fprintf(b, "Hotel areas: %s\n", strings.Join(conf.HotelAreas, ", "))
	}
	if len(conf.SideEvents) > 0 {
		fmt.Fprintf(b, "Side events: %s\n", strings.Join(conf.SideEvents, ", "))
	}
	if conf.VisaNote != "" {
		fmt.Fprintf(b, "Visa note: %s\n", conf.VisaNote)
	}
	if conf.Website != "" {
		fmt.Fprintf(b, "Website: %s\n", conf.Website)
	}

	switch domain.Classify(conf) {
	case domain.StatusPast:
		b.WriteString("\nNote: this conference has already ended. Write the report as guidance for a future edition and say so up front.\n")
		warnings = append(warnings, fmt.Sprintf("%s has already concluded; the report is written as guidance for a future edition", conf.Name))
	case domain.StatusOngoing:
		b.WriteString("\nNote: this conference is already underway. Focus on what can still be done on short notice.\n")
		warnings = append(warnings, fmt.Sprintf("%s is already underway; bookings made now may arrive too late", conf.Name))
	}

	return warnings
}
