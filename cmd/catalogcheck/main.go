// Command catalogcheck performs integrity checks on the conference catalog:
// required fields, slug and airport formats, date window sanity, and
// name-to-entry resolution through the live matcher.
//
// Usage:
//
//	go run ./cmd/catalogcheck
//	go run ./cmd/catalogcheck -catalog path/to/catalog.json -now 2026-03-01
package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/couchcryptid/conference-travel-agent/internal/catalog"
	"github.com/couchcryptid/conference-travel-agent/internal/domain"
	"github.com/jonboulle/clockwork"
)

const dateLayout = "2006-01-02"

var (
	slugRe    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	airportRe = regexp.MustCompile(`^[A-Z]{3}$`)
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	catalogPath := flag.String("catalog", "", "path to a catalog JSON file (default: embedded catalog)")
	now := flag.String("now", "", "classification instant as YYYY-MM-DD (default: current time)")
	flag.Parse()

	if code := run(*catalogPath, *now); code != 0 {
		os.Exit(code)
	}
}

func run(catalogPath, nowStr string) int {
	if nowStr != "" {
		at, err := time.Parse(dateLayout, nowStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: parse -now: %v\n", err)
			return 1
		}
		domain.SetClock(clockwork.NewFakeClockAt(at))
		defer domain.SetClock(nil)
	}

	fmt.Println("=== Conference Catalog Validation ===")
	fmt.Println()

	cat, err := catalog.NewLoader(catalogPath).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load catalog: %v\n", err)
		return 1
	}

	// ── Run validation phases ──
	phases := []*phase{
		validateRequiredFields(cat),
		validateFormats(cat),
		validateDateWindows(cat),
		validateLookupResolution(cat),
	}

	// ── Report results ──
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Println(summarize(cat))

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Required Fields ──
// Every entry must carry the fields reports and flight lookups depend on.

func validateRequiredFields(cat *domain.Catalog) *phase {
	p := &phase{name: "Phase 1: Required Fields"}
	for _, c := range cat.Entries() {
		if c.Name == "" {
			p.errorf("%s: name is empty", c.Slug)
		}
		if c.DateRange == "" {
			p.errorf("%s: date_range is empty", c.Slug)
		}
		if c.Location.City == "" {
			p.errorf("%s: location.city is empty", c.Slug)
		}
		if c.Location.Country == "" {
			p.errorf("%s: location.country is empty", c.Slug)
		}
		if c.Location.Airport == "" {
			p.errorf("%s: location.airport is empty", c.Slug)
		}
		if len(c.Tags) == 0 {
			p.errorf("%s: tags are empty", c.Slug)
		}
	}
	return p
}

// ── Phase 2: Field Formats ──
// Slugs must be lowercase kebab-case, airports must be 3-letter IATA codes,
// and travel buffer dates must be YYYY-MM-DD.

func validateFormats(cat *domain.Catalog) *phase {
	p := &phase{name: "Phase 2: Field Formats"}
	for _, c := range cat.Entries() {
		if !slugRe.MatchString(c.Slug) {
			p.errorf("%s: slug is not lowercase kebab-case", c.Slug)
		}
		if c.Location.Airport != "" && !airportRe.MatchString(c.Location.Airport) {
			p.errorf("%s: airport %q is not a 3-letter IATA code", c.Slug, c.Location.Airport)
		}
		if c.Location.AltAirport != "" && !airportRe.MatchString(c.Location.AltAirport) {
			p.errorf("%s: alt_airport %q is not a 3-letter IATA code", c.Slug, c.Location.AltAirport)
		}
		for _, f := range []struct{ name, value string }{
			{"arrive_by", c.ArriveBy},
			{"depart_after", c.DepartAfter},
		} {
			if f.value == "" {
				continue
			}
			if _, err := time.Parse(dateLayout, f.value); err != nil {
				p.errorf("%s: %s %q is not a YYYY-MM-DD date", c.Slug, f.name, f.value)
			}
		}
	}
	return p
}

// ── Phase 3: Date Windows ──
// Parsable date ranges must run forwards, and travel buffer dates must sit
// outside the conference window.

func validateDateWindows(cat *domain.Catalog) *phase {
	p := &phase{name: "Phase 3: Date Windows"}
	now := domain.Now()

	unparsed := 0
	for _, c := range cat.Entries() {
		window, ok := domain.ParseDateRange(c.DateRange, now)
		if !ok {
			unparsed++
			continue
		}
		if window.End.Before(window.Start) {
			p.errorf("%s: date_range %q ends before it starts", c.Slug, c.DateRange)
			continue
		}
		if c.ArriveBy != "" {
			if arrive, err := time.ParseInLocation(dateLayout, c.ArriveBy, now.Location()); err == nil && arrive.After(window.Start) {
				p.errorf("%s: arrive_by %s falls after the conference starts", c.Slug, c.ArriveBy)
			}
		}
		if c.DepartAfter != "" {
			lastDay := time.Date(window.End.Year(), window.End.Month(), window.End.Day(), 0, 0, 0, 0, now.Location())
			if depart, err := time.ParseInLocation(dateLayout, c.DepartAfter, now.Location()); err == nil && depart.Before(lastDay) {
				p.errorf("%s: depart_after %s falls before the conference ends", c.Slug, c.DepartAfter)
			}
		}
	}
	if unparsed > 0 {
		fmt.Printf("  Note: %d entries have no parsable date window and classify as upcoming\n", unparsed)
	}
	return p
}

// ── Phase 4: Lookup Resolution ──
// Each entry must be reachable through Lookup by its own slug and by its own
// name. A name resolving elsewhere means two entries shadow each other.

func validateLookupResolution(cat *domain.Catalog) *phase {
	p := &phase{name: "Phase 4: Lookup Resolution"}
	for _, c := range cat.Entries() {
		if got := cat.Lookup(c.Slug); got != c {
			p.errorf("%s: slug does not resolve to its own entry", c.Slug)
		}
		switch got := cat.Lookup(c.Name); {
		case got == nil:
			p.errorf("%s: name %q resolves to no entry", c.Slug, c.Name)
		case got != c:
			p.errorf("%s: name %q resolves to %s instead", c.Slug, c.Name, got.Slug)
		}
	}
	return p
}

// ── Helpers ──

func summarize(cat *domain.Catalog) string {
	var upcoming, ongoing, past, undated int
	for _, c := range cat.Entries() {
		if _, ok := domain.ParseDateRange(c.DateRange, domain.Now()); !ok {
			undated++
		}
		switch domain.Classify(c) {
		case domain.StatusUpcoming:
			upcoming++
		case domain.StatusOngoing:
			ongoing++
		case domain.StatusPast:
			past++
		}
	}
	return fmt.Sprintf("Entries: %d total (%d upcoming, %d ongoing, %d past; %d without a parsable date window)",
		cat.Len(), upcoming, ongoing, past, undated)
}
