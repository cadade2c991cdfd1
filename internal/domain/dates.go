package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// yearRe finds a standalone 4-digit year anywhere in a date-range string.
	yearRe = regexp.MustCompile(`\b\d{4}\b`)

	// dayRangeRe matches "Month Day" with an optional "- [Month] Day" tail,
	// e.g. "Feb 27 - Mar 8" or "Oct 7-8". Month names match on their first
	// three letters, case-insensitive; the [a-z]* absorbs "September" etc.
	dayRangeRe = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{1,2})\b(?:\s*[-–]\s*(?:(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+)?(\d{1,2})\b)?`)
)

// months is the fixed first-three-letters month table used by the parser.
var months = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

// DateWindow is the coarse calendar window parsed from a date-range string:
// start of the first day through 23:59 on the last day, so a one-day event
// still spans a non-zero window.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange extracts a DateWindow from a human-authored range string
// such as "Feb 27 - Mar 8, 2026" or "Oct 7-8, 2026". The year may appear
// anywhere and defaults to now's year when absent. A missing second month
// reuses the first. Strings with no month-day pattern ("Dec 2026 (TBC)")
// report ok=false; this function never fails otherwise. The window is
// anchored in now's location.
func ParseDateRange(s string, now time.Time) (DateWindow, bool) {
	year := now.Year()
	rest := s
	// Strip the year before day matching so "Dec 2026" cannot parse as
	// December 20th.
	if loc := yearRe.FindStringIndex(s); loc != nil {
		if y, err := strconv.Atoi(s[loc[0]:loc[1]]); err == nil {
			year = y
		}
		rest = s[:loc[0]] + s[loc[1]:]
	}

	m := dayRangeRe.FindStringSubmatch(rest)
	if m == nil {
		return DateWindow{}, false
	}

	startMonth := months[strings.ToLower(m[1])]
	startDay, _ := strconv.Atoi(m[2])

	endMonth := startMonth
	if m[3] != "" {
		endMonth = months[strings.ToLower(m[3])]
	}
	endDay := startDay
	if m[4] != "" {
		endDay, _ = strconv.Atoi(m[4])
	}

	tz := now.Location()
	return DateWindow{
		Start: time.Date(year, startMonth, startDay, 0, 0, 0, 0, tz),
		End:   time.Date(year, endMonth, endDay, 23, 59, 0, 0, tz),
	}, true
}

// ClassifyAt classifies a conference's date window against the given instant.
// Unparsable ranges classify as upcoming: TBC placeholders are future events,
// not expired ones.
func ClassifyAt(c *Conference, now time.Time) TemporalStatus {
	window, ok := ParseDateRange(c.DateRange, now)
	if !ok {
		return StatusUpcoming
	}
	switch {
	case now.Before(window.Start):
		return StatusUpcoming
	case now.After(window.End):
		return StatusPast
	default:
		return StatusOngoing
	}
}

// Classify classifies a conference against the current wall clock (or the
// clock injected via SetClock).
func Classify(c *Conference) TemporalStatus {
	return ClassifyAt(c, clock.Now())
}
