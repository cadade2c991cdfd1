package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRange(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		input    string
		start    time.Time
		end      time.Time
		parsable bool
	}{
		{
			"cross month range",
			"Feb 27 - Mar 8, 2026",
			time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 8, 23, 59, 0, 0, time.UTC),
			true,
		},
		{
			"same month range",
			"Oct 7-8, 2026",
			time.Date(2026, 10, 7, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 10, 8, 23, 59, 0, 0, time.UTC),
			true,
		},
		{
			"single date",
			"Nov 12, 2026",
			time.Date(2026, 11, 12, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 11, 12, 23, 59, 0, 0, time.UTC),
			true,
		},
		{
			"en dash",
			"Oct 7–8, 2026",
			time.Date(2026, 10, 7, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 10, 8, 23, 59, 0, 0, time.UTC),
			true,
		},
		{
			"full month names",
			"September 22 - 27, 2026",
			time.Date(2026, 9, 22, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 27, 23, 59, 0, 0, time.UTC),
			true,
		},
		{
			"uppercase months",
			"FEB 27 - MAR 8, 2026",
			time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 8, 23, 59, 0, 0, time.UTC),
			true,
		},
		{
			"year before days",
			"2027: Apr 29-30",
			time.Date(2027, 4, 29, 0, 0, 0, 0, time.UTC),
			time.Date(2027, 4, 30, 23, 59, 0, 0, time.UTC),
			true,
		},
		{
			"missing year defaults to current",
			"Oct 7-8",
			time.Date(2026, 10, 7, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 10, 8, 23, 59, 0, 0, time.UTC),
			true,
		},
		{"month and year only", "Dec 2026 (TBC)", time.Time{}, time.Time{}, false},
		{"free text", "TBD", time.Time{}, time.Time{}, false},
		{"empty string", "", time.Time{}, time.Time{}, false},
		{"bare year", "2026", time.Time{}, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window, ok := ParseDateRange(tt.input, now)
			require.Equal(t, tt.parsable, ok)
			if tt.parsable {
				assert.Equal(t, tt.start, window.Start)
				assert.Equal(t, tt.end, window.End)
			}
		})
	}

	t.Run("window anchored in now's location", func(t *testing.T) {
		denver := time.FixedZone("MDT", -6*3600)
		window, ok := ParseDateRange("Feb 27 - Mar 8, 2026", time.Date(2026, 1, 15, 12, 0, 0, 0, denver))
		require.True(t, ok)
		assert.Equal(t, time.Date(2026, 2, 27, 0, 0, 0, 0, denver), window.Start)
		assert.Equal(t, time.Date(2026, 3, 8, 23, 59, 0, 0, denver), window.End)
	})
}

func TestClassifyAt(t *testing.T) {
	// Fixed reference instant between ETHDenver and TOKEN2049 Singapore,
	// inside the Consensus window.
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		dateRange string
		expected  TemporalStatus
	}{
		{"concluded range", "Feb 27 - Mar 8, 2026", StatusPast},
		{"future range", "Oct 7-8, 2026", StatusUpcoming},
		{"current range", "May 30 - Jun 3, 2026", StatusOngoing},
		{"unparsable range", "Dec 2026 (TBC)", StatusUpcoming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Conference{Slug: "test-conf", Name: "Test Conf", DateRange: tt.dateRange}
			assert.Equal(t, tt.expected, ClassifyAt(c, now))
		})
	}

	t.Run("boundaries", func(t *testing.T) {
		c := &Conference{Slug: "test-conf", DateRange: "Oct 7-8, 2026"}

		beforeStart := time.Date(2026, 10, 6, 23, 59, 59, 0, time.UTC)
		assert.Equal(t, StatusUpcoming, ClassifyAt(c, beforeStart))

		atStart := time.Date(2026, 10, 7, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, StatusOngoing, ClassifyAt(c, atStart))

		atEnd := time.Date(2026, 10, 8, 23, 59, 0, 0, time.UTC)
		assert.Equal(t, StatusOngoing, ClassifyAt(c, atEnd))

		afterEnd := time.Date(2026, 10, 8, 23, 59, 0, 1, time.UTC)
		assert.Equal(t, StatusPast, ClassifyAt(c, afterEnd))
	})
}

func TestClassify(t *testing.T) {
	fixedTime := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	mockClock := clockwork.NewFakeClockAt(fixedTime)
	SetClock(mockClock)
	defer SetClock(nil)

	t.Run("uses injected clock", func(t *testing.T) {
		c := &Conference{Slug: "consensus", DateRange: "May 30 - Jun 3, 2026"}
		assert.Equal(t, StatusOngoing, Classify(c))
	})

	t.Run("advancing the clock changes the status", func(t *testing.T) {
		c := &Conference{Slug: "consensus", DateRange: "May 30 - Jun 3, 2026"}
		mockClock.Advance(10 * 24 * time.Hour)
		assert.Equal(t, StatusPast, Classify(c))
	})
}

func TestSetClock(t *testing.T) {
	t.Run("set custom clock", func(t *testing.T) {
		fixedTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		mockClock := clockwork.NewFakeClockAt(fixedTime)

		SetClock(mockClock)
		assert.Equal(t, fixedTime, clock.Now())

		SetClock(nil) // reset
	})

	t.Run("reset to real clock", func(t *testing.T) {
		fixedTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		mockClock := clockwork.NewFakeClockAt(fixedTime)

		SetClock(mockClock)
		SetClock(nil)

		now := clock.Now()
		assert.True(t, time.Since(now) < time.Second)
	})
}
