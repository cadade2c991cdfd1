package domain

// ConferenceLocation describes where a conference takes place and how to
// fly into it.
type ConferenceLocation struct {
	City        string `json:"city"`
	Subdivision string `json:"subdivision,omitempty"`
	Country     string `json:"country"`
	Airport     string `json:"airport"`
	AltAirport  string `json:"alt_airport,omitempty"`
}

// Conference is one catalog record. Slug is the primary key: unique,
// lowercase, stable across runs. DateRange is a human-authored string and may
// be partially or wholly unparsable. ArriveBy and DepartAfter are YYYY-MM-DD
// travel buffer dates. The fields after Tags play no part in matching.
type Conference struct {
	Slug      string             `json:"slug"`
	Name      string             `json:"name"`
	Location  ConferenceLocation `json:"location"`
	DateRange string             `json:"date_range"`
	Tags      []string           `json:"tags"`

	ArriveBy    string   `json:"arrive_by,omitempty"`
	DepartAfter string   `json:"depart_after,omitempty"`
	HotelAreas  []string `json:"hotel_areas,omitempty"`
	SideEvents  []string `json:"side_events,omitempty"`
	VisaNote    string   `json:"visa_note,omitempty"`
	Website     string   `json:"website,omitempty"`
}

// TemporalStatus classifies a conference's date window against a point in time.
type TemporalStatus string

const (
	StatusUpcoming TemporalStatus = "upcoming"
	StatusOngoing  TemporalStatus = "ongoing"
	StatusPast     TemporalStatus = "past"
)
