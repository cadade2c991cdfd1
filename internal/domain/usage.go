package domain

import "time"

// UsageEntry is one line of the append-only usage log.
type UsageEntry struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	JobID       string    `json:"job_id"`
	Offering    string    `json:"offering"`
	Status      string    `json:"status"`
	DurationMS  int64     `json:"duration_ms"`
	ReportBytes int       `json:"report_bytes"`
	PaymentRail string    `json:"payment_rail,omitempty"`
	AmountUSD   float64   `json:"amount_usd,omitempty"`
}

// UsageRecorder persists usage entries. Recording is best-effort: callers
// log and continue on error rather than failing the job.
type UsageRecorder interface {
	Record(entry UsageEntry) error
}
