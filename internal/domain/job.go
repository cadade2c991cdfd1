package domain

import "time"

// PaymentClaim identifies the on-chain payment a buyer attached to a job.
type PaymentClaim struct {
	Rail string `json:"rail"` // "evm" or "solana"
	TxID string `json:"tx_id"`
}

// Job is one purchased unit of work fetched from the marketplace. Offering
// carries the requested service as a slug or free text; Params carries the
// buyer's inputs (origin, destination, conference, date).
type Job struct {
	ID         string            `json:"id"`
	Offering   string            `json:"offering"`
	Params     map[string]string `json:"params"`
	Payment    *PaymentClaim     `json:"payment,omitempty"`
	ReceivedAt time.Time         `json:"received_at"`
}

// Job result statuses. Rejected means the buyer's request cannot be served
// (unknown offering, missing inputs, bad payment); failed means a
// collaborator broke while serving a valid request.
const (
	JobCompleted = "completed"
	JobRejected  = "rejected"
	JobFailed    = "failed"
)

// Result is the deliverable for one job: the generated markdown report plus
// regex-extracted fields, or a rejection/failure explanation.
type Result struct {
	JobID    string            `json:"job_id"`
	Offering string            `json:"offering"`
	Status   string            `json:"status"`
	Report   string            `json:"report,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
	Error    string            `json:"error,omitempty"`
}
