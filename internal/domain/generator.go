package domain

import (
	"context"
	"errors"
)

// ErrEmptyReport reports that the model produced no text for a prompt.
var ErrEmptyReport = errors.New("report generator returned no text")

// ReportGenerator produces a finished report for one prompt. Implementations
// return ErrEmptyReport when the model answers with no usable text, so
// callers can separate empty answers from transport failures.
type ReportGenerator interface {
	GenerateReport(ctx context.Context, prompt string, webSearch bool) (string, error)
}
