// Package usagelog persists per-job usage entries as append-only JSON lines.
// The file doubles as the billing trail, so entries are flushed per write
// rather than buffered.
package usagelog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/conference-travel-agent/internal/domain"
)

// Recorder appends usage entries to a JSONL file. It implements
// domain.UsageRecorder.
type Recorder struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewRecorder creates a recorder writing to path, creating parent
// directories as needed. The file itself is created on first write.
func NewRecorder(path string, logger *slog.Logger) (*Recorder, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create usage log directory %s: %w", dir, err)
	}
	return &Recorder{path: path, logger: logger}, nil
}

// Record appends one entry. Missing IDs and timestamps are filled in so
// callers only need to supply the job facts.
func (r *Recorder) Record(entry domain.UsageEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal usage entry: %w", err)
	}
	line = append(line, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open usage log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("write usage log: %w", err)
	}

	r.logger.Debug("usage recorded", "job_id", entry.JobID, "offering", entry.Offering, "status", entry.Status)
	return nil
}

// Path returns the log file location.
func (r *Recorder) Path() string {
	return r.path
}
