// Package catalog loads the conference catalog from an embedded snapshot or
// an operator-supplied JSON file.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/conference-travel-agent/internal/domain"
)

//go:embed catalog.json
var defaultCatalog []byte

// Loader reads and parses the catalog exactly once per process and serves the
// same in-memory Catalog on every subsequent call. A failure on first load is
// cached and returned on every call too: there is no partial-catalog mode and
// no retry without a restart.
type Loader struct {
	path string

	once    sync.Once
	catalog *domain.Catalog
	err     error
	loads   atomic.Int64
}

// NewLoader returns a loader for the JSON catalog at path. An empty path
// selects the embedded snapshot.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load returns the parsed catalog, reading the backing source on the first
// call only. Safe for concurrent use.
func (l *Loader) Load() (*domain.Catalog, error) {
	l.once.Do(func() {
		l.loads.Add(1)
		l.catalog, l.err = l.read()
	})
	return l.catalog, l.err
}

// Loads reports how many times the backing source has actually been read.
func (l *Loader) Loads() int64 {
	return l.loads.Load()
}

func (l *Loader) read() (*domain.Catalog, error) {
	data := defaultCatalog
	if l.path != "" {
		b, err := os.ReadFile(l.path)
		if err != nil {
			return nil, fmt.Errorf("read catalog file: %w", err)
		}
		data = b
	}

	var entries []domain.Conference
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return domain.NewCatalog(entries)
}
