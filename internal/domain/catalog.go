package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Catalog is the immutable set of known conferences, built once by
// NewCatalog and read-only afterwards. Iteration order is sorted by slug so
// fuzzy-match tie-breaks are deterministic across runs.
type Catalog struct {
	bySlug      map[string]*Conference
	ordered     []*Conference
	searchables []string // parallel to ordered, precomputed lowercase match text
}

// NewCatalog validates and indexes a set of conference entries. Slugs are
// trimmed and lowercased before indexing; an empty or duplicate slug is an
// error because the slug is the catalog's primary key.
func NewCatalog(entries []Conference) (*Catalog, error) {
	c := &Catalog{
		bySlug: make(map[string]*Conference, len(entries)),
	}

	for i := range entries {
		e := entries[i]
		e.Slug = strings.ToLower(strings.TrimSpace(e.Slug))
		if e.Slug == "" {
			return nil, fmt.Errorf("catalog entry %d (%q): empty slug", i, e.Name)
		}
		if _, exists := c.bySlug[e.Slug]; exists {
			return nil, fmt.Errorf("catalog entry %d: duplicate slug %q", i, e.Slug)
		}
		c.bySlug[e.Slug] = &e
		c.ordered = append(c.ordered, &e)
	}

	sort.Slice(c.ordered, func(i, j int) bool {
		return c.ordered[i].Slug < c.ordered[j].Slug
	})

	c.searchables = make([]string, len(c.ordered))
	for i, e := range c.ordered {
		c.searchables[i] = searchText(e)
	}

	return c, nil
}

// Len reports the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.ordered)
}

// Entry returns the conference with the given slug, or nil.
func (c *Catalog) Entry(slug string) *Conference {
	return c.bySlug[strings.ToLower(strings.TrimSpace(slug))]
}

// Entries returns all conferences in slug order. Callers must not mutate
// the returned records.
func (c *Catalog) Entries() []*Conference {
	return c.ordered
}

// Lookup resolves a free-text query to the best-matching conference, or nil
// for a definitive no-match. An exact slug match (after lowercasing and
// trimming) wins immediately, even when another entry would score higher on
// keywords. Otherwise the entry with the strictly highest keyword score wins;
// ties keep the first entry in slug order.
func (c *Catalog) Lookup(query string) *Conference {
	q := strings.ToLower(strings.TrimSpace(query))
	if e, ok := c.bySlug[q]; ok {
		return e
	}

	var best *Conference
	bestScore := 0
	for i, e := range c.ordered {
		if score := ScoreKeywords(c.searchables[i], q); score > bestScore {
			best = e
			bestScore = score
		}
	}
	return best
}
