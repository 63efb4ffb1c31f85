package search

import (
	"context"
	"iter"
	"sync"

	"go.uber.org/zap"
)

// Index is built once from the page source and the fallback list and reused
// until Invalidate.
type Index struct {
	mu       sync.Mutex
	page     Source
	fallback []Entry
	log      *zap.Logger

	entries []Entry
	built   bool
	builds  int
}

func NewIndex(page Source, fallback []Entry, log *zap.Logger) *Index {
	if log == nil {
		log = zap.NewNop()
	}
	return &Index{page: page, fallback: fallback, log: log}
}

// Build returns the cached entries, building them on first use. Page entries
// come first, then fallback entries, keeping the first entry per name. With no
// page entries only the fallback list is used. A failing page source is logged
// and the fallback-only result is returned without being cached.
//
// The returned slice is shared; callers must not modify it.
func (ix *Index) Build(ctx context.Context) []Entry {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.built {
		return ix.entries
	}

	var page []Entry
	if ix.page != nil {
		var err error
		page, err = ix.page.Entries(ctx)
		if err != nil {
			ix.log.Warn("search page source failed, using fallback", zap.Error(err))
			return ix.fallback
		}
	}

	if len(page) == 0 {
		ix.entries = ix.fallback
	} else {
		ix.entries = Dedupe(page, ix.fallback)
	}
	ix.built = true
	ix.builds++

	ix.log.Debug("search index built",
		zap.Int("page_entries", len(page)),
		zap.Int("entries", len(ix.entries)),
	)
	return ix.entries
}

// Invalidate drops the cached entries; the next Build reads the sources again.
func (ix *Index) Invalidate() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.entries = nil
	ix.built = false
}

// Builds reports how many times the index was actually built.
func (ix *Index) Builds() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.builds
}

// Query filters the index by substring on name or description. An empty query
// yields every entry. The sequence is lazy and can be ranged over again.
func (ix *Index) Query(ctx context.Context, text string) iter.Seq[Entry] {
	entries := ix.Build(ctx)
	q := Normalize(text)

	return func(yield func(Entry) bool) {
		for _, e := range entries {
			if q != "" && !e.matches(q) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}
