// Package search builds the storefront's product search index and drives the
// search overlay.
package search

import "strings"

type Entry struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Link        string `json:"link" yaml:"link"`
}

func (e Entry) key() string { return strings.ToLower(e.Name) }

// matches expects q already normalized.
func (e Entry) matches(q string) bool {
	return strings.Contains(strings.ToLower(e.Name), q) ||
		strings.Contains(strings.ToLower(e.Description), q)
}

// Normalize trims and lowercases a query.
func Normalize(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Dedupe keeps the first entry per case-insensitive name.
func Dedupe(lists ...[]Entry) []Entry {
	n := 0
	for _, l := range lists {
		n += len(l)
	}

	seen := make(map[string]struct{}, n)
	out := make([]Entry, 0, n)
	for _, l := range lists {
		for _, e := range l {
			k := e.key()
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}
