package search

import (
	"iter"
	"slices"
)

const HintMessage = "Start typing to search products"

type ResultState string

const (
	StateHint      ResultState = "hint"
	StateNoResults ResultState = "no_results"
	StateResults   ResultState = "results"
)

type Results struct {
	Query   string      `json:"query"`
	State   ResultState `json:"state"`
	Message string      `json:"message,omitempty"`
	Entries []Entry     `json:"entries"`
}

func NoResultsMessage(query string) string {
	return `No results found for "` + query + `"`
}

// RenderResults turns a query and its matches into what the overlay shows.
func RenderResults(query string, matches iter.Seq[Entry]) Results {
	entries := slices.Collect(matches)
	r := Results{Query: query, Entries: entries}
	if r.Entries == nil {
		r.Entries = []Entry{}
	}

	switch {
	case len(entries) > 0:
		r.State = StateResults
	case Normalize(query) != "":
		r.State = StateNoResults
		r.Message = NoResultsMessage(query)
	default:
		r.State = StateHint
		r.Message = HintMessage
	}
	return r
}
