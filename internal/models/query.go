// Package models defines the data exchanged with the SN search API: the navigation query
// state, the search response and the generative answer.
package models

import "strings"

const (
	// MatchAll is the query sent when the user typed nothing.
	MatchAll = "*"
	// DefaultSort is the sort order the API expects when none is chosen.
	DefaultSort = "relevance"
	// FirstPage is the page number used when none is given.
	FirstPage = 1
)

// QueryState is everything that determines one search. It is derived from the navigation URL
// and never stored anywhere else.
type QueryState struct {
	Q                     string   `json:"q"`
	Page                  int      `json:"page"`
	Locale                string   `json:"locale,omitempty"`
	Sort                  string   `json:"sort"`
	FacetFilters          []string `json:"facet_filters,omitempty"`
	TraceFilters          []string `json:"trace_filters,omitempty"`
	NoFuzzyPartialResults string   `json:"nfpr,omitempty"`
}

// Normalize returns a copy with the defaults applied: empty q becomes "*", a page below 1
// becomes 1 and an empty sort becomes "relevance". Filters are copied, not deduplicated.
func (s QueryState) Normalize() QueryState {
	out := s
	if strings.TrimSpace(out.Q) == "" {
		out.Q = MatchAll
	}
	if out.Page < FirstPage {
		out.Page = FirstPage
	}
	if out.Sort == "" {
		out.Sort = DefaultSort
	}
	out.FacetFilters = append([]string(nil), s.FacetFilters...)
	out.TraceFilters = append([]string(nil), s.TraceFilters...)
	return out
}

// IsMatchAll reports whether the state searches for everything.
func (s QueryState) IsMatchAll() bool {
	return s.Normalize().Q == MatchAll
}

// MatchAllState is the "show all content" query: match-all, first page, same locale.
func MatchAllState(locale string) QueryState {
	return QueryState{Q: MatchAll, Page: FirstPage, Locale: locale, Sort: DefaultSort}
}
