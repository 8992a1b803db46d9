// Package view maps SN search responses into the render-ready page shared by the HTML
// results page, the JSON API and the CLI.
package view

import (
	"html/template"

	"github.com/hyperjump/snfront/internal/models"
	"github.com/hyperjump/snfront/internal/query"
	"github.com/hyperjump/snfront/internal/redirect"
)

// Status is the overall state of a results page.
type Status string

const (
	// StatusOK means at least one document is rendered.
	StatusOK Status = "ok"
	// StatusEmpty means the search succeeded with nothing to show.
	StatusEmpty Status = "empty"
	// StatusFailed means the primary search call failed.
	StatusFailed Status = "failed"
)

// Page is one rendered search.
type Page struct {
	Site           string             `json:"site"`
	State          models.QueryState  `json:"state"`
	Query          string             `json:"query"`
	Status         Status             `json:"status"`
	Documents      []Document         `json:"documents"`
	Spotlight      []Document         `json:"spotlight,omitempty"`
	Facets         []Facet            `json:"facets,omitempty"`
	AppliedFilters []Link             `json:"applied_filters,omitempty"`
	Locales        []Locale           `json:"locales,omitempty"`
	Spell          *SpellBanner       `json:"spell,omitempty"`
	Pagination     []PageItem         `json:"pagination,omitempty"`
	Chat           *models.ChatAnswer `json:"chat,omitempty"`
	Total          int                `json:"total"`
	Start          int                `json:"start"`
	End            int                `json:"end"`
	ShowAllURL     string             `json:"show_all_url"`
	ErrorMessage   string             `json:"error,omitempty"`
}

// Document is a linkable hit. Title and Description carry the server's highlighting markup
// and are rendered without escaping: the search API is responsible for escaping them.
type Document struct {
	Title       template.HTML `json:"title"`
	URL         string        `json:"url"`
	Description template.HTML `json:"description,omitempty"`
	Date        string        `json:"date,omitempty"`
	Internal    bool          `json:"internal"`
	Badges      []Badge       `json:"badges,omitempty"`
}

// Target is the anchor target: empty for internal links, "_blank" otherwise.
func (d Document) Target() string {
	if d.Internal {
		return ""
	}
	return "_blank"
}

// Badge is a metadata label with its derived colour.
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Facet is a facet group with resolved links.
type Facet struct {
	Label     string       `json:"label"`
	Removable bool         `json:"removable"`
	RemoveURL string       `json:"remove_url,omitempty"`
	Values    []FacetValue `json:"values"`
}

// FacetValue is one clickable facet entry.
type FacetValue struct {
	Label   string `json:"label"`
	URL     string `json:"url"`
	Count   int    `json:"count"`
	Applied bool   `json:"applied,omitempty"`
}

// Link is a label with a resolved local URL.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Locale is one locale switcher entry.
type Locale struct {
	Label    string `json:"label"`
	URL      string `json:"url"`
	Selected bool   `json:"selected,omitempty"`
}

// PageItem is one pagination entry. Gap entries have no URL; the current page has no URL
// either and is highlighted.
type PageItem struct {
	Text    string `json:"text"`
	URL     string `json:"url,omitempty"`
	Current bool   `json:"current,omitempty"`
	Gap     bool   `json:"gap,omitempty"`
}

// Clickable reports whether the entry navigates somewhere.
func (p PageItem) Clickable() bool {
	return !p.Current && !p.Gap && p.URL != ""
}

// SpellBanner is present only when the API corrected the query. UsingCorrected selects
// between "showing results for Corrected, search instead for Original" and "did you mean
// Corrected?".
type SpellBanner struct {
	UsingCorrected bool `json:"using_corrected"`
	Corrected      Link `json:"corrected"`
	Original       Link `json:"original"`
}

// Offer is the link the banner proposes: back to the original when the corrected term is in
// use, to the corrected term otherwise.
func (s *SpellBanner) Offer() Link {
	if s.UsingCorrected {
		return s.Original
	}
	return s.Corrected
}

// Build maps res into a page for site. chat may be nil. A nil res builds an empty page.
func Build(site string, state models.QueryState, res *models.SearchResult, chat *models.ChatAnswer) *Page {
	state = state.Normalize()
	p := newPage(site, state)
	p.Chat = chat
	if res == nil {
		p.Status = StatusEmpty
		return p
	}

	fields := resolveFields(res.QueryContext.DefaultFields)
	p.Documents = documents(res.Results.Document, fields)
	p.Spotlight = documents(res.Results.Spotlight, fields)
	p.Facets = facets(site, res.Widget.Facet)
	p.AppliedFilters = links(site, res.Widget.CleanUpLinks)
	p.Locales = locales(site, res.Widget.Locale)
	p.Spell = spellBanner(site, res.Widget.SpellCheck)
	p.Pagination = pagination(site, res.Pagination)

	qc := res.QueryContext
	p.Total = qc.TotalResults
	p.Start = qc.StartIndex
	p.End = qc.EndIndex

	if len(p.Documents) == 0 && len(p.Spotlight) == 0 {
		p.Status = StatusEmpty
	}
	return p
}

// Failed builds the "search failed" page. It offers the match-all query and nothing else.
// err is for the caller's log only; the page never shows it.
func Failed(site string, state models.QueryState, err error) *Page {
	p := newPage(site, state.Normalize())
	p.Status = StatusFailed
	p.ErrorMessage = "search failed"
	return p
}

func newPage(site string, state models.QueryState) *Page {
	showAll := redirect.PageURL(site)
	showAll.RawQuery = query.Build(models.MatchAllState(state.Locale))
	return &Page{
		Site:       site,
		State:      state,
		Query:      query.Build(state),
		Status:     StatusOK,
		Documents:  []Document{},
		ShowAllURL: showAll.String(),
	}
}
