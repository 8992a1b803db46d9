package models

// Pagination entry types.
const (
	PageNormal   = "NORMAL"
	PageCurrent  = "CURRENT"
	PageEllipsis = "ELLIPSIS"
)

// SearchResult is the body of GET /sn/{site}/search.
type SearchResult struct {
	Results      Results      `json:"results"`
	Widget       Widget       `json:"widget"`
	Pagination   []PageLink   `json:"pagination"`
	QueryContext QueryContext `json:"queryContext"`
}

// Results holds the ranked documents and the operator-curated spotlight documents.
type Results struct {
	Document  []Document `json:"document"`
	Spotlight []Document `json:"spotlight,omitempty"`
}

// Widget carries everything rendered around the result list.
type Widget struct {
	Facet        []FacetGroup `json:"facet"`
	SpellCheck   *SpellCheck  `json:"spellCheck,omitempty"`
	Locale       []Locale     `json:"locale,omitempty"`
	CleanUpLinks []Link       `json:"cleanUpLinks,omitempty"`
}

// FacetGroup is one filterable attribute. CleanUpLink, when set, removes the whole group.
type FacetGroup struct {
	Label       string       `json:"label"`
	CleanUpLink string       `json:"cleanUpLink,omitempty"`
	Value       []FacetValue `json:"value"`
}

// FacetValue is one clickable value with its hit count.
type FacetValue struct {
	Label   string `json:"label"`
	Link    string `json:"link"`
	Count   int    `json:"count"`
	Applied bool   `json:"applied,omitempty"`
}

// SpellCheck describes a spelling correction. Corrected and Original are meaningless unless
// CorrectedText is true.
type SpellCheck struct {
	CorrectedText      bool `json:"correctedText"`
	UsingCorrectedText bool `json:"usingCorrectedText"`
	Corrected          Link `json:"corrected"`
	Original           Link `json:"original"`
}

// Link is a label or text with a server-built relative href.
type Link struct {
	Label string `json:"label,omitempty"`
	Text  string `json:"text,omitempty"`
	Link  string `json:"link"`
}

// Locale is one entry of the locale switcher.
type Locale struct {
	Label    string `json:"label"`
	Link     string `json:"link"`
	Selected bool   `json:"selected,omitempty"`
}

// PageLink is one entry of the pagination strip.
type PageLink struct {
	Text string `json:"text"`
	Href string `json:"href"`
	Type string `json:"type"`
}

// QueryContext holds counts and the field-name aliases for this site.
type QueryContext struct {
	TotalResults  int           `json:"totalResults"`
	StartIndex    int           `json:"startIndex"`
	EndIndex      int           `json:"endIndex"`
	PageSize      int           `json:"pageSize"`
	CurrentPage   int           `json:"currentPage"`
	DefaultFields DefaultFields `json:"defaultFields"`
}

// DefaultFields names the document fields holding the title, url, description and date.
type DefaultFields struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// ChatAnswer is the body of GET /sn/{site}/chat.
type ChatAnswer struct {
	Text string `json:"text"`
}
