// Package e2e drives the whole front-end, from config file to rendered page, against a fake
// SN search API.
package e2e

import (
	"net/http"
	"strings"
	"sync"
)

// searchResponse is a two-page result set for "cats" with one facet and a spelling
// suggestion.
const searchResponse = `{
  "results": {
    "document": [
      {"fields": {"title": "<em>Cats</em> guide", "url": "https://example.com/cats", "description": "All about cats"}},
      {"fields": {"title": "Cat care", "url": "/kb/cat-care", "date": "2024-03-01"}, "metadata": ["KB"]}
    ]
  },
  "widget": {
    "facet": [
      {"label": "Type", "cleanUpLink": "?q=cats", "value": [
        {"label": "article", "link": "?q=cats&fq[]=type%3Aarticle", "count": 7}
      ]}
    ]
  },
  "pagination": [
    {"text": "1", "href": "", "type": "CURRENT"},
    {"text": "2", "href": "?q=cats&p=2", "type": "NORMAL"}
  ],
  "queryContext": {"totalResults": 14, "startIndex": 1, "endIndex": 10, "pageSize": 10, "currentPage": 1,
    "defaultFields": {"title": "title", "url": "url", "description": "description", "date": "date"}}
}`

// fakeAPI records every request it serves, keyed by the last path segment.
type fakeAPI struct {
	mu      sync.Mutex
	queries map[string][]string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	op := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	f.mu.Lock()
	if f.queries == nil {
		f.queries = make(map[string][]string)
	}
	f.queries[op] = append(f.queries[op], r.URL.RawQuery)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch op {
	case "search":
		_, _ = w.Write([]byte(searchResponse))
	case "ac":
		_, _ = w.Write([]byte(`["cats", "cat care"]`))
	case "chat":
		_, _ = w.Write([]byte(`{"text": "Cats sleep a lot."}`))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeAPI) requests(op string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries[op]...)
}
