package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/snfront/internal/client"
	"github.com/hyperjump/snfront/internal/config"
	"github.com/hyperjump/snfront/internal/search"
	"github.com/hyperjump/snfront/internal/sites"
	"github.com/hyperjump/snfront/internal/storage"
)

const searchFixture = `{
  "results": {
    "document": [
      {"fields": {"title": "<em>Cats</em> guide", "url": "https://example.com/cats", "description": "All about cats", "date": "2024-01-02"}, "metadata": ["PDF"]},
      {"fields": {"title": "Internal page", "url": "/docs/cats"}},
      {"fields": {"title": "No url"}}
    ]
  },
  "widget": {
    "facet": [
      {"label": "Color", "cleanUpLink": "?q=cats", "value": [
        {"label": "black", "link": "?q=cats&fq[]=color%3Ablack", "count": 3, "applied": true}
      ]}
    ],
    "spellCheck": {"correctedText": true, "usingCorrectedText": false,
      "corrected": {"text": "cats", "link": "?q=cats"}, "original": {"text": "catz", "link": "?q=catz&nfpr=1"}}
  },
  "pagination": [
    {"text": "1", "href": "", "type": "CURRENT"},
    {"text": "2", "href": "?q=cats&p=2", "type": "NORMAL"}
  ],
  "queryContext": {"totalResults": 12, "startIndex": 1, "endIndex": 10, "pageSize": 10, "currentPage": 1,
    "defaultFields": {"title": "title", "url": "url", "description": "description", "date": "date"}}
}`

type upstream struct {
	mu         sync.Mutex
	calls      map[string]int
	requestIDs []string
	failSearch bool
	failBody   string
	failChat   bool
}

func (u *upstream) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		if u.calls == nil {
			u.calls = make(map[string]int)
		}
		op := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		u.calls[op]++
		u.requestIDs = append(u.requestIDs, r.Header.Get(client.HeaderRequestID))
		failSearch, failBody, failChat := u.failSearch, u.failBody, u.failChat
		u.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch op {
		case "search":
			if failSearch {
				if failBody == "" {
					failBody = "backend down"
				}
				http.Error(w, failBody, http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(searchFixture))
		case "ac":
			_, _ = w.Write([]byte(`["cats", "catalog"]`))
		case "chat":
			if failChat {
				http.Error(w, "no model", http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte(`{"text": "Cats are small mammals."}`))
		default:
			http.NotFound(w, r)
		}
	})
}

func (u *upstream) count(op string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls[op]
}

func newTestServer(t *testing.T, up *upstream, queryLog storage.QueryLog) (*Server, http.Handler) {
	t.Helper()
	api := httptest.NewServer(up.handler())
	t.Cleanup(api.Close)

	logger := zap.NewNop()
	c := client.New(api.URL, client.WithLogger(logger))
	svc := search.NewService(c, logger, search.WithQueryLog(queryLog))
	registry := sites.NewRegistry([]sites.Site{{Name: "docs", Title: "Documentation"}})
	srv := NewServer(svc, registry, queryLog, &config.ServerConfig{Host: "localhost", Port: 8080},
		Info{APIBaseURL: api.URL, CacheBackend: "none"}, logger)
	return srv, srv.Handler()
}

func do(h http.Handler, target string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestHandlePage(t *testing.T) {
	up := &upstream{}
	_, h := newTestServer(t, up, nil)

	w := do(h, "/sn/docs?q=catz")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type: got %s", ct)
	}
	body := w.Body.String()
	for _, want := range []string{
		"<em>Cats</em> guide",
		`href="https://example.com/cats" target="_blank" rel="noopener noreferrer"`,
		`href="/docs/cats">Internal page`,
		"Cats are small mammals.",
		"Did you mean",
		`href="/sn/docs?q=cats&amp;p=2"`,
		`class="current">1<`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page should contain %q", want)
		}
	}
	if strings.Contains(body, "No url") {
		t.Error("documents without a url should not render")
	}
	if strings.Contains(body, "%5B%5D") {
		t.Error("page links should keep literal [] keys")
	}
	if up.count("chat") != 1 || up.count("search") != 1 {
		t.Errorf("upstream calls: %v", up.calls)
	}
}

func TestHandlePage_UnknownSite(t *testing.T) {
	_, h := newTestServer(t, &upstream{}, nil)
	if w := do(h, "/sn/shop?q=x"); w.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", w.Code)
	}
	w := do(h, "/api/v1/sn/dosc/search?q=x")
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), `did you mean \"docs\"?`) {
		t.Errorf("near miss: got %d %s", w.Code, w.Body.String())
	}
}

func TestHandlePage_SearchFailed(t *testing.T) {
	up := &upstream{failSearch: true}
	_, h := newTestServer(t, up, nil)

	w := do(h, "/sn/docs?q=cats&_setlocale=en_US")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "search failed") {
		t.Error("failed page should explain the failure")
	}
	if !strings.Contains(body, `href="/sn/docs?q=*&amp;p=1&amp;_setlocale=en_US&amp;sort=relevance">Show all content`) {
		t.Errorf("failed page should offer show all, got: %s", body)
	}
}

func TestHandleSearch_FailureHidesUpstreamError(t *testing.T) {
	up := &upstream{failSearch: true, failBody: "pq: connection refused to secret-db-host:5432"}
	_, h := newTestServer(t, up, nil)

	for _, target := range []string{"/sn/docs?q=cats", "/api/v1/sn/docs/search?q=cats"} {
		w := do(h, target)
		body := w.Body.String()
		if !strings.Contains(body, "search failed") {
			t.Errorf("%s: should report the failure, got: %s", target, body)
		}
		for _, leak := range []string{"secret-db-host", "connection refused"} {
			if strings.Contains(body, leak) {
				t.Errorf("%s: body leaks %q: %s", target, leak, body)
			}
		}
	}

	w := do(h, "/api/v1/sn/docs/search?q=cats")
	var out struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Error != "search failed" {
		t.Errorf("error: got %q", out.Error)
	}
}

func TestHandleGo(t *testing.T) {
	_, h := newTestServer(t, &upstream{}, nil)

	w := do(h, "/sn/docs/go?href="+strings.NewReplacer("?", "%3F", "&", "%26", "[", "%5B", "]", "%5D").
		Replace("?q=dogs&fq[]=a&fq[]=b"))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/sn/docs?q=dogs&fq[]=a&fq[]=b" {
		t.Errorf("location: got %s", loc)
	}
}

func TestHandleSearch(t *testing.T) {
	up := &upstream{}
	_, h := newTestServer(t, up, nil)

	w := do(h, "/api/v1/sn/docs/search?q=cats")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out struct {
		Status    string `json:"status"`
		Total     int    `json:"total"`
		Documents []struct {
			URL      string `json:"url"`
			Internal bool   `json:"internal"`
		} `json:"documents"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Status != "ok" || out.Total != 12 {
		t.Errorf("got %+v", out)
	}
	if len(out.Documents) != 2 || out.Documents[0].Internal || !out.Documents[1].Internal {
		t.Errorf("documents: got %+v", out.Documents)
	}
}

func TestHandleSearch_FailedStrict(t *testing.T) {
	up := &upstream{failSearch: true}
	_, h := newTestServer(t, up, nil)

	if w := do(h, "/api/v1/sn/docs/search?q=cats"); w.Code != http.StatusOK {
		t.Errorf("lenient status: got %d, want 200", w.Code)
	}
	w := do(h, "/api/v1/sn/docs/search?q=cats&strict=1")
	if w.Code != http.StatusBadGateway {
		t.Errorf("strict status: got %d, want 502", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"failed"`) {
		t.Errorf("body: %s", w.Body.String())
	}
}

func TestHandleSearch_ChatFailureKeepsResults(t *testing.T) {
	up := &upstream{failChat: true}
	_, h := newTestServer(t, up, nil)

	w := do(h, "/api/v1/sn/docs/search?q=cats")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("chat failure should not fail the page: %d %s", w.Code, w.Body.String())
	}
}

func TestHandleSuggest(t *testing.T) {
	up := &upstream{}
	_, h := newTestServer(t, up, nil)

	w := do(h, "/api/v1/sn/docs/suggest?q=ca")
	if strings.TrimSpace(w.Body.String()) != `{"suggestions":[]}` {
		t.Errorf("short query: got %s", w.Body.String())
	}
	if up.count("ac") != 0 {
		t.Error("no autocomplete request for two characters")
	}

	w = do(h, "/api/v1/sn/docs/suggest?q=cat")
	if strings.TrimSpace(w.Body.String()) != `{"suggestions":["cats","catalog"]}` {
		t.Errorf("got %s", w.Body.String())
	}
}

func TestHandleChat(t *testing.T) {
	up := &upstream{}
	_, h := newTestServer(t, up, nil)

	if w := do(h, "/api/v1/sn/docs/chat?q=*"); w.Code != http.StatusNoContent {
		t.Errorf("match-all: got %d, want 204", w.Code)
	}
	if up.count("chat") != 0 {
		t.Error("no chat request for match-all")
	}
	w := do(h, "/api/v1/sn/docs/chat?q=cats")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "small mammals") {
		t.Errorf("got %d %s", w.Code, w.Body.String())
	}
}

func TestHandleSitesAndHealth(t *testing.T) {
	_, h := newTestServer(t, &upstream{}, nil)

	w := do(h, "/api/v1/sites")
	var out struct {
		Sites []sites.Site `json:"sites"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Sites) != 1 || out.Sites[0].Name != "docs" {
		t.Errorf("sites: got %+v", out.Sites)
	}

	w = do(h, "/health")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"status":"ok"}` {
		t.Errorf("health: got %d %s", w.Code, w.Body.String())
	}
}

func TestHandleStatus(t *testing.T) {
	log, err := storage.NewSQLiteLog(filepath.Join(t.TempDir(), "searches.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer log.Close()
	_, h := newTestServer(t, &upstream{}, log)

	do(h, "/api/v1/sn/docs/search?q=cats")
	do(h, "/sn/docs?q=cats")

	w := do(h, "/api/v1/status?top=5")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out struct {
		Sites        int    `json:"sites"`
		CacheBackend string `json:"cache_backend"`
		QueryLog     struct {
			Searches   int64 `json:"searches"`
			TopQueries []struct {
				Query string `json:"query"`
				Count int64  `json:"count"`
			} `json:"top_queries"`
		} `json:"query_log"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Sites != 1 || out.CacheBackend != "none" {
		t.Errorf("got %+v", out)
	}
	if out.QueryLog.Searches != 2 || len(out.QueryLog.TopQueries) != 1 || out.QueryLog.TopQueries[0].Count != 2 {
		t.Errorf("query log: got %+v", out.QueryLog)
	}
}

func TestRequestIDForwarded(t *testing.T) {
	up := &upstream{}
	_, h := newTestServer(t, up, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/sn/docs/search?q=*", nil)
	r.Header.Set("X-Request-Id", "abc-123")
	h.ServeHTTP(httptest.NewRecorder(), r)

	up.mu.Lock()
	defer up.mu.Unlock()
	if len(up.requestIDs) != 1 || up.requestIDs[0] != "abc-123" {
		t.Errorf("request ids: got %v", up.requestIDs)
	}
}
