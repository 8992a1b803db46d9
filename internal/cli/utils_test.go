package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/hyperjump/snfront/internal/models"
	"github.com/hyperjump/snfront/internal/storage"
	"github.com/hyperjump/snfront/internal/view"
)

func testPage() *view.Page {
	res := &models.SearchResult{
		Results: models.Results{Document: []models.Document{
			{
				Fields: map[string]models.FieldValue{
					"title":       models.Text("<em>Cats</em> &amp; kittens"),
					"url":         models.Text("https://example.com/cats"),
					"description": models.Text("All about <em>cats</em>."),
					"date":        models.Text("2024-03-01"),
				},
				Metadata: []string{"PDF"},
			},
			{Fields: map[string]models.FieldValue{"title": models.Text("Dropped")}},
		}},
		Widget: models.Widget{
			Facet: []models.FacetGroup{{
				Label: "Type",
				Value: []models.FacetValue{{Label: "pdf", Link: "?q=cats&fq[]=type%3Apdf", Count: 4, Applied: true}},
			}},
			SpellCheck: &models.SpellCheck{
				CorrectedText: true,
				Corrected:     models.Link{Text: "cats", Link: "?q=cats"},
				Original:      models.Link{Text: "catz", Link: "?q=catz"},
			},
		},
		Pagination: []models.PageLink{
			{Text: "1", Type: models.PageCurrent},
			{Text: "2", Href: "?q=cats&p=2", Type: models.PageNormal},
		},
		QueryContext: models.QueryContext{TotalResults: 11, StartIndex: 1, EndIndex: 10},
	}
	return view.Build("docs", models.QueryState{Q: "catz"}, res, &models.ChatAnswer{Text: "Cats purr."})
}

func TestWriteSearchResults_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, testPage(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"Did you mean",
		"Cats purr.",
		"1-10 of 11 results",
		"Cats & kittens",
		"https://example.com/cats",
		"PDF",
		"2024-03-01",
		"All about cats.",
		"* pdf (4) /sn/docs?q=cats&fq[]=type%3Apdf",
		"Pages: [1] 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output should contain %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "<em>") || strings.Contains(out, "Dropped") {
		t.Errorf("text output should be plain and skip documents without url:\n%s", out)
	}
}

func TestWriteSearchResults_Compact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, testPage(), OutputCompact); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "https://example.com/cats\tCats & kittens\n" {
		t.Errorf("compact output: got %q", got)
	}
}

func TestWriteSearchResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, testPage(), OutputJSON); err != nil {
		t.Fatalf("WriteSearchResults(json): %v", err)
	}
	var decoded struct {
		Site      string `json:"site"`
		Status    string `json:"status"`
		Documents []struct {
			URL string `json:"url"`
		} `json:"documents"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded.Site != "docs" || decoded.Status != "ok" || len(decoded.Documents) != 1 {
		t.Errorf("decoded: got %+v", decoded)
	}
}

func TestWriteSearchResults_FailedAndEmpty(t *testing.T) {
	var buf bytes.Buffer
	failed := view.Failed("docs", models.QueryState{Q: "cats"}, errors.New("search: request failed"))
	if err := WriteSearchResults(&buf, failed, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "search failed") || !strings.Contains(buf.String(), "/sn/docs?q=*&p=1&sort=relevance") {
		t.Errorf("failed output: %s", buf.String())
	}

	buf.Reset()
	empty := view.Build("docs", models.QueryState{Q: "zzz"}, &models.SearchResult{}, nil)
	if err := WriteSearchResults(&buf, empty, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `No results for "zzz"`) {
		t.Errorf("empty output: %s", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]SearchOutputFormat{"": OutputText, "text": OutputText, "JSON": OutputJSON, "compact": OutputCompact} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestWriteSuggestionsAndChat(t *testing.T) {
	var buf bytes.Buffer
	WriteSuggestions(&buf, []string{"cats", "catalog"})
	if buf.String() != "cats\ncatalog\n" {
		t.Errorf("suggestions: got %q", buf.String())
	}

	buf.Reset()
	if err := WriteChat(&buf, nil, OutputText); err != nil || buf.Len() != 0 {
		t.Errorf("nil chat should write nothing, got %q", buf.String())
	}
	if err := WriteChat(&buf, &models.ChatAnswer{Text: "hi"}, OutputText); err != nil || buf.String() != "hi\n" {
		t.Errorf("chat: got %q", buf.String())
	}
}

func TestWriteStatus(t *testing.T) {
	var buf bytes.Buffer
	st := &Status{
		APIBaseURL:   "https://api.example.com",
		CacheBackend: "redis",
		Sites:        2,
		QueryLog: &storage.Stats{
			Searches:   10,
			Failures:   1,
			TopQueries: []storage.QueryCount{{Query: "cats", Count: 4}},
		},
	}
	if err := WriteStatus(&buf, st, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"https://api.example.com", "redis", "Searches: 10 (1 failed", "1. cats (4)"} {
		if !strings.Contains(out, want) {
			t.Errorf("status should contain %q\n%s", want, out)
		}
	}

	buf.Reset()
	if err := WriteStatus(&buf, &Status{}, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Query log: disabled") {
		t.Errorf("status without query log: %s", buf.String())
	}
}
