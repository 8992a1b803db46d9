package benchmark

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/hyperjump/snfront/internal/cache"
	"github.com/hyperjump/snfront/internal/models"
	"github.com/hyperjump/snfront/internal/query"
	"github.com/hyperjump/snfront/internal/redirect"
	"github.com/hyperjump/snfront/internal/view"
)

func BenchmarkBuild(b *testing.B) {
	state := models.QueryState{
		Q:            "how to reset my password",
		Page:         3,
		Locale:       "en_US",
		Sort:         "date",
		FacetFilters: []string{"type:article", "product:laptop", "lang:en"},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = query.Build(state)
	}
}

func BenchmarkResolve(b *testing.B) {
	href := "https://search.example.com/sn/kb?q=reset+password&p=2&fq[]=type%3Aarticle&fq[]=lang%3Aen#top"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = redirect.Href("kb", href)
	}
}

func BenchmarkViewBuild(b *testing.B) {
	res := &models.SearchResult{}
	for i := 0; i < 50; i++ {
		res.Results.Document = append(res.Results.Document, models.Document{
			Fields: map[string]models.FieldValue{
				"title":       models.Text("Result <em>title</em>"),
				"url":         models.Text("https://example.com/page"),
				"description": models.Text("Some description of the result"),
			},
			Metadata: []string{"PDF", "KB"},
		})
	}
	for i := 1; i <= 10; i++ {
		res.Pagination = append(res.Pagination, models.PageLink{Text: strconv.Itoa(i), Href: "?q=reset&p=" + strconv.Itoa(i), Type: models.PageNormal})
	}
	res.QueryContext.DefaultFields = models.DefaultFields{Title: "title", URL: "url", Description: "description"}
	state := query.ParseStateString("q=reset")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = view.Build("kb", state, res, nil)
	}
}

func BenchmarkMemoryCache(b *testing.B) {
	c := cache.NewMemory(1000)
	ctx := context.Background()
	data, _ := json.Marshal([]string{"reset password", "reset pin"})
	keys := make([]string, 2000)
	for i := range keys {
		keys[i] = cache.Key("ac", "kb", string(rune('a'+i%26)), string(rune('a'+i/26)))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k := keys[i%len(keys)]
		if _, ok := c.Get(ctx, k); !ok {
			c.Set(ctx, k, data, 0)
		}
	}
}
