package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/hyperjump/snfront/internal/query"
	"github.com/hyperjump/snfront/internal/search"
	"github.com/hyperjump/snfront/internal/sites"
	"github.com/hyperjump/snfront/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("page.html").Funcs(template.FuncMap{
	"failed": func(p *view.Page) bool { return p.Status == view.StatusFailed },
	"empty":  func(p *view.Page) bool { return p.Status == view.StatusEmpty },
}).ParseFS(templateFS, "templates/page.html"))

type pageData struct {
	Site         sites.Site
	Page         *view.Page
	SuggestURL   string
	MinSuggest   int
	LocaleParam  string
	SortParam    string
	QueryParam   string
	DisplayQuery string
}

func (s *Server) renderPage(w http.ResponseWriter, site sites.Site, page *view.Page) {
	q := page.State.Q
	if q == "*" {
		q = ""
	}
	data := pageData{
		Site:         site,
		Page:         page,
		SuggestURL:   "/api/v1/sn/" + site.Name + "/suggest",
		MinSuggest:   search.MinAutoCompleteLength,
		LocaleParam:  query.ParamLocale,
		SortParam:    query.ParamSort,
		QueryParam:   query.ParamQuery,
		DisplayQuery: q,
	}
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("render page failed", zap.String("site", site.Name), zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
