package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/snfront/internal/client"
	"github.com/hyperjump/snfront/internal/query"
	"github.com/hyperjump/snfront/internal/redirect"
	"github.com/hyperjump/snfront/internal/sites"
	"github.com/hyperjump/snfront/internal/view"
)

const defaultTopQueries = 10

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	list := s.sites.List()
	if len(list) == 0 {
		s.respondError(w, http.StatusNotFound, "no sites configured")
		return
	}
	http.Redirect(w, r, redirect.PageURL(list[0].Name).String(), http.StatusFound)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	site, ok := s.lookupSite(w, r)
	if !ok {
		return
	}
	state := site.State(r.URL.Query())
	s.logger.Debug("page request", zap.String("site", site.Name), zap.String("query", query.Build(state)))
	page := s.service.Run(s.upstreamContext(r), site, state)
	s.renderPage(w, site, page)
}

// handleGo turns a server-provided href into a local page URL and redirects to it.
func (s *Server) handleGo(w http.ResponseWriter, r *http.Request) {
	site, ok := s.lookupSite(w, r)
	if !ok {
		return
	}
	target := redirect.Resolve(redirect.PageURL(site.Name), r.URL.Query().Get("href"))
	http.Redirect(w, r, target.String(), http.StatusSeeOther)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	site, ok := s.lookupSite(w, r)
	if !ok {
		return
	}
	state := site.State(r.URL.Query())
	page := s.service.Run(s.upstreamContext(r), site, state)
	if page.Status == view.StatusFailed && isStrict(r) {
		s.respondJSON(w, http.StatusBadGateway, page)
		return
	}
	s.respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	site, ok := s.lookupSite(w, r)
	if !ok {
		return
	}
	suggestions := s.service.Suggest(s.upstreamContext(r), site, site.State(r.URL.Query()))
	if suggestions == nil {
		suggestions = []string{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"suggestions": suggestions})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	site, ok := s.lookupSite(w, r)
	if !ok {
		return
	}
	answer := s.service.Chat(s.upstreamContext(r), site, site.State(r.URL.Query()))
	if answer == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.respondJSON(w, http.StatusOK, answer)
}

func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"sites": s.sites.List()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"api_base_url":  s.info.APIBaseURL,
		"cache_backend": s.info.CacheBackend,
		"sites":         s.sites.Len(),
	}
	if s.info.Version != "" {
		resp["version"] = s.info.Version
	}
	if s.queryLog != nil {
		top := defaultTopQueries
		if v, err := strconv.Atoi(r.URL.Query().Get("top")); err == nil && v >= 0 {
			top = v
		}
		stats, err := s.queryLog.Stats(r.Context(), r.URL.Query().Get("site"), top)
		if err != nil {
			s.logger.Error("status: query log stats failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp["query_log"] = stats
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) lookupSite(w http.ResponseWriter, r *http.Request) (sites.Site, bool) {
	name := chi.URLParam(r, "site")
	site, err := s.sites.Lookup(name)
	if err != nil {
		if errors.Is(err, sites.ErrUnknownSite) {
			msg := err.Error()
			if near, ok := s.sites.Closest(name); ok {
				msg += fmt.Sprintf("; did you mean %q?", near.Name)
			}
			s.respondError(w, http.StatusNotFound, msg)
			return sites.Site{}, false
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return sites.Site{}, false
	}
	return site, true
}

// upstreamContext forwards the front-end request id to the search API.
func (s *Server) upstreamContext(r *http.Request) context.Context {
	ctx := r.Context()
	if id := middleware.GetReqID(ctx); id != "" {
		ctx = client.WithRequestID(ctx, id)
	}
	return ctx
}

func isStrict(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("strict"))
	return err == nil && v
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
