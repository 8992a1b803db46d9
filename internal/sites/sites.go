// Package sites holds the set of SN sites the front-end serves.
package sites

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"sync"

	"github.com/gosimple/slug"
	"github.com/hyperjump/snfront/internal/models"
	"github.com/hyperjump/snfront/internal/query"
)

// ErrUnknownSite is returned by Lookup for names that are not served.
var ErrUnknownSite = errors.New("unknown site")

// Site is one SN site. Upstream, when set, replaces the global API base URL for this site.
type Site struct {
	Name          string `yaml:"name" json:"name" validate:"required,slug"`
	Title         string `yaml:"title,omitempty" json:"title,omitempty"`
	DefaultLocale string `yaml:"default_locale,omitempty" json:"default_locale,omitempty"`
	DefaultSort   string `yaml:"default_sort,omitempty" json:"default_sort,omitempty"`
	Upstream      string `yaml:"upstream,omitempty" json:"upstream,omitempty" validate:"omitempty,url"`
}

// DisplayTitle returns Title, or Name when no title is configured.
func (s Site) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return s.Name
}

// State reads the query state from navigation parameters. A locale or sort the URL leaves
// empty is taken from the site defaults before the global defaults apply.
func (s Site) State(values url.Values) models.QueryState {
	state := query.ParseState(values)
	if values.Get(query.ParamLocale) == "" && s.DefaultLocale != "" {
		state.Locale = s.DefaultLocale
	}
	if values.Get(query.ParamSort) == "" && s.DefaultSort != "" {
		state.Sort = s.DefaultSort
	}
	return state
}

// Registry is a concurrency-safe set of sites. An empty registry accepts any slug-shaped name.
type Registry struct {
	mu    sync.RWMutex
	sites map[string]Site
}

// NewRegistry returns a registry holding list.
func NewRegistry(list []Site) *Registry {
	r := &Registry{}
	r.Replace(list)
	return r
}

// Lookup returns the site called name.
func (r *Registry) Lookup(name string) (Site, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sites[name]; ok {
		return s, nil
	}
	if len(r.sites) == 0 && slug.IsSlug(name) {
		return Site{Name: name}, nil
	}
	return Site{}, fmt.Errorf("%w: %q", ErrUnknownSite, name)
}

// Replace swaps the whole set. Later duplicates win.
func (r *Registry) Replace(list []Site) {
	m := make(map[string]Site, len(list))
	for _, s := range list {
		m[s.Name] = s
	}
	r.mu.Lock()
	r.sites = m
	r.mu.Unlock()
}

// List returns the configured sites sorted by name.
func (r *Registry) List() []Site {
	r.mu.RLock()
	out := make([]Site, 0, len(r.sites))
	for _, s := range r.sites {
		out = append(out, s)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of configured sites.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sites)
}
