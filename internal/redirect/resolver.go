// Package redirect turns the relative links returned by the SN search API (facet toggles,
// pagination, spelling accept/revert) into local navigation URLs.
//
// A server link is a complete description of the next query, so the resolved URL keeps the
// current path and takes its query solely from the link. Nothing from the previous query
// survives. Fetching the next page is left to whatever serves that URL.
package redirect

import (
	"net/url"
	"strings"

	"github.com/hyperjump/snfront/internal/query"
)

// PagePrefix is the path under which site result pages are served.
const PagePrefix = "/sn/"

// Resolve returns the navigation URL for serverHref relative to current. The path of current
// is kept; the query is rebuilt in order from the link's own parameters.
func Resolve(current *url.URL, serverHref string) *url.URL {
	next := &url.URL{}
	if current != nil {
		next.Path = current.Path
		next.RawPath = current.RawPath
	}
	next.RawQuery = Params(serverHref).Encode()
	return next
}

// Params extracts the ordered parameters from the query portion of a server link. The
// fragment is dropped. A link without '?' is read as a bare query when it contains '=',
// otherwise it has no parameters.
func Params(serverHref string) query.Params {
	href, _, _ := strings.Cut(serverHref, "#")
	if _, raw, ok := strings.Cut(href, "?"); ok {
		return query.ParseParams(raw)
	}
	if strings.Contains(href, "=") {
		return query.ParseParams(href)
	}
	return nil
}

// PageURL is the local results page for site.
func PageURL(site string) *url.URL {
	return &url.URL{Path: PagePrefix + site, RawPath: PagePrefix + url.PathEscape(site)}
}

// Href resolves serverHref against the result page of site and returns it as a string.
func Href(site, serverHref string) string {
	return Resolve(PageURL(site), serverHref).String()
}
