// Package query turns a QueryState into the canonical query string the SN search API expects,
// and parses navigation parameters back into a QueryState.
package query

import (
	"strconv"
	"strings"

	"github.com/hyperjump/snfront/internal/models"
)

// Parameter names on the wire.
const (
	ParamQuery       = "q"
	ParamPage        = "p"
	ParamLocale      = "_setlocale"
	ParamSort        = "sort"
	ParamFacet       = "fq[]"
	ParamTrace       = "tr[]"
	ParamNoFuzzy     = "nfpr"
	encodedArrayPair = "%5B%5D"
)

// Build returns the canonical query string for state. Parameters are emitted in a fixed
// order (q, p, _setlocale, sort, fq[]..., tr[]..., nfpr); filters keep their order and
// duplicates. Locale and nfpr are omitted when empty. Build never fails.
func Build(state models.QueryState) string {
	s := state.Normalize()
	p := make(Params, 0, 5+len(s.FacetFilters)+len(s.TraceFilters))
	p = p.Add(ParamQuery, s.Q)
	p = p.Add(ParamPage, strconv.Itoa(s.Page))
	if s.Locale != "" {
		p = p.Add(ParamLocale, s.Locale)
	}
	p = p.Add(ParamSort, s.Sort)
	for _, f := range s.FacetFilters {
		p = p.Add(ParamFacet, f)
	}
	for _, f := range s.TraceFilters {
		p = p.Add(ParamTrace, f)
	}
	if s.NoFuzzyPartialResults != "" {
		p = p.Add(ParamNoFuzzy, s.NoFuzzyPartialResults)
	}
	return p.Encode()
}

// BuildChat returns the query string for the chat endpoint: q and, when set, the locale.
func BuildChat(q, locale string) string {
	if strings.TrimSpace(q) == "" {
		q = models.MatchAll
	}
	p := Params{}.Add(ParamQuery, q)
	if locale != "" {
		p = p.Add(ParamLocale, locale)
	}
	return p.Encode()
}

// FixArrayKeys turns every encoded "[]" back into the literal brackets the API uses for
// repeated parameters.
func FixArrayKeys(s string) string {
	return strings.ReplaceAll(s, encodedArrayPair, "[]")
}

// escape is application/x-www-form-urlencoded serialization: alphanumerics and *-._ stay,
// space becomes '+', everything else is percent-encoded byte by byte.
func escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
			b.WriteByte(c)
		case c == '*' || c == '-' || c == '.' || c == '_':
			b.WriteByte(c)
		case c == ' ':
			b.WriteByte('+')
		default:
			const hex = "0123456789ABCDEF"
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return b.String()
}
