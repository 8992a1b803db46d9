package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/hyperjump/snfront/internal/models"
)

// ParseState reads a QueryState from navigation parameters. Missing or malformed values fall
// back to the defaults; it never fails.
func ParseState(values url.Values) models.QueryState {
	state := models.QueryState{
		Q:                     strings.TrimSpace(values.Get(ParamQuery)),
		Page:                  parsePage(values.Get(ParamPage)),
		Locale:                values.Get(ParamLocale),
		Sort:                  values.Get(ParamSort),
		FacetFilters:          values[ParamFacet],
		TraceFilters:          values[ParamTrace],
		NoFuzzyPartialResults: values.Get(ParamNoFuzzy),
	}
	return state.Normalize()
}

// ParseStateString is ParseState over a raw query string.
func ParseStateString(raw string) models.QueryState {
	return ParseState(ParseParams(raw).Values())
}

func parsePage(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < models.FirstPage {
		return models.FirstPage
	}
	return n
}
