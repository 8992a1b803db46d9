package search

import (
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/snfront/internal/models"
)

// MinAutoCompleteLength is the shortest query, in characters after trimming surrounding
// whitespace, that asks for suggestions.
const MinAutoCompleteLength = 3

// ProcessQuery trims the typed query and applies the navigation defaults.
func ProcessQuery(state models.QueryState) models.QueryState {
	state.Q = strings.TrimSpace(state.Q)
	return state.Normalize()
}

// wantsSuggestions reports whether q is long enough for autocomplete.
func wantsSuggestions(q string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(q)) >= MinAutoCompleteLength
}

// wantsChat reports whether the state gets a generative answer. Match-all never does.
func wantsChat(state models.QueryState) bool {
	return !state.IsMatchAll()
}
