// Package cli writes search pages, suggestions and server status to the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hyperjump/snfront/internal/models"
	"github.com/hyperjump/snfront/internal/storage"
	"github.com/hyperjump/snfront/internal/view"
	"github.com/hyperjump/snfront/pkg/utils"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputCompact is one line per document: url and title.
	OutputCompact SearchOutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

const descriptionWidth = 200

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true)
	chatStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
)

// ParseFormat returns the output format named s. Unknown names are an error.
func ParseFormat(s string) (SearchOutputFormat, error) {
	switch f := SearchOutputFormat(strings.ToLower(s)); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	case "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, compact or json)", s)
	}
}

// WriteSearchResults writes page to w in the given format.
func WriteSearchResults(w io.Writer, page *view.Page, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, page)
	case OutputCompact:
		writeSearchResultsCompact(w, page)
		return nil
	default:
		writeSearchResultsText(w, page)
		return nil
	}
}

func writeSearchResultsCompact(w io.Writer, page *view.Page) {
	if page.Status == view.StatusFailed {
		fmt.Fprintln(w, page.ErrorMessage)
		return
	}
	for _, d := range page.Spotlight {
		fmt.Fprintf(w, "%s\t%s\n", d.URL, utils.PlainText(string(d.Title)))
	}
	for _, d := range page.Documents {
		fmt.Fprintf(w, "%s\t%s\n", d.URL, utils.PlainText(string(d.Title)))
	}
}

func writeSearchResultsText(w io.Writer, page *view.Page) {
	if page.Status == view.StatusFailed {
		fmt.Fprintln(w, errorStyle.Render(page.ErrorMessage))
		fmt.Fprintf(w, "Show all content: %s\n", page.ShowAllURL)
		return
	}

	if s := page.Spell; s != nil {
		if s.UsingCorrected {
			fmt.Fprintf(w, "Showing results for %s. Search instead for %s (%s)\n",
				headingStyle.Render(s.Corrected.Label), s.Original.Label, s.Original.URL)
		} else {
			fmt.Fprintf(w, "Did you mean %s? (%s)\n", headingStyle.Render(s.Corrected.Label), s.Corrected.URL)
		}
	}
	if page.Chat != nil {
		fmt.Fprintf(w, "\n%s\n", chatStyle.Render(page.Chat.Text))
	}

	if page.Status == view.StatusEmpty {
		fmt.Fprintf(w, "\nNo results for %q.\n", displayQuery(page.State))
		fmt.Fprintf(w, "Show all content: %s\n", page.ShowAllURL)
		return
	}

	fmt.Fprintf(w, "\n%d-%d of %d results\n\n", page.Start, page.End, page.Total)
	for _, d := range page.Spotlight {
		writeOneResult(w, d, "spotlight")
	}
	for _, d := range page.Documents {
		writeOneResult(w, d, "")
	}

	if len(page.Facets) > 0 {
		fmt.Fprintln(w, headingStyle.Render("Filters"))
		for _, f := range page.Facets {
			fmt.Fprintf(w, "  %s\n", f.Label)
			for _, v := range f.Values {
				mark := " "
				if v.Applied {
					mark = "*"
				}
				fmt.Fprintf(w, "   %s %s (%d) %s\n", mark, v.Label, v.Count, mutedStyle.Render(v.URL))
			}
		}
		fmt.Fprintln(w)
	}
	if len(page.Pagination) > 0 {
		parts := make([]string, 0, len(page.Pagination))
		for _, p := range page.Pagination {
			if p.Current {
				parts = append(parts, "["+p.Text+"]")
			} else {
				parts = append(parts, p.Text)
			}
		}
		fmt.Fprintf(w, "Pages: %s\n", strings.Join(parts, " "))
	}
}

func writeOneResult(w io.Writer, d view.Document, label string) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	title := utils.PlainText(string(d.Title))
	if label != "" {
		title = "[" + label + "] " + title
	}
	fmt.Fprintln(w, headingStyle.Render(title))
	fmt.Fprintln(w, d.URL)
	if len(d.Badges) > 0 || d.Date != "" {
		var meta []string
		for _, b := range d.Badges {
			meta = append(meta, badge(b))
		}
		if d.Date != "" {
			meta = append(meta, mutedStyle.Render(d.Date))
		}
		fmt.Fprintln(w, strings.Join(meta, " "))
	}
	if desc := utils.PlainText(string(d.Description)); desc != "" {
		fmt.Fprintf(w, "\n%s\n", utils.Truncate(desc, descriptionWidth))
	}
	fmt.Fprintln(w)
}

func badge(b view.Badge) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ffffff")).
		Background(lipgloss.Color(b.Color)).
		Padding(0, 1).
		Render(b.Label)
}

func displayQuery(state models.QueryState) string {
	if state.IsMatchAll() {
		return ""
	}
	return state.Q
}

// WriteSuggestions writes one suggestion per line.
func WriteSuggestions(w io.Writer, suggestions []string) {
	for _, s := range suggestions {
		fmt.Fprintln(w, s)
	}
}

// WriteChat writes the generative answer. A nil answer writes nothing.
func WriteChat(w io.Writer, answer *models.ChatAnswer, format SearchOutputFormat) error {
	if answer == nil {
		return nil
	}
	if format == OutputJSON {
		return writeJSON(w, answer)
	}
	fmt.Fprintln(w, answer.Text)
	return nil
}

// Status is the body of GET /api/v1/status.
type Status struct {
	APIBaseURL   string         `json:"api_base_url"`
	CacheBackend string         `json:"cache_backend"`
	Sites        int            `json:"sites"`
	Version      string         `json:"version,omitempty"`
	QueryLog     *storage.Stats `json:"query_log,omitempty"`
}

// WriteStatus writes the server status.
func WriteStatus(w io.Writer, st *Status, format SearchOutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	fmt.Fprintf(w, "API:    %s\n", st.APIBaseURL)
	fmt.Fprintf(w, "Cache:  %s\n", st.CacheBackend)
	fmt.Fprintf(w, "Sites:  %d\n", st.Sites)
	if st.Version != "" {
		fmt.Fprintf(w, "Version: %s\n", st.Version)
	}
	if q := st.QueryLog; q != nil {
		fmt.Fprintf(w, "Searches: %d (%d failed, avg %.0fms)\n", q.Searches, q.Failures, q.AvgMillis)
		for i, tq := range q.TopQueries {
			fmt.Fprintf(w, "  %2d. %s (%d)\n", i+1, tq.Query, tq.Count)
		}
	} else {
		fmt.Fprintln(w, "Query log: disabled")
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
