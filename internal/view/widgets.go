package view

import (
	"html/template"

	"github.com/hyperjump/snfront/internal/models"
	"github.com/hyperjump/snfront/internal/redirect"
)

// Fallback field names when the response does not name them.
const (
	fieldTitle       = "title"
	fieldURL         = "url"
	fieldDescription = "description"
	fieldDate        = "date"
)

func resolveFields(df models.DefaultFields) models.DefaultFields {
	if df.Title == "" {
		df.Title = fieldTitle
	}
	if df.URL == "" {
		df.URL = fieldURL
	}
	if df.Description == "" {
		df.Description = fieldDescription
	}
	if df.Date == "" {
		df.Date = fieldDate
	}
	return df
}

func documents(in []models.Document, fields models.DefaultFields) []Document {
	out := make([]Document, 0, len(in))
	for _, d := range in {
		u := d.Field(fields.URL)
		if u == "" {
			continue
		}
		doc := Document{
			Title:       template.HTML(d.Field(fields.Title)),
			URL:         u,
			Description: template.HTML(d.Field(fields.Description)),
			Date:        d.Field(fields.Date),
			Internal:    IsInternalLink(u),
		}
		if doc.Title == "" {
			doc.Title = template.HTML(template.HTMLEscapeString(u))
		}
		for _, m := range d.Metadata {
			if m == "" {
				continue
			}
			doc.Badges = append(doc.Badges, Badge{Label: m, Color: BadgeColor(m)})
		}
		out = append(out, doc)
	}
	return out
}

func facets(site string, in []models.FacetGroup) []Facet {
	out := make([]Facet, 0, len(in))
	for _, g := range in {
		f := Facet{Label: g.Label, Removable: g.CleanUpLink != ""}
		if f.Removable {
			f.RemoveURL = redirect.Href(site, g.CleanUpLink)
		}
		for _, v := range g.Value {
			f.Values = append(f.Values, FacetValue{
				Label:   v.Label,
				URL:     redirect.Href(site, v.Link),
				Count:   v.Count,
				Applied: v.Applied,
			})
		}
		out = append(out, f)
	}
	return out
}

func links(site string, in []models.Link) []Link {
	var out []Link
	for _, l := range in {
		label := l.Label
		if label == "" {
			label = l.Text
		}
		out = append(out, Link{Label: label, URL: redirect.Href(site, l.Link)})
	}
	return out
}

func locales(site string, in []models.Locale) []Locale {
	var out []Locale
	for _, l := range in {
		out = append(out, Locale{Label: l.Label, URL: redirect.Href(site, l.Link), Selected: l.Selected})
	}
	return out
}

func spellBanner(site string, sc *models.SpellCheck) *SpellBanner {
	if sc == nil || !sc.CorrectedText {
		return nil
	}
	return &SpellBanner{
		UsingCorrected: sc.UsingCorrectedText,
		Corrected:      Link{Label: sc.Corrected.Text, URL: redirect.Href(site, sc.Corrected.Link)},
		Original:       Link{Label: sc.Original.Text, URL: redirect.Href(site, sc.Original.Link)},
	}
}

func pagination(site string, in []models.PageLink) []PageItem {
	var out []PageItem
	for _, pl := range in {
		item := PageItem{Text: pl.Text}
		switch pl.Type {
		case models.PageEllipsis:
			item.Gap = true
			if item.Text == "" {
				item.Text = "…"
			}
		case models.PageCurrent:
			item.Current = true
		default:
			if pl.Href != "" {
				item.URL = redirect.Href(site, pl.Href)
			}
		}
		out = append(out, item)
	}
	return out
}
