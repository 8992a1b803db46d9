package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Document is one hit in results.document[] or results.spotlight[]. Field names are site
// specific; queryContext.defaultFields says which ones hold the title, url and so on.
type Document struct {
	Fields   map[string]FieldValue `json:"fields"`
	Metadata []string              `json:"metadata,omitempty"`
}

// Field returns the text of the named field, or "" when the name is empty or absent.
func (d Document) Field(name string) string {
	if name == "" || d.Fields == nil {
		return ""
	}
	return d.Fields[name].String()
}

// FieldValue is a document field. The API sends either a plain string, an object
// {"value": "..."} or an array of those; the shape is resolved here once so callers only see
// text. Array items are joined with ", ".
type FieldValue struct {
	Values []string
}

// String returns the field text.
func (f FieldValue) String() string {
	return strings.Join(f.Values, ", ")
}

// Text builds a single-valued field.
func Text(s string) FieldValue {
	return FieldValue{Values: []string{s}}
}

type wrappedValue struct {
	Value json.RawMessage `json:"value"`
}

// UnmarshalJSON accepts string, {"value": string}, arrays of either, numbers and booleans.
// Anything else decodes to an empty value rather than failing the whole response.
func (f *FieldValue) UnmarshalJSON(data []byte) error {
	f.Values = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil
		}
		for _, item := range items {
			if s, ok := scalar(item); ok {
				f.Values = append(f.Values, s)
			}
		}
	default:
		if s, ok := scalar(data); ok {
			f.Values = []string{s}
		}
	}
	return nil
}

// MarshalJSON writes a single value as a string and several as an array.
func (f FieldValue) MarshalJSON() ([]byte, error) {
	switch len(f.Values) {
	case 0:
		return []byte(`""`), nil
	case 1:
		return json.Marshal(f.Values[0])
	default:
		return json.Marshal(f.Values)
	}
}

func scalar(data []byte) (string, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "", false
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", false
		}
		return s, true
	case '{':
		var w wrappedValue
		if err := json.Unmarshal(data, &w); err != nil || w.Value == nil {
			return "", false
		}
		return scalar(w.Value)
	case 'n':
		return "", false
	default:
		// numbers and booleans keep their literal spelling
		return string(data), true
	}
}
