package query

import (
	"net/url"
	"strings"
)

// Param is one key/value pair of a query string.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered query parameter list. Unlike url.Values it keeps the order of keys and
// every duplicate, which repeated filter tokens rely on.
type Params []Param

// Add returns p with the pair appended.
func (p Params) Add(key, value string) Params {
	return append(p, Param{Key: key, Value: value})
}

// Get returns the first value for key.
func (p Params) Get(key string) string {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value
		}
	}
	return ""
}

// All returns every value for key in order.
func (p Params) All(key string) []string {
	var out []string
	for _, kv := range p {
		if kv.Key == key {
			out = append(out, kv.Value)
		}
	}
	return out
}

// Keys returns the distinct keys in first-seen order.
func (p Params) Keys() []string {
	seen := make(map[string]struct{}, len(p))
	var keys []string
	for _, kv := range p {
		if _, ok := seen[kv.Key]; ok {
			continue
		}
		seen[kv.Key] = struct{}{}
		keys = append(keys, kv.Key)
	}
	return keys
}

// Values converts to url.Values. Values of one key keep their relative order.
func (p Params) Values() url.Values {
	v := make(url.Values, len(p))
	for _, kv := range p {
		v[kv.Key] = append(v[kv.Key], kv.Value)
	}
	return v
}

// Encode serializes the list in order with form encoding and the "[]" fix applied.
func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escape(kv.Key))
		b.WriteByte('=')
		b.WriteString(escape(kv.Value))
	}
	return FixArrayKeys(b.String())
}

// ParseParams parses a raw query string, with or without a leading '?'. Empty segments are
// skipped; a segment without '=' is a key with an empty value. Segments that fail to unescape
// are kept verbatim.
func ParseParams(raw string) Params {
	raw = strings.TrimPrefix(raw, "?")
	var p Params
	for _, seg := range strings.Split(raw, "&") {
		if seg == "" {
			continue
		}
		key, value, _ := strings.Cut(seg, "=")
		p = p.Add(unescape(key), unescape(value))
	}
	return p
}

func unescape(s string) string {
	u, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return u
}
