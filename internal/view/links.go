package view

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// IsInternalLink reports whether href navigates inside the front-end: it starts with "/" but
// not with "//". Everything else opens as an external link.
func IsInternalLink(href string) bool {
	return strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "//")
}

// BadgeColor derives a stable #rrggbb colour from label, so a label renders with the same
// colour on every page and in every session. The hash runs over UTF-16 code units with
// 32-bit wrap-around.
func BadgeColor(label string) string {
	var hash int32
	for _, u := range utf16.Encode([]rune(label)) {
		hash = int32(u) + ((hash << 5) - hash)
	}
	var b strings.Builder
	b.WriteByte('#')
	for i := 0; i < 3; i++ {
		fmt.Fprintf(&b, "%02x", (hash>>(uint(i)*8))&0xff)
	}
	return b.String()
}
