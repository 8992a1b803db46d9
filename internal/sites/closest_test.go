package sites

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "docs", 4},
		{"docs", "", 4},
		{"docs", "docs", 0},
		{"docs", "dosc", 1},
		{"docs", "doc", 1},
		{"docs", "dogs", 1},
		{"kitten", "sitting", 3},
		{"hilfe", "hilfé", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, editDistance(tt.a, tt.b), "%q -> %q", tt.a, tt.b)
	}
}

func TestRegistry_Closest(t *testing.T) {
	r := NewRegistry([]Site{{Name: "docs"}, {Name: "hr"}, {Name: "support"}})

	s, ok := r.Closest("dosc")
	assert.True(t, ok)
	assert.Equal(t, "docs", s.Name)

	s, ok = r.Closest("suport")
	assert.True(t, ok)
	assert.Equal(t, "support", s.Name)

	_, ok = r.Closest("marketing")
	assert.False(t, ok)

	_, ok = NewRegistry(nil).Closest("docs")
	assert.False(t, ok)
}
