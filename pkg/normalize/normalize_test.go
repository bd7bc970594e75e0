package normalize_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/karlo0/bqdc/pkg/normalize"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only whitespace", " \t\n ", ""},
		{"trims", "  hello  ", "hello"},
		{"collapses spaces", "a   b", "a b"},
		{"collapses mixed runs", "a \t\n b\tc", "a b c"},
		{"already clean", "a b c", "a b c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize.Clean(tt.in))
		})
	}
}

func TestCleanSentence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"adds period and capitalizes", "  hello world  ", "Hello world."},
		{"keeps existing period", "already ends.", "Already ends."},
		{"no period after closing bracket", "see [link]", "See [link]"},
		{"bracket terminator kept bare", "tagged [x]", "Tagged [x]"},
		{"single char", "x", "X."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize.CleanSentence(tt.in))
		})
	}
}

func TestCleanSentenceIdempotent(t *testing.T) {
	for _, s := range []string{"", "hello", "Hello world.", "a  b\tc", "ends with ]"} {
		once := normalize.CleanSentence(s)
		assert.Equal(t, once, normalize.CleanSentence(once), "input %q", s)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "", normalize.Truncate("", 10))
	assert.Equal(t, "abc", normalize.Truncate("abc", 10))
	assert.Equal(t, "abc", normalize.Truncate("abcdef", 3))
	// A string of exactly n bytes stays n bytes: the boundary signal.
	assert.Equal(t, "abc", normalize.Truncate("abc", 3))
	assert.Len(t, normalize.Truncate(strings.Repeat("x", 2000), 1024), 1024)
}

func TestTruncateIdempotent(t *testing.T) {
	for _, s := range []string{"", "short", strings.Repeat("y", 100)} {
		once := normalize.Truncate(s, 16)
		assert.Equal(t, once, normalize.Truncate(once, 16), "input %q", s)
	}
}
