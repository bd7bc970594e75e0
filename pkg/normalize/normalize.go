// Package normalize provides the string cleanup primitives used when moving
// descriptions between BigQuery, Data Catalog, and the interchange workbook.
// All functions are pure and safe to call with empty input.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Clean trims leading and trailing whitespace and collapses every internal
// whitespace run (spaces, tabs, newlines) to a single space.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return s
	}
	return whitespaceRun.ReplaceAllString(s, " ")
}

// CleanSentence applies Clean and then shapes the result into a sentence:
// the first character is upper-cased and a trailing period is appended
// unless the string already ends with '.' or ']'.
//
// CleanSentence is idempotent on its own output.
func CleanSentence(s string) string {
	s = Clean(s)
	if len(s) == 0 {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	s = string(unicode.ToUpper(r)) + s[size:]
	if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "]") {
		s += "."
	}
	return s
}

// Truncate returns s unchanged when it is shorter than n bytes, otherwise
// the first n bytes. The cut is hard, not word-aware: a result of exactly
// n bytes is the signal downstream merge logic uses to detect that a
// description was likely cut off by a store-side length cap.
func Truncate(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
