package reconcile

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/karlo0/bqdc/pkg/metadata"
)

// The canonical store only exposes one freeform description string per
// table, so auxiliary table-level attributes are embedded in it as a
// formatted text block that survives a round trip even for consumers that
// only read the description. The grammar is:
//
//	<description>\n
//	\n
//	Table attributes:\n
//	\n
//	<label>:<tabs><value>\n
//	...
//
// with one line per non-empty attribute. Labels are derived from the
// attribute key: the fixed template prefix (the first 6 bytes, e.g.
// "table_") is dropped, the next 3 bytes are upper-cased to "GCP" when they
// read "gcp" and title-cased otherwise, and underscores in the remainder
// become spaces. Tab padding is computed from the longest template key so
// the values align at a common tab stop.
//
// RenderTableAttributes encodes the block; StripTableAttributes and
// ParseTableAttributes decode it.

const (
	attrBlockMarker = "Table attributes:"
	attrKeyPrefix   = 6
	attrCasedRunEnd = 9
	attrTabStop     = 5
)

var (
	pureDescription = regexp.MustCompile(`(?s)^(.*?)\s*Table attributes`)
	underscoreRun   = regexp.MustCompile(`_+`)
	titleCaser      = cases.Title(language.English)
)

// RenderTableAttributes appends the attribute block for every non-empty
// template attribute other than the primary description key. When no such
// attribute has a value, description is returned unchanged.
func RenderTableAttributes(description string, attrs map[string]string, tpl *metadata.Template) string {
	maxKey := 0
	for _, key := range tpl.Keys {
		if len(key) > maxKey {
			maxKey = len(key)
		}
	}
	maxTabs := (maxKey + 1) / attrTabStop

	var block strings.Builder
	for _, key := range tpl.Keys {
		if key == metadata.TableDescriptionKey {
			continue
		}
		value := attrs[key]
		if value == "" {
			continue
		}
		tabs := maxTabs - (len(key)+1)/attrTabStop + 1
		block.WriteString(attrLabel(key))
		block.WriteString(":")
		block.WriteString(strings.Repeat("\t", tabs))
		block.WriteString(value)
		block.WriteString("\n")
	}

	if block.Len() == 0 {
		return description
	}
	return description + "\n\n" + attrBlockMarker + "\n\n" + block.String()
}

// StripTableAttributes returns the pure description: everything before a
// previously rendered attribute block, with the separating whitespace
// removed. Descriptions without a block pass through unchanged.
func StripTableAttributes(description string) string {
	if m := pureDescription.FindStringSubmatch(description); m != nil {
		return m[1]
	}
	return description
}

// ParseTableAttributes decodes a canonical description into its pure
// description and the rendered attribute lines, keyed by label. The label
// derivation is lossy (the template prefix is gone), so the result is keyed
// by display label rather than template key; it exists to make round trips
// verifiable.
func ParseTableAttributes(description string) (string, map[string]string) {
	pure := StripTableAttributes(description)
	attrs := make(map[string]string)

	idx := strings.Index(description, attrBlockMarker)
	if idx < 0 {
		return pure, attrs
	}
	for _, line := range strings.Split(description[idx+len(attrBlockMarker):], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		attrs[label] = strings.TrimSpace(value)
	}
	return pure, attrs
}

// attrLabel derives the display label for an attribute key.
func attrLabel(key string) string {
	if len(key) <= attrKeyPrefix {
		return titleCaser.String(underscoreRun.ReplaceAllString(key, " "))
	}

	rest := key[attrKeyPrefix:]
	run := rest
	tail := ""
	if len(rest) > attrCasedRunEnd-attrKeyPrefix {
		run = rest[:attrCasedRunEnd-attrKeyPrefix]
		tail = rest[attrCasedRunEnd-attrKeyPrefix:]
	}

	if run == "gcp" {
		run = "GCP"
	} else {
		run = titleCaser.String(run)
	}
	return run + underscoreRun.ReplaceAllString(tail, " ")
}
