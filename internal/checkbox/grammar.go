// Package checkbox recognizes markdown checkbox lines, extracts their fields
// and writes them back after a status change.
package checkbox

import (
	"regexp"
	"strings"
)

var (
	// indentation, list marker, status symbol, rest of line
	lineRegex      = regexp.MustCompile(`^([\s\t>]*)([-*+]|[0-9]+\.) +\[(.)\] *(.*)`)
	blockLinkRegex = regexp.MustCompile(` \^[a-zA-Z0-9-]+$`)

	// A tag must start the text or follow whitespace so URL fragments are skipped.
	hashTagRegex         = regexp.MustCompile(`(^|\s)#[^\s!@#$%^&*(),.?":{}|<>]+`)
	trailingHashTagRegex = regexp.MustCompile(`(^|\s)#[^\s!@#$%^&*(),.?":{}|<>]+$`)
)

// LineComponents are the structural parts of a checkbox line. Body excludes
// the block link, which is kept without its leading space.
type LineComponents struct {
	Indentation string
	ListMarker  string
	Symbol      string
	Body        string
	BlockLink   string
}

// ParseLine splits a checkbox line into its components. It reports false for
// lines that are not checkboxes.
func ParseLine(line string) (LineComponents, bool) {
	m := lineRegex.FindStringSubmatch(line)
	if m == nil {
		return LineComponents{}, false
	}

	c := LineComponents{
		Indentation: m[1],
		ListMarker:  m[2],
		Symbol:      m[3],
		Body:        strings.TrimSpace(m[4]),
	}
	if loc := blockLinkRegex.FindStringIndex(c.Body); loc != nil {
		c.BlockLink = strings.TrimSpace(c.Body[loc[0]:loc[1]])
		c.Body = strings.TrimSpace(c.Body[:loc[0]])
	}
	return c, true
}

// ExtractHashtags returns every tag in text in order of appearance.
func ExtractHashtags(text string) []string {
	matches := hashTagRegex.FindAllString(text, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, strings.TrimSpace(m))
	}
	return tags
}
