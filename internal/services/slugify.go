package services

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonSlugChars  = regexp.MustCompile(`[^A-Za-z0-9_-]`)
)

// Slugify lowercases s, joins words with '-' and drops anything that is not
// a letter, digit, underscore or dash.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = whitespaceRun.ReplaceAllString(s, "-")
	return nonSlugChars.ReplaceAllString(s, "")
}
