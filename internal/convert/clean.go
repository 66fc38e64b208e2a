// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"regexp"
	"strings"
)

// referencePatterns match common bibliography section headers. Everything
// from the first match onward is dropped: reference lists add bulk but no
// analyzable content.
var referencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\n#+\s*References?\s*\n`),
	regexp.MustCompile(`(?i)\n#+\s*Bibliography\s*\n`),
	regexp.MustCompile(`\n#+\s*参考文献\s*\n`),
	regexp.MustCompile(`\nREFERENCES?\s*\n`),
}

// CleanText strips the references/bibliography tail from converted paper
// text and trims surrounding whitespace.
func CleanText(text string) string {
	for _, pattern := range referencePatterns {
		if loc := pattern.FindStringIndex(text); loc != nil {
			text = text[:loc[0]]
			break
		}
	}
	return strings.TrimSpace(text)
}
