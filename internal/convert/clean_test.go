// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"strings"
	"testing"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "markdown references heading",
			text: "Body text.\n\n## References\n\n[1] Someone. A paper. 2020.",
			want: "Body text.",
		},
		{
			name: "case insensitive",
			text: "Body.\n\n## REFERENCES\n\n[1] X.",
			want: "Body.",
		},
		{
			name: "singular reference",
			text: "Body.\n\n# Reference\n\n[1] X.",
			want: "Body.",
		},
		{
			name: "bibliography heading",
			text: "Body.\n\n### Bibliography\n\nEntries.",
			want: "Body.",
		},
		{
			name: "japanese references heading",
			text: "本文です。\n\n## 参考文献\n\n[1] 著者名.",
			want: "本文です。",
		},
		{
			name: "bare uppercase references line",
			text: "Body text here.\n\nREFERENCES\n\n[1] Someone.",
			want: "Body text here.",
		},
		{
			name: "no references section",
			text: "  Just the body.  ",
			want: "Just the body.",
		},
		{
			name: "references mentioned inline are kept",
			text: "We list our references in the appendix.",
			want: "We list our references in the appendix.",
		},
		{
			name: "only first match truncates",
			text: "Body.\n\n## References\n\n[1] X.\n\n## Bibliography\n\nMore.",
			want: "Body.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.text); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestCleanTextLongDocument(t *testing.T) {
	body := strings.Repeat("A paragraph of real content.\n", 200)
	text := body + "\n## References\n\n" + strings.Repeat("[9] Entry.\n", 50)

	got := CleanText(text)
	if strings.Contains(got, "[9] Entry.") {
		t.Error("reference entries should be stripped")
	}
	if !strings.HasPrefix(got, "A paragraph of real content.") {
		t.Error("body should be preserved")
	}
}
