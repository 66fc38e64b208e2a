// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt renders the prompts for the two-stage analysis pipeline.
// All builders are pure string construction with no failure mode;
// missing metadata degrades to a placeholder.
package prompt

import (
	"bytes"
	"strings"
	"text/template"
)

// Placeholders substituted for missing document metadata.
const (
	UntitledPlaceholder = "Untitled"
	UnknownAuthors      = "Unknown"
)

// extractionTmpl is the Stage-1 prompt. It instructs the fast tier to act
// as a high-resolution extractor whose output the advanced tier can
// reason over as if it had read the original text.
var extractionTmpl = template.Must(template.New("extraction").Parse(`You are a high-resolution information extractor preparing context for a more capable reasoning model.

Paper title: {{.Title}}

From the paper text below, extract the following elements in a structured form, omitting no information:

1. **Core objective and novelty**: the problem the paper solves, how the approach differs from prior work, and the claimed contributions.
2. **Technical details of the proposed method**: equation definitions with the meaning of every variable, algorithm steps at pseudocode level, all architecture components, and hyperparameter settings.
3. **Experimental setup**: dataset names and properties, preprocessing and augmentation, metric definitions, baseline models, and the hardware/software environment.
4. **Concrete numeric results**: every reported metric value including means and deviations, comparisons against the state of the art, ablation results, and significance tests.
5. **Discussion and limitations**: interpretation of results, failure cases, and directions for future work.

Important: do NOT summarize or shorten. Describe facts in enough detail that the reasoning model can work as if it had read the original. Transcribe equations and table contents as accurately as possible, and prefer concrete numbers and definitions over vague phrasing.

---

{{.Text}}

---

Extract the high-resolution information from the paper above, following the instructions.
`))

// summaryTmpl is the Stage-2 summary prompt, consuming the Stage-1
// extraction rather than raw paper text.
var summaryTmpl = template.Must(template.New("summary").Parse(`You are an expert research analyst.

Below is detailed information extracted from a research paper. Produce a structured summary from it.

## Summary structure

1. **Background and motivation**: what problem does this paper solve?
2. **Key contributions**: the important innovations or findings.
3. **Method**: the approach in detail, including equations and algorithms.
4. **Experimental results**: the main results with concrete numbers.
5. **Conclusions and future work**: takeaways and next steps.

---

## Paper title
{{.Title}}

## Extracted information

{{.Extraction}}

---

Write the detailed summary in Markdown.
`))

// slidesTmpl is the Stage-2 slide-deck prompt producing Marp Markdown.
var slidesTmpl = template.Must(template.New("slides").Parse(`You are an expert in academic presentation slides.

From the paper information below, create a Marp-format slide deck (5-8 slides).

## Slide structure
1. Title slide (title, authors)
2. Background and problem
3. Proposed method
4. Experimental results
5. Conclusion

## Rules
- Separate slides with ` + "`---`" + `
- Include ` + "`marp: true`" + ` in the header
- Use bullet points, not paragraphs
- Keep text concise
- Include key equations and numbers

---

## Paper title
{{.Title}}

## Authors
{{.Authors}}

## Extracted information

{{.Extraction}}

---

Generate the Marp slides.
`))

// Extraction renders the Stage-1 prompt from the raw paper text.
func Extraction(title, text string) string {
	return render(extractionTmpl, map[string]string{
		"Title": orPlaceholder(title, UntitledPlaceholder),
		"Text":  text,
	})
}

// Summary renders the Stage-2 summary prompt from a Stage-1 extraction.
func Summary(title, extraction string) string {
	return render(summaryTmpl, map[string]string{
		"Title":      orPlaceholder(title, UntitledPlaceholder),
		"Extraction": extraction,
	})
}

// Slides renders the Stage-2 slide-deck prompt from a Stage-1 extraction.
func Slides(title string, authors []string, extraction string) string {
	return render(slidesTmpl, map[string]string{
		"Title":      orPlaceholder(title, UntitledPlaceholder),
		"Authors":    orPlaceholder(strings.Join(authors, ", "), UnknownAuthors),
		"Extraction": extraction,
	})
}

// render executes tmpl with data. The templates only substitute string
// fields, so execution cannot fail; the buffer content is returned as-is.
func render(tmpl *template.Template, data map[string]string) string {
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}
