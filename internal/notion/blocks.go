// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notion

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// maxRichTextLen is the Notion API limit on one rich-text content string.
const maxRichTextLen = 2000

// Block is one Notion block payload.
type Block map[string]any

// summaryBlocks renders a Markdown summary as Notion blocks: a divider, a
// heading, then the converted content.
func summaryBlocks(summary string) []Block {
	blocks := []Block{
		{"object": "block", "type": "divider", "divider": map[string]any{}},
		textBlock("heading_2", "AI Generated Summary"),
	}
	return append(blocks, MarkdownBlocks(summary)...)
}

// MarkdownBlocks converts Markdown into Notion blocks by walking the
// goldmark AST. Headings, lists, fenced code, and thematic breaks map to
// their Notion equivalents; everything else becomes paragraphs.
func MarkdownBlocks(markdown string) []Block {
	source := []byte(markdown)
	root := goldmark.New().Parser().Parse(text.NewReader(source))

	var blocks []Block
	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		blocks = append(blocks, convertNode(node, source)...)
	}
	return blocks
}

func convertNode(node ast.Node, source []byte) []Block {
	switch n := node.(type) {
	case *ast.Heading:
		level := n.Level
		if level > 3 {
			level = 3
		}
		return splitBlocks(fmt.Sprintf("heading_%d", level), string(n.Text(source)))

	case *ast.List:
		blockType := "bulleted_list_item"
		if n.IsOrdered() {
			blockType = "numbered_list_item"
		}
		var blocks []Block
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			blocks = append(blocks, splitBlocks(blockType, string(item.Text(source)))...)
		}
		return blocks

	case *ast.FencedCodeBlock:
		language := string(n.Language(source))
		if language == "" {
			language = "plain text"
		}
		var blocks []Block
		for _, chunk := range chunkString(codeContent(n, source), maxRichTextLen) {
			blocks = append(blocks, Block{
				"object": "block",
				"type":   "code",
				"code": map[string]any{
					"rich_text": richText(chunk),
					"language":  language,
				},
			})
		}
		return blocks

	case *ast.ThematicBreak:
		return []Block{{"object": "block", "type": "divider", "divider": map[string]any{}}}

	default:
		content := string(node.Text(source))
		if content == "" {
			return nil
		}
		return splitBlocks("paragraph", content)
	}
}

func codeContent(n *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		buf.Write(segment.Value(source))
	}
	return buf.String()
}

// splitBlocks builds one or more blocks of blockType, splitting content
// that exceeds the rich-text length limit.
func splitBlocks(blockType, content string) []Block {
	var blocks []Block
	for _, chunk := range chunkString(content, maxRichTextLen) {
		blocks = append(blocks, textBlock(blockType, chunk))
	}
	return blocks
}

func textBlock(blockType, content string) Block {
	return Block{
		"object":  "block",
		"type":    blockType,
		blockType: map[string]any{"rich_text": richText(content)},
	}
}

func richText(content string) []map[string]any {
	return []map[string]any{
		{"type": "text", "text": map[string]any{"content": content}},
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

func chunkString(s string, size int) []string {
	if s == "" {
		return nil
	}
	var chunks []string
	for len(s) > size {
		chunks = append(chunks, s[:size])
		s = s[size:]
	}
	return append(chunks, s)
}
