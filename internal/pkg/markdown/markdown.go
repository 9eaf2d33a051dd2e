// Package markdown derives plain-text excerpts from Markdown post content.
package markdown

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// ExcerptLength is the maximum excerpt size in runes.
const ExcerptLength = 280

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
	)
	strip = bluemonday.StrictPolicy()
)

// Excerpt renders content as Markdown, strips all markup, collapses
// whitespace, and truncates to ExcerptLength runes.
func Excerpt(content string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		// Fall back to the raw text when the source does not parse.
		return truncate(collapseWhitespace(content))
	}
	text := strip.Sanitize(buf.String())
	return truncate(collapseWhitespace(text))
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= ExcerptLength {
		return s
	}
	return strings.TrimSpace(string(runes[:ExcerptLength-1])) + "…"
}
