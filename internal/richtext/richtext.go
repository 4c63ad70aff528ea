// Package richtext builds and inspects the pre-rendered HTML blocks stored in resume entries.
package richtext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FromSummaryAndHighlights merges a plain summary and a highlight list into one
// rich-text block: the summary becomes a paragraph and the highlights a bullet
// list, in that order. Blank highlights are skipped. A summary that is already
// rich text is inserted unchanged.
func FromSummaryAndHighlights(summary string, highlights []string) string {
	var sb strings.Builder

	summary = strings.TrimSpace(summary)
	if summary != "" {
		if IsRichText(summary) {
			sb.WriteString(summary)
		} else {
			sb.WriteString("<p>")
			sb.WriteString(EscapeHTML(summary))
			sb.WriteString("</p>")
		}
	}

	items := make([]string, 0, len(highlights))
	for _, h := range highlights {
		if h = strings.TrimSpace(h); h != "" {
			items = append(items, h)
		}
	}
	if len(items) > 0 {
		sb.WriteString("<ul>")
		for _, item := range items {
			sb.WriteString("<li>")
			sb.WriteString(EscapeHTML(item))
			sb.WriteString("</li>")
		}
		sb.WriteString("</ul>")
	}

	return sb.String()
}

// IsRichText reports whether s is an HTML fragment rather than plain text.
func IsRichText(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "<") {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return false
	}
	return doc.Find("body *").Length() > 0
}

// PlainText returns the visible text of a rich-text block with whitespace collapsed.
// Paragraphs and list items are separated by newlines.
func PlainText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	if !IsRichText(html) {
		return cleanWhitespace(html)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return cleanWhitespace(html)
	}

	var lines []string
	doc.Find("p, li, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		if text := cleanWhitespace(s.Text()); text != "" {
			lines = append(lines, text)
		}
	})
	if len(lines) == 0 {
		return cleanWhitespace(doc.Find("body").Text())
	}
	return strings.Join(lines, "\n")
}

// CountAtomicBlocks returns how many elements in an HTML preview are marked
// with the data-atomic attribute inside the given container selector.
func CountAtomicBlocks(html, container string) (int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, err
	}
	return doc.Find(container).First().Find("[data-atomic]").Length(), nil
}

func cleanWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
