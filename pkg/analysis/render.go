// Package analysis renders the webhook's raw analysis text into safe HTML
// for the browser client. The webhook answers in a loose markdown dialect:
// headings, bold runs, bullet lists, and plain paragraphs.
package analysis

import (
	"fmt"
	"html"
	"strings"
)

// Renderer converts raw analysis text to HTML.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render escapes the raw text first and only then applies markup, so
// nothing the webhook sends can inject tags into the page.
func (r *Renderer) Render(raw string) string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	var sb strings.Builder
	inList := false

	closeList := func() {
		if inList {
			sb.WriteString("</ul>\n")
			inList = false
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			closeList()
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "### "):
			closeList()
			sb.WriteString(fmt.Sprintf("<h3>%s</h3>\n", r.inline(trimmed[4:])))

		case strings.HasPrefix(trimmed, "## "):
			closeList()
			sb.WriteString(fmt.Sprintf("<h2>%s</h2>\n", r.inline(trimmed[3:])))

		case strings.HasPrefix(trimmed, "# "):
			closeList()
			sb.WriteString(fmt.Sprintf("<h1>%s</h1>\n", r.inline(trimmed[2:])))

		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			if !inList {
				sb.WriteString("<ul>\n")
				inList = true
			}
			sb.WriteString(fmt.Sprintf("<li>%s</li>\n", r.inline(trimmed[2:])))

		default:
			closeList()
			sb.WriteString(fmt.Sprintf("<p>%s</p>\n", r.inline(trimmed)))
		}
	}
	closeList()

	return sb.String()
}

// inline escapes the text and converts **bold** runs. Unpaired markers
// are left as literal text.
func (r *Renderer) inline(text string) string {
	escaped := html.EscapeString(text)

	var sb strings.Builder
	for {
		start := strings.Index(escaped, "**")
		if start < 0 {
			sb.WriteString(escaped)
			break
		}
		end := strings.Index(escaped[start+2:], "**")
		if end < 0 {
			sb.WriteString(escaped)
			break
		}
		sb.WriteString(escaped[:start])
		sb.WriteString("<strong>")
		sb.WriteString(escaped[start+2 : start+2+end])
		sb.WriteString("</strong>")
		escaped = escaped[start+4+end:]
	}
	return sb.String()
}

// RenderContent is a convenience wrapper for one-off rendering.
func RenderContent(raw string) string {
	return NewRenderer().Render(raw)
}
