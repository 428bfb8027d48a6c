// Package markdown renders the small markdown dialect produced by the text
// generation prompts into HTML, and flattens that HTML back to text for
// terminal and MCP output.
package markdown

import (
	"html"
	"regexp"
	"strings"
)

// Empty is returned by ToHTML for blank input.
const Empty = "No content available."

var (
	h3Re     = regexp.MustCompile(`(?m)^###[ \t]+(.*)$`)
	h2Re     = regexp.MustCompile(`(?m)^##[ \t]+(.*)$`)
	linkRe   = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
	boldRe   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	bulletRe = regexp.MustCompile(`(?m)^[ \t]*(?:•|-|\*)[ \t]+(.*)$`)
	listRe   = regexp.MustCompile(`<li>.*</li>(?:\n<li>.*</li>)*`)
	hrRe     = regexp.MustCompile(`(?m)^[ \t]*---[ \t]*$`)
	blankRe  = regexp.MustCompile(`\n{3,}`)
)

// ToHTML converts generated text to HTML. Input text is escaped first, so
// only the markup produced here reaches the output.
//
// Supported: "## " and "### " headers, [label](url) links, **bold**,
// bullet lines ("• ", "- ", "* ") grouped into one <ul> per run, "---"
// rules, and blank-line separated paragraphs.
func ToHTML(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return Empty
	}

	out := html.EscapeString(text)

	// Rules first so "---" is not read as a bullet.
	out = hrRe.ReplaceAllString(out, `<hr />`)
	out = h3Re.ReplaceAllString(out, `<h3>$1</h3>`)
	out = h2Re.ReplaceAllString(out, `<h2>$1</h2>`)
	out = linkRe.ReplaceAllStringFunc(out, renderLink)
	out = boldRe.ReplaceAllString(out, `<strong>$1</strong>`)
	out = bulletRe.ReplaceAllString(out, `<li>$1</li>`)
	out = listRe.ReplaceAllStringFunc(out, func(run string) string {
		return "<ul>" + strings.ReplaceAll(run, "\n", "") + "</ul>"
	})

	blocks := strings.Split(out, "\n\n")
	for i, b := range blocks {
		if trimmed := strings.TrimSpace(b); trimmed == "" || startsWithBlock(trimmed) {
			continue
		}
		blocks[i] = "<p>" + b + "</p>"
	}
	out = strings.Join(blocks, "")

	return strings.TrimSpace(blankRe.ReplaceAllString(out, "\n\n"))
}

var blockTags = []string{"<h2>", "<h3>", "<ul>", "<hr />"}

func startsWithBlock(s string) bool {
	for _, tag := range blockTags {
		if strings.HasPrefix(s, tag) {
			return true
		}
	}
	return false
}

func renderLink(m string) string {
	parts := linkRe.FindStringSubmatch(m)
	label, href := parts[1], parts[2]
	// href is already escaped; check the scheme on the raw form.
	raw := strings.ToLower(html.UnescapeString(href))
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") && !strings.HasPrefix(raw, "mailto:") {
		return label
	}
	return `<a href="` + href + `" target="_blank" rel="noopener noreferrer">` + label + `</a>`
}
