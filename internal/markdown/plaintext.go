package markdown

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var spaceRunRe = regexp.MustCompile(`[ \t]+\n`)

// PlainText flattens HTML produced by ToHTML into readable text: block
// elements end with newlines, list items get a bullet, links keep their URL.
func PlainText(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	var href string

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF, or malformed input: keep what was collected.
			return tidy(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch string(name) {
			case "li":
				b.WriteString("\n• ")
			case "hr":
				b.WriteString("\n---\n")
			case "br":
				b.WriteString("\n")
			case "a":
				href = ""
				for hasAttr {
					var key, val []byte
					key, val, hasAttr = z.TagAttr()
					if string(key) == "href" {
						href = string(val)
					}
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "p", "h2", "h3", "ul":
				b.WriteString("\n\n")
			case "a":
				if href != "" {
					b.WriteString(" (" + href + ")")
				}
				href = ""
			}
		}
	}
}

func tidy(s string) string {
	s = spaceRunRe.ReplaceAllString(s, "\n")
	s = blankRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
