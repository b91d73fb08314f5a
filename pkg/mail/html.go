package mail

import (
	"strings"

	"golang.org/x/net/html"
)

// HTMLToText strips tags, drops script and style content, unescapes entities
// and collapses whitespace. Block-level tags separate words; inline tags do not.
func HTMLToText(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))

	var sb strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.StartTagToken:
			name, _ := z.TagName()
			if isHiddenTag(name) {
				skip++
			}
			if isBlockTag(name) {
				sb.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if isHiddenTag(name) && skip > 0 {
				skip--
			}
			if isBlockTag(name) {
				sb.WriteByte(' ')
			}
		case html.SelfClosingTagToken:
			if name, _ := z.TagName(); isBlockTag(name) {
				sb.WriteByte(' ')
			}
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
			}
		}
	}
}

func isHiddenTag(name []byte) bool {
	switch string(name) {
	case "script", "style", "head", "title":
		return true
	}
	return false
}

func isBlockTag(name []byte) bool {
	switch string(name) {
	case "p", "div", "br", "hr", "li", "ul", "ol", "tr", "td", "th", "table",
		"h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre", "section",
		"article", "header", "footer", "body", "html", "head", "title", "script", "style":
		return true
	}
	return false
}
