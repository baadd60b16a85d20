package markup

import (
	"html"
	"strings"

	nethtml "golang.org/x/net/html"
)

func (r renderer) inlineChildren(node *nethtml.Node) string {
	parts := make([]string, 0, 4)
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		parts = append(parts, r.inlineNode(child))
	}
	return strings.Join(parts, " ")
}

func (r renderer) inlineNode(node *nethtml.Node) string {
	if node == nil {
		return ""
	}
	switch node.Type {
	case nethtml.TextNode:
		return node.Data
	case nethtml.ElementNode:
	default:
		return ""
	}
	switch strings.ToLower(node.Data) {
	case "script", "style", "noscript", "img":
		return ""
	case "br":
		return "\n"
	case "a":
		text := normalizeInline(r.inlineChildren(node))
		href := attr(node, "href")
		switch {
		case href == "":
			return text
		case text == "" || strings.EqualFold(text, href):
			return linkStyle.Render(href)
		default:
			return text + " " + linkStyle.Render("("+href+")")
		}
	case "code", "kbd", "samp":
		text := normalizeInline(r.inlineChildren(node))
		if text == "" {
			return ""
		}
		return codeStyle.Render("`" + text + "`")
	case "b", "strong":
		return wrapStyled(normalizeInline(r.inlineChildren(node)), strongStyle.Render)
	case "i", "em":
		return wrapStyled(normalizeInline(r.inlineChildren(node)), emphasisStyle.Render)
	case "span":
		// @mentions arrive as <span class="mention">.
		text := normalizeInline(r.inlineChildren(node))
		if strings.Contains(attr(node, "class"), "mention") {
			return wrapStyled(text, mentionStyle.Render)
		}
		return text
	default:
		return r.inlineChildren(node)
	}
}

// wrapStyled styles each word separately so that wrapping never splits an
// escape sequence.
func wrapStyled(text string, render func(...string) string) string {
	if text == "" {
		return ""
	}
	words := strings.Fields(text)
	for i, w := range words {
		words[i] = render(w)
	}
	return strings.Join(words, " ")
}

func normalizeInline(s string) string {
	s = html.UnescapeString(s)
	parts := strings.Split(s, "\n")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Join(strings.Fields(part), " ")
		if part != "" {
			out = append(out, part)
		}
	}
	return punctuation.Replace(strings.Join(out, "\n"))
}

var punctuation = strings.NewReplacer(
	" .", ".",
	" ,", ",",
	" ;", ";",
	" :", ":",
	" !", "!",
	" ?", "?",
	" )", ")",
	"( ", "(",
)
