package markup

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	nethtml "golang.org/x/net/html"
)

var reANSICodes = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// ContentLines renders a comment's HTML content into terminal lines no wider
// than width. Plain text input is wrapped as is.
func ContentLines(raw string, width int) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	width = max(1, width)
	body, ok := parseFragment(raw)
	if !ok {
		return wrapText(strings.TrimSpace(html.UnescapeString(raw)), width)
	}
	r := renderer{width: width}
	lines := trimBlankLines(r.blocks(significantChildren(body), 0))
	if len(lines) == 0 {
		return wrapText(strings.TrimSpace(html.UnescapeString(raw)), width)
	}
	return lines
}

// PlainText is the unstyled text of a comment, used for clipboard copies.
func PlainText(raw string) string {
	return StripANSI(strings.Join(ContentLines(raw, 80), "\n"))
}

func StripANSI(s string) string {
	return reANSICodes.ReplaceAllString(s, "")
}

func VisibleLen(s string) int {
	return utf8.RuneCountInString(StripANSI(s))
}

func parseFragment(raw string) (*nethtml.Node, bool) {
	doc, err := nethtml.Parse(strings.NewReader("<html><body>" + raw + "</body></html>"))
	if err != nil {
		return nil, false
	}
	body := findElement(doc, "body")
	return body, body != nil
}

func findElement(node *nethtml.Node, tag string) *nethtml.Node {
	if node == nil {
		return nil
	}
	if node.Type == nethtml.ElementNode && strings.EqualFold(node.Data, tag) {
		return node
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, tag); found != nil {
			return found
		}
	}
	return nil
}

func significantChildren(node *nethtml.Node) []*nethtml.Node {
	out := make([]*nethtml.Node, 0, 4)
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == nethtml.TextNode && strings.TrimSpace(child.Data) == "" {
			continue
		}
		out = append(out, child)
	}
	return out
}

func attr(node *nethtml.Node, name string) string {
	for _, a := range node.Attr {
		if strings.EqualFold(a.Key, name) {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func rawText(node *nethtml.Node) string {
	if node == nil {
		return ""
	}
	if node.Type == nethtml.TextNode {
		return node.Data
	}
	var b strings.Builder
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(rawText(child))
	}
	return b.String()
}

// trimBlankLines drops leading and trailing blanks and collapses runs of
// blank lines into one.
func trimBlankLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		blank := strings.TrimSpace(line) == ""
		if blank && (len(out) == 0 || out[len(out)-1] == "") {
			continue
		}
		if blank {
			line = ""
		}
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// wrapText breaks text on word boundaries. Words longer than width are split.
func wrapText(text string, width int) []string {
	if width < 1 {
		return []string{text}
	}
	var out []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := ""
		for _, word := range words {
			for !strings.ContainsRune(word, '\x1b') && utf8.RuneCountInString(word) > width {
				if line != "" {
					out = append(out, line)
					line = ""
				}
				runes := []rune(word)
				out = append(out, string(runes[:width]))
				word = string(runes[width:])
			}
			switch {
			case word == "":
			case line == "":
				line = word
			case VisibleLen(line)+1+VisibleLen(word) <= width:
				line += " " + word
			default:
				out = append(out, line)
				line = word
			}
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func wrapPrefixed(text string, width int, first, rest string) []string {
	text = normalizeInline(text)
	if text == "" {
		return nil
	}
	wrapped := wrapText(text, max(1, width-VisibleLen(first)))
	out := make([]string, 0, len(wrapped))
	for i, line := range wrapped {
		if i == 0 {
			out = append(out, first+line)
			continue
		}
		out = append(out, rest+line)
	}
	return out
}
