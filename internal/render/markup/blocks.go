package markup

import (
	"fmt"
	"strings"

	nethtml "golang.org/x/net/html"
)

type renderer struct {
	width int
}

func (r renderer) blocks(nodes []*nethtml.Node, depth int) []string {
	var lines []string
	var inline []string
	separate := func() {
		if len(lines) > 0 && lines[len(lines)-1] != "" {
			lines = append(lines, "")
		}
	}
	flush := func() {
		text := normalizeInline(strings.Join(inline, " "))
		inline = inline[:0]
		if text == "" {
			return
		}
		separate()
		lines = append(lines, wrapText(text, r.width)...)
	}

	for _, node := range nodes {
		switch {
		case node.Type == nethtml.TextNode:
			inline = append(inline, node.Data)
		case node.Type == nethtml.ElementNode && isBlock(node.Data):
			flush()
			block := r.block(node, depth)
			if len(block) == 0 {
				continue
			}
			separate()
			lines = append(lines, block...)
		case node.Type == nethtml.ElementNode:
			inline = append(inline, r.inlineNode(node))
		}
	}
	flush()
	return trimBlankLines(lines)
}

func (r renderer) block(node *nethtml.Node, depth int) []string {
	switch tag := strings.ToLower(node.Data); tag {
	case "script", "style", "noscript":
		return nil
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return styleLines(wrapText(normalizeInline(r.inlineChildren(node)), r.width), headingStyle)
	case "blockquote":
		inner := r.blocks(significantChildren(node), depth)
		if len(inner) == 0 {
			inner = wrapText(normalizeInline(r.inlineChildren(node)), max(1, r.width-2))
		}
		out := make([]string, 0, len(inner))
		for _, line := range inner {
			if strings.TrimSpace(line) == "" {
				out = append(out, "")
				continue
			}
			out = append(out, quotePrefix+quoteStyle.Render(line))
		}
		return trimBlankLines(out)
	case "ul", "ol":
		return r.list(node, tag == "ol", depth+1)
	case "li":
		return r.listItem(node, depth, "- ")
	case "pre":
		text := strings.ReplaceAll(rawText(node), "\r\n", "\n")
		var out []string
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimRight(line, " \t")
			if line == "" {
				out = append(out, "")
				continue
			}
			out = append(out, "    "+codeStyle.Render(line))
		}
		return trimBlankLines(out)
	case "hr":
		return []string{strings.Repeat("-", min(max(r.width, 3), 24))}
	case "img":
		label := attr(node, "alt")
		if label == "" {
			label = attr(node, "src")
		}
		if label == "" {
			return nil
		}
		return styleLines(wrapPrefixed(label, r.width, "[image] ", "        "), imageStyle)
	default:
		if hasBlockChild(node) {
			return r.blocks(significantChildren(node), depth)
		}
		return wrapText(normalizeInline(r.inlineChildren(node)), r.width)
	}
}

func (r renderer) list(node *nethtml.Node, ordered bool, depth int) []string {
	var lines []string
	n := 0
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != nethtml.ElementNode || !strings.EqualFold(child.Data, "li") {
			continue
		}
		n++
		marker := bullet(depth)
		if ordered {
			marker = fmt.Sprintf("%d. ", n)
		}
		lines = append(lines, r.listItem(child, depth, marker)...)
	}
	return lines
}

func (r renderer) listItem(node *nethtml.Node, depth int, marker string) []string {
	indent := strings.Repeat("  ", max(0, depth-1))
	var parts []string
	var nested []*nethtml.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == nethtml.ElementNode && (strings.EqualFold(child.Data, "ul") || strings.EqualFold(child.Data, "ol")) {
			nested = append(nested, child)
			continue
		}
		parts = append(parts, r.inlineNode(child))
	}
	lines := wrapPrefixed(strings.Join(parts, " "), r.width, indent+marker, indent+strings.Repeat(" ", VisibleLen(marker)))
	for _, child := range nested {
		lines = append(lines, r.list(child, strings.EqualFold(child.Data, "ol"), depth+1)...)
	}
	return lines
}

func bullet(depth int) string {
	switch depth {
	case 1:
		return "• "
	case 2:
		return "◦ "
	default:
		return "▪ "
	}
}

func isBlock(tag string) bool {
	switch strings.ToLower(tag) {
	case "h1", "h2", "h3", "h4", "h5", "h6",
		"p", "div", "section", "article", "header", "footer",
		"blockquote", "ul", "ol", "li", "pre", "hr", "img", "table", "tr":
		return true
	default:
		return false
	}
}

func hasBlockChild(node *nethtml.Node) bool {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == nethtml.ElementNode && isBlock(child.Data) {
			return true
		}
	}
	return false
}
