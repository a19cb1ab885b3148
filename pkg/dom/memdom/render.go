package memdom

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/go-drift/filament/pkg/dom"
)

// OuterHTML serializes n and its subtree.
func OuterHTML(n dom.Node) string {
	hn := nodeOf(n)
	if hn == nil {
		return ""
	}
	var sb strings.Builder
	if err := html.Render(&sb, hn); err != nil {
		return ""
	}
	return sb.String()
}

// InnerHTML serializes the children of el.
func InnerHTML(el dom.Element) string {
	hn := nodeOf(el)
	if hn == nil {
		return ""
	}
	var sb strings.Builder
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return ""
		}
	}
	return sb.String()
}

// TextContent concatenates every text node under n.
func TextContent(n dom.Node) string {
	hn := nodeOf(n)
	if hn == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(hn)
	return sb.String()
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the node's subtree.
func Walk(n dom.Node, fn func(dom.Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	el, ok := n.(dom.Element)
	if !ok {
		return
	}
	for c := el.FirstChild(); c != nil; c = c.NextSibling() {
		Walk(c, fn)
	}
}

// QueryAll returns every element under root (excluding root) matching pred.
func QueryAll(root dom.Element, pred func(dom.Element) bool) []dom.Element {
	var out []dom.Element
	Walk(root, func(n dom.Node) bool {
		if el, ok := n.(dom.Element); ok && n != dom.Node(root) && pred(el) {
			out = append(out, el)
		}
		return true
	})
	return out
}

// Query returns the first element under root matching pred, or nil.
func Query(root dom.Element, pred func(dom.Element) bool) dom.Element {
	if all := QueryAll(root, pred); len(all) > 0 {
		return all[0]
	}
	return nil
}

// ByTag matches elements with the given tag name.
func ByTag(tag string) func(dom.Element) bool {
	tag = strings.ToLower(tag)
	return func(el dom.Element) bool { return el.TagName() == tag }
}

// ByAttr matches elements whose attribute name equals value.
func ByAttr(name, value string) func(dom.Element) bool {
	return func(el dom.Element) bool {
		v, ok := el.Attribute(name)
		return ok && v == value
	}
}

// ByID matches elements with the given id attribute.
func ByID(id string) func(dom.Element) bool {
	return ByAttr("id", id)
}

// ByText matches elements whose text content equals text.
func ByText(text string) func(dom.Element) bool {
	return func(el dom.Element) bool { return TextContent(el) == text }
}

// Count returns the number of host nodes under root, root included.
func Count(root dom.Node) int {
	n := 0
	Walk(root, func(dom.Node) bool { n++; return true })
	return n
}
