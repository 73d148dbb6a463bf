package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Node is the read-only view of one top-level document node that the classifier
// needs. Any HTML facility can be adapted to it.
type Node interface {
	// Tag returns the lower-case element name, or "" for text and comment nodes.
	Tag() string
	// Text returns the whitespace-normalised, trimmed text content.
	Text() string
	// Image returns the first embedded image reference.
	Image() (src string, ok bool)
	// HasPrecedingSibling reports whether an earlier sibling carries one of tags.
	HasPrecedingSibling(tags ...string) bool
	// IsolatedBold reports whether the node's whole visible content is a single
	// bold run with no inline siblings.
	IsolatedBold() bool
}

// SelectionNode adapts a single-element goquery selection to Node.
type SelectionNode struct {
	s *goquery.Selection
}

// NewSelectionNode wraps the first node of s.
func NewSelectionNode(s *goquery.Selection) *SelectionNode {
	return &SelectionNode{s: s.First()}
}

// Nodes adapts every node of s, in document order.
func Nodes(s *goquery.Selection) []Node {
	nodes := make([]Node, 0, s.Length())
	s.Each(func(i int, child *goquery.Selection) {
		nodes = append(nodes, NewSelectionNode(child))
	})
	return nodes
}

func (n *SelectionNode) Tag() string {
	if len(n.s.Nodes) == 0 || n.s.Nodes[0].Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(goquery.NodeName(n.s))
}

func (n *SelectionNode) Text() string {
	return normalizeText(n.s.Text())
}

func (n *SelectionNode) Image() (string, bool) {
	img := n.s.Filter("img")
	if img.Length() == 0 {
		img = n.s.Find("img").First()
	}
	if img.Length() == 0 {
		return "", false
	}
	src, _ := img.Attr("src")
	if src == "" {
		// Quill keeps lazily loaded images in data-src.
		src, _ = img.Attr("data-src")
	}
	return strings.TrimSpace(src), true
}

func (n *SelectionNode) HasPrecedingSibling(tags ...string) bool {
	if len(tags) == 0 {
		return false
	}
	return n.s.PrevAllFiltered(strings.Join(tags, ",")).Length() > 0
}

func (n *SelectionNode) IsolatedBold() bool {
	// Nested emphasis such as <strong><b> is one run; count outermost only.
	bold := n.s.Find("strong,b").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.ParentsUntilSelection(n.s).Filter("strong,b").Length() == 0
	})
	if bold.Length() != 1 {
		return false
	}
	node := bold.Get(0)
	if node.PrevSibling != nil || node.NextSibling != nil {
		return false
	}
	text := normalizeText(bold.Text())
	return text != "" && text == n.Text()
}

// Selection exposes the wrapped selection.
func (n *SelectionNode) Selection() *goquery.Selection {
	return n.s
}
