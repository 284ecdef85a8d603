// Package vdom is the element tree produced by hbx render programs.
//
// A tree is built from three node kinds: elements, escaped text and trusted
// raw markup. Trees are plain values and can be compared, diffed or
// serialised by the caller.
package vdom

import "strings"

type Node interface {
	node()
}

type Attr struct {
	Key   string
	Value string
}

type Element struct {
	Tag      string
	Attrs    []Attr
	Children []Node
}

func (Element) node() {}

// Attr returns the value of the named attribute and whether it is present.
func (e Element) Attr(key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

type Text struct {
	Value string
}

func (Text) node() {}

// Raw is markup injected without escaping. Triple-stash interpolations,
// {{&...}} and HTML helper results produce a Raw node where they appear,
// with no wrapping element around it, so a tree walker meets the markup as
// a leaf sibling of the surrounding text and elements.
type Raw struct {
	HTML string
}

func (Raw) node() {}

// TextContent concatenates the text of nodes in document order. Raw markup
// contributes its source verbatim.
func TextContent(nodes ...Node) string {
	var sb strings.Builder
	writeText(&sb, nodes)
	return sb.String()
}

func writeText(sb *strings.Builder, nodes []Node) {
	for _, n := range nodes {
		switch t := n.(type) {
		case Text:
			sb.WriteString(t.Value)
		case Raw:
			sb.WriteString(t.HTML)
		case Element:
			writeText(sb, t.Children)
		}
	}
}
