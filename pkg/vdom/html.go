package vdom

import (
	"fmt"
	"io"
	"strings"

	g "maragu.dev/gomponents"
)

// Gomponent converts n to a gomponents node.
func Gomponent(n Node) g.Node {
	switch t := n.(type) {
	case Element:
		children := make([]g.Node, 0, len(t.Attrs)+len(t.Children))
		for _, a := range t.Attrs {
			children = append(children, g.Attr(a.Key, a.Value))
		}
		for _, c := range t.Children {
			children = append(children, Gomponent(c))
		}
		return g.El(t.Tag, children...)
	case Text:
		return g.Text(t.Value)
	case Raw:
		return g.Raw(t.HTML)
	case nil:
		return g.Group(nil)
	default:
		panic(fmt.Sprintf("vdom: unsupported node type %T", n))
	}
}

// Render writes nodes as HTML to w.
func Render(w io.Writer, nodes ...Node) error {
	for _, n := range nodes {
		if err := Gomponent(n).Render(w); err != nil {
			return err
		}
	}
	return nil
}

// HTML returns nodes serialised as HTML.
func HTML(nodes ...Node) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, nodes...); err != nil {
		return "", err
	}
	return sb.String(), nil
}
