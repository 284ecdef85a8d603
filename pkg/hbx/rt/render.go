package rt

import (
	"fmt"

	"github.com/kilianc/hbx/pkg/vdom"
)

// The functions below are the building blocks of compiled programs. The
// closure backend calls them directly and generated Go source spells them
// out, so both render identically.

// Seq concatenates node lists.
func Seq(parts ...[]vdom.Node) []vdom.Node {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	if n == 0 {
		return nil
	}
	out := make([]vdom.Node, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func Text(s string) []vdom.Node {
	return []vdom.Node{vdom.Text{Value: s}}
}

func Attr(key, value string) vdom.Attr {
	return vdom.Attr{Key: key, Value: value}
}

// Element builds one element.
func Element(tag string, attrs []vdom.Attr, children []vdom.Node) []vdom.Node {
	return []vdom.Node{vdom.Element{Tag: tag, Attrs: attrs, Children: children}}
}

// Flatten returns the text of nodes, for tag names and attribute values.
func Flatten(nodes []vdom.Node) string {
	return vdom.TextContent(nodes...)
}

// Interp renders the value at p: escaped text, raw markup for trusted
// values, or the sub-trees a value carries.
func Interp(s *Scope, p Path) []vdom.Node {
	return display(s.Lookup(p))
}

func display(v Value) []vdom.Node {
	switch v.kind {
	case KindHTML:
		return []vdom.Node{vdom.Raw{HTML: v.v.(string)}}
	case KindNodes:
		return v.v.([]vdom.Node)
	}
	return Text(v.String())
}

// Block invokes the helper called name with the body fn and the {{else}}
// section inverse.
func Block(c *Ctx, s *Scope, name string, args Args, fn, inverse Fn) []vdom.Node {
	if c.err != nil {
		return nil
	}
	h, ok := c.reg.Helper(name)
	if !ok {
		c.Fail(fmt.Errorf("%w: %q", ErrUnknownHelper, name))
		return nil
	}
	res, err := h(args, s, NewBody(c, fn, inverse))
	if err != nil {
		c.Fail(fmt.Errorf("helper %q: %w", name, err))
		return nil
	}
	if c.err != nil {
		return nil
	}
	nodes, err := Splice(res)
	if err != nil {
		c.Fail(fmt.Errorf("helper %q: %w", name, err))
		return nil
	}
	return nodes
}

// Splice converts a helper result to nodes. Sub-trees are spliced as they
// are, HTML becomes raw markup, nil renders nothing and other values render
// as escaped text.
func Splice(res any) ([]vdom.Node, error) {
	switch t := res.(type) {
	case nil:
		return nil, nil
	case []vdom.Node:
		return t, nil
	case vdom.Node:
		return []vdom.Node{t}, nil
	case HTML:
		return []vdom.Node{vdom.Raw{HTML: string(t)}}, nil
	}
	v, ok := valueOf(res)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, res)
	}
	if v.kind == KindNull {
		return nil, nil
	}
	return display(v), nil
}

// Partial renders the partial called name in a fresh scope. The scope holds
// base, merged with params when there are any.
func Partial(c *Ctx, name string, base Value, params ...NamedArg) []vdom.Node {
	if c.err != nil {
		return nil
	}
	fn, ok := c.reg.Partial(name)
	if !ok {
		c.Fail(fmt.Errorf("%w: %q", ErrUnknownPartial, name))
		return nil
	}
	if c.maxDepth > 0 && c.depth >= c.maxDepth {
		c.Fail(fmt.Errorf("%w: %q nested %d deep", ErrRecursion, name, c.depth))
		return nil
	}
	data := base
	if len(params) > 0 {
		data = Merge(base, Object(params...))
	}
	c.depth++
	defer func() { c.depth-- }()
	return fn(c, NewScope(data))
}

// Run renders fn against data.
func Run(c *Ctx, fn Fn, data any) ([]vdom.Node, error) {
	nodes := fn(c, NewScope(ValueOf(data)))
	if c.err != nil {
		return nil, c.err
	}
	return nodes, nil
}
