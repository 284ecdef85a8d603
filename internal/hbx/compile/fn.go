package compile

import (
	"github.com/kilianc/hbx/pkg/hbx/rt"
	"github.com/kilianc/hbx/pkg/vdom"
)

// Fn returns the program as a render function.
func (p *Program) Fn() rt.Fn {
	return seqFn(p.Ops)
}

func seqFn(ops []Op) rt.Fn {
	fns := make([]rt.Fn, len(ops))
	for i, op := range ops {
		fns[i] = opFn(op)
	}
	if len(fns) == 1 {
		return fns[0]
	}
	return func(c *rt.Ctx, s *rt.Scope) []vdom.Node {
		parts := make([][]vdom.Node, len(fns))
		for i, fn := range fns {
			parts[i] = fn(c, s)
		}
		return rt.Seq(parts...)
	}
}

func opFn(op Op) rt.Fn {
	switch t := op.(type) {
	case *Lit:
		return func(*rt.Ctx, *rt.Scope) []vdom.Node { return rt.Text(t.Value) }
	case *Interp:
		return func(_ *rt.Ctx, s *rt.Scope) []vdom.Node { return rt.Interp(s, t.Path) }
	case *Elem:
		return elemFn(t)
	case *Block:
		return blockFn(t)
	case *Partial:
		return partialFn(t)
	}
	panic("compile: unknown op")
}

func elemFn(e *Elem) rt.Fn {
	name := seqFn(e.Name)
	type attrFn struct {
		key   string
		value rt.Fn
	}
	attrs := make([]attrFn, len(e.Attrs))
	for i, a := range e.Attrs {
		attrs[i] = attrFn{a.Key, seqFn(a.Value)}
	}
	children := seqFn(e.Children)
	return func(c *rt.Ctx, s *rt.Scope) []vdom.Node {
		var as []vdom.Attr
		if len(attrs) > 0 {
			as = make([]vdom.Attr, len(attrs))
			for i, a := range attrs {
				as[i] = rt.Attr(a.key, rt.Flatten(a.value(c, s)))
			}
		}
		return rt.Element(rt.Flatten(name(c, s)), as, children(c, s))
	}
}

func blockFn(b *Block) rt.Fn {
	body := seqFn(b.Body)
	var inverse rt.Fn
	if b.HasElse {
		inverse = seqFn(b.Inverse)
	}
	return func(c *rt.Ctx, s *rt.Scope) []vdom.Node {
		var pos []rt.Value
		if len(b.Args) > 0 {
			pos = make([]rt.Value, len(b.Args))
			for i, a := range b.Args {
				pos[i] = a.eval(s)
			}
		}
		return rt.Block(c, s, b.Name, rt.NewArgs(pos, named(b.Named, s)...), body, inverse)
	}
}

func partialFn(p *Partial) rt.Fn {
	return func(c *rt.Ctx, s *rt.Scope) []vdom.Node {
		base := s.Data()
		if p.Context != nil {
			base = s.Lookup(*p.Context)
		}
		return rt.Partial(c, p.Name, base, named(p.Params, s)...)
	}
}

func (a ArgOp) eval(s *rt.Scope) rt.Value {
	if a.Path != nil {
		return s.Lookup(*a.Path)
	}
	return rt.ValueOf(a.Lit)
}

func named(args []NamedArgOp, s *rt.Scope) []rt.NamedArg {
	if len(args) == 0 {
		return nil
	}
	out := make([]rt.NamedArg, len(args))
	for i, a := range args {
		out[i] = rt.Named(a.Name, a.eval(s))
	}
	return out
}
