package compile

import (
	"github.com/kilianc/hbx/internal/hbx/ast"
	"github.com/kilianc/hbx/internal/hbx/diag"
	"github.com/kilianc/hbx/internal/hbx/parse"
	"github.com/kilianc/hbx/pkg/hbx/rt"
)

// Env reports which names are registered when the template is compiled.
// A nil func accepts every name.
type Env struct {
	HasHelper  func(name string) bool
	HasPartial func(name string) bool
}

func (e Env) helper(name string) bool  { return e.HasHelper == nil || e.HasHelper(name) }
func (e Env) partial(name string) bool { return e.HasPartial == nil || e.HasPartial(name) }

// Build compiles the parse tree of src. name and src are only used for
// error reporting. Nothing is returned unless the whole tree compiles.
func Build(name, src string, nodes []ast.Node, env Env) (*Program, error) {
	b := &builder{name: name, src: src, env: env}
	ops, err := b.children(nodes, 0)
	if err != nil {
		return nil, err
	}
	return &Program{Name: name, Ops: ops}, nil
}

type builder struct {
	name string
	src  string
	env  Env
}

func (b *builder) errorf(sentinel error, r diag.Ranger, format string, args ...any) error {
	return diag.Errorf(sentinel, b.name, b.src, r, format, args...)
}

// item is one entry of a flattened children list: an element or a single
// text fragment.
type item struct {
	el   *ast.Element
	frag ast.Fragment
}

type cursor struct {
	items []item
	i     int
}

func (b *builder) children(nodes []ast.Node, depth int) ([]Op, error) {
	cur := &cursor{}
	for _, n := range nodes {
		switch t := n.(type) {
		case *ast.Element:
			cur.items = append(cur.items, item{el: t})
		case *ast.Text:
			for _, f := range t.Fragments {
				cur.items = append(cur.items, item{frag: f})
			}
		}
	}
	return b.top(cur, depth)
}

func (b *builder) fragments(frags []ast.Fragment, depth int) ([]Op, error) {
	cur := &cursor{items: make([]item, len(frags))}
	for i, f := range frags {
		cur.items[i] = item{frag: f}
	}
	return b.top(cur, depth)
}

// top compiles a whole list, in which no block may be left open or closed.
func (b *builder) top(cur *cursor, depth int) ([]Op, error) {
	ops, stop, err := b.list(cur, depth)
	if err != nil {
		return nil, err
	}
	switch t := stop.(type) {
	case *ast.Else:
		return nil, b.errorf(diag.ErrUnbalanced, t, "{{else}} outside a block")
	case *ast.BlockClose:
		return nil, b.errorf(diag.ErrUnbalanced, t, "{{/%s}} closes no block", t.Name)
	}
	return ops, nil
}

// list compiles items up to the next {{else}} or close marker at this
// nesting level, which it returns, or to the end of the list.
func (b *builder) list(cur *cursor, depth int) ([]Op, ast.Fragment, error) {
	var ops []Op
	for cur.i < len(cur.items) {
		it := cur.items[cur.i]
		cur.i++
		var (
			op  Op
			err error
		)
		if it.el != nil {
			op, err = b.element(it.el, depth)
		} else {
			switch f := it.frag.(type) {
			case *ast.Else, *ast.BlockClose:
				return ops, f, nil
			case *ast.BlockOpen:
				op, err = b.block(cur, f, depth)
			default:
				op, err = b.fragment(f, depth)
			}
		}
		if err != nil {
			return nil, nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil, nil
}

func (b *builder) element(el *ast.Element, depth int) (Op, error) {
	name, err := b.fragments(el.Name, depth)
	if err != nil {
		return nil, err
	}
	op := &Elem{Name: name}
	for _, a := range el.Attrs {
		val, err := b.fragments(a.Value, depth)
		if err != nil {
			return nil, err
		}
		op.Attrs = append(op.Attrs, AttrOp{Key: a.Key, Value: val})
	}
	if op.Children, err = b.children(el.Children, depth); err != nil {
		return nil, err
	}
	return op, nil
}

func (b *builder) block(cur *cursor, open *ast.BlockOpen, depth int) (Op, error) {
	if !b.env.helper(open.Name) {
		return nil, b.errorf(rt.ErrUnknownHelper, open, "unknown helper %q", open.Name)
	}
	op := &Block{Name: open.Name, Synthetic: open.Synthetic}
	for _, a := range open.Args {
		arg, err := b.arg(a, open, depth)
		if err != nil {
			return nil, err
		}
		if a.Name != "" {
			op.Named = append(op.Named, NamedArgOp{Name: a.Name, ArgOp: arg})
		} else {
			op.Args = append(op.Args, arg)
		}
	}

	body, stop, err := b.list(cur, depth+1)
	if err != nil {
		return nil, err
	}
	op.Body = body
	if e, ok := stop.(*ast.Else); ok {
		inverse, next, err := b.list(cur, depth+1)
		if err != nil {
			return nil, err
		}
		if e2, twice := next.(*ast.Else); twice {
			return nil, b.errorf(diag.ErrUnbalanced, e2, "second {{else}} in {{#%s}}, first at %d", open.Name, e.From)
		}
		op.Inverse, op.HasElse = inverse, true
		stop = next
	}
	switch t := stop.(type) {
	case nil:
		return nil, b.errorf(diag.ErrUnbalanced, open, "unterminated {{#%s}}", open.Name)
	case *ast.BlockClose:
		if t.Name != open.Name {
			return nil, b.errorf(diag.ErrUnbalanced, t, "{{/%s}} closes {{#%s}}", t.Name, open.Name)
		}
	}
	return op, nil
}

func (b *builder) fragment(f ast.Fragment, depth int) (Op, error) {
	switch t := f.(type) {
	case *ast.Literal:
		return &Lit{Value: t.Value}, nil
	case *ast.Interp:
		p, err := b.path(t.Path, t, depth)
		if err != nil {
			return nil, err
		}
		return &Interp{Path: p}, nil
	case *ast.PartialRef:
		if !b.env.partial(t.Name) {
			return nil, b.errorf(rt.ErrUnknownPartial, t, "unknown partial %q", t.Name)
		}
		op := &Partial{Name: t.Name}
		if t.Context != nil {
			p, err := b.path(t.Context, t, depth)
			if err != nil {
				return nil, err
			}
			op.Context = &p
		}
		for _, a := range t.Params {
			arg, err := b.arg(a, t, depth)
			if err != nil {
				return nil, err
			}
			op.Params = append(op.Params, NamedArgOp{Name: a.Name, ArgOp: arg})
		}
		return op, nil
	}
	return nil, b.errorf(diag.ErrSyntax, f, "unexpected %T", f)
}

func (b *builder) arg(a ast.Arg, r diag.Ranger, depth int) (ArgOp, error) {
	if a.Path == nil {
		return ArgOp{Lit: a.Lit}, nil
	}
	p, err := b.path(a.Path, r, depth)
	if err != nil {
		return ArgOp{}, err
	}
	return ArgOp{Path: &p}, nil
}

// path converts p, checking that it climbs no further than the enclosing
// blocks.
func (b *builder) path(p ast.PathExpr, r diag.Ranger, depth int) (rt.Path, error) {
	if err := parse.CheckDepth(p, depth); err != nil {
		return rt.Path{}, b.errorf(diag.ErrScopeDepth, r, "%v", err)
	}
	return Path(p), nil
}

// Path converts a parsed path to its runtime form.
func Path(p ast.PathExpr) rt.Path {
	switch t := p.(type) {
	case ast.Meta:
		return rt.Meta(t.Name, t.Tail...)
	case ast.Dotted:
		return rt.Dotted(t.Segments...)
	case ast.Parent:
		return rt.Up(t.Hops, Path(t.Tail))
	case ast.RawHTML:
		return Path(t.Inner).Raw()
	}
	return rt.This()
}
