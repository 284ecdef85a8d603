package rt

import "github.com/kilianc/hbx/pkg/vdom"

// Fn is a compiled template program: it renders the template against s.
// Errors are recorded on c.
type Fn func(c *Ctx, s *Scope) []vdom.Node

// Helper implements a block or non-block helper. parent is the scope the
// helper was invoked in; body renders the template between the block
// markers. The result goes through Splice.
type Helper func(args Args, parent *Scope, body Body) (any, error)

// Registry is the read side of the helper and partial registries.
type Registry interface {
	Helper(name string) (Helper, bool)
	Partial(name string) (Fn, bool)
}

// DefaultMaxDepth bounds partial nesting.
const DefaultMaxDepth = 64

// Ctx carries per-render state. The first error recorded aborts the rest of
// the render.
type Ctx struct {
	reg      Registry
	maxDepth int
	depth    int
	err      error
}

// NewCtx returns a render context over reg. maxDepth <= 0 disables the
// partial nesting bound.
func NewCtx(reg Registry, maxDepth int) *Ctx {
	return &Ctx{reg: reg, maxDepth: maxDepth}
}

func (c *Ctx) Registry() Registry { return c.reg }

// Fail records err unless an error is already recorded.
func (c *Ctx) Fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func (c *Ctx) Err() error { return c.err }

// Body is the continuation handed to a helper.
type Body struct {
	c       *Ctx
	fn      Fn
	inverse Fn
}

// NewBody returns a Body rendering fn, and inverse for the {{else}} section.
// Either may be nil.
func NewBody(c *Ctx, fn, inverse Fn) Body {
	return Body{c: c, fn: fn, inverse: inverse}
}

// Render renders the block body in a new scope holding inner, pushed on
// parent with meta.
func (b Body) Render(inner Value, parent *Scope, meta Metadata) ([]vdom.Node, error) {
	return b.run(b.fn, inner, parent, meta)
}

// Inverse renders the {{else}} section the same way Render renders the body.
// It renders nothing when the block has no {{else}}.
func (b Body) Inverse(inner Value, parent *Scope, meta Metadata) ([]vdom.Node, error) {
	return b.run(b.inverse, inner, parent, meta)
}

func (b Body) HasInverse() bool { return b.inverse != nil }

func (b Body) run(fn Fn, inner Value, parent *Scope, meta Metadata) ([]vdom.Node, error) {
	if fn == nil || b.c.err != nil {
		return nil, b.c.err
	}
	nodes := fn(b.c, parent.Push(inner, meta))
	if b.c.err != nil {
		return nil, b.c.err
	}
	return nodes, nil
}
