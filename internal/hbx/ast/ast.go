package ast

import "github.com/kilianc/hbx/internal/hbx/diag"

type Node interface {
	diag.Ranger
	node()
}

// Element is a markup tag. Name is normally a single Literal; attribute
// values are fragment lists so each can be interpolated on its own.
type Element struct {
	diag.Ranging
	Name     []Fragment
	Attrs    []Attr
	Children []Node
}

func (*Element) node() {}

type Attr struct {
	Key   string
	Value []Fragment
}

// Text is a run of character data split into fragments.
type Text struct {
	diag.Ranging
	Fragments []Fragment
}

func (*Text) node() {}

type Fragment interface {
	diag.Ranger
	fragment()
}

type Literal struct {
	diag.Ranging
	Value string
}

func (*Literal) fragment() {}

type Interp struct {
	diag.Ranging
	Path PathExpr
}

func (*Interp) fragment() {}

// BlockOpen opens a helper block. Synthetic blocks wrap non-block helper
// calls and are always followed by a yield of the current value and a
// matching BlockClose.
type BlockOpen struct {
	diag.Ranging
	Name      string
	Args      []Arg
	Synthetic bool
}

func (*BlockOpen) fragment() {}

type Else struct {
	diag.Ranging
}

func (*Else) fragment() {}

type BlockClose struct {
	diag.Ranging
	Name string
}

func (*BlockClose) fragment() {}

type PartialRef struct {
	diag.Ranging
	Name string
	// Context is the explicit context argument, nil for the ambient context.
	Context PathExpr
	Params  []Arg
}

func (*PartialRef) fragment() {}

// Arg is a helper argument or partial parameter. Name is empty for
// positional arguments. Exactly one of Path and Lit is meaningful: Lit holds
// a string, int64, float64, bool or nil when Path is nil.
type Arg struct {
	Name string
	Path PathExpr
	Lit  any
}

type PathExpr interface {
	pathExpr()
}

// This addresses the current context.
type This struct{}

// Meta addresses an @-variable, optionally followed by property reads.
type Meta struct {
	Name string
	Tail []string
}

// Parent climbs Hops scopes and resolves Tail there.
type Parent struct {
	Hops int
	Tail PathExpr
}

type Dotted struct {
	Segments []string
}

// RawHTML suppresses escaping of Inner.
type RawHTML struct {
	Inner PathExpr
}

func (This) pathExpr()    {}
func (Meta) pathExpr()    {}
func (Parent) pathExpr()  {}
func (Dotted) pathExpr()  {}
func (RawHTML) pathExpr() {}

// Hops returns how many scopes p climbs.
func Hops(p PathExpr) int {
	switch t := p.(type) {
	case Parent:
		return t.Hops + Hops(t.Tail)
	case RawHTML:
		return Hops(t.Inner)
	}
	return 0
}
