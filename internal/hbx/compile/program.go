// Package compile matches blocks in a parsed template, validates it against
// the registered helpers and partials, and produces a Program.
package compile

import "github.com/kilianc/hbx/pkg/hbx/rt"

// Program is a compiled template. Both backends consume it: Fn interprets
// it, and package lower prints it as Go source.
type Program struct {
	Name string
	Ops  []Op
}

// Op is one step of a program. Each op renders to a node list; a sequence of
// ops renders to the concatenation of their lists.
type Op interface {
	op()
}

type Lit struct {
	Value string
}

type Interp struct {
	Path rt.Path
}

// Elem builds an element. Name and attribute values are op sequences whose
// output is flattened to text.
type Elem struct {
	Name     []Op
	Attrs    []AttrOp
	Children []Op
}

type AttrOp struct {
	Key   string
	Value []Op
}

// Block invokes a helper. Synthetic blocks come from non-block helper calls
// and their Body yields the current value.
type Block struct {
	Name      string
	Args      []ArgOp
	Named     []NamedArgOp
	Body      []Op
	Inverse   []Op
	HasElse   bool
	Synthetic bool
}

// Partial renders a registered partial. Context is nil for the ambient
// context.
type Partial struct {
	Name    string
	Context *rt.Path
	Params  []NamedArgOp
}

// ArgOp is an argument value: a scope lookup when Path is set, else the
// literal Lit.
type ArgOp struct {
	Path *rt.Path
	Lit  any
}

type NamedArgOp struct {
	Name string
	ArgOp
}

func (*Lit) op()     {}
func (*Interp) op()  {}
func (*Elem) op()    {}
func (*Block) op()   {}
func (*Partial) op() {}
