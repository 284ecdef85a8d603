package rt

import "strings"

// Metadata holds the @-variables a helper attaches to a block scope.
type Metadata map[string]Value

// IterationMeta returns the metadata of element index in a sequence of count
// elements.
func IterationMeta(index, count int) Metadata {
	return Metadata{
		"index": ValueOf(index),
		"first": ValueOf(index == 0),
		"last":  ValueOf(index == count-1),
	}
}

// Scope is one level of the context chain. Entering a block pushes a scope;
// the caller's data is never modified.
type Scope struct {
	data   Value
	parent *Scope
	meta   Metadata
}

// NewScope returns a root scope over data.
func NewScope(data Value) *Scope {
	return &Scope{data: data}
}

// Push returns a child scope of s.
func (s *Scope) Push(data Value, meta Metadata) *Scope {
	return &Scope{data: data, parent: s, meta: meta}
}

// Data returns the value in view. It is Null for a nil scope.
func (s *Scope) Data() Value {
	if s == nil {
		return Null
	}
	return s.data
}

func (s *Scope) Parent() *Scope {
	if s == nil {
		return nil
	}
	return s.parent
}

// Root returns the outermost scope of the chain.
func (s *Scope) Root() *Scope {
	for s != nil && s.parent != nil {
		s = s.parent
	}
	return s
}

// Meta looks name up in the metadata of s and then of its ancestors.
func (s *Scope) Meta(name string) Value {
	for ; s != nil; s = s.parent {
		if v, ok := s.meta[name]; ok {
			return v
		}
	}
	return Null
}

// Lookup resolves p against s. Missing or wrong-shaped data reads as Null.
func (s *Scope) Lookup(p Path) Value {
	t := s
	for i := 0; i < p.Hops && t != nil; i++ {
		t = t.parent
	}
	var v Value
	switch {
	case t == nil:
	case p.Meta == "root":
		v = t.Root().data
	case p.Meta != "":
		v = t.Meta(p.Meta)
	default:
		v = t.data
	}
	for _, seg := range p.Segments {
		v = v.Get(seg)
	}
	if p.Unescaped {
		v = v.trusted()
	}
	return v
}

// Path is a resolved addressing mode into a scope chain.
type Path struct {
	// Hops is the number of parent scopes to climb first.
	Hops int
	// Meta names an @-variable; empty for data paths.
	Meta string
	// Segments are property reads applied in order.
	Segments []string
	// Unescaped marks the result as trusted markup.
	Unescaped bool
}

// This addresses the current context.
func This() Path { return Path{} }

// Dotted addresses a property path of the current context.
func Dotted(segments ...string) Path { return Path{Segments: segments} }

// Meta addresses an @-variable, optionally followed by property reads.
func Meta(name string, tail ...string) Path { return Path{Meta: name, Segments: tail} }

// Up climbs hops scopes before resolving p.
func Up(hops int, p Path) Path {
	p.Hops += hops
	return p
}

// Raw returns p marked as unescaped.
func (p Path) Raw() Path {
	p.Unescaped = true
	return p
}

// String returns p in template syntax.
func (p Path) String() string {
	var sb strings.Builder
	for i := 0; i < p.Hops; i++ {
		sb.WriteString("../")
	}
	switch {
	case p.Meta != "":
		sb.WriteString("@" + p.Meta)
		for _, s := range p.Segments {
			sb.WriteString("." + s)
		}
	case len(p.Segments) == 0:
		sb.WriteString("this")
	default:
		sb.WriteString(strings.Join(p.Segments, "."))
	}
	if p.Unescaped {
		return "{" + sb.String() + "}"
	}
	return sb.String()
}
