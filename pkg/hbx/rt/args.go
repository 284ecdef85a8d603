package rt

// NamedArg is a name=value argument.
type NamedArg struct {
	Name  string
	Value Value
}

func Named(name string, v Value) NamedArg {
	return NamedArg{Name: name, Value: v}
}

// Args is the argument bundle passed to a helper: positional values in
// source order and named values.
type Args struct {
	positional []Value
	named      []NamedArg
}

func NewArgs(positional []Value, named ...NamedArg) Args {
	return Args{positional: positional, named: named}
}

// Len returns the number of positional arguments.
func (a Args) Len() int { return len(a.positional) }

// At returns the i-th positional argument, or Null.
func (a Args) At(i int) Value {
	if i < 0 || i >= len(a.positional) {
		return Null
	}
	return a.positional[i]
}

// Named returns the named argument called name, or Null.
func (a Args) Named(name string) Value {
	for i := len(a.named) - 1; i >= 0; i-- {
		if a.named[i].Name == name {
			return a.named[i].Value
		}
	}
	return Null
}

// Hash returns the named arguments as a record.
func (a Args) Hash() Value { return Object(a.named...) }
