package rt

import (
	"fmt"

	"github.com/kilianc/hbx/pkg/vdom"
)

// Builtins returns the helpers every engine starts with.
func Builtins() map[string]Helper {
	return map[string]Helper{
		"if":     If,
		"unless": Unless,
		"each":   Each,
		"with":   With,
	}
}

// If renders the body when its argument is truthy. A record argument becomes
// the context of the body; otherwise the body keeps the enclosing context.
func If(args Args, parent *Scope, body Body) (any, error) {
	arg := args.At(0)
	if !arg.Truthy() {
		return body.Inverse(parent.Data(), parent, nil)
	}
	inner := parent.Data()
	if arg.Kind() == KindRecord {
		inner = arg
	}
	return body.Render(inner, parent, nil)
}

// Unless is If with the test inverted.
func Unless(args Args, parent *Scope, body Body) (any, error) {
	if args.At(0).Truthy() {
		return body.Inverse(parent.Data(), parent, nil)
	}
	return body.Render(parent.Data(), parent, nil)
}

// With renders the body in the context of its argument when it is truthy.
func With(args Args, parent *Scope, body Body) (any, error) {
	arg := args.At(0)
	if !arg.Truthy() {
		return body.Inverse(parent.Data(), parent, nil)
	}
	return body.Render(arg, parent, nil)
}

// Each renders the body once per element of a list, or once per field of a
// record in key order. The element is the context of each pass; @index,
// @first and @last (and @key for records) are set.
func Each(args Args, parent *Scope, body Body) (any, error) {
	arg := args.At(0)
	if !arg.Truthy() {
		return body.Inverse(parent.Data(), parent, nil)
	}
	var out []vdom.Node
	switch arg.Kind() {
	case KindList:
		l, _ := arg.List()
		n := l.Len()
		for i := 0; i < n; i++ {
			nodes, err := body.Render(l.At(i), parent, IterationMeta(i, n))
			if err != nil {
				return nil, err
			}
			out = append(out, nodes...)
		}
	case KindRecord:
		r, _ := arg.Record()
		keys := r.Keys()
		if len(keys) == 0 {
			return body.Inverse(parent.Data(), parent, nil)
		}
		for i, k := range keys {
			v, _ := r.Get(k)
			meta := IterationMeta(i, len(keys))
			meta["key"] = ValueOf(k)
			nodes, err := body.Render(v, parent, meta)
			if err != nil {
				return nil, err
			}
			out = append(out, nodes...)
		}
	default:
		return nil, fmt.Errorf("%w: got %s", ErrNotSequence, arg.Kind())
	}
	return out, nil
}
