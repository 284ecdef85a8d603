// Package parse turns template source into an ast tree.
package parse

import (
	"errors"
	"strings"

	"golang.org/x/net/html"

	"github.com/kilianc/hbx/internal/hbx/ast"
	"github.com/kilianc/hbx/internal/hbx/diag"
)

type Options struct {
	// IsHelper reports whether name is a registered helper. A bare
	// expression whose first word is a helper becomes a helper call.
	IsHelper func(name string) bool
	// KeepWhitespace disables the removal of newlines, tabs and
	// whitespace-only text.
	KeepWhitespace bool
}

// Parse builds the node tree of src. name identifies src in errors.
// Top-level siblings are returned in order; a template normally has a
// single root element but Parse does not require it.
func Parse(name, src string, opts Options) ([]ast.Node, error) {
	b := &builder{parser: parser{name: name, src: src, opts: opts}}
	if err := Tokenize(src, b); err != nil {
		var de *diag.Error
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, b.errorf(diag.ErrSyntax, diag.PointRanging(len(src)), "%v", err)
	}
	return b.roots, nil
}

// builder implements Handler. open is the cursor: the stack of elements
// that have not been closed yet. It only lives while the tree is built.
type builder struct {
	parser
	roots []ast.Node
	open  []*ast.Element
}

func (b *builder) attach(n ast.Node) {
	if len(b.open) == 0 {
		b.roots = append(b.roots, n)
		return
	}
	top := b.open[len(b.open)-1]
	top.Children = append(top.Children, n)
}

func (b *builder) OpenTag(name string, attrs []html.Attribute, r diag.Ranging) error {
	at := func(int, int) diag.Ranging { return r }
	tagName, err := b.segment(name, at, false)
	if err != nil {
		return err
	}
	el := &ast.Element{Ranging: r, Name: tagName}
	for _, a := range attrs {
		val, err := b.segment(a.Val, at, false)
		if err != nil {
			return err
		}
		if !b.opts.KeepWhitespace {
			val = stripControl(val)
		}
		el.Attrs = append(el.Attrs, ast.Attr{Key: a.Key, Value: val})
	}
	b.attach(el)
	b.open = append(b.open, el)
	return nil
}

func (b *builder) Text(raw string, r diag.Ranging) error {
	if !b.opts.KeepWhitespace && strings.TrimSpace(raw) == "" {
		return nil
	}
	frags, err := b.segment(raw, func(from, to int) diag.Ranging {
		return diag.Ranging{From: from, To: to}.Shift(r.From)
	}, true)
	if err != nil {
		return err
	}
	if !b.opts.KeepWhitespace {
		frags = compact(frags)
	}
	if len(frags) == 0 {
		return nil
	}
	b.attach(&ast.Text{Ranging: r, Fragments: frags})
	return nil
}

// CloseTag pops the innermost open element whatever its name. Closing past
// the root is ignored.
func (b *builder) CloseTag(r diag.Ranging) error {
	if len(b.open) == 0 {
		return nil
	}
	top := b.open[len(b.open)-1]
	top.To = r.To
	b.open = b.open[:len(b.open)-1]
	return nil
}

// stripControl removes newlines, tabs and carriage returns from literals.
func stripControl(frags []ast.Fragment) []ast.Fragment {
	out := frags[:0]
	for _, f := range frags {
		if l, ok := f.(*ast.Literal); ok {
			l.Value = strings.Map(func(r rune) rune {
				switch r {
				case '\n', '\t', '\r':
					return -1
				}
				return r
			}, l.Value)
			if l.Value == "" {
				continue
			}
		}
		out = append(out, f)
	}
	return out
}

// compact applies stripControl and drops whitespace-only literals at either
// end of a text run that also holds expressions.
func compact(frags []ast.Fragment) []ast.Fragment {
	frags = stripControl(frags)
	if len(frags) < 2 {
		return frags
	}
	if blank(frags[0]) {
		frags = frags[1:]
	}
	if len(frags) > 1 && blank(frags[len(frags)-1]) {
		frags = frags[:len(frags)-1]
	}
	return frags
}

func blank(f ast.Fragment) bool {
	l, ok := f.(*ast.Literal)
	return ok && strings.TrimSpace(l.Value) == ""
}
