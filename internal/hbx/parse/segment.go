package parse

import (
	"errors"
	"strings"

	"golang.org/x/net/html"

	"github.com/kilianc/hbx/internal/hbx/ast"
	"github.com/kilianc/hbx/internal/hbx/diag"
	"github.com/kilianc/hbx/pkg/hbx/rt"
)

type parser struct {
	name string
	src  string
	opts Options
}

func (p *parser) errorf(sentinel error, r diag.Ranger, format string, args ...any) *diag.Error {
	return diag.Errorf(sentinel, p.name, p.src, r, format, args...)
}

// wrap turns an error from the path and argument parsers into a compile
// error at r.
func (p *parser) wrap(err error, r diag.Ranger) error {
	sentinel := diag.ErrSyntax
	if errors.Is(err, diag.ErrScopeDepth) {
		sentinel = diag.ErrScopeDepth
	}
	return p.errorf(sentinel, r, "%v", err)
}

func (p *parser) isHelper(name string) bool {
	return p.opts.IsHelper != nil && p.opts.IsHelper(name)
}

// segment scans raw for {{...}} expressions. pos maps offsets in raw to
// source ranges. When decode is set, literal text and expression payloads
// are entity-decoded, matching what the tokenizer does to attribute values.
func (p *parser) segment(raw string, pos func(from, to int) diag.Ranging, decode bool) ([]ast.Fragment, error) {
	var frags []ast.Fragment
	literal := func(from, to int) {
		if from >= to {
			return
		}
		v := raw[from:to]
		if decode {
			v = html.UnescapeString(v)
		}
		frags = append(frags, &ast.Literal{Ranging: pos(from, to), Value: v})
	}

	i := 0
	for {
		j := strings.Index(raw[i:], "{{")
		if j < 0 {
			literal(i, len(raw))
			return frags, nil
		}
		j += i
		literal(i, j)

		end, payload, kind := scanExpr(raw, j)
		if end < 0 {
			return nil, p.errorf(diag.ErrSyntax, pos(j, len(raw)), "unclosed %s", kind.opener())
		}
		if decode {
			payload = unescapeExpr(payload)
		}
		fs, err := p.classify(payload, kind, pos(j, end))
		if err != nil {
			return nil, err
		}
		frags = append(frags, fs...)
		i = end
	}
}

// unescapeExpr decodes the entities of an expression payload. The & of
// {{&path}} is left out so that it never starts an entity.
func unescapeExpr(payload string) string {
	body := strings.TrimLeft(payload, " \t\r\n")
	if rest, ok := strings.CutPrefix(body, "&"); ok {
		return "&" + html.UnescapeString(rest)
	}
	return html.UnescapeString(payload)
}

type exprKind int

const (
	exprPlain exprKind = iota
	exprTriple
	exprComment
)

func (k exprKind) opener() string {
	switch k {
	case exprTriple:
		return "{{{"
	case exprComment:
		return "{{!--"
	}
	return "{{"
}

// scanExpr finds the end of the expression opening at raw[j]. It returns
// the offset just past the closing braces, or -1 if there is none. Plain
// expressions may nest balanced {{...}} pairs, which only partial parameters
// accept.
func scanExpr(raw string, j int) (int, string, exprKind) {
	switch {
	case strings.HasPrefix(raw[j:], "{{{"):
		k := strings.Index(raw[j+3:], "}}}")
		if k < 0 {
			return -1, "", exprTriple
		}
		return j + 3 + k + 3, raw[j+3 : j+3+k], exprTriple
	case strings.HasPrefix(raw[j:], "{{!--"):
		k := strings.Index(raw[j+5:], "--}}")
		if k < 0 {
			return -1, "", exprComment
		}
		return j + 5 + k + 4, "", exprComment
	}
	depth := 1
	for k := j + 2; k+1 < len(raw); {
		switch raw[k : k+2] {
		case "{{":
			depth++
			k += 2
		case "}}":
			depth--
			if depth == 0 {
				return k + 2, raw[j+2 : k], exprPlain
			}
			k += 2
		default:
			k++
		}
	}
	return -1, "", exprPlain
}

// classify turns one expression into fragments. The order of the checks is
// the precedence of the forms: partial, close, open, helper call,
// interpolation.
func (p *parser) classify(payload string, kind exprKind, r diag.Ranging) ([]ast.Fragment, error) {
	if kind == exprComment {
		return nil, nil
	}
	body := strings.TrimSpace(payload)
	if kind == exprTriple {
		path, err := resolvePath(body)
		if err != nil {
			return nil, p.wrap(err, r)
		}
		return []ast.Fragment{&ast.Interp{Ranging: r, Path: ast.RawHTML{Inner: path}}}, nil
	}
	if body == "" {
		return nil, p.errorf(diag.ErrSyntax, r, "empty expression")
	}

	switch body[0] {
	case '!':
		return nil, nil
	case '>':
		ref, err := p.partial(body[1:], r)
		if err != nil {
			return nil, err
		}
		return []ast.Fragment{ref}, nil
	case '/':
		name := strings.TrimSpace(body[1:])
		if !validName(name) {
			return nil, p.errorf(diag.ErrSyntax, r, "bad block name %q", name)
		}
		return []ast.Fragment{&ast.BlockClose{Ranging: r, Name: name}}, nil
	case '#':
		name, args, err := p.call(body[1:], r)
		if err != nil {
			return nil, err
		}
		return []ast.Fragment{&ast.BlockOpen{Ranging: r, Name: name, Args: args}}, nil
	case '&':
		path, err := resolvePath(strings.TrimSpace(body[1:]))
		if err != nil {
			return nil, p.wrap(err, r)
		}
		return []ast.Fragment{&ast.Interp{Ranging: r, Path: ast.RawHTML{Inner: path}}}, nil
	}
	if body == "else" {
		return []ast.Fragment{&ast.Else{Ranging: r}}, nil
	}

	toks, err := splitArgs(body)
	if err != nil {
		return nil, p.wrap(err, r)
	}
	head := toks[0]
	if p.isHelper(head) {
		_, args, err := p.call(body, r)
		if err != nil {
			return nil, err
		}
		return []ast.Fragment{
			&ast.BlockOpen{Ranging: r, Name: head, Args: args, Synthetic: true},
			&ast.Interp{Ranging: r, Path: ast.This{}},
			&ast.BlockClose{Ranging: r, Name: head},
		}, nil
	}
	if len(toks) > 1 {
		if head == "else" {
			return nil, p.errorf(diag.ErrSyntax, r, "{{else}} takes no arguments")
		}
		return nil, p.errorf(rt.ErrUnknownHelper, r, "unknown helper %q", head)
	}
	path, err := resolvePath(head)
	if err != nil {
		return nil, p.wrap(err, r)
	}
	return []ast.Fragment{&ast.Interp{Ranging: r, Path: path}}, nil
}

// call parses "name arg...".
func (p *parser) call(s string, r diag.Ranging) (string, []ast.Arg, error) {
	toks, err := splitArgs(s)
	if err != nil {
		return "", nil, p.wrap(err, r)
	}
	if len(toks) == 0 {
		return "", nil, p.errorf(diag.ErrSyntax, r, "missing helper name")
	}
	if !validName(toks[0]) {
		return "", nil, p.errorf(diag.ErrSyntax, r, "bad helper name %q", toks[0])
	}
	args := make([]ast.Arg, 0, len(toks)-1)
	for _, tok := range toks[1:] {
		arg, err := parseArg(tok)
		if err != nil {
			return "", nil, p.wrap(err, r)
		}
		args = append(args, arg)
	}
	return toks[0], args, nil
}

// partial parses "name [context] [key=value...]".
func (p *parser) partial(s string, r diag.Ranging) (*ast.PartialRef, error) {
	toks, err := splitArgs(s)
	if err != nil {
		return nil, p.wrap(err, r)
	}
	if len(toks) == 0 {
		return nil, p.errorf(diag.ErrSyntax, r, "missing partial name")
	}
	name := toks[0]
	if lit, ok, _ := literal(name); ok {
		quoted, isString := lit.(string)
		if !isString {
			return nil, p.errorf(diag.ErrSyntax, r, "bad partial name %s", name)
		}
		name = quoted
	}
	if !validName(name) {
		return nil, p.errorf(diag.ErrSyntax, r, "bad partial name %q", name)
	}
	ref := &ast.PartialRef{Ranging: r, Name: name}
	for _, tok := range toks[1:] {
		arg, err := parseArg(tok)
		if err != nil {
			return nil, p.wrap(err, r)
		}
		if arg.Name != "" {
			ref.Params = append(ref.Params, arg)
			continue
		}
		if ref.Context != nil || len(ref.Params) > 0 {
			return nil, p.errorf(diag.ErrSyntax, r, "partial %q takes one context argument before its parameters", name)
		}
		if arg.Path == nil {
			return nil, p.errorf(diag.ErrSyntax, r, "partial context must be a path, got %s", tok)
		}
		ref.Context = arg.Path
	}
	return ref, nil
}

func validName(s string) bool {
	return s != "" && !strings.ContainsAny(s, " \t\r\n\"'{}=()<>")
}
