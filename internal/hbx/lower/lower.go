// Package lower prints a compiled program as Go source built from the
// combinators of package rt.
package lower

import (
	"bytes"
	"fmt"
	goast "go/ast"
	"go/printer"
	gotoken "go/token"
	"strconv"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/kilianc/hbx/internal/hbx/compile"
	"github.com/kilianc/hbx/pkg/hbx/rt"
)

// Header starts every generated file.
const Header = "// Code generated by hbx. DO NOT EDIT."

// File returns a formatted Go file in package pkg declaring
//
//	func funcName(c *rt.Ctx, s *rt.Scope) []vdom.Node
//
// which renders prog.
func File(prog *compile.Program, pkg, funcName string) ([]byte, error) {
	decl, err := Func(prog, funcName)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n// Source: %s\n\npackage %s\n\n", Header, prog.Name, pkg)
	buf.WriteString("import (\n\t\"github.com/kilianc/hbx/pkg/hbx/rt\"\n\t\"github.com/kilianc/hbx/pkg/vdom\"\n)\n\n")
	if err := printer.Fprint(&buf, gotoken.NewFileSet(), decl); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	out, err := imports.Process(funcName+".go", buf.Bytes(), &imports.Options{Comments: true, TabIndent: true, TabWidth: 8, FormatOnly: true})
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", funcName, err)
	}
	return out, nil
}

// Func lowers prog to a function declaration.
func Func(prog *compile.Program, funcName string) (*goast.FuncDecl, error) {
	if !gotoken.IsIdentifier(funcName) {
		return nil, fmt.Errorf("invalid function name %q", funcName)
	}
	body, err := lowerSeq(prog.Ops)
	if err != nil {
		return nil, err
	}
	lit := fnLit(body)
	return &goast.FuncDecl{Name: goast.NewIdent(funcName), Type: lit.Type, Body: lit.Body}, nil
}

func lowerSeq(ops []compile.Op) (goast.Expr, error) {
	if len(ops) == 0 {
		return goast.NewIdent("nil"), nil
	}
	if len(ops) == 1 {
		return lowerOp(ops[0])
	}
	var elts []goast.Expr
	for _, op := range ops {
		ex, err := lowerOp(op)
		if err != nil {
			return nil, err
		}
		elts = append(elts, ex)
	}
	return call(rtSel("Seq"), elts...), nil
}

func lowerOp(op compile.Op) (goast.Expr, error) {
	switch t := op.(type) {
	case *compile.Lit:
		return call(rtSel("Text"), strLit(t.Value)), nil
	case *compile.Interp:
		return call(rtSel("Interp"), ident("s"), lowerPath(t.Path)), nil
	case *compile.Elem:
		return lowerElem(t)
	case *compile.Block:
		return lowerBlock(t)
	case *compile.Partial:
		return lowerPartial(t)
	default:
		return nil, fmt.Errorf("unsupported op type %T", op)
	}
}

func lowerElem(e *compile.Elem) (goast.Expr, error) {
	name, err := lowerText(e.Name)
	if err != nil {
		return nil, err
	}
	var attrs goast.Expr = ident("nil")
	if len(e.Attrs) > 0 {
		var elts []goast.Expr
		for _, a := range e.Attrs {
			v, err := lowerText(a.Value)
			if err != nil {
				return nil, err
			}
			elts = append(elts, call(rtSel("Attr"), strLit(a.Key), v))
		}
		attrs = &goast.CompositeLit{
			Type: &goast.ArrayType{Elt: sel("vdom", "Attr")},
			Elts: elts,
		}
	}
	children, err := lowerSeq(e.Children)
	if err != nil {
		return nil, err
	}
	return call(rtSel("Element"), name, attrs, children), nil
}

// lowerText lowers ops whose output is used as a string. A lone literal is
// emitted as a string literal.
func lowerText(ops []compile.Op) (goast.Expr, error) {
	switch {
	case len(ops) == 0:
		return strLit(""), nil
	case len(ops) == 1:
		if l, ok := ops[0].(*compile.Lit); ok {
			return strLit(l.Value), nil
		}
	}
	ex, err := lowerSeq(ops)
	if err != nil {
		return nil, err
	}
	return call(rtSel("Flatten"), ex), nil
}

func lowerBlock(b *compile.Block) (goast.Expr, error) {
	var pos goast.Expr = ident("nil")
	if len(b.Args) > 0 {
		var elts []goast.Expr
		for _, a := range b.Args {
			elts = append(elts, lowerArg(a))
		}
		pos = &goast.CompositeLit{Type: &goast.ArrayType{Elt: rtSel("Value")}, Elts: elts}
	}
	args := call(rtSel("NewArgs"), append([]goast.Expr{pos}, lowerNamed(b.Named)...)...)

	body, err := lowerSeq(b.Body)
	if err != nil {
		return nil, err
	}
	var inverse goast.Expr = ident("nil")
	if b.HasElse {
		inv, err := lowerSeq(b.Inverse)
		if err != nil {
			return nil, err
		}
		inverse = fnLit(inv)
	}
	return call(rtSel("Block"), ident("c"), ident("s"), strLit(b.Name), args, fnLit(body), inverse), nil
}

func lowerPartial(p *compile.Partial) (goast.Expr, error) {
	base := call(sel("s", "Data"))
	if p.Context != nil {
		base = call(sel("s", "Lookup"), lowerPath(*p.Context))
	}
	args := append([]goast.Expr{ident("c"), strLit(p.Name), base}, lowerNamed(p.Params)...)
	return call(rtSel("Partial"), args...), nil
}

func lowerNamed(named []compile.NamedArgOp) []goast.Expr {
	var out []goast.Expr
	for _, a := range named {
		out = append(out, call(rtSel("Named"), strLit(a.Name), lowerArg(a.ArgOp)))
	}
	return out
}

func lowerArg(a compile.ArgOp) goast.Expr {
	if a.Path != nil {
		return call(sel("s", "Lookup"), lowerPath(*a.Path))
	}
	switch v := a.Lit.(type) {
	case nil:
		return rtSel("Null")
	case string:
		return call(rtSel("ValueOf"), strLit(v))
	case bool:
		return call(rtSel("ValueOf"), ident(strconv.FormatBool(v)))
	case int64:
		return call(rtSel("ValueOf"), &goast.BasicLit{Kind: gotoken.INT, Value: strconv.FormatInt(v, 10)})
	case float64:
		// A float literal must not read back as an integer constant.
		lit := strconv.FormatFloat(v, 'g', -1, 64)
		if !strings.ContainsAny(lit, ".e") {
			lit += ".0"
		}
		return call(rtSel("ValueOf"), &goast.BasicLit{Kind: gotoken.FLOAT, Value: lit})
	}
	return call(rtSel("ValueOf"), strLit(fmt.Sprint(a.Lit)))
}

// lowerPath spells p with the path constructors of package rt.
func lowerPath(p rt.Path) goast.Expr {
	var segs []goast.Expr
	for _, s := range p.Segments {
		segs = append(segs, strLit(s))
	}
	var ex goast.Expr
	switch {
	case p.Meta != "":
		ex = call(rtSel("Meta"), append([]goast.Expr{strLit(p.Meta)}, segs...)...)
	case len(segs) == 0:
		ex = call(rtSel("This"))
	default:
		ex = call(rtSel("Dotted"), segs...)
	}
	if p.Hops > 0 {
		ex = call(rtSel("Up"), &goast.BasicLit{Kind: gotoken.INT, Value: strconv.Itoa(p.Hops)}, ex)
	}
	if p.Unescaped {
		ex = call(&goast.SelectorExpr{X: ex, Sel: ident("Raw")})
	}
	return ex
}

// fnLit wraps result in func(c *rt.Ctx, s *rt.Scope) []vdom.Node.
func fnLit(result goast.Expr) *goast.FuncLit {
	return &goast.FuncLit{
		Type: &goast.FuncType{
			Params: &goast.FieldList{List: []*goast.Field{
				{Names: []*goast.Ident{ident("c")}, Type: &goast.StarExpr{X: rtSel("Ctx")}},
				{Names: []*goast.Ident{ident("s")}, Type: &goast.StarExpr{X: rtSel("Scope")}},
			}},
			Results: &goast.FieldList{List: []*goast.Field{
				{Type: &goast.ArrayType{Elt: sel("vdom", "Node")}},
			}},
		},
		Body: &goast.BlockStmt{List: []goast.Stmt{
			&goast.ReturnStmt{Results: []goast.Expr{result}},
		}},
	}
}

func call(fun goast.Expr, args ...goast.Expr) *goast.CallExpr {
	return &goast.CallExpr{Fun: fun, Args: args}
}

func ident(name string) *goast.Ident { return goast.NewIdent(name) }

func sel(x, name string) *goast.SelectorExpr {
	return &goast.SelectorExpr{X: ident(x), Sel: ident(name)}
}

func rtSel(name string) *goast.SelectorExpr { return sel("rt", name) }

func strLit(s string) goast.Expr {
	return &goast.BasicLit{Kind: gotoken.STRING, Value: strconv.Quote(s)}
}
