package hbx

import (
	"github.com/kilianc/hbx/internal/hbx/ast"
	"github.com/kilianc/hbx/internal/hbx/compile"
	"github.com/kilianc/hbx/internal/hbx/lower"
	"github.com/kilianc/hbx/internal/hbx/parse"
	"github.com/kilianc/hbx/pkg/vdom"
)

type compileConfig struct {
	name  string
	debug bool
}

// CompileOption configures a single Compile call.
type CompileOption func(*compileConfig)

// Name sets the template name used in error messages.
func Name(name string) CompileOption {
	return func(c *compileConfig) { c.name = name }
}

// Debug logs the Go source of the compiled program to the engine logger.
func Debug() CompileOption {
	return func(c *compileConfig) { c.debug = true }
}

// Template is a compiled template.
type Template struct {
	e    *Engine
	name string
	fn   Fn
}

// Compile compiles src. Every helper and partial src refers to must already
// be registered. Errors are *Error values wrapping one of the Err sentinels.
func (e *Engine) Compile(src string, opts ...CompileOption) (*Template, error) {
	c := compileConfig{name: "[template]"}
	for _, opt := range opts {
		opt(&c)
	}
	return e.compile(src, c, nil)
}

// compile compiles src; extraPartial, when set, accepts partial names that
// are not registered yet.
func (e *Engine) compile(src string, c compileConfig, extraPartial func(string) bool) (*Template, error) {
	env := compile.Env{HasHelper: e.hasHelper, HasPartial: e.hasPartial}
	if extraPartial != nil {
		env.HasPartial = func(name string) bool { return extraPartial(name) || e.hasPartial(name) }
	}
	prog, err := e.build(c.name, src, env)
	if err != nil {
		return nil, err
	}
	if c.debug {
		code, err := lower.File(prog, "main", "Render")
		if err != nil {
			return nil, err
		}
		e.cfg.logger.Printf("hbx: program for %s:\n%s", c.name, code)
	}
	return &Template{e: e, name: c.name, fn: prog.Fn()}, nil
}

func (e *Engine) build(name, src string, env compile.Env) (*compile.Program, error) {
	nodes, err := e.parse(name, src, env.HasHelper)
	if err != nil {
		return nil, err
	}
	return compile.Build(name, src, nodes, env)
}

func (e *Engine) parse(name, src string, isHelper func(string) bool) ([]ast.Node, error) {
	return parse.Parse(name, src, parse.Options{IsHelper: isHelper, KeepWhitespace: e.cfg.keepWhitespace})
}

func (t *Template) Name() string { return t.name }

// Fn returns the render function, e.g. to register the template as a
// partial.
func (t *Template) Fn() Fn { return t.fn }

// Render renders the template and returns its first root node, or nil if
// the template renders nothing.
func (t *Template) Render(data any) (vdom.Node, error) {
	nodes, err := t.RenderNodes(data)
	if err != nil || len(nodes) == 0 {
		return nil, err
	}
	return nodes[0], nil
}

// RenderNodes renders the template and returns all root nodes.
func (t *Template) RenderNodes(data any) ([]vdom.Node, error) {
	return t.e.Render(t.fn, data)
}

// HTML renders the template to an HTML string.
func (t *Template) HTML(data any) (string, error) {
	nodes, err := t.RenderNodes(data)
	if err != nil {
		return "", err
	}
	return vdom.HTML(nodes...)
}
