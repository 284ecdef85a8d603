package hbx

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/kilianc/hbx/internal/hbx/compile"
	"github.com/kilianc/hbx/internal/hbx/lower"
)

// GenerateOptions configures Generate.
type GenerateOptions struct {
	// Name is the template name used in errors and the source comment.
	Name string
	// Package is the package clause of the file, "templates" if empty.
	Package string
	// Func is the name of the generated function, "Render" if empty.
	Func string
}

// Generate compiles src like Compile but returns the program as the source
// of a Go file instead of a function. The generated function has type Fn
// and can be run with Render or registered as a partial.
func (e *Engine) Generate(src string, opts GenerateOptions) ([]byte, error) {
	opts = opts.withDefaults()
	prog, err := e.build(opts.Name, src, compile.Env{HasHelper: e.hasHelper, HasPartial: e.hasPartial})
	if err != nil {
		return nil, err
	}
	return lower.File(prog, opts.Package, opts.Func)
}

func (o GenerateOptions) withDefaults() GenerateOptions {
	if o.Name == "" {
		o.Name = "[template]"
	}
	if o.Package == "" {
		o.Package = "templates"
	}
	if o.Func == "" {
		o.Func = "Render"
	}
	return o
}

// Declarations names what a generated file may refer to when no engine is
// at hand. The built-in helpers are always declared.
type Declarations struct {
	Package  string
	Helpers  []string
	Partials []string
}

// GenerateFile compiles the template at path into a Go file declaring one
// function named after the file (see FuncName).
//
// The result is suitable for writing to "<path>.go" (i.e. "*.hbx.go") and
// checking in.
func GenerateFile(path string, src []byte, decl Declarations) ([]byte, error) {
	e := New()
	env := compile.Env{
		HasHelper:  func(name string) bool { return e.hasHelper(name) || contains(decl.Helpers, name) },
		HasPartial: func(name string) bool { return contains(decl.Partials, name) },
	}
	prog, err := e.build(path, string(src), env)
	if err != nil {
		return nil, err
	}
	pkg := decl.Package
	if pkg == "" {
		pkg = filepath.Base(filepath.Dir(path))
	}
	return lower.File(prog, pkg, FuncName(path))
}

// FuncName returns the exported Go name of the template at path:
// "user-card.hbx" becomes "UserCard".
func FuncName(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	var sb strings.Builder
	upper := true
	for _, r := range base {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		sb.WriteRune(r)
	}
	name := sb.String()
	if name == "" || unicode.IsDigit([]rune(name)[0]) {
		name = "Template" + name
	}
	return name
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
