// Package hbx compiles handlebars-flavoured HTML templates into functions
// that build vdom element trees.
//
// An Engine owns the helper and partial registries that templates are
// checked against when they are compiled and dispatch through when they are
// rendered:
//
//	e := hbx.New()
//	tpl, err := e.Compile(`<p>Hello {{name}}</p>`)
//	if err != nil {
//		return err
//	}
//	node, err := tpl.Render(map[string]any{"name": "World"})
package hbx

import (
	"fmt"
	"io"
	"log"
	"sort"
	"sync"

	"github.com/kilianc/hbx/pkg/hbx/rt"
	"github.com/kilianc/hbx/pkg/vdom"
)

type (
	Helper = rt.Helper
	Fn     = rt.Fn
	Args   = rt.Args
	Body   = rt.Body
	Scope  = rt.Scope
	Value  = rt.Value
	HTML   = rt.HTML
)

// discard is a logger that ignores everything.
var discard = log.New(io.Discard, "", 0)

type config struct {
	logger         *log.Logger
	maxDepth       int
	keepWhitespace bool
}

// Option configures an Engine.
type Option func(*config)

// WithLogger sets the logger used for debug output and registry events.
func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxDepth bounds partial nesting during a render. n <= 0 removes the
// bound.
func WithMaxDepth(n int) Option {
	return func(c *config) { c.maxDepth = n }
}

// KeepWhitespace keeps newlines, tabs and whitespace-only text in templates.
func KeepWhitespace() Option {
	return func(c *config) { c.keepWhitespace = true }
}

// Engine holds helper and partial registries. It is safe for concurrent use;
// registering while other goroutines compile or render is allowed.
type Engine struct {
	cfg config

	mu       sync.RWMutex
	helpers  map[string]rt.Helper
	partials map[string]rt.Fn
}

// New returns an Engine with the built-in helpers if, unless, each and with.
func New(opts ...Option) *Engine {
	c := config{logger: discard, maxDepth: rt.DefaultMaxDepth}
	for _, opt := range opts {
		opt(&c)
	}
	return &Engine{cfg: c, helpers: rt.Builtins(), partials: map[string]rt.Fn{}}
}

// RegisterHelper registers h under name, replacing any helper of that name.
// Templates compiled afterwards may call it.
func (e *Engine) RegisterHelper(name string, h Helper) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.helpers[name] = h
}

// RegisterPartial registers fn under name, replacing any partial of that
// name.
func (e *Engine) RegisterPartial(name string, fn Fn) {
	e.mu.Lock()
	e.partials[name] = fn
	e.mu.Unlock()
	e.cfg.logger.Printf("hbx: registered partial %q", name)
}

// RegisterPartialSource compiles src and registers it as the partial name.
func (e *Engine) RegisterPartialSource(name, src string) error {
	tpl, err := e.Compile(src, Name(name))
	if err != nil {
		return err
	}
	e.RegisterPartial(name, tpl.Fn())
	return nil
}

// PartialSource enumerates partial templates by name.
type PartialSource interface {
	ForEachPartial(f func(name, src string) error) error
}

// LoadPartials compiles and registers every partial of src. Partials in src
// may refer to each other. Nothing is registered unless all of them compile.
func (e *Engine) LoadPartials(src PartialSource) error {
	sources := map[string]string{}
	if err := src.ForEachPartial(func(name, src string) error {
		sources[name] = src
		return nil
	}); err != nil {
		return fmt.Errorf("error loading partials: %w", err)
	}
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	fns := make(map[string]rt.Fn, len(sources))
	for _, name := range names {
		tpl, err := e.compile(sources[name], compileConfig{name: name}, func(n string) bool {
			_, ok := sources[n]
			return ok
		})
		if err != nil {
			return err
		}
		fns[name] = tpl.Fn()
	}

	e.mu.Lock()
	for name, fn := range fns {
		e.partials[name] = fn
	}
	e.mu.Unlock()
	e.cfg.logger.Printf("hbx: loaded %d partials", len(fns))
	return nil
}

// Helper implements rt.Registry.
func (e *Engine) Helper(name string) (Helper, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	h, ok := e.helpers[name]
	return h, ok
}

// Partial implements rt.Registry.
func (e *Engine) Partial(name string) (Fn, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn, ok := e.partials[name]
	return fn, ok
}

func (e *Engine) hasHelper(name string) bool {
	_, ok := e.Helper(name)
	return ok
}

func (e *Engine) hasPartial(name string) bool {
	_, ok := e.Partial(name)
	return ok
}

// Render runs fn against data. fn may be a compiled template, a registered
// partial or a function generated by Generate.
func (e *Engine) Render(fn Fn, data any) ([]vdom.Node, error) {
	return rt.Run(rt.NewCtx(e, e.cfg.maxDepth), fn, data)
}
