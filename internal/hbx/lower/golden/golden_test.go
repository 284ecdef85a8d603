package golden_test

import (
	"go/scanner"
	gotoken "go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kilianc/hbx/internal/hbx/lower/golden"
	"github.com/kilianc/hbx/pkg/hbx"
	"github.com/kilianc/hbx/pkg/vdom"
)

// dir is the directory of this package relative to the module root, as
// the generator names it in the files it writes.
const dir = "internal/hbx/lower/golden"

var helpers = []string{"shout"}

var generated = map[string]hbx.Fn{
	"page":   golden.Page,
	"footer": golden.Footer,
}

func shout(args hbx.Args, _ *hbx.Scope, _ hbx.Body) (any, error) {
	return strings.ToUpper(args.At(0).String()), nil
}

type sources map[string]string

func (s sources) ForEachPartial(f func(name, src string) error) error {
	for name, src := range s {
		if err := f(name, src); err != nil {
			return err
		}
	}
	return nil
}

func readTemplates(t *testing.T) sources {
	t.Helper()
	paths, err := filepath.Glob("*.hbx")
	if err != nil {
		t.Fatal(err)
	}
	out := sources{}
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			t.Fatal(err)
		}
		out[strings.TrimSuffix(p, ".hbx")] = string(b)
	}
	if len(out) != len(generated) {
		t.Fatalf("found %d templates, want %d", len(out), len(generated))
	}
	return out
}

// compiled renders with partials compiled from source, generatedEngine with
// the generated partials.
func engines(t *testing.T, srcs sources) (compiled, generatedEngine *hbx.Engine) {
	t.Helper()
	compiled = hbx.New()
	compiled.RegisterHelper("shout", shout)
	if err := compiled.LoadPartials(srcs); err != nil {
		t.Fatalf("LoadPartials: %v", err)
	}
	generatedEngine = hbx.New()
	generatedEngine.RegisterHelper("shout", shout)
	for name, fn := range generated {
		generatedEngine.RegisterPartial(name, fn)
	}
	return compiled, generatedEngine
}

func TestGeneratedMatchesCompiled(t *testing.T) {
	srcs := readTemplates(t)
	compiled, gen := engines(t, srcs)

	data := map[string]any{
		"full": map[string]any{
			"kind":  "wide",
			"title": "Fruit",
			"items": []map[string]any{
				{"name": "apple", "badge": "<b>new</b>"},
				{"name": "pear"},
			},
			"owner": map[string]any{"name": "Ann", "active": false},
			"meta":  map[string]any{"label": "ignored", "note": false},
		},
		"active owner": map[string]any{
			"title": "Veg",
			"items": []string{},
			"owner": map[string]any{"name": "Bo", "active": true},
		},
		"empty": map[string]any{},
		"nil":   nil,
	}

	for name, fn := range generated {
		tpl, err := compiled.Compile(srcs[name], hbx.Name(name))
		if err != nil {
			t.Fatalf("Compile(%s): %v", name, err)
		}
		for dname, d := range data {
			t.Run(name+"/"+dname, func(t *testing.T) {
				want, err := tpl.RenderNodes(d)
				if err != nil {
					t.Fatalf("RenderNodes: %v", err)
				}
				got, err := gen.Render(fn, d)
				if err != nil {
					t.Fatalf("Render: %v", err)
				}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("generated and compiled output differ (-compiled +generated):\n%s", diff)
				}
			})
		}
	}

	nodes, err := gen.Render(golden.Page, data["full"])
	if err != nil {
		t.Fatal(err)
	}
	html, err := vdom.HTML(nodes...)
	if err != nil {
		t.Fatal(err)
	}
	want := `<section class="page wide" id="main"><h1>FRUIT</h1><ul>` +
		`<li class="first">0. apple of Fruit<b>new</b></li><li class="">1. pear of Fruit</li></ul>` +
		`<p>Ann (away)</p><footer class="noted">Total: 2</footer></section>`
	if html != want {
		t.Errorf("Page rendered\n%s\nwant\n%s", html, want)
	}
}

// TestGeneratedUpToDate regenerates every template and compares the tokens
// of the result with the checked-in file, so that layout changes of the Go
// formatter alone do not count as stale. Run go generate to refresh.
func TestGeneratedUpToDate(t *testing.T) {
	srcs := readTemplates(t)
	var partials []string
	for name := range srcs {
		partials = append(partials, name)
	}
	for name, src := range srcs {
		t.Run(name, func(t *testing.T) {
			want, err := hbx.GenerateFile(dir+"/"+name+".hbx", []byte(src), hbx.Declarations{Helpers: helpers, Partials: partials})
			if err != nil {
				t.Fatalf("GenerateFile: %v", err)
			}
			got, err := os.ReadFile(name + ".hbx.go")
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tokens(t, want), tokens(t, got)); diff != "" {
				t.Errorf("%s.hbx.go is stale, run go generate (-want +got):\n%s", name, diff)
			}
		})
	}
}

func tokens(t *testing.T, src []byte) []string {
	t.Helper()
	fset := gotoken.NewFileSet()
	var s scanner.Scanner
	s.Init(fset.AddFile("", fset.Base(), len(src)), src, func(pos gotoken.Position, msg string) {
		t.Errorf("%s: %s", pos, msg)
	}, scanner.ScanComments)
	var out []string
	for {
		_, tok, lit := s.Scan()
		switch tok {
		case gotoken.EOF:
			return out
		case gotoken.SEMICOLON:
			out = append(out, ";")
		default:
			out = append(out, tok.String()+" "+lit)
		}
	}
}
