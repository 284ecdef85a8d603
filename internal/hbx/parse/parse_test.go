package parse

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/kilianc/hbx/internal/hbx/ast"
	"github.com/kilianc/hbx/internal/hbx/diag"
	"github.com/kilianc/hbx/pkg/hbx/rt"
)

var ignoreRanges = cmpopts.IgnoreTypes(diag.Ranging{})

func lit(s string) *ast.Literal { return &ast.Literal{Value: s} }

func dotted(segs ...string) *ast.Interp {
	return &ast.Interp{Path: ast.Dotted{Segments: segs}}
}

func el(name string, attrs []ast.Attr, children ...ast.Node) *ast.Element {
	return &ast.Element{Name: []ast.Fragment{lit(name)}, Attrs: attrs, Children: children}
}

func text(frags ...ast.Fragment) *ast.Text { return &ast.Text{Fragments: frags} }

func isHelper(names ...string) func(string) bool {
	return func(name string) bool {
		for _, n := range names {
			if n == name {
				return true
			}
		}
		return false
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts Options
		want []ast.Node
	}{
		{
			name: "text and attribute interpolation",
			src:  `<div class="a {{b}}">Hello {{name}}</div>`,
			want: []ast.Node{
				el("div", []ast.Attr{{Key: "class", Value: []ast.Fragment{lit("a "), dotted("b")}}},
					text(lit("Hello "), dotted("name"))),
			},
		},
		{
			name: "void and self-closing elements",
			src:  `<div><br>x<span/>y</div>`,
			want: []ast.Node{
				el("div", nil, el("br", nil), text(lit("x")), el("span", nil), text(lit("y"))),
			},
		},
		{
			name: "closing past the root",
			src:  `<p>a</p></div>`,
			want: []ast.Node{el("p", nil, text(lit("a")))},
		},
		{
			name: "siblings at top level",
			src:  `<p></p><p></p>`,
			want: []ast.Node{el("p", nil), el("p", nil)},
		},
		{
			name: "whitespace compaction",
			src:  "<ul>\n  {{#each xs}}\n  <li>{{this}}</li>\n  {{/each}}\n</ul>",
			want: []ast.Node{
				el("ul", nil,
					text(&ast.BlockOpen{Name: "each", Args: []ast.Arg{{Path: ast.Dotted{Segments: []string{"xs"}}}}}),
					el("li", nil, text(&ast.Interp{Path: ast.This{}})),
					text(&ast.BlockClose{Name: "each"})),
			},
		},
		{
			name: "keep whitespace",
			src:  "<p>\n\t{{a}}</p>",
			opts: Options{KeepWhitespace: true},
			want: []ast.Node{el("p", nil, text(lit("\n\t"), dotted("a")))},
		},
		{
			name: "entities decoded in text",
			src:  `<p>a &amp; {{b}}</p>`,
			want: []ast.Node{el("p", nil, text(lit("a & "), dotted("b")))},
		},
		{
			name: "entities decoded in expressions",
			src:  `<p title='{{#say "A &amp; B"}}'>{{> nav name="A &amp; B"}}</p>`,
			want: []ast.Node{el("p",
				[]ast.Attr{{Key: "title", Value: []ast.Fragment{&ast.BlockOpen{Name: "say", Args: []ast.Arg{{Lit: "A & B"}}}}}},
				text(&ast.PartialRef{Name: "nav", Params: []ast.Arg{{Name: "name", Lit: "A & B"}}}),
			)},
		},
		{
			name: "raw marker is not an entity",
			src:  `<p>{{&not}}{{& amp}}</p>`,
			want: []ast.Node{el("p", nil, text(
				&ast.Interp{Path: ast.RawHTML{Inner: ast.Dotted{Segments: []string{"not"}}}},
				&ast.Interp{Path: ast.RawHTML{Inner: ast.Dotted{Segments: []string{"amp"}}}},
			))},
		},
		{
			name: "non-block helper call",
			src:  `<p>{{loud name}}</p>`,
			opts: Options{IsHelper: isHelper("loud")},
			want: []ast.Node{el("p", nil, text(
				&ast.BlockOpen{Name: "loud", Args: []ast.Arg{{Path: ast.Dotted{Segments: []string{"name"}}}}, Synthetic: true},
				&ast.Interp{Path: ast.This{}},
				&ast.BlockClose{Name: "loud"},
			))},
		},
		{
			name: "expression in tag name keeps case",
			src:  `<x-{{Kind}}></x-{{Kind}}>`,
			want: []ast.Node{&ast.Element{Name: []ast.Fragment{lit("x-"), dotted("Kind")}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse("[test]", tt.src, tt.opts)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if diff := cmp.Diff(tt.want, got, ignoreRanges); diff != "" {
				t.Errorf("Parse (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src       string
		wantErr   error
		wantRange diag.Ranging
	}{
		{`<p>{{}}</p>`, diag.ErrSyntax, diag.Ranging{From: 3, To: 7}},
		{`<p>{{a</p>`, diag.ErrSyntax, diag.Ranging{From: 3, To: 6}},
		{`<p>{{{a}}</p>`, diag.ErrSyntax, diag.Ranging{From: 3, To: 9}},
		{`<p>{{a..b}}</p>`, diag.ErrSyntax, diag.Ranging{From: 3, To: 11}},
		{`<p>{{foo bar}}</p>`, rt.ErrUnknownHelper, diag.Ranging{From: 3, To: 14}},
		{`<p>{{#if "x}}</p>`, diag.ErrSyntax, diag.Ranging{From: 3, To: 13}},
		{`<p>{{else x}}</p>`, diag.ErrSyntax, diag.Ranging{From: 3, To: 13}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Parse("[test]", tt.src, Options{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse error = %v, want %v", err, tt.wantErr)
			}
			var de *diag.Error
			if !errors.As(err, &de) {
				t.Fatalf("Parse error %T is not a *diag.Error", err)
			}
			if got := de.Range(); got != tt.wantRange {
				t.Errorf("range = %v, want %v", got, tt.wantRange)
			}
		})
	}
}

// segmentText segments text as a literal run, with ranges relative to text.
func segmentText(name, text string, opts Options) ([]ast.Fragment, error) {
	p := &parser{name: name, src: text, opts: opts}
	return p.segment(text, func(from, to int) diag.Ranging { return diag.Ranging{From: from, To: to} }, false)
}

func TestSegment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []ast.Fragment
	}{
		{"literal only", "a }} b", []ast.Fragment{lit("a }} b")}},
		{"adjacent", "{{a}}{{b}}", []ast.Fragment{dotted("a"), dotted("b")}},
		{"raw triple", "{{{a.b}}}", []ast.Fragment{
			&ast.Interp{Path: ast.RawHTML{Inner: ast.Dotted{Segments: []string{"a", "b"}}}},
		}},
		{"raw ampersand", "{{& a}}", []ast.Fragment{
			&ast.Interp{Path: ast.RawHTML{Inner: ast.Dotted{Segments: []string{"a"}}}},
		}},
		{"comments", "a{{! x }}b{{!-- {{y}} --}}c", []ast.Fragment{lit("a"), lit("b"), lit("c")}},
		{"block with literals", `{{#each xs "sep" 2 1.5 true null k=v}}`, []ast.Fragment{
			&ast.BlockOpen{Name: "each", Args: []ast.Arg{
				{Path: ast.Dotted{Segments: []string{"xs"}}},
				{Lit: "sep"},
				{Lit: int64(2)},
				{Lit: 1.5},
				{Lit: true},
				{Lit: nil},
				{Name: "k", Path: ast.Dotted{Segments: []string{"v"}}},
			}},
		}},
		{"else and close", "{{ else }}{{/if}}", []ast.Fragment{&ast.Else{}, &ast.BlockClose{Name: "if"}}},
		{"parent path", "{{../../name}}", []ast.Fragment{
			&ast.Interp{Path: ast.Parent{Hops: 2, Tail: ast.Dotted{Segments: []string{"name"}}}},
		}},
		{"partial", `{{> card item title="Hi" body={{html}}}}`, []ast.Fragment{
			&ast.PartialRef{
				Name:    "card",
				Context: ast.Dotted{Segments: []string{"item"}},
				Params: []ast.Arg{
					{Name: "title", Lit: "Hi"},
					{Name: "body", Path: ast.RawHTML{Inner: ast.Dotted{Segments: []string{"html"}}}},
				},
			},
		}},
		{"partial quoted name", `{{> "my-card"}}`, []ast.Fragment{&ast.PartialRef{Name: "my-card"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := segmentText("[test]", tt.text, Options{})
			if err != nil {
				t.Fatalf("segmentText: %v", err)
			}
			if diff := cmp.Diff(tt.want, got, ignoreRanges); diff != "" {
				t.Errorf("segmentText (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSegmentPartialErrors(t *testing.T) {
	for _, text := range []string{
		`{{>}}`,
		`{{> 12}}`,
		`{{> p a b}}`,
		`{{> p k=v a}}`,
		`{{> p "ctx"}}`,
		`{{> p k={{a}}`,
	} {
		if _, err := segmentText("[test]", text, Options{}); !errors.Is(err, diag.ErrSyntax) {
			t.Errorf("segmentText(%q) error = %v, want ErrSyntax", text, err)
		}
	}
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		text string
		want ast.PathExpr
	}{
		{"this", ast.This{}},
		{".", ast.This{}},
		{"a.b", ast.Dotted{Segments: []string{"a", "b"}}},
		{"this.a", ast.Dotted{Segments: []string{"a"}}},
		{"./a", ast.Dotted{Segments: []string{"a"}}},
		{"@index", ast.Meta{Name: "index", Tail: []string{}}},
		{"@root.a.b", ast.Meta{Name: "root", Tail: []string{"a", "b"}}},
		{"../a", ast.Parent{Hops: 1, Tail: ast.Dotted{Segments: []string{"a"}}}},
		{"../../this", ast.Parent{Hops: 2, Tail: ast.This{}}},
		{"..", ast.Parent{Hops: 1, Tail: ast.This{}}},
		{"../@index", ast.Parent{Hops: 1, Tail: ast.Meta{Name: "index", Tail: []string{}}}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := resolvePath(tt.text)
			if err != nil {
				t.Fatalf("resolvePath: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("resolvePath (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolvePathErrors(t *testing.T) {
	for _, text := range []string{"", "> p", "a..b", "a.", "@", "a/b"} {
		if _, err := resolvePath(text); !errors.Is(err, diag.ErrSyntax) {
			t.Errorf("resolvePath(%q) error = %v, want ErrSyntax", text, err)
		}
	}
}

func TestCheckDepth(t *testing.T) {
	tests := []struct {
		text    string
		depth   int
		wantErr bool
	}{
		{"a", 0, false},
		{"../a", 1, false},
		{"../../this", 2, false},
		{"../a", 0, true},
		{"../../a", 1, true},
		{"@root.a", 0, false},
	}
	for _, tt := range tests {
		p, err := resolvePath(tt.text)
		if err != nil {
			t.Fatalf("resolvePath(%q): %v", tt.text, err)
		}
		err = CheckDepth(p, tt.depth)
		if got := errors.Is(err, diag.ErrScopeDepth); got != tt.wantErr {
			t.Errorf("CheckDepth(%q, %d) = %v, want error %v", tt.text, tt.depth, err, tt.wantErr)
		}
	}
}

func TestSplitArgs(t *testing.T) {
	got, err := splitArgs(`a "b c" k='d e' h={{x y}}  'it\'s'`)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a", `"b c"`, "k='d e'", "h={{x y}}", `'it\'s'`}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("splitArgs (-want +got):\n%s", diff)
	}
}

func TestLiteral(t *testing.T) {
	tests := []struct {
		tok    string
		want   any
		wantOK bool
	}{
		{`"x"`, "x", true},
		{`'it\'s'`, "it's", true},
		{`'say "hi"'`, `say "hi"`, true},
		{"12", int64(12), true},
		{"-1.5", -1.5, true},
		{"false", false, true},
		{"undefined", nil, true},
		{"name", nil, false},
		{"1e999", nil, false},
	}
	for _, tt := range tests {
		got, ok, err := literal(tt.tok)
		if err != nil || ok != tt.wantOK || got != tt.want {
			t.Errorf("literal(%q) = %v, %v, %v; want %v, %v", tt.tok, got, ok, err, tt.want, tt.wantOK)
		}
	}
}
