package vdom

import "testing"

func TestHTML(t *testing.T) {
	tests := []struct {
		name  string
		nodes []Node
		want  string
	}{
		{"text", []Node{Text{"Hello world"}}, "Hello world"},
		{"escaped text", []Node{Text{"a < b & c"}}, "a &lt; b &amp; c"},
		{"raw", []Node{Raw{"<h1>Hi</h1>"}}, "<h1>Hi</h1>"},
		{
			"element with attributes",
			[]Node{Element{Tag: "div", Attrs: []Attr{{"class", "example"}}, Children: []Node{Text{"Hello world"}}}},
			`<div class="example">Hello world</div>`,
		},
		{
			"nested",
			[]Node{Element{Tag: "ul", Children: []Node{
				Element{Tag: "li", Children: []Node{Text{"a"}}},
				Element{Tag: "li", Children: []Node{Text{"b"}}},
			}}},
			"<ul><li>a</li><li>b</li></ul>",
		},
		{"void", []Node{Element{Tag: "br"}}, "<br>"},
		{"siblings", []Node{Element{Tag: "p"}, Text{"x"}}, "<p></p>x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HTML(tt.nodes...)
			if err != nil {
				t.Fatalf("HTML: %v", err)
			}
			if got != tt.want {
				t.Errorf("HTML() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextContent(t *testing.T) {
	tree := Element{Tag: "p", Children: []Node{
		Text{"My name is "},
		Element{Tag: "b", Children: []Node{Text{"Foo"}}},
		Raw{"<i>!</i>"},
	}}
	if got, want := TextContent(tree), "My name is Foo<i>!</i>"; got != want {
		t.Errorf("TextContent() = %q, want %q", got, want)
	}
}

func TestElementAttr(t *testing.T) {
	e := Element{Tag: "a", Attrs: []Attr{{"href", "/x"}}}
	if v, ok := e.Attr("href"); !ok || v != "/x" {
		t.Errorf("Attr(href) = %q, %v", v, ok)
	}
	if _, ok := e.Attr("id"); ok {
		t.Errorf("Attr(id) reported present")
	}
}
