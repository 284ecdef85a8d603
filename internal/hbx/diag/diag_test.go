package diag

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestContextShow(t *testing.T) {
	SetColor(false)
	defer SetColor(true)
	culpritLineBegin, culpritLineEnd = "<", ">"
	defer func() { culpritLineBegin, culpritLineEnd = "", "" }()

	tests := []struct {
		name        string
		ctx         *Context
		wantCompact string
	}{
		{
			"single line",
			parseContext("<p>{{#if x}}</p>", "{{", "}}", true),
			"[test], line 1: <p><{{#if x}}></p>",
		},
		{
			"multi line",
			parseContext("<p>{{#if\nx}}</p>", "{{", "}}", true),
			"[test], line 1-2: <p><{{#if>\n_                  <x}}></p>",
		},
		{
			"empty culprit",
			parseContext("<p>x</p>", "x", "x", false),
			"[test], line 1: <p><^>x</p>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ctx.ShowCompact("_"); got != tt.wantCompact {
				t.Errorf("ShowCompact() = %q, want %q", got, tt.wantCompact)
			}
		})
	}
}

func TestContextBadPosition(t *testing.T) {
	c := NewContext("[test]", "abc", Ranging{2, 10})
	if got := c.ShowCompact(""); !strings.Contains(got, "invalid position 2-10") {
		t.Errorf("ShowCompact() = %q, want invalid position", got)
	}
	c = NewContext("[test]", "abc", Ranging{-1, -1})
	if got := c.ShowCompact(""); got != "[test], unknown position" {
		t.Errorf("ShowCompact() = %q", got)
	}
}

func TestError(t *testing.T) {
	err := Errorf(ErrUnbalanced, "page", "<p>{{/if}}</p>", Ranging{3, 10}, "unexpected {{/%s}}", "if")
	if got, want := err.Error(), "compilation error: 3-10 in page: unexpected {{/if}}"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrUnbalanced) {
		t.Errorf("errors.Is(err, ErrUnbalanced) = false")
	}
	if r := err.Range(); r != (Ranging{3, 10}) {
		t.Errorf("Range() = %v", r)
	}

	SetColor(false)
	defer SetColor(true)
	want := "Compilation error: unexpected {{/if}}\npage, line 1: <p>{{/if}}</p>"
	if got := err.Show(""); got != want {
		t.Errorf("Show() = %q, want %q", got, want)
	}

	var buf bytes.Buffer
	ShowError(&buf, fmt.Errorf("compile: %w", err))
	if buf.String() != want+"\n" {
		t.Errorf("ShowError wrote %q", buf.String())
	}
	buf.Reset()
	ShowError(&buf, errors.New("plain"))
	if buf.String() != "plain\n" {
		t.Errorf("ShowError wrote %q", buf.String())
	}
}

// parseContext builds a Context over s spanning from the first starter to the
// first ender.
func parseContext(s, starter, ender string, endAfter bool) *Context {
	end := strings.Index(s, ender)
	if endAfter {
		end += len(ender)
	}
	return NewContext("[test]", s, Ranging{strings.Index(s, starter), end})
}
