package parse

import (
	"fmt"
	"strings"

	"github.com/kilianc/hbx/internal/hbx/ast"
	"github.com/kilianc/hbx/internal/hbx/diag"
)

// CheckDepth reports an error wrapping diag.ErrScopeDepth when p climbs
// more scopes than the depth block scopes enclosing it.
func CheckDepth(p ast.PathExpr, depth int) error {
	if hops := ast.Hops(p); hops > depth {
		return fmt.Errorf("%w: path climbs %d scopes but only %d blocks enclose it", diag.ErrScopeDepth, hops, depth)
	}
	return nil
}

// resolvePath turns path text into a PathExpr. Partial references are
// dispatched by the segmenter before a path is resolved, so a leading ">"
// is rejected here.
func resolvePath(text string) (ast.PathExpr, error) {
	switch {
	case text == "":
		return nil, fmt.Errorf("%w: empty path", diag.ErrSyntax)
	case text == "this" || text == ".":
		return ast.This{}, nil
	case text[0] == '@':
		segs, err := segments(text[1:], text)
		if err != nil {
			return nil, err
		}
		return ast.Meta{Name: segs[0], Tail: segs[1:]}, nil
	case text[0] == '>':
		return nil, fmt.Errorf("%w: partial reference %q used as a value", diag.ErrSyntax, text)
	case text == ".." || strings.HasPrefix(text, "../"):
		hops := 0
		rest := text
		for {
			if rest == ".." {
				hops++
				rest = ""
				break
			}
			if !strings.HasPrefix(rest, "../") {
				break
			}
			hops++
			rest = rest[3:]
		}
		if rest == "" {
			return ast.Parent{Hops: hops, Tail: ast.This{}}, nil
		}
		tail, err := resolvePath(rest)
		if err != nil {
			return nil, err
		}
		return ast.Parent{Hops: hops, Tail: tail}, nil
	}

	rest := text
	for _, prefix := range []string{"this.", "./"} {
		if strings.HasPrefix(rest, prefix) {
			rest = rest[len(prefix):]
			break
		}
	}
	segs, err := segments(rest, text)
	if err != nil {
		return nil, err
	}
	return ast.Dotted{Segments: segs}, nil
}

func segments(s, text string) ([]string, error) {
	segs := strings.Split(s, ".")
	for _, seg := range segs {
		if seg == "" || strings.ContainsAny(seg, " \t\r\n\"'{}=()<>@/") {
			return nil, fmt.Errorf("%w: malformed path %q", diag.ErrSyntax, text)
		}
	}
	return segs, nil
}
