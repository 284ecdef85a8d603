package parse

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kilianc/hbx/internal/hbx/ast"
	"github.com/kilianc/hbx/internal/hbx/diag"
)

// splitArgs splits s on whitespace. Quoted strings and {{...}} groups are
// kept whole.
func splitArgs(s string) ([]string, error) {
	var (
		toks  []string
		cur   strings.Builder
		quote byte
		depth int
	)
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0:
			cur.WriteByte(ch)
			if ch == '\\' && i+1 < len(s) {
				i++
				cur.WriteByte(s[i])
			} else if ch == quote {
				quote = 0
			}
		case strings.HasPrefix(s[i:], "{{"):
			depth++
			cur.WriteString("{{")
			i++
		case strings.HasPrefix(s[i:], "}}") && depth > 0:
			depth--
			cur.WriteString("}}")
			i++
		case depth > 0:
			cur.WriteByte(ch)
		case ch == '"' || ch == '\'':
			quote = ch
			cur.WriteByte(ch)
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			flush()
		default:
			cur.WriteByte(ch)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("%w: unterminated string in %q", diag.ErrSyntax, s)
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unclosed {{ in %q", diag.ErrSyntax, s)
	}
	flush()
	return toks, nil
}

// parseArg parses one argument token: a literal, a path, or name=value.
func parseArg(tok string) (ast.Arg, error) {
	var arg ast.Arg
	if i := strings.IndexByte(tok, '='); i > 0 && identifier(tok[:i]) {
		arg.Name, tok = tok[:i], tok[i+1:]
		if tok == "" {
			return arg, fmt.Errorf("%w: missing value for %s", diag.ErrSyntax, arg.Name)
		}
	}
	if strings.HasPrefix(tok, "{{") {
		inner, ok := unbrace(tok)
		if !ok {
			return arg, fmt.Errorf("%w: malformed argument %q", diag.ErrSyntax, tok)
		}
		p, err := resolvePath(inner)
		if err != nil {
			return arg, err
		}
		arg.Path = ast.RawHTML{Inner: p}
		return arg, nil
	}
	lit, ok, err := literal(tok)
	if err != nil {
		return arg, err
	}
	if ok {
		arg.Lit = lit
		return arg, nil
	}
	p, err := resolvePath(tok)
	if err != nil {
		return arg, err
	}
	arg.Path = p
	return arg, nil
}

func unbrace(tok string) (string, bool) {
	for _, n := range []int{3, 2} {
		if len(tok) >= 2*n && strings.HasPrefix(tok, strings.Repeat("{", n)) && strings.HasSuffix(tok, strings.Repeat("}", n)) {
			return strings.TrimSpace(tok[n : len(tok)-n]), true
		}
	}
	return "", false
}

// literal reports whether tok is a literal and returns its value: a string,
// an int64, a float64, a bool or nil.
func literal(tok string) (any, bool, error) {
	switch tok {
	case "true":
		return true, true, nil
	case "false":
		return false, true, nil
	case "null", "undefined":
		return nil, true, nil
	}
	switch tok[0] {
	case '"':
		s, err := strconv.Unquote(tok)
		if err != nil {
			return nil, false, fmt.Errorf("%w: bad string %s", diag.ErrSyntax, tok)
		}
		return s, true, nil
	case '\'':
		s, err := unquoteSingle(tok)
		if err != nil {
			return nil, false, fmt.Errorf("%w: bad string %s", diag.ErrSyntax, tok)
		}
		return s, true, nil
	}
	if !strings.ContainsRune("0123456789-+.", rune(tok[0])) {
		return nil, false, nil
	}
	if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return n, true, nil
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f, true, nil
	}
	return nil, false, nil
}

// unquoteSingle unquotes a single-quoted string by rewriting it to the
// double-quoted form.
func unquoteSingle(tok string) (string, error) {
	if len(tok) < 2 || tok[len(tok)-1] != '\'' {
		return "", strconv.ErrSyntax
	}
	body := tok[1 : len(tok)-1]
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(body); i++ {
		switch {
		case body[i] == '\\' && i+1 < len(body) && body[i+1] == '\'':
			sb.WriteByte('\'')
			i++
		case body[i] == '\\' && i+1 < len(body):
			sb.WriteString(body[i : i+2])
			i++
		case body[i] == '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteByte(body[i])
		}
	}
	sb.WriteByte('"')
	return strconv.Unquote(sb.String())
}

func identifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_' || r == '-' || 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z':
		case i > 0 && '0' <= r && r <= '9':
		default:
			return false
		}
	}
	return s != ""
}
