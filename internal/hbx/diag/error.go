package diag

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Sentinels for template compile errors. A compile error wraps exactly one of
// these, or a registry sentinel from package rt.
var (
	ErrSyntax     = errors.New("syntax error")
	ErrUnbalanced = errors.New("unbalanced block")
	ErrScopeDepth = errors.New("parent traversal exceeds block depth")
)

// Error is a template compile error tied to a range of the template source.
type Error struct {
	Type    string
	Message string
	Context Context
	Err     error
}

// Errorf builds a compile error for the range r of source.
func Errorf(sentinel error, name, source string, r Ranger, format string, args ...any) *Error {
	return &Error{
		Type:    "compilation error",
		Message: fmt.Sprintf(format, args...),
		Context: *NewContext(name, source, r),
		Err:     sentinel,
	}
}

// Error returns a plain text representation of the error.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %d-%d in %s: %s",
		e.Type, e.Context.From, e.Context.To, e.Context.Name, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Range returns the range of the error.
func (e *Error) Range() Ranging {
	return e.Context.Range()
}

// Show shows the error with the offending source highlighted.
func (e *Error) Show(indent string) string {
	header := fmt.Sprintf("%s: %s%s%s\n", title(e.Type), messageBegin, e.Message, messageEnd)
	return header + e.Context.ShowCompact(indent+"  ")
}

var (
	messageBegin = "\033[31;1m"
	messageEnd   = "\033[m"
)

// SetColor turns ANSI styling of shown errors on or off.
func SetColor(on bool) {
	if on {
		culpritLineBegin, culpritLineEnd = "\033[1;4m", "\033[m"
		messageBegin, messageEnd = "\033[31;1m", "\033[m"
		return
	}
	culpritLineBegin, culpritLineEnd = "", ""
	messageBegin, messageEnd = "", ""
}

// ShowError writes err to w, using Show when err is (or wraps) an *Error.
func ShowError(w io.Writer, err error) {
	var e *Error
	if errors.As(err, &e) {
		fmt.Fprintln(w, e.Show(""))
		return
	}
	fmt.Fprintf(w, "%s%s%s\n", messageBegin, err.Error(), messageEnd)
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
