package hbx

import (
	"github.com/kilianc/hbx/internal/hbx/diag"
	"github.com/kilianc/hbx/pkg/hbx/rt"
)

// Error is a compile error. It carries the source range of the offending
// expression; use errors.As to get at it.
type Error = diag.Error

// Compile errors wrap one of these.
var (
	ErrSyntax     = diag.ErrSyntax
	ErrUnbalanced = diag.ErrUnbalanced
	ErrScopeDepth = diag.ErrScopeDepth
)

// ErrUnknownHelper and ErrUnknownPartial are reported both at compile time
// and, for registries changed after compiling, at render time. The others
// are render errors.
var (
	ErrUnknownHelper    = rt.ErrUnknownHelper
	ErrUnknownPartial   = rt.ErrUnknownPartial
	ErrRecursion        = rt.ErrRecursion
	ErrNotSequence      = rt.ErrNotSequence
	ErrUnsupportedValue = rt.ErrUnsupportedValue
)
