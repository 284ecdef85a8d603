package rt

import "errors"

var (
	ErrUnknownHelper    = errors.New("unknown helper")
	ErrUnknownPartial   = errors.New("unknown partial")
	ErrRecursion        = errors.New("partial recursion too deep")
	ErrNotSequence      = errors.New("argument is not a sequence")
	ErrUnsupportedValue = errors.New("unsupported value")
)
