package car

import (
	"fmt"

	"github.com/hyphacoop/go-dagcbor/dagcbor"
)

// newCarErr builds a dagcbor.Error of kind CarFramingError, reusing the
// single error taxonomy spec.md §7 describes for the whole library rather
// than inventing a parallel one for this package.
func newCarErr(msg string, args ...any) *dagcbor.Error {
	return &dagcbor.Error{
		Kind:   dagcbor.CarFramingError,
		Msg:    fmt.Sprintf(msg, args...),
		Offset: -1,
	}
}

func wrapCarErr(offset int, err error, msg string, args ...any) *dagcbor.Error {
	return &dagcbor.Error{
		Kind:   dagcbor.CarFramingError,
		Msg:    fmt.Sprintf(msg, args...),
		Offset: offset,
		Err:    err,
	}
}
