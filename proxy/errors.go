package proxy

import (
	"errors"
	"fmt"
)

// Configuration errors. Errors returned by wrapped values are never wrapped
// in these.
var (
	ErrNotInterface   = errors.New("proxied type is not an interface")
	ErrUnknownMember  = errors.New("unknown member")
	ErrNotImplemented = errors.New("value does not implement the proxied type")
	ErrArgument       = errors.New("invalid argument")
)

// PanicError is recorded when a wrapped value panics with something that is
// not an error. The panic itself is re-raised with the original value.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func panicAsError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}

	return &PanicError{Value: v}
}
