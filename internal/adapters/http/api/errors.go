package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// WrapKind annotates err with an operation and a sentinel kind.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// NewKind annotates a sentinel kind with an operation.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}
