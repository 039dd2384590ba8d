package jsonutil

import (
	"errors"
	"fmt"
)

// ErrInvalidOutput is returned by Unmarshal when the destination is nil.
var ErrInvalidOutput = errors.New("jsonutil: output destination is nil")

// ErrValueTooLarge is returned by Unmarshal when the input exceeds MaxJSONSize.
var ErrValueTooLarge = errors.New("jsonutil: input exceeds maximum JSON size")

// wrapError annotates an underlying codec error with the operation that
// produced it, preserving it for errors.Is/errors.As via %w.
func wrapError(context string, err error) error {
	return fmt.Errorf("%s: %w", context, err)
}
