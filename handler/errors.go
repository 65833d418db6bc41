package handler

import (
	"errors"
	"fmt"
)

// ErrDecode matches any DecodeError under errors.Is.
var ErrDecode = errors.New("decode failure")

// DecodeError reports that the image at Path could not be turned into pixels:
// the path is wrong, the file is unreadable or corrupt, or its format is not
// supported.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("could not decode image %q: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
