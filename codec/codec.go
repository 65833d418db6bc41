// Package codec defines the collaborators an image buffer loads and saves
// through, along with file-backed implementations of each.
package codec

import (
	"errors"
	"io"

	"picbuf/strided"
)

var ErrUnsupportedFormat = errors.New("unsupported output format")

// Decoder turns the image at path into a strided buffer of at least 3
// channels. Decode may return before the work is done; done is called exactly
// once with the result.
type Decoder interface {
	Decode(path string, done func(*strided.Buffer[uint8], error))
}

// Encoder writes buf to w in the named format. Like Decoder it completes
// through done, called exactly once.
type Encoder interface {
	Encode(buf *strided.Buffer[float32], format string, w io.Writer, done func(error))
}

type StreamFactory interface {
	OpenForWrite(path string) (io.WriteCloser, error)
}

// Aborter is implemented by streams that can discard what was written instead
// of committing it on Close.
type Aborter interface {
	Abort() error
}
