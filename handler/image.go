// Package handler loads an image file into nested RGB pixels and writes
// pixels back out as JPEG.
//
// An ImageBuffer is not safe for concurrent use.
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"picbuf/codec"
	"picbuf/rgb"
	"picbuf/strided"
)

// Format is handed to the encoder on every export.
const Format = "jpg"

type State int

const (
	NotLoaded State = iota
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case NotLoaded:
		return "not loaded"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Shape is width, height and channel depth, in that order.
type Shape [3]int

func (s Shape) Width() int {
	return s[0]
}

func (s Shape) Height() int {
	return s[1]
}

func (s Shape) Depth() int {
	return s[2]
}

// Options configures the collaborators of an ImageBuffer. Nil fields get
// file-backed defaults from package codec.
type Options struct {
	Decoder codec.Decoder
	Encoder codec.Encoder
	Streams codec.StreamFactory
	Logger  *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Decoder == nil {
		o.Decoder = &codec.FileDecoder{Logger: o.Logger}
	}
	if o.Encoder == nil {
		o.Encoder = &codec.JPEGEncoder{}
	}
	if o.Streams == nil {
		o.Streams = codec.FileStreams{Logger: o.Logger}
	}
	return o
}

type ImageBuffer struct {
	path   string
	pixels rgb.Pixels
	shape  Shape
	state  State
	opts   Options
}

// New returns an ImageBuffer for path with no pixels loaded yet.
func New(path string, opts Options) *ImageBuffer {
	return &ImageBuffer{
		path:   path,
		pixels: rgb.Pixels{},
		opts:   opts.withDefaults(),
	}
}

// Open creates an ImageBuffer for path and loads it. The buffer is returned
// even when loading fails, in its empty state.
func Open(ctx context.Context, path string, opts Options) (*ImageBuffer, error) {
	b := New(path, opts)
	return b, b.Load(ctx)
}

func (b *ImageBuffer) Path() string {
	return b.path
}

// Pixels returns the loaded pixels, addressed [x][y].
func (b *ImageBuffer) Pixels() rgb.Pixels {
	return b.pixels
}

func (b *ImageBuffer) Shape() Shape {
	return b.shape
}

func (b *ImageBuffer) State() State {
	return b.state
}

type decoded struct {
	buf *strided.Buffer[uint8]
	err error
}

// Load decodes the image once and blocks until the decoder reports back or
// ctx ends. A decode failure is logged, returned as a *DecodeError and leaves
// the buffer empty. A cancelled ctx leaves the buffer as it was.
func (b *ImageBuffer) Load(ctx context.Context) error {
	logger := b.opts.Logger.With("file", b.path)

	ch := make(chan decoded, 1)
	b.opts.Decoder.Decode(b.path, func(buf *strided.Buffer[uint8], err error) {
		select {
		case ch <- decoded{buf: buf, err: err}:
		default:
			logger.Warn("decoder completed more than once")
		}
	})

	var res decoded
	select {
	case res = <-ch:
	case <-ctx.Done():
		return fmt.Errorf("could not load image %q: %w", b.path, ctx.Err())
	}

	if res.err == nil {
		switch {
		case res.buf == nil:
			res.err = errors.New("decoder returned no data")
		case res.buf.Depth() < 3:
			res.err = fmt.Errorf("decoded image has %d channels, need at least 3", res.buf.Depth())
		}
	}

	if res.err != nil {
		logger.Error("could not decode image", "error", res.err)
		b.pixels = rgb.Pixels{}
		b.shape = Shape{}
		b.state = Failed
		return &DecodeError{Path: b.path, Err: res.err}
	}

	b.shape = Shape(res.buf.Shape)
	b.pixels = rgb.FromStrided(res.buf)
	b.state = Loaded
	logger.Debug("loaded", "width", b.shape.Width(), "height", b.shape.Height(), "depth", b.shape.Depth())
	return nil
}

type size struct {
	width, height int
}

type SaveOption func(*size)

// WithWidth overrides the exported width, which otherwise is the loaded one.
func WithWidth(width int) SaveOption {
	return func(s *size) {
		s.width = width
	}
}

// WithHeight overrides the exported height, which otherwise is the loaded one.
func WithHeight(height int) SaveOption {
	return func(s *size) {
		s.height = height
	}
}

// Save writes pixels to path as JPEG, whatever the path's extension. It
// returns as soon as encoding has been handed off; the returned Pending
// reports when the file is complete and any stream or encode failure.
//
// pixels must cover the export size: at least width rows of at least height
// pixels. Smaller input panics before anything is written.
func (b *ImageBuffer) Save(pixels rgb.Pixels, path string, opts ...SaveOption) *Pending {
	sz := size{width: b.shape.Width(), height: b.shape.Height()}
	for _, opt := range opts {
		opt(&sz)
	}

	logger := b.opts.Logger.With("file", path)
	pending := newPending()

	buf := rgb.ToStrided(pixels, sz.width, sz.height)

	w, err := b.opts.Streams.OpenForWrite(path)
	if err != nil {
		logger.Error("could not open destination", "error", err)
		pending.complete(fmt.Errorf("could not open destination %q: %w", path, err))
		return pending
	}

	logger.Debug("saving", "width", sz.width, "height", sz.height)
	b.opts.Encoder.Encode(buf, Format, w, func(encErr error) {
		err := finish(w, encErr)
		if err != nil {
			logger.Error("could not save image", "error", err)
			err = fmt.Errorf("could not save image %q: %w", path, err)
		}
		pending.complete(err)
	})

	return pending
}

func finish(w io.Closer, encErr error) error {
	if encErr != nil {
		if a, ok := w.(codec.Aborter); ok {
			return errors.Join(encErr, a.Abort())
		}
		return errors.Join(encErr, w.Close())
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("could not close destination: %w", err)
	}
	return nil
}
