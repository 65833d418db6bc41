package codec

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"strings"

	"picbuf/parallel"
	"picbuf/rgb"
	"picbuf/strided"
)

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 50

// JPEGEncoder encodes buffers as baseline JPEG. Channels beyond the third
// only matter as alpha, which JPEG drops.
type JPEGEncoder struct {
	// Pool runs encode jobs. When nil each encode gets its own goroutine.
	Pool    *parallel.Pool
	Quality int
}

var _ Encoder = &JPEGEncoder{}

func (e *JPEGEncoder) Encode(buf *strided.Buffer[float32], format string, w io.Writer, done func(error)) {
	job := func() {
		done(e.encode(buf, format, w))
	}

	if e.Pool == nil {
		go job()
		return
	}
	if err := e.Pool.Do(job); err != nil {
		done(fmt.Errorf("could not schedule encode: %w", err))
	}
}

func (e *JPEGEncoder) encode(buf *strided.Buffer[float32], format string, w io.Writer) error {
	switch strings.ToLower(format) {
	case "jpg", "jpeg":
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	if buf.Depth() < 3 {
		return fmt.Errorf("cannot encode %d-channel buffer", buf.Depth())
	}

	quality := e.Quality
	if quality == 0 {
		quality = DefaultQuality
	}

	if err := jpeg.Encode(w, toImage(buf), &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("could not encode JPEG: %w", err)
	}
	return nil
}

func toImage[T strided.Number](buf *strided.Buffer[T]) *image.NRGBA {
	width, height := buf.Width(), buf.Height()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	hasAlpha := buf.Depth() > 3

	for y := range height {
		for x := range width {
			c := color.NRGBA{
				R: rgb.Channel(buf.Get(x, y, 0)),
				G: rgb.Channel(buf.Get(x, y, 1)),
				B: rgb.Channel(buf.Get(x, y, 2)),
				A: 0xFF,
			}
			if hasAlpha {
				c.A = rgb.Channel(buf.Get(x, y, 3))
			}
			img.SetNRGBA(x, y, c)
		}
	}

	return img
}
