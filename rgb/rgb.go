// Package rgb holds the nested pixel structure application code works with
// and its conversions to and from strided buffers.
//
// Pixels are addressed [x][y]: the outer slice ranges over the buffer's first
// axis (width) and each inner slice over its second axis (height).
package rgb

import (
	"math"

	"picbuf/strided"
)

// Pixel is a red, green, blue triple.
type Pixel [3]uint8

type Pixels [][]Pixel

// Opaque is the alpha value written for every pixel prepared for encoding.
const Opaque = 255

// Width returns the number of rows, which is the image width.
func (p Pixels) Width() int {
	return len(p)
}

// Height returns the length of the first row.
func (p Pixels) Height() int {
	if len(p) == 0 {
		return 0
	}
	return len(p[0])
}

// FromStrided copies channels 0 to 2 of every (x, y) in buf into a new
// Pixels of buf.Shape[0] rows by buf.Shape[1] columns. Any further channels
// are dropped. buf must have at least 3 channels.
func FromStrided[T strided.Number](buf *strided.Buffer[T]) Pixels {
	width, height := buf.Shape[0], buf.Shape[1]

	pixels := make(Pixels, width)
	for x := range width {
		row := make([]Pixel, height)
		for y := range height {
			row[y] = Pixel{
				Channel(buf.Get(x, y, 0)),
				Channel(buf.Get(x, y, 1)),
				Channel(buf.Get(x, y, 2)),
			}
		}
		pixels[x] = row
	}

	return pixels
}

// ToStrided lays out width x height pixels of p into a float32 buffer with 4
// channels, setting alpha to Opaque. p must hold at least width rows of
// height pixels each; short input panics with an index out of range.
func ToStrided(p Pixels, width, height int) *strided.Buffer[float32] {
	buf := strided.New[float32](width, height, 4)

	for x := range width {
		for y := range height {
			px := p[x][y]
			for c := range 3 {
				buf.Set(x, y, c, float32(px[c]))
			}
			buf.Set(x, y, 3, Opaque)
		}
	}

	return buf
}

// Channel converts a numeric sample to a byte, rounding and clamping
// floating point input to [0, 255].
func Channel[T strided.Number](v T) uint8 {
	f := math.Round(float64(v))
	switch {
	case f <= 0 || math.IsNaN(f):
		return 0
	case f >= 255:
		return 255
	default:
		return uint8(f)
	}
}
