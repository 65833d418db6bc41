// Package strided provides a flat numeric buffer addressed by (x, y, channel)
// through a shape and stride descriptor.
package strided

import (
	"fmt"
	"image"
)

type Number interface {
	~uint8 | ~uint16 | ~uint32 | ~float32 | ~float64
}

// Buffer is a flat array viewed as a width x height x depth volume. The
// element at (x, y, c) lives at Data[Offset + x*Stride[0] + y*Stride[1] + c*Stride[2]].
type Buffer[T Number] struct {
	Data   []T
	Shape  [3]int
	Stride [3]int
	Offset int
}

// New allocates a zeroed buffer with interleaved channels and x varying
// fastest within a row, the same layout image.NRGBA uses.
func New[T Number](width, height, depth int) *Buffer[T] {
	if width <= 0 || height <= 0 || depth <= 0 {
		return &Buffer[T]{}
	}

	return &Buffer[T]{
		Data:   make([]T, width*height*depth),
		Shape:  [3]int{width, height, depth},
		Stride: [3]int{depth, width * depth, 1},
	}
}

// FromNRGBA returns a 4-channel view over the pixels of img. No data is
// copied: writes through the buffer are visible in the image.
func FromNRGBA(img *image.NRGBA) *Buffer[uint8] {
	b := img.Bounds()
	if b.Empty() {
		return &Buffer[uint8]{}
	}

	return &Buffer[uint8]{
		Data:   img.Pix,
		Shape:  [3]int{b.Dx(), b.Dy(), 4},
		Stride: [3]int{4, img.Stride, 1},
		Offset: img.PixOffset(b.Min.X, b.Min.Y),
	}
}

func (b *Buffer[T]) Width() int {
	return b.Shape[0]
}

func (b *Buffer[T]) Height() int {
	return b.Shape[1]
}

func (b *Buffer[T]) Depth() int {
	return b.Shape[2]
}

// Index returns the position of (x, y, c) in Data. Coordinates are not
// checked against Shape.
func (b *Buffer[T]) Index(x, y, c int) int {
	return b.Offset + x*b.Stride[0] + y*b.Stride[1] + c*b.Stride[2]
}

func (b *Buffer[T]) Get(x, y, c int) T {
	return b.Data[b.Index(x, y, c)]
}

func (b *Buffer[T]) Set(x, y, c int, v T) {
	b.Data[b.Index(x, y, c)] = v
}

// Pixel returns the first n channels at (x, y).
func (b *Buffer[T]) Pixel(x, y, n int) []T {
	px := make([]T, n)
	for c := range n {
		px[c] = b.Get(x, y, c)
	}
	return px
}

func (b *Buffer[T]) String() string {
	return fmt.Sprintf("strided.Buffer[%T]{shape=%v stride=%v offset=%d}", *new(T), b.Shape, b.Stride, b.Offset)
}
