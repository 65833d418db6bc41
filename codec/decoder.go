package codec

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"

	"picbuf/parallel"
	"picbuf/strided"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"
)

// FileDecoder decodes image files in any registered format into 4-channel
// non-premultiplied RGBA buffers.
type FileDecoder struct {
	// Pool runs decode jobs. When nil each decode gets its own goroutine.
	Pool *parallel.Pool
	// AutoOrient applies the EXIF orientation tag, if any.
	AutoOrient bool
	Logger     *slog.Logger
}

var _ Decoder = &FileDecoder{}

func (d *FileDecoder) Decode(path string, done func(*strided.Buffer[uint8], error)) {
	job := func() {
		done(d.decode(path))
	}

	if d.Pool == nil {
		go job()
		return
	}
	if err := d.Pool.Do(job); err != nil {
		done(nil, fmt.Errorf("could not schedule decode of %q: %w", path, err))
	}
}

func (d *FileDecoder) decode(path string) (*strided.Buffer[uint8], error) {
	logger := d.logger().With("file", path)

	if err := checkSource(path); err != nil {
		return nil, err
	}

	imgFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open image %q: %w", path, err)
	}
	defer func() {
		if closeErr := imgFile.Close(); closeErr != nil {
			logger.Error("could not close image", "error", closeErr)
		}
	}()

	img, err := imaging.Decode(imgFile, imaging.AutoOrientation(d.AutoOrient))
	if err != nil {
		return nil, fmt.Errorf("could not decode image %q: %w", path, err)
	}

	logger.Debug("decoded", "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return strided.FromNRGBA(toNRGBA(img)), nil
}

func (d *FileDecoder) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

func checkSource(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot stat image %q: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("cannot decode non-regular file %q: %s", info.Name(), info.Mode().String())
	}
	return nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba
	}

	sr := img.Bounds()
	dr := image.Rect(0, 0, sr.Dx(), sr.Dy())
	dest := image.NewNRGBA(dr)
	draw.Draw(dest, dr, img, sr.Min, draw.Src)
	return dest
}
