package inspect

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"picbuf/handler"

	"github.com/alecthomas/kong"
)

type CLICmd struct {
	Paths []string `arg:"" help:"Images to load. Directories are scanned one level deep"`
}

// imageExts lists the extensions of the formats the decoder has registered.
var imageExts = map[string]bool{
	".bmp":  true,
	".gif":  true,
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// IsImageName reports whether name has the extension of a decodable format.
func IsImageName(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// Validate expands directories into the image files they contain. Paths given
// explicitly are kept whatever their extension.
func (c *CLICmd) Validate(kctx *kong.Context) error {
	var paths []string
	for _, p := range c.Paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			// Missing files are reported when loading.
			paths = append(paths, p)
			continue
		}

		files, err := os.ReadDir(p)
		if err != nil {
			return fmt.Errorf("unable to read folder %q: %w", p, err)
		}
		for _, file := range files {
			if file.IsDir() || !IsImageName(file.Name()) {
				continue
			}
			paths = append(paths, filepath.Join(p, file.Name()))
		}
	}

	if len(paths) == 0 {
		return fmt.Errorf("no images to inspect")
	}
	c.Paths = paths
	return nil
}

func (c *CLICmd) Run(ctx context.Context, opts handler.Options) error {
	var loadedCount, errCount int
	for _, path := range c.Paths {
		b, err := handler.Open(ctx, path, opts)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			errCount++
			continue
		}
		loadedCount++

		shape := b.Shape()
		slog.Info("image", "file", path, "width", shape.Width(), "height", shape.Height(),
			"depth", shape.Depth(), "orientation", Orientation(shape))
	}

	slog.Info("stats", "loaded", loadedCount, "errors", errCount, "total", loadedCount+errCount)

	if errCount > 0 {
		return fmt.Errorf("error processing %d files", errCount)
	}
	return nil
}

// Orientation classifies a shape as "portrait" when it is taller than wide
// and "landscape" otherwise.
func Orientation(shape handler.Shape) string {
	if shape.Height() > shape.Width() {
		return "portrait"
	}
	return "landscape"
}
