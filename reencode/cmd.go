package reencode

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"picbuf/codec"
	"picbuf/handler"
	"picbuf/parallel"

	"github.com/alecthomas/kong"
)

type CLICmd struct {
	Src     string `arg:"" help:"Source image" type:"path"`
	Dest    string `arg:"" help:"Destination file. Always written as JPEG, whatever its extension" type:"path"`
	Width   int    `help:"Export width. Defaults to the source width, must not exceed it" group:"size"`
	Height  int    `help:"Export height. Defaults to the source height, must not exceed it" group:"size"`
	Quality int    `help:"JPEG quality (1-100)" default:"50"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	switch {
	case c.Width < 0:
		return fmt.Errorf("invalid export width: %d", c.Width)
	case c.Height < 0:
		return fmt.Errorf("invalid export height: %d", c.Height)
	case c.Quality < 1 || c.Quality > 100:
		return fmt.Errorf("invalid JPEG quality: %d", c.Quality)
	}

	dest, err := filepath.Abs(c.Dest)
	if err != nil {
		return fmt.Errorf("invalid destination path %q: %w", c.Dest, err)
	}
	c.Dest = dest

	return nil
}

func (c *CLICmd) Run(ctx context.Context, opts handler.Options, pool *parallel.Pool) error {
	opts.Encoder = &codec.JPEGEncoder{Pool: pool, Quality: c.Quality}

	b, err := handler.Open(ctx, c.Src, opts)
	if err != nil {
		return err
	}

	var saveOpts []handler.SaveOption
	shape := b.Shape()
	if c.Width > 0 {
		if c.Width > shape.Width() {
			return fmt.Errorf("export width %d exceeds source width %d", c.Width, shape.Width())
		}
		saveOpts = append(saveOpts, handler.WithWidth(c.Width))
	}
	if c.Height > 0 {
		if c.Height > shape.Height() {
			return fmt.Errorf("export height %d exceeds source height %d", c.Height, shape.Height())
		}
		saveOpts = append(saveOpts, handler.WithHeight(c.Height))
	}

	if err := b.Save(b.Pixels(), c.Dest, saveOpts...).Wait(ctx); err != nil {
		return err
	}

	slog.Info("exported", "from", c.Src, "to", c.Dest, "quality", c.Quality)
	return nil
}
