package reencode

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"picbuf/handler"
	"picbuf/parallel"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 90, A: 255})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name    string
		cmd     CLICmd
		wantErr bool
	}{
		{name: "defaults", cmd: CLICmd{Dest: "out.jpg", Quality: 50}},
		{name: "sized", cmd: CLICmd{Dest: "out.jpg", Width: 10, Height: 5, Quality: 100}},
		{name: "negative_width", cmd: CLICmd{Dest: "out.jpg", Width: -1, Quality: 50}, wantErr: true},
		{name: "negative_height", cmd: CLICmd{Dest: "out.jpg", Height: -1, Quality: 50}, wantErr: true},
		{name: "quality_zero", cmd: CLICmd{Dest: "out.jpg", Quality: 0}, wantErr: true},
		{name: "quality_high", cmd: CLICmd{Dest: "out.jpg", Quality: 101}, wantErr: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cmd.Validate(nil)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate: got %v, wantErr %v", err, tc.wantErr)
			}
			if err == nil && !filepath.IsAbs(tc.cmd.Dest) {
				t.Errorf("Dest not made absolute: %q", tc.cmd.Dest)
			}
		})
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	writePNG(t, src, 6, 4)
	opts := handler.Options{Logger: slog.New(slog.DiscardHandler)}

	for _, tc := range []struct {
		name          string
		workers       int
		width, height int
		wantW, wantH  int
	}{
		{name: "full", workers: 1, wantW: 6, wantH: 4},
		{name: "cropped", workers: 2, width: 3, height: 2, wantW: 3, wantH: 2},
		{name: "width_only", workers: 1, width: 5, wantW: 5, wantH: 4},
	} {
		t.Run(tc.name, func(t *testing.T) {
			pool := parallel.Start(tc.workers)
			defer pool.Close()

			c := &CLICmd{
				Src:     src,
				Dest:    filepath.Join(dir, tc.name+".png"),
				Width:   tc.width,
				Height:  tc.height,
				Quality: 80,
			}
			if err := c.Run(context.Background(), opts, pool); err != nil {
				t.Fatalf("Run: %v", err)
			}

			f, err := os.Open(c.Dest)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer f.Close()
			cfg, err := jpeg.DecodeConfig(f)
			if err != nil {
				t.Fatalf("output is not JPEG: %v", err)
			}
			if cfg.Width != tc.wantW || cfg.Height != tc.wantH {
				t.Errorf("size: got %dx%d, want %dx%d", cfg.Width, cfg.Height, tc.wantW, tc.wantH)
			}
		})
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	writePNG(t, src, 2, 2)
	opts := handler.Options{Logger: slog.New(slog.DiscardHandler)}
	pool := parallel.Start(1)
	defer pool.Close()

	c := &CLICmd{Src: filepath.Join(dir, "missing.png"), Dest: filepath.Join(dir, "out.jpg"), Quality: 50}
	if err := c.Run(context.Background(), opts, pool); !errors.Is(err, handler.ErrDecode) {
		t.Errorf("missing source: got %v, want ErrDecode", err)
	}

	c = &CLICmd{Src: src, Dest: filepath.Join(dir, "out.jpg"), Width: 3, Quality: 50}
	if err := c.Run(context.Background(), opts, pool); err == nil {
		t.Error("expected error for width beyond source")
	}

	c = &CLICmd{Src: src, Dest: filepath.Join(dir, "nope", "out.jpg"), Quality: 50}
	if err := c.Run(context.Background(), opts, pool); err == nil {
		t.Error("expected error for missing destination folder")
	}
}
