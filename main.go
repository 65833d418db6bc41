package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"picbuf/codec"
	"picbuf/handler"
	"picbuf/inspect"
	"picbuf/parallel"
	"picbuf/reencode"

	"github.com/alecthomas/kong"
)

type cli struct {
	Workers    int    `help:"Decode/encode workers. 1 runs everything on the calling goroutine, 0 uses one per CPU" default:"1" env:"PICBUF_WORKERS"`
	LogLevel   string `help:"Minimum log level" enum:"debug,info,warn,error" default:"info" env:"PICBUF_LOG_LEVEL"`
	LogFormat  string `help:"Log output format" enum:"text,json" default:"text" env:"PICBUF_LOG_FORMAT"`
	AutoOrient bool   `help:"Apply EXIF orientation when decoding" default:"false" env:"PICBUF_AUTO_ORIENT"`

	Info   inspect.CLICmd  `cmd:"" help:"Load images and report their shape"`
	Export reencode.CLICmd `cmd:"" help:"Load an image and write its pixels back out as JPEG"`
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("picbuf"),
		kong.Description("Load images into RGB pixel buffers and write them back out as JPEG"),
		kong.UsageOnError(),
	)

	logger := newLogger(c.LogLevel, c.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	pool := parallel.Start(c.Workers)
	opts := handler.Options{
		Decoder: &codec.FileDecoder{Pool: pool, AutoOrient: c.AutoOrient, Logger: logger},
		Encoder: &codec.JPEGEncoder{Pool: pool},
		Streams: codec.FileStreams{Logger: logger},
		Logger:  logger,
	}

	slog.Debug("running", "command", kctx.Command(), "workers", pool.Workers())

	kctx.BindTo(ctx, (*context.Context)(nil))
	err := kctx.Run(opts, pool)

	pool.Close()
	stop()
	kctx.FatalIfErrorf(err)
}
