package codec

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// FileMode is the permission of files written through FileStreams.
const FileMode os.FileMode = 0o644

// FileStreams opens files for writing. Data goes to a temporary file next to
// the destination, which replaces the destination only when the stream is
// closed without error.
type FileStreams struct {
	Logger *slog.Logger
}

var _ StreamFactory = FileStreams{}

func (s FileStreams) OpenForWrite(path string) (io.WriteCloser, error) {
	destDir, destName := filepath.Split(path)
	if destDir == "" {
		destDir = "."
	}

	info, err := os.Stat(destDir)
	if err != nil {
		return nil, fmt.Errorf("cannot stat destination folder %q: %w", destDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("destination folder %q: not a directory", destDir)
	}

	tmpFile, err := os.CreateTemp(destDir, destName)
	if err != nil {
		return nil, fmt.Errorf("could not create temporary destination %q: %w", destName, err)
	}

	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &fileStream{
		File:   tmpFile,
		dest:   path,
		logger: logger.With("file", path),
	}, nil
}

type fileStream struct {
	*os.File
	dest   string
	logger *slog.Logger
	done   bool
}

var _ Aborter = &fileStream{}

// Close flushes the temporary file and renames it into place.
func (f *fileStream) Close() (err error) {
	if f.done {
		return os.ErrClosed
	}
	f.done = true

	canRename := true
	defer func() {
		if !canRename {
			f.remove()
			return
		}
		if defErr := os.Rename(f.Name(), f.dest); defErr != nil {
			err = fmt.Errorf("could not rename destination file %q: %w", f.dest, defErr)
			f.remove()
		}
	}()

	if err = f.Chmod(FileMode); err != nil {
		canRename = false
		err = fmt.Errorf("could not set mode of temporary destination %q: %w", f.dest, err)
	} else if err = f.Sync(); err != nil {
		canRename = false
		err = fmt.Errorf("could not flush temporary destination %q: %w", f.dest, err)
	}
	if closeErr := f.File.Close(); closeErr != nil {
		canRename = false
		err = errors.Join(err, fmt.Errorf("could not close temporary destination %q: %w", f.dest, closeErr))
	}
	return err
}

// Abort closes and removes the temporary file, leaving the destination
// untouched.
func (f *fileStream) Abort() error {
	if f.done {
		return os.ErrClosed
	}
	f.done = true

	err := f.File.Close()
	f.remove()
	if err != nil {
		return fmt.Errorf("could not close temporary destination %q: %w", f.dest, err)
	}
	return nil
}

func (f *fileStream) remove() {
	if err := os.Remove(f.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		f.logger.Error("could not remove temporary destination", "temp", f.Name(), "error", err)
	}
}
