package ioutils

import (
	"bufio"
	"compress/gzip"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/wdm0006/tidyweather/pkg/tidy"
)

// CheckExists returns a *tidy.NotFoundError when path does not exist.
func CheckExists(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) || path == "" {
		return &tidy.NotFoundError{Path: path}
	}
	return err
}

// OpenMaybeCompressed opens a file and returns a reader over its content.
// If the input appears to be gzip (by extension or magic), it wraps with gzip.
func OpenMaybeCompressed(path string) (io.ReadCloser, error) {
	if err := CheckExists(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(f)
	gz := IsGzipPath(path)
	if !gz {
		b, err := br.Peek(2)
		gz = err == nil && b[0] == 0x1f && b[1] == 0x8b
	}
	if !gz {
		return readCloser{Reader: br, closeFn: f.Close}, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return readCloser{Reader: zr, closeFn: func() error { _ = zr.Close(); return f.Close() }}, nil
}

// CreateMaybeCompressed creates a file, and its parent directories, and
// returns a buffered writer. If the path ends in .gz, the writer is gzip
// compressed.
func CreateMaybeCompressed(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if IsGzipPath(path) {
		zw := gzip.NewWriter(f)
		return writeCloser{Writer: zw, closeFn: func() error {
			if err := zw.Close(); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		}}, nil
	}
	return writeCloser{Writer: bufio.NewWriter(f), closeFn: f.Close}, nil
}

func IsGzipPath(path string) bool { return strings.EqualFold(filepath.Ext(path), ".gz") }

type readCloser struct {
	io.Reader
	closeFn func() error
}

func (r readCloser) Close() error { return r.closeFn() }

type writeCloser struct {
	io.Writer
	closeFn func() error
}

func (w writeCloser) Close() error {
	if bw, ok := w.Writer.(*bufio.Writer); ok {
		if err := bw.Flush(); err != nil {
			_ = w.closeFn()
			return err
		}
	}
	return w.closeFn()
}
