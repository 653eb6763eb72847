package ioutils

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
)

// OpenMaybeCompressed opens a file path or stdin ("-") and returns a buffered
// reader. Gzip input is detected by extension or magic bytes and unwrapped.
func OpenMaybeCompressed(path string) (*bufio.Reader, io.Closer, error) {
	var src io.Reader = os.Stdin
	var closeFn func() error = func() error { return nil }
	if path != "-" && path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, err
		}
		src, closeFn = f, f.Close
	}
	br := bufio.NewReader(src)
	magic, err := br.Peek(2)
	gz := filepath.Ext(path) == ".gz" || (err == nil && magic[0] == 0x1f && magic[1] == 0x8b)
	if !gz {
		return br, closer(closeFn), nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	return bufio.NewReader(zr), closer(func() error { _ = zr.Close(); return closeFn() }), nil
}

// CreateMaybeCompressed creates a file (or stdout if path is "-") and
// returns a writer. If the path ends in .gz, the writer is gzip compressed.
func CreateMaybeCompressed(path string) (io.WriteCloser, error) {
	if path == "-" || path == "" {
		bw := bufio.NewWriter(os.Stdout)
		return writeCloser{Writer: bw, closeFn: bw.Flush}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".gz" {
		zw := gzip.NewWriter(f)
		return writeCloser{Writer: zw, closeFn: func() error {
			if err := zw.Close(); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		}}, nil
	}
	bw := bufio.NewWriter(f)
	return writeCloser{Writer: bw, closeFn: func() error {
		if err := bw.Flush(); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}}, nil
}

type closer func() error

func (c closer) Close() error { return c() }

type writeCloser struct {
	io.Writer
	closeFn func() error
}

func (w writeCloser) Close() error { return w.closeFn() }
