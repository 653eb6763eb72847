package csvio

import (
	"errors"
	"io"

	iox "github.com/wdm0006/catfill/pkg/io/ioutils"
	"github.com/wdm0006/catfill/pkg/table"
)

// StreamReader reads CSV into Frame chunks of up to ChunkSize rows.
type StreamReader struct {
	r         *Reader
	schema    table.Schema
	chunkSize int
}

// NewStreamReader opens the file, infers schema (respecting options), and returns a StreamReader.
func NewStreamReader(path string, opt ReaderOptions, chunkSize int) (*StreamReader, io.Closer, error) {
	rr, c, err := Open(path, opt)
	if err != nil {
		return nil, nil, err
	}
	schema, _, err := rr.InferSchema()
	if err != nil {
		_ = c.Close()
		return nil, nil, err
	}
	return &StreamReader{r: rr, schema: schema, chunkSize: chunkSize}, c, nil
}

// Next returns the next chunk frame or io.EOF when complete.
func (s *StreamReader) Next() (*table.Frame, error) {
	if s.chunkSize <= 0 {
		s.chunkSize = 1024
	}
	f := table.NewFrame(s.schema)
	for f.Rows() < s.chunkSize {
		rec, err := s.r.next()
		if errors.Is(err, io.EOF) {
			if f.Rows() == 0 {
				return nil, io.EOF
			}
			return f, nil
		}
		if err != nil {
			return nil, err
		}
		if err := s.r.appendRecord(f, rec); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (s *StreamReader) Schema() table.Schema { return s.schema }

// Warnings reports record repairs seen so far.
func (s *StreamReader) Warnings() string { return s.r.Warnings() }

// StreamWriter appends frames to a CSV file with a header (written once).
type StreamWriter struct {
	out         io.WriteCloser
	opt         WriterOptions
	wroteHeader bool
	schema      table.Schema
}

func NewStreamWriter(path string, schema table.Schema, opt WriterOptions) (*StreamWriter, error) {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	return &StreamWriter{out: out, opt: opt, schema: schema}, nil
}

func (s *StreamWriter) Write(fr *table.Frame) error {
	cw := newCSVWriter(s.out, s.opt)
	if !s.wroteHeader {
		if err := cw.Write(s.schema.Names()); err != nil {
			return err
		}
		s.wroteHeader = true
	}
	if err := writeRows(cw, fr, s.opt); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// Close writes the header if no chunk arrived, then flushes the file.
func (s *StreamWriter) Close() error {
	if !s.wroteHeader {
		if err := s.Write(table.NewFrame(s.schema)); err != nil {
			_ = s.out.Close()
			return err
		}
	}
	return s.out.Close()
}
