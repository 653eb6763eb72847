package jsonlio

import (
	"errors"
	"io"

	iox "github.com/wdm0006/catfill/pkg/io/ioutils"
	"github.com/wdm0006/catfill/pkg/table"
)

type StreamReader struct {
	r         *Reader
	schema    table.Schema
	chunkSize int
}

// NewStreamReader infers the schema from the first SampleRows objects; the
// sampled rows are replayed as the start of the first chunk.
func NewStreamReader(path string, opt ReaderOptions, chunkSize int) (*StreamReader, io.Closer, error) {
	r, c, err := Open(path, opt)
	if err != nil {
		return nil, nil, err
	}
	schema, err := r.InferSchema()
	if err != nil {
		_ = c.Close()
		return nil, nil, err
	}
	return &StreamReader{r: r, schema: schema, chunkSize: chunkSize}, c, nil
}

func (s *StreamReader) Next() (*table.Frame, error) {
	if s.chunkSize <= 0 {
		s.chunkSize = 1024
	}
	f := table.NewFrame(s.schema)
	for f.Rows() < s.chunkSize {
		m, err := s.r.next()
		if errors.Is(err, io.EOF) {
			if f.Rows() == 0 {
				return nil, io.EOF
			}
			return f, nil
		}
		if err != nil {
			return nil, err
		}
		s.r.appendRecord(f, m)
	}
	return f, nil
}

func (s *StreamReader) Schema() table.Schema { return s.schema }

type StreamWriter struct {
	out io.WriteCloser
}

func NewStreamWriter(path string) (*StreamWriter, error) {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	return &StreamWriter{out: out}, nil
}

func (s *StreamWriter) Write(f *table.Frame) error { return Write(s.out, f) }

func (s *StreamWriter) Close() error { return s.out.Close() }
