package parquetio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	parquet "github.com/segmentio/parquet-go"

	iox "github.com/wdm0006/catfill/pkg/io/ioutils"
	"github.com/wdm0006/catfill/pkg/table"
)

// Reader maps the flat top-level columns of a Parquet file onto a Frame.
// Nested columns are skipped. The schema comes from the file footer, so no
// sampling is needed.
type Reader struct {
	file   *os.File
	reader *parquet.Reader
	schema table.Schema
	// leaf column index -> frame column name; empty for skipped columns
	names []string
}

// ReaderOptions mirrors the text readers. NullTokens is absent: Parquet
// carries real nulls.
type ReaderOptions struct {
	ForceString []string
}

func OpenReader(path string, opt ReaderOptions) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("parquet open %s: %w", path, err)
	}
	ps := pf.Schema()
	paths := ps.Columns()
	names := make([]string, len(paths))
	var schema table.Schema
	for _, path := range paths {
		leaf, ok := ps.Lookup(path...)
		if !ok || len(path) != 1 {
			continue
		}
		names[leaf.ColumnIndex] = path[0]
		schema.Columns = append(schema.Columns, table.ColumnSchema{
			Name:     path[0],
			Type:     kindOf(leaf.Node.Type().Kind()),
			Nullable: leaf.Node.Optional(),
		})
	}
	schema = iox.Force(schema, opt.ForceString)
	return &Reader{file: f, reader: parquet.NewReader(pf), schema: schema, names: names}, nil
}

func kindOf(k parquet.Kind) table.Kind {
	switch k {
	case parquet.Boolean:
		return table.KindBool
	case parquet.Int32, parquet.Int64:
		return table.KindInt
	case parquet.Float, parquet.Double:
		return table.KindFloat
	default:
		return table.KindString
	}
}

func (r *Reader) Close() error {
	_ = r.reader.Close()
	return r.file.Close()
}

func (r *Reader) Schema() table.Schema { return r.schema }

// ReadAll loads the remaining rows.
func (r *Reader) ReadAll() (*table.Frame, error) {
	f := table.NewFrame(r.schema)
	for {
		n, err := r.readInto(f, 1024)
		if errors.Is(err, io.EOF) || (err == nil && n == 0) {
			return f, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// ReadFile opens path and reads every row.
func ReadFile(path string, opt ReaderOptions) (*table.Frame, error) {
	r, err := OpenReader(path, opt)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return r.ReadAll()
}

// readInto appends up to max rows to f.
func (r *Reader) readInto(f *table.Frame, max int) (int, error) {
	rows := make([]parquet.Row, max)
	n, err := r.reader.ReadRows(rows)
	for _, row := range rows[:n] {
		f.AppendNullRow()
		r.setRow(f, f.Rows()-1, row)
	}
	if n > 0 && errors.Is(err, io.EOF) {
		err = nil
	}
	return n, err
}

func (r *Reader) setRow(f *table.Frame, row int, values parquet.Row) {
	for _, v := range values {
		idx := v.Column()
		if v.IsNull() || idx < 0 || idx >= len(r.names) || r.names[idx] == "" {
			continue
		}
		name := r.names[idx]
		cs, _ := f.Schema().Lookup(name)
		if cs.Type == table.KindString {
			_ = f.SetCell(row, name, text(v))
			continue
		}
		switch v.Kind() {
		case parquet.Boolean:
			_ = f.SetCell(row, name, v.Boolean())
		case parquet.Int32:
			_ = f.SetCell(row, name, int64(v.Int32()))
		case parquet.Int64:
			_ = f.SetCell(row, name, v.Int64())
		case parquet.Float:
			_ = f.SetCell(row, name, float64(v.Float()))
		case parquet.Double:
			_ = f.SetCell(row, name, v.Double())
		}
	}
}

func text(v parquet.Value) string {
	switch v.Kind() {
	case parquet.Boolean:
		return strconv.FormatBool(v.Boolean())
	case parquet.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case parquet.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case parquet.Float:
		return strconv.FormatFloat(float64(v.Float()), 'g', -1, 32)
	case parquet.Double:
		return strconv.FormatFloat(v.Double(), 'g', -1, 64)
	default:
		return string(v.ByteArray())
	}
}

// StreamReader yields chunks of a Parquet file for table.RunStream.
type StreamReader struct {
	r         *Reader
	chunkSize int
}

func NewStreamReader(path string, opt ReaderOptions, chunkSize int) (*StreamReader, error) {
	r, err := OpenReader(path, opt)
	if err != nil {
		return nil, err
	}
	if chunkSize <= 0 {
		chunkSize = 8192
	}
	return &StreamReader{r: r, chunkSize: chunkSize}, nil
}

func (s *StreamReader) Schema() table.Schema { return s.r.Schema() }

func (s *StreamReader) Close() error { return s.r.Close() }

func (s *StreamReader) Next() (*table.Frame, error) {
	f := table.NewFrame(s.r.schema)
	n, err := s.r.readInto(f, s.chunkSize)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return nil, err
	}
	return f, err
}
