package jsonlio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	iox "github.com/wdm0006/catfill/pkg/io/ioutils"
	"github.com/wdm0006/catfill/pkg/table"
)

type ReaderOptions struct {
	SampleRows  int
	NullTokens  []string
	ForceString []string
}

// Reader decodes one JSON object per line. Columns are the union of keys seen
// while sampling, in sorted order; later keys outside the sample are ignored.
type Reader struct {
	dec   *json.Decoder
	opt   ReaderOptions
	cells iox.Cells
	buf   []map[string]any
}

func Open(path string, opt ReaderOptions) (*Reader, io.Closer, error) {
	br, c, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, nil, err
	}
	return NewReaderFrom(br, opt), c, nil
}

func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &Reader{dec: dec, opt: opt, cells: iox.NewCells(opt.NullTokens)}
}

func (r *Reader) InferSchema() (table.Schema, error) {
	max := r.opt.SampleRows
	if max <= 0 {
		max = 100
	}
	keysSet := map[string]struct{}{}
	for len(r.buf) < max {
		m, err := r.decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return table.Schema{}, err
		}
		r.buf = append(r.buf, m)
		for k := range m {
			keysSet[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(keysSet))
	for k := range keysSet {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	schema := table.Schema{Columns: make([]table.ColumnSchema, len(keys))}
	for i, k := range keys {
		schema.Columns[i] = table.ColumnSchema{Name: k, Type: r.inferKind(k), Nullable: true}
	}
	return iox.Force(schema, r.opt.ForceString), nil
}

func (r *Reader) inferKind(key string) table.Kind {
	var votes iox.KindVotes
	for _, m := range r.buf {
		text, ok := r.text(m[key])
		if !ok {
			continue
		}
		switch m[key].(type) {
		case bool:
			votes.Bool++
		case string, json.Number:
			votes.AddText(text)
		default:
			votes.Str++
		}
	}
	return votes.Kind()
}

func (r *Reader) ReadAll(schema table.Schema) (*table.Frame, error) {
	f := table.NewFrame(schema)
	for {
		m, err := r.next()
		if errors.Is(err, io.EOF) {
			return f, nil
		}
		if err != nil {
			return nil, err
		}
		r.appendRecord(f, m)
	}
}

// ReadFile opens, infers and reads a whole JSONL file.
func ReadFile(path string, opt ReaderOptions) (*table.Frame, error) {
	r, c, err := Open(path, opt)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Close() }()
	schema, err := r.InferSchema()
	if err != nil {
		return nil, fmt.Errorf("jsonl %s: %w", path, err)
	}
	return r.ReadAll(schema)
}

func (r *Reader) decode() (map[string]any, error) {
	var m map[string]any
	if err := r.dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *Reader) next() (map[string]any, error) {
	if len(r.buf) > 0 {
		m := r.buf[0]
		r.buf = r.buf[1:]
		return m, nil
	}
	return r.decode()
}

func (r *Reader) appendRecord(f *table.Frame, m map[string]any) {
	f.AppendNullRow()
	row := f.Rows() - 1
	for _, cs := range f.Schema().Columns {
		if text, ok := r.text(m[cs.Name]); ok {
			r.cells.SetText(f, row, cs, text)
		}
	}
}

// text renders a decoded JSON value as cell text; null and null tokens are
// reported as absent.
func (r *Reader) text(v any) (string, bool) {
	var s string
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		s = t
	case json.Number:
		s = t.String()
	case bool:
		s = strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		s = string(b)
	}
	if r.cells.IsNull(s) {
		return "", false
	}
	return s, true
}
