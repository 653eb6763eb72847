package csvio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	iox "github.com/wdm0006/catfill/pkg/io/ioutils"
	"github.com/wdm0006/catfill/pkg/table"
)

type ReaderOptions struct {
	HasHeader  bool
	Delimiter  rune // 0 = sniff, default ','
	SampleRows int  // for inference; default 100
	Strict     bool // if true, error on short/long records
	// NullTokens are cell texts read as missing; nil selects
	// ioutils.DefaultNullTokens.
	NullTokens []string
	// ForceString names columns kept as category labels even when their
	// values look numeric (zip codes, coded answers).
	ForceString []string
}

type Reader struct {
	r     *csv.Reader
	opt   ReaderOptions
	cells iox.Cells
	buf   [][]string
	// repair/warning counters
	shortRecords int
	longRecords  int
}

// Open opens a CSV file (gzip aware, "-" for stdin) and returns a Reader.
func Open(path string, opt ReaderOptions) (*Reader, io.Closer, error) {
	br, c, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, nil, err
	}
	return NewReaderFrom(br, opt), c, nil
}

// NewReaderFrom constructs a Reader from an arbitrary io.Reader (stdin, pipe).
// With a zero Delimiter the first 4KiB are sniffed without being consumed.
func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	rr := csv.NewReader(br)
	rr.FieldsPerRecord = -1
	if opt.Delimiter == 0 {
		sample, _ := br.Peek(4096)
		rr.Comma, rr.LazyQuotes = sniffDelimiterAndQuotes(sample)
	} else {
		rr.Comma = opt.Delimiter
	}
	return &Reader{r: rr, opt: opt, cells: iox.NewCells(opt.NullTokens)}
}

// InferSchema reads header (if present) and samples rows to determine column kinds.
func (r *Reader) InferSchema() (table.Schema, []string, error) {
	rec, err := r.r.Read()
	if err != nil {
		return table.Schema{}, nil, err
	}
	var names []string
	var sample [][]string
	if r.opt.HasHeader {
		names = make([]string, len(rec))
		for i := range rec {
			names[i] = strings.TrimSpace(strings.ToValidUTF8(rec[i], "?"))
		}
		// strip BOM on first header cell if present
		if len(names) > 0 {
			names[0] = strings.TrimPrefix(names[0], "\ufeff")
		}
	} else {
		names = make([]string, len(rec))
		for i := range names {
			names[i] = "col_" + strconv.Itoa(i)
		}
		sample = append(sample, rec)
	}

	max := r.opt.SampleRows
	if max <= 0 {
		max = 100
	}
	for len(sample) < max {
		rr, err := r.r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return table.Schema{}, nil, err
		}
		sample = append(sample, rr)
	}

	schema := table.Schema{Columns: make([]table.ColumnSchema, len(names))}
	for i := range names {
		var votes iox.KindVotes
		for _, row := range sample {
			if i >= len(row) {
				continue
			}
			if v := strings.TrimSpace(row[i]); !r.cells.IsNull(v) {
				votes.AddText(v)
			}
		}
		schema.Columns[i] = table.ColumnSchema{Name: names[i], Type: votes.Kind(), Nullable: true}
	}
	schema = iox.Force(schema, r.opt.ForceString)
	// retain sampled rows for subsequent reads
	r.buf = append(r.buf, sample...)
	return schema, names, nil
}

// ReadAll loads the rest of the CSV into a Frame.
func (r *Reader) ReadAll(schema table.Schema) (*table.Frame, error) {
	f := table.NewFrame(schema)
	for {
		rec, err := r.next()
		if errors.Is(err, io.EOF) {
			return f, nil
		}
		if err != nil {
			return nil, err
		}
		if err := r.appendRecord(f, rec); err != nil {
			return nil, err
		}
	}
}

// ReadFile opens, infers and reads a whole CSV file.
func ReadFile(path string, opt ReaderOptions) (*table.Frame, error) {
	r, c, err := Open(path, opt)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Close() }()
	schema, _, err := r.InferSchema()
	if err != nil {
		return nil, fmt.Errorf("csv %s: %w", path, err)
	}
	return r.ReadAll(schema)
}

func (r *Reader) next() ([]string, error) {
	if len(r.buf) > 0 {
		rec := r.buf[0]
		r.buf = r.buf[1:]
		return rec, nil
	}
	return r.r.Read()
}

func (r *Reader) appendRecord(f *table.Frame, rec []string) error {
	schema := f.Schema()
	if len(rec) > len(schema.Columns) {
		r.longRecords++
		if r.opt.Strict {
			return fmt.Errorf("csv long record at row %d: need %d fields, got %d", f.Rows()+1, len(schema.Columns), len(rec))
		}
	}
	if len(rec) < len(schema.Columns) {
		r.shortRecords++
		if r.opt.Strict {
			return fmt.Errorf("csv short record at row %d: need %d fields, got %d", f.Rows()+1, len(schema.Columns), len(rec))
		}
	}
	f.AppendNullRow()
	row := f.Rows() - 1
	for i, cs := range schema.Columns {
		if i >= len(rec) {
			break
		}
		r.cells.SetText(f, row, cs, rec[i])
	}
	return nil
}

func sniffDelimiterAndQuotes(sample []byte) (rune, bool) {
	if len(sample) == 0 {
		return ',', false
	}
	// only the first line votes; quoted payloads further down skew counts
	if i := strings.IndexByte(string(sample), '\n'); i > 0 {
		sample = sample[:i]
	}
	candidates := []byte{',', '\t', ';', '|'}
	best := byte(',')
	bestCount := 0
	for _, c := range candidates {
		cnt := 0
		for _, b := range sample {
			if b == c {
				cnt++
			}
		}
		if cnt > bestCount {
			bestCount = cnt
			best = c
		}
	}
	quoteCount := strings.Count(string(sample), `"`)
	return rune(best), quoteCount%2 != 0
}

// Warnings returns a summary string of any repairs/mismatches encountered.
func (r *Reader) Warnings() string {
	if r.shortRecords == 0 && r.longRecords == 0 {
		return ""
	}
	parts := []string{}
	if r.shortRecords > 0 {
		parts = append(parts, fmt.Sprintf("short_records=%d", r.shortRecords))
	}
	if r.longRecords > 0 {
		parts = append(parts, fmt.Sprintf("long_records=%d", r.longRecords))
	}
	return strings.Join(parts, ", ")
}
