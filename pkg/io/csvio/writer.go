package csvio

import (
	"encoding/csv"
	"io"

	iox "github.com/wdm0006/catfill/pkg/io/ioutils"
	"github.com/wdm0006/catfill/pkg/table"
)

type WriterOptions struct {
	Delimiter rune // default ','
	// NullText is written for missing cells; empty by default.
	NullText string
}

// WriteAll writes a Frame to a CSV file with headers. A .gz path is
// compressed and "-" writes to stdout.
func WriteAll(path string, f *table.Frame, opt WriterOptions) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	if err := Write(out, f, opt); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Write encodes f with a header row onto w.
func Write(w io.Writer, f *table.Frame, opt WriterOptions) error {
	cw := newCSVWriter(w, opt)
	if err := cw.Write(f.Schema().Names()); err != nil {
		return err
	}
	if err := writeRows(cw, f, opt); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func newCSVWriter(w io.Writer, opt WriterOptions) *csv.Writer {
	cw := csv.NewWriter(w)
	if opt.Delimiter != 0 {
		cw.Comma = opt.Delimiter
	}
	return cw
}

func writeRows(cw *csv.Writer, f *table.Frame, opt WriterOptions) error {
	schema := f.Schema()
	cols := make([]table.Column, len(schema.Columns))
	for i, cs := range schema.Columns {
		cols[i], _ = f.ColumnByName(cs.Name)
	}
	row := make([]string, len(cols))
	for r := 0; r < f.Rows(); r++ {
		for c, col := range cols {
			v, ok := iox.Format(col, r)
			if !ok {
				v = opt.NullText
			}
			row[c] = v
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}
