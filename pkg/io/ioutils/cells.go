package ioutils

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wdm0006/catfill/pkg/table"
)

// DefaultNullTokens are the raw cell texts read as missing values.
var DefaultNullTokens = []string{"", "NA", "NaN", "nan", "null", "NULL", "None"}

// Cells converts between raw text cells and typed frame values.
type Cells struct {
	nulls map[string]bool
}

// NewCells builds a codec; a nil token list selects DefaultNullTokens.
func NewCells(nullTokens []string) Cells {
	if nullTokens == nil {
		nullTokens = DefaultNullTokens
	}
	m := make(map[string]bool, len(nullTokens)+1)
	m[""] = true
	for _, t := range nullTokens {
		m[t] = true
	}
	return Cells{nulls: m}
}

// IsNull reports whether raw (already trimmed) reads as a missing value.
func (c Cells) IsNull(raw string) bool { return c.nulls[raw] }

// SetText parses raw into the cell at row. Null tokens and unparsable values
// leave the cell missing.
func (c Cells) SetText(f *table.Frame, row int, cs table.ColumnSchema, raw string) {
	val := strings.ToValidUTF8(strings.TrimSpace(raw), "?")
	if c.IsNull(val) {
		return
	}
	switch cs.Type {
	case table.KindFloat:
		if x, err := strconv.ParseFloat(val, 64); err == nil {
			_ = f.SetCell(row, cs.Name, x)
		}
	case table.KindInt:
		if x, err := strconv.ParseInt(val, 10, 64); err == nil {
			_ = f.SetCell(row, cs.Name, x)
		}
	case table.KindBool:
		if x, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			_ = f.SetCell(row, cs.Name, x)
		}
	case table.KindTime:
		if x, err := time.Parse(time.RFC3339, val); err == nil {
			_ = f.SetCell(row, cs.Name, x)
		}
	default:
		_ = f.SetCell(row, cs.Name, val)
	}
}

// Format renders a cell as text; ok is false for missing values.
func Format(col table.Column, row int) (string, bool) {
	switch c := col.(type) {
	case *table.FloatColumn:
		if v, ok := c.Get(row); ok {
			return strconv.FormatFloat(v, 'g', -1, 64), true
		}
	case *table.IntColumn:
		if v, ok := c.Get(row); ok {
			return strconv.FormatInt(v, 10), true
		}
	case *table.BoolColumn:
		if v, ok := c.Get(row); ok {
			return strconv.FormatBool(v), true
		}
	case *table.StringColumn:
		return c.Get(row)
	case *table.TimeColumn:
		if v, ok := c.Get(row); ok {
			return v.Format(time.RFC3339), true
		}
	}
	return "", false
}

// Value returns a cell as a plain Go value for record encoders.
func Value(col table.Column, row int) (any, bool) {
	switch c := col.(type) {
	case *table.FloatColumn:
		return c.Get(row)
	case *table.IntColumn:
		return c.Get(row)
	case *table.BoolColumn:
		return c.Get(row)
	case *table.StringColumn:
		return c.Get(row)
	case *table.TimeColumn:
		if v, ok := c.Get(row); ok {
			return v.Format(time.RFC3339), true
		}
	}
	return nil, false
}

// Record collects the present cells of a row keyed by column name.
func Record(f *table.Frame, row int) map[string]any {
	m := make(map[string]any, f.Cols())
	for _, cs := range f.Schema().Columns {
		col, _ := f.ColumnByName(cs.Name)
		if v, ok := Value(col, row); ok {
			m[cs.Name] = v
		}
	}
	return m
}

var numre = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

// KindVotes tallies sampled cells of one column.
type KindVotes struct {
	Num, Int, Bool, Str int
}

// AddText votes for the kind a raw text cell looks like.
func (k *KindVotes) AddText(v string) {
	switch {
	case numre.MatchString(v):
		k.Num++
		if !strings.ContainsAny(v, ".eE") {
			k.Int++
		}
	case strings.EqualFold(v, "true") || strings.EqualFold(v, "false"):
		k.Bool++
	default:
		k.Str++
	}
}

// Kind picks the column kind: numeric wins only with a clear majority, so
// mixed columns fall back to category labels.
func (k KindVotes) Kind() table.Kind {
	switch {
	case k.Bool > k.Num && k.Bool > k.Str:
		return table.KindBool
	case k.Num > k.Str:
		if k.Int == k.Num {
			return table.KindInt
		}
		return table.KindFloat
	default:
		return table.KindString
	}
}

// Force overrides inferred kinds: every column named in names becomes a
// string column regardless of what it looked like.
func Force(schema table.Schema, names []string) table.Schema {
	if len(names) == 0 {
		return schema
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	out := table.Schema{Columns: append([]table.ColumnSchema(nil), schema.Columns...)}
	for i := range out.Columns {
		if want[out.Columns[i].Name] {
			out.Columns[i].Type = table.KindString
		}
	}
	return out
}
