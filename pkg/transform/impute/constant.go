package impute

import (
	"context"

	"github.com/wdm0006/catfill/pkg/table"
)

// Constant fills every missing label of Column with Value, e.g. "Unknown".
type Constant struct {
	Column string
	Value  string
}

func (t *Constant) Name() string { return "impute_constant" }

func (t *Constant) Apply(ctx context.Context, f *table.Frame) (*table.Frame, error) {
	return fillMissing(f, t.Column, func(*table.StringColumn) (string, bool) { return t.Value, true })
}

// fillMissing copies f and sets every null of column to the value pick
// derives from the original column. The column must exist and hold labels.
func fillMissing(f *table.Frame, column string, pick func(*table.StringColumn) (string, bool)) (*table.Frame, error) {
	src, err := f.StringColumn(column)
	if err != nil {
		return nil, err
	}
	if src.Missing() == 0 {
		return f, nil
	}
	v, ok := pick(src)
	if !ok {
		return f, nil
	}
	out := f.Clone()
	c, _ := out.StringColumn(column)
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			c.Set(i, v)
		}
	}
	return out, nil
}
