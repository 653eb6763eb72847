package standardize

import (
	"github.com/wdm0006/catfill/pkg/table"
)

// relabel copies f and rewrites every present label of column through fn.
// Missing entries stay missing; absent or non-string columns pass through.
func relabel(f *table.Frame, column string, fn func(string) string) *table.Frame {
	if _, err := f.StringColumn(column); err != nil {
		return f
	}
	out := f.Clone()
	c, _ := out.StringColumn(column)
	for i := 0; i < c.Len(); i++ {
		if v, ok := c.Get(i); ok {
			c.Set(i, fn(v))
		}
	}
	return out
}
