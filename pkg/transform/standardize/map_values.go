package standardize

import (
	"context"

	"github.com/wdm0006/catfill/pkg/table"
)

// MapValues renames labels; labels without an entry are kept.
type MapValues struct {
	Column string
	Map    map[string]string
}

func (t *MapValues) Name() string { return "map_values" }

func (t *MapValues) Apply(ctx context.Context, f *table.Frame) (*table.Frame, error) {
	return relabel(f, t.Column, func(v string) string {
		if nv, ok := t.Map[v]; ok {
			return nv
		}
		return v
	}), nil
}
