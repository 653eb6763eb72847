package validate

import (
	"context"
	"fmt"
	"sort"

	"github.com/wdm0006/catfill/pkg/table"
)

// InSet fails when a column holds a label outside the allowed set. Missing
// entries are always allowed.
type InSet struct {
	Column string
	Values map[string]struct{}
}

func NewInSet(col string, vals []string) *InSet {
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		m[v] = struct{}{}
	}
	return &InSet{Column: col, Values: m}
}

func (t *InSet) Name() string { return "validate_in" }

// Violation describes labels rejected by InSet.
type Violation struct {
	Column string
	Rows   int
	Labels []string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("validate_in: column %s has %d values outside allowed set %q", v.Column, v.Rows, v.Labels)
}

func (t *InSet) Apply(ctx context.Context, f *table.Frame) (*table.Frame, error) {
	sc, err := f.StringColumn(t.Column)
	if err != nil {
		return f, nil
	}
	bad := map[string]bool{}
	rows := 0
	for i := 0; i < sc.Len(); i++ {
		v, ok := sc.Get(i)
		if !ok {
			continue
		}
		if _, allowed := t.Values[v]; !allowed {
			bad[v] = true
			rows++
		}
	}
	if rows == 0 {
		return f, nil
	}
	out := &Violation{Column: t.Column, Rows: rows}
	for v := range bad {
		out.Labels = append(out.Labels, v)
	}
	sort.Strings(out.Labels)
	return f, out
}
