package impute_test

import (
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wdm0006/catfill/pkg/stats"
	"github.com/wdm0006/catfill/pkg/table"
)

// labels builds a string column; "" marks a missing entry.
func labels(name string, vals ...string) *table.StringColumn {
	c := table.NewStringColumn(name, 0)
	for _, v := range vals {
		if v == "" {
			c.AppendNull()
			continue
		}
		c.Append(v)
	}
	return c
}

func mustFrame(t testing.TB, cols ...table.Column) *table.Frame {
	t.Helper()
	f, err := table.FromColumns(cols...)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

// values reads a string column back; missing entries come out as "".
func values(t testing.TB, f *table.Frame, name string) []string {
	t.Helper()
	c, err := f.StringColumn(name)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]string, c.Len())
	for i := range out {
		out[i], _ = c.Get(i)
	}
	return out
}

var frameCmp = cmp.Exporter(func(reflect.Type) bool { return true })

func framesEqual(a, b any) string { return cmp.Diff(a, b, frameCmp) }

// fakeTest returns canned p-values keyed by "target>driver"; pairs not in
// the map are degenerate.
type fakeTest map[string]float64

func (ft fakeTest) Test(a, b stats.Sample) (stats.Result, error) {
	key := a.(*table.StringColumn).Name() + ">" + b.(*table.StringColumn).Name()
	p, ok := ft[key]
	if !ok {
		return stats.Result{}, stats.ErrDegenerate
	}
	return stats.Result{PValue: p, DoF: 1}, nil
}
