package impute_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/wdm0006/catfill/pkg/table"
	"github.com/wdm0006/catfill/pkg/transform/impute"
)

// makeLargeFrame builds k categorical columns where column i is a noisy
// function of column 0, with roughly one label in ten missing.
func makeLargeFrame(n, k int) *table.Frame {
	rnd := rand.New(rand.NewSource(7))
	cols := make([]table.Column, k)
	for c := range cols {
		cols[c] = table.NewStringColumn(fmt.Sprintf("c%d", c), n)
	}
	for r := 0; r < n; r++ {
		base := rnd.Intn(5)
		for c := range cols {
			sc := cols[c].(*table.StringColumn)
			if rnd.Float64() < 0.1 {
				sc.SetNull(r)
				continue
			}
			v := (base + c) % 5
			if rnd.Float64() < 0.2 {
				v = rnd.Intn(5)
			}
			sc.Set(r, fmt.Sprintf("v%d", v))
		}
	}
	f, _ := table.FromColumns(cols...)
	return f
}

func BenchmarkFit(b *testing.B) {
	f := makeLargeFrame(10000, 6)
	imp := &impute.ContingencyImputer{Workers: 4}
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		if _, err := imp.Fit(context.Background(), f); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkApply(b *testing.B) {
	f := makeLargeFrame(10000, 6)
	st, err := (&impute.ContingencyImputer{}).Fit(context.Background(), f)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		if _, err := impute.Apply(context.Background(), st, f); err != nil {
			b.Fatal(err)
		}
	}
}
