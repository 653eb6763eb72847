package impute_test

import (
	"context"
	"errors"
	"testing"

	"github.com/wdm0006/catfill/pkg/table"
	"github.com/wdm0006/catfill/pkg/transform/impute"
)

// abc has A independent of B and perfectly dependent on C.
func abc(t testing.TB) *table.Frame {
	return mustFrame(t,
		labels("A", "x", "x", "y", "y", "x", "x", "y", "y"),
		labels("B", "p", "q", "p", "q", "p", "q", "p", "q"),
		labels("C", "c1", "c1", "c2", "c2", "c1", "c1", "c2", "c2"),
	)
}

func TestFind_PrefersDependentColumn(t *testing.T) {
	finder := &impute.AssociationFinder{}
	res, err := finder.Find(context.Background(), abc(t), []string{"A", "B", "C"})
	if err != nil {
		t.Fatal(err)
	}
	a, ok := res.Driver("A")
	if !ok {
		t.Fatal("A has no driver")
	}
	if a.Driver != "C" {
		t.Fatalf("expected C as driver of A, got %s (p=%g)", a.Driver, a.PValue)
	}
	if a.PValue >= 0.05 {
		t.Fatalf("expected a small p-value, got %g", a.PValue)
	}
	for _, p := range res.Pairs() {
		if p.Target == p.Driver {
			t.Fatalf("column %s drives itself", p.Target)
		}
	}
}

func TestFind_TieKeepsFirstDriver(t *testing.T) {
	f := mustFrame(t,
		labels("A", "x", "x", "y", "y"),
		labels("B1", "u", "u", "v", "v"),
		labels("B2", "u", "u", "v", "v"),
	)
	for _, tc := range []struct {
		order []string
		want  string
	}{
		{[]string{"A", "B1", "B2"}, "B1"},
		{[]string{"A", "B2", "B1"}, "B2"},
	} {
		for i := 0; i < 10; i++ {
			res, err := (&impute.AssociationFinder{Workers: 3}).Find(context.Background(), f, tc.order)
			if err != nil {
				t.Fatal(err)
			}
			a, _ := res.Driver("A")
			if a.Driver != tc.want {
				t.Fatalf("order %v run %d: expected %s, got %s", tc.order, i, tc.want, a.Driver)
			}
		}
	}
}

func TestFind_TieWithFakeStatistic(t *testing.T) {
	f := mustFrame(t, labels("A", "x"), labels("B", "y"), labels("C", "z"))
	finder := &impute.AssociationFinder{Test: fakeTest{
		"A>B": 0.2, "A>C": 0.2,
		"B>A": 0.5, "B>C": 0.1,
	}}
	res, err := finder.Find(context.Background(), f, []string{"A", "B", "C"})
	if err != nil {
		t.Fatal(err)
	}
	if a, _ := res.Driver("A"); a.Driver != "B" {
		t.Fatalf("expected B for A, got %s", a.Driver)
	}
	if b, _ := res.Driver("B"); b.Driver != "C" {
		t.Fatalf("expected C for B, got %s", b.Driver)
	}
	if _, ok := res.Driver("C"); ok {
		t.Fatal("C only has degenerate pairs and must not get a driver")
	}
}

func TestFind_DegenerateColumnsExcluded(t *testing.T) {
	f := mustFrame(t,
		labels("A", "x", "x", "y", "y"),
		labels("C", "c1", "c1", "c2", "c2"),
		labels("K", "k", "k", "k", "k"),
		labels("E", "", "", "", ""),
	)
	res, err := (&impute.AssociationFinder{}).Find(context.Background(), f, []string{"A", "C", "K", "E"})
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"K", "E"} {
		if _, ok := res.Driver(name); ok {
			t.Fatalf("%s should have no driver", name)
		}
	}
	for _, p := range res.Pairs() {
		if p.Driver == "K" || p.Driver == "E" {
			t.Fatalf("degenerate column %s chosen as driver", p.Driver)
		}
	}
	if res.Len() != 2 {
		t.Fatalf("expected 2 associations, got %d", res.Len())
	}
}

func TestFind_FewerThanTwoColumns(t *testing.T) {
	f := mustFrame(t, labels("A", "x", "y"))
	res, err := (&impute.AssociationFinder{}).Find(context.Background(), f, []string{"A"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Len() != 0 {
		t.Fatalf("expected empty result, got %d", res.Len())
	}
}

func TestFind_InvalidColumn(t *testing.T) {
	n := table.NewIntColumn("n", 8)
	f := abc(t)
	cols := []table.Column{}
	for _, name := range []string{"A", "B", "C"} {
		c, _ := f.ColumnByName(name)
		cols = append(cols, c)
	}
	f = mustFrame(t, append(cols, n)...)

	for _, name := range []string{"missing", "n"} {
		_, err := (&impute.AssociationFinder{}).Find(context.Background(), f, []string{"A", name})
		var ice *impute.InvalidColumnError
		if !errors.As(err, &ice) {
			t.Fatalf("%s: expected InvalidColumnError, got %v", name, err)
		}
		if ice.Column != name {
			t.Fatalf("expected column %s in error, got %s", name, ice.Column)
		}
	}
}

func TestFind_IgnoreScope(t *testing.T) {
	f := abc(t)
	cols := []string{"A", "B", "C"}

	both, err := (&impute.AssociationFinder{Ignore: []string{"C"}}).Find(context.Background(), f, cols)
	if err != nil {
		t.Fatal(err)
	}
	if a, _ := both.Driver("A"); a.Driver != "B" {
		t.Fatalf("ignored C must not drive A, got %s", a.Driver)
	}
	if _, ok := both.Driver("C"); ok {
		t.Fatal("C is ignored as a target too")
	}

	drivers, err := (&impute.AssociationFinder{Ignore: []string{"C"}, Scope: impute.IgnoreDrivers}).Find(context.Background(), f, cols)
	if err != nil {
		t.Fatal(err)
	}
	c, ok := drivers.Driver("C")
	if !ok || c.Driver != "A" {
		t.Fatalf("expected C to be imputed from A, got %+v (ok=%v)", c, ok)
	}
	for _, p := range drivers.Pairs() {
		if p.Driver == "C" {
			t.Fatalf("C drives %s despite being ignored", p.Target)
		}
	}
}

func TestFind_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&impute.AssociationFinder{}).Find(ctx, abc(t), []string{"A", "B", "C"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
