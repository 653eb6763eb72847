package table

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func str(s string) *string { return &s }

func TestCloneIsIndependent(t *testing.T) {
	f := makeFrame(10)
	c := f.Clone()
	if err := c.SetCell(1, "s", "changed"); err != nil {
		t.Fatal(err)
	}
	c.AppendNullRow()
	s, _ := f.StringColumn("s")
	if v, _ := s.Get(1); v != "x" {
		t.Fatalf("original mutated: %q", v)
	}
	if f.Rows() != 10 || c.Rows() != 11 {
		t.Fatalf("rows %d / %d", f.Rows(), c.Rows())
	}
}

func TestFromColumns(t *testing.T) {
	a := StringColumnOf("a", str("x"), nil, str("y"))
	b := NewIntColumn("b", 3)
	f, err := FromColumns(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if f.Rows() != 3 || f.Cols() != 2 {
		t.Fatalf("shape %dx%d", f.Rows(), f.Cols())
	}
	if got := strings.Join(f.CategoricalNames(), ","); got != "a" {
		t.Fatalf("categorical %s", got)
	}
	if _, err := FromColumns(a, StringColumnOf("a")); err == nil {
		t.Fatal("expected duplicate error")
	}
	if _, err := FromColumns(a, NewIntColumn("c", 2)); err == nil {
		t.Fatal("expected length error")
	}
}

func TestStringColumnLookup(t *testing.T) {
	f := makeFrame(2)
	if _, err := f.StringColumn("nope"); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("want ErrUnknownColumn, got %v", err)
	}
	if _, err := f.StringColumn("a"); err == nil || errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("want kind error, got %v", err)
	}
	if _, err := f.StringColumn("s"); err != nil {
		t.Fatal(err)
	}
}

func TestDistinctAndMissing(t *testing.T) {
	c := StringColumnOf("c", str("b"), nil, str("a"), str("b"), str(""), nil)
	if got := strings.Join(c.Distinct(), "|"); got != "b|a|" {
		t.Fatalf("distinct %q", got)
	}
	if c.Missing() != 2 {
		t.Fatalf("missing %d", c.Missing())
	}
}

func TestSetCell(t *testing.T) {
	f := NewFrame(Schema{Columns: []ColumnSchema{
		{Name: "b", Type: KindBool}, {Name: "i", Type: KindInt}, {Name: "f", Type: KindFloat},
		{Name: "s", Type: KindString}, {Name: "t", Type: KindTime},
	}})
	f.AppendNullRow()
	now := time.Now()
	for name, v := range map[string]any{"b": true, "i": 3, "f": int64(2), "s": "x", "t": now} {
		if err := f.SetCell(0, name, v); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	fc, _ := f.ColumnByName("f")
	if v, ok := fc.(*FloatColumn).Get(0); !ok || v != 2 {
		t.Fatalf("f = %v,%v", v, ok)
	}
	if err := f.SetCell(0, "s", 1); err == nil {
		t.Fatal("expected type error")
	}
	if err := f.SetCell(0, "nope", "x"); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("got %v", err)
	}
	if err := f.SetCell(0, "s", nil); err != nil {
		t.Fatal(err)
	}
	sc, _ := f.ColumnByName("s")
	if !sc.IsNull(0) {
		t.Fatal("nil should mark the cell missing")
	}
}
