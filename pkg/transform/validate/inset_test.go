package validate

import (
	"context"
	"errors"
	"testing"

	"github.com/wdm0006/catfill/pkg/table"
)

func TestInSet(t *testing.T) {
	c := table.NewStringColumn("color", 0)
	for _, v := range []string{"red", "blue", "teal", "teal"} {
		c.Append(v)
	}
	c.AppendNull()
	f, err := table.FromColumns(c)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewInSet("color", []string{"red", "blue", "teal"}).Apply(context.Background(), f); err != nil {
		t.Fatalf("unexpected violation: %v", err)
	}

	_, err = NewInSet("color", []string{"red", "blue"}).Apply(context.Background(), f)
	var v *Violation
	if !errors.As(err, &v) {
		t.Fatalf("expected Violation, got %v", err)
	}
	if v.Rows != 2 || len(v.Labels) != 1 || v.Labels[0] != "teal" {
		t.Fatalf("unexpected violation %+v", v)
	}
}
