package impute_test

import (
	"context"
	"errors"
	"testing"

	"github.com/wdm0006/catfill/pkg/table"
	"github.com/wdm0006/catfill/pkg/transform/impute"
)

func TestConstant(t *testing.T) {
	f := mustFrame(t, labels("s", "a", "", "b", ""))
	out, err := (&impute.Constant{Column: "s", Value: "Unknown"}).Apply(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	got := values(t, out, "s")
	if got[1] != "Unknown" || got[3] != "Unknown" {
		t.Fatalf("constant imputer left nulls: %q", got)
	}
	if orig := values(t, f, "s"); orig[1] != "" {
		t.Fatal("input frame was modified")
	}
}

func TestMode(t *testing.T) {
	f := mustFrame(t, labels("s", "b", "a", "", "a", "b", ""))
	out, err := (&impute.Mode{Column: "s"}).Apply(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	got := values(t, out, "s")
	if got[2] != "b" || got[5] != "b" {
		t.Fatalf("expected ties to resolve to the first label seen, got %q", got)
	}
}

func TestMode_AllMissingPassesThrough(t *testing.T) {
	f := mustFrame(t, labels("s", "", ""))
	out, err := (&impute.Mode{Column: "s"}).Apply(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	if got := values(t, out, "s"); got[0] != "" || got[1] != "" {
		t.Fatalf("expected nulls to remain, got %q", got)
	}
}

func TestFallbacks_UnknownColumnFails(t *testing.T) {
	f := mustFrame(t, labels("s", "", "a"))
	for _, tf := range []table.Transform{&impute.Constant{Column: "nope", Value: "x"}, &impute.Mode{Column: "nope"}} {
		if _, err := tf.Apply(context.Background(), f); !errors.Is(err, table.ErrUnknownColumn) {
			t.Fatalf("%s: expected ErrUnknownColumn, got %v", tf.Name(), err)
		}
	}
	if _, err := (&impute.Mode{Column: "nope"}).Fit(f); !errors.Is(err, table.ErrUnknownColumn) {
		t.Fatalf("fit: expected ErrUnknownColumn, got %v", err)
	}
}

func TestModeFit_FillsEveryChunkWithReferenceMode(t *testing.T) {
	ref := mustFrame(t, labels("s", "a", "a", "a", "b", "b", ""))
	fm, err := (&impute.Mode{Column: "s"}).Fit(ref)
	if err != nil {
		t.Fatal(err)
	}
	if fm.Label() != "a" || fm.Name() != "impute_mode" {
		t.Fatalf("fitted %q as %s", fm.Label(), fm.Name())
	}

	// a chunk whose own mode is "b" is still filled with the reference mode
	chunk := mustFrame(t, labels("s", "b", "b", ""))
	out, err := table.NewPipeline().Add(fm).Run(context.Background(), chunk)
	if err != nil {
		t.Fatal(err)
	}
	if got := values(t, out, "s"); got[2] != "a" {
		t.Fatalf("expected reference mode, got %q", got)
	}
}

func TestModeFit_NoLabels(t *testing.T) {
	ref := mustFrame(t, labels("s", "", ""))
	if _, err := (&impute.Mode{Column: "s"}).Fit(ref); !errors.Is(err, impute.ErrNoLabels) {
		t.Fatalf("expected ErrNoLabels, got %v", err)
	}
}
