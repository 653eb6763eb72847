package standardize

import (
	"context"
	"strings"

	"github.com/wdm0006/catfill/pkg/table"
)

// Trim strips surrounding whitespace so " red" and "red" count as one label.
type Trim struct{ Column string }

func (t *Trim) Name() string { return "trim" }

func (t *Trim) Apply(ctx context.Context, f *table.Frame) (*table.Frame, error) {
	return relabel(f, t.Column, strings.TrimSpace), nil
}
