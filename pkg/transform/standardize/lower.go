package standardize

import (
	"context"
	"strings"

	"github.com/wdm0006/catfill/pkg/table"
)

type Lower struct{ Column string }

func (t *Lower) Name() string { return "lower" }

func (t *Lower) Apply(ctx context.Context, f *table.Frame) (*table.Frame, error) {
	return relabel(f, t.Column, strings.ToLower), nil
}
