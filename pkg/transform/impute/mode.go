package impute

import (
	"context"
	"errors"
	"fmt"

	"github.com/wdm0006/catfill/pkg/stats"
	"github.com/wdm0006/catfill/pkg/table"
)

// ErrNoLabels is returned by Mode.Fit when the column has no labels to learn from.
var ErrNoLabels = errors.New("no labels")

// Mode fills missing labels with the column's global mode. It is the naive
// fallback for rows the contingency imputer could not resolve.
//
// Apply takes the mode of whatever frame it is given. To fill chunks or
// unseen tables consistently, Fit it on a reference first.
type Mode struct{ Column string }

func (t *Mode) Name() string { return "impute_mode" }

func (t *Mode) Apply(ctx context.Context, f *table.Frame) (*table.Frame, error) {
	return fillMissing(f, t.Column, mostFrequent)
}

// Fit learns the mode of Column on ref. The result fills every frame with
// that same label.
func (t *Mode) Fit(ref *table.Frame) (*FittedMode, error) {
	c, err := ref.StringColumn(t.Column)
	if err != nil {
		return nil, err
	}
	label, ok := mostFrequent(c)
	if !ok {
		return nil, fmt.Errorf("%w in column %s", ErrNoLabels, t.Column)
	}
	return &FittedMode{Constant{Column: t.Column, Value: label}}, nil
}

// FittedMode is a Mode whose label was learned from a reference frame.
type FittedMode struct{ Constant }

func (t *FittedMode) Name() string { return "impute_mode" }

// Label is the learned mode.
func (t *FittedMode) Label() string { return t.Value }

func mostFrequent(c *table.StringColumn) (string, bool) {
	freqs := stats.Frequencies(c)
	if len(freqs) == 0 {
		return "", false
	}
	return freqs[0].Label, true
}
