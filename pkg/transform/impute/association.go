package impute

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/wdm0006/catfill/pkg/logging"
	"github.com/wdm0006/catfill/pkg/stats"
	"github.com/wdm0006/catfill/pkg/table"
)

// IgnoreScope controls which roles an ignored column is excluded from.
type IgnoreScope int

const (
	// IgnoreBoth keeps ignored columns out of the search entirely.
	IgnoreBoth IgnoreScope = iota
	// IgnoreDrivers still imputes ignored columns but never uses them to
	// impute others.
	IgnoreDrivers
)

// Association links a target column to the driver column it depends on most.
type Association struct {
	Target    string
	Driver    string
	Statistic float64
	PValue    float64
	DoF       int
}

// AssociationResult is the per-target driver selection, in target order.
type AssociationResult struct {
	pairs []Association
	index map[string]int
}

// Len is the number of targets that received a driver.
func (r AssociationResult) Len() int { return len(r.pairs) }

// Pairs returns a copy of the selected associations.
func (r AssociationResult) Pairs() []Association {
	return append([]Association(nil), r.pairs...)
}

// Driver returns the association selected for target, if any.
func (r AssociationResult) Driver(target string) (Association, bool) {
	i, ok := r.index[target]
	if !ok {
		return Association{}, false
	}
	return r.pairs[i], true
}

// AssociationFinder selects, for each categorical column, the other column
// with the lowest independence-test p-value.
type AssociationFinder struct {
	// Test defaults to a chi-square test with Yates' correction.
	Test   stats.IndependenceTest
	Ignore []string
	Scope  IgnoreScope
	// Workers bounds concurrent pair tests; values below 1 mean 1.
	Workers int
	Logger  *slog.Logger
}

type pairScore struct {
	target, driver int
	res            stats.Result
	err            error
}

// Find runs the pairwise search over columns, which fixes the tie-break
// order: among equal p-values the driver listed first wins.
func (a *AssociationFinder) Find(ctx context.Context, f *table.Frame, columns []string) (AssociationResult, error) {
	log := logging.OrDiscard(a.Logger)
	test := a.Test
	if test == nil {
		test = stats.ChiSquare{Correction: true}
	}

	columns = dedupe(columns)
	cols := make([]*table.StringColumn, len(columns))
	for i, name := range columns {
		c, err := f.StringColumn(name)
		if err != nil {
			reason := "not a string column"
			if errors.Is(err, table.ErrUnknownColumn) {
				reason = "not found"
			}
			return AssociationResult{}, &InvalidColumnError{Column: name, Reason: reason, cause: err}
		}
		cols[i] = c
	}

	ignored := make(map[string]bool, len(a.Ignore))
	for _, name := range a.Ignore {
		ignored[name] = true
	}
	var targets, drivers []int
	for i, name := range columns {
		if !ignored[name] {
			drivers = append(drivers, i)
		}
		if !ignored[name] || a.Scope == IgnoreDrivers {
			targets = append(targets, i)
		}
	}

	var scores []pairScore
	for _, t := range targets {
		for _, d := range drivers {
			if t != d {
				scores = append(scores, pairScore{target: t, driver: d})
			}
		}
	}

	workers := a.Workers
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range scores {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s := &scores[i]
			s.res, s.err = test.Test(cols[s.target], cols[s.driver])
			if s.err != nil && !errors.Is(s.err, stats.ErrDegenerate) {
				return fmt.Errorf("test %s against %s: %w", columns[s.target], columns[s.driver], s.err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return AssociationResult{}, err
	}

	out := AssociationResult{index: make(map[string]int)}
	best := -1
	flush := func() {
		if best < 0 {
			return
		}
		s := scores[best]
		out.index[columns[s.target]] = len(out.pairs)
		out.pairs = append(out.pairs, Association{
			Target:    columns[s.target],
			Driver:    columns[s.driver],
			Statistic: s.res.Statistic,
			PValue:    s.res.PValue,
			DoF:       s.res.DoF,
		})
		best = -1
	}
	for i, s := range scores {
		if i > 0 && scores[i-1].target != s.target {
			flush()
		}
		if s.err != nil || math.IsNaN(s.res.PValue) {
			log.DebugContext(ctx, "pair excluded",
				"target", columns[s.target],
				"driver", columns[s.driver],
				"error", s.err,
			)
			continue
		}
		if best < 0 || s.res.PValue < scores[best].res.PValue {
			best = i
		}
	}
	flush()

	log.DebugContext(ctx, "associations selected",
		"columns", len(columns),
		"pairs", len(scores),
		"targets", out.Len(),
	)
	return out, nil
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
