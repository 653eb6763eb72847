package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/wdm0006/catfill/pkg/stats"
	"github.com/wdm0006/catfill/pkg/table"
	imp "github.com/wdm0006/catfill/pkg/transform/impute"
	std "github.com/wdm0006/catfill/pkg/transform/standardize"
	val "github.com/wdm0006/catfill/pkg/transform/validate"
)

// contingencyStep configures impute_contingency.
type contingencyStep struct {
	Columns            []string `json:"columns"`
	Ignore             []string `json:"ignore"`
	IgnoreScope        string   `json:"ignore_scope"` // both|drivers
	MatchMissingDriver bool     `json:"match_missing_driver"`
	Correction         *bool    `json:"correction"`
	Workers            int      `json:"workers"`
}

func (c contingencyStep) imputer(workers int, log *slog.Logger) (*imp.ContingencyImputer, error) {
	scope, err := parseScope(c.IgnoreScope)
	if err != nil {
		return nil, err
	}
	test := stats.ChiSquare{Correction: true}
	if c.Correction != nil {
		test.Correction = *c.Correction
	}
	if c.Workers > 0 {
		workers = c.Workers
	}
	return &imp.ContingencyImputer{
		Columns:            c.Columns,
		Ignore:             c.Ignore,
		Scope:              scope,
		MatchMissingDriver: c.MatchMissingDriver,
		Test:               test,
		Workers:            workers,
		Logger:             log,
	}, nil
}

func parseScope(s string) (imp.IgnoreScope, error) {
	switch s {
	case "", "both":
		return imp.IgnoreBoth, nil
	case "drivers":
		return imp.IgnoreDrivers, nil
	default:
		return 0, fmt.Errorf("unknown ignore_scope %q", s)
	}
}

// defaultSteps is used when a job lists no steps.
var defaultSteps = []json.RawMessage{json.RawMessage(`{"impute_contingency":{}}`)}

// buildPipeline decodes the job steps. Each impute_contingency and impute_mode
// step is fitted on ref as transformed by the steps before it, so fit and apply
// see the same labels and streamed chunks are filled like the whole table. The
// contingency states are returned in step order.
func buildPipeline(ctx context.Context, raw []json.RawMessage, ref *table.Frame, workers int, log *slog.Logger) (*table.Pipeline, []*imp.Fitted, error) {
	if len(raw) == 0 {
		raw = defaultSteps
	}
	p := table.NewPipeline()
	var fitted []*imp.Fitted
	cur := ref
	for i, r := range raw {
		// detect each step by its single key
		var entry map[string]json.RawMessage
		if err := json.Unmarshal(r, &entry); err != nil {
			return nil, nil, fmt.Errorf("step %d: %w", i, err)
		}
		if len(entry) != 1 {
			return nil, nil, fmt.Errorf("step %d: want exactly one key, got %d", i, len(entry))
		}
		for k, v := range entry {
			var t table.Transform
			switch k {
			case "impute_contingency":
				var s contingencyStep
				if err := strictUnmarshal(v, &s); err != nil {
					return nil, nil, fmt.Errorf("step %d (%s): %w", i, k, err)
				}
				ci, err := s.imputer(workers, log)
				if err != nil {
					return nil, nil, fmt.Errorf("step %d (%s): %w", i, k, err)
				}
				st, err := ci.Fit(ctx, cur)
				if err != nil {
					return nil, nil, fmt.Errorf("step %d (%s): fit: %w", i, k, err)
				}
				fitted = append(fitted, st)
				t = st
			case "impute_mode":
				var s columnStep
				if err := strictUnmarshal(v, &s); err != nil {
					return nil, nil, fmt.Errorf("step %d (%s): %w", i, k, err)
				}
				fm, err := (&imp.Mode{Column: s.Column}).Fit(cur)
				if err != nil {
					return nil, nil, fmt.Errorf("step %d (%s): fit: %w", i, k, err)
				}
				log.Debug("mode fitted", "column", s.Column, "label", fm.Label())
				t = fm
			default:
				var err error
				if t, err = decodeStep(k, v); err != nil {
					return nil, nil, fmt.Errorf("step %d (%s): %w", i, k, err)
				}
				if err := checkColumn(cur, v); err != nil {
					return nil, nil, fmt.Errorf("step %d (%s): %w", i, k, err)
				}
			}
			p.Add(t)
			if i < len(raw)-1 {
				next, err := t.Apply(ctx, cur)
				if err != nil {
					return nil, nil, fmt.Errorf("step %d (%s) on reference: %w", i, k, err)
				}
				cur = next
			}
		}
	}
	return p, fitted, nil
}

func decodeStep(kind string, v json.RawMessage) (table.Transform, error) {
	switch kind {
	case "impute_constant":
		var s struct {
			Column string `json:"column"`
			Value  string `json:"value"`
		}
		if err := strictUnmarshal(v, &s); err != nil {
			return nil, err
		}
		return &imp.Constant{Column: s.Column, Value: s.Value}, nil
	case "trim":
		var s columnStep
		if err := strictUnmarshal(v, &s); err != nil {
			return nil, err
		}
		return &std.Trim{Column: s.Column}, nil
	case "lower":
		var s columnStep
		if err := strictUnmarshal(v, &s); err != nil {
			return nil, err
		}
		return &std.Lower{Column: s.Column}, nil
	case "regex_replace":
		var s struct {
			Column  string `json:"column"`
			Pattern string `json:"pattern"`
			Replace string `json:"replace"`
		}
		if err := strictUnmarshal(v, &s); err != nil {
			return nil, err
		}
		return std.NewRegexReplace(s.Column, s.Pattern, s.Replace)
	case "map_values":
		var s struct {
			Column string            `json:"column"`
			Map    map[string]string `json:"map"`
		}
		if err := strictUnmarshal(v, &s); err != nil {
			return nil, err
		}
		return &std.MapValues{Column: s.Column, Map: s.Map}, nil
	case "validate_in":
		var s struct {
			Column string   `json:"column"`
			Values []string `json:"values"`
		}
		if err := strictUnmarshal(v, &s); err != nil {
			return nil, err
		}
		return val.NewInSet(s.Column, s.Values), nil
	default:
		return nil, fmt.Errorf("unknown step")
	}
}

// columnStep configures the steps that take a single column.
type columnStep struct {
	Column string `json:"column"`
}

// checkColumn rejects a step whose column is not a label column of the
// reference, so a misspelled column fails the job instead of doing nothing.
func checkColumn(ref *table.Frame, v json.RawMessage) error {
	var s columnStep
	if err := json.Unmarshal(v, &s); err != nil {
		return err
	}
	_, err := ref.StringColumn(s.Column)
	return err
}

func strictUnmarshal(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
