package impute

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wdm0006/catfill/pkg/logging"
	"github.com/wdm0006/catfill/pkg/stats"
	"github.com/wdm0006/catfill/pkg/table"
)

// ContingencyImputer fills missing labels of a categorical column with the
// label that most often co-occurs with the row's value in the column it is
// most strongly associated with.
//
// The imputer itself only holds configuration. Fit returns an immutable
// *Fitted that can be applied to any number of frames sharing the schema.
type ContingencyImputer struct {
	// Columns lists the candidate columns in tie-break order. Empty means
	// every string column in schema order.
	Columns []string
	Ignore  []string
	Scope   IgnoreScope
	// MatchMissingDriver also learns a mode for rows whose driver value is
	// itself missing and fills such rows from it.
	MatchMissingDriver bool
	Test               stats.IndependenceTest
	Moder              stats.Moder
	Workers            int
	Logger             *slog.Logger
}

// ModeEntry is one learned driver label -> target label mapping.
type ModeEntry struct {
	Driver string
	Mode   string
}

// ModeMap maps driver labels to the mode of the target column.
type ModeMap struct {
	Target  string
	Driver  string
	entries []ModeEntry
	modes   map[string]string
	// missing is the mode for rows with a missing driver, when learned.
	missing    string
	hasMissing bool
}

// Lookup returns the mode for a driver value; present=false asks for the
// missing-driver group.
func (m *ModeMap) Lookup(driver string, present bool) (string, bool) {
	if !present {
		return m.missing, m.hasMissing
	}
	v, ok := m.modes[driver]
	return v, ok
}

// Entries returns the mappings in first-seen driver order.
func (m *ModeMap) Entries() []ModeEntry { return append([]ModeEntry(nil), m.entries...) }

// Len is the number of driver values with a learned mode.
func (m *ModeMap) Len() int { return len(m.entries) }

// Fitted is the frozen result of ContingencyImputer.Fit. It is never mutated
// after construction and is safe for concurrent use.
type Fitted struct {
	assoc  AssociationResult
	maps   []*ModeMap
	logger *slog.Logger
}

// Associations returns the driver selection the fitted state was built from.
func (s *Fitted) Associations() AssociationResult { return s.assoc }

// Targets lists the imputable columns in fit order.
func (s *Fitted) Targets() []string {
	out := make([]string, len(s.maps))
	for i, m := range s.maps {
		out[i] = m.Target
	}
	return out
}

// ModeMap returns the mapping learned for target.
func (s *Fitted) ModeMap(target string) (*ModeMap, bool) {
	for _, m := range s.maps {
		if m.Target == target {
			cp := *m
			cp.entries = m.Entries()
			return &cp, true
		}
	}
	return nil, false
}

func (s *Fitted) Name() string { return "impute_contingency" }

// Apply lets a fitted state run as a pipeline step.
func (s *Fitted) Apply(ctx context.Context, f *table.Frame) (*table.Frame, error) {
	return Apply(ctx, s, f)
}

// Finder returns the association finder Fit uses.
func (m *ContingencyImputer) Finder() *AssociationFinder {
	return &AssociationFinder{
		Test:    m.Test,
		Ignore:  m.Ignore,
		Scope:   m.Scope,
		Workers: m.Workers,
		Logger:  m.Logger,
	}
}

// Fit selects a driver for every candidate column of f and learns the
// per-driver-label modes.
func (m *ContingencyImputer) Fit(ctx context.Context, f *table.Frame) (*Fitted, error) {
	log := logging.OrDiscard(m.Logger)
	moder := m.Moder
	if moder == nil {
		moder = stats.FirstMode{}
	}
	columns := m.Columns
	if len(columns) == 0 {
		columns = f.CategoricalNames()
	}
	assoc, err := m.Finder().Find(ctx, f, columns)
	if err != nil {
		return nil, err
	}

	st := &Fitted{assoc: assoc, logger: log}
	for _, a := range assoc.pairs {
		target, _ := f.StringColumn(a.Target)
		driver, _ := f.StringColumn(a.Driver)
		mm := buildModeMap(target, driver, moder, m.MatchMissingDriver)
		st.maps = append(st.maps, mm)
		log.DebugContext(ctx, "mode map learned",
			"target", a.Target,
			"driver", a.Driver,
			"p_value", a.PValue,
			"entries", mm.Len(),
		)
	}
	log.InfoContext(ctx, "contingency imputer fitted",
		"rows", f.Rows(),
		"candidates", len(columns),
		"targets", len(st.maps),
	)
	return st, nil
}

func buildModeMap(target, driver *table.StringColumn, moder stats.Moder, matchMissing bool) *ModeMap {
	groups := map[string][]string{}
	var order []string
	var missingGroup []string
	for i := 0; i < driver.Len(); i++ {
		tv, tok := target.Get(i)
		dv, dok := driver.Get(i)
		if !dok {
			if matchMissing && tok {
				missingGroup = append(missingGroup, tv)
			}
			continue
		}
		if _, seen := groups[dv]; !seen {
			order = append(order, dv)
			groups[dv] = nil
		}
		if tok {
			groups[dv] = append(groups[dv], tv)
		}
	}

	mm := &ModeMap{Target: target.Name(), Driver: driver.Name(), modes: make(map[string]string, len(order))}
	for _, dv := range order {
		if mode, ok := moder.Mode(groups[dv]); ok {
			mm.modes[dv] = mode
			mm.entries = append(mm.entries, ModeEntry{Driver: dv, Mode: mode})
		}
	}
	if matchMissing {
		mm.missing, mm.hasMissing = moder.Mode(missingGroup)
	}
	return mm
}

var errNotFitted = errors.New("imputer state is not fitted")

// Apply returns a copy of f with missing target labels filled from the
// fitted mode maps. Driver values are always read from f, so a label filled
// in this call never drives another fill. f itself is not modified.
func Apply(ctx context.Context, s *Fitted, f *table.Frame) (*table.Frame, error) {
	if s == nil {
		return nil, errNotFitted
	}
	type job struct {
		m      *ModeMap
		driver *table.StringColumn
	}
	jobs := make([]job, 0, len(s.maps))
	for _, m := range s.maps {
		if _, err := f.StringColumn(m.Target); err != nil {
			return nil, &SchemaMismatchError{Column: m.Target, Role: "target", cause: err}
		}
		driver, err := f.StringColumn(m.Driver)
		if err != nil {
			return nil, &SchemaMismatchError{Column: m.Driver, Role: "driver", cause: err}
		}
		jobs = append(jobs, job{m: m, driver: driver})
	}

	out := f.Clone()
	for _, jb := range jobs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		target, _ := out.StringColumn(jb.m.Target)
		filled, left := 0, 0
		for i := 0; i < target.Len(); i++ {
			if !target.IsNull(i) {
				continue
			}
			dv, dok := jb.driver.Get(i)
			mode, ok := jb.m.Lookup(dv, dok)
			if !ok {
				left++
				continue
			}
			target.Set(i, mode)
			filled++
		}
		if filled+left > 0 {
			s.logger.DebugContext(ctx, "column imputed",
				"target", jb.m.Target,
				"driver", jb.m.Driver,
				"filled", filled,
				"unresolved", left,
			)
		}
	}
	return out, nil
}
