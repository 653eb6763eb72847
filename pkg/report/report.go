// Package report summarises categorical columns before and after imputation.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/wdm0006/catfill/pkg/stats"
	"github.com/wdm0006/catfill/pkg/table"
	"github.com/wdm0006/catfill/pkg/transform/impute"
)

type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ColumnProfile describes one string column.
type ColumnProfile struct {
	Name     string       `json:"name"`
	Count    int          `json:"count"`
	Missing  int          `json:"missing"`
	Distinct int          `json:"distinct"`
	Top      []LabelCount `json:"top,omitempty"`
}

type Profile struct {
	Rows    int             `json:"rows"`
	Columns []ColumnProfile `json:"columns"`
}

// Collector accumulates label frequencies over one or more frames with the
// same schema, so streamed chunks can be profiled as they pass.
type Collector struct {
	topK  int
	rows  int
	names []string
	freqs map[string]map[string]int
	order map[string][]string
	nulls map[string]int
}

func NewCollector(schema table.Schema, topK int) *Collector {
	c := &Collector{
		topK:  topK,
		freqs: map[string]map[string]int{},
		order: map[string][]string{},
		nulls: map[string]int{},
	}
	for _, cs := range schema.Columns {
		if cs.Type != table.KindString {
			continue
		}
		c.names = append(c.names, cs.Name)
		c.freqs[cs.Name] = map[string]int{}
	}
	return c
}

// ConsumeFrame adds the labels of f; columns absent from f are skipped.
func (c *Collector) ConsumeFrame(f *table.Frame) {
	c.rows += f.Rows()
	for _, name := range c.names {
		col, err := f.StringColumn(name)
		if err != nil {
			continue
		}
		counts := c.freqs[name]
		for i := 0; i < col.Len(); i++ {
			v, ok := col.Get(i)
			if !ok {
				c.nulls[name]++
				continue
			}
			if counts[v] == 0 {
				c.order[name] = append(c.order[name], v)
			}
			counts[v]++
		}
	}
}

// Profile returns the summary so far. Top labels are most frequent first,
// ties in first-seen order.
func (c *Collector) Profile() Profile {
	p := Profile{Rows: c.rows}
	for _, name := range c.names {
		counts := c.freqs[name]
		freqs := make([]stats.Frequency, len(c.order[name]))
		total := 0
		for i, l := range c.order[name] {
			freqs[i] = stats.Frequency{Label: l, Count: counts[l]}
			total += counts[l]
		}
		stats.Rank(freqs)
		cp := ColumnProfile{Name: name, Count: total, Missing: c.nulls[name], Distinct: len(counts)}
		if c.topK > 0 && len(freqs) > c.topK {
			freqs = freqs[:c.topK]
		}
		for _, fq := range freqs {
			cp.Top = append(cp.Top, LabelCount{Label: fq.Label, Count: fq.Count})
		}
		p.Columns = append(p.Columns, cp)
	}
	return p
}

// ProfileFrame profiles the string columns of a single frame.
func ProfileFrame(f *table.Frame, topK int) Profile {
	c := NewCollector(f.Schema(), topK)
	c.ConsumeFrame(f)
	return c.Profile()
}

// Labels returns the distinct labels seen in column name, first seen first.
func (c *Collector) Labels(name string) ([]string, bool) {
	if _, ok := c.freqs[name]; !ok {
		return nil, false
	}
	return append([]string(nil), c.order[name]...), true
}

// Alignment compares the labels of one column in the reference and the input.
// Input rows carrying a label the reference never saw cannot be filled from
// it when that column drives another.
type Alignment struct {
	Column        string   `json:"column"`
	Aligned       bool     `json:"aligned"`
	OnlyInput     []string `json:"only_input"`
	OnlyReference []string `json:"only_reference"`
}

// Align compares every label column of in with the same column of ref, in the
// input's column order. A column the reference lacks has all its labels
// listed as input-only.
func Align(ref, in *Collector) []Alignment {
	out := make([]Alignment, 0, len(in.names))
	for _, name := range in.names {
		a := Alignment{Column: name, OnlyInput: []string{}, OnlyReference: []string{}}
		refLabels, _ := ref.Labels(name)
		refSet := ref.freqs[name]
		for _, l := range in.order[name] {
			if refSet[l] == 0 {
				a.OnlyInput = append(a.OnlyInput, l)
			}
		}
		for _, l := range refLabels {
			if in.freqs[name][l] == 0 {
				a.OnlyReference = append(a.OnlyReference, l)
			}
		}
		_, inRef := ref.freqs[name]
		a.Aligned = inRef && len(a.OnlyInput) == 0 && len(a.OnlyReference) == 0
		out = append(out, a)
	}
	return out
}

// Driver is the JSON form of a selected association.
type Driver struct {
	Target    string  `json:"target"`
	Driver    string  `json:"driver"`
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	DoF       int     `json:"dof"`
}

// Report pairs the association table with before/after profiles.
type Report struct {
	Drivers []Driver `json:"drivers"`
	Before  Profile  `json:"before"`
	After   *Profile `json:"after,omitempty"`

	// Alignment is set when the imputer was fitted on a separate reference.
	Alignment []Alignment `json:"alignment,omitempty"`
}

// New builds a report; after may be nil when nothing was applied.
func New(before Profile, after *Profile, assocs ...impute.AssociationResult) *Report {
	r := &Report{Drivers: []Driver{}, Before: before, After: after}
	for _, assoc := range assocs {
		r.Drivers = append(r.Drivers, Drivers(assoc)...)
	}
	return r
}

// Drivers lists the selected associations in target order.
func Drivers(assoc impute.AssociationResult) []Driver {
	out := make([]Driver, 0, assoc.Len())
	for _, a := range assoc.Pairs() {
		out = append(out, Driver(a))
	}
	return out
}

// Filled returns, per column, how many missing labels the imputation filled.
func (r *Report) Filled() map[string]int {
	out := map[string]int{}
	if r.After == nil {
		return out
	}
	after := map[string]int{}
	for _, cp := range r.After.Columns {
		after[cp.Name] = cp.Missing
	}
	for _, cp := range r.Before.Columns {
		if n, ok := after[cp.Name]; ok {
			out[cp.Name] = cp.Missing - n
		}
	}
	return out
}

func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText renders the drivers and column tables, then the alignment when set.
func (r *Report) WriteText(w io.Writer) error {
	if err := WriteDrivers(w, r.Drivers); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	filled := r.Filled()
	tw := newTable(w)
	hdr := []string{"column", "count", "missing", "distinct", "top"}
	if r.After != nil {
		hdr = append(hdr, "filled", "still missing")
	}
	tw.SetHeader(hdr)
	after := map[string]ColumnProfile{}
	if r.After != nil {
		for _, cp := range r.After.Columns {
			after[cp.Name] = cp
		}
	}
	for _, cp := range r.Before.Columns {
		row := []string{cp.Name, strconv.Itoa(cp.Count), strconv.Itoa(cp.Missing), strconv.Itoa(cp.Distinct), top(cp.Top)}
		if r.After != nil {
			row = append(row, strconv.Itoa(filled[cp.Name]), strconv.Itoa(after[cp.Name].Missing))
		}
		tw.Append(row)
	}
	tw.Render()
	if len(r.Alignment) == 0 {
		return nil
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	return WriteAlignment(w, r.Alignment)
}

// WriteAlignment prints the reference/input label comparison.
func WriteAlignment(w io.Writer, al []Alignment) error {
	tw := newTable(w)
	tw.SetHeader([]string{"column", "aligned", "only in input", "only in reference"})
	for _, a := range al {
		tw.Append([]string{a.Column, strconv.FormatBool(a.Aligned), strings.Join(a.OnlyInput, " "), strings.Join(a.OnlyReference, " ")})
	}
	tw.Render()
	return nil
}

// WriteDrivers prints one row per target with its selected driver.
func WriteDrivers(w io.Writer, drivers []Driver) error {
	tw := newTable(w)
	tw.SetHeader([]string{"target", "driver", "chi2", "dof", "p-value"})
	for _, d := range drivers {
		tw.Append([]string{
			d.Target,
			d.Driver,
			strconv.FormatFloat(d.Statistic, 'f', 4, 64),
			strconv.Itoa(d.DoF),
			strconv.FormatFloat(d.PValue, 'g', 4, 64),
		})
	}
	tw.Render()
	return nil
}

func newTable(w io.Writer) *tablewriter.Table {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	return tw
}

func top(lcs []LabelCount) string {
	parts := make([]string, len(lcs))
	for i, lc := range lcs {
		parts[i] = fmt.Sprintf("%s=%d", lc.Label, lc.Count)
	}
	return strings.Join(parts, " ")
}
