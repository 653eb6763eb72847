package stats

import (
	"errors"
	"fmt"
)

// ErrDegenerate is returned when a statistic is undefined for a pair of
// samples, e.g. a side with fewer than two distinct labels.
var ErrDegenerate = errors.New("degenerate contingency table")

// Sample is a sequence of category labels; ok=false marks a missing entry.
// *table.StringColumn satisfies it.
type Sample interface {
	Len() int
	Get(i int) (string, bool)
}

// Labels adapts a plain slice to Sample. Every entry is present.
type Labels []string

func (l Labels) Len() int                 { return len(l) }
func (l Labels) Get(i int) (string, bool) { return l[i], true }

// Contingency holds the joint counts of two samples. Rows index the labels of
// the first sample and Cols those of the second, both in first-seen order.
// Row pairs where either side is missing are not counted.
type Contingency struct {
	Rows   []string
	Cols   []string
	Counts [][]float64
	N      float64
}

// NewContingency cross-tabulates a against b.
func NewContingency(a, b Sample) (*Contingency, error) {
	if a.Len() != b.Len() {
		return nil, fmt.Errorf("sample lengths differ: %d vs %d", a.Len(), b.Len())
	}
	c := &Contingency{}
	rowIdx := map[string]int{}
	colIdx := map[string]int{}
	type cell struct{ r, c int }
	counts := map[cell]float64{}
	for i := 0; i < a.Len(); i++ {
		av, ok := a.Get(i)
		if !ok {
			continue
		}
		bv, ok := b.Get(i)
		if !ok {
			continue
		}
		r, ok := rowIdx[av]
		if !ok {
			r = len(c.Rows)
			rowIdx[av] = r
			c.Rows = append(c.Rows, av)
		}
		k, ok := colIdx[bv]
		if !ok {
			k = len(c.Cols)
			colIdx[bv] = k
			c.Cols = append(c.Cols, bv)
		}
		counts[cell{r, k}]++
		c.N++
	}
	c.Counts = make([][]float64, len(c.Rows))
	for r := range c.Counts {
		c.Counts[r] = make([]float64, len(c.Cols))
	}
	for at, n := range counts {
		c.Counts[at.r][at.c] = n
	}
	return c, nil
}

// RowTotals returns the marginal count of every row label.
func (c *Contingency) RowTotals() []float64 {
	out := make([]float64, len(c.Rows))
	for r, row := range c.Counts {
		for _, n := range row {
			out[r] += n
		}
	}
	return out
}

// ColTotals returns the marginal count of every column label.
func (c *Contingency) ColTotals() []float64 {
	out := make([]float64, len(c.Cols))
	for _, row := range c.Counts {
		for k, n := range row {
			out[k] += n
		}
	}
	return out
}

// DoF is the degrees of freedom of the independence test.
func (c *Contingency) DoF() int {
	if len(c.Rows) == 0 || len(c.Cols) == 0 {
		return 0
	}
	return (len(c.Rows) - 1) * (len(c.Cols) - 1)
}

// Expected returns the cell frequencies expected under independence.
func (c *Contingency) Expected() [][]float64 {
	rt, ct := c.RowTotals(), c.ColTotals()
	out := make([][]float64, len(c.Rows))
	for r := range out {
		out[r] = make([]float64, len(c.Cols))
		for k := range out[r] {
			if c.N > 0 {
				out[r][k] = rt[r] * ct[k] / c.N
			}
		}
	}
	return out
}
