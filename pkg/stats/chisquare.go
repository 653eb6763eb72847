package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Result is the outcome of an independence test.
type Result struct {
	Statistic float64
	PValue    float64
	DoF       int
}

// IndependenceTest scores the dependence between two categorical samples.
// Lower p-values mean stronger evidence of dependence. Implementations return
// ErrDegenerate when the statistic is undefined.
type IndependenceTest interface {
	Test(a, b Sample) (Result, error)
}

// ChiSquare is Pearson's chi-square test of independence. With Correction set,
// Yates' continuity correction is applied to tables with one degree of freedom.
type ChiSquare struct {
	Correction bool
}

func (t ChiSquare) Test(a, b Sample) (Result, error) {
	c, err := NewContingency(a, b)
	if err != nil {
		return Result{}, err
	}
	return t.TestTable(c)
}

// TestTable runs the test on a prebuilt contingency table.
func (t ChiSquare) TestTable(c *Contingency) (Result, error) {
	if len(c.Rows) < 2 || len(c.Cols) < 2 {
		return Result{}, ErrDegenerate
	}
	for _, n := range c.RowTotals() {
		if n == 0 {
			return Result{}, ErrDegenerate
		}
	}
	for _, n := range c.ColTotals() {
		if n == 0 {
			return Result{}, ErrDegenerate
		}
	}
	dof := c.DoF()
	expected := c.Expected()
	obs := make([]float64, 0, len(c.Rows)*len(c.Cols))
	exp := make([]float64, 0, cap(obs))
	for r, row := range c.Counts {
		for k, o := range row {
			e := expected[r][k]
			if t.Correction && dof == 1 {
				d := e - o
				o += math.Min(0.5, math.Abs(d)) * sign(d)
			}
			obs = append(obs, o)
			exp = append(exp, e)
		}
	}
	chi2 := stat.ChiSquare(obs, exp)
	p := distuv.ChiSquared{K: float64(dof)}.Survival(chi2)
	if math.IsNaN(chi2) || math.IsNaN(p) {
		return Result{}, ErrDegenerate
	}
	return Result{Statistic: chi2, PValue: p, DoF: dof}, nil
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
