// Package golearn converts between catfill frames and
// github.com/sjwhitworth/golearn/base DenseInstances, so imputed data can be
// handed to golearn classifiers.
package golearn

import (
	"fmt"
	"math"

	"github.com/sjwhitworth/golearn/base"

	iox "github.com/wdm0006/catfill/pkg/io/ioutils"
	"github.com/wdm0006/catfill/pkg/table"
)

// DefaultMissingLabel stands in for a missing category; golearn has no nulls.
const DefaultMissingLabel = "?"

type Options struct {
	// Class names the class attribute; empty selects the last column.
	Class string
	// MissingLabel encodes missing categorical cells. Missing numeric cells
	// become NaN.
	MissingLabel string
}

// ToDenseInstances converts a Frame into golearn DenseInstances. Int and
// float columns become float attributes, everything else categorical.
func ToDenseInstances(f *table.Frame, opt Options) (*base.DenseInstances, error) {
	schema := f.Schema()
	if len(schema.Columns) == 0 {
		return nil, fmt.Errorf("golearn: frame has no columns")
	}
	missing := opt.MissingLabel
	if missing == "" {
		missing = DefaultMissingLabel
	}
	class := opt.Class
	if class == "" {
		class = schema.Columns[len(schema.Columns)-1].Name
	}
	if _, ok := schema.Lookup(class); !ok {
		return nil, fmt.Errorf("golearn: class %w: %s", table.ErrUnknownColumn, class)
	}

	attrs := make([]base.Attribute, len(schema.Columns))
	for i, cs := range schema.Columns {
		switch cs.Type {
		case table.KindFloat, table.KindInt:
			attrs[i] = base.NewFloatAttribute(cs.Name)
		default:
			ca := new(base.CategoricalAttribute)
			ca.SetName(cs.Name)
			attrs[i] = ca
		}
	}
	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		specs[i] = inst.AddAttribute(a)
	}
	if err := inst.Extend(f.Rows()); err != nil {
		return nil, err
	}

	for c, cs := range schema.Columns {
		col, _ := f.ColumnByName(cs.Name)
		for r := 0; r < f.Rows(); r++ {
			switch cs.Type {
			case table.KindFloat, table.KindInt:
				v := math.NaN()
				if s, ok := iox.Value(col, r); ok {
					v = toFloat(s)
				}
				inst.Set(specs[c], r, base.PackFloatToBytes(v))
			default:
				s, ok := iox.Format(col, r)
				if !ok {
					s = missing
				}
				inst.Set(specs[c], r, attrs[c].GetSysValFromString(s))
			}
		}
		if cs.Name == class {
			if err := inst.AddClassAttribute(attrs[c]); err != nil {
				return nil, err
			}
		}
	}
	return inst, nil
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	}
	return math.NaN()
}

// FromDenseInstances converts golearn DenseInstances into a Frame. Float
// attributes map to float columns (NaN as missing); categorical attributes map
// to string columns with missingLabel read back as missing.
func FromDenseInstances(inst *base.DenseInstances, missingLabel string) (*table.Frame, error) {
	if missingLabel == "" {
		missingLabel = DefaultMissingLabel
	}
	attrs := inst.AllAttributes()
	schema := table.Schema{Columns: make([]table.ColumnSchema, len(attrs))}
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		k := table.KindString
		if _, ok := a.(*base.FloatAttribute); ok {
			k = table.KindFloat
		}
		schema.Columns[i] = table.ColumnSchema{Name: a.GetName(), Type: k, Nullable: true}
		spec, err := inst.GetAttribute(a)
		if err != nil {
			return nil, err
		}
		specs[i] = spec
	}
	f := table.NewFrame(schema)
	_, nrows := inst.Size()
	for r := 0; r < nrows; r++ {
		f.AppendNullRow()
		for c, cs := range schema.Columns {
			raw := inst.Get(specs[c], r)
			if cs.Type == table.KindFloat {
				if v := base.UnpackBytesToFloat(raw); !math.IsNaN(v) {
					_ = f.SetCell(r, cs.Name, v)
				}
				continue
			}
			if v := attrs[c].GetStringFromSysVal(raw); v != missingLabel {
				_ = f.SetCell(r, cs.Name, v)
			}
		}
	}
	return f, nil
}
