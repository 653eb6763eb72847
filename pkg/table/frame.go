package table

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownColumn is returned when a column name is not part of a frame.
var ErrUnknownColumn = errors.New("unknown column")

// Schema describes the logical shape of a dataset.
type Schema struct {
	Columns []ColumnSchema
}

type ColumnSchema struct {
	Name     string
	Type     Kind
	Nullable bool
}

// Names returns the column names in schema order.
func (s Schema) Names() []string {
	out := make([]string, len(s.Columns))
	for i, cs := range s.Columns {
		out[i] = cs.Name
	}
	return out
}

// Lookup finds a column by name.
func (s Schema) Lookup(name string) (ColumnSchema, bool) {
	for _, cs := range s.Columns {
		if cs.Name == name {
			return cs, true
		}
	}
	return ColumnSchema{}, false
}

// Kind enumerates supported logical types. KindString columns hold category
// labels and are the ones the categorical transforms operate on.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	default:
		return "invalid"
	}
}

// Column is a typed, nullable column abstraction.
type Column interface {
	Name() string
	Kind() Kind
	Len() int
	IsNull(i int) bool
	SetNull(i int)
	Missing() int
	AppendNull()
	clone() Column
}

// nullable is the storage shared by every concrete column type.
type nullable[T any] struct {
	name  string
	data  []T
	nulls []bool
}

func newNullable[T any](name string, n int) nullable[T] {
	return nullable[T]{name: name, data: make([]T, n), nulls: make([]bool, n)}
}

func (c *nullable[T]) Name() string        { return c.name }
func (c *nullable[T]) Len() int            { return len(c.data) }
func (c *nullable[T]) IsNull(i int) bool   { return c.nulls[i] }
func (c *nullable[T]) SetNull(i int)       { c.nulls[i] = true }
func (c *nullable[T]) Get(i int) (T, bool) { return c.data[i], !c.nulls[i] }
func (c *nullable[T]) Set(i int, v T)      { c.data[i] = v; c.nulls[i] = false }
func (c *nullable[T]) Append(v T)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }

func (c *nullable[T]) AppendNull() {
	var zero T
	c.data = append(c.data, zero)
	c.nulls = append(c.nulls, true)
}

// Missing counts null entries.
func (c *nullable[T]) Missing() int {
	n := 0
	for _, null := range c.nulls {
		if null {
			n++
		}
	}
	return n
}

func (c *nullable[T]) copyOf() nullable[T] {
	return nullable[T]{
		name:  c.name,
		data:  append([]T(nil), c.data...),
		nulls: append([]bool(nil), c.nulls...),
	}
}

type BoolColumn struct{ nullable[bool] }

func NewBoolColumn(name string, n int) *BoolColumn { return &BoolColumn{newNullable[bool](name, n)} }
func (c *BoolColumn) Kind() Kind                   { return KindBool }
func (c *BoolColumn) clone() Column                { return &BoolColumn{c.copyOf()} }

type IntColumn struct{ nullable[int64] }

func NewIntColumn(name string, n int) *IntColumn { return &IntColumn{newNullable[int64](name, n)} }
func (c *IntColumn) Kind() Kind                  { return KindInt }
func (c *IntColumn) clone() Column               { return &IntColumn{c.copyOf()} }

type FloatColumn struct{ nullable[float64] }

func NewFloatColumn(name string, n int) *FloatColumn {
	return &FloatColumn{newNullable[float64](name, n)}
}
func (c *FloatColumn) Kind() Kind    { return KindFloat }
func (c *FloatColumn) clone() Column { return &FloatColumn{c.copyOf()} }

// StringColumn holds category labels. A null entry is a missing label; the
// empty string is a valid label of its own.
type StringColumn struct{ nullable[string] }

func NewStringColumn(name string, n int) *StringColumn {
	return &StringColumn{newNullable[string](name, n)}
}
func (c *StringColumn) Kind() Kind    { return KindString }
func (c *StringColumn) clone() Column { return &StringColumn{c.copyOf()} }

// StringColumnOf builds a column from labels; a nil entry is missing.
func StringColumnOf(name string, labels ...*string) *StringColumn {
	c := NewStringColumn(name, 0)
	for _, l := range labels {
		if l == nil {
			c.AppendNull()
			continue
		}
		c.Append(*l)
	}
	return c
}

// Distinct returns the non-missing labels in first-seen order.
func (c *StringColumn) Distinct() []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range c.data {
		if c.nulls[i] {
			continue
		}
		if _, ok := seen[c.data[i]]; ok {
			continue
		}
		seen[c.data[i]] = struct{}{}
		out = append(out, c.data[i])
	}
	return out
}

type TimeColumn struct{ nullable[time.Time] }

func NewTimeColumn(name string, n int) *TimeColumn {
	return &TimeColumn{newNullable[time.Time](name, n)}
}
func (c *TimeColumn) Kind() Kind    { return KindTime }
func (c *TimeColumn) clone() Column { return &TimeColumn{c.copyOf()} }

func newColumn(cs ColumnSchema) Column {
	switch cs.Type {
	case KindBool:
		return NewBoolColumn(cs.Name, 0)
	case KindInt:
		return NewIntColumn(cs.Name, 0)
	case KindFloat:
		return NewFloatColumn(cs.Name, 0)
	case KindString:
		return NewStringColumn(cs.Name, 0)
	case KindTime:
		return NewTimeColumn(cs.Name, 0)
	default:
		panic("invalid column kind")
	}
}

// Frame is a columnar container for tabular data.
type Frame struct {
	schema Schema
	cols   []Column
	index  map[string]int // name -> col index
	nrows  int
}

func NewFrame(s Schema) *Frame {
	f := &Frame{schema: s, cols: make([]Column, len(s.Columns)), index: make(map[string]int)}
	for i, cs := range s.Columns {
		f.cols[i] = newColumn(cs)
		f.index[cs.Name] = i
	}
	return f
}

// FromColumns assembles a frame from already populated columns. All columns
// must have the same length and distinct names.
func FromColumns(cols ...Column) (*Frame, error) {
	f := &Frame{cols: make([]Column, len(cols)), index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := f.index[c.Name()]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name())
		}
		if i > 0 && c.Len() != f.nrows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name(), c.Len(), f.nrows)
		}
		f.nrows = c.Len()
		f.cols[i] = c
		f.index[c.Name()] = i
		f.schema.Columns = append(f.schema.Columns, ColumnSchema{Name: c.Name(), Type: c.Kind(), Nullable: true})
	}
	return f, nil
}

func (f *Frame) Schema() Schema { return f.schema }
func (f *Frame) Rows() int      { return f.nrows }
func (f *Frame) Cols() int      { return len(f.cols) }

func (f *Frame) ColumnByName(name string) (Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// StringColumn returns the named column if it exists and holds labels.
func (f *Frame) StringColumn(name string) (*StringColumn, error) {
	col, ok := f.ColumnByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	sc, ok := col.(*StringColumn)
	if !ok {
		return nil, fmt.Errorf("column %s is %s, not string", name, col.Kind())
	}
	return sc, nil
}

// CategoricalNames lists the string columns in schema order.
func (f *Frame) CategoricalNames() []string {
	var out []string
	for _, cs := range f.schema.Columns {
		if cs.Type == KindString {
			out = append(out, cs.Name)
		}
	}
	return out
}

// Clone returns a deep copy; mutating the copy never affects f.
func (f *Frame) Clone() *Frame {
	out := &Frame{
		schema: Schema{Columns: append([]ColumnSchema(nil), f.schema.Columns...)},
		cols:   make([]Column, len(f.cols)),
		index:  make(map[string]int, len(f.index)),
		nrows:  f.nrows,
	}
	for i, c := range f.cols {
		out.cols[i] = c.clone()
	}
	for k, v := range f.index {
		out.index[k] = v
	}
	return out
}

// AppendNullRow appends a row with all-null values.
func (f *Frame) AppendNullRow() {
	for _, c := range f.cols {
		c.AppendNull()
	}
	f.nrows++
}

// SetCell sets a single cell value by name (row must exist). A nil value
// marks the cell missing.
func (f *Frame) SetCell(row int, name string, v any) error {
	i, ok := f.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	if v == nil {
		f.cols[i].SetNull(row)
		return nil
	}
	switch col := f.cols[i].(type) {
	case *BoolColumn:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("column %s expects bool", name)
		}
		col.Set(row, b)
	case *IntColumn:
		switch t := v.(type) {
		case int:
			col.Set(row, int64(t))
		case int64:
			col.Set(row, t)
		case float64:
			col.Set(row, int64(t))
		default:
			return fmt.Errorf("column %s expects int/int64", name)
		}
	case *FloatColumn:
		switch t := v.(type) {
		case float32:
			col.Set(row, float64(t))
		case float64:
			col.Set(row, t)
		case int:
			col.Set(row, float64(t))
		case int64:
			col.Set(row, float64(t))
		default:
			return fmt.Errorf("column %s expects float64", name)
		}
	case *StringColumn:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("column %s expects string", name)
		}
		col.Set(row, s)
	case *TimeColumn:
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("column %s expects time.Time", name)
		}
		col.Set(row, t)
	default:
		return fmt.Errorf("unknown column kind")
	}
	return nil
}
