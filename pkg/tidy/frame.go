package tidy

import (
	"fmt"
)

// Schema describes the logical shape of a dataset. All columns hold text.
type Schema struct {
	Columns []ColumnSchema
}

type ColumnSchema struct {
	Name     string
	Nullable bool
}

// NewSchema builds a schema of nullable text columns.
func NewSchema(names ...string) Schema {
	s := Schema{Columns: make([]ColumnSchema, len(names))}
	for i, n := range names {
		s.Columns[i] = ColumnSchema{Name: n, Nullable: true}
	}
	return s
}

func (s Schema) Names() []string {
	out := make([]string, len(s.Columns))
	for i, cs := range s.Columns {
		out[i] = cs.Name
	}
	return out
}

// Index returns the position of the named column.
func (s Schema) Index(name string) (int, bool) {
	for i, cs := range s.Columns {
		if cs.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Equal reports whether both schemas name the same columns in the same order.
func (s Schema) Equal(o Schema) bool {
	if len(s.Columns) != len(o.Columns) {
		return false
	}
	for i := range s.Columns {
		if s.Columns[i].Name != o.Columns[i].Name {
			return false
		}
	}
	return true
}

// StringColumn is a nullable text column.
type StringColumn struct {
	name  string
	data  []string
	nulls []bool
}

func NewStringColumn(name string, n int) *StringColumn {
	return &StringColumn{name: name, data: make([]string, n), nulls: make([]bool, n)}
}
func (c *StringColumn) Name() string             { return c.name }
func (c *StringColumn) Len() int                 { return len(c.data) }
func (c *StringColumn) IsNull(i int) bool        { return c.nulls[i] }
func (c *StringColumn) SetNull(i int)            { c.data[i] = ""; c.nulls[i] = true }
func (c *StringColumn) Get(i int) (string, bool) { return c.data[i], !c.nulls[i] }
func (c *StringColumn) Set(i int, v string)      { c.data[i] = v; c.nulls[i] = false }
func (c *StringColumn) AppendNull()              { c.data = append(c.data, ""); c.nulls = append(c.nulls, true) }
func (c *StringColumn) Append(v string)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }

func (c *StringColumn) grow(n int) {
	if cap(c.data)-len(c.data) >= n {
		return
	}
	data := make([]string, len(c.data), len(c.data)+n)
	copy(data, c.data)
	nulls := make([]bool, len(c.nulls), len(c.nulls)+n)
	copy(nulls, c.nulls)
	c.data, c.nulls = data, nulls
}

// Frame is a columnar container for tabular text data.
type Frame struct {
	schema Schema
	cols   []*StringColumn
	index  map[string]int // name -> col index
	nrows  int
}

// NewFrame returns an empty frame. Column names must be unique.
func NewFrame(s Schema) (*Frame, error) {
	f := &Frame{schema: s, cols: make([]*StringColumn, len(s.Columns)), index: make(map[string]int, len(s.Columns))}
	for i, cs := range s.Columns {
		if _, dup := f.index[cs.Name]; dup {
			return nil, &SchemaError{Column: cs.Name, Msg: "duplicate column name"}
		}
		f.cols[i] = NewStringColumn(cs.Name, 0)
		f.index[cs.Name] = i
	}
	return f, nil
}

func (f *Frame) Schema() Schema  { return f.schema }
func (f *Frame) Names() []string { return f.schema.Names() }
func (f *Frame) Rows() int       { return f.nrows }
func (f *Frame) Cols() int       { return len(f.cols) }

// Column returns the i-th column.
func (f *Frame) Column(i int) *StringColumn { return f.cols[i] }

func (f *Frame) ColumnByName(name string) (*StringColumn, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// Grow reserves room for n more rows.
func (f *Frame) Grow(n int) {
	for _, c := range f.cols {
		c.grow(n)
	}
}

// AppendNullRow appends a row with all-null values.
func (f *Frame) AppendNullRow() {
	for _, c := range f.cols {
		c.AppendNull()
	}
	f.nrows++
}

// AppendRecord appends one row positionally. Empty fields become null,
// missing trailing fields are null and surplus fields are dropped.
func (f *Frame) AppendRecord(rec []string) {
	for i, c := range f.cols {
		if i >= len(rec) || rec[i] == "" {
			c.AppendNull()
			continue
		}
		c.Append(rec[i])
	}
	f.nrows++
}

// SetCell sets a single cell value by name (row must exist). A nil value
// stores null.
func (f *Frame) SetCell(row int, name string, v any) error {
	i, ok := f.index[name]
	if !ok {
		return &SchemaError{Column: name, Msg: "unknown column"}
	}
	col := f.cols[i]
	switch t := v.(type) {
	case nil:
		col.SetNull(row)
	case string:
		col.Set(row, t)
	case *string:
		if t == nil {
			col.SetNull(row)
		} else {
			col.Set(row, *t)
		}
	default:
		return fmt.Errorf("column %s expects string, got %T", name, v)
	}
	return nil
}

// Cell returns the value at row for the named column; ok is false for
// null cells and unknown columns.
func (f *Frame) Cell(row int, name string) (string, bool) {
	col, ok := f.ColumnByName(name)
	if !ok {
		return "", false
	}
	return col.Get(row)
}

// Head returns a new frame holding at most the first n rows.
func (f *Frame) Head(n int) *Frame {
	if n > f.nrows || n < 0 {
		n = f.nrows
	}
	out := &Frame{schema: f.schema, cols: make([]*StringColumn, len(f.cols)), index: f.index, nrows: n}
	for i, c := range f.cols {
		nc := &StringColumn{name: c.name, data: make([]string, n), nulls: make([]bool, n)}
		copy(nc.data, c.data[:n])
		copy(nc.nulls, c.nulls[:n])
		out.cols[i] = nc
	}
	return out
}

// AppendFrame copies up to limit rows of src onto f (limit < 0 copies all)
// and returns how many were copied. Schemas must match.
func (f *Frame) AppendFrame(src *Frame, limit int) (int, error) {
	if !f.schema.Equal(src.schema) {
		return 0, &SchemaError{Msg: fmt.Sprintf("cannot append frame with columns %v to %v", src.Names(), f.Names())}
	}
	n := src.nrows
	if limit >= 0 && limit < n {
		n = limit
	}
	for i, c := range f.cols {
		sc := src.cols[i]
		c.data = append(c.data, sc.data[:n]...)
		c.nulls = append(c.nulls, sc.nulls[:n]...)
	}
	f.nrows += n
	return n, nil
}
