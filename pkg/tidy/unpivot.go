package tidy

import (
	"context"
	"fmt"
	"log/slog"
)

// UnpivotSpec is a resolved unpivot: which columns are carried verbatim,
// which are folded, and what the two new columns are called.
type UnpivotSpec struct {
	Keep            []string
	Fold            []string
	Labels          []string // DisplayName of each Fold column
	DimensionColumn string
	ValueColumn     string
}

// OutputSchema is Keep followed by the dimension and value columns.
func (s UnpivotSpec) OutputSchema() Schema {
	names := make([]string, 0, len(s.Keep)+2)
	names = append(names, s.Keep...)
	names = append(names, s.DimensionColumn, s.ValueColumn)
	return NewSchema(names...)
}

// PlanUnpivot resolves keep, dim and val against schema.
func PlanUnpivot(schema Schema, keep []string, dim, val string) (UnpivotSpec, error) {
	if dim == "" {
		return UnpivotSpec{}, &ConfigurationError{Param: "dimension_column_name", Msg: "dimension column name is empty"}
	}
	if val == "" {
		return UnpivotSpec{}, &ConfigurationError{Param: "value_column_name", Msg: "value column name is empty"}
	}
	keepSet := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		if _, dup := keepSet[k]; dup {
			return UnpivotSpec{}, &ConfigurationError{Param: "columns_to_keep", Raw: k, Msg: "column listed twice"}
		}
		if _, ok := schema.Index(k); !ok {
			return UnpivotSpec{}, &SchemaError{Column: k, Msg: fmt.Sprintf("keep column not in dataset columns %v", schema.Names())}
		}
		keepSet[k] = struct{}{}
	}
	if dim == val {
		return UnpivotSpec{}, &SchemaError{Column: dim, Msg: "dimension and value columns share a name"}
	}
	for _, n := range []string{dim, val} {
		if _, ok := schema.Index(n); ok {
			return UnpivotSpec{}, &SchemaError{Column: n, Msg: "output column collides with an existing column"}
		}
	}
	spec := UnpivotSpec{
		Keep:            append([]string(nil), keep...),
		DimensionColumn: dim,
		ValueColumn:     val,
	}
	for _, cs := range schema.Columns {
		if _, ok := keepSet[cs.Name]; ok {
			continue
		}
		spec.Fold = append(spec.Fold, cs.Name)
		spec.Labels = append(spec.Labels, DisplayName(cs.Name))
	}
	if len(spec.Fold) == 0 {
		return UnpivotSpec{}, &ConfigurationError{Param: "columns_to_keep", Msg: "no columns left to fold"}
	}
	return spec, nil
}

const cancelCheckRows = 4096

// Reshape applies spec to f and returns a new long-format frame. f is
// not modified.
func Reshape(ctx context.Context, f *Frame, spec UnpivotSpec) (*Frame, error) {
	keep := make([]*StringColumn, len(spec.Keep))
	for i, k := range spec.Keep {
		c, ok := f.ColumnByName(k)
		if !ok {
			return nil, &SchemaError{Column: k, Msg: "keep column not in dataset"}
		}
		keep[i] = c
	}
	fold := make([]*StringColumn, len(spec.Fold))
	for i, n := range spec.Fold {
		c, ok := f.ColumnByName(n)
		if !ok {
			return nil, &SchemaError{Column: n, Msg: "fold column not in dataset"}
		}
		fold[i] = c
	}

	out, err := NewFrame(spec.OutputSchema())
	if err != nil {
		return nil, err
	}
	out.Grow(f.Rows() * len(fold))
	outKeep := out.cols[:len(keep)]
	dimCol := out.cols[len(keep)]
	valCol := out.cols[len(keep)+1]

	for r := 0; r < f.Rows(); r++ {
		if r%cancelCheckRows == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for i, fc := range fold {
			for k, kc := range keep {
				outKeep[k].data = append(outKeep[k].data, kc.data[r])
				outKeep[k].nulls = append(outKeep[k].nulls, kc.nulls[r])
			}
			dimCol.Append(spec.Labels[i])
			valCol.data = append(valCol.data, fc.data[r])
			valCol.nulls = append(valCol.nulls, fc.nulls[r])
		}
	}
	out.nrows = f.Rows() * len(fold)
	return out, nil
}

// Unpivot stacks every column outside Keep into (DimensionColumn,
// ValueColumn) pairs.
type Unpivot struct {
	Keep            []string
	DimensionColumn string
	ValueColumn     string
	Logger          *slog.Logger
}

func (t *Unpivot) Name() string { return "unpivot" }

func (t *Unpivot) Apply(ctx context.Context, f *Frame) (*Frame, error) {
	spec, err := PlanUnpivot(f.Schema(), t.Keep, t.DimensionColumn, t.ValueColumn)
	if err != nil {
		return nil, err
	}
	if t.Logger != nil {
		t.Logger.Debug("unpivot",
			"columns_to_keep", spec.Keep,
			"dimension_column_name", spec.DimensionColumn,
			"value_column_name", spec.ValueColumn,
			"columns", spec.Fold,
			"rows", f.Rows())
	}
	return Reshape(ctx, f, spec)
}
