// Package validate checks request parameters against the authoritative
// collection schema before anything is sent. Every failure is a parameter
// error; nothing here has side effects.
package validate

import (
	"fmt"

	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/domain/param"
	"github.com/kailas-cloud/vecsearch/internal/domain/schema"
)

// Insert checks that the batch matches the schema: every non-auto field has
// a column, no unknown columns, exact value types, per-row vector dimension
// and String max length.
func Insert(p param.Insert, sch schema.Schema) error {
	if err := p.Validate(); err != nil {
		return err
	}

	provided := make(map[string]bool, len(p.Columns))
	for _, c := range p.Columns {
		f, ok := sch.FieldByName(c.Name)
		if !ok {
			return domain.NewParamError("The field: %s is not in collection '%s'", c.Name, sch.Name())
		}
		if f.IsAutoID() {
			return domain.NewParamError("The field: %s is auto id, its values cannot be provided", c.Name)
		}
		if err := column(f, c.Values); err != nil {
			return err
		}
		provided[c.Name] = true
	}
	for _, f := range sch.Fields() {
		if !f.IsAutoID() && !provided[f.Name()] {
			return domain.NewParamError("The field: %s is not provided.", f.Name())
		}
	}
	return nil
}

func column(f schema.Field, values any) error {
	var bad int
	var ok bool
	switch f.DataType() {
	case schema.Bool:
		_, bad, ok = param.AsSlice[bool](values)
	case schema.Int32:
		_, bad, ok = param.AsInt32s(values)
	case schema.Int64:
		_, bad, ok = param.AsSlice[int64](values)
	case schema.Float:
		_, bad, ok = param.AsSlice[float32](values)
	case schema.Double:
		_, bad, ok = param.AsSlice[float64](values)
	case schema.String:
		var ss []string
		ss, bad, ok = param.AsSlice[string](values)
		if ok {
			return maxLength(f, ss)
		}
	case schema.FloatVector:
		var vs [][]float32
		vs, bad, ok = param.AsSlice[[]float32](values)
		if ok {
			return dimension(f, vs)
		}
	default:
		return domain.NewParamError("Unsupported data type %s of field '%s'", f.DataType(), f.Name())
	}
	if ok {
		return nil
	}
	return typeError(f, values, bad)
}

func typeError(f schema.Field, values any, bad int) error {
	if bad < 0 {
		return domain.NewParamError("Incorrect data type for field '%s': expected %s values, got %T",
			f.Name(), f.DataType(), values)
	}
	got := "nil"
	if vs, ok := values.([]any); ok && bad < len(vs) {
		got = fmt.Sprintf("%T", vs[bad])
	}
	return domain.NewParamError("Incorrect data type for field '%s': the no.%d value is %s, expected %s",
		f.Name(), bad, got, f.DataType())
}

func dimension(f schema.Field, vs [][]float32) error {
	for i, v := range vs {
		if len(v) != f.Dimension() {
			return domain.NewParamError(
				"Incorrect dimension for field '%s': the no.%d vector's dimension: %d is not equal to field's dimension: %d",
				f.Name(), i, len(v), f.Dimension())
		}
	}
	return nil
}

func maxLength(f schema.Field, ss []string) error {
	for i, s := range ss {
		if len(s) > f.MaxLength() {
			return domain.NewParamError("Value of field '%s' at no.%d exceeds max length: %d > %d",
				f.Name(), i, len(s), f.MaxLength())
		}
	}
	return nil
}

// Search checks that the target field exists with the right kind and that
// query vectors match its dimension. Output fields must exist.
func Search(p param.Search, sch schema.Schema) error {
	if err := p.Validate(); err != nil {
		return err
	}
	f, ok := sch.FieldByName(p.TargetField())
	if !ok {
		return domain.NewParamError("Field '%s' doesn't exist in the collection", p.TargetField())
	}
	if p.IsVectorSearch() {
		if !f.IsVector() {
			return domain.NewParamError("Field '%s' is not a vector field", f.Name())
		}
		if got := len(p.Vectors[0]); got != f.Dimension() {
			return domain.NewParamError(
				"Incorrect dimension for field '%s': query vector dimension: %d is not equal to field's dimension: %d",
				f.Name(), got, f.Dimension())
		}
	} else if !f.IsEmbedded() {
		return domain.NewParamError("Field '%s' is not a text field with an embedding model", f.Name())
	}
	for _, name := range p.OutputFields {
		if _, ok := sch.FieldByName(name); !ok {
			return domain.NewParamError("Output field '%s' doesn't exist in the collection", name)
		}
	}
	return nil
}

// CreateIndex checks that the target field exists and accepts the index kind.
func CreateIndex(p param.CreateIndex, sch schema.Schema) error {
	if err := p.Validate(); err != nil {
		return err
	}
	f, ok := sch.FieldByName(p.Field)
	if !ok {
		return domain.NewParamError("Field '%s' doesn't exist in the collection", p.Field)
	}
	if !schema.VerifyIndexType(p.IndexType, f) {
		return domain.NewParamError("Index type '%s' doesn't match with data type of field '%s'", p.IndexType, p.Field)
	}
	return nil
}
