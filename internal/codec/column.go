package codec

import (
	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/domain/param"
	"github.com/kailas-cloud/vecsearch/internal/domain/schema"
	"github.com/kailas-cloud/vecsearch/internal/gateway"
)

// EncodeColumn converts column values into wire field data, dispatching on
// the declared type of f.
func EncodeColumn(f schema.Field, values any) (gateway.FieldData, error) {
	fd := gateway.FieldData{FieldName: f.Name(), Type: int32(f.DataType())}
	var ok bool
	switch f.DataType() {
	case schema.Bool:
		var v []bool
		v, _, ok = param.AsSlice[bool](values)
		fd.Scalars = &gateway.ScalarField{BoolData: v}
	case schema.Int32:
		var v []int32
		v, _, ok = param.AsInt32s(values)
		fd.Scalars = &gateway.ScalarField{IntData: v}
	case schema.Int64:
		var v []int64
		v, _, ok = param.AsSlice[int64](values)
		fd.Scalars = &gateway.ScalarField{LongData: v}
	case schema.Float:
		var v []float32
		v, _, ok = param.AsSlice[float32](values)
		fd.Scalars = &gateway.ScalarField{FloatData: v}
	case schema.Double:
		var v []float64
		v, _, ok = param.AsSlice[float64](values)
		fd.Scalars = &gateway.ScalarField{DoubleData: v}
	case schema.String:
		var v []string
		v, _, ok = param.AsSlice[string](values)
		fd.Scalars = &gateway.ScalarField{StringData: v}
	case schema.FloatVector:
		var rows [][]float32
		rows, _, ok = param.AsSlice[[]float32](values)
		data, dim := Flatten(rows)
		if dim == 0 {
			dim = f.Dimension()
		}
		fd.Vectors = &gateway.VectorField{Dim: int64(dim), FloatVector: data}
	}
	if !ok {
		return gateway.FieldData{}, domain.NewParamError("cannot encode field '%s' of type %s from %T",
			f.Name(), f.DataType(), values)
	}
	return fd, nil
}

// Column is a decoded wire column.
type Column struct {
	Name   string
	Type   schema.DataType
	Values any
}

// Len returns the row count.
func (c Column) Len() int {
	n, _ := param.RowCount(c.Values)
	return n
}

// At returns the value of row i.
func (c Column) At(i int) any {
	switch v := c.Values.(type) {
	case []bool:
		return v[i]
	case []int32:
		return v[i]
	case []int64:
		return v[i]
	case []float32:
		return v[i]
	case []float64:
		return v[i]
	case []string:
		return v[i]
	case [][]float32:
		return v[i]
	default:
		return nil
	}
}

// DecodeColumn converts wire field data back into a typed column.
func DecodeColumn(fd gateway.FieldData) (Column, error) {
	dt := schema.DataType(fd.Type)
	col := Column{Name: fd.FieldName, Type: dt}
	if dt == schema.FloatVector {
		if fd.Vectors == nil {
			return Column{}, domain.NewSchemaMismatch("field '%s' has no vector data", fd.FieldName)
		}
		rows, err := Unflatten(fd.Vectors.FloatVector, int(fd.Vectors.Dim))
		if err != nil {
			return Column{}, domain.WithOp("decode "+fd.FieldName, err)
		}
		col.Values = rows
		return col, nil
	}

	s := fd.Scalars
	if s == nil {
		s = &gateway.ScalarField{}
	}
	switch dt {
	case schema.Bool:
		col.Values = nonNil(s.BoolData)
	case schema.Int32:
		col.Values = nonNil(s.IntData)
	case schema.Int64:
		col.Values = nonNil(s.LongData)
	case schema.Float:
		col.Values = nonNil(s.FloatData)
	case schema.Double:
		col.Values = nonNil(s.DoubleData)
	case schema.String:
		col.Values = nonNil(s.StringData)
	default:
		return Column{}, domain.NewSchemaMismatch("field '%s' has unsupported data type %d", fd.FieldName, fd.Type)
	}
	return col, nil
}

func nonNil[E any](s []E) []E {
	if s == nil {
		return []E{}
	}
	return s
}
