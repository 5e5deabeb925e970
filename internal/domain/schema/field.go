package schema

import (
	"maps"
	"strconv"

	"github.com/kailas-cloud/vecsearch/internal/domain"
)

// Field is an immutable value object describing one typed column.
type Field struct {
	name           string
	description    string
	dataType       DataType
	dim            int
	maxLength      int
	model          ModelType
	primaryKey     bool
	partitionKey   bool
	autoID         bool
	batchNormalize bool
	extra          map[string]string
}

// FieldOption configures optional Field attributes.
type FieldOption func(*Field)

// WithDimension sets the vector dimension of a FloatVector field.
func WithDimension(dim int) FieldOption { return func(f *Field) { f.dim = dim } }

// WithMaxLength sets the maximum value length of a String field.
func WithMaxLength(n int) FieldOption { return func(f *Field) { f.maxLength = n } }

// WithEmbedding tags a String field with the model the server embeds it with.
func WithEmbedding(m ModelType) FieldOption { return func(f *Field) { f.model = m } }

// WithDescription sets a free-form description.
func WithDescription(d string) FieldOption { return func(f *Field) { f.description = d } }

// PrimaryKey marks the field as the collection primary key.
func PrimaryKey() FieldOption { return func(f *Field) { f.primaryKey = true } }

// PartitionKey marks the field as the partition key.
func PartitionKey() FieldOption { return func(f *Field) { f.partitionKey = true } }

// AutoID lets the server generate primary key values.
func AutoID() FieldOption { return func(f *Field) { f.autoID = true } }

// WithBatchNormalize asks the server to normalize vectors on ingest.
func WithBatchNormalize() FieldOption { return func(f *Field) { f.batchNormalize = true } }

// WithTypeParam carries an extra opaque type param.
func WithTypeParam(key, value string) FieldOption {
	return func(f *Field) {
		if f.extra == nil {
			f.extra = make(map[string]string)
		}
		f.extra[key] = value
	}
}

// NewField validates and creates a Field.
// Dimension is required iff FloatVector, max length iff String, and an
// embedding model is only allowed on String.
func NewField(name string, dt DataType, opts ...FieldOption) (Field, error) {
	if err := domain.CheckName("field name", name); err != nil {
		return Field{}, err
	}
	if !dt.IsValid() {
		return Field{}, domain.NewParamError("field '%s' has unsupported data type %s", name, dt)
	}
	f := Reconstruct(name, dt, opts...)

	switch {
	case dt == FloatVector && f.dim <= 0:
		return Field{}, domain.NewParamError("field '%s': dimension must be positive for FloatVector", name)
	case dt != FloatVector && f.dim != 0:
		return Field{}, domain.NewParamError("field '%s': dimension is only valid for FloatVector", name)
	case dt == String && f.maxLength <= 0:
		return Field{}, domain.NewParamError("field '%s': max length must be positive for String", name)
	case dt != String && f.maxLength != 0:
		return Field{}, domain.NewParamError("field '%s': max length is only valid for String", name)
	case dt != String && f.model != ModelNone:
		return Field{}, domain.NewParamError("field '%s': embedding model is only valid for String", name)
	case f.batchNormalize && dt != FloatVector && dt != String:
		return Field{}, domain.NewParamError("field '%s': batch normalize is only valid for vector or string fields", name)
	}
	if f.primaryKey && dt != Int64 && dt != String {
		return Field{}, domain.NewParamError("primary key '%s' must be Int64 or String", name)
	}
	if f.autoID && !f.primaryKey {
		return Field{}, domain.NewParamError("field '%s': auto id requires a primary key", name)
	}
	if f.partitionKey && f.primaryKey {
		return Field{}, domain.NewParamError("field '%s' cannot be both primary and partition key", name)
	}
	return f, nil
}

// Reconstruct creates a Field without validation (wire hydration).
func Reconstruct(name string, dt DataType, opts ...FieldOption) Field {
	f := Field{name: name, dataType: dt}
	for _, o := range opts {
		o(&f)
	}
	return f
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// Description returns the field description.
func (f Field) Description() string { return f.description }

// DataType returns the declared data type.
func (f Field) DataType() DataType { return f.dataType }

// Dimension returns the vector dimension, zero for non-vector fields.
func (f Field) Dimension() int { return f.dim }

// MaxLength returns the String max length, zero for other fields.
func (f Field) MaxLength() int { return f.maxLength }

// Model returns the embedding model tag.
func (f Field) Model() ModelType { return f.model }

// IsPrimaryKey reports whether the field is the primary key.
func (f Field) IsPrimaryKey() bool { return f.primaryKey }

// IsPartitionKey reports whether the field is the partition key.
func (f Field) IsPartitionKey() bool { return f.partitionKey }

// IsAutoID reports whether primary key values are generated by the server.
func (f Field) IsAutoID() bool { return f.autoID }

// BatchNormalize reports whether vectors are normalized on ingest.
func (f Field) BatchNormalize() bool { return f.batchNormalize }

// IsVector reports whether the field holds float vectors.
func (f Field) IsVector() bool { return f.dataType == FloatVector }

// IsEmbedded reports whether the field is a String with an embedding model.
func (f Field) IsEmbedded() bool { return f.dataType == String && f.model != ModelNone }

// IsVectorCapable reports whether a vector index may target the field.
func (f Field) IsVectorCapable() bool { return f.IsVector() || f.IsEmbedded() }

// TypeParams returns the wire type params: dim, max_length, batch_normalize
// and any extra params.
func (f Field) TypeParams() map[string]string {
	out := make(map[string]string, len(f.extra)+2)
	maps.Copy(out, f.extra)
	switch f.dataType {
	case FloatVector:
		out[ParamDim] = strconv.Itoa(f.dim)
		out[ParamBatchNormalize] = strconv.FormatBool(f.batchNormalize)
	case String:
		out[ParamMaxLength] = strconv.Itoa(f.maxLength)
		out[ParamBatchNormalize] = strconv.FormatBool(f.batchNormalize)
	}
	return out
}

// FromTypeParams returns options restoring dim, max_length, batch_normalize
// and extra params. Unparsable numeric values are ignored.
func FromTypeParams(params map[string]string) []FieldOption {
	var opts []FieldOption
	for k, v := range params {
		switch k {
		case ParamDim:
			if n, err := strconv.Atoi(v); err == nil {
				opts = append(opts, WithDimension(n))
			}
		case ParamMaxLength:
			if n, err := strconv.Atoi(v); err == nil {
				opts = append(opts, WithMaxLength(n))
			}
		case ParamBatchNormalize:
			if b, err := strconv.ParseBool(v); err == nil && b {
				opts = append(opts, WithBatchNormalize())
			}
		default:
			opts = append(opts, WithTypeParam(k, v))
		}
	}
	return opts
}
