package schema

import (
	"github.com/kailas-cloud/vecsearch/internal/domain"
)

// Schema is the ordered field list of a collection. Field order is the
// canonical wire column order.
type Schema struct {
	name        string
	description string
	fields      []Field
}

// New validates and creates a Schema.
// Field names are unique; at most one primary key, one partition key and one
// FloatVector field; a FloatVector field and an embedded String never coexist.
func New(name, description string, fields []Field) (Schema, error) {
	if err := domain.CheckName("collection name", name); err != nil {
		return Schema{}, err
	}
	if len(fields) == 0 {
		return Schema{}, domain.NewParamError("collection '%s' must have at least one field", name)
	}

	seen := make(map[string]bool, len(fields))
	var primary, partition, vector, embedded int
	for _, f := range fields {
		if seen[f.Name()] {
			return Schema{}, domain.NewParamError("duplicate field name: %s", f.Name())
		}
		seen[f.Name()] = true
		if f.IsPrimaryKey() {
			primary++
		}
		if f.IsPartitionKey() {
			partition++
		}
		if f.IsVector() {
			vector++
		}
		if f.IsEmbedded() {
			embedded++
		}
	}
	switch {
	case primary > 1:
		return Schema{}, domain.NewParamError("collection '%s' has more than one primary key", name)
	case partition > 1:
		return Schema{}, domain.NewParamError("collection '%s' has more than one partition key", name)
	case vector > 1:
		return Schema{}, domain.NewParamError("collection '%s' has more than one FloatVector field", name)
	case vector > 0 && embedded > 0:
		return Schema{}, domain.NewParamError(
			"collection '%s' cannot mix a FloatVector field with embedded String fields", name)
	}

	return ReconstructSchema(name, description, fields), nil
}

// ReconstructSchema creates a Schema without validation (wire hydration).
func ReconstructSchema(name, description string, fields []Field) Schema {
	cp := make([]Field, len(fields))
	copy(cp, fields)
	return Schema{name: name, description: description, fields: cp}
}

// Name returns the collection name.
func (s Schema) Name() string { return s.name }

// Description returns the collection description.
func (s Schema) Description() string { return s.description }

// Fields returns a copy of the ordered fields.
func (s Schema) Fields() []Field {
	cp := make([]Field, len(s.fields))
	copy(cp, s.fields)
	return cp
}

// FieldByName looks a field up by name.
func (s Schema) FieldByName(name string) (Field, bool) {
	for _, f := range s.fields {
		if f.Name() == name {
			return f, true
		}
	}
	return Field{}, false
}

// PrimaryField returns the primary key field.
func (s Schema) PrimaryField() (Field, bool) {
	return s.find(Field.IsPrimaryKey)
}

// VectorField returns the FloatVector field.
func (s Schema) VectorField() (Field, bool) {
	return s.find(Field.IsVector)
}

// PartitionKeyField returns the partition key field.
func (s Schema) PartitionKeyField() (Field, bool) {
	return s.find(Field.IsPartitionKey)
}

func (s Schema) find(pred func(Field) bool) (Field, bool) {
	for _, f := range s.fields {
		if pred(f) {
			return f, true
		}
	}
	return Field{}, false
}
