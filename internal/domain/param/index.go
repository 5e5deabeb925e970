package param

import (
	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/domain/schema"
)

// CreateIndex builds an index over one field. ExtraParams is a JSON object
// string, e.g. {"nlist":1024}.
type CreateIndex struct {
	Collection  string
	Field       string
	IndexName   string
	IndexType   schema.IndexType
	Metric      schema.MetricType
	ExtraParams string
	Sync        Sync
}

// NewCreateIndex validates and creates CreateIndex params. An empty index
// name defaults to schema.DefaultIndexName.
func NewCreateIndex(p CreateIndex) (CreateIndex, error) {
	if p.IndexName == "" {
		p.IndexName = schema.DefaultIndexName
	}
	if err := p.Validate(); err != nil {
		return CreateIndex{}, err
	}
	return p, nil
}

// Validate checks names and that vector index kinds carry a float metric.
// Field compatibility needs the collection schema and is checked later.
func (p CreateIndex) Validate() error {
	if err := domain.CheckName("collection name", p.Collection); err != nil {
		return err
	}
	if err := domain.CheckName("field name", p.Field); err != nil {
		return err
	}
	if err := domain.CheckName("index name", p.IndexName); err != nil {
		return err
	}
	if !schema.IsVectorIndex(p.IndexType) {
		return domain.NewParamError("unsupported index type '%s'", p.IndexType)
	}
	if !schema.IsFloatMetric(p.Metric) {
		return domain.NewParamError("index type '%s' requires a float metric, got '%s'", p.IndexType, p.Metric)
	}
	return p.Sync.Validate()
}

// Index names an index for drop and describe. An empty IndexName matches
// any index on the field.
type Index struct {
	Collection string
	Field      string
	IndexName  string
}

// NewIndex validates and creates Index params.
func NewIndex(collection, field, indexName string) (Index, error) {
	p := Index{Collection: collection, Field: field, IndexName: indexName}
	if err := p.Validate(); err != nil {
		return Index{}, err
	}
	return p, nil
}

// Validate checks the collection and field names.
func (p Index) Validate() error {
	if err := domain.CheckName("collection name", p.Collection); err != nil {
		return err
	}
	return domain.CheckName("field name", p.Field)
}
