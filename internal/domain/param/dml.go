package param

import (
	"strings"

	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/domain/schema"
)

// Column is one named column of an insert batch. Values is a typed slice:
// []bool, []int32, []int64, []float32, []float64, []string, [][]float32, or
// []any holding elements of exactly one of those element types.
type Column struct {
	Name   string
	Values any
}

// Insert writes a batch of rows given as columns. Column order is free.
type Insert struct {
	Collection string
	Partition  string
	Columns    []Column
}

// NewInsert validates and creates Insert params.
func NewInsert(collection, partition string, columns ...Column) (Insert, error) {
	cp := make([]Column, len(columns))
	copy(cp, columns)
	p := Insert{Collection: collection, Partition: partition, Columns: cp}
	if err := p.Validate(); err != nil {
		return Insert{}, err
	}
	return p, nil
}

// Validate checks names and that every column is a slice of the same
// non-zero length. Type and dimension checks need the collection schema.
func (p Insert) Validate() error {
	if err := domain.CheckName("collection name", p.Collection); err != nil {
		return err
	}
	if p.Partition != "" {
		if err := domain.CheckName("partition name", p.Partition); err != nil {
			return err
		}
	}
	if len(p.Columns) == 0 {
		return domain.NewParamError("fields cannot be empty")
	}

	seen := make(map[string]bool, len(p.Columns))
	rows := -1
	for _, c := range p.Columns {
		if err := domain.CheckName("field name", c.Name); err != nil {
			return err
		}
		if seen[c.Name] {
			return domain.NewParamError("duplicate field: %s", c.Name)
		}
		seen[c.Name] = true

		n, ok := RowCount(c.Values)
		if !ok {
			return domain.NewParamError("field '%s' values must be a list", c.Name)
		}
		if rows == -1 {
			rows = n
		} else if n != rows {
			return domain.NewParamError("row count of fields must be equal")
		}
	}
	if rows == 0 {
		return domain.NewParamError("row count is zero")
	}
	return nil
}

// Rows returns the batch row count. Call on a validated value.
func (p Insert) Rows() int {
	if len(p.Columns) == 0 {
		return 0
	}
	n, _ := RowCount(p.Columns[0].Values)
	return n
}

// Search is a similarity search by vectors or by texts. Exactly one of
// VectorField and TextField is set. Params is a JSON object string.
type Search struct {
	Collection   string
	Partitions   []string
	VectorField  string
	TextField    string
	TopK         int
	Vectors      [][]float32
	Texts        []string
	Metric       schema.MetricType
	Expr         string
	Params       string
	OutputFields []string
	Consistency  schema.ConsistencyLevel
}

// NewSearch validates and copies Search params. A vector search without a
// metric defaults to L2.
func NewSearch(p Search) (Search, error) {
	if p.IsVectorSearch() && p.Metric == schema.MetricInvalid {
		p.Metric = schema.MetricL2
	}
	p.Partitions = cloneStrings(p.Partitions)
	p.Texts = cloneStrings(p.Texts)
	p.OutputFields = cloneStrings(p.OutputFields)
	if p.Vectors != nil {
		vs := make([][]float32, len(p.Vectors))
		for i, v := range p.Vectors {
			vs[i] = append([]float32(nil), v...)
		}
		p.Vectors = vs
	}
	if err := p.Validate(); err != nil {
		return Search{}, err
	}
	return p, nil
}

// IsVectorSearch reports whether the search targets a vector field. A blank
// VectorField counts as unset.
func (p Search) IsVectorSearch() bool { return strings.TrimSpace(p.VectorField) != "" }

// IsTextSearch reports whether the search targets an embedded text field.
func (p Search) IsTextSearch() bool { return strings.TrimSpace(p.TextField) != "" }

// TargetField returns the vector or text field name.
func (p Search) TargetField() string {
	if p.IsVectorSearch() {
		return p.VectorField
	}
	return p.TextField
}

// NQ returns the number of queries.
func (p Search) NQ() int {
	if p.IsVectorSearch() {
		return len(p.Vectors)
	}
	return len(p.Texts)
}

// Validate checks target exclusivity, top-K and the query items.
func (p Search) Validate() error {
	if err := domain.CheckName("collection name", p.Collection); err != nil {
		return err
	}
	if err := checkNames("partition name", p.Partitions); err != nil {
		return err
	}

	hasVector, hasText := p.IsVectorSearch(), p.IsTextSearch()
	switch {
	case !hasVector && !hasText:
		return domain.NewParamError("either a vector field or a text field must be set")
	case hasVector && hasText:
		return domain.NewParamError("only one of vector field and text field can be set")
	}
	if p.TopK <= 0 {
		return domain.NewParamError("TopK value is illegal: %d", p.TopK)
	}

	if hasVector {
		if len(p.Texts) > 0 {
			return domain.NewParamError("texts cannot be set for a vector search")
		}
		if len(p.Vectors) == 0 {
			return domain.NewParamError("target vectors cannot be empty")
		}
		dim := len(p.Vectors[0])
		if dim == 0 {
			return domain.NewParamError("target vector cannot be empty")
		}
		for i, v := range p.Vectors {
			if len(v) != dim {
				return domain.NewParamError(
					"target vector dimension must be equal: the no.%d vector's dimension %d is not equal to %d", i, len(v), dim)
			}
		}
		if !schema.IsFloatMetric(p.Metric) {
			return domain.NewParamError("target vector is float but metric type is incorrect: '%s'", p.Metric)
		}
	} else {
		if len(p.Vectors) > 0 {
			return domain.NewParamError("vectors cannot be set for a text search")
		}
		if len(p.Texts) == 0 {
			return domain.NewParamError("target texts cannot be empty")
		}
		if p.Metric != schema.MetricInvalid && !schema.IsFloatMetric(p.Metric) {
			return domain.NewParamError("unsupported metric type '%s'", p.Metric)
		}
	}

	if !p.Consistency.IsValid() {
		return domain.NewParamError("unsupported consistency level %s", p.Consistency)
	}
	return checkNames("output field name", p.OutputFields)
}

// Query fetches rows matching a boolean filter expression.
type Query struct {
	Collection   string
	Partitions   []string
	Expr         string
	OutputFields []string
	Limit        int
	Offset       int
	Consistency  schema.ConsistencyLevel
}

// NewQuery validates and copies Query params.
func NewQuery(p Query) (Query, error) {
	p.Partitions = cloneStrings(p.Partitions)
	p.OutputFields = cloneStrings(p.OutputFields)
	if err := p.Validate(); err != nil {
		return Query{}, err
	}
	return p, nil
}

// Validate checks names, the expression and paging.
func (p Query) Validate() error {
	if err := domain.CheckName("collection name", p.Collection); err != nil {
		return err
	}
	if err := checkNames("partition name", p.Partitions); err != nil {
		return err
	}
	if err := domain.CheckName("expression", p.Expr); err != nil {
		return err
	}
	if p.Limit < 0 || p.Offset < 0 {
		return domain.NewParamError("limit and offset cannot be negative")
	}
	if !p.Consistency.IsValid() {
		return domain.NewParamError("unsupported consistency level %s", p.Consistency)
	}
	return checkNames("output field name", p.OutputFields)
}

// Delete removes rows matching a filter expression.
type Delete struct {
	Collection string
	Partition  string
	Expr       string
}

// NewDelete validates and creates Delete params.
func NewDelete(collection, partition, expr string) (Delete, error) {
	p := Delete{Collection: collection, Partition: partition, Expr: expr}
	if err := p.Validate(); err != nil {
		return Delete{}, err
	}
	return p, nil
}

// Validate checks names and the expression.
func (p Delete) Validate() error {
	if err := domain.CheckName("collection name", p.Collection); err != nil {
		return err
	}
	if p.Partition != "" {
		if err := domain.CheckName("partition name", p.Partition); err != nil {
			return err
		}
	}
	return domain.CheckName("expression", p.Expr)
}
