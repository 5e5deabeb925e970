package codec

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/domain/param"
	"github.com/kailas-cloud/vecsearch/internal/domain/schema"
	"github.com/kailas-cloud/vecsearch/internal/gateway"
)

// ParseParams checks that raw is a JSON object and returns it compacted.
// An empty string yields an empty result.
func ParseParams(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return "", domain.NewParamError("invalid params %q: %v", raw, err)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(raw)); err != nil {
		return "", domain.NewParamError("invalid params %q: %v", raw, err)
	}
	return buf.String(), nil
}

// CreateCollectionRequest builds the create request from a schema.
func CreateCollectionRequest(p param.CreateCollection) *gateway.CreateCollectionRequest {
	return &gateway.CreateCollectionRequest{
		Schema:    SchemaToWire(p.Schema),
		ShardsNum: int32(p.ShardsNum),
	}
}

// InsertRequest builds the insert request with columns in schema order.
// A schema field without a column is a schema mismatch.
func InsertRequest(p param.Insert, sch schema.Schema) (*gateway.InsertRequest, error) {
	byName := make(map[string]any, len(p.Columns))
	for _, c := range p.Columns {
		byName[c.Name] = c.Values
	}

	req := &gateway.InsertRequest{
		CollectionName: p.Collection,
		PartitionName:  p.Partition,
		NumRows:        uint32(p.Rows()),
	}
	for _, f := range sch.Fields() {
		values, ok := byName[f.Name()]
		if !ok {
			if f.IsAutoID() {
				continue
			}
			return nil, domain.NewSchemaMismatch("The field: %s is not provided.", f.Name())
		}
		fd, err := EncodeColumn(f, values)
		if err != nil {
			return nil, err
		}
		req.FieldsData = append(req.FieldsData, fd)
	}
	return req, nil
}

// CreateIndexRequest builds the create-index request. Index kind, metric and
// the JSON params travel as key/value pairs.
func CreateIndexRequest(p param.CreateIndex) (*gateway.CreateIndexRequest, error) {
	params, err := ParseParams(p.ExtraParams)
	if err != nil {
		return nil, err
	}
	extra := map[string]string{
		gateway.KeyIndexType:  string(p.IndexType),
		gateway.KeyMetricType: string(p.Metric),
	}
	if params != "" {
		extra[gateway.KeyParams] = params
	}
	return &gateway.CreateIndexRequest{
		CollectionName: p.Collection,
		FieldName:      p.Field,
		IndexName:      p.IndexName,
		ExtraParams:    AssembleKV(extra),
	}, nil
}

// SearchRequest builds the search request. Vectors are flattened; the target
// field, top-K, metric and JSON params travel as search params.
func SearchRequest(p param.Search) (*gateway.SearchRequest, error) {
	params, err := ParseParams(p.Params)
	if err != nil {
		return nil, err
	}

	req := &gateway.SearchRequest{
		CollectionName:   p.Collection,
		PartitionNames:   p.Partitions,
		DSL:              p.Expr,
		DSLType:          gateway.DSLTypeBoolExprV1,
		OutputFields:     p.OutputFields,
		NQ:               int64(p.NQ()),
		ConsistencyLevel: int32(p.Consistency),
	}

	sp := []gateway.KeyValuePair{}
	if p.IsVectorSearch() {
		data, dim := Flatten(p.Vectors)
		req.PlaceholderGroup.Vectors = &gateway.VectorField{Dim: int64(dim), FloatVector: data}
		sp = append(sp, gateway.KeyValuePair{Key: gateway.KeyAnnsField, Value: p.VectorField})
	} else {
		req.PlaceholderGroup.Texts = p.Texts
		sp = append(sp, gateway.KeyValuePair{Key: gateway.KeyTextField, Value: p.TextField})
	}
	sp = append(sp, gateway.KeyValuePair{Key: gateway.KeyTopK, Value: strconv.Itoa(p.TopK)})
	if p.Metric != schema.MetricInvalid {
		sp = append(sp, gateway.KeyValuePair{Key: gateway.KeyMetricType, Value: string(p.Metric)})
	}
	if params != "" {
		sp = append(sp, gateway.KeyValuePair{Key: gateway.KeyParams, Value: params})
	}
	req.SearchParams = sp
	return req, nil
}

// QueryRequest builds the query request. Limit and offset travel as query
// params when set.
func QueryRequest(p param.Query) *gateway.QueryRequest {
	req := &gateway.QueryRequest{
		CollectionName:   p.Collection,
		PartitionNames:   p.Partitions,
		Expr:             p.Expr,
		OutputFields:     p.OutputFields,
		ConsistencyLevel: int32(p.Consistency),
	}
	if p.Limit > 0 {
		req.QueryParams = append(req.QueryParams,
			gateway.KeyValuePair{Key: gateway.KeyLimit, Value: strconv.Itoa(p.Limit)})
	}
	if p.Offset > 0 {
		req.QueryParams = append(req.QueryParams,
			gateway.KeyValuePair{Key: gateway.KeyOffset, Value: strconv.Itoa(p.Offset)})
	}
	return req
}
