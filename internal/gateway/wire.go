package gateway

// Status is embedded in every response. Code 0 is success.
type Status struct {
	Code   int32  `json:"code"`
	Reason string `json:"reason,omitempty"`
}

// GetStatus returns the status itself, so responses embedding it satisfy
// StatusCarrier.
func (s *Status) GetStatus() *Status { return s }

// StatusCarrier is implemented by every response.
type StatusCarrier interface {
	GetStatus() *Status
}

// KeyValuePair is an opaque parameter.
type KeyValuePair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// DSL types of a search request.
const (
	DSLTypeDsl        int32 = 0
	DSLTypeBoolExprV1 int32 = 1
)

// Search param keys.
const (
	KeyAnnsField  = "anns_field"
	KeyTextField  = "text_field"
	KeyTopK       = "topk"
	KeyMetricType = "metric_type"
	KeyParams     = "params"
	KeyIndexType  = "index_type"
	KeyLimit      = "limit"
	KeyOffset     = "offset"
)

// FieldSchema is the wire form of a field.
type FieldSchema struct {
	FieldID        int64          `json:"field_id,omitempty"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	DataType       int32          `json:"data_type"`
	IsPrimaryKey   bool           `json:"is_primary_key,omitempty"`
	IsPartitionKey bool           `json:"is_partition_key,omitempty"`
	AutoID         bool           `json:"auto_id,omitempty"`
	Model          string         `json:"model,omitempty"`
	TypeParams     []KeyValuePair `json:"type_params,omitempty"`
}

// CollectionSchema is the wire form of a schema.
type CollectionSchema struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Fields      []FieldSchema `json:"fields"`
}

// CollectionRequest names a collection.
type CollectionRequest struct {
	CollectionName string `json:"collection_name"`
}

// HasCollectionRequest asks whether a collection exists.
type HasCollectionRequest = CollectionRequest

// BoolResponse answers has-style calls.
type BoolResponse struct {
	Status
	Value bool `json:"value"`
}

// CreateCollectionRequest creates a collection.
type CreateCollectionRequest struct {
	Schema    CollectionSchema `json:"schema"`
	ShardsNum int32            `json:"shards_num,omitempty"`
}

// DescribeCollectionResponse describes a collection.
type DescribeCollectionResponse struct {
	Status
	Schema              CollectionSchema `json:"schema"`
	CollectionID        int64            `json:"collection_id"`
	ShardsNum           int32            `json:"shards_num"`
	CreatedUTCTimestamp int64            `json:"created_utc_timestamp"`
}

// LoadCollectionRequest loads a collection.
type LoadCollectionRequest struct {
	CollectionName string `json:"collection_name"`
	ReplicaNumber  int32  `json:"replica_number,omitempty"`
}

// ShowCollectionsRequest lists collections. Type 1 restricts to loaded ones.
type ShowCollectionsRequest struct {
	CollectionNames []string `json:"collection_names,omitempty"`
	Type            int32    `json:"type,omitempty"`
}

// ShowCollectionsResponse lists collections in parallel arrays.
type ShowCollectionsResponse struct {
	Status
	CollectionNames      []string `json:"collection_names"`
	CollectionIDs        []int64  `json:"collection_ids"`
	CreatedUTCTimestamps []int64  `json:"created_utc_timestamps"`
	InMemoryPercentages  []int64  `json:"inMemory_percentages"`
}

// PartitionRequest names one partition.
type PartitionRequest struct {
	CollectionName string `json:"collection_name"`
	PartitionName  string `json:"partition_name"`
}

// ShowPartitionsRequest lists partitions of a collection.
type ShowPartitionsRequest struct {
	CollectionName string   `json:"collection_name"`
	PartitionNames []string `json:"partition_names,omitempty"`
	Type           int32    `json:"type,omitempty"`
}

// ShowPartitionsResponse lists partitions in parallel arrays.
type ShowPartitionsResponse struct {
	Status
	PartitionNames       []string `json:"partition_names"`
	PartitionIDs         []int64  `json:"partitionIDs"`
	CreatedUTCTimestamps []int64  `json:"created_utc_timestamps"`
	InMemoryPercentages  []int64  `json:"inMemory_percentages"`
}

// LoadPartitionsRequest loads partitions.
type LoadPartitionsRequest struct {
	CollectionName string   `json:"collection_name"`
	PartitionNames []string `json:"partition_names"`
	ReplicaNumber  int32    `json:"replica_number,omitempty"`
}

// ReleasePartitionsRequest releases partitions.
type ReleasePartitionsRequest struct {
	CollectionName string   `json:"collection_name"`
	PartitionNames []string `json:"partition_names"`
}

// CreateIndexRequest builds an index. ExtraParams carries index_type,
// metric_type and params.
type CreateIndexRequest struct {
	CollectionName string         `json:"collection_name"`
	FieldName      string         `json:"field_name"`
	IndexName      string         `json:"index_name,omitempty"`
	ExtraParams    []KeyValuePair `json:"extra_params"`
}

// IndexRequest names an index for drop and describe.
type IndexRequest struct {
	CollectionName string `json:"collection_name"`
	FieldName      string `json:"field_name"`
	IndexName      string `json:"index_name,omitempty"`
}

// Index build states on the wire.
const (
	IndexStateNone       int32 = 0
	IndexStateUnissued   int32 = 1
	IndexStateInProgress int32 = 2
	IndexStateFinished   int32 = 3
	IndexStateFailed     int32 = 4
)

// IndexDescription describes one index.
type IndexDescription struct {
	IndexName            string         `json:"index_name"`
	IndexID              int64          `json:"indexID"`
	FieldName            string         `json:"field_name"`
	Params               []KeyValuePair `json:"params"`
	State                int32          `json:"state"`
	IndexStateFailReason string         `json:"index_state_fail_reason,omitempty"`
	IndexedRows          int64          `json:"indexed_rows"`
	TotalRows            int64          `json:"total_rows"`
}

// DescribeIndexResponse lists the indexes of a field.
type DescribeIndexResponse struct {
	Status
	IndexDescriptions []IndexDescription `json:"index_descriptions"`
}

// ScalarField holds one typed scalar column. Exactly one slice is set.
type ScalarField struct {
	BoolData   []bool    `json:"bool_data,omitempty"`
	IntData    []int32   `json:"int_data,omitempty"`
	LongData   []int64   `json:"long_data,omitempty"`
	FloatData  []float32 `json:"float_data,omitempty"`
	DoubleData []float64 `json:"double_data,omitempty"`
	StringData []string  `json:"string_data,omitempty"`
}

// VectorField holds a flattened vector column.
type VectorField struct {
	Dim         int64     `json:"dim"`
	FloatVector []float32 `json:"float_vector"`
}

// FieldData is one column on the wire.
type FieldData struct {
	FieldName string       `json:"field_name"`
	Type      int32        `json:"type"`
	Scalars   *ScalarField `json:"scalars,omitempty"`
	Vectors   *VectorField `json:"vectors,omitempty"`
}

// IDs holds primary keys, either integer or string.
type IDs struct {
	IntID []int64  `json:"int_id,omitempty"`
	StrID []string `json:"str_id,omitempty"`
}

// Len returns the number of IDs.
func (ids IDs) Len() int {
	if ids.StrID != nil {
		return len(ids.StrID)
	}
	return len(ids.IntID)
}

// InsertRequest inserts rows as columns in schema order.
type InsertRequest struct {
	CollectionName string      `json:"collection_name"`
	PartitionName  string      `json:"partition_name,omitempty"`
	FieldsData     []FieldData `json:"fields_data"`
	NumRows        uint32      `json:"num_rows"`
}

// DeleteRequest deletes rows matching an expression.
type DeleteRequest struct {
	CollectionName string `json:"collection_name"`
	PartitionName  string `json:"partition_name,omitempty"`
	Expr           string `json:"expr"`
}

// MutationResult reports an insert or delete.
type MutationResult struct {
	Status
	IDs       IDs      `json:"IDs"`
	ErrIndex  []uint32 `json:"err_index,omitempty"`
	InsertCnt int64    `json:"insert_cnt"`
	DeleteCnt int64    `json:"delete_cnt"`
	Timestamp uint64   `json:"timestamp"`
}

// PlaceholderGroup carries search query items: flattened vectors or texts.
type PlaceholderGroup struct {
	Vectors *VectorField `json:"vectors,omitempty"`
	Texts   []string     `json:"texts,omitempty"`
}

// SearchRequest runs a similarity search.
type SearchRequest struct {
	CollectionName   string           `json:"collection_name"`
	PartitionNames   []string         `json:"partition_names,omitempty"`
	DSL              string           `json:"dsl"`
	DSLType          int32            `json:"dsl_type"`
	OutputFields     []string         `json:"output_fields,omitempty"`
	SearchParams     []KeyValuePair   `json:"search_params"`
	PlaceholderGroup PlaceholderGroup `json:"placeholder_group"`
	NQ               int64            `json:"nq"`
	ConsistencyLevel int32            `json:"consistency_level"`
}

// SearchResultData holds all hits of all queries, flattened. Topks[i] is the
// hit count of query i.
type SearchResultData struct {
	NumQueries   int64       `json:"num_queries"`
	TopK         int64       `json:"top_k"`
	FieldsData   []FieldData `json:"fields_data,omitempty"`
	Scores       []float32   `json:"scores"`
	IDs          IDs         `json:"ids"`
	Topks        []int64     `json:"topks"`
	OutputFields []string    `json:"output_fields,omitempty"`
}

// SearchResponse returns search hits.
type SearchResponse struct {
	Status
	Results        SearchResultData `json:"results"`
	CollectionName string           `json:"collection_name"`
}

// QueryRequest fetches rows by expression.
type QueryRequest struct {
	CollectionName   string         `json:"collection_name"`
	PartitionNames   []string       `json:"partition_names,omitempty"`
	Expr             string         `json:"expr"`
	OutputFields     []string       `json:"output_fields,omitempty"`
	QueryParams      []KeyValuePair `json:"query_params,omitempty"`
	ConsistencyLevel int32          `json:"consistency_level"`
}

// QueryResponse returns matched rows as columns.
type QueryResponse struct {
	Status
	FieldsData     []FieldData `json:"fields_data"`
	CollectionName string      `json:"collection_name"`
}

// FlushRequest flushes collections.
type FlushRequest struct {
	CollectionNames []string `json:"collection_names"`
}

// SegmentIDs lists sealed segments of one collection.
type SegmentIDs struct {
	Data []int64 `json:"data"`
}

// FlushResponse maps collection names to sealed segment IDs.
type FlushResponse struct {
	Status
	CollSegIDs map[string]SegmentIDs `json:"coll_segIDs"`
}

// GetFlushStateRequest asks whether segments are flushed.
type GetFlushStateRequest struct {
	SegmentIDs []int64 `json:"segmentIDs"`
}

// GetFlushStateResponse reports whether every segment is flushed.
type GetFlushStateResponse struct {
	Status
	Flushed bool `json:"flushed"`
}

// HealthResponse reports server health.
type HealthResponse struct {
	Status
	IsHealthy bool   `json:"is_healthy"`
	Version   string `json:"version,omitempty"`
}
