// Package gateway defines the remote call contract of the vector search
// service. Each method performs one synchronous remote call and returns
// either a response carrying a Status or a transport error.
package gateway

import "context"

// Gateway performs remote calls. Implementations must be safe for
// concurrent use.
type Gateway interface {
	HasCollection(ctx context.Context, req *HasCollectionRequest) (*BoolResponse, error)
	CreateCollection(ctx context.Context, req *CreateCollectionRequest) (*Status, error)
	DropCollection(ctx context.Context, req *CollectionRequest) (*Status, error)
	DescribeCollection(ctx context.Context, req *CollectionRequest) (*DescribeCollectionResponse, error)
	LoadCollection(ctx context.Context, req *LoadCollectionRequest) (*Status, error)
	ReleaseCollection(ctx context.Context, req *CollectionRequest) (*Status, error)
	ShowCollections(ctx context.Context, req *ShowCollectionsRequest) (*ShowCollectionsResponse, error)

	CreatePartition(ctx context.Context, req *PartitionRequest) (*Status, error)
	DropPartition(ctx context.Context, req *PartitionRequest) (*Status, error)
	HasPartition(ctx context.Context, req *PartitionRequest) (*BoolResponse, error)
	ShowPartitions(ctx context.Context, req *ShowPartitionsRequest) (*ShowPartitionsResponse, error)
	LoadPartitions(ctx context.Context, req *LoadPartitionsRequest) (*Status, error)
	ReleasePartitions(ctx context.Context, req *ReleasePartitionsRequest) (*Status, error)

	CreateIndex(ctx context.Context, req *CreateIndexRequest) (*Status, error)
	DropIndex(ctx context.Context, req *IndexRequest) (*Status, error)
	DescribeIndex(ctx context.Context, req *IndexRequest) (*DescribeIndexResponse, error)

	Insert(ctx context.Context, req *InsertRequest) (*MutationResult, error)
	Delete(ctx context.Context, req *DeleteRequest) (*MutationResult, error)
	Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error)
	Query(ctx context.Context, req *QueryRequest) (*QueryResponse, error)
	Flush(ctx context.Context, req *FlushRequest) (*FlushResponse, error)
	GetFlushState(ctx context.Context, req *GetFlushStateRequest) (*GetFlushStateResponse, error)

	Health(ctx context.Context) (*HealthResponse, error)
	Close() error
}

// Method names used by RPC bindings.
const (
	MethodHasCollection      = "has_collection"
	MethodCreateCollection   = "create_collection"
	MethodDropCollection     = "drop_collection"
	MethodDescribeCollection = "describe_collection"
	MethodLoadCollection     = "load_collection"
	MethodReleaseCollection  = "release_collection"
	MethodShowCollections    = "show_collections"
	MethodCreatePartition    = "create_partition"
	MethodDropPartition      = "drop_partition"
	MethodHasPartition       = "has_partition"
	MethodShowPartitions     = "show_partitions"
	MethodLoadPartitions     = "load_partitions"
	MethodReleasePartitions  = "release_partitions"
	MethodCreateIndex        = "create_index"
	MethodDropIndex          = "drop_index"
	MethodDescribeIndex      = "describe_index"
	MethodInsert             = "insert"
	MethodDelete             = "delete"
	MethodSearch             = "search"
	MethodQuery              = "query"
	MethodFlush              = "flush"
	MethodGetFlushState      = "get_flush_state"
	MethodHealth             = "health"
)
