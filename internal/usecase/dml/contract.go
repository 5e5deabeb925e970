package dml

import (
	"context"

	"github.com/kailas-cloud/vecsearch/internal/gateway"
)

// Gateway is the slice of the remote contract data operations use.
type Gateway interface {
	DescribeCollection(ctx context.Context, req *gateway.CollectionRequest) (*gateway.DescribeCollectionResponse, error)
	Insert(ctx context.Context, req *gateway.InsertRequest) (*gateway.MutationResult, error)
	Delete(ctx context.Context, req *gateway.DeleteRequest) (*gateway.MutationResult, error)
	Search(ctx context.Context, req *gateway.SearchRequest) (*gateway.SearchResponse, error)
	Query(ctx context.Context, req *gateway.QueryRequest) (*gateway.QueryResponse, error)
}
