package index

import (
	"context"

	"github.com/kailas-cloud/vecsearch/internal/gateway"
)

// Gateway is the slice of the remote contract index operations use.
type Gateway interface {
	DescribeCollection(ctx context.Context, req *gateway.CollectionRequest) (*gateway.DescribeCollectionResponse, error)
	CreateIndex(ctx context.Context, req *gateway.CreateIndexRequest) (*gateway.Status, error)
	DropIndex(ctx context.Context, req *gateway.IndexRequest) (*gateway.Status, error)
	DescribeIndex(ctx context.Context, req *gateway.IndexRequest) (*gateway.DescribeIndexResponse, error)
}
