package collection

import (
	"context"

	"github.com/kailas-cloud/vecsearch/internal/gateway"
)

// Gateway is the slice of the remote contract collection operations use.
type Gateway interface {
	HasCollection(ctx context.Context, req *gateway.HasCollectionRequest) (*gateway.BoolResponse, error)
	CreateCollection(ctx context.Context, req *gateway.CreateCollectionRequest) (*gateway.Status, error)
	DropCollection(ctx context.Context, req *gateway.CollectionRequest) (*gateway.Status, error)
	DescribeCollection(ctx context.Context, req *gateway.CollectionRequest) (*gateway.DescribeCollectionResponse, error)
	LoadCollection(ctx context.Context, req *gateway.LoadCollectionRequest) (*gateway.Status, error)
	ReleaseCollection(ctx context.Context, req *gateway.CollectionRequest) (*gateway.Status, error)
	ShowCollections(ctx context.Context, req *gateway.ShowCollectionsRequest) (*gateway.ShowCollectionsResponse, error)
}
