package partition

import (
	"context"

	"github.com/kailas-cloud/vecsearch/internal/gateway"
)

// Gateway is the slice of the remote contract partition operations use.
type Gateway interface {
	CreatePartition(ctx context.Context, req *gateway.PartitionRequest) (*gateway.Status, error)
	DropPartition(ctx context.Context, req *gateway.PartitionRequest) (*gateway.Status, error)
	HasPartition(ctx context.Context, req *gateway.PartitionRequest) (*gateway.BoolResponse, error)
	ShowPartitions(ctx context.Context, req *gateway.ShowPartitionsRequest) (*gateway.ShowPartitionsResponse, error)
	LoadPartitions(ctx context.Context, req *gateway.LoadPartitionsRequest) (*gateway.Status, error)
	ReleasePartitions(ctx context.Context, req *gateway.ReleasePartitionsRequest) (*gateway.Status, error)
}
