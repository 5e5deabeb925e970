package flush

import (
	"context"

	"github.com/kailas-cloud/vecsearch/internal/gateway"
)

// Gateway is the slice of the remote contract flush operations use.
type Gateway interface {
	Flush(ctx context.Context, req *gateway.FlushRequest) (*gateway.FlushResponse, error)
	GetFlushState(ctx context.Context, req *gateway.GetFlushStateRequest) (*gateway.GetFlushStateResponse, error)
}
