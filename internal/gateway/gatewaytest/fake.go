// Package gatewaytest provides a scriptable gateway.Gateway for tests.
package gatewaytest

import (
	"context"
	"sync"

	"github.com/kailas-cloud/vecsearch/internal/gateway"
)

var _ gateway.Gateway = (*Fake)(nil)

// Fake implements gateway.Gateway with one optional function per method.
// An unset function answers with an empty success response. Calls are
// counted per method name.
type Fake struct {
	HasCollectionFn      func(ctx context.Context, req *gateway.HasCollectionRequest) (*gateway.BoolResponse, error)
	CreateCollectionFn   func(ctx context.Context, req *gateway.CreateCollectionRequest) (*gateway.Status, error)
	DropCollectionFn     func(ctx context.Context, req *gateway.CollectionRequest) (*gateway.Status, error)
	DescribeCollectionFn func(ctx context.Context, req *gateway.CollectionRequest) (*gateway.DescribeCollectionResponse, error)
	LoadCollectionFn     func(ctx context.Context, req *gateway.LoadCollectionRequest) (*gateway.Status, error)
	ReleaseCollectionFn  func(ctx context.Context, req *gateway.CollectionRequest) (*gateway.Status, error)
	ShowCollectionsFn    func(ctx context.Context, req *gateway.ShowCollectionsRequest) (*gateway.ShowCollectionsResponse, error)
	CreatePartitionFn    func(ctx context.Context, req *gateway.PartitionRequest) (*gateway.Status, error)
	DropPartitionFn      func(ctx context.Context, req *gateway.PartitionRequest) (*gateway.Status, error)
	HasPartitionFn       func(ctx context.Context, req *gateway.PartitionRequest) (*gateway.BoolResponse, error)
	ShowPartitionsFn     func(ctx context.Context, req *gateway.ShowPartitionsRequest) (*gateway.ShowPartitionsResponse, error)
	LoadPartitionsFn     func(ctx context.Context, req *gateway.LoadPartitionsRequest) (*gateway.Status, error)
	ReleasePartitionsFn  func(ctx context.Context, req *gateway.ReleasePartitionsRequest) (*gateway.Status, error)
	CreateIndexFn        func(ctx context.Context, req *gateway.CreateIndexRequest) (*gateway.Status, error)
	DropIndexFn          func(ctx context.Context, req *gateway.IndexRequest) (*gateway.Status, error)
	DescribeIndexFn      func(ctx context.Context, req *gateway.IndexRequest) (*gateway.DescribeIndexResponse, error)
	InsertFn             func(ctx context.Context, req *gateway.InsertRequest) (*gateway.MutationResult, error)
	DeleteFn             func(ctx context.Context, req *gateway.DeleteRequest) (*gateway.MutationResult, error)
	SearchFn             func(ctx context.Context, req *gateway.SearchRequest) (*gateway.SearchResponse, error)
	QueryFn              func(ctx context.Context, req *gateway.QueryRequest) (*gateway.QueryResponse, error)
	FlushFn              func(ctx context.Context, req *gateway.FlushRequest) (*gateway.FlushResponse, error)
	GetFlushStateFn      func(ctx context.Context, req *gateway.GetFlushStateRequest) (*gateway.GetFlushStateResponse, error)
	HealthFn             func(ctx context.Context) (*gateway.HealthResponse, error)

	mu     sync.Mutex
	calls  map[string]int
	closed bool
}

func (f *Fake) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[method]++
}

// Calls returns how many times method was invoked.
func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// HasCollection implements gateway.Gateway.
func (f *Fake) HasCollection(ctx context.Context, req *gateway.HasCollectionRequest) (*gateway.BoolResponse, error) {
	f.record("HasCollection")
	if f.HasCollectionFn != nil {
		return f.HasCollectionFn(ctx, req)
	}
	return &gateway.BoolResponse{}, nil
}

// CreateCollection implements gateway.Gateway.
func (f *Fake) CreateCollection(ctx context.Context, req *gateway.CreateCollectionRequest) (*gateway.Status, error) {
	f.record("CreateCollection")
	if f.CreateCollectionFn != nil {
		return f.CreateCollectionFn(ctx, req)
	}
	return &gateway.Status{}, nil
}

// DropCollection implements gateway.Gateway.
func (f *Fake) DropCollection(ctx context.Context, req *gateway.CollectionRequest) (*gateway.Status, error) {
	f.record("DropCollection")
	if f.DropCollectionFn != nil {
		return f.DropCollectionFn(ctx, req)
	}
	return &gateway.Status{}, nil
}

// DescribeCollection implements gateway.Gateway.
func (f *Fake) DescribeCollection(ctx context.Context, req *gateway.CollectionRequest) (*gateway.DescribeCollectionResponse, error) {
	f.record("DescribeCollection")
	if f.DescribeCollectionFn != nil {
		return f.DescribeCollectionFn(ctx, req)
	}
	return &gateway.DescribeCollectionResponse{}, nil
}

// LoadCollection implements gateway.Gateway.
func (f *Fake) LoadCollection(ctx context.Context, req *gateway.LoadCollectionRequest) (*gateway.Status, error) {
	f.record("LoadCollection")
	if f.LoadCollectionFn != nil {
		return f.LoadCollectionFn(ctx, req)
	}
	return &gateway.Status{}, nil
}

// ReleaseCollection implements gateway.Gateway.
func (f *Fake) ReleaseCollection(ctx context.Context, req *gateway.CollectionRequest) (*gateway.Status, error) {
	f.record("ReleaseCollection")
	if f.ReleaseCollectionFn != nil {
		return f.ReleaseCollectionFn(ctx, req)
	}
	return &gateway.Status{}, nil
}

// ShowCollections implements gateway.Gateway.
func (f *Fake) ShowCollections(ctx context.Context, req *gateway.ShowCollectionsRequest) (*gateway.ShowCollectionsResponse, error) {
	f.record("ShowCollections")
	if f.ShowCollectionsFn != nil {
		return f.ShowCollectionsFn(ctx, req)
	}
	return &gateway.ShowCollectionsResponse{}, nil
}

// CreatePartition implements gateway.Gateway.
func (f *Fake) CreatePartition(ctx context.Context, req *gateway.PartitionRequest) (*gateway.Status, error) {
	f.record("CreatePartition")
	if f.CreatePartitionFn != nil {
		return f.CreatePartitionFn(ctx, req)
	}
	return &gateway.Status{}, nil
}

// DropPartition implements gateway.Gateway.
func (f *Fake) DropPartition(ctx context.Context, req *gateway.PartitionRequest) (*gateway.Status, error) {
	f.record("DropPartition")
	if f.DropPartitionFn != nil {
		return f.DropPartitionFn(ctx, req)
	}
	return &gateway.Status{}, nil
}

// HasPartition implements gateway.Gateway.
func (f *Fake) HasPartition(ctx context.Context, req *gateway.PartitionRequest) (*gateway.BoolResponse, error) {
	f.record("HasPartition")
	if f.HasPartitionFn != nil {
		return f.HasPartitionFn(ctx, req)
	}
	return &gateway.BoolResponse{}, nil
}

// ShowPartitions implements gateway.Gateway.
func (f *Fake) ShowPartitions(ctx context.Context, req *gateway.ShowPartitionsRequest) (*gateway.ShowPartitionsResponse, error) {
	f.record("ShowPartitions")
	if f.ShowPartitionsFn != nil {
		return f.ShowPartitionsFn(ctx, req)
	}
	return &gateway.ShowPartitionsResponse{}, nil
}

// LoadPartitions implements gateway.Gateway.
func (f *Fake) LoadPartitions(ctx context.Context, req *gateway.LoadPartitionsRequest) (*gateway.Status, error) {
	f.record("LoadPartitions")
	if f.LoadPartitionsFn != nil {
		return f.LoadPartitionsFn(ctx, req)
	}
	return &gateway.Status{}, nil
}

// ReleasePartitions implements gateway.Gateway.
func (f *Fake) ReleasePartitions(ctx context.Context, req *gateway.ReleasePartitionsRequest) (*gateway.Status, error) {
	f.record("ReleasePartitions")
	if f.ReleasePartitionsFn != nil {
		return f.ReleasePartitionsFn(ctx, req)
	}
	return &gateway.Status{}, nil
}

// CreateIndex implements gateway.Gateway.
func (f *Fake) CreateIndex(ctx context.Context, req *gateway.CreateIndexRequest) (*gateway.Status, error) {
	f.record("CreateIndex")
	if f.CreateIndexFn != nil {
		return f.CreateIndexFn(ctx, req)
	}
	return &gateway.Status{}, nil
}

// DropIndex implements gateway.Gateway.
func (f *Fake) DropIndex(ctx context.Context, req *gateway.IndexRequest) (*gateway.Status, error) {
	f.record("DropIndex")
	if f.DropIndexFn != nil {
		return f.DropIndexFn(ctx, req)
	}
	return &gateway.Status{}, nil
}

// DescribeIndex implements gateway.Gateway.
func (f *Fake) DescribeIndex(ctx context.Context, req *gateway.IndexRequest) (*gateway.DescribeIndexResponse, error) {
	f.record("DescribeIndex")
	if f.DescribeIndexFn != nil {
		return f.DescribeIndexFn(ctx, req)
	}
	return &gateway.DescribeIndexResponse{}, nil
}

// Insert implements gateway.Gateway.
func (f *Fake) Insert(ctx context.Context, req *gateway.InsertRequest) (*gateway.MutationResult, error) {
	f.record("Insert")
	if f.InsertFn != nil {
		return f.InsertFn(ctx, req)
	}
	return &gateway.MutationResult{}, nil
}

// Delete implements gateway.Gateway.
func (f *Fake) Delete(ctx context.Context, req *gateway.DeleteRequest) (*gateway.MutationResult, error) {
	f.record("Delete")
	if f.DeleteFn != nil {
		return f.DeleteFn(ctx, req)
	}
	return &gateway.MutationResult{}, nil
}

// Search implements gateway.Gateway.
func (f *Fake) Search(ctx context.Context, req *gateway.SearchRequest) (*gateway.SearchResponse, error) {
	f.record("Search")
	if f.SearchFn != nil {
		return f.SearchFn(ctx, req)
	}
	return &gateway.SearchResponse{}, nil
}

// Query implements gateway.Gateway.
func (f *Fake) Query(ctx context.Context, req *gateway.QueryRequest) (*gateway.QueryResponse, error) {
	f.record("Query")
	if f.QueryFn != nil {
		return f.QueryFn(ctx, req)
	}
	return &gateway.QueryResponse{}, nil
}

// Flush implements gateway.Gateway.
func (f *Fake) Flush(ctx context.Context, req *gateway.FlushRequest) (*gateway.FlushResponse, error) {
	f.record("Flush")
	if f.FlushFn != nil {
		return f.FlushFn(ctx, req)
	}
	return &gateway.FlushResponse{}, nil
}

// GetFlushState implements gateway.Gateway.
func (f *Fake) GetFlushState(ctx context.Context, req *gateway.GetFlushStateRequest) (*gateway.GetFlushStateResponse, error) {
	f.record("GetFlushState")
	if f.GetFlushStateFn != nil {
		return f.GetFlushStateFn(ctx, req)
	}
	return &gateway.GetFlushStateResponse{}, nil
}

// Health implements gateway.Gateway.
func (f *Fake) Health(ctx context.Context) (*gateway.HealthResponse, error) {
	f.record("Health")
	if f.HealthFn != nil {
		return f.HealthFn(ctx)
	}
	return &gateway.HealthResponse{IsHealthy: true}, nil
}

// Close implements gateway.Gateway.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
