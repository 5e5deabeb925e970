package collection

import (
	"context"

	"github.com/kailas-cloud/vecsearch/internal/codec"
	"github.com/kailas-cloud/vecsearch/internal/domain/param"
	"github.com/kailas-cloud/vecsearch/internal/domain/response"
	"github.com/kailas-cloud/vecsearch/internal/domain/result"
	"github.com/kailas-cloud/vecsearch/internal/gateway"
	"github.com/kailas-cloud/vecsearch/internal/poller"
	"github.com/kailas-cloud/vecsearch/internal/usecase/rpc"
)

// Operation names used for logs, metrics and error prefixes.
const (
	OpHas      = "HasCollection"
	OpCreate   = "CreateCollection"
	OpDrop     = "DropCollection"
	OpDescribe = "DescribeCollection"
	OpShow     = "ShowCollections"
	OpLoad     = "LoadCollection"
	OpRelease  = "ReleaseCollection"
)

// Service handles collection lifecycle operations.
type Service struct {
	gw  Gateway
	env *rpc.Env
}

// New creates a collection service.
func New(gw Gateway, env *rpc.Env) *Service {
	return &Service{gw: gw, env: env}
}

// Has reports whether the collection exists.
func (s *Service) Has(ctx context.Context, p param.Collection) result.Result[bool] {
	if err := p.Validate(); err != nil {
		return rpc.Fail[bool](OpHas, err)
	}
	return rpc.Do(ctx, s.env, OpHas, s.gw.HasCollection,
		&gateway.HasCollectionRequest{CollectionName: p.Name}, codec.Bool)
}

// Create creates a collection from its schema.
func (s *Service) Create(ctx context.Context, p param.CreateCollection) result.Result[struct{}] {
	if err := p.Validate(); err != nil {
		return rpc.Fail[struct{}](OpCreate, err)
	}
	return rpc.Do(ctx, s.env, OpCreate, s.gw.CreateCollection, codec.CreateCollectionRequest(p), codec.Ack)
}

// Drop removes the collection and its data.
func (s *Service) Drop(ctx context.Context, p param.Collection) result.Result[struct{}] {
	if err := p.Validate(); err != nil {
		return rpc.Fail[struct{}](OpDrop, err)
	}
	return rpc.Do(ctx, s.env, OpDrop, s.gw.DropCollection,
		&gateway.CollectionRequest{CollectionName: p.Name}, codec.Ack)
}

// Describe returns the schema and metadata of the collection.
func (s *Service) Describe(ctx context.Context, p param.Collection) result.Result[response.CollectionInfo] {
	if err := p.Validate(); err != nil {
		return rpc.Fail[response.CollectionInfo](OpDescribe, err)
	}
	return rpc.Do(ctx, s.env, OpDescribe, s.gw.DescribeCollection,
		&gateway.CollectionRequest{CollectionName: p.Name}, codec.DescribeCollection)
}

// Show lists collections with their load progress.
func (s *Service) Show(ctx context.Context, p param.ShowCollections) result.Result[[]response.LoadStatus] {
	if err := p.Validate(); err != nil {
		return rpc.Fail[[]response.LoadStatus](OpShow, err)
	}
	return s.show(ctx, OpShow, p.Names, p.Kind)
}

func (s *Service) show(ctx context.Context, op string, names []string, kind param.ShowKind) result.Result[[]response.LoadStatus] {
	return rpc.Do(ctx, s.env, op, s.gw.ShowCollections,
		&gateway.ShowCollectionsRequest{CollectionNames: names, Type: int32(kind)}, codec.ShowCollections)
}

// Load starts loading the collection into memory. With Sync.Wait it blocks
// until the collection reports fully loaded or the wait budget is spent.
func (s *Service) Load(ctx context.Context, p param.LoadCollection) result.Result[struct{}] {
	if err := p.Validate(); err != nil {
		return rpc.Fail[struct{}](OpLoad, err)
	}
	res := rpc.Do(ctx, s.env, OpLoad, s.gw.LoadCollection, &gateway.LoadCollectionRequest{
		CollectionName: p.Collection,
		ReplicaNumber:  int32(p.Replicas),
	}, codec.Ack)
	if !res.OK() || !p.Sync.Wait {
		return res
	}

	names := []string{p.Collection}
	o := poller.WaitCollectionLoaded(ctx, s.env.Poll.With(p.Sync), p.Collection,
		func(ctx context.Context) ([]response.LoadStatus, error) {
			return s.show(ctx, OpLoad, names, param.ShowAll).Get()
		})
	return rpc.Settle(s.env, OpLoad, struct{}{}, o, nil)
}

// Release unloads the collection from memory.
func (s *Service) Release(ctx context.Context, p param.Collection) result.Result[struct{}] {
	if err := p.Validate(); err != nil {
		return rpc.Fail[struct{}](OpRelease, err)
	}
	return rpc.Do(ctx, s.env, OpRelease, s.gw.ReleaseCollection,
		&gateway.CollectionRequest{CollectionName: p.Name}, codec.Ack)
}
