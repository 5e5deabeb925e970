package partition

import (
	"context"
	"strings"

	"github.com/kailas-cloud/vecsearch/internal/codec"
	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/domain/param"
	"github.com/kailas-cloud/vecsearch/internal/domain/response"
	"github.com/kailas-cloud/vecsearch/internal/domain/result"
	"github.com/kailas-cloud/vecsearch/internal/gateway"
	"github.com/kailas-cloud/vecsearch/internal/poller"
	"github.com/kailas-cloud/vecsearch/internal/usecase/rpc"
)

// Operation names.
const (
	OpCreate  = "CreatePartition"
	OpDrop    = "DropPartition"
	OpHas     = "HasPartition"
	OpShow    = "ShowPartitions"
	OpLoad    = "LoadPartitions"
	OpRelease = "ReleasePartitions"
)

// Service handles partition operations.
type Service struct {
	gw  Gateway
	env *rpc.Env
}

// New creates a partition service.
func New(gw Gateway, env *rpc.Env) *Service {
	return &Service{gw: gw, env: env}
}

func request(p param.Partition) *gateway.PartitionRequest {
	return &gateway.PartitionRequest{CollectionName: p.Collection, PartitionName: p.Partition}
}

// Create adds a partition to the collection.
func (s *Service) Create(ctx context.Context, p param.Partition) result.Result[struct{}] {
	if err := p.Validate(); err != nil {
		return rpc.Fail[struct{}](OpCreate, err)
	}
	return rpc.Do(ctx, s.env, OpCreate, s.gw.CreatePartition, request(p), codec.Ack)
}

// Drop removes a partition and its data.
func (s *Service) Drop(ctx context.Context, p param.Partition) result.Result[struct{}] {
	if err := p.Validate(); err != nil {
		return rpc.Fail[struct{}](OpDrop, err)
	}
	return rpc.Do(ctx, s.env, OpDrop, s.gw.DropPartition, request(p), codec.Ack)
}

// Has reports whether the partition exists.
func (s *Service) Has(ctx context.Context, p param.Partition) result.Result[bool] {
	if err := p.Validate(); err != nil {
		return rpc.Fail[bool](OpHas, err)
	}
	return rpc.Do(ctx, s.env, OpHas, s.gw.HasPartition, request(p), codec.Bool)
}

// Show lists partitions of a collection with their load progress.
func (s *Service) Show(ctx context.Context, p param.ShowPartitions) result.Result[[]response.LoadStatus] {
	if err := p.Validate(); err != nil {
		return rpc.Fail[[]response.LoadStatus](OpShow, err)
	}
	return s.show(ctx, OpShow, p.Collection, p.Names, p.Kind)
}

func (s *Service) show(
	ctx context.Context, op, collection string, names []string, kind param.ShowKind,
) result.Result[[]response.LoadStatus] {
	return rpc.Do(ctx, s.env, op, s.gw.ShowPartitions, &gateway.ShowPartitionsRequest{
		CollectionName: collection,
		PartitionNames: names,
		Type:           int32(kind),
	}, codec.ShowPartitions)
}

// Load starts loading partitions. With Sync.Wait it blocks until every
// partition reports fully loaded. A partition absent from the status is
// awaited or fails the wait depending on the MissingPartition policy.
func (s *Service) Load(ctx context.Context, p param.LoadPartitions) result.Result[struct{}] {
	if err := p.Validate(); err != nil {
		return rpc.Fail[struct{}](OpLoad, err)
	}
	res := rpc.Do(ctx, s.env, OpLoad, s.gw.LoadPartitions, &gateway.LoadPartitionsRequest{
		CollectionName: p.Collection,
		PartitionNames: p.Partitions,
		ReplicaNumber:  int32(p.Replicas),
	}, codec.Ack)
	if !res.OK() || !p.Sync.Wait {
		return res
	}

	o := poller.WaitPartitionsLoaded(ctx, s.env.Poll.With(p.Sync), p.Partitions, s.env.Missing,
		func(ctx context.Context) ([]response.LoadStatus, error) {
			return s.show(ctx, OpLoad, p.Collection, nil, param.ShowAll).Get()
		})
	return rpc.Settle(s.env, OpLoad, struct{}{}, o, func(last []response.LoadStatus) error {
		return domain.NewSchemaMismatch("partitions missing from load status of collection '%s': %s",
			p.Collection, strings.Join(poller.MissingNames(last, p.Partitions), ", "))
	})
}

// Release unloads partitions.
func (s *Service) Release(ctx context.Context, p param.ReleasePartitions) result.Result[struct{}] {
	if err := p.Validate(); err != nil {
		return rpc.Fail[struct{}](OpRelease, err)
	}
	return rpc.Do(ctx, s.env, OpRelease, s.gw.ReleasePartitions, &gateway.ReleasePartitionsRequest{
		CollectionName: p.Collection,
		PartitionNames: p.Partitions,
	}, codec.Ack)
}
