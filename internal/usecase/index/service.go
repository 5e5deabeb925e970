package index

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecsearch/internal/codec"
	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/domain/param"
	"github.com/kailas-cloud/vecsearch/internal/domain/response"
	"github.com/kailas-cloud/vecsearch/internal/domain/result"
	"github.com/kailas-cloud/vecsearch/internal/domain/status"
	"github.com/kailas-cloud/vecsearch/internal/gateway"
	"github.com/kailas-cloud/vecsearch/internal/poller"
	"github.com/kailas-cloud/vecsearch/internal/usecase/rpc"
	"github.com/kailas-cloud/vecsearch/internal/validate"
)

// Operation names.
const (
	OpCreate   = "CreateIndex"
	OpDrop     = "DropIndex"
	OpDescribe = "DescribeIndex"
)

// Service handles index operations.
type Service struct {
	gw  Gateway
	env *rpc.Env
}

// New creates an index service.
func New(gw Gateway, env *rpc.Env) *Service {
	return &Service{gw: gw, env: env}
}

// Create builds an index. The target field is checked against the live
// collection schema first. With Sync.Wait it blocks until the build is
// Finished; a Failed build is reported with the server's reason.
func (s *Service) Create(ctx context.Context, p param.CreateIndex) result.Result[struct{}] {
	if err := p.Validate(); err != nil {
		return rpc.Fail[struct{}](OpCreate, err)
	}
	info := rpc.Do(ctx, s.env, OpCreate, s.gw.DescribeCollection,
		&gateway.CollectionRequest{CollectionName: p.Collection}, codec.DescribeCollection)
	if !info.OK() {
		return result.Propagate[struct{}](info)
	}
	if err := validate.CreateIndex(p, info.Data().Schema); err != nil {
		return rpc.Fail[struct{}](OpCreate, err)
	}
	req, err := codec.CreateIndexRequest(p)
	if err != nil {
		return rpc.Fail[struct{}](OpCreate, err)
	}

	res := rpc.Do(ctx, s.env, OpCreate, s.gw.CreateIndex, req, codec.Ack)
	if !res.OK() || !p.Sync.Wait {
		return res
	}

	s.env.Logger.Debug("waiting for index build",
		zap.String("collection", p.Collection),
		zap.String("field", p.Field),
		zap.String("index", p.IndexName),
	)
	o := poller.WaitIndexBuilt(ctx, s.env.Poll.With(p.Sync), p.Field, p.IndexName,
		func(ctx context.Context) ([]response.IndexInfo, error) {
			return s.describe(ctx, OpCreate, param.Index{Collection: p.Collection, Field: p.Field, IndexName: p.IndexName}).Get()
		})
	return rpc.Settle(s.env, OpCreate, struct{}{}, o, func(last []response.IndexInfo) error {
		in, _ := poller.MatchIndex(last, p.Field, p.IndexName)
		reason := in.FailReason
		if reason == "" {
			reason = "index build failed"
		}
		return domain.NewServerError(OpCreate, int32(status.BuildIndexError), reason)
	})
}

// Drop removes the index of a field.
func (s *Service) Drop(ctx context.Context, p param.Index) result.Result[struct{}] {
	if err := p.Validate(); err != nil {
		return rpc.Fail[struct{}](OpDrop, err)
	}
	return rpc.Do(ctx, s.env, OpDrop, s.gw.DropIndex, indexRequest(p), codec.Ack)
}

// Describe returns the indexes of a field with their build progress.
func (s *Service) Describe(ctx context.Context, p param.Index) result.Result[[]response.IndexInfo] {
	if err := p.Validate(); err != nil {
		return rpc.Fail[[]response.IndexInfo](OpDescribe, err)
	}
	return s.describe(ctx, OpDescribe, p)
}

func (s *Service) describe(ctx context.Context, op string, p param.Index) result.Result[[]response.IndexInfo] {
	return rpc.Do(ctx, s.env, op, s.gw.DescribeIndex, indexRequest(p), codec.DescribeIndex)
}

func indexRequest(p param.Index) *gateway.IndexRequest {
	return &gateway.IndexRequest{CollectionName: p.Collection, FieldName: p.Field, IndexName: p.IndexName}
}
