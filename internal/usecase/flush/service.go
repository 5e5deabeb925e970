// Package flush seals in-memory data into segments and tracks whether the
// segments are persisted.
package flush

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

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
	OpFlush    = "Flush"
	OpGetState = "GetFlushState"
)

// Service handles flush operations.
type Service struct {
	gw  Gateway
	env *rpc.Env
}

// New creates a flush service.
func New(gw Gateway, env *rpc.Env) *Service {
	return &Service{gw: gw, env: env}
}

// Flush seals the listed collections. With Sync.Wait it blocks until the
// segments of every collection are flushed. Each collection gets its own
// wait budget; collections still pending are listed in the result and
// reported as a warning.
func (s *Service) Flush(ctx context.Context, p param.Flush) result.Result[response.FlushResult] {
	if err := p.Validate(); err != nil {
		return rpc.Fail[response.FlushResult](OpFlush, err)
	}
	res := rpc.Do(ctx, s.env, OpFlush, s.gw.Flush,
		&gateway.FlushRequest{CollectionNames: p.Collections}, codec.Flush)
	if !res.OK() || !p.Sync.Wait {
		return res
	}

	out := res.Data()
	o := poller.WaitFlushed(ctx, s.env.Poll.With(p.Sync), out.Segments,
		func(ctx context.Context, ids []int64) (bool, error) {
			return s.state(ctx, OpFlush, ids).Get()
		})
	out.Pending = o.Pending
	s.countWait(o)

	if o.Err != nil {
		return result.Failure[response.FlushResult](domain.WithOp(OpFlush, o.Err))
	}
	if len(o.Pending) > 0 {
		s.env.Logger.Warn("flush not confirmed", zap.Strings("collections", o.Pending))
		return result.SuccessWithWarning(out, fmt.Sprintf(
			"flush of collections %s still in progress after sync wait", strings.Join(o.Pending, ", ")))
	}
	return result.Success(out)
}

func (s *Service) countWait(o poller.FlushOutcome) {
	if s.env.PollOutcomes == nil {
		return
	}
	state := poller.Done
	switch {
	case o.Err != nil:
		state = poller.Error
	case len(o.Pending) > 0:
		state = poller.Pending
	}
	s.env.PollOutcomes.WithLabelValues(OpFlush, state.String()).Inc()
}

// GetState reports whether every listed segment is flushed.
func (s *Service) GetState(ctx context.Context, p param.GetFlushState) result.Result[bool] {
	if err := p.Validate(); err != nil {
		return rpc.Fail[bool](OpGetState, err)
	}
	return s.state(ctx, OpGetState, p.SegmentIDs)
}

func (s *Service) state(ctx context.Context, op string, ids []int64) result.Result[bool] {
	return rpc.Do(ctx, s.env, op, s.gw.GetFlushState,
		&gateway.GetFlushStateRequest{SegmentIDs: ids}, codec.FlushState)
}
