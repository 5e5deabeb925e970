// Package rpc holds the plumbing shared by the client usecases: one remote
// call run through the retry executor, and turning a sync wait into the
// result of the operation that started it.
package rpc

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/domain/result"
	"github.com/kailas-cloud/vecsearch/internal/poller"
	"github.com/kailas-cloud/vecsearch/internal/retry"
)

// Env is what every usecase needs besides its gateway. It is read-only
// after construction.
type Env struct {
	Exec    *retry.Executor
	Poll    poller.Policy
	Missing poller.MissingPartition
	Logger  *zap.Logger
	// PollOutcomes counts sync waits by operation and state. May be nil.
	PollOutcomes *prometheus.CounterVec
}

// NewEnv returns an Env with default policies and a no-op logger.
func NewEnv() *Env {
	return &Env{
		Exec:   retry.NewExecutor(retry.DefaultPolicy(), nil, nil),
		Poll:   poller.DefaultPolicy(),
		Logger: zap.NewNop(),
	}
}

// Do sends req through call under the retry policy and decodes the
// response. A call error is a transport failure and is not retried.
func Do[Req, Resp, T any](
	ctx context.Context, env *Env, op string,
	call func(context.Context, Req) (Resp, error), req Req,
	decode func(string, Resp) (result.Result[T], error),
) result.Result[T] {
	return retry.Run(ctx, env.Exec, op, func(ctx context.Context) (result.Result[T], error) {
		resp, err := call(ctx, req)
		if err != nil {
			return result.Result[T]{}, domain.NewTransportError(op, err)
		}
		return decode(op, resp)
	})
}

// Settle maps a wait outcome onto data. Done yields data; Pending yields data
// with a warning since the operation may still complete; Failed yields a
// server failure built by failure from the last status; Error yields the
// fetch failure.
func Settle[T, S any](
	env *Env, op string, data T, o poller.Outcome[S], failure func(S) error,
) result.Result[T] {
	if env.PollOutcomes != nil {
		env.PollOutcomes.WithLabelValues(op, o.State.String()).Inc()
	}
	switch o.State {
	case poller.Done:
		return result.Success(data)
	case poller.Pending:
		msg := "operation still in progress on the server after sync wait"
		if o.Err != nil {
			msg += ": " + o.Err.Error()
		}
		env.Logger.Warn("sync wait not confirmed", zap.String("op", op), zap.Int("polls", o.Polls), zap.Error(o.Err))
		return result.SuccessWithWarning(data, msg)
	case poller.Failed:
		var err error
		if failure != nil {
			err = failure(o.Last)
		}
		if err == nil {
			err = domain.NewServerError(op, 0, "operation failed on the server")
		}
		return result.Failure[T](domain.WithOp(op, err))
	default:
		return result.Failure[T](domain.WithOp(op, o.Err))
	}
}

// Fail wraps a local failure such as a parameter error into a result.
func Fail[T any](op string, err error) result.Result[T] {
	return result.Failure[T](domain.WithOp(op, err))
}
