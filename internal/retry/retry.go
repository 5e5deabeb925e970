// Package retry runs one logical operation with bounded, budgeted retries.
// Only explicit failure results are retried; a returned error or a panic
// ends the loop at once.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/domain/result"
)

// Policy bounds the retry loop. MaxAttempts of 1 or less means no retry;
// a zero Timeout means no overall budget.
type Policy struct {
	MaxAttempts int
	Interval    time.Duration
	Timeout     time.Duration
}

// DefaultPolicy returns 3 attempts, 500ms apart, within 10s.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, Interval: 500 * time.Millisecond, Timeout: 10 * time.Second}
}

// Validate rejects negative durations.
func (p Policy) Validate() error {
	if p.Interval < 0 || p.Timeout < 0 {
		return domain.NewParamError("retry interval and timeout cannot be negative")
	}
	return nil
}

// Attempt outcomes reported to the attempts counter.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeError     = "error"
	OutcomeTimeout   = "timeout"
	OutcomeExhausted = "exhausted"
	OutcomeCancelled = "cancelled"
)

// Executor applies a Policy to operations. It is immutable and safe for
// concurrent use; all loop state is local to a Run call.
type Executor struct {
	policy   Policy
	logger   *zap.Logger
	attempts *prometheus.CounterVec
}

// NewExecutor creates an Executor. attempts may be nil; it must carry the
// labels operation and outcome.
func NewExecutor(p Policy, logger *zap.Logger, attempts *prometheus.CounterVec) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{policy: p, logger: logger, attempts: attempts}
}

// Policy returns the executor policy.
func (e *Executor) Policy() Policy { return e.policy }

func (e *Executor) count(op, outcome string) {
	if e.attempts != nil {
		e.attempts.WithLabelValues(op, outcome).Inc()
	}
}

// Run invokes fn until it succeeds, returns an error, or the policy is spent.
func Run[T any](ctx context.Context, e *Executor, op string, fn func(context.Context) (result.Result[T], error)) result.Result[T] {
	p := e.policy
	log := e.logger.With(zap.String("op", op))

	if p.MaxAttempts <= 1 {
		res, fatal := attempt(ctx, op, fn)
		switch {
		case res.OK():
			e.count(op, OutcomeSuccess)
		case fatal:
			e.count(op, OutcomeError)
			log.Error("operation failed", zap.Error(res.Err()))
		default:
			e.count(op, OutcomeFailure)
		}
		return res
	}

	start := time.Now()
	var last result.Result[T]
	for n := 1; n <= p.MaxAttempts; n++ {
		res, fatal := attempt(ctx, op, fn)
		if res.OK() {
			e.count(op, OutcomeSuccess)
			return res
		}
		if fatal {
			e.count(op, OutcomeError)
			log.Error("operation failed, not retrying", zap.Int("attempt", n), zap.Error(res.Err()))
			return res
		}
		e.count(op, OutcomeFailure)
		last = res
		if n == p.MaxAttempts {
			break
		}

		if spent(start, p.Timeout) {
			return timeoutFailure(e, log, op, last)
		}
		log.Info("retrying operation",
			zap.Int("attempt", n),
			zap.Stringer("code", res.Code()),
			zap.String("reason", res.Message()),
		)
		if err := sleep(ctx, p.Interval, remaining(start, p.Timeout)); err != nil {
			e.count(op, OutcomeCancelled)
			log.Warn("retry interrupted", zap.Int("attempt", n), zap.Error(err))
			return result.Failure[T](&domain.Error{
				Kind: domain.KindPending,
				Op:   op,
				Msg:  "retry interrupted, operation may be unfinished",
				Err:  err,
			})
		}
		if spent(start, p.Timeout) {
			return timeoutFailure(e, log, op, last)
		}
	}

	e.count(op, OutcomeExhausted)
	log.Warn("retries exhausted", zap.Int("attempts", p.MaxAttempts), zap.String("reason", last.Message()))
	return result.Failure[T](&domain.Error{
		Kind: domain.KindServer,
		Code: int32(last.Code()),
		Msg:  fmt.Sprintf("retry run out of %d retry times", p.MaxAttempts),
		Err:  fmt.Errorf("%w, last failure: %w", domain.ErrRetriesExhausted, last.Err()),
	})
}

func timeoutFailure[T any](e *Executor, log *zap.Logger, op string, last result.Result[T]) result.Result[T] {
	e.count(op, OutcomeTimeout)
	log.Warn("retry timeout", zap.Duration("timeout", e.policy.Timeout), zap.String("reason", last.Message()))
	return result.Failure[T](&domain.Error{
		Kind: domain.KindTimeout,
		Msg:  fmt.Sprintf("retry timeout: %s", e.policy.Timeout),
		Err:  last.Err(),
	})
}

// attempt runs fn once. fatal reports a returned error or a panic.
func attempt[T any](ctx context.Context, op string, fn func(context.Context) (result.Result[T], error)) (res result.Result[T], fatal bool) {
	defer func() {
		if r := recover(); r != nil {
			res = result.Failure[T](&domain.Error{Kind: domain.KindUnknown, Op: op, Msg: fmt.Sprintf("panic: %v", r)})
			fatal = true
		}
	}()
	res, err := fn(ctx)
	if err != nil {
		return result.Failure[T](domain.WithOp(op, err)), true
	}
	return res, false
}

func spent(start time.Time, budget time.Duration) bool {
	return budget > 0 && time.Since(start) >= budget
}

// remaining returns the budget left, or -1 when unbounded.
func remaining(start time.Time, budget time.Duration) time.Duration {
	if budget <= 0 {
		return -1
	}
	return max(budget-time.Since(start), 0)
}

// sleep waits d, clipped to limit when limit is not negative. It returns the
// context error when cancelled first.
func sleep(ctx context.Context, d, limit time.Duration) error {
	if limit >= 0 && d > limit {
		d = limit
	}
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
