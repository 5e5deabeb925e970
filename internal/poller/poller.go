// Package poller waits for asynchronous server operations to reach a
// terminal state. A spent budget yields a pending outcome, never an error.
package poller

import (
	"context"
	"time"

	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/domain/param"
)

// MinInterval is the shortest pause between two status fetches.
const MinInterval = time.Millisecond

// Policy bounds a wait. A zero Timeout means no budget.
type Policy struct {
	Interval time.Duration
	Timeout  time.Duration
}

// DefaultPolicy polls every 500ms for up to a minute.
func DefaultPolicy() Policy {
	return Policy{Interval: 500 * time.Millisecond, Timeout: time.Minute}
}

// Validate rejects a non-positive interval and a negative timeout.
func (p Policy) Validate() error {
	if p.Interval <= 0 {
		return domain.NewParamError("poll interval must be positive, got %s", p.Interval)
	}
	if p.Timeout < 0 {
		return domain.NewParamError("poll timeout cannot be negative, got %s", p.Timeout)
	}
	return nil
}

// With returns p overridden by the non-zero durations of s.
func (p Policy) With(s param.Sync) Policy {
	if s.Interval > 0 {
		p.Interval = s.Interval
	}
	if s.Timeout > 0 {
		p.Timeout = s.Timeout
	}
	return p
}

// State is the outcome of a wait.
type State int

// Wait states.
const (
	// Done means the terminal success state was observed.
	Done State = iota
	// Failed means the server reported a failure state.
	Failed
	// Pending means the budget ran out or the wait was cancelled; the
	// operation may still complete.
	Pending
	// Error means a status fetch failed.
	Error
)

func (s State) String() string {
	switch s {
	case Done:
		return "done"
	case Failed:
		return "failed"
	case Pending:
		return "pending"
	default:
		return "error"
	}
}

// Outcome reports how a wait ended. Last is the most recent status fetched.
type Outcome[S any] struct {
	State State
	Last  S
	Polls int
	Err   error
}

// Poll fetches the status until isFailure or isTerminal holds, the budget is
// spent, or ctx is cancelled. Sleeps last at least MinInterval and never run
// past the budget.
func Poll[S any](
	ctx context.Context, p Policy,
	fetch func(context.Context) (S, error),
	isTerminal, isFailure func(S) bool,
) Outcome[S] {
	start := time.Now()
	var out Outcome[S]
	for {
		s, err := fetch(ctx)
		out.Polls++
		if err != nil {
			out.State, out.Err = Error, err
			return out
		}
		out.Last = s
		if isFailure != nil && isFailure(s) {
			out.State = Failed
			return out
		}
		if isTerminal(s) {
			out.State = Done
			return out
		}

		d := max(p.Interval, MinInterval)
		if p.Timeout > 0 {
			left := p.Timeout - time.Since(start)
			if left <= 0 {
				out.State = Pending
				return out
			}
			d = min(d, left)
		}
		if err := wait(ctx, d); err != nil {
			out.State, out.Err = Pending, err
			return out
		}
	}
}

func wait(ctx context.Context, d time.Duration) error {
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
