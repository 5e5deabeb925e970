package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecsearch/internal/domain"
)

// Action defines what happens once a token budget is spent.
type Action string

const (
	// ActionWarn logs and lets the request through.
	ActionWarn Action = "warn"
	// ActionReject fails the request with domain.ErrEmbeddingQuotaExceeded.
	ActionReject Action = "reject"
)

// Limits caps token usage per UTC day and month. Zero means unlimited.
type Limits struct {
	Daily   int64
	Monthly int64
	Action  Action
}

// CounterStore persists token counters across restarts.
type CounterStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// Tracker counts embedding tokens against Limits.
// Check reads memory only; Record updates memory and then writes through to the store.
type Tracker struct {
	mu             sync.Mutex
	limits         Limits
	provider       string
	keyPrefix      string
	daily          int64
	monthly        int64
	day            time.Time
	month          time.Time
	store          CounterStore
	now            func() time.Time
	logger         *zap.Logger
	persistTimeout time.Duration
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithCounterStore persists counters under keyPrefix.
func WithCounterStore(s CounterStore, keyPrefix string) TrackerOption {
	return func(t *Tracker) {
		t.store = s
		t.keyPrefix = keyPrefix
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates a tracker. With a counter store attached the current
// period counters are loaded from it.
func NewTracker(ctx context.Context, provider string, limits Limits, logger *zap.Logger, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		limits:         limits,
		provider:       provider,
		now:            time.Now,
		logger:         logger,
		persistTimeout: 2 * time.Second,
	}
	for _, o := range opts {
		o(t)
	}
	now := t.now().UTC()
	t.day = truncateToDay(now)
	t.month = truncateToMonth(now)
	if t.store != nil {
		t.load(ctx, now)
	}
	return t
}

func (t *Tracker) load(ctx context.Context, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if v, err := t.store.Get(ctx, t.dailyKey(now)); err == nil {
		t.daily = v
	} else {
		t.logger.Warn("Failed to load daily token counter", zap.Error(err))
	}
	if v, err := t.store.Get(ctx, t.monthlyKey(now)); err == nil {
		t.monthly = v
	} else {
		t.logger.Warn("Failed to load monthly token counter", zap.Error(err))
	}

	t.logger.Info("Token budget loaded",
		zap.String("provider", t.provider),
		zap.Int64("daily_used", t.daily),
		zap.Int64("monthly_used", t.monthly),
	)
}

func (t *Tracker) dailyKey(now time.Time) string {
	return fmt.Sprintf("%sbudget:%s:daily:%s", t.keyPrefix, t.provider, now.Format("2006-01-02"))
}

func (t *Tracker) monthlyKey(now time.Time) string {
	return fmt.Sprintf("%sbudget:%s:monthly:%s", t.keyPrefix, t.provider, now.Format("2006-01"))
}

// Check reports whether a new request may spend tokens.
func (t *Tracker) Check(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rollover()

	dailyOver := t.limits.Daily > 0 && t.daily >= t.limits.Daily
	monthlyOver := t.limits.Monthly > 0 && t.monthly >= t.limits.Monthly
	if !dailyOver && !monthlyOver {
		return nil
	}

	if t.limits.Action == ActionReject {
		return fmt.Errorf("%s: %w", t.provider, domain.ErrEmbeddingQuotaExceeded)
	}

	t.logger.Warn("Token budget exceeded",
		zap.String("provider", t.provider),
		zap.Int64("daily_used", t.daily),
		zap.Int64("daily_limit", t.limits.Daily),
		zap.Int64("monthly_used", t.monthly),
		zap.Int64("monthly_limit", t.limits.Monthly),
	)
	return nil
}

// Record adds spent tokens.
func (t *Tracker) Record(tokens int64) {
	t.mu.Lock()
	t.rollover()
	t.daily += tokens
	t.monthly += tokens
	now := t.now().UTC()
	store := t.store
	t.mu.Unlock()

	if store == nil {
		return
	}

	// Detached from the caller so a cancelled request still persists its spend.
	ctx, cancel := context.WithTimeout(context.Background(), t.persistTimeout)
	defer cancel()

	for _, key := range []string{t.dailyKey(now), t.monthlyKey(now)} {
		if err := store.IncrBy(ctx, key, tokens); err != nil {
			t.logger.Warn("Failed to persist token counter", zap.String("key", key), zap.Error(err))
		}
	}
}

// RemainingDaily returns tokens left today, -1 when unlimited.
func (t *Tracker) RemainingDaily() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	return remaining(t.limits.Daily, t.daily)
}

// RemainingMonthly returns tokens left this month, -1 when unlimited.
func (t *Tracker) RemainingMonthly() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	return remaining(t.limits.Monthly, t.monthly)
}

func remaining(limit, used int64) int64 {
	if limit == 0 {
		return -1
	}
	return max(limit-used, 0)
}

// rollover zeroes counters when the UTC day or month changes. Caller holds mu.
func (t *Tracker) rollover() {
	now := t.now().UTC()
	if d := truncateToDay(now); d.After(t.day) {
		t.daily = 0
		t.day = d
	}
	if m := truncateToMonth(now); m.After(t.month) {
		t.monthly = 0
		t.month = m
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateToMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
