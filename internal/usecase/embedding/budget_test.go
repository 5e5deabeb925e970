package embedding

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecsearch/internal/domain"
)

type memCounters struct {
	mu   sync.Mutex
	vals map[string]int64
	err  error
}

func newMemCounters() *memCounters { return &memCounters{vals: map[string]int64{}} }

func (m *memCounters) IncrBy(_ context.Context, key string, val int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.vals[key] += val
	return nil
}

func (m *memCounters) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return m.vals[key], nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestTracker_Check(t *testing.T) {
	tests := []struct {
		name    string
		limits  Limits
		spend   int64
		wantErr bool
	}{
		{"under daily", Limits{Daily: 100, Action: ActionReject}, 99, false},
		{"daily reached reject", Limits{Daily: 100, Action: ActionReject}, 100, true},
		{"daily reached warn", Limits{Daily: 100, Action: ActionWarn}, 200, false},
		{"monthly reached reject", Limits{Monthly: 500, Action: ActionReject}, 500, true},
		{"unlimited", Limits{Action: ActionReject}, 1 << 40, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(context.Background(), "test", tt.limits, zap.NewNop())
			tr.Record(tt.spend)

			err := tr.Check(context.Background())
			if tt.wantErr != errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
				t.Fatalf("Check() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTracker_Remaining(t *testing.T) {
	tr := NewTracker(context.Background(), "test", Limits{Daily: 1000, Monthly: 10000}, zap.NewNop())
	tr.Record(300)

	if got := tr.RemainingDaily(); got != 700 {
		t.Errorf("RemainingDaily() = %d, want 700", got)
	}
	if got := tr.RemainingMonthly(); got != 9700 {
		t.Errorf("RemainingMonthly() = %d, want 9700", got)
	}

	tr.Record(5000)
	if got := tr.RemainingDaily(); got != 0 {
		t.Errorf("RemainingDaily() after overspend = %d, want 0", got)
	}

	unlimited := NewTracker(context.Background(), "test", Limits{}, zap.NewNop())
	if got := unlimited.RemainingDaily(); got != -1 {
		t.Errorf("unlimited RemainingDaily() = %d, want -1", got)
	}
}

func TestTracker_Rollover(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC)}
	tr := NewTracker(context.Background(), "test",
		Limits{Daily: 100, Monthly: 1000, Action: ActionReject}, zap.NewNop(), WithClock(clock.Now))

	tr.Record(100)
	if err := tr.Check(context.Background()); err == nil {
		t.Fatal("expected daily limit to be reached")
	}

	clock.t = clock.t.Add(2 * time.Hour)
	if err := tr.Check(context.Background()); err != nil {
		t.Fatalf("Check() after midnight = %v, want nil", err)
	}
	if got := tr.RemainingMonthly(); got != 1000 {
		t.Errorf("RemainingMonthly() in new month = %d, want 1000", got)
	}
}

func TestTracker_PersistsAndLoads(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	store := newMemCounters()
	limits := Limits{Daily: 1000, Monthly: 5000}

	first := NewTracker(context.Background(), "openai", limits, zap.NewNop(),
		WithCounterStore(store, "vs:"), WithClock(clock.Now))
	first.Record(250)

	if got := store.vals["vs:budget:openai:daily:2026-03-14"]; got != 250 {
		t.Errorf("persisted daily = %d, want 250", got)
	}
	if got := store.vals["vs:budget:openai:monthly:2026-03"]; got != 250 {
		t.Errorf("persisted monthly = %d, want 250", got)
	}

	second := NewTracker(context.Background(), "openai", limits, zap.NewNop(),
		WithCounterStore(store, "vs:"), WithClock(clock.Now))
	if got := second.RemainingDaily(); got != 750 {
		t.Errorf("reloaded RemainingDaily() = %d, want 750", got)
	}
}

func TestTracker_StoreFailureKeepsCounting(t *testing.T) {
	store := newMemCounters()
	store.err = errors.New("down")

	tr := NewTracker(context.Background(), "test", Limits{Daily: 10}, zap.NewNop(),
		WithCounterStore(store, ""))
	tr.Record(4)

	if got := tr.RemainingDaily(); got != 6 {
		t.Errorf("RemainingDaily() = %d, want 6", got)
	}
}

func TestTracker_ConcurrentRecord(t *testing.T) {
	tr := NewTracker(context.Background(), "test", Limits{Daily: 1_000_000}, zap.NewNop())

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				tr.Record(1)
			}
		}()
	}
	wg.Wait()

	if got := tr.RemainingDaily(); got != 1_000_000-5000 {
		t.Errorf("RemainingDaily() = %d, want %d", got, 1_000_000-5000)
	}
}
