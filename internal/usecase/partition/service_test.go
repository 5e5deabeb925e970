package partition

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/domain/param"
	"github.com/kailas-cloud/vecsearch/internal/gateway"
	"github.com/kailas-cloud/vecsearch/internal/gateway/gatewaytest"
	"github.com/kailas-cloud/vecsearch/internal/poller"
	"github.com/kailas-cloud/vecsearch/internal/retry"
	"github.com/kailas-cloud/vecsearch/internal/usecase/rpc"
)

func testEnv(missing poller.MissingPartition) *rpc.Env {
	env := rpc.NewEnv()
	env.Exec = retry.NewExecutor(retry.Policy{MaxAttempts: 1}, nil, nil)
	env.Poll = poller.Policy{Interval: time.Millisecond, Timeout: 30 * time.Millisecond}
	env.Missing = missing
	return env
}

// showSequence answers ShowPartitions with one snapshot per call, repeating
// the last one.
func showSequence(snapshots ...map[string]int64) *gatewaytest.Fake {
	i := 0
	return &gatewaytest.Fake{
		ShowPartitionsFn: func(context.Context, *gateway.ShowPartitionsRequest) (*gateway.ShowPartitionsResponse, error) {
			snap := snapshots[min(i, len(snapshots)-1)]
			i++
			resp := &gateway.ShowPartitionsResponse{}
			for _, name := range []string{"_default", "p1", "p2"} {
				pct, ok := snap[name]
				if !ok {
					continue
				}
				resp.PartitionNames = append(resp.PartitionNames, name)
				resp.InMemoryPercentages = append(resp.InMemoryPercentages, pct)
			}
			return resp, nil
		},
	}
}

func TestLoad_Wait(t *testing.T) {
	tests := []struct {
		name        string
		missing     poller.MissingPartition
		snapshots   []map[string]int64
		wantOK      bool
		wantWarning bool
		wantShows   int
	}{
		{
			name:    "all loaded",
			missing: poller.Continue,
			snapshots: []map[string]int64{
				{"_default": 0, "p1": 50, "p2": 0},
				{"_default": 0, "p1": 100, "p2": 100},
			},
			wantOK: true, wantShows: 2,
		},
		{
			name:    "missing partition keeps polling",
			missing: poller.Continue,
			snapshots: []map[string]int64{
				{"p1": 100},
				{"p1": 100, "p2": 100},
			},
			wantOK: true, wantShows: 2,
		},
		{
			name:      "missing partition aborts",
			missing:   poller.Abort,
			snapshots: []map[string]int64{{"p1": 100}},
			wantOK:    false, wantShows: 1,
		},
		{
			name:      "never loads",
			missing:   poller.Continue,
			snapshots: []map[string]int64{{"p1": 100, "p2": 40}},
			wantOK:    true, wantWarning: true, wantShows: -1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := showSequence(tt.snapshots...)
			p, err := param.NewLoadPartitions("books", []string{"p1", "p2"}, 0, param.Sync{Wait: true})
			if err != nil {
				t.Fatalf("NewLoadPartitions: %v", err)
			}

			res := New(fake, testEnv(tt.missing)).Load(context.Background(), p)
			if res.OK() != tt.wantOK {
				t.Fatalf("OK() = %v, want %v (%s)", res.OK(), tt.wantOK, res.Message())
			}
			if (res.Warning() != "") != tt.wantWarning {
				t.Errorf("Warning() = %q", res.Warning())
			}
			if tt.wantShows >= 0 && fake.Calls("ShowPartitions") != tt.wantShows {
				t.Errorf("ShowPartitions calls = %d, want %d", fake.Calls("ShowPartitions"), tt.wantShows)
			}
			if !tt.wantOK && !errors.Is(res.Err(), domain.ErrSchemaMismatch) {
				t.Errorf("error %v is not ErrSchemaMismatch", res.Err())
			}
		})
	}
}

func TestOperations_Requests(t *testing.T) {
	var seen []string
	fake := &gatewaytest.Fake{
		CreatePartitionFn: func(_ context.Context, req *gateway.PartitionRequest) (*gateway.Status, error) {
			seen = append(seen, "create:"+req.CollectionName+"/"+req.PartitionName)
			return &gateway.Status{}, nil
		},
		HasPartitionFn: func(_ context.Context, req *gateway.PartitionRequest) (*gateway.BoolResponse, error) {
			return &gateway.BoolResponse{Value: req.PartitionName == "p1"}, nil
		},
		ReleasePartitionsFn: func(_ context.Context, req *gateway.ReleasePartitionsRequest) (*gateway.Status, error) {
			seen = append(seen, "release:"+req.PartitionNames[0])
			return &gateway.Status{}, nil
		},
	}
	svc := New(fake, testEnv(poller.Continue))
	ctx := context.Background()

	if res := svc.Create(ctx, param.Partition{Collection: "books", Partition: "p1"}); !res.OK() {
		t.Fatalf("Create: %s", res.Message())
	}
	if res := svc.Has(ctx, param.Partition{Collection: "books", Partition: "p1"}); !res.Data() {
		t.Error("Has(p1) = false")
	}
	if res := svc.Drop(ctx, param.Partition{Collection: "books", Partition: "p1"}); !res.OK() {
		t.Errorf("Drop: %s", res.Message())
	}
	if res := svc.Release(ctx, param.ReleasePartitions{Collection: "books", Partitions: []string{"p1"}}); !res.OK() {
		t.Errorf("Release: %s", res.Message())
	}
	if len(seen) != 2 || seen[0] != "create:books/p1" || seen[1] != "release:p1" {
		t.Errorf("requests = %v", seen)
	}
}

func TestInvalidParams(t *testing.T) {
	fake := &gatewaytest.Fake{}
	svc := New(fake, testEnv(poller.Continue))
	ctx := context.Background()

	errs := []error{
		svc.Create(ctx, param.Partition{Collection: "books"}).Err(),
		svc.Load(ctx, param.LoadPartitions{Collection: "books"}).Err(),
		svc.Release(ctx, param.ReleasePartitions{Collection: "books"}).Err(),
		svc.Show(ctx, param.ShowPartitions{}).Err(),
	}
	for i, err := range errs {
		if !errors.Is(err, domain.ErrInvalidParam) {
			t.Errorf("call %d: error %v is not ErrInvalidParam", i, err)
		}
	}
}
