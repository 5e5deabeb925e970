package collection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/domain/param"
	"github.com/kailas-cloud/vecsearch/internal/domain/schema"
	"github.com/kailas-cloud/vecsearch/internal/domain/status"
	"github.com/kailas-cloud/vecsearch/internal/gateway"
	"github.com/kailas-cloud/vecsearch/internal/gateway/gatewaytest"
	"github.com/kailas-cloud/vecsearch/internal/poller"
	"github.com/kailas-cloud/vecsearch/internal/retry"
	"github.com/kailas-cloud/vecsearch/internal/usecase/rpc"
)

func testEnv() *rpc.Env {
	env := rpc.NewEnv()
	env.Exec = retry.NewExecutor(retry.Policy{MaxAttempts: 2, Interval: time.Millisecond}, nil, nil)
	env.Poll = poller.Policy{Interval: time.Millisecond, Timeout: 200 * time.Millisecond}
	return env
}

func TestHas(t *testing.T) {
	fake := &gatewaytest.Fake{
		HasCollectionFn: func(_ context.Context, req *gateway.HasCollectionRequest) (*gateway.BoolResponse, error) {
			return &gateway.BoolResponse{Value: req.CollectionName == "books"}, nil
		},
	}
	svc := New(fake, testEnv())

	res := svc.Has(context.Background(), param.Collection{Name: "books"})
	if !res.OK() || !res.Data() {
		t.Fatalf("Has(books) = %v %s", res.Data(), res.Message())
	}
	if res := svc.Has(context.Background(), param.Collection{Name: "films"}); res.Data() {
		t.Error("Has(films) = true")
	}
}

func TestInvalidParamsNeverCallGateway(t *testing.T) {
	fake := &gatewaytest.Fake{}
	svc := New(fake, testEnv())
	ctx := context.Background()

	results := []error{
		svc.Has(ctx, param.Collection{}).Err(),
		svc.Drop(ctx, param.Collection{Name: "  "}).Err(),
		svc.Describe(ctx, param.Collection{}).Err(),
		svc.Load(ctx, param.LoadCollection{Collection: "c", Replicas: -1}).Err(),
		svc.Show(ctx, param.ShowCollections{Kind: 7}).Err(),
		svc.Create(ctx, param.CreateCollection{}).Err(),
	}
	for i, err := range results {
		if !errors.Is(err, domain.ErrInvalidParam) {
			t.Errorf("call %d: error %v is not ErrInvalidParam", i, err)
		}
	}
	for _, m := range []string{"HasCollection", "DropCollection", "DescribeCollection", "LoadCollection", "ShowCollections", "CreateCollection"} {
		if n := fake.Calls(m); n != 0 {
			t.Errorf("%s called %d times", m, n)
		}
	}
}

func TestCreate_SendsSchema(t *testing.T) {
	var got *gateway.CreateCollectionRequest
	fake := &gatewaytest.Fake{
		CreateCollectionFn: func(_ context.Context, req *gateway.CreateCollectionRequest) (*gateway.Status, error) {
			got = req
			return &gateway.Status{}, nil
		},
	}
	id, _ := schema.NewField("id", schema.Int64, schema.PrimaryKey())
	vec, _ := schema.NewField("vec", schema.FloatVector, schema.WithDimension(4))
	sch, err := schema.New("books", "", []schema.Field{id, vec})
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}

	res := New(fake, testEnv()).Create(context.Background(), param.CreateCollection{Schema: sch, ShardsNum: 3})
	if !res.OK() {
		t.Fatalf("Create: %s", res.Message())
	}
	if got.Schema.Name != "books" || len(got.Schema.Fields) != 2 || got.ShardsNum != 3 {
		t.Errorf("unexpected request: %+v", got)
	}
}

func TestDescribe_RetriesServerFailure(t *testing.T) {
	fake := &gatewaytest.Fake{
		DescribeCollectionFn: func(context.Context, *gateway.CollectionRequest) (*gateway.DescribeCollectionResponse, error) {
			return &gateway.DescribeCollectionResponse{
				Status: gateway.Status{Code: int32(status.CollectionNotExists), Reason: "can't find collection: books"},
			}, nil
		},
	}
	res := New(fake, testEnv()).Describe(context.Background(), param.Collection{Name: "books"})
	if res.OK() {
		t.Fatal("expected failure")
	}
	if fake.Calls("DescribeCollection") != 2 {
		t.Errorf("calls = %d, want 2", fake.Calls("DescribeCollection"))
	}
	if res.Code() != status.CollectionNotExists {
		t.Errorf("Code() = %s", res.Code())
	}
}

func loadFake(percents ...int64) *gatewaytest.Fake {
	i := 0
	return &gatewaytest.Fake{
		ShowCollectionsFn: func(_ context.Context, req *gateway.ShowCollectionsRequest) (*gateway.ShowCollectionsResponse, error) {
			pct := percents[min(i, len(percents)-1)]
			i++
			return &gateway.ShowCollectionsResponse{
				CollectionNames:      []string{"other", req.CollectionNames[0]},
				CollectionIDs:        []int64{1, 2},
				CreatedUTCTimestamps: []int64{0, 0},
				InMemoryPercentages:  []int64{100, pct},
			}, nil
		},
	}
}

func TestLoad_SyncWait(t *testing.T) {
	tests := []struct {
		name        string
		percents    []int64
		wait        bool
		wantShows   int
		wantWarning bool
	}{
		{"async", []int64{0}, false, 0, false},
		{"completes", []int64{10, 60, 100}, true, 3, false},
		{"soft timeout", []int64{10}, true, -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := loadFake(tt.percents...)
			svc := New(fake, testEnv())
			p, err := param.NewLoadCollection("books", 0, param.Sync{Wait: tt.wait, Timeout: 20 * time.Millisecond})
			if err != nil {
				t.Fatalf("NewLoadCollection: %v", err)
			}

			res := svc.Load(context.Background(), p)
			if !res.OK() {
				t.Fatalf("Load: %s", res.Message())
			}
			if (res.Warning() != "") != tt.wantWarning {
				t.Errorf("Warning() = %q", res.Warning())
			}
			if tt.wantShows >= 0 && fake.Calls("ShowCollections") != tt.wantShows {
				t.Errorf("ShowCollections calls = %d, want %d", fake.Calls("ShowCollections"), tt.wantShows)
			}
		})
	}
}

func TestLoad_FailedStartSkipsWait(t *testing.T) {
	fake := loadFake(100)
	fake.LoadCollectionFn = func(context.Context, *gateway.LoadCollectionRequest) (*gateway.Status, error) {
		return nil, errors.New("connection reset")
	}
	p, _ := param.NewLoadCollection("books", 1, param.Sync{Wait: true})

	res := New(fake, testEnv()).Load(context.Background(), p)
	if !errors.Is(res.Err(), domain.ErrTransport) {
		t.Fatalf("error %v is not ErrTransport", res.Err())
	}
	if fake.Calls("LoadCollection") != 1 || fake.Calls("ShowCollections") != 0 {
		t.Errorf("transport failures must not be retried or polled")
	}
}

func TestShow_MismatchedLists(t *testing.T) {
	fake := &gatewaytest.Fake{
		ShowCollectionsFn: func(context.Context, *gateway.ShowCollectionsRequest) (*gateway.ShowCollectionsResponse, error) {
			return &gateway.ShowCollectionsResponse{CollectionNames: []string{"a", "b"}, InMemoryPercentages: []int64{100}}, nil
		},
	}
	res := New(fake, testEnv()).Show(context.Background(), param.ShowCollections{})
	if !errors.Is(res.Err(), domain.ErrSchemaMismatch) {
		t.Fatalf("error %v is not ErrSchemaMismatch", res.Err())
	}
	if fake.Calls("ShowCollections") != 1 {
		t.Errorf("schema mismatch must not be retried")
	}
}

func TestDropAndRelease(t *testing.T) {
	fake := &gatewaytest.Fake{}
	svc := New(fake, testEnv())
	ctx := context.Background()
	if res := svc.Drop(ctx, param.Collection{Name: "books"}); !res.OK() {
		t.Errorf("Drop: %s", res.Message())
	}
	if res := svc.Release(ctx, param.Collection{Name: "books"}); !res.OK() {
		t.Errorf("Release: %s", res.Message())
	}
}
