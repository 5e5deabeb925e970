package index

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/vecsearch/internal/codec"
	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/domain/param"
	"github.com/kailas-cloud/vecsearch/internal/domain/schema"
	"github.com/kailas-cloud/vecsearch/internal/domain/status"
	"github.com/kailas-cloud/vecsearch/internal/emulator"
	"github.com/kailas-cloud/vecsearch/internal/gateway"
	"github.com/kailas-cloud/vecsearch/internal/gateway/gatewaytest"
	"github.com/kailas-cloud/vecsearch/internal/poller"
	"github.com/kailas-cloud/vecsearch/internal/retry"
	"github.com/kailas-cloud/vecsearch/internal/usecase/rpc"
)

func testEnv() *rpc.Env {
	env := rpc.NewEnv()
	env.Exec = retry.NewExecutor(retry.Policy{MaxAttempts: 1}, nil, nil)
	env.Poll = poller.Policy{Interval: time.Millisecond, Timeout: 50 * time.Millisecond}
	return env
}

func booksSchema(t *testing.T) gateway.CollectionSchema {
	t.Helper()
	id, _ := schema.NewField("id", schema.Int64, schema.PrimaryKey())
	tag, _ := schema.NewField("tag", schema.String, schema.WithMaxLength(8))
	vec, _ := schema.NewField("vec", schema.FloatVector, schema.WithDimension(4))
	sch, err := schema.New("books", "", []schema.Field{id, tag, vec})
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	return codec.SchemaToWire(sch)
}

func describeFake(t *testing.T, states ...int32) *gatewaytest.Fake {
	sch := booksSchema(t)
	i := 0
	return &gatewaytest.Fake{
		DescribeCollectionFn: func(context.Context, *gateway.CollectionRequest) (*gateway.DescribeCollectionResponse, error) {
			return &gateway.DescribeCollectionResponse{Schema: sch}, nil
		},
		DescribeIndexFn: func(context.Context, *gateway.IndexRequest) (*gateway.DescribeIndexResponse, error) {
			st := states[min(i, len(states)-1)]
			i++
			d := gateway.IndexDescription{IndexName: schema.DefaultIndexName, FieldName: "vec", State: st}
			if st == gateway.IndexStateFailed {
				d.IndexStateFailReason = "out of memory"
			}
			other := gateway.IndexDescription{IndexName: "other", FieldName: "tag", State: gateway.IndexStateFailed}
			return &gateway.DescribeIndexResponse{IndexDescriptions: []gateway.IndexDescription{other, d}}, nil
		},
	}
}

func createParams(t *testing.T, field string, wait bool) param.CreateIndex {
	t.Helper()
	p, err := param.NewCreateIndex(param.CreateIndex{
		Collection:  "books",
		Field:       field,
		IndexType:   schema.IndexIVFFlat,
		Metric:      schema.MetricL2,
		ExtraParams: `{"nlist": 16}`,
		Sync:        param.Sync{Wait: wait},
	})
	if err != nil {
		t.Fatalf("NewCreateIndex: %v", err)
	}
	return p
}

func TestCreate_Wait(t *testing.T) {
	tests := []struct {
		name        string
		states      []int32
		wantOK      bool
		wantWarning bool
		wantCode    status.Code
	}{
		{"finished", []int32{gateway.IndexStateUnissued, gateway.IndexStateInProgress, gateway.IndexStateFinished}, true, false, status.Success},
		{"failed", []int32{gateway.IndexStateInProgress, gateway.IndexStateFailed}, false, false, status.BuildIndexError},
		{"still building", []int32{gateway.IndexStateInProgress}, true, true, status.Success},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := describeFake(t, tt.states...)
			res := New(fake, testEnv()).Create(context.Background(), createParams(t, "vec", true))

			if res.OK() != tt.wantOK {
				t.Fatalf("OK() = %v, want %v (%s)", res.OK(), tt.wantOK, res.Message())
			}
			if (res.Warning() != "") != tt.wantWarning {
				t.Errorf("Warning() = %q", res.Warning())
			}
			if res.Code() != tt.wantCode {
				t.Errorf("Code() = %s, want %s", res.Code(), tt.wantCode)
			}
			if tt.wantCode == status.BuildIndexError && !strings.Contains(res.Message(), "out of memory") {
				t.Errorf("Message() = %q, want server fail reason", res.Message())
			}
		})
	}
}

func TestCreate_FieldCheckedAgainstSchema(t *testing.T) {
	fake := describeFake(t, gateway.IndexStateFinished)
	svc := New(fake, testEnv())

	for _, field := range []string{"tag", "missing"} {
		res := svc.Create(context.Background(), createParams(t, field, false))
		if !errors.Is(res.Err(), domain.ErrInvalidParam) {
			t.Errorf("field %s: error %v is not ErrInvalidParam", field, res.Err())
		}
	}
	if fake.Calls("CreateIndex") != 0 {
		t.Errorf("CreateIndex called %d times", fake.Calls("CreateIndex"))
	}
}

func TestCreate_SendsParams(t *testing.T) {
	fake := describeFake(t, gateway.IndexStateFinished)
	var got *gateway.CreateIndexRequest
	fake.CreateIndexFn = func(_ context.Context, req *gateway.CreateIndexRequest) (*gateway.Status, error) {
		got = req
		return &gateway.Status{}, nil
	}

	res := New(fake, testEnv()).Create(context.Background(), createParams(t, "vec", false))
	if !res.OK() {
		t.Fatalf("Create: %s", res.Message())
	}
	kv := codec.KVToMap(got.ExtraParams)
	if kv[gateway.KeyIndexType] != "IVF_FLAT" || kv[gateway.KeyMetricType] != "L2" || kv[gateway.KeyParams] != `{"nlist":16}` {
		t.Errorf("extra params = %v", kv)
	}
	if got.IndexName != schema.DefaultIndexName {
		t.Errorf("index name = %q", got.IndexName)
	}
	if fake.Calls("DescribeIndex") != 0 {
		t.Error("async create must not poll")
	}
}

func TestCreate_MissingCollection(t *testing.T) {
	fake := &gatewaytest.Fake{
		DescribeCollectionFn: func(context.Context, *gateway.CollectionRequest) (*gateway.DescribeCollectionResponse, error) {
			return &gateway.DescribeCollectionResponse{Status: gateway.Status{Code: int32(status.CollectionNotExists)}}, nil
		},
	}
	res := New(fake, testEnv()).Create(context.Background(), createParams(t, "vec", false))
	if res.Code() != status.CollectionNotExists {
		t.Fatalf("Code() = %s", res.Code())
	}
	if !strings.Contains(res.Message(), "error code: 4") {
		t.Errorf("Message() = %q", res.Message())
	}
}

func TestLifecycle_Emulator(t *testing.T) {
	srv := emulator.New(emulator.Config{IndexSteps: 2})
	ctx := context.Background()
	st, _ := srv.CreateCollection(ctx, &gateway.CreateCollectionRequest{Schema: booksSchema(t)})
	if st.Code != 0 {
		t.Fatalf("CreateCollection: %+v", st)
	}
	svc := New(srv, testEnv())

	p := createParams(t, "vec", true)
	p.ExtraParams = ""
	if res := svc.Create(ctx, p); !res.OK() || res.Warning() != "" {
		t.Fatalf("Create: %s %s", res.Message(), res.Warning())
	}

	desc := svc.Describe(ctx, param.Index{Collection: "books", Field: "vec"})
	if !desc.OK() || len(desc.Data()) != 1 || desc.Data()[0].State.String() != "Finished" {
		t.Fatalf("Describe: %+v %s", desc.Data(), desc.Message())
	}

	if res := svc.Drop(ctx, param.Index{Collection: "books", Field: "vec"}); !res.OK() {
		t.Fatalf("Drop: %s", res.Message())
	}
	if res := svc.Describe(ctx, param.Index{Collection: "books", Field: "vec"}); res.Code() != status.IndexNotExist {
		t.Errorf("Describe after drop code = %s", res.Code())
	}
}
