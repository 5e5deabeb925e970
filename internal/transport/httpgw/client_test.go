package httpgw_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecsearch/internal/codec"
	"github.com/kailas-cloud/vecsearch/internal/domain/schema"
	"github.com/kailas-cloud/vecsearch/internal/emulator"
	"github.com/kailas-cloud/vecsearch/internal/gateway"
	"github.com/kailas-cloud/vecsearch/internal/metrics"
	chiTransport "github.com/kailas-cloud/vecsearch/internal/transport/chi"
	"github.com/kailas-cloud/vecsearch/internal/transport/httpgw"
)

func newClient(t *testing.T, url string, cfg httpgw.Config, opts ...httpgw.Option) *httpgw.Client {
	t.Helper()
	cfg.BaseURL = url
	c, err := httpgw.New(cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := httpgw.New(httpgw.Config{}); err == nil {
		t.Fatal("expected error for empty base url")
	}
}

func TestClient_OverServer(t *testing.T) {
	emu := emulator.New(emulator.Config{})
	ts := httptest.NewServer(chiTransport.NewServer(emu, zap.NewNop()).Handler())
	defer ts.Close()

	m := metrics.NewClient()
	c := newClient(t, ts.URL, httpgw.Config{}, httpgw.WithDuration(m.GatewayDuration))
	ctx := context.Background()

	id, _ := schema.NewField("id", schema.Int64, schema.PrimaryKey())
	vec, _ := schema.NewField("vec", schema.FloatVector, schema.WithDimension(2))
	sch, err := schema.New("points", "", []schema.Field{id, vec})
	if err != nil {
		t.Fatal(err)
	}

	st, err := c.CreateCollection(ctx, &gateway.CreateCollectionRequest{Schema: codec.SchemaToWire(sch)})
	if err != nil || st.Code != 0 {
		t.Fatalf("CreateCollection: %v %+v", err, st)
	}

	data, dim := codec.Flatten([][]float32{{1, 0}, {0, 1}})
	ins, err := c.Insert(ctx, &gateway.InsertRequest{
		CollectionName: "points",
		NumRows:        2,
		FieldsData: []gateway.FieldData{
			{FieldName: "id", Type: int32(schema.Int64), Scalars: &gateway.ScalarField{LongData: []int64{1, 2}}},
			{FieldName: "vec", Type: int32(schema.FloatVector), Vectors: &gateway.VectorField{Dim: int64(dim), FloatVector: data}},
		},
	})
	if err != nil || ins.Code != 0 {
		t.Fatalf("Insert: %v %+v", err, ins)
	}
	if ins.IDs.Len() != 2 {
		t.Errorf("inserted ids: got %d, want 2", ins.IDs.Len())
	}

	desc, err := c.DescribeCollection(ctx, &gateway.CollectionRequest{CollectionName: "points"})
	if err != nil || desc.Code != 0 {
		t.Fatalf("DescribeCollection: %v %+v", err, desc)
	}
	if len(desc.Schema.Fields) != 2 {
		t.Errorf("fields: got %d, want 2", len(desc.Schema.Fields))
	}

	missing, err := c.HasCollection(ctx, &gateway.HasCollectionRequest{CollectionName: "nope"})
	if err != nil || missing.Value {
		t.Fatalf("HasCollection(nope): %v %+v", err, missing)
	}

	h, err := c.Health(ctx)
	if err != nil || !h.IsHealthy {
		t.Fatalf("Health: %v %+v", err, h)
	}

	if n := testutil.CollectAndCount(m.GatewayDuration); n == 0 {
		t.Error("expected gateway duration observations")
	}
}

func TestClient_Headers(t *testing.T) {
	var (
		mu      sync.Mutex
		headers http.Header
		path    string
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		headers, path = r.Header.Clone(), r.URL.Path
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(gateway.Status{})
	}))
	defer ts.Close()

	c := newClient(t, ts.URL+"/", httpgw.Config{APIKey: "secret"})
	if _, err := c.DropCollection(context.Background(), &gateway.CollectionRequest{CollectionName: "x"}); err != nil {
		t.Fatalf("DropCollection: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if path != "/v1/rpc/drop_collection" {
		t.Errorf("path: got %s", path)
	}
	if got := headers.Get("Authorization"); got != "Bearer secret" {
		t.Errorf("authorization: got %q", got)
	}
	if headers.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
	if got := headers.Get("Content-Type"); got != "application/json" {
		t.Errorf("content type: got %q", got)
	}
}

func TestClient_HTTPErrors(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		body    string
		wantMsg string
	}{
		{"json body", http.StatusUnauthorized, `{"code":"unauthorized","message":"invalid api key"}`, "invalid api key"},
		{"plain body", http.StatusBadGateway, "upstream down", "upstream down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			c := newClient(t, ts.URL, httpgw.Config{})
			_, err := c.Search(context.Background(), &gateway.SearchRequest{CollectionName: "x"})

			var herr *httpgw.HTTPError
			if !errors.As(err, &herr) {
				t.Fatalf("expected *HTTPError, got %v", err)
			}
			if herr.StatusCode != tt.code || herr.Body.Message != tt.wantMsg {
				t.Errorf("got %d %q, want %d %q", herr.StatusCode, herr.Body.Message, tt.code, tt.wantMsg)
			}
			if herr.Method != gateway.MethodSearch {
				t.Errorf("method: got %s", herr.Method)
			}
		})
	}
}

func TestClient_MalformedResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{broken"))
	}))
	defer ts.Close()

	c := newClient(t, ts.URL, httpgw.Config{})
	if _, err := c.Query(context.Background(), &gateway.QueryRequest{CollectionName: "x"}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestClient_RateLimit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(gateway.BoolResponse{Value: true})
	}))
	defer ts.Close()

	c := newClient(t, ts.URL, httpgw.Config{RateLimit: 0.1, Burst: 1})
	req := &gateway.HasCollectionRequest{CollectionName: "x"}

	if _, err := c.HasCollection(context.Background(), req); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.HasCollection(ctx, req); err == nil {
		t.Fatal("second call should be rejected by the rate limiter")
	}
}

func TestClient_Closed(t *testing.T) {
	c := newClient(t, "http://127.0.0.1:1", httpgw.Config{})
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := c.Flush(context.Background(), &gateway.FlushRequest{}); !errors.Is(err, httpgw.ErrClosed) {
		t.Fatalf("got %v, want ErrClosed", err)
	}
}
