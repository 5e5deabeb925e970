package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

// provider is a fake embeddings API. It answers /embeddings with reply and
// /models with an empty list, and keeps the last decoded embedding request.
type provider struct {
	t     *testing.T
	reply func(req openai.EmbeddingRequest) (int, any)

	mu     sync.Mutex
	last   openai.EmbeddingRequest
	models int
}

func (p *provider) lastRequest() openai.EmbeddingRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func (p *provider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if got := r.Header.Get("Authorization"); got != "Bearer k" {
		p.t.Errorf("Authorization = %q", got)
	}
	w.Header().Set("Content-Type", "application/json")
	p.mu.Lock()
	defer p.mu.Unlock()
	switch r.URL.Path {
	case "/embeddings":
		if err := json.NewDecoder(r.Body).Decode(&p.last); err != nil {
			p.t.Errorf("decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		code, body := p.reply(p.last)
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(body)
	case "/models":
		p.models++
		_ = json.NewEncoder(w).Encode(openai.ModelsList{})
	default:
		p.t.Errorf("unexpected path %s", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestEmbedder(t *testing.T, dims int, reply func(openai.EmbeddingRequest) (int, any)) (*Embedder, *provider) {
	t.Helper()
	p := &provider{t: t, reply: reply}
	srv := httptest.NewServer(p)
	t.Cleanup(srv.Close)
	return NewEmbedder(&Config{
		APIKey:     "k",
		BaseURL:    srv.URL,
		Model:      "m",
		Dimensions: dims,
		Provider:   "fake",
	}), p
}

// vectors answers with one vector per input, vector i filled with float32(i), in the given index order.
func vectors(dims int, order ...int) func(openai.EmbeddingRequest) (int, any) {
	return func(req openai.EmbeddingRequest) (int, any) {
		resp := openai.EmbeddingResponse{Object: "list", Model: "m"}
		inputs, _ := req.Input.([]any)
		indexes := order
		if indexes == nil {
			for i := range inputs {
				indexes = append(indexes, i)
			}
		}
		for _, idx := range indexes {
			vec := make([]float32, dims)
			for j := range vec {
				vec[j] = float32(idx)
			}
			resp.Data = append(resp.Data, openai.Embedding{Object: "embedding", Index: idx, Embedding: vec})
		}
		resp.Usage = openai.Usage{PromptTokens: 3 * len(inputs), TotalTokens: 3 * len(inputs)}
		return http.StatusOK, resp
	}
}

func TestEmbed(t *testing.T) {
	e, p := newTestEmbedder(t, 4, vectors(4))
	success := testutil.ToFloat64(metrics.EmbeddingRequestsTotal.WithLabelValues("fake", "m", statusSuccess))
	tokens := testutil.ToFloat64(metrics.EmbeddingTokensTotal.WithLabelValues("fake", "m", tokenTypeTotal))

	res, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Embedding) != 4 || res.PromptTokens != 3 || res.TotalTokens != 3 {
		t.Fatalf("result = %+v", res)
	}
	if req := p.lastRequest(); req.Model != "m" || req.Dimensions != 4 || req.EncodingFormat != openai.EmbeddingEncodingFormatFloat {
		t.Fatalf("request = %+v", req)
	}
	if d := testutil.ToFloat64(metrics.EmbeddingRequestsTotal.WithLabelValues("fake", "m", statusSuccess)) - success; d != 1 {
		t.Fatalf("success delta = %v", d)
	}
	if d := testutil.ToFloat64(metrics.EmbeddingTokensTotal.WithLabelValues("fake", "m", tokenTypeTotal)) - tokens; d != 3 {
		t.Fatalf("token delta = %v", d)
	}
}

func TestEmbed_OmitsDimensionsWhenUnset(t *testing.T) {
	e, p := newTestEmbedder(t, 0, vectors(7))
	res, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if sent := p.lastRequest().Dimensions; sent != 0 || len(res.Embedding) != 7 {
		t.Fatalf("dimensions sent %d, got vector of %d", sent, len(res.Embedding))
	}
}

func TestBatchEmbed_RestoresInputOrder(t *testing.T) {
	e, _ := newTestEmbedder(t, 2, vectors(2, 2, 0, 1))
	res, err := e.BatchEmbed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	for i, vec := range res.Embeddings {
		if !slices.Equal(vec, []float32{float32(i), float32(i)}) {
			t.Fatalf("embedding %d = %v", i, vec)
		}
	}
	if res.TotalTokens != 9 {
		t.Fatalf("TotalTokens = %d", res.TotalTokens)
	}
}

func TestBatchEmbed_EmptySkipsProvider(t *testing.T) {
	e, _ := newTestEmbedder(t, 2, func(openai.EmbeddingRequest) (int, any) {
		t.Error("provider called for empty batch")
		return http.StatusInternalServerError, nil
	})
	res, err := e.BatchEmbed(context.Background(), nil)
	if err != nil || len(res.Embeddings) != 0 {
		t.Fatalf("res = %+v, err = %v", res, err)
	}
}

func TestCreate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		dims    int
		texts   []string
		reply   func(openai.EmbeddingRequest) (int, any)
		errType string
		msg     string
	}{
		{
			name:  "openai error envelope",
			texts: []string{"x"},
			reply: func(openai.EmbeddingRequest) (int, any) {
				return http.StatusTooManyRequests, map[string]any{
					"error": map[string]any{"message": "rate limit exceeded", "type": "rate_limit_error"},
				}
			},
			errType: errAPI,
			msg:     "rate limit exceeded",
		},
		{
			name:  "detail body",
			texts: []string{"x"},
			reply: func(openai.EmbeddingRequest) (int, any) {
				return http.StatusBadRequest, map[string]string{"detail": "model m not found"}
			},
			errType: errAPI,
			msg:     "model m not found",
		},
		{
			name:  "empty data",
			texts: []string{"x"},
			reply: func(openai.EmbeddingRequest) (int, any) {
				return http.StatusOK, openai.EmbeddingResponse{Object: "list"}
			},
			errType: errEmpty,
			msg:     "empty embedding response",
		},
		{
			name:    "fewer vectors than texts",
			texts:   []string{"a", "b"},
			reply:   vectors(2, 0),
			errType: errCount,
			msg:     "got 1 embeddings for 2 texts",
		},
		{
			name:    "wrong dimension",
			dims:    3,
			texts:   []string{"a", "b"},
			reply:   vectors(2),
			errType: errDimension,
			msg:     "has 2 dimensions, want 3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dims := tt.dims
			if dims == 0 {
				dims = 2
			}
			e, _ := newTestEmbedder(t, dims, tt.reply)
			errs := metrics.EmbeddingErrorsTotal.WithLabelValues("fake", "m", tt.errType)
			before := testutil.ToFloat64(errs)

			_, err := e.BatchEmbed(context.Background(), tt.texts)
			if !errors.Is(err, domain.ErrEmbeddingProviderError) {
				t.Fatalf("err = %v, want ErrEmbeddingProviderError", err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Fatalf("err = %q, want it to mention %q", err, tt.msg)
			}
			if d := testutil.ToFloat64(errs) - before; d != 1 {
				t.Fatalf("%s delta = %v", tt.errType, d)
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	e, p := newTestEmbedder(t, 2, vectors(2))
	if err := e.HealthCheck(context.Background()); err != nil {
		t.Fatal(err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.models != 1 {
		t.Fatalf("/models calls = %d", p.models)
	}
}

func TestExtractDetail(t *testing.T) {
	tests := map[string]string{
		`{"detail":"bad input"}`: "bad input",
		`{"other":"x"}`:          "",
		`not json`:               "",
	}
	for body, want := range tests {
		if got := extractDetail([]byte(body)); got != want {
			t.Errorf("extractDetail(%s) = %q, want %q", body, got, want)
		}
	}
}
