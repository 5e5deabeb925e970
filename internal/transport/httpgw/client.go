// Package httpgw implements gateway.Gateway over HTTP/JSON. Every call is a
// POST to /v1/rpc/{method} carrying the wire request as the body.
package httpgw

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/vecsearch/internal/gateway"
)

// Compile-time check: Client implements gateway.Gateway.
var _ gateway.Gateway = (*Client)(nil)

// ErrClosed is returned by calls made after Close.
var ErrClosed = errors.New("httpgw: client closed")

const defaultTimeout = 30 * time.Second

// RPCPath is the route prefix shared with the server.
const RPCPath = "/v1/rpc/"

// Config holds connection settings.
type Config struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	RateLimit float64 // calls per second, 0 = unlimited
	Burst     int
}

// ErrorBody is the JSON body of a non-200 response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HTTPError is a non-200 reply from the server.
type HTTPError struct {
	Method     string
	StatusCode int
	Body       ErrorBody
}

func (e *HTTPError) Error() string {
	msg := e.Body.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("httpgw: %s: http %d: %s", e.Method, e.StatusCode, msg)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithDuration records per-call latency labelled by method and outcome.
func WithDuration(h *prometheus.HistogramVec) Option {
	return func(c *Client) { c.duration = h }
}

// Client is an HTTP gateway. Safe for concurrent use.
type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	limiter  *rate.Limiter
	logger   *zap.Logger
	duration *prometheus.HistogramVec

	mu     sync.RWMutex
	closed bool
}

// New creates an HTTP gateway client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("httpgw: base url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// call posts req to method and decodes the reply into a new Resp.
func call[Resp any](ctx context.Context, c *Client, method string, req any) (resp *Resp, err error) {
	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	start := time.Now()
	defer func() {
		if c.duration == nil {
			return
		}
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		c.duration.WithLabelValues(method, outcome).Observe(time.Since(start).Seconds())
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("httpgw: %s: rate limit: %w", method, err)
	}

	body := []byte("{}")
	if req != nil {
		body, err = json.Marshal(req)
		if err != nil {
			return nil, fmt.Errorf("httpgw: %s: marshal request: %w", method, err)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+RPCPath+method, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("httpgw: %s: build request: %w", method, err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("httpgw: %s: %w", method, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	c.logger.Debug("gateway call",
		zap.String("method", method),
		zap.String("request_id", requestID),
		zap.Int("status", httpResp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if httpResp.StatusCode != http.StatusOK {
		herr := &HTTPError{Method: method, StatusCode: httpResp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(httpResp.Body, 64<<10))
		if json.Unmarshal(raw, &herr.Body) != nil {
			herr.Body.Message = strings.TrimSpace(string(raw))
		}
		return nil, herr
	}

	resp = new(Resp)
	if err := json.NewDecoder(httpResp.Body).Decode(resp); err != nil {
		return nil, fmt.Errorf("httpgw: %s: decode response: %w", method, err)
	}
	return resp, nil
}

// HasCollection implements gateway.Gateway.
func (c *Client) HasCollection(ctx context.Context, req *gateway.HasCollectionRequest) (*gateway.BoolResponse, error) {
	return call[gateway.BoolResponse](ctx, c, gateway.MethodHasCollection, req)
}

// CreateCollection implements gateway.Gateway.
func (c *Client) CreateCollection(ctx context.Context, req *gateway.CreateCollectionRequest) (*gateway.Status, error) {
	return call[gateway.Status](ctx, c, gateway.MethodCreateCollection, req)
}

// DropCollection implements gateway.Gateway.
func (c *Client) DropCollection(ctx context.Context, req *gateway.CollectionRequest) (*gateway.Status, error) {
	return call[gateway.Status](ctx, c, gateway.MethodDropCollection, req)
}

// DescribeCollection implements gateway.Gateway.
func (c *Client) DescribeCollection(
	ctx context.Context, req *gateway.CollectionRequest,
) (*gateway.DescribeCollectionResponse, error) {
	return call[gateway.DescribeCollectionResponse](ctx, c, gateway.MethodDescribeCollection, req)
}

// LoadCollection implements gateway.Gateway.
func (c *Client) LoadCollection(ctx context.Context, req *gateway.LoadCollectionRequest) (*gateway.Status, error) {
	return call[gateway.Status](ctx, c, gateway.MethodLoadCollection, req)
}

// ReleaseCollection implements gateway.Gateway.
func (c *Client) ReleaseCollection(ctx context.Context, req *gateway.CollectionRequest) (*gateway.Status, error) {
	return call[gateway.Status](ctx, c, gateway.MethodReleaseCollection, req)
}

// ShowCollections implements gateway.Gateway.
func (c *Client) ShowCollections(
	ctx context.Context, req *gateway.ShowCollectionsRequest,
) (*gateway.ShowCollectionsResponse, error) {
	return call[gateway.ShowCollectionsResponse](ctx, c, gateway.MethodShowCollections, req)
}

// CreatePartition implements gateway.Gateway.
func (c *Client) CreatePartition(ctx context.Context, req *gateway.PartitionRequest) (*gateway.Status, error) {
	return call[gateway.Status](ctx, c, gateway.MethodCreatePartition, req)
}

// DropPartition implements gateway.Gateway.
func (c *Client) DropPartition(ctx context.Context, req *gateway.PartitionRequest) (*gateway.Status, error) {
	return call[gateway.Status](ctx, c, gateway.MethodDropPartition, req)
}

// HasPartition implements gateway.Gateway.
func (c *Client) HasPartition(ctx context.Context, req *gateway.PartitionRequest) (*gateway.BoolResponse, error) {
	return call[gateway.BoolResponse](ctx, c, gateway.MethodHasPartition, req)
}

// ShowPartitions implements gateway.Gateway.
func (c *Client) ShowPartitions(
	ctx context.Context, req *gateway.ShowPartitionsRequest,
) (*gateway.ShowPartitionsResponse, error) {
	return call[gateway.ShowPartitionsResponse](ctx, c, gateway.MethodShowPartitions, req)
}

// LoadPartitions implements gateway.Gateway.
func (c *Client) LoadPartitions(ctx context.Context, req *gateway.LoadPartitionsRequest) (*gateway.Status, error) {
	return call[gateway.Status](ctx, c, gateway.MethodLoadPartitions, req)
}

// ReleasePartitions implements gateway.Gateway.
func (c *Client) ReleasePartitions(ctx context.Context, req *gateway.ReleasePartitionsRequest) (*gateway.Status, error) {
	return call[gateway.Status](ctx, c, gateway.MethodReleasePartitions, req)
}

// CreateIndex implements gateway.Gateway.
func (c *Client) CreateIndex(ctx context.Context, req *gateway.CreateIndexRequest) (*gateway.Status, error) {
	return call[gateway.Status](ctx, c, gateway.MethodCreateIndex, req)
}

// DropIndex implements gateway.Gateway.
func (c *Client) DropIndex(ctx context.Context, req *gateway.IndexRequest) (*gateway.Status, error) {
	return call[gateway.Status](ctx, c, gateway.MethodDropIndex, req)
}

// DescribeIndex implements gateway.Gateway.
func (c *Client) DescribeIndex(ctx context.Context, req *gateway.IndexRequest) (*gateway.DescribeIndexResponse, error) {
	return call[gateway.DescribeIndexResponse](ctx, c, gateway.MethodDescribeIndex, req)
}

// Insert implements gateway.Gateway.
func (c *Client) Insert(ctx context.Context, req *gateway.InsertRequest) (*gateway.MutationResult, error) {
	return call[gateway.MutationResult](ctx, c, gateway.MethodInsert, req)
}

// Delete implements gateway.Gateway.
func (c *Client) Delete(ctx context.Context, req *gateway.DeleteRequest) (*gateway.MutationResult, error) {
	return call[gateway.MutationResult](ctx, c, gateway.MethodDelete, req)
}

// Search implements gateway.Gateway.
func (c *Client) Search(ctx context.Context, req *gateway.SearchRequest) (*gateway.SearchResponse, error) {
	return call[gateway.SearchResponse](ctx, c, gateway.MethodSearch, req)
}

// Query implements gateway.Gateway.
func (c *Client) Query(ctx context.Context, req *gateway.QueryRequest) (*gateway.QueryResponse, error) {
	return call[gateway.QueryResponse](ctx, c, gateway.MethodQuery, req)
}

// Flush implements gateway.Gateway.
func (c *Client) Flush(ctx context.Context, req *gateway.FlushRequest) (*gateway.FlushResponse, error) {
	return call[gateway.FlushResponse](ctx, c, gateway.MethodFlush, req)
}

// GetFlushState implements gateway.Gateway.
func (c *Client) GetFlushState(
	ctx context.Context, req *gateway.GetFlushStateRequest,
) (*gateway.GetFlushStateResponse, error) {
	return call[gateway.GetFlushStateResponse](ctx, c, gateway.MethodGetFlushState, req)
}

// Health implements gateway.Gateway.
func (c *Client) Health(ctx context.Context) (*gateway.HealthResponse, error) {
	return call[gateway.HealthResponse](ctx, c, gateway.MethodHealth, nil)
}

// Close marks the client closed and releases idle connections.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.http.CloseIdleConnections()
	return nil
}
