// Package emulator is an in-process implementation of the vector search
// service. It keeps collections in memory, answers status polls with
// step-wise progress and persists flushed segments to a db.KVStore.
package emulator

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecsearch/internal/db"
	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/domain/status"
	"github.com/kailas-cloud/vecsearch/internal/gateway"
	"github.com/kailas-cloud/vecsearch/internal/usecase/health"
	"github.com/kailas-cloud/vecsearch/internal/version"
)

// Compile-time check: Server implements gateway.Gateway.
var _ gateway.Gateway = (*Server)(nil)

// Config controls how many status polls asynchronous work takes.
type Config struct {
	LoadSteps  int
	IndexSteps int
	FlushSteps int
	KeyPrefix  string
}

func (c *Config) applyDefaults() {
	if c.LoadSteps <= 0 {
		c.LoadSteps = 1
	}
	if c.IndexSteps <= 0 {
		c.IndexSteps = 1
	}
	if c.FlushSteps <= 0 {
		c.FlushSteps = 1
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "vsearch:"
	}
}

// Option configures a Server.
type Option func(*Server)

// WithStore persists flushed segments to store.
func WithStore(store db.KVStore) Option {
	return func(s *Server) { s.store = store }
}

// WithEmbedder sets the embedder used for String fields with an embedding model.
func WithEmbedder(e domain.Embedder) Option {
	return func(s *Server) { s.embedder = e }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithHealth replaces the health checks reported by Health.
func WithHealth(h *health.Service) Option {
	return func(s *Server) { s.health = h }
}

// Server is the in-process vector search service. Safe for concurrent use.
type Server struct {
	cfg      Config
	store    db.KVStore
	embedder domain.Embedder
	health   *health.Service
	logger   *zap.Logger

	mu          sync.Mutex
	collections map[string]*collection
	closed      bool
}

// New creates an empty Server. Without WithEmbedder a 64-dimensional
// HashEmbedder is used.
func New(cfg Config, opts ...Option) *Server {
	cfg.applyDefaults()
	s := &Server{
		cfg:         cfg,
		logger:      zap.NewNop(),
		collections: map[string]*collection{},
	}
	for _, o := range opts {
		o(s)
	}
	if s.embedder == nil {
		s.embedder = NewHashEmbedder(64)
	}
	if s.health == nil {
		s.health = health.New()
	}
	return s
}

var nameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,254}$`)

func ok() gateway.Status { return gateway.Status{} }

func fail(code status.Code, format string, args ...any) gateway.Status {
	return gateway.Status{Code: int32(code), Reason: fmt.Sprintf(format, args...)}
}

func now() int64 { return time.Now().UnixMilli() }

// begin locks the server and fails once it is closed.
func (s *Server) begin() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("emulator: %w", ErrClosed)
	}
	return nil
}

func (s *Server) end() { s.mu.Unlock() }

// collection looks up name, reporting CollectionNotExists otherwise.
func (s *Server) collection(name string) (*collection, gateway.Status) {
	c, found := s.collections[name]
	if !found {
		return nil, fail(status.CollectionNotExists, "can't find collection: %s", name)
	}
	return c, ok()
}

func stepOf(steps int) int64 {
	return int64((100 + steps - 1) / steps)
}

// Health reports whether the server and its dependencies are usable.
func (s *Server) Health(ctx context.Context) (*gateway.HealthResponse, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	s.end()

	report := s.health.Check(ctx)
	resp := &gateway.HealthResponse{IsHealthy: report.Status != health.Unhealthy, Version: version.Version}
	if report.Status != health.Healthy {
		resp.Reason = fmt.Sprintf("health %s: %v", report.Status, report.Checks)
	}
	return resp, nil
}

// Close rejects all further calls.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
