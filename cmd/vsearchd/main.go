package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecsearch/internal/config"
	"github.com/kailas-cloud/vecsearch/internal/db"
	"github.com/kailas-cloud/vecsearch/internal/db/memory"
	dbRedis "github.com/kailas-cloud/vecsearch/internal/db/redis"
	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/emulator"
	logpkg "github.com/kailas-cloud/vecsearch/internal/logger"
	"github.com/kailas-cloud/vecsearch/internal/metrics"
	"github.com/kailas-cloud/vecsearch/internal/repository/budget"
	"github.com/kailas-cloud/vecsearch/internal/repository/embcache"
	chiTransport "github.com/kailas-cloud/vecsearch/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/vecsearch/internal/transport/openai"
	"github.com/kailas-cloud/vecsearch/internal/usecase/embedding"
	"github.com/kailas-cloud/vecsearch/internal/usecase/health"
	"github.com/kailas-cloud/vecsearch/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting vsearchd",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("embedding_provider", cfg.Embedding.Provider),
	)

	store, err := newStore(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create segment store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Segment store not ready", zap.Error(err))
	}
	logger.Info("Connected to segment store")

	metrics.RegisterRPCMetrics()
	metrics.RegisterEmbeddingMetrics()

	embedder, err := buildEmbedder(ctx, cfg, store, logger)
	if err != nil {
		logger.Fatal("Failed to create embedder", zap.Error(err))
	}

	checks := []health.Check{health.Store(store)}
	if hc, ok := embedder.(health.EmbeddingChecker); ok {
		checks = append(checks, health.Embedding(hc))
	}

	emu := emulator.New(emulator.Config{
		LoadSteps:  cfg.Emulator.LoadSteps,
		IndexSteps: cfg.Emulator.IndexSteps,
		FlushSteps: cfg.Emulator.FlushSteps,
		KeyPrefix:  cfg.Database.KeyPrefix,
	},
		emulator.WithStore(store),
		emulator.WithEmbedder(embedder),
		emulator.WithHealth(health.New(checks...)),
		emulator.WithLogger(logger),
	)
	defer func() { _ = emu.Close() }()

	server := chiTransport.NewServer(emu, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware(chiTransport.MethodParam, server.Serves))
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func newStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis store: %w", err)
		}
		return s, nil
	case "memory":
		s, err := memory.NewStore(cfg.MemoryEntries)
		if err != nil {
			return nil, fmt.Errorf("create memory store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// buildEmbedder assembles the text embedder: hash, or OpenAI behind a token
// budget and a cache. A memory segment store gets a dedicated cache so
// embeddings do not evict segments.
func buildEmbedder(ctx context.Context, cfg config.Config, store db.Store, logger *zap.Logger) (domain.Embedder, error) {
	ec := cfg.Embedding
	if ec.Provider != "openai" {
		return emulator.NewHashEmbedder(ec.Dimensions), nil
	}

	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     ec.APIKey,
		BaseURL:    ec.BaseURL,
		Model:      ec.Model,
		Dimensions: ec.Dimensions,
		Provider:   ec.Provider,
		Logger:     logger,
	})

	tracker := embedding.NewTracker(ctx, ec.Provider, embedding.Limits{
		Daily:   ec.Budget.DailyTokens,
		Monthly: ec.Budget.MonthlyTokens,
		Action:  embedding.Action(ec.Budget.Action),
	}, logger, embedding.WithCounterStore(budget.New(store), cfg.Database.KeyPrefix))
	limited := embedding.New(base, ec.Provider, ec.Model, tracker, logger)

	var cache db.KVStore = store
	if cfg.Database.Driver == "memory" {
		mem, err := memory.NewStore(ec.CacheEntries)
		if err != nil {
			return nil, fmt.Errorf("create embedding cache: %w", err)
		}
		cache = mem
	}

	return &checkedEmbedder{
		Embedder: embcache.New(limited, cache, embcache.Config{Prefix: cfg.Database.KeyPrefix, Model: ec.Model},
			metrics.EmbeddingCacheTotal, logger),
		checker: base,
	}, nil
}

// checkedEmbedder keeps the provider health check visible through the cache.
type checkedEmbedder struct {
	domain.Embedder
	checker health.EmbeddingChecker
}

func (e *checkedEmbedder) HealthCheck(ctx context.Context) error {
	if err := e.checker.HealthCheck(ctx); err != nil {
		return fmt.Errorf("embedding health check: %w", err)
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    chiTransport.CodeInternal,
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// RequestID keeps an incoming X-Request-ID, so client and server lines correlate.
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("rpc", chi.URLParam(r, chiTransport.MethodParam)),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
