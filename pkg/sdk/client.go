package vecsearch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/domain/result"
	"github.com/kailas-cloud/vecsearch/internal/retry"
	"github.com/kailas-cloud/vecsearch/internal/transport/httpgw"
	"github.com/kailas-cloud/vecsearch/internal/usecase/collection"
	"github.com/kailas-cloud/vecsearch/internal/usecase/dml"
	"github.com/kailas-cloud/vecsearch/internal/usecase/flush"
	"github.com/kailas-cloud/vecsearch/internal/usecase/index"
	"github.com/kailas-cloud/vecsearch/internal/usecase/partition"
	"github.com/kailas-cloud/vecsearch/internal/usecase/rpc"
)

// Operation names of the client-level calls.
const (
	opPing   = "Ping"
	opHealth = "Health"
)

// Client is the vecsearch SDK entry point. Safe for concurrent use when
// its gateway is.
type Client struct {
	gw       Gateway
	collSvc  *collection.Service
	partSvc  *partition.Service
	indexSvc *index.Service
	dmlSvc   *dml.Service
	flushSvc *flush.Service
	obs      *observer
	logger   *zap.Logger
	closed   atomic.Bool
}

// New creates a Client. Without WithGateway it dials the address given by
// WithAddress, WithBaseURL or FromConfig over HTTP.
func New(opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.addrErr != nil {
		return nil, fmt.Errorf("vecsearch: %w", cfg.addrErr)
	}
	if err := cfg.retry.Validate(); err != nil {
		return nil, fmt.Errorf("vecsearch: %w", err)
	}
	if err := cfg.poll.Validate(); err != nil {
		return nil, fmt.Errorf("vecsearch: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	gw := cfg.gw
	if gw == nil {
		gw, err = dial(cfg, obs)
		if err != nil {
			return nil, err
		}
	}
	return wireClient(gw, cfg, obs), nil
}

func dial(cfg *clientConfig, obs *observer) (Gateway, error) {
	if cfg.baseURL == "" {
		return nil, errors.New("vecsearch: gateway required (use WithGateway, WithAddress or FromConfig)")
	}
	opts := []httpgw.Option{httpgw.WithLogger(cfg.logger)}
	if obs.metrics != nil {
		opts = append(opts, httpgw.WithDuration(obs.metrics.GatewayDuration))
	}
	gw, err := httpgw.New(httpgw.Config{
		BaseURL:   cfg.baseURL,
		APIKey:    cfg.apiKey,
		Timeout:   cfg.timeout,
		RateLimit: cfg.rateLimit,
		Burst:     cfg.burst,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("vecsearch: create http gateway: %w", err)
	}
	return gw, nil
}

func wireClient(gw Gateway, cfg *clientConfig, obs *observer) *Client {
	var attempts, pollOutcomes *prometheus.CounterVec
	if obs.metrics != nil {
		attempts = obs.metrics.RetryAttempts
		pollOutcomes = obs.metrics.PollOutcomes
	}
	env := &rpc.Env{
		Exec:         retry.NewExecutor(cfg.retry, cfg.logger, attempts),
		Poll:         cfg.poll,
		Missing:      cfg.missing,
		Logger:       cfg.logger,
		PollOutcomes: pollOutcomes,
	}

	return &Client{
		gw:       gw,
		collSvc:  collection.New(gw, env),
		partSvc:  partition.New(gw, env),
		indexSvc: index.New(gw, env),
		dmlSvc:   dml.New(gw, env),
		flushSvc: flush.New(gw, env),
		obs:      obs,
		logger:   cfg.logger,
	}
}

// run executes one operation with panic recovery and observation.
func run[T any](ctx context.Context, c *Client, op string, fn func(context.Context) result.Result[T]) (res result.Result[T]) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("panic recovered",
				zap.String("op", op),
				zap.Any("panic", r),
				zap.Stack("stacktrace"),
			)
			res = result.Failure[T](&domain.Error{Kind: domain.KindUnknown, Op: op, Msg: fmt.Sprintf("panic: %v", r)})
		}
		c.obs.observe(op, start, res)
	}()

	if c.closed.Load() {
		return result.Failure[T](&domain.Error{Kind: domain.KindTransport, Op: op, Err: ErrClientClosed})
	}
	return fn(ctx)
}

// Close releases the gateway. Operations after Close fail with ErrClientClosed.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	if err := c.gw.Close(); err != nil {
		return fmt.Errorf("vecsearch: close gateway: %w", err)
	}
	return nil
}

// Ping checks that the service answers and reports itself healthy.
func (c *Client) Ping(ctx context.Context) error {
	res := c.Health(ctx)
	if !res.OK() {
		return fmt.Errorf("ping: %w", res.Err())
	}
	if h := res.Data(); !h.Healthy {
		return fmt.Errorf("ping: %w", domain.NewServerError(opPing, 0, "service unhealthy: "+h.Reason))
	}
	return nil
}

// Health reports the gateway health.
func (c *Client) Health(ctx context.Context) Result[HealthStatus] {
	return run(ctx, c, opHealth, func(ctx context.Context) result.Result[HealthStatus] {
		resp, err := c.gw.Health(ctx)
		if err != nil {
			return result.Failure[HealthStatus](domain.NewTransportError(opHealth, err))
		}
		return result.Success(HealthStatus{Healthy: resp.IsHealthy, Version: resp.Version, Reason: resp.Reason})
	})
}

// HasCollection reports whether a collection exists.
func (c *Client) HasCollection(ctx context.Context, p CollectionParam) Result[bool] {
	return run(ctx, c, collection.OpHas, func(ctx context.Context) result.Result[bool] {
		return c.collSvc.Has(ctx, p)
	})
}

// CreateCollection creates a collection from a schema.
func (c *Client) CreateCollection(ctx context.Context, p CreateCollectionParam) Result[struct{}] {
	return run(ctx, c, collection.OpCreate, func(ctx context.Context) result.Result[struct{}] {
		return c.collSvc.Create(ctx, p)
	})
}

// DropCollection drops a collection with its data and indexes.
func (c *Client) DropCollection(ctx context.Context, p CollectionParam) Result[struct{}] {
	return run(ctx, c, collection.OpDrop, func(ctx context.Context) result.Result[struct{}] {
		return c.collSvc.Drop(ctx, p)
	})
}

// DescribeCollection returns the collection schema and metadata.
func (c *Client) DescribeCollection(ctx context.Context, p CollectionParam) Result[CollectionInfo] {
	return run(ctx, c, collection.OpDescribe, func(ctx context.Context) result.Result[CollectionInfo] {
		return c.collSvc.Describe(ctx, p)
	})
}

// ShowCollections lists collections with their in-memory percentages.
func (c *Client) ShowCollections(ctx context.Context, p ShowCollectionsParam) Result[[]LoadStatus] {
	return run(ctx, c, collection.OpShow, func(ctx context.Context) result.Result[[]LoadStatus] {
		return c.collSvc.Show(ctx, p)
	})
}

// LoadCollection loads a collection into memory. With p.Sync.Wait it
// blocks until the load completes or the wait times out; a timeout is
// reported as a success carrying a warning.
func (c *Client) LoadCollection(ctx context.Context, p LoadCollectionParam) Result[struct{}] {
	return run(ctx, c, collection.OpLoad, func(ctx context.Context) result.Result[struct{}] {
		return c.collSvc.Load(ctx, p)
	})
}

// ReleaseCollection releases a collection from memory.
func (c *Client) ReleaseCollection(ctx context.Context, p CollectionParam) Result[struct{}] {
	return run(ctx, c, collection.OpRelease, func(ctx context.Context) result.Result[struct{}] {
		return c.collSvc.Release(ctx, p)
	})
}

// CreatePartition creates a partition.
func (c *Client) CreatePartition(ctx context.Context, p PartitionParam) Result[struct{}] {
	return run(ctx, c, partition.OpCreate, func(ctx context.Context) result.Result[struct{}] {
		return c.partSvc.Create(ctx, p)
	})
}

// DropPartition drops a partition.
func (c *Client) DropPartition(ctx context.Context, p PartitionParam) Result[struct{}] {
	return run(ctx, c, partition.OpDrop, func(ctx context.Context) result.Result[struct{}] {
		return c.partSvc.Drop(ctx, p)
	})
}

// HasPartition reports whether a partition exists.
func (c *Client) HasPartition(ctx context.Context, p PartitionParam) Result[bool] {
	return run(ctx, c, partition.OpHas, func(ctx context.Context) result.Result[bool] {
		return c.partSvc.Has(ctx, p)
	})
}

// ShowPartitions lists partitions of a collection.
func (c *Client) ShowPartitions(ctx context.Context, p ShowPartitionsParam) Result[[]LoadStatus] {
	return run(ctx, c, partition.OpShow, func(ctx context.Context) result.Result[[]LoadStatus] {
		return c.partSvc.Show(ctx, p)
	})
}

// LoadPartitions loads partitions into memory, optionally waiting.
func (c *Client) LoadPartitions(ctx context.Context, p LoadPartitionsParam) Result[struct{}] {
	return run(ctx, c, partition.OpLoad, func(ctx context.Context) result.Result[struct{}] {
		return c.partSvc.Load(ctx, p)
	})
}

// ReleasePartitions releases partitions from memory.
func (c *Client) ReleasePartitions(ctx context.Context, p ReleasePartitionsParam) Result[struct{}] {
	return run(ctx, c, partition.OpRelease, func(ctx context.Context) result.Result[struct{}] {
		return c.partSvc.Release(ctx, p)
	})
}

// CreateIndex builds an index over a field, optionally waiting for the build.
func (c *Client) CreateIndex(ctx context.Context, p CreateIndexParam) Result[struct{}] {
	return run(ctx, c, index.OpCreate, func(ctx context.Context) result.Result[struct{}] {
		return c.indexSvc.Create(ctx, p)
	})
}

// DropIndex drops an index.
func (c *Client) DropIndex(ctx context.Context, p IndexParam) Result[struct{}] {
	return run(ctx, c, index.OpDrop, func(ctx context.Context) result.Result[struct{}] {
		return c.indexSvc.Drop(ctx, p)
	})
}

// DescribeIndex returns the indexes of a collection with build progress.
func (c *Client) DescribeIndex(ctx context.Context, p IndexParam) Result[[]IndexInfo] {
	return run(ctx, c, index.OpDescribe, func(ctx context.Context) result.Result[[]IndexInfo] {
		return c.indexSvc.Describe(ctx, p)
	})
}

// Insert writes a batch of rows.
func (c *Client) Insert(ctx context.Context, p InsertParam) Result[Mutation] {
	return run(ctx, c, dml.OpInsert, func(ctx context.Context) result.Result[Mutation] {
		return c.dmlSvc.Insert(ctx, p)
	})
}

// Delete removes the rows matching an expression.
func (c *Client) Delete(ctx context.Context, p DeleteParam) Result[Mutation] {
	return run(ctx, c, dml.OpDelete, func(ctx context.Context) result.Result[Mutation] {
		return c.dmlSvc.Delete(ctx, p)
	})
}

// Search runs a similarity search by vectors or texts.
func (c *Client) Search(ctx context.Context, p SearchParam) Result[SearchResults] {
	return run(ctx, c, dml.OpSearch, func(ctx context.Context) result.Result[SearchResults] {
		return c.dmlSvc.Search(ctx, p)
	})
}

// Query fetches the rows matching a filter expression.
func (c *Client) Query(ctx context.Context, p QueryParam) Result[QueryResults] {
	return run(ctx, c, dml.OpQuery, func(ctx context.Context) result.Result[QueryResults] {
		return c.dmlSvc.Query(ctx, p)
	})
}

// Flush seals pending data of collections, optionally waiting until every
// sealed segment is persisted.
func (c *Client) Flush(ctx context.Context, p FlushParam) Result[FlushResult] {
	return run(ctx, c, flush.OpFlush, func(ctx context.Context) result.Result[FlushResult] {
		return c.flushSvc.Flush(ctx, p)
	})
}

// GetFlushState reports whether every given segment is flushed.
func (c *Client) GetFlushState(ctx context.Context, p GetFlushStateParam) Result[bool] {
	return run(ctx, c, flush.OpGetState, func(ctx context.Context) result.Result[bool] {
		return c.flushSvc.GetState(ctx, p)
	})
}
