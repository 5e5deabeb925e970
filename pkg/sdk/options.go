package vecsearch

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecsearch/internal/config"
	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/gateway"
	"github.com/kailas-cloud/vecsearch/internal/poller"
	"github.com/kailas-cloud/vecsearch/internal/retry"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	gw gateway.Gateway

	baseURL   string
	addrErr   error
	apiKey    string
	timeout   time.Duration
	rateLimit float64
	burst     int

	retry   retry.Policy
	poll    poller.Policy
	missing poller.MissingPartition

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		retry:   retry.DefaultPolicy(),
		poll:    poller.DefaultPolicy(),
		missing: poller.Continue,
		logger:  zap.NewNop(),
	}
}

// WithGateway uses gw for every remote call instead of dialing an address.
// The client takes ownership and closes gw on Close.
func WithGateway(gw Gateway) Option {
	return optionFunc(func(c *clientConfig) {
		c.gw = gw
	})
}

// Address defaults.
const (
	DefaultHost = "localhost"
	DefaultPort = 18880
)

// WithAddress connects to the service at host:port over HTTP. A blank host
// means DefaultHost; a port outside 0-65535 makes New fail.
func WithAddress(host string, port int) Option {
	return optionFunc(func(c *clientConfig) {
		host = strings.TrimSpace(host)
		if host == "" {
			host = DefaultHost
		}
		c.addrErr = nil
		if port < 0 || port > 65535 {
			c.addrErr = domain.NewParamError("port must be between 0 and 65535, got %d", port)
		}
		c.baseURL = "http://" + net.JoinHostPort(host, strconv.Itoa(port))
	})
}

// WithBaseURL connects to the service at a full base URL, e.g. https://search.example.com.
func WithBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = url
		c.addrErr = nil
	})
}

// WithAPIKey sends key as a Bearer token.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = key
	})
}

// WithCallTimeout bounds each HTTP call. Default: 30s.
func WithCallTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithRateLimit caps outgoing calls per second. Zero disables limiting (default).
func WithRateLimit(perSecond float64, burst int) Option {
	return optionFunc(func(c *clientConfig) {
		c.rateLimit = perSecond
		c.burst = burst
	})
}

// WithRetry sets the retry policy for non-success statuses.
// Default: 3 attempts, 500ms apart, within 10s.
func WithRetry(p RetryPolicy) Option {
	return optionFunc(func(c *clientConfig) {
		c.retry = p
	})
}

// WithPoll sets the default sync wait policy. Per-call Sync values override it.
// Default: every 500ms for up to a minute.
func WithPoll(p PollPolicy) Option {
	return optionFunc(func(c *clientConfig) {
		c.poll = p
	})
}

// WithMissingPartition decides what a partition absent from a load status
// means during LoadPartitions sync waits. Default: MissingContinue.
func WithMissingPartition(m MissingPartition) Option {
	return optionFunc(func(c *clientConfig) {
		c.missing = m
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		if l == nil {
			l = zap.NewNop()
		}
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operations, durations, retry
// attempts, poll outcomes, gateway latency) on the given registerer.
// Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// FromConfig applies the gateway, retry and poll sections of cfg.
func FromConfig(cfg config.Config) Option {
	return optionFunc(func(c *clientConfig) {
		g := cfg.Gateway
		c.baseURL = g.Address()
		c.addrErr = nil
		c.apiKey = g.APIKey
		c.timeout = time.Duration(g.TimeoutSec) * time.Second
		c.rateLimit = g.RateLimit
		c.burst = g.Burst

		c.retry = retry.Policy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			Interval:    cfg.Retry.Interval(),
			Timeout:     cfg.Retry.Timeout(),
		}
		c.poll = poller.Policy{Interval: cfg.Poll.Interval(), Timeout: cfg.Poll.Timeout()}
		if cfg.Poll.MissingPartition == "abort" {
			c.missing = poller.Abort
		} else {
			c.missing = poller.Continue
		}
	})
}
