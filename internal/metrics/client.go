package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Client holds the metrics of one SDK client. Collectors are created per
// client and registered on the caller's registry.
type Client struct {
	Operations      *prometheus.CounterVec
	Duration        *prometheus.HistogramVec
	RetryAttempts   *prometheus.CounterVec
	PollOutcomes    *prometheus.CounterVec
	GatewayDuration *prometheus.HistogramVec
}

// NewClient creates unregistered client metrics.
func NewClient() *Client {
	return &Client{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vsearch",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total SDK operations by type and status.",
		}, []string{"operation", "status"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vsearch",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		RetryAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vsearch",
			Subsystem: "sdk",
			Name:      "retry_attempts_total",
			Help:      "Remote call attempts by operation and outcome.",
		}, []string{"operation", "outcome"}),
		PollOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vsearch",
			Subsystem: "sdk",
			Name:      "poll_outcomes_total",
			Help:      "Sync wait outcomes by operation and state.",
		}, []string{"operation", "state"}),
		GatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vsearch",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "HTTP gateway request duration in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "outcome"}),
	}
}

// Register registers every collector, reusing ones already registered.
func (c *Client) Register(reg prometheus.Registerer) error {
	if err := RegisterOrReuse(reg, &c.Operations); err != nil {
		return err
	}
	if err := RegisterOrReuse(reg, &c.Duration); err != nil {
		return err
	}
	if err := RegisterOrReuse(reg, &c.RetryAttempts); err != nil {
		return err
	}
	if err := RegisterOrReuse(reg, &c.PollOutcomes); err != nil {
		return err
	}
	return RegisterOrReuse(reg, &c.GatewayDuration)
}

// RegisterOrReuse registers a collector or reuses an existing one.
func RegisterOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("vsearch: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("vsearch: register metric: %w", err)
	}
	return nil
}
