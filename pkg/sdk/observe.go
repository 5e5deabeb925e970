package vecsearch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/metrics"
)

// observer provides logging and metrics for SDK operations.
type observer struct {
	logger  *zap.Logger
	metrics *metrics.Client
}

func newObserver(logger *zap.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *metrics.Client
	if reg != nil {
		m = metrics.NewClient()
		if err := m.Register(reg); err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

// outcome is the part of a Result the observer reads.
type outcome interface {
	OK() bool
	Err() error
	Warning() string
}

func (o *observer) observe(op string, start time.Time, res outcome) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	status := "ok"
	switch {
	case !res.OK():
		status = "error"
	case res.Warning() != "":
		status = "pending"
	}

	if o.metrics != nil {
		o.metrics.Operations.WithLabelValues(op, status).Inc()
		o.metrics.Duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	switch status {
	case "error":
		o.logger.Warn("operation failed",
			zap.String("op", op),
			zap.Duration("duration", dur),
			zap.Stringer("kind", domain.KindOf(res.Err())),
			zap.Error(res.Err()),
		)
	default:
		o.logger.Debug("operation completed",
			zap.String("op", op),
			zap.Duration("duration", dur),
			zap.String("status", status),
		)
	}
}
