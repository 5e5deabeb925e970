package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Route label values that are not chi patterns.
const (
	RouteUnmatched = "unmatched"
	RPCNone        = "-"
	RPCUnknown     = "unknown"
)

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vsearch",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by route, RPC method and status",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5},
		},
		[]string{"route", "rpc", "status"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vsearch",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, RPC method and status",
		},
		[]string{"route", "rpc", "status"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
}

// Middleware records request duration and count. The route label is the chi
// pattern; the rpc label is the {rpcParam} URL parameter when known reports it
// as a served method, RPCUnknown when it does not, and RPCNone outside RPC routes.
func Middleware(rpcParam string, known func(string) bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route, rpc := labels(chi.RouteContext(r.Context()), rpcParam, known)
			status := strconv.Itoa(statusOf(ww))

			httpRequestDuration.WithLabelValues(route, rpc, status).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(route, rpc, status).Inc()
		})
	}
}

// labels keeps cardinality bounded: unmatched paths and unserved methods
// collapse into fixed values.
func labels(rctx *chi.Context, rpcParam string, known func(string) bool) (route, rpc string) {
	if rctx == nil || rctx.RoutePattern() == "" {
		return RouteUnmatched, RPCNone
	}
	route = rctx.RoutePattern()

	m := rctx.URLParam(rpcParam)
	switch {
	case rpcParam == "" || m == "":
		return route, RPCNone
	case known != nil && known(m):
		return route, m
	default:
		return route, RPCUnknown
	}
}

// statusOf returns the written status; a handler that never writes gets 200.
func statusOf(ww chiMiddleware.WrapResponseWriter) int {
	if s := ww.Status(); s != 0 {
		return s
	}
	return http.StatusOK
}

// HTTPRequests returns the request counter for one label set.
func HTTPRequests(route, rpc, status string) prometheus.Counter {
	return httpRequestsTotal.WithLabelValues(route, rpc, status)
}
