package metrics

import "github.com/prometheus/client_golang/prometheus"

// RPC metrics of the emulator server, labelled by method and status code name.
var (
	RPCRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vsearch",
			Name:      "rpc_requests_total",
			Help:      "Total RPC calls served by method and status",
		},
		[]string{"method", "status"},
	)

	SegmentsFlushedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vsearch",
			Name:      "segments_flushed_total",
			Help:      "Total segments sealed and persisted",
		},
	)
)

var rpcMetricsRegistered bool

// RegisterRPCMetrics registers the server RPC metrics. Must be called once from main.
func RegisterRPCMetrics() {
	if rpcMetricsRegistered {
		return
	}
	prometheus.MustRegister(RPCRequestsTotal)
	prometheus.MustRegister(SegmentsFlushedTotal)
	rpcMetricsRegistered = true
}
