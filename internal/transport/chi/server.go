package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecsearch/internal/domain/status"
	"github.com/kailas-cloud/vecsearch/internal/emulator"
	"github.com/kailas-cloud/vecsearch/internal/gateway"
	"github.com/kailas-cloud/vecsearch/internal/metrics"
	"github.com/kailas-cloud/vecsearch/internal/transport/httpgw"
)

const maxBodyBytes = 32 << 20

// Error codes of non-200 replies.
const (
	CodeBadRequest     = "bad_request"
	CodeUnknownMethod  = "unknown_method"
	CodeUnauthorized   = "unauthorized"
	CodeUnavailable    = "service_unavailable"
	CodeGatewayTimeout = "gateway_timeout"
	CodeInternal       = "internal_error"
)

// errorHandler tries to handle a gateway error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// rpcHandler decodes a request body and performs one gateway call.
type rpcHandler func(ctx context.Context, body io.Reader) (gateway.StatusCarrier, error)

// errBadBody marks request decoding failures.
var errBadBody = errors.New("invalid request body")

// Server exposes a gateway.Gateway over HTTP/JSON.
type Server struct {
	gw            gateway.Gateway
	logger        *zap.Logger
	handlers      map[string]rpcHandler
	errorHandlers []errorHandler
}

// NewServer creates an HTTP server for gw.
func NewServer(gw gateway.Gateway, logger *zap.Logger) *Server {
	s := &Server{gw: gw, logger: logger}
	s.handlers = map[string]rpcHandler{
		gateway.MethodHasCollection:      bind(gw.HasCollection),
		gateway.MethodCreateCollection:   bind(gw.CreateCollection),
		gateway.MethodDropCollection:     bind(gw.DropCollection),
		gateway.MethodDescribeCollection: bind(gw.DescribeCollection),
		gateway.MethodLoadCollection:     bind(gw.LoadCollection),
		gateway.MethodReleaseCollection:  bind(gw.ReleaseCollection),
		gateway.MethodShowCollections:    bind(gw.ShowCollections),
		gateway.MethodCreatePartition:    bind(gw.CreatePartition),
		gateway.MethodDropPartition:      bind(gw.DropPartition),
		gateway.MethodHasPartition:       bind(gw.HasPartition),
		gateway.MethodShowPartitions:     bind(gw.ShowPartitions),
		gateway.MethodLoadPartitions:     bind(gw.LoadPartitions),
		gateway.MethodReleasePartitions:  bind(gw.ReleasePartitions),
		gateway.MethodCreateIndex:        bind(gw.CreateIndex),
		gateway.MethodDropIndex:          bind(gw.DropIndex),
		gateway.MethodDescribeIndex:      bind(gw.DescribeIndex),
		gateway.MethodInsert:             bind(gw.Insert),
		gateway.MethodDelete:             bind(gw.Delete),
		gateway.MethodSearch:             bind(gw.Search),
		gateway.MethodQuery:              bind(gw.Query),
		gateway.MethodFlush:              bind(gw.Flush),
		gateway.MethodGetFlushState:      bind(gw.GetFlushState),
		gateway.MethodHealth: func(ctx context.Context, _ io.Reader) (gateway.StatusCarrier, error) {
			return gw.Health(ctx)
		},
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(errBadBody, http.StatusBadRequest, CodeBadRequest),
		sentinelHandler(emulator.ErrClosed, http.StatusServiceUnavailable, CodeUnavailable),
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, CodeGatewayTimeout),
		sentinelHandler(context.Canceled, http.StatusServiceUnavailable, CodeUnavailable),
	}
	return s
}

// bind adapts a typed gateway method to an rpcHandler.
func bind[Req any, Resp gateway.StatusCarrier](fn func(context.Context, *Req) (Resp, error)) rpcHandler {
	return func(ctx context.Context, body io.Reader) (gateway.StatusCarrier, error) {
		req := new(Req)
		if err := json.NewDecoder(body).Decode(req); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %w", errBadBody, err)
		}
		return fn(ctx, req)
	}
}

// MethodParam names the URL parameter carrying the RPC method.
const MethodParam = "method"

// Serves reports whether method is a served RPC method.
func (s *Server) Serves(method string) bool {
	_, ok := s.handlers[method]
	return ok
}

// Routes registers the RPC, health and metrics routes on r.
func (s *Server) Routes(r chi.Router) {
	r.Post(httpgw.RPCPath+"{"+MethodParam+"}", s.RPC)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Handler returns a router serving only this server's routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}

// RPC handles POST /v1/rpc/{method}.
func (s *Server) RPC(w http.ResponseWriter, r *http.Request) {
	var method string
	err := runtime.BindStyledParameterWithOptions("simple", MethodParam, chi.URLParam(r, MethodParam), &method,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid method parameter")
		return
	}

	h, found := s.handlers[method]
	if !found {
		metrics.RPCRequestsTotal.WithLabelValues(metrics.RPCUnknown, CodeUnknownMethod).Inc()
		writeError(w, http.StatusNotFound, CodeUnknownMethod, "unknown method: "+method)
		return
	}

	resp, err := h(r.Context(), http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		metrics.RPCRequestsTotal.WithLabelValues(method, "error").Inc()
		s.handleError(w, method, err)
		return
	}

	metrics.RPCRequestsTotal.WithLabelValues(method, status.Code(resp.GetStatus().Code).String()).Inc()
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp, err := s.gw.Health(r.Context())
	if err != nil {
		s.handleError(w, gateway.MethodHealth, err)
		return
	}

	code := http.StatusOK
	state := "ok"
	if !resp.IsHealthy {
		code = http.StatusServiceUnavailable
		state = "error"
	}
	writeJSON(w, code, map[string]string{
		"status":  state,
		"version": resp.Version,
		"reason":  resp.Reason,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	writeJSON(w, code, httpgw.ErrorBody{Code: errCode, Message: message})
}

func sentinelHandler(sentinel error, code int, errCode string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, code, errCode, err.Error())
		return true
	}
}

func (s *Server) handleError(w http.ResponseWriter, method string, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("unhandled gateway error", zap.String("method", method), zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
}
