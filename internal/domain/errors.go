package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParam signals a local validation failure. Never sent over the wire.
	ErrInvalidParam = errors.New("invalid parameter")
	// ErrTransport signals that the gateway could not complete a call.
	ErrTransport = errors.New("transport failure")
	// ErrServer signals a non-success status reported by the server.
	ErrServer = errors.New("server error")
	// ErrSchemaMismatch signals a response or schema inconsistent with the request.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrTimeout signals an exhausted retry budget.
	ErrTimeout = errors.New("timeout")
	// ErrPending signals an operation that may still complete on the server.
	ErrPending = errors.New("operation still pending")
	// ErrRetriesExhausted signals that every retry attempt failed.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// Kind classifies a failure for retry and reporting decisions.
type Kind int

// Failure kinds.
const (
	KindUnknown Kind = iota
	KindParam
	KindTransport
	KindServer
	KindSchemaMismatch
	KindTimeout
	KindPending
)

func (k Kind) String() string {
	switch k {
	case KindParam:
		return "param"
	case KindTransport:
		return "transport"
	case KindServer:
		return "server"
	case KindSchemaMismatch:
		return "schema_mismatch"
	case KindTimeout:
		return "timeout"
	case KindPending:
		return "pending"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindParam:
		return ErrInvalidParam
	case KindTransport:
		return ErrTransport
	case KindServer:
		return ErrServer
	case KindSchemaMismatch:
		return ErrSchemaMismatch
	case KindTimeout:
		return ErrTimeout
	case KindPending:
		return ErrPending
	default:
		return nil
	}
}

// Error is a classified failure. Code carries the server status code for
// KindServer errors and is zero otherwise.
type Error struct {
	Kind Kind
	Op   string
	Code int32
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

// Unwrap exposes both the kind sentinel and the underlying cause to errors.Is.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewParamError creates a parameter error with a formatted message.
func NewParamError(format string, args ...any) error {
	return &Error{Kind: KindParam, Msg: fmt.Sprintf(format, args...)}
}

// NewSchemaMismatch creates a schema-mismatch error with a formatted message.
func NewSchemaMismatch(format string, args ...any) error {
	return &Error{Kind: KindSchemaMismatch, Msg: fmt.Sprintf(format, args...)}
}

// NewTransportError wraps a gateway failure for op.
func NewTransportError(op string, err error) error {
	return &Error{Kind: KindTransport, Op: op, Err: err}
}

// NewServerError creates a server failure carrying the status code and reason.
func NewServerError(op string, code int32, reason string) error {
	return &Error{Kind: KindServer, Op: op, Code: code, Msg: reason}
}

// KindOf reports the kind of err. Unclassified errors report KindUnknown.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// WithOp returns err annotated with op when it is a classified error without one.
func WithOp(op string, err error) error {
	var de *Error
	if errors.As(err, &de) && de.Op == "" {
		cp := *de
		cp.Op = op
		return &cp
	}
	return err
}
