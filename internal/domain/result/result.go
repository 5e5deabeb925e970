// Package result holds the immutable outcome of one logical operation.
package result

import (
	"errors"

	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/domain/status"
)

// Result is the outcome of an operation: a payload on success, a message and
// classified error on failure. A success may carry a warning when a sync wait
// did not confirm completion.
type Result[T any] struct {
	code    status.Code
	data    T
	msg     string
	warning string
	err     error
}

// Success creates a successful result.
func Success[T any](data T) Result[T] {
	return Result[T]{code: status.Success, data: data}
}

// SuccessWithWarning creates a successful result carrying a warning.
func SuccessWithWarning[T any](data T, warning string) Result[T] {
	return Result[T]{code: status.Success, data: data, warning: warning}
}

// Failure creates a failed result from a classified error. A nil error is
// reported as an unknown failure.
func Failure[T any](err error) Result[T] {
	if err == nil {
		err = &domain.Error{Kind: domain.KindUnknown, Msg: "unknown failure"}
	}
	return Result[T]{code: codeOf(err), msg: err.Error(), err: err}
}

func codeOf(err error) status.Code {
	var de *domain.Error
	if !errors.As(err, &de) {
		return status.Unknown
	}
	switch de.Kind {
	case domain.KindParam:
		return status.ParamError
	case domain.KindTransport:
		return status.RPCError
	case domain.KindSchemaMismatch:
		return status.IllegalResponse
	case domain.KindServer:
		if de.Code == 0 {
			return status.UnexpectedError
		}
		return status.Code(de.Code)
	default:
		return status.Unknown
	}
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool { return r.err == nil && r.code.OK() }

// Code returns the status code.
func (r Result[T]) Code() status.Code { return r.code }

// Data returns the payload. The zero value is returned on failure.
func (r Result[T]) Data() T { return r.data }

// Message returns the failure message, empty on success.
func (r Result[T]) Message() string { return r.msg }

// Warning returns the success warning, if any.
func (r Result[T]) Warning() string { return r.warning }

// Err returns the classified failure, nil on success.
func (r Result[T]) Err() error { return r.err }

// Kind returns the failure kind, KindUnknown on success.
func (r Result[T]) Kind() domain.Kind {
	if r.err == nil {
		return domain.KindUnknown
	}
	return domain.KindOf(r.err)
}

// Map converts the payload of a successful result. Failures keep their
// error; warnings are preserved.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if !r.OK() {
		return Propagate[U](r)
	}
	return Result[U]{code: r.code, data: fn(r.data), warning: r.warning}
}

// Propagate re-types a failed result.
func Propagate[U, T any](r Result[T]) Result[U] {
	return Result[U]{code: r.code, msg: r.msg, err: r.err}
}

// Get returns the payload and the failure, for callers that work with
// plain error returns.
func (r Result[T]) Get() (T, error) { return r.data, r.err }
