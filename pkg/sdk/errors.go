package vecsearch

import (
	"errors"

	"github.com/kailas-cloud/vecsearch/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() on Result.Err() to check.
var (
	ErrInvalidParam     = domain.ErrInvalidParam
	ErrTransport        = domain.ErrTransport
	ErrServer           = domain.ErrServer
	ErrSchemaMismatch   = domain.ErrSchemaMismatch
	ErrTimeout          = domain.ErrTimeout
	ErrPending          = domain.ErrPending
	ErrRetriesExhausted = domain.ErrRetriesExhausted

	// ErrClientClosed is reported by every operation after Close.
	ErrClientClosed = errors.New("vecsearch: client closed")
)

// Error is a classified failure carried by a failed Result.
type Error = domain.Error

// ErrorKind classifies a failure.
type ErrorKind = domain.Kind

// Failure kinds.
const (
	KindUnknown        = domain.KindUnknown
	KindParam          = domain.KindParam
	KindTransport      = domain.KindTransport
	KindServer         = domain.KindServer
	KindSchemaMismatch = domain.KindSchemaMismatch
	KindTimeout        = domain.KindTimeout
	KindPending        = domain.KindPending
)

// KindOf reports the kind of err.
func KindOf(err error) ErrorKind { return domain.KindOf(err) }
