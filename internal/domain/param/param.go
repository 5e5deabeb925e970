// Package param holds the request parameter objects of every client
// operation. Each New* factory validates and copies its input; Validate
// re-checks a value built by hand.
package param

import (
	"reflect"
	"time"

	"github.com/kailas-cloud/vecsearch/internal/domain"
)

// Sync asks an asynchronous operation to block until the server reports
// completion. Zero Interval or Timeout fall back to the client poll policy.
type Sync struct {
	Wait     bool
	Interval time.Duration
	Timeout  time.Duration
}

// Validate checks that overrides are non-negative.
func (s Sync) Validate() error {
	if s.Interval < 0 || s.Timeout < 0 {
		return domain.NewParamError("sync interval and timeout cannot be negative")
	}
	return nil
}

// ShowKind filters show operations.
type ShowKind int32

// Show filters.
const (
	ShowAll      ShowKind = 0
	ShowInMemory ShowKind = 1
)

func checkNames(what string, names []string) error {
	for _, n := range names {
		if err := domain.CheckName(what, n); err != nil {
			return err
		}
	}
	return nil
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// RowCount reports the number of rows in a column value. ok is false when
// values is not a slice.
func RowCount(values any) (n int, ok bool) {
	if values == nil {
		return 0, false
	}
	v := reflect.ValueOf(values)
	if v.Kind() != reflect.Slice {
		return 0, false
	}
	return v.Len(), true
}
