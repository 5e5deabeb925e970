package result

import (
	"errors"
	"strconv"
	"testing"

	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/domain/status"
)

func TestSuccess(t *testing.T) {
	r := Success(42)
	if !r.OK() {
		t.Fatal("OK() = false")
	}
	if r.Data() != 42 || r.Message() != "" || r.Err() != nil {
		t.Errorf("got data=%d msg=%q err=%v", r.Data(), r.Message(), r.Err())
	}
	if r.Kind() != domain.KindUnknown {
		t.Errorf("Kind() = %s", r.Kind())
	}
}

func TestFailure_Codes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code status.Code
		kind domain.Kind
	}{
		{"param", domain.NewParamError("bad"), status.ParamError, domain.KindParam},
		{"transport", domain.NewTransportError("insert", errors.New("conn reset")), status.RPCError, domain.KindTransport},
		{"server", domain.NewServerError("insert", int32(status.IllegalDimension), "dim"), status.IllegalDimension, domain.KindServer},
		{"schema", domain.NewSchemaMismatch("len"), status.IllegalResponse, domain.KindSchemaMismatch},
		{"plain", errors.New("boom"), status.Unknown, domain.KindUnknown},
		{"nil", nil, status.Unknown, domain.KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Failure[int](tt.err)
			if r.OK() {
				t.Fatal("OK() = true")
			}
			if r.Code() != tt.code {
				t.Errorf("Code() = %s, want %s", r.Code(), tt.code)
			}
			if r.Kind() != tt.kind {
				t.Errorf("Kind() = %s, want %s", r.Kind(), tt.kind)
			}
			if r.Message() == "" {
				t.Error("Message() is empty")
			}
		})
	}
}

func TestMap(t *testing.T) {
	r := Map(SuccessWithWarning(2, "slow"), func(n int) string { return "n" + strconv.Itoa(n) })
	if !r.OK() || r.Data() != "n2" || r.Warning() != "slow" {
		t.Errorf("Map(success) = %q ok=%v warning=%q", r.Data(), r.OK(), r.Warning())
	}

	f := Map(Failure[int](domain.NewParamError("bad")), func(int) string { return "unused" })
	if f.OK() || f.Data() != "" || !errors.Is(f.Err(), domain.ErrInvalidParam) {
		t.Errorf("Map(failure) = %+v", f)
	}
}
