package budget

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/vecsearch/internal/db/memory"
)

func TestStore_IncrByAndGet(t *testing.T) {
	mem, err := memory.NewStore(16)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	s := New(mem)
	ctx := context.Background()

	got, err := s.Get(ctx, "k")
	if err != nil || got != 0 {
		t.Fatalf("Get missing = %d, %v; want 0, nil", got, err)
	}

	for _, v := range []int64{5, 7, -2} {
		if err := s.IncrBy(ctx, "k", v); err != nil {
			t.Fatalf("IncrBy(%d): %v", v, err)
		}
	}
	got, err = s.Get(ctx, "k")
	if err != nil || got != 10 {
		t.Fatalf("Get = %d, %v; want 10, nil", got, err)
	}
}

type brokenKV struct {
	data []byte
	err  error
}

func (b *brokenKV) Get(context.Context, string) ([]byte, error) { return b.data, b.err }
func (b *brokenKV) Set(context.Context, string, []byte) error   { return b.err }

func TestStore_Errors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		kv      *brokenKV
		wantErr string
	}{
		{"backend failure", &brokenKV{err: boom}, "budget GET"},
		{"not a number", &brokenKV{data: []byte("abc")}, "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.kv)
			if _, err := s.Get(context.Background(), "k"); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Get err = %v, want containing %q", err, tt.wantErr)
			}
			if err := s.IncrBy(context.Background(), "k", 1); err == nil {
				t.Fatal("IncrBy: expected error")
			}
		})
	}
}
