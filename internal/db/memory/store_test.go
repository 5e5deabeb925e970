package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/vecsearch/internal/db"
)

func TestStore_GetSet(t *testing.T) {
	s, err := NewStore(8)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	ctx := context.Background()

	if _, err := s.Get(ctx, "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}

	val := []byte("v1")
	if err := s.Set(ctx, "k", val); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val[0] = 'x'

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v1" {
		t.Errorf("Get = %q, want v1", got)
	}

	ok, _ := s.Exists(ctx, "k")
	if !ok {
		t.Error("expected key to exist")
	}
	if err := s.Del(ctx, "k", "missing"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if ok, _ := s.Exists(ctx, "k"); ok {
		t.Error("expected key to be deleted")
	}
}

func TestStore_Eviction(t *testing.T) {
	s, _ := NewStore(2)
	ctx := context.Background()
	_ = s.Set(ctx, "a", []byte("1"))
	_ = s.Set(ctx, "b", []byte("2"))
	_ = s.Set(ctx, "c", []byte("3"))

	if ok, _ := s.Exists(ctx, "a"); ok {
		t.Error("oldest key should be evicted")
	}
}

func TestStore_Scan(t *testing.T) {
	s, _ := NewStore(16)
	ctx := context.Background()
	for _, k := range []string{
		db.SegmentKey("vs:", "books", 2),
		db.SegmentKey("vs:", "books", 1),
		db.SegmentKey("vs:", "films", 1),
	} {
		_ = s.Set(ctx, k, []byte("x"))
	}

	keys, err := s.Scan(ctx, db.SegmentPattern("vs:", "books"))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []string{"vs:segment:books:1", "vs:segment:books:2"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}

	if _, err := s.Scan(ctx, "["); err == nil {
		t.Error("expected error for malformed pattern")
	}
}
