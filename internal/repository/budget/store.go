// Package budget persists embedding token counters in a key-value store.
package budget

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/kailas-cloud/vecsearch/internal/db"
)

// kv is the slice of db.KVStore the counters need.
type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Store keeps decimal counters. Increments are serialized within the process
// only; two daemons sharing a database can lose updates.
type Store struct {
	mu sync.Mutex
	kv kv
}

// New creates a counter store over s.
func New(s kv) *Store {
	return &Store{kv: s}
}

// IncrBy adds val to the counter at key.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.get(ctx, key)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, key, []byte(strconv.FormatInt(cur+val, 10))); err != nil {
		return fmt.Errorf("budget SET %s: %w", key, err)
	}
	return nil
}

// Get returns the counter at key, 0 if it does not exist.
func (s *Store) Get(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(ctx, key)
}

func (s *Store) get(ctx context.Context, key string) (int64, error) {
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("budget GET %s: %w", key, err)
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("budget GET %s parse: %w", key, err)
	}
	return v, nil
}
