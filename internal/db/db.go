package db

import (
	"context"
	"strconv"
	"time"
)

// Store persists flushed segments and cached embeddings for the emulator.
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// SegmentKey returns the key a flushed segment is stored under.
func SegmentKey(prefix, collection string, segmentID int64) string {
	return prefix + "segment:" + collection + ":" + strconv.FormatInt(segmentID, 10)
}

// SegmentPattern matches every segment key of a collection.
func SegmentPattern(prefix, collection string) string {
	return prefix + "segment:" + collection + ":*"
}

// EmbeddingKey returns the key a cached embedding is stored under.
func EmbeddingKey(prefix, model, hash string) string {
	return prefix + "emb:" + model + ":" + hash
}
