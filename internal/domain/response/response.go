// Package response holds the typed payloads returned by client operations.
package response

import (
	"time"

	"github.com/kailas-cloud/vecsearch/internal/domain/schema"
)

// CollectionInfo describes a collection.
type CollectionInfo struct {
	ID        int64
	Schema    schema.Schema
	ShardsNum int
	CreatedAt time.Time
}

// LoadStatus is the in-memory load state of a named collection or partition.
type LoadStatus struct {
	Name      string
	ID        int64
	CreatedAt time.Time
	// InMemoryPercentage is 100 when fully loaded.
	InMemoryPercentage int64
}

// Loaded reports whether the entity is fully in memory.
func (s LoadStatus) Loaded() bool { return s.InMemoryPercentage >= 100 }

// IndexState is the build state of an index.
type IndexState int32

// Index build states.
const (
	IndexStateNone IndexState = iota
	IndexStateUnissued
	IndexStateInProgress
	IndexStateFinished
	IndexStateFailed
)

func (s IndexState) String() string {
	switch s {
	case IndexStateUnissued:
		return "Unissued"
	case IndexStateInProgress:
		return "InProgress"
	case IndexStateFinished:
		return "Finished"
	case IndexStateFailed:
		return "Failed"
	default:
		return "None"
	}
}

// IndexInfo describes one index and its build progress.
type IndexInfo struct {
	IndexName   string
	Field       string
	IndexType   schema.IndexType
	Metric      schema.MetricType
	Params      map[string]string
	State       IndexState
	FailReason  string
	IndexedRows int64
	TotalRows   int64
}

// Mutation reports the outcome of an insert or delete.
type Mutation struct {
	InsertCount int64
	DeleteCount int64
	// IDs holds the primary keys touched, int64 or string.
	IntIDs []int64
	StrIDs []string
	// Timestamp is the server timestamp of the mutation.
	Timestamp uint64
}

// Hit is one ranked search result.
type Hit struct {
	ID     any
	Score  float32
	Fields map[string]any
}

// SearchResults holds one ranked hit list per query.
type SearchResults struct {
	Queries [][]Hit
}

// QueryResults holds the rows matched by a query.
type QueryResults struct {
	Rows []map[string]any
}

// FlushResult maps each flushed collection to its sealed segment IDs.
// Pending lists collections whose flush was not confirmed in a sync wait.
type FlushResult struct {
	Segments map[string][]int64
	Pending  []string
}
