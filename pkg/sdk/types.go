package vecsearch

import (
	"github.com/kailas-cloud/vecsearch/internal/domain/param"
	"github.com/kailas-cloud/vecsearch/internal/domain/response"
	"github.com/kailas-cloud/vecsearch/internal/domain/result"
	"github.com/kailas-cloud/vecsearch/internal/domain/schema"
	"github.com/kailas-cloud/vecsearch/internal/domain/status"
	"github.com/kailas-cloud/vecsearch/internal/gateway"
	"github.com/kailas-cloud/vecsearch/internal/poller"
	"github.com/kailas-cloud/vecsearch/internal/retry"
)

// Result is the outcome of one operation. Check OK, then read Data;
// a successful sync wait that did not confirm completion sets Warning.
type Result[T any] = result.Result[T]

// Gateway performs the remote calls behind the Client.
type Gateway = gateway.Gateway

// StatusCode is the status code of a Result.
type StatusCode = status.Code

// Schema types.
type (
	Schema           = schema.Schema
	Field            = schema.Field
	FieldOption      = schema.FieldOption
	DataType         = schema.DataType
	ModelType        = schema.ModelType
	IndexType        = schema.IndexType
	MetricType       = schema.MetricType
	ConsistencyLevel = schema.ConsistencyLevel
)

// Data types.
const (
	Bool        = schema.Bool
	Int32       = schema.Int32
	Int64       = schema.Int64
	Float       = schema.Float
	Double      = schema.Double
	String      = schema.String
	FloatVector = schema.FloatVector
)

// Index kinds and metrics.
const (
	IndexFlat    = schema.IndexFlat
	IndexIVFFlat = schema.IndexIVFFlat
	IndexIVFPQ   = schema.IndexIVFPQ
	IndexHNSW    = schema.IndexHNSW
	IndexDiskANN = schema.IndexDiskANN

	MetricL2     = schema.MetricL2
	MetricIP     = schema.MetricIP
	MetricCosine = schema.MetricCosine

	ModelSimCSE = schema.ModelSimCSE

	ConsistencyStrong     = schema.ConsistencyStrong
	ConsistencyBounded    = schema.ConsistencyBounded
	ConsistencyEventually = schema.ConsistencyEventually
)

// Schema builders.
var (
	NewSchema          = schema.New
	NewField           = schema.NewField
	WithDimension      = schema.WithDimension
	WithMaxLength      = schema.WithMaxLength
	WithEmbedding      = schema.WithEmbedding
	WithDescription    = schema.WithDescription
	WithTypeParam      = schema.WithTypeParam
	WithBatchNormalize = schema.WithBatchNormalize
	PrimaryKey         = schema.PrimaryKey
	PartitionKey       = schema.PartitionKey
	AutoID             = schema.AutoID
)

// Operation parameters.
type (
	Sync                   = param.Sync
	ShowKind               = param.ShowKind
	Column                 = param.Column
	CollectionParam        = param.Collection
	CreateCollectionParam  = param.CreateCollection
	LoadCollectionParam    = param.LoadCollection
	ShowCollectionsParam   = param.ShowCollections
	PartitionParam         = param.Partition
	ShowPartitionsParam    = param.ShowPartitions
	LoadPartitionsParam    = param.LoadPartitions
	ReleasePartitionsParam = param.ReleasePartitions
	CreateIndexParam       = param.CreateIndex
	IndexParam             = param.Index
	InsertParam            = param.Insert
	DeleteParam            = param.Delete
	SearchParam            = param.Search
	QueryParam             = param.Query
	FlushParam             = param.Flush
	GetFlushStateParam     = param.GetFlushState
)

// Show filters.
const (
	ShowAll      = param.ShowAll
	ShowInMemory = param.ShowInMemory
)

// Validating parameter factories.
var (
	NewCollectionParam        = param.NewCollection
	NewCreateCollectionParam  = param.NewCreateCollection
	NewLoadCollectionParam    = param.NewLoadCollection
	NewShowCollectionsParam   = param.NewShowCollections
	NewPartitionParam         = param.NewPartition
	NewShowPartitionsParam    = param.NewShowPartitions
	NewLoadPartitionsParam    = param.NewLoadPartitions
	NewReleasePartitionsParam = param.NewReleasePartitions
	NewCreateIndexParam       = param.NewCreateIndex
	NewIndexParam             = param.NewIndex
	NewInsertParam            = param.NewInsert
	NewDeleteParam            = param.NewDelete
	NewSearchParam            = param.NewSearch
	NewQueryParam             = param.NewQuery
	NewFlushParam             = param.NewFlush
	NewGetFlushStateParam     = param.NewGetFlushState
)

// Response payloads.
type (
	CollectionInfo = response.CollectionInfo
	LoadStatus     = response.LoadStatus
	IndexInfo      = response.IndexInfo
	IndexState     = response.IndexState
	Mutation       = response.Mutation
	Hit            = response.Hit
	SearchResults  = response.SearchResults
	QueryResults   = response.QueryResults
	FlushResult    = response.FlushResult
)

// Index build states.
const (
	IndexStateNone       = response.IndexStateNone
	IndexStateUnissued   = response.IndexStateUnissued
	IndexStateInProgress = response.IndexStateInProgress
	IndexStateFinished   = response.IndexStateFinished
	IndexStateFailed     = response.IndexStateFailed
)

// Policies.
type (
	RetryPolicy      = retry.Policy
	PollPolicy       = poller.Policy
	MissingPartition = poller.MissingPartition
)

// Missing partition handling during LoadPartitions sync waits.
const (
	MissingContinue = poller.Continue
	MissingAbort    = poller.Abort
)

// HealthStatus reports gateway health.
type HealthStatus struct {
	Healthy bool
	Version string
	Reason  string
}
