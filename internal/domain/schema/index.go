package schema

// IndexType is the kind of index built over a field.
type IndexType string

// Index kinds. All supported kinds are vector indexes.
const (
	IndexInvalid IndexType = ""
	IndexFlat    IndexType = "FLAT"
	IndexIVFFlat IndexType = "IVF_FLAT"
	IndexIVFPQ   IndexType = "IVF_PQ"
	IndexHNSW    IndexType = "HNSW"
	IndexDiskANN IndexType = "DISKANN"
)

var vectorIndexes = map[IndexType]bool{
	IndexFlat:    true,
	IndexIVFFlat: true,
	IndexIVFPQ:   true,
	IndexHNSW:    true,
	IndexDiskANN: true,
}

// MetricType is the distance function used for vector search and indexing.
type MetricType string

// Metric kinds.
const (
	MetricInvalid MetricType = ""
	MetricL2      MetricType = "L2"
	MetricIP      MetricType = "IP"
	MetricCosine  MetricType = "COSINE"
)

// DefaultIndexName is used when an index name is not given.
const DefaultIndexName = "_default_idx"

// IsVectorIndex reports whether t indexes vectors.
func IsVectorIndex(t IndexType) bool { return vectorIndexes[t] }

// IsFloatMetric reports whether m applies to float vectors.
func IsFloatMetric(m MetricType) bool {
	return m == MetricL2 || m == MetricIP || m == MetricCosine
}

// VerifyIndexType reports whether an index of kind t may be built over f.
// Vector index kinds pair only with FloatVector fields and String fields that
// carry an embedding model.
func VerifyIndexType(t IndexType, f Field) bool {
	if !f.IsVectorCapable() {
		return false
	}
	return IsVectorIndex(t)
}
