package param

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/domain/schema"
)

func TestNewSearch_TargetExclusivity(t *testing.T) {
	base := Search{Collection: "docs", TopK: 1, Vectors: [][]float32{{0.1, 0.2}}}

	tests := []struct {
		name    string
		mutate  func(*Search)
		wantMsg string
	}{
		{"neither", func(*Search) {}, "either a vector field or a text field"},
		{"both", func(s *Search) { s.VectorField, s.TextField = "vec", "text" }, "only one of"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			_, err := NewSearch(p)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, domain.ErrInvalidParam) {
				t.Errorf("error %v is not ErrInvalidParam", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want %q", err, tt.wantMsg)
			}
		})
	}
}

func TestNewSearch_BlankVectorFieldIsTextSearch(t *testing.T) {
	p, err := NewSearch(Search{Collection: "docs", VectorField: "  ", TextField: "body", TopK: 3, Texts: []string{"q"}})
	if err != nil {
		t.Fatalf("NewSearch: %v", err)
	}
	if p.IsVectorSearch() || !p.IsTextSearch() {
		t.Errorf("IsVectorSearch() = %v, IsTextSearch() = %v; want text search", p.IsVectorSearch(), p.IsTextSearch())
	}
	if p.TargetField() != "body" {
		t.Errorf("TargetField() = %q, want body", p.TargetField())
	}
	if p.Metric != schema.MetricInvalid {
		t.Errorf("Metric = %q, want unset for text search", p.Metric)
	}
	if p.NQ() != 1 {
		t.Errorf("NQ() = %d, want 1", p.NQ())
	}
}

func TestNewSearch_Vector(t *testing.T) {
	vecs := [][]float32{{1, 2}, {3, 4}}
	p, err := NewSearch(Search{Collection: "docs", VectorField: "vec", TopK: 3, Vectors: vecs})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Metric != schema.MetricL2 {
		t.Errorf("Metric = %q, want L2 default", p.Metric)
	}
	if p.NQ() != 2 || p.TargetField() != "vec" {
		t.Errorf("NQ() = %d, TargetField() = %q", p.NQ(), p.TargetField())
	}
	vecs[0][0] = 99
	if p.Vectors[0][0] != 1 {
		t.Error("NewSearch did not copy vectors")
	}
}

func TestNewSearch_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		p       Search
		wantMsg string
	}{
		{"zero topk", Search{Collection: "c", VectorField: "v", Vectors: [][]float32{{1}}}, "TopK"},
		{"no vectors", Search{Collection: "c", VectorField: "v", TopK: 1}, "vectors cannot be empty"},
		{"ragged", Search{Collection: "c", VectorField: "v", TopK: 1, Vectors: [][]float32{{1, 2}, {1}}}, "no.1 vector"},
		{"bad metric", Search{Collection: "c", VectorField: "v", TopK: 1, Vectors: [][]float32{{1}}, Metric: "HAMMING"}, "metric type is incorrect"},
		{"no texts", Search{Collection: "c", TextField: "t", TopK: 1}, "texts cannot be empty"},
		{"texts with vectors", Search{Collection: "c", TextField: "t", TopK: 1, Texts: []string{"a"}, Vectors: [][]float32{{1}}}, "vectors cannot be set"},
		{"blank collection", Search{Collection: " ", VectorField: "v", TopK: 1, Vectors: [][]float32{{1}}}, "collection name"},
		{"session consistency", Search{Collection: "c", TextField: "t", TopK: 1, Texts: []string{"a"}, Consistency: 1}, "consistency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSearch(tt.p)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want %q", err, tt.wantMsg)
			}
		})
	}
}

func TestNewInsert(t *testing.T) {
	_, err := NewInsert("docs", "",
		Column{Name: "id", Values: []int64{1, 2}},
		Column{Name: "vec", Values: [][]float32{{1}, {2}}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name    string
		cols    []Column
		wantMsg string
	}{
		{"no columns", nil, "fields cannot be empty"},
		{"unequal", []Column{{"id", []int64{1}}, {"n", []int32{1, 2}}}, "must be equal"},
		{"zero rows", []Column{{"id", []int64{}}}, "row count is zero"},
		{"not a list", []Column{{"id", int64(1)}}, "must be a list"},
		{"duplicate", []Column{{"id", []int64{1}}, {"id", []int64{2}}}, "duplicate field"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInsert("docs", "", tt.cols...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want %q", err, tt.wantMsg)
			}
		})
	}
}

func TestNewCreateIndex(t *testing.T) {
	p, err := NewCreateIndex(CreateIndex{
		Collection: "docs", Field: "vec", IndexType: schema.IndexIVFFlat, Metric: schema.MetricIP,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.IndexName != schema.DefaultIndexName {
		t.Errorf("IndexName = %q, want default", p.IndexName)
	}

	if _, err := NewCreateIndex(CreateIndex{Collection: "docs", Field: "vec", IndexType: schema.IndexFlat}); err == nil {
		t.Error("expected error for missing metric")
	}
	if _, err := NewCreateIndex(CreateIndex{Collection: "docs", Field: "vec", IndexType: "BITMAP", Metric: schema.MetricL2}); err == nil {
		t.Error("expected error for unknown index type")
	}
}

func TestNewQueryAndDelete(t *testing.T) {
	if _, err := NewQuery(Query{Collection: "docs"}); err == nil {
		t.Error("query without expression should fail")
	}
	if _, err := NewQuery(Query{Collection: "docs", Expr: "id > 0", Limit: -1}); err == nil {
		t.Error("negative limit should fail")
	}
	if _, err := NewDelete("docs", "", "id in [1]"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := NewDelete("docs", "", ""); err == nil {
		t.Error("delete without expression should fail")
	}
}

func TestLoadDefaults(t *testing.T) {
	p, err := NewLoadCollection("docs", 0, Sync{Wait: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Replicas != 1 {
		t.Errorf("Replicas = %d, want 1", p.Replicas)
	}
	if _, err := NewLoadPartitions("docs", nil, 1, Sync{}); err == nil {
		t.Error("load without partitions should fail")
	}
	if _, err := NewFlush(nil, Sync{}); err == nil {
		t.Error("flush without collections should fail")
	}
	if _, err := NewGetFlushState(); err == nil {
		t.Error("flush state without segments should fail")
	}
}
