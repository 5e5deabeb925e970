package domain

import (
	"context"
	"errors"
	"testing"
)

type stubEmbedder struct {
	result EmbeddingResult
	err    error
	got    []string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	s.got = append(s.got, text)
	return s.result, s.err
}

type stubBatchEmbedder struct {
	stubEmbedder
	batch BatchEmbeddingResult
	calls int
}

func (s *stubBatchEmbedder) BatchEmbed(_ context.Context, _ []string) (BatchEmbeddingResult, error) {
	s.calls++
	return s.batch, nil
}

func TestEmbedAll_Fallback(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{1}, TotalTokens: 2}}

	res, err := EmbedAll(context.Background(), inner, []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 2 || res.TotalTokens != 4 {
		t.Errorf("unexpected result: %+v", res)
	}
	if len(inner.got) != 2 || inner.got[1] != "b" {
		t.Errorf("texts = %v", inner.got)
	}
}

func TestEmbedAll_UsesBatch(t *testing.T) {
	inner := &stubBatchEmbedder{batch: BatchEmbeddingResult{Embeddings: [][]float32{{1}, {2}}}}

	if _, err := EmbedAll(context.Background(), inner, []string{"a", "b"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 || len(inner.got) != 0 {
		t.Errorf("batch calls = %d, single calls = %d", inner.calls, len(inner.got))
	}
}

func TestEmbedAll_BatchCountMismatch(t *testing.T) {
	inner := &stubBatchEmbedder{batch: BatchEmbeddingResult{Embeddings: [][]float32{{1}}}}

	_, err := EmbedAll(context.Background(), inner, []string{"a", "b"})
	if !errors.Is(err, ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestBatchFallback_ErrorPropagation(t *testing.T) {
	innerErr := errors.New("provider down")
	inner := &stubEmbedder{err: innerErr}

	_, err := BatchFallback(context.Background(), inner, []string{"x"})
	if !errors.Is(err, innerErr) {
		t.Errorf("expected wrapped inner error, got %v", err)
	}
}
