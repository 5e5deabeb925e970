// Package embedding enforces token budgets on a text embedder.
package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/metrics"
)

// DefaultMaxBatch is the largest number of texts sent in one provider call.
const DefaultMaxBatch = 256

// Budget is what Embedder needs from a Tracker.
type Budget interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// Embedder checks a token budget before every provider call and records the spend.
// Provider request metrics live in the transport; this layer owns the budget gauge.
type Embedder struct {
	inner    domain.Embedder
	provider string
	model    string
	budget   Budget
	maxBatch int
	logger   *zap.Logger
}

// New wraps inner. A nil budget only adds logging and batching.
func New(inner domain.Embedder, provider, model string, budget Budget, logger *zap.Logger) *Embedder {
	return &Embedder{
		inner:    inner,
		provider: provider,
		model:    model,
		budget:   budget,
		maxBatch: DefaultMaxBatch,
		logger:   logger,
	}
}

// Embed vectorizes one text.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := e.check(ctx, 1); err != nil {
		return domain.EmbeddingResult{}, err
	}

	start := time.Now()
	res, err := e.inner.Embed(ctx, text)
	if err != nil {
		e.logger.Error("Embedding request failed",
			zap.String("provider", e.provider),
			zap.String("model", e.model),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	e.record(res.TotalTokens)

	e.logger.Debug("Embedding request completed",
		zap.String("provider", e.provider),
		zap.Duration("duration", time.Since(start)),
		zap.Int("dimensions", len(res.Embedding)),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return res, nil
}

// BatchEmbed vectorizes texts in chunks of at most DefaultMaxBatch,
// re-checking the budget before each chunk.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	var out domain.BatchEmbeddingResult
	if len(texts) == 0 {
		return out, nil
	}

	start := time.Now()
	for offset := 0; offset < len(texts); offset += e.maxBatch {
		if err := e.check(ctx, len(texts)); err != nil {
			return domain.BatchEmbeddingResult{}, err
		}

		chunk := texts[offset:min(offset+e.maxBatch, len(texts))]
		res, err := domain.EmbedAll(ctx, e.inner, chunk)
		if err != nil {
			e.logger.Error("Batch embedding request failed",
				zap.String("provider", e.provider),
				zap.String("model", e.model),
				zap.Int("chunk_offset", offset),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed at %d: %w", offset, err)
		}
		e.record(res.TotalTokens)

		out.Embeddings = append(out.Embeddings, res.Embeddings...)
		out.PromptTokens += res.PromptTokens
		out.TotalTokens += res.TotalTokens
	}

	e.logger.Debug("Batch embedding completed",
		zap.String("provider", e.provider),
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("total_tokens", out.TotalTokens),
	)
	return out, nil
}

func (e *Embedder) check(ctx context.Context, texts int) error {
	if e.budget == nil {
		return nil
	}
	if err := e.budget.Check(ctx); err != nil {
		e.logger.Error("Token budget exceeded",
			zap.String("provider", e.provider),
			zap.String("model", e.model),
			zap.Int("texts", texts),
			zap.Error(err),
		)
		return fmt.Errorf("budget check: %w", err)
	}
	return nil
}

func (e *Embedder) record(tokens int) {
	if e.budget == nil || tokens <= 0 {
		return
	}
	e.budget.Record(int64(tokens))
	g := metrics.EmbeddingBudgetTokensRemaining
	g.WithLabelValues(e.provider, "daily").Set(float64(e.budget.RemainingDaily()))
	g.WithLabelValues(e.provider, "monthly").Set(float64(e.budget.RemainingMonthly()))
}
