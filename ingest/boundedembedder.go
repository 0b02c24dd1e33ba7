package ingest

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/aqua777/vaultrag/embedding"
)

// BoundedEmbedder wraps an embedding.Service with a weighted semaphore,
// bounding how many Embed calls run concurrently across all pipelines
// sharing it — the I/O-bound Embed stage gets its own concurrency cap
// independent of the CPU-bound worker pool size, per spec's
// concurrency model.
type BoundedEmbedder struct {
	inner embedding.Service
	sem   *semaphore.Weighted
}

// NewBoundedEmbedder wraps inner with a cap of maxConcurrent simultaneous
// Embed calls.
func NewBoundedEmbedder(inner embedding.Service, maxConcurrent int64) *BoundedEmbedder {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &BoundedEmbedder{inner: inner, sem: semaphore.NewWeighted(maxConcurrent)}
}

func (b *BoundedEmbedder) Embed(ctx context.Context, texts []string, model string) ([][]float32, error) {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer b.sem.Release(1)

	return b.inner.Embed(ctx, texts, model)
}
