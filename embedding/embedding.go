// Package embedding turns batches of text into vectors via a pluggable
// provider.
package embedding

import "context"

// Service is the embedding provider contract: given an ordered batch of
// texts and a model identifier, return one vector per text in the same
// order. Implementations do not retry internally — retry/backoff for
// transient failures is the pipeline engine's job.
type Service interface {
	Embed(ctx context.Context, texts []string, model string) ([][]float32, error)
}
