// Package openaiembedder implements embedding.Service against an
// OpenAI-compatible embeddings endpoint.
package openaiembedder

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/aqua777/vaultrag/internal/kinds"
)

// Client wraps github.com/sashabaranov/go-openai's embeddings endpoint,
// generalizing the teacher's single-string llm/openai.Client.Embeddings
// into the batched embedding.Service contract: the whole batch is sent
// as one Input slice instead of one request per string.
type Client struct {
	client *openai.Client
}

// NewClient builds a Client from an API key and, optionally, a custom
// base URL (empty uses the OpenAI default).
func NewClient(apiKey, baseURL string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{client: openai.NewClientWithConfig(cfg)}
}

// NewClientWithOpenAIClient wraps an already-constructed openai.Client,
// primarily for tests that point at a mock server.
func NewClientWithOpenAIClient(c *openai.Client) *Client {
	return &Client{client: c}
}

func (c *Client) Embed(ctx context.Context, texts []string, model string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	em := openai.EmbeddingModel(model)
	if em == "" {
		em = openai.SmallEmbedding3
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: em,
	})
	if err != nil {
		return nil, mapError(err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding: got %d vectors for %d inputs: %w", len(resp.Data), len(texts), kinds.InvalidResponse)
	}

	vectors := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding: response index %d out of range: %w", d.Index, kinds.InvalidResponse)
		}
		vectors[d.Index] = d.Embedding
	}

	return vectors, nil
}

// mapError classifies an error from the OpenAI SDK into the module's
// error-kind sentinels so the pipeline's retry policy and top-level
// status mapping can make the right decision.
func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403:
			return fmt.Errorf("embedding: %w", kinds.AuthError)
		case apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500:
			return fmt.Errorf("embedding: provider unavailable (status %d): %w", apiErr.HTTPStatusCode, kinds.ProviderUnavailable)
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("embedding: %w", kinds.ProviderUnavailable)
	}

	return fmt.Errorf("embedding: %w: %v", kinds.ProviderUnavailable, err)
}
