package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aqua777/vaultrag/embedding"
	"github.com/aqua777/vaultrag/internal/kinds"
	pl "github.com/aqua777/vaultrag/pipeline"
	"github.com/aqua777/vaultrag/tokenizer"
)

// ChunkRecord is one chunk's in-memory record after embedding, assembled
// by EmbedStep and consumed by PersistStep.
type ChunkRecord struct {
	Filename   string
	Text       string
	TokenCount int
	Embedding  []float32
	Model      string
}

// EmbedStep reads every chunk file in lexicographic order, batches them,
// and calls an embedding.Service to produce one vector per chunk,
// preserving order.
type EmbedStep struct {
	ctx     *Context
	service embedding.Service
	tok     tokenizer.Tokenizer
}

// NewEmbedStep constructs an EmbedStep bound to ctx.
func NewEmbedStep(ctx *Context, service embedding.Service, tok tokenizer.Tokenizer) *EmbedStep {
	return &EmbedStep{ctx: ctx, service: service, tok: tok}
}

func (s *EmbedStep) Name() string       { return "embed" }
func (s *EmbedStep) MaxRetries() int    { return 2 }
func (s *EmbedStep) ShouldSkip(*pl.Context) (bool, string) { return false, "" }
func (s *EmbedStep) ShouldRetry(attempt int, err error) bool {
	if errors.Is(err, kinds.AuthError) || errors.Is(err, kinds.InvalidResponse) {
		return false
	}
	return pl.DefaultShouldRetry(attempt, s.MaxRetries())
}

func (s *EmbedStep) Execute(goCtx context.Context, _ *pl.Context) error {
	filesAny, ok := s.ctx.Metadata["chunk_files"]
	if !ok {
		return fmt.Errorf("embed: missing chunk_files in context: %w", kinds.EmbeddingFailed)
	}
	files := filesAny.([]string)

	batchSize := s.ctx.EmbeddingBatchSize
	if batchSize <= 0 {
		batchSize = 96
	}

	texts := make([]string, len(files))
	tokenCounts := make([]int, len(files))
	for i, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("embed: read chunk %s: %w: %v", f, kinds.IOError, err)
		}
		texts[i] = string(data)
		tokenCounts[i] = len(s.tok.Encode(texts[i]))
	}

	records := make([]ChunkRecord, len(files))
	for start := 0; start < len(files); start += batchSize {
		end := start + batchSize
		if end > len(files) {
			end = len(files)
		}

		vectors, err := s.service.Embed(goCtx, texts[start:end], s.ctx.EmbeddingModel)
		if err != nil {
			return fmt.Errorf("embed: batch [%d:%d]: %w", start, end, err)
		}
		if len(vectors) != end-start {
			return fmt.Errorf("embed: batch [%d:%d] returned %d vectors, expected %d: %w", start, end, len(vectors), end-start, kinds.InvalidResponse)
		}

		for i, v := range vectors {
			idx := start + i
			records[idx] = ChunkRecord{
				Filename:   filepath.Base(files[idx]),
				Text:       texts[idx],
				TokenCount: tokenCounts[idx],
				Embedding:  v,
				Model:      s.ctx.EmbeddingModel,
			}
		}
	}

	s.ctx.Metadata["embeddings_data"] = records
	return nil
}
