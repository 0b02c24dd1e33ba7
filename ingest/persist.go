package ingest

import (
	"context"
	"fmt"

	"github.com/aqua777/vaultrag/internal/kinds"
	pl "github.com/aqua777/vaultrag/pipeline"
	"github.com/aqua777/vaultrag/vectorstore"
)

// PersistStep writes the embedded chunks assembled by EmbedStep to a
// vectorstore.Store in the configured on-disk format.
type PersistStep struct {
	ctx   *Context
	store vectorstore.Store
}

// NewPersistStep constructs a PersistStep bound to ctx, persisting via
// store.
func NewPersistStep(ctx *Context, store vectorstore.Store) *PersistStep {
	return &PersistStep{ctx: ctx, store: store}
}

func (s *PersistStep) Name() string       { return "persist" }
func (s *PersistStep) MaxRetries() int    { return 1 }
func (s *PersistStep) ShouldSkip(*pl.Context) (bool, string) { return false, "" }
func (s *PersistStep) ShouldRetry(attempt int, err error) bool {
	return pl.DefaultShouldRetry(attempt, s.MaxRetries())
}

func (s *PersistStep) Execute(goCtx context.Context, _ *pl.Context) error {
	recordsAny, ok := s.ctx.Metadata["embeddings_data"]
	if !ok {
		return fmt.Errorf("persist: missing embeddings_data in context: %w", kinds.PersistFailed)
	}
	records := recordsAny.([]ChunkRecord)

	chunks := make([]vectorstore.EmbeddedChunk, len(records))
	for i, r := range records {
		chunks[i] = vectorstore.EmbeddedChunk{
			Filename:   r.Filename,
			ChunkIndex: i,
			Text:       r.Text,
			TokenCount: r.TokenCount,
			Embedding:  r.Embedding,
			Model:      r.Model,
		}
	}

	set := &vectorstore.PersistedEmbeddingSet{
		FileID:     s.ctx.DocumentID,
		Embeddings: chunks,
		Metadata: vectorstore.SetMetadata{
			UserID:           s.ctx.UserID,
			OriginalFilename: s.ctx.OriginalFilename,
			ChunkSize:        s.ctx.ChunkSize,
			Model:            s.ctx.EmbeddingModel,
		},
	}

	if err := s.store.Save(s.ctx.Paths.ProcessedVectors, set); err != nil {
		return fmt.Errorf("persist: save %s: %w", s.ctx.DocumentID, err)
	}

	s.ctx.Metadata["persisted_path"] = s.ctx.Paths.ProcessedVectors
	return nil
}
