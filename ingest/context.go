// Package ingest composes the concrete Convert -> Chunk -> Embed ->
// Persist pipeline over one uploaded document, and runs it on a bounded
// background worker pool.
package ingest

import (
	"github.com/aqua777/vaultrag/paths"
	"github.com/aqua777/vaultrag/pipeline"
)

// Context carries the document-specific identifiers a PipelineContext
// needs in addition to the generic pipeline.Context metadata/results
// maps. It is not itself a context.Context; it rides alongside one, the
// same separation the teacher keeps between a request struct
// (llm/models.ChatRequest) and the ctx context.Context parameter passed
// next to it.
type Context struct {
	*pipeline.Context

	DocumentID       string
	UserID           string
	OriginalFilename string
	InputPath        string
	Paths            paths.UserPaths

	ChunkSize          int
	OverlapFraction    float64
	TokenizerName      string
	EmbeddingModel     string
	EmbeddingBatchSize int
	StorageFormat      string
}

// NewContext builds a fresh ingest Context for one document.
func NewContext(documentID, userID, originalFilename, inputPath string, up paths.UserPaths) *Context {
	return &Context{
		Context:          pipeline.NewContext(),
		DocumentID:       documentID,
		UserID:           userID,
		OriginalFilename: originalFilename,
		InputPath:        inputPath,
		Paths:            up,
	}
}
