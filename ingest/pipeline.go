package ingest

import (
	"context"
	"time"

	"github.com/aqua777/vaultrag/embedding"
	"github.com/aqua777/vaultrag/extractor"
	pl "github.com/aqua777/vaultrag/pipeline"
	"github.com/aqua777/vaultrag/tokenizer"
	"github.com/aqua777/vaultrag/vectorstore"
)

const defaultPipelineTimeout = 5 * time.Minute

// Deps bundles the collaborators the ingest pipeline needs: an
// extractor registry, a tokenizer, an embedding service, and a vector
// store. All four are process-wide and stateless, per spec's
// concurrency model.
type Deps struct {
	Extractors *extractor.Registry
	Tokenizer  tokenizer.Tokenizer
	Embedder   embedding.Service
	Store      vectorstore.Store
	Timeout    time.Duration
}

// BuildPipeline assembles the concrete Convert -> Chunk -> Embed ->
// Persist pipeline over ctx using deps, and returns the engine and step
// list ready for Engine.Execute.
func BuildPipeline(ctx *Context, deps Deps) (*pl.Engine, []pl.Step) {
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = defaultPipelineTimeout
	}

	engine := pl.NewEngine("ingest", timeout)
	steps := []pl.Step{
		NewConvertStep(ctx, deps.Extractors),
		NewChunkStep(ctx, deps.Tokenizer),
		NewEmbedStep(ctx, deps.Embedder, deps.Tokenizer),
		NewPersistStep(ctx, deps.Store),
	}
	return engine, steps
}

// Run executes the full ingest pipeline for ctx and returns the
// resulting ExecutionReport. It does not surface step errors to the
// caller directly — per spec, pipeline errors are recorded in the
// report and structured logs, not propagated to the upload-gate client.
func Run(goCtx context.Context, ctx *Context, deps Deps) *pl.ExecutionReport {
	engine, steps := BuildPipeline(ctx, deps)
	return engine.Execute(goCtx, ctx.Context, steps)
}
