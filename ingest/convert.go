package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aqua777/vaultrag/extractor"
	"github.com/aqua777/vaultrag/internal/kinds"
	pl "github.com/aqua777/vaultrag/pipeline"
)

// ConvertStep produces a UTF-8 text file at processed_text/{base}.txt
// from the document's raw upload, dispatching through an
// extractor.Registry by detected MIME type.
type ConvertStep struct {
	ctx      *Context
	registry *extractor.Registry
}

// NewConvertStep constructs a ConvertStep bound to ctx.
func NewConvertStep(ctx *Context, registry *extractor.Registry) *ConvertStep {
	return &ConvertStep{ctx: ctx, registry: registry}
}

func (s *ConvertStep) Name() string       { return "convert" }
func (s *ConvertStep) MaxRetries() int    { return 0 }
func (s *ConvertStep) ShouldSkip(*pl.Context) (bool, string) { return false, "" }
func (s *ConvertStep) ShouldRetry(attempt int, err error) bool {
	return pl.DefaultShouldRetry(attempt, s.MaxRetries())
}

func (s *ConvertStep) Execute(goCtx context.Context, _ *pl.Context) error {
	raw, err := os.ReadFile(s.ctx.InputPath)
	if err != nil {
		return fmt.Errorf("convert: read raw upload: %w: %v", kinds.IOError, err)
	}

	mime, ext := extractor.DetectMime(raw, s.ctx.OriginalFilename)
	ex, err := s.registry.Resolve(mime, ext)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(s.ctx.OriginalFilename, filepath.Ext(s.ctx.OriginalFilename))
	outPath := filepath.Join(s.ctx.Paths.ProcessedText, base+".txt")

	text, err := ex.Extract(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("convert: extract: %w: %v", kinds.ExtractionFailed, err)
	}

	if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
		os.Remove(outPath)
		return fmt.Errorf("convert: write output: %w: %v", kinds.IOError, err)
	}

	s.ctx.Metadata["converted_text_path"] = outPath
	s.ctx.Metadata["converted_base"] = base
	return nil
}
