package ingest

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/aqua777/vaultrag/internal/kinds"
	pl "github.com/aqua777/vaultrag/pipeline"
	"github.com/aqua777/vaultrag/tokenizer"
)

// ChunkStep slices the converted text's token sequence into
// tokenizer-exact, overlapping windows and writes each window back to
// text under raw_chunks/.
type ChunkStep struct {
	ctx *Context
	tok tokenizer.Tokenizer
}

// NewChunkStep constructs a ChunkStep bound to ctx, using tok to encode
// and decode token windows.
func NewChunkStep(ctx *Context, tok tokenizer.Tokenizer) *ChunkStep {
	return &ChunkStep{ctx: ctx, tok: tok}
}

func (s *ChunkStep) Name() string       { return "chunk" }
func (s *ChunkStep) MaxRetries() int    { return 0 }
func (s *ChunkStep) ShouldSkip(*pl.Context) (bool, string) { return false, "" }
func (s *ChunkStep) ShouldRetry(attempt int, err error) bool {
	return pl.DefaultShouldRetry(attempt, s.MaxRetries())
}

func (s *ChunkStep) Execute(goCtx context.Context, _ *pl.Context) error {
	textPathAny, ok := s.ctx.Metadata["converted_text_path"]
	if !ok {
		return fmt.Errorf("chunk: missing converted_text_path in context: %w", kinds.ChunkingFailed)
	}
	textPath := textPathAny.(string)

	raw, err := os.ReadFile(textPath)
	if err != nil {
		return fmt.Errorf("chunk: read converted text: %w: %v", kinds.IOError, err)
	}

	chunkSize := s.ctx.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 512
	}
	overlapFraction := s.ctx.OverlapFraction
	if overlapFraction <= 0 {
		overlapFraction = 0.10
	}

	tokens := s.tok.Encode(string(raw))
	L := len(tokens)
	S := chunkSize
	O := int(math.Floor(float64(S) * overlapFraction))

	type window struct {
		start, end int
	}
	var windows []window
	if L > 0 {
		start := 0
		for {
			end := start + S
			if end > L {
				end = L
			}
			windows = append(windows, window{start, end})
			if end >= L {
				break
			}
			start = end - O
		}
	}

	base, _ := s.ctx.Metadata["converted_base"].(string)
	if base == "" {
		base = "document"
	}

	width := 3
	if maxIndex := len(windows) - 1; maxIndex >= 1000 {
		width = len(fmt.Sprintf("%d", maxIndex))
	}

	var chunkFiles []string
	for i, w := range windows {
		text := s.tok.Decode(tokens[w.start:w.end])
		name := fmt.Sprintf("%s_chunk_%0*d.txt", base, width, i)
		outPath := filepath.Join(s.ctx.Paths.RawChunks, name)
		if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
			return fmt.Errorf("chunk: write %s: %w: %v", name, kinds.IOError, err)
		}
		chunkFiles = append(chunkFiles, outPath)
	}
	sort.Strings(chunkFiles)

	s.ctx.Metadata["chunks_dir"] = s.ctx.Paths.RawChunks
	s.ctx.Metadata["chunk_count"] = len(chunkFiles)
	s.ctx.Metadata["chunk_files"] = chunkFiles
	return nil
}
