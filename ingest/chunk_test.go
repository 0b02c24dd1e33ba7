package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aqua777/vaultrag/tokenizer"
)

// sequentialTokenizer is a deterministic tokenizer test double: token id N
// decodes to the literal word "wN", and Encode parses that word back into
// N. Unlike a real BPE encoder, any contiguous slice of token ids survives
// an Encode(Decode(slice)) round trip unchanged, which is exactly what lets
// this test assert ChunkStep's windows and overlap by raw integer identity
// instead of trusting a real encoder's merge behavior at arbitrary cut
// points.
type sequentialTokenizer struct{}

var _ tokenizer.Tokenizer = sequentialTokenizer{}

func (sequentialTokenizer) Name() string { return "sequential-test" }

func (sequentialTokenizer) Encode(text string) []int {
	if text == "" {
		return nil
	}
	words := strings.Fields(text)
	toks := make([]int, len(words))
	for i, w := range words {
		var n int
		fmt.Sscanf(w, "w%d", &n)
		toks[i] = n
	}
	return toks
}

func (sequentialTokenizer) Decode(tokens []int) string {
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = fmt.Sprintf("w%d", t)
	}
	return strings.Join(words, " ")
}

// TestChunkWindowsAndOverlapMatchSpec reproduces the worked example of a
// 1000-token document at chunk_size=512, overlap_fraction=0.1: windows
// [0,512), [461,973), [922,1000), each pair overlapping by exactly
// O=51 tokens, with the emitted chunk indices covering 0..N-1 densely.
func (s *IngestPipelineTestSuite) TestChunkWindowsAndOverlapMatchSpec() {
	const totalTokens = 1000
	full := make([]int, totalTokens)
	for i := range full {
		full[i] = i
	}
	tok := sequentialTokenizer{}
	text := tok.Decode(full)

	s.Require().Equal(full, tok.Encode(text), "fake tokenizer must round-trip the full token range")

	convertedPath := filepath.Join(s.up.ProcessedText, "long.txt")
	s.Require().NoError(os.WriteFile(convertedPath, []byte(text), 0o644))

	ctx := NewContext("doc-overlap", "u1@example.com", "long.txt", "", s.up)
	ctx.ChunkSize = 512
	ctx.OverlapFraction = 0.1
	ctx.Metadata["converted_text_path"] = convertedPath
	ctx.Metadata["converted_base"] = "long"

	step := NewChunkStep(ctx, tok)
	s.Require().NoError(step.Execute(context.Background(), ctx.Context))

	files, _ := ctx.Metadata["chunk_files"].([]string)
	s.Require().Len(files, 3, "a 1000 token document at chunk_size=512/overlap_fraction=0.1 must yield exactly three windows")
	s.Equal(3, ctx.Metadata["chunk_count"])

	wantWindows := [][2]int{{0, 512}, {461, 973}, {922, 1000}}
	const overlapTokens = 51

	chunkTokens := make([][]int, len(files))
	for i, f := range files {
		data, err := os.ReadFile(f)
		s.Require().NoError(err)
		toks := tok.Encode(string(data))
		chunkTokens[i] = toks

		want := wantWindows[i]
		s.Require().Len(toks, want[1]-want[0], "chunk %d token count", i)
		s.Equal(full[want[0]:want[1]], toks, "chunk %d must be the exact token window %v", i, want)
	}

	for i := 0; i < len(chunkTokens)-1; i++ {
		cur, next := chunkTokens[i], chunkTokens[i+1]
		s.Require().GreaterOrEqual(len(cur), overlapTokens)
		s.Require().GreaterOrEqual(len(next), overlapTokens)
		suffix := cur[len(cur)-overlapTokens:]
		prefix := next[:overlapTokens]
		s.Equal(suffix, prefix, "chunk %d's trailing %d tokens must equal chunk %d's leading %d tokens", i, overlapTokens, i+1, overlapTokens)
	}

	// Dense, contiguous index coverage: every token 0..N-1 appears, and
	// consecutive windows advance start by exactly S-O with no gaps.
	seen := make(map[int]bool, totalTokens)
	for _, toks := range chunkTokens {
		for _, t := range toks {
			seen[t] = true
		}
	}
	s.Len(seen, totalTokens)
	for i := 0; i < totalTokens; i++ {
		s.True(seen[i], "token %d must be covered by some chunk", i)
	}
}
