package search

import (
	"context"
	"fmt"
	"time"

	"github.com/aqua777/vaultrag/embedding"
	"github.com/aqua777/vaultrag/internal/kinds"
	"github.com/aqua777/vaultrag/vectorstore"
)

// Algorithms is the static list returned by the algorithms endpoint.
var Algorithms = []string{"cosine", "hybrid"}

// Engine ranks a user's persisted chunks against a query. Store and
// Embedder are process-wide and stateless, the same sharing model
// spec.md §5 requires of the VectorStore and EmbeddingService.
type Engine struct {
	Store    vectorstore.Store
	Embedder embedding.Service
	// Alpha is the cosine/lexical blend weight for the hybrid
	// algorithm; defaults to 0.7 when zero.
	Alpha float64
}

// Search embeds query, loads every persisted set for userID under
// vectorsDir, scores every chunk with the named algorithm, and returns
// the top limit results.
func (e *Engine) Search(goCtx context.Context, vectorsDir, userID, query, algorithm string, limit int) (*SearchResponse, error) {
	started := time.Now()

	if algorithm != "cosine" && algorithm != "hybrid" {
		return nil, fmt.Errorf("search: unknown algorithm %q: %w", algorithm, kinds.UnknownAlgorithm)
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	sets, err := e.Store.LoadAll(vectorsDir)
	if err != nil {
		return nil, fmt.Errorf("search: load library: %w", err)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("search: user %q has no persisted documents: %w", userID, kinds.EmptyLibrary)
	}

	model, restricted := dominantModel(sets)

	var cands []candidate
	for _, set := range sets {
		for _, chunk := range set.Embeddings {
			if chunk.Model != model {
				continue
			}
			cands = append(cands, candidate{
				documentID: set.FileID,
				chunkIndex: chunk.ChunkIndex,
				text:       chunk.Text,
				filename:   chunk.Filename,
				vector:     chunk.Embedding,
			})
		}
	}

	totalDocuments := len(sets)
	totalChunks := len(cands)

	queryVectors, err := e.Embedder.Embed(goCtx, []string{query}, model)
	if err != nil {
		return nil, fmt.Errorf("search: embed query: %w: %v", kinds.EmbeddingFailed, err)
	}
	if len(queryVectors) != 1 {
		return nil, fmt.Errorf("search: embedding service returned %d vectors for one query: %w", len(queryVectors), kinds.EmbeddingFailed)
	}
	queryVector := queryVectors[0]

	for i := range cands {
		cands[i].cosine = cosineSimilarity(queryVector, cands[i].vector)
	}

	var score func(candidate) float64
	alpha := e.Alpha
	if alpha <= 0 {
		alpha = defaultAlpha
	}

	switch algorithm {
	case "cosine":
		score = func(c candidate) float64 { return c.cosine }
	case "hybrid":
		lexScores := bm25Scores(tokenizeQuery(query), cands)
		normCosine := minMaxNormalize(extractCosine(cands))
		normLexical := minMaxNormalize(lexScores)
		for i := range cands {
			cands[i].lexical = lexScores[i]
			cands[i].blended = alpha*normCosine[i] + (1-alpha)*normLexical[i]
		}
		score = func(c candidate) float64 { return c.blended }
	}

	sortCandidates(cands, score)

	if limit > len(cands) {
		limit = len(cands)
	}
	results := make([]SearchResult, limit)
	for i := 0; i < limit; i++ {
		results[i] = SearchResult{
			Rank:           i + 1,
			Score:          score(cands[i]),
			DocumentID:     cands[i].documentID,
			ChunkIndex:     cands[i].chunkIndex,
			Text:           cands[i].text,
			SourceFilename: cands[i].filename,
		}
	}

	resp := &SearchResponse{
		Algorithm:      algorithm,
		Results:        results,
		TotalDocuments: totalDocuments,
		TotalChunks:    totalChunks,
		ExecutionTime:  time.Since(started),
	}
	if restricted {
		resp.RestrictedToModel = model
	}
	return resp, nil
}

func extractCosine(cands []candidate) []float64 {
	out := make([]float64, len(cands))
	for i, c := range cands {
		out[i] = c.cosine
	}
	return out
}

// dominantModel returns the most common embedding model identifier
// across all chunks in sets, and whether more than one distinct model
// is present (in which case the search restricts itself to the
// dominant one and reports the restriction).
func dominantModel(sets []*vectorstore.PersistedEmbeddingSet) (string, bool) {
	counts := make(map[string]int)
	for _, set := range sets {
		for _, chunk := range set.Embeddings {
			counts[chunk.Model]++
		}
	}
	var best string
	var bestCount int
	distinct := 0
	for model, count := range counts {
		distinct++
		if count > bestCount {
			best, bestCount = model, count
		}
	}
	return best, distinct > 1
}
