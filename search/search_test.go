package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/aqua777/vaultrag/embedding"
	"github.com/aqua777/vaultrag/internal/kinds"
	"github.com/aqua777/vaultrag/vectorstore"
	"github.com/aqua777/vaultrag/vectorstore/rowstore"
)

type EngineTestSuite struct {
	suite.Suite
	dir   string
	store vectorstore.Store
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (s *EngineTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.store = rowstore.New()
}

// queryAlignedEmbedder returns vectors that are a deterministic function
// of the text, close to the query vector for "fox" and far for unrelated
// text, so cosine ranking is predictable without a real model.
type queryAlignedEmbedder struct{}

func (queryAlignedEmbedder) Embed(_ context.Context, texts []string, _ string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if containsFox(t) {
			out[i] = []float32{1, 0}
		} else {
			out[i] = []float32{0, 1}
		}
	}
	return out, nil
}

func containsFox(s string) bool {
	for i := 0; i+3 <= len(s); i++ {
		if s[i:i+3] == "fox" {
			return true
		}
	}
	return false
}

func (s *EngineTestSuite) seed(fileID string, chunks []vectorstore.EmbeddedChunk, model string) {
	set := &vectorstore.PersistedEmbeddingSet{
		FileID:     fileID,
		Embeddings: chunks,
		Metadata:   vectorstore.SetMetadata{UserID: "u1", Model: model},
	}
	s.Require().NoError(s.store.Save(s.dir, set))
}

func (s *EngineTestSuite) TestCosineRanksFoxChunkFirst() {
	s.seed("doc-a", []vectorstore.EmbeddedChunk{
		{Filename: "a_chunk_000.txt", ChunkIndex: 0, Text: "the quick brown fox jumps", Embedding: []float32{1, 0}, Model: "m"},
		{Filename: "a_chunk_001.txt", ChunkIndex: 1, Text: "completely unrelated text", Embedding: []float32{0, 1}, Model: "m"},
	}, "m")

	e := &Engine{Store: s.store, Embedder: queryAlignedEmbedder{}}
	resp, err := e.Search(context.Background(), s.dir, "u1", "where is the fox", "cosine", 10)
	s.Require().NoError(err)
	s.Equal("cosine", resp.Algorithm)
	s.Require().Len(resp.Results, 2)
	s.Equal(0, resp.Results[0].ChunkIndex)
	s.Equal(1, resp.Results[0].Rank)
	s.GreaterOrEqual(resp.Results[0].Score, resp.Results[1].Score)
	s.Equal(2, resp.TotalChunks)
	s.Equal(1, resp.TotalDocuments)
}

func (s *EngineTestSuite) TestLimitClampsToChunkCount() {
	s.seed("doc-a", []vectorstore.EmbeddedChunk{
		{Filename: "a_chunk_000.txt", ChunkIndex: 0, Text: "fox", Embedding: []float32{1, 0}, Model: "m"},
	}, "m")

	e := &Engine{Store: s.store, Embedder: queryAlignedEmbedder{}}
	resp, err := e.Search(context.Background(), s.dir, "u1", "fox", "cosine", 50)
	s.Require().NoError(err)
	s.Len(resp.Results, 1)
}

func (s *EngineTestSuite) TestEmptyLibraryFails() {
	e := &Engine{Store: s.store, Embedder: queryAlignedEmbedder{}}
	_, err := e.Search(context.Background(), s.dir, "u1", "fox", "cosine", 10)
	s.Require().Error(err)
	s.True(errors.Is(err, kinds.EmptyLibrary))
}

func (s *EngineTestSuite) TestUnknownAlgorithmFails() {
	s.seed("doc-a", []vectorstore.EmbeddedChunk{
		{Filename: "a_chunk_000.txt", ChunkIndex: 0, Text: "fox", Embedding: []float32{1, 0}, Model: "m"},
	}, "m")

	e := &Engine{Store: s.store, Embedder: queryAlignedEmbedder{}}
	_, err := e.Search(context.Background(), s.dir, "u1", "fox", "bogus", 10)
	s.Require().Error(err)
	s.True(errors.Is(err, kinds.UnknownAlgorithm))
}

func (s *EngineTestSuite) TestHybridBlendsLexicalAndCosine() {
	s.seed("doc-a", []vectorstore.EmbeddedChunk{
		{Filename: "a_chunk_000.txt", ChunkIndex: 0, Text: "the quick fox fox fox", Embedding: []float32{1, 0}, Model: "m"},
		{Filename: "a_chunk_001.txt", ChunkIndex: 1, Text: "a fox appears once here", Embedding: []float32{1, 0}, Model: "m"},
	}, "m")

	e := &Engine{Store: s.store, Embedder: queryAlignedEmbedder{}}
	resp, err := e.Search(context.Background(), s.dir, "u1", "fox", "hybrid", 10)
	s.Require().NoError(err)
	s.Equal("hybrid", resp.Algorithm)
	s.Require().Len(resp.Results, 2)
	s.Equal(0, resp.Results[0].ChunkIndex)
}

func (s *EngineTestSuite) TestMixedModelsRestrictsToDominant() {
	s.seed("doc-a", []vectorstore.EmbeddedChunk{
		{Filename: "a_chunk_000.txt", ChunkIndex: 0, Text: "fox one", Embedding: []float32{1, 0}, Model: "model-a"},
		{Filename: "a_chunk_001.txt", ChunkIndex: 1, Text: "fox two", Embedding: []float32{1, 0}, Model: "model-a"},
	}, "model-a")
	s.seed("doc-b", []vectorstore.EmbeddedChunk{
		{Filename: "b_chunk_000.txt", ChunkIndex: 0, Text: "fox three", Embedding: []float32{1, 0}, Model: "model-b"},
	}, "model-b")

	e := &Engine{Store: s.store, Embedder: queryAlignedEmbedder{}}
	resp, err := e.Search(context.Background(), s.dir, "u1", "fox", "cosine", 10)
	s.Require().NoError(err)
	s.Equal("model-a", resp.RestrictedToModel)
	s.Equal(2, resp.TotalChunks)
}

type bm25TestSuite struct {
	suite.Suite
}

func TestBM25TestSuite(t *testing.T) {
	suite.Run(t, new(bm25TestSuite))
}

func (s *bm25TestSuite) TestRareTermScoresHigherThanCommonTerm() {
	docs := []candidate{
		{text: "the cat sat on the mat"},
		{text: "the dog sat on the mat"},
		{text: "a rare gizmo appeared"},
	}
	scores := bm25Scores([]string{"gizmo"}, docs)
	s.Greater(scores[2], scores[0])
	s.Equal(0.0, scores[0])

	commonScores := bm25Scores([]string{"the"}, docs)
	s.Greater(scores[2], commonScores[0])
}

func (s *bm25TestSuite) TestEmptyQueryScoresZero() {
	docs := []candidate{{text: "anything at all"}}
	scores := bm25Scores(nil, docs)
	s.Equal([]float64{0}, scores)
}

func TestCosineSimilarityZeroNormIsZero(t *testing.T) {
	s := cosineSimilarity([]float32{0, 0}, []float32{1, 1})
	if s != 0 {
		t.Fatalf("expected 0, got %v", s)
	}
}

func TestMinMaxNormalizeDegenerateSetIsZero(t *testing.T) {
	out := minMaxNormalize([]float64{5, 5, 5})
	for _, v := range out {
		if v != 0 {
			t.Fatalf("expected all zero, got %v", out)
		}
	}
}
