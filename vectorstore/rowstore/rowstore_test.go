package rowstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/aqua777/vaultrag/vectorstore"
)

type RowStoreTestSuite struct {
	suite.Suite
	dir   string
	store *Store
}

func TestRowStoreTestSuite(t *testing.T) {
	suite.Run(t, new(RowStoreTestSuite))
}

func (s *RowStoreTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.store = New()
}

func sampleSet(fileID string) *vectorstore.PersistedEmbeddingSet {
	return &vectorstore.PersistedEmbeddingSet{
		FileID: fileID,
		Embeddings: []vectorstore.EmbeddedChunk{
			{Filename: "doc_chunk_000.txt", ChunkIndex: 0, Text: "hello world", TokenCount: 2, Embedding: []float32{0.1, 0.2, 0.3}, Model: "text-embedding-3-small"},
			{Filename: "doc_chunk_001.txt", ChunkIndex: 1, Text: "goodbye world", TokenCount: 2, Embedding: []float32{0.4, 0.5, 0.6}, Model: "text-embedding-3-small"},
		},
		Metadata: vectorstore.SetMetadata{
			UserID:           "u1@example.com",
			OriginalFilename: "doc.txt",
			ChunkSize:        512,
			Model:            "text-embedding-3-small",
		},
	}
}

func (s *RowStoreTestSuite) TestRoundTrip() {
	set := sampleSet("doc-1")
	s.Require().NoError(s.store.Save(s.dir, set))

	loaded, err := s.store.Load(s.dir, "doc-1")
	s.Require().NoError(err)

	s.Equal(set.FileID, loaded.FileID)
	s.Equal("json", loaded.StorageFormat)
	s.Equal(2, loaded.EmbeddingCount)
	s.Require().Len(loaded.Embeddings, 2)
	s.Equal(set.Embeddings[0].Embedding, loaded.Embeddings[0].Embedding)
	s.Equal(set.Embeddings[1].Text, loaded.Embeddings[1].Text)
	s.Equal(set.Metadata, loaded.Metadata)
}

func (s *RowStoreTestSuite) TestLoadAllEnumeratesDirectory() {
	s.Require().NoError(s.store.Save(s.dir, sampleSet("doc-1")))
	s.Require().NoError(s.store.Save(s.dir, sampleSet("doc-2")))

	sets, err := s.store.LoadAll(s.dir)
	s.Require().NoError(err)
	s.Len(sets, 2)
}

func (s *RowStoreTestSuite) TestLoadAllEmptyDirIsNotError() {
	sets, err := s.store.LoadAll(s.dir)
	s.Require().NoError(err)
	s.Empty(sets)
}

func (s *RowStoreTestSuite) TestSaveIsIdempotentByteForByte() {
	set := sampleSet("doc-3")
	path := filepath.Join(s.dir, "doc-3_embeddings.json")
	s.Require().NoError(s.store.Save(s.dir, set))
	first, err := s.store.Load(s.dir, "doc-3")
	s.Require().NoError(err)
	firstBytes, err := os.ReadFile(path)
	s.Require().NoError(err)

	s.Require().NoError(s.store.Save(s.dir, set))
	second, err := s.store.Load(s.dir, "doc-3")
	s.Require().NoError(err)
	secondBytes, err := os.ReadFile(path)
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Equal(firstBytes, secondBytes)
}
