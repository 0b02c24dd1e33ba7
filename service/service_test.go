package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/aqua777/vaultrag/embedding"
	"github.com/aqua777/vaultrag/extractor"
	"github.com/aqua777/vaultrag/ingest"
	"github.com/aqua777/vaultrag/paths"
	"github.com/aqua777/vaultrag/search"
	"github.com/aqua777/vaultrag/tokenizer"
	"github.com/aqua777/vaultrag/upload"
	"github.com/aqua777/vaultrag/vectorstore/rowstore"
)

type ServiceTestSuite struct {
	suite.Suite
	svc    *Service
	cancel context.CancelFunc
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func (s *ServiceTestSuite) SetupTest() {
	base := s.T().TempDir()
	resolver := paths.NewResolver(base)

	tok, err := tokenizer.New("gpt-4")
	s.Require().NoError(err)

	store := rowstore.New()
	embedder := &embedding.Mock{Dim: 4}

	deps := ingest.Deps{
		Extractors: extractor.NewRegistry(),
		Tokenizer:  tok,
		Embedder:   embedder,
		Store:      store,
	}

	queue := ingest.NewQueue(2, 8, nil)
	goCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	queue.Start(goCtx)

	gate := &upload.Gate{
		Resolver:       resolver,
		Registry:       extractor.NewRegistry(),
		Queue:          queue,
		MaxFileSize:    1024 * 1024,
		IngestDeps:     deps,
		ChunkSize:      8,
		OverlapFraction: 0.25,
		EmbeddingModel: "mock-model",
	}

	engine := &search.Engine{Store: store, Embedder: embedder}

	s.svc = New(resolver, gate, queue, engine, store)
}

func (s *ServiceTestSuite) TearDownTest() {
	s.cancel()
	s.svc.Queue.Close()
	s.svc.Queue.Wait()
}

func (s *ServiceTestSuite) TestHealthIsAlwaysAlive() {
	s.True(s.svc.Health().Alive)
}

func (s *ServiceTestSuite) TestAlgorithmsListsBoth() {
	s.ElementsMatch([]string{"cosine", "hybrid"}, s.svc.Algorithms())
}

func (s *ServiceTestSuite) TestStatsForUnknownUserDoesNotExist() {
	stats, err := s.svc.LibraryStatsFor("nobody@example.com")
	s.Require().NoError(err)
	s.False(stats.Exists)
}

func (s *ServiceTestSuite) TestIngestThenSearchThenStats() {
	result, err := s.svc.Ingest(context.Background(), strings.NewReader("the quick brown fox jumps over the lazy dog repeatedly"), "doc.txt", "u1@example.com", "")
	s.Require().NoError(err)
	s.True(result.Queued)

	up := s.svc.Resolver.For("u1@example.com")
	s.Require().Eventually(func() bool {
		sets, _ := s.svc.Store.LoadAll(up.ProcessedVectors)
		return len(sets) == 1
	}, 2*time.Second, 20*time.Millisecond)

	stats, err := s.svc.LibraryStatsFor("u1@example.com")
	s.Require().NoError(err)
	s.True(stats.Exists)
	s.Equal(1, stats.DocumentCount)
	s.Greater(stats.ChunkCount, 0)
	s.Contains(stats.DistinctModels, "mock-model")

	resp, err := s.svc.SearchLibrary(context.Background(), "u1@example.com", "fox", "cosine", 5)
	s.Require().NoError(err)
	s.NotEmpty(resp.Results)
}
