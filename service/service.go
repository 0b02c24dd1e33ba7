// Package service is the top-level facade over the ingest pipeline,
// search engine, and library bookkeeping: plain Go methods, not HTTP
// handlers, for a caller (CLI, test harness, or a future transport
// layer) to drive.
package service

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aqua777/vaultrag/ingest"
	"github.com/aqua777/vaultrag/internal/config"
	"github.com/aqua777/vaultrag/paths"
	"github.com/aqua777/vaultrag/search"
	"github.com/aqua777/vaultrag/upload"
	"github.com/aqua777/vaultrag/vectorstore"
)

// IngestResult is what Ingest returns synchronously to the caller.
type IngestResult struct {
	DocumentID string
	Size       int64
	Mime       string
	Queued     bool
}

// LibraryStats is the library-stats endpoint response.
type LibraryStats struct {
	Exists               bool
	DocumentCount        int
	ChunkCount           int
	EmbeddedChunkCount   int
	TotalRawUploadBytes  int64
	DistinctModels       []string
}

// HealthStatus is the health endpoint response.
type HealthStatus struct {
	Alive bool
}

// Service wires a path resolver, an upload gate, an ingest queue, and a
// search engine into the five operations spec.md §6 names.
type Service struct {
	Resolver *paths.Resolver
	Gate     *upload.Gate
	Queue    *ingest.Queue
	Search   *search.Engine
	Store    vectorstore.Store
}

// New builds a Service from resolved configuration and collaborators.
// Callers are expected to have already started queue's worker pool via
// queue.Start.
func New(resolver *paths.Resolver, gate *upload.Gate, queue *ingest.Queue, searchEngine *search.Engine, store vectorstore.Store) *Service {
	return &Service{Resolver: resolver, Gate: gate, Queue: queue, Search: searchEngine, Store: store}
}

// Ingest accepts an upload and enqueues it for background processing.
func (s *Service) Ingest(goCtx context.Context, r io.Reader, filename, userID, description string) (*IngestResult, error) {
	result, err := s.Gate.Accept(goCtx, r, filename, userID, description)
	if err != nil {
		return nil, err
	}
	return &IngestResult{DocumentID: result.DocumentID, Size: result.Size, Mime: result.Mime, Queued: true}, nil
}

// SearchLibrary runs a search over userID's persisted library.
func (s *Service) SearchLibrary(goCtx context.Context, userID, query, algorithm string, limit int) (*search.SearchResponse, error) {
	up := s.Resolver.For(userID)
	return s.Search.Search(goCtx, up.ProcessedVectors, userID, query, algorithm, limit)
}

// LibraryStatsFor reports counts and the distinct embedding model
// identifiers present in userID's library (the stats supplement
// spec.md §6 doesn't name but which the mixed-model search restriction
// makes useful).
func (s *Service) LibraryStatsFor(userID string) (*LibraryStats, error) {
	up := s.Resolver.For(userID)

	if _, err := os.Stat(up.Root); os.IsNotExist(err) {
		return &LibraryStats{Exists: false}, nil
	}

	sets, err := s.Store.LoadAll(up.ProcessedVectors)
	if err != nil {
		return nil, fmt.Errorf("service: library stats: %w", err)
	}

	modelSet := make(map[string]bool)
	stats := &LibraryStats{Exists: true, DocumentCount: len(sets)}
	for _, set := range sets {
		for _, chunk := range set.Embeddings {
			stats.ChunkCount++
			if len(chunk.Embedding) > 0 {
				stats.EmbeddedChunkCount++
			}
			if chunk.Model != "" {
				modelSet[chunk.Model] = true
			}
		}
	}
	for model := range modelSet {
		stats.DistinctModels = append(stats.DistinctModels, model)
	}

	stats.TotalRawUploadBytes, err = totalBytes(up.RawUploads)
	if err != nil {
		return nil, fmt.Errorf("service: library stats: raw upload bytes: %w", err)
	}

	return stats, nil
}

// Algorithms returns the static list of supported search algorithms.
func (s *Service) Algorithms() []string {
	return search.Algorithms
}

// Health reports liveness unconditionally.
func (s *Service) Health() HealthStatus {
	return HealthStatus{Alive: true}
}

func totalBytes(dir string) (int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	var total int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}

// DefaultHybridAlpha mirrors config.DefaultSearchHybridAlpha so callers
// assembling a search.Engine without going through config.Load still
// get the spec-correct default.
const DefaultHybridAlpha = config.DefaultSearchHybridAlpha
