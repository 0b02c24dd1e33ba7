// Command vaultrag is a manual-exercise CLI over service.Service: ingest
// a file, then search the library it was added to.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/aqua777/vaultrag/embedding"
	"github.com/aqua777/vaultrag/embedding/openaiembedder"
	"github.com/aqua777/vaultrag/extractor"
	"github.com/aqua777/vaultrag/ingest"
	"github.com/aqua777/vaultrag/internal/config"
	"github.com/aqua777/vaultrag/paths"
	"github.com/aqua777/vaultrag/search"
	"github.com/aqua777/vaultrag/service"
	"github.com/aqua777/vaultrag/tokenizer"
	"github.com/aqua777/vaultrag/upload"
	"github.com/aqua777/vaultrag/vectorstore"
	"github.com/aqua777/vaultrag/vectorstore/columnarstore"
	"github.com/aqua777/vaultrag/vectorstore/rowstore"
)

func main() {
	uploadPath := flag.String("upload", "", "path to a file to ingest")
	userID := flag.String("user", "", "user id (email-shaped)")
	query := flag.String("query", "", "search query to run after ingest")
	algorithm := flag.String("algorithm", "cosine", "search algorithm: cosine | hybrid")
	limit := flag.Int("limit", 5, "max search results")
	stats := flag.Bool("stats", false, "print library stats for -user and exit")
	flag.Parse()

	if *userID == "" {
		log.Fatalf("please provide a user id using -user")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	slog.SetLogLoggerLevel(parseLogLevel(cfg.LogLevel))

	svc := buildService(cfg)

	if *stats {
		printStats(svc, *userID)
		return
	}

	ctx := context.Background()

	if *uploadPath != "" {
		f, err := os.Open(*uploadPath)
		if err != nil {
			log.Fatalf("failed to open %q: %v", *uploadPath, err)
		}
		defer f.Close()

		result, err := svc.Ingest(ctx, f, filepath.Base(*uploadPath), *userID, "")
		if err != nil {
			log.Fatalf("ingest failed: %v", err)
		}
		fmt.Printf("queued document %s (%d bytes, %s)\n", result.DocumentID, result.Size, result.Mime)
	}

	if *query == "" {
		return
	}

	waitForLibrary(svc, *userID)

	resp, err := svc.SearchLibrary(ctx, *userID, *query, *algorithm, *limit)
	if err != nil {
		log.Fatalf("search failed: %v", err)
	}

	fmt.Printf("found %d results (%s, %v)\n", len(resp.Results), resp.Algorithm, resp.ExecutionTime)
	for _, r := range resp.Results {
		fmt.Printf("[%d] score=%.4f doc=%s chunk=%d file=%s\n", r.Rank, r.Score, r.DocumentID, r.ChunkIndex, r.SourceFilename)
	}
}

func buildService(cfg *config.Config) *service.Service {
	resolver := paths.NewResolver(cfg.BaseDir)
	registry := extractor.NewRegistry()

	tok, err := tokenizer.New(cfg.TokenizerName)
	if err != nil {
		log.Fatalf("failed to build tokenizer: %v", err)
	}

	embedder := embedding.Service(openaiembedder.NewClient(cfg.EmbeddingAPIKey, ""))

	store := selectStore(cfg.VectorStorageType)

	workers := cfg.IngestWorkerCount
	if workers <= 0 {
		workers = defaultWorkers()
	}
	queue := ingest.NewQueue(workers, workers*4, slog.Default())
	queue.Start(context.Background())

	bounded := ingest.NewBoundedEmbedder(embedder, int64(cfg.EmbedConcurrency))

	deps := ingest.Deps{
		Extractors: registry,
		Tokenizer:  tok,
		Embedder:   bounded,
		Store:      store,
		Timeout:    time.Duration(cfg.PipelineTimeoutSecs) * time.Second,
	}

	gate := &upload.Gate{
		Resolver:           resolver,
		Registry:           registry,
		Queue:              queue,
		MaxFileSize:        cfg.MaxFileSize,
		IngestDeps:         deps,
		ChunkSize:          cfg.ChunkSize,
		OverlapFraction:    cfg.ChunkOverlapPercent,
		TokenizerName:      cfg.TokenizerName,
		EmbeddingModel:     cfg.EmbeddingModel,
		EmbeddingBatchSize: cfg.EmbeddingBatchSize,
		StorageFormat:      cfg.VectorStorageType,
	}

	searchEngine := &search.Engine{Store: store, Embedder: embedder, Alpha: cfg.HybridAlpha}

	return service.New(resolver, gate, queue, searchEngine, store)
}

func selectStore(storageType string) vectorstore.Store {
	if storageType == "hdf5" {
		return columnarstore.New()
	}
	return rowstore.New()
}

func defaultWorkers() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 4
}

func printStats(svc *service.Service, userID string) {
	stats, err := svc.LibraryStatsFor(userID)
	if err != nil {
		log.Fatalf("failed to load library stats: %v", err)
	}
	if !stats.Exists {
		fmt.Println("no library found for user")
		return
	}
	fmt.Printf("documents=%d chunks=%d embedded=%d raw_bytes=%d models=%v\n",
		stats.DocumentCount, stats.ChunkCount, stats.EmbeddedChunkCount, stats.TotalRawUploadBytes, stats.DistinctModels)
}

// waitForLibrary gives the background pipeline a short, bounded window
// to finish before the CLI searches; a real caller would instead poll
// library stats or accept that a just-ingested document isn't searchable
// yet.
func waitForLibrary(svc *service.Service, userID string) {
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		stats, err := svc.LibraryStatsFor(userID)
		if err == nil && stats.Exists && stats.DocumentCount > 0 {
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
