// Package config builds the immutable process-wide configuration from
// environment variables exactly once at startup. Core components never call
// os.Getenv themselves; they take a *Config (or one of its sub-structs)
// constructed here, the same separation the teacher's llm/models.LLMConfig
// draws between "where a value comes from" and "what uses the value".
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultBaseDir           = "./data"
	DefaultMaxFileSize       = 52_428_800
	DefaultVectorStorage     = "json"
	DefaultLogLevel          = "INFO"
	DefaultChunkSize         = 512
	DefaultChunkOverlapPct   = 0.10
	DefaultTokenizerName     = "gpt-4"
	DefaultEmbeddingModel    = "text-embedding-3-small"
	DefaultEmbeddingBatch    = 96
	DefaultEmbedRetries      = 2
	DefaultPipelineTimeoutS  = 300
	DefaultIngestWorkers     = 0 // 0 => runtime.NumCPU()
	DefaultEmbedConcurrency  = 4
	DefaultSearchHybridAlpha = 0.7
)

// Config is the fully-resolved, read-only configuration for one process.
type Config struct {
	EmbeddingAPIKey     string
	BaseDir             string
	MaxFileSize         int64
	VectorStorageType   string // "json" | "hdf5"
	LogLevel            string
	ChunkSize           int
	ChunkOverlapPercent float64
	TokenizerName       string
	EmbeddingModel      string
	EmbeddingBatchSize  int
	EmbedMaxRetries     int
	PipelineTimeoutSecs int
	IngestWorkerCount   int
	EmbedConcurrency    int
	HybridAlpha         float64
}

// Load reads a .env file if present (ignored if missing, the same lenient
// behaviour godotenv.Load already has) and resolves Config from the
// environment. EMBEDDING_API_KEY is the only variable spec.md requires.
func Load() (*Config, error) {
	_ = godotenv.Load()

	apiKey := os.Getenv("EMBEDDING_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("config: EMBEDDING_API_KEY is required")
	}

	cfg := &Config{
		EmbeddingAPIKey:     apiKey,
		BaseDir:             getString("BASE_DIR", DefaultBaseDir),
		MaxFileSize:         getInt64("MAX_FILE_SIZE", DefaultMaxFileSize),
		VectorStorageType:   strings.ToLower(getString("VECTOR_STORAGE_TYPE", DefaultVectorStorage)),
		LogLevel:            strings.ToUpper(getString("LOG_LEVEL", DefaultLogLevel)),
		ChunkSize:           getInt("CHUNK_SIZE", DefaultChunkSize),
		ChunkOverlapPercent: getFloat("CHUNK_OVERLAP_PERCENT", DefaultChunkOverlapPct),
		TokenizerName:       getString("TOKENIZER_NAME", DefaultTokenizerName),
		EmbeddingModel:      getString("EMBEDDING_MODEL", DefaultEmbeddingModel),
		EmbeddingBatchSize:  getInt("EMBEDDING_BATCH_SIZE", DefaultEmbeddingBatch),
		EmbedMaxRetries:     getInt("EMBEDDING_MAX_RETRIES", DefaultEmbedRetries),
		PipelineTimeoutSecs: getInt("PIPELINE_TIMEOUT_SECONDS", DefaultPipelineTimeoutS),
		IngestWorkerCount:   getInt("INGEST_WORKERS", DefaultIngestWorkers),
		EmbedConcurrency:    getInt("EMBED_CONCURRENCY", DefaultEmbedConcurrency),
		HybridAlpha:         getFloat("SEARCH_HYBRID_ALPHA", DefaultSearchHybridAlpha),
	}

	if cfg.VectorStorageType != "json" && cfg.VectorStorageType != "hdf5" {
		return nil, fmt.Errorf("config: VECTOR_STORAGE_TYPE must be json or hdf5, got %q", cfg.VectorStorageType)
	}

	return cfg, nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
