// Package upload implements the streaming upload gate: validate,
// durably write, detect MIME, and enqueue for background ingestion.
package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"

	"github.com/aqua777/vaultrag/extractor"
	"github.com/aqua777/vaultrag/ingest"
	"github.com/aqua777/vaultrag/internal/kinds"
	"github.com/aqua777/vaultrag/paths"
)

const defaultBufferSize = 8 * 1024 // 8 KiB

// userIDPattern is a basic email-like shape: non-empty local and domain
// parts separated by '@', with at least one '.' in the domain.
var userIDPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Result is what the upload gate returns synchronously to the client.
type Result struct {
	DocumentID string
	Size       int64
	Mime       string
}

// Gate validates, streams to disk under a size cap, detects MIME, and
// enqueues an ingest job. It never blocks on pipeline completion.
type Gate struct {
	Resolver    *paths.Resolver
	Registry    *extractor.Registry
	Queue       *ingest.Queue
	MaxFileSize int64
	BufferSize  int

	// IngestDeps is passed through to every enqueued ingest.Job.
	IngestDeps ingest.Deps
	// ChunkSize, OverlapFraction, TokenizerName, EmbeddingModel,
	// EmbeddingBatchSize, StorageFormat configure each enqueued
	// ingest.Context.
	ChunkSize          int
	OverlapFraction    float64
	TokenizerName      string
	EmbeddingModel     string
	EmbeddingBatchSize int
	StorageFormat      string
}

// Accept validates userID, streams r to a raw_uploads file
// under the configured size cap, detects MIME, and enqueues the ingest
// pipeline. It returns as soon as the raw file is durably written.
func (g *Gate) Accept(goCtx context.Context, r io.Reader, filename, userID, description string) (*Result, error) {
	if !userIDPattern.MatchString(userID) {
		return nil, fmt.Errorf("upload: invalid user id %q: %w", userID, kinds.InvalidUser)
	}

	up, err := g.Resolver.EnsureUserDirs(userID)
	if err != nil {
		return nil, fmt.Errorf("upload: ensure user dirs: %w: %v", kinds.IOError, err)
	}

	docID := uuid.NewString()

	maxSize := g.MaxFileSize
	if maxSize <= 0 {
		maxSize = 50 * 1024 * 1024
	}
	bufSize := g.BufferSize
	if bufSize <= 0 {
		bufSize = defaultBufferSize
	}

	rawPath := filepath.Join(up.RawUploads, docID+"_"+filename)
	f, err := os.OpenFile(rawPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("upload: open raw file: %w: %v", kinds.IOError, err)
	}

	const sniffHeaderSize = 3072

	var total int64
	buf := make([]byte, bufSize)
	var sniffHeader []byte
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			total += int64(n)
			if total > maxSize {
				f.Close()
				os.Remove(rawPath)
				return nil, fmt.Errorf("upload: exceeds max size %d: %w", maxSize, kinds.TooLarge)
			}
			if _, werr := f.Write(buf[:n]); werr != nil {
				f.Close()
				os.Remove(rawPath)
				return nil, fmt.Errorf("upload: write raw file: %w: %v", kinds.IOError, werr)
			}
			if len(sniffHeader) < sniffHeaderSize {
				need := sniffHeaderSize - len(sniffHeader)
				if need > n {
					need = n
				}
				sniffHeader = append(sniffHeader, buf[:need]...)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			f.Close()
			os.Remove(rawPath)
			return nil, fmt.Errorf("upload: read source: %w: %v", kinds.IOError, readErr)
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(rawPath)
		return nil, fmt.Errorf("upload: close raw file: %w: %v", kinds.IOError, err)
	}

	mime, ext := extractor.DetectMime(sniffHeader, filename)
	if _, err := g.Registry.Resolve(mime, ext); err != nil {
		os.Remove(rawPath)
		return nil, fmt.Errorf("upload: unsupported type %q: %w", mime, kinds.UnsupportedType)
	}

	ctx := ingest.NewContext(docID, userID, filename, rawPath, up)
	ctx.ChunkSize = g.ChunkSize
	ctx.OverlapFraction = g.OverlapFraction
	ctx.TokenizerName = g.TokenizerName
	ctx.EmbeddingModel = g.EmbeddingModel
	ctx.EmbeddingBatchSize = g.EmbeddingBatchSize
	ctx.StorageFormat = g.StorageFormat
	ctx.Metadata["description"] = description

	g.Queue.Enqueue(ingest.Job{Ctx: ctx, Deps: g.IngestDeps})

	return &Result{DocumentID: docID, Size: total, Mime: mime}, nil
}
