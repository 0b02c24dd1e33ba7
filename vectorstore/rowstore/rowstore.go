// Package rowstore implements vectorstore.Store as human-readable JSON,
// one file per document at {dir}/{file_id}_embeddings.json.
package rowstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/aqua777/vaultrag/internal/kinds"
	"github.com/aqua777/vaultrag/vectorstore"
)

const suffix = "_embeddings.json"

// Store is the JSON row-format vectorstore.Store.
type Store struct{}

// New constructs a Store.
func New() *Store { return &Store{} }

func fileName(fileID string) string {
	return fileID + suffix
}

// Save writes set to dir/{file_id}_embeddings.json, via a temp file and
// rename so readers never observe a partial write.
func (s *Store) Save(dir string, set *vectorstore.PersistedEmbeddingSet) error {
	set.StorageFormat = "json"
	set.EmbeddingCount = len(set.Embeddings)

	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("rowstore: marshal %s: %w", set.FileID, err)
	}

	finalPath := filepath.Join(dir, fileName(set.FileID))
	tmp, err := os.CreateTemp(dir, ".tmp-"+set.FileID+"-*")
	if err != nil {
		return fmt.Errorf("rowstore: create temp file: %w: %v", kinds.PersistFailed, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("rowstore: write %s: %w: %v", set.FileID, kinds.PersistFailed, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rowstore: close %s: %w: %v", set.FileID, kinds.PersistFailed, err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rowstore: rename %s: %w: %v", set.FileID, kinds.PersistFailed, err)
	}

	return nil
}

// Load reads dir/{file_id}_embeddings.json.
func (s *Store) Load(dir, fileID string) (*vectorstore.PersistedEmbeddingSet, error) {
	path := filepath.Join(dir, fileName(fileID))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rowstore: read %s: %w: %v", fileID, kinds.PersistFailed, err)
	}

	var set vectorstore.PersistedEmbeddingSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("rowstore: unmarshal %s: %w: %v", fileID, kinds.PersistFailed, err)
	}
	return &set, nil
}

// LoadAll enumerates every *_embeddings.json file under dir.
func (s *Store) LoadAll(dir string) ([]*vectorstore.PersistedEmbeddingSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("rowstore: list %s: %w: %v", dir, kinds.PersistFailed, err)
	}

	var sets []*vectorstore.PersistedEmbeddingSet
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		fileID := strings.TrimSuffix(e.Name(), suffix)
		set, err := s.Load(dir, fileID)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}
