// Package vectorstore persists and loads a document's embedded chunks in
// one of two interchangeable on-disk formats: a human-readable JSON row
// format, and a compressed binary columnar format.
package vectorstore

// EmbeddedChunk is one chunk's persisted record: its text, position,
// token count, and embedding vector tagged with the model that produced
// it.
type EmbeddedChunk struct {
	Filename   string    `json:"filename"`
	ChunkIndex int       `json:"chunk_index"`
	Text       string    `json:"text"`
	TokenCount int       `json:"token_count"`
	Embedding  []float32 `json:"embedding"`
	Model      string    `json:"model"`
}

// SetMetadata is the document-level metadata carried alongside a
// PersistedEmbeddingSet.
type SetMetadata struct {
	UserID          string `json:"user_id"`
	OriginalFilename string `json:"original_filename"`
	ChunkSize       int    `json:"chunk_size"`
	Model           string `json:"model"`
}

// PersistedEmbeddingSet is the complete set of embedded chunks for one
// document, as loaded from or about to be written to a Store.
type PersistedEmbeddingSet struct {
	FileID         string          `json:"file_id"`
	Embeddings     []EmbeddedChunk `json:"embeddings"`
	Metadata       SetMetadata     `json:"metadata"`
	StorageFormat  string          `json:"storage_format"`
	EmbeddingCount int             `json:"embedding_count"`
}

// Dimension returns the vector dimension of this set, or 0 if it has no
// embedded chunks.
func (s *PersistedEmbeddingSet) Dimension() int {
	if len(s.Embeddings) == 0 {
		return 0
	}
	return len(s.Embeddings[0].Embedding)
}

// Store persists and loads PersistedEmbeddingSets for a user's library.
// A load must see either the full persisted set or nothing, never a
// partial write.
type Store interface {
	// Save durably writes set to dir, keyed by set.FileID.
	Save(dir string, set *PersistedEmbeddingSet) error
	// Load reads the persisted set for fileID from dir.
	Load(dir, fileID string) (*PersistedEmbeddingSet, error)
	// LoadAll enumerates every persisted set under dir belonging to this
	// Store's format.
	LoadAll(dir string) ([]*PersistedEmbeddingSet, error)
}
