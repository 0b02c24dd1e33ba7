// Package kinds defines the closed set of error kinds surfaced by the core
// engine. Components wrap a Kind with fmt.Errorf("...: %w", kind) so callers
// can recover it with errors.Is, same as the teacher's llm/openai client
// wraps raw provider errors rather than returning ad-hoc strings.
package kinds

import "errors"

type Kind error

var (
	InvalidUser        Kind = errors.New("invalid user id")
	UnsupportedType     Kind = errors.New("unsupported content type")
	TooLarge            Kind = errors.New("upload exceeds size limit")
	IOError             Kind = errors.New("io error")
	ExtractionFailed    Kind = errors.New("text extraction failed")
	ChunkingFailed       Kind = errors.New("chunking failed")
	ProviderUnavailable Kind = errors.New("embedding provider unavailable")
	AuthError           Kind = errors.New("embedding provider auth error")
	InvalidResponse     Kind = errors.New("invalid embedding response")
	PersistFailed       Kind = errors.New("persist failed")
	EmptyLibrary        Kind = errors.New("library has no persisted documents")
	UnknownAlgorithm    Kind = errors.New("unknown search algorithm")
	EmbeddingFailed     Kind = errors.New("query embedding failed")
	TimedOut            Kind = errors.New("pipeline timed out")
	Cancelled           Kind = errors.New("pipeline cancelled")
)
