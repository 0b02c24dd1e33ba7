// Package extractor converts an uploaded source file into UTF-8 plain
// text, dispatching on detected MIME type.
package extractor

import (
	"fmt"
	"io"

	"github.com/aqua777/vaultrag/internal/kinds"
)

// Extractor turns the bytes of one source file into UTF-8 text.
type Extractor interface {
	// Extract reads the full content of r and returns UTF-8 text.
	Extract(r io.Reader) (string, error)
	// MimeTypes lists the MIME types this Extractor handles.
	MimeTypes() []string
	// Extensions lists the file extensions (without leading dot) this
	// Extractor handles, used as a fallback when MIME sniffing is
	// inconclusive.
	Extensions() []string
}

// Registry dispatches to the right Extractor for a detected MIME type or,
// failing that, a filename extension.
type Registry struct {
	byMime map[string]Extractor
	byExt  map[string]Extractor
}

// NewRegistry builds a Registry with the standard set of extractors
// wired in (PDF, DOCX, XLSX, CSV, plain-text).
func NewRegistry() *Registry {
	r := &Registry{
		byMime: make(map[string]Extractor),
		byExt:  make(map[string]Extractor),
	}
	r.Register(NewPDFExtractor())
	r.Register(NewDOCXExtractor())
	r.Register(NewXLSXExtractor())
	r.Register(NewCSVExtractor())
	r.Register(NewPlainTextExtractor())
	return r
}

// Register adds e to the registry, indexed by every MIME type and
// extension it declares.
func (r *Registry) Register(e Extractor) {
	for _, m := range e.MimeTypes() {
		r.byMime[m] = e
	}
	for _, ext := range e.Extensions() {
		r.byExt[ext] = e
	}
}

// Resolve selects an Extractor for the given detected MIME type, falling
// back to the filename extension when the MIME type is unrecognized.
func (r *Registry) Resolve(mime, ext string) (Extractor, error) {
	if e, ok := r.byMime[mime]; ok {
		return e, nil
	}
	if e, ok := r.byExt[ext]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("extractor: no binding for mime %q ext %q: %w", mime, ext, kinds.UnsupportedType)
}
