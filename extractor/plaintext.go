package extractor

import (
	"fmt"
	"io"
	"unicode/utf8"
)

// PlainTextExtractor passes TXT/JSON/XML content through unchanged,
// validating it is well-formed UTF-8.
type PlainTextExtractor struct{}

// NewPlainTextExtractor constructs a PlainTextExtractor.
func NewPlainTextExtractor() *PlainTextExtractor { return &PlainTextExtractor{} }

func (e *PlainTextExtractor) MimeTypes() []string {
	return []string{"text/plain", "application/json", "application/xml", "text/xml"}
}
func (e *PlainTextExtractor) Extensions() []string { return []string{"txt", "json", "xml"} }

func (e *PlainTextExtractor) Extract(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("extractor: read plaintext: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("extractor: plaintext input is not valid UTF-8")
	}
	return string(data), nil
}
