package extractor

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// DOCXExtractor extracts text from .docx files via the document's own
// document.xml content, stripped of markup.
type DOCXExtractor struct{}

// NewDOCXExtractor constructs a DOCXExtractor.
func NewDOCXExtractor() *DOCXExtractor { return &DOCXExtractor{} }

func (e *DOCXExtractor) MimeTypes() []string {
	return []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"}
}
func (e *DOCXExtractor) Extensions() []string { return []string{"docx", "doc"} }

func (e *DOCXExtractor) Extract(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("extractor: read docx: %w", err)
	}

	rc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("extractor: open docx: %w", err)
	}
	defer rc.Close()

	editable := rc.Editable()
	return stripDocxMarkup(editable.GetContent()), nil
}

var (
	docxParaBreakRe = regexp.MustCompile(`(?i)</w:p>`)
	docxTagRe       = regexp.MustCompile(`<[^>]+>`)
)

// stripDocxMarkup turns document.xml's raw WordprocessingML content into
// plain text: paragraph boundaries become newlines, remaining tags are
// dropped.
func stripDocxMarkup(xml string) string {
	withBreaks := docxParaBreakRe.ReplaceAllString(xml, "</w:p>\n")
	stripped := docxTagRe.ReplaceAllString(withBreaks, "")
	lines := strings.Split(stripped, "\n")
	out := lines[:0]
	for _, l := range lines {
		if trimmed := strings.TrimSpace(l); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n")
}
