package extractor

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVExtractor extracts text from CSV files, serializing each row as
// tab-joined cells, the same convention XLSXExtractor uses so the
// downstream chunker sees a uniform shape.
type CSVExtractor struct{}

// NewCSVExtractor constructs a CSVExtractor.
func NewCSVExtractor() *CSVExtractor { return &CSVExtractor{} }

func (e *CSVExtractor) MimeTypes() []string  { return []string{"text/csv"} }
func (e *CSVExtractor) Extensions() []string { return []string{"csv"} }

func (e *CSVExtractor) Extract(r io.Reader) (string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var out strings.Builder
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("extractor: read csv: %w", err)
		}
		if out.Len() > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(strings.Join(record, "\t"))
	}

	return out.String(), nil
}
