package extractor

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXExtractor extracts text from spreadsheet files, serializing each
// sheet row-by-row as tab-joined cells.
type XLSXExtractor struct{}

// NewXLSXExtractor constructs an XLSXExtractor.
func NewXLSXExtractor() *XLSXExtractor { return &XLSXExtractor{} }

func (e *XLSXExtractor) MimeTypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-excel",
	}
}
func (e *XLSXExtractor) Extensions() []string { return []string{"xlsx", "xls"} }

func (e *XLSXExtractor) Extract(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("extractor: read xlsx: %w", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("extractor: open xlsx: %w", err)
	}
	defer f.Close()

	var out strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for _, row := range rows {
			if out.Len() > 0 {
				out.WriteByte('\n')
			}
			out.WriteString(strings.Join(row, "\t"))
		}
	}

	return out.String(), nil
}
