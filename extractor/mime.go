package extractor

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DetectMime sniffs the MIME type of data by inspecting its leading
// bytes, falling back to a MIME type derived from filename's extension
// when sniffing is inconclusive (mimetype.Detect never errors; it
// degrades to "application/octet-stream" instead).
func DetectMime(data []byte, filename string) (mime string, ext string) {
	ext = strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")

	detected := mimetype.Detect(data)
	mime = detected.String()
	if idx := strings.Index(mime, ";"); idx != -1 {
		mime = mime[:idx]
	}

	if len(data) == 0 || mime == "application/octet-stream" || mime == "" {
		mime = mimeFromExtension(ext)
	}

	return mime, ext
}

func mimeFromExtension(ext string) string {
	switch ext {
	case "pdf":
		return "application/pdf"
	case "docx", "doc":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case "xlsx", "xls":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "csv":
		return "text/csv"
	case "json":
		return "application/json"
	case "xml":
		return "application/xml"
	case "txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
