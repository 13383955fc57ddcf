package ingest

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF returns the concatenated page text of a PDF. Extraction
// failures are returned as a descriptive string, never as an error:
// the ingestion pipeline must not fail a turn over a bad upload.
func extractPDF(payload []byte) (text string) {
	defer func() {
		// The PDF parser panics on some malformed files.
		if r := recover(); r != nil {
			text = fmt.Sprintf("Error extracting text from PDF: %v", r)
		}
	}()

	result, err := withTempFile(payload, func(path string) (string, error) {
		file, reader, err := pdf.Open(path)
		if err != nil {
			return "", err
		}
		defer file.Close()

		var pages []string
		for i := 1; i <= reader.NumPage(); i++ {
			page := reader.Page(i)
			if page.V.IsNull() {
				continue
			}
			content, err := page.GetPlainText(nil)
			if err != nil {
				return "", err
			}
			pages = append(pages, content)
		}
		return strings.Join(pages, "\n"), nil
	})
	if err != nil {
		return fmt.Sprintf("Error extracting text from PDF: %s", err)
	}
	return result
}
