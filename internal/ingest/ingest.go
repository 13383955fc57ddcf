// Package ingest normalizes uploaded files into either textual context
// or vision-ready image payloads.
package ingest

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/regisleandro/alfredo-ai/internal/domain"
	"github.com/regisleandro/alfredo-ai/internal/sniff"
)

// Normalize processes an upload batch. It returns nil when the batch
// produced nothing.
//
// If any file in the batch normalizes to an image payload, only the
// image payloads are returned and text extracted from the other files
// is discarded. This mirrors the original control flow exactly; see
// DESIGN.md before changing it.
func Normalize(batch []domain.FilePayload) *domain.NormalizedContent {
	if len(batch) == 0 {
		return nil
	}

	var texts []string
	var images []domain.ImagePayload

	for _, file := range batch {
		payload, declaredType := decodePayload(file.Content)

		mediaType := declaredType
		if mediaType == "" {
			mediaType = sniff.Detect(file.Name, payload)
		}

		switch {
		case mediaType == "application/pdf":
			text := extractPDF(payload)
			texts = append(texts, fmt.Sprintf("=== PDF Content from %s ===\n%s\n", file.Name, text))

		case strings.HasPrefix(mediaType, "image/"):
			dataURL, err := reencodeImage(payload)
			if err != nil {
				texts = append(texts, fmt.Sprintf("Error processing image %s: %s", file.Name, err))
				continue
			}
			images = append(images, domain.ImagePayload{SourceName: file.Name, DataURL: dataURL})

		case mediaType == "text/csv":
			text := extractCSV(payload)
			texts = append(texts, fmt.Sprintf("=== CSV Content from %s ===\n%s\n", file.Name, text))

		default:
			label := mediaType
			if label == "" {
				label = "unknown"
			}
			texts = append(texts, fmt.Sprintf("Unsupported file type for %s: %s", file.Name, label))
		}
	}

	if len(images) > 0 {
		return &domain.NormalizedContent{Images: images}
	}
	if len(texts) > 0 {
		return &domain.NormalizedContent{Text: strings.Join(texts, "\n")}
	}
	return nil
}

// decodePayload resolves the raw bytes to process. Data URLs yield
// their decoded body plus the declared type; other content is base64
// decoded best-effort, falling back to the bytes as received.
func decodePayload(content []byte) (payload []byte, declaredType string) {
	if sniff.IsDataURL(content) {
		declaredType = sniff.Detect("", content)
		if _, body, found := bytes.Cut(content, []byte(",")); found {
			if decoded, err := base64.StdEncoding.DecodeString(string(body)); err == nil {
				return decoded, declaredType
			}
			return body, declaredType
		}
		return content, declaredType
	}

	trimmed := strings.TrimSpace(string(content))
	if decoded, err := base64.StdEncoding.DecodeString(trimmed); err == nil && len(decoded) > 0 {
		return decoded, ""
	}
	return content, ""
}

// withTempFile writes payload to a temporary file, runs fn on its path
// and removes the file on every exit path.
func withTempFile(payload []byte, fn func(path string) (string, error)) (string, error) {
	tmp, err := os.CreateTemp("", "alfredo-upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	return fn(path)
}
