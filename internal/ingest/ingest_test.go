package ingest

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regisleandro/alfredo-ai/internal/domain"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 10, B: 10, A: 128})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func csvBytes(rows int) []byte {
	var b strings.Builder
	b.WriteString("gpa_code,collection,qtde\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "%d,produtos,%d\n", 8500+i, i)
	}
	return []byte(b.String())
}

func TestNormalizeEmptyBatch(t *testing.T) {
	assert.Nil(t, Normalize(nil))
	assert.Nil(t, Normalize([]domain.FilePayload{}))
}

func TestNormalizeCSVSummaryOverThreshold(t *testing.T) {
	result := Normalize([]domain.FilePayload{{Name: "big.csv", Content: csvBytes(25)}})
	require.NotNil(t, result)
	assert.False(t, result.HasImages())

	assert.Contains(t, result.Text, "=== CSV Content from big.csv ===")
	assert.Contains(t, result.Text, "CSV contains 25 rows and 3 columns.")
	assert.Contains(t, result.Text, "Columns: gpa_code, collection, qtde")
	assert.Contains(t, result.Text, "First 5 rows:")
	assert.Contains(t, result.Text, "Last 5 rows:")
	// Middle rows must not leak into the summary.
	assert.NotContains(t, result.Text, "8510")
}

func TestNormalizeCSVFullUnderThreshold(t *testing.T) {
	result := Normalize([]domain.FilePayload{{Name: "small.csv", Content: csvBytes(10)}})
	require.NotNil(t, result)

	assert.NotContains(t, result.Text, "CSV contains")
	for i := 0; i < 10; i++ {
		assert.Contains(t, result.Text, fmt.Sprintf("%d", 8500+i))
	}
}

func TestNormalizeImageProducesDataURL(t *testing.T) {
	result := Normalize([]domain.FilePayload{{Name: "photo.png", Content: pngBytes(t)}})
	require.NotNil(t, result)
	require.True(t, result.HasImages())
	require.Len(t, result.Images, 1)

	payload := result.Images[0]
	assert.Equal(t, "photo.png", payload.SourceName)
	require.True(t, strings.HasPrefix(payload.DataURL, "data:image/jpeg;base64,"))

	encoded := strings.TrimPrefix(payload.DataURL, "data:image/jpeg;base64,")
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	// JPEG SOI marker.
	assert.Equal(t, []byte{0xFF, 0xD8}, decoded[:2])
}

func TestNormalizeBase64EncodedContent(t *testing.T) {
	encoded := []byte(base64.StdEncoding.EncodeToString(csvBytes(3)))
	result := Normalize([]domain.FilePayload{{Name: "data.csv", Content: encoded}})
	require.NotNil(t, result)
	assert.Contains(t, result.Text, "8500")
}

func TestNormalizeDataURLImage(t *testing.T) {
	dataURL := []byte("data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t)))
	result := Normalize([]domain.FilePayload{{Name: "pasted", Content: dataURL}})
	require.NotNil(t, result)
	assert.True(t, result.HasImages())
}

// A batch with an image and a PDF returns only the image payload; the
// PDF text is dropped. This pins the original batch-level behavior —
// it is a documented quirk, not a hypothesis.
func TestNormalizeImageWinsOverText(t *testing.T) {
	batch := []domain.FilePayload{
		{Name: "doc.pdf", Content: []byte("%PDF-1.4 not actually parseable")},
		{Name: "photo.png", Content: pngBytes(t)},
	}
	result := Normalize(batch)
	require.NotNil(t, result)
	require.True(t, result.HasImages())
	assert.Len(t, result.Images, 1)
	assert.Empty(t, result.Text)
}

func TestNormalizeCorruptPDFSurfacesErrorText(t *testing.T) {
	result := Normalize([]domain.FilePayload{{Name: "broken.pdf", Content: []byte("%PDF-1.4 garbage")}})
	require.NotNil(t, result)
	assert.False(t, result.HasImages())
	assert.Contains(t, result.Text, "=== PDF Content from broken.pdf ===")
	assert.Contains(t, result.Text, "Error extracting text from PDF")
}

func TestNormalizeCorruptImageSurfacesErrorText(t *testing.T) {
	raw := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, []byte("truncated")...)
	result := Normalize([]domain.FilePayload{{Name: "bad.png", Content: raw}})
	require.NotNil(t, result)
	assert.False(t, result.HasImages())
	assert.Contains(t, result.Text, "Error processing image bad.png")
}

func TestNormalizeUnsupportedType(t *testing.T) {
	result := Normalize([]domain.FilePayload{{Name: "archive.qqq", Content: []byte("random bytes")}})
	require.NotNil(t, result)
	assert.Contains(t, result.Text, "Unsupported file type for archive.qqq: unknown")
}
