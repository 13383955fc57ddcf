package sniff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectSignatures(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
		want string
	}{
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, "image/png"},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "image/jpeg"},
		{"pdf", []byte("%PDF-1.7 rest"), "application/pdf"},
		{"zip", []byte{0x50, 0x4B, 0x03, 0x04, 0x14}, "application/zip"},
		{"webp", []byte("RIFF\x10\x00\x00\x00WEBPVP8 "), "image/webp"},
		{"gif87", []byte("GIF87a......"), "image/gif"},
		{"gif89", []byte("GIF89a......"), "image/gif"},
		{"bmp", []byte("BM\x36\x00"), "image/bmp"},
		{"tiff-le", []byte("II*\x00\x08"), "image/tiff"},
		{"tiff-be", []byte("MM\x00*\x08"), "image/tiff"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// A misleading filename must not override the signature.
			assert.Equal(t, tc.want, Detect("notes.txt", tc.raw))
		})
	}
}

func TestDetectDataURLWins(t *testing.T) {
	raw := []byte("data:image/png;base64,iVBORw0KGgo=")
	assert.Equal(t, "image/png", Detect("whatever.pdf", raw))
}

func TestDetectExtensionFallback(t *testing.T) {
	assert.Equal(t, "text/csv", Detect("report.csv", []byte("a,b\n1,2\n")))
	assert.Equal(t, "application/pdf", Detect("doc.pdf", []byte("not really")))
	assert.Equal(t, "image/jpeg", Detect("photo.JPEG", []byte("garbage")))
}

func TestDetectUnknown(t *testing.T) {
	assert.Equal(t, Unknown, Detect("mystery.qqq", []byte("no signature here")))
	assert.Equal(t, Unknown, Detect("", nil))
}
