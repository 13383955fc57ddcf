// Package sniff detects the media type of an uploaded byte payload.
package sniff

import (
	"bytes"
	"mime"
	"path/filepath"
	"strings"
)

// Unknown is returned when no detection rule matched.
const Unknown = ""

type signature struct {
	prefix    []byte
	mediaType string
}

var signatures = []signature{
	{[]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
	{[]byte{0xFF, 0xD8, 0xFF}, "image/jpeg"},
	{[]byte("%PDF-"), "application/pdf"},
	{[]byte{0x50, 0x4B, 0x03, 0x04}, "application/zip"},
	{[]byte{0x25, 0x50, 0x44, 0x46}, "application/pdf"},
	{[]byte("GIF87a"), "image/gif"},
	{[]byte("GIF89a"), "image/gif"},
	{[]byte("BM"), "image/bmp"},
	{[]byte("II*\x00"), "image/tiff"},
	{[]byte("MM\x00*"), "image/tiff"},
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tiff": true,
}

func init() {
	// Types missing from Go's builtin extension table.
	mime.AddExtensionType(".csv", "text/csv")
	mime.AddExtensionType(".bmp", "image/bmp")
	mime.AddExtensionType(".tiff", "image/tiff")
	mime.AddExtensionType(".txt", "text/plain")
}

// Detect returns the media type of raw, or Unknown. Priority order:
// data-URL declared type, signature bytes, filename extension, and an
// extension fallback restricted to image types.
func Detect(filename string, raw []byte) string {
	if t := dataURLType(raw); t != "" {
		return t
	}

	for _, sig := range signatures {
		if bytes.HasPrefix(raw, sig.prefix) {
			return sig.mediaType
		}
	}
	if bytes.HasPrefix(raw, []byte("RIFF")) && len(raw) >= 12 && bytes.Equal(raw[8:12], []byte("WEBP")) {
		return "image/webp"
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if t := mime.TypeByExtension(ext); t != "" {
		if mt, _, found := strings.Cut(t, ";"); found {
			return strings.TrimSpace(mt)
		}
		return t
	}
	if imageExtensions[ext] {
		return "image/" + strings.TrimPrefix(ext, ".")
	}

	return Unknown
}

// IsDataURL reports whether raw is a data URL.
func IsDataURL(raw []byte) bool {
	return bytes.HasPrefix(raw, []byte("data:"))
}

// dataURLType extracts the declared type from a "data:<type>;..." prefix.
func dataURLType(raw []byte) string {
	if !IsDataURL(raw) {
		return ""
	}
	rest := raw[len("data:"):]
	end := bytes.IndexAny(rest, ";,")
	if end < 0 {
		return ""
	}
	return string(rest[:end])
}
