package domain

// FilePayload is one uploaded file. It exists only for the duration of
// a single ingestion call and is never retained.
type FilePayload struct {
	Name    string `json:"name"`
	Content []byte `json:"content"`
}

// TextBlock is extracted text labeled with the file it came from.
type TextBlock struct {
	SourceName string `json:"source_name"`
	Text       string `json:"text"`
}

// ImagePayload is a re-encoded image ready for a vision model call.
type ImagePayload struct {
	SourceName string `json:"source_name"`
	DataURL    string `json:"data_url"`
}

// NormalizedContent is the outcome of normalizing one upload batch.
// When Images is non-empty the batch is in image mode and Text is
// empty: any text extracted from other files in the same batch has
// been discarded.
type NormalizedContent struct {
	Text   string
	Images []ImagePayload
}

// HasImages reports whether the batch normalized to vision-mode input.
func (n *NormalizedContent) HasImages() bool {
	return n != nil && len(n.Images) > 0
}
