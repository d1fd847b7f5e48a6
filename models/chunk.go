package models

// Chunk is one overlapping window of a fetched page's plain text.
// Chunks from the same source keep their left-to-right order via Index.
type Chunk struct {
	Source   string // URL the text came from
	Text     string
	Index    int    // position within the source page
	Language string // ISO 639-1 code detected from the page, "" if unknown
}
