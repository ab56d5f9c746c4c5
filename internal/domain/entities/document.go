package entities

import "time"

// Document is the raw material the engine scores. It arrives from an
// external ingest step (upload + OCR) and is read-only once stored.
type Document struct {
	ID        string    `json:"id" db:"id"`
	RawText   string    `json:"raw_text" db:"raw_text"`
	Tags      []string  `json:"tags" db:"tags"`
	MimeType  string    `json:"mime_type" db:"mime_type"`
	FileSize  int64     `json:"file_size" db:"file_size"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// HasTag reports whether the document carries the given metadata tag.
func (d *Document) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
