package model

import "path/filepath"

// Document is an HTML file under validation.
// Its content is read once at the start of a run and never modified.
type Document struct {
	// Path is the filesystem path the document was loaded from.
	Path string `json:"path"`

	// Content is the decoded (UTF-8) document text.
	Content string `json:"-"`

	// References holds every extracted reference in document order,
	// duplicates included.
	References []Reference `json:"references,omitempty"`
}

// NewDocument creates a Document from a path and its decoded content.
func NewDocument(path, content string) *Document {
	return &Document{
		Path:       path,
		Content:    content,
		References: make([]Reference, 0),
	}
}

// Dir returns the directory internal references are resolved against.
func (d *Document) Dir() string {
	return filepath.Dir(d.Path)
}
