package extractor

import "errors"

var (
	// ErrDocumentNotFound is returned when the document path does not exist.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrDocumentUnreadable is returned when the document exists but cannot
	// be read (permissions, directory, I/O failure).
	ErrDocumentUnreadable = errors.New("document unreadable")

	// ErrDocumentUnparseable is returned when the document is not text or
	// cannot be decoded.
	ErrDocumentUnparseable = errors.New("document unparseable")
)
