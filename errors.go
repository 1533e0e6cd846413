package wordtex

import "errors"

// Sentinel errors for library operations.
var (
	// ErrNoInput rejects empty source text before any pipeline stage runs.
	ErrNoInput = errors.New("input cannot be empty")
	// ErrUnknownFormat rejects a source format outside the supported set.
	ErrUnknownFormat = errors.New("unknown source format")
	// ErrParse indicates the clipboard markup could not be parsed at all.
	ErrParse = errors.New("parsing clipboard markup failed")
	// ErrClipboard indicates the reverse-direction envelope could not be
	// built. There is no safe partial clipboard payload, so this fails the
	// whole request.
	ErrClipboard = errors.New("building clipboard payload failed")
	// ErrExport indicates a document export (docx or PDF) failed.
	ErrExport = errors.New("document export failed")
)
