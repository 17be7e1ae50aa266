package pdf

import "errors"

// ErrUnreadableDocument is returned when a file cannot be opened as a PDF.
// It is the only hard failure of an extraction.
var ErrUnreadableDocument = errors.New("unreadable PDF document")
