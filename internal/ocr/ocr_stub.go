//go:build !ocr

// Package ocr recognizes text in scanned page images.
//
// This is the stub used when the "ocr" build tag is not set; New returns
// ErrOCRNotEnabled. Rebuild with -tags ocr and Tesseract installed to
// enable recognition.
package ocr

// DefaultLanguages covers Vietnamese grade sheets with English headers.
const DefaultLanguages = "vie+eng"

// Client is a stub OCR client.
type Client struct{}

// New returns ErrOCRNotEnabled.
func New(languages string) (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op. It is safe to call on a nil client.
func (c *Client) Close() error {
	return nil
}

// RecognizeImage returns ErrOCRNotEnabled.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	return "", ErrOCRNotEnabled
}

// Enabled reports whether OCR support was compiled in.
func Enabled() bool {
	return false
}
