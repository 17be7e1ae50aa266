//go:build ocr

// Package ocr recognizes text in scanned page images with the Tesseract
// engine via gosseract. Tesseract and the requested language data must be
// installed on the system, for example:
//
//	apt-get install tesseract-ocr tesseract-ocr-vie
package ocr

import (
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguages covers Vietnamese grade sheets with English headers.
const DefaultLanguages = "vie+eng"

// Client wraps a Tesseract handle. It is safe for concurrent use; calls
// are serialized.
type Client struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// New creates a client recognizing the "+"-separated languages. An empty
// string selects DefaultLanguages.
func New(languages string) (*Client, error) {
	if languages == "" {
		languages = DefaultLanguages
	}
	client := gosseract.NewClient()
	if err := client.SetLanguage(strings.Split(languages, "+")...); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR languages %q: %w", languages, err)
	}
	// Grade sheets are laid out as a single block of rows.
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	return &Client{client: client}, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// RecognizeImage performs OCR on encoded image data (PNG, TIFF, JPEG).
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}
	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Enabled reports whether OCR support was compiled in.
func Enabled() bool {
	return true
}
