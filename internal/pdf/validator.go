package pdf

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// minTextPageRunes is the least text a page needs to count as a text page.
const minTextPageRunes = 20

// Validator handles PDF file validation operations
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateFile checks that a file is a readable PDF and reports whether its
// pages carry text or only scanned images.
func (v *Validator) ValidateFile(req GradesValidateFileRequest) (*GradesValidateFileResult, error) {
	result := &GradesValidateFileResult{
		Path:  req.Path,
		Valid: false,
	}

	if err := v.validatePath(req.Path); err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // Return result with validation error, not a processing error
	}

	pages, err := v.PageCount(req.Path)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // Return result with validation error, not a processing error
	}
	result.Pages = pages

	doc, err := Open(req.Path)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // Return result with validation error, not a processing error
	}
	defer doc.Close()

	for n := 1; n <= doc.NumPages(); n++ {
		result.Images += doc.ImageCount(n)
		if page, err := doc.Page(context.Background(), n); err == nil && textRunes(page.Lines) >= minTextPageRunes {
			result.TextPages++
		}
	}
	result.ContentType = contentType(result.TextPages, result.Images)
	result.Valid = true
	return result, nil
}

// PageCount reads the document structure with pdfcpu and returns its page
// count.
func (v *Validator) PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("cannot open file: %w", err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("%w: failed to count pages: %v", ErrUnreadableDocument, err)
	}
	return ctx.PageCount, nil
}

// validatePath checks the file on disk without parsing it.
func (v *Validator) validatePath(filePath string) error {
	if filePath == "" {
		return fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	return v.ValidateFileInfo(filePath, fileInfo)
}

// IsValidPDF performs a quick check to see if a file is a valid PDF
func (v *Validator) IsValidPDF(filePath string) bool {
	if v.validatePath(filePath) != nil {
		return false
	}
	_, err := v.PageCount(filePath)
	return err == nil
}

// ValidateFileInfo performs basic validation on file info without opening the PDF
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if !isPDFFile(filePath) {
		return fmt.Errorf("file is not a PDF: %s", filePath)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", filePath)
	}

	if fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize)
	}

	return nil
}

func isPDFFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}

func textRunes(lines []string) int {
	n := 0
	for _, l := range lines {
		n += len([]rune(strings.TrimSpace(l)))
	}
	return n
}

// contentType classifies a document by its text pages and images.
func contentType(textPages, images int) string {
	switch {
	case textPages == 0 && images > 0:
		return "scanned_images"
	case textPages == 0:
		return "no_content"
	case images > 0:
		return "mixed"
	default:
		return "text"
	}
}
