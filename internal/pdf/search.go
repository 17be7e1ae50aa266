package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	textsearch "golang.org/x/text/search"
)

// Search handles discovery of grade sheet PDFs
type Search struct {
	validator *Validator
}

// NewSearch creates a new PDF search handler with the specified constraints
func NewSearch(maxFileSize int64) *Search {
	return &Search{
		validator: NewValidator(maxFileSize),
	}
}

// SearchDirectory searches for PDF files in the specified directory. Hidden
// directories are skipped; a positive limit stops the walk early.
func (s *Search) SearchDirectory(req GradesSearchDirectoryRequest) (*GradesSearchDirectoryResult, error) {
	if req.Directory == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}

	if _, err := os.Stat(req.Directory); os.IsNotExist(err) {
		return nil, fmt.Errorf("directory does not exist: %s", req.Directory)
	}

	absDirectory, err := filepath.Abs(req.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory path: %w", err)
	}

	query := strings.TrimSpace(req.Query)
	matcher := newNameMatcher()
	pdfFiles := []FileInfo{}

	err = filepath.WalkDir(absDirectory, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// Continue walking even if we encounter an error with a specific file
			return nil
		}

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != absDirectory {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinks may point outside the directory.
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		if req.Limit > 0 && len(pdfFiles) >= req.Limit {
			return filepath.SkipAll
		}

		if !isPDFFile(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		if err := s.validator.ValidateFileInfo(path, info); err != nil {
			return nil //nolint:nilerr // Skip invalid files but continue processing
		}

		if !matchesQuery(matcher, d.Name(), query) {
			return nil
		}

		pdfFiles = append(pdfFiles, FileInfo{
			Path:         path,
			Name:         info.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory: %w", err)
	}

	return &GradesSearchDirectoryResult{
		Files:       pdfFiles,
		TotalCount:  len(pdfFiles),
		Directory:   absDirectory,
		SearchQuery: req.Query,
	}, nil
}

// newNameMatcher returns a matcher that ignores case, width and diacritics,
// so "bang diem" finds "Bảng điểm". Matchers are not shared between walks.
func newNameMatcher() *textsearch.Matcher {
	return textsearch.New(language.Und, textsearch.Loose)
}

// matchesQuery reports whether every word of the query occurs in the file
// name.
func matchesQuery(m *textsearch.Matcher, filename, query string) bool {
	if query == "" {
		return true
	}

	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	for _, word := range splitIntoWords(query) {
		if start, _ := m.IndexString(name, word); start < 0 {
			return false
		}
	}
	return true
}

// splitIntoWords splits a string on spaces and common file name separators
func splitIntoWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case ' ', '_', '-', '.', '(', ')', '[', ']':
			return true
		}
		return false
	})
}
