// Package security confines file access to a configured directory.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideDirectory is returned for paths that leave the configured
// directory.
var ErrOutsideDirectory = errors.New("path is outside configured directory")

// PathValidator checks that paths stay inside one directory
type PathValidator struct {
	configuredDirectory string
}

// NewPathValidator creates a new path validator for the given directory. The
// directory need not exist yet; until it does every path is accepted.
func NewPathValidator(configuredDirectory string) (*PathValidator, error) {
	if configuredDirectory == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}
	return &PathValidator{configuredDirectory: configuredDirectory}, nil
}

// GetConfiguredDirectory returns the configured directory path
func (v *PathValidator) GetConfiguredDirectory() string {
	return v.configuredDirectory
}

// ValidatePath checks if a path is within the configured directory, both as
// written and after resolving symlinks.
func (v *PathValidator) ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("path contains a NUL byte")
	}
	if !v.directoryExists() {
		return nil
	}

	within, err := v.IsPathWithinDirectory(path)
	if err != nil {
		return fmt.Errorf("path validation failed: %w", err)
	}
	if !within {
		return fmt.Errorf("%w: %s", ErrOutsideDirectory, path)
	}
	return nil
}

// ValidateDirectory checks a directory path like ValidatePath and, when it
// exists, that it is a directory.
func (v *PathValidator) ValidateDirectory(dirPath string) error {
	if err := v.ValidatePath(dirPath); err != nil {
		return err
	}

	info, err := os.Stat(dirPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", dirPath)
	}
	return nil
}

// Resolve makes a relative path relative to the configured directory and
// validates the result.
func (v *PathValidator) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(v.configuredDirectory, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if err := v.ValidatePath(abs); err != nil {
		return "", err
	}
	return abs, nil
}

// IsPathWithinDirectory reports whether path lies in the configured
// directory.
func (v *PathValidator) IsPathWithinDirectory(path string) (bool, error) {
	if !v.directoryExists() {
		return true, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}
	absDir, err := filepath.Abs(v.configuredDirectory)
	if err != nil {
		return false, fmt.Errorf("failed to resolve configured directory: %w", err)
	}

	dirs := []string{absDir}
	if real, err := filepath.EvalSymlinks(absDir); err == nil && real != absDir {
		dirs = append(dirs, real)
	}

	if !withinAny(absPath, dirs) {
		return false, nil
	}
	// A symlink inside the directory must not point outside it.
	if real, err := filepath.EvalSymlinks(absPath); err == nil {
		return withinAny(real, dirs), nil
	}
	return true, nil
}

func (v *PathValidator) directoryExists() bool {
	_, err := os.Stat(v.configuredDirectory)
	return !os.IsNotExist(err)
}

func withinAny(path string, dirs []string) bool {
	for _, dir := range dirs {
		if within(path, dir) {
			return true
		}
	}
	return false
}

func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
