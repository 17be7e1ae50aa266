package security

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPathValidator(t *testing.T) {
	_, err := NewPathValidator("")
	assert.Error(t, err)

	v, err := NewPathValidator("/not/created/yet")
	require.NoError(t, err)
	assert.Equal(t, "/not/created/yet", v.GetConfiguredDirectory())
	assert.NoError(t, v.ValidatePath("/anywhere/else.pdf"), "placeholder directories accept every path")
}

func TestPathValidator_ValidatePath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "k65"), 0o750))
	v, err := NewPathValidator(dir)
	require.NoError(t, err)

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "directory itself", path: dir},
		{name: "file in directory", path: filepath.Join(dir, "a.pdf")},
		{name: "nested file", path: filepath.Join(dir, "k65", "b.pdf")},
		{name: "file with dots in name", path: filepath.Join(dir, "..a.pdf")},
		{name: "traversal", path: filepath.Join(dir, "k65", "..", "..", "etc", "passwd"), wantErr: true},
		{name: "sibling with common prefix", path: dir + "-other/a.pdf", wantErr: true},
		{name: "absolute outside", path: "/etc/passwd", wantErr: true},
		{name: "empty", path: "", wantErr: true},
		{name: "NUL byte", path: filepath.Join(dir, "a\x00.pdf"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPathValidator_SymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.pdf")
	require.NoError(t, os.WriteFile(secret, []byte("%PDF"), 0o600))

	link := filepath.Join(dir, "link.pdf")
	require.NoError(t, os.Symlink(secret, link))

	v, err := NewPathValidator(dir)
	require.NoError(t, err)
	assert.ErrorIs(t, v.ValidatePath(link), ErrOutsideDirectory)
}

func TestPathValidator_ValidateDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.pdf")
	require.NoError(t, os.WriteFile(file, []byte("%PDF"), 0o600))
	v, err := NewPathValidator(dir)
	require.NoError(t, err)

	assert.NoError(t, v.ValidateDirectory(dir))
	assert.NoError(t, v.ValidateDirectory(filepath.Join(dir, "not-yet")))
	assert.ErrorContains(t, v.ValidateDirectory(file), "not a directory")
	assert.ErrorIs(t, v.ValidateDirectory(t.TempDir()), ErrOutsideDirectory)
}

func TestPathValidator_Resolve(t *testing.T) {
	dir := t.TempDir()
	v, err := NewPathValidator(dir)
	require.NoError(t, err)

	got, err := v.Resolve("k65/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "k65", "a.pdf"), got)

	_, err = v.Resolve("../a.pdf")
	assert.ErrorIs(t, err, ErrOutsideDirectory)

	_, err = v.Resolve("")
	assert.Error(t, err)
}
