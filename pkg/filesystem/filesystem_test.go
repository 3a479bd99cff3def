package filesystem_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/bootstrap/pkg/filesystem"
	"github.com/arthur-debert/bootstrap/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseFS checks fsys against a tree where write creates one file.
func exerciseFS(t *testing.T, fsys types.FS, root string, write func(path string) error) {
	t.Helper()

	dir := filepath.Join(root, "home", "me", ".rbenv", "versions")
	require.NoError(t, fsys.MkdirAll(dir, 0755))

	info, err := fsys.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	entries, err := fsys.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, write(filepath.Join(dir, "3.3.5")))
	entries, err = fsys.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "3.3.5", entries[0].Name())

	_, err = fsys.Stat(filepath.Join(root, "missing"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestOSFS(t *testing.T) {
	exerciseFS(t, filesystem.NewOS(), t.TempDir(), func(path string) error {
		return os.WriteFile(path, nil, 0644)
	})
}

func TestAferoFS(t *testing.T) {
	mem := afero.NewMemMapFs()
	exerciseFS(t, filesystem.NewAferoFS(mem), "/", func(path string) error {
		return afero.WriteFile(mem, path, nil, 0644)
	})
}
