// Package filesystemtest provides an in-memory types.FS that tests can
// seed with files.
package filesystemtest

import (
	"io/fs"

	"github.com/arthur-debert/bootstrap/pkg/filesystem"
	"github.com/arthur-debert/bootstrap/pkg/types"
	"github.com/spf13/afero"
)

// Memory is a types.FS backed by afero's MemMapFs. Parent directories of
// written files are created implicitly.
type Memory struct {
	types.FS
	mem afero.Fs
}

// New returns an empty Memory.
func New() *Memory {
	mem := afero.NewMemMapFs()
	return &Memory{FS: filesystem.NewAferoFS(mem), mem: mem}
}

// WriteFile seeds a file.
func (m *Memory) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return afero.WriteFile(m.mem, name, data, perm)
}

// ReadFile returns a file's contents.
func (m *Memory) ReadFile(name string) ([]byte, error) {
	return afero.ReadFile(m.mem, name)
}

var _ types.FS = (*Memory)(nil)
