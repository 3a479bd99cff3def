package types

import (
	"io/fs"
)

// FS is the filesystem seam used by idempotency guards and phases. Phases
// only inspect and create directories; privileged files go through sudo.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)
}
