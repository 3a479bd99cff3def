// Package paths resolves the per-user locations bootstrap works with.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/bootstrap/pkg/errors"
)

const (
	// AppDirName is the directory name used under the XDG base dirs.
	AppDirName = "bootstrap"

	EnvHome = "HOME"
)

// HomeDirectory returns $HOME, falling back to the account database.
func HomeDirectory(getenv func(string) string) (string, error) {
	if home := getenv(EnvHome); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrPrecondition, "cannot determine the home directory; set HOME").
			WithExitCode(errors.ExitPrecondition)
	}
	if home == "" {
		return "", errors.New(errors.ErrPrecondition, "cannot determine the home directory; set HOME").
			WithExitCode(errors.ExitPrecondition)
	}
	return home, nil
}

// LibDir is where bootstrap keeps helper checkouts.
func LibDir() string {
	return filepath.Join(xdg.DataHome, AppDirName)
}

// ExpandHome expands a leading ~ against home. ~user forms are returned
// unchanged.
func ExpandHome(path, home string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	if len(path) == 1 {
		return home
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(home, path[2:])
	}
	return path
}
