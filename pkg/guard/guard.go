// Package guard implements the three idempotency checks phases run before
// touching the host:
//
//   - EnsureState compares current and desired state and applies only on
//     difference.
//   - EnsureExists and EnsureNonEmptyDir perform a one-time effect only
//     when its target is missing.
//   - EnsureManifestInstalled delegates to a manifest installer, which
//     checks every unit itself.
//
// Each returns whether it changed anything so callers can log skips.
package guard

import (
	"context"
	stderrors "errors"
	"io/fs"

	"github.com/arthur-debert/bootstrap/pkg/errors"
	"github.com/arthur-debert/bootstrap/pkg/types"
)

// EnsureState applies desired when current differs from it.
func EnsureState[T comparable](ctx context.Context, current func(context.Context) (T, error), desired T, apply func(context.Context, T) error) (bool, error) {
	have, err := current(ctx)
	if err != nil {
		return false, err
	}
	if have == desired {
		return false, nil
	}
	if err := apply(ctx, desired); err != nil {
		return false, err
	}
	return true, nil
}

// EnsureExists runs create only when path does not exist.
func EnsureExists(ctx context.Context, fsys types.FS, path string, create func(context.Context) error) (bool, error) {
	exists, err := Exists(fsys, path)
	if err != nil || exists {
		return false, err
	}
	if err := create(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// EnsureNonEmptyDir runs create only when dir is missing or has no entries.
func EnsureNonEmptyDir(ctx context.Context, fsys types.FS, dir string, create func(context.Context) error) (bool, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", dir)
	}
	if len(entries) > 0 {
		return false, nil
	}
	if err := create(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// ManifestInstaller is satisfied by *manifest.Installer.
type ManifestInstaller interface {
	InstallManifest(ctx context.Context, path string) error
}

// EnsureManifestInstalled installs every unit of the manifest at path that
// is not already present.
func EnsureManifestInstalled(ctx context.Context, inst ManifestInstaller, path string) error {
	return inst.InstallManifest(ctx, path)
}

// Exists reports whether path exists. Errors other than not-exist are
// returned so a permission problem is not mistaken for absence.
func Exists(fsys types.FS, path string) (bool, error) {
	_, err := fsys.Stat(path)
	if err == nil {
		return true, nil
	}
	if stderrors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", path)
}
