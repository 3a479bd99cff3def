// Package pkgmgr drives the platform package managers (Homebrew, apt,
// pacman) behind one Driver interface.
package pkgmgr

import (
	"context"
	"fmt"

	"github.com/arthur-debert/bootstrap/pkg/errors"
	"github.com/arthur-debert/bootstrap/pkg/executor"
	"github.com/arthur-debert/bootstrap/pkg/types"
)

// Kind is the flavour of a package unit.
type Kind string

const (
	KindPackage Kind = "package"
	KindCask    Kind = "cask"
	KindApp     Kind = "app"
)

// Unit is one installable thing from a manifest.
type Unit struct {
	Name string
	Kind Kind
	// ID is the store identifier for KindApp units.
	ID string
}

func (u Unit) String() string {
	if u.Kind == "" || u.Kind == KindPackage {
		return u.Name
	}
	return fmt.Sprintf("%s:%s", u.Kind, u.Name)
}

// Driver is the capability set every platform package manager provides.
type Driver interface {
	Name() string
	Update(ctx context.Context) error
	UpgradeAll(ctx context.Context) error
	InstallUnit(ctx context.Context, u Unit) error
	IsUnitInstalled(ctx context.Context, u Unit) (bool, error)
}

// ForOS returns the driver for a profile; ok is false for Unknown.
func ForOS(os types.OS, runner executor.Runner, fsys types.FS) (Driver, bool) {
	switch os {
	case types.Darwin:
		return NewHomebrew(runner, fsys), true
	case types.Ubuntu:
		return NewApt(runner), true
	case types.Arch:
		return NewPacman(runner), true
	default:
		return nil, false
	}
}

func unsupportedKind(driver string, u Unit) error {
	return errors.Newf(errors.ErrManifestInvalid, "%s cannot install %s units (%s)", driver, u.Kind, u.Name).
		WithDetail("unit", u.String())
}

func run(ctx context.Context, r executor.Runner, c executor.Command) error {
	_, err := r.Run(ctx, c)
	return err
}
