package manifest

import (
	"context"
	"io/fs"

	"github.com/arthur-debert/bootstrap/pkg/errors"
	"github.com/arthur-debert/bootstrap/pkg/logging"
	"github.com/arthur-debert/bootstrap/pkg/pkgmgr"
	"github.com/rs/zerolog"
)

// Installer installs manifest units, skipping those already present.
type Installer struct {
	driver pkgmgr.Driver
	data   fs.FS
	logger zerolog.Logger
}

// NewInstaller creates an Installer that reads manifests from data.
func NewInstaller(driver pkgmgr.Driver, data fs.FS) *Installer {
	return &Installer{
		driver: driver,
		data:   data,
		logger: logging.GetLogger("manifest"),
	}
}

// InstallOne installs u unless the driver reports it installed. The check
// is never cached: installing one unit can pull in another.
func (i *Installer) InstallOne(ctx context.Context, u pkgmgr.Unit) (installed bool, err error) {
	ok, err := i.driver.IsUnitInstalled(ctx, u)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrExternalTool, "cannot check whether %s is installed", u).
			WithDetail("unit", u.String())
	}
	if ok {
		i.logger.Debug().Str("unit", u.String()).Msg("Already installed")
		return false, nil
	}

	i.logger.Info().Str("unit", u.String()).Str("driver", i.driver.Name()).Msg("Installing")
	if err := i.driver.InstallUnit(ctx, u); err != nil {
		return false, errors.Wrapf(err, errors.ErrExternalTool, "failed to install %s", u).
			WithDetail("unit", u.String())
	}
	return true, nil
}

// InstallManifest loads the manifest at path and installs every unit in
// order, stopping at the first failure.
func (i *Installer) InstallManifest(ctx context.Context, path string) error {
	m, err := Load(i.data, path)
	if err != nil {
		return err
	}

	done := logging.LogOperationStart(i.logger, "install "+path)
	defer done()

	installed := 0
	for _, u := range m.Units {
		did, err := i.InstallOne(ctx, u)
		if err != nil {
			return err
		}
		if did {
			installed++
		}
	}

	i.logger.Info().
		Str("manifest", path).
		Int("units", len(m.Units)).
		Int("installed", installed).
		Msg("Manifest satisfied")
	return nil
}
