package phases

import (
	"bytes"
	"context"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/bootstrap/pkg/errors"
	"github.com/arthur-debert/bootstrap/pkg/executor"
	"github.com/arthur-debert/bootstrap/pkg/guard"
	"github.com/arthur-debert/bootstrap/pkg/resources"
	"github.com/arthur-debert/bootstrap/pkg/types"
)

func (p *Provisioner) installBasePackages(ctx context.Context, rc *types.RunContext) error {
	return p.installManifest(ctx, rc, InstallBasePackages, "base")
}

func (p *Provisioner) installWorkstationPackages(ctx context.Context, rc *types.RunContext) error {
	return p.installManifest(ctx, rc, InstallWorkstationPackages, "workstation")
}

func (p *Provisioner) installManifest(ctx context.Context, rc *types.RunContext, phase, set string) error {
	d, ok := p.driver(rc)
	if !ok {
		return p.warnUnsupported(rc, phase)
	}
	return guard.EnsureManifestInstalled(ctx, p.installer(rc, d), resources.ManifestPath(rc.OS.String(), set))
}

// installBashrc writes the system shell files. Each file is a write-once
// marker: an existing file is never rewritten.
func (p *Provisioner) installBashrc(ctx context.Context, rc *types.RunContext) error {
	files := []struct{ resource, target string }{
		{resources.BashrcPath, p.deps.Config.Shell.BashrcMarker},
		{resources.ProfilePath, p.deps.Config.Shell.ProfileScript},
	}
	for _, f := range files {
		f := f
		changed, err := guard.EnsureExists(ctx, p.deps.FS, f.target, func(ctx context.Context) error {
			return p.writeSystemFile(ctx, rc, f.resource, f.target)
		})
		if err != nil {
			return err
		}
		logChanged(p.logger.With().Str("path", f.target).Logger(), changed, "Shell file")
	}
	return nil
}

func (p *Provisioner) writeSystemFile(ctx context.Context, rc *types.RunContext, resource, target string) error {
	content, err := fs.ReadFile(p.data(rc), resource)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read resource %s", resource)
	}
	if _, err := p.deps.Runner.Run(ctx, executor.Command{Name: "mkdir", Args: []string{"-p", filepath.Dir(target)}, Sudo: true}); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot create %s", filepath.Dir(target))
	}
	_, err = p.deps.Runner.Run(ctx, executor.Command{
		Name:  "tee",
		Args:  []string{target},
		Stdin: bytes.NewReader(content),
		Sudo:  true,
		Quiet: true,
	})
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", target)
	}
	return nil
}
