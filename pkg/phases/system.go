package phases

import (
	"context"
	"strings"

	"github.com/arthur-debert/bootstrap/pkg/executor"
	"github.com/arthur-debert/bootstrap/pkg/guard"
	"github.com/arthur-debert/bootstrap/pkg/pkgmgr"
	"github.com/arthur-debert/bootstrap/pkg/privilege"
	"github.com/arthur-debert/bootstrap/pkg/types"
)

// DarwinHostnameKeys are the scutil names set to the target hostname.
var DarwinHostnameKeys = []string{"ComputerName", "HostName", "LocalHostName"}

func (p *Provisioner) init(ctx context.Context, rc *types.RunContext) error {
	p.logger.Info().
		Str("system", rc.System.String()).
		Str("os", rc.OS.String()).
		Str("hostname", rc.Hostname).
		Bool("baseOnly", rc.BaseOnly).
		Msg("Provisioning profile")

	if err := privilege.EnsureNonRoot(p.deps.UID); err != nil {
		return err
	}
	session, err := p.deps.Privilege.Acquire(ctx)
	if err != nil {
		return err
	}
	p.session.Stop()
	p.session = session
	p.session.KeepAlive(ctx, p.deps.Config.Privilege.KeepAliveInterval.Std())
	return nil
}

func (p *Provisioner) setHostname(ctx context.Context, rc *types.RunContext) error {
	if rc.TargetHostname == "" {
		p.logger.Info().Msg("No hostname requested")
		return nil
	}
	switch rc.OS {
	case types.Darwin:
		for _, key := range DarwinHostnameKeys {
			key := key
			changed, err := guard.EnsureState(ctx,
				func(ctx context.Context) (string, error) { return p.scutilGet(ctx, key) },
				rc.TargetHostname,
				func(ctx context.Context, name string) error {
					_, err := p.deps.Runner.Run(ctx, executor.Command{Name: "scutil", Args: []string{"--set", key, name}, Sudo: true})
					return err
				},
			)
			if err != nil {
				return err
			}
			if changed {
				p.logger.Info().Str("key", key).Str("hostname", rc.TargetHostname).Msg("Hostname set")
			}
		}
		return nil
	case types.Ubuntu, types.Arch:
		p.logger.Warn().Str("os", rc.OS.String()).Msg("Setting the hostname is not yet supported")
		p.warn("setting the hostname is not yet supported on " + rc.OS.String())
		return nil
	default:
		return p.warnUnsupported(rc, SetHostname)
	}
}

// scutilGet reads one scutil name; an unset name reads as "".
func (p *Provisioner) scutilGet(ctx context.Context, key string) (string, error) {
	res, err := p.deps.Runner.Run(ctx, executor.Command{Name: "scutil", Args: []string{"--get", key}, Quiet: true})
	if err != nil {
		if res.ExitCode > 0 {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

func (p *Provisioner) setupPackageSystem(ctx context.Context, rc *types.RunContext) error {
	switch rc.OS {
	case types.Darwin:
		brew := pkgmgr.NewHomebrew(p.deps.Runner, p.deps.FS)
		changed, err := guard.EnsureState(ctx,
			func(context.Context) (bool, error) { return brew.Installed(), nil },
			true,
			func(ctx context.Context, _ bool) error { return brew.InstallSelf(ctx) },
		)
		if err != nil {
			return err
		}
		logChanged(p.logger, changed, "Homebrew")

		if _, err := p.installer(rc, brew).InstallOne(ctx, pkgmgr.Unit{Name: "mas", Kind: pkgmgr.KindPackage}); err != nil {
			return err
		}
		if rc.HasCredential() && !brew.AppStoreSignedIn(ctx) {
			p.logger.Info().Str("email", rc.AppStoreCredential.Email).Msg("Signing in to the App Store")
			return brew.AppStoreSignIn(ctx, rc.AppStoreCredential.Email, rc.AppStoreCredential.Password)
		}
		return nil
	case types.Ubuntu, types.Arch:
		d, _ := p.driver(rc)
		return d.Update(ctx)
	default:
		return p.warnUnsupported(rc, SetupPackageSystem)
	}
}

func (p *Provisioner) updateSystem(ctx context.Context, rc *types.RunContext) error {
	d, ok := p.driver(rc)
	if !ok {
		return p.warnUnsupported(rc, UpdateSystem)
	}
	if rc.OS == types.Darwin {
		if err := d.Update(ctx); err != nil {
			return err
		}
	}
	return d.UpgradeAll(ctx)
}
