package phases

import (
	"context"
	stderrors "errors"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/bootstrap/pkg/dotfiles"
	"github.com/arthur-debert/bootstrap/pkg/preferences"
	"github.com/arthur-debert/bootstrap/pkg/resources"
	"github.com/arthur-debert/bootstrap/pkg/toolchain"
	"github.com/arthur-debert/bootstrap/pkg/types"
)

func (p *Provisioner) installRust(ctx context.Context, rc *types.RunContext) error {
	return p.installToolchain(ctx, rc, toolchain.NewRust(p.deps.Runner, p.deps.FS, p.deps.Config.ToolchainOptions()))
}

func (p *Provisioner) installRuby(ctx context.Context, rc *types.RunContext) error {
	return p.installToolchain(ctx, rc, toolchain.NewRuby(p.deps.Runner, p.deps.FS, p.deps.Config.ToolchainOptions()))
}

func (p *Provisioner) installNode(ctx context.Context, rc *types.RunContext) error {
	return p.installToolchain(ctx, rc, toolchain.NewNode(p.deps.Runner, p.deps.FS, p.deps.Config.ToolchainOptions()))
}

// Toolchains live under $HOME and use upstream installers, so they are the
// same on every profile.
func (p *Provisioner) installToolchain(ctx context.Context, rc *types.RunContext, inst toolchain.Installer) error {
	changed, err := inst.Install(ctx, rc.Home)
	if err != nil {
		return err
	}
	logChanged(p.logger.With().Str("toolchain", inst.Name()).Logger(), changed, inst.Name())
	return nil
}

func (p *Provisioner) setPreferences(ctx context.Context, rc *types.RunContext) error {
	var backend preferences.Backend
	switch rc.OS {
	case types.Darwin:
		backend = preferences.NewDefaults(p.deps.Runner)
	case types.Ubuntu:
		backend = preferences.NewGSettings(p.deps.Runner)
	case types.Arch:
		p.logger.Info().Msg("No preferences are managed on arch")
		return nil
	default:
		return p.warnUnsupported(rc, SetPreferences)
	}

	prefs, err := preferences.Load(p.data(rc), resources.PreferencesPath(rc.OS.String()))
	if stderrors.Is(err, fs.ErrNotExist) {
		p.logger.Info().Str("os", rc.OS.String()).Msg("No preference file, skipping")
		return nil
	}
	if err != nil {
		return err
	}
	written, err := preferences.Apply(ctx, backend, prefs)
	if err != nil {
		return err
	}
	p.logger.Info().Str("backend", backend.Name()).Int("preferences", len(prefs)).Int("written", written).Msg("Preferences applied")
	return nil
}

func (p *Provisioner) installDotConfigs(ctx context.Context, rc *types.RunContext) error {
	opts := p.deps.Config.DotfilesOptions()
	if opts.Repo == "" {
		p.logger.Warn().Msg("No dotfiles repository configured")
		p.warn("no dotfiles repository configured (set dotfiles.repo), skipping")
		return nil
	}
	if opts.Dest == "" {
		opts.Dest = filepath.Join(rc.LibDir, "dotfiles")
	}
	m := dotfiles.NewManager(p.deps.Runner, p.deps.FS, opts, rc.Home)
	changed, err := m.Install(ctx)
	if err != nil {
		return err
	}
	logChanged(p.logger.With().Str("dest", m.Dest()).Logger(), changed, "Dotfiles")
	return nil
}
