// Package phases defines the fixed provisioning pipeline. Every phase is
// idempotent: it checks host state through pkg/guard before changing
// anything, so an interrupted run can simply be started again.
package phases

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/arthur-debert/bootstrap/pkg/config"
	"github.com/arthur-debert/bootstrap/pkg/errors"
	"github.com/arthur-debert/bootstrap/pkg/executor"
	"github.com/arthur-debert/bootstrap/pkg/logging"
	"github.com/arthur-debert/bootstrap/pkg/manifest"
	"github.com/arthur-debert/bootstrap/pkg/pkgmgr"
	"github.com/arthur-debert/bootstrap/pkg/privilege"
	"github.com/arthur-debert/bootstrap/pkg/resources"
	"github.com/arthur-debert/bootstrap/pkg/types"
	"github.com/rs/zerolog"
)

// Phase names, in pipeline order.
const (
	Init                       = "init"
	SetHostname                = "set-hostname"
	SetupPackageSystem         = "setup-package-system"
	UpdateSystem               = "update-system"
	InstallBasePackages        = "install-base-packages"
	InstallBashrc              = "install-bashrc"
	InstallWorkstationPackages = "install-workstation-packages"
	InstallRust                = "install-rust"
	InstallRuby                = "install-ruby"
	InstallNode                = "install-node"
	SetPreferences             = "set-preferences"
	InstallDotConfigs          = "install-dot-configs"
)

// Phase is one named step of the pipeline.
type Phase struct {
	Name string
	// Workstation phases are skipped in base-only mode.
	Workstation bool
	// ExitCode is the process exit code when Run fails.
	ExitCode int
	Run      func(ctx context.Context, rc *types.RunContext) error
}

// Reporter shows non-fatal notices to the user.
type Reporter interface {
	Warning(msg string)
}

// Deps are the collaborators phases act through.
type Deps struct {
	Runner    executor.Runner
	FS        types.FS
	Config    *config.Config
	Privilege *privilege.Manager
	// UID is the effective user id of the process.
	UID      int
	Reporter Reporter
}

// Provisioner owns the state shared between phases: the privilege session
// started by init.
type Provisioner struct {
	deps    Deps
	session *privilege.Session
	logger  zerolog.Logger
}

// New creates a Provisioner. Call Close when the run ends.
func New(deps Deps) *Provisioner {
	if deps.Privilege == nil {
		deps.Privilege = privilege.NewManager(deps.Runner)
	}
	if deps.Config == nil {
		deps.Config = config.Default()
	}
	return &Provisioner{
		deps:   deps,
		logger: logging.GetLogger("phases"),
	}
}

// Pipeline returns every phase in execution order.
func (p *Provisioner) Pipeline() []Phase {
	steps := []struct {
		name        string
		workstation bool
		run         func(context.Context, *types.RunContext) error
	}{
		{Init, false, p.init},
		{SetHostname, false, p.setHostname},
		{SetupPackageSystem, false, p.setupPackageSystem},
		{UpdateSystem, false, p.updateSystem},
		{InstallBasePackages, false, p.installBasePackages},
		{InstallBashrc, false, p.installBashrc},
		{InstallWorkstationPackages, true, p.installWorkstationPackages},
		{InstallRust, true, p.installRust},
		{InstallRuby, true, p.installRuby},
		{InstallNode, true, p.installNode},
		{SetPreferences, true, p.setPreferences},
		{InstallDotConfigs, true, p.installDotConfigs},
	}

	pipeline := make([]Phase, len(steps))
	for i, s := range steps {
		pipeline[i] = Phase{
			Name:        s.name,
			Workstation: s.workstation,
			ExitCode:    errors.ExitPhaseBase + i,
			Run:         s.run,
		}
	}
	return pipeline
}

// Close stops the privilege keep-alive and reports failed renewals.
func (p *Provisioner) Close() {
	if p.session == nil {
		return
	}
	p.session.Stop()
	renewals, failures := p.session.Renewals(), p.session.Failures()
	p.session = nil

	p.logger.Debug().Int64("renewals", renewals).Int64("failures", failures).Msg("Privilege keep-alive stopped")
	if failures > 0 {
		p.warn(fmt.Sprintf("sudo keep-alive failed %d time(s); some commands may have asked for a password again", failures))
	}
}

// warnUnsupported is the default arm of every OS switch: the phase logs,
// tells the user and succeeds.
func (p *Provisioner) warnUnsupported(rc *types.RunContext, phase string) error {
	err := errors.Newf(errors.ErrUnsupportedPlatform, "%s is not supported on %s, skipping", phase, rc.OS)
	p.logger.Warn().Str("phase", phase).Str("os", rc.OS.String()).Msg("Unsupported platform, skipping")
	p.warn(err.Message)
	return nil
}

func (p *Provisioner) warn(msg string) {
	if p.deps.Reporter != nil {
		p.deps.Reporter.Warning(msg)
	}
}

func (p *Provisioner) data(rc *types.RunContext) fs.FS {
	return resources.FS(rc.DataDir)
}

func (p *Provisioner) driver(rc *types.RunContext) (pkgmgr.Driver, bool) {
	return pkgmgr.ForOS(rc.OS, p.deps.Runner, p.deps.FS)
}

func (p *Provisioner) installer(rc *types.RunContext, d pkgmgr.Driver) *manifest.Installer {
	return manifest.NewInstaller(d, p.data(rc))
}

func logChanged(logger zerolog.Logger, changed bool, what string) {
	if changed {
		logger.Info().Msg(what + " installed")
		return
	}
	logger.Info().Msgf("%s already present, nothing to do", what)
}
