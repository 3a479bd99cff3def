// Package dotfiles clones the user's dotfiles repository and hands it to
// the link tool that deploys it into $HOME.
package dotfiles

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/bootstrap/pkg/errors"
	"github.com/arthur-debert/bootstrap/pkg/executor"
	"github.com/arthur-debert/bootstrap/pkg/guard"
	"github.com/arthur-debert/bootstrap/pkg/logging"
	"github.com/arthur-debert/bootstrap/pkg/paths"
	"github.com/arthur-debert/bootstrap/pkg/types"
	"github.com/rs/zerolog"
)

// Options configure where the repository comes from and how it is linked.
type Options struct {
	Repo string
	// Dest is the clone destination; a leading ~ is expanded against home.
	Dest string
	// LinkCommand is run from Dest with DOTFILES_ROOT set to Dest.
	LinkCommand []string
}

// Manager clones and links dotfiles.
type Manager struct {
	runner executor.Runner
	fs     types.FS
	opts   Options
	home   string
	logger zerolog.Logger
}

func NewManager(runner executor.Runner, fsys types.FS, opts Options, home string) *Manager {
	return &Manager{
		runner: runner,
		fs:     fsys,
		opts:   opts,
		home:   home,
		logger: logging.GetLogger("dotfiles"),
	}
}

// Dest returns the expanded clone destination.
func (m *Manager) Dest() string {
	return paths.ExpandHome(m.opts.Dest, m.home)
}

// CloneRepo clones url into dest unless dest already exists.
func (m *Manager) CloneRepo(ctx context.Context, url, dest string) (bool, error) {
	if url == "" {
		return false, errors.New(errors.ErrInvalidInput, "dotfiles repository is not configured")
	}
	return guard.EnsureExists(ctx, m.fs, dest, func(ctx context.Context) error {
		m.logger.Info().Str("repo", url).Str("dest", dest).Msg("Cloning dotfiles")
		if err := m.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot create %s", filepath.Dir(dest))
		}
		_, err := m.runner.Run(ctx, executor.Command{Name: "git", Args: []string{"clone", url, dest}})
		if err != nil {
			return errors.Wrap(err, errors.ErrExternalTool, "dotfiles clone failed")
		}
		return nil
	})
}

// LinkAll runs the link command over the cloned repository. The link tool
// is expected to be idempotent itself.
func (m *Manager) LinkAll(ctx context.Context) error {
	if len(m.opts.LinkCommand) == 0 {
		m.logger.Info().Msg("No link command configured, leaving dotfiles unlinked")
		return nil
	}
	dest := m.Dest()
	name := m.opts.LinkCommand[0]
	if !m.runner.LookPath(name) {
		m.logger.Warn().Str("command", name).Msg("Link tool not found on PATH, skipping link step")
		return nil
	}
	c := executor.Command{
		Name: name,
		Args: m.opts.LinkCommand[1:],
		Dir:  dest,
		Env:  map[string]string{"DOTFILES_ROOT": dest},
	}
	if _, err := m.runner.Run(ctx, c); err != nil {
		return errors.Wrapf(err, errors.ErrExternalTool, "linking dotfiles with %s failed", strings.Join(m.opts.LinkCommand, " "))
	}
	return nil
}

// Install clones the configured repository and links it.
func (m *Manager) Install(ctx context.Context) (bool, error) {
	cloned, err := m.CloneRepo(ctx, m.opts.Repo, m.Dest())
	if err != nil {
		return false, err
	}
	if err := m.LinkAll(ctx); err != nil {
		return cloned, err
	}
	return cloned, nil
}
