// Package toolchain bootstraps per-user language runtimes (rust, ruby,
// node) with their upstream installers. Each installer is guarded by the
// files it leaves under $HOME so re-runs are no-ops.
package toolchain

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/bootstrap/pkg/errors"
	"github.com/arthur-debert/bootstrap/pkg/executor"
	"github.com/arthur-debert/bootstrap/pkg/guard"
	"github.com/arthur-debert/bootstrap/pkg/logging"
	"github.com/arthur-debert/bootstrap/pkg/types"
	"github.com/rs/zerolog"
)

// Options are the versions and sources the installers use.
type Options struct {
	RustupURL     string
	RbenvRepo     string
	RubyBuildRepo string
	RubyVersion   string
	NvmVersion    string
	NodeVersion   string
}

// Installer is one language runtime bootstrapper.
type Installer interface {
	Name() string
	Install(ctx context.Context, home string) (bool, error)
}

type base struct {
	runner executor.Runner
	fs     types.FS
	opts   Options
	logger zerolog.Logger
}

func newBase(name string, runner executor.Runner, fsys types.FS, opts Options) base {
	return base{runner: runner, fs: fsys, opts: opts, logger: logging.GetLogger("toolchain." + name)}
}

// shell runs script through bash and turns a failure into an
// EXTERNAL_TOOL error naming the toolchain.
func (b base) shell(ctx context.Context, name, script string) error {
	if _, err := b.runner.Run(ctx, executor.Command{Name: "bash", Args: []string{"-c", script}}); err != nil {
		return errors.Wrapf(err, errors.ErrExternalTool, "%s installer failed", name)
	}
	return nil
}

func (b base) exec(ctx context.Context, name string, c executor.Command) error {
	if _, err := b.runner.Run(ctx, c); err != nil {
		return errors.Wrapf(err, errors.ErrExternalTool, "%s installer failed", name)
	}
	return nil
}

// Rust installs rustup and the stable toolchain.
type Rust struct{ base }

func NewRust(runner executor.Runner, fsys types.FS, opts Options) *Rust {
	return &Rust{newBase("rust", runner, fsys, opts)}
}

func (r *Rust) Name() string { return "rust" }

// RustupPath is the file whose presence marks rust as installed.
func RustupPath(home string) string {
	return filepath.Join(home, ".cargo", "bin", "rustup")
}

func (r *Rust) Install(ctx context.Context, home string) (bool, error) {
	return guard.EnsureExists(ctx, r.fs, RustupPath(home), func(ctx context.Context) error {
		r.logger.Info().Str("url", r.opts.RustupURL).Msg("Installing rustup")
		script := fmt.Sprintf("curl --proto '=https' --tlsv1.2 -sSf %s | sh -s -- -y --no-modify-path", r.opts.RustupURL)
		return r.shell(ctx, r.Name(), script)
	})
}

// Ruby installs rbenv with ruby-build and compiles one ruby.
type Ruby struct{ base }

func NewRuby(runner executor.Runner, fsys types.FS, opts Options) *Ruby {
	return &Ruby{newBase("ruby", runner, fsys, opts)}
}

func (r *Ruby) Name() string { return "ruby" }

// RubyVersionsDir holds one entry per installed ruby.
func RubyVersionsDir(home string) string {
	return filepath.Join(home, ".rbenv", "versions")
}

func (r *Ruby) Install(ctx context.Context, home string) (bool, error) {
	rbenvDir := filepath.Join(home, ".rbenv")
	pluginDir := filepath.Join(rbenvDir, "plugins", "ruby-build")
	rbenv := filepath.Join(rbenvDir, "bin", "rbenv")

	clonedRbenv, err := guard.EnsureExists(ctx, r.fs, rbenvDir, func(ctx context.Context) error {
		return r.exec(ctx, r.Name(), executor.Command{Name: "git", Args: []string{"clone", "--depth", "1", r.opts.RbenvRepo, rbenvDir}})
	})
	if err != nil {
		return false, err
	}
	clonedBuild, err := guard.EnsureExists(ctx, r.fs, pluginDir, func(ctx context.Context) error {
		return r.exec(ctx, r.Name(), executor.Command{Name: "git", Args: []string{"clone", "--depth", "1", r.opts.RubyBuildRepo, pluginDir}})
	})
	if err != nil {
		return false, err
	}
	built, err := guard.EnsureNonEmptyDir(ctx, r.fs, RubyVersionsDir(home), func(ctx context.Context) error {
		r.logger.Info().Str("version", r.opts.RubyVersion).Msg("Building ruby")
		if err := r.exec(ctx, r.Name(), executor.Command{Name: rbenv, Args: []string{"install", "--skip-existing", r.opts.RubyVersion}}); err != nil {
			return err
		}
		return r.exec(ctx, r.Name(), executor.Command{Name: rbenv, Args: []string{"global", r.opts.RubyVersion}})
	})
	if err != nil {
		return false, err
	}
	return clonedRbenv || clonedBuild || built, nil
}

// Node installs nvm and one node release.
type Node struct{ base }

func NewNode(runner executor.Runner, fsys types.FS, opts Options) *Node {
	return &Node{newBase("node", runner, fsys, opts)}
}

func (n *Node) Name() string { return "node" }

// NodeVersionsDir holds one entry per installed node.
func NodeVersionsDir(home string) string {
	return filepath.Join(home, ".nvm", "versions", "node")
}

func (n *Node) Install(ctx context.Context, home string) (bool, error) {
	nvmDir := filepath.Join(home, ".nvm")
	nvmScript := filepath.Join(nvmDir, "nvm.sh")

	installedNvm, err := guard.EnsureExists(ctx, n.fs, nvmScript, func(ctx context.Context) error {
		n.logger.Info().Str("version", n.opts.NvmVersion).Msg("Installing nvm")
		script := fmt.Sprintf("curl -fsSL https://raw.githubusercontent.com/nvm-sh/nvm/%s/install.sh | NVM_DIR=%q PROFILE=/dev/null bash", n.opts.NvmVersion, nvmDir)
		return n.shell(ctx, n.Name(), script)
	})
	if err != nil {
		return false, err
	}
	installedNode, err := guard.EnsureNonEmptyDir(ctx, n.fs, NodeVersionsDir(home), func(ctx context.Context) error {
		n.logger.Info().Str("version", n.opts.NodeVersion).Msg("Installing node")
		script := fmt.Sprintf(". %q && nvm install %s && nvm alias default %s", nvmScript, n.opts.NodeVersion, n.opts.NodeVersion)
		return n.shell(ctx, n.Name(), script)
	})
	if err != nil {
		return false, err
	}
	return installedNvm || installedNode, nil
}

var (
	_ Installer = (*Rust)(nil)
	_ Installer = (*Ruby)(nil)
	_ Installer = (*Node)(nil)
)
