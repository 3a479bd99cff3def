package pkgmgr

import (
	"context"

	"github.com/arthur-debert/bootstrap/pkg/executor"
)

// Pacman drives pacman on Arch.
type Pacman struct {
	runner executor.Runner
}

// NewPacman creates the Arch driver.
func NewPacman(runner executor.Runner) *Pacman {
	return &Pacman{runner: runner}
}

func (p *Pacman) Name() string { return "pacman" }

func (p *Pacman) pacman(args ...string) executor.Command {
	return executor.Command{Name: "pacman", Args: args, Sudo: true}
}

func (p *Pacman) Update(ctx context.Context) error {
	return run(ctx, p.runner, p.pacman("-Sy", "--noconfirm"))
}

func (p *Pacman) UpgradeAll(ctx context.Context) error {
	return run(ctx, p.runner, p.pacman("-Syu", "--noconfirm"))
}

func (p *Pacman) InstallUnit(ctx context.Context, u Unit) error {
	if u.Kind != KindPackage && u.Kind != "" {
		return unsupportedKind(p.Name(), u)
	}
	return run(ctx, p.runner, p.pacman("-S", "--needed", "--noconfirm", u.Name))
}

func (p *Pacman) IsUnitInstalled(ctx context.Context, u Unit) (bool, error) {
	if u.Kind != KindPackage && u.Kind != "" {
		return false, unsupportedKind(p.Name(), u)
	}
	return executor.Probe(ctx, p.runner, executor.Command{Name: "pacman", Args: []string{"-Q", u.Name}})
}

var _ Driver = (*Pacman)(nil)
