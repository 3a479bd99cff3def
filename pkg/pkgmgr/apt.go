package pkgmgr

import (
	"context"
	"strings"

	"github.com/arthur-debert/bootstrap/pkg/executor"
)

var aptEnv = map[string]string{"DEBIAN_FRONTEND": "noninteractive"}

// Apt drives apt-get on Ubuntu.
type Apt struct {
	runner executor.Runner
}

// NewApt creates the Ubuntu driver.
func NewApt(runner executor.Runner) *Apt {
	return &Apt{runner: runner}
}

func (a *Apt) Name() string { return "apt" }

func (a *Apt) aptGet(args ...string) executor.Command {
	return executor.Command{Name: "apt-get", Args: args, Sudo: true, Env: aptEnv}
}

func (a *Apt) Update(ctx context.Context) error {
	return run(ctx, a.runner, a.aptGet("update"))
}

func (a *Apt) UpgradeAll(ctx context.Context) error {
	return run(ctx, a.runner, a.aptGet("-y", "upgrade"))
}

func (a *Apt) InstallUnit(ctx context.Context, u Unit) error {
	if u.Kind != KindPackage && u.Kind != "" {
		return unsupportedKind(a.Name(), u)
	}
	return run(ctx, a.runner, a.aptGet("install", "-y", u.Name))
}

func (a *Apt) IsUnitInstalled(ctx context.Context, u Unit) (bool, error) {
	if u.Kind != KindPackage && u.Kind != "" {
		return false, unsupportedKind(a.Name(), u)
	}
	res, err := a.runner.Run(ctx, executor.Command{
		Name:  "dpkg-query",
		Args:  []string{"-W", "-f=${Status}", u.Name},
		Quiet: true,
	})
	if err != nil {
		if res.ExitCode > 0 {
			return false, nil
		}
		return false, err
	}
	return strings.Contains(res.Stdout, "install ok installed"), nil
}

var _ Driver = (*Apt)(nil)
