package pkgmgr

import (
	"bufio"
	"context"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/bootstrap/pkg/executor"
	"github.com/arthur-debert/bootstrap/pkg/types"
)

// Homebrew prefixes by architecture; brew is often not on PATH right after
// a fresh install.
var HomebrewBinaries = []string{"/opt/homebrew/bin/brew", "/usr/local/bin/brew"}

// Homebrew installs formulae, casks and (through mas) App Store apps.
type Homebrew struct {
	runner executor.Runner
	fs     types.FS
}

// NewHomebrew creates the macOS driver.
func NewHomebrew(runner executor.Runner, fsys types.FS) *Homebrew {
	return &Homebrew{runner: runner, fs: fsys}
}

func (h *Homebrew) Name() string { return "homebrew" }

// Binary returns the brew executable to invoke, or "" if none is installed.
func (h *Homebrew) Binary() string {
	if h.runner.LookPath("brew") {
		return "brew"
	}
	for _, p := range HomebrewBinaries {
		if _, err := h.fs.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (h *Homebrew) brew(args ...string) executor.Command {
	bin := h.Binary()
	if bin == "" {
		bin = "brew"
	}
	return executor.Command{Name: bin, Args: args}
}

// masBinary returns the mas executable. A fresh Homebrew install does not
// put its prefix on this process's PATH, so mas is looked up next to brew.
func (h *Homebrew) masBinary() string {
	if h.runner.LookPath("mas") {
		return "mas"
	}
	if bin := h.Binary(); filepath.IsAbs(bin) {
		return filepath.Join(filepath.Dir(bin), "mas")
	}
	return "mas"
}

// MasInstalled reports whether mas is on PATH or in the brew prefix.
func (h *Homebrew) MasInstalled() bool {
	bin := h.masBinary()
	if !filepath.IsAbs(bin) {
		return h.runner.LookPath(bin)
	}
	_, err := h.fs.Stat(bin)
	return err == nil
}

func (h *Homebrew) mas(args ...string) executor.Command {
	return executor.Command{Name: h.masBinary(), Args: args}
}

func (h *Homebrew) Update(ctx context.Context) error {
	return run(ctx, h.runner, h.brew("update"))
}

func (h *Homebrew) UpgradeAll(ctx context.Context) error {
	if err := run(ctx, h.runner, h.brew("upgrade")); err != nil {
		return err
	}
	if h.MasInstalled() {
		return run(ctx, h.runner, h.mas("upgrade"))
	}
	return nil
}

func (h *Homebrew) InstallUnit(ctx context.Context, u Unit) error {
	switch u.Kind {
	case KindPackage, "":
		return run(ctx, h.runner, h.brew("install", u.Name))
	case KindCask:
		return run(ctx, h.runner, h.brew("install", "--cask", u.Name))
	case KindApp:
		return run(ctx, h.runner, h.mas("install", u.ID))
	default:
		return unsupportedKind(h.Name(), u)
	}
}

func (h *Homebrew) IsUnitInstalled(ctx context.Context, u Unit) (bool, error) {
	switch u.Kind {
	case KindPackage, "":
		return executor.Probe(ctx, h.runner, h.brew("list", "--formula", u.Name))
	case KindCask:
		return executor.Probe(ctx, h.runner, h.brew("list", "--cask", u.Name))
	case KindApp:
		out, err := executor.Output(ctx, h.runner, h.mas("list"))
		if err != nil {
			return false, err
		}
		return masListHas(out, u.ID), nil
	default:
		return false, unsupportedKind(h.Name(), u)
	}
}

// masListHas scans `mas list` output ("<id>  <name> (<version>)") for id.
func masListHas(out, id string) bool {
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) > 0 && fields[0] == id {
			return true
		}
	}
	return false
}

// HomebrewInstallScript is the upstream installer, run non-interactively.
const HomebrewInstallScript = "https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh"

// Installed reports whether a brew executable is available.
func (h *Homebrew) Installed() bool {
	return h.Binary() != ""
}

// InstallSelf runs the Homebrew installer.
func (h *Homebrew) InstallSelf(ctx context.Context) error {
	script := `NONINTERACTIVE=1 /bin/bash -c "$(curl -fsSL ` + HomebrewInstallScript + `)"`
	return run(ctx, h.runner, executor.Command{Name: "bash", Args: []string{"-c", script}})
}

// AppStoreSignedIn reports whether mas has an active App Store session.
// Without mas there can be no session.
func (h *Homebrew) AppStoreSignedIn(ctx context.Context) bool {
	if !h.MasInstalled() {
		return false
	}
	ok, err := executor.Probe(ctx, h.runner, h.mas("account"))
	return err == nil && ok
}

// AppStoreSignIn starts an App Store session. mas only accepts the password
// as an argument, so it is marked secret.
func (h *Homebrew) AppStoreSignIn(ctx context.Context, email, password string) error {
	c := h.mas("signin", email, password)
	c.Quiet = true
	c.Secrets = []string{password}
	return run(ctx, h.runner, c)
}

var _ Driver = (*Homebrew)(nil)
