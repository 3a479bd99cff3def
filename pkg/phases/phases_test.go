package phases_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/arthur-debert/bootstrap/pkg/config"
	"github.com/arthur-debert/bootstrap/pkg/errors"
	"github.com/arthur-debert/bootstrap/pkg/executor"
	"github.com/arthur-debert/bootstrap/pkg/executor/executortest"
	"github.com/arthur-debert/bootstrap/pkg/filesystem/filesystemtest"
	"github.com/arthur-debert/bootstrap/pkg/orchestration"
	"github.com/arthur-debert/bootstrap/pkg/phases"
	"github.com/arthur-debert/bootstrap/pkg/pkgmgr"
	"github.com/arthur-debert/bootstrap/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reporter struct {
	warnings []string
}

func (r *reporter) Warning(msg string) { r.warnings = append(r.warnings, msg) }

type quietObserver struct{}

func (quietObserver) PhaseHeader(int, int, string) {}
func (quietObserver) Skipped(string, string)       {}

// fakeHost wires a Provisioner to a recording runner and an in-memory
// filesystem. Package installs and tee writes leave state behind so a
// second run can observe them.
type fakeHost struct {
	rec *executortest.Recorder
	fs  *filesystemtest.Memory
	rep *reporter
	cfg *config.Config
	p   *phases.Provisioner
}

func newFakeHost(t *testing.T, uid int) *fakeHost {
	t.Helper()
	h := &fakeHost{
		rec: executortest.New(),
		fs:  filesystemtest.New(),
		rep: &reporter{},
		cfg: config.Default(),
	}
	h.rec.OnRun("sudo env DEBIAN_FRONTEND=noninteractive apt-get install -y", func(c executor.Command) {
		name := c.Args[len(c.Args)-1]
		h.rec.Stdout("dpkg-query -W -f=${Status} "+name, "install ok installed")
	})
	h.rec.OnRun("sudo tee", func(c executor.Command) {
		require.NoError(t, h.fs.MkdirAll(parentDir(c.Args[0]), 0755))
		require.NoError(t, h.fs.WriteFile(c.Args[0], []byte("written"), 0644))
	})
	h.p = phases.New(phases.Deps{
		Runner:   h.rec,
		FS:       h.fs,
		Config:   h.cfg,
		UID:      uid,
		Reporter: h.rep,
	})
	t.Cleanup(h.p.Close)
	return h
}

func (h *fakeHost) run(rc *types.RunContext) (*types.ExecutionContext, error) {
	return orchestration.Execute(context.Background(), rc, h.p.Pipeline(), quietObserver{})
}

func parentDir(p string) string {
	return p[:strings.LastIndex(p, "/")]
}

func runContext(os types.OS, baseOnly bool, hostname string) *types.RunContext {
	system := types.LinuxLike
	if os == types.Darwin {
		system = types.DarwinLike
	}
	return &types.RunContext{
		System:         system,
		OS:             os,
		Hostname:       "localhost",
		TargetHostname: hostname,
		Home:           "/home/me",
		LibDir:         "/home/me/.local/share/bootstrap",
		BaseOnly:       baseOnly,
	}
}

func TestPipeline_OrderAndExitCodes(t *testing.T) {
	h := newFakeHost(t, 1000)
	pipeline := h.p.Pipeline()

	var names []string
	for i, ph := range pipeline {
		names = append(names, ph.Name)
		assert.Equal(t, errors.ExitPhaseBase+i, ph.ExitCode, ph.Name)
		assert.Equal(t, i >= 6, ph.Workstation, ph.Name)
	}
	assert.Equal(t, []string{
		"init", "set-hostname", "setup-package-system", "update-system",
		"install-base-packages", "install-bashrc", "install-workstation-packages",
		"install-rust", "install-ruby", "install-node", "set-preferences",
		"install-dot-configs",
	}, names)
}

func TestUbuntuBaseOnlyWithHostname(t *testing.T) {
	h := newFakeHost(t, 1000)
	rc := runContext(types.Ubuntu, true, "mybox")

	ec, err := h.run(rc)
	require.NoError(t, err)
	assert.Equal(t, 0, errors.ExitCode(err))
	assert.Equal(t, 6, ec.CompletedPhases)
	assert.Equal(t, 6, ec.SkippedPhases)

	require.NotEmpty(t, h.rep.warnings)
	assert.Contains(t, h.rep.warnings[0], "not yet supported")

	assert.True(t, h.rec.Ran("sudo -v"))
	assert.True(t, h.rec.Ran("sudo env DEBIAN_FRONTEND=noninteractive apt-get update"))
	assert.True(t, h.rec.Ran("sudo env DEBIAN_FRONTEND=noninteractive apt-get -y upgrade"))
	assert.Equal(t, 11, h.rec.Count("sudo env DEBIAN_FRONTEND=noninteractive apt-get install -y"))
	assert.True(t, h.rec.Ran("sudo env DEBIAN_FRONTEND=noninteractive apt-get install -y ripgrep"))
	assert.True(t, h.rec.Ran("sudo tee /etc/bash.bashrc.local"))
	assert.True(t, h.rec.Ran("sudo tee /etc/profile.d/bootstrap.sh"))
	assert.False(t, h.rec.Ran("scutil"))
	assertNoWorkstationEffects(t, h.rec)

	bashrc := h.rec.Inputs["sudo tee /etc/bash.bashrc.local"]
	assert.Contains(t, bashrc, "HISTCONTROL")
}

func TestUbuntuSecondRunIsIdempotent(t *testing.T) {
	h := newFakeHost(t, 1000)
	rc := runContext(types.Ubuntu, true, "")

	_, err := h.run(rc)
	require.NoError(t, err)
	h.rec.Reset()

	_, err = h.run(rc)
	require.NoError(t, err)
	assert.Zero(t, h.rec.Count("sudo env DEBIAN_FRONTEND=noninteractive apt-get install"))
	assert.Zero(t, h.rec.Count("sudo tee"))
	assert.Equal(t, 11, h.rec.Count("dpkg-query"))
}

func assertNoWorkstationEffects(t *testing.T, rec *executortest.Recorder) {
	t.Helper()
	for _, prefix := range []string{"bash -c", "git clone", "gsettings", "defaults", "dodot", "/home/me/.rbenv"} {
		assert.False(t, rec.Ran(prefix), "%s should not run in base-only mode", prefix)
	}
	assert.Equal(t, 0, rec.Count("sudo env DEBIAN_FRONTEND=noninteractive apt-get install -y fzf"))
}

func TestUnknownProfileDegrades(t *testing.T) {
	h := newFakeHost(t, 1000)
	rc := runContext(types.Unknown, false, "mybox")

	ec, err := h.run(rc)
	require.NoError(t, err)
	assert.Equal(t, 12, ec.CompletedPhases)

	unsupported := 0
	for _, w := range h.rep.warnings {
		if strings.Contains(w, "not supported on unknown") {
			unsupported++
		}
	}
	assert.Equal(t, 6, unsupported)

	// platform-agnostic phases still run
	assert.True(t, h.rec.Ran("sudo -v"))
	assert.True(t, h.rec.Ran("sudo tee /etc/bash.bashrc.local"))
	assert.True(t, h.rec.Ran("bash -c curl --proto '=https'"))
	assert.True(t, h.rec.Ran("git clone --depth 1 https://github.com/rbenv/rbenv.git"))
	assert.False(t, h.rec.Ran("sudo env DEBIAN_FRONTEND=noninteractive apt-get"))
	assert.False(t, h.rec.Ran("sudo pacman"))
}

func TestInitRefusesRoot(t *testing.T) {
	h := newFakeHost(t, 0)

	ec, err := h.run(runContext(types.Ubuntu, true, ""))
	require.Error(t, err)
	assert.Equal(t, errors.ExitRunningAsRoot, errors.ExitCode(err))
	assert.True(t, errors.IsErrorCode(err, errors.ErrPrecondition))
	assert.Empty(t, h.rec.Lines())
	assert.Len(t, ec.PhaseResults, 1)
}

func TestInitPrivilegeRejected(t *testing.T) {
	h := newFakeHost(t, 1000)
	h.rec.Fail("sudo -v", 1)

	_, err := h.run(runContext(types.Arch, true, ""))
	require.Error(t, err)
	assert.Equal(t, errors.ExitPrivilege, errors.ExitCode(err))
	assert.False(t, h.rec.Ran("sudo pacman"))
}

func TestCloseReportsKeepAliveFailures(t *testing.T) {
	h := newFakeHost(t, 1000)
	h.cfg.Privilege.KeepAliveInterval = config.Duration(time.Millisecond)
	h.rec.Fail("sudo -n true", 1)

	require.NoError(t, h.p.Pipeline()[0].Run(context.Background(), runContext(types.Arch, true, "")))
	require.Eventually(t, func() bool { return h.rec.Count("sudo -n true") >= 2 }, time.Second, time.Millisecond)

	h.p.Close()
	require.NotEmpty(t, h.rep.warnings)
	assert.Contains(t, h.rep.warnings[len(h.rep.warnings)-1], "sudo keep-alive failed")

	h.p.Close()
}

func TestBasePackageFailureUsesPhaseExitCode(t *testing.T) {
	h := newFakeHost(t, 1000)
	h.rec.Fail("pacman -Q", 1).
		Fail("sudo pacman -S --needed --noconfirm git", 1)

	_, err := h.run(runContext(types.Arch, true, ""))
	require.Error(t, err)
	assert.Equal(t, 14, errors.ExitCode(err))
	assert.Contains(t, err.Error(), "git")
	assert.True(t, h.rec.Ran("sudo pacman -S --needed --noconfirm curl"))
	assert.False(t, h.rec.Ran("sudo pacman -S --needed --noconfirm wget"))
	assert.False(t, h.rec.Ran("sudo tee"))
}

func TestDarwinHostname(t *testing.T) {
	h := newFakeHost(t, 1000)
	h.rec.Stdout("scutil --get ComputerName", "old-name\n").
		Stdout("scutil --get HostName", "mybox\n").
		Fail("scutil --get LocalHostName", 1)

	ph := h.p.Pipeline()[1]
	require.Equal(t, phases.SetHostname, ph.Name)
	require.NoError(t, ph.Run(context.Background(), runContext(types.Darwin, false, "mybox")))

	assert.True(t, h.rec.Ran("sudo scutil --set ComputerName mybox"))
	assert.False(t, h.rec.Ran("sudo scutil --set HostName"))
	assert.True(t, h.rec.Ran("sudo scutil --set LocalHostName mybox"))
}

func TestNoHostnameRequested(t *testing.T) {
	h := newFakeHost(t, 1000)
	require.NoError(t, h.p.Pipeline()[1].Run(context.Background(), runContext(types.Darwin, false, "")))
	assert.Empty(t, h.rec.Lines())
	assert.Empty(t, h.rep.warnings)
}

func TestDarwinSetupPackageSystem(t *testing.T) {
	h := newFakeHost(t, 1000)
	h.rec.OnRun("bash -c NONINTERACTIVE=1", func(executor.Command) { h.rec.Path("brew") })
	rc := runContext(types.Darwin, false, "")
	rc.AppStoreCredential = &types.Credential{Email: "me@example.com", Password: "pw"}

	ph := h.p.Pipeline()[2]
	require.NoError(t, ph.Run(context.Background(), rc))
	assert.True(t, h.rec.Ran("bash -c NONINTERACTIVE=1"))
	// unmatched `brew list` succeeds, so mas reads as installed
	assert.False(t, h.rec.Ran("brew install mas"))
	assert.True(t, h.rec.Ran("mas signin me@example.com ********"))

	h.rec.Reset()
	h.rec.Path("mas")
	require.NoError(t, ph.Run(context.Background(), rc))
	assert.False(t, h.rec.Ran("bash -c"))
	assert.False(t, h.rec.Ran("mas signin"), "already signed in")
}

func TestDarwinSetupPackageSystem_FreshPrefixNotOnPath(t *testing.T) {
	h := newFakeHost(t, 1000)
	h.rec.OnRun("bash -c NONINTERACTIVE=1", func(executor.Command) {
		require.NoError(t, h.fs.WriteFile("/opt/homebrew/bin/brew", []byte{}, 0755))
	})
	h.rec.Fail("/opt/homebrew/bin/brew list --formula mas", 1)
	h.rec.OnRun("/opt/homebrew/bin/brew install mas", func(executor.Command) {
		require.NoError(t, h.fs.WriteFile("/opt/homebrew/bin/mas", []byte{}, 0755))
	})
	h.rec.Fail("/opt/homebrew/bin/mas account", 1)
	rc := runContext(types.Darwin, false, "")
	rc.AppStoreCredential = &types.Credential{Email: "me@example.com", Password: "pw"}

	require.NoError(t, h.p.Pipeline()[2].Run(context.Background(), rc))
	assert.Equal(t, []string{
		"bash -c NONINTERACTIVE=1 /bin/bash -c \"$(curl -fsSL " + pkgmgr.HomebrewInstallScript + ")\"",
		"/opt/homebrew/bin/brew list --formula mas",
		"/opt/homebrew/bin/brew install mas",
		"/opt/homebrew/bin/mas account",
		"/opt/homebrew/bin/mas signin me@example.com ********",
	}, h.rec.Lines())
	assert.False(t, h.rec.Ran("mas "), "mas is never run by bare name")
}

func TestUbuntuWorkstation(t *testing.T) {
	h := newFakeHost(t, 1000)
	h.cfg.Dotfiles.Repo = "https://github.com/me/dotfiles.git"
	h.rec.Path("dodot").
		Stdout("gsettings get", "'something-else'\n")

	_, err := h.run(runContext(types.Ubuntu, false, ""))
	require.NoError(t, err)

	assert.True(t, h.rec.Ran("sudo env DEBIAN_FRONTEND=noninteractive apt-get install -y fzf"))
	assert.True(t, h.rec.Ran("bash -c curl --proto '=https' --tlsv1.2 -sSf https://sh.rustup.rs"))
	assert.True(t, h.rec.Ran("/home/me/.rbenv/bin/rbenv install --skip-existing"))
	assert.True(t, h.rec.Ran("bash -c curl -fsSL https://raw.githubusercontent.com/nvm-sh/nvm/"))
	assert.Equal(t, 3, h.rec.Count("gsettings set"))
	assert.True(t, h.rec.Ran("git clone https://github.com/me/dotfiles.git /home/me/.dotfiles"))
	assert.True(t, h.rec.Ran("dodot deploy"))
}

func TestArchHasNoPreferences(t *testing.T) {
	h := newFakeHost(t, 1000)
	ph := h.p.Pipeline()[10]
	require.Equal(t, phases.SetPreferences, ph.Name)

	require.NoError(t, ph.Run(context.Background(), runContext(types.Arch, false, "")))
	assert.Empty(t, h.rec.Lines())
	assert.Empty(t, h.rep.warnings)
}

func TestDotConfigsDefaultToLibDir(t *testing.T) {
	h := newFakeHost(t, 1000)
	h.cfg.Dotfiles.Repo = "https://github.com/me/dotfiles.git"
	h.cfg.Dotfiles.Dest = ""
	h.rec.Path("dodot")

	require.NoError(t, h.p.Pipeline()[11].Run(context.Background(), runContext(types.Ubuntu, false, "")))
	assert.True(t, h.rec.Ran("git clone https://github.com/me/dotfiles.git /home/me/.local/share/bootstrap/dotfiles"))
	require.Len(t, h.rec.Commands, 2)
	assert.Equal(t, "/home/me/.local/share/bootstrap/dotfiles", h.rec.Commands[1].Dir)
}

func TestDotConfigsWithoutRepoWarns(t *testing.T) {
	h := newFakeHost(t, 1000)
	ph := h.p.Pipeline()[11]

	require.NoError(t, ph.Run(context.Background(), runContext(types.Darwin, false, "")))
	assert.Empty(t, h.rec.Lines())
	require.Len(t, h.rep.warnings, 1)
	assert.Contains(t, h.rep.warnings[0], "dotfiles.repo")
}
