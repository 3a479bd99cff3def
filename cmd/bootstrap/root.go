package main

import (
	"fmt"
	"io"
	"os"

	"github.com/arthur-debert/bootstrap/internal/version"
	"github.com/arthur-debert/bootstrap/pkg/config"
	"github.com/arthur-debert/bootstrap/pkg/errors"
	"github.com/arthur-debert/bootstrap/pkg/executor"
	"github.com/arthur-debert/bootstrap/pkg/filesystem"
	"github.com/arthur-debert/bootstrap/pkg/logging"
	"github.com/arthur-debert/bootstrap/pkg/orchestration"
	"github.com/arthur-debert/bootstrap/pkg/paths"
	"github.com/arthur-debert/bootstrap/pkg/phases"
	"github.com/arthur-debert/bootstrap/pkg/pkgmgr"
	"github.com/arthur-debert/bootstrap/pkg/platform"
	"github.com/arthur-debert/bootstrap/pkg/style"
	"github.com/arthur-debert/bootstrap/pkg/types"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// App is everything the command touches on the host.
type App struct {
	Host   platform.Host
	Runner executor.Runner
	FS     types.FS
	UID    int
	Getenv func(string) string
	Prompt PasswordPrompt
	Stdout io.Writer
	Stderr io.Writer
}

// NewApp wires the real host.
func NewApp() *App {
	return &App{
		Host:   platform.LocalHost{},
		Runner: executor.NewSystemRunner(),
		FS:     filesystem.NewOS(),
		UID:    os.Geteuid(),
		Getenv: os.Getenv,
		Prompt: terminalPrompt(os.Stderr),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

type options struct {
	verbosity   int
	baseOnly    bool
	appStore    credentialFlag
	configPath  string
	printConfig bool
}

// NewRootCmd builds the bootstrap command.
func NewRootCmd(app *App) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "bootstrap [hostname]",
		Short: "Provision this machine into a configured workstation",
		Long: `bootstrap detects the operating system, asks for sudo once and then runs
a fixed list of idempotent provisioning phases: hostname, package manager,
system update, base packages and shell files, followed (unless -b is given)
by workstation packages, rust, ruby, node, preferences and dotfiles.

It is safe to run again after a failure: finished work is detected and skipped.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return errors.Newf(errors.ErrUsage, "expected at most one hostname, got %d arguments", len(args))
			}
			return nil
		},
		Version: version.String(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBootstrap(cmd, app, opts, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetOut(app.Stdout)
	rootCmd.SetErr(app.Stderr)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Wrap(err, errors.ErrUsage, "invalid option")
	})

	flags := rootCmd.Flags()
	flags.BoolVarP(&opts.baseOnly, "base-only", "b", false, "Run only the base phases, skip the workstation branch")
	flags.VarP(&opts.appStore, "app-store", "a", "App Store credential as `email:password` (macOS); the password is prompted for when omitted")
	flags.CountVarP(&opts.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	flags.StringVar(&opts.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/bootstrap/config.toml)")
	flags.BoolVar(&opts.printConfig, "print-config", false, "Print the effective configuration as TOML and exit")
	flags.SortFlags = false

	initTemplateFormatting(rootCmd)
	return rootCmd
}

func runBootstrap(cmd *cobra.Command, app *App, opts *options, args []string) error {
	ctx := cmd.Context()
	logger := logging.GetLogger("bootstrap")

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.printConfig {
		out, err := config.Render(cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	}

	rc := types.NewRunContext(platform.Resolve(app.Host))
	if len(args) == 1 {
		rc.TargetHostname = args[0]
	}
	rc.BaseOnly = opts.baseOnly
	rc.DataDir = cfg.DataDir
	rc.LibDir = paths.LibDir()
	home, err := paths.HomeDirectory(app.Getenv)
	if err != nil {
		return err
	}
	rc.Home = home

	if opts.appStore.set {
		cred, err := parseCredential(opts.appStore.value, app.Prompt)
		if err != nil {
			return err
		}
		rc.AppStoreCredential = cred
	}
	if err := checkAppStoreCredential(cmd, app, rc); err != nil {
		return err
	}

	logger.Info().
		Str("os", rc.OS.String()).
		Str("targetHostname", rc.TargetHostname).
		Bool("baseOnly", rc.BaseOnly).
		Msg("Starting bootstrap")

	printer := style.NewPrinter(app.Stdout)
	prov := phases.New(phases.Deps{
		Runner:   app.Runner,
		FS:       app.FS,
		Config:   cfg,
		UID:      app.UID,
		Reporter: printer,
	})
	defer prov.Close()

	ec, err := orchestration.Execute(ctx, rc, prov.Pipeline(), printer)
	if err != nil {
		return err
	}
	printer.Done(ec.CompletedPhases, ec.SkippedPhases, ec.Duration())
	return nil
}

// checkAppStoreCredential fails before any phase when the workstation
// branch on macOS would need to install App Store apps without a session
// or a credential to start one.
func checkAppStoreCredential(cmd *cobra.Command, app *App, rc *types.RunContext) error {
	if rc.OS != types.Darwin || rc.BaseOnly || rc.HasCredential() {
		return nil
	}
	if pkgmgr.NewHomebrew(app.Runner, app.FS).AppStoreSignedIn(cmd.Context()) {
		return nil
	}
	return errors.New(errors.ErrPrecondition, "not signed in to the App Store: pass -a <email>:<password> or run with -b").
		WithExitCode(errors.ExitMissingCredential)
}
