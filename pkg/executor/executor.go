package executor

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/arthur-debert/bootstrap/pkg/errors"
	"github.com/arthur-debert/bootstrap/pkg/logging"
	"github.com/rs/zerolog"
)

// Command describes one external process invocation.
type Command struct {
	Name string
	Args []string

	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is added on top of the current environment. Under sudo, which
	// resets the environment, it is passed through env(1) instead.
	Env map[string]string
	// Stdin feeds the process; nil means no input unless Interactive.
	Stdin io.Reader

	// Sudo runs the command through sudo.
	Sudo bool
	// Quiet suppresses echoing output to the console. Probes set this.
	Quiet bool
	// Interactive attaches the process to the terminal (password prompts).
	Interactive bool

	// Secrets are masked wherever the command is shown or logged.
	Secrets []string
}

// Redacted replaces secret values in what is shown for a command.
const Redacted = "********"

// argv returns the program and arguments actually executed. sudo resets the
// environment, so under sudo Env is passed through env(1).
func (c Command) argv() (string, []string) {
	if !c.Sudo {
		return c.Name, c.Args
	}
	args := make([]string, 0, len(c.Args)+len(c.Env)+2)
	if len(c.Env) > 0 {
		args = append(args, "env")
		args = append(args, envPairs(c.Env)...)
	}
	args = append(args, c.Name)
	args = append(args, c.Args...)
	return "sudo", args
}

func envPairs(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, env[k]))
	}
	return pairs
}

func (c Command) redact(args []string) []string {
	if len(c.Secrets) == 0 {
		return args
	}
	out := make([]string, len(args))
	for i, a := range args {
		for _, secret := range c.Secrets {
			if secret != "" {
				a = strings.ReplaceAll(a, secret, Redacted)
			}
		}
		out[i] = a
	}
	return out
}

// Line returns the command as it would be typed in a shell, secrets masked.
func (c Command) Line() string {
	name, args := c.argv()
	return strings.Join(append([]string{name}, c.redact(args)...), " ")
}

// Result holds the captured output of a finished command.
type Result struct {
	Stdout string
	Stderr string
	// ExitCode is -1 when the process could not be started.
	ExitCode int
}

// Runner executes commands. Run returns an EXTERNAL_TOOL error when the
// process fails to start or exits non-zero; Result.ExitCode tells the two
// apart.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
	LookPath(name string) bool
}

// SystemRunner runs commands on the local host
type SystemRunner struct {
	logger zerolog.Logger
	stdout io.Writer
	stderr io.Writer
}

// NewSystemRunner creates a runner that echoes command output to the
// process stdout and stderr.
func NewSystemRunner() *SystemRunner {
	return &SystemRunner{
		logger: logging.GetLogger("executor"),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// LookPath reports whether name resolves to an executable on PATH.
func (r *SystemRunner) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Run executes c and waits for it. Cancelling ctx kills the process.
func (r *SystemRunner) Run(ctx context.Context, c Command) (Result, error) {
	if c.Name == "" {
		return Result{ExitCode: -1}, errors.New(errors.ErrInvalidInput, "command requires a name")
	}

	name, args := c.argv()
	logging.LogCommand(name, c.redact(args))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = c.Dir
	cmd.Env = os.Environ()
	if !c.Sudo {
		cmd.Env = append(cmd.Env, envPairs(c.Env)...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdin = c.Stdin
	switch {
	case c.Interactive:
		if c.Stdin == nil {
			cmd.Stdin = os.Stdin
		}
		cmd.Stdout = io.MultiWriter(r.stdout, &stdout)
		cmd.Stderr = io.MultiWriter(r.stderr, &stderr)
	case c.Quiet:
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	default:
		cmd.Stdout = io.MultiWriter(r.stdout, &stdout)
		cmd.Stderr = io.MultiWriter(r.stderr, &stderr)
	}

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		r.logger.Trace().Str("command", c.Line()).Msg("Command succeeded")
		return res, nil
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	} else {
		res.ExitCode = -1
	}

	r.logger.Debug().
		Err(err).
		Str("command", c.Line()).
		Int("exitCode", res.ExitCode).
		Str("stderr", c.redact([]string{res.Stderr})[0]).
		Msg("Command failed")

	return res, errors.Wrapf(err, errors.ErrExternalTool, "command failed: %s", c.Line()).
		WithDetail("exitCode", res.ExitCode)
}

// Probe runs a quiet command and reports whether it exited zero. A command
// that could not be started at all is returned as an error.
func Probe(ctx context.Context, r Runner, c Command) (bool, error) {
	c.Quiet = true
	res, err := r.Run(ctx, c)
	if err == nil {
		return true, nil
	}
	if res.ExitCode > 0 {
		return false, nil
	}
	return false, err
}

// Output runs a quiet command and returns its trimmed stdout.
func Output(ctx context.Context, r Runner, c Command) (string, error) {
	c.Quiet = true
	res, err := r.Run(ctx, c)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

var _ Runner = (*SystemRunner)(nil)
