// Package executortest provides a recording executor.Runner for tests.
package executortest

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/arthur-debert/bootstrap/pkg/errors"
	"github.com/arthur-debert/bootstrap/pkg/executor"
)

type rule struct {
	prefix string
	result executor.Result
	hook   func(executor.Command)
}

// Recorder records every command it is asked to run and answers from a
// table of prefix rules. Unmatched commands succeed with empty output.
type Recorder struct {
	mu       sync.Mutex
	Commands []executor.Command
	// Inputs holds what was written to each command's stdin, keyed by Line().
	Inputs map[string]string

	rules []rule
	paths map[string]bool
}

// New creates an empty Recorder.
func New() *Recorder {
	return &Recorder{
		Inputs: make(map[string]string),
		paths:  make(map[string]bool),
	}
}

// Stdout makes commands whose line starts with prefix print out.
func (r *Recorder) Stdout(prefix, out string) *Recorder {
	return r.add(rule{prefix: prefix, result: executor.Result{Stdout: out}})
}

// Fail makes commands whose line starts with prefix exit with exitCode.
func (r *Recorder) Fail(prefix string, exitCode int) *Recorder {
	return r.add(rule{prefix: prefix, result: executor.Result{ExitCode: exitCode}})
}

// OnRun calls hook whenever a command whose line starts with prefix runs
// successfully, letting tests simulate side effects such as created files.
func (r *Recorder) OnRun(prefix string, hook func(executor.Command)) *Recorder {
	return r.add(rule{prefix: prefix, hook: hook})
}

// Path marks name as present on PATH.
func (r *Recorder) Path(names ...string) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range names {
		r.paths[n] = true
	}
	return r
}

func (r *Recorder) add(ru rule) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, ru)
	return r
}

// LookPath implements executor.Runner.
func (r *Recorder) LookPath(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paths[name]
}

// Run implements executor.Runner. Later rules take precedence over earlier
// ones with the same prefix.
func (r *Recorder) Run(_ context.Context, c executor.Command) (executor.Result, error) {
	line := c.Line()
	var input string
	if c.Stdin != nil {
		data, _ := io.ReadAll(c.Stdin)
		input = string(data)
	}

	r.mu.Lock()
	r.Commands = append(r.Commands, c)
	if c.Stdin != nil {
		r.Inputs[line] = input
	}
	var matched *rule
	var hooks []func(executor.Command)
	for i := len(r.rules) - 1; i >= 0; i-- {
		ru := r.rules[i]
		if !strings.HasPrefix(line, ru.prefix) {
			continue
		}
		if ru.hook != nil {
			hooks = append(hooks, ru.hook)
			continue
		}
		if matched == nil {
			matched = &r.rules[i]
		}
	}
	r.mu.Unlock()

	res := executor.Result{}
	if matched != nil {
		res = matched.result
	}
	if res.ExitCode != 0 {
		return res, errors.Newf(errors.ErrExternalTool, "command failed: %s", line).
			WithDetail("exitCode", res.ExitCode)
	}
	for _, h := range hooks {
		h(c)
	}
	return res, nil
}

// Lines returns every recorded command line in order.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]string, len(r.Commands))
	for i, c := range r.Commands {
		lines[i] = c.Line()
	}
	return lines
}

// Ran reports whether any recorded command line starts with prefix.
func (r *Recorder) Ran(prefix string) bool {
	return r.Count(prefix) > 0
}

// Count returns how many recorded command lines start with prefix.
func (r *Recorder) Count(prefix string) int {
	n := 0
	for _, l := range r.Lines() {
		if strings.HasPrefix(l, prefix) {
			n++
		}
	}
	return n
}

// Reset forgets recorded commands but keeps the rules.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Commands = nil
	r.Inputs = make(map[string]string)
}

// String is handy in assertion messages.
func (r *Recorder) String() string {
	return fmt.Sprintf("%q", r.Lines())
}

var _ executor.Runner = (*Recorder)(nil)
