// Package toolexec runs external command-line tools and reports what
// happened as an Outcome instead of an error, so callers decide which
// failures are recoverable.
package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// Command is one external tool invocation. It runs in the process's current
// working directory.
type Command struct {
	Name  string
	Args  []string
	Env   map[string]string
	Stdin io.Reader
}

func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quote(c.Name))
	for _, a := range c.Args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.ContainsAny(s, " \t\n'\"$`\\|&;<>()*?") {
		return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
	}
	return s
}

// EnvList returns the command environment as sorted KEY=VALUE pairs.
func (c Command) EnvList() []string {
	env := make([]string, 0, len(c.Env))
	for k, v := range c.Env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}

const (
	ExitNotFound = 127
	ExitKilled   = 124
)

// Outcome is the result of running a Command. Stderr is not kept.
type Outcome struct {
	Stdout   []byte
	ExitCode int
	Err      error
}

func (o Outcome) OK() bool     { return o.Err == nil && o.ExitCode == 0 }
func (o Outcome) Failed() bool { return !o.OK() }

// Executor runs commands.
type Executor interface {
	Run(ctx context.Context, cmd Command) Outcome
}

// Local runs commands on the host with os/exec.
type Local struct {
	// Env is added to every command's environment, before the command's own.
	Env map[string]string
}

func (l Local) Run(ctx context.Context, c Command) Outcome {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Env = os.Environ()
	for k, v := range l.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Env = append(cmd.Env, c.EnvList()...)
	cmd.Stdin = c.Stdin
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	err := cmd.Run()
	return Outcome{Stdout: stdout.Bytes(), ExitCode: exitCode(ctx, err), Err: err}
}

func exitCode(ctx context.Context, err error) int {
	if err == nil {
		return 0
	}
	if ctx.Err() != nil {
		return ExitKilled
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.ExitCode() < 0 {
			return ExitKilled
		}
		return exitErr.ExitCode()
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) || errors.Is(err, os.ErrNotExist) {
		return ExitNotFound
	}
	return 1
}

// Describe summarises a failed outcome for log lines.
func Describe(o Outcome) string {
	if o.OK() {
		return "ok"
	}
	if o.Err != nil {
		return fmt.Sprintf("exit %d: %v", o.ExitCode, o.Err)
	}
	return fmt.Sprintf("exit %d", o.ExitCode)
}
