package toolexec

import (
	"context"
	"strings"
	"sync"
)

// Handler answers a recorded command. It runs in the caller's working
// directory, so it can create the files a real tool would leave behind.
type Handler func(cmd Command) Outcome

// Recorder is an Executor that records every command and answers from
// handlers keyed by command prefix. Unmatched commands succeed with no output.
type Recorder struct {
	mu       sync.Mutex
	handlers []prefixHandler
	Commands []Command
}

type prefixHandler struct {
	prefix []string
	fn     Handler
}

// On registers fn for commands whose name and leading args equal prefix.
// Later registrations win.
func (r *Recorder) On(fn Handler, prefix ...string) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, prefixHandler{prefix: prefix, fn: fn})
	return r
}

func (r *Recorder) Run(_ context.Context, cmd Command) Outcome {
	r.mu.Lock()
	r.Commands = append(r.Commands, cmd)
	var fn Handler
	for i := len(r.handlers) - 1; i >= 0; i-- {
		if matches(cmd, r.handlers[i].prefix) {
			fn = r.handlers[i].fn
			break
		}
	}
	r.mu.Unlock()
	if fn == nil {
		return Outcome{}
	}
	return fn(cmd)
}

func matches(cmd Command, prefix []string) bool {
	full := append([]string{cmd.Name}, cmd.Args...)
	if len(prefix) > len(full) {
		return false
	}
	for i, p := range prefix {
		if full[i] != p {
			return false
		}
	}
	return true
}

// Lines returns each recorded command rendered with String.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]string, len(r.Commands))
	for i, c := range r.Commands {
		lines[i] = c.String()
	}
	return lines
}

// Ran reports whether any recorded command line starts with prefix.
func (r *Recorder) Ran(prefix string) bool {
	for _, l := range r.Lines() {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}

// Stdout returns a handler that succeeds with the given output.
func Stdout(out string) Handler {
	return func(Command) Outcome { return Outcome{Stdout: []byte(out)} }
}

// Exit returns a handler that fails with the given exit code.
func Exit(code int) Handler {
	return func(Command) Outcome { return Outcome{ExitCode: code} }
}
