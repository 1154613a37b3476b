package testutils

import (
	"context"
	"strings"
	"sync"
)

// Command is one recorded external command invocation.
type Command struct {
	Name string
	Args []string
}

// Line returns the full command line as a single string.
func (c Command) Line() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// RecordingRunner implements runner.Runner for tests: it records every
// command and lets the test script failures and side effects through the
// OnRun and OnOutput hooks.
type RecordingRunner struct {
	mu    sync.Mutex
	calls []Command

	OnRun    func(cmd Command) error
	OnOutput func(cmd Command) (string, error)
}

// Run records the command and defers to the OnRun hook, if any.
func (r *RecordingRunner) Run(_ context.Context, name string, args ...string) error {
	cmd := r.record(name, args)
	if r.OnRun != nil {
		return r.OnRun(cmd)
	}
	return nil
}

// Output records the command and defers to the OnOutput hook, if any.
func (r *RecordingRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	cmd := r.record(name, args)
	if r.OnOutput != nil {
		return r.OnOutput(cmd)
	}
	return "", nil
}

// Calls returns a copy of all recorded commands, in invocation order.
func (r *RecordingRunner) Calls() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command(nil), r.calls...)
}

// Lines returns the recorded command lines, in invocation order.
func (r *RecordingRunner) Lines() []string {
	calls := r.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.Line()
	}
	return lines
}

func (r *RecordingRunner) record(name string, args []string) Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmd := Command{Name: name, Args: append([]string(nil), args...)}
	r.calls = append(r.calls, cmd)
	return cmd
}
