// Package runner abstracts the execution of external commands, so that
// everything that shells out can be faked in tests.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Runner executes external commands, blocking until they finish.
type Runner interface {
	// Run executes the command and streams its output to the configured
	// writers. A non-zero exit status is returned as a non-nil error.
	Run(ctx context.Context, name string, args ...string) error
	// Output executes the command and returns its captured standard output.
	Output(ctx context.Context, name string, args ...string) (string, error)
}

// OS is the Runner implementation backed by os/exec.
type OS struct {
	Logger logrus.FieldLogger
	Stdout io.Writer
	Stderr io.Writer
}

// NewOS returns an os/exec-backed Runner that streams command output to the
// given writers.
func NewOS(logger logrus.FieldLogger, stdout, stderr io.Writer) *OS {
	return &OS{Logger: logger, Stdout: stdout, Stderr: stderr}
}

// Run implements Runner.
func (r *OS) Run(ctx context.Context, name string, args ...string) error {
	r.Logger.WithField("cmd", commandLine(name, args)).Debug("running command")

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("'%s': %w", commandLine(name, args), err)
	}
	return nil
}

// Output implements Runner.
func (r *OS) Output(ctx context.Context, name string, args ...string) (string, error) {
	r.Logger.WithField("cmd", commandLine(name, args)).Debug("running command")

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = r.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("'%s': %w", commandLine(name, args), err)
	}
	return stdout.String(), nil
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

var _ Runner = &OS{}
