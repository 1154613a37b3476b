// Package pyenv manages the project's isolated Python environment: creating
// the virtualenv, installing the manifest and running generated scripts with
// the virtualenv's interpreter.
package pyenv

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/selenv/selenv/lib/runner"
)

// Env is a virtualenv rooted at Path, created with the Python base
// interpreter.
type Env struct {
	Python string
	Path   string

	runner runner.Runner
	logger logrus.FieldLogger
}

// New returns an Env for the virtualenv at path.
func New(r runner.Runner, logger logrus.FieldLogger, python, path string) *Env {
	return &Env{Python: python, Path: path, runner: r, logger: logger}
}

// Create creates the virtualenv. Re-running over an existing virtualenv is
// fine; `python3 -m venv` leaves an existing environment in place.
func (e *Env) Create(ctx context.Context) error {
	e.logger.WithField("path", e.Path).Info("Creating virtual environment...")
	if err := e.runner.Run(ctx, e.Python, "-m", "venv", e.Path); err != nil {
		return fmt.Errorf("could not create the virtual environment: %w", err)
	}
	return nil
}

// Pip returns the path of the virtualenv's pip binary. Invoking it directly
// is the non-interactive equivalent of sourcing the activation script first.
func (e *Env) Pip() string {
	return filepath.Join(e.Path, "bin", "pip")
}

// Interpreter returns the path of the virtualenv's python binary.
func (e *Env) Interpreter() string {
	return filepath.Join(e.Path, "bin", "python")
}

// InstallRequirements upgrades pip inside the virtualenv and installs the
// packages declared in the manifest file.
func (e *Env) InstallRequirements(ctx context.Context, manifest string) error {
	e.logger.Info("Upgrading pip...")
	if err := e.runner.Run(ctx, e.Pip(), "install", "--upgrade", "pip"); err != nil {
		return fmt.Errorf("could not upgrade pip: %w", err)
	}

	e.logger.WithField("manifest", manifest).Info("Installing Python dependencies...")
	if err := e.runner.Run(ctx, e.Pip(), "install", "-r", manifest); err != nil {
		return fmt.Errorf("could not install the declared dependencies: %w", err)
	}
	return nil
}

// RunScript executes script with the virtualenv's interpreter and returns
// its result; a non-zero exit status comes back as a non-nil error.
func (e *Env) RunScript(ctx context.Context, script string) error {
	e.logger.WithField("script", script).Info("Running script...")
	return e.runner.Run(ctx, e.Interpreter(), script)
}
