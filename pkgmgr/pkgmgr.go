// Package pkgmgr wraps the Debian/Ubuntu apt-get front-end used to install
// the OS-level dependencies and the browser package itself.
package pkgmgr

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/selenv/selenv/lib/runner"
)

const aptGet = "apt-get"

// Manager runs apt-get operations through a Runner. The tool itself runs
// unprivileged, so every apt-get invocation goes through sudo.
type Manager struct {
	runner runner.Runner
	logger logrus.FieldLogger
	sudo   bool
}

// New returns a Manager that invokes apt-get under sudo.
func New(r runner.Runner, logger logrus.FieldLogger) *Manager {
	return &Manager{runner: r, logger: logger, sudo: true}
}

// NewWithoutSudo returns a Manager that invokes apt-get directly, for
// environments (e.g. containers) where sudo isn't available.
func NewWithoutSudo(r runner.Runner, logger logrus.FieldLogger) *Manager {
	return &Manager{runner: r, logger: logger}
}

// Update refreshes the package index.
func (m *Manager) Update(ctx context.Context) error {
	m.logger.Info("Updating package index...")
	if err := m.run(ctx, "update"); err != nil {
		return fmt.Errorf("could not update the package index: %w", err)
	}
	return nil
}

// Install installs the named packages, assuming yes to all prompts.
func (m *Manager) Install(ctx context.Context, pkgs ...string) error {
	m.logger.WithField("packages", pkgs).Info("Installing packages...")
	args := append([]string{"install", "-y"}, pkgs...)
	if err := m.run(ctx, args...); err != nil {
		return fmt.Errorf("could not install packages: %w", err)
	}
	return nil
}

// InstallDeb installs a local .deb archive. If the install reports failure,
// exactly one `apt-get -f install` pass is attempted to fix broken
// dependencies before giving up. Failure of that fallback is fatal.
func (m *Manager) InstallDeb(ctx context.Context, path string) error {
	m.logger.WithField("path", path).Info("Installing package archive...")
	err := m.run(ctx, "install", "-y", path)
	if err == nil {
		return nil
	}

	m.logger.WithError(err).Warn("Package install failed, trying to fix broken dependencies...")
	if fixErr := m.run(ctx, "-f", "install", "-y"); fixErr != nil {
		return fmt.Errorf("could not install %s (%s), and the dependency fix also failed: %w", path, err, fixErr)
	}
	return nil
}

func (m *Manager) run(ctx context.Context, args ...string) error {
	if m.sudo {
		return m.runner.Run(ctx, "sudo", append([]string{aptGet}, args...)...)
	}
	return m.runner.Run(ctx, aptGet, args...)
}
