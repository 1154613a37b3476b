// Package provision implements the end-to-end setup procedure: install the
// OS dependencies and the browser, detect its version, scaffold the Selenium
// project with its isolated Python environment, install the declared
// dependencies, run the generated smoke test and clean up.
package provision

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/selenv/selenv/chrome"
	"github.com/selenv/selenv/errext"
	"github.com/selenv/selenv/errext/exitcodes"
	"github.com/selenv/selenv/lib/runner"
	"github.com/selenv/selenv/pkgmgr"
	"github.com/selenv/selenv/pyenv"
	"github.com/selenv/selenv/scaffold"
)

// Provisioner performs one setup run. All of its collaborators are
// injectable so the whole procedure can be exercised in tests without
// touching the real system.
type Provisioner struct {
	FS         afero.Fs
	Runner     runner.Runner
	Downloader chrome.Downloader
	Logger     logrus.FieldLogger
	Config     Config

	// Process-level lookups, overridable in tests.
	Euid        func() int
	UserHomeDir func() (string, error)
	Now         func() time.Time
}

// Summary describes the outcome of a completed setup run.
type Summary struct {
	ChromeVersion string
	ChromeMajor   string
	ProjectDir    string
	VenvDir       string

	// The smoke test is verification, not a gate: its failure is recorded
	// here but never fails the run.
	SmokeTestRan    bool
	SmokeTestPassed bool
}

// Run executes the setup procedure. It is fail-fast: the first error aborts
// the remainder, except for the single fix-broken fallback inside the deb
// install, the deliberately non-fatal smoke test and the best-effort
// cleanup.
func (p *Provisioner) Run(ctx context.Context) (*Summary, error) {
	// Step 1: the privilege check, before any package-manager or network
	// action. apt-get is reached through sudo instead.
	if p.Euid() == 0 {
		err := errors.New("selenv must not be run as root")
		err = errext.WithHint(err, "run it as a regular user; sudo is used internally where needed")
		return nil, errext.WithExitCodeIfNone(err, exitcodes.RunningAsRoot)
	}

	home, err := p.UserHomeDir()
	if err != nil {
		return nil, errext.WithExitCodeIfNone(
			fmt.Errorf("could not determine the home directory: %w", err), exitcodes.InvalidConfig)
	}

	// Step 2: refresh the package index and install the OS dependencies.
	apt := pkgmgr.New(p.Runner, p.Logger)
	if err := apt.Update(ctx); err != nil {
		return nil, errext.WithExitCodeIfNone(err, exitcodes.PackageManagerFailed)
	}
	if err := apt.Install(ctx, AptPackages...); err != nil {
		return nil, errext.WithExitCodeIfNone(err, exitcodes.PackageManagerFailed)
	}

	// Step 3: download the browser package into a fresh temp dir.
	tmpDir, err := afero.TempDir(p.FS, "", "selenv-download")
	if err != nil {
		return nil, errext.WithExitCodeIfNone(
			fmt.Errorf("could not create a temporary download directory: %w", err), exitcodes.DownloadFailed)
	}
	debPath := filepath.Join(tmpDir, chrome.DebFileName)
	if err := p.Downloader.Download(ctx, p.Config.ChromeURL.String, debPath); err != nil {
		return nil, errext.WithExitCodeIfNone(err, exitcodes.DownloadFailed)
	}

	// Step 4: install it, with the single fix-broken fallback.
	if err := apt.InstallDeb(ctx, debPath); err != nil {
		return nil, errext.WithExitCodeIfNone(err, exitcodes.BrowserInstallFailed)
	}

	// Step 5: detect the installed version.
	version, err := chrome.DetectVersion(ctx, p.Runner, p.Config.ChromeBinary.String)
	if err != nil {
		return nil, errext.WithExitCodeIfNone(err, exitcodes.GenericError)
	}
	p.Logger.WithFields(logrus.Fields{
		"version": version.Full, "major": version.Major,
	}).Info("Detected Chrome version")

	// Step 6: scaffold the project and its isolated environment.
	projectDir := filepath.Join(home, p.Config.ProjectDirName.String)
	venvDir := filepath.Join(projectDir, p.Config.VenvName.String)

	if err := p.FS.MkdirAll(projectDir, 0o755); err != nil {
		return nil, errext.WithExitCodeIfNone(
			fmt.Errorf("could not create the project directory: %w", err), exitcodes.ScaffoldingFailed)
	}

	env := pyenv.New(p.Runner, p.Logger, p.Config.PythonBinary.String, venvDir)
	if err := env.Create(ctx); err != nil {
		return nil, errext.WithExitCodeIfNone(err, exitcodes.PythonEnvFailed)
	}

	scaffolder, err := scaffold.New(p.FS, p.Logger)
	if err != nil {
		return nil, errext.WithExitCodeIfNone(err, exitcodes.ScaffoldingFailed)
	}
	data := scaffold.Data{
		ChromeVersion: version.Full,
		ChromeMajor:   version.Major,
		GeneratedAt:   p.Now().Format("2006-01-02 15:04:05"),
		ProjectDir:    projectDir,
		VenvDir:       venvDir,
	}
	if err := scaffolder.WriteProject(projectDir, data); err != nil {
		return nil, errext.WithExitCodeIfNone(err, exitcodes.ScaffoldingFailed)
	}

	// Step 7: install the declared dependencies into the virtualenv.
	if err := env.InstallRequirements(ctx, filepath.Join(projectDir, "requirements.txt")); err != nil {
		return nil, errext.WithExitCodeIfNone(err, exitcodes.PythonEnvFailed)
	}

	// Step 8: run the generated smoke test. This is the only step whose
	// failure is non-fatal; the result is surfaced in the summary.
	summary := &Summary{
		ChromeVersion: version.Full,
		ChromeMajor:   version.Major,
		ProjectDir:    projectDir,
		VenvDir:       venvDir,
		SmokeTestRan:  true,
	}
	if err := env.RunScript(ctx, filepath.Join(projectDir, "test_selenium.py")); err != nil {
		p.Logger.WithError(err).Warn("The smoke test failed")
	} else {
		summary.SmokeTestPassed = true
	}

	// Step 9: remove the temporary download directory, best-effort. There
	// is no virtualenv deactivation to perform here; nothing was activated
	// in this process.
	if err := p.FS.RemoveAll(tmpDir); err != nil {
		p.Logger.WithError(err).Warn("Could not remove the temporary download directory")
	}

	return summary, nil
}
