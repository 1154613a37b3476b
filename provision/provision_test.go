package provision

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selenv/selenv/errext"
	"github.com/selenv/selenv/errext/exitcodes"
	"github.com/selenv/selenv/lib/testutils"
)

const fakeChromeVersionOutput = "Google Chrome 126.0.6478.126 \n"

type fakeDownloader struct {
	fs    afero.Fs
	calls []string
	err   error
}

func (d *fakeDownloader) Download(_ context.Context, url, dest string) error {
	d.calls = append(d.calls, url+" -> "+dest)
	if d.err != nil {
		return d.err
	}
	return afero.WriteFile(d.fs, dest, []byte("fake deb"), 0o644)
}

type testProvisioner struct {
	*Provisioner
	fs         afero.Fs
	runner     *testutils.RecordingRunner
	downloader *fakeDownloader
	logHook    *testutils.SimpleLogrusHook
}

func newTestProvisioner(t *testing.T) *testProvisioner {
	fs := afero.NewMemMapFs()

	r := &testutils.RecordingRunner{
		OnOutput: func(cmd testutils.Command) (string, error) {
			if len(cmd.Args) == 1 && cmd.Args[0] == "--version" {
				return fakeChromeVersionOutput, nil
			}
			return "", nil
		},
	}

	logger := testutils.NewLogger(t)
	hook := testutils.NewLogHook()
	logger.AddHook(hook)

	d := &fakeDownloader{fs: fs}
	return &testProvisioner{
		Provisioner: &Provisioner{
			FS:          fs,
			Runner:      r,
			Downloader:  d,
			Logger:      logger,
			Config:      NewConfig(),
			Euid:        func() int { return 1000 },
			UserHomeDir: func() (string, error) { return "/home/user", nil },
			Now:         func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) },
		},
		fs:         fs,
		runner:     r,
		downloader: d,
		logHook:    hook,
	}
}

func tempDownloadDirs(t *testing.T, fs afero.Fs) []string {
	t.Helper()
	matches, err := afero.Glob(fs, filepath.Join(os.TempDir(), "selenv-download*"))
	require.NoError(t, err)
	return matches
}

func TestRunRefusesRoot(t *testing.T) {
	t.Parallel()

	tp := newTestProvisioner(t)
	tp.Euid = func() int { return 0 }

	_, err := tp.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be run as root")

	var ecerr errext.HasExitCode
	require.ErrorAs(t, err, &ecerr)
	assert.Equal(t, exitcodes.RunningAsRoot, ecerr.ExitCode())

	var herr errext.HasHint
	require.ErrorAs(t, err, &herr)
	assert.Contains(t, herr.Hint(), "regular user")

	// the privilege check must fire before any package-manager or network action
	assert.Empty(t, tp.runner.Calls())
	assert.Empty(t, tp.downloader.calls)
}

func TestRunHappyPath(t *testing.T) {
	t.Parallel()

	tp := newTestProvisioner(t)
	summary, err := tp.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "126.0.6478.126", summary.ChromeVersion)
	assert.Equal(t, "126", summary.ChromeMajor)
	assert.Equal(t, "/home/user/selenium-project", summary.ProjectDir)
	assert.True(t, summary.SmokeTestRan)
	assert.True(t, summary.SmokeTestPassed)

	lines := tp.runner.Lines()
	require.NotEmpty(t, lines)

	// step order: index refresh, dependency install, deb install, version
	// detection, venv creation, pip upgrade, manifest install, smoke test
	assert.Equal(t, "sudo apt-get update", lines[0])
	assert.Equal(t, "sudo apt-get install -y wget curl unzip python3 python3-pip python3-venv", lines[1])
	assert.Contains(t, lines[2], "sudo apt-get install -y ")
	assert.Contains(t, lines[2], "google-chrome-stable_current_amd64.deb")
	assert.Equal(t, "google-chrome --version", lines[3])
	assert.Equal(t, "python3 -m venv /home/user/selenium-project/venv", lines[4])
	assert.Equal(t, "/home/user/selenium-project/venv/bin/pip install --upgrade pip", lines[5])
	assert.Equal(t, "/home/user/selenium-project/venv/bin/pip install -r /home/user/selenium-project/requirements.txt", lines[6])
	assert.Equal(t, "/home/user/selenium-project/venv/bin/python /home/user/selenium-project/test_selenium.py", lines[7])

	require.Len(t, tp.downloader.calls, 1)
	assert.Contains(t, tp.downloader.calls[0], "https://dl.google.com/linux/direct/google-chrome-stable_current_amd64.deb -> ")

	// all five generated files are present
	for _, name := range []string{"requirements.txt", "activate.sh", "test_selenium.py", "example.py", "README.txt"} {
		exists, err := afero.Exists(tp.fs, filepath.Join(summary.ProjectDir, name))
		require.NoError(t, err)
		assert.True(t, exists, "expected %s to exist", name)
	}

	// the manifest declares exactly the two packages
	manifest, err := afero.ReadFile(tp.fs, filepath.Join(summary.ProjectDir, "requirements.txt"))
	require.NoError(t, err)
	assert.Equal(t, []string{"selenium", "webdriver-manager"}, strings.Fields(string(manifest)))

	// the README records the same version the binary reported during this run
	readme, err := afero.ReadFile(tp.fs, filepath.Join(summary.ProjectDir, "README.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), strings.Fields(fakeChromeVersionOutput)[2])

	// the temporary download directory is gone after cleanup
	assert.Empty(t, tempDownloadDirs(t, tp.fs))
}

func TestRunSmokeTestFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	tp := newTestProvisioner(t)
	tp.runner.OnRun = func(cmd testutils.Command) error {
		if strings.HasSuffix(cmd.Name, "/bin/python") {
			return errors.New("exit status 1")
		}
		return nil
	}

	summary, err := tp.Run(context.Background())
	require.NoError(t, err, "a failing smoke test must not fail the run")
	assert.True(t, summary.SmokeTestRan)
	assert.False(t, summary.SmokeTestPassed)

	assert.True(t, testutils.LogContains(tp.logHook.Drain(), logrus.WarnLevel, "smoke test failed"))

	// cleanup still happened
	assert.Empty(t, tempDownloadDirs(t, tp.fs))
}

func TestRunDebInstallFallback(t *testing.T) {
	t.Parallel()

	tp := newTestProvisioner(t)
	tp.runner.OnRun = func(cmd testutils.Command) error {
		if cmd.Name == "sudo" && len(cmd.Args) >= 3 && cmd.Args[1] == "install" &&
			strings.HasSuffix(cmd.Line(), ".deb") {
			return errors.New("dependency problems")
		}
		return nil
	}

	_, err := tp.Run(context.Background())
	require.NoError(t, err)

	var fixCalls int
	for _, line := range tp.runner.Lines() {
		if line == "sudo apt-get -f install -y" {
			fixCalls++
		}
	}
	assert.Equal(t, 1, fixCalls, "the dependency fix must be invoked exactly once")
}

func TestRunAbortsOnPackageManagerFailure(t *testing.T) {
	t.Parallel()

	tp := newTestProvisioner(t)
	tp.runner.OnRun = func(cmd testutils.Command) error {
		if cmd.Line() == "sudo apt-get update" {
			return errors.New("could not resolve archive.ubuntu.com")
		}
		return nil
	}

	_, err := tp.Run(context.Background())
	require.Error(t, err)

	var ecerr errext.HasExitCode
	require.ErrorAs(t, err, &ecerr)
	assert.Equal(t, exitcodes.PackageManagerFailed, ecerr.ExitCode())

	// fail-fast: nothing was downloaded
	assert.Empty(t, tp.downloader.calls)
}

func TestRunAbortsOnDownloadFailure(t *testing.T) {
	t.Parallel()

	tp := newTestProvisioner(t)
	tp.downloader.err = errors.New("connection reset")

	_, err := tp.Run(context.Background())
	require.Error(t, err)

	var ecerr errext.HasExitCode
	require.ErrorAs(t, err, &ecerr)
	assert.Equal(t, exitcodes.DownloadFailed, ecerr.ExitCode())

	// the scaffolding never happened
	exists, ferr := afero.Exists(tp.fs, "/home/user/selenium-project/README.txt")
	require.NoError(t, ferr)
	assert.False(t, exists)
}

func TestRunIsRepeatable(t *testing.T) {
	t.Parallel()

	tp := newTestProvisioner(t)

	runAt := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	tp.Now = func() time.Time { return runAt }

	_, err := tp.Run(context.Background())
	require.NoError(t, err)

	// second run over the existing project: no manual deletion needed, the
	// generated files are refreshed with the new timestamp
	runAt = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	summary, err := tp.Run(context.Background())
	require.NoError(t, err)

	readme, err := afero.ReadFile(tp.fs, filepath.Join(summary.ProjectDir, "README.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "2026-08-31 12:00:00")
	assert.NotContains(t, string(readme), "2026-08-30 09:00:00")
}

func TestRunGarbledVersionOutput(t *testing.T) {
	t.Parallel()

	tp := newTestProvisioner(t)
	tp.runner.OnOutput = func(cmd testutils.Command) (string, error) {
		return "something unexpected\n", nil
	}

	// garbled --version output is not validated, it just propagates
	summary, err := tp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", summary.ChromeVersion)
	assert.Equal(t, "", summary.ChromeMajor)
}

func TestRunHomeDirLookupFailure(t *testing.T) {
	t.Parallel()

	tp := newTestProvisioner(t)
	tp.UserHomeDir = func() (string, error) { return "", fmt.Errorf("$HOME is not defined") }

	_, err := tp.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "home directory")
}
