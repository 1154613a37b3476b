package pyenv

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selenv/selenv/lib/testutils"
)

func TestPaths(t *testing.T) {
	t.Parallel()

	e := New(&testutils.RecordingRunner{}, testutils.NewLogger(t), "python3", "/home/user/selenium-project/venv")
	assert.Equal(t, "/home/user/selenium-project/venv/bin/pip", e.Pip())
	assert.Equal(t, "/home/user/selenium-project/venv/bin/python", e.Interpreter())
}

func TestCreate(t *testing.T) {
	t.Parallel()

	r := &testutils.RecordingRunner{}
	e := New(r, testutils.NewLogger(t), "python3", "/home/user/selenium-project/venv")

	require.NoError(t, e.Create(context.Background()))
	assert.Equal(t, []string{"python3 -m venv /home/user/selenium-project/venv"}, r.Lines())
}

func TestInstallRequirements(t *testing.T) {
	t.Parallel()

	t.Run("upgrades pip first", func(t *testing.T) {
		t.Parallel()
		r := &testutils.RecordingRunner{}
		e := New(r, testutils.NewLogger(t), "python3", "/venv")

		require.NoError(t, e.InstallRequirements(context.Background(), "/proj/requirements.txt"))
		assert.Equal(t, []string{
			"/venv/bin/pip install --upgrade pip",
			"/venv/bin/pip install -r /proj/requirements.txt",
		}, r.Lines())
	})

	t.Run("pip failure propagates", func(t *testing.T) {
		t.Parallel()
		r := &testutils.RecordingRunner{}
		r.OnRun = func(cmd testutils.Command) error {
			return errors.New("no network")
		}
		e := New(r, testutils.NewLogger(t), "python3", "/venv")

		err := e.InstallRequirements(context.Background(), "/proj/requirements.txt")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "could not upgrade pip")
		assert.Len(t, r.Lines(), 1, "the manifest install should not be attempted after a pip failure")
	})
}

func TestRunScript(t *testing.T) {
	t.Parallel()

	r := &testutils.RecordingRunner{}
	e := New(r, testutils.NewLogger(t), "python3", "/venv")

	require.NoError(t, e.RunScript(context.Background(), "/proj/test_selenium.py"))
	assert.Equal(t, []string{"/venv/bin/python /proj/test_selenium.py"}, r.Lines())
}
