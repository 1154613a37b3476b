package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/selenv/selenv/chrome"
	"github.com/selenv/selenv/lib/runner"
	"github.com/selenv/selenv/ui/console"
)

type globalFlags struct {
	quiet     bool
	noColor   bool
	verbose   bool
	logOutput string
	logFormat string
}

// globalState contains the globalFlags and accessors for most of the global
// process state. Most of its fields are normally os.* or exec-backed values,
// but they are exported as injection points so tests can observe and fake
// every external effect of a setup run.
type globalState struct {
	ctx context.Context

	fs      afero.Fs
	getwd   func() (string, error)
	args    []string
	envVars map[string]string

	defaultFlags, flags globalFlags

	console    *console.Console
	runner     runner.Runner
	downloader chrome.Downloader

	euid        func() int
	userHomeDir func() (string, error)
	now         func() time.Time

	osExit       func(int)
	signalNotify func(chan<- os.Signal, ...os.Signal)
	signalStop   func(chan<- os.Signal)

	logger *logrus.Logger
}

func getDefaultFlags(env map[string]string) globalFlags {
	_, noColorEnv := env["NO_COLOR"]
	_, noColorTool := env["SELENV_NO_COLOR"]
	return globalFlags{
		logOutput: "stderr",
		noColor:   noColorEnv || noColorTool,
	}
}

// newGlobalState returns a globalState with the real os-level and exec-backed
// dependencies wired in.
func newGlobalState(ctx context.Context) *globalState {
	envVars := buildEnvMap(os.Environ())
	defaultFlags := getDefaultFlags(envVars)

	cons := console.New(
		os.Stdout, os.Stderr, os.Stdin,
		!defaultFlags.noColor, envVars["TERM"],
		signal.Notify, signal.Stop,
	)
	logger := cons.GetLogger()

	fs := afero.NewOsFs()

	return &globalState{
		ctx:          ctx,
		fs:           fs,
		getwd:        os.Getwd,
		args:         append(make([]string, 0, len(os.Args)), os.Args...),
		envVars:      envVars,
		defaultFlags: defaultFlags,
		flags:        defaultFlags,
		console:      cons,
		runner:       runner.NewOS(logger, os.Stdout, os.Stderr),
		downloader:   chrome.NewHTTPDownloader(fs, logger),
		euid:         os.Geteuid,
		userHomeDir:  os.UserHomeDir,
		now:          time.Now,
		osExit:       os.Exit,
		signalNotify: signal.Notify,
		signalStop:   signal.Stop,
		logger:       logger,
	}
}

func buildEnvMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, _ := strings.Cut(kv, "=")
		env[k] = v
	}
	return env
}
