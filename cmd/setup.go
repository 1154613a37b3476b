package cmd

import (
	"context"
	"os"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/selenv/selenv/errext"
	"github.com/selenv/selenv/errext/exitcodes"
	"github.com/selenv/selenv/provision"
	"github.com/selenv/selenv/scaffold"
)

// cmdSetup handles the `selenv setup` sub-command
type cmdSetup struct {
	gs *globalState

	showPlan bool
}

func newCmdSetup(gs *globalState) *cmdSetup {
	return &cmdSetup{gs: gs}
}

func (c *cmdSetup) run(_ *cobra.Command, _ []string) error {
	gs := c.gs

	conf, err := provision.GetConsolidatedConfig(gs.envVars)
	if err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}

	if c.showPlan {
		plan, err := buildSetupPlan(gs, conf)
		if err != nil {
			return errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
		}
		return gs.console.PrintYAML(plan)
	}

	maybePrintBanner(gs)

	ctx, cancel := context.WithCancel(gs.ctx)
	defer cancel()
	stopSignalHandling := handleSetupAbortSignals(gs, cancel)
	defer stopSignalHandling()

	p := &provision.Provisioner{
		FS:          gs.fs,
		Runner:      gs.runner,
		Downloader:  gs.downloader,
		Logger:      gs.logger,
		Config:      conf,
		Euid:        gs.euid,
		UserHomeDir: gs.userHomeDir,
		Now:         gs.now,
	}

	summary, err := p.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return errext.WithExitCodeIfNone(err, exitcodes.ExternalAbort)
		}
		return err
	}

	printSetupSummary(gs, summary)
	return nil
}

// setupPlan is the YAML shape printed by `selenv setup --plan`.
type setupPlan struct {
	ChromeURL    string   `yaml:"chrome_url"`
	ChromeBinary string   `yaml:"chrome_binary"`
	PythonBinary string   `yaml:"python_binary"`
	AptPackages  []string `yaml:"apt_packages"`
	ProjectDir   string   `yaml:"project_dir"`
	VenvDir      string   `yaml:"venv_dir"`
	Artifacts    []string `yaml:"artifacts"`
}

func buildSetupPlan(gs *globalState, conf provision.Config) (*setupPlan, error) {
	home, err := gs.userHomeDir()
	if err != nil {
		return nil, err
	}
	projectDir := filepath.Join(home, conf.ProjectDirName.String)
	return &setupPlan{
		ChromeURL:    conf.ChromeURL.String,
		ChromeBinary: conf.ChromeBinary.String,
		PythonBinary: conf.PythonBinary.String,
		AptPackages:  provision.AptPackages,
		ProjectDir:   projectDir,
		VenvDir:      filepath.Join(projectDir, conf.VenvName.String),
		Artifacts:    scaffold.ArtifactNames(),
	}, nil
}

func handleSetupAbortSignals(gs *globalState, cancel func()) func() {
	sigC := make(chan os.Signal, 1)
	done := make(chan struct{})
	gs.signalNotify(sigC, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigC:
			gs.logger.WithField("sig", sig).Debug("Stopping the setup run on signal...")
			cancel()
		case <-done:
		}
	}()

	return func() {
		close(done)
		gs.signalStop(sigC)
	}
}

func getCmdSetup(gs *globalState) *cobra.Command {
	c := newCmdSetup(gs)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Provision Chrome and a Selenium scripting project",
		Long: `Provision a browser-automation environment: install Google Chrome and the
OS-level dependencies, scaffold an isolated Selenium project under the home
directory, install its Python dependencies and run a smoke test.

The smoke test is verification, not a gate: its failure is reported, but the
setup run still finishes and exits with status 0.`,
		Args: cobra.NoArgs,
		RunE: c.run,
	}
	cmd.Flags().BoolVar(&c.showPlan, "plan", false, "don't provision anything, just print the resolved plan")

	return cmd
}
