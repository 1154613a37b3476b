// Package cmd implements the selenv CLI.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/selenv/selenv/errext"
	"github.com/selenv/selenv/errext/exitcodes"
)

// Execute runs the root command with the real global state. It is called by
// main.main().
func Execute() {
	gs := newGlobalState(context.Background())
	newRootCommand(gs).execute()
}

// This is to keep all fields needed for the main/root selenv command
type rootCommand struct {
	gs  *globalState
	cmd *cobra.Command
}

func newRootCommand(gs *globalState) *rootCommand {
	c := &rootCommand{gs: gs}
	// the base command when called without any subcommands.
	rootCmd := &cobra.Command{
		Use:               "selenv",
		Short:             "set up a Chrome + Selenium automation environment",
		Long:              "\n" + gs.console.Banner(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
		Args:              cobra.NoArgs,
		// A bare invocation performs a full setup run.
		RunE: func(cmd *cobra.Command, args []string) error {
			return newCmdSetup(gs).run(cmd, args)
		},
	}

	rootCmd.PersistentFlags().AddFlagSet(rootCmdPersistentFlagSet(gs))
	rootCmd.SetArgs(gs.args[1:])
	rootCmd.SetOut(gs.console.Stdout)
	rootCmd.SetErr(gs.console.Stderr)
	rootCmd.SetIn(gs.console.Stdin)

	rootCmd.AddCommand(getCmdSetup(gs), getCmdVersion(gs))

	c.cmd = rootCmd
	return c
}

func (c *rootCommand) execute() {
	ctx, cancel := context.WithCancel(c.gs.ctx)
	c.gs.ctx = ctx
	defer cancel()

	err := c.cmd.Execute()
	if err == nil {
		return
	}

	exitCode := int(exitcodes.GenericError)
	var ecerr errext.HasExitCode
	if errors.As(err, &ecerr) {
		exitCode = int(ecerr.ExitCode())
	}

	errText := err.Error()
	var herr errext.HasHint
	if errors.As(err, &herr) {
		errText += "\n" + herr.Hint()
	}

	c.gs.logger.Error(errText)
	c.gs.osExit(exitCode)
}

func (c *rootCommand) persistentPreRunE(_ *cobra.Command, _ []string) error {
	return c.setupLoggers()
}

func (c *rootCommand) setupLoggers() error {
	gs := c.gs
	if gs.flags.verbose {
		gs.logger.SetLevel(logrus.DebugLevel)
	}

	switch gs.flags.logOutput {
	case "stderr":
		gs.logger.SetOutput(gs.console.Stderr)
	case "stdout":
		gs.logger.SetOutput(gs.console.Stdout)
	case "none":
		gs.logger.SetOutput(io.Discard)
	default:
		return fmt.Errorf("unsupported log output '%s'", gs.flags.logOutput)
	}

	switch gs.flags.logFormat {
	case "json":
		gs.logger.SetFormatter(&logrus.JSONFormatter{})
		gs.logger.Debug("Logger format: JSON")
	case "", "text":
		formatter := &logrus.TextFormatter{}
		if !gs.flags.noColor && gs.console.IsTTY && gs.flags.logOutput == "stderr" {
			formatter.ForceColors = true
			gs.logger.SetOutput(colorable.NewColorableStderr())
		}
		gs.logger.SetFormatter(formatter)
	default:
		return fmt.Errorf("unsupported log format '%s'", gs.flags.logFormat)
	}

	return nil
}

func rootCmdPersistentFlagSet(gs *globalState) *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.BoolVarP(&gs.flags.verbose, "verbose", "v", gs.defaultFlags.verbose, "enable debug logging")
	flags.BoolVarP(&gs.flags.quiet, "quiet", "q", gs.defaultFlags.quiet, "disable the banner and progress output")
	flags.BoolVar(&gs.flags.noColor, "no-color", gs.defaultFlags.noColor, "disable colored output")
	flags.StringVar(&gs.flags.logOutput, "log-output", gs.defaultFlags.logOutput,
		"change the output for selenv logs, possible values are stderr,stdout,none")
	flags.StringVar(&gs.flags.logFormat, "log-format", gs.defaultFlags.logFormat, "log output format, 'text' or 'json'")
	return flags
}
