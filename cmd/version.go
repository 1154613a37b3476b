package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/selenv/selenv/lib/consts"
)

type cmdVersion struct {
	gs     *globalState
	isJSON bool
}

func (c *cmdVersion) run(_ *cobra.Command, _ []string) error {
	if !c.isJSON {
		c.gs.console.Printf("selenv %s\n", consts.FullVersion())
		return nil
	}

	jsonDetails, err := json.Marshal(consts.VersionDetails())
	if err != nil {
		return fmt.Errorf("could not produce JSON version details: %w", err)
	}
	c.gs.console.Printf("%s\n", jsonDetails)
	return nil
}

func getCmdVersion(gs *globalState) *cobra.Command {
	versionCmd := &cmdVersion{gs: gs}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show application version",
		Long:  `Show the application version and exit.`,
		RunE:  versionCmd.run,
	}
	cmd.Flags().BoolVar(&versionCmd.isJSON, "json", false, "if set, output version information will be in JSON format")

	return cmd
}
