package cmd

import (
	"strings"

	"github.com/selenv/selenv/provision"
)

func maybePrintBanner(gs *globalState) {
	if !gs.flags.quiet {
		gs.console.Printf("\n%s\n\n", gs.console.Banner())
	}
}

// printSetupSummary prints the smoke-test verdict and the completion banner
// with the detected version, project path and next steps.
func printSetupSummary(gs *globalState, summary *provision.Summary) {
	cons := gs.console

	if summary.SmokeTestRan {
		if summary.SmokeTestPassed {
			cons.Printf("%s\n", cons.Pass("✓ smoke test passed"))
		} else {
			cons.Printf("%s\n", cons.Fail("✗ smoke test failed (the environment may still be usable, see the log above)"))
		}
	}

	cons.Printf("\n%s\n", strings.Repeat("=", 60))
	cons.Printf("%s\n", cons.ApplyTheme("Setup complete!"))
	cons.Printf("  Chrome version:    %s (major %s)\n", summary.ChromeVersion, summary.ChromeMajor)
	cons.Printf("  Project directory: %s\n", summary.ProjectDir)
	cons.Printf("\nNext steps:\n")
	cons.Printf("  cd %s\n", summary.ProjectDir)
	cons.Printf("  source activate.sh\n")
	cons.Printf("  python example.py\n")
	cons.Printf("%s\n", strings.Repeat("=", 60))
}
