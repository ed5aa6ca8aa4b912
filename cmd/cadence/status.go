// Status command for the cadence CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the repository's current position",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "status:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		repo := repoOrExit(t)
		status, err := t.CurrentStatus(repo.RepoID)
		if err != nil {
			fail(err)
		}

		if flagJSON {
			printJSON(status)
			return nil
		}

		fmt.Printf("%s: %d%% overall\n", repo.Name, repo.OverallProgress)
		for _, p := range status.Projects {
			fmt.Printf("  %d. %s [%s] %d%%\n", p.Position, p.Name, p.Status, p.Completion)
		}
		if status.ActivePhase == nil {
			fmt.Println("No active phase.")
			return nil
		}
		fmt.Printf("Active: %s / phase %d / cycle step %d (%s, %s)\n",
			status.ActiveProject.Name,
			status.ActivePhase.Number,
			status.CurrentStep.StepNumber,
			status.CurrentStep.Name(),
			status.CurrentStep.Status)
		return nil
	},
}
