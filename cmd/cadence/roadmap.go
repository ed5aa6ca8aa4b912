// Roadmap command for the cadence CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var roadmapDetails bool

var roadmapCmd = &cobra.Command{
	Use:   "roadmap",
	Short: "Show the repository roadmap",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "roadmap:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		repo := repoOrExit(t)
		rm, err := t.Roadmap(repo.RepoID, roadmapDetails)
		if err != nil {
			fail(err)
		}

		if flagJSON {
			printJSON(rm)
			return nil
		}

		fmt.Printf("%s\n", repo.Name)
		for _, pn := range rm.Projects {
			p := pn.Project
			fmt.Printf("  %d. %s [%s] %d%% (%s)\n", p.Position, p.Name, p.Status, p.Completion, p.ProjectID)
			for _, phn := range pn.Phases {
				ph := phn.Phase
				fmt.Printf("     phase %d [%s] step %d (%s)\n", ph.Number, ph.Status, ph.CurrentStep, ph.PhaseID)
				for _, c := range phn.Cycles {
					fmt.Printf("       cycle %d:\n", c.CycleNumber)
					for _, st := range c.Steps {
						fmt.Printf("         %d. %s [%s] %d%%\n", st.StepNumber, st.Name(), st.Status, st.Completion)
					}
				}
			}
		}
		return nil
	},
}

func init() {
	roadmapCmd.Flags().BoolVar(&roadmapDetails, "details", false, "include cycles and steps")
}
