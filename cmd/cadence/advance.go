// Advance command for the cadence CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var advanceNotes string

var advanceCmd = &cobra.Command{
	Use:   "advance <phase-id>",
	Short: "Complete the current step and advance the cycle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "advance:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		cycle, err := t.AdvanceCycle(args[0], advanceNotes)
		if err != nil {
			fail(err)
		}

		if flagJSON {
			printJSON(cycle)
			return nil
		}
		if cycle.Closed() {
			fmt.Printf("Cycle %d closed\n", cycle.CycleNumber)
			return nil
		}
		phase, err := t.GetPhase(cycle.PhaseID)
		if err != nil {
			fail(err)
		}
		fmt.Printf("Cycle %d now on step %d\n", cycle.CycleNumber, phase.CurrentStep)
		return nil
	},
}

func init() {
	advanceCmd.Flags().StringVar(&advanceNotes, "notes", "", "notes appended to the completed step")
}
