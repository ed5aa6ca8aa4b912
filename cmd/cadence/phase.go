// Phase commands for the cadence CLI.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mesh-intelligence/cadence/pkg/types"
	"github.com/spf13/cobra"
)

var phaseCmd = &cobra.Command{
	Use:   "phase",
	Short: "Manage delivery phases",
}

var phaseCreateAt int

var phaseCreateCmd = &cobra.Command{
	Use:   "create <project-id>",
	Short: "Create a phase under a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "phase create:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		var phase *types.Phase
		if phaseCreateAt > 0 {
			phase, err = t.InsertPhaseAt(args[0], phaseCreateAt)
		} else {
			phase, err = t.CreatePhase(args[0])
		}
		if err != nil {
			fail(err)
		}

		if flagJSON {
			printJSON(phase)
			return nil
		}
		fmt.Printf("Created phase %d: %s (cycle 1, step 1 in progress)\n", phase.Number, phase.PhaseID)
		return nil
	},
}

var phaseListCmd = &cobra.Command{
	Use:   "list <project-id>",
	Short: "List a project's phases in order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "phase list:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		phases, err := t.ListPhases(args[0])
		if err != nil {
			fail(err)
		}

		if flagJSON {
			printJSON(phases)
			return nil
		}
		for _, ph := range phases {
			fmt.Printf("phase %d [%s] step %d (%s)\n", ph.Number, ph.Status, ph.CurrentStep, ph.PhaseID)
		}
		return nil
	},
}

var phaseDeleteCmd = &cobra.Command{
	Use:   "delete <phase-id>",
	Short: "Delete a phase and everything under it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "phase delete:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		if err := t.DeletePhase(args[0]); err != nil {
			fail(err)
		}

		if !flagJSON {
			fmt.Printf("Deleted phase %s\n", args[0])
		}
		return nil
	},
}

var phaseCompleteCmd = &cobra.Command{
	Use:   "complete <phase-id>",
	Short: "Mark a phase completed and close its open cycle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "phase complete:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		if err := t.CompletePhase(args[0]); err != nil {
			fail(err)
		}

		if !flagJSON {
			fmt.Printf("Completed phase %s\n", args[0])
		}
		return nil
	},
}

var phaseReorderCmd = &cobra.Command{
	Use:   "reorder <project-id> <phase-id>...",
	Short: "Reorder a project's phases to the given sequence",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "phase reorder:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		if err := t.ReorderPhases(args[0], args[1:]); err != nil {
			fail(err)
		}

		if !flagJSON {
			fmt.Println("Phases reordered")
		}
		return nil
	},
}

var (
	phaseMoveProject string
	phaseMoveNumber  int
)

var phaseMoveCmd = &cobra.Command{
	Use:   "move <phase-id>",
	Short: "Move a phase, optionally under a different project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if phaseMoveNumber < 1 {
			fmt.Fprintln(os.Stderr, "phase move: --to is required and must be >= 1")
			os.Exit(exitUserError)
		}

		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "phase move:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		targetProject := phaseMoveProject
		if targetProject == "" {
			phase, err := t.GetPhase(args[0])
			if err != nil {
				fail(err)
			}
			targetProject = phase.ProjectID
		}

		if err := t.MovePhase(args[0], targetProject, phaseMoveNumber); err != nil {
			fail(err)
		}

		if !flagJSON {
			fmt.Printf("Moved phase %s to number %d\n", args[0], phaseMoveNumber)
		}
		return nil
	},
}

var (
	stepStatus       string
	stepCompletion   int
	stepNotes        string
	stepDeliverables string
	stepBlockers     string
)

var phaseStepCmd = &cobra.Command{
	Use:   "step <phase-id> <step-number>",
	Short: "Update a step of the phase's current cycle",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		stepNumber, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "phase step: invalid step number %q\n", args[1])
			os.Exit(exitUserError)
		}

		patch := types.StepPatch{
			Deliverables: splitList(stepDeliverables),
			Blockers:     splitList(stepBlockers),
		}
		if cmd.Flags().Changed("status") {
			status := types.StepStatus(stepStatus)
			patch.Status = &status
		}
		if cmd.Flags().Changed("completion") {
			patch.Completion = &stepCompletion
		}
		if cmd.Flags().Changed("notes") {
			patch.Notes = &stepNotes
		}
		if patch.Status == nil && patch.Completion == nil && patch.Notes == nil &&
			patch.Deliverables == nil && patch.Blockers == nil {
			fmt.Fprintln(os.Stderr, "phase step: no fields to update")
			os.Exit(exitUserError)
		}

		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "phase step:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		step, err := t.UpdateStep(args[0], stepNumber, patch)
		if err != nil {
			fail(err)
		}

		if flagJSON {
			printJSON(step)
			return nil
		}
		fmt.Printf("Step %d (%s): [%s] %d%%\n", step.StepNumber, step.Name(), step.Status, step.Completion)
		return nil
	},
}

func init() {
	phaseCreateCmd.Flags().IntVar(&phaseCreateAt, "at", 0, "insert at this number instead of appending")

	phaseMoveCmd.Flags().StringVar(&phaseMoveProject, "project", "", "target project (default: same project)")
	phaseMoveCmd.Flags().IntVar(&phaseMoveNumber, "to", 0, "target number (required)")

	phaseStepCmd.Flags().StringVar(&stepStatus, "status", "", "set step status (not_started, in_progress, completed, blocked)")
	phaseStepCmd.Flags().IntVar(&stepCompletion, "completion", 0, "set completion percentage (0-100)")
	phaseStepCmd.Flags().StringVar(&stepNotes, "notes", "", "set step notes")
	phaseStepCmd.Flags().StringVar(&stepDeliverables, "deliverables", "", "comma-separated deliverables")
	phaseStepCmd.Flags().StringVar(&stepBlockers, "blockers", "", "comma-separated blockers")

	phaseCmd.AddCommand(phaseCreateCmd)
	phaseCmd.AddCommand(phaseListCmd)
	phaseCmd.AddCommand(phaseDeleteCmd)
	phaseCmd.AddCommand(phaseCompleteCmd)
	phaseCmd.AddCommand(phaseReorderCmd)
	phaseCmd.AddCommand(phaseMoveCmd)
	phaseCmd.AddCommand(phaseStepCmd)
}
