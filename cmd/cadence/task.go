// Task commands for the cadence CLI.
package main

import (
	"fmt"
	"os"

	"github.com/mesh-intelligence/cadence/pkg/types"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage phase tasks",
}

var (
	taskAddStep        int
	taskAddDescription string
	taskAddAssignee    string
	taskAddPoints      int
)

var taskAddCmd = &cobra.Command{
	Use:   "add <phase-id>",
	Short: "Add a task to a phase",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if taskAddDescription == "" {
			fmt.Fprintln(os.Stderr, "task add: --description is required")
			os.Exit(exitUserError)
		}

		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "task add:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		task, err := t.CreateTask(args[0], taskAddStep, taskAddDescription, taskAddAssignee, taskAddPoints)
		if err != nil {
			fail(err)
		}

		if flagJSON {
			printJSON(task)
			return nil
		}
		fmt.Printf("Created task: %s\n", task.TaskID)
		return nil
	},
}

var taskListStep int

var taskListCmd = &cobra.Command{
	Use:   "list <phase-id>",
	Short: "List a phase's tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "task list:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		tasks, err := t.ListTasks(args[0], taskListStep)
		if err != nil {
			fail(err)
		}

		if flagJSON {
			printJSON(tasks)
			return nil
		}
		for _, task := range tasks {
			scope := "phase"
			if task.StepNumber > 0 {
				scope = fmt.Sprintf("step %d", task.StepNumber)
			}
			fmt.Printf("[%s] %s (%s, %s)\n", task.Status, task.Description, scope, task.TaskID)
		}
		return nil
	},
}

var (
	taskUpdateDescription string
	taskUpdateAssignee    string
	taskUpdateStatus      string
	taskUpdatePoints      int
)

var taskUpdateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Update task fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch := types.TaskPatch{}
		if cmd.Flags().Changed("description") {
			patch.Description = &taskUpdateDescription
		}
		if cmd.Flags().Changed("assignee") {
			patch.Assignee = &taskUpdateAssignee
		}
		if cmd.Flags().Changed("status") {
			status := types.TaskStatus(taskUpdateStatus)
			patch.Status = &status
		}
		if cmd.Flags().Changed("points") {
			patch.Points = &taskUpdatePoints
		}
		if patch == (types.TaskPatch{}) {
			fmt.Fprintln(os.Stderr, "task update: no fields to update")
			os.Exit(exitUserError)
		}

		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "task update:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		task, err := t.UpdateTask(args[0], patch)
		if err != nil {
			fail(err)
		}

		if flagJSON {
			printJSON(task)
			return nil
		}
		fmt.Printf("Updated task %s: [%s]\n", task.TaskID, task.Status)
		return nil
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "task delete:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		if err := t.DeleteTask(args[0]); err != nil {
			fail(err)
		}

		if !flagJSON {
			fmt.Printf("Deleted task %s\n", args[0])
		}
		return nil
	},
}

func init() {
	taskAddCmd.Flags().IntVar(&taskAddStep, "step", 0, "step number the task belongs to (0 = phase-wide)")
	taskAddCmd.Flags().StringVar(&taskAddDescription, "description", "", "task description (required)")
	taskAddCmd.Flags().StringVar(&taskAddAssignee, "assignee", "", "task assignee")
	taskAddCmd.Flags().IntVar(&taskAddPoints, "points", 0, "story points")
	taskAddCmd.MarkFlagRequired("description")

	taskListCmd.Flags().IntVar(&taskListStep, "step", 0, "filter to one step (0 = all)")

	taskUpdateCmd.Flags().StringVar(&taskUpdateDescription, "description", "", "set task description")
	taskUpdateCmd.Flags().StringVar(&taskUpdateAssignee, "assignee", "", "set task assignee")
	taskUpdateCmd.Flags().StringVar(&taskUpdateStatus, "status", "", "set task status (todo, in_progress, done, blocked)")
	taskUpdateCmd.Flags().IntVar(&taskUpdatePoints, "points", 0, "set story points")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskUpdateCmd)
	taskCmd.AddCommand(taskDeleteCmd)
}
