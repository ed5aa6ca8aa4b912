// Project commands for the cadence CLI.
package main

import (
	"fmt"
	"os"

	"github.com/mesh-intelligence/cadence/pkg/types"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage roadmap projects",
}

var (
	projectCreateName         string
	projectCreateObjective    string
	projectCreateDeliverables string
	projectCreateMetrics      string
	projectCreateAt           int
)

var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project on the roadmap",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "project create:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		repo := repoOrExit(t)
		deliverables := splitList(projectCreateDeliverables)
		metrics := splitList(projectCreateMetrics)

		var project *types.Project
		if projectCreateAt > 0 {
			project, err = t.InsertProjectAt(repo.RepoID, projectCreateName, projectCreateObjective, deliverables, metrics, projectCreateAt)
		} else {
			project, err = t.CreateProject(repo.RepoID, projectCreateName, projectCreateObjective, deliverables, metrics)
		}
		if err != nil {
			fail(err)
		}

		if flagJSON {
			printJSON(project)
			return nil
		}
		fmt.Printf("Created project %q at position %d: %s\n", project.Name, project.Position, project.ProjectID)
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects in roadmap order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "project list:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		repo := repoOrExit(t)
		projects, err := t.ListProjects(repo.RepoID)
		if err != nil {
			fail(err)
		}

		if flagJSON {
			printJSON(projects)
			return nil
		}
		for _, p := range projects {
			fmt.Printf("%d. %s [%s] %d%% (%s)\n", p.Position, p.Name, p.Status, p.Completion, p.ProjectID)
		}
		return nil
	},
}

var (
	projectUpdateName       string
	projectUpdateObjective  string
	projectUpdateStatus     string
	projectUpdateCompletion int
)

var projectUpdateCmd = &cobra.Command{
	Use:   "update <project-id>",
	Short: "Update project fields and refresh the repository rollup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch := types.ProjectPatch{}
		if cmd.Flags().Changed("name") {
			patch.Name = &projectUpdateName
		}
		if cmd.Flags().Changed("objective") {
			patch.Objective = &projectUpdateObjective
		}
		if cmd.Flags().Changed("status") {
			status := types.ProjectStatus(projectUpdateStatus)
			patch.Status = &status
		}
		if cmd.Flags().Changed("completion") {
			patch.Completion = &projectUpdateCompletion
		}
		if patch.Name == nil && patch.Objective == nil && patch.Status == nil && patch.Completion == nil {
			fmt.Fprintln(os.Stderr, "project update: no fields to update")
			os.Exit(exitUserError)
		}

		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "project update:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		project, err := t.UpdateProjectPhase(args[0], patch)
		if err != nil {
			fail(err)
		}

		if flagJSON {
			printJSON(project)
			return nil
		}
		fmt.Printf("Updated project %s: [%s] %d%%\n", project.ProjectID, project.Status, project.Completion)
		return nil
	},
}

var projectDeleteReparent string

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <project-id>",
	Short: "Delete a project, reindexing the roadmap",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "project delete:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		if err := t.DeleteProject(args[0], projectDeleteReparent); err != nil {
			fail(err)
		}

		if !flagJSON {
			fmt.Printf("Deleted project %s\n", args[0])
		}
		return nil
	},
}

var projectReorderCmd = &cobra.Command{
	Use:   "reorder <project-id>...",
	Short: "Reorder the roadmap to the given project sequence",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "project reorder:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		repo := repoOrExit(t)
		if err := t.ReorderProjects(repo.RepoID, args); err != nil {
			fail(err)
		}

		if !flagJSON {
			fmt.Println("Roadmap reordered")
		}
		return nil
	},
}

var projectMovePosition int

var projectMoveCmd = &cobra.Command{
	Use:   "move <project-id>",
	Short: "Move a project to a new roadmap position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if projectMovePosition < 1 {
			fmt.Fprintln(os.Stderr, "project move: --to is required and must be >= 1")
			os.Exit(exitUserError)
		}

		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "project move:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		repo := repoOrExit(t)
		if err := t.MoveProject(args[0], repo.RepoID, projectMovePosition); err != nil {
			fail(err)
		}

		if !flagJSON {
			fmt.Printf("Moved project %s to position %d\n", args[0], projectMovePosition)
		}
		return nil
	},
}

func init() {
	projectCreateCmd.Flags().StringVar(&projectCreateName, "name", "", "project name (required)")
	projectCreateCmd.Flags().StringVar(&projectCreateObjective, "objective", "", "project objective")
	projectCreateCmd.Flags().StringVar(&projectCreateDeliverables, "deliverables", "", "comma-separated deliverables")
	projectCreateCmd.Flags().StringVar(&projectCreateMetrics, "metrics", "", "comma-separated success metrics")
	projectCreateCmd.Flags().IntVar(&projectCreateAt, "at", 0, "insert at this position instead of appending")
	projectCreateCmd.MarkFlagRequired("name")

	projectUpdateCmd.Flags().StringVar(&projectUpdateName, "name", "", "set project name")
	projectUpdateCmd.Flags().StringVar(&projectUpdateObjective, "objective", "", "set project objective")
	projectUpdateCmd.Flags().StringVar(&projectUpdateStatus, "status", "", "set project status (planned, in_progress, completed)")
	projectUpdateCmd.Flags().IntVar(&projectUpdateCompletion, "completion", 0, "set completion percentage (0-100)")

	projectDeleteCmd.Flags().StringVar(&projectDeleteReparent, "reparent-to", "", "project that receives orphaned phases")

	projectMoveCmd.Flags().IntVar(&projectMovePosition, "to", 0, "target position (required)")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectUpdateCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	projectCmd.AddCommand(projectReorderCmd)
	projectCmd.AddCommand(projectMoveCmd)
}
