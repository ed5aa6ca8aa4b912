// Init command for the cadence CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	initName        string
	initDescription string
	initTeam        string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the repository tracker",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if initName == "" {
			fmt.Fprintln(os.Stderr, "init: --name is required")
			os.Exit(exitUserError)
		}

		configDir, err := resolveConfigDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}
		if err := ensureConfigDir(configDir); err != nil {
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}
		if err := ensureDefaultConfigFile(configDir); err != nil {
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}

		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		repo, existed, err := t.InitializeRepository(initName, initDescription, splitList(initTeam), nil)
		if err != nil {
			fail(err)
		}

		if flagJSON {
			printJSON(repo)
			return nil
		}
		if existed {
			fmt.Printf("Repository already initialized: %s (%s)\n", repo.Name, repo.RepoID)
		} else {
			fmt.Printf("Initialized repository: %s (%s)\n", repo.Name, repo.RepoID)
		}
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "repository name (required)")
	initCmd.Flags().StringVar(&initDescription, "description", "", "repository description")
	initCmd.Flags().StringVar(&initTeam, "team", "", "comma-separated team members")

	initCmd.MarkFlagRequired("name")
}
