// Search command for the cadence CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search projects and documentation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "search:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		repo := repoOrExit(t)
		results, err := t.Search(repo.RepoID, args[0])
		if err != nil {
			fail(err)
		}

		if flagJSON {
			printJSON(results)
			return nil
		}
		if results.Empty() {
			fmt.Println("No matches.")
			return nil
		}
		for _, p := range results.Projects {
			fmt.Printf("project: %s [%s] (%s)\n", p.Name, p.Status, p.ProjectID)
		}
		for _, d := range results.Documentation {
			fmt.Printf("doc: %s [%s] (%s)\n", d.Title, d.DocType, d.DocID)
		}
		return nil
	},
}
