// Activity command for the cadence CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var activityLimit int

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show recent activity, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "activity:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		repo := repoOrExit(t)
		entries, err := t.ListActivity(repo.RepoID, activityLimit)
		if err != nil {
			fail(err)
		}

		if flagJSON {
			printJSON(entries)
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %s %s %s: %s\n",
				e.CreatedAt.Format("2006-01-02 15:04:05"),
				e.Action, e.EntityType, e.EntityID, e.Detail)
		}
		return nil
	},
}

func init() {
	activityCmd.Flags().IntVar(&activityLimit, "limit", 20, "maximum entries to show")
}
