// Consolidate command for the cadence CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Fold scattered store files into the canonical store",
	Long: `Consolidate discovers secondary store files in the working directory,
its ancestors, and the legacy dot-directory, merges their contents into
the canonical store, and retires each merged file. Already-merged
sources are skipped via the migration ledger, so repeat runs are safe.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "consolidate:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		if err := t.RunConsolidation(); err != nil {
			fail(err)
		}

		if !flagJSON {
			fmt.Println("Consolidation complete")
		}
		return nil
	},
}
