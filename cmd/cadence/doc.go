// Documentation commands for the cadence CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Manage repository documentation",
}

var (
	docAddTitle   string
	docAddType    string
	docAddContent string
)

var docAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Attach a document to the repository",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if docAddTitle == "" {
			fmt.Fprintln(os.Stderr, "doc add: --title is required")
			os.Exit(exitUserError)
		}

		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "doc add:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		repo := repoOrExit(t)
		doc, err := t.AddDocumentation(repo.RepoID, docAddTitle, docAddType, docAddContent)
		if err != nil {
			fail(err)
		}

		if flagJSON {
			printJSON(doc)
			return nil
		}
		fmt.Printf("Added %s: %s\n", doc.DocType, doc.DocID)
		return nil
	},
}

var docListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the repository's documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, closeStore, err := openTracker()
		if err != nil {
			fmt.Fprintln(os.Stderr, "doc list:", err)
			os.Exit(exitSysError)
		}
		defer closeStore()

		repo := repoOrExit(t)
		docs, err := t.ListDocumentation(repo.RepoID)
		if err != nil {
			fail(err)
		}

		if flagJSON {
			printJSON(docs)
			return nil
		}
		for _, d := range docs {
			fmt.Printf("[%s] %s (%s)\n", d.DocType, d.Title, d.DocID)
		}
		return nil
	},
}

func init() {
	docAddCmd.Flags().StringVar(&docAddTitle, "title", "", "document title (required)")
	docAddCmd.Flags().StringVar(&docAddType, "type", "note", "document type")
	docAddCmd.Flags().StringVar(&docAddContent, "content", "", "document content")
	docAddCmd.MarkFlagRequired("title")

	docCmd.AddCommand(docAddCmd)
	docCmd.AddCommand(docListCmd)
}
