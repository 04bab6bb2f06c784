package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hakim/domainvet/internal/report"
)

var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Render a stored run as a markdown report",
	Long: `Load a run and its results from the history database and render them as a
markdown report: run metadata, per-class counts, and one table per
classification.

The report is printed to stdout unless --out is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		store, err := requireStore()
		if err != nil {
			return err
		}
		defer store.Close()

		meta, err := store.GetRun(args[0])
		if err != nil {
			return fmt.Errorf("loading run %s: %w", args[0], err)
		}
		results, err := store.GetResults(meta.ID)
		if err != nil {
			return fmt.Errorf("loading results for run %s: %w", meta.ID, err)
		}

		if out == "" {
			fmt.Print(report.RenderRunReport(meta, results))
			return nil
		}

		if err := report.WriteRunReport(meta, results, out); err != nil {
			return err
		}
		fmt.Printf("[+] Run report written to %s\n", out)
		return nil
	},
}

func init() {
	showCmd.Flags().StringP("out", "o", "", "write the report to this file instead of stdout")
	rootCmd.AddCommand(showCmd)
}
