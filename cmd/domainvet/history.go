package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hakim/domainvet/internal/models"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show validation run history",
	Long: `Display a formatted table of past validation runs.

Runs are listed newest-first. Each row shows the run ID (truncated), start time,
status, profile, input file, and the Valid/Risky/Invalid counts.

Use --input to restrict the list to one domain list, and --limit to cap the
number of rows shown (default: 10).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Step 1: Get flags
		input, _ := cmd.Flags().GetString("input")
		limit, _ := cmd.Flags().GetInt("limit")

		// Step 2: Open bbolt store
		store, err := requireStore()
		if err != nil {
			return err
		}
		defer store.Close()

		// Step 3: List runs (sorted newest-first by store.ListRuns)
		runs, err := store.ListRuns(input)
		if err != nil {
			return fmt.Errorf("listing runs: %w", err)
		}

		if len(runs) == 0 {
			if input != "" {
				fmt.Printf("No run history found for %s\n", input)
			} else {
				fmt.Println("No run history found")
			}
			return nil
		}

		// Step 4: Apply limit
		if limit > 0 && len(runs) > limit {
			runs = runs[:limit]
		}

		// Step 5: Print formatted table
		const separator = "──────────────────────────────────────────────────────────────────────────────────"

		fmt.Println()
		fmt.Println("Run History")
		fmt.Println(separator)
		fmt.Printf("  %-3s  %-12s  %-16s  %-9s  %-7s  %-18s  %s\n",
			"#", "Run ID", "Started", "Status", "Profile", "Valid/Risky/Inv", "Input")
		fmt.Println(separator)

		for i, run := range runs {
			fmt.Printf("  %-3d  %-12s  %-16s  %-9s  %-7s  %-18s  %s\n",
				i+1,
				shortRunID(run.ID),
				run.StartedAt.UTC().Format("2006-01-02 15:04"),
				formatStatus(run.Status),
				run.Profile,
				formatCounts(run.Summary),
				run.InputFile)
		}

		fmt.Println(separator)
		fmt.Printf("Total: %d run(s)\n\n", len(runs))

		return nil
	},
}

// shortRunID returns the first 8 characters of a UUID followed by "..." for
// compact table display.
func shortRunID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}

func formatStatus(s models.RunStatus) string {
	switch s {
	case models.StatusComplete:
		return "complete"
	case models.StatusFailed:
		return "failed"
	case models.StatusRunning:
		return "running"
	default:
		return string(s)
	}
}

// formatCounts renders "valid/risky/invalid", or "-" for runs that never
// finished.
func formatCounts(s models.BatchSummary) string {
	if s.Total == 0 {
		return "-"
	}
	return fmt.Sprintf("%d/%d/%d", s.Valid, s.Risky, s.Invalid)
}

func init() {
	historyCmd.Flags().StringP("input", "i", "", "Only show runs for this input file")
	historyCmd.Flags().Int("limit", 10, "Maximum number of runs to display")
	rootCmd.AddCommand(historyCmd)
}
