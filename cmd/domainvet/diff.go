package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hakim/domainvet/internal/diff"
	"github.com/hakim/domainvet/internal/report"
	"github.com/hakim/domainvet/internal/storage"
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare two validation runs and report what changed",
	Long: `Compare a validation run against an earlier one for the same domain list.

This command loads the stored results of both runs, computes new and removed
domains, classification upgrades and downgrades, and parked-state changes, and
writes a markdown change report.

Results are saved to:
  - {output_dir}/diff_{current}_{previous}.md    (markdown change report)
  - {output_dir}/diff_{current}_{previous}.json  (structured diff JSON, with --json)

When --run is omitted the latest run for --input is used. When --compare is
omitted the run immediately preceding it is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Step 1: Get flags
		input, _ := cmd.Flags().GetString("input")
		runID, _ := cmd.Flags().GetString("run")
		compareID, _ := cmd.Flags().GetString("compare")
		writeJSON, _ := cmd.Flags().GetBool("json")

		if runID == "" && input == "" {
			return fmt.Errorf("either --input or --run is required")
		}

		// Step 2: Open bbolt store
		store, err := requireStore()
		if err != nil {
			return err
		}
		defer store.Close()

		// Step 3: Resolve current run
		if runID == "" {
			latest, err := store.GetLatestRun(input)
			if err != nil {
				return fmt.Errorf("looking up run history: %w", err)
			}
			if latest == nil {
				return fmt.Errorf("no runs recorded for %s. Run 'domainvet %s' first", input, input)
			}
			runID = latest.ID
		}
		current, err := store.GetRun(runID)
		if err != nil {
			return fmt.Errorf("loading run %s: %w", runID, err)
		}

		fmt.Printf("[*] Current run:  %s (%s)\n", current.ID, current.StartedAt.Format("2006-01-02 15:04:05"))

		// Step 4: Resolve previous run
		if compareID == "" {
			prevID, err := findPreviousRun(store, current.InputFile, current.ID)
			if err != nil {
				return fmt.Errorf("looking up run history: %w", err)
			}
			if prevID == "" {
				fmt.Printf("[!] No previous run found for comparison\n")
				return nil
			}
			compareID = prevID
		}

		fmt.Printf("[*] Previous run: %s\n", compareID)

		// Step 5: Load both snapshots
		currentSnap, err := diff.LoadSnapshot(store, current.ID)
		if err != nil {
			return fmt.Errorf("loading current snapshot: %w", err)
		}

		previousSnap, err := diff.LoadSnapshot(store, compareID)
		if err != nil {
			return fmt.Errorf("loading previous snapshot: %w", err)
		}

		fmt.Printf("[*] Current:  %d domains\n", len(currentSnap.Results))
		fmt.Printf("[*] Previous: %d domains\n", len(previousSnap.Results))

		// Step 6: Compute diff
		result := diff.ComputeDiff(currentSnap, previousSnap)

		// Step 7: Write diff markdown report
		if err := storage.EnsureDir(cfg.OutputDir); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		stem := filepath.Join(cfg.OutputDir, fmt.Sprintf("diff_%s_%s", shortID(current.ID), shortID(compareID)))

		reportPath := stem + ".md"
		if err := report.WriteDiffReport(result, reportPath); err != nil {
			fmt.Printf("[!] Warning: failed to write diff report: %v\n", err)
		} else {
			fmt.Printf("[+] Diff report written to %s\n", reportPath)
		}

		// Step 8: Optionally save diff result as JSON
		if writeJSON {
			rawPath := stem + ".json"
			rawData, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling diff result: %w", err)
			}
			if err := os.WriteFile(rawPath, rawData, 0644); err != nil {
				return fmt.Errorf("writing diff JSON: %w", err)
			}
			fmt.Printf("[+] Diff JSON written to %s\n", rawPath)
		}

		// Step 9: Print summary
		fmt.Println()
		if result.IsEmpty() {
			fmt.Println("[+] No changes detected.")
			return nil
		}
		fmt.Printf("[+] Diff complete!\n")
		fmt.Printf("    Domains:    +%d new, -%d removed\n",
			len(result.NewDomains), len(result.RemovedDomains))
		fmt.Printf("    Verdicts:   %d upgraded, %d downgraded\n",
			len(result.Upgraded), len(result.Downgraded))
		fmt.Printf("    Parking:    %d newly parked, %d no longer parked\n",
			len(result.NewlyParked), len(result.NoLongerParked))

		return nil
	},
}

// findPreviousRun returns the ID of the run immediately preceding currentID
// in the history for inputFile. Returns ("", nil) when there is none.
func findPreviousRun(store *storage.Store, inputFile, currentID string) (string, error) {
	runs, err := store.ListRuns(inputFile)
	if err != nil {
		return "", fmt.Errorf("listing runs: %w", err)
	}

	// runs is sorted newest-first.
	for i, run := range runs {
		if run.ID == currentID && i+1 < len(runs) {
			return runs[i+1].ID, nil
		}
	}
	return "", nil
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func init() {
	diffCmd.Flags().StringP("input", "i", "", "Input file whose latest run is compared")
	diffCmd.Flags().String("run", "", "Current run ID (defaults to the latest run for --input)")
	diffCmd.Flags().String("compare", "", "Previous run ID (defaults to the run before --run)")
	diffCmd.Flags().Bool("json", false, "Also write the diff as JSON")
	rootCmd.AddCommand(diffCmd)
}
