package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/hakim/domainvet/internal/diff"
	"github.com/hakim/domainvet/internal/models"
)

// RenderDiffReport builds a markdown report capturing the delta between two
// runs.
func RenderDiffReport(result *diff.DiffResult) string {
	var b strings.Builder

	b.WriteString("# Run Diff Report\n\n")
	b.WriteString(fmt.Sprintf("**Date:** %s\n", time.Now().UTC().Format("2006-01-02 15:04:05 UTC")))
	b.WriteString(fmt.Sprintf("**Previous run:** %s\n", orDash(result.PreviousRunID)))
	b.WriteString(fmt.Sprintf("**Current run:** %s\n\n", orDash(result.CurrentRunID)))

	// If there are zero changes across all categories, short-circuit.
	if result.IsEmpty() {
		b.WriteString("No changes detected.\n")
		return b.String()
	}

	writeDiffSummaryTable(&b, result)
	writeResultList(&b, "New Domains", "+", result.NewDomains)
	writeResultList(&b, "Removed Domains", "-", result.RemovedDomains)
	writeChangeTable(&b, "Upgraded", result.Upgraded)
	writeChangeTable(&b, "Downgraded", result.Downgraded)
	writeChangeTable(&b, "Newly Parked", result.NewlyParked)
	writeChangeTable(&b, "No Longer Parked", result.NoLongerParked)

	return b.String()
}

// WriteDiffReport renders the diff report and writes it to outputPath.
func WriteDiffReport(result *diff.DiffResult, outputPath string) error {
	return writeFile(outputPath, RenderDiffReport(result))
}

// ---------------------------------------------------------------------------
// Section writers
// ---------------------------------------------------------------------------

// writeDiffSummaryTable writes the per-class comparison table.
func writeDiffSummaryTable(b *strings.Builder, r *diff.DiffResult) {
	b.WriteString("## Summary\n\n")
	b.WriteString("| Classification | Previous | Current | Change |\n")
	b.WriteString("|----------------|----------|---------|--------|\n")

	for _, c := range models.Classifications {
		prev, curr := r.PreviousSummary.Count(c), r.CurrentSummary.Count(c)
		b.WriteString(fmt.Sprintf("| %s | %d | %d | %s |\n", c, prev, curr, formatDelta(curr-prev)))
	}
	b.WriteString(fmt.Sprintf("| Parked | %d | %d | %s |\n",
		r.PreviousSummary.Parked, r.CurrentSummary.Parked, formatDelta(r.CurrentSummary.Parked-r.PreviousSummary.Parked)))
	b.WriteString(fmt.Sprintf("| Total | %d | %d | %s |\n",
		r.PreviousSummary.Total, r.CurrentSummary.Total, formatDelta(r.CurrentSummary.Total-r.PreviousSummary.Total)))

	b.WriteString("\n")
}

// writeResultList renders a bullet list of domains. Skipped when empty.
func writeResultList(b *strings.Builder, title, sign string, results []models.ValidationResult) {
	if len(results) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("## %s (%s%d)\n\n", title, sign, len(results)))
	for _, r := range results {
		b.WriteString(fmt.Sprintf("- %s (%s: %s)\n", r.Domain, r.Classification, r.Reason))
	}
	b.WriteString("\n")
}

// writeChangeTable renders before/after verdicts. Skipped when empty.
func writeChangeTable(b *strings.Builder, title string, changes []diff.Change) {
	if len(changes) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("## %s (%d)\n\n", title, len(changes)))
	b.WriteString("| Domain | Previous | Current | Notes |\n")
	b.WriteString("|--------|----------|---------|-------|\n")
	for _, c := range changes {
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			c.Domain, c.Previous.Classification, c.Current.Classification, escapeCell(c.Current.Reason)))
	}
	b.WriteString("\n")
}

// formatDelta returns "+3", "-1" or "none".
func formatDelta(n int) string {
	switch {
	case n > 0:
		return fmt.Sprintf("+%d", n)
	case n < 0:
		return fmt.Sprintf("%d", n)
	}
	return "none"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
