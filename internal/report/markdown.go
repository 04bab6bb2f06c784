package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hakim/domainvet/internal/models"
)

// RenderRunReport builds a markdown report for a stored run: metadata, the
// per-class summary table, and one table per classification.
func RenderRunReport(meta *models.RunMeta, results []models.ValidationResult) string {
	var b strings.Builder

	// Header
	b.WriteString("# Domain Validation Report\n\n")
	b.WriteString(fmt.Sprintf("**Run:** %s\n", meta.ID))
	b.WriteString(fmt.Sprintf("**Input:** %s\n", meta.InputFile))
	b.WriteString(fmt.Sprintf("**Profile:** %s\n", meta.Profile))
	b.WriteString(fmt.Sprintf("**Started:** %s\n", meta.StartedAt.Format("2006-01-02 15:04:05")))
	if meta.CompletedAt != nil {
		b.WriteString(fmt.Sprintf("**Duration:** %s\n", meta.CompletedAt.Sub(meta.StartedAt).Round(time.Second)))
	}
	b.WriteString(fmt.Sprintf("**Status:** %s\n\n", meta.Status))

	// Summary section
	summary := models.Summarize(results)
	b.WriteString("## Summary\n\n")
	b.WriteString("| Classification | Count |\n")
	b.WriteString("|----------------|-------|\n")
	for _, c := range models.Classifications {
		b.WriteString(fmt.Sprintf("| %s | %d |\n", c, summary.Count(c)))
	}
	b.WriteString(fmt.Sprintf("| Parked | %d |\n", summary.Parked))
	b.WriteString(fmt.Sprintf("| **Total** | **%d** |\n\n", summary.Total))

	// One section per classification
	for _, c := range models.Classifications {
		b.WriteString(fmt.Sprintf("## %s Domains\n\n", c))

		rows := filterByClass(results, c)
		if len(rows) == 0 {
			b.WriteString("None.\n\n")
			continue
		}

		b.WriteString("| Domain | MX | A | Live | Parked | Notes |\n")
		b.WriteString("|--------|----|---|------|--------|-------|\n")
		for _, r := range rows {
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
				r.Domain, boolCell(r.DNS.HasMX), boolCell(r.DNS.HasA),
				boolCell(r.SiteLive), boolCell(r.ParkedDomain), escapeCell(r.Reason)))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// WriteRunReport renders the run report and writes it to outputPath.
func WriteRunReport(meta *models.RunMeta, results []models.ValidationResult, outputPath string) error {
	return writeFile(outputPath, RenderRunReport(meta, results))
}

func filterByClass(results []models.ValidationResult, c models.Classification) []models.ValidationResult {
	var out []models.ValidationResult
	for _, r := range results {
		if r.Classification == c {
			out = append(out, r)
		}
	}
	return out
}

// escapeCell keeps reasons containing pipes from breaking the table.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// writeFile writes content to path, wrapping any OS error with context.
func writeFile(outputPath, content string) error {
	if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing report to %s: %w", outputPath, err)
	}
	return nil
}
