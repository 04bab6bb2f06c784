package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/hakim/domainvet/internal/models"
)

// Header is the column layout shared by the CSV and XLSX reports.
var Header = []string{"DOMAIN", "MX RECORD", "A RECORD", "SITE LIVE", "PARKED DOMAIN", "STATUS", "NOTES"}

// Row flattens a result into the report column layout.
func Row(r models.ValidationResult) []string {
	return []string{
		r.Domain,
		boolCell(r.DNS.HasMX),
		boolCell(r.DNS.HasA),
		boolCell(r.SiteLive),
		boolCell(r.ParkedDomain),
		string(r.Classification),
		r.Reason,
	}
}

// WriteCSV writes results to w, header first, in the order given.
func WriteCSV(w io.Writer, results []models.ValidationResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range results {
		if err := cw.Write(Row(r)); err != nil {
			return fmt.Errorf("writing row for %s: %w", r.Domain, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the CSV report to outputPath.
func WriteCSVFile(results []models.ValidationResult, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating report %s: %w", outputPath, err)
	}

	if err := WriteCSV(f, results); err != nil {
		f.Close()
		return fmt.Errorf("writing report to %s: %w", outputPath, err)
	}
	return f.Close()
}

func boolCell(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
