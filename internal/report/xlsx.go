package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/hakim/domainvet/internal/models"
)

const (
	resultsSheet = "Results"
	summarySheet = "Summary"
)

// WriteXLSXFile writes a workbook with a Results sheet in the CSV column
// layout and a Summary sheet with per-class counts.
func WriteXLSXFile(results []models.ValidationResult, summary models.BatchSummary, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return err
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.Domain, r.DNS.HasMX, r.DNS.HasA, r.SiteLive, r.ParkedDomain,
			string(r.Classification), r.Reason,
		}
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return fmt.Errorf("writing row for %s: %w", r.Domain, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(Header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(resultsSheet, "A1", lastCol+"1", bold); err != nil {
		return err
	}
	if err := f.AutoFilter(resultsSheet, "A1:"+lastCol+"1", nil); err != nil {
		return err
	}
	if err := f.SetColWidth(resultsSheet, "A", "A", 40); err != nil {
		return err
	}
	if err := f.SetColWidth(resultsSheet, lastCol, lastCol, 60); err != nil {
		return err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"Total domains", summary.Total},
		{"Valid domains", summary.Valid},
		{"Risky domains", summary.Risky},
		{"Invalid domains", summary.Invalid},
		{"Parked domains", summary.Parked},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("writing report to %s: %w", outputPath, err)
	}
	return nil
}
