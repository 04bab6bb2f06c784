package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hakim/domainvet/internal/config"
	"github.com/hakim/domainvet/internal/models"
)

func TestBuildReporters(t *testing.T) {
	tests := []struct {
		format string
		want   []string
	}{
		{"csv", []string{".csv"}},
		{"xlsx", []string{".xlsx"}},
		{"both", []string{".csv", ".xlsx"}},
	}

	results := []models.ValidationResult{
		{Domain: "example.com", Classification: models.ClassValid, Reason: "Domain passed all checks"},
	}
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			c := config.DefaultConfig()
			c.OutputDir = t.TempDir()
			c.ReportFormat = tt.format

			reporters := buildReporters(c)
			if len(reporters) != len(tt.want) {
				t.Fatalf("got %d reporters, want %d", len(reporters), len(tt.want))
			}
			for i, r := range reporters {
				path, err := r.Write(results, models.Summarize(results), at)
				if err != nil {
					t.Fatalf("%s: %v", r.Name, err)
				}
				if filepath.Base(path) != "domain_validation_results_20240301-093000"+tt.want[i] {
					t.Fatalf("path = %s", path)
				}
				if _, err := os.Stat(path); err != nil {
					t.Fatalf("report not written: %v", err)
				}
			}
		})
	}
}

func TestHistoryFormatting(t *testing.T) {
	if got := shortRunID("0123456789abcdef"); got != "01234567..." {
		t.Errorf("shortRunID = %q", got)
	}
	if got := shortRunID("abc"); got != "abc" {
		t.Errorf("shortRunID = %q", got)
	}
	if got := formatCounts(models.BatchSummary{}); got != "-" {
		t.Errorf("formatCounts(empty) = %q", got)
	}
	if got := formatCounts(models.BatchSummary{Total: 6, Valid: 3, Risky: 1, Invalid: 2}); got != "3/1/2" {
		t.Errorf("formatCounts = %q", got)
	}
	if !strings.HasPrefix(formatStatus(models.StatusComplete), "complete") {
		t.Errorf("formatStatus = %q", formatStatus(models.StatusComplete))
	}
}
