package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hakim/domainvet/internal/models"
)

var indicators = map[models.Classification]string{
	models.ClassValid:   "✅",
	models.ClassRisky:   "⚠️",
	models.ClassInvalid: "❌",
}

// Indicator returns the console marker for a classification.
func Indicator(c models.Classification) string {
	if s, ok := indicators[c]; ok {
		return s
	}
	return indicators[models.ClassInvalid]
}

// ProgressLine formats one completed result as
// "[i/N] <indicator> <STATUS>: <domain> (<reason>)".
func ProgressLine(r models.ValidationResult, index, total int) string {
	return fmt.Sprintf("[%d/%d] %s %s: %s (%s)",
		index, total, Indicator(r.Classification), strings.ToUpper(string(r.Classification)), r.Domain, r.Reason)
}

// PrintProgress writes ProgressLine to w.
func PrintProgress(w io.Writer, r models.ValidationResult, index, total int) {
	fmt.Fprintln(w, ProgressLine(r, index, total))
}

// PrintSummary writes the end-of-run block with per-class counts.
func PrintSummary(w io.Writer, s models.BatchSummary, elapsed time.Duration) {
	rule := strings.Repeat("=", 50)
	fmt.Fprintf(w, "\n%s\nSUMMARY:\n%s\n", rule, rule)
	fmt.Fprintf(w, "Total domains: %d\n", s.Total)
	fmt.Fprintf(w, "Valid domains: %d\n", s.Valid)
	fmt.Fprintf(w, "Risky domains: %d\n", s.Risky)
	fmt.Fprintf(w, "Invalid domains: %d\n", s.Invalid)
	fmt.Fprintf(w, "Parked domains: %d\n", s.Parked)
	fmt.Fprintf(w, "\nCompleted in %.2f seconds\n", elapsed.Seconds())
}
