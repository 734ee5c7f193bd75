package validate

import (
	"fmt"
	"strings"

	"github.com/asafgelber/folio/internal/models"
)

const reportRule = "================================================================================"
const reportSubRule = "--------------------------------------------------------------------------------"

// Report renders a validation result as a plain-text report, with
// discrepancies grouped by severity.
func Report(r *models.ValidationResult) string {
	var b strings.Builder

	b.WriteString(reportRule + "\n")
	b.WriteString("PORTFOLIO VALIDATION REPORT\n")
	b.WriteString(reportRule + "\n\n")

	status := "FAILED"
	if r.Passed {
		status = "PASSED"
	}
	b.WriteString("SUMMARY\n")
	b.WriteString(reportSubRule + "\n")
	fmt.Fprintf(&b, "Status: %s\n", status)
	fmt.Fprintf(&b, "Total Calculated Positions: %d\n", r.TotalCalculated)
	fmt.Fprintf(&b, "Total Actual Positions: %d\n", r.TotalActual)
	fmt.Fprintf(&b, "Matched Positions: %d\n", r.Matched)
	fmt.Fprintf(&b, "Discrepancies Found: %d\n", len(r.Discrepancies))
	for _, sev := range []models.Severity{models.SeverityCritical, models.SeverityHigh, models.SeverityMedium, models.SeverityLow} {
		fmt.Fprintf(&b, "  - %s: %d\n", titleCase(string(sev)), r.CountBySeverity(sev))
	}
	b.WriteString("\n" + r.Summary + "\n\n")

	if len(r.Discrepancies) == 0 {
		b.WriteString("No discrepancies found. All positions match.\n")
		b.WriteString(reportRule + "\n")
		return b.String()
	}

	b.WriteString("DISCREPANCIES\n")
	b.WriteString(reportSubRule + "\n")
	for _, sev := range []models.Severity{models.SeverityCritical, models.SeverityHigh, models.SeverityMedium, models.SeverityLow} {
		group := make([]models.PositionDiscrepancy, 0)
		for _, d := range r.Discrepancies {
			if d.Severity == sev {
				group = append(group, d)
			}
		}
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s (%d):\n\n", strings.ToUpper(string(sev)), len(group))
		for _, d := range group {
			fmt.Fprintf(&b, "  [%s] %s (%s)\n", d.Type, d.SecurityName, d.Symbol)
			fmt.Fprintf(&b, "    %s\n\n", d.Details)
		}
	}
	b.WriteString(reportRule + "\n")

	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
