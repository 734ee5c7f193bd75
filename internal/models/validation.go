package models

// DiscrepancyType categorizes a validation mismatch.
type DiscrepancyType string

const (
	DiscrepancyQuantityMismatch    DiscrepancyType = "quantity_mismatch"
	DiscrepancyCostBasisMismatch   DiscrepancyType = "cost_basis_mismatch"
	DiscrepancyMissingInCalculated DiscrepancyType = "missing_in_calculated"
	DiscrepancyMissingInActual     DiscrepancyType = "missing_in_actual"
	DiscrepancyCurrencyMismatch    DiscrepancyType = "currency_mismatch"
)

// Severity tiers for discrepancies. Critical and high fail validation;
// medium and low do not.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// PositionDiscrepancy is one mismatch between a calculated and an actual
// position. Calculated/Actual are nil when the position is absent on that side.
type PositionDiscrepancy struct {
	Symbol        string          `json:"symbol"`
	SecurityName  string          `json:"security_name"`
	Type          DiscrepancyType `json:"type"`
	Calculated    *float64        `json:"calculated"`
	Actual        *float64        `json:"actual"`
	Difference    *float64        `json:"difference"`
	DifferencePct *float64        `json:"difference_pct"`
	Severity      Severity        `json:"severity"`
	Details       string          `json:"details"`
}

// ValidationResult aggregates one validation pass. It is produced fresh on
// every call and never mutates the compared position sets.
type ValidationResult struct {
	TotalCalculated int                   `json:"total_positions_calculated"`
	TotalActual     int                   `json:"total_positions_actual"`
	Matched         int                   `json:"matched_positions"`
	Discrepancies   []PositionDiscrepancy `json:"discrepancies"`
	Passed          bool                  `json:"passed"`
	Summary         string                `json:"summary"`
}

// CountBySeverity returns the number of discrepancies at the given tier.
func (r *ValidationResult) CountBySeverity(sev Severity) int {
	n := 0
	for _, d := range r.Discrepancies {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// HasCriticalIssues reports whether any critical discrepancy was found.
func (r *ValidationResult) HasCriticalIssues() bool {
	return r.CountBySeverity(SeverityCritical) > 0
}
