package validate

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/asafgelber/folio/internal/common"
	"github.com/asafgelber/folio/internal/models"
)

func testValidator() *Validator {
	cfg := &common.ValidatorConfig{
		QuantityTolerance: 0.01,
		CostToleranceAbs:  1.0,
		CostTolerancePct:  0.1,
	}
	return NewValidator(cfg, common.NewSilentLogger())
}

func calcPos(symbol string, qty float64, invested float64) models.Position {
	return models.Position{
		SecurityName:   "Security " + symbol,
		SecuritySymbol: symbol,
		Quantity:       qty,
		TotalInvested:  decimal.NewFromFloat(invested),
		Currency:       models.CurrencyNIS,
	}
}

func actualPos(symbol string, qty, cost float64) models.ActualPosition {
	return models.ActualPosition{
		SecurityName:   "Security " + symbol,
		SecuritySymbol: symbol,
		Quantity:       qty,
		CostBasis:      cost,
		Currency:       models.CurrencyNIS,
	}
}

func TestValidatePerfectMatch(t *testing.T) {
	v := testValidator()

	result := v.Validate(
		[]models.Position{calcPos("695437", 15, 1650)},
		[]models.ActualPosition{actualPos("695437", 15, 1650)},
	)

	if !result.Passed {
		t.Errorf("Passed = false, want true: %s", result.Summary)
	}
	if result.Matched != 1 || len(result.Discrepancies) != 0 {
		t.Errorf("result = %+v, want 1 matched and no discrepancies", result)
	}
}

func TestValidateWithinTolerance(t *testing.T) {
	v := testValidator()

	// Quantity off by exactly the tolerance and cost off by less than the
	// absolute tolerance: neither is flagged.
	result := v.Validate(
		[]models.Position{calcPos("695437", 15.01, 1650.5)},
		[]models.ActualPosition{actualPos("695437", 15, 1650)},
	)

	if len(result.Discrepancies) != 0 {
		t.Fatalf("discrepancies = %+v, want none", result.Discrepancies)
	}
	if result.Matched != 1 {
		t.Errorf("Matched = %d, want 1", result.Matched)
	}
}

func TestValidateQuantitySeverityBands(t *testing.T) {
	v := testValidator()

	tests := []struct {
		name    string
		calcQty float64
		want    models.Severity
	}{
		{"diff above 10 is critical", 115, models.SeverityCritical},
		{"diff above 1 is high", 103, models.SeverityHigh},
		{"diff above 0.1 is medium", 100.5, models.SeverityMedium},
		{"tiny diff is low", 100.02, models.SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(
				[]models.Position{calcPos("X", tt.calcQty, 1000)},
				[]models.ActualPosition{actualPos("X", 100, 1000)},
			)
			if len(result.Discrepancies) != 1 {
				t.Fatalf("discrepancies = %+v, want exactly one", result.Discrepancies)
			}
			d := result.Discrepancies[0]
			if d.Type != models.DiscrepancyQuantityMismatch || d.Severity != tt.want {
				t.Errorf("got (%s, %s), want (quantity_mismatch, %s)", d.Type, d.Severity, tt.want)
			}
		})
	}
}

func TestValidateCostNeedsBothTolerancesExceeded(t *testing.T) {
	v := testValidator()

	// Large position: diff of 50 exceeds the absolute tolerance but is only
	// 0.05% of the basis, below the percentage tolerance.
	result := v.Validate(
		[]models.Position{calcPos("BIG", 100, 100050)},
		[]models.ActualPosition{actualPos("BIG", 100, 100000)},
	)
	if len(result.Discrepancies) != 0 {
		t.Fatalf("large position flagged: %+v", result.Discrepancies)
	}

	// Tiny position: diff of 0.5 is 50% of the basis but under the absolute
	// tolerance.
	result = v.Validate(
		[]models.Position{calcPos("TINY", 1, 1.5)},
		[]models.ActualPosition{actualPos("TINY", 1, 1)},
	)
	if len(result.Discrepancies) != 0 {
		t.Fatalf("tiny position flagged: %+v", result.Discrepancies)
	}

	// Both exceeded: flagged.
	result = v.Validate(
		[]models.Position{calcPos("BAD", 100, 1200)},
		[]models.ActualPosition{actualPos("BAD", 100, 1000)},
	)
	if len(result.Discrepancies) != 1 {
		t.Fatalf("discrepancies = %+v, want one cost mismatch", result.Discrepancies)
	}
	d := result.Discrepancies[0]
	if d.Type != models.DiscrepancyCostBasisMismatch {
		t.Errorf("Type = %s, want cost_basis_mismatch", d.Type)
	}
	// Diff 200 on 1000 is 20%, critical.
	if d.Severity != models.SeverityCritical {
		t.Errorf("Severity = %s, want critical", d.Severity)
	}
}

func TestValidateMissingPositions(t *testing.T) {
	v := testValidator()

	result := v.Validate(
		[]models.Position{calcPos("ONLY_CALC", 10, 1000)},
		[]models.ActualPosition{actualPos("ONLY_ACTUAL", 5, 500)},
	)

	if result.Passed {
		t.Error("Passed = true with missing positions")
	}
	if len(result.Discrepancies) != 2 {
		t.Fatalf("discrepancies = %+v, want two", result.Discrepancies)
	}

	byType := map[models.DiscrepancyType]models.PositionDiscrepancy{}
	for _, d := range result.Discrepancies {
		byType[d.Type] = d
	}

	missing, ok := byType[models.DiscrepancyMissingInActual]
	if !ok || missing.Severity != models.SeverityHigh {
		t.Errorf("missing_in_actual = %+v, want high severity", missing)
	}
	if missing.Actual != nil {
		t.Error("missing_in_actual has non-nil actual value")
	}

	extra, ok := byType[models.DiscrepancyMissingInCalculated]
	if !ok || extra.Severity != models.SeverityHigh {
		t.Errorf("missing_in_calculated = %+v, want high severity", extra)
	}
	if extra.Calculated != nil {
		t.Error("missing_in_calculated has non-nil calculated value")
	}
}

func TestValidateCurrencyMismatch(t *testing.T) {
	v := testValidator()

	actual := actualPos("695437", 10, 1000)
	actual.Currency = models.CurrencyUSD

	result := v.Validate(
		[]models.Position{calcPos("695437", 10, 1000)},
		[]models.ActualPosition{actual},
	)

	if result.Passed {
		t.Error("Passed = true with currency mismatch")
	}
	if len(result.Discrepancies) != 1 || result.Discrepancies[0].Type != models.DiscrepancyCurrencyMismatch {
		t.Fatalf("discrepancies = %+v, want one currency_mismatch", result.Discrepancies)
	}
	if result.Discrepancies[0].Severity != models.SeverityHigh {
		t.Errorf("Severity = %s, want high", result.Discrepancies[0].Severity)
	}
}

func TestValidatePassedWithMediumOnly(t *testing.T) {
	v := testValidator()

	// Quantity diff of 0.5 is a medium discrepancy, which does not fail
	// validation.
	result := v.Validate(
		[]models.Position{calcPos("X", 10.5, 1000)},
		[]models.ActualPosition{actualPos("X", 10, 1000)},
	)

	if !result.Passed {
		t.Errorf("Passed = false with only medium issues: %+v", result.Discrepancies)
	}
	if len(result.Discrepancies) != 1 {
		t.Fatalf("discrepancies = %+v, want one", result.Discrepancies)
	}
}

func TestReport(t *testing.T) {
	v := testValidator()

	result := v.Validate(
		[]models.Position{calcPos("ONLY_CALC", 10, 1000)},
		[]models.ActualPosition{actualPos("ONLY_ACTUAL", 5, 500)},
	)

	report := Report(result)
	for _, want := range []string{
		"PORTFOLIO VALIDATION REPORT",
		"Status: FAILED",
		"HIGH (2):",
		"missing_in_actual",
		"missing_in_calculated",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}
