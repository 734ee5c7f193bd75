// Package validate compares a calculated portfolio against the broker's own
// position statement and reports tolerance-banded discrepancies.
package validate

import (
	"fmt"
	"math"

	"github.com/asafgelber/folio/internal/common"
	"github.com/asafgelber/folio/internal/models"
)

// Validator matches calculated positions to broker statement positions by
// symbol and flags quantity, cost basis and currency differences outside the
// configured tolerances.
type Validator struct {
	quantityTolerance float64
	costToleranceAbs  float64
	costTolerancePct  float64
	logger            *common.Logger
}

// NewValidator returns a validator with the tolerances from config.
func NewValidator(cfg *common.ValidatorConfig, logger *common.Logger) *Validator {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Validator{
		quantityTolerance: cfg.QuantityTolerance,
		costToleranceAbs:  cfg.CostToleranceAbs,
		costTolerancePct:  cfg.CostTolerancePct,
		logger:            logger,
	}
}

// Validate compares the calculated positions against the broker statement.
// Validation passes when no discrepancy is worse than medium severity.
func (v *Validator) Validate(calculated []models.Position, actual []models.ActualPosition) *models.ValidationResult {
	calcBySymbol := make(map[string]*models.Position, len(calculated))
	for i := range calculated {
		calcBySymbol[calculated[i].SecuritySymbol] = &calculated[i]
	}
	actualBySymbol := make(map[string]*models.ActualPosition, len(actual))
	for i := range actual {
		actualBySymbol[actual[i].SecuritySymbol] = &actual[i]
	}

	var discrepancies []models.PositionDiscrepancy
	matched := 0

	for i := range calculated {
		calc := &calculated[i]
		act, ok := actualBySymbol[calc.SecuritySymbol]
		if !ok {
			qty := calc.Quantity
			discrepancies = append(discrepancies, models.PositionDiscrepancy{
				Symbol:       calc.SecuritySymbol,
				SecurityName: calc.SecurityName,
				Type:         models.DiscrepancyMissingInActual,
				Calculated:   &qty,
				Difference:   &qty,
				Severity:     models.SeverityHigh,
				Details: fmt.Sprintf("position exists in calculated portfolio (%.2f shares) but not in broker statement",
					calc.Quantity),
			})
			continue
		}
		found := v.comparePosition(calc, act)
		if len(found) == 0 {
			matched++
		}
		discrepancies = append(discrepancies, found...)
	}

	for i := range actual {
		act := &actual[i]
		if _, ok := calcBySymbol[act.SecuritySymbol]; ok {
			continue
		}
		qty := act.Quantity
		discrepancies = append(discrepancies, models.PositionDiscrepancy{
			Symbol:       act.SecuritySymbol,
			SecurityName: act.SecurityName,
			Type:         models.DiscrepancyMissingInCalculated,
			Actual:       &qty,
			Difference:   &qty,
			Severity:     models.SeverityHigh,
			Details: fmt.Sprintf("position exists in broker statement (%.2f shares) but not in calculated portfolio",
				act.Quantity),
		})
	}

	passed := true
	for _, d := range discrepancies {
		if d.Severity == models.SeverityCritical || d.Severity == models.SeverityHigh {
			passed = false
			break
		}
	}

	result := &models.ValidationResult{
		TotalCalculated: len(calculated),
		TotalActual:     len(actual),
		Matched:         matched,
		Discrepancies:   discrepancies,
		Passed:          passed,
	}
	result.Summary = summarize(result)

	v.logger.Info().
		Bool("passed", result.Passed).
		Int("matched", result.Matched).
		Int("discrepancies", len(result.Discrepancies)).
		Msg("portfolio validation complete")

	return result
}

func (v *Validator) comparePosition(calc *models.Position, act *models.ActualPosition) []models.PositionDiscrepancy {
	var out []models.PositionDiscrepancy

	qtyDiff := math.Abs(calc.Quantity - act.Quantity)
	if qtyDiff > v.quantityTolerance {
		var pct *float64
		if act.Quantity != 0 {
			p := qtyDiff / math.Abs(act.Quantity) * 100
			pct = &p
		}
		calcQty, actQty, diff := calc.Quantity, act.Quantity, qtyDiff
		out = append(out, models.PositionDiscrepancy{
			Symbol:        calc.SecuritySymbol,
			SecurityName:  calc.SecurityName,
			Type:          models.DiscrepancyQuantityMismatch,
			Calculated:    &calcQty,
			Actual:        &actQty,
			Difference:    &diff,
			DifferencePct: pct,
			Severity:      quantitySeverity(qtyDiff),
			Details: fmt.Sprintf("quantity mismatch: calculated %.2f, actual %.2f, diff %.2f shares",
				calc.Quantity, act.Quantity, qtyDiff),
		})
	}

	calcCost := calc.TotalInvested.InexactFloat64()
	costDiff := math.Abs(calcCost - act.CostBasis)
	var costPct *float64
	if act.CostBasis != 0 {
		p := costDiff / math.Abs(act.CostBasis) * 100
		costPct = &p
	}
	// Both the absolute and the percentage tolerance must be exceeded. Large
	// positions shrug off a few currency units; tiny positions shrug off
	// large percentages of nearly nothing.
	if costDiff > v.costToleranceAbs && costPct != nil && *costPct > v.costTolerancePct {
		cc, ac, diff := calcCost, act.CostBasis, costDiff
		out = append(out, models.PositionDiscrepancy{
			Symbol:        calc.SecuritySymbol,
			SecurityName:  calc.SecurityName,
			Type:          models.DiscrepancyCostBasisMismatch,
			Calculated:    &cc,
			Actual:        &ac,
			Difference:    &diff,
			DifferencePct: costPct,
			Severity:      costSeverity(costDiff, costPct),
			Details: fmt.Sprintf("cost basis mismatch: calculated %s%.2f, actual %s%.2f, diff %s%.2f",
				calc.Currency, calcCost, calc.Currency, act.CostBasis, calc.Currency, costDiff),
		})
	}

	if calc.Currency != act.Currency {
		out = append(out, models.PositionDiscrepancy{
			Symbol:       calc.SecuritySymbol,
			SecurityName: calc.SecurityName,
			Type:         models.DiscrepancyCurrencyMismatch,
			Severity:     models.SeverityHigh,
			Details:      fmt.Sprintf("currency mismatch: calculated %s, actual %s", calc.Currency, act.Currency),
		})
	}

	return out
}

func quantitySeverity(diff float64) models.Severity {
	switch {
	case diff > 10:
		return models.SeverityCritical
	case diff > 1:
		return models.SeverityHigh
	case diff > 0.1:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

func costSeverity(diff float64, pct *float64) models.Severity {
	p := 0.0
	if pct != nil {
		p = *pct
	}
	switch {
	case diff > 1000 || p > 10:
		return models.SeverityCritical
	case diff > 100 || p > 5:
		return models.SeverityHigh
	case diff > 10 || p > 1:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

func summarize(r *models.ValidationResult) string {
	if r.Passed && len(r.Discrepancies) == 0 {
		return fmt.Sprintf("validation passed: all %d positions match", r.Matched)
	}
	if r.Passed {
		return fmt.Sprintf("validation passed with minor issues: %d matched, %d discrepancies within acceptable tolerance",
			r.Matched, len(r.Discrepancies))
	}
	if critical := r.CountBySeverity(models.SeverityCritical); critical > 0 {
		return fmt.Sprintf("validation failed: %d critical issues, %d/%d positions matched",
			critical, r.Matched, r.TotalActual)
	}
	return fmt.Sprintf("validation warning: %d/%d positions matched, %d issues found",
		r.Matched, r.TotalActual, len(r.Discrepancies))
}
