// Package portfolio folds classified transactions into current holdings.
package portfolio

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/asafgelber/folio/internal/broker"
	"github.com/asafgelber/folio/internal/common"
	"github.com/asafgelber/folio/internal/models"
)

// quantityTolerance absorbs broker rounding in share counts. Residual
// quantities below it snap to zero, and sells may exceed the held quantity
// by at most this much.
const quantityTolerance = 0.01

// Builder replays transaction history in date order to reconstruct the
// current portfolio. Buys and deposits accumulate shares at weighted average
// cost; sells and withdrawals remove shares at that average, leaving the cost
// basis of the remaining shares untouched.
type Builder struct {
	classifier broker.Classifier
	failFast   bool
	logger     *common.Logger
}

// NewBuilder returns a builder using the given broker classifier. With
// failFast set the first error aborts the build instead of being collected.
func NewBuilder(classifier broker.Classifier, failFast bool, logger *common.Logger) *Builder {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Builder{classifier: classifier, failFast: failFast, logger: logger}
}

// Build reconstructs positions from the full transaction history. The input
// order does not matter; transactions are sorted by date before processing.
// Only open positions (quantity > 0) are returned, sorted by symbol. The
// summary is always non-nil and describes what was processed and skipped.
//
// In fail-fast mode the first error is returned immediately. Otherwise the
// error result is nil and problems accumulate in the summary.
func (b *Builder) Build(transactions []models.Transaction) ([]models.Position, *BuildSummary, error) {
	collector := NewErrorCollector(b.failFast)
	summary := &BuildSummary{}

	if len(transactions) == 0 {
		b.logger.Warn().Msg("no transactions provided to build portfolio")
		return nil, summary, nil
	}

	sorted := make([]models.Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	positions := make(map[string]*models.Position)

	for i := range sorted {
		tx := &sorted[i]
		tx.EnsureID()

		if problems := validateTransaction(tx); len(problems) > 0 {
			summary.Skipped++
			err := &BuildError{
				Kind:          ErrKindValidation,
				Message:       "transaction validation failed: " + strings.Join(problems, "; "),
				TransactionID: tx.ID,
				Symbol:        tx.SecuritySymbol,
			}
			b.logger.Warn().
				Str("transaction_id", tx.ID).
				Str("symbol", tx.SecuritySymbol).
				Strs("problems", problems).
				Msg("skipping invalid transaction")
			if ferr := collector.Add(err); ferr != nil {
				return nil, b.finish(summary, collector), ferr
			}
			continue
		}

		cl := broker.Classify(b.classifier, tx)

		if cl.Effect == models.EffectOther {
			collector.Warn("unclassified transaction type %q for %s", tx.Type, tx.SecuritySymbol)
		}

		if cl.Phantom {
			summary.Phantom++
			continue
		}

		if err := b.apply(positions, tx, cl, collector); err != nil {
			return nil, b.finish(summary, collector), err
		}
		summary.Processed++
	}

	result := make([]models.Position, 0, len(positions))
	for _, pos := range positions {
		if pos.Quantity > 0 {
			result = append(result, *pos)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SecuritySymbol < result[j].SecuritySymbol
	})

	b.logger.Info().
		Int("processed", summary.Processed).
		Int("skipped", summary.Skipped).
		Int("phantom", summary.Phantom).
		Int("errors", len(collector.Errors())).
		Int("warnings", len(collector.Warnings())).
		Int("open_positions", len(result)).
		Msg("portfolio build complete")

	return result, b.finish(summary, collector), nil
}

// BuildByCurrency builds the portfolio and groups open positions by their
// currency.
func (b *Builder) BuildByCurrency(transactions []models.Transaction) (map[string][]models.Position, *BuildSummary, error) {
	positions, summary, err := b.Build(transactions)
	if err != nil {
		return nil, summary, err
	}
	byCurrency := make(map[string][]models.Position)
	for _, pos := range positions {
		byCurrency[pos.Currency] = append(byCurrency[pos.Currency], pos)
	}
	return byCurrency, summary, nil
}

// apply folds a single classified transaction into the position map.
func (b *Builder) apply(positions map[string]*models.Position, tx *models.Transaction, cl models.Classification, collector *ErrorCollector) error {
	if cl.Direction == models.DirectionNone {
		return nil
	}

	pos, ok := positions[tx.SecuritySymbol]
	if !ok {
		pos = models.NewPosition(tx.SecurityName, tx.SecuritySymbol, tx.Currency)
		positions[tx.SecuritySymbol] = pos
	}

	if pos.Currency != tx.Currency {
		return collector.Add(currencyMismatch(tx.SecuritySymbol, pos.Currency, tx.Currency))
	}

	if cl.Magnitude <= 0 {
		return collector.Add(nonPositiveQuantity(tx, cl.Magnitude))
	}

	switch cl.Direction {
	case models.DirectionAdd:
		return b.addShares(pos, tx, cl, collector)
	case models.DirectionRemove:
		return b.removeShares(pos, tx, cl, collector)
	}
	return nil
}

func (b *Builder) addShares(pos *models.Position, tx *models.Transaction, cl models.Classification, collector *ErrorCollector) error {
	cost := cl.CostBasis
	if cost.IsNegative() {
		collector.Warn("negative cost basis for transaction %s (%s)", tx.ID, tx.SecuritySymbol)
		cost = cost.Abs()
	}

	pos.Quantity += cl.Magnitude
	pos.TotalInvested = pos.TotalInvested.Add(cost)
	if pos.Quantity > 0 {
		pos.AverageCost = pos.TotalInvested.Div(decimal.NewFromFloat(pos.Quantity))
	} else {
		pos.AverageCost = decimal.Zero
		collector.Warn("zero quantity after adding shares for %s", tx.SecuritySymbol)
	}
	return nil
}

// removeShares takes shares out at the position's average cost so the basis
// of the remaining shares is preserved.
func (b *Builder) removeShares(pos *models.Position, tx *models.Transaction, cl models.Classification, collector *ErrorCollector) error {
	if cl.Magnitude > pos.Quantity+quantityTolerance {
		return collector.Add(insufficientShares(tx.SecuritySymbol, pos.Quantity, cl.Magnitude, tx.Date))
	}

	removed := pos.AverageCost.Mul(decimal.NewFromFloat(cl.Magnitude))
	pos.Quantity -= cl.Magnitude
	pos.TotalInvested = pos.TotalInvested.Sub(removed)

	if pos.Quantity < quantityTolerance && pos.Quantity > -quantityTolerance {
		pos.Quantity = 0
		pos.TotalInvested = decimal.Zero
		pos.AverageCost = decimal.Zero
	}
	return nil
}

func (b *Builder) finish(summary *BuildSummary, collector *ErrorCollector) *BuildSummary {
	summary.Errors = collector.Errors()
	summary.Warnings = collector.Warnings()
	summary.ByKind = collector.Summary()
	return summary
}
