package portfolio

import (
	"fmt"
	"math"
	"time"

	"github.com/asafgelber/folio/internal/models"
)

// Error kinds reported by the builder. They group related failures so build
// summaries can count them by type.
const (
	ErrKindValidation   = "data_validation"
	ErrKindProcessing   = "transaction_processing"
	ErrKindCalculation  = "position_calculation"
	ErrKindInsufficient = "insufficient_shares"
	ErrKindCurrency     = "currency_mismatch"
	ErrKindQuantity     = "negative_quantity"
)

// BuildError is an error encountered while folding transactions into
// positions. Kind identifies the failure class for grouping.
type BuildError struct {
	Kind          string `json:"kind"`
	Message       string `json:"message"`
	TransactionID string `json:"transaction_id,omitempty"`
	Symbol        string `json:"symbol,omitempty"`
}

func (e *BuildError) Error() string { return e.Message }

// InsufficientSharesError reports a sell or withdrawal larger than the
// position it draws from.
type InsufficientSharesError struct {
	Symbol    string
	Available float64
	Requested float64
	Date      time.Time
}

func (e *InsufficientSharesError) Error() string {
	return fmt.Sprintf("cannot remove %v shares of %s on %s, only %v available",
		e.Requested, e.Symbol, e.Date.Format("2006-01-02"), e.Available)
}

func insufficientShares(symbol string, available, requested float64, date time.Time) *BuildError {
	err := &InsufficientSharesError{Symbol: symbol, Available: available, Requested: requested, Date: date}
	return &BuildError{Kind: ErrKindInsufficient, Message: err.Error(), Symbol: symbol}
}

func currencyMismatch(symbol, have, got string) *BuildError {
	return &BuildError{
		Kind:    ErrKindCurrency,
		Message: fmt.Sprintf("currency mismatch for %s: position is %s, transaction is %s", symbol, have, got),
		Symbol:  symbol,
	}
}

func nonPositiveQuantity(tx *models.Transaction, qty float64) *BuildError {
	return &BuildError{
		Kind:          ErrKindQuantity,
		Message:       fmt.Sprintf("transaction %s has non-positive quantity %v (%s)", tx.ID, qty, tx.Type),
		TransactionID: tx.ID,
		Symbol:        tx.SecuritySymbol,
	}
}

// validateTransaction checks a transaction's data quality before processing.
// It returns one message per problem found.
func validateTransaction(tx *models.Transaction) []string {
	var problems []string

	if tx.SecuritySymbol == "" {
		problems = append(problems, "missing security symbol")
	}
	if tx.SecurityName == "" {
		problems = append(problems, "missing security name")
	}
	if tx.Date.IsZero() {
		problems = append(problems, "missing transaction date")
	}
	if !models.ValidCurrency(tx.Currency) {
		problems = append(problems, fmt.Sprintf("invalid currency: %q", tx.Currency))
	}
	if tx.Fee < 0 {
		problems = append(problems, fmt.Sprintf("negative fee: %v", tx.Fee))
	}
	if tx.AdditionalFees < 0 {
		problems = append(problems, fmt.Sprintf("negative additional fees: %v", tx.AdditionalFees))
	}

	numeric := map[string]float64{
		"quantity":        tx.Quantity,
		"execution_price": tx.ExecutionPrice,
		"fee":             tx.Fee,
		"additional_fees": tx.AdditionalFees,
		"amount_local":    tx.AmountLocal,
		"amount_foreign":  tx.AmountForeign,
		"balance":         tx.Balance,
	}
	for field, v := range numeric {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			problems = append(problems, fmt.Sprintf("invalid value for %s: %v", field, v))
		}
	}

	return problems
}

// ErrorCollector accumulates build errors and warnings. In fail-fast mode the
// first error aborts the build; otherwise processing continues and the caller
// inspects the collection afterwards.
type ErrorCollector struct {
	failFast bool
	errors   []*BuildError
	warnings []string
}

// NewErrorCollector returns a collector. With failFast set, Add returns the
// error it was given so the caller can stop.
func NewErrorCollector(failFast bool) *ErrorCollector {
	return &ErrorCollector{failFast: failFast}
}

// Add records an error. The return value is non-nil only in fail-fast mode.
func (c *ErrorCollector) Add(err *BuildError) error {
	if c.failFast {
		return err
	}
	c.errors = append(c.errors, err)
	return nil
}

// Warn records a non-fatal observation.
func (c *ErrorCollector) Warn(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

func (c *ErrorCollector) HasErrors() bool   { return len(c.errors) > 0 }
func (c *ErrorCollector) HasWarnings() bool { return len(c.warnings) > 0 }

// Errors returns the collected errors in order of occurrence.
func (c *ErrorCollector) Errors() []*BuildError { return c.errors }

// Warnings returns the collected warning messages.
func (c *ErrorCollector) Warnings() []string { return c.warnings }

// Reset clears all collected errors and warnings.
func (c *ErrorCollector) Reset() {
	c.errors = c.errors[:0]
	c.warnings = c.warnings[:0]
}

// Summary groups collected errors by kind.
func (c *ErrorCollector) Summary() map[string]int {
	byKind := make(map[string]int, len(c.errors))
	for _, err := range c.errors {
		byKind[err.Kind]++
	}
	return byKind
}

// BuildSummary reports how a build went: how many transactions were folded
// in, how many were skipped or excluded, and what went wrong.
type BuildSummary struct {
	Processed int            `json:"processed"`
	Skipped   int            `json:"skipped"`
	Phantom   int            `json:"phantom"`
	Errors    []*BuildError  `json:"errors,omitempty"`
	Warnings  []string       `json:"warnings,omitempty"`
	ByKind    map[string]int `json:"errors_by_kind,omitempty"`
}

// HasErrors reports whether any build errors were recorded.
func (s *BuildSummary) HasErrors() bool { return len(s.Errors) > 0 }
