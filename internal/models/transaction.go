// Package models defines data structures for Folio
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Effect is the standardized transaction effect shared by all brokers.
// Each broker's free-text transaction labels map onto these values.
type Effect string

const (
	EffectBuy        Effect = "buy"        // adds shares, money out
	EffectSell       Effect = "sell"       // removes shares, money in
	EffectDeposit    Effect = "deposit"    // adds shares, no money (transfer in)
	EffectWithdrawal Effect = "withdrawal" // removes shares, no money (transfer out)
	EffectDividend   Effect = "dividend"   // no shares, money in
	EffectInterest   Effect = "interest"   // no shares, money in/out
	EffectTax        Effect = "tax"        // money out, broker tax tracking
	EffectFee        Effect = "fee"        // money out
	EffectTransfer   Effect = "transfer"   // cash-only movement
	EffectBonus      Effect = "bonus"      // free shares
	EffectOther      Effect = "other"      // unclassified
)

// ShareDirection describes how a transaction moves shares.
type ShareDirection string

const (
	DirectionAdd    ShareDirection = "add"
	DirectionRemove ShareDirection = "remove"
	DirectionNone   ShareDirection = "none"
)

// Supported currency symbols. Brokers report currency as a symbol, not an ISO code.
const (
	CurrencyNIS = "₪"
	CurrencyUSD = "$"
	CurrencyEUR = "€"
	CurrencyGBP = "£"
)

// ValidCurrency reports whether the given currency symbol is supported.
func ValidCurrency(currency string) bool {
	switch currency {
	case CurrencyNIS, CurrencyUSD, CurrencyEUR, CurrencyGBP:
		return true
	}
	return false
}

// Transaction is a single brokerage transaction record, already typed by the
// upstream parsing layer. Amounts follow the broker's sign conventions; the
// classifier normalizes them before any portfolio arithmetic.
type Transaction struct {
	ID             string    `json:"id"`
	Date           time.Time `json:"date"`
	Type           string    `json:"transaction_type"` // free-text broker label
	SecurityName   string    `json:"security_name"`
	SecuritySymbol string    `json:"security_symbol"`
	Quantity       float64   `json:"quantity"`
	ExecutionPrice float64   `json:"execution_price"`
	Currency       string    `json:"currency"`
	Fee            float64   `json:"transaction_fee"`
	AdditionalFees float64   `json:"additional_fees"`
	AmountLocal    float64   `json:"amount_local_currency"`
	AmountForeign  float64   `json:"amount_foreign_currency"`
	Balance        float64   `json:"balance"`
	Broker         string    `json:"broker"`
}

// EnsureID assigns a random ID when the ingest layer supplied none.
func (t *Transaction) EnsureID() {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
}

// Classification is the classifier-attached metadata for one transaction:
// the standardized effect, the phantom flag, the normalized share movement,
// and the cost basis in the transaction's currency.
type Classification struct {
	Effect    Effect          `json:"effect"`
	Phantom   bool            `json:"phantom"`
	Direction ShareDirection  `json:"share_direction"`
	Magnitude float64         `json:"share_magnitude"` // always >= 0
	CostBasis decimal.Decimal `json:"cost_basis"`
}
