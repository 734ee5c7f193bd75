package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Position is the current holding for one security. The builder owns a
// position while a build pass runs; returned positions are read-only.
// Invariant: TotalInvested == Quantity × AverageCost within tolerance, and
// Quantity >= 0 always.
type Position struct {
	SecurityName   string          `json:"security_name"`
	SecuritySymbol string          `json:"security_symbol"`
	Quantity       float64         `json:"quantity"`
	AverageCost    decimal.Decimal `json:"average_cost"`
	TotalInvested  decimal.Decimal `json:"total_invested"`
	Currency       string          `json:"currency"`

	// Market data fields, attached by the price service consumer only.
	// The builder never sets these.
	CurrentPrice *float64 `json:"current_price,omitempty"`
	MarketValue  *float64 `json:"market_value,omitempty"`
	PriceSource  string   `json:"price_source,omitempty"`
}

// NewPosition creates an empty position for a security.
func NewPosition(name, symbol, currency string) *Position {
	return &Position{
		SecurityName:   name,
		SecuritySymbol: symbol,
		Currency:       currency,
		AverageCost:    decimal.Zero,
		TotalInvested:  decimal.Zero,
	}
}

// HasMarketData reports whether the position carries a current price.
func (p *Position) HasMarketData() bool {
	return p.CurrentPrice != nil && p.MarketValue != nil
}

// UnrealizedPnL returns market value minus cost basis. The second return
// value is false when market data is missing.
func (p *Position) UnrealizedPnL() (decimal.Decimal, bool) {
	if !p.HasMarketData() || p.TotalInvested.IsZero() {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(*p.MarketValue).Sub(p.TotalInvested), true
}

// UnrealizedPnLPct returns unrealized P&L as a percentage of cost basis.
func (p *Position) UnrealizedPnLPct() (float64, bool) {
	pnl, ok := p.UnrealizedPnL()
	if !ok {
		return 0, false
	}
	pct, _ := pnl.Div(p.TotalInvested).Mul(decimal.NewFromInt(100)).Float64()
	return pct, true
}

func (p *Position) String() string {
	return fmt.Sprintf("%s: %.2f shares @ %s%s",
		p.SecurityName, p.Quantity, p.Currency, p.AverageCost.StringFixed(2))
}
