package interfaces

import (
	"context"

	"github.com/asafgelber/folio/internal/models"
)

// PriceService resolves market prices for portfolio positions. Resolution
// never fails: exhausted fallbacks yield an unavailable result.
type PriceService interface {
	// Initialize loads persisted state (last-known prices, manual overrides).
	Initialize() error
	// Cleanup persists state before shutdown.
	Cleanup() error

	// FetchWithFallback resolves one symbol: manual, cached, live,
	// last-known (when allowStale), unavailable.
	FetchWithFallback(ctx context.Context, symbol, currency string, allowStale bool) models.PriceData

	// UpdatePositions annotates positions with current prices and market
	// values.
	UpdatePositions(ctx context.Context, positions []models.Position, allowStale bool) []models.Position

	// SetManualPrice registers an operator price override.
	SetManualPrice(symbol string, price float64)
	// RemoveManualPrice drops an override, reporting whether one existed.
	RemoveManualPrice(symbol string) bool
	// ManualPrices returns a copy of the current overrides.
	ManualPrices() map[string]float64
}
