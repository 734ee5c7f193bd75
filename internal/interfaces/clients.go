package interfaces

import (
	"context"

	"github.com/asafgelber/folio/internal/models"
)

// QuoteClient fetches live quotes from a market data provider.
type QuoteClient interface {
	// GetQuote returns the latest quote for a symbol in provider format.
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
}
