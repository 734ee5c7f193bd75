package interfaces

import "github.com/asafgelber/folio/internal/models"

// PriceStore persists price-layer state between runs.
type PriceStore interface {
	// LoadCache reads the persisted last-known prices.
	LoadCache() (map[string]models.PriceData, error)
	// SaveCache persists the last-known prices.
	SaveCache(cache map[string]models.PriceData) error
	// LoadManual reads the manual price overrides.
	LoadManual() (map[string]float64, error)
	// SaveManual persists the manual price overrides.
	SaveManual(manual map[string]float64) error
	// Close releases store resources.
	Close() error
}
