package models

import "time"

// PriceSource tags where a resolved price came from.
type PriceSource string

const (
	PriceSourceManual      PriceSource = "manual"      // operator override, never expires
	PriceSourceLive        PriceSource = "live"        // fetched from the market-data provider
	PriceSourceLastKnown   PriceSource = "last_known"  // persistent cache, live fetch failed
	PriceSourceUnavailable PriceSource = "unavailable" // all tiers exhausted
)

// PriceData is the result of one price resolution attempt. Price is nil when
// no price could be resolved; Stale is always true in that case.
type PriceData struct {
	Symbol    string      `json:"symbol"`
	Currency  string      `json:"currency"`
	Price     *float64    `json:"price"`
	Source    PriceSource `json:"source"`
	FetchedAt time.Time   `json:"fetched_at"`
	Stale     bool        `json:"is_stale"`
}

// Quote is a single live quote as returned by the market-data provider.
type Quote struct {
	Symbol   string    `json:"symbol"`
	Price    float64   `json:"price"`
	Currency string    `json:"currency"`
	Time     time.Time `json:"time"`
}

// StaleAt reports whether the price is stale relative to the given clock
// time: a nil price is always stale, otherwise staleness means the price age
// exceeds the threshold. Age exactly at the threshold is not stale.
func (p PriceData) StaleAt(now time.Time, threshold time.Duration) bool {
	if p.Price == nil {
		return true
	}
	return now.Sub(p.FetchedAt) > threshold
}
