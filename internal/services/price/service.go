// Package price resolves current market prices through a tiered fallback:
// manual override, live provider fetch, last-known cached price, unavailable.
package price

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/asafgelber/folio/internal/clients/yahoo"
	"github.com/asafgelber/folio/internal/common"
	"github.com/asafgelber/folio/internal/interfaces"
	"github.com/asafgelber/folio/internal/models"
)

// Settings control cache lifetimes and retry behavior.
type Settings struct {
	CacheTTL       time.Duration // in-memory cache entry lifetime
	Staleness      time.Duration // age beyond which a price is flagged stale
	MaxRetries     int           // live fetch attempts
	InitialDelay   time.Duration // first retry delay
	MaxDelay       time.Duration // retry delay cap
	RateLimitPause time.Duration // extra pause after a 429
	BatchDelay     time.Duration // fixed delay between batch fetches
}

// SettingsFromConfig builds Settings from the prices config section.
func SettingsFromConfig(cfg *common.PricesConfig) Settings {
	return Settings{
		CacheTTL:       cfg.GetCacheTTL(),
		Staleness:      cfg.GetStaleness(),
		MaxRetries:     cfg.MaxRetries,
		InitialDelay:   cfg.GetInitialDelay(),
		MaxDelay:       cfg.GetMaxDelay(),
		RateLimitPause: cfg.GetRateLimitPause(),
		BatchDelay:     cfg.GetBatchDelay(),
	}
}

// Service resolves prices for portfolio positions. Resolution never returns
// an error: every tier failure degrades to the next tier, ending at an
// unavailable result with a nil price.
type Service struct {
	client   interfaces.QuoteClient
	store    interfaces.PriceStore
	logger   *common.Logger
	settings Settings

	mu        sync.RWMutex
	memCache  map[string]models.PriceData // TTL-bounded, cleared on restart
	lastKnown map[string]models.PriceData // persisted across runs
	manual    map[string]float64

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

var _ interfaces.PriceService = (*Service)(nil)

// NewService creates a price service. The store may be nil, in which case
// last-known prices and manual overrides live only in memory.
func NewService(client interfaces.QuoteClient, store interfaces.PriceStore, settings Settings, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		client:    client,
		store:     store,
		logger:    logger,
		settings:  settings,
		memCache:  make(map[string]models.PriceData),
		lastKnown: make(map[string]models.PriceData),
		manual:    make(map[string]float64),
		now:       time.Now,
		sleep:     sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Initialize loads persisted prices and manual overrides from the store.
func (s *Service) Initialize() error {
	if s.store == nil {
		return nil
	}
	cache, err := s.store.LoadCache()
	if err != nil {
		return err
	}
	manual, err := s.store.LoadManual()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.lastKnown = cache
	s.manual = manual
	s.mu.Unlock()

	s.logger.Info().
		Int("cached_prices", len(cache)).
		Int("manual_prices", len(manual)).
		Msg("price service initialized")
	return nil
}

// Cleanup persists the last-known prices and manual overrides.
func (s *Service) Cleanup() error {
	if s.store == nil {
		return nil
	}
	s.mu.RLock()
	cache := make(map[string]models.PriceData, len(s.lastKnown))
	for k, v := range s.lastKnown {
		cache[k] = v
	}
	manual := make(map[string]float64, len(s.manual))
	for k, v := range s.manual {
		manual[k] = v
	}
	s.mu.RUnlock()

	if err := s.store.SaveCache(cache); err != nil {
		return err
	}
	return s.store.SaveManual(manual)
}

// SetManualPrice registers an operator override for a symbol. Manual prices
// win over every other tier and never expire.
func (s *Service) SetManualPrice(symbol string, price float64) {
	s.mu.Lock()
	s.manual[symbol] = price
	s.mu.Unlock()
	s.logger.Info().Str("symbol", symbol).Float64("price", price).Msg("manual price set")
}

// RemoveManualPrice drops an override. It reports whether one existed.
func (s *Service) RemoveManualPrice(symbol string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.manual[symbol]
	delete(s.manual, symbol)
	return ok
}

// ManualPrices returns a copy of the current overrides.
func (s *Service) ManualPrices() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.manual))
	for k, v := range s.manual {
		out[k] = v
	}
	return out
}

// FetchWithFallback resolves a price for the symbol. Tier order: manual
// override, fresh in-memory cache, live fetch with retries, last-known price
// (only when allowStale is set), unavailable. The result always carries the
// tier it came from and a staleness flag.
func (s *Service) FetchWithFallback(ctx context.Context, symbol, currency string, allowStale bool) models.PriceData {
	now := s.now()

	s.mu.RLock()
	manualPrice, hasManual := s.manual[symbol]
	cached, hasCached := s.memCache[symbol]
	s.mu.RUnlock()

	if hasManual {
		return models.PriceData{
			Symbol:    symbol,
			Currency:  currency,
			Price:     &manualPrice,
			Source:    models.PriceSourceManual,
			FetchedAt: now,
		}
	}

	if hasCached && common.IsFreshAt(now, cached.FetchedAt, s.settings.CacheTTL) {
		return cached
	}

	if quote, err := s.fetchLive(ctx, symbol, currency); err == nil {
		price := quote.Price
		data := models.PriceData{
			Symbol:    symbol,
			Currency:  currency,
			Price:     &price,
			Source:    models.PriceSourceLive,
			FetchedAt: now,
		}
		s.mu.Lock()
		s.memCache[symbol] = data
		s.lastKnown[symbol] = data
		s.mu.Unlock()
		return data
	} else {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("live price fetch failed")
	}

	if allowStale {
		s.mu.RLock()
		last, ok := s.lastKnown[symbol]
		s.mu.RUnlock()
		if ok && last.Price != nil {
			last.Source = models.PriceSourceLastKnown
			last.Stale = last.StaleAt(now, s.settings.Staleness)
			s.logger.Info().
				Str("symbol", symbol).
				Time("fetched_at", last.FetchedAt).
				Bool("stale", last.Stale).
				Msg("using last known price")
			return last
		}
	}

	s.logger.Warn().Str("symbol", symbol).Msg("no price available, all fallbacks exhausted")
	return models.PriceData{
		Symbol:    symbol,
		Currency:  currency,
		Source:    models.PriceSourceUnavailable,
		FetchedAt: now,
		Stale:     true,
	}
}

// fetchLive fetches a quote with exponential backoff. A 404 or delisted
// symbol aborts immediately; a rate-limit response gets an extra pause before
// the next attempt.
func (s *Service) fetchLive(ctx context.Context, symbol, currency string) (*models.Quote, error) {
	yahooSymbol, exact := models.YahooSymbol(symbol, currency)
	if !exact {
		s.logger.Debug().
			Str("symbol", symbol).
			Str("yahoo_symbol", yahooSymbol).
			Msg("no exact symbol translation, using best-effort format")
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.settings.InitialDelay
	policy.MaxInterval = s.settings.MaxDelay
	policy.MaxElapsedTime = 0

	attempts := uint64(s.settings.MaxRetries)
	if attempts == 0 {
		attempts = 1
	}

	var quote *models.Quote
	operation := func() error {
		q, err := s.client.GetQuote(ctx, yahooSymbol)
		if err != nil {
			if yahoo.IsNotFound(err) {
				return backoff.Permanent(err)
			}
			if yahoo.IsRateLimited(err) {
				s.logger.Warn().Str("symbol", yahooSymbol).Msg("rate limited by provider")
				s.sleep(ctx, s.settings.RateLimitPause)
			}
			return err
		}
		quote = q
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, attempts-1), ctx))
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// BatchResult reports one symbol's outcome within a batch fetch.
type BatchResult struct {
	Index int
	Total int
	Data  models.PriceData
}

// FetchBatch resolves prices for multiple symbols with a fixed delay between
// provider calls. The progress callback, when non-nil, runs after each
// symbol. Returns resolved data keyed by the original symbol.
func (s *Service) FetchBatch(ctx context.Context, symbols []string, currency string, allowStale bool, progress func(BatchResult)) map[string]models.PriceData {
	out := make(map[string]models.PriceData, len(symbols))
	if len(symbols) == 0 {
		return out
	}

	s.logger.Info().Int("count", len(symbols)).Str("currency", currency).Msg("batch price fetch started")

	for i, symbol := range symbols {
		if i > 0 {
			s.sleep(ctx, s.settings.BatchDelay)
		}
		if ctx.Err() != nil {
			break
		}
		data := s.FetchWithFallback(ctx, symbol, currency, allowStale)
		out[symbol] = data
		if progress != nil {
			progress(BatchResult{Index: i + 1, Total: len(symbols), Data: data})
		}
	}

	resolved := 0
	for _, d := range out {
		if d.Price != nil {
			resolved++
		}
	}
	s.logger.Info().
		Int("resolved", resolved).
		Int("total", len(symbols)).
		Msg("batch price fetch complete")

	return out
}

// UpdatePositions annotates positions with current prices and market values,
// fetching per currency group. Positions whose price cannot be resolved are
// left unannotated.
func (s *Service) UpdatePositions(ctx context.Context, positions []models.Position, allowStale bool) []models.Position {
	byCurrency := make(map[string][]string)
	for _, pos := range positions {
		byCurrency[pos.Currency] = append(byCurrency[pos.Currency], pos.SecuritySymbol)
	}

	resolved := make(map[string]models.PriceData)
	for currency, symbols := range byCurrency {
		for sym, data := range s.FetchBatch(ctx, symbols, currency, allowStale, nil) {
			resolved[sym] = data
		}
	}

	updated := 0
	for i := range positions {
		data, ok := resolved[positions[i].SecuritySymbol]
		if !ok || data.Price == nil || *data.Price <= 0 {
			continue
		}
		price := *data.Price
		value := positions[i].Quantity * price
		positions[i].CurrentPrice = &price
		positions[i].MarketValue = &value
		positions[i].PriceSource = string(data.Source)
		updated++
	}

	s.logger.Info().
		Int("updated", updated).
		Int("total", len(positions)).
		Msg("positions annotated with market prices")

	return positions
}
