// Package app wires configuration, storage, clients and services into a
// runnable application core shared by the CLI commands.
package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/asafgelber/folio/internal/broker"
	"github.com/asafgelber/folio/internal/clients/yahoo"
	"github.com/asafgelber/folio/internal/common"
	"github.com/asafgelber/folio/internal/interfaces"
	"github.com/asafgelber/folio/internal/services/portfolio"
	"github.com/asafgelber/folio/internal/services/price"
	"github.com/asafgelber/folio/internal/services/validate"
	"github.com/asafgelber/folio/internal/storage/pricefs"
)

// App holds all initialized services and clients.
type App struct {
	Config       *common.Config
	Logger       *common.Logger
	Classifier   broker.Classifier
	Builder      *portfolio.Builder
	Validator    *validate.Validator
	QuoteClient  interfaces.QuoteClient
	PriceService *price.Service
	PriceStore   interfaces.PriceStore
}

// NewApp loads configuration and initializes the full service graph.
// configPath may be empty, in which case FOLIO_CONFIG and then the default
// locations are tried.
func NewApp(configPath string) (*App, error) {
	if configPath == "" {
		configPath = os.Getenv("FOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = "folio.toml"
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = filepath.Join("config", "folio.toml")
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)

	classifier, err := broker.Get(config.Broker)
	if err != nil {
		return nil, err
	}

	store, err := pricefs.NewStore(logger, config.Storage.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize price store: %w", err)
	}

	quoteClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
		yahoo.WithLogger(logger),
	)

	priceService := price.NewService(quoteClient, store, price.SettingsFromConfig(&config.Prices), logger)
	if err := priceService.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize price service: %w", err)
	}

	app := &App{
		Config:       config,
		Logger:       logger,
		Classifier:   classifier,
		Builder:      portfolio.NewBuilder(classifier, config.Builder.FailFast, logger),
		Validator:    validate.NewValidator(&config.Validator, logger),
		QuoteClient:  quoteClient,
		PriceService: priceService,
		PriceStore:   store,
	}

	logger.Info().
		Str("environment", config.Environment).
		Str("broker", classifier.Name()).
		Msg("folio initialized")

	return app, nil
}

// Close persists price state and releases resources.
func (a *App) Close() {
	if a.PriceService != nil {
		if err := a.PriceService.Cleanup(); err != nil {
			a.Logger.Error().Err(err).Msg("failed to persist price state")
		}
	}
	if a.PriceStore != nil {
		a.PriceStore.Close()
	}
}
