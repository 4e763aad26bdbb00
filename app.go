package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"valuation-scanner/config"
	"valuation-scanner/scanner"
	"valuation-scanner/services"
	"valuation-scanner/utils"
)

// Application wires the ticker source, fetcher, scanner, and result sink.
type Application struct {
	config  *config.Config
	fetcher *services.YahooFetcher
}

// NewApplication creates a new application instance.
func NewApplication(cfg *config.Config) *Application {
	return &Application{
		config: cfg,
		fetcher: services.NewYahooFetcher(services.YahooFetcherOptions{
			Timeout:           time.Duration(cfg.Provider.RequestTimeoutSeconds) * time.Second,
			RequestsPerSecond: cfg.Provider.RequestsPerSecond,
			BaseURL:           cfg.Provider.BaseURL,
			ScrapeURL:         cfg.Provider.ScrapeURL,
		}),
	}
}

// Run executes one full scan: resolve the universe, process every ticker,
// write the CSV, and show a sample of the results. Per-ticker failures are
// skipped inside the scanner; only setup failures return an error.
func (app *Application) Run(ctx context.Context) error {
	tickers, err := services.ResolveTickers(ctx, app.config.Universe.TickerFile, app.config.Universe.ListURL)
	if err != nil {
		return fmt.Errorf("failed to load tickers: %w", err)
	}
	if limit := app.config.Universe.MaxTickers; limit > 0 && len(tickers) > limit {
		tickers = tickers[:limit]
	}

	log.Info().
		Int("tickers", len(tickers)).
		Int("workers", app.config.Processing.MaxWorkers).
		Msg("starting valuation scan")

	scan := scanner.New(app.fetcher, app.config.Processing.MaxWorkers)
	if app.config.Output.ShowProgress {
		scan.OnProgress(utils.ShowProgress)
	}

	rows := scan.Scan(ctx, tickers)
	if err := ctx.Err(); err != nil {
		log.Warn().Int("rows", len(rows)).Msg("scan interrupted, writing partial results")
	}

	if err := services.WriteResults(app.config.Output.File, rows); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	log.Info().
		Int("scanned", len(tickers)).
		Int("rows", len(rows)).
		Int("skipped", len(tickers)-len(rows)).
		Str("output", app.config.Output.File).
		Msg("scan complete")

	utils.DisplayResults(rows, app.config.Output.ShowColors, app.config.Output.SampleSize)
	return nil
}
