package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"valuation-scanner/config"
)

var (
	flagConfig  string
	flagTickers string
	flagOutput  string
	flagWorkers int
	flagLimit   int
	flagTest    bool
	flagNoColor bool
	flagQuiet   bool
)

// rootCmd scans the ticker universe and writes the valuation CSV. There are
// no required arguments; a bare invocation performs a full scan.
var rootCmd = &cobra.Command{
	Use:   "valuation-scanner",
	Short: "NASDAQ stock valuation scanner",
	Long: `valuation-scanner fetches fundamental data for exchange-listed stocks,
computes six valuation ratios (P/E, P/B, P/S, PEG, D/E, FCF Yield), classifies
each stock as Undervalued, Neutral, or Overvalued by majority vote over fixed
per-ratio thresholds, and writes the results to a CSV file.

Individual tickers that fail to fetch are skipped; the scan always continues.

Examples:
  valuation-scanner                         # full scan, CSV next to the binary
  valuation-scanner --test                  # small built-in universe
  valuation-scanner --tickers nasdaq.csv --workers 4
  valuation-scanner --output scan.csv --limit 100`,
	RunE:          runScan,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "Path to YAML configuration file")
	rootCmd.Flags().StringVar(&flagTickers, "tickers", "", "Path to ticker CSV file (Symbol column)")
	rootCmd.Flags().StringVar(&flagOutput, "output", "", "Output CSV file path")
	rootCmd.Flags().IntVar(&flagWorkers, "workers", 0, "Number of parallel fetch workers (default 1, sequential)")
	rootCmd.Flags().IntVar(&flagLimit, "limit", 0, "Maximum number of tickers to scan (0 = no limit)")
	rootCmd.Flags().BoolVar(&flagTest, "test", false, "Scan only the small built-in sample universe")
	rootCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "Disable colored terminal output")
	rootCmd.Flags().BoolVar(&flagQuiet, "quiet", false, "Only log errors")
}

func runScan(cmd *cobra.Command, args []string) error {
	if flagQuiet {
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApplication(cfg)
	return app.Run(ctx)
}

// loadConfig builds the effective configuration from defaults, the optional
// config file, and command-line overrides, in that order.
func loadConfig() (*config.Config, error) {
	cfg := config.NewDefaultConfig()
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if flagTickers != "" {
		cfg.Universe.TickerFile = flagTickers
	}
	if flagTest {
		cfg.Universe.TickerFile = ""
		cfg.Universe.ListURL = ""
	}
	if flagLimit > 0 {
		cfg.Universe.MaxTickers = flagLimit
	}
	if flagOutput != "" {
		cfg.Output.File = flagOutput
	}
	if flagWorkers > 0 {
		cfg.Processing.MaxWorkers = flagWorkers
	}
	if flagNoColor {
		cfg.Output.ShowColors = false
	}
	if flagQuiet {
		cfg.Output.ShowProgress = false
	}

	return cfg, nil
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("scan failed")
		os.Exit(1)
	}
}
