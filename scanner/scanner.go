package scanner

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"valuation-scanner/models"
	"valuation-scanner/utils"
	"valuation-scanner/valuation"
)

// Fetcher supplies raw fundamentals for a single ticker. services.YahooFetcher
// is the production implementation; tests substitute fakes.
type Fetcher interface {
	FetchFundamentals(ctx context.Context, ticker string) (*models.CompanyFundamentals, error)
}

// ProgressFunc is called after each ticker finishes, successfully or not.
type ProgressFunc func(done, total int, ticker string)

// Scanner runs the extract-classify pipeline over a ticker universe.
type Scanner struct {
	fetcher  Fetcher
	workers  int
	progress ProgressFunc
}

// New creates a scanner. workers <= 1 selects the sequential reference
// behavior; higher values fetch in parallel through a bounded worker pool.
func New(fetcher Fetcher, workers int) *Scanner {
	if workers < 1 {
		workers = 1
	}
	return &Scanner{fetcher: fetcher, workers: workers}
}

// OnProgress registers a progress callback.
func (s *Scanner) OnProgress(fn ProgressFunc) {
	s.progress = fn
}

// Scan processes tickers in input order. A ticker whose fetch fails is
// skipped with a warning and contributes no row; the output is always the
// surviving tickers in their original relative order, in both sequential and
// parallel modes. Cancelling the context stops the scan between tickers and
// returns the rows completed so far.
func (s *Scanner) Scan(ctx context.Context, tickers []string) []models.ScanRow {
	// Index-addressed slots keep the input order even when fetches
	// complete out of order.
	slots := make([]*models.ScanRow, len(tickers))

	if s.workers == 1 {
		for i, ticker := range tickers {
			if ctx.Err() != nil {
				break
			}
			slots[i] = s.process(ctx, ticker)
			s.report(i+1, len(tickers), ticker)
		}
		return compact(slots)
	}

	pool := utils.NewWorkerPool(s.workers)
	defer pool.Close()

	var wg sync.WaitGroup
	var mu sync.Mutex
	done := 0

	for i, ticker := range tickers {
		if ctx.Err() != nil {
			break
		}
		i, ticker := i, ticker
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			slots[i] = s.process(ctx, ticker)

			mu.Lock()
			done++
			n := done
			mu.Unlock()
			s.report(n, len(tickers), ticker)
		})
	}
	wg.Wait()

	return compact(slots)
}

// process fetches, extracts, and classifies one ticker. A nil result means
// the ticker is skipped.
func (s *Scanner) process(ctx context.Context, ticker string) *models.ScanRow {
	fundamentals, err := s.fetcher.FetchFundamentals(ctx, ticker)
	if err != nil {
		log.Warn().Str("ticker", ticker).Err(err).Msg("skipping ticker")
		return nil
	}

	ratios := valuation.Extract(fundamentals)
	_, assessment := valuation.Classify(ratios)

	return &models.ScanRow{
		Ticker:     fundamentals.Ticker,
		Name:       fundamentals.ShortName,
		Assessment: assessment,
		PE:         ratios.PE,
		PB:         ratios.PB,
		PS:         ratios.PS,
		PEG:        ratios.PEG,
		DE:         ratios.DE,
		FCFYield:   ratios.FCFYield,
	}
}

func (s *Scanner) report(done, total int, ticker string) {
	if s.progress != nil {
		s.progress(done, total, ticker)
	}
}

func compact(slots []*models.ScanRow) []models.ScanRow {
	rows := make([]models.ScanRow, 0, len(slots))
	for _, row := range slots {
		if row != nil {
			rows = append(rows, *row)
		}
	}
	return rows
}
