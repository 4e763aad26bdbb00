package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
)

// DefaultTickers is the built-in sample universe used when neither a ticker
// file nor the remote listing is available.
var DefaultTickers = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "META",
	"TSLA", "NVDA", "PYPL", "ADBE", "INTC",
}

// tickerRecord is one row of a ticker CSV file. Only the symbol column is
// consumed; exchange listing files carry many more.
type tickerRecord struct {
	Symbol string `csv:"Symbol"`
}

// LoadTickersFromCSV reads ticker symbols from a CSV file with a Symbol
// column header.
func LoadTickersFromCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ticker file: %w", err)
	}
	defer f.Close()

	var records []*tickerRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("failed to parse ticker file %s: %w", path, err)
	}

	tickers := make([]string, 0, len(records))
	for _, rec := range records {
		symbol := strings.ToUpper(strings.TrimSpace(rec.Symbol))
		if symbol != "" {
			tickers = append(tickers, symbol)
		}
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("ticker file %s contains no symbols", path)
	}

	return tickers, nil
}

// FetchTickerList downloads a newline-delimited exchange symbol list.
func FetchTickerList(ctx context.Context, url string) ([]string, error) {
	client := &http.Client{Timeout: 15 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ticker list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ticker list returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read ticker list: %w", err)
	}

	var tickers []string
	for _, line := range strings.Split(string(body), "\n") {
		symbol := strings.ToUpper(strings.TrimSpace(line))
		if symbol != "" {
			tickers = append(tickers, symbol)
		}
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("ticker list at %s is empty", url)
	}

	return tickers, nil
}

// ResolveTickers picks the ticker universe: an explicit CSV file wins and is
// fatal when unreadable, otherwise the remote listing is tried and the
// built-in sample list is the last resort.
func ResolveTickers(ctx context.Context, file, listURL string) ([]string, error) {
	if file != "" {
		return LoadTickersFromCSV(file)
	}

	if listURL != "" {
		tickers, err := FetchTickerList(ctx, listURL)
		if err == nil {
			return tickers, nil
		}
		log.Warn().Err(err).Msg("could not fetch ticker list, using built-in sample")
	}

	return DefaultTickers, nil
}
