package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quoteSummaryBody = `{
  "quoteSummary": {
    "result": [{
      "price": {
        "shortName": "Acme Corp",
        "symbol": "ACME",
        "regularMarketPrice": {"raw": 100.0}
      },
      "summaryDetail": {
        "marketCap": {"raw": 5000000000}
      },
      "defaultKeyStatistics": {
        "trailingEps": {"raw": 5.0},
        "bookValue": {"raw": 40.0},
        "sharesOutstanding": {"raw": 50000000}
      },
      "financialData": {
        "totalDebt": {"raw": 1000000000},
        "totalRevenue": {"raw": 2000000000},
        "freeCashflow": {"raw": 400000000},
        "earningsGrowth": {"raw": 0.2}
      }
    }],
    "error": null
  }
}`

func newTestFetcher(baseURL, scrapeURL string) *YahooFetcher {
	return NewYahooFetcher(YahooFetcherOptions{
		RequestsPerSecond: 1000,
		BaseURL:           baseURL,
		ScrapeURL:         scrapeURL,
	})
}

func TestYahooFetcher_FetchFundamentals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v10/finance/quoteSummary/ACME")
		assert.Contains(t, r.URL.RawQuery, "modules=")
		fmt.Fprint(w, quoteSummaryBody)
	}))
	defer srv.Close()

	yf := newTestFetcher(srv.URL, srv.URL)

	f, err := yf.FetchFundamentals(context.Background(), "ACME")
	require.NoError(t, err)

	assert.Equal(t, "ACME", f.Ticker)
	assert.Equal(t, "Acme Corp", f.ShortName)
	assert.InDelta(t, 100.0, f.Price.Value, 1e-9)
	assert.InDelta(t, 5.0, f.TrailingEPS.Value, 1e-9)
	assert.InDelta(t, 5e9, f.MarketCap.Value, 1e-3)
	assert.InDelta(t, 0.2, f.EarningsGrowth.Value, 1e-9)
	// Total equity reconstructed from book value x shares outstanding.
	require.True(t, f.TotalEquity.Valid)
	assert.InDelta(t, 2e9, f.TotalEquity.Value, 1e-3)
	// Net income was not reported; it must stay absent, not zero.
	assert.False(t, f.NetIncome.Valid)
}

func TestYahooFetcher_MissingFieldsStayAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteSummary":{"result":[{"price":{"shortName":"Bare Inc","regularMarketPrice":{"raw":10}}}],"error":null}}`)
	}))
	defer srv.Close()

	yf := newTestFetcher(srv.URL, srv.URL)

	f, err := yf.FetchFundamentals(context.Background(), "BARE")
	require.NoError(t, err)

	assert.True(t, f.Price.Valid)
	assert.False(t, f.TrailingEPS.Valid)
	assert.False(t, f.Revenue.Valid)
	assert.False(t, f.TotalEquity.Valid)
	assert.False(t, f.MarketCap.Valid)
}

func TestYahooFetcher_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteSummary":{"result":[],"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	defer srv.Close()

	yf := newTestFetcher(srv.URL, srv.URL)

	_, err := yf.FetchFundamentals(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestYahooFetcher_ScrapeFallback(t *testing.T) {
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer apiSrv.Close()

	scrapeSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/quote/ACME/key-statistics")
		fmt.Fprint(w, `<html><body>
			<h1>Acme Corp (ACME)</h1>
			<table>
				<tr><td>Market Cap</td><td>5.00B</td></tr>
				<tr><td>Diluted EPS (ttm)</td><td>5.00</td></tr>
				<tr><td>Book Value Per Share (mrq)</td><td>40.00</td></tr>
				<tr><td>Revenue (ttm)</td><td>2.00B</td></tr>
				<tr><td>Total Debt (mrq)</td><td>1.00B</td></tr>
				<tr><td>Levered Free Cash Flow (ttm)</td><td>400.00M</td></tr>
			</table>
		</body></html>`)
	}))
	defer scrapeSrv.Close()

	yf := newTestFetcher(apiSrv.URL, scrapeSrv.URL)

	f, err := yf.FetchFundamentals(context.Background(), "ACME")
	require.NoError(t, err)

	assert.InDelta(t, 5e9, f.MarketCap.Value, 1e-3)
	assert.InDelta(t, 5.0, f.TrailingEPS.Value, 1e-9)
	assert.InDelta(t, 40.0, f.BookValuePerShare.Value, 1e-9)
	assert.InDelta(t, 2e9, f.Revenue.Value, 1e-3)
	assert.InDelta(t, 1e9, f.TotalDebt.Value, 1e-3)
	assert.InDelta(t, 4e8, f.FreeCashFlow.Value, 1e-3)
	// The scrape page has no price; fundamentals stay partial.
	assert.False(t, f.Price.Valid)
}

func TestYahooFetcher_CircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	yf := newTestFetcher(srv.URL, srv.URL)

	// Each fetch makes two attempts (API + scrape). After five consecutive
	// HTTP failures the breaker opens and later fetches fail fast.
	for i := 0; i < 10; i++ {
		_, err := yf.FetchFundamentals(context.Background(), "DOWN")
		require.Error(t, err)
	}
	assert.LessOrEqual(t, hits, 5)
}

func TestParseAbbreviatedNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"2.5T", 2.5e12, false},
		{"150B", 1.5e11, false},
		{"1.2M", 1.2e6, false},
		{"512k", 512000, false},
		{"1,234.56", 1234.56, false},
		{"$99.50", 99.5, false},
		{"8.10%", 8.1, false},
		{"(12.3)", -12.3, false},
		{"N/A", 0, true},
		{"--", 0, true},
		{"", 0, true},
		{"garbage", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAbbreviatedNumber(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestYahooFetcher_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, quoteSummaryBody)
	}))
	defer srv.Close()

	yf := newTestFetcher(srv.URL, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := yf.FetchFundamentals(ctx, "ACME")
	assert.Error(t, err)
}
