package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"valuation-scanner/models"
)

// ErrNotFound indicates the provider has no data for the requested ticker.
var ErrNotFound = errors.New("ticker not found")

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// quoteSummaryResponse models the Yahoo Finance v10 quoteSummary payload.
// Numeric fields arrive as {"raw": ..., "fmt": ...} objects; a missing field
// simply omits the object, which rawValue maps to an absent Metric.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				ShortName          string   `json:"shortName"`
				Symbol             string   `json:"symbol"`
				RegularMarketPrice rawValue `json:"regularMarketPrice"`
			} `json:"price"`
			SummaryDetail struct {
				MarketCap rawValue `json:"marketCap"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics struct {
				TrailingEps       rawValue `json:"trailingEps"`
				BookValue         rawValue `json:"bookValue"`
				SharesOutstanding rawValue `json:"sharesOutstanding"`
			} `json:"defaultKeyStatistics"`
			FinancialData struct {
				TotalDebt      rawValue `json:"totalDebt"`
				TotalRevenue   rawValue `json:"totalRevenue"`
				FreeCashflow   rawValue `json:"freeCashflow"`
				EarningsGrowth rawValue `json:"earningsGrowth"`
				NetIncome      rawValue `json:"netIncomeToCommon"`
			} `json:"financialData"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// rawValue is one Yahoo {"raw": n} wrapper.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

// Metric converts the wrapper to an optional metric.
func (v rawValue) Metric() models.Metric {
	if v.Raw == nil {
		return models.None()
	}
	return models.Some(*v.Raw)
}

// YahooFetcher fetches company fundamentals from Yahoo Finance. The JSON
// quoteSummary API is the primary source; when it fails, the key-statistics
// page is scraped as a partial fallback. All requests pass through a shared
// rate limiter and a circuit breaker so a provider outage fails fast instead
// of stalling the whole scan.
type YahooFetcher struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	baseURL    string
	scrapeURL  string
}

// YahooFetcherOptions configure a YahooFetcher.
type YahooFetcherOptions struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	BaseURL           string // override for tests
	ScrapeURL         string // override for tests
}

// NewYahooFetcher creates a fetcher with sane defaults for any zero option.
func NewYahooFetcher(opts YahooFetcherOptions) *YahooFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 2
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://query1.finance.yahoo.com"
	}
	if opts.ScrapeURL == "" {
		opts.ScrapeURL = "https://finance.yahoo.com"
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "yahoo-finance",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("provider circuit breaker state changed")
		},
	})

	return &YahooFetcher{
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		breaker:    breaker,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		scrapeURL:  strings.TrimRight(opts.ScrapeURL, "/"),
	}
}

// FetchFundamentals fetches the raw fundamental fields for one ticker.
// Partial data is normal: absent fields come back as absent Metrics and the
// caller decides what can still be computed. An error means the ticker
// produced nothing usable and should be skipped.
func (yf *YahooFetcher) FetchFundamentals(ctx context.Context, ticker string) (*models.CompanyFundamentals, error) {
	f, err := yf.fetchQuoteSummary(ctx, ticker)
	if err == nil {
		return f, nil
	}
	if errors.Is(err, ErrNotFound) {
		return nil, err
	}

	log.Debug().Str("ticker", ticker).Err(err).Msg("quoteSummary failed, scraping key statistics")
	f, scrapeErr := yf.scrapeKeyStatistics(ctx, ticker)
	if scrapeErr != nil {
		return nil, fmt.Errorf("fetch %s: %w (scrape fallback: %v)", ticker, err, scrapeErr)
	}
	return f, nil
}

// fetchQuoteSummary reads the quoteSummary API and maps it onto fundamentals.
func (yf *YahooFetcher) fetchQuoteSummary(ctx context.Context, ticker string) (*models.CompanyFundamentals, error) {
	url := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=price,summaryDetail,defaultKeyStatistics,financialData",
		yf.baseURL, ticker)

	body, err := yf.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var resp quoteSummaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse quoteSummary response: %w", err)
	}

	if resp.QuoteSummary.Error != nil {
		if resp.QuoteSummary.Error.Code == "Not Found" {
			return nil, fmt.Errorf("%s: %w", ticker, ErrNotFound)
		}
		return nil, fmt.Errorf("provider error for %s: %s", ticker, resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, ErrNotFound)
	}

	result := resp.QuoteSummary.Result[0]
	f := &models.CompanyFundamentals{
		Ticker:            ticker,
		ShortName:         result.Price.ShortName,
		Price:             result.Price.RegularMarketPrice.Metric(),
		TrailingEPS:       result.DefaultKeyStatistics.TrailingEps.Metric(),
		NetIncome:         result.FinancialData.NetIncome.Metric(),
		BookValuePerShare: result.DefaultKeyStatistics.BookValue.Metric(),
		Revenue:           result.FinancialData.TotalRevenue.Metric(),
		EarningsGrowth:    result.FinancialData.EarningsGrowth.Metric(),
		TotalDebt:         result.FinancialData.TotalDebt.Metric(),
		FreeCashFlow:      result.FinancialData.FreeCashflow.Metric(),
		MarketCap:         result.SummaryDetail.MarketCap.Metric(),
		FetchTime:         time.Now(),
	}
	if f.ShortName == "" {
		f.ShortName = ticker
	}

	// Yahoo reports book value per share but not total equity; reconstruct
	// it from shares outstanding so the D/E ratio can be computed.
	shares := result.DefaultKeyStatistics.SharesOutstanding.Metric()
	if f.BookValuePerShare.Valid && shares.Valid {
		f.TotalEquity = models.Some(f.BookValuePerShare.Value * shares.Value)
	}

	return f, nil
}

// scrapeKeyStatistics extracts whatever fundamentals the key-statistics HTML
// page exposes. The result is usually partial; missing rows stay absent.
func (yf *YahooFetcher) scrapeKeyStatistics(ctx context.Context, ticker string) (*models.CompanyFundamentals, error) {
	url := fmt.Sprintf("%s/quote/%s/key-statistics/", yf.scrapeURL, ticker)

	body, err := yf.get(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	f := &models.CompanyFundamentals{
		Ticker:    ticker,
		ShortName: ticker,
		FetchTime: time.Now(),
	}

	found := false
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(row.Find("td").First().Text()))
		value := strings.TrimSpace(row.Find("td").Last().Text())

		switch {
		case strings.Contains(label, "diluted eps"):
			if v, err := parseAbbreviatedNumber(value); err == nil {
				f.TrailingEPS = models.Some(v)
				found = true
			}
		case strings.Contains(label, "book value per share"):
			if v, err := parseAbbreviatedNumber(value); err == nil {
				f.BookValuePerShare = models.Some(v)
				found = true
			}
		case strings.Contains(label, "market cap"):
			if v, err := parseAbbreviatedNumber(value); err == nil {
				f.MarketCap = models.Some(v)
				found = true
			}
		case strings.Contains(label, "revenue (ttm)"):
			if v, err := parseAbbreviatedNumber(value); err == nil {
				f.Revenue = models.Some(v)
				found = true
			}
		case strings.Contains(label, "total debt (mrq)"):
			if v, err := parseAbbreviatedNumber(value); err == nil {
				f.TotalDebt = models.Some(v)
				found = true
			}
		case strings.Contains(label, "levered free cash flow"):
			if v, err := parseAbbreviatedNumber(value); err == nil {
				f.FreeCashFlow = models.Some(v)
				found = true
			}
		}
	})

	if name := strings.TrimSpace(doc.Find("h1").First().Text()); name != "" {
		f.ShortName = name
	}

	if !found {
		return nil, fmt.Errorf("no usable statistics for %s", ticker)
	}
	return f, nil
}

// get performs one rate-limited, breaker-guarded GET and returns the body.
func (yf *YahooFetcher) get(ctx context.Context, url string) ([]byte, error) {
	if err := yf.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := yf.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", defaultUserAgent)
		req.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.8")

		resp, err := yf.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
		}

		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return nil, err
	}
	return body.([]byte), nil
}

// parseAbbreviatedNumber parses values like "1,234.5", "2.5T", "150B",
// "(12.3)" and "8.10%" the way Yahoo renders them in statistics tables.
func parseAbbreviatedNumber(value string) (float64, error) {
	cleaned := strings.NewReplacer(",", "", "$", "", "%", "").Replace(strings.TrimSpace(value))
	if cleaned == "" || cleaned == "N/A" || cleaned == "--" {
		return 0, fmt.Errorf("no value")
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = strings.TrimSuffix(strings.TrimPrefix(cleaned, "("), ")")
	}

	multiplier := 1.0
	switch {
	case strings.HasSuffix(cleaned, "T"):
		multiplier = 1e12
		cleaned = strings.TrimSuffix(cleaned, "T")
	case strings.HasSuffix(cleaned, "B"):
		multiplier = 1e9
		cleaned = strings.TrimSuffix(cleaned, "B")
	case strings.HasSuffix(cleaned, "M"):
		multiplier = 1e6
		cleaned = strings.TrimSuffix(cleaned, "M")
	case strings.HasSuffix(cleaned, "k"), strings.HasSuffix(cleaned, "K"):
		multiplier = 1e3
		cleaned = strings.TrimSuffix(strings.TrimSuffix(cleaned, "k"), "K")
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", value, err)
	}
	if negative {
		v = -v
	}
	return v * multiplier, nil
}
