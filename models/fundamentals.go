package models

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Metric is an optional float64. A metric reported as zero and a metric the
// provider never supplied are different things, so absence is tracked
// explicitly instead of through a zero value.
type Metric struct {
	Value float64
	Valid bool
}

// Some returns a present metric, rejecting NaN and infinities.
func Some(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Metric{}
	}
	return Metric{Value: v, Valid: true}
}

// None returns an absent metric.
func None() Metric {
	return Metric{}
}

// Ratio divides num by den, yielding an absent metric when either side is
// absent, the denominator is zero, or the result is not finite.
func Ratio(num, den Metric) Metric {
	if !num.Valid || !den.Valid || den.Value == 0 {
		return Metric{}
	}
	return Some(num.Value / den.Value)
}

// Scale multiplies a metric by a constant, preserving absence.
func (m Metric) Scale(factor float64) Metric {
	if !m.Valid {
		return Metric{}
	}
	return Some(m.Value * factor)
}

// MarshalCSV implements gocsv.TypeMarshaller. Absent metrics serialize as an
// empty cell, never as zero.
func (m Metric) MarshalCSV() (string, error) {
	if !m.Valid {
		return "", nil
	}
	return strconv.FormatFloat(m.Value, 'f', 2, 64), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (m *Metric) UnmarshalCSV(s string) error {
	if s == "" {
		*m = Metric{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid metric value %q: %w", s, err)
	}
	*m = Some(v)
	return nil
}

// String renders the metric for display, using "--" for absent values.
func (m Metric) String() string {
	if !m.Valid {
		return "--"
	}
	return strconv.FormatFloat(m.Value, 'f', 2, 64)
}

// CompanyFundamentals represents the raw per-company fields supplied by the
// market-data provider. Any numeric field may be absent; downstream code must
// tolerate every combination.
type CompanyFundamentals struct {
	Ticker            string    `json:"ticker"`
	ShortName         string    `json:"short_name"`
	Price             Metric    `json:"price"`
	TrailingEPS       Metric    `json:"trailing_eps"`
	NetIncome         Metric    `json:"net_income"`
	BookValuePerShare Metric    `json:"book_value_per_share"`
	Revenue           Metric    `json:"revenue"`
	EarningsGrowth    Metric    `json:"earnings_growth"` // fractional: 0.20 means 20%
	TotalDebt         Metric    `json:"total_debt"`
	TotalEquity       Metric    `json:"total_equity"`
	FreeCashFlow      Metric    `json:"free_cash_flow"`
	MarketCap         Metric    `json:"market_cap"`
	FetchTime         time.Time `json:"fetch_time"`
}

// RatioSet holds the six valuation ratios derived for one company.
type RatioSet struct {
	PE       Metric `json:"pe"`
	PB       Metric `json:"pb"`
	PS       Metric `json:"ps"`
	PEG      Metric `json:"peg"`
	DE       Metric `json:"de"`
	FCFYield Metric `json:"fcf_yield"` // percentage: 8.0 means 8%
}

// Tier is the per-ratio verdict. For FCF Yield the direction is inverted
// (high yield is the favorable side) but the tier names are shared.
type Tier string

const (
	TierCheap     Tier = "Cheap"
	TierFair      Tier = "Fair"
	TierExpensive Tier = "Expensive"
)

// Assessment is the aggregated per-ticker verdict.
type Assessment string

const (
	AssessmentUndervalued Assessment = "Undervalued"
	AssessmentNeutral     Assessment = "Neutral"
	AssessmentOvervalued  Assessment = "Overvalued"
)

// ScanRow is one line of the output table. Rows are created once per
// successfully processed ticker and never mutated afterward.
type ScanRow struct {
	Ticker     string     `csv:"Ticker" json:"ticker"`
	Name       string     `csv:"Name" json:"name"`
	Assessment Assessment `csv:"Assessment" json:"assessment"`
	PE         Metric     `csv:"P/E" json:"pe"`
	PB         Metric     `csv:"P/B" json:"pb"`
	PS         Metric     `csv:"P/S" json:"ps"`
	PEG        Metric     `csv:"PEG" json:"peg"`
	DE         Metric     `csv:"D/E" json:"de"`
	FCFYield   Metric     `csv:"FCF Yield" json:"fcf_yield"`
}
