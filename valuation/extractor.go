package valuation

import (
	"valuation-scanner/models"
)

// Extract derives the six valuation ratios from raw company fundamentals.
// It is a pure function: missing inputs and zero denominators produce absent
// ratios, never errors, and absence is propagated rather than zero-filled.
func Extract(f *models.CompanyFundamentals) models.RatioSet {
	pe := models.Ratio(f.Price, f.TrailingEPS)
	if !pe.Valid {
		// Fall back to the aggregate form when per-share earnings are missing.
		pe = models.Ratio(f.MarketCap, f.NetIncome)
	}

	return models.RatioSet{
		PE: pe,
		PB: models.Ratio(f.Price, f.BookValuePerShare),
		PS: models.Ratio(f.MarketCap, f.Revenue),
		// PEG divides P/E by the growth rate expressed as a percentage
		// number (0.20 growth -> 20), matching the classifier thresholds.
		PEG:      models.Ratio(pe, f.EarningsGrowth.Scale(100)),
		DE:       models.Ratio(f.TotalDebt, f.TotalEquity),
		FCFYield: models.Ratio(f.FreeCashFlow, f.MarketCap).Scale(100),
	}
}
