package valuation

import (
	"valuation-scanner/models"
)

// Ratio names used as keys in the tier map and as display labels.
const (
	RatioPE       = "P/E"
	RatioPB       = "P/B"
	RatioPS       = "P/S"
	RatioPEG      = "PEG"
	RatioDE       = "D/E"
	RatioFCFYield = "FCF Yield"
)

// Thresholds define the tier boundaries for one ratio. Values strictly below
// Low are Cheap, strictly above High are Expensive, and the closed interval
// [Low, High] is Fair. When Inverted is set (FCF Yield) the favorable
// direction flips: strictly above High is Cheap, strictly below Low is
// Expensive.
type Thresholds struct {
	Low      float64
	High     float64
	Inverted bool
}

// DefaultThresholds holds the fixed per-ratio tier boundaries.
var DefaultThresholds = map[string]Thresholds{
	RatioPE:       {Low: 15, High: 25},
	RatioPB:       {Low: 1, High: 3},
	RatioPS:       {Low: 1, High: 4},
	RatioPEG:      {Low: 1, High: 2},
	RatioDE:       {Low: 0.5, High: 2},
	RatioFCFYield: {Low: 4, High: 8, Inverted: true},
}

// Tier places a single value into Cheap, Fair, or Expensive.
func (t Thresholds) Tier(v float64) models.Tier {
	if t.Inverted {
		switch {
		case v > t.High:
			return models.TierCheap
		case v < t.Low:
			return models.TierExpensive
		}
		return models.TierFair
	}
	switch {
	case v < t.Low:
		return models.TierCheap
	case v > t.High:
		return models.TierExpensive
	}
	return models.TierFair
}

// Classify maps each present ratio to a tier and aggregates the tier votes
// into an overall assessment by strict majority: more Cheap votes than
// Expensive votes means Undervalued, more Expensive means Overvalued, and a
// tie (including the all-absent case) is Neutral. Absent ratios contribute
// no vote and do not appear in the tier map.
func Classify(r models.RatioSet) (map[string]models.Tier, models.Assessment) {
	ratios := []struct {
		name   string
		metric models.Metric
	}{
		{RatioPE, r.PE},
		{RatioPB, r.PB},
		{RatioPS, r.PS},
		{RatioPEG, r.PEG},
		{RatioDE, r.DE},
		{RatioFCFYield, r.FCFYield},
	}

	tiers := make(map[string]models.Tier)
	var cheap, expensive int
	for _, ratio := range ratios {
		if !ratio.metric.Valid {
			continue
		}
		tier := DefaultThresholds[ratio.name].Tier(ratio.metric.Value)
		tiers[ratio.name] = tier
		switch tier {
		case models.TierCheap:
			cheap++
		case models.TierExpensive:
			expensive++
		}
	}

	switch {
	case cheap > expensive:
		return tiers, models.AssessmentUndervalued
	case expensive > cheap:
		return tiers, models.AssessmentOvervalued
	}
	return tiers, models.AssessmentNeutral
}
