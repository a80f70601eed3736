// Package metrics derives window KPIs from raw traffic counters.
//
// All derivations are pure float64 arithmetic. A division denominator
// that is zero or negative is replaced by 1 so that empty windows produce
// the raw numerator instead of NaN or Inf, which keeps downstream
// guardrail comparisons well defined.
package metrics

import (
	"github.com/OrtalNisim/PX-OMS/internal/models"
)

// SafeDiv divides num by den, substituting 1 when den is not positive
func SafeDiv(num, den float64) float64 {
	if den <= 0 {
		den = 1
	}
	return num / den
}

// Derive computes the KPI set for one performance window
func Derive(w models.PerformanceWindow) models.WindowMetrics {
	profit := w.Revenue - w.Cost

	return models.WindowMetrics{
		Profit: profit,
		// Per-1k figures: rate per impression scaled to the industry
		// per-mille convention. Example: $25 over 55000 imps = $0.4545 sRPM
		ProfitPer1K:  SafeDiv(profit, w.Impressions) * 1000,
		RevenuePer1K: SafeDiv(w.Revenue, w.Impressions) * 1000,
		CostPer1K:    SafeDiv(w.Cost, w.Impressions) * 1000,
		SRPM:         SafeDiv(w.Revenue, w.Impressions) * 1000,
		Impressions:  w.Impressions,
		Responses:    w.Responses,
		BidRate:      w.BidRate,
		Margin:       w.Margin,
		// Impressions delivered per supply response
		ImpressionRate: SafeDiv(w.Impressions, w.Responses),
	}
}
