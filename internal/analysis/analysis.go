// Package analysis evaluates multi-arm margin test exports: per-arm KPIs,
// winner selection under an sRPM guardrail, data sufficiency checks, and
// the margin bracket for the next test round.
//
// KPIs are derived with the same arithmetic as the live decision path, so
// a batch replay of an export and the hourly loop agree bit for bit.
package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/OrtalNisim/PX-OMS/internal/metrics"
	"github.com/OrtalNisim/PX-OMS/internal/models"
)

// Default thresholds for the enough-data and guardrail checks.
const (
	DefaultMinImpressionsPerArm = 50000
	DefaultMinProfitPerArm      = 50.0
	DefaultMaxImprDropPct       = 10.0
	DefaultMaxSRPMDropPct       = 10.0
	DefaultMinSRPMPctOfControl  = 90.0
)

// ArmMetrics holds the derived KPIs for one test arm together with the
// reporting columns that pass through from the export.
type ArmMetrics struct {
	Name           string // Demand name, "<unnamed>" when blank
	DemandID       string
	WinRatePct     float64
	OurBidfloor    float64
	SupplyBidfloor float64
	DemandECPM     float64

	models.WindowMetrics
}

// ComputeMetrics derives the KPI set for every row of an export.
func ComputeMetrics(rows []Row) []ArmMetrics {
	out := make([]ArmMetrics, 0, len(rows))
	for _, r := range rows {
		name := r.DemandName
		if name == "" {
			name = "<unnamed>"
		}
		w := models.PerformanceWindow{
			Margin:      r.MarginPct,
			Impressions: r.Impressions,
			Revenue:     r.Revenue,
			Cost:        r.Cost,
			BidRate:     r.BidRatePct,
			Responses:   r.Responses,
		}
		out = append(out, ArmMetrics{
			Name:           name,
			DemandID:       r.DemandID,
			WinRatePct:     r.WinRatePct,
			OurBidfloor:    r.OurBidfloor,
			SupplyBidfloor: r.SupplyBidfloor,
			DemandECPM:     r.DemandECPM,
			WindowMetrics:  metrics.Derive(w),
		})
	}
	return out
}

// SortByProfitPer1K returns the arms ordered by profit per 1k
// impressions, best first.
func SortByProfitPer1K(arms []ArmMetrics) []ArmMetrics {
	out := make([]ArmMetrics, len(arms))
	copy(out, arms)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ProfitPer1K > out[j].ProfitPer1K
	})
	return out
}

// PickWinner returns the arm with the highest profit per 1k impressions,
// or nil when arms is empty. Ties keep the earliest arm.
func PickWinner(arms []ArmMetrics) *ArmMetrics {
	if len(arms) == 0 {
		return nil
	}
	winner := arms[0]
	for _, m := range arms[1:] {
		if m.ProfitPer1K > winner.ProfitPer1K {
			winner = m
		}
	}
	return &winner
}

// FindControl returns the first arm whose name contains the given
// substring, case insensitive. Nil when the substring is empty or nothing
// matches.
func FindControl(arms []ArmMetrics, contains string) *ArmMetrics {
	if contains == "" {
		return nil
	}
	needle := strings.ToLower(contains)
	for _, m := range arms {
		if strings.Contains(strings.ToLower(m.Name), needle) {
			control := m
			return &control
		}
	}
	return nil
}

// PickRecommendedWinner returns the highest profit/1k arm among those
// whose sRPM holds at least minSRPMPctOfControl percent of the control
// arm's sRPM. Nil means no arm qualifies and the control should be kept.
// Without a usable control the raw winner is returned.
func PickRecommendedWinner(arms []ArmMetrics, control *ArmMetrics, minSRPMPctOfControl float64) *ArmMetrics {
	if control == nil || control.SRPM <= 0 {
		return PickWinner(arms)
	}
	threshold := control.SRPM * (minSRPMPctOfControl / 100.0)
	var qualified []ArmMetrics
	for _, m := range arms {
		if m.SRPM >= threshold {
			qualified = append(qualified, m)
		}
	}
	if len(qualified) == 0 {
		return nil
	}
	return PickWinner(qualified)
}

// AssessEnoughData checks every arm against minimum impression and profit
// thresholds. Returns false with one reason per failing check.
func AssessEnoughData(arms []ArmMetrics, minImpressions int, minProfit float64) (bool, []string) {
	ok := true
	var reasons []string
	for _, m := range arms {
		if m.Impressions < float64(minImpressions) {
			ok = false
			reasons = append(reasons, fmt.Sprintf("'%s': impressions %d < min %d", m.Name, int(m.Impressions), minImpressions))
		}
		if m.Profit < minProfit {
			ok = false
			reasons = append(reasons, fmt.Sprintf("'%s': profit $%.4f < min $%.4f", m.Name, m.Profit, minProfit))
		}
	}
	return ok, reasons
}

// AssessGuardrails compares every arm against the control and returns one
// warning per breached drop limit. The control itself is skipped, as are
// comparisons the control has no data for.
func AssessGuardrails(arms []ArmMetrics, control ArmMetrics, maxImprDropPct, maxSRPMDropPct float64) []string {
	var warnings []string
	for _, m := range arms {
		if m.Name == control.Name {
			continue
		}
		if control.Impressions > 0 {
			drop := (control.Impressions - m.Impressions) / control.Impressions * 100.0
			if drop > maxImprDropPct {
				warnings = append(warnings, fmt.Sprintf("'%s' impressions drop %.1f%% vs control (>%.1f%%)", m.Name, drop, maxImprDropPct))
			}
		}
		if control.SRPM > 0 {
			drop := (control.SRPM - m.SRPM) / control.SRPM * 100.0
			if drop > maxSRPMDropPct {
				warnings = append(warnings, fmt.Sprintf("'%s' sRPM drop %.1f%% vs control (>%.1f%%)", m.Name, drop, maxSRPMDropPct))
			}
		}
	}
	return warnings
}
