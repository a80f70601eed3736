package analysis

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// ArmDelta is the profit change between two margin-adjacent arms.
type ArmDelta struct {
	FromName       string
	ToName         string
	FromMarginPct  float64
	ToMarginPct    float64
	MarginGap      float64 // percent points
	ProfitGap      float64 // profit per 1k impressions
	ProfitPerPoint float64 // profit gap per margin point, 0 when arms share a margin
}

// Plan is the cross-arm trend summary and the margin ladder for the next
// test round.
type Plan struct {
	ArmsByMargin       []ArmMetrics     // ascending margin
	Deltas             []ArmDelta       // between margin-adjacent arms
	ProfitStillGrowing bool             // every step up the ladder earned more profit
	AvgMarginGapPct    float64          // average spacing of the current ladder
	SRPMRatioPct       float64          // highest-margin arm sRPM vs control
	Bracket            []float64        // next-round margins, ascending
	Recommendations    []Recommendation // one per arm, ascending margin
}

// Recommendation maps one demand endpoint to its next-round margin.
type Recommendation struct {
	DemandID             string  `json:"demand_id"`
	DemandName           string  `json:"demand_name"`
	RecommendedMarginPct float64 `json:"recommended_margin_pct"`
}

// PlanNextRound builds the margin ladder for the next test round. The new
// ladder keeps the current average gap and shifts up so the highest margin
// tested gets exactly one rung above it (below / at / above the winner in
// a three-arm test). Returns nil when arms is empty.
func PlanNextRound(arms []ArmMetrics, control *ArmMetrics) *Plan {
	if len(arms) == 0 {
		return nil
	}

	byMargin := make([]ArmMetrics, len(arms))
	copy(byMargin, arms)
	sort.SliceStable(byMargin, func(i, j int) bool {
		return byMargin[i].Margin < byMargin[j].Margin
	})

	deltas := make([]ArmDelta, 0, len(byMargin)-1)
	for i := 1; i < len(byMargin); i++ {
		prev, curr := byMargin[i-1], byMargin[i]
		gap := curr.Margin - prev.Margin
		profitGap := curr.ProfitPer1K - prev.ProfitPer1K
		var perPoint float64
		if gap > 0 {
			perPoint = profitGap / gap
		}
		deltas = append(deltas, ArmDelta{
			FromName:       prev.Name,
			ToName:         curr.Name,
			FromMarginPct:  prev.Margin,
			ToMarginPct:    curr.Margin,
			MarginGap:      gap,
			ProfitGap:      profitGap,
			ProfitPerPoint: perPoint,
		})
	}

	growing := len(deltas) > 0
	for _, d := range deltas {
		if d.ProfitPerPoint <= 0 {
			growing = false
			break
		}
	}

	lowest := byMargin[0]
	best := byMargin[len(byMargin)-1]
	avgGap := (best.Margin - lowest.Margin) / math.Max(float64(len(byMargin)-1), 1)

	controlSRPM := lowest.SRPM
	if control != nil {
		controlSRPM = control.SRPM
	}
	ratio := 100.0
	if controlSRPM > 0 {
		ratio = best.SRPM / controlSRPM * 100.0
	}

	bracket := make([]float64, 0, len(byMargin))
	recs := make([]Recommendation, 0, len(byMargin))
	for i, m := range byMargin {
		rungsAboveBest := i - (len(byMargin) - 2)
		margin := roundMarginPct(best.Margin + float64(rungsAboveBest)*avgGap)
		bracket = append(bracket, margin)
		recs = append(recs, Recommendation{
			DemandID:             m.DemandID,
			DemandName:           m.Name,
			RecommendedMarginPct: margin,
		})
	}

	return &Plan{
		ArmsByMargin:       byMargin,
		Deltas:             deltas,
		ProfitStillGrowing: growing,
		AvgMarginGapPct:    avgGap,
		SRPMRatioPct:       ratio,
		Bracket:            bracket,
		Recommendations:    recs,
	}
}

// roundMarginPct rounds a margin to a whole percent with halves to even,
// so 36.5 becomes 36 and 37.5 becomes 38.
func roundMarginPct(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).RoundBank(0).Float64()
	return f
}
