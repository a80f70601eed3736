package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
)

// Report is the batch analysis summary published after a run.
type Report struct {
	SourceFile      string           `json:"source_file"`
	HourUsed        int              `json:"hour_used"`
	Winner          string           `json:"winner"`
	Recommended     string           `json:"recommended"`
	Arms            []ReportArm      `json:"arms"`
	Recommendations []Recommendation `json:"recommendations"`
}

// ReportArm is one arm's KPI summary with money rounded to four decimal
// places.
type ReportArm struct {
	Name        string  `json:"name"`
	MarginPct   float64 `json:"margin_pct"`
	Impressions int     `json:"impressions"`
	Profit      float64 `json:"profit"`
	ProfitPer1K float64 `json:"profit_per_1k"`
	SRPM        float64 `json:"srpm"`
}

// BuildReport assembles the report from the analysis outputs. Arms are
// listed by profit per 1k impressions, best first. A nil recommended falls
// back to the control's name, then to "N/A".
func BuildReport(sourceFile string, hour int, arms []ArmMetrics, control, recommended *ArmMetrics, recs []Recommendation) *Report {
	r := &Report{
		SourceFile:      sourceFile,
		HourUsed:        hour,
		Recommended:     "N/A",
		Recommendations: recs,
	}
	if winner := PickWinner(arms); winner != nil {
		r.Winner = winner.Name
	}
	switch {
	case recommended != nil:
		r.Recommended = recommended.Name
	case control != nil:
		r.Recommended = control.Name
	}
	for _, m := range SortByProfitPer1K(arms) {
		r.Arms = append(r.Arms, ReportArm{
			Name:        m.Name,
			MarginPct:   m.Margin,
			Impressions: int(m.Impressions),
			Profit:      roundMoney(m.Profit),
			ProfitPer1K: roundMoney(m.ProfitPer1K),
			SRPM:        roundMoney(m.SRPM),
		})
	}
	return r
}

// WriteRecommendationsCSV writes the recommendations with a demand_id,
// demand_name, recommended_margin_pct header.
func WriteRecommendationsCSV(w io.Writer, recs []Recommendation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"demand_id", "demand_name", "recommended_margin_pct"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, rec := range recs {
		row := []string{rec.DemandID, rec.DemandName, strconv.FormatFloat(rec.RecommendedMarginPct, 'f', -1, 64)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// roundMoney rounds a dollar figure to four decimal places, halves to
// even.
func roundMoney(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).RoundBank(4).Float64()
	return f
}
