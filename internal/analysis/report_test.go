package analysis

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildReport tests the report shape for a full three-arm analysis
func TestBuildReport(t *testing.T) {
	low := testArm("low", 35, 55000, 25.0, 16.0)
	mid := testArm("mid", 40, 50000, 24.0, 12.0)
	high := testArm("high", 45, 40000, 14.0, 0.5)
	arms := []ArmMetrics{low, mid, high}
	recs := []Recommendation{
		{DemandID: "d-low", DemandName: "low", RecommendedMarginPct: 40},
		{DemandID: "d-mid", DemandName: "mid", RecommendedMarginPct: 45},
		{DemandID: "d-high", DemandName: "high", RecommendedMarginPct: 50},
	}

	report := BuildReport("export.csv", 14, arms, &low, &mid, recs)

	assert.Equal(t, "export.csv", report.SourceFile)
	assert.Equal(t, 14, report.HourUsed)
	assert.Equal(t, "high", report.Winner)
	assert.Equal(t, "mid", report.Recommended)
	assert.Equal(t, recs, report.Recommendations)

	require.Len(t, report.Arms, 3)
	assert.Equal(t, "high", report.Arms[0].Name)
	assert.Equal(t, "mid", report.Arms[1].Name)
	assert.Equal(t, "low", report.Arms[2].Name)
	assert.Equal(t, 45.0, report.Arms[0].MarginPct)
	assert.Equal(t, 40000, report.Arms[0].Impressions)
	assert.Equal(t, 13.5, report.Arms[0].Profit)
	assert.Equal(t, 0.3375, report.Arms[0].ProfitPer1K)
	assert.Equal(t, 0.35, report.Arms[0].SRPM)
}

// TestBuildReport_RoundsMoney tests four-decimal rounding of dollar figures
func TestBuildReport_RoundsMoney(t *testing.T) {
	arm := testArm("messy", 35, 55000, 25.123456, 16.0)

	report := BuildReport("export.csv", 14, []ArmMetrics{arm}, nil, nil, nil)

	require.Len(t, report.Arms, 1)
	assert.Equal(t, 9.1235, report.Arms[0].Profit)
	assert.Equal(t, 0.1659, report.Arms[0].ProfitPer1K)
	assert.Equal(t, 0.4568, report.Arms[0].SRPM)
}

// TestBuildReport_RecommendedFallbacks tests the control and N/A fallbacks
func TestBuildReport_RecommendedFallbacks(t *testing.T) {
	control := testArm("control", 35, 55000, 25.0, 16.0)
	arms := []ArmMetrics{control}

	withControl := BuildReport("export.csv", 14, arms, &control, nil, nil)
	assert.Equal(t, "control", withControl.Recommended)

	bare := BuildReport("export.csv", 14, arms, nil, nil, nil)
	assert.Equal(t, "N/A", bare.Recommended)
}

// TestReport_JSONFieldNames tests the wire names of the published report
func TestReport_JSONFieldNames(t *testing.T) {
	low := testArm("low", 35, 55000, 25.0, 16.0)
	recs := []Recommendation{{DemandID: "d-low", DemandName: "low", RecommendedMarginPct: 40}}

	data, err := json.Marshal(BuildReport("export.csv", 14, []ArmMetrics{low}, &low, &low, recs))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range []string{"source_file", "hour_used", "winner", "recommended", "arms", "recommendations"} {
		assert.Contains(t, decoded, key)
	}

	arms, ok := decoded["arms"].([]any)
	require.True(t, ok)
	require.Len(t, arms, 1)
	for _, key := range []string{"name", "margin_pct", "impressions", "profit", "profit_per_1k", "srpm"} {
		assert.Contains(t, arms[0], key)
	}

	rec := decoded["recommendations"].([]any)[0]
	for _, key := range []string{"demand_id", "demand_name", "recommended_margin_pct"} {
		assert.Contains(t, rec, key)
	}
}

// TestWriteRecommendationsCSV tests the exact CSV layout
func TestWriteRecommendationsCSV(t *testing.T) {
	recs := []Recommendation{
		{DemandID: "101", DemandName: "Test_LowMar_EP", RecommendedMarginPct: 36},
		{DemandID: "102", DemandName: "Test_MidMar_EP", RecommendedMarginPct: 38},
		{DemandID: "103", DemandName: "Test_HighMar_EP", RecommendedMarginPct: 40},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRecommendationsCSV(&buf, recs))

	want := "demand_id,demand_name,recommended_margin_pct\n" +
		"101,Test_LowMar_EP,36\n" +
		"102,Test_MidMar_EP,38\n" +
		"103,Test_HighMar_EP,40\n"
	assert.Equal(t, want, buf.String())
}

// TestWriteRecommendationsCSV_Empty tests that no recommendations still emit the header
func TestWriteRecommendationsCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecommendationsCSV(&buf, nil))

	assert.Equal(t, "demand_id,demand_name,recommended_margin_pct\n", buf.String())
}

// TestWriteRecommendationsCSV_QuotesNames tests quoting of names containing commas
func TestWriteRecommendationsCSV_QuotesNames(t *testing.T) {
	recs := []Recommendation{{DemandID: "101", DemandName: "EP, backup", RecommendedMarginPct: 36}}

	var buf bytes.Buffer
	require.NoError(t, WriteRecommendationsCSV(&buf, recs))

	assert.Equal(t, "demand_id,demand_name,recommended_margin_pct\n101,\"EP, backup\",36\n", buf.String())
}
