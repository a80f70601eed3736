package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPlanNextRound_BracketsAroundHighestMargin tests ladder construction and the cross-arm trend
func TestPlanNextRound_BracketsAroundHighestMargin(t *testing.T) {
	arms := []ArmMetrics{
		testArm("mid", 40, 50000, 24.0, 12.0),
		testArm("high", 45, 40000, 14.0, 0.5),
		testArm("low", 35, 55000, 25.0, 16.0),
	}

	plan := PlanNextRound(arms, nil)

	require.NotNil(t, plan)
	require.Len(t, plan.ArmsByMargin, 3)
	assert.Equal(t, "low", plan.ArmsByMargin[0].Name)
	assert.Equal(t, "mid", plan.ArmsByMargin[1].Name)
	assert.Equal(t, "high", plan.ArmsByMargin[2].Name)

	require.Len(t, plan.Deltas, 2)
	assert.Equal(t, "low", plan.Deltas[0].FromName)
	assert.Equal(t, "mid", plan.Deltas[0].ToName)
	assert.Equal(t, 5.0, plan.Deltas[0].MarginGap)
	assert.InDelta(t, 0.0764, plan.Deltas[0].ProfitGap, 0.0001)
	assert.InDelta(t, 0.0153, plan.Deltas[0].ProfitPerPoint, 0.0001)
	assert.InDelta(t, 0.0195, plan.Deltas[1].ProfitPerPoint, 0.0001)

	assert.True(t, plan.ProfitStillGrowing)
	assert.Equal(t, 5.0, plan.AvgMarginGapPct)
	assert.Equal(t, []float64{40, 45, 50}, plan.Bracket)

	require.Len(t, plan.Recommendations, 3)
	assert.Equal(t, Recommendation{DemandID: "d-low", DemandName: "low", RecommendedMarginPct: 40}, plan.Recommendations[0])
	assert.Equal(t, Recommendation{DemandID: "d-mid", DemandName: "mid", RecommendedMarginPct: 45}, plan.Recommendations[1])
	assert.Equal(t, Recommendation{DemandID: "d-high", DemandName: "high", RecommendedMarginPct: 50}, plan.Recommendations[2])
}

// TestPlanNextRound_HalfGapRoundsToEven tests whole-percent rounding of half-point rungs
func TestPlanNextRound_HalfGapRoundsToEven(t *testing.T) {
	arms := []ArmMetrics{
		testArm("low", 35, 55000, 25.0, 16.0),
		testArm("mid", 36.5, 52000, 26.0, 15.0),
		testArm("high", 38, 50000, 27.0, 14.0),
	}

	plan := PlanNextRound(arms, nil)

	require.NotNil(t, plan)
	assert.Equal(t, 1.5, plan.AvgMarginGapPct)
	// Raw rungs 36.5 / 38 / 39.5 land on even percents
	assert.Equal(t, []float64{36, 38, 40}, plan.Bracket)
}

// TestPlanNextRound_PlateauDetected tests that one declining step turns the trend off
func TestPlanNextRound_PlateauDetected(t *testing.T) {
	arms := []ArmMetrics{
		testArm("low", 35, 55000, 25.0, 16.0),  // profit/1k 0.1636
		testArm("mid", 40, 50000, 31.0, 16.0),  // profit/1k 0.3
		testArm("high", 45, 40000, 14.0, 4.4),  // profit/1k 0.24
	}

	plan := PlanNextRound(arms, nil)

	require.NotNil(t, plan)
	assert.False(t, plan.ProfitStillGrowing)
}

// TestPlanNextRound_SRPMRatio tests the guardrail ratio against an explicit control
func TestPlanNextRound_SRPMRatio(t *testing.T) {
	control := testArm("control", 30, 50000, 25.0, 16.0) // sRPM 0.5
	arms := []ArmMetrics{
		testArm("low", 35, 55000, 25.0, 16.0),
		testArm("high", 45, 40000, 14.0, 0.5), // sRPM 0.35
	}

	plan := PlanNextRound(arms, &control)

	require.NotNil(t, plan)
	assert.InDelta(t, 70.0, plan.SRPMRatioPct, 0.01)
}

// TestPlanNextRound_NoControlUsesLowestArm tests the control surrogate for the ratio
func TestPlanNextRound_NoControlUsesLowestArm(t *testing.T) {
	arms := []ArmMetrics{
		testArm("low", 35, 55000, 25.0, 16.0), // sRPM 0.4545
		testArm("high", 45, 40000, 14.0, 0.5), // sRPM 0.35
	}

	plan := PlanNextRound(arms, nil)

	require.NotNil(t, plan)
	assert.InDelta(t, 77.0, plan.SRPMRatioPct, 0.01)
}

// TestPlanNextRound_TwoArms tests that the top arm still gets one rung above it
func TestPlanNextRound_TwoArms(t *testing.T) {
	arms := []ArmMetrics{
		testArm("low", 35, 55000, 25.0, 16.0),
		testArm("high", 40, 50000, 26.0, 14.0),
	}

	plan := PlanNextRound(arms, nil)

	require.NotNil(t, plan)
	assert.Equal(t, 5.0, plan.AvgMarginGapPct)
	assert.Equal(t, []float64{40, 45}, plan.Bracket)
}

// TestPlanNextRound_SingleArm tests the degenerate one-arm ladder
func TestPlanNextRound_SingleArm(t *testing.T) {
	arms := []ArmMetrics{testArm("only", 35, 55000, 25.0, 16.0)}

	plan := PlanNextRound(arms, nil)

	require.NotNil(t, plan)
	assert.Empty(t, plan.Deltas)
	assert.False(t, plan.ProfitStillGrowing)
	assert.Equal(t, 0.0, plan.AvgMarginGapPct)
	assert.InDelta(t, 100.0, plan.SRPMRatioPct, 0.01)
	assert.Equal(t, []float64{35}, plan.Bracket)
}

// TestPlanNextRound_Empty tests that no arms produce no plan
func TestPlanNextRound_Empty(t *testing.T) {
	assert.Nil(t, PlanNextRound(nil, nil))
}
