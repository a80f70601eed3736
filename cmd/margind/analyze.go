package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/OrtalNisim/PX-OMS/internal/analysis"
	"github.com/OrtalNisim/PX-OMS/internal/store"
)

type analyzeOpts struct {
	csvPath             string
	controlContains     string
	minImpressions      int
	minProfit           float64
	maxImprDropPct      float64
	maxSRPMDropPct      float64
	minSRPMPctOfControl float64
	lastHour            bool
	recommendationsOut  string
	reportOut           string
	publish             bool
}

func analyzeCommand() *cobra.Command {
	var o analyzeOpts

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a margin A/B test from an analytics CSV export",
		Long: `Derives per-arm KPIs from an analytics CSV export, picks the profit
winner under the sRPM guardrail, checks whether the test has enough
data, and plans the margin ladder for the next round.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), o)
		},
	}

	cmd.Flags().StringVar(&o.csvPath, "csv", "", "path to the analytics CSV export")
	cmd.Flags().StringVar(&o.controlContains, "control-contains", "", "substring of the control arm's Demand Name (e.g. LowMar)")
	cmd.Flags().IntVar(&o.minImpressions, "min-impressions", analysis.DefaultMinImpressionsPerArm, "minimum impressions per arm for the enough-data check")
	cmd.Flags().Float64Var(&o.minProfit, "min-profit", analysis.DefaultMinProfitPerArm, "minimum profit dollars per arm for the enough-data check")
	cmd.Flags().Float64Var(&o.maxImprDropPct, "max-impr-drop-pct", analysis.DefaultMaxImprDropPct, "max allowed impressions drop vs control, percent")
	cmd.Flags().Float64Var(&o.maxSRPMDropPct, "max-srpm-drop-pct", analysis.DefaultMaxSRPMDropPct, "max allowed sRPM drop vs control, percent")
	cmd.Flags().Float64Var(&o.minSRPMPctOfControl, "min-srpm-pct-of-control", analysis.DefaultMinSRPMPctOfControl, "recommended arm must hold sRPM at this percent of control")
	cmd.Flags().BoolVar(&o.lastHour, "last-hour", false, "analyze only the most recent hour with impressions")
	cmd.Flags().StringVar(&o.recommendationsOut, "recommendations-out", "", "write next-round margins to this CSV file")
	cmd.Flags().StringVar(&o.reportOut, "report-out", "", "write the analysis report to this JSON file")
	cmd.Flags().BoolVar(&o.publish, "publish", false, "publish the report and recommendations to Redis")
	_ = cmd.MarkFlagRequired("csv")

	return cmd
}

func runAnalyze(ctx context.Context, o analyzeOpts) error {
	rows, err := analysis.LoadRows(o.csvPath)
	if err != nil {
		return err
	}

	// hour stays -1 when the whole file is analyzed.
	hour := -1
	if o.lastHour {
		rows, hour, err = analysis.LatestHour(rows)
		if err != nil {
			return err
		}
		fmt.Printf("Using last hour: %d (%d rows)\n\n", hour, len(rows))
	}

	arms := analysis.SortByProfitPer1K(analysis.ComputeMetrics(rows))
	winner := analysis.PickWinner(arms)
	control := analysis.FindControl(arms, o.controlContains)
	recommended := winner
	if control != nil {
		recommended = analysis.PickRecommendedWinner(arms, control, o.minSRPMPctOfControl)
	}

	printKPIs(arms)
	printWinner(winner)
	printRecommendation(winner, control, recommended, o.minSRPMPctOfControl)
	printEnoughData(arms, o.minImpressions, o.minProfit)
	printGuardrails(arms, control, o.maxImprDropPct, o.maxSRPMDropPct)

	plan := analysis.PlanNextRound(arms, control)
	printPlan(plan, o.minSRPMPctOfControl)

	if o.recommendationsOut != "" {
		if err := writeRecommendations(o.recommendationsOut, plan.Recommendations); err != nil {
			return err
		}
		fmt.Printf("\nRecommendations written to %s\n", o.recommendationsOut)
	}

	if o.reportOut != "" || o.publish {
		report := analysis.BuildReport(filepath.Base(o.csvPath), hour, arms, control, recommended, plan.Recommendations)
		reportJSON, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}

		if o.reportOut != "" {
			if err := os.WriteFile(o.reportOut, reportJSON, 0o644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			fmt.Printf("Report written to %s\n", o.reportOut)
		}

		if o.publish {
			if err := publishAnalysis(ctx, reportJSON, plan.Recommendations); err != nil {
				return err
			}
			fmt.Println("Report and recommendations published to Redis")
		}
	}

	fmt.Println("\nNote: this analysis cannot compute statistical significance from fully-aggregated rows.")
	fmt.Println("For real stopping rules, export event-level or time-bucketed data per arm.")
	return nil
}

func printKPIs(arms []analysis.ArmMetrics) {
	fmt.Println("Derived KPIs (sorted by profit/1k impressions):")
	for _, m := range arms {
		fmt.Printf("- %s\n", m.Name)
		fmt.Printf("  impressions=%d responses=%d impression_rate=%.4f%%\n", int(m.Impressions), int(m.Responses), m.ImpressionRate*100)
		fmt.Printf("  margin%%=%.2f win%%=%.2f\n", m.Margin, m.WinRatePct)
		fmt.Printf("  profit=%.4f profit/1k=%.4f rev/1k=%.4f cost/1k=%.4f\n", m.Profit, m.ProfitPer1K, m.RevenuePer1K, m.CostPer1K)
		fmt.Printf("  our_bidfloor=%.2f supply_bidfloor=%.2f demand_eCPM=%.2f sRPM=%.4f\n", m.OurBidfloor, m.SupplyBidfloor, m.DemandECPM, m.SRPM)
	}
}

func printWinner(winner *analysis.ArmMetrics) {
	fmt.Println("\nWinner by profit/1k impressions:")
	fmt.Printf("- %s (profit/1k=%.4f, profit=%.4f, margin%%=%.2f)\n", winner.Name, winner.ProfitPer1K, winner.Profit, winner.Margin)
}

func printRecommendation(winner, control, recommended *analysis.ArmMetrics, minSRPMPct float64) {
	fmt.Println("\nRecommendation (profit + sRPM guardrail):")
	if control == nil {
		fmt.Printf("- No control specified; raw winner = %s\n", winner.Name)
		return
	}
	if recommended == nil {
		fmt.Printf("- KEEP CONTROL: %s\n", control.Name)
		fmt.Printf("  Reason: no arm holds sRPM at %.0f%% of control. Winner (%s) would hurt supply performance.\n", minSRPMPct, winner.Name)
		return
	}
	srpmVsControl := 100.0
	if control.SRPM > 0 {
		srpmVsControl = recommended.SRPM / control.SRPM * 100.0
	}
	fmt.Printf("- RECOMMEND: %s\n", recommended.Name)
	fmt.Printf("  Reason: highest profit among arms with sRPM at/above %.0f%% of control.\n", minSRPMPct)
	fmt.Printf("  sRPM=%.4f (%.1f%% of control), supply/revenue performance preserved.\n", recommended.SRPM, srpmVsControl)
}

func printEnoughData(arms []analysis.ArmMetrics, minImpressions int, minProfit float64) {
	enough, reasons := analysis.AssessEnoughData(arms, minImpressions, minProfit)
	fmt.Println("\nEnough data check:")
	if enough {
		fmt.Println("- PASS: meets minimum per-arm thresholds")
		return
	}
	fmt.Println("- FAIL: not enough data yet")
	for _, r := range reasons {
		fmt.Printf("  - %s\n", r)
	}
}

func printGuardrails(arms []analysis.ArmMetrics, control *analysis.ArmMetrics, maxImprDropPct, maxSRPMDropPct float64) {
	if control == nil {
		fmt.Println("\nGuardrails vs control: skipped (no control arm provided)")
		return
	}
	warnings := analysis.AssessGuardrails(arms, *control, maxImprDropPct, maxSRPMDropPct)
	fmt.Println("\nGuardrails vs control:")
	if len(warnings) == 0 {
		fmt.Println("- OK")
		return
	}
	for _, w := range warnings {
		fmt.Printf("- %s\n", w)
	}
}

func printPlan(plan *analysis.Plan, minSRPMPct float64) {
	fmt.Println("\nCross-arm profit trend:")
	if len(plan.Deltas) == 0 {
		fmt.Println("- single arm, no trend to compare")
	}
	for _, d := range plan.Deltas {
		fmt.Printf("- %s (%.1f%%) -> %s (%.1f%%): margin +%.2fpp, profit/1k %+.4f (%+.4f $/pp)\n",
			d.FromName, d.FromMarginPct, d.ToName, d.ToMarginPct, d.MarginGap, d.ProfitGap, d.ProfitPerPoint)
	}
	if plan.ProfitStillGrowing {
		fmt.Println("- profit trend: still growing")
	} else {
		fmt.Println("- profit trend: plateauing/declining")
	}
	fmt.Printf("- sRPM ratio (best vs control): %.1f%% (guardrail: >=%.0f%%)\n", plan.SRPMRatioPct, minSRPMPct)
	fmt.Printf("- avg margin gap between arms: %.2fpp\n", plan.AvgMarginGapPct)

	fmt.Println("\nNext round margins (ascending):")
	for i, m := range plan.ArmsByMargin {
		fmt.Printf("- %s: current=%.2f%% -> recommended=%g%%\n", m.Name, m.Margin, plan.Recommendations[i].RecommendedMarginPct)
	}
}

func writeRecommendations(path string, recs []analysis.Recommendation) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create recommendations file: %w", err)
	}
	if err := analysis.WriteRecommendationsCSV(f, recs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func publishAnalysis(ctx context.Context, reportJSON []byte, recs []analysis.Recommendation) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.Redis.Enabled {
		return errors.New("redis is disabled in config, nothing to publish to")
	}

	logger := setupLogger(cfg.Logging)

	redisStore := store.NewRedisStore(
		store.RedisStoreConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.KeyPrefix,
			RunTTL:   cfg.Redis.RunTTL,
		},
		logger,
	)
	defer redisStore.Close()

	if err := redisStore.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	var recommendationsCSV bytes.Buffer
	if err := analysis.WriteRecommendationsCSV(&recommendationsCSV, recs); err != nil {
		return err
	}

	return redisStore.PublishAnalysis(ctx, reportJSON, recommendationsCSV.Bytes())
}
