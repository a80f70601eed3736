package models

import (
	"time"

	"github.com/google/uuid"
)

// PerformanceWindow represents aggregated traffic counters for one
// observation window at a fixed margin (from the platform reporting API)
type PerformanceWindow struct {
	Margin      float64 `json:"margin"`      // Margin the window was served at (percent)
	Impressions float64 `json:"impressions"` // Supply impressions
	Revenue     float64 `json:"revenue"`     // Revenue in USD
	Cost        float64 `json:"cost"`        // Cost in USD
	BidRate     float64 `json:"bid_rate"`    // Demand bid rate (percent)
	Responses   float64 `json:"responses"`   // Supply responses
}

// WindowMetrics holds the KPIs derived from a performance window together
// with the raw counters they were derived from
type WindowMetrics struct {
	Profit         float64 `json:"profit"`          // Revenue minus cost (USD)
	ProfitPer1K    float64 `json:"profit_per_1k"`   // Profit per 1k impressions
	RevenuePer1K   float64 `json:"revenue_per_1k"`  // Revenue per 1k impressions
	CostPer1K      float64 `json:"cost_per_1k"`     // Cost per 1k impressions
	SRPM           float64 `json:"srpm"`            // Supply RPM, equals revenue_per_1k
	Impressions    float64 `json:"impressions"`
	Responses      float64 `json:"responses"`
	BidRate        float64 `json:"bid_rate"`
	Margin         float64 `json:"margin"`
	ImpressionRate float64 `json:"impression_rate"` // Impressions delivered per response
}

// OptimizerParams holds tuning parameters for the guarded margin hill-climb
type OptimizerParams struct {
	BaselineMargin          float64 // Starting margin on cold start (percent)
	Step                    float64 // Current exploration step size (percent points)
	MinStep                 float64 // Floor the step never halves below
	GuardrailDropPct        float64 // Max tolerated sRPM/bid-rate drop vs baseline (e.g. 10 = 10%)
	MinProfitImprovementPct float64 // Profit gain required to re-anchor the baseline (e.g. 2 = 2%)
}

// RunRecord represents one optimizer invocation for the audit trail
type RunRecord struct {
	ID            uuid.UUID     `json:"id"`
	Timestamp     time.Time     `json:"timestamp"`
	CurrentMargin float64       `json:"current_margin"`
	NextMargin    float64       `json:"next_margin"`
	Outcome       string        `json:"outcome"`
	Metrics       WindowMetrics `json:"metrics"`
	Success       bool          `json:"success"`
}

// KafkaWindowBatchMessage represents the Kafka message from the reporting pipeline
type KafkaWindowBatchMessage struct {
	Windows   []PerformanceWindow `json:"windows"`
	Timestamp time.Time           `json:"timestamp"`
	BatchID   string              `json:"batch_id"`
}
