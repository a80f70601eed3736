package optimizer

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/OrtalNisim/PX-OMS/internal/metrics"
	"github.com/OrtalNisim/PX-OMS/internal/models"
)

// Outcome classifies the transition one decision made
type Outcome string

const (
	// OutcomeColdStart is returned once, when the first window anchors the baseline
	OutcomeColdStart Outcome = "cold_start"
	// OutcomeAccept means the window beat the baseline and the climb continues
	OutcomeAccept Outcome = "accept"
	// OutcomeHold means guardrails passed but profit gain was insufficient
	OutcomeHold Outcome = "hold"
	// OutcomeRollback means a guardrail was breached and the margin reverted
	OutcomeRollback Outcome = "rollback"
)

// Decision is the result of processing one performance window
type Decision struct {
	Outcome    Outcome              `json:"outcome"`
	NextMargin float64              `json:"next_margin"`
	Metrics    models.WindowMetrics `json:"metrics"`
}

// Optimizer runs a guarded hill-climb over the margin control value.
// It maximizes total profit while never letting sRPM or bid rate drop
// more than the configured percentage below the rolling baseline.
//
// The climb is upward only: the margin either advances by the current
// step or reverts to the last safe value, and the step only ever
// shrinks. Callers must serialize Decide invocations per arm; the
// optimizer holds no lock of its own.
type Optimizer struct {
	params models.OptimizerParams
	store  StateStore
	state  *State
	logger zerolog.Logger
}

// NewOptimizer creates a margin optimizer seeded from params. Call
// LoadState to restore a previously persisted position before the first
// Decide.
func NewOptimizer(params models.OptimizerParams, store StateStore, logger zerolog.Logger) *Optimizer {
	return &Optimizer{
		params: params,
		store:  store,
		state:  newState(params),
		logger: logger.With().Str("component", "optimizer").Logger(),
	}
}

// LoadState restores persisted state through the configured store and
// reports whether anything was restored. A missing or malformed blob
// leaves the freshly seeded state in place; it is never a fatal error.
func (o *Optimizer) LoadState(ctx context.Context) bool {
	data, err := o.store.Load(ctx)
	if err != nil {
		o.logger.Warn().Err(err).Msg("state load failed, starting fresh")
		return false
	}
	if data == nil {
		o.logger.Info().Msg("no persisted state found, starting fresh")
		return false
	}

	st, err := decodeState(data, o.params)
	if err != nil {
		o.logger.Warn().Err(err).Msg("malformed persisted state, starting fresh")
		return false
	}

	o.state = st
	o.logger.Info().
		Float64("current_margin", st.CurrentMargin).
		Float64("step", st.Step).
		Int("history_entries", len(st.History)).
		Msg("optimizer state restored")
	return true
}

// Decide ingests one performance window and returns the margin to apply
// next. The persisted state is updated twice: once after the window is
// recorded in history and once after the decision mutates the climb
// position. A persistence failure aborts the call.
func (o *Optimizer) Decide(ctx context.Context, window models.PerformanceWindow) (*Decision, error) {
	m := metrics.Derive(window)

	// Ingest: every observed window lands in history, whatever the outcome
	o.state.appendHistory(HistoryEntry{
		Margin:       window.Margin,
		Impressions:  window.Impressions,
		Revenue:      window.Revenue,
		Cost:         window.Cost,
		BidRate:      window.BidRate,
		Profit:       m.Profit,
		ProfitPer1K:  m.ProfitPer1K,
		RevenuePer1K: m.RevenuePer1K,
		CostPer1K:    m.CostPer1K,
		SRPM:         m.SRPM,
	})
	if err := o.persist(ctx); err != nil {
		return nil, err
	}

	// Cold start: the first window becomes the baseline and the first
	// exploration step is proposed
	if o.state.BaselineSRPM == nil {
		o.state.anchorBaseline(m)
		o.state.LastSafeMargin = window.Margin
		o.state.CurrentMargin = window.Margin + o.state.Step
		if err := o.persist(ctx); err != nil {
			return nil, err
		}

		o.logger.Info().
			Float64("margin", window.Margin).
			Float64("baseline_srpm", m.SRPM).
			Float64("baseline_bid_rate", m.BidRate).
			Float64("baseline_profit", m.Profit).
			Float64("next_margin", o.state.CurrentMargin).
			Msg("baseline anchored from first window")
		return &Decision{Outcome: OutcomeColdStart, NextMargin: o.state.CurrentMargin, Metrics: m}, nil
	}

	// Guardrails: neither sRPM nor bid rate may drop more than the
	// configured percentage below the baseline
	threshold := 1.0 - o.params.GuardrailDropPct/100.0
	srpmOK := m.SRPM >= threshold*orZero(o.state.BaselineSRPM)
	bidRateOK := m.BidRate >= threshold*orZero(o.state.BaselineBidRate)

	if !(srpmOK && bidRateOK) {
		o.state.CurrentMargin = o.state.LastSafeMargin
		o.state.Step = math.Max(o.state.Step/2, o.params.MinStep)
		if err := o.persist(ctx); err != nil {
			return nil, err
		}

		o.logger.Warn().
			Float64("margin", window.Margin).
			Float64("srpm", m.SRPM).
			Float64("baseline_srpm", orZero(o.state.BaselineSRPM)).
			Float64("bid_rate", m.BidRate).
			Float64("baseline_bid_rate", orZero(o.state.BaselineBidRate)).
			Float64("next_margin", o.state.CurrentMargin).
			Float64("step", o.state.Step).
			Msg("guardrail breached, rolling back to last safe margin")
		return &Decision{Outcome: OutcomeRollback, NextMargin: o.state.CurrentMargin, Metrics: m}, nil
	}

	// Guardrails passed; check whether total profit improved enough to
	// keep climbing
	baseProfit := orZero(o.state.BaselineProfit)
	var improvement float64
	if baseProfit > 0 {
		improvement = (m.Profit - baseProfit) / baseProfit * 100.0
	} else if m.Profit > 0 {
		// A non-positive baseline means any profit at all is an improvement
		improvement = 100.0
	}

	if improvement >= o.params.MinProfitImprovementPct {
		// Accept: re-anchor the baseline here and try one step higher
		o.state.LastSafeMargin = window.Margin
		o.state.anchorBaseline(m)
		o.state.CurrentMargin = window.Margin + o.state.Step
		if err := o.persist(ctx); err != nil {
			return nil, err
		}

		o.logger.Info().
			Float64("margin", window.Margin).
			Float64("profit", m.Profit).
			Float64("improvement_pct", improvement).
			Float64("next_margin", o.state.CurrentMargin).
			Float64("step", o.state.Step).
			Msg("margin accepted, climbing")
		return &Decision{Outcome: OutcomeAccept, NextMargin: o.state.CurrentMargin, Metrics: m}, nil
	}

	// Hold: not worse, but not better enough. Fall back to the last safe
	// margin and narrow the search.
	o.state.CurrentMargin = o.state.LastSafeMargin
	o.state.Step = math.Max(o.state.Step/2, o.params.MinStep)
	if err := o.persist(ctx); err != nil {
		return nil, err
	}

	o.logger.Info().
		Float64("margin", window.Margin).
		Float64("profit", m.Profit).
		Float64("improvement_pct", improvement).
		Float64("next_margin", o.state.CurrentMargin).
		Float64("step", o.state.Step).
		Msg("profit improvement below threshold, holding last safe margin")
	return &Decision{Outcome: OutcomeHold, NextMargin: o.state.CurrentMargin, Metrics: m}, nil
}

// State returns a deep copy of the current optimizer state
func (o *Optimizer) State() State {
	return o.state.clone()
}

// History returns up to limit most recent history entries, oldest first.
// A non-positive limit returns the full retained history.
func (o *Optimizer) History(limit int) []HistoryEntry {
	h := o.state.History
	if limit > 0 && limit < len(h) {
		h = h[len(h)-limit:]
	}
	return append([]HistoryEntry(nil), h...)
}

func (o *Optimizer) persist(ctx context.Context) error {
	data, err := o.state.encode()
	if err != nil {
		return fmt.Errorf("encode optimizer state: %w", err)
	}
	if err := o.store.Save(ctx, data); err != nil {
		return fmt.Errorf("save optimizer state: %w", err)
	}
	return nil
}

// orZero reads an optional baseline field, treating absent as zero
func orZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
