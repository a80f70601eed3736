package optimizer

import (
	"encoding/json"
	"fmt"

	"github.com/OrtalNisim/PX-OMS/internal/models"
)

// stateVersion is stamped into every persisted blob so future schema
// migrations can branch on it
const stateVersion = 1

// maxHistoryEntries caps the persisted history log; the cap is applied on
// every read and every write
const maxHistoryEntries = 100

// HistoryEntry is one ingested window with its derived KPIs, kept for
// audit and debugging only. The decision logic never reads it back.
type HistoryEntry struct {
	Margin       float64 `json:"margin"`
	Impressions  float64 `json:"impressions"`
	Revenue      float64 `json:"revenue"`
	Cost         float64 `json:"cost"`
	BidRate      float64 `json:"bid_rate"`
	Profit       float64 `json:"profit"`
	ProfitPer1K  float64 `json:"profit_per_1k"`
	RevenuePer1K float64 `json:"revenue_per_1k"`
	CostPer1K    float64 `json:"cost_per_1k"`
	SRPM         float64 `json:"srpm"`
}

// State is the persisted snapshot of the hill-climb position for one arm.
// The baseline KPI fields are nil until the first window has been
// processed; a nil baseline sRPM marks the cold-start condition.
type State struct {
	Version         int            `json:"version"`
	BaselineMargin  float64        `json:"baseline_margin"`
	LastSafeMargin  float64        `json:"last_safe_margin"`
	CurrentMargin   float64        `json:"current_margin"`
	Step            float64        `json:"step"`
	BaselineSRPM    *float64       `json:"baseline_srpm"`
	BaselineBidRate *float64       `json:"baseline_bid_rate"`
	BaselineProfit  *float64       `json:"baseline_profit"`
	History         []HistoryEntry `json:"history"`
}

// newState seeds a fresh state from the construction parameters
func newState(params models.OptimizerParams) *State {
	return &State{
		Version:        stateVersion,
		BaselineMargin: params.BaselineMargin,
		LastSafeMargin: params.BaselineMargin,
		CurrentMargin:  params.BaselineMargin,
		Step:           params.Step,
	}
}

// decodeState parses a persisted blob. Fields absent from the blob fall
// back to the construction parameters; optional baseline fields stay nil.
// Any parse failure is returned to the caller, which treats the blob as
// absent rather than propagating the error.
func decodeState(data []byte, params models.OptimizerParams) (*State, error) {
	var raw struct {
		Version         *int           `json:"version"`
		BaselineMargin  *float64       `json:"baseline_margin"`
		LastSafeMargin  *float64       `json:"last_safe_margin"`
		CurrentMargin   *float64       `json:"current_margin"`
		Step            *float64       `json:"step"`
		BaselineSRPM    *float64       `json:"baseline_srpm"`
		BaselineBidRate *float64       `json:"baseline_bid_rate"`
		BaselineProfit  *float64       `json:"baseline_profit"`
		History         []HistoryEntry `json:"history"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}

	st := newState(params)
	if raw.Version != nil {
		st.Version = *raw.Version
	}
	if raw.BaselineMargin != nil {
		st.BaselineMargin = *raw.BaselineMargin
	}
	if raw.LastSafeMargin != nil {
		st.LastSafeMargin = *raw.LastSafeMargin
	}
	if raw.CurrentMargin != nil {
		st.CurrentMargin = *raw.CurrentMargin
	}
	if raw.Step != nil {
		st.Step = *raw.Step
	}
	st.BaselineSRPM = raw.BaselineSRPM
	st.BaselineBidRate = raw.BaselineBidRate
	st.BaselineProfit = raw.BaselineProfit
	st.History = trimHistory(raw.History)

	return st, nil
}

// encode serializes the state for persistence, capping the history first
func (s *State) encode() ([]byte, error) {
	s.History = trimHistory(s.History)
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	return data, nil
}

// appendHistory records one observation, keeping the log bounded
func (s *State) appendHistory(e HistoryEntry) {
	s.History = trimHistory(append(s.History, e))
}

// anchorBaseline re-points the guardrail floor at the given window's KPIs
func (s *State) anchorBaseline(m models.WindowMetrics) {
	srpm, bidRate, profit := m.SRPM, m.BidRate, m.Profit
	s.BaselineSRPM = &srpm
	s.BaselineBidRate = &bidRate
	s.BaselineProfit = &profit
}

// clone returns a deep copy safe to hand out of the optimizer
func (s *State) clone() State {
	c := *s
	if s.BaselineSRPM != nil {
		v := *s.BaselineSRPM
		c.BaselineSRPM = &v
	}
	if s.BaselineBidRate != nil {
		v := *s.BaselineBidRate
		c.BaselineBidRate = &v
	}
	if s.BaselineProfit != nil {
		v := *s.BaselineProfit
		c.BaselineProfit = &v
	}
	c.History = append([]HistoryEntry(nil), s.History...)
	return c
}

func trimHistory(h []HistoryEntry) []HistoryEntry {
	if len(h) > maxHistoryEntries {
		return h[len(h)-maxHistoryEntries:]
	}
	return h
}
