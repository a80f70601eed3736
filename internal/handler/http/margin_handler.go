package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/OrtalNisim/PX-OMS/internal/models"
	"github.com/OrtalNisim/PX-OMS/internal/service"
	"github.com/OrtalNisim/PX-OMS/pkg/optimizer"
)

// MarginHandler handles HTTP requests for the margin optimizer
type MarginHandler struct {
	runner *service.Runner
	logger zerolog.Logger
}

// NewMarginHandler creates a new margin HTTP handler
func NewMarginHandler(runner *service.Runner, logger zerolog.Logger) *MarginHandler {
	return &MarginHandler{
		runner: runner,
		logger: logger.With().Str("component", "margin_handler").Logger(),
	}
}

// RegisterRoutes registers HTTP routes with the provided mux
func (h *MarginHandler) RegisterRoutes(mux *http.ServeMux) {
	// GET /api/v1/optimizer/state - Current hill-climb position
	mux.HandleFunc("/api/v1/optimizer/state", h.handleGetState)

	// GET /api/v1/optimizer/history?limit=N - Ingested windows with derived KPIs
	mux.HandleFunc("/api/v1/optimizer/history", h.handleGetHistory)

	// POST /api/v1/optimizer/windows - Feed one performance window through a cycle
	mux.HandleFunc("/api/v1/optimizer/windows", h.handlePostWindow)

	// GET /api/v1/optimizer/runs?limit=N - Recorded margin cycles
	mux.HandleFunc("/api/v1/optimizer/runs", h.handleGetRuns)
}

// handleGetState handles GET /api/v1/optimizer/state
func (h *MarginHandler) handleGetState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	h.jsonResponse(w, http.StatusOK, ToStateResponse(h.runner.StateSnapshot()))
}

// handleGetHistory handles GET /api/v1/optimizer/history
func (h *MarginHandler) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit, err := limitParam(r, 0)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}

	history := h.runner.RecentHistory(limit)

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"count":   len(history),
		"history": history,
	})
}

// handlePostWindow handles POST /api/v1/optimizer/windows
func (h *MarginHandler) handlePostWindow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var window models.PerformanceWindow
	if err := json.NewDecoder(r.Body).Decode(&window); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if window.Margin < 0 || window.Margin >= 100 {
		h.errorResponse(w, http.StatusBadRequest, "margin must be between 0 and 100")
		return
	}
	if window.Impressions < 0 {
		h.errorResponse(w, http.StatusBadRequest, "impressions must not be negative")
		return
	}

	record, err := h.runner.Process(r.Context(), window)
	if err != nil && record == nil {
		h.logger.Error().
			Err(err).
			Float64("margin", window.Margin).
			Msg("failed to process window")
		h.errorResponse(w, http.StatusInternalServerError, "failed to process window")
		return
	}
	if err != nil {
		// The decision is persisted even when the platform apply fails;
		// the record carries success=false
		h.logger.Warn().
			Err(err).
			Float64("margin", window.Margin).
			Msg("window processed but margin apply failed")
	}

	h.jsonResponse(w, http.StatusOK, ToRunResponse(record))
}

// handleGetRuns handles GET /api/v1/optimizer/runs
func (h *MarginHandler) handleGetRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit, err := limitParam(r, 20)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}

	records, err := h.runner.RecentRuns(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to retrieve run records")
		h.errorResponse(w, http.StatusInternalServerError, "failed to retrieve runs")
		return
	}

	runs := make([]*RunResponse, len(records))
	for i, record := range records {
		runs[i] = ToRunResponse(record)
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"count": len(runs),
		"runs":  runs,
	})
}

// limitParam parses the optional limit query parameter
func limitParam(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if limit < 0 {
		return 0, fmt.Errorf("limit %d is negative", limit)
	}
	return limit, nil
}

// jsonResponse writes a JSON response
func (h *MarginHandler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes a JSON error response
func (h *MarginHandler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{
		"error": message,
	})
}

// StateResponse represents the API response for the optimizer state
type StateResponse struct {
	BaselineMargin  float64  `json:"baseline_margin"`
	LastSafeMargin  float64  `json:"last_safe_margin"`
	CurrentMargin   float64  `json:"current_margin"`
	Step            float64  `json:"step"`
	BaselineSRPM    *float64 `json:"baseline_srpm,omitempty"`
	BaselineBidRate *float64 `json:"baseline_bid_rate,omitempty"`
	BaselineProfit  *float64 `json:"baseline_profit,omitempty"`
	ColdStart       bool     `json:"cold_start"`
	HistoryLength   int      `json:"history_length"`
}

// ToStateResponse converts the optimizer state to API response format
func ToStateResponse(state optimizer.State) *StateResponse {
	return &StateResponse{
		BaselineMargin:  state.BaselineMargin,
		LastSafeMargin:  state.LastSafeMargin,
		CurrentMargin:   state.CurrentMargin,
		Step:            state.Step,
		BaselineSRPM:    state.BaselineSRPM,
		BaselineBidRate: state.BaselineBidRate,
		BaselineProfit:  state.BaselineProfit,
		ColdStart:       state.BaselineSRPM == nil,
		HistoryLength:   len(state.History),
	}
}

// RunResponse represents the API response for one margin cycle
type RunResponse struct {
	ID            string  `json:"id"`
	Timestamp     string  `json:"timestamp"`
	CurrentMargin float64 `json:"current_margin"`
	NextMargin    float64 `json:"next_margin"`
	Outcome       string  `json:"outcome"`
	Success       bool    `json:"success"`
	Profit        float64 `json:"profit"`
	ProfitPer1K   float64 `json:"profit_per_1k"`
	SRPM          float64 `json:"srpm"`
	BidRate       float64 `json:"bid_rate"`
}

// ToRunResponse converts a run record to API response format
func ToRunResponse(record *models.RunRecord) *RunResponse {
	return &RunResponse{
		ID:            record.ID.String(),
		Timestamp:     record.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		CurrentMargin: record.CurrentMargin,
		NextMargin:    record.NextMargin,
		Outcome:       record.Outcome,
		Success:       record.Success,
		Profit:        record.Metrics.Profit,
		ProfitPer1K:   record.Metrics.ProfitPer1K,
		SRPM:          record.Metrics.SRPM,
		BidRate:       record.Metrics.BidRate,
	}
}
