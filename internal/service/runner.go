package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/OrtalNisim/PX-OMS/internal/models"
	"github.com/OrtalNisim/PX-OMS/pkg/optimizer"
)

// Runner orchestrates one margin tuning cycle: fetch a performance
// window, run the optimizer, push the chosen margin to the platform, and
// record the run. All optimizer access is serialized through the runner,
// which is the only writer of optimizer state.
type Runner struct {
	mu        sync.Mutex
	optimizer Optimizer
	platform  Platform
	recorder  RunRecorder
	logger    zerolog.Logger
}

// NewRunner creates a new runner. recorder may be nil when no audit
// trail is configured.
func NewRunner(
	optimizer Optimizer,
	platform Platform,
	recorder RunRecorder,
	logger zerolog.Logger,
) *Runner {
	return &Runner{
		optimizer: optimizer,
		platform:  platform,
		recorder:  recorder,
		logger:    logger.With().Str("component", "runner").Logger(),
	}
}

// RunOnce executes a full cycle against the live platform
func (r *Runner) RunOnce(ctx context.Context) (*models.RunRecord, error) {
	window, err := r.platform.FetchHourlyWindow(ctx)
	if err != nil {
		runFailuresTotal.Inc()
		return nil, fmt.Errorf("failed to fetch hourly window: %w", err)
	}
	return r.Process(ctx, *window)
}

// Process runs the optimizer on one window, applies the resulting margin,
// and records the run. The run record is returned even when the margin
// apply fails, with Success false and a non-nil error.
func (r *Runner) Process(ctx context.Context, window models.PerformanceWindow) (*models.RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	decision, err := r.optimizer.Decide(ctx, window)
	if err != nil {
		runFailuresTotal.Inc()
		return nil, fmt.Errorf("decision failed: %w", err)
	}

	record := &models.RunRecord{
		ID:            uuid.New(),
		Timestamp:     time.Now().UTC(),
		CurrentMargin: window.Margin,
		NextMargin:    decision.NextMargin,
		Outcome:       string(decision.Outcome),
		Metrics:       decision.Metrics,
		Success:       true,
	}

	applyErr := r.platform.ApplyMargin(ctx, decision.NextMargin)
	if applyErr != nil {
		record.Success = false
		runFailuresTotal.Inc()
		r.logger.Warn().
			Err(applyErr).
			Float64("margin", decision.NextMargin).
			Msg("failed to apply margin")
	}

	// Record the run even when the apply failed
	if r.recorder != nil {
		if err := r.recorder.SaveRunRecord(ctx, record); err != nil {
			r.logger.Warn().Err(err).Msg("failed to save run record")
			// Don't fail the run on audit trail errors
		}
	}

	state := r.optimizer.State()
	decisionsTotal.WithLabelValues(string(decision.Outcome)).Inc()
	currentMarginGauge.Set(decision.NextMargin)
	stepGauge.Set(state.Step)
	windowProfitGauge.Set(decision.Metrics.Profit)
	windowSRPMGauge.Set(decision.Metrics.SRPM)

	r.logger.Info().
		Str("outcome", string(decision.Outcome)).
		Float64("current_margin", window.Margin).
		Float64("next_margin", decision.NextMargin).
		Float64("profit", decision.Metrics.Profit).
		Float64("srpm", decision.Metrics.SRPM).
		Bool("applied", record.Success).
		Msg("margin cycle complete")

	if applyErr != nil {
		return record, fmt.Errorf("failed to apply margin: %w", applyErr)
	}
	return record, nil
}

// StateSnapshot returns a copy of the optimizer state
func (r *Runner) StateSnapshot() optimizer.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.optimizer.State()
}

// RecentHistory returns up to limit most recent ingested windows
func (r *Runner) RecentHistory(limit int) []optimizer.HistoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.optimizer.History(limit)
}

// RecentRuns returns up to limit most recent run records, newest first.
// Without a recorder the trail is empty.
func (r *Runner) RecentRuns(ctx context.Context, limit int) ([]*models.RunRecord, error) {
	if r.recorder == nil {
		return []*models.RunRecord{}, nil
	}

	records, err := r.recorder.ListRunRecords(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list run records: %w", err)
	}
	return records, nil
}
