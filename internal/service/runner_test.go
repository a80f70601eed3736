package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/OrtalNisim/PX-OMS/internal/mocks"
	"github.com/OrtalNisim/PX-OMS/internal/models"
	"github.com/OrtalNisim/PX-OMS/pkg/optimizer"
)

// testRunnerSetup is a helper struct to hold test dependencies
type testRunnerSetup struct {
	runner        *Runner
	mockOptimizer *mocks.MockOptimizer
	mockPlatform  *mocks.MockPlatform
	mockRecorder  *mocks.MockRunRecorder
	ctrl          *gomock.Controller
	ctx           context.Context
}

// setupTestRunner creates a runner with mocked dependencies
func setupTestRunner(t *testing.T) *testRunnerSetup {
	ctrl := gomock.NewController(t)

	mockOptimizer := mocks.NewMockOptimizer(ctrl)
	mockPlatform := mocks.NewMockPlatform(ctrl)
	mockRecorder := mocks.NewMockRunRecorder(ctrl)

	return &testRunnerSetup{
		runner:        NewRunner(mockOptimizer, mockPlatform, mockRecorder, zerolog.Nop()),
		mockOptimizer: mockOptimizer,
		mockPlatform:  mockPlatform,
		mockRecorder:  mockRecorder,
		ctrl:          ctrl,
		ctx:           context.Background(),
	}
}

// cleanup cleans up test resources
func (s *testRunnerSetup) cleanup() {
	s.ctrl.Finish()
}

// testWindow returns the canonical hourly window used across runner tests
func testWindow() models.PerformanceWindow {
	return models.PerformanceWindow{
		Margin:      35.0,
		Impressions: 55000,
		Revenue:     25.0,
		Cost:        16.0,
		BidRate:     1.5,
		Responses:   28000,
	}
}

// testDecision returns an accept decision moving the margin to 37
func testDecision() *optimizer.Decision {
	return &optimizer.Decision{
		Outcome:    optimizer.OutcomeAccept,
		NextMargin: 37.0,
		Metrics: models.WindowMetrics{
			Profit:  9.0,
			SRPM:    0.4545,
			BidRate: 1.5,
			Margin:  35.0,
		},
	}
}

// TestNewRunner tests runner creation
func TestNewRunner(t *testing.T) {
	setup := setupTestRunner(t)
	defer setup.cleanup()

	assert.NotNil(t, setup.runner)
	assert.NotNil(t, setup.runner.optimizer)
	assert.NotNil(t, setup.runner.platform)
	assert.NotNil(t, setup.runner.recorder)
}

// TestRunOnce_Success tests the full fetch, decide, apply, record cycle
func TestRunOnce_Success(t *testing.T) {
	setup := setupTestRunner(t)
	defer setup.cleanup()

	window := testWindow()
	decision := testDecision()
	var saved *models.RunRecord

	setup.mockPlatform.EXPECT().FetchHourlyWindow(gomock.Any()).Return(&window, nil)
	setup.mockOptimizer.EXPECT().Decide(gomock.Any(), window).Return(decision, nil)
	setup.mockPlatform.EXPECT().ApplyMargin(gomock.Any(), 37.0).Return(nil)
	setup.mockRecorder.EXPECT().SaveRunRecord(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, record *models.RunRecord) error {
			saved = record
			return nil
		})
	setup.mockOptimizer.EXPECT().State().Return(optimizer.State{CurrentMargin: 37.0, Step: 1.0})

	record, err := setup.runner.RunOnce(setup.ctx)

	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 35.0, record.CurrentMargin)
	assert.Equal(t, 37.0, record.NextMargin)
	assert.Equal(t, "accept", record.Outcome)
	assert.True(t, record.Success)
	assert.Equal(t, 9.0, record.Metrics.Profit)
	assert.False(t, record.Timestamp.IsZero())
	assert.NotEqual(t, record.ID.String(), "00000000-0000-0000-0000-000000000000")

	require.NotNil(t, saved)
	assert.Equal(t, record, saved)
}

// TestRunOnce_FetchFailure tests that a failed fetch never reaches the optimizer
func TestRunOnce_FetchFailure(t *testing.T) {
	setup := setupTestRunner(t)
	defer setup.cleanup()

	setup.mockPlatform.EXPECT().FetchHourlyWindow(gomock.Any()).Return(nil, errors.New("api down"))

	record, err := setup.runner.RunOnce(setup.ctx)

	require.Error(t, err)
	assert.Nil(t, record)
	assert.Contains(t, err.Error(), "failed to fetch hourly window")
}

// TestProcess_DecideFailure tests that a failed decision skips the apply
func TestProcess_DecideFailure(t *testing.T) {
	setup := setupTestRunner(t)
	defer setup.cleanup()

	setup.mockOptimizer.EXPECT().Decide(gomock.Any(), gomock.Any()).Return(nil, errors.New("save optimizer state: disk full"))

	record, err := setup.runner.Process(setup.ctx, testWindow())

	require.Error(t, err)
	assert.Nil(t, record)
	assert.Contains(t, err.Error(), "decision failed")
}

// TestProcess_ApplyFailure tests that a failed apply still records the run
func TestProcess_ApplyFailure(t *testing.T) {
	setup := setupTestRunner(t)
	defer setup.cleanup()

	decision := testDecision()
	var saved *models.RunRecord

	setup.mockOptimizer.EXPECT().Decide(gomock.Any(), gomock.Any()).Return(decision, nil)
	setup.mockPlatform.EXPECT().ApplyMargin(gomock.Any(), 37.0).Return(errors.New("update endpoint returned status 503"))
	setup.mockRecorder.EXPECT().SaveRunRecord(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, record *models.RunRecord) error {
			saved = record
			return nil
		})
	setup.mockOptimizer.EXPECT().State().Return(optimizer.State{CurrentMargin: 37.0, Step: 1.0})

	record, err := setup.runner.Process(setup.ctx, testWindow())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to apply margin")
	require.NotNil(t, record)
	assert.False(t, record.Success)

	require.NotNil(t, saved)
	assert.False(t, saved.Success)
}

// TestProcess_RecorderFailure tests that audit trail errors never fail the run
func TestProcess_RecorderFailure(t *testing.T) {
	setup := setupTestRunner(t)
	defer setup.cleanup()

	setup.mockOptimizer.EXPECT().Decide(gomock.Any(), gomock.Any()).Return(testDecision(), nil)
	setup.mockPlatform.EXPECT().ApplyMargin(gomock.Any(), 37.0).Return(nil)
	setup.mockRecorder.EXPECT().SaveRunRecord(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
	setup.mockOptimizer.EXPECT().State().Return(optimizer.State{CurrentMargin: 37.0, Step: 1.0})

	record, err := setup.runner.Process(setup.ctx, testWindow())

	require.NoError(t, err)
	require.NotNil(t, record)
	assert.True(t, record.Success)
}

// TestProcess_NoRecorder tests running without an audit trail
func TestProcess_NoRecorder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOptimizer := mocks.NewMockOptimizer(ctrl)
	mockPlatform := mocks.NewMockPlatform(ctrl)
	runner := NewRunner(mockOptimizer, mockPlatform, nil, zerolog.Nop())

	mockOptimizer.EXPECT().Decide(gomock.Any(), gomock.Any()).Return(testDecision(), nil)
	mockPlatform.EXPECT().ApplyMargin(gomock.Any(), 37.0).Return(nil)
	mockOptimizer.EXPECT().State().Return(optimizer.State{CurrentMargin: 37.0, Step: 1.0})

	record, err := runner.Process(context.Background(), testWindow())

	require.NoError(t, err)
	assert.True(t, record.Success)
}

// TestStateSnapshot tests that the snapshot delegates to the optimizer
func TestStateSnapshot(t *testing.T) {
	setup := setupTestRunner(t)
	defer setup.cleanup()

	setup.mockOptimizer.EXPECT().State().Return(optimizer.State{CurrentMargin: 36.0, Step: 0.5})

	state := setup.runner.StateSnapshot()

	assert.Equal(t, 36.0, state.CurrentMargin)
	assert.Equal(t, 0.5, state.Step)
}

// TestRecentHistory tests that history delegates to the optimizer
func TestRecentHistory(t *testing.T) {
	setup := setupTestRunner(t)
	defer setup.cleanup()

	entries := []optimizer.HistoryEntry{{Margin: 35.0, Profit: 9.0}}
	setup.mockOptimizer.EXPECT().History(10).Return(entries)

	got := setup.runner.RecentHistory(10)

	assert.Equal(t, entries, got)
}

// TestRecentRuns tests listing run records through the recorder
func TestRecentRuns(t *testing.T) {
	setup := setupTestRunner(t)
	defer setup.cleanup()

	records := []*models.RunRecord{{Outcome: "accept", NextMargin: 37.0}}
	setup.mockRecorder.EXPECT().ListRunRecords(gomock.Any(), 5).Return(records, nil)

	got, err := setup.runner.RecentRuns(setup.ctx, 5)

	require.NoError(t, err)
	assert.Equal(t, records, got)
}

// TestRecentRuns_RecorderError tests the wrapped listing error
func TestRecentRuns_RecorderError(t *testing.T) {
	setup := setupTestRunner(t)
	defer setup.cleanup()

	setup.mockRecorder.EXPECT().ListRunRecords(gomock.Any(), 5).Return(nil, errors.New("redis down"))

	_, err := setup.runner.RecentRuns(setup.ctx, 5)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list run records")
}

// TestRecentRuns_NoRecorder tests that a missing recorder yields an empty trail
func TestRecentRuns_NoRecorder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	runner := NewRunner(mocks.NewMockOptimizer(ctrl), mocks.NewMockPlatform(ctrl), nil, zerolog.Nop())

	got, err := runner.RecentRuns(context.Background(), 5)

	require.NoError(t, err)
	assert.Empty(t, got)
}
