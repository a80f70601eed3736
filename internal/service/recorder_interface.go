package service

import (
	"context"

	"github.com/OrtalNisim/PX-OMS/internal/models"
)

// RunRecorder is an interface that abstracts the run audit trail
// This allows for easier testing and mocking
type RunRecorder interface {
	SaveRunRecord(ctx context.Context, record *models.RunRecord) error
	ListRunRecords(ctx context.Context, limit int) ([]*models.RunRecord, error)
}
