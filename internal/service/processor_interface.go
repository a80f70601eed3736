package service

import (
	"context"

	"github.com/OrtalNisim/PX-OMS/internal/models"
)

// WindowProcessor is an interface that abstracts a full margin cycle on one window
// This allows for easier testing and mocking
type WindowProcessor interface {
	Process(ctx context.Context, window models.PerformanceWindow) (*models.RunRecord, error)
}
