package service

import (
	"context"

	"github.com/OrtalNisim/PX-OMS/internal/models"
)

// Platform is an interface that abstracts the ad platform API
// This allows for easier testing and mocking
type Platform interface {
	FetchHourlyWindow(ctx context.Context) (*models.PerformanceWindow, error)
	ApplyMargin(ctx context.Context, margin float64) error
}
