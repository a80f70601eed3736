package service

import (
	"context"

	"github.com/OrtalNisim/PX-OMS/internal/models"
	"github.com/OrtalNisim/PX-OMS/pkg/optimizer"
)

// Optimizer is an interface that abstracts the guarded margin hill-climb
// This allows for easier testing and mocking
type Optimizer interface {
	Decide(ctx context.Context, window models.PerformanceWindow) (*optimizer.Decision, error)
	State() optimizer.State
	History(limit int) []optimizer.HistoryEntry
}
