package optimizer

import "context"

// StateStore is an interface that abstracts state blob persistence
// This allows for easier testing and mocking
type StateStore interface {
	// Load returns the persisted state blob, or nil when none exists
	Load(ctx context.Context) ([]byte, error)
	// Save persists the state blob, overwriting any previous one
	Save(ctx context.Context, data []byte) error
}
