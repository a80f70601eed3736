package store

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/OrtalNisim/PX-OMS/pkg/optimizer"
)

// LayeredStore combines the authoritative local store with an optional
// remote mirror. The remote is consulted only when the local store holds
// nothing (first run on a new machine) and is written best effort: a
// failed remote sync is logged, never surfaced.
type LayeredStore struct {
	local  optimizer.StateStore
	remote optimizer.StateStore
	logger zerolog.Logger
}

// NewLayeredStore creates a layered store; remote may be nil for
// local-only operation
func NewLayeredStore(local, remote optimizer.StateStore, logger zerolog.Logger) *LayeredStore {
	return &LayeredStore{
		local:  local,
		remote: remote,
		logger: logger.With().Str("component", "layered_store").Logger(),
	}
}

// Load reads from the local store first and falls back to the remote
// only when the local store has no blob
func (s *LayeredStore) Load(ctx context.Context) ([]byte, error) {
	data, err := s.local.Load(ctx)
	if err != nil {
		return nil, err
	}
	if data != nil {
		return data, nil
	}

	if s.remote == nil {
		return nil, nil
	}

	data, err = s.remote.Load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("remote state load failed")
		return nil, nil
	}
	if data != nil {
		s.logger.Info().
			Int("bytes", len(data)).
			Msg("state recovered from remote store")
	}
	return data, nil
}

// Save writes the local store, then syncs the remote best effort
func (s *LayeredStore) Save(ctx context.Context, data []byte) error {
	if err := s.local.Save(ctx, data); err != nil {
		return err
	}

	if s.remote != nil {
		if err := s.remote.Save(ctx, data); err != nil {
			s.logger.Warn().Err(err).Msg("remote state sync failed")
		}
	}

	return nil
}
