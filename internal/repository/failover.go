package repository

import (
	"context"
	"sync/atomic"
	"time"

	"showroom/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverStateStore routes calls to the primary store and switches to the
// fallback when the primary errors. The primary is probed again once per
// recoveryInterval.
type FailoverStateStore struct {
	primary   domain.StateStore
	fallback  domain.StateStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverStateStore(primary, fallback domain.StateStore, logger *zerolog.Logger) *FailoverStateStore {
	return &FailoverStateStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// usePrimary reports whether the next call should go to the primary store.
func (r *FailoverStateStore) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	return time.Since(time.Unix(0, r.lastCheck.Load())) > recoveryInterval
}

func (r *FailoverStateStore) record(err error) {
	if err == nil {
		if r.isDown.Swap(false) {
			r.logger.Info().Msg("Primary state store recovered")
		}
		return
	}
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Msg("Primary state store failed, falling back to memory")
	}
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverStateStore) Allow(ctx context.Context, client string, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.Allow(ctx, client, limit, window)
		r.record(err)
		if err == nil {
			return allowed, nil
		}
	}
	return r.fallback.Allow(ctx, client, limit, window)
}

func (r *FailoverStateStore) Append(ctx context.Context, entry []byte) error {
	if r.usePrimary() {
		err := r.primary.Append(ctx, entry)
		r.record(err)
		if err == nil {
			return nil
		}
	}
	return r.fallback.Append(ctx, entry)
}

func (r *FailoverStateStore) Recent(ctx context.Context, n int64) ([][]byte, error) {
	if r.usePrimary() {
		entries, err := r.primary.Recent(ctx, n)
		r.record(err)
		if err == nil {
			return entries, nil
		}
	}
	return r.fallback.Recent(ctx, n)
}
