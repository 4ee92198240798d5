// Package scheduler runs periodic background maintenance.
package scheduler

import (
	"context"
	"time"

	"github.com/marksync/marks/internal/logger"
)

// SweepStore is the slice of the store the sweeper needs: enumerate
// owners and drop dangling ids from each owner index.
type SweepStore interface {
	Owners(ctx context.Context) ([]string, error)
	SweepOwnerIndex(ctx context.Context, owner string) (int, error)
}

// Sweeper periodically removes owner-index entries whose records are
// gone. Indexes drift when a record delete commits but the index update
// is lost mid-pipeline.
type Sweeper struct {
	store    SweepStore
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

func NewSweeper(store SweepStore, log logger.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep process
func (s *Sweeper) Start(ctx context.Context) error {
	// Run immediately on start
	if err := s.Sweep(ctx); err != nil {
		s.logger.Warn("initial index sweep failed", logger.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.Sweep(ctx); err != nil {
					s.logger.Error("index sweep failed", logger.Error(err))
				}
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the sweeper
func (s *Sweeper) Stop() {
	close(s.stopCh)
}

// Sweep walks every owner index once.
func (s *Sweeper) Sweep(ctx context.Context) error {
	owners, err := s.store.Owners(ctx)
	if err != nil {
		return err
	}

	removed := 0
	for _, owner := range owners {
		n, err := s.store.SweepOwnerIndex(ctx, owner)
		if err != nil {
			s.logger.Warn("failed to sweep owner index",
				logger.String("owner", owner), logger.Error(err))
			continue
		}
		removed += n
	}

	if removed > 0 {
		s.logger.Info("index sweep completed",
			logger.Int("owners", len(owners)),
			logger.Int("removed", removed))
	} else {
		s.logger.Debug("no dangling index entries")
	}

	return nil
}
