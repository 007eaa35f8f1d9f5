// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_retention

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	internal_store "github.com/lullai/api/internal/store"
	"github.com/lullai/config"
	"github.com/lullai/pkg/commons"
)

// sweepTimeout bounds one full sweep across both backends.
const sweepTimeout = 5 * time.Minute

// Sweeper prunes aged recordings on a cron schedule. Audio payloads make
// recordings heavy, so rows past the retention window are removed from
// Postgres and from the on-device fallback files alike. A retention of 0
// days disables the sweeper entirely and nothing is ever purged.
type Sweeper struct {
	cfg    *config.AppConfig
	logger commons.Logger
	stores []internal_store.Pruner
	cron   *cron.Cron
	clock  func() time.Time
}

// NewSweeper builds the sweeper over the given stores. Stores that do not
// support pruning (the failover wrapper) are skipped, so callers can hand
// over whatever they have.
func NewSweeper(cfg *config.AppConfig, logger commons.Logger, stores ...internal_store.RecordingStore) *Sweeper {
	sweeper := &Sweeper{
		cfg:    cfg,
		logger: logger,
		cron:   cron.New(cron.WithLocation(time.UTC)),
		clock:  time.Now,
	}
	for _, store := range stores {
		if pruner, ok := store.(internal_store.Pruner); ok {
			sweeper.stores = append(sweeper.stores, pruner)
		}
	}
	return sweeper
}

// Start schedules the sweep. Disabled (retention days 0) is not an error.
func (s *Sweeper) Start() error {
	if s.cfg.RetentionConfig.Days <= 0 {
		s.logger.Info("retention sweeper disabled: retention days is 0")
		return nil
	}

	schedule := s.cfg.RetentionConfig.Schedule
	if schedule == "" {
		schedule = "0 3 * * *"
	}

	if _, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Errorf("retention sweep failed: %v", err)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Infof("retention sweeper started: schedule=%q, days=%d", schedule, s.cfg.RetentionConfig.Days)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("retention sweeper stopped")
}

// Sweep prunes every backend once and returns the total removed. A
// failing backend does not stop the others; the first error is returned
// after all backends ran.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	start := s.clock()
	cutoff := start.AddDate(0, 0, -s.cfg.RetentionConfig.Days)

	var total int64
	var firstErr error
	for _, store := range s.stores {
		pruned, err := store.Prune(ctx, cutoff)
		total += pruned
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	s.logger.Infof("retention sweep finished: pruned=%d, cutoff=%s", total, cutoff.Format(time.RFC3339))
	s.logger.Benchmark("RetentionSweeper.Sweep", time.Since(start))
	return total, firstErr
}
