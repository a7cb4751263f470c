package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/amaumene/watchweek/internal/config"
)

// Sweeper is the periodic orphan sweep
type Sweeper interface {
	SweepOrphans(ctx context.Context) (int, error)
}

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	sweeper Sweeper
	logger  zerolog.Logger

	// initial tracks the sweep launched by Start outside of cron
	initial sync.WaitGroup
}

// NewScheduler creates a new scheduler
func NewScheduler(cfg *config.Config, sweeper Sweeper, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		spec:    cfg.OrphanSweepSchedule,
		sweeper: sweeper,
		logger:  logger.With().Str("component", "scheduler").Logger(),
	}
}

// Start starts the scheduler and runs a first sweep right away
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info().Str("schedule", s.spec).Msg("Starting scheduler")

	_, err := s.cron.AddFunc(s.spec, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to add orphan sweep job: %w", err)
	}

	s.cron.Start()
	s.logger.Info().Msg("Scheduler started")

	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.runSweep(ctx)
	}()
	return nil
}

// Stop stops the scheduler and waits for every running sweep, including the
// first one launched by Start
func (s *Scheduler) Stop() {
	s.logger.Info().Msg("Stopping scheduler")
	<-s.cron.Stop().Done()
	s.initial.Wait()
}

// runSweep executes the orphan sweep job
func (s *Scheduler) runSweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	n, err := s.sweeper.SweepOrphans(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Orphan sweep failed")
		return
	}
	s.logger.Debug().Int("orphaned", n).Msg("Orphan sweep completed")
}
