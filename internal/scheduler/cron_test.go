package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/watchweek/internal/config"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (s *countingSweeper) SweepOrphans(ctx context.Context) (int, error) {
	s.calls.Add(1)
	return 0, s.err
}

func TestSchedulerRunsInitialSweep(t *testing.T) {
	sweeper := &countingSweeper{}
	s := NewScheduler(&config.Config{OrphanSweepSchedule: "@every 1h"}, sweeper, zerolog.Nop())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return sweeper.calls.Load() == 1 }, time.Second, 10*time.Millisecond)
}

func TestSchedulerSurvivesSweepErrors(t *testing.T) {
	sweeper := &countingSweeper{err: errors.New("database is locked")}
	s := NewScheduler(&config.Config{OrphanSweepSchedule: "@every 1h"}, sweeper, zerolog.Nop())

	require.NoError(t, s.Start(context.Background()))
	s.Stop()

	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 1 }, time.Second, 10*time.Millisecond)
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(&config.Config{OrphanSweepSchedule: "every tuesday"}, &countingSweeper{}, zerolog.Nop())
	assert.Error(t, s.Start(context.Background()))
}

type blockingSweeper struct {
	started  chan struct{}
	release  chan struct{}
	finished atomic.Bool
}

func (s *blockingSweeper) SweepOrphans(ctx context.Context) (int, error) {
	close(s.started)
	<-s.release
	s.finished.Store(true)
	return 0, nil
}

func TestSchedulerStopWaitsForInitialSweep(t *testing.T) {
	sweeper := &blockingSweeper{started: make(chan struct{}), release: make(chan struct{})}
	s := NewScheduler(&config.Config{OrphanSweepSchedule: "@every 1h"}, sweeper, zerolog.Nop())
	require.NoError(t, s.Start(context.Background()))

	select {
	case <-sweeper.started:
	case <-time.After(time.Second):
		t.Fatal("initial sweep never started")
	}

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while the initial sweep was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(sweeper.release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop never returned")
	}
	assert.True(t, sweeper.finished.Load())
}
