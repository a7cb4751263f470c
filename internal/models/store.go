package models

import (
	"context"
	"errors"
	"time"

	"github.com/amaumene/watchweek/internal/timewindow"
)

// ErrNotFound is returned by lookups that match no row
var ErrNotFound = errors.New("record not found")

// ScheduleStore persists schedule items, always scoped by owner
type ScheduleStore interface {
	CreateSchedule(ctx context.Context, item *ScheduleItem) error
	GetSchedule(ctx context.Context, ownerID string, id uint64) (*ScheduleItem, error)
	ListSchedules(ctx context.Context, ownerID string, start, end timewindow.Date) ([]*ScheduleItem, error)
	ListCompletedSchedules(ctx context.Context, ownerID string, limit int) ([]*ScheduleItem, error)
	DeleteSchedule(ctx context.Context, ownerID string, id uint64) error
	// SetScheduleCompleted flips the flag only if it currently holds !completed.
	// It reports whether this call performed the transition.
	SetScheduleCompleted(ctx context.Context, ownerID string, id uint64, completed bool, at time.Time) (bool, error)
}

// ProgressStore persists per owner per title progress
type ProgressStore interface {
	GetProgress(ctx context.Context, ownerID string, titleID uint64) (*Progress, error)
	UpsertProgress(ctx context.Context, p *Progress) error
}

// Store is both stores bound to the same connection or transaction
type Store interface {
	ScheduleStore
	ProgressStore
}

// Transactor runs fn with a Store whose writes commit or roll back together
type Transactor interface {
	Atomically(ctx context.Context, fn func(tx Store) error) error
}
