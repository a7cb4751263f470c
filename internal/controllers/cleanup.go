package controllers

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/amaumene/watchweek/internal/metrics"
	"github.com/amaumene/watchweek/internal/models"
)

// OrphanDB finds and deletes schedule items left behind by removed titles
type OrphanDB interface {
	FindOrphanedSchedules(ctx context.Context, ownerID string) ([]*models.ScheduleItem, error)
	DeleteOrphanedSchedules(ctx context.Context, ownerID string) (int64, error)
}

// CleanupController handles cleanup of orphaned schedule items
type CleanupController struct {
	db      OrphanDB
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewCleanupController creates a new cleanup controller
func NewCleanupController(db OrphanDB, m *metrics.Metrics, logger zerolog.Logger) *CleanupController {
	return &CleanupController{
		db:      db,
		metrics: m,
		logger:  logger.With().Str("component", "cleanup").Logger(),
	}
}

// ListOrphans returns the owner's orphaned items
func (c *CleanupController) ListOrphans(ctx context.Context, ownerID string) ([]*models.ScheduleItem, error) {
	if ownerID == "" {
		return nil, invalid("owner_id", "is required")
	}
	items, err := c.db.FindOrphanedSchedules(ctx, ownerID)
	if err != nil {
		return nil, storeErr("find orphaned schedules", err)
	}
	return items, nil
}

// PurgeOrphans deletes the owner's orphaned items and reports how many went
func (c *CleanupController) PurgeOrphans(ctx context.Context, ownerID string) (int64, error) {
	if ownerID == "" {
		return 0, invalid("owner_id", "is required")
	}

	n, err := c.db.DeleteOrphanedSchedules(ctx, ownerID)
	if err != nil {
		return 0, storeErr("delete orphaned schedules", err)
	}

	c.logger.Info().
		Str("owner_id", ownerID).
		Int64("deleted", n).
		Msg("Purged orphaned sessions")
	return n, nil
}

// SweepOrphans counts orphaned items across owners and publishes the gauge.
// It never deletes: purging stays an owner decision.
func (c *CleanupController) SweepOrphans(ctx context.Context) (int, error) {
	c.logger.Debug().Msg("Starting orphan sweep")

	items, err := c.db.FindOrphanedSchedules(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("failed to find orphaned schedules: %w", err)
	}

	perOwner := make(map[string]int)
	for _, item := range items {
		perOwner[item.OwnerID]++
	}
	for owner, n := range perOwner {
		c.logger.Info().
			Str("owner_id", owner).
			Int("count", n).
			Msg("Owner has orphaned sessions")
	}

	c.metrics.SetOrphaned(len(items))
	c.logger.Debug().Int("orphaned", len(items)).Msg("Orphan sweep completed")
	return len(items), nil
}
