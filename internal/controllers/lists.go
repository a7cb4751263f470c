package controllers

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/amaumene/watchweek/internal/models"
)

// ListDB is the progress storage behind the owner's lists
type ListDB interface {
	models.ProgressStore
	ListProgress(ctx context.Context, ownerID string) ([]*models.Progress, error)
	DeleteProgress(ctx context.Context, ownerID string, titleID uint64) error
}

// ListController moves titles between an owner's lists
type ListController struct {
	db     ListDB
	titles TitleLookup
	logger zerolog.Logger
}

// NewListController creates a new list controller
func NewListController(db ListDB, titles TitleLookup, logger zerolog.Logger) *ListController {
	return &ListController{
		db:     db,
		titles: titles,
		logger: logger.With().Str("component", "lists").Logger(),
	}
}

// MoveRequest puts a title in a list. Nil fields keep their stored value.
type MoveRequest struct {
	OwnerID     string
	TitleID     uint64
	Bucket      models.Bucket
	IsRecurring *bool
	LastSeason  *int
	LastEpisode *int
}

// MoveTitle creates or updates the owner's progress row for a title
func (c *ListController) MoveTitle(ctx context.Context, req MoveRequest) (*models.Progress, error) {
	if req.OwnerID == "" {
		return nil, invalid("owner_id", "is required")
	}
	if !req.Bucket.Valid() {
		return nil, invalid("bucket", fmt.Sprintf("unknown bucket %q", req.Bucket))
	}
	if req.LastSeason != nil && *req.LastSeason < 1 {
		return nil, invalid("last_season", "must be positive")
	}
	if req.LastEpisode != nil && *req.LastEpisode < 1 {
		return nil, invalid("last_episode", "must be positive")
	}

	title, err := c.titles.GetTitle(ctx, req.TitleID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, invalid("title_id", fmt.Sprintf("title %d does not exist", req.TitleID))
	}
	if err != nil {
		return nil, storeErr("get title", err)
	}
	if !title.Kind.Episodic() {
		switch {
		case req.IsRecurring != nil && *req.IsRecurring:
			return nil, invalid("is_recurring", fmt.Sprintf("%s titles cannot recur", title.Kind))
		case req.LastSeason != nil || req.LastEpisode != nil:
			return nil, invalid("last_episode", fmt.Sprintf("%s titles have no seasons or episodes", title.Kind))
		}
	}

	current, err := c.db.GetProgress(ctx, req.OwnerID, req.TitleID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		current = &models.Progress{OwnerID: req.OwnerID, TitleID: req.TitleID}
	case err != nil:
		return nil, storeErr("get progress", err)
	}

	next := current.Clone()
	from := next.Bucket
	next.Bucket = req.Bucket
	if req.IsRecurring != nil {
		next.IsRecurring = *req.IsRecurring
	}
	if next.Bucket == models.BucketFinished || next.Bucket == models.BucketAbandoned {
		next.IsRecurring = false
	}
	if req.LastSeason != nil {
		next.LastSeason = copyInt(req.LastSeason)
	}
	if req.LastEpisode != nil {
		next.LastEpisode = copyInt(req.LastEpisode)
		next.LastEpisodeRangeEnd = copyInt(req.LastEpisode)
	}

	if err := c.db.UpsertProgress(ctx, next); err != nil {
		return nil, storeErr("update progress", err)
	}

	c.logger.Info().
		Str("owner_id", req.OwnerID).
		Uint64("title_id", req.TitleID).
		Str("from", string(from)).
		Str("to", string(next.Bucket)).
		Bool("recurring", next.IsRecurring).
		Msg("Moved title")

	return next, nil
}

// RemoveTitle drops the title from every list of the owner. Its schedule items
// are kept and become orphaned.
func (c *ListController) RemoveTitle(ctx context.Context, ownerID string, titleID uint64) error {
	if ownerID == "" {
		return invalid("owner_id", "is required")
	}
	if err := c.db.DeleteProgress(ctx, ownerID, titleID); err != nil {
		return storeErr("delete progress", err)
	}
	c.logger.Info().
		Str("owner_id", ownerID).
		Uint64("title_id", titleID).
		Msg("Removed title from lists")
	return nil
}

// ListProgress returns the owner's progress rows, optionally limited to one bucket
func (c *ListController) ListProgress(ctx context.Context, ownerID string, bucket models.Bucket) ([]*models.Progress, error) {
	if ownerID == "" {
		return nil, invalid("owner_id", "is required")
	}
	if bucket != "" && !bucket.Valid() {
		return nil, invalid("bucket", fmt.Sprintf("unknown bucket %q", bucket))
	}

	rows, err := c.db.ListProgress(ctx, ownerID)
	if err != nil {
		return nil, storeErr("list progress", err)
	}
	if bucket == "" {
		return rows, nil
	}

	filtered := rows[:0]
	for _, p := range rows {
		if p.Bucket == bucket {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}
