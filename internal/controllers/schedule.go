package controllers

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/amaumene/watchweek/internal/announce"
	"github.com/amaumene/watchweek/internal/metrics"
	"github.com/amaumene/watchweek/internal/models"
	"github.com/amaumene/watchweek/internal/telemetry"
	"github.com/amaumene/watchweek/internal/timewindow"
)

const (
	MinPrioritySlot = 1
	MaxPrioritySlot = 5

	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// TitleLookup resolves catalog titles; a missing title returns models.ErrNotFound
type TitleLookup interface {
	GetTitle(ctx context.Context, id uint64) (*models.Title, error)
}

// Announcer receives fire-and-forget notifications
type Announcer interface {
	Announce(ev announce.Event)
}

// ScheduleDB is the storage the schedule engine needs
type ScheduleDB interface {
	models.Store
	models.Transactor
}

// ScheduleController plans, lists, removes and completes viewing sessions
type ScheduleController struct {
	db        ScheduleDB
	titles    TitleLookup
	window    *timewindow.Window
	resolver  *RecurrenceResolver
	announcer Announcer
	metrics   *metrics.Metrics
	now       func() time.Time
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// NewScheduleController creates a new schedule controller
func NewScheduleController(db ScheduleDB, titles TitleLookup, window *timewindow.Window, resolver *RecurrenceResolver, announcer Announcer, m *metrics.Metrics, logger zerolog.Logger) *ScheduleController {
	if announcer == nil {
		announcer = announce.Nop{}
	}
	return &ScheduleController{
		db:        db,
		titles:    titles,
		window:    window,
		resolver:  resolver,
		announcer: announcer,
		metrics:   m,
		now:       time.Now,
		tracer:    telemetry.Tracer(),
		logger:    logger.With().Str("component", "schedule").Logger(),
	}
}

// SetClock replaces the wall clock, for tests and the CLI --at flag
func (c *ScheduleController) SetClock(now func() time.Time) {
	c.now = now
}

// Window returns the local day approximation used by the controller
func (c *ScheduleController) Window() *timewindow.Window {
	return c.window
}

// CreateScheduleRequest describes a session to plan
type CreateScheduleRequest struct {
	OwnerID      string
	TitleID      uint64
	Date         timewindow.Date
	PrioritySlot *int
	Season       *int
	EpisodeStart *int
	EpisodeEnd   *int
}

func (r *CreateScheduleRequest) validate(today timewindow.Date) error {
	if r.OwnerID == "" {
		return invalid("owner_id", "is required")
	}
	if r.TitleID == 0 {
		return invalid("title_id", "is required")
	}
	if r.Date.IsZero() {
		return invalid("date", "is required")
	}
	if r.Date.Before(today) {
		return invalid("date", fmt.Sprintf("%s is before today (%s)", r.Date, today))
	}
	if r.PrioritySlot != nil && (*r.PrioritySlot < MinPrioritySlot || *r.PrioritySlot > MaxPrioritySlot) {
		return invalid("priority_slot", fmt.Sprintf("must be between %d and %d", MinPrioritySlot, MaxPrioritySlot))
	}
	if r.Season != nil && *r.Season < 1 {
		return invalid("season", "must be positive")
	}
	if r.EpisodeStart != nil && *r.EpisodeStart < 1 {
		return invalid("episode_start", "must be positive")
	}
	if r.EpisodeEnd != nil {
		if r.EpisodeStart == nil {
			return invalid("episode_end", "requires episode_start")
		}
		if *r.EpisodeEnd < *r.EpisodeStart {
			return invalid("episode_end", "must not be before episode_start")
		}
	}
	return nil
}

// CreateSchedule plans a session for a title the owner has in rotation
func (c *ScheduleController) CreateSchedule(ctx context.Context, req CreateScheduleRequest) (*models.ScheduleItem, error) {
	ctx, span := c.tracer.Start(ctx, "ScheduleController.CreateSchedule", trace.WithAttributes(
		attribute.String("owner_id", req.OwnerID),
		attribute.Int64("title_id", int64(req.TitleID)),
	))
	defer span.End()

	today := c.window.Today(c.now())
	if err := req.validate(today); err != nil {
		return nil, err
	}

	title, err := c.titles.GetTitle(ctx, req.TitleID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, invalid("title_id", fmt.Sprintf("title %d does not exist", req.TitleID))
	}
	if err != nil {
		return nil, recordErr(span, storeErr("get title", err))
	}
	if !title.Kind.Episodic() && (req.Season != nil || req.EpisodeStart != nil) {
		return nil, invalid("season", fmt.Sprintf("%s titles have no seasons or episodes", title.Kind))
	}

	progress, err := c.db.GetProgress(ctx, req.OwnerID, req.TitleID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, recordErr(span, storeErr("get progress", err))
	}
	if progress == nil || progress.Bucket != models.BucketInRotation {
		return nil, invalid("title_id", fmt.Sprintf("%q is not in rotation", title.Name))
	}

	item := &models.ScheduleItem{
		OwnerID:       req.OwnerID,
		TitleID:       req.TitleID,
		ScheduledDate: req.Date,
		PrioritySlot:  copyInt(req.PrioritySlot),
		Season:        copyInt(req.Season),
		EpisodeStart:  copyInt(req.EpisodeStart),
		EpisodeEnd:    copyInt(req.EpisodeEnd),
	}
	if err := c.db.CreateSchedule(ctx, item); err != nil {
		return nil, recordErr(span, storeErr("create schedule", err))
	}

	c.metrics.ScheduleCreated()
	c.logger.Info().
		Str("owner_id", item.OwnerID).
		Uint64("schedule_id", item.ID).
		Uint64("title_id", item.TitleID).
		Stringer("date", item.ScheduledDate).
		Msg("Scheduled session")

	return item, nil
}

// ListForWindow returns the owner's items with start <= date <= end, sorted by
// date then same-day order. Items whose title left the owner's lists are flagged.
func (c *ScheduleController) ListForWindow(ctx context.Context, ownerID string, start, end timewindow.Date) ([]*models.ScheduleItem, error) {
	ctx, span := c.tracer.Start(ctx, "ScheduleController.ListForWindow", trace.WithAttributes(
		attribute.String("owner_id", ownerID),
		attribute.String("start", start.String()),
		attribute.String("end", end.String()),
	))
	defer span.End()

	if ownerID == "" {
		return nil, invalid("owner_id", "is required")
	}
	if start.IsZero() || end.IsZero() {
		return nil, invalid("window", "start and end are required")
	}
	if end.Before(start) {
		return nil, invalid("window", "end is before start")
	}

	items, err := c.db.ListSchedules(ctx, ownerID, start, end)
	if err != nil {
		return nil, recordErr(span, storeErr("list schedules", err))
	}
	if err := c.flagOrphans(ctx, ownerID, items); err != nil {
		return nil, recordErr(span, err)
	}

	slices.SortStableFunc(items, func(a, b *models.ScheduleItem) int {
		return timewindow.CompareUpcoming(a, b)
	})
	return items, nil
}

// ListUpcoming lists from today through today+days
func (c *ScheduleController) ListUpcoming(ctx context.Context, ownerID string, days int) ([]*models.ScheduleItem, error) {
	if days < 0 {
		return nil, invalid("days", "must not be negative")
	}
	today := c.window.Today(c.now())
	return c.ListForWindow(ctx, ownerID, today, today.AddDays(days))
}

// WeekView is one Monday to Sunday page of the schedule
type WeekView struct {
	Start timewindow.Date        `json:"start"`
	End   timewindow.Date        `json:"end"`
	Items []*models.ScheduleItem `json:"items"`
}

// ListWeek lists the week weekOffset weeks away from the current one
func (c *ScheduleController) ListWeek(ctx context.Context, ownerID string, weekOffset int) (*WeekView, error) {
	start, end := c.window.WeekWindow(c.now(), weekOffset)
	items, err := c.ListForWindow(ctx, ownerID, start, end)
	if err != nil {
		return nil, err
	}
	return &WeekView{Start: start, End: end, Items: items}, nil
}

// ListHistory returns completed items, most recent day first
func (c *ScheduleController) ListHistory(ctx context.Context, ownerID string, limit int) ([]*models.ScheduleItem, error) {
	ctx, span := c.tracer.Start(ctx, "ScheduleController.ListHistory", trace.WithAttributes(
		attribute.String("owner_id", ownerID),
	))
	defer span.End()

	if ownerID == "" {
		return nil, invalid("owner_id", "is required")
	}
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}

	items, err := c.db.ListCompletedSchedules(ctx, ownerID, limit)
	if err != nil {
		return nil, recordErr(span, storeErr("list completed schedules", err))
	}
	if err := c.flagOrphans(ctx, ownerID, items); err != nil {
		return nil, recordErr(span, err)
	}

	slices.SortStableFunc(items, func(a, b *models.ScheduleItem) int {
		return timewindow.CompareHistory(a, b)
	})
	return items, nil
}

// RemoveSchedule hard deletes an item. Removing a missing item succeeds.
func (c *ScheduleController) RemoveSchedule(ctx context.Context, ownerID string, scheduleID uint64) error {
	ctx, span := c.tracer.Start(ctx, "ScheduleController.RemoveSchedule", trace.WithAttributes(
		attribute.String("owner_id", ownerID),
		attribute.Int64("schedule_id", int64(scheduleID)),
	))
	defer span.End()

	if ownerID == "" {
		return invalid("owner_id", "is required")
	}
	if err := c.db.DeleteSchedule(ctx, ownerID, scheduleID); err != nil {
		return recordErr(span, storeErr("delete schedule", err))
	}

	c.metrics.ScheduleRemoved()
	c.logger.Info().
		Str("owner_id", ownerID).
		Uint64("schedule_id", scheduleID).
		Msg("Removed session")
	return nil
}

// CompletionResult is the outcome of Complete
type CompletionResult struct {
	Item     *models.ScheduleItem `json:"item"`
	Progress *models.Progress     `json:"progress,omitempty"`
	// Orphaned is set when the title or the owner's progress row is gone; the
	// flag flip still happened and the item is safe to delete.
	Orphaned bool `json:"orphaned"`
	// NoOp is set when the item was already in the requested state
	NoOp bool `json:"noop"`
}

// Complete moves an item to DONE (markComplete) or back to PENDING.
//
// PENDING to DONE is guarded on the current state: of two concurrent calls
// exactly one performs the transition and advances progress, the other returns
// the current state with NoOp set. An episodic recurring title that is not yet
// finished needs finaleDecision; without it a *DecisionRequiredError is
// returned and nothing is written. DONE to PENDING only clears the flag.
func (c *ScheduleController) Complete(ctx context.Context, ownerID string, scheduleID uint64, markComplete bool, finaleDecision *bool) (*CompletionResult, error) {
	ctx, span := c.tracer.Start(ctx, "ScheduleController.Complete", trace.WithAttributes(
		attribute.String("owner_id", ownerID),
		attribute.Int64("schedule_id", int64(scheduleID)),
		attribute.Bool("mark_complete", markComplete),
	))
	defer span.End()

	if ownerID == "" {
		return nil, invalid("owner_id", "is required")
	}

	item, err := c.db.GetSchedule(ctx, ownerID, scheduleID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, scheduleID)
	}
	if err != nil {
		return nil, recordErr(span, storeErr("get schedule", err))
	}

	// The title may be read through the shared connection, so resolve it before
	// the transaction takes that connection.
	title, err := c.titles.GetTitle(ctx, item.TitleID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, recordErr(span, storeErr("get title", err))
	}

	var result *CompletionResult
	if markComplete {
		result, err = c.markDone(ctx, ownerID, scheduleID, title, finaleDecision)
	} else {
		result, err = c.reopen(ctx, ownerID, scheduleID, title)
	}
	if err != nil {
		var decision *DecisionRequiredError
		if errors.As(err, &decision) {
			c.metrics.Completion(metrics.ResultDecisionRequired)
			span.SetAttributes(attribute.Bool("decision_required", true))
			return nil, err
		}
		return nil, recordErr(span, err)
	}

	span.SetAttributes(attribute.Bool("noop", result.NoOp), attribute.Bool("orphaned", result.Orphaned))
	return result, nil
}

func (c *ScheduleController) markDone(ctx context.Context, ownerID string, scheduleID uint64, title *models.Title, finaleDecision *bool) (*CompletionResult, error) {
	result := &CompletionResult{}
	var before *models.Progress

	err := c.db.Atomically(ctx, func(tx models.Store) error {
		item, err := tx.GetSchedule(ctx, ownerID, scheduleID)
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%w: %d", ErrNotFound, scheduleID)
		}
		if err != nil {
			return storeErr("get schedule", err)
		}

		progress, err := tx.GetProgress(ctx, ownerID, item.TitleID)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return storeErr("get progress", err)
		}
		result.Item = item
		result.Progress = progress
		result.Orphaned = title == nil || progress == nil

		if item.IsCompleted {
			result.NoOp = true
			return nil
		}
		if c.resolver.RequiresDecision(title, progress) && finaleDecision == nil {
			return &DecisionRequiredError{ScheduleID: item.ID, TitleID: item.TitleID}
		}

		won, err := tx.SetScheduleCompleted(ctx, ownerID, item.ID, true, c.now().UTC())
		if err != nil {
			return storeErr("complete schedule", err)
		}
		if !won {
			result.NoOp = true
		} else if next := c.resolver.Resolve(title, progress, item, finaleDecision); next != nil {
			if err := tx.UpsertProgress(ctx, next); err != nil {
				return storeErr("update progress", err)
			}
			before = progress
			result.Progress = next
		}

		result.Item, err = tx.GetSchedule(ctx, ownerID, item.ID)
		if err != nil {
			return storeErr("reload schedule", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Item.Orphaned = result.Orphaned
	log := c.logger.With().
		Str("owner_id", ownerID).
		Uint64("schedule_id", scheduleID).
		Uint64("title_id", result.Item.TitleID).
		Logger()

	switch {
	case result.NoOp:
		c.metrics.Completion(metrics.ResultNoop)
		log.Debug().Msg("Session already completed")
		return result, nil
	case result.Orphaned:
		c.metrics.Completion(metrics.ResultOrphaned)
		log.Warn().Msg("Completed orphaned session, safe to delete")
		return result, nil
	}

	c.metrics.Completion(metrics.ResultApplied)
	log.Info().Msg("Completed session")

	if before != nil && before.Bucket != models.BucketFinished && result.Progress.Bucket == models.BucketFinished {
		log.Info().Str("title", title.Name).Msg("Title finished")
		c.announcer.Announce(announce.Event{
			Type:      announce.EventTitleFinished,
			OwnerID:   ownerID,
			TitleID:   title.ID,
			TitleName: title.Name,
			Season:    copyInt(result.Progress.LastSeason),
			Episode:   lastEpisodeOf(result.Progress),
		})
	}

	return result, nil
}

func (c *ScheduleController) reopen(ctx context.Context, ownerID string, scheduleID uint64, title *models.Title) (*CompletionResult, error) {
	won, err := c.db.SetScheduleCompleted(ctx, ownerID, scheduleID, false, c.now().UTC())
	if err != nil {
		return nil, storeErr("reopen schedule", err)
	}

	item, err := c.db.GetSchedule(ctx, ownerID, scheduleID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, scheduleID)
	}
	if err != nil {
		return nil, storeErr("reload schedule", err)
	}

	progress, err := c.db.GetProgress(ctx, ownerID, item.TitleID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, storeErr("get progress", err)
	}

	result := &CompletionResult{
		Item:     item,
		Progress: progress,
		Orphaned: title == nil || progress == nil,
		NoOp:     !won,
	}
	item.Orphaned = result.Orphaned

	if won {
		c.metrics.Completion(metrics.ResultReopened)
		c.logger.Info().
			Str("owner_id", ownerID).
			Uint64("schedule_id", scheduleID).
			Msg("Reopened session")
	} else {
		c.metrics.Completion(metrics.ResultNoop)
	}
	return result, nil
}

// flagOrphans marks items whose title has no progress row for the owner
func (c *ScheduleController) flagOrphans(ctx context.Context, ownerID string, items []*models.ScheduleItem) error {
	present := make(map[uint64]bool)
	for _, item := range items {
		has, seen := present[item.TitleID]
		if !seen {
			_, err := c.db.GetProgress(ctx, ownerID, item.TitleID)
			switch {
			case err == nil:
				has = true
			case errors.Is(err, models.ErrNotFound):
				has = false
			default:
				return storeErr("get progress", err)
			}
			present[item.TitleID] = has
		}
		item.Orphaned = !has
	}
	return nil
}

func lastEpisodeOf(p *models.Progress) *int {
	if p.LastEpisodeRangeEnd != nil {
		return copyInt(p.LastEpisodeRangeEnd)
	}
	return copyInt(p.LastEpisode)
}

func recordErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
