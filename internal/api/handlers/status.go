package handlers

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/amaumene/watchweek/internal/models"
)

// StatusDB is the read side the status endpoint aggregates
type StatusDB interface {
	CountSchedules(ctx context.Context) (pending, done int64, err error)
	CountProgressByBucket(ctx context.Context) ([]models.BucketCount, error)
}

// StatusHandler handles status requests
type StatusHandler struct {
	db StatusDB
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db StatusDB) *StatusHandler {
	return &StatusHandler{db: db}
}

// StatusResponse represents the status response
type StatusResponse struct {
	TotalSchedules     int64            `json:"total_schedules"`
	PendingSchedules   int64            `json:"pending_schedules"`
	CompletedSchedules int64            `json:"completed_schedules"`
	TitlesByBucket     map[string]int64 `json:"titles_by_bucket"`
}

// Get handles the status endpoint
func (h *StatusHandler) Get(c *fiber.Ctx) error {
	ctx := c.UserContext()

	pending, done, err := h.db.CountSchedules(ctx)
	if err != nil {
		return fmt.Errorf("failed to count schedules: %w", err)
	}
	buckets, err := h.db.CountProgressByBucket(ctx)
	if err != nil {
		return fmt.Errorf("failed to count progress: %w", err)
	}

	response := StatusResponse{
		TotalSchedules:     pending + done,
		PendingSchedules:   pending,
		CompletedSchedules: done,
		TitlesByBucket:     make(map[string]int64),
	}
	for _, b := range buckets {
		response.TitlesByBucket[string(b.Bucket)] = b.Count
	}

	return c.JSON(response)
}
