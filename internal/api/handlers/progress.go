package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/amaumene/watchweek/internal/controllers"
	"github.com/amaumene/watchweek/internal/models"
)

// ProgressHandler serves an owner's lists
type ProgressHandler struct {
	lists *controllers.ListController
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(lists *controllers.ListController) *ProgressHandler {
	return &ProgressHandler{lists: lists}
}

// List returns the owner's progress rows; ?bucket= filters
func (h *ProgressHandler) List(c *fiber.Ctx) error {
	owner, err := ownerParam(c)
	if err != nil {
		return err
	}
	rows, err := h.lists.ListProgress(c.UserContext(), owner, models.Bucket(c.Query("bucket")))
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []*models.Progress{}
	}
	return c.JSON(rows)
}

type moveRequest struct {
	Bucket      models.Bucket `json:"bucket"`
	IsRecurring *bool         `json:"is_recurring"`
	LastSeason  *int          `json:"last_season"`
	LastEpisode *int          `json:"last_episode"`
}

// Put moves the title into a list
func (h *ProgressHandler) Put(c *fiber.Ctx) error {
	owner, err := ownerParam(c)
	if err != nil {
		return err
	}
	titleID, err := paramID(c, "titleId")
	if err != nil {
		return err
	}

	var req moveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid body")
	}

	p, err := h.lists.MoveTitle(c.UserContext(), controllers.MoveRequest{
		OwnerID:     owner,
		TitleID:     titleID,
		Bucket:      req.Bucket,
		IsRecurring: req.IsRecurring,
		LastSeason:  req.LastSeason,
		LastEpisode: req.LastEpisode,
	})
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// Delete removes the title from the owner's lists
func (h *ProgressHandler) Delete(c *fiber.Ctx) error {
	owner, err := ownerParam(c)
	if err != nil {
		return err
	}
	titleID, err := paramID(c, "titleId")
	if err != nil {
		return err
	}
	if err := h.lists.RemoveTitle(c.UserContext(), owner, titleID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
