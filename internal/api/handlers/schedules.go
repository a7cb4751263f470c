package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/amaumene/watchweek/internal/controllers"
	"github.com/amaumene/watchweek/internal/models"
	"github.com/amaumene/watchweek/internal/timewindow"
)

// ScheduleHandler serves an owner's planned sessions
type ScheduleHandler struct {
	schedule     *controllers.ScheduleController
	upcomingDays int
}

// NewScheduleHandler creates a new schedule handler. Listing without a window
// returns today through today+upcomingDays.
func NewScheduleHandler(schedule *controllers.ScheduleController, upcomingDays int) *ScheduleHandler {
	return &ScheduleHandler{schedule: schedule, upcomingDays: upcomingDays}
}

// List handles GET ?start=YYYY-MM-DD&end=YYYY-MM-DD, defaulting to upcoming
func (h *ScheduleHandler) List(c *fiber.Ctx) error {
	owner, err := ownerParam(c)
	if err != nil {
		return err
	}

	startParam, endParam := c.Query("start"), c.Query("end")
	if startParam == "" && endParam == "" {
		items, err := h.schedule.ListUpcoming(c.UserContext(), owner, h.upcomingDays)
		if err != nil {
			return err
		}
		return c.JSON(nonNil(items))
	}

	start, err := timewindow.ParseDate(startParam)
	if err != nil {
		return badRequest("invalid start date")
	}
	end, err := timewindow.ParseDate(endParam)
	if err != nil {
		return badRequest("invalid end date")
	}

	items, err := h.schedule.ListForWindow(c.UserContext(), owner, start, end)
	if err != nil {
		return err
	}
	return c.JSON(nonNil(items))
}

// Week handles GET /week?offset=N
func (h *ScheduleHandler) Week(c *fiber.Ctx) error {
	owner, err := ownerParam(c)
	if err != nil {
		return err
	}
	week, err := h.schedule.ListWeek(c.UserContext(), owner, c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	week.Items = nonNil(week.Items)
	return c.JSON(week)
}

// History handles GET /history?limit=N
func (h *ScheduleHandler) History(c *fiber.Ctx) error {
	owner, err := ownerParam(c)
	if err != nil {
		return err
	}
	items, err := h.schedule.ListHistory(c.UserContext(), owner, c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return c.JSON(nonNil(items))
}

type createScheduleRequest struct {
	TitleID      uint64          `json:"title_id"`
	Date         timewindow.Date `json:"date"`
	PrioritySlot *int            `json:"priority_slot"`
	Season       *int            `json:"season"`
	EpisodeStart *int            `json:"episode_start"`
	EpisodeEnd   *int            `json:"episode_end"`
}

// Create plans a session
func (h *ScheduleHandler) Create(c *fiber.Ctx) error {
	owner, err := ownerParam(c)
	if err != nil {
		return err
	}

	var req createScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid body")
	}

	item, err := h.schedule.CreateSchedule(c.UserContext(), controllers.CreateScheduleRequest{
		OwnerID:      owner,
		TitleID:      req.TitleID,
		Date:         req.Date,
		PrioritySlot: req.PrioritySlot,
		Season:       req.Season,
		EpisodeStart: req.EpisodeStart,
		EpisodeEnd:   req.EpisodeEnd,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

type completeRequest struct {
	Completed *bool `json:"completed"` // Defaults to true
	Finale    *bool `json:"finale"`
}

// Complete marks a session done, or pending again with {"completed": false}.
// A recurring title answers 409 decision_required until "finale" is sent.
func (h *ScheduleHandler) Complete(c *fiber.Ctx) error {
	owner, err := ownerParam(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req completeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest("invalid body")
		}
	}
	markComplete := req.Completed == nil || *req.Completed

	result, err := h.schedule.Complete(c.UserContext(), owner, id, markComplete, req.Finale)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// Delete removes a session; missing sessions also answer 204
func (h *ScheduleHandler) Delete(c *fiber.Ctx) error {
	owner, err := ownerParam(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.schedule.RemoveSchedule(c.UserContext(), owner, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func nonNil(items []*models.ScheduleItem) []*models.ScheduleItem {
	if items == nil {
		return []*models.ScheduleItem{}
	}
	return items
}
