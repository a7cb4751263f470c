package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/amaumene/watchweek/internal/controllers"
)

// OrphanHandler lists and purges sessions whose title left the owner's lists
type OrphanHandler struct {
	cleanup *controllers.CleanupController
}

// NewOrphanHandler creates a new orphan handler
func NewOrphanHandler(cleanup *controllers.CleanupController) *OrphanHandler {
	return &OrphanHandler{cleanup: cleanup}
}

func (h *OrphanHandler) List(c *fiber.Ctx) error {
	owner, err := ownerParam(c)
	if err != nil {
		return err
	}
	items, err := h.cleanup.ListOrphans(c.UserContext(), owner)
	if err != nil {
		return err
	}
	return c.JSON(nonNil(items))
}

func (h *OrphanHandler) Purge(c *fiber.Ctx) error {
	owner, err := ownerParam(c)
	if err != nil {
		return err
	}
	n, err := h.cleanup.PurgeOrphans(c.UserContext(), owner)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": n})
}
