package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/amaumene/watchweek/internal/catalog"
	"github.com/amaumene/watchweek/internal/models"
)

const defaultSearchLimit = 20

// TitleHandler serves the catalog
type TitleHandler struct {
	catalog *catalog.Catalog
}

// NewTitleHandler creates a new title handler
func NewTitleHandler(c *catalog.Catalog) *TitleHandler {
	return &TitleHandler{catalog: c}
}

// List searches the catalog; ?q= filters by name, ?limit= caps the result
func (h *TitleHandler) List(c *fiber.Ctx) error {
	titles, err := h.catalog.Search(c.UserContext(), c.Query("q"), c.QueryInt("limit", defaultSearchLimit))
	if err != nil {
		return err
	}
	if titles == nil {
		titles = []*models.Title{}
	}
	return c.JSON(titles)
}

// Get returns one title
func (h *TitleHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	title, err := h.catalog.GetTitle(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(title)
}

type createTitleRequest struct {
	Name string      `json:"name"`
	Kind models.Kind `json:"kind"`
}

// Create adds a title to the catalog
func (h *TitleHandler) Create(c *fiber.Ctx) error {
	var req createTitleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid body")
	}
	title, err := h.catalog.AddTitle(c.UserContext(), req.Name, req.Kind)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(title)
}
