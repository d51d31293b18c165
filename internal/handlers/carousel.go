package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/boutique/internal/catalog"
	"github.com/example/boutique/internal/coordinator"
	"github.com/example/boutique/internal/middleware"
	"github.com/example/boutique/internal/models"
)

// CarouselHandler manages home-page carousel slides.
type CarouselHandler struct {
	store *catalog.Store
	coord *coordinator.Coordinator
}

// NewCarouselHandler constructs CarouselHandler.
func NewCarouselHandler(store *catalog.Store, coord *coordinator.Coordinator) *CarouselHandler {
	return &CarouselHandler{store: store, coord: coord}
}

type slideRequest struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	CTAText  string `json:"ctaText"`
	CTALink  string `json:"ctaLink"`
}

// ListSlides returns all slides in stored order.
func (h *CarouselHandler) ListSlides(c *fiber.Ctx) error {
	slides, err := h.store.CarouselSlides(c.UserContext())
	if err != nil {
		return mapError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": slides})
}

// CreateSlide persists a new slide without an image; the image is attached
// through SetSlideImage.
func (h *CarouselHandler) CreateSlide(c *fiber.Ctx) error {
	var req slideRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	slide := models.CarouselSlide{
		Title:    req.Title,
		Subtitle: req.Subtitle,
		CTAText:  req.CTAText,
		CTALink:  req.CTALink,
	}
	if err := h.store.SaveCarouselSlide(c.UserContext(), &slide); err != nil {
		return mapError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": slide})
}

// UpdateSlide overwrites a slide's text fields.
func (h *CarouselHandler) UpdateSlide(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req slideRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	slide, err := h.coord.UpdateSlide(c.UserContext(), middleware.GetSession(c), id, coordinator.SlideForm{
		Title:    req.Title,
		Subtitle: req.Subtitle,
		CTAText:  req.CTAText,
		CTALink:  req.CTALink,
	})
	if err != nil {
		return mapError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": slide})
}

// SetSlideImage swaps the slide's image for a newly uploaded one.
func (h *CarouselHandler) SetSlideImage(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing image upload")
	}
	up, err := readUpload(fh)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "unreadable image upload")
	}

	slide, err := h.coord.SetSlideImage(c.UserContext(), middleware.GetSession(c), id, *up)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": slide})
}

// DeleteSlide removes a slide and its image asset.
func (h *CarouselHandler) DeleteSlide(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.coord.DeleteSlide(c.UserContext(), middleware.GetSession(c), id); err != nil {
		return mapError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
