package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/boutique/internal/models"
	"github.com/example/boutique/internal/options"
	"github.com/example/boutique/internal/utils"
)

// OptionsHandler manages the admin-managed form vocabularies and the
// read-side registry.
type OptionsHandler struct {
	db       *gorm.DB
	registry *options.Registry
}

// NewOptionsHandler constructs OptionsHandler.
func NewOptionsHandler(db *gorm.DB, registry *options.Registry) *OptionsHandler {
	return &OptionsHandler{db: db, registry: registry}
}

// GetOptions returns every vocabulary from the registry snapshot.
func (h *OptionsHandler) GetOptions(c *fiber.Ctx) error {
	snapshot, err := h.registry.Snapshot(c.UserContext())
	if err != nil {
		return mapError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": snapshot})
}

// RefreshOptions reloads the registry from the store.
func (h *OptionsHandler) RefreshOptions(c *fiber.Ctx) error {
	if err := h.registry.Refresh(c.UserContext()); err != nil {
		return mapError(err)
	}

	snapshot, err := h.registry.Snapshot(c.UserContext())
	if err != nil {
		return mapError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": snapshot})
}

// Generic helpers for the vocabulary tables.

func (h *OptionsHandler) listSimple(c *fiber.Ctx, model interface{}) error {
	pg := utils.ParsePagination(c)
	var total int64
	if err := h.db.Model(model).Count(&total).Error; err != nil {
		return err
	}
	if err := h.db.Limit(pg.Limit).Offset(pg.Offset).Order("created_at asc").
		Find(model).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": model, "pagination": fiber.Map{
		"current_page":   pg.Page,
		"items_per_page": pg.Limit,
		"total_items":    total,
	}})
}

func (h *OptionsHandler) createSimple(c *fiber.Ctx, model interface{}) error {
	if err := c.BodyParser(model); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.db.Create(model).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": model})
}

func (h *OptionsHandler) updateSimple(c *fiber.Ctx, model interface{}) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	if err := h.db.First(model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "resource not found")
		}
		return err
	}
	if err := c.BodyParser(model); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.db.Save(model).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": model})
}

func (h *OptionsHandler) deleteSimple(c *fiber.Ctx, model interface{}) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	if err := h.db.Delete(model, "id = ?", id).Error; err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *OptionsHandler) ListSizes(c *fiber.Ctx) error {
	var items []models.SizeOption
	return h.listSimple(c, &items)
}

func (h *OptionsHandler) CreateSize(c *fiber.Ctx) error {
	var item models.SizeOption
	return h.createSimple(c, &item)
}

func (h *OptionsHandler) UpdateSize(c *fiber.Ctx) error {
	var item models.SizeOption
	return h.updateSimple(c, &item)
}

func (h *OptionsHandler) DeleteSize(c *fiber.Ctx) error {
	var item models.SizeOption
	return h.deleteSimple(c, &item)
}

func (h *OptionsHandler) ListStores(c *fiber.Ctx) error {
	var items []models.StoreOption
	return h.listSimple(c, &items)
}

func (h *OptionsHandler) CreateStore(c *fiber.Ctx) error {
	var item models.StoreOption
	return h.createSimple(c, &item)
}

func (h *OptionsHandler) UpdateStore(c *fiber.Ctx) error {
	var item models.StoreOption
	return h.updateSimple(c, &item)
}

func (h *OptionsHandler) DeleteStore(c *fiber.Ctx) error {
	var item models.StoreOption
	return h.deleteSimple(c, &item)
}

func (h *OptionsHandler) ListClassifications(c *fiber.Ctx) error {
	var items []models.ClassificationOption
	return h.listSimple(c, &items)
}

func (h *OptionsHandler) CreateClassification(c *fiber.Ctx) error {
	var item models.ClassificationOption
	return h.createSimple(c, &item)
}

func (h *OptionsHandler) UpdateClassification(c *fiber.Ctx) error {
	var item models.ClassificationOption
	return h.updateSimple(c, &item)
}

func (h *OptionsHandler) DeleteClassification(c *fiber.Ctx) error {
	var item models.ClassificationOption
	return h.deleteSimple(c, &item)
}

func (h *OptionsHandler) ListGenders(c *fiber.Ctx) error {
	var items []models.GenderOption
	return h.listSimple(c, &items)
}

func (h *OptionsHandler) CreateGender(c *fiber.Ctx) error {
	var item models.GenderOption
	return h.createSimple(c, &item)
}

func (h *OptionsHandler) UpdateGender(c *fiber.Ctx) error {
	var item models.GenderOption
	return h.updateSimple(c, &item)
}

func (h *OptionsHandler) DeleteGender(c *fiber.Ctx) error {
	var item models.GenderOption
	return h.deleteSimple(c, &item)
}
