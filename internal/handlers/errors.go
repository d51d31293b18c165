package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/boutique/internal/catalog"
	"github.com/example/boutique/internal/coordinator"
)

// mapError translates store and coordinator errors to HTTP status errors.
// Anything unrecognized bubbles up as a 500.
func mapError(err error) error {
	var vErr *coordinator.ValidationError
	var upErr *coordinator.UploadError

	switch {
	case errors.As(err, &vErr):
		return fiber.NewError(fiber.StatusBadRequest, vErr.Error())
	case errors.Is(err, coordinator.ErrTooManyExtraImages):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, coordinator.ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, coordinator.ErrHighlightCapacity):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, catalog.ErrVersionConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "resource not found")
	case errors.As(err, &upErr):
		return fiber.NewError(fiber.StatusBadGateway, upErr.Error())
	}
	return err
}
