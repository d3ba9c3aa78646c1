package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-screener/internal/export"
	"alfredoptarigan/resume-screener/internal/filtering"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

func statusFor(err error) int {
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.Is(err, services.ErrUnsupportedType),
		errors.Is(err, services.ErrFileTooLarge),
		errors.Is(err, services.ErrNoDocuments),
		errors.Is(err, services.ErrNoResumes),
		errors.Is(err, services.ErrEmptyJobDesc),
		errors.Is(err, services.ErrNoSkills),
		errors.Is(err, services.ErrEmptyQuery),
		errors.Is(err, filtering.ErrUnknownCategory):
		return fiber.StatusBadRequest
	case errors.Is(err, repositories.ErrResumeNotFound),
		errors.Is(err, services.ErrFileNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, export.ErrNothingToExport):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrSearchDisabled):
		return fiber.StatusNotImplemented
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes the JSON error body for err.
func respondError(c *fiber.Ctx, err error) error {
	body := models.ErrorResponse{Error: err.Error()}

	var batchErr *services.BatchError
	if errors.As(err, &batchErr) {
		body.Error = "Failed to process file: " + batchErr.Filename
		body.File = batchErr.Filename
	}

	return c.Status(statusFor(err)).JSON(body)
}

// ErrorHandler is the fiber error handler for errors returned by handlers.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := statusFor(err)

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
