package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-screener/internal/services"
)

type FileHandler struct {
	storageService services.StorageService
}

func NewFileHandler(storageService services.StorageService) *FileHandler {
	return &FileHandler{storageService: storageService}
}

// HandleFile handles GET /files/*
func (h *FileHandler) HandleFile(c *fiber.Ctx) error {
	rc, contentType, err := h.storageService.Open(c.UserContext(), c.Params("*"))
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, contentType)
	return c.SendStream(rc)
}
