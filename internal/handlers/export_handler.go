package handlers

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-screener/internal/export"
	"alfredoptarigan/resume-screener/internal/filtering"
	"alfredoptarigan/resume-screener/internal/repositories"
)

type ExportHandler struct {
	collection *repositories.Collection
}

func NewExportHandler(collection *repositories.Collection) *ExportHandler {
	return &ExportHandler{collection: collection}
}

// HandleExport handles GET /export. It exports the visible set for q,
// category and value.
func (h *ExportHandler) HandleExport(c *fiber.Ctx) error {
	state, err := stateFromQuery(c)
	if err != nil {
		return respondError(c, err)
	}

	snapshot, ranked := h.collection.Snapshot()
	visible := filtering.Visible(snapshot, state, ranked)

	var buf bytes.Buffer
	if err := export.WriteResumes(&buf, visible, c.Query("sheet")); err != nil {
		if errors.Is(err, export.ErrNothingToExport) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, export.Filename(c.Query("filename"))))
	return c.Send(buf.Bytes())
}
