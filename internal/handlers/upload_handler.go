package handlers

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

type UploadHandler struct {
	ingestService services.IngestService
	maxFileSize   int64
}

func NewUploadHandler(ingestService services.IngestService, maxFileSize int64) *UploadHandler {
	return &UploadHandler{
		ingestService: ingestService,
		maxFileSize:   maxFileSize,
	}
}

// HandleUpload handles POST /resumes
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		headers = form.File["file"]
	}
	if len(headers) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No files uploaded. Please upload one or more resumes as 'files'.",
		})
	}

	docs := make([]services.Document, 0, len(headers))
	for _, fh := range headers {
		if h.maxFileSize > 0 && fh.Size > h.maxFileSize {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: fmt.Sprintf("File too large. Max size: %d bytes", h.maxFileSize),
				File:  fh.Filename,
			})
		}

		doc, err := readDocument(fh)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: err.Error(),
				File:  fh.Filename,
			})
		}
		docs = append(docs, doc)
	}

	resumes, err := h.ingestService.IngestBatch(c.UserContext(), docs)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.UploadResponse{
		Message: "Resumes processed successfully",
		Count:   len(resumes),
		Resumes: resumes,
	})
}

func readDocument(fh *multipart.FileHeader) (services.Document, error) {
	src, err := fh.Open()
	if err != nil {
		return services.Document{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return services.Document{}, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return services.Document{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
