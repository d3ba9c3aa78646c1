package handlers

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

type MatchHandler struct {
	resumeService services.ResumeService
	collection    *repositories.Collection
	parser        services.DocumentParser
}

func NewMatchHandler(
	resumeService services.ResumeService,
	collection *repositories.Collection,
	parser services.DocumentParser,
) *MatchHandler {
	return &MatchHandler{
		resumeService: resumeService,
		collection:    collection,
		parser:        parser,
	}
}

type matchRequest struct {
	JobDescription string `json:"jobDescription" form:"jobDescription"`
}

// HandleMatch handles POST /match. The job description comes as a jdFile
// upload, a jobDescription form field or a JSON body. The response is the
// visible set for q, category and value after ranking.
func (h *MatchHandler) HandleMatch(c *fiber.Ctx) error {
	state, err := stateFromQuery(c)
	if err != nil {
		return respondError(c, err)
	}

	jd, err := h.jobDescription(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if _, err := h.resumeService.RunMatch(c.UserContext(), jd); err != nil {
		return respondError(c, err)
	}

	return c.JSON(listResponse(h.collection, state))
}

func (h *MatchHandler) jobDescription(c *fiber.Ctx) (string, error) {
	if fh, err := c.FormFile("jdFile"); err == nil {
		src, err := fh.Open()
		if err != nil {
			return "", fiber.NewError(fiber.StatusBadRequest, "failed to open job description file")
		}
		defer src.Close()

		data, err := io.ReadAll(src)
		if err != nil {
			return "", fiber.NewError(fiber.StatusBadRequest, "failed to read job description file")
		}
		return services.ReadJobDescription(h.parser, data, fh.Header.Get("Content-Type")), nil
	}

	var req matchRequest
	if err := c.BodyParser(&req); err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "Invalid request payload")
	}
	return strings.TrimSpace(req.JobDescription), nil
}
