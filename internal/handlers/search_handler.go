package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

type SearchHandler struct {
	searchService services.SearchService
}

func NewSearchHandler(searchService services.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// HandleSkills handles GET /search?skills=a,b
func (h *SearchHandler) HandleSkills(c *fiber.Ctx) error {
	resumes, err := h.searchService.BySkills(c.UserContext(), c.Query("skills"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resumes)
}

// HandleSimilar handles GET /resumes/similar?q=&limit=
func (h *SearchHandler) HandleSimilar(c *fiber.Ctx) error {
	query := c.Query("q")

	results, err := h.searchService.Similar(c.UserContext(), query, c.QueryInt("limit", 10))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SimilarResponse{
		Query:   query,
		Results: results,
	})
}
