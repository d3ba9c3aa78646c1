package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-screener/internal/filtering"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

type ResumeHandler struct {
	repo          repositories.ResumeRepository
	collection    *repositories.Collection
	resumeService services.ResumeService
}

func NewResumeHandler(
	repo repositories.ResumeRepository,
	collection *repositories.Collection,
	resumeService services.ResumeService,
) *ResumeHandler {
	return &ResumeHandler{
		repo:          repo,
		collection:    collection,
		resumeService: resumeService,
	}
}

// stateFromQuery reads q, category and value.
func stateFromQuery(c *fiber.Ctx) (filtering.State, error) {
	return filtering.NewState(c.Query("q"), c.Query("category"), c.Query("value"))
}

func listResponse(collection *repositories.Collection, state filtering.State) models.ResumeListResponse {
	snapshot, ranked := collection.Snapshot()
	visible := filtering.Visible(snapshot, state, ranked)

	return models.ResumeListResponse{
		Total:   len(snapshot),
		Visible: len(visible),
		Ranked:  ranked,
		Resumes: visible,
	}
}

// HandleList handles GET /resumes
func (h *ResumeHandler) HandleList(c *fiber.Ctx) error {
	state, err := stateFromQuery(c)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(listResponse(h.collection, state))
}

// HandleAll handles GET /resumes/all
func (h *ResumeHandler) HandleAll(c *fiber.Ctx) error {
	resumes, err := h.repo.FindAll(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	for i := range resumes {
		resumes[i].Normalize()
	}

	return c.JSON(resumes)
}

// HandleFilters handles GET /resumes/filters
func (h *ResumeHandler) HandleFilters(c *fiber.Ctx) error {
	snapshot, _ := h.collection.Snapshot()

	return c.JSON(filtering.BuildVocabulary(snapshot))
}

// HandleGet handles GET /resumes/:id
func (h *ResumeHandler) HandleGet(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid resume id format",
		})
	}

	if r, ok := h.collection.Get(id); ok {
		return c.JSON(r)
	}

	r, err := h.repo.FindByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	r.Normalize()
	return c.JSON(r)
}

// HandleDelete handles DELETE /resumes/:id
func (h *ResumeHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid resume id format",
		})
	}

	if err := h.resumeService.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
