package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Upload *UploadHandler
	Resume *ResumeHandler
	Search *SearchHandler
	Match  *MatchHandler
	Export *ExportHandler
	File   *FileHandler
}

// RequestTimeout bounds the user context of every request, which is what
// the services pass on to the model and the store.
func RequestTimeout(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if timeout <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// Register mounts the API under /api/v1 and hosted files under /files.
func Register(app *fiber.App, h Handlers) {
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/resumes", h.Upload.HandleUpload)
	api.Get("/resumes", h.Resume.HandleList)
	api.Get("/resumes/all", h.Resume.HandleAll)
	api.Get("/resumes/filters", h.Resume.HandleFilters)
	api.Get("/resumes/similar", h.Search.HandleSimilar)
	api.Get("/resumes/:id", h.Resume.HandleGet)
	api.Delete("/resumes/:id", h.Resume.HandleDelete)
	api.Get("/search", h.Search.HandleSkills)
	api.Post("/match", h.Match.HandleMatch)
	api.Get("/export", h.Export.HandleExport)

	app.Get("/files/*", h.File.HandleFile)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Screener API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/resumes",
				"GET /api/v1/resumes",
				"GET /api/v1/resumes/all",
				"GET /api/v1/resumes/filters",
				"GET /api/v1/resumes/similar",
				"GET /api/v1/resumes/:id",
				"DELETE /api/v1/resumes/:id",
				"GET /api/v1/search",
				"POST /api/v1/match",
				"GET /api/v1/export",
			},
		})
	})
}
