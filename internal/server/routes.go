package server

import (
	"time"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/submission"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/template"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRoutes(app *fiber.App, templates *template.Handler, submissions *submission.Handler) {
	// Middleware
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS, PATCH",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Survey form API is running",
		})
	})

	app.Get("/field-types", templates.FieldTypesHandler)

	// ==========================================
	// TEMPLATES
	// ==========================================
	templateGroup := app.Group("/templates")
	templateGroup.Get("/", templates.ListTemplatesHandler)
	templateGroup.Post("/", templates.CreateTemplateHandler)
	templateGroup.Post("/preview", templates.PreviewHandler)
	templateGroup.Get("/:id", templates.GetTemplateHandler)
	templateGroup.Put("/:id", templates.UpdateTemplateHandler)
	templateGroup.Delete("/:id", templates.DeleteTemplateHandler)
	templateGroup.Get("/:id/render", templates.RenderHandler)

	// Builder operations
	templateGroup.Post("/:id/fields", templates.AddFieldHandler)
	templateGroup.Post("/:id/fields/:field_id/duplicate", templates.DuplicateFieldHandler)
	templateGroup.Post("/:id/fields/:field_id/move", templates.MoveFieldHandler)
	templateGroup.Patch("/:id/fields/:field_id", templates.UpdateFieldHandler)
	templateGroup.Delete("/:id/fields/:field_id", templates.DeleteFieldHandler)

	// Submissions of one template
	templateGroup.Get("/:id/submissions", submissions.ListSubmissionsHandler)
	templateGroup.Post("/:id/submissions", submissions.CreateSubmissionHandler)
	templateGroup.Get("/:id/export", submissions.ExportHandler)

	// ==========================================
	// SUBMISSIONS
	// ==========================================
	submissionGroup := app.Group("/submissions")
	submissionGroup.Get("/:id", submissions.GetSubmissionHandler)
	submissionGroup.Put("/:id", submissions.UpdateSubmissionHandler)
	submissionGroup.Delete("/:id", submissions.DeleteSubmissionHandler)
	submissionGroup.Post("/:id/upload", limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
	}), submissions.UploadHandler)
}
