package server

import (
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/registry"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/storage"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/submission"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/template"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/upload"
	"github.com/gofiber/fiber/v2"
)

type Deps struct {
	Registry    *registry.Registry
	Templates   *storage.Templates
	Submissions *storage.Submissions
	Uploader    upload.Uploader
	// UploadDir is served under /uploads when set.
	UploadDir string
}

func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		// Photos and signatures travel inline as data URLs.
		BodyLimit: 100 * 1024 * 1024,
	})

	if deps.UploadDir != "" {
		app.Static("/uploads", deps.UploadDir, fiber.Static{
			Compress:  true,
			ByteRange: true,
			Browse:    false,
			MaxAge:    3600,
		})
	}

	templates := template.NewHandler(template.NewService(deps.Registry, deps.Templates, deps.Submissions))
	submissions := submission.NewHandler(submission.NewService(deps.Registry, deps.Templates, deps.Submissions, deps.Uploader))

	SetupRoutes(app, templates, submissions)

	return app
}
