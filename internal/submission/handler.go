package submission

import (
	"errors"
	"fmt"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/export"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/registry"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/response"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/upload"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListSubmissionsHandler(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 50)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 50
	}

	list, err := h.service.ListByTemplate(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.StorageError(c, err, "Template")
	}

	total := len(list)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	meta := response.CalculateMeta(page, limit, int64(total))
	return response.SuccessWithMeta(c, list[start:end], meta, "Submissions retrieved")
}

func (h *Handler) CreateSubmissionHandler(c *fiber.Ctx) error {
	var body CreateRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	sub, err := h.service.Create(c.UserContext(), c.Params("id"), body)
	if err != nil {
		return submissionError(c, err, "Template")
	}
	return response.Created(c, sub, "Submission saved successfully")
}

func (h *Handler) GetSubmissionHandler(c *fiber.Ctx) error {
	sub, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.StorageError(c, err, "Submission")
	}
	return response.Success(c, sub, "Submission retrieved")
}

func (h *Handler) UpdateSubmissionHandler(c *fiber.Ctx) error {
	var body UpdateRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	sub, err := h.service.Update(c.UserContext(), c.Params("id"), body)
	if err != nil {
		return submissionError(c, err, "Submission")
	}
	return response.Success(c, sub, "Submission updated successfully")
}

func (h *Handler) DeleteSubmissionHandler(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return response.StorageError(c, err, "Submission")
	}
	return response.Success(c, nil, "Submission deleted")
}

func (h *Handler) ExportHandler(c *fiber.Ctx) error {
	art, err := h.service.Export(c.UserContext(), c.Params("id"), c.Query("format", "json"))
	if err != nil {
		return submissionError(c, err, "Template")
	}

	c.Set("Content-Type", art.ContentType)
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", art.Filename))
	return c.Send(art.Body)
}

func (h *Handler) UploadHandler(c *fiber.Ctx) error {
	res, err := h.service.Upload(c.UserContext(), c.Params("id"), c.Query("format", "csv"), c.Query("folder"))
	if err != nil {
		return submissionError(c, err, "Submission")
	}
	return response.Created(c, res, "Submission uploaded successfully")
}

func submissionError(c *fiber.Ctx, err error, resource string) error {
	var invalid *InvalidError
	switch {
	case errors.As(err, &invalid):
		return response.ValidationError(c, invalid.Errors)
	case errors.Is(err, export.ErrUnknownFormat):
		return response.BadRequest(c, err.Error(), nil)
	case errors.Is(err, registry.ErrUnknownFieldType), errors.Is(err, upload.ErrInvalidFolder):
		return response.BadRequest(c, err.Error(), nil)
	}
	return response.StorageError(c, err, resource)
}
