package template

import (
	"errors"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/builder"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/registry"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/response"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type PreviewRequest struct {
	TemplateRequest
	Data map[string]any `json:"data"`
}

func (h *Handler) FieldTypesHandler(c *fiber.Ctx) error {
	return response.Success(c, h.service.FieldTypes(), "Field types retrieved")
}

func (h *Handler) ListTemplatesHandler(c *fiber.Ctx) error {
	list, err := h.service.List(c.UserContext(), c.Query("q"))
	if err != nil {
		return response.StorageError(c, err, "Templates")
	}
	return response.Success(c, list, "Templates retrieved")
}

func (h *Handler) GetTemplateHandler(c *fiber.Ctx) error {
	t, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.StorageError(c, err, "Template")
	}
	return response.Success(c, t, "Template retrieved")
}

func (h *Handler) CreateTemplateHandler(c *fiber.Ctx) error {
	var body TemplateRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	t, err := h.service.Create(c.UserContext(), body)
	if err != nil {
		return editError(c, err)
	}
	return response.Created(c, t, "Template created successfully")
}

func (h *Handler) UpdateTemplateHandler(c *fiber.Ctx) error {
	var body UpdateTemplateRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	t, err := h.service.Update(c.UserContext(), c.Params("id"), body)
	if err != nil {
		return editError(c, err)
	}
	return response.Success(c, t, "Template updated successfully")
}

func (h *Handler) DeleteTemplateHandler(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return response.StorageError(c, err, "Template")
	}
	return response.Success(c, nil, "Template and its submissions deleted")
}

func (h *Handler) AddFieldHandler(c *fiber.Ctx) error {
	var body AddFieldRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	if body.Type == "" {
		return response.ValidationError(c, map[string]string{
			"type": "type is required",
		})
	}

	res, err := h.service.AddField(c.UserContext(), c.Params("id"), body)
	if err != nil {
		return editError(c, err)
	}
	return response.Created(c, res, "Field added successfully")
}

func (h *Handler) DuplicateFieldHandler(c *fiber.Ctx) error {
	res, err := h.service.DuplicateField(c.UserContext(), c.Params("id"), c.Params("field_id"))
	if err != nil {
		return editError(c, err)
	}
	return response.Created(c, res, "Field duplicated successfully")
}

func (h *Handler) MoveFieldHandler(c *fiber.Ctx) error {
	var body MoveFieldRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	if body.TargetID == "" {
		return response.ValidationError(c, map[string]string{
			"targetId": "targetId is required",
		})
	}

	res, err := h.service.MoveField(c.UserContext(), c.Params("id"), c.Params("field_id"), body)
	if err != nil {
		return editError(c, err)
	}
	return response.Success(c, res, "Field moved successfully")
}

func (h *Handler) UpdateFieldHandler(c *fiber.Ctx) error {
	var body FieldPatch
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	res, err := h.service.UpdateField(c.UserContext(), c.Params("id"), c.Params("field_id"), body)
	if err != nil {
		return editError(c, err)
	}
	return response.Success(c, res, "Field updated successfully")
}

func (h *Handler) DeleteFieldHandler(c *fiber.Ctx) error {
	res, err := h.service.RemoveField(c.UserContext(), c.Params("id"), c.Params("field_id"))
	if err != nil {
		return editError(c, err)
	}
	return response.Success(c, res, "Field deleted successfully")
}

func (h *Handler) PreviewHandler(c *fiber.Ctx) error {
	var body PreviewRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	view, problems, err := h.service.Preview(body.TemplateRequest, body.Data)
	if len(problems) > 0 {
		return response.ValidationError(c, problems)
	}
	if err != nil {
		return editError(c, err)
	}
	return response.Success(c, view, "Preview rendered")
}

func (h *Handler) RenderHandler(c *fiber.Ctx) error {
	view, err := h.service.Render(c.UserContext(), c.Params("id"), c.Query("submission"))
	if err != nil {
		return editError(c, err)
	}
	return response.Success(c, view, "Form rendered")
}

func editError(c *fiber.Ctx, err error) error {
	var cfgErr *builder.ConfigError
	switch {
	case errors.As(err, &cfgErr):
		return response.ValidationError(c, cfgErr.Problems)
	case errors.Is(err, builder.ErrFieldNotFound):
		return response.NotFound(c, "Field")
	case errors.Is(err, registry.ErrUnknownFieldType):
		return response.BadRequest(c, err.Error(), nil)
	}
	return response.StorageError(c, err, "Template")
}
