package template

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/builder"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/form"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/models"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/registry"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/storage"
	"github.com/google/uuid"
)

type FieldTypeInfo struct {
	Type     models.FieldType  `json:"type"`
	Label    string            `json:"label"`
	Icon     string            `json:"icon"`
	Category registry.Category `json:"category"`
}

type TemplateRequest struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Fields      []models.FieldDefinition `json:"fields"`
}

type UpdateTemplateRequest struct {
	Name        *string                  `json:"name"`
	Description *string                  `json:"description"`
	Fields      []models.FieldDefinition `json:"fields"`
}

type AddFieldRequest struct {
	Type  models.FieldType `json:"type"`
	Label string           `json:"label"`
	Index *int             `json:"index"`
}

type MoveFieldRequest struct {
	TargetID string `json:"targetId"`
	After    bool   `json:"after"`
}

// FieldPatch edits one field. Config replaces the whole configuration;
// label and name follow the builder's naming rules.
type FieldPatch struct {
	Config       *models.FieldDefinition `json:"config"`
	Label        *string                 `json:"label"`
	Name         *string                 `json:"name"`
	Required     *bool                   `json:"required"`
	OptionLabels []string                `json:"optionLabels"`
}

type FieldResult struct {
	Template *models.FormTemplate    `json:"template"`
	Field    *models.FieldDefinition `json:"field,omitempty"`
}

type RenderView struct {
	Template *models.FormTemplate `json:"template"`
	Widgets  json.RawMessage      `json:"widgets"`
	Data     map[string]any       `json:"data"`
	Result   *form.Result         `json:"validation,omitempty"`
}

type Service struct {
	registry    *registry.Registry
	templates   *storage.Templates
	submissions *storage.Submissions
}

func NewService(reg *registry.Registry, templates *storage.Templates, submissions *storage.Submissions) *Service {
	return &Service{registry: reg, templates: templates, submissions: submissions}
}

func (s *Service) FieldTypes() []FieldTypeInfo {
	entries := s.registry.Types()
	out := make([]FieldTypeInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, FieldTypeInfo{Type: e.Type, Label: e.Label, Icon: e.Icon, Category: e.Category})
	}
	return out
}

// List returns the template index. A non-empty query keeps only templates
// whose name or description contains it, ignoring case.
func (s *Service) List(ctx context.Context, query string) ([]models.TemplateSummary, error) {
	list, err := s.templates.List(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return list, nil
	}
	matched := []models.TemplateSummary{}
	for _, sum := range list {
		if strings.Contains(strings.ToLower(sum.Name), query) ||
			strings.Contains(strings.ToLower(sum.Description), query) {
			matched = append(matched, sum)
		}
	}
	return matched, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.FormTemplate, error) {
	return s.templates.Load(ctx, id)
}

func (s *Service) Create(ctx context.Context, req TemplateRequest) (*models.FormTemplate, error) {
	b := builder.FromTemplate(s.registry, &models.FormTemplate{
		Name:        req.Name,
		Description: req.Description,
		Fields:      prepare(req.Fields),
	})
	return b.Save(ctx, s.templates)
}

// Update replaces whichever of name, description and fields the request
// carries and saves the next version.
func (s *Service) Update(ctx context.Context, id string, req UpdateTemplateRequest) (*models.FormTemplate, error) {
	t, err := s.templates.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Fields != nil {
		t.Fields = prepare(req.Fields)
	}
	return builder.FromTemplate(s.registry, t).Save(ctx, s.templates)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.templates.Delete(ctx, id)
}

func (s *Service) AddField(ctx context.Context, id string, req AddFieldRequest) (*FieldResult, error) {
	return s.edit(ctx, id, func(b *builder.Builder) (*models.FieldDefinition, error) {
		index := len(b.Fields())
		if req.Index != nil {
			index = *req.Index
		}
		def, err := b.InsertField(req.Type, index)
		if err != nil {
			return nil, err
		}
		if req.Label != "" {
			def, err = b.SetLabel(def.ID, req.Label)
			if err != nil {
				return nil, err
			}
		}
		return &def, nil
	})
}

func (s *Service) DuplicateField(ctx context.Context, id, fieldID string) (*FieldResult, error) {
	return s.edit(ctx, id, func(b *builder.Builder) (*models.FieldDefinition, error) {
		def, err := b.DuplicateField(fieldID)
		if err != nil {
			return nil, err
		}
		return &def, nil
	})
}

func (s *Service) MoveField(ctx context.Context, id, fieldID string, req MoveFieldRequest) (*FieldResult, error) {
	return s.edit(ctx, id, func(b *builder.Builder) (*models.FieldDefinition, error) {
		return nil, b.MoveField(fieldID, req.TargetID, req.After)
	})
}

func (s *Service) UpdateField(ctx context.Context, id, fieldID string, patch FieldPatch) (*FieldResult, error) {
	return s.edit(ctx, id, func(b *builder.Builder) (*models.FieldDefinition, error) {
		var (
			def models.FieldDefinition
			err error
		)
		if patch.Config != nil {
			cfg := patch.Config.Clone()
			def, err = b.UpdateField(fieldID, func(f *models.FieldDefinition) {
				*f = cfg
			})
			if err != nil {
				return nil, err
			}
		}
		if patch.Required != nil {
			if def, err = b.UpdateField(fieldID, func(f *models.FieldDefinition) {
				f.Required = *patch.Required
			}); err != nil {
				return nil, err
			}
		}
		if patch.OptionLabels != nil {
			if def, err = b.SetOptionLabels(fieldID, patch.OptionLabels); err != nil {
				return nil, err
			}
		}
		if patch.Label != nil {
			if def, err = b.SetLabel(fieldID, *patch.Label); err != nil {
				return nil, err
			}
		}
		if patch.Name != nil {
			if def, err = b.RenameField(fieldID, *patch.Name); err != nil {
				return nil, err
			}
		}
		if def.ID == "" {
			// Empty patch; still report the current field.
			if cur, ok := b.Template().FieldByID(fieldID); ok {
				def = cur
			} else {
				return nil, fmt.Errorf("%w: %s", builder.ErrFieldNotFound, fieldID)
			}
		}
		return &def, nil
	})
}

func (s *Service) RemoveField(ctx context.Context, id, fieldID string) (*FieldResult, error) {
	return s.edit(ctx, id, func(b *builder.Builder) (*models.FieldDefinition, error) {
		return nil, b.RemoveField(fieldID)
	})
}

// Preview validates and renders a draft that has not been saved.
func (s *Service) Preview(req TemplateRequest, data map[string]any) (*RenderView, []string, error) {
	t := &models.FormTemplate{Name: req.Name, Description: req.Description, Fields: prepare(req.Fields)}
	b := builder.FromTemplate(s.registry, t)
	if problems := b.Validate(); len(problems) > 0 {
		return nil, problems, nil
	}
	view, err := s.render(b.Template(), data, true)
	return view, nil, err
}

// Render loads a saved template, optionally pre-filled from one of its
// submissions.
func (s *Service) Render(ctx context.Context, id, submissionID string) (*RenderView, error) {
	t, err := s.templates.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if submissionID != "" {
		sub, err := s.submissions.Load(ctx, submissionID)
		if err != nil {
			return nil, err
		}
		if sub.TemplateID != t.ID {
			return nil, fmt.Errorf("submission %s of template %s: %w", submissionID, id, storage.ErrNotFound)
		}
		data = sub.Data
	}
	return s.render(t, data, false)
}

func (s *Service) render(t *models.FormTemplate, data map[string]any, validate bool) (*RenderView, error) {
	r, err := form.New(s.registry, t, data)
	if err != nil {
		return nil, err
	}
	defer r.Destroy()

	view := &RenderView{Template: r.Template()}
	if validate {
		res := r.Validate()
		view.Result = &res
	}
	view.Data = r.Data()
	if view.Widgets, err = json.Marshal(r.Surface()); err != nil {
		return nil, fmt.Errorf("failed to encode widgets: %w", err)
	}
	return view, nil
}

// edit loads a template into a builder, applies fn and saves the result.
// Nothing is written when fn or validation fails.
func (s *Service) edit(ctx context.Context, id string, fn func(*builder.Builder) (*models.FieldDefinition, error)) (*FieldResult, error) {
	t, err := s.templates.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	b := builder.FromTemplate(s.registry, t)
	def, err := fn(b)
	if err != nil {
		return nil, err
	}
	saved, err := b.Save(ctx, s.templates)
	if err != nil {
		return nil, err
	}
	res := &FieldResult{Template: saved}
	if def != nil {
		if f, ok := saved.FieldByID(def.ID); ok {
			res.Field = &f
		}
	}
	return res, nil
}

// prepare fills ids and label-derived names on client-supplied fields.
// Colliding names are left for validation to report.
func prepare(defs []models.FieldDefinition) []models.FieldDefinition {
	out := make([]models.FieldDefinition, len(defs))
	for i, d := range defs {
		d = d.Clone()
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		if !d.Type.IsLayout() && d.Name == "" {
			d.Name = registry.GenerateFieldName(d.Label)
			d.NameManuallySet = false
		}
		out[i] = d
	}
	return out
}
