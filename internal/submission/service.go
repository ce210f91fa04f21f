package submission

import (
	"context"
	"fmt"
	"strings"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/export"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/fields"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/form"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/models"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/registry"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/storage"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/upload"
)

// InvalidError carries the field errors that rejected a record.
type InvalidError struct {
	Errors []*fields.ValidationError
}

func (e *InvalidError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Message
	}
	return "invalid submission: " + strings.Join(msgs, "; ")
}

type CreateRequest struct {
	Name string         `json:"name"`
	Data map[string]any `json:"data"`
}

type UpdateRequest struct {
	Name *string        `json:"name"`
	Data map[string]any `json:"data"`
}

// Artifact is an exported file ready to send or upload.
type Artifact struct {
	Filename    string
	ContentType string
	Body        []byte
}

type UploadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Storage  string `json:"storage"`
}

type Service struct {
	registry    *registry.Registry
	templates   *storage.Templates
	submissions *storage.Submissions
	uploader    upload.Uploader
}

func NewService(reg *registry.Registry, templates *storage.Templates, submissions *storage.Submissions, uploader upload.Uploader) *Service {
	return &Service{registry: reg, templates: templates, submissions: submissions, uploader: uploader}
}

func (s *Service) ListByTemplate(ctx context.Context, templateID string) ([]models.SubmissionSummary, error) {
	if _, err := s.templates.Load(ctx, templateID); err != nil {
		return nil, err
	}
	return s.submissions.ListByTemplate(ctx, templateID)
}

func (s *Service) Get(ctx context.Context, id string) (*models.Submission, error) {
	return s.submissions.Load(ctx, id)
}

// Create runs data through a renderer of the template so only known,
// coerced values are stored, and rejects it when any field fails.
func (s *Service) Create(ctx context.Context, templateID string, req CreateRequest) (*models.Submission, error) {
	t, err := s.templates.Load(ctx, templateID)
	if err != nil {
		return nil, err
	}
	record, err := s.collect(t, nil, req.Data)
	if err != nil {
		return nil, err
	}
	return s.submissions.Save(ctx, &models.Submission{
		TemplateID: t.ID,
		Name:       submissionName(req.Name, t),
		Data:       record,
	})
}

// Update applies only the keys present in req.Data on top of the stored
// record.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*models.Submission, error) {
	sub, err := s.submissions.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	t, err := s.templates.Load(ctx, sub.TemplateID)
	if err != nil {
		return nil, err
	}
	record, err := s.collect(t, sub.Data, req.Data)
	if err != nil {
		return nil, err
	}
	sub.Data = record
	if req.Name != nil {
		sub.Name = *req.Name
	}
	return s.submissions.Save(ctx, sub)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.submissions.Delete(ctx, id)
}

// Export renders every submission of a template in the requested format.
func (s *Service) Export(ctx context.Context, templateID, format string) (*Artifact, error) {
	exp, err := export.ByFormat(format)
	if err != nil {
		return nil, err
	}
	t, err := s.templates.Load(ctx, templateID)
	if err != nil {
		return nil, err
	}
	list, err := s.submissions.ListByTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	records := make([]map[string]any, 0, len(list))
	for _, sum := range list {
		sub, err := s.submissions.Load(ctx, sum.ID)
		if err != nil {
			return nil, err
		}
		records = append(records, sub.Data)
	}
	body, err := export.Bytes(exp, export.ColumnsFor(t), records)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		Filename:    fileBase(t.Name) + exp.Extension(),
		ContentType: exp.ContentType(),
		Body:        body,
	}, nil
}

// Upload exports one submission and hands the file to the uploader.
func (s *Service) Upload(ctx context.Context, id, format, folder string) (*UploadResult, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("no uploader configured")
	}
	exp, err := export.ByFormat(format)
	if err != nil {
		return nil, err
	}
	sub, err := s.submissions.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	t, err := s.templates.Load(ctx, sub.TemplateID)
	if err != nil {
		return nil, err
	}
	body, err := export.Bytes(exp, export.ColumnsFor(t), []map[string]any{sub.Data})
	if err != nil {
		return nil, err
	}
	filename := fileBase(sub.Name) + exp.Extension()
	url, err := s.uploader.Upload(ctx, folder, filename, exp.ContentType(), body)
	if err != nil {
		return nil, err
	}
	return &UploadResult{URL: url, Filename: filename, Storage: s.uploader.Mode()}, nil
}

func (s *Service) collect(t *models.FormTemplate, stored, changes map[string]any) (map[string]any, error) {
	r, err := form.New(s.registry, t, stored)
	if err != nil {
		return nil, err
	}
	defer r.Destroy()

	r.SetData(changes)
	if res := r.Validate(); !res.IsValid {
		return nil, &InvalidError{Errors: res.Errors}
	}
	return r.Data(), nil
}

func submissionName(name string, t *models.FormTemplate) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return t.Name
}

func fileBase(name string) string {
	if base := registry.GenerateFieldName(name); base != "" {
		return base
	}
	return "submissions"
}
