package models

import (
	"time"

	"gorm.io/datatypes"
)

type Submission struct {
	ID         string            `json:"id"`
	TemplateID string            `json:"templateId"`
	Name       string            `json:"name"`
	Data       datatypes.JSONMap `json:"data"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

type SubmissionSummary struct {
	ID         string    `json:"id"`
	TemplateID string    `json:"templateId"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (s *Submission) Summary() SubmissionSummary {
	return SubmissionSummary{
		ID:         s.ID,
		TemplateID: s.TemplateID,
		Name:       s.Name,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}
