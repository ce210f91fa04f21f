package models

import (
	"sort"
	"time"
)

type FormTemplate struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Version     int               `json:"version"`
	Fields      []FieldDefinition `json:"fields"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type TemplateSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	FieldCount  int       `json:"fieldCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (t *FormTemplate) Clone() *FormTemplate {
	if t == nil {
		return nil
	}
	c := *t
	c.Fields = make([]FieldDefinition, len(t.Fields))
	for i, f := range t.Fields {
		c.Fields[i] = f.Clone()
	}
	return &c
}

func (t *FormTemplate) Summary() TemplateSummary {
	return TemplateSummary{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		FieldCount:  len(t.Fields),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// SortedFields returns the fields in display order. Ties keep their
// position in the slice.
func (t *FormTemplate) SortedFields() []FieldDefinition {
	out := append([]FieldDefinition(nil), t.Fields...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (t *FormTemplate) FieldByID(id string) (FieldDefinition, bool) {
	for _, f := range t.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return FieldDefinition{}, false
}
