package fields

import (
	"sync"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/models"
	"github.com/microcosm-cc/bluemonday"
)

var (
	htmlPolicyOnce sync.Once
	htmlPolicy     *bluemonday.Policy
)

func sanitizeHTML(s string) string {
	htmlPolicyOnce.Do(func() {
		htmlPolicy = bluemonday.UGCPolicy()
	})
	return htmlPolicy.Sanitize(s)
}

// LayoutField renders a section heading or an info block. It carries no
// value and never fails validation.
type LayoutField struct {
	base
}

func NewSectionField(def models.FieldDefinition, onChange ChangeFunc) *LayoutField {
	f := &LayoutField{}
	f.init(def, onChange)
	return f
}

func NewInfoField(def models.FieldDefinition, onChange ChangeFunc) *LayoutField {
	return NewSectionField(def, onChange)
}

func (f *LayoutField) Render() *Widget {
	f.mu.Lock()
	defer f.mu.Unlock()

	props := map[string]any{}
	switch f.def.Type {
	case models.FieldSection:
		if f.def.Description != "" {
			props["description"] = f.def.Description
		}
	case models.FieldInfo:
		if f.def.Style != "" {
			props["style"] = f.def.Style
		}
		if f.def.AllowHTML {
			props["html"] = sanitizeHTML(f.def.Content)
		} else {
			props["text"] = f.def.Content
		}
	}
	return f.mount(props)
}

func (f *LayoutField) Value() any                 { return nil }
func (f *LayoutField) SetValue(any)               {}
func (f *LayoutField) Validate() *ValidationError { return nil }
