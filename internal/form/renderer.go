// Package form turns a saved template into live field instances and
// aggregates their values into a flat data record.
package form

import (
	"fmt"
	"sync"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/fields"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/models"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/registry"
)

// ValueChangeFunc is called after every user-driven change with the
// changed field, its value and a snapshot of the whole record. Hosts decide
// whether and how to debounce persistence.
type ValueChangeFunc func(name string, value any, record map[string]any)

type Option func(*Renderer)

func WithValueChange(fn ValueChangeFunc) Option {
	return func(r *Renderer) {
		r.onValueChange = fn
	}
}

type Result struct {
	IsValid bool                      `json:"isValid"`
	Errors  []*fields.ValidationError `json:"errors"`
}

type Renderer struct {
	template      *models.FormTemplate
	onValueChange ValueChangeFunc

	mu        sync.Mutex
	fields    []fields.Field
	byID      map[string]fields.Field
	widgets   []*fields.Widget
	destroyed bool
}

// New instantiates and renders every field of t in display order, then
// applies initial. A field type missing from reg fails construction.
func New(reg *registry.Registry, t *models.FormTemplate, initial map[string]any, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		template: t.Clone(),
		byID:     map[string]fields.Field{},
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, def := range r.template.SortedFields() {
		f, err := reg.CreateField(def, r.handleChange)
		if err != nil {
			r.Destroy()
			return nil, fmt.Errorf("failed to render field %q: %w", def.Label, err)
		}
		r.fields = append(r.fields, f)
		r.byID[def.ID] = f
		r.widgets = append(r.widgets, f.Render())
	}

	if initial != nil {
		r.SetData(initial)
	}
	return r, nil
}

func (r *Renderer) handleChange(name string, value any) {
	if r.onValueChange == nil {
		return
	}
	r.onValueChange(name, value, r.Data())
}

func (r *Renderer) Template() *models.FormTemplate {
	return r.template.Clone()
}

// Fields returns the instances in render order.
func (r *Renderer) Fields() []fields.Field {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]fields.Field(nil), r.fields...)
}

func (r *Renderer) Field(id string) (fields.Field, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.byID[id]
	return f, ok
}

// FieldByName returns the last field in render order using name.
func (r *Renderer) FieldByName(name string) (fields.Field, bool) {
	var found fields.Field
	for _, f := range r.Fields() {
		if !f.IsLayout() && f.Definition().Name == name {
			found = f
		}
	}
	return found, found != nil
}

// Surface returns the rendered widgets in display order.
func (r *Renderer) Surface() []*fields.Widget {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*fields.Widget(nil), r.widgets...)
}

// Data builds the flat record from every non-layout field. When two fields
// share a name the later one in render order wins.
func (r *Renderer) Data() map[string]any {
	record := map[string]any{}
	for _, f := range r.Fields() {
		if f.IsLayout() {
			continue
		}
		if name := f.Definition().Name; name != "" {
			record[name] = f.Value()
		}
	}
	return record
}

// SetData assigns the values present in record and leaves every other
// field untouched. It fires no change notifications.
func (r *Renderer) SetData(record map[string]any) {
	for _, f := range r.Fields() {
		if f.IsLayout() {
			continue
		}
		if v, ok := record[f.Definition().Name]; ok {
			f.SetValue(v)
		}
	}
}

// Validate checks every field, marks the failing ones invalid and clears
// the marking on those that now pass.
func (r *Renderer) Validate() Result {
	res := Result{IsValid: true, Errors: []*fields.ValidationError{}}
	for _, f := range r.Fields() {
		if err := f.Validate(); err != nil {
			res.IsValid = false
			res.Errors = append(res.Errors, err)
			f.MarkInvalid(err.Message)
			continue
		}
		f.ClearInvalid()
	}
	return res
}

// FocusFirstInvalid focuses the first failing field in render order, blurs
// the rest and returns it. Focus is left alone when every field is valid.
func (r *Renderer) FocusFirstInvalid() fields.Field {
	all := r.Fields()
	var first fields.Field
	for _, f := range all {
		if f.Validate() != nil {
			first = f
			break
		}
	}
	if first == nil {
		return nil
	}
	for _, f := range all {
		if f != first {
			f.Blur()
		}
	}
	first.Focus()
	return first
}

// Clear resets every field to its empty value and drops invalid markings.
func (r *Renderer) Clear() {
	for _, f := range r.Fields() {
		f.SetValue(nil)
		f.ClearInvalid()
	}
}

// Settle waits for background work such as photo reads to finish.
func (r *Renderer) Settle() {
	for _, f := range r.Fields() {
		if s, ok := f.(interface{ Settle() }); ok {
			s.Settle()
		}
	}
}

func (r *Renderer) Destroy() {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return
	}
	r.destroyed = true
	fs := r.fields
	r.mu.Unlock()

	for _, f := range fs {
		f.Destroy()
	}
}

func (r *Renderer) Destroyed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroyed
}
