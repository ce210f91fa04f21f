// Package registry maps field type tags to their implementation, palette
// metadata and default configuration.
package registry

import (
	"errors"
	"fmt"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/fields"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/models"
	"github.com/google/uuid"
)

type Category string

const (
	CategoryBasic  Category = "basic"
	CategoryChoice Category = "choice"
	CategoryMedia  Category = "media"
	CategoryLayout Category = "layout"
)

var categoryOrder = []Category{CategoryBasic, CategoryChoice, CategoryMedia, CategoryLayout}

var ErrUnknownFieldType = errors.New("unknown field type")

type Constructor func(def models.FieldDefinition, onChange fields.ChangeFunc) fields.Field

type Entry struct {
	Type        models.FieldType
	Constructor Constructor
	Label       string
	Icon        string
	Category    Category
	// Defaults fills type-specific configuration on a new definition.
	Defaults func(def *models.FieldDefinition)
}

// Registry is read-only once constructed and safe for concurrent use.
type Registry struct {
	entries map[models.FieldType]Entry
	order   []models.FieldType
}

func New(entries ...Entry) *Registry {
	r := &Registry{entries: make(map[models.FieldType]Entry, len(entries))}
	for _, e := range entries {
		if _, dup := r.entries[e.Type]; !dup {
			r.order = append(r.order, e.Type)
		}
		r.entries[e.Type] = e
	}
	return r
}

func (r *Registry) Lookup(t models.FieldType) (Entry, bool) {
	e, ok := r.entries[t]
	return e, ok
}

// Types lists registered tags grouped by category, registration order
// within a category.
func (r *Registry) Types() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, c := range categoryOrder {
		for _, t := range r.order {
			if e := r.entries[t]; e.Category == c {
				out = append(out, e)
			}
		}
	}
	for _, t := range r.order {
		e := r.entries[t]
		if !knownCategory(e.Category) {
			out = append(out, e)
		}
	}
	return out
}

func knownCategory(c Category) bool {
	for _, k := range categoryOrder {
		if k == c {
			return true
		}
	}
	return false
}

func (r *Registry) CreateField(def models.FieldDefinition, onChange fields.ChangeFunc) (fields.Field, error) {
	e, ok := r.entries[def.Type]
	if !ok || e.Constructor == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFieldType, def.Type)
	}
	return e.Constructor(def, onChange), nil
}

// DefaultFieldConfig builds a new definition of type t at position order
// with a fresh id and, for input types, a fresh placeholder name.
func (r *Registry) DefaultFieldConfig(t models.FieldType, order int) (models.FieldDefinition, error) {
	e, ok := r.entries[t]
	if !ok {
		return models.FieldDefinition{}, fmt.Errorf("%w: %q", ErrUnknownFieldType, t)
	}
	id := uuid.New().String()
	def := models.FieldDefinition{
		ID:    id,
		Type:  t,
		Label: e.Label,
		Order: order,
	}
	if !t.IsLayout() {
		def.Name = "field_" + id[:8]
	}
	if e.Defaults != nil {
		e.Defaults(&def)
	}
	return def, nil
}
