// Package builder edits the structure of a form template: adding,
// removing, duplicating and reordering fields and editing their
// configuration.
package builder

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/models"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/registry"
	"github.com/google/uuid"
)

var ErrFieldNotFound = errors.New("field not found")

// ConfigError lists every configuration problem that blocked a save.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return "invalid form template: " + strings.Join(e.Problems, "; ")
}

// Saver persists a validated template and returns the stored snapshot.
type Saver interface {
	Save(ctx context.Context, t *models.FormTemplate) (*models.FormTemplate, error)
}

type Builder struct {
	registry *registry.Registry
	template *models.FormTemplate
}

// New starts an empty, unsaved draft.
func New(reg *registry.Registry) *Builder {
	return &Builder{
		registry: reg,
		template: &models.FormTemplate{Fields: []models.FieldDefinition{}},
	}
}

// FromTemplate edits a copy of t. Fields are put in display order and their
// order values renormalized.
func FromTemplate(reg *registry.Registry, t *models.FormTemplate) *Builder {
	b := &Builder{registry: reg, template: t.Clone()}
	b.template.Fields = b.template.SortedFields()
	if b.template.Fields == nil {
		b.template.Fields = []models.FieldDefinition{}
	}
	b.normalize()
	return b
}

// Template returns a copy of the current draft.
func (b *Builder) Template() *models.FormTemplate {
	return b.template.Clone()
}

func (b *Builder) Fields() []models.FieldDefinition {
	return b.template.Clone().Fields
}

func (b *Builder) SetName(name string) {
	b.template.Name = strings.TrimSpace(name)
}

func (b *Builder) SetDescription(description string) {
	b.template.Description = description
}

// AddField appends a new field of type t with its default configuration.
func (b *Builder) AddField(t models.FieldType) (models.FieldDefinition, error) {
	return b.InsertField(t, len(b.template.Fields))
}

// InsertField places a new field at index, clamped to the field list.
func (b *Builder) InsertField(t models.FieldType, index int) (models.FieldDefinition, error) {
	def, err := b.registry.DefaultFieldConfig(t, index)
	if err != nil {
		return models.FieldDefinition{}, err
	}
	if !t.IsLayout() {
		def.Name = b.uniqueName(def.Name, "")
	}
	index = clamp(index, 0, len(b.template.Fields))
	b.insert(index, def)
	b.normalize()
	return b.template.Fields[index].Clone(), nil
}

func (b *Builder) RemoveField(id string) error {
	i := b.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrFieldNotFound, id)
	}
	fs := b.template.Fields
	b.template.Fields = append(fs[:i:i], fs[i+1:]...)
	b.normalize()
	return nil
}

// DuplicateField inserts a copy right after the original with a new id
// and suffixed name and label.
func (b *Builder) DuplicateField(id string) (models.FieldDefinition, error) {
	i := b.indexOf(id)
	if i < 0 {
		return models.FieldDefinition{}, fmt.Errorf("%w: %s", ErrFieldNotFound, id)
	}
	dup := b.template.Fields[i].Clone()
	dup.ID = uuid.New().String()
	dup.Label = dup.Label + " (Copy)"
	if !dup.Type.IsLayout() {
		dup.Name = b.uniqueName(dup.Name+"_copy", "")
	}
	b.insert(i+1, dup)
	b.normalize()
	return b.template.Fields[i+1].Clone(), nil
}

// MoveField repositions id next to targetID: before it, or after it when
// after is set. Ids and names are unchanged.
func (b *Builder) MoveField(id, targetID string, after bool) error {
	from := b.indexOf(id)
	if from < 0 {
		return fmt.Errorf("%w: %s", ErrFieldNotFound, id)
	}
	if b.indexOf(targetID) < 0 {
		return fmt.Errorf("%w: %s", ErrFieldNotFound, targetID)
	}
	if id == targetID {
		return nil
	}

	fs := b.template.Fields
	moved := fs[from]
	fs = append(fs[:from:from], fs[from+1:]...)
	b.template.Fields = fs

	to := b.indexOf(targetID)
	if after {
		to++
	}
	b.insert(to, moved)
	b.normalize()
	return nil
}

// UpdateField applies edit to the field with the given id. The id, type
// and order cannot be changed this way.
func (b *Builder) UpdateField(id string, edit func(*models.FieldDefinition)) (models.FieldDefinition, error) {
	i := b.indexOf(id)
	if i < 0 {
		return models.FieldDefinition{}, fmt.Errorf("%w: %s", ErrFieldNotFound, id)
	}
	cur := b.template.Fields[i].Clone()
	edit(&cur)
	orig := b.template.Fields[i]
	cur.ID, cur.Type, cur.Order = orig.ID, orig.Type, orig.Order
	if cur.Type.IsLayout() {
		cur.Name = ""
		cur.Required = false
		cur.NameManuallySet = false
	}
	b.template.Fields[i] = cur
	return cur.Clone(), nil
}

// SetLabel changes the caption. Unless the name was set by hand it follows
// the label.
func (b *Builder) SetLabel(id, label string) (models.FieldDefinition, error) {
	return b.UpdateField(id, func(f *models.FieldDefinition) {
		f.Label = label
		if f.Type.IsLayout() || f.NameManuallySet {
			return
		}
		if slug := registry.GenerateFieldName(label); slug != "" {
			f.Name = b.uniqueName(slug, f.ID)
		}
	})
}

// RenameField pins a hand-written data key. An empty name hands naming
// back to the label.
func (b *Builder) RenameField(id, name string) (models.FieldDefinition, error) {
	name = strings.TrimSpace(name)
	return b.UpdateField(id, func(f *models.FieldDefinition) {
		if f.Type.IsLayout() {
			return
		}
		if name == "" {
			f.NameManuallySet = false
			if slug := registry.GenerateFieldName(f.Label); slug != "" {
				f.Name = b.uniqueName(slug, f.ID)
			}
			return
		}
		f.Name = name
		f.NameManuallySet = true
	})
}

// SetOptionLabels replaces the options of a choice field, deriving each
// value from its label.
func (b *Builder) SetOptionLabels(id string, labels []string) (models.FieldDefinition, error) {
	opts := make([]models.FieldOption, 0, len(labels))
	seen := map[string]int{}
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		v := registry.GenerateFieldName(l)
		if v == "" {
			v = "option"
		}
		seen[v]++
		if n := seen[v]; n > 1 {
			v = v + "_" + strconv.Itoa(n)
		}
		opts = append(opts, models.FieldOption{Value: v, Label: l})
	}
	return b.UpdateField(id, func(f *models.FieldDefinition) {
		f.Options = opts
	})
}

func (b *Builder) Validate() []string {
	return b.registry.ValidateTemplate(b.template)
}

// Save validates the draft and hands it to s. On any failure the draft is
// left exactly as it was; on success it becomes the saved snapshot.
func (b *Builder) Save(ctx context.Context, s Saver) (*models.FormTemplate, error) {
	if problems := b.Validate(); len(problems) > 0 {
		return nil, &ConfigError{Problems: problems}
	}
	saved, err := s.Save(ctx, b.template.Clone())
	if err != nil {
		return nil, err
	}
	b.template = saved.Clone()
	return saved, nil
}

func (b *Builder) indexOf(id string) int {
	for i, f := range b.template.Fields {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (b *Builder) insert(i int, def models.FieldDefinition) {
	fs := b.template.Fields
	fs = append(fs, models.FieldDefinition{})
	copy(fs[i+1:], fs[i:])
	fs[i] = def
	b.template.Fields = fs
}

// normalize rewrites order as 0..n-1 following slice position.
func (b *Builder) normalize() {
	for i := range b.template.Fields {
		b.template.Fields[i].Order = i
	}
}

// uniqueName returns name, or name_2, name_3... so that no field other than
// self uses it.
func (b *Builder) uniqueName(name, self string) string {
	taken := map[string]bool{}
	for _, f := range b.template.Fields {
		if f.ID != self && !f.Type.IsLayout() {
			taken[f.Name] = true
		}
	}
	if !taken[name] {
		return name
	}
	for n := 2; ; n++ {
		candidate := name + "_" + strconv.Itoa(n)
		if !taken[candidate] {
			return candidate
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
