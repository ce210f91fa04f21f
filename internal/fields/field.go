// Package fields implements the value contract shared by every form field
// type: render, get/set value, validate and destroy, plus change
// notification for user-driven input.
package fields

import (
	"fmt"
	"sync"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/models"
)

// ChangeFunc receives the field name and its new canonical value after
// every user-driven change.
type ChangeFunc func(name string, value any)

type Field interface {
	Definition() models.FieldDefinition
	IsLayout() bool

	// Render builds a fresh widget, detaching the previous one and
	// dropping its listeners.
	Render() *Widget
	Widget() *Widget

	Value() any
	SetValue(v any)
	Validate() *ValidationError

	Focus() bool
	Blur()
	MarkInvalid(msg string)
	ClearInvalid()

	// Destroy releases every listener and detaches the widget. Safe to call
	// more than once.
	Destroy()
}

type ValidationError struct {
	Field   string `json:"field"`
	Label   string `json:"label"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// base carries the state every field type shares. mu guards the concrete
// type's value as well; it is never held while calling onChange.
type base struct {
	mu        sync.Mutex
	def       models.FieldDefinition
	onChange  ChangeFunc
	widget    *Widget
	offs      []func()
	destroyed bool
}

func (b *base) init(def models.FieldDefinition, onChange ChangeFunc) {
	b.def = def.Clone()
	b.onChange = onChange
}

func (b *base) Definition() models.FieldDefinition {
	return b.def.Clone()
}

func (b *base) IsLayout() bool {
	return b.def.Type.IsLayout()
}

func (b *base) Widget() *Widget {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.widget
}

// mount replaces the current widget with a new one. Caller holds b.mu.
func (b *base) mount(props map[string]any) *Widget {
	b.teardown()
	w := newWidget(b.def, props)
	if b.destroyed {
		w.detach()
	}
	b.widget = w
	return w
}

// listen registers h on w unless the field is destroyed. Caller holds b.mu.
func (b *base) listen(w *Widget, t EventType, h Handler) {
	if b.destroyed {
		return
	}
	b.offs = append(b.offs, w.On(t, h))
}

// teardown drops listeners and detaches the widget. Caller holds b.mu.
func (b *base) teardown() {
	for _, off := range b.offs {
		off()
	}
	b.offs = nil
	if b.widget != nil {
		b.widget.detach()
	}
}

func (b *base) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed {
		return
	}
	b.destroyed = true
	b.teardown()
}

func (b *base) Focus() bool {
	b.mu.Lock()
	w := b.widget
	b.mu.Unlock()
	if w == nil {
		return false
	}
	return w.setFocused(true)
}

func (b *base) Blur() {
	if w := b.Widget(); w != nil {
		w.setFocused(false)
	}
}

func (b *base) MarkInvalid(msg string) {
	if w := b.Widget(); w != nil {
		w.setInvalid(true, msg)
	}
}

func (b *base) ClearInvalid() {
	if w := b.Widget(); w != nil {
		w.setInvalid(false, "")
	}
}

// reflect pushes v into the current widget. Caller holds b.mu.
func (b *base) reflect(v any) {
	if b.widget != nil {
		b.widget.setValue(v)
	}
}

func (b *base) alert(msg string) {
	if w := b.Widget(); w != nil {
		w.setAlert(msg)
	}
}

func (b *base) notify(v any) {
	if b.onChange != nil && b.def.Name != "" {
		b.onChange(b.def.Name, v)
	}
}

func (b *base) fail(format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:   b.def.Name,
		Label:   b.def.Label,
		Message: b.def.Label + " " + fmt.Sprintf(format, args...),
	}
}

func (b *base) requiredError() *ValidationError {
	return b.fail("is required")
}

// commonProps are the presentation attributes every input type shares.
func (b *base) commonProps() map[string]any {
	props := map[string]any{}
	if b.def.Placeholder != "" {
		props["placeholder"] = b.def.Placeholder
	}
	if b.def.HelpText != "" {
		props["helpText"] = b.def.HelpText
	}
	return props
}
