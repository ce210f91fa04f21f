package fields

import (
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/models"
)

// ToggleField holds true/false once touched and nil before. A required
// toggle only passes when switched on.
type ToggleField struct {
	base
	value *bool
}

func NewToggleField(def models.FieldDefinition, onChange ChangeFunc) *ToggleField {
	f := &ToggleField{}
	f.init(def, onChange)
	return f
}

func (f *ToggleField) Render() *Widget {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := f.mount(f.commonProps())
	f.listen(w, EventInput, f.handleInput)
	f.reflect(f.current())
	return w
}

func (f *ToggleField) handleInput(ev Event) error {
	f.mu.Lock()
	if f.destroyed {
		f.mu.Unlock()
		return ErrDetached
	}
	if ev.Value == nil {
		on := ev.Checked
		f.value = &on
	} else {
		f.assign(ev.Value)
	}
	v := f.current()
	f.reflect(v)
	f.mu.Unlock()

	f.notify(v)
	return nil
}

func (f *ToggleField) assign(v any) {
	b, ok := toBool(v)
	if !ok {
		f.value = nil
		return
	}
	f.value = &b
}

func (f *ToggleField) current() any {
	if f.value == nil {
		return nil
	}
	return *f.value
}

func (f *ToggleField) Value() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current()
}

func (f *ToggleField) SetValue(v any) {
	f.mu.Lock()
	f.assign(v)
	f.reflect(f.current())
	f.mu.Unlock()
}

func (f *ToggleField) Validate() *ValidationError {
	f.mu.Lock()
	v := f.value
	f.mu.Unlock()
	if f.def.Required && (v == nil || !*v) {
		return f.requiredError()
	}
	return nil
}
