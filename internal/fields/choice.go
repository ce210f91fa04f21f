package fields

import (
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/models"
)

// SelectField holds the chosen option value, "" when nothing is chosen.
// Values outside the option list are cleared.
type SelectField struct {
	base
	value string
}

func NewSelectField(def models.FieldDefinition, onChange ChangeFunc) *SelectField {
	f := &SelectField{}
	f.init(def, onChange)
	return f
}

func (f *SelectField) Render() *Widget {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := f.mount(f.commonProps())
	f.listen(w, EventInput, f.handleInput)
	f.reflect(f.value)
	return w
}

func (f *SelectField) handleInput(ev Event) error {
	f.mu.Lock()
	if f.destroyed {
		f.mu.Unlock()
		return ErrDetached
	}
	f.value = f.pick(ev.Value)
	v := f.value
	f.reflect(v)
	f.mu.Unlock()

	f.notify(v)
	return nil
}

func (f *SelectField) pick(v any) string {
	s, ok := toString(v)
	if !ok || !f.def.HasOption(s) {
		return ""
	}
	return s
}

func (f *SelectField) Value() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

func (f *SelectField) SetValue(v any) {
	f.mu.Lock()
	f.value = f.pick(v)
	f.reflect(f.value)
	f.mu.Unlock()
}

func (f *SelectField) Validate() *ValidationError {
	f.mu.Lock()
	v := f.value
	f.mu.Unlock()
	if v == "" {
		if f.def.Required {
			return f.requiredError()
		}
		return nil
	}
	if !f.def.HasOption(v) {
		return f.fail("has an invalid selection")
	}
	return nil
}

// RadioField holds the chosen option value, or nil when none is chosen.
type RadioField struct {
	base
	value *string
}

func NewRadioField(def models.FieldDefinition, onChange ChangeFunc) *RadioField {
	f := &RadioField{}
	f.init(def, onChange)
	return f
}

func (f *RadioField) Render() *Widget {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := f.mount(f.commonProps())
	f.listen(w, EventInput, f.handleInput)
	f.reflect(f.current())
	return w
}

func (f *RadioField) handleInput(ev Event) error {
	f.mu.Lock()
	if f.destroyed {
		f.mu.Unlock()
		return ErrDetached
	}
	f.assign(ev.Value)
	v := f.current()
	f.reflect(v)
	f.mu.Unlock()

	f.notify(v)
	return nil
}

// assign is the radio equivalent of checking the matching input. Caller
// holds f.mu.
func (f *RadioField) assign(v any) {
	s, ok := toString(v)
	if !ok || s == "" || !f.def.HasOption(s) {
		f.value = nil
		return
	}
	f.value = &s
}

func (f *RadioField) current() any {
	if f.value == nil {
		return nil
	}
	return *f.value
}

func (f *RadioField) Value() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current()
}

func (f *RadioField) SetValue(v any) {
	f.mu.Lock()
	f.assign(v)
	f.reflect(f.current())
	f.mu.Unlock()
}

func (f *RadioField) Validate() *ValidationError {
	f.mu.Lock()
	v := f.value
	f.mu.Unlock()
	if v == nil {
		if f.def.Required {
			return f.requiredError()
		}
		return nil
	}
	if !f.def.HasOption(*v) {
		return f.fail("has an invalid selection")
	}
	return nil
}

// CheckboxGroupField holds the checked option values in option order.
type CheckboxGroupField struct {
	base
	checked map[string]bool
}

func NewCheckboxGroupField(def models.FieldDefinition, onChange ChangeFunc) *CheckboxGroupField {
	f := &CheckboxGroupField{checked: map[string]bool{}}
	f.init(def, onChange)
	return f
}

func (f *CheckboxGroupField) Render() *Widget {
	f.mu.Lock()
	defer f.mu.Unlock()

	props := f.commonProps()
	if f.def.MinSelect != nil {
		props["minSelect"] = *f.def.MinSelect
	}
	if f.def.MaxSelect != nil {
		props["maxSelect"] = *f.def.MaxSelect
	}
	w := f.mount(props)
	f.listen(w, EventInput, f.handleInput)
	f.reflect(f.current())
	return w
}

func (f *CheckboxGroupField) handleInput(ev Event) error {
	f.mu.Lock()
	if f.destroyed {
		f.mu.Unlock()
		return ErrDetached
	}
	switch ev.Value.(type) {
	case []string, []any:
		f.replace(ev.Value)
	default:
		s, ok := toString(ev.Value)
		if !ok || !f.def.HasOption(s) {
			f.mu.Unlock()
			return nil
		}
		if ev.Checked {
			f.checked[s] = true
		} else {
			delete(f.checked, s)
		}
	}
	v := f.current()
	f.reflect(v)
	f.mu.Unlock()

	f.notify(v)
	return nil
}

// replace resets the selection to the known values in v. Caller holds f.mu.
func (f *CheckboxGroupField) replace(v any) {
	f.checked = map[string]bool{}
	for _, s := range toStrings(v) {
		if f.def.HasOption(s) {
			f.checked[s] = true
		}
	}
}

func (f *CheckboxGroupField) current() []string {
	out := []string{}
	for _, o := range f.def.Options {
		if f.checked[o.Value] {
			out = append(out, o.Value)
		}
	}
	return out
}

func (f *CheckboxGroupField) Value() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current()
}

func (f *CheckboxGroupField) SetValue(v any) {
	f.mu.Lock()
	f.replace(v)
	f.reflect(f.current())
	f.mu.Unlock()
}

func (f *CheckboxGroupField) Validate() *ValidationError {
	f.mu.Lock()
	n := len(f.current())
	f.mu.Unlock()

	if n == 0 && f.def.Required {
		return f.requiredError()
	}
	if f.def.MinSelect != nil && n < *f.def.MinSelect {
		return f.fail("requires at least %d %s", *f.def.MinSelect, plural(*f.def.MinSelect, "selection"))
	}
	if f.def.MaxSelect != nil && n > *f.def.MaxSelect {
		return f.fail("allows at most %d %s", *f.def.MaxSelect, plural(*f.def.MaxSelect, "selection"))
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
