package fields

import (
	"strconv"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/models"
)

// NumberField holds a float64, or nil when empty or unparseable.
type NumberField struct {
	base
	value *float64
}

func NewNumberField(def models.FieldDefinition, onChange ChangeFunc) *NumberField {
	f := &NumberField{}
	f.init(def, onChange)
	return f
}

func (f *NumberField) Render() *Widget {
	f.mu.Lock()
	defer f.mu.Unlock()

	props := f.commonProps()
	if f.def.Min != nil {
		props["min"] = *f.def.Min
	}
	if f.def.Max != nil {
		props["max"] = *f.def.Max
	}
	if f.def.Step != nil {
		props["step"] = *f.def.Step
	}

	w := f.mount(props)
	f.listen(w, EventInput, f.handleInput)
	f.reflect(f.current())
	return w
}

func (f *NumberField) handleInput(ev Event) error {
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

// assign parses v into the field. Caller holds f.mu.
func (f *NumberField) assign(v any) {
	n, ok := toFloat(v)
	if !ok {
		f.value = nil
		return
	}
	f.value = &n
}

// current returns the canonical value. Caller holds f.mu.
func (f *NumberField) current() any {
	if f.value == nil {
		return nil
	}
	return *f.value
}

func (f *NumberField) Value() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current()
}

func (f *NumberField) SetValue(v any) {
	f.mu.Lock()
	f.assign(v)
	f.reflect(f.current())
	f.mu.Unlock()
}

func (f *NumberField) Validate() *ValidationError {
	f.mu.Lock()
	v := f.value
	f.mu.Unlock()

	if v == nil {
		if f.def.Required {
			return f.requiredError()
		}
		return nil
	}
	if f.def.Min != nil && *v < *f.def.Min {
		return f.fail("must be at least %s", formatNumber(*f.def.Min))
	}
	if f.def.Max != nil && *v > *f.def.Max {
		return f.fail("must be at most %s", formatNumber(*f.def.Max))
	}
	return nil
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
