package fields

import (
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/models"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// TextField backs the free-text types: text, textarea, date and time.
// Its canonical value is a string, empty when nothing was entered.
type TextField struct {
	base
	value string
}

func NewTextField(def models.FieldDefinition, onChange ChangeFunc) *TextField {
	f := &TextField{}
	f.init(def, onChange)
	return f
}

func (f *TextField) Render() *Widget {
	f.mu.Lock()
	defer f.mu.Unlock()

	props := f.commonProps()
	switch f.def.Type {
	case models.FieldTextarea:
		if f.def.Rows > 0 {
			props["rows"] = f.def.Rows
		}
	case models.FieldDate, models.FieldTime:
		if f.def.Earliest != "" {
			props["min"] = f.def.Earliest
		}
		if f.def.Latest != "" {
			props["max"] = f.def.Latest
		}
	}
	if f.def.MaxLength != nil {
		props["maxLength"] = *f.def.MaxLength
	}

	w := f.mount(props)
	f.listen(w, EventInput, f.handleInput)
	f.reflect(f.value)
	return w
}

func (f *TextField) handleInput(ev Event) error {
	s, ok := toString(ev.Value)
	if !ok {
		return nil
	}
	f.mu.Lock()
	if f.destroyed {
		f.mu.Unlock()
		return ErrDetached
	}
	f.value = s
	f.reflect(s)
	f.mu.Unlock()

	f.notify(s)
	return nil
}

func (f *TextField) Value() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

func (f *TextField) SetValue(v any) {
	s, ok := toString(v)
	if !ok {
		s = ""
	}
	if t, isTime := v.(time.Time); isTime {
		switch f.def.Type {
		case models.FieldDate:
			s = t.Format(dateLayout)
		case models.FieldTime:
			s = t.Format(timeLayout)
		}
	}
	f.mu.Lock()
	f.value = s
	f.reflect(s)
	f.mu.Unlock()
}

func (f *TextField) Validate() *ValidationError {
	f.mu.Lock()
	s := f.value
	f.mu.Unlock()

	if s == "" {
		if f.def.Required {
			return f.requiredError()
		}
		return nil
	}

	switch f.def.Type {
	case models.FieldDate:
		return f.validateBounds(s, dateLayout, "a valid date (YYYY-MM-DD)")
	case models.FieldTime:
		return f.validateBounds(s, timeLayout, "a valid time (HH:MM)")
	}

	n := utf8.RuneCountInString(s)
	if f.def.MinLength != nil && n < *f.def.MinLength {
		return f.fail("must be at least %d characters", *f.def.MinLength)
	}
	if f.def.MaxLength != nil && n > *f.def.MaxLength {
		return f.fail("must not exceed %d characters", *f.def.MaxLength)
	}
	if f.def.Pattern != "" {
		re, err := regexp.Compile(f.def.Pattern)
		if err == nil && !re.MatchString(s) {
			return f.fail("does not match the required format")
		}
	}
	return nil
}

func (f *TextField) validateBounds(s, layout, what string) *ValidationError {
	v, err := time.Parse(layout, s)
	if err != nil {
		return f.fail("must be %s", what)
	}
	if f.def.Earliest != "" {
		if lo, err := time.Parse(layout, f.def.Earliest); err == nil && v.Before(lo) {
			return f.fail("must not be before %s", f.def.Earliest)
		}
	}
	if f.def.Latest != "" {
		if hi, err := time.Parse(layout, f.def.Latest); err == nil && v.After(hi) {
			return f.fail("must not be after %s", f.def.Latest)
		}
	}
	return nil
}
