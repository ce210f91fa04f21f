package fields

import (
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/models"
)

const (
	defaultSignatureWidth  = 400
	defaultSignatureHeight = 200
)

type SignatureOption func(*SignatureField)

// WithCanvas replaces the drawing surface factory.
func WithCanvas(factory CanvasFactory) SignatureOption {
	return func(f *SignatureField) {
		f.newCanvas = factory
	}
}

// SignatureField captures a drawing as a PNG data URL. The value stays nil
// until a stroke leaves at least one non-background pixel.
type SignatureField struct {
	base
	newCanvas CanvasFactory
	canvas    Canvas
	drawing   bool
	value     *string
}

func NewSignatureField(def models.FieldDefinition, onChange ChangeFunc, opts ...SignatureOption) *SignatureField {
	f := &SignatureField{newCanvas: NewRasterCanvas}
	f.init(def, onChange)
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *SignatureField) size() (int, int) {
	w, h := f.def.Width, f.def.Height
	if w <= 0 {
		w = defaultSignatureWidth
	}
	if h <= 0 {
		h = defaultSignatureHeight
	}
	return w, h
}

func (f *SignatureField) Render() *Widget {
	f.mu.Lock()
	defer f.mu.Unlock()

	width, height := f.size()
	props := f.commonProps()
	props["width"] = width
	props["height"] = height

	w := f.mount(props)
	if f.canvas == nil && !f.destroyed {
		var c Canvas
		err := ErrCanvasUnavailable
		if f.newCanvas != nil {
			c, err = f.newCanvas(width, height)
		}
		if err != nil || c == nil {
			w.setAlert("Signature pad is unavailable on this device")
		} else {
			f.canvas = c
			if f.value != nil {
				f.load(*f.value)
			}
		}
	}
	f.listen(w, EventPointerDown, f.handleDown)
	f.listen(w, EventPointerMove, f.handleMove)
	f.listen(w, EventPointerUp, f.handleUp)
	f.listen(w, EventClear, f.handleClear)
	f.reflect(f.current())
	return w
}

// point maps display coordinates onto the canvas backing resolution and
// clamps them to its bounds. Non-finite input is rejected.
func (f *SignatureField) point(ev Event) (float64, float64, bool) {
	w, h := f.canvas.Size()
	x, y := ev.X, ev.Y
	if ev.DisplayWidth > 0 {
		x = x * float64(w) / ev.DisplayWidth
	}
	if ev.DisplayHeight > 0 {
		y = y * float64(h) / ev.DisplayHeight
	}
	if !finite(x) || !finite(y) {
		return 0, 0, false
	}
	return clampFloat(x, 0, float64(w-1)), clampFloat(y, 0, float64(h-1)), true
}

// ready reports whether pointer input can be applied. Caller holds f.mu.
func (f *SignatureField) ready() error {
	if f.destroyed {
		return ErrDetached
	}
	if f.canvas == nil {
		return ErrCanvasUnavailable
	}
	return nil
}

func (f *SignatureField) handleDown(ev Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ready(); err != nil {
		return err
	}
	x, y, ok := f.point(ev)
	if !ok {
		return nil
	}
	f.drawing = true
	f.canvas.BeginStroke(x, y)
	return nil
}

func (f *SignatureField) handleMove(ev Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ready(); err != nil {
		return err
	}
	if !f.drawing {
		return nil
	}
	if x, y, ok := f.point(ev); ok {
		f.canvas.ExtendStroke(x, y)
	}
	return nil
}

func (f *SignatureField) handleUp(ev Event) error {
	f.mu.Lock()
	if err := f.ready(); err != nil {
		f.mu.Unlock()
		return err
	}
	if !f.drawing {
		f.mu.Unlock()
		return nil
	}
	f.drawing = false
	f.canvas.EndStroke()

	prev := f.current()
	if f.canvas.HasNonBackgroundPixel() {
		snap, err := f.canvas.Snapshot()
		if err != nil {
			f.widget.setAlert("Could not capture signature")
			f.mu.Unlock()
			return nil
		}
		f.value = &snap
	} else {
		f.value = nil
	}
	v := f.current()
	f.reflect(v)
	f.mu.Unlock()

	if v != prev {
		f.notify(v)
	}
	return nil
}

func (f *SignatureField) handleClear(Event) error {
	f.mu.Lock()
	if err := f.ready(); err != nil {
		f.mu.Unlock()
		return err
	}
	f.canvas.Clear()
	f.drawing = false
	prev := f.current()
	f.value = nil
	f.reflect(nil)
	f.mu.Unlock()

	if prev != nil {
		f.notify(nil)
	}
	return nil
}

// load paints a stored snapshot back onto the canvas when supported.
// Caller holds f.mu.
func (f *SignatureField) load(dataURL string) {
	if l, ok := f.canvas.(Loader); ok {
		if err := l.Load(dataURL); err != nil && f.widget != nil {
			f.widget.setAlert("Could not display the saved signature")
		}
	}
}

func (f *SignatureField) current() any {
	if f.value == nil {
		return nil
	}
	return *f.value
}

func (f *SignatureField) Value() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current()
}

func (f *SignatureField) SetValue(v any) {
	s, _ := v.(string)
	f.mu.Lock()
	defer f.mu.Unlock()
	if s == "" {
		f.value = nil
		if f.canvas != nil {
			f.canvas.Clear()
		}
	} else {
		f.value = &s
		if f.canvas != nil {
			f.load(s)
		}
	}
	f.reflect(f.current())
}

func (f *SignatureField) Validate() *ValidationError {
	f.mu.Lock()
	v := f.value
	f.mu.Unlock()
	if v == nil && f.def.Required {
		return f.requiredError()
	}
	return nil
}
