package fields

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/models"
)

type EventType string

const (
	EventInput       EventType = "input"
	EventFiles       EventType = "files"
	EventRemove      EventType = "remove"
	EventClear       EventType = "clear"
	EventPointerDown EventType = "pointerdown"
	EventPointerMove EventType = "pointermove"
	EventPointerUp   EventType = "pointerup"
)

// Event is one user interaction delivered to a widget.
type Event struct {
	Type EventType

	// input: the new value. For checkbox groups a single option value is
	// toggled according to Checked; a slice replaces the whole selection.
	Value   any
	Checked bool

	// files / remove
	Files []FileSource
	Index int

	// Pointer coordinates are relative to the displayed surface, whose
	// on-screen size is DisplayWidth x DisplayHeight.
	X, Y          float64
	DisplayWidth  float64
	DisplayHeight float64
}

type Handler func(Event) error

var (
	ErrDetached  = errors.New("widget is detached")
	ErrUnhandled = errors.New("widget does not handle this event")
)

type listener struct {
	id int
	h  Handler
}

// Widget is the rendered, interactive surface of one field. The exported
// fields are fixed at render time; the remaining state is reflected by the
// owning field and read through accessors.
type Widget struct {
	FieldID  string               `json:"fieldId"`
	Type     models.FieldType     `json:"type"`
	Name     string               `json:"name,omitempty"`
	Label    string               `json:"label"`
	Required bool                 `json:"required,omitempty"`
	Props    map[string]any       `json:"props,omitempty"`
	Options  []models.FieldOption `json:"options,omitempty"`

	mu        sync.Mutex
	value     any
	previews  []string
	invalid   bool
	message   string
	alert     string
	focused   bool
	attached  bool
	nextID    int
	listeners map[EventType][]listener
}

func newWidget(def models.FieldDefinition, props map[string]any) *Widget {
	w := &Widget{
		FieldID:   def.ID,
		Type:      def.Type,
		Label:     def.Label,
		Props:     props,
		attached:  true,
		listeners: make(map[EventType][]listener),
	}
	if !def.Type.IsLayout() {
		w.Name = def.Name
		w.Required = def.Required
	}
	if def.Type.HasOptions() {
		w.Options = append([]models.FieldOption(nil), def.Options...)
	}
	return w
}

// On registers h for events of type t and returns a func that removes it.
func (w *Widget) On(t EventType, h Handler) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextID++
	id := w.nextID
	w.listeners[t] = append(w.listeners[t], listener{id: id, h: h})
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		ls := w.listeners[t]
		for i, l := range ls {
			if l.id == id {
				w.listeners[t] = append(ls[:i:i], ls[i+1:]...)
				break
			}
		}
		if len(w.listeners[t]) == 0 {
			delete(w.listeners, t)
		}
	}
}

// Dispatch delivers a user event to the registered handlers in
// registration order and returns the first handler error.
func (w *Widget) Dispatch(ev Event) error {
	w.mu.Lock()
	if !w.attached {
		w.mu.Unlock()
		return ErrDetached
	}
	ls := append([]listener(nil), w.listeners[ev.Type]...)
	w.mu.Unlock()

	if len(ls) == 0 {
		return ErrUnhandled
	}
	for _, l := range ls {
		if err := l.h(ev); err != nil {
			return err
		}
	}
	return nil
}

func (w *Widget) ListenerCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, ls := range w.listeners {
		n += len(ls)
	}
	return n
}

func (w *Widget) Attached() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.attached
}

func (w *Widget) Value() any {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value
}

func (w *Widget) Previews() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.previews...)
}

// Invalid returns the invalid marking and its message.
func (w *Widget) Invalid() (bool, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.invalid, w.message
}

// Alert returns the last user-facing notice (rejected selection, failed
// read, unavailable drawing surface).
func (w *Widget) Alert() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.alert
}

func (w *Widget) Focused() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.focused
}

func (w *Widget) setValue(v any) {
	w.mu.Lock()
	w.value = v
	w.mu.Unlock()
}

func (w *Widget) setPreviews(p []string) {
	w.mu.Lock()
	w.previews = p
	w.mu.Unlock()
}

func (w *Widget) setInvalid(invalid bool, msg string) {
	w.mu.Lock()
	w.invalid = invalid
	w.message = msg
	w.mu.Unlock()
}

func (w *Widget) setAlert(msg string) {
	w.mu.Lock()
	w.alert = msg
	w.mu.Unlock()
}

func (w *Widget) setFocused(f bool) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.attached {
		return false
	}
	w.focused = f
	return true
}

func (w *Widget) detach() {
	w.mu.Lock()
	w.attached = false
	w.focused = false
	w.mu.Unlock()
}

type widgetJSON struct {
	FieldID  string               `json:"fieldId"`
	Type     models.FieldType     `json:"type"`
	Name     string               `json:"name,omitempty"`
	Label    string               `json:"label"`
	Required bool                 `json:"required,omitempty"`
	Props    map[string]any       `json:"props,omitempty"`
	Options  []models.FieldOption `json:"options,omitempty"`
	Value    any                  `json:"value"`
	Previews []string             `json:"previews,omitempty"`
	Invalid  bool                 `json:"invalid,omitempty"`
	Message  string               `json:"message,omitempty"`
	Alert    string               `json:"alert,omitempty"`
}

func (w *Widget) MarshalJSON() ([]byte, error) {
	w.mu.Lock()
	out := widgetJSON{
		FieldID:  w.FieldID,
		Type:     w.Type,
		Name:     w.Name,
		Label:    w.Label,
		Required: w.Required,
		Props:    w.Props,
		Options:  w.Options,
		Value:    w.value,
		Previews: w.previews,
		Invalid:  w.invalid,
		Message:  w.message,
		Alert:    w.alert,
	}
	w.mu.Unlock()
	return json.Marshal(out)
}
