package fields_test

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/fields"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct{ x, y float64 }

// recordingCanvas remembers stroke points and reports ink once any stroke
// was extended.
type recordingCanvas struct {
	w, h   int
	points []point
	inked  bool
}

func (c *recordingCanvas) Size() (int, int)         { return c.w, c.h }
func (c *recordingCanvas) BeginStroke(x, y float64) { c.points = append(c.points, point{x, y}) }
func (c *recordingCanvas) ExtendStroke(x, y float64) {
	c.points = append(c.points, point{x, y})
	c.inked = true
}
func (c *recordingCanvas) EndStroke()                  {}
func (c *recordingCanvas) Clear()                      { c.inked = false }
func (c *recordingCanvas) HasNonBackgroundPixel() bool { return c.inked }
func (c *recordingCanvas) Snapshot() (string, error)   { return "data:image/png;base64,ZmFrZQ==", nil }

func signatureField(t *testing.T, onChange fields.ChangeFunc, opts ...fields.SignatureOption) *fields.SignatureField {
	t.Helper()
	def := models.FieldDefinition{
		ID:       "sig",
		Type:     models.FieldSignature,
		Name:     "customer_signature",
		Label:    "Signature",
		Required: true,
		Width:    400,
		Height:   200,
	}
	f := fields.NewSignatureField(def, onChange, opts...)
	f.Render()
	return f
}

func stroke(t *testing.T, w *fields.Widget, pts ...point) {
	t.Helper()
	require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventPointerDown, X: pts[0].x, Y: pts[0].y}))
	for _, p := range pts[1:] {
		require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventPointerMove, X: p.x, Y: p.y}))
	}
	require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventPointerUp}))
}

func TestSignatureField(t *testing.T) {
	t.Run("Success - Drawing gate", func(t *testing.T) {
		calls := 0
		f := signatureField(t, func(string, any) { calls++ })
		w := f.Widget()

		require.NotNil(t, f.Validate())

		stroke(t, w, point{50, 50})
		assert.Nil(t, f.Value(), "a click without movement draws nothing")
		assert.NotNil(t, f.Validate())

		stroke(t, w, point{50, 50}, point{50.2, 50.3})
		assert.Nil(t, f.Value(), "movement inside one pixel draws nothing")

		stroke(t, w, point{20, 20}, point{120, 80}, point{200, 40})
		v, ok := f.Value().(string)
		require.True(t, ok)
		assert.True(t, strings.HasPrefix(v, "data:image/png;base64,"))
		assert.Nil(t, f.Validate())
		assert.Equal(t, 1, calls)
	})

	t.Run("Success - Clear empties the value", func(t *testing.T) {
		var last any = "unset"
		f := signatureField(t, func(_ string, v any) { last = v })
		w := f.Widget()

		stroke(t, w, point{10, 10}, point{60, 60})
		require.NotNil(t, f.Value())

		require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventClear}))
		assert.Nil(t, f.Value())
		assert.Nil(t, last)
		assert.NotNil(t, f.Validate())
	})

	t.Run("Success - Pointer coordinates are scaled", func(t *testing.T) {
		c := &recordingCanvas{w: 400, h: 200}
		f := signatureField(t, nil, fields.WithCanvas(func(int, int) (fields.Canvas, error) { return c, nil }))
		w := f.Widget()

		require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventPointerDown, X: 100, Y: 50, DisplayWidth: 200, DisplayHeight: 100}))
		require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventPointerMove, X: 150, Y: 25, DisplayWidth: 200, DisplayHeight: 100}))
		require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventPointerUp}))

		assert.Equal(t, []point{{200, 100}, {300, 50}}, c.points)
		assert.Equal(t, "data:image/png;base64,ZmFrZQ==", f.Value())
	})

	t.Run("Success - Off-canvas points are clamped", func(t *testing.T) {
		c := &recordingCanvas{w: 400, h: 200}
		f := signatureField(t, nil, fields.WithCanvas(func(int, int) (fields.Canvas, error) { return c, nil }))
		w := f.Widget()

		require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventPointerDown, X: 10, Y: 10}))
		require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventPointerMove, X: 2e9, Y: -50}))
		require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventPointerMove, X: math.NaN(), Y: 10}))
		require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventPointerMove, X: 10, Y: math.Inf(1)}))
		require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventPointerUp}))

		assert.Equal(t, []point{{10, 10}, {399, 0}}, c.points)
	})

	t.Run("Success - Far and non-finite moves finish on the raster surface", func(t *testing.T) {
		for name, x := range map[string]float64{"far": 2e9, "nan": math.NaN()} {
			f := signatureField(t, nil)
			w := f.Widget()
			done := make(chan error, 1)
			go func() {
				if err := w.Dispatch(fields.Event{Type: fields.EventPointerDown, X: 10, Y: 10}); err != nil {
					done <- err
					return
				}
				if err := w.Dispatch(fields.Event{Type: fields.EventPointerMove, X: x, Y: 10}); err != nil {
					done <- err
					return
				}
				done <- w.Dispatch(fields.Event{Type: fields.EventPointerUp})
			}()

			select {
			case err := <-done:
				require.NoError(t, err, name)
			case <-time.After(2 * time.Second):
				t.Fatalf("%s: pointer move did not return", name)
			}
		}
	})

	t.Run("Error - Surface unavailable", func(t *testing.T) {
		f := signatureField(t, nil, fields.WithCanvas(func(int, int) (fields.Canvas, error) {
			return nil, errors.New("no 2d context")
		}))
		w := f.Widget()

		assert.Equal(t, "Signature pad is unavailable on this device", w.Alert())
		assert.ErrorIs(t, w.Dispatch(fields.Event{Type: fields.EventPointerDown}), fields.ErrCanvasUnavailable)
		assert.Nil(t, f.Value())
	})

	t.Run("Success - Stored snapshot is restored", func(t *testing.T) {
		snap := signatureSnapshot(t)
		f := signatureField(t, nil)
		f.SetValue(snap)
		assert.Equal(t, snap, f.Value())
		assert.Empty(t, f.Widget().Alert())

		f.SetValue("")
		assert.Nil(t, f.Value())
	})
}

func TestRasterCanvas(t *testing.T) {
	c, err := fields.NewRasterCanvas(50, 50)
	require.NoError(t, err)
	assert.False(t, c.HasNonBackgroundPixel())

	c.BeginStroke(5, 5)
	c.ExtendStroke(5.4, 4.6)
	assert.False(t, c.HasNonBackgroundPixel())

	c.ExtendStroke(30, 30)
	c.EndStroke()
	assert.True(t, c.HasNonBackgroundPixel())

	snap, err := c.Snapshot()
	require.NoError(t, err)

	other, err := fields.NewRasterCanvas(50, 50)
	require.NoError(t, err)
	require.NoError(t, other.(fields.Loader).Load(snap))
	assert.True(t, other.HasNonBackgroundPixel())

	c.Clear()
	assert.False(t, c.HasNonBackgroundPixel())

	c.BeginStroke(math.NaN(), 5)
	c.ExtendStroke(40, 40)
	assert.False(t, c.HasNonBackgroundPixel(), "a stroke cannot start at a non-finite point")

	c.BeginStroke(-1e12, 25)
	c.ExtendStroke(1e12, 25)
	c.EndStroke()
	assert.True(t, c.HasNonBackgroundPixel())

	_, err = fields.NewRasterCanvas(0, 10)
	assert.ErrorIs(t, err, fields.ErrCanvasUnavailable)
}
