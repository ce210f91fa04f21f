package fields_test

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/fields"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedFile blocks its read until release is closed.
func gatedFile(name string, data string, release <-chan struct{}) fields.FileSource {
	return fields.FileSource{
		Name: name,
		Type: "image/jpeg",
		Open: func() (io.ReadCloser, error) {
			<-release
			return io.NopCloser(strings.NewReader(data)), nil
		},
	}
}

func photoField(t *testing.T, maxFiles int, onChange fields.ChangeFunc) *fields.PhotoField {
	t.Helper()
	f := newField(t, models.FieldPhoto, func(d *models.FieldDefinition) {
		d.Label = "Roof Photos"
		d.Name = "roof_photos"
		d.Multiple = true
		d.MaxFiles = maxFiles
	}, onChange)
	return f.(*fields.PhotoField)
}

func photos(f fields.Field) []models.PhotoFile {
	return f.Value().([]models.PhotoFile)
}

func TestPhotoField(t *testing.T) {
	t.Run("Success - Files are read into data URLs", func(t *testing.T) {
		f := photoField(t, 2, nil)
		w := f.Widget()

		require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventFiles, Files: []fields.FileSource{
			fields.FileFromBytes("a.jpg", "image/jpeg", []byte("abc")),
		}}))
		f.Settle()

		got := photos(f)
		require.Len(t, got, 1)
		assert.Equal(t, "a.jpg", got[0].Name)
		assert.Equal(t, "image/jpeg", got[0].Type)
		assert.Equal(t, "data:image/jpeg;base64,YWJj", got[0].Data)
		assert.NotEmpty(t, got[0].ID)
		assert.Equal(t, []string{got[0].Data}, w.Previews())
	})

	t.Run("Error - Selection beyond the cap is rejected", func(t *testing.T) {
		f := photoField(t, 2, nil)
		w := f.Widget()

		require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventFiles, Files: []fields.FileSource{
			fields.FileFromBytes("a.jpg", "image/jpeg", []byte("a")),
		}}))
		require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventFiles, Files: []fields.FileSource{
			fields.FileFromBytes("b.jpg", "image/jpeg", []byte("b")),
		}}))
		f.Settle()
		require.Len(t, photos(f), 2)

		err := w.Dispatch(fields.Event{Type: fields.EventFiles, Files: []fields.FileSource{
			fields.FileFromBytes("c.jpg", "image/jpeg", []byte("c")),
		}})
		assert.ErrorIs(t, err, fields.ErrTooManyFiles)
		f.Settle()

		assert.Len(t, photos(f), 2)
		assert.Equal(t, "Roof Photos accepts at most 2 photos", w.Alert())
	})

	t.Run("Error - Pending reads count toward the cap", func(t *testing.T) {
		release := make(chan struct{})
		f := photoField(t, 1, nil)
		w := f.Widget()

		require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventFiles, Files: []fields.FileSource{
			gatedFile("slow.jpg", "s", release),
		}}))
		err := w.Dispatch(fields.Event{Type: fields.EventFiles, Files: []fields.FileSource{
			fields.FileFromBytes("fast.jpg", "image/jpeg", []byte("f")),
		}})
		assert.ErrorIs(t, err, fields.ErrTooManyFiles)

		close(release)
		f.Settle()
		got := photos(f)
		require.Len(t, got, 1)
		assert.Equal(t, "slow.jpg", got[0].Name)
	})

	t.Run("Success - Results keep selection order", func(t *testing.T) {
		release := make(chan struct{})
		var mu sync.Mutex
		var notified [][]models.PhotoFile
		f := photoField(t, 0, func(_ string, v any) {
			mu.Lock()
			notified = append(notified, v.([]models.PhotoFile))
			mu.Unlock()
		})
		w := f.Widget()

		require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventFiles, Files: []fields.FileSource{
			gatedFile("first.jpg", "1", release),
		}}))
		require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventFiles, Files: []fields.FileSource{
			fields.FileFromBytes("second.jpg", "image/jpeg", []byte("2")),
		}}))
		close(release)
		f.Settle()

		got := photos(f)
		require.Len(t, got, 2)
		assert.Equal(t, "first.jpg", got[0].Name)
		assert.Equal(t, "second.jpg", got[1].Name)

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, notified, 2)
		assert.Len(t, notified[0], 1)
		assert.Len(t, notified[1], 2)
	})

	t.Run("Success - Settle waits for reads queued while waiting", func(t *testing.T) {
		first, second := make(chan struct{}), make(chan struct{})
		f := photoField(t, 0, nil)
		w := f.Widget()

		require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventFiles, Files: []fields.FileSource{
			gatedFile("first.jpg", "1", first),
		}}))
		settled := make(chan struct{})
		go func() {
			f.Settle()
			close(settled)
		}()
		require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventFiles, Files: []fields.FileSource{
			gatedFile("second.jpg", "2", second),
		}}))

		close(first)
		assert.Never(t, func() bool {
			select {
			case <-settled:
				return true
			default:
				return false
			}
		}, 50*time.Millisecond, 5*time.Millisecond)

		close(second)
		assert.Eventually(t, func() bool {
			select {
			case <-settled:
				return true
			default:
				return false
			}
		}, 2*time.Second, 5*time.Millisecond)
		assert.Len(t, photos(f), 2)
	})

	t.Run("Success - Read finishing after destroy is ignored", func(t *testing.T) {
		release := make(chan struct{})
		calls := 0
		f := photoField(t, 3, func(string, any) { calls++ })

		require.NoError(t, f.Widget().Dispatch(fields.Event{Type: fields.EventFiles, Files: []fields.FileSource{
			gatedFile("late.jpg", "x", release),
		}}))
		f.Destroy()
		close(release)
		f.Settle()

		assert.Empty(t, photos(f))
		assert.Zero(t, calls)
	})

	t.Run("Success - Remove splices by index", func(t *testing.T) {
		f := photoField(t, 0, nil)
		w := f.Widget()
		require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventFiles, Files: []fields.FileSource{
			fields.FileFromBytes("a.jpg", "image/jpeg", []byte("a")),
			fields.FileFromBytes("b.jpg", "image/jpeg", []byte("b")),
			fields.FileFromBytes("c.jpg", "image/jpeg", []byte("c")),
		}}))
		f.Settle()

		require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventRemove, Index: 1}))
		got := photos(f)
		require.Len(t, got, 2)
		assert.Equal(t, "a.jpg", got[0].Name)
		assert.Equal(t, "c.jpg", got[1].Name)
		assert.Len(t, w.Previews(), 2)

		assert.ErrorIs(t, w.Dispatch(fields.Event{Type: fields.EventRemove, Index: 5}), fields.ErrBadIndex)

		require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventClear}))
		assert.Empty(t, photos(f))
	})

	t.Run("Error - Failed reads alert and keep the value", func(t *testing.T) {
		f := photoField(t, 0, nil)
		w := f.Widget()
		broken := fields.FileSource{Name: "broken.jpg", Type: "image/jpeg", Open: func() (io.ReadCloser, error) {
			return nil, errors.New("disk error")
		}}
		require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventFiles, Files: []fields.FileSource{
			broken,
			fields.FileFromBytes("notes.txt", "text/plain", []byte("n")),
		}}))
		f.Settle()

		assert.Empty(t, photos(f))
		assert.Equal(t, "Could not read broken.jpg, notes.txt (unsupported type)", w.Alert())
	})

	t.Run("Success - Single photo mode replaces", func(t *testing.T) {
		f := newField(t, models.FieldPhoto, func(d *models.FieldDefinition) {
			d.Multiple = false
		}, nil).(*fields.PhotoField)
		w := f.Widget()
		require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventFiles, Files: []fields.FileSource{
			fields.FileFromBytes("one.png", "image/png", []byte("1")),
		}}))
		f.Settle()
		require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventClear}))
		require.NoError(t, w.Dispatch(fields.Event{Type: fields.EventFiles, Files: []fields.FileSource{
			fields.FileFromBytes("two.png", "image/png", []byte("2")),
		}}))
		f.Settle()
		got := photos(f)
		require.Len(t, got, 1)
		assert.Equal(t, "two.png", got[0].Name)
	})

	t.Run("Success - SetValue accepts decoded JSON", func(t *testing.T) {
		f := photoField(t, 2, nil)
		f.SetValue([]any{
			map[string]any{"id": "1", "name": "a.png", "type": "image/png", "data": "data:image/png;base64,AA"},
			map[string]any{"id": "2", "name": "b.png", "type": "image/png", "data": "data:image/png;base64,BB"},
			map[string]any{"id": "3", "name": "c.png", "type": "image/png", "data": "data:image/png;base64,CC"},
		})
		got := photos(f)
		require.Len(t, got, 2)
		assert.Equal(t, "b.png", got[1].Name)
	})
}
