package fields

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/models"
	"github.com/google/uuid"
)

var (
	ErrTooManyFiles = errors.New("too many files")
	ErrBadIndex     = errors.New("photo index out of range")
)

// FileSource is one file picked by the user. Open is called from a
// background goroutine.
type FileSource struct {
	Name string
	Type string
	Open func() (io.ReadCloser, error)
}

func FileFromBytes(name, contentType string, data []byte) FileSource {
	return FileSource{
		Name: name,
		Type: contentType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// PhotoField accumulates captured images as base64 data URLs. Reads run in
// the background; results are applied in selection order and dropped if the
// field was destroyed meanwhile.
type PhotoField struct {
	base
	files   []models.PhotoFile
	pending int
	last    chan struct{}
	// reads counts reader goroutines that have not yet notified.
	reads   int
	settled *sync.Cond
}

func NewPhotoField(def models.FieldDefinition, onChange ChangeFunc) *PhotoField {
	f := &PhotoField{}
	f.init(def, onChange)
	f.settled = sync.NewCond(&f.mu)
	return f
}

// limit is the effective file cap, 0 meaning unlimited.
func (f *PhotoField) limit() int {
	if !f.def.Multiple {
		return 1
	}
	return f.def.MaxFiles
}

func (f *PhotoField) Render() *Widget {
	f.mu.Lock()
	defer f.mu.Unlock()

	props := f.commonProps()
	props["multiple"] = f.def.Multiple
	if f.def.MaxFiles > 0 {
		props["maxFiles"] = f.def.MaxFiles
	}
	if f.def.Accept != "" {
		props["accept"] = f.def.Accept
	}

	w := f.mount(props)
	f.listen(w, EventFiles, f.handleFiles)
	f.listen(w, EventRemove, f.handleRemove)
	f.listen(w, EventClear, f.handleClear)
	f.refresh()
	return w
}

func (f *PhotoField) handleFiles(ev Event) error {
	if len(ev.Files) == 0 {
		return nil
	}
	f.mu.Lock()
	if f.destroyed {
		f.mu.Unlock()
		return ErrDetached
	}

	limit := f.limit()
	if f.def.Multiple {
		if limit > 0 && len(f.files)+f.pending+len(ev.Files) > limit {
			msg := fmt.Sprintf("%s accepts at most %d photos", f.def.Label, limit)
			f.widget.setAlert(msg)
			f.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrTooManyFiles, msg)
		}
	} else if len(ev.Files) > 1 {
		msg := fmt.Sprintf("%s accepts a single photo", f.def.Label)
		f.widget.setAlert(msg)
		f.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTooManyFiles, msg)
	}

	f.widget.setAlert("")
	f.pending += len(ev.Files)
	prev := f.last
	done := make(chan struct{})
	f.last = done
	f.reads++
	f.mu.Unlock()

	go f.read(ev.Files, prev, done)
	return nil
}

func (f *PhotoField) read(files []FileSource, prev <-chan struct{}, done chan struct{}) {
	defer f.finishRead()
	defer close(done)

	read := make([]models.PhotoFile, 0, len(files))
	var failed []string
	for _, src := range files {
		if !f.accepts(src.Type) {
			failed = append(failed, src.Name+" (unsupported type)")
			continue
		}
		p, err := readPhoto(src)
		if err != nil {
			failed = append(failed, src.Name)
			continue
		}
		read = append(read, p)
	}

	if prev != nil {
		<-prev
	}

	f.mu.Lock()
	f.pending -= len(files)
	if f.destroyed {
		f.mu.Unlock()
		return
	}
	if len(failed) > 0 && f.widget != nil {
		f.widget.setAlert("Could not read " + strings.Join(failed, ", "))
	}
	if len(read) == 0 {
		f.mu.Unlock()
		return
	}
	if f.def.Multiple {
		f.files = append(f.files, read...)
	} else {
		f.files = read[:1]
	}
	v := f.snapshot()
	f.refresh()
	f.mu.Unlock()

	f.notify(v)
}

func (f *PhotoField) accepts(contentType string) bool {
	if f.def.Accept == "" || contentType == "" {
		return true
	}
	for _, a := range strings.Split(f.def.Accept, ",") {
		a = strings.TrimSpace(a)
		if a == contentType || a == "*/*" {
			return true
		}
		if strings.HasSuffix(a, "/*") && strings.HasPrefix(contentType, strings.TrimSuffix(a, "*")) {
			return true
		}
	}
	return false
}

func readPhoto(src FileSource) (models.PhotoFile, error) {
	if src.Open == nil {
		return models.PhotoFile{}, fmt.Errorf("file %s has no content", src.Name)
	}
	rc, err := src.Open()
	if err != nil {
		return models.PhotoFile{}, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return models.PhotoFile{}, err
	}
	contentType := src.Type
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return models.PhotoFile{
		ID:   uuid.New().String(),
		Name: src.Name,
		Type: contentType,
		Data: "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data),
	}, nil
}

func (f *PhotoField) handleRemove(ev Event) error {
	f.mu.Lock()
	if f.destroyed {
		f.mu.Unlock()
		return ErrDetached
	}
	if ev.Index < 0 || ev.Index >= len(f.files) {
		f.mu.Unlock()
		return ErrBadIndex
	}
	f.files = append(f.files[:ev.Index:ev.Index], f.files[ev.Index+1:]...)
	v := f.snapshot()
	f.refresh()
	f.mu.Unlock()

	f.notify(v)
	return nil
}

func (f *PhotoField) handleClear(Event) error {
	f.mu.Lock()
	if f.destroyed {
		f.mu.Unlock()
		return ErrDetached
	}
	f.files = nil
	v := f.snapshot()
	f.refresh()
	f.mu.Unlock()

	f.notify(v)
	return nil
}

func (f *PhotoField) finishRead() {
	f.mu.Lock()
	f.reads--
	f.settled.Broadcast()
	f.mu.Unlock()
}

// Settle blocks until every in-flight read has been applied or discarded.
// Reads started while it waits are waited for too.
func (f *PhotoField) Settle() {
	f.mu.Lock()
	for f.reads > 0 {
		f.settled.Wait()
	}
	f.mu.Unlock()
}

// snapshot copies the value. Caller holds f.mu.
func (f *PhotoField) snapshot() []models.PhotoFile {
	return append([]models.PhotoFile{}, f.files...)
}

// refresh rebuilds positional previews. Caller holds f.mu.
func (f *PhotoField) refresh() {
	if f.widget == nil {
		return
	}
	previews := make([]string, len(f.files))
	for i, p := range f.files {
		previews[i] = p.Data
	}
	f.widget.setPreviews(previews)
	f.widget.setValue(f.snapshot())
}

func (f *PhotoField) Value() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot()
}

func (f *PhotoField) SetValue(v any) {
	files := toPhotos(v)
	f.mu.Lock()
	if limit := f.limit(); limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	f.files = files
	f.refresh()
	f.mu.Unlock()
}

func (f *PhotoField) Validate() *ValidationError {
	f.mu.Lock()
	n := len(f.files)
	f.mu.Unlock()
	if n == 0 {
		if f.def.Required {
			return f.requiredError()
		}
		return nil
	}
	if limit := f.limit(); limit > 0 && n > limit {
		return f.fail("accepts at most %d photos", limit)
	}
	return nil
}
