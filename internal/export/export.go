// Package export turns flat submission records into CSV or JSON files.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/models"
)

const signaturePlaceholder = "[signature]"

var ErrUnknownFormat = errors.New("unknown export format")

// Column maps a record key to the header shown for it.
type Column struct {
	Name  string           `json:"name"`
	Label string           `json:"label"`
	Type  models.FieldType `json:"type"`
}

// ColumnsFor lists the data columns of t in display order. Layout fields
// carry no value and are skipped.
func ColumnsFor(t *models.FormTemplate) []Column {
	var cols []Column
	for _, f := range t.SortedFields() {
		if f.Type.IsLayout() || f.Name == "" {
			continue
		}
		label := f.Label
		if label == "" {
			label = f.Name
		}
		cols = append(cols, Column{Name: f.Name, Label: label, Type: f.Type})
	}
	return cols
}

type Exporter interface {
	ContentType() string
	Extension() string
	Export(w io.Writer, cols []Column, records []map[string]any) error
}

// ByFormat returns the exporter for "csv" or "json".
func ByFormat(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "csv":
		return CSV{}, nil
	case "json", "":
		return JSON{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Bytes runs e into a buffer.
func Bytes(e Exporter, cols []Column, records []map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Export(&buf, cols, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type CSV struct{}

func (CSV) ContentType() string { return "text/csv" }
func (CSV) Extension() string   { return ".csv" }

func (CSV) Export(w io.Writer, cols []Column, records []map[string]any) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Label
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, rec := range records {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = Cell(c, rec[c.Name])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

type JSON struct{}

func (JSON) ContentType() string { return "application/json" }
func (JSON) Extension() string   { return ".json" }

// Export writes one object per record keyed by column label.
func (JSON) Export(w io.Writer, cols []Column, records []map[string]any) error {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		row := make(map[string]any, len(cols))
		for _, c := range cols {
			row[c.Label] = jsonValue(c, rec[c.Name])
		}
		out = append(out, row)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode json export: %w", err)
	}
	return nil
}

// Cell renders a single value as CSV text.
func Cell(c Column, v any) string {
	if v == nil {
		return ""
	}
	switch c.Type {
	case models.FieldSignature:
		if s, ok := v.(string); ok && s != "" {
			return signaturePlaceholder
		}
		return ""
	case models.FieldPhoto:
		return strings.Join(photoNames(v), "; ")
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case []string:
		return strings.Join(x, "; ")
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, "; ")
	}
	return fmt.Sprint(v)
}

// jsonValue drops image payloads, which belong in their own files.
func jsonValue(c Column, v any) any {
	switch c.Type {
	case models.FieldSignature:
		if s, ok := v.(string); ok && s != "" {
			return signaturePlaceholder
		}
		return nil
	case models.FieldPhoto:
		return photoNames(v)
	}
	return v
}

func photoNames(v any) []string {
	names := []string{}
	switch x := v.(type) {
	case []models.PhotoFile:
		for _, p := range x {
			names = append(names, p.Name)
		}
	case []any:
		for _, item := range x {
			if m, ok := item.(map[string]any); ok {
				if name, _ := m["name"].(string); name != "" {
					names = append(names, name)
				}
			}
		}
	}
	return names
}
