package fields

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/models"
)

func toString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", true
	case string:
		return x, true
	case *string:
		if x == nil {
			return "", true
		}
		return *x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case json.Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	}
	return "", false
}

// toFloat accepts only finite numbers.
func toFloat(v any) (float64, bool) {
	f, ok := rawFloat(v)
	if !ok || !finite(f) {
		return 0, false
	}
	return f, true
}

func rawFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case *float64:
		if x == nil {
			return 0, false
		}
		return *x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

func toBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case *bool:
		if x == nil {
			return false, false
		}
		return *x, true
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "on", "yes", "1":
			return true, true
		case "false", "off", "no", "0":
			return false, true
		}
	case float64:
		if x == 0 || x == 1 {
			return x == 1, true
		}
	case int:
		if x == 0 || x == 1 {
			return x == 1, true
		}
	}
	return false, false
}

func toStrings(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case []string:
		return append([]string(nil), x...)
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s, ok := toString(item); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s, ok := toString(v); ok && s != "" {
		return []string{s}
	}
	return nil
}

func toPhotos(v any) []models.PhotoFile {
	switch x := v.(type) {
	case []models.PhotoFile:
		return append([]models.PhotoFile(nil), x...)
	case models.PhotoFile:
		return []models.PhotoFile{x}
	case []any:
		out := make([]models.PhotoFile, 0, len(x))
		for _, item := range x {
			if p, ok := toPhoto(item); ok {
				out = append(out, p)
			}
		}
		return out
	}
	return nil
}

func toPhoto(v any) (models.PhotoFile, bool) {
	switch x := v.(type) {
	case models.PhotoFile:
		return x, x.Data != ""
	case map[string]any:
		p := models.PhotoFile{}
		p.ID, _ = x["id"].(string)
		p.Name, _ = x["name"].(string)
		p.Type, _ = x["type"].(string)
		p.Data, _ = x["data"].(string)
		return p, p.Data != ""
	}
	return models.PhotoFile{}, false
}
