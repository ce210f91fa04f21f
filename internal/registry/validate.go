package registry

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/models"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9\s\p{Z}]`)
	whitespace   = regexp.MustCompile(`[\s\p{Z}]+`)
	underscores  = regexp.MustCompile(`_+`)
)

// GenerateFieldName turns a label into a data key: lowercased, anything but
// ASCII letters, digits and whitespace dropped, whitespace runs joined by a
// single underscore, no leading or trailing underscore.
func GenerateFieldName(label string) string {
	s := strings.ToLower(label)
	s = nonSlugChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "_")
	s = underscores.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// ValidateFieldConfig checks a definition without instantiating it and
// returns human-readable problems, none when the definition is usable.
func (r *Registry) ValidateFieldConfig(def models.FieldDefinition) []string {
	var problems []string
	caption := def.Label
	if caption == "" {
		caption = def.ID
	}

	if _, ok := r.entries[def.Type]; !ok {
		problems = append(problems, fmt.Sprintf("Field %q has unknown type %q", caption, def.Type))
	}
	if strings.TrimSpace(def.Label) == "" {
		problems = append(problems, fmt.Sprintf("Field %s must have a label", def.ID))
	}
	if def.Type.IsLayout() {
		return problems
	}

	if strings.TrimSpace(def.Name) == "" {
		problems = append(problems, fmt.Sprintf("Field %q must have a name", caption))
	}
	if def.Type.HasOptions() {
		if len(def.Options) == 0 {
			problems = append(problems, fmt.Sprintf("Field %q must have at least one option", caption))
		}
		seen := map[string]bool{}
		for _, o := range def.Options {
			if o.Value == "" {
				problems = append(problems, fmt.Sprintf("Field %q has an option without a value", caption))
				continue
			}
			if seen[o.Value] {
				problems = append(problems, fmt.Sprintf("Field %q has duplicate option %q", caption, o.Value))
			}
			seen[o.Value] = true
		}
	}
	if def.Min != nil && def.Max != nil && *def.Min > *def.Max {
		problems = append(problems, fmt.Sprintf("Field %q minimum must not exceed its maximum", caption))
	}
	if def.MinLength != nil && def.MaxLength != nil && *def.MinLength > *def.MaxLength {
		problems = append(problems, fmt.Sprintf("Field %q minimum length must not exceed its maximum length", caption))
	}
	if def.MinSelect != nil && def.MaxSelect != nil && *def.MinSelect > *def.MaxSelect {
		problems = append(problems, fmt.Sprintf("Field %q minimum selections must not exceed its maximum", caption))
	}
	if def.Pattern != "" {
		if _, err := regexp.Compile(def.Pattern); err != nil {
			problems = append(problems, fmt.Sprintf("Field %q has an invalid pattern", caption))
		}
	}
	if layout := boundLayout(def.Type); layout != "" {
		lo, loErr := parseBound(layout, def.Earliest)
		hi, hiErr := parseBound(layout, def.Latest)
		if loErr != nil || hiErr != nil {
			problems = append(problems, fmt.Sprintf("Field %q has an invalid earliest/latest bound", caption))
		} else if !lo.IsZero() && !hi.IsZero() && lo.After(hi) {
			problems = append(problems, fmt.Sprintf("Field %q earliest must not be after latest", caption))
		}
	}
	if def.Type == models.FieldPhoto && def.MaxFiles < 0 {
		problems = append(problems, fmt.Sprintf("Field %q max files must not be negative", caption))
	}
	return problems
}

func boundLayout(t models.FieldType) string {
	switch t {
	case models.FieldDate:
		return "2006-01-02"
	case models.FieldTime:
		return "15:04"
	}
	return ""
}

func parseBound(layout, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(layout, s)
}

// ValidateTemplate reports every problem that blocks saving t: a missing
// name, no fields, invalid field configuration, or an id or data key used
// twice.
func (r *Registry) ValidateTemplate(t *models.FormTemplate) []string {
	var problems []string
	if strings.TrimSpace(t.Name) == "" {
		problems = append(problems, "Form name is required")
	}
	if len(t.Fields) == 0 {
		problems = append(problems, "Form must have at least one field")
	}

	ids := map[string]string{}
	owners := map[string]string{}
	for _, f := range t.SortedFields() {
		problems = append(problems, r.ValidateFieldConfig(f)...)
		if f.ID != "" {
			if other, dup := ids[f.ID]; dup {
				problems = append(problems, fmt.Sprintf("Fields %q and %q share the id %q", other, f.Label, f.ID))
			} else {
				ids[f.ID] = f.Label
			}
		}
		if f.Type.IsLayout() || f.Name == "" {
			continue
		}
		if other, dup := owners[f.Name]; dup {
			problems = append(problems, fmt.Sprintf("Fields %q and %q share the name %q", other, f.Label, f.Name))
			continue
		}
		owners[f.Name] = f.Label
	}
	return problems
}
