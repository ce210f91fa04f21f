package registry_test

import (
	"testing"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/fields"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/models"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFieldName(t *testing.T) {
	cases := map[string]string{
		"Customer Name":        "customer_name",
		"  Roof   Area  ":      "roof_area",
		"Panel #2 (kW)":        "panel_2_kw",
		"e-mail":               "email",
		"Already_snake":        "alreadysnake",
		"Straße":               "strae",
		"\u00a0Non\u00a0break": "non_break",
		"!!!":                  "",
	}
	for label, want := range cases {
		t.Run("Success - "+label, func(t *testing.T) {
			assert.Equal(t, want, registry.GenerateFieldName(label))
		})
	}
}

func TestDefaultFieldConfig(t *testing.T) {
	reg := registry.Default()

	t.Run("Success - Every built-in type has defaults", func(t *testing.T) {
		for _, e := range reg.Types() {
			def, err := reg.DefaultFieldConfig(e.Type, 3)
			require.NoError(t, err)
			assert.NotEmpty(t, def.ID)
			assert.Equal(t, 3, def.Order)
			assert.Equal(t, e.Label, def.Label)
			if e.Type.IsLayout() {
				assert.Empty(t, def.Name)
			} else {
				assert.Equal(t, "field_"+def.ID[:8], def.Name)
			}
			assert.Empty(t, reg.ValidateFieldConfig(def), "defaults for %s must be valid", e.Type)
		}
	})

	t.Run("Success - Type specific defaults", func(t *testing.T) {
		photo, _ := reg.DefaultFieldConfig(models.FieldPhoto, 0)
		assert.True(t, photo.Multiple)
		assert.Equal(t, 5, photo.MaxFiles)
		assert.Equal(t, "image/*", photo.Accept)

		sig, _ := reg.DefaultFieldConfig(models.FieldSignature, 0)
		assert.Equal(t, 400, sig.Width)
		assert.Equal(t, 200, sig.Height)

		radio, _ := reg.DefaultFieldConfig(models.FieldRadio, 0)
		assert.Len(t, radio.Options, 2)
	})

	t.Run("Error - Unknown type", func(t *testing.T) {
		_, err := reg.DefaultFieldConfig("slider", 0)
		assert.ErrorIs(t, err, registry.ErrUnknownFieldType)
	})
}

func TestTypes(t *testing.T) {
	types := registry.Default().Types()
	require.Len(t, types, 13)

	var cats []registry.Category
	for _, e := range types {
		if len(cats) == 0 || cats[len(cats)-1] != e.Category {
			cats = append(cats, e.Category)
		}
	}
	assert.Equal(t, []registry.Category{
		registry.CategoryBasic, registry.CategoryChoice, registry.CategoryMedia, registry.CategoryLayout,
	}, cats)
}

func TestReducedRegistry(t *testing.T) {
	reg := registry.New(registry.Entry{
		Type:     models.FieldText,
		Label:    "Text",
		Category: registry.CategoryBasic,
		Constructor: func(def models.FieldDefinition, cb fields.ChangeFunc) fields.Field {
			return fields.NewTextField(def, cb)
		},
	})

	f, err := reg.CreateField(models.FieldDefinition{ID: "a", Type: models.FieldText, Name: "a", Label: "A"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "", f.Value())

	_, err = reg.CreateField(models.FieldDefinition{ID: "b", Type: models.FieldNumber, Name: "b", Label: "B"}, nil)
	assert.ErrorIs(t, err, registry.ErrUnknownFieldType)

	problems := reg.ValidateFieldConfig(models.FieldDefinition{ID: "b", Type: models.FieldNumber, Name: "b", Label: "B"})
	assert.Equal(t, []string{`Field "B" has unknown type "number"`}, problems)
}

func intPtr(n int) *int           { return &n }
func floatPtr(n float64) *float64 { return &n }

func TestValidateFieldConfig(t *testing.T) {
	reg := registry.Default()
	base := func(typ models.FieldType) models.FieldDefinition {
		def, err := reg.DefaultFieldConfig(typ, 0)
		require.NoError(t, err)
		def.Label = "Thing"
		return def
	}

	cases := []struct {
		name string
		edit func(*models.FieldDefinition)
		typ  models.FieldType
		want string
	}{
		{"missing label", func(d *models.FieldDefinition) { d.Label = " " }, models.FieldText, "must have a label"},
		{"missing name", func(d *models.FieldDefinition) { d.Name = "" }, models.FieldText, `Field "Thing" must have a name`},
		{"no options", func(d *models.FieldDefinition) { d.Options = nil }, models.FieldSelect, `Field "Thing" must have at least one option`},
		{"empty option", func(d *models.FieldDefinition) { d.Options = []models.FieldOption{{Label: "x"}} }, models.FieldRadio, `Field "Thing" has an option without a value`},
		{"duplicate option", func(d *models.FieldDefinition) {
			d.Options = []models.FieldOption{{Value: "a", Label: "A"}, {Value: "a", Label: "B"}}
		}, models.FieldCheckboxGroup, `Field "Thing" has duplicate option "a"`},
		{"min over max", func(d *models.FieldDefinition) { d.Min, d.Max = floatPtr(5), floatPtr(1) }, models.FieldNumber, `Field "Thing" minimum must not exceed its maximum`},
		{"length bounds", func(d *models.FieldDefinition) { d.MinLength, d.MaxLength = intPtr(5), intPtr(1) }, models.FieldText, `Field "Thing" minimum length must not exceed its maximum length`},
		{"select bounds", func(d *models.FieldDefinition) { d.MinSelect, d.MaxSelect = intPtr(2), intPtr(1) }, models.FieldCheckboxGroup, `Field "Thing" minimum selections must not exceed its maximum`},
		{"bad pattern", func(d *models.FieldDefinition) { d.Pattern = "([" }, models.FieldText, `Field "Thing" has an invalid pattern`},
		{"bad date", func(d *models.FieldDefinition) { d.Earliest = "tomorrow" }, models.FieldDate, `Field "Thing" has an invalid earliest/latest bound`},
		{"reversed time", func(d *models.FieldDefinition) { d.Earliest, d.Latest = "18:00", "08:00" }, models.FieldTime, `Field "Thing" earliest must not be after latest`},
		{"negative files", func(d *models.FieldDefinition) { d.MaxFiles = -1 }, models.FieldPhoto, `Field "Thing" max files must not be negative`},
	}

	for _, tc := range cases {
		t.Run("Error - "+tc.name, func(t *testing.T) {
			def := base(tc.typ)
			tc.edit(&def)
			problems := reg.ValidateFieldConfig(def)
			require.Len(t, problems, 1)
			assert.Contains(t, problems[0], tc.want)
		})
	}

	t.Run("Success - Layout fields need no name", func(t *testing.T) {
		def := base(models.FieldSection)
		assert.Empty(t, reg.ValidateFieldConfig(def))
	})
}

func TestValidateTemplate(t *testing.T) {
	reg := registry.Default()

	t.Run("Error - Empty template", func(t *testing.T) {
		problems := reg.ValidateTemplate(&models.FormTemplate{})
		assert.Equal(t, []string{"Form name is required", "Form must have at least one field"}, problems)
	})

	t.Run("Error - Duplicate names", func(t *testing.T) {
		tmpl := &models.FormTemplate{
			Name: "Intake",
			Fields: []models.FieldDefinition{
				{ID: "1", Type: models.FieldText, Name: "roof", Label: "Roof", Order: 0},
				{ID: "2", Type: models.FieldNumber, Name: "roof", Label: "Roof!", Order: 1},
				{ID: "3", Type: models.FieldSection, Label: "Details", Order: 2},
			},
		}
		assert.Equal(t, []string{`Fields "Roof" and "Roof!" share the name "roof"`}, reg.ValidateTemplate(tmpl))
	})

	t.Run("Error - Duplicate ids", func(t *testing.T) {
		tmpl := &models.FormTemplate{
			Name: "Intake",
			Fields: []models.FieldDefinition{
				{ID: "same", Type: models.FieldText, Name: "a", Label: "A", Order: 0},
				{ID: "same", Type: models.FieldText, Name: "b", Label: "B", Order: 1},
			},
		}
		assert.Equal(t, []string{`Fields "A" and "B" share the id "same"`}, reg.ValidateTemplate(tmpl))
	})

	t.Run("Success - Valid template", func(t *testing.T) {
		tmpl := &models.FormTemplate{
			Name:   "Intake",
			Fields: []models.FieldDefinition{{ID: "1", Type: models.FieldText, Name: "roof", Label: "Roof"}},
		}
		assert.Empty(t, reg.ValidateTemplate(tmpl))
	})
}
