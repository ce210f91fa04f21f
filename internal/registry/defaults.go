package registry

import (
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/fields"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/models"
)

func defaultOptions() []models.FieldOption {
	return []models.FieldOption{
		{Value: "option_1", Label: "Option 1"},
		{Value: "option_2", Label: "Option 2"},
	}
}

func textField(def models.FieldDefinition, cb fields.ChangeFunc) fields.Field {
	return fields.NewTextField(def, cb)
}

// Default returns the registry of every built-in field type.
func Default() *Registry {
	return New(DefaultEntries()...)
}

// DefaultEntries lists the built-in entries so callers can assemble a
// reduced or extended registry.
func DefaultEntries() []Entry {
	return []Entry{
		{
			Type: models.FieldText, Label: "Text", Icon: "type", Category: CategoryBasic,
			Constructor: textField,
			Defaults: func(d *models.FieldDefinition) {
				d.Placeholder = "Enter text"
			},
		},
		{
			Type: models.FieldTextarea, Label: "Text Area", Icon: "align-left", Category: CategoryBasic,
			Constructor: textField,
			Defaults: func(d *models.FieldDefinition) {
				d.Rows = 4
			},
		},
		{
			Type: models.FieldNumber, Label: "Number", Icon: "hash", Category: CategoryBasic,
			Constructor: func(def models.FieldDefinition, cb fields.ChangeFunc) fields.Field {
				return fields.NewNumberField(def, cb)
			},
		},
		{
			Type: models.FieldDate, Label: "Date", Icon: "calendar", Category: CategoryBasic,
			Constructor: textField,
		},
		{
			Type: models.FieldTime, Label: "Time", Icon: "clock", Category: CategoryBasic,
			Constructor: textField,
		},
		{
			Type: models.FieldSelect, Label: "Dropdown", Icon: "chevron-down", Category: CategoryChoice,
			Constructor: func(def models.FieldDefinition, cb fields.ChangeFunc) fields.Field {
				return fields.NewSelectField(def, cb)
			},
			Defaults: func(d *models.FieldDefinition) {
				d.Options = defaultOptions()
				d.Placeholder = "Select..."
			},
		},
		{
			Type: models.FieldCheckboxGroup, Label: "Checkboxes", Icon: "check-square", Category: CategoryChoice,
			Constructor: func(def models.FieldDefinition, cb fields.ChangeFunc) fields.Field {
				return fields.NewCheckboxGroupField(def, cb)
			},
			Defaults: func(d *models.FieldDefinition) {
				d.Options = defaultOptions()
			},
		},
		{
			Type: models.FieldRadio, Label: "Radio Buttons", Icon: "circle", Category: CategoryChoice,
			Constructor: func(def models.FieldDefinition, cb fields.ChangeFunc) fields.Field {
				return fields.NewRadioField(def, cb)
			},
			Defaults: func(d *models.FieldDefinition) {
				d.Options = defaultOptions()
			},
		},
		{
			Type: models.FieldToggle, Label: "Toggle", Icon: "toggle-right", Category: CategoryChoice,
			Constructor: func(def models.FieldDefinition, cb fields.ChangeFunc) fields.Field {
				return fields.NewToggleField(def, cb)
			},
		},
		{
			Type: models.FieldPhoto, Label: "Photo", Icon: "camera", Category: CategoryMedia,
			Constructor: func(def models.FieldDefinition, cb fields.ChangeFunc) fields.Field {
				return fields.NewPhotoField(def, cb)
			},
			Defaults: func(d *models.FieldDefinition) {
				d.Multiple = true
				d.MaxFiles = 5
				d.Accept = "image/*"
			},
		},
		{
			Type: models.FieldSignature, Label: "Signature", Icon: "pen-tool", Category: CategoryMedia,
			Constructor: func(def models.FieldDefinition, cb fields.ChangeFunc) fields.Field {
				return fields.NewSignatureField(def, cb)
			},
			Defaults: func(d *models.FieldDefinition) {
				d.Width = 400
				d.Height = 200
			},
		},
		{
			Type: models.FieldSection, Label: "Section", Icon: "layout", Category: CategoryLayout,
			Constructor: func(def models.FieldDefinition, cb fields.ChangeFunc) fields.Field {
				return fields.NewSectionField(def, cb)
			},
		},
		{
			Type: models.FieldInfo, Label: "Info Text", Icon: "info", Category: CategoryLayout,
			Constructor: func(def models.FieldDefinition, cb fields.ChangeFunc) fields.Field {
				return fields.NewInfoField(def, cb)
			},
			Defaults: func(d *models.FieldDefinition) {
				d.Content = "Add information here"
				d.Style = "info"
			},
		},
	}
}
