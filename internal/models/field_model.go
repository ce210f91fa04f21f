package models

type FieldType string

const (
	FieldText          FieldType = "text"
	FieldNumber        FieldType = "number"
	FieldSelect        FieldType = "select"
	FieldTextarea      FieldType = "textarea"
	FieldDate          FieldType = "date"
	FieldTime          FieldType = "time"
	FieldCheckboxGroup FieldType = "checkbox-group"
	FieldRadio         FieldType = "radio"
	FieldToggle        FieldType = "toggle"
	FieldPhoto         FieldType = "photo"
	FieldSignature     FieldType = "signature"
	FieldSection       FieldType = "section"
	FieldInfo          FieldType = "info"
)

// IsLayout reports whether the type only structures the form and never
// contributes a value to the data record.
func (t FieldType) IsLayout() bool {
	return t == FieldSection || t == FieldInfo
}

// HasOptions reports whether the type is configured with an option list.
func (t FieldType) HasOptions() bool {
	return t == FieldSelect || t == FieldRadio || t == FieldCheckboxGroup
}

type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type FieldDefinition struct {
	ID              string    `json:"id"`
	Type            FieldType `json:"type"`
	Name            string    `json:"name,omitempty"`
	Label           string    `json:"label"`
	Required        bool      `json:"required"`
	Order           int       `json:"order"`
	NameManuallySet bool      `json:"nameManuallySet,omitempty"`
	Placeholder     string    `json:"placeholder,omitempty"`
	HelpText        string    `json:"helpText,omitempty"`

	// select, radio, checkbox-group
	Options   []FieldOption `json:"options,omitempty"`
	MinSelect *int          `json:"minSelect,omitempty"`
	MaxSelect *int          `json:"maxSelect,omitempty"`

	// number
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
	Step *float64 `json:"step,omitempty"`

	// text, textarea
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
	Rows      int    `json:"rows,omitempty"`

	// date (2006-01-02) and time (15:04) bounds
	Earliest string `json:"earliest,omitempty"`
	Latest   string `json:"latest,omitempty"`

	// photo
	Multiple bool   `json:"multiple,omitempty"`
	MaxFiles int    `json:"maxFiles,omitempty"`
	Accept   string `json:"accept,omitempty"`

	// signature
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// info
	Content   string `json:"content,omitempty"`
	Style     string `json:"style,omitempty"`
	AllowHTML bool   `json:"allowHtml,omitempty"`

	// section
	Description string `json:"description,omitempty"`
}

// Clone returns a deep copy so edits never alias another definition's
// pointer or slice fields.
func (f FieldDefinition) Clone() FieldDefinition {
	c := f
	if f.Options != nil {
		c.Options = append([]FieldOption(nil), f.Options...)
	}
	c.MinSelect = cloneInt(f.MinSelect)
	c.MaxSelect = cloneInt(f.MaxSelect)
	c.MinLength = cloneInt(f.MinLength)
	c.MaxLength = cloneInt(f.MaxLength)
	c.Min = cloneFloat(f.Min)
	c.Max = cloneFloat(f.Max)
	c.Step = cloneFloat(f.Step)
	return c
}

func (f FieldDefinition) HasOption(value string) bool {
	for _, o := range f.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// PhotoFile is one captured image inside a photo field value.
type PhotoFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data"`
}
