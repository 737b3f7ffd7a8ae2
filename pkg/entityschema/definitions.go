package entityschema

import (
	"github.com/omniboard/backend/pkg/models"
)

// FieldKind identifies the input widget and validation behavior of a field
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindEmail    FieldKind = "email"
	KindTel      FieldKind = "tel"
	KindNumber   FieldKind = "number"
	KindDate     FieldKind = "date"
	KindTextarea FieldKind = "textarea"
	KindSelect   FieldKind = "select"
	KindSwitch   FieldKind = "switch"
)

// OptionSourceRef points a select field at a remote collection. ValueAttr
// and LabelAttr name which attributes of each returned record serve as the
// option value and label.
type OptionSourceRef struct {
	Collection string `json:"collection"`
	ValueAttr  string `json:"value_attr"`
	LabelAttr  string `json:"label_attr"`
}

// FieldDescriptor describes one form input of an entity type.
// A select field carries either static Options or an OptionSource.
type FieldDescriptor struct {
	Name         string           `json:"name"`
	Label        string           `json:"label"`
	Kind         FieldKind        `json:"kind"`
	Required     bool             `json:"required,omitempty"`
	Options      []models.Option  `json:"options,omitempty"`
	OptionSource *OptionSourceRef `json:"option_source,omitempty"`
}

// HasRemoteOptions reports whether the field's choices come from a remote
// collection rather than the static Options list.
func (f FieldDescriptor) HasRemoteOptions() bool {
	return f.OptionSource != nil && f.OptionSource.Collection != ""
}

// EntitySchema is the declarative description of one entity type
type EntitySchema struct {
	Label      string            `json:"label"`
	Collection string            `json:"collection"` // CRUD hook collection path, e.g. "crm/leads"
	Defaults   models.Record     `json:"defaults"`
	Fields     []FieldDescriptor `json:"fields"`
}
