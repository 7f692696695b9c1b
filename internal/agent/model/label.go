package model

import (
	"strings"
	"time"
)

// LabelField names one of the required label attributes.
type LabelField int

const (
	FieldName LabelField = iota
	FieldDescription
	FieldRecipient
)

// RequiredFields lists every field that must be filled for a label to be
// complete, in collection order.
var RequiredFields = []LabelField{FieldName, FieldDescription, FieldRecipient}

// Key returns the JSON key used by the extractor and the store.
func (f LabelField) Key() string {
	switch f {
	case FieldName:
		return "name"
	case FieldDescription:
		return "description"
	case FieldRecipient:
		return "recipient"
	default:
		return ""
	}
}

// Title returns the capitalised field name used in guidance text.
func (f LabelField) Title() string {
	k := f.Key()
	if k == "" {
		return ""
	}
	return strings.ToUpper(k[:1]) + k[1:]
}

func (f LabelField) String() string {
	return f.Key()
}

// LabelRecord is the partially or fully filled label collected from one
// conversation participant. An empty string means "not collected yet".
type LabelRecord struct {
	Name        string     `json:"name,omitempty"`
	Description string     `json:"description,omitempty"`
	Recipient   string     `json:"recipient,omitempty"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// Value returns the stored value of f.
func (r LabelRecord) Value(f LabelField) string {
	switch f {
	case FieldName:
		return r.Name
	case FieldDescription:
		return r.Description
	case FieldRecipient:
		return r.Recipient
	default:
		return ""
	}
}

// With returns a copy of r with f set to v.
func (r LabelRecord) With(f LabelField, v string) LabelRecord {
	switch f {
	case FieldName:
		r.Name = v
	case FieldDescription:
		r.Description = v
	case FieldRecipient:
		r.Recipient = v
	}
	return r
}

// Has reports whether f holds a non-blank value.
func (r LabelRecord) Has(f LabelField) bool {
	return strings.TrimSpace(r.Value(f)) != ""
}

// MissingFields returns the required fields that are still blank.
func (r LabelRecord) MissingFields() []LabelField {
	var missing []LabelField
	for _, f := range RequiredFields {
		if !r.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// IsComplete reports whether name, description and recipient are all set.
// LastUpdated plays no part in completion.
func (r LabelRecord) IsComplete() bool {
	return len(r.MissingFields()) == 0
}

// LabelExtraction is the sparse output of one extraction pass. Blank fields
// carry no information.
type LabelExtraction struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Recipient   string `json:"recipient,omitempty"`
}

// Value returns the extracted value of f.
func (e LabelExtraction) Value(f LabelField) string {
	return LabelRecord{Name: e.Name, Description: e.Description, Recipient: e.Recipient}.Value(f)
}

// IsEmpty reports whether nothing was extracted.
func (e LabelExtraction) IsEmpty() bool {
	for _, f := range RequiredFields {
		if strings.TrimSpace(e.Value(f)) != "" {
			return false
		}
	}
	return true
}
