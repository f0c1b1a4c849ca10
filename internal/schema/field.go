package schema

import (
	"github.com/mesh-intelligence/biblio/pkg/types"
)

// Option is one choice of a select field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field describes one attribute of an entity.
type Field struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Kind     Kind     `json:"kind"`
	Required bool     `json:"required,omitempty"`
	Options  []Option `json:"options,omitempty"`
	// Ref names the collection a select field points into. Its options are
	// computed from current data rather than listed statically.
	Ref string `json:"ref,omitempty"`
}

// IsReference reports whether the field holds another record's identifier.
func (f Field) IsReference() bool {
	return f.Ref != ""
}

// Normalize checks value against the field kind and returns the value to
// store. Blank values pass unchanged; required-ness is checked separately.
func (f Field) Normalize(value any) (any, error) {
	return f.Kind.normalize(value, f.Options)
}

func (f Field) violation(entity string, err error) *types.ValidationError {
	return &types.ValidationError{Entity: entity, Field: f.Name, Label: f.Label, Err: err}
}
