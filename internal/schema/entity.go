package schema

import (
	"strings"

	"github.com/mesh-intelligence/biblio/pkg/types"
)

// Entity is the declarative description of one collection.
type Entity struct {
	Name    string
	Title   string
	Fields  []Field
	Columns []string
	// Display renders the human name of a record, used wherever another
	// record refers to this one. Nil falls back to the identifier.
	Display func(types.Record) string
}

// Field returns the named field.
func (e *Entity) Field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// DisplayName renders rec through Display.
func (e *Entity) DisplayName(rec types.Record) string {
	if e.Display == nil {
		return rec.ID()
	}
	return e.Display(rec)
}

// Validate checks rec against the entity's fields and returns a copy with
// every declared field normalized. Required fields are checked first, then
// kinds, each in declaration order; the first violation is returned as a
// *types.ValidationError.
func (e *Entity) Validate(rec types.Record) (types.Record, error) {
	for _, f := range e.Fields {
		if f.Required && !rec.Has(f.Name) {
			return nil, f.violation(e.Name, types.ErrMissingRequiredField)
		}
	}

	out := rec.Clone()
	if out == nil {
		out = types.Record{}
	}
	for _, f := range e.Fields {
		v, ok := out[f.Name]
		if !ok {
			continue
		}
		nv, err := f.Normalize(v)
		if err != nil {
			return nil, f.violation(e.Name, err)
		}
		out[f.Name] = nv
	}
	return out, nil
}

// DisplayPerson renders "nom prenom", falling back to the email address and
// then to "N/A".
func DisplayPerson(rec types.Record) string {
	parts := make([]string, 0, 2)
	for _, k := range []string{"nom", "prenom"} {
		if v := rec.String(k); v != "" {
			parts = append(parts, v)
		}
	}
	if name := strings.Join(parts, " "); name != "" {
		return name
	}
	if email := rec.String("email"); email != "" {
		return email
	}
	return "N/A"
}

func displayField(name string) func(types.Record) string {
	return func(rec types.Record) string { return rec.String(name) }
}
