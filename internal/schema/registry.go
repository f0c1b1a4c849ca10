// Package schema holds the declarative description of the managed entities:
// their fields, kinds, required-ness, listing columns and display names. The
// entity engine, the API service and the CLI are all driven from it.
package schema

import (
	"fmt"

	"github.com/mesh-intelligence/biblio/pkg/types"
)

// Registry maps collection names to entity descriptions.
type Registry struct {
	names    []string
	entities map[string]*Entity
}

// NewRegistry builds a registry from entities, keeping their order.
func NewRegistry(entities ...Entity) *Registry {
	r := &Registry{entities: make(map[string]*Entity, len(entities))}
	for i := range entities {
		e := entities[i]
		r.names = append(r.names, e.Name)
		r.entities[e.Name] = &e
	}
	return r
}

// Entity returns the entity description for name.
func (r *Registry) Entity(name string) (*Entity, error) {
	e, ok := r.entities[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownEntity, name)
	}
	return e, nil
}

// Fields returns the fields of an entity in declaration order.
func (r *Registry) Fields(name string) ([]Field, error) {
	e, err := r.Entity(name)
	if err != nil {
		return nil, err
	}
	return e.Fields, nil
}

// Columns returns the listing columns of an entity.
func (r *Registry) Columns(name string) ([]string, error) {
	e, err := r.Entity(name)
	if err != nil {
		return nil, err
	}
	return e.Columns, nil
}

// Field returns one field of an entity.
func (r *Registry) Field(entity, field string) (Field, error) {
	e, err := r.Entity(entity)
	if err != nil {
		return Field{}, err
	}
	f, ok := e.Field(field)
	if !ok {
		return Field{}, fmt.Errorf("%s: unknown field %q", entity, field)
	}
	return f, nil
}

// Names returns the registered collection names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// RefOptions computes the choices of a reference field from the current
// records of the referenced collection. Static options are returned as is.
func (r *Registry) RefOptions(f Field, records []types.Record) ([]Option, error) {
	if !f.IsReference() {
		return f.Options, nil
	}
	target, err := r.Entity(f.Ref)
	if err != nil {
		return nil, err
	}
	opts := make([]Option, 0, len(records))
	for _, rec := range records {
		opts = append(opts, Option{Value: rec.ID(), Label: target.DisplayName(rec)})
	}
	return opts, nil
}
