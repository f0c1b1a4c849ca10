package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/biblio/internal/schema"
	"github.com/mesh-intelligence/biblio/pkg/types"
)

// dependent is a field of another collection that references an entity.
type dependent struct {
	entity string
	field  string
}

// dateRange requires end >= start when both are set.
type dateRange struct {
	start string
	end   string
}

// rules holds the cross-entity invariants. Reference checks and cascades are
// derived from the reference fields of the registry.
type rules struct {
	registry   *schema.Registry
	dependents map[string][]dependent
	dateRanges map[string][]dateRange
}

func newRules(registry *schema.Registry) *rules {
	r := &rules{
		registry:   registry,
		dependents: make(map[string][]dependent),
		dateRanges: map[string][]dateRange{
			types.CollectionLoans: {{start: schema.FieldDateBorrowed, end: schema.FieldDateReturned}},
		},
	}
	for _, name := range registry.Names() {
		fields, _ := registry.Fields(name)
		for _, f := range fields {
			if f.IsReference() {
				r.dependents[f.Ref] = append(r.dependents[f.Ref], dependent{entity: name, field: f.Name})
			}
		}
	}
	return r
}

// check verifies every reference of rec resolves through b, then the date
// ranges. rec must already have passed schema validation.
func (r *rules) check(ctx context.Context, b types.Backend, entity string, rec types.Record) error {
	ent, err := r.registry.Entity(entity)
	if err != nil {
		return err
	}

	for _, f := range ent.Fields {
		if !f.IsReference() || !rec.Has(f.Name) {
			continue
		}
		_, err := b.Get(ctx, f.Ref, rec.String(f.Name))
		if errors.Is(err, types.ErrNotFound) || errors.Is(err, types.ErrInvalidID) {
			return &types.ValidationError{Entity: entity, Field: f.Name, Label: f.Label, Err: types.ErrInvalidReference}
		}
		if err != nil {
			return fmt.Errorf("resolve %s: %w", f.Name, err)
		}
	}

	for _, dr := range r.dateRanges[entity] {
		if !rec.Has(dr.start) || !rec.Has(dr.end) {
			continue
		}
		// Dates are normalized to YYYY-MM-DD, so text order is date order.
		if rec.String(dr.end) < rec.String(dr.start) {
			f, _ := ent.Field(dr.end)
			return &types.ValidationError{Entity: entity, Field: dr.end, Label: f.Label, Err: types.ErrInvalidDateRange}
		}
	}
	return nil
}

// cascade removes every record that references entity/id.
func (r *rules) cascade(ctx context.Context, b types.Backend, entity, id string, log *zap.SugaredLogger) error {
	for _, dep := range r.dependents[entity] {
		n, err := deleteWhere(ctx, b, dep.entity, dep.field, id)
		if err != nil {
			return fmt.Errorf("cascade %s.%s: %w", dep.entity, dep.field, err)
		}
		if n > 0 {
			log.Infow("cascade delete", "entity", entity, "id", id, "dependents", dep.entity, "removed", n)
		}
	}
	return nil
}

func deleteWhere(ctx context.Context, b types.Backend, entity, field, value string) (int, error) {
	if bulk, ok := b.(types.BulkDeleter); ok {
		return bulk.DeleteWhere(ctx, entity, field, value)
	}
	recs, err := b.List(ctx, entity)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, rec := range recs {
		if rec.String(field) != value {
			continue
		}
		if err := b.Delete(ctx, entity, rec.ID()); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
