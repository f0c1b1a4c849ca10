package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/biblio/internal/schema"
	"github.com/mesh-intelligence/biblio/pkg/types"
)

// Row is the listing projection of one record: the displayed value of each
// listing column.
type Row struct {
	ID    string
	Cells []string
}

// resolver renders field values for display, replacing reference
// identifiers by the referenced record's display name. Referenced
// collections are fetched from the operation's backend at most once.
type resolver struct {
	registry *schema.Registry
	backend  types.Backend
	cache    map[string]map[string]types.Record
}

func newResolver(registry *schema.Registry, b types.Backend) *resolver {
	return &resolver{
		registry: registry,
		backend:  b,
		cache:    make(map[string]map[string]types.Record),
	}
}

// display renders rec[field]. An unresolvable reference renders as "".
func (r *resolver) display(ctx context.Context, ent *schema.Entity, rec types.Record, field string) (string, error) {
	f, ok := ent.Field(field)
	if !ok || !f.IsReference() {
		return rec.String(field), nil
	}

	id := rec.String(field)
	if id == "" {
		return "", nil
	}
	byID, err := r.load(ctx, f.Ref)
	if err != nil {
		return "", err
	}
	target, ok := byID[id]
	if !ok {
		return "", nil
	}
	refEnt, err := r.registry.Entity(f.Ref)
	if err != nil {
		return "", err
	}
	return refEnt.DisplayName(target), nil
}

func (r *resolver) load(ctx context.Context, entity string) (map[string]types.Record, error) {
	if byID, ok := r.cache[entity]; ok {
		return byID, nil
	}
	recs, err := r.backend.List(ctx, entity)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", entity, err)
	}
	byID := make(map[string]types.Record, len(recs))
	for _, rec := range recs {
		byID[rec.ID()] = rec
	}
	r.cache[entity] = byID
	return byID, nil
}

// matches reports whether any listing column of rec, as displayed, contains
// q. q must already be lower-cased.
func matches(ctx context.Context, res *resolver, ent *schema.Entity, rec types.Record, q string) (bool, error) {
	for _, col := range ent.Columns {
		v, err := res.display(ctx, ent, rec, col)
		if err != nil {
			return false, err
		}
		if strings.Contains(strings.ToLower(v), q) {
			return true, nil
		}
	}
	return false, nil
}

// Rows lists an entity like List and projects each record onto its listing
// columns, with references resolved to display names.
func (e *Engine) Rows(ctx context.Context, entity, query string) ([]Row, error) {
	ent, err := e.registry.Entity(entity)
	if err != nil {
		return nil, err
	}
	b, _ := e.backend()

	recs, err := b.List(ctx, entity)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", entity, err)
	}

	q := strings.ToLower(strings.TrimSpace(query))
	res := newResolver(e.registry, b)
	rows := make([]Row, 0, len(recs))
	for _, rec := range recs {
		if q != "" {
			ok, err := matches(ctx, res, ent, rec, q)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		row := Row{ID: rec.ID(), Cells: make([]string, len(ent.Columns))}
		for i, col := range ent.Columns {
			if row.Cells[i], err = res.display(ctx, ent, rec, col); err != nil {
				return nil, err
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
