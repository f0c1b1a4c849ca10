// Package engine is the generic entity engine. Driven by the schema
// registry, it validates input, enforces cross-entity integrity rules and
// dispatches every operation to the backend chosen by the mode selector.
package engine

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/biblio/internal/local"
	"github.com/mesh-intelligence/biblio/internal/logging"
	"github.com/mesh-intelligence/biblio/internal/schema"
	"github.com/mesh-intelligence/biblio/pkg/types"
)

// LocalStore is the local backend, which additionally supports whole-state
// export and import.
type LocalStore interface {
	types.Backend
	Snapshot(ctx context.Context) (local.Snapshot, error)
	Replace(ctx context.Context, snap local.Snapshot) error
}

// Engine is the CRUD façade used by every caller.
type Engine struct {
	registry *schema.Registry
	local    LocalStore
	remote   types.Backend
	modes    types.ModeSource
	rules    *rules
	log      *zap.SugaredLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRemote enables the remote backend; modes decides, per operation,
// whether it serves the call.
func WithRemote(remote types.Backend, modes types.ModeSource) Option {
	return func(e *Engine) {
		e.remote = remote
		e.modes = modes
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(e *Engine) { e.log = logging.OrNop(log) }
}

// New returns an engine over the local store.
func New(registry *schema.Registry, store LocalStore, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		local:    store,
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.rules = newRules(registry)
	return e
}

// Registry returns the schema registry driving the engine.
func (e *Engine) Registry() *schema.Registry { return e.registry }

// Mode reports which backend would serve the next operation.
func (e *Engine) Mode() types.Mode {
	if e.remote == nil || e.modes == nil {
		return types.ModeLocal
	}
	return e.modes.Mode()
}

// backend picks the backend for one operation. Every step of the operation
// uses the returned backend, even if the mode changes meanwhile.
func (e *Engine) backend() (types.Backend, types.Mode) {
	if m := e.Mode(); m == types.ModeRemote {
		return e.remote, m
	}
	return e.local, types.ModeLocal
}

// List returns the records of an entity. A non-blank query keeps only records
// where some listing column, as displayed, contains the query
// case-insensitively.
func (e *Engine) List(ctx context.Context, entity, query string) ([]types.Record, error) {
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
	if q == "" {
		return recs, nil
	}

	res := newResolver(e.registry, b)
	out := make([]types.Record, 0, len(recs))
	for _, rec := range recs {
		match, err := matches(ctx, res, ent, rec, q)
		if err != nil {
			return nil, err
		}
		if match {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Get returns one record.
func (e *Engine) Get(ctx context.Context, entity, id string) (types.Record, error) {
	if _, err := e.registry.Entity(entity); err != nil {
		return nil, err
	}
	b, _ := e.backend()
	rec, err := b.Get(ctx, entity, id)
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", entity, id, err)
	}
	return rec, nil
}

// Create validates fields and stores a new record. Any identifier in fields
// is ignored.
func (e *Engine) Create(ctx context.Context, entity string, fields types.Record) (types.Record, error) {
	ent, err := e.registry.Entity(entity)
	if err != nil {
		return nil, err
	}
	b, m := e.backend()

	rec, err := ent.Validate(fields.WithoutID())
	if err != nil {
		return nil, err
	}
	if err := e.rules.check(ctx, b, entity, rec); err != nil {
		return nil, err
	}

	created, err := b.Create(ctx, entity, rec)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", entity, err)
	}
	e.log.Debugw("record created", "entity", entity, "id", created.ID(), "mode", m)
	return created, nil
}

// Update merges partial into the current record, validates the merged
// result and sends the partial to the backend. The identifier cannot be
// changed.
func (e *Engine) Update(ctx context.Context, entity, id string, partial types.Record) (types.Record, error) {
	ent, err := e.registry.Entity(entity)
	if err != nil {
		return nil, err
	}
	b, m := e.backend()

	current, err := b.Get(ctx, entity, id)
	if err != nil {
		return nil, fmt.Errorf("update %s %s: %w", entity, id, err)
	}

	merged, err := ent.Validate(current.Merge(partial))
	if err != nil {
		return nil, err
	}
	if err := e.rules.check(ctx, b, entity, merged); err != nil {
		return nil, err
	}

	patch := make(types.Record, len(partial))
	for k := range partial {
		if k == types.IDField {
			continue
		}
		patch[k] = merged[k]
	}

	updated, err := b.Update(ctx, entity, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update %s %s: %w", entity, id, err)
	}
	e.log.Debugw("record updated", "entity", entity, "id", id, "mode", m)
	return updated, nil
}

// Delete removes a record. Against the local backend, dependent records are
// removed first; against the remote backend no cascade is performed.
func (e *Engine) Delete(ctx context.Context, entity, id string) error {
	if _, err := e.registry.Entity(entity); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("delete %s: %w", entity, types.ErrInvalidID)
	}
	b, m := e.backend()

	if m == types.ModeLocal {
		if err := e.rules.cascade(ctx, b, entity, id, e.log); err != nil {
			return fmt.Errorf("delete %s %s: %w", entity, id, err)
		}
	}
	if err := b.Delete(ctx, entity, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", entity, id, err)
	}
	e.log.Debugw("record deleted", "entity", entity, "id", id, "mode", m)
	return nil
}

// Options returns the choices of a select field: its static options, or for a
// reference field one option per record of the referenced collection.
func (e *Engine) Options(ctx context.Context, entity, field string) ([]schema.Option, error) {
	f, err := e.registry.Field(entity, field)
	if err != nil {
		return nil, err
	}
	if !f.IsReference() {
		return f.Options, nil
	}
	b, _ := e.backend()
	recs, err := b.List(ctx, f.Ref)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", f.Ref, err)
	}
	return e.registry.RefOptions(f, recs)
}
