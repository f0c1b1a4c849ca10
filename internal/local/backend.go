// Package local implements the local store backend: an in-process snapshot of
// every collection, persisted in full to a blob store after each mutation.
package local

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/biblio/internal/logging"
	"github.com/mesh-intelligence/biblio/pkg/types"
)

// Backend is the local implementation of types.Backend. It is safe for
// concurrent use.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	store    BlobStore
	snap     Snapshot
	log      *zap.SugaredLogger
	newID    func() string
}

var (
	_ types.Backend     = (*Backend)(nil)
	_ types.BulkDeleter = (*Backend)(nil)
)

// NewBackend creates a backend over store. Call Attach before use.
func NewBackend(store BlobStore, log *zap.SugaredLogger) *Backend {
	return &Backend{
		store: store,
		log:   logging.OrNop(log),
		newID: generateUUID,
	}
}

// Attach loads the snapshot from the blob store. A missing blob, or one that
// cannot be parsed, is replaced by the empty snapshot, which is persisted
// immediately.
func (b *Backend) Attach(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	data, err := b.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	var snap Snapshot
	if data != nil {
		snap, err = ParseSnapshot(data)
		if err != nil {
			b.log.Warnw("resetting local state",
				"error", fmt.Errorf("%w: %v", types.ErrMalformedPersistedState, err))
		}
	}
	if snap == nil {
		snap = EmptySnapshot()
		if err := b.persist(ctx, snap); err != nil {
			return err
		}
	}

	b.snap = snap
	b.attached = true
	b.log.Debugw("local store attached", "records", snap.Len())
	return nil
}

// Detach closes the blob store. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	b.snap = nil
	return b.store.Close()
}

// List returns copies of every record in the collection, in stored order.
func (b *Backend) List(_ context.Context, entity string) ([]types.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.check(entity); err != nil {
		return nil, err
	}
	recs := b.snap[entity]
	out := make([]types.Record, 0, len(recs))
	for _, rec := range recs {
		out = append(out, copyRecord(rec))
	}
	return out, nil
}

// Get returns a copy of one record.
func (b *Backend) Get(_ context.Context, entity, id string) (types.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.check(entity); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}
	idx := indexOf(b.snap[entity], id)
	if idx < 0 {
		return nil, types.ErrNotFound
	}
	return copyRecord(b.snap[entity][idx]), nil
}

// Create appends a record with a fresh identifier. Any identifier in fields
// is ignored.
func (b *Backend) Create(ctx context.Context, entity string, fields types.Record) (types.Record, error) {
	rec := copyRecord(fields.WithoutID())
	if rec == nil {
		rec = types.Record{}
	}
	rec[types.IDField] = b.newID()

	err := b.mutate(ctx, entity, func(next Snapshot) error {
		next[entity] = append(next[entity], rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return copyRecord(rec), nil
}

// Update merges partial into the stored record.
func (b *Backend) Update(ctx context.Context, entity, id string, partial types.Record) (types.Record, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	var updated types.Record
	err := b.mutate(ctx, entity, func(next Snapshot) error {
		idx := indexOf(next[entity], id)
		if idx < 0 {
			return types.ErrNotFound
		}
		updated = next[entity][idx].Merge(copyRecord(partial))
		next[entity][idx] = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return copyRecord(updated), nil
}

// Delete removes every record carrying id. Deleting a missing record is not
// an error.
func (b *Backend) Delete(ctx context.Context, entity, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	_, err := b.DeleteWhere(ctx, entity, types.IDField, id)
	return err
}

// DeleteWhere removes every record whose field renders as value and returns
// how many were removed. An empty value is rejected with ErrInvalidID.
func (b *Backend) DeleteWhere(ctx context.Context, entity, field, value string) (int, error) {
	if value == "" {
		return 0, types.ErrInvalidID
	}
	removed := 0
	err := b.mutate(ctx, entity, func(next Snapshot) error {
		kept := make([]types.Record, 0, len(next[entity]))
		for _, rec := range next[entity] {
			if rec.String(field) == value {
				removed++
				continue
			}
			kept = append(kept, rec)
		}
		if removed == 0 {
			return errUnchanged
		}
		next[entity] = kept
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Snapshot returns a deep copy of the whole state.
func (b *Backend) Snapshot(_ context.Context) (Snapshot, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrBackendDetached
	}
	return b.snap.Clone(), nil
}

// Replace swaps the whole state for snap and persists it.
func (b *Backend) Replace(ctx context.Context, snap Snapshot) error {
	next := snap.Clone()

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrBackendDetached
	}
	if err := b.persist(ctx, next); err != nil {
		return err
	}
	b.snap = next
	b.log.Infow("local state replaced", "records", next.Len())
	return nil
}

// errUnchanged aborts a mutation that turned out to be a no-op.
var errUnchanged = errors.New("unchanged")

// mutate applies fn to a copy of the snapshot and swaps the copy in only
// after it has been persisted.
func (b *Backend) mutate(ctx context.Context, entity string, fn func(next Snapshot) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.check(entity); err != nil {
		return err
	}

	next := b.shallowCopy(entity)
	if err := fn(next); err != nil {
		return err
	}
	if err := b.persist(ctx, next); err != nil {
		return err
	}
	b.snap = next
	return nil
}

// shallowCopy copies the collection map and the slice of the collection
// about to change. Stored records are never modified in place, so the other
// collections can be shared.
func (b *Backend) shallowCopy(entity string) Snapshot {
	next := make(Snapshot, len(b.snap))
	for name, recs := range b.snap {
		next[name] = recs
	}
	recs := b.snap[entity]
	next[entity] = append(make([]types.Record, 0, len(recs)+1), recs...)
	return next
}

// persist serializes snap to the blob store. The caller must hold b.mu.
func (b *Backend) persist(ctx context.Context, snap Snapshot) error {
	data, err := snap.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := b.store.Save(ctx, data); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

// check verifies the backend is attached and entity is a known collection.
// The caller must hold b.mu.
func (b *Backend) check(entity string) error {
	if !b.attached {
		return types.ErrBackendDetached
	}
	if !types.IsCollection(entity) {
		return fmt.Errorf("%w: %q", types.ErrUnknownEntity, entity)
	}
	return nil
}

func indexOf(recs []types.Record, id string) int {
	for i, rec := range recs {
		if rec.ID() == id {
			return i
		}
	}
	return -1
}

// generateUUID generates a new UUID v7 for record IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
