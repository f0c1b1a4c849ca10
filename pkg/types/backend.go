package types

import "context"

// Backend provides uniform CRUD operations over the standard collections.
// The local snapshot store and the remote API client both implement it, and
// the entity engine dispatches to whichever one the mode selector picks.
type Backend interface {
	// List returns every record of the collection, in stored order.
	List(ctx context.Context, entity string) ([]Record, error)

	// Get returns the record with the given identifier.
	// Returns ErrNotFound if no record exists with that ID.
	Get(ctx context.Context, entity, id string) (Record, error)

	// Create stores a new record and returns it with its assigned identifier.
	Create(ctx context.Context, entity string, fields Record) (Record, error)

	// Update merges partial into the stored record and returns the result.
	// Returns ErrNotFound if no record exists with that ID.
	Update(ctx context.Context, entity, id string, partial Record) (Record, error)

	// Delete removes the record with the given identifier.
	Delete(ctx context.Context, entity, id string) error
}

// BulkDeleter is implemented by backends that can remove every record whose
// field equals value in a single write. Cascading deletes use it when
// available.
type BulkDeleter interface {
	DeleteWhere(ctx context.Context, entity, field, value string) (int, error)
}

// Mode names the backend that serves engine operations.
type Mode string

// Backend modes.
const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

// String implements fmt.Stringer.
func (m Mode) String() string { return string(m) }

// ModeSource reports the mode that should serve the next operation.
type ModeSource interface {
	Mode() Mode
}
