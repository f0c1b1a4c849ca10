package engine

import (
	"context"
	"fmt"
	"io"

	"github.com/mesh-intelligence/biblio/internal/local"
	"github.com/mesh-intelligence/biblio/pkg/types"
)

// Export writes the full local state as indented JSON.
func (e *Engine) Export(ctx context.Context, w io.Writer) error {
	snap, err := e.local.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	data, err := snap.Indented()
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// Import replaces the local state with the document read from r and returns
// the number of records imported. A document that is not a JSON object fails
// with types.ErrMalformedImport and leaves the state unchanged.
func (e *Engine) Import(ctx context.Context, r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("import: %w", err)
	}
	snap, err := local.ParseSnapshot(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", types.ErrMalformedImport, err)
	}
	if err := e.local.Replace(ctx, snap); err != nil {
		return 0, fmt.Errorf("import: %w", err)
	}
	e.log.Infow("local state imported", "records", snap.Len())
	return snap.Len(), nil
}
