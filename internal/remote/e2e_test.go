package remote_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/biblio/internal/local"
	"github.com/mesh-intelligence/biblio/internal/remote"
	"github.com/mesh-intelligence/biblio/internal/schema"
	"github.com/mesh-intelligence/biblio/internal/server"
	"github.com/mesh-intelligence/biblio/pkg/types"
)

// TestClientAgainstServer runs the client against a live service backed by a
// memory store.
func TestClientAgainstServer(t *testing.T) {
	ctx := context.Background()
	store := local.NewBackend(local.NewMemoryStore(), nil)
	require.NoError(t, store.Attach(ctx))
	defer store.Detach()

	srv := httptest.NewServer(server.New(server.Config{}, schema.Standard(), store, nil).Handler())
	defer srv.Close()

	c := remote.New(srv.URL + "/api")
	require.NoError(t, c.Probe(ctx))

	created, err := c.Create(ctx, types.CollectionItems, types.Record{"titre": "Dune"})
	require.NoError(t, err)
	id := created.ID()
	require.NotEmpty(t, id)
	assert.Equal(t, float64(1), created["exemplaires"])

	got, err := c.Get(ctx, types.CollectionItems, id)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got["titre"])

	updated, err := c.Update(ctx, types.CollectionItems, id, types.Record{"auteur": "Herbert"})
	require.NoError(t, err)
	assert.Equal(t, "Herbert", updated["auteur"])
	assert.Equal(t, "Dune", updated["titre"])

	recs, err := c.List(ctx, types.CollectionItems)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	require.NoError(t, c.Delete(ctx, types.CollectionItems, id))
	err = c.Delete(ctx, types.CollectionItems, id)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = c.Get(ctx, types.CollectionItems, id)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = c.Create(ctx, types.CollectionItems, types.Record{"auteur": "nobody"})
	assert.ErrorIs(t, err, types.ErrAPIOperationFailed)
}

func TestProbeUnreachable(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	c := remote.New(url + "/api")
	assert.ErrorIs(t, c.Probe(context.Background()), types.ErrAPIOperationFailed)
}
