package remote

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/biblio/pkg/types"
)

const testBase = "http://biblio.test/api"

func newMockedClient(t *testing.T) *Client {
	t.Helper()
	hc := &http.Client{}
	gock.InterceptClient(hc)
	t.Cleanup(func() {
		gock.RestoreClient(hc)
		gock.Off()
	})
	return New(testBase+"/", WithHTTPClient(hc))
}

func TestList(t *testing.T) {
	c := newMockedClient(t)
	gock.New("http://biblio.test").
		Get("/api/livres$").
		Reply(200).
		JSON([]map[string]any{{"_id": "b1", "titre": "Dune"}})

	recs, err := c.List(context.Background(), types.CollectionItems)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "b1", recs[0].ID())
	assert.Equal(t, "Dune", recs[0]["titre"])
	assert.True(t, gock.IsDone())
}

func TestListNullBody(t *testing.T) {
	c := newMockedClient(t)
	gock.New("http://biblio.test").Get("/api/users$").Reply(200).BodyString("null")

	recs, err := c.List(context.Background(), types.CollectionUsers)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestGetNotFound(t *testing.T) {
	c := newMockedClient(t)
	gock.New("http://biblio.test").
		Get("/api/adherents/nope$").
		Reply(404).
		JSON(map[string]string{"error": "Not found"})

	_, err := c.Get(context.Background(), types.CollectionMembers, "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, err, types.ErrAPIOperationFailed)

	var apiErr *types.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, OpGet, apiErr.Op)
	assert.Equal(t, 404, apiErr.Status)
}

func TestCreateSendsBodyUnmodified(t *testing.T) {
	c := newMockedClient(t)
	gock.New("http://biblio.test").
		Post("/api/adherents$").
		MatchType("json").
		JSON(map[string]any{"nom": "Doe", "prenom": "Jane"}).
		Reply(201).
		JSON(map[string]any{"_id": "665f1c", "nom": "Doe", "prenom": "Jane"})

	rec, err := c.Create(context.Background(), types.CollectionMembers, types.Record{"nom": "Doe", "prenom": "Jane"})
	require.NoError(t, err)
	assert.Equal(t, "665f1c", rec.ID())
	assert.True(t, gock.IsDone())
}

func TestUpdateAndDelete(t *testing.T) {
	c := newMockedClient(t)
	gock.New("http://biblio.test").
		Put("/api/livres/b1$").
		JSON(map[string]any{"titre": "Dune II"}).
		Reply(200).
		JSON(map[string]any{"_id": "b1", "titre": "Dune II"})
	gock.New("http://biblio.test").
		Delete("/api/livres/b1$").
		Reply(200).
		JSON(map[string]bool{"ok": true})

	ctx := context.Background()
	rec, err := c.Update(ctx, types.CollectionItems, "b1", types.Record{"titre": "Dune II"})
	require.NoError(t, err)
	assert.Equal(t, "Dune II", rec["titre"])

	require.NoError(t, c.Delete(ctx, types.CollectionItems, "b1"))
	assert.True(t, gock.IsDone())
}

func TestServerErrorIsAPIError(t *testing.T) {
	c := newMockedClient(t)
	gock.New("http://biblio.test").Delete("/api/livres/b1$").Reply(500)

	err := c.Delete(context.Background(), types.CollectionItems, "b1")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrAPIOperationFailed)
	assert.NotErrorIs(t, err, types.ErrNotFound)
}

func TestTransportErrorIsAPIError(t *testing.T) {
	c := newMockedClient(t)
	gock.New("http://biblio.test").Get("/api/emprunts$").ReplyError(errors.New("connection refused"))

	_, err := c.List(context.Background(), types.CollectionLoans)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrAPIOperationFailed)

	var apiErr *types.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Zero(t, apiErr.Status)
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name    string
		mock    func()
		wantErr bool
	}{
		{
			name:    "reachable",
			mock:    func() { gock.New("http://biblio.test").Get("/api/adherents$").Reply(200).JSON([]any{}) },
			wantErr: false,
		},
		{
			name:    "non-2xx",
			mock:    func() { gock.New("http://biblio.test").Get("/api/adherents$").Reply(503) },
			wantErr: true,
		},
		{
			name:    "unreachable",
			mock:    func() { gock.New("http://biblio.test").Get("/api/adherents$").ReplyError(errors.New("dial tcp: refused")) },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newMockedClient(t)
			tt.mock()

			err := c.Probe(context.Background())
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrAPIOperationFailed)
			} else {
				assert.NoError(t, err)
			}
			assert.True(t, gock.IsDone())
		})
	}
}

func TestOptions(t *testing.T) {
	c := New("http://x/api///", WithTimeout(3*time.Second))
	assert.Equal(t, "http://x/api", c.Base())
	assert.Equal(t, 3*time.Second, c.HTTPClient().Timeout)

	assert.Zero(t, New("http://x/api").HTTPClient().Timeout)
}
