package integration

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/biblio/pkg/types"
)

func TestHealth(t *testing.T) {
	env := NewTestEnv(t)
	env.StartAPI()

	resp, err := http.Get("http://" + env.Addr + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true,"service":"biblio-api"}`, string(body))
}

func TestRemoteModeUsesAPI(t *testing.T) {
	env := NewTestEnv(t)
	env.StartAPI()

	result := env.MustRunBiblio("mode")
	assert.Equal(t, "remote", strings.TrimSpace(result.Stdout))

	result = env.MustRunBiblio("create", "--json", "livres", "titre=Dune")
	book := ParseJSON[types.Record](t, result.Stdout)
	assert.NotEmpty(t, book.ID())
	// The API fills defaults and timestamps.
	assert.Equal(t, float64(1), book["exemplaires"])
	assert.NotEmpty(t, book["createdAt"])

	result = env.MustRunBiblio("list", "--json", "livres")
	books := ParseJSON[[]types.Record](t, result.Stdout)
	require.Len(t, books, 1)
	assert.Equal(t, book.ID(), books[0].ID())

	// Nothing reached the local snapshot.
	result = env.MustRunBiblio("export")
	snap := ParseJSON[map[string][]types.Record](t, result.Stdout)
	assert.Empty(t, snap[types.CollectionItems])
}

func TestRemoteDeleteDoesNotCascade(t *testing.T) {
	env := NewTestEnv(t)
	env.StartAPI()

	member := ParseJSON[types.Record](t, env.MustRunBiblio("create", "--json", "adherents", "nom=Dupont", "prenom=Jeanne").Stdout)
	book := ParseJSON[types.Record](t, env.MustRunBiblio("create", "--json", "livres", "titre=Dune").Stdout)
	env.MustRunBiblio("create", "emprunts",
		"id_adherent="+member.ID(), "id_livre="+book.ID(), "date_emprunt=2024-03-01")

	env.MustRunBiblio("delete", "adherents", member.ID())

	loans := ParseJSON[[]types.Record](t, env.MustRunBiblio("list", "--json", "emprunts").Stdout)
	require.Len(t, loans, 1)
	assert.Equal(t, "en_cours", loans[0]["statut"])
}

func TestRemoteReferenceCheck(t *testing.T) {
	env := NewTestEnv(t)
	env.StartAPI()

	result := env.RunBiblio("create", "emprunts",
		"id_adherent=missing", "id_livre=missing", "date_emprunt=2024-03-01")
	assert.Equal(t, 1, result.ExitCode)
	assert.Contains(t, result.Stderr, types.ErrInvalidReference.Error())
}

func TestFallbackToLocal(t *testing.T) {
	env := NewTestEnv(t)
	env.StartAPI()
	assert.Equal(t, "remote", strings.TrimSpace(env.MustRunBiblio("mode").Stdout))

	env.StopAPI()
	assert.Equal(t, "local", strings.TrimSpace(env.MustRunBiblio("mode").Stdout))

	result := env.MustRunBiblio("create", "--json", "categories", "nom=Roman")
	category := ParseJSON[types.Record](t, result.Stdout)

	snap := ParseJSON[map[string][]types.Record](t, env.MustRunBiblio("export").Stdout)
	require.Len(t, snap[types.CollectionCategories], 1)
	assert.Equal(t, category.ID(), snap[types.CollectionCategories][0].ID())
}
