package server_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"

	gojson "github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mesh-intelligence/biblio/internal/local"
	"github.com/mesh-intelligence/biblio/internal/schema"
	"github.com/mesh-intelligence/biblio/internal/server"
)

var _ = Describe("Server", func() {
	var (
		store   *local.Backend
		handler http.Handler
	)

	do := func(method, path string, body any) (int, map[string]any) {
		var reader *bytes.Reader
		if body != nil {
			payload, err := gojson.Marshal(body)
			Expect(err).ToNot(HaveOccurred())
			reader = bytes.NewReader(payload)
		} else {
			reader = bytes.NewReader(nil)
		}
		req := httptest.NewRequest(method, path, reader)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		var out map[string]any
		_ = gojson.Unmarshal(rec.Body.Bytes(), &out)
		return rec.Code, out
	}

	list := func(path string) []map[string]any {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusOK))

		var out []map[string]any
		Expect(gojson.Unmarshal(rec.Body.Bytes(), &out)).To(Succeed())
		return out
	}

	BeforeEach(func() {
		store = local.NewBackend(local.NewMemoryStore(), nil)
		Expect(store.Attach(context.Background())).To(Succeed())
		handler = server.New(server.Config{}, schema.Standard(), store, nil).Handler()
	})

	AfterEach(func() {
		Expect(store.Detach()).To(Succeed())
	})

	Describe("health", func() {
		It("reports the service name", func() {
			code, body := do(http.MethodGet, "/", nil)
			Expect(code).To(Equal(http.StatusOK))
			Expect(body).To(HaveKeyWithValue("ok", true))
			Expect(body).To(HaveKeyWithValue("service", server.ServiceName))
		})
	})

	Context("creating records", func() {
		It("returns 201 with an identifier and timestamps", func() {
			code, body := do(http.MethodPost, "/api/adherents", map[string]any{"nom": "Doe", "prenom": "Jane"})
			Expect(code).To(Equal(http.StatusCreated))
			Expect(body).To(HaveKey("_id"))
			Expect(body).To(HaveKey(server.FieldCreatedAt))
			Expect(body).To(HaveKey(server.FieldUpdatedAt))
			Expect(list("/api/adherents")).To(HaveLen(1))
		})

		It("applies defaults", func() {
			_, book := do(http.MethodPost, "/api/livres", map[string]any{"titre": "Dune"})
			Expect(book).To(HaveKeyWithValue("exemplaires", BeNumerically("==", 1)))

			_, loan := do(http.MethodPost, "/api/emprunts", map[string]any{
				"id_adherent": "m1", "id_livre": "b1", "date_emprunt": "2024-05-01",
			})
			Expect(loan).To(HaveKeyWithValue("statut", "en_cours"))
		})

		It("does not check references", func() {
			code, _ := do(http.MethodPost, "/api/emprunts", map[string]any{
				"id_adherent": "ghost", "id_livre": "ghost", "date_emprunt": "2024-05-01",
			})
			Expect(code).To(Equal(http.StatusCreated))
		})

		It("ignores a client supplied identifier", func() {
			_, body := do(http.MethodPost, "/api/categories", map[string]any{"_id": "mine", "nom": "SF"})
			Expect(body["_id"]).ToNot(Equal("mine"))
		})

		When("a required field is missing", func() {
			It("returns 400 and stores nothing", func() {
				code, body := do(http.MethodPost, "/api/users", map[string]any{"nom": "A"})
				Expect(code).To(Equal(http.StatusBadRequest))
				Expect(body).To(HaveKey("error"))
				Expect(list("/api/users")).To(BeEmpty())
			})
		})

		When("a value has the wrong kind", func() {
			It("returns 400", func() {
				code, _ := do(http.MethodPost, "/api/users", map[string]any{
					"nom": "A", "prenom": "B", "email": "a@b.org", "role": "root", "motDePasse": "x",
				})
				Expect(code).To(Equal(http.StatusBadRequest))
			})
		})

		When("the body is not an object", func() {
			It("returns 400", func() {
				code, _ := do(http.MethodPost, "/api/categories", []string{"x"})
				Expect(code).To(Equal(http.StatusBadRequest))
			})
		})
	})

	Context("reading records", func() {
		It("returns 404 for an unknown identifier", func() {
			code, body := do(http.MethodGet, "/api/livres/nope", nil)
			Expect(code).To(Equal(http.StatusNotFound))
			Expect(body).To(HaveKeyWithValue("error", "Not found"))
		})

		It("returns 404 for an unknown collection", func() {
			code, _ := do(http.MethodGet, "/api/magazines", nil)
			Expect(code).To(Equal(http.StatusNotFound))
		})

		It("fetches a created record", func() {
			_, created := do(http.MethodPost, "/api/livres", map[string]any{"titre": "Dune"})
			code, body := do(http.MethodGet, "/api/livres/"+created["_id"].(string), nil)
			Expect(code).To(Equal(http.StatusOK))
			Expect(body).To(HaveKeyWithValue("titre", "Dune"))
		})
	})

	Context("updating records", func() {
		It("merges the partial", func() {
			_, created := do(http.MethodPost, "/api/livres", map[string]any{"titre": "Dune", "auteur": "Herbert"})
			id := created["_id"].(string)

			code, body := do(http.MethodPut, "/api/livres/"+id, map[string]any{"annee": 1965})
			Expect(code).To(Equal(http.StatusOK))
			Expect(body).To(HaveKeyWithValue("auteur", "Herbert"))
			Expect(body).To(HaveKeyWithValue("annee", BeNumerically("==", 1965)))
			Expect(body).To(HaveKeyWithValue("_id", id))
		})

		It("returns 404 for an unknown identifier", func() {
			code, _ := do(http.MethodPut, "/api/livres/nope", map[string]any{"titre": "x"})
			Expect(code).To(Equal(http.StatusNotFound))
		})
	})

	Context("deleting records", func() {
		It("returns ok and removes the record without cascading", func() {
			_, member := do(http.MethodPost, "/api/adherents", map[string]any{"nom": "Doe", "prenom": "Jane"})
			id := member["_id"].(string)
			do(http.MethodPost, "/api/emprunts", map[string]any{
				"id_adherent": id, "id_livre": "b1", "date_emprunt": "2024-05-01",
			})

			code, body := do(http.MethodDelete, "/api/adherents/"+id, nil)
			Expect(code).To(Equal(http.StatusOK))
			Expect(body).To(HaveKeyWithValue("ok", true))
			Expect(list("/api/adherents")).To(BeEmpty())
			Expect(list("/api/emprunts")).To(HaveLen(1))
		})

		It("returns 404 for an unknown identifier", func() {
			code, _ := do(http.MethodDelete, "/api/adherents/nope", nil)
			Expect(code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("CORS", func() {
		It("answers preflight requests for allowed origins", func() {
			h := server.New(server.Config{CORSOrigins: []string{"*"}}, schema.Standard(), store, nil).Handler()
			req := httptest.NewRequest(http.MethodOptions, "/api/adherents", nil)
			req.Header.Set("Origin", "http://localhost:8080")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
		})
	})
})
