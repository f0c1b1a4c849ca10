package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	gojson "github.com/goccy/go-json"

	"github.com/mesh-intelligence/biblio/internal/schema"
	"github.com/mesh-intelligence/biblio/pkg/types"
)

// Timestamp fields maintained by the service.
const (
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// timestampLayout matches the ISO form with milliseconds.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

const entityKey = "entity"

// defaults are applied on create to fields the client left out.
var defaults = map[string]types.Record{
	types.CollectionItems: {schema.FieldCopies: float64(1)},
	types.CollectionLoans: {schema.FieldStatus: schema.LoanOngoing},
}

var errNotFoundBody = gin.H{"error": "Not found"}

// resolveEntity rejects unknown collections and stores the entity
// description in the context.
func (s *Server) resolveEntity() gin.HandlerFunc {
	return func(c *gin.Context) {
		ent, err := s.registry.Entity(c.Param("entity"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, errNotFoundBody)
			return
		}
		c.Set(entityKey, ent)
		c.Next()
	}
}

func entityOf(c *gin.Context) *schema.Entity {
	return c.MustGet(entityKey).(*schema.Entity)
}

func (s *Server) list(c *gin.Context) {
	ent := entityOf(c)
	recs, err := s.store.List(c.Request.Context(), ent.Name)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (s *Server) get(c *gin.Context) {
	ent := entityOf(c)
	rec, err := s.store.Get(c.Request.Context(), ent.Name, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) create(c *gin.Context) {
	ent := entityOf(c)
	body, ok := s.readBody(c)
	if !ok {
		return
	}

	for k, v := range defaults[ent.Name] {
		if _, set := body[k]; !set {
			body[k] = v
		}
	}
	rec, err := ent.Validate(body)
	if err != nil {
		s.fail(c, err)
		return
	}
	ts := s.now().UTC().Format(timestampLayout)
	rec[FieldCreatedAt] = ts
	rec[FieldUpdatedAt] = ts

	created, err := s.store.Create(c.Request.Context(), ent.Name, rec)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) update(c *gin.Context) {
	ent := entityOf(c)
	ctx := c.Request.Context()
	id := c.Param("id")

	body, ok := s.readBody(c)
	if !ok {
		return
	}
	current, err := s.store.Get(ctx, ent.Name, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	merged, err := ent.Validate(current.Merge(body))
	if err != nil {
		s.fail(c, err)
		return
	}

	patch := make(types.Record, len(body)+1)
	for k := range body {
		patch[k] = merged[k]
	}
	patch[FieldUpdatedAt] = s.now().UTC().Format(timestampLayout)

	updated, err := s.store.Update(ctx, ent.Name, id, patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) remove(c *gin.Context) {
	ent := entityOf(c)
	ctx := c.Request.Context()
	id := c.Param("id")

	if _, err := s.store.Get(ctx, ent.Name, id); err != nil {
		s.fail(c, err)
		return
	}
	if err := s.store.Delete(ctx, ent.Name, id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// readBody decodes a JSON object body. Service-managed keys are dropped.
func (s *Server) readBody(c *gin.Context) (types.Record, bool) {
	var body types.Record
	if err := gojson.NewDecoder(c.Request.Body).Decode(&body); err != nil || body == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
		return nil, false
	}
	delete(body, types.IDField)
	delete(body, FieldCreatedAt)
	delete(body, FieldUpdatedAt)
	return body, true
}

// fail maps an error to a JSON error response.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound), errors.Is(err, types.ErrInvalidID):
		c.JSON(http.StatusNotFound, errNotFoundBody)
	case types.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.log.Errorw("request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}
