package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"newsroom/internal/models"
	"newsroom/internal/store"
)

// Tags groups the tag management handlers.
type Tags struct {
	tags *store.TagStore
}

// NewTags creates a Tags handler group.
func NewTags(tags *store.TagStore) *Tags {
	return &Tags{tags: tags}
}

type tagRequest struct {
	ID   int     `json:"id"`
	Name string  `json:"name"`
	Note *string `json:"note"`
}

// List returns tags matching the q query parameter, name ascending.
func (h *Tags) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.tags.Search(r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// Get returns one tag with its article count.
func (h *Tags) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	t, err := h.tags.FindByID(id)
	if err != nil {
		respondError(w, err)
		return
	}
	if t == nil {
		respondNotFound(w)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// Create inserts a new tag with a caller-supplied id.
func (h *Tags) Create(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	created, err := h.tags.Create(&models.Tag{ID: req.ID, Name: req.Name, Note: req.Note})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// Update modifies a tag.
func (h *Tags) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req tagRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	t := &models.Tag{ID: id, Name: req.Name, Note: req.Note}
	if err := h.tags.Update(t); err != nil {
		respondError(w, err)
		return
	}

	updated, err := h.tags.FindByID(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// Delete removes a tag unless articles still carry it.
func (h *Tags) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.tags.Delete(id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// pathInt parses an int path parameter.
func pathInt(r *http.Request, key string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, key))
	if err != nil {
		return 0, invalidQuery(key)
	}
	return n, nil
}
