package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"newsroom/internal/models"
	"newsroom/internal/store"
)

// Categories groups the category management handlers.
type Categories struct {
	categories *store.CategoryStore
}

// NewCategories creates a Categories handler group.
func NewCategories(categories *store.CategoryStore) *Categories {
	return &Categories{categories: categories}
}

type categoryRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	ParentID    *int16      `json:"parent_id"`
	Active      models.Flag `json:"active"`
}

// List returns categories matching the q query parameter, name ascending.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.categories.Search(r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// Roots returns categories without a parent, for building the tree.
func (h *Categories) Roots(w http.ResponseWriter, r *http.Request) {
	items, err := h.categories.ListRoots()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// Get returns one category.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt16(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	c, err := h.categories.FindByID(id)
	if err != nil {
		respondError(w, err)
		return
	}
	if c == nil {
		respondNotFound(w)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// Create inserts a new category. Active defaults to true when unset.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	created, err := h.categories.Create(&models.Category{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
		Active:      req.Active,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// Update modifies a category.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt16(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	c := &models.Category{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
		Active:      req.Active,
	}
	if err := h.categories.Update(c); err != nil {
		respondError(w, err)
		return
	}

	updated, err := h.categories.FindByID(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// Delete removes a category unless articles still reference it.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt16(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.categories.Delete(id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// ToggleActive flips a category's active flag.
func (h *Categories) ToggleActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt16(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.categories.ToggleActive(id); err != nil {
		respondError(w, err)
		return
	}

	c, err := h.categories.FindByID(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// pathInt16 parses an int16 path parameter.
func pathInt16(r *http.Request, key string) (int16, error) {
	n, err := strconv.ParseInt(chi.URLParam(r, key), 10, 16)
	if err != nil {
		return 0, invalidQuery(key)
	}
	return int16(n), nil
}
