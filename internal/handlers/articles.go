package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"newsroom/internal/middleware"
	"newsroom/internal/models"
	"newsroom/internal/store"
)

// Articles groups the staff-facing article management handlers.
type Articles struct {
	articles *store.ArticleStore
}

// NewArticles creates an Articles handler group.
func NewArticles(articles *store.ArticleStore) *Articles {
	return &Articles{articles: articles}
}

// articleRequest is the payload for creating or updating an article.
// TagIDs replaces the article's whole tag set.
type articleRequest struct {
	Title      *string     `json:"title"`
	Headline   string      `json:"headline"`
	Body       *string     `json:"body"`
	Source     *string     `json:"source"`
	CategoryID *int16      `json:"category_id"`
	Status     models.Flag `json:"status"`
	TagIDs     []int       `json:"tag_ids"`
}

// List returns articles filtered by the q, category and status query
// parameters, newest first.
func (h *Articles) List(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	categoryID, err := queryInt16(r, "category")
	if err != nil {
		respondError(w, err)
		return
	}
	status, err := queryBool(r, "status")
	if err != nil {
		respondError(w, err)
		return
	}

	items, err := h.articles.Search(term, categoryID, status)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// Get returns one article with its tags and related names.
func (h *Articles) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.articles.FindByID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	if a == nil {
		respondNotFound(w)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

// Create inserts a new article owned by the session account.
func (h *Articles) Create(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	article := &models.Article{
		Title:      req.Title,
		Headline:   req.Headline,
		Body:       req.Body,
		Source:     req.Source,
		CategoryID: req.CategoryID,
		Status:     req.Status,
	}
	if sess.AccountID != 0 {
		id := sess.AccountID
		article.CreatedByID = &id
	}

	created, err := h.articles.Create(article, req.TagIDs)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// Update modifies an article and replaces its tag set. The session
// account is recorded as the last editor.
func (h *Articles) Update(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	article := &models.Article{
		ID:         chi.URLParam(r, "id"),
		Title:      req.Title,
		Headline:   req.Headline,
		Body:       req.Body,
		Source:     req.Source,
		CategoryID: req.CategoryID,
		Status:     req.Status,
	}

	var updatedBy *int16
	sess := middleware.SessionFromCtx(r.Context())
	if sess.AccountID != 0 {
		id := sess.AccountID
		updatedBy = &id
	}

	if err := h.articles.Update(article, req.TagIDs, updatedBy); err != nil {
		respondError(w, err)
		return
	}

	updated, err := h.articles.FindByID(article.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// Delete removes an article together with its tag associations.
func (h *Articles) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.articles.Delete(chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type tagSetRequest struct {
	TagIDs []int `json:"tag_ids"`
}

// SetTags replaces an article's tag set without touching other fields.
func (h *Articles) SetTags(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	a, err := h.articles.FindByID(id)
	if err != nil {
		respondError(w, err)
		return
	}
	if a == nil {
		respondNotFound(w)
		return
	}

	var req tagSetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.articles.SetTags(id, req.TagIDs); err != nil {
		respondError(w, err)
		return
	}

	tags, err := h.articles.FindByID(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tags.Tags)
}

// Duplicate copies an article, including tags, as a new unpublished
// article owned by the session account.
func (h *Articles) Duplicate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	dup, err := h.articles.Duplicate(chi.URLParam(r, "id"), sess.AccountID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dup)
}

// Related returns up to three published articles sharing the source's
// category or tags.
func (h *Articles) Related(w http.ResponseWriter, r *http.Request) {
	items, err := h.articles.Related(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// Mine lists the articles created by the session account, newest first.
func (h *Articles) Mine(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	items, err := h.articles.ListByCreator(sess.AccountID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// queryInt16 parses an optional int16 query parameter.
func queryInt16(r *http.Request, key string) (*int16, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 16)
	if err != nil {
		return nil, invalidQuery(key)
	}
	v := int16(n)
	return &v, nil
}

// queryBool parses an optional boolean query parameter.
func queryBool(r *http.Request, key string) (*bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, invalidQuery(key)
	}
	return &b, nil
}
