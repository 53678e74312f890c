package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"newsroom/internal/models"
	"newsroom/internal/store"
)

// Public groups the unauthenticated reader-facing handlers. Only
// published articles and active categories are visible here.
type Public struct {
	articles   *store.ArticleStore
	categories *store.CategoryStore
}

// NewPublic creates a Public handler group.
func NewPublic(articles *store.ArticleStore, categories *store.CategoryStore) *Public {
	return &Public{articles: articles, categories: categories}
}

// News lists published articles, optionally narrowed by the q and
// category query parameters, newest first.
func (h *Public) News(w http.ResponseWriter, r *http.Request) {
	categoryID, err := queryInt16(r, "category")
	if err != nil {
		respondError(w, err)
		return
	}

	published := true
	items, err := h.articles.Search(r.URL.Query().Get("q"), categoryID, &published)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// articleView is the public article payload with its related articles.
type articleView struct {
	Article *models.Article  `json:"article"`
	Related []models.Article `json:"related"`
}

// Article returns one published article with its related articles.
// Unpublished articles are invisible to readers.
func (h *Public) Article(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	a, err := h.articles.FindByID(id)
	if err != nil {
		respondError(w, err)
		return
	}
	if a == nil || !a.IsPublished() {
		respondNotFound(w)
		return
	}

	related, err := h.articles.Related(id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, articleView{Article: a, Related: related})
}

// Categories lists the active categories for public navigation.
func (h *Public) Categories(w http.ResponseWriter, r *http.Request) {
	items, err := h.categories.ListActive()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}
