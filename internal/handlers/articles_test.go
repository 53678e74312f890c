// articles_test.go exercises the Articles handler group end to end:
// create, tag, publish, relate and delete against a real database.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"newsroom/internal/models"
)

func TestArticlesCreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	account := createAccount(t, env)
	cat := createCategory(t, env)
	sess := staffSession(account)

	body := fmt.Sprintf(`{"headline":"handler create test","title":"T","category_id":%d,"status":true}`, cat.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader(body))
	req = req.WithContext(ctxWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()

	env.Articles.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}

	var created models.Article
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" {
		t.Error("expected allocated id")
	}
	if created.CreatedByID == nil || *created.CreatedByID != account.ID {
		t.Errorf("created_by: %v", created.CreatedByID)
	}

	getReq := withChiURLParam(httptest.NewRequest(http.MethodGet, "/api/articles/"+created.ID, nil), "id", created.ID)
	getRec := httptest.NewRecorder()
	env.Articles.Get(getRec, getReq)

	if getRec.Code != http.StatusOK {
		t.Fatalf("get status: %d", getRec.Code)
	}
	var got models.Article
	json.NewDecoder(getRec.Body).Decode(&got)
	if got.Headline != "handler create test" {
		t.Errorf("headline: %q", got.Headline)
	}
	if got.CategoryName == nil || *got.CategoryName != cat.Name {
		t.Errorf("category name not joined: %v", got.CategoryName)
	}
}

func TestArticlesCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	account := createAccount(t, env)
	sess := staffSession(account)

	req := httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader(`{"headline":"  "}`))
	req = req.WithContext(ctxWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()

	env.Articles.Create(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want 422", rec.Code)
	}
}

func TestArticlesGetMissing(t *testing.T) {
	env := newTestEnv(t)

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/api/articles/none", nil), "id", "does-not-exist")
	rec := httptest.NewRecorder()
	env.Articles.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}

func TestArticlesSetTags(t *testing.T) {
	env := newTestEnv(t)
	account := createAccount(t, env)
	tag := createTag(t, env)
	sess := staffSession(account)

	a, err := env.ArticleStore.Create(&models.Article{
		Headline:    "tag target",
		Status:      models.FlagActive,
		CreatedByID: &account.ID,
	}, nil)
	if err != nil {
		t.Fatalf("create article: %v", err)
	}

	body := fmt.Sprintf(`{"tag_ids":[%d,%d]}`, tag.ID, tag.ID)
	req := withChiURLParam(httptest.NewRequest(http.MethodPut, "/api/articles/"+a.ID+"/tags", strings.NewReader(body)), "id", a.ID)
	req = req.WithContext(ctxWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()

	env.Articles.SetTags(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}

	var tags []models.Tag
	json.NewDecoder(rec.Body).Decode(&tags)
	if len(tags) != 1 || tags[0].ID != tag.ID {
		t.Errorf("tags: %+v", tags)
	}

	t.Run("unknown tag conflicts", func(t *testing.T) {
		req := withChiURLParam(httptest.NewRequest(http.MethodPut, "/api/articles/"+a.ID+"/tags", strings.NewReader(`{"tag_ids":[999999999]}`)), "id", a.ID)
		rec := httptest.NewRecorder()
		env.Articles.SetTags(rec, req)
		if rec.Code != http.StatusConflict {
			t.Errorf("status: got %d, want 409", rec.Code)
		}
	})

	t.Run("missing article", func(t *testing.T) {
		req := withChiURLParam(httptest.NewRequest(http.MethodPut, "/api/articles/none/tags", strings.NewReader(`{"tag_ids":[]}`)), "id", "does-not-exist")
		rec := httptest.NewRecorder()
		env.Articles.SetTags(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status: got %d, want 404", rec.Code)
		}
	})
}

func TestArticlesDuplicate(t *testing.T) {
	env := newTestEnv(t)
	account := createAccount(t, env)
	sess := staffSession(account)

	title := "Dup source"
	src, err := env.ArticleStore.Create(&models.Article{
		Title:       &title,
		Headline:    "dup source headline",
		Status:      models.FlagActive,
		CreatedByID: &account.ID,
	}, nil)
	if err != nil {
		t.Fatalf("create article: %v", err)
	}

	req := withChiURLParam(httptest.NewRequest(http.MethodPost, "/api/articles/"+src.ID+"/duplicate", nil), "id", src.ID)
	req = req.WithContext(ctxWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()

	env.Articles.Duplicate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}

	var dup models.Article
	json.NewDecoder(rec.Body).Decode(&dup)
	if dup.Title == nil || *dup.Title != "Dup source (Copy)" {
		t.Errorf("title: %v", dup.Title)
	}
	if dup.Status != models.FlagInactive {
		t.Error("duplicate must start unpublished")
	}
}

func TestArticlesListFilters(t *testing.T) {
	env := newTestEnv(t)
	account := createAccount(t, env)
	cat := createCategory(t, env)
	sess := staffSession(account)

	published, err := env.ArticleStore.Create(&models.Article{
		Headline:    "filter target published",
		CategoryID:  &cat.ID,
		Status:      models.FlagActive,
		CreatedByID: &account.ID,
	}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.ArticleStore.Create(&models.Article{
		Headline:    "filter target draft",
		CategoryID:  &cat.ID,
		Status:      models.FlagInactive,
		CreatedByID: &account.ID,
	}, nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	url := fmt.Sprintf("/api/articles?category=%d&status=true", cat.ID)
	req := httptest.NewRequest(http.MethodGet, url, nil)
	req = req.WithContext(ctxWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()

	env.Articles.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}

	var items []models.Article
	json.NewDecoder(rec.Body).Decode(&items)
	if len(items) != 1 || items[0].ID != published.ID {
		t.Errorf("filtered list: %d items", len(items))
	}

	t.Run("malformed filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/articles?status=banana", nil)
		rec := httptest.NewRecorder()
		env.Articles.List(rec, req)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status: got %d, want 422", rec.Code)
		}
	})
}

func TestArticlesMine(t *testing.T) {
	env := newTestEnv(t)
	mine := createAccount(t, env)
	other := createAccount(t, env)

	a, err := env.ArticleStore.Create(&models.Article{
		Headline:    "mine headline",
		Status:      models.FlagActive,
		CreatedByID: &mine.ID,
	}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.ArticleStore.Create(&models.Article{
		Headline:    "theirs headline",
		Status:      models.FlagActive,
		CreatedByID: &other.ID,
	}, nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/articles/mine", nil)
	req = req.WithContext(ctxWithSession(req.Context(), staffSession(mine)))
	rec := httptest.NewRecorder()

	env.Articles.Mine(rec, req)

	var items []models.Article
	json.NewDecoder(rec.Body).Decode(&items)
	if len(items) != 1 || items[0].ID != a.ID {
		t.Errorf("mine: %d items", len(items))
	}
}

func TestArticlesDelete(t *testing.T) {
	env := newTestEnv(t)
	account := createAccount(t, env)

	a, err := env.ArticleStore.Create(&models.Article{
		Headline:    "delete me",
		Status:      models.FlagInactive,
		CreatedByID: &account.ID,
	}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	req := withChiURLParam(httptest.NewRequest(http.MethodDelete, "/api/articles/"+a.ID, nil), "id", a.ID)
	rec := httptest.NewRecorder()
	env.Articles.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	env.Articles.Delete(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("double delete: got %d, want 404", rec.Code)
	}
}
