// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL or Redis are
// unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"newsroom/internal/database"
	"newsroom/internal/middleware"
	"newsroom/internal/models"
	"newsroom/internal/report"
	"newsroom/internal/session"
	"newsroom/internal/store"
)

const (
	testAdminEmail    = "admin@newsroom.test"
	testAdminPassword = "admin-secret"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "newsroom")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "newsroom")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testRedisClient returns a Redis client for handler tests on DB 15.
func testRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("REDIS_HOST", "localhost")
	port := envOr("REDIS_PORT", "6379")
	password := os.Getenv("REDIS_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Redis not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "session:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB            *sql.DB
	Redis         *redis.Client
	Sessions      *session.Store
	ArticleStore  *store.ArticleStore
	CategoryStore *store.CategoryStore
	TagStore      *store.TagStore
	AccountStore  *store.AccountStore
	Auth          *Auth
	Articles      *Articles
	Categories    *Categories
	Tags          *Tags
	Accounts      *Accounts
	Reports       *Reports
	Public        *Public
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	rc := testRedisClient(t)

	sessions := session.NewStore(rc, false)
	articleStore := store.NewArticleStore(db)
	categoryStore := store.NewCategoryStore(db)
	tagStore := store.NewTagStore(db)
	accountStore := store.NewAccountStore(db)

	return &testEnv{
		DB:            db,
		Redis:         rc,
		Sessions:      sessions,
		ArticleStore:  articleStore,
		CategoryStore: categoryStore,
		TagStore:      tagStore,
		AccountStore:  accountStore,
		Auth:          NewAuth(sessions, accountStore, testAdminEmail, testAdminPassword),
		Articles:      NewArticles(articleStore),
		Categories:    NewCategories(categoryStore),
		Tags:          NewTags(tagStore),
		Accounts:      NewAccounts(accountStore),
		Reports:       NewReports(report.NewGenerator(articleStore)),
		Public:        NewPublic(articleStore, categoryStore),
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// staffSession returns verified staff session data for the given account.
func staffSession(a *models.Account) *session.Data {
	return &session.Data{
		AccountID: a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Role:      models.RoleStaff,
		TwoFADone: true,
	}
}

// createAccount inserts a staff account with a unique email and registers
// cleanup of the account and everything it authored.
func createAccount(t *testing.T, env *testEnv) *models.Account {
	t.Helper()

	a, err := env.AccountStore.Create(&models.Account{
		Name:  "Handler Test",
		Email: "test-" + uuid.NewString()[:8] + "@newsroom.test",
		Role:  models.RoleStaff,
	}, "testpass123")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM article_tags WHERE article_id IN (SELECT id FROM articles WHERE created_by = $1)", a.ID)
		env.DB.Exec("DELETE FROM articles WHERE created_by = $1 OR updated_by = $1", a.ID)
		env.DB.Exec("DELETE FROM accounts WHERE id = $1", a.ID)
	})
	return a
}

// createCategory inserts an active category and registers cleanup.
func createCategory(t *testing.T, env *testEnv) *models.Category {
	t.Helper()

	c, err := env.CategoryStore.Create(&models.Category{
		Name:        "test-cat-" + uuid.NewString()[:8],
		Description: "handler test category",
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM categories WHERE id = $1", c.ID)
	})
	return c
}

// createTag inserts a tag with a free id and registers cleanup.
func createTag(t *testing.T, env *testEnv) *models.Tag {
	t.Helper()

	var next int
	if err := env.DB.QueryRow("SELECT COALESCE(MAX(id), 0) + 1 FROM tags").Scan(&next); err != nil {
		t.Fatalf("allocate tag id: %v", err)
	}
	tag, err := env.TagStore.Create(&models.Tag{
		ID:   next,
		Name: "test-tag-" + uuid.NewString()[:8],
	})
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM article_tags WHERE tag_id = $1", tag.ID)
		env.DB.Exec("DELETE FROM tags WHERE id = $1", tag.ID)
	})
	return tag
}
