package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"newsroom/internal/models"
)

const (
	maxArticleTitleLen    = 400
	maxArticleHeadlineLen = 150
	maxArticleBodyLen     = 4000
	maxArticleSourceLen   = 400

	// relatedLimit caps the related-article listing.
	relatedLimit = 3
)

// ArticleStore handles all article-related database operations, including
// the article↔tag association and sequential id allocation.
type ArticleStore struct {
	db *sql.DB

	// allocMu serializes id allocation within this process. The original
	// scan-max-then-add-one scheme raced under concurrent creates; the
	// mutex closes that gap for a single process and the primary key
	// constraint backstops multi-process deployments.
	allocMu sync.Mutex
}

// NewArticleStore creates a new ArticleStore with the given database connection.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

// articleColumns selects article fields plus the joined category and
// account display names. Requires the la/lc/lu aliases set up by articleJoin.
const articleColumns = `
	a.id, a.title, a.headline, a.body, a.source, a.category_id, a.status,
	a.created_by, a.updated_by, a.created_at, a.modified_at,
	lc.name, la.name, lu.name`

const articleJoin = `
	FROM articles a
	LEFT JOIN categories lc ON lc.id = a.category_id
	LEFT JOIN accounts la ON la.id = a.created_by
	LEFT JOIN accounts lu ON lu.id = a.updated_by`

// scanArticle scans a joined row into an Article struct.
func scanArticle(scanner interface{ Scan(...any) error }) (*models.Article, error) {
	var a models.Article
	err := scanner.Scan(
		&a.ID, &a.Title, &a.Headline, &a.Body, &a.Source, &a.CategoryID,
		&a.Status, &a.CreatedByID, &a.UpdatedByID, &a.CreatedAt, &a.ModifiedAt,
		&a.CategoryName, &a.CreatedByName, &a.UpdatedByName,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// validateArticle checks required fields and length limits.
func validateArticle(a *models.Article) error {
	if strings.TrimSpace(a.Headline) == "" {
		return invalid("headline is required")
	}
	if utf8.RuneCountInString(a.Headline) > maxArticleHeadlineLen {
		return invalid("headline is too long (max 150 characters)")
	}
	if a.Title != nil && utf8.RuneCountInString(*a.Title) > maxArticleTitleLen {
		return invalid("title is too long (max 400 characters)")
	}
	if a.Body != nil && utf8.RuneCountInString(*a.Body) > maxArticleBodyLen {
		return invalid("body is too long (max 4000 characters)")
	}
	if a.Source != nil && utf8.RuneCountInString(*a.Source) > maxArticleSourceLen {
		return invalid("source is too long (max 400 characters)")
	}
	return nil
}

// collectArticles drains rows into a slice.
func collectArticles(rows *sql.Rows) ([]models.Article, error) {
	defer rows.Close()
	var items []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// Search returns articles matching the term against title, headline,
// creator name and category name, optionally narrowed to a category and
// publication status, ordered by creation date descending. An empty term
// applies no term narrowing.
func (s *ArticleStore) Search(term string, categoryID *int16, status *bool) ([]models.Article, error) {
	query := `SELECT` + articleColumns + articleJoin
	var conds []string
	var args []any
	if term != "" {
		args = append(args, likePattern(term))
		p := strconv.Itoa(len(args))
		conds = append(conds, `(COALESCE(a.title, '') LIKE $`+p+
			` OR a.headline LIKE $`+p+
			` OR COALESCE(la.name, '') LIKE $`+p+
			` OR COALESCE(lc.name, '') LIKE $`+p+`)`)
	}
	if categoryID != nil {
		args = append(args, *categoryID)
		conds = append(conds, `a.category_id = $`+strconv.Itoa(len(args)))
	}
	if status != nil {
		args = append(args, *status)
		conds = append(conds, `a.status = $`+strconv.Itoa(len(args)))
	}
	if len(conds) > 0 {
		query += `
	WHERE ` + strings.Join(conds, " AND ")
	}
	query += `
	ORDER BY a.created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	return collectArticles(rows)
}

// List returns all articles ordered by creation date descending.
func (s *ArticleStore) List() ([]models.Article, error) {
	return s.Search("", nil, nil)
}

// FindByID retrieves an article with joined names and its tag set.
// Returns nil if not found.
func (s *ArticleStore) FindByID(id string) (*models.Article, error) {
	row := s.db.QueryRow(`SELECT`+articleColumns+articleJoin+`
	WHERE a.id = $1`, id)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by id: %w", err)
	}

	tags, err := NewTagStore(s.db).ListByArticle(a.ID)
	if err != nil {
		return nil, err
	}
	a.Tags = tags
	return a, nil
}

// ListByCreator returns the articles created by an account, newest first.
func (s *ArticleStore) ListByCreator(creatorID int16) ([]models.Article, error) {
	rows, err := s.db.Query(`SELECT`+articleColumns+articleJoin+`
	WHERE a.created_by = $1
	ORDER BY a.created_at DESC`, creatorID)
	if err != nil {
		return nil, fmt.Errorf("list articles by creator: %w", err)
	}
	return collectArticles(rows)
}

// ListByDateRange returns articles created within [start, end] inclusive,
// newest first. Feeds the report generator.
func (s *ArticleStore) ListByDateRange(start, end time.Time) ([]models.Article, error) {
	rows, err := s.db.Query(`SELECT`+articleColumns+articleJoin+`
	WHERE a.created_at >= $1 AND a.created_at <= $2
	ORDER BY a.created_at DESC`, start, end)
	if err != nil {
		return nil, fmt.Errorf("list articles by date range: %w", err)
	}
	return collectArticles(rows)
}

// Related returns up to three other published articles that share the
// source article's category or at least one of its tags, newest first.
// An article without a category has no related articles.
func (s *ArticleStore) Related(articleID string) ([]models.Article, error) {
	a, err := s.FindByID(articleID)
	if err != nil {
		return nil, err
	}
	if a == nil || a.CategoryID == nil {
		return nil, nil
	}

	rows, err := s.db.Query(`SELECT`+articleColumns+articleJoin+`
	WHERE a.id <> $1
	  AND a.status = TRUE
	  AND (a.category_id = $2 OR EXISTS (
		SELECT 1 FROM article_tags at
		WHERE at.article_id = a.id
		  AND at.tag_id IN (SELECT tag_id FROM article_tags WHERE article_id = $1)
	  ))
	ORDER BY a.created_at DESC
	LIMIT $3`, articleID, *a.CategoryID, relatedLimit)
	if err != nil {
		return nil, fmt.Errorf("related articles: %w", err)
	}
	return collectArticles(rows)
}

// NextID returns the next sequential article identifier: one more than
// the largest numeric-parseable id, "1" when no articles exist.
// Non-numeric identifiers are treated as zero.
func (s *ArticleStore) NextID() (string, error) {
	var max int64
	err := s.db.QueryRow(`
		SELECT COALESCE(MAX(CASE WHEN id ~ '^[0-9]+$' THEN id::bigint ELSE 0 END), 0)
		FROM articles`).Scan(&max)
	if err != nil {
		return "", fmt.Errorf("next article id: %w", err)
	}
	return strconv.FormatInt(max+1, 10), nil
}

// Create allocates an identifier, inserts the article and attaches its
// tags in one transaction. Status defaults to inactive when unset.
func (s *ArticleStore) Create(a *models.Article, tagIDs []int) (*models.Article, error) {
	if err := validateArticle(a); err != nil {
		return nil, err
	}
	if a.Status == models.FlagUnset {
		a.Status = models.FlagInactive
	}

	s.allocMu.Lock()
	defer s.allocMu.Unlock()

	id, err := s.NextID()
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("create article: begin: %w", err)
	}
	defer tx.Rollback()

	result := &models.Article{}
	err = tx.QueryRow(`
		INSERT INTO articles (id, title, headline, body, source, category_id, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, title, headline, body, source, category_id, status,
		          created_by, updated_by, created_at, modified_at
	`, id, a.Title, a.Headline, a.Body, a.Source, a.CategoryID, a.Status, a.CreatedByID,
	).Scan(
		&result.ID, &result.Title, &result.Headline, &result.Body, &result.Source,
		&result.CategoryID, &result.Status, &result.CreatedByID, &result.UpdatedByID,
		&result.CreatedAt, &result.ModifiedAt,
	)
	if err != nil {
		return nil, wrapPg("create article", err)
	}

	if err := insertTags(tx, id, tagIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create article: commit: %w", err)
	}
	return result, nil
}

// Update modifies an article and replaces its tag set in one transaction.
// updatedBy records the editing account and bumps the modified timestamp.
func (s *ArticleStore) Update(a *models.Article, tagIDs []int, updatedBy *int16) error {
	if err := validateArticle(a); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("update article: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE articles SET
			title = $1, headline = $2, body = $3, source = $4,
			category_id = $5, status = $6, updated_by = $7, modified_at = NOW()
		WHERE id = $8
	`, a.Title, a.Headline, a.Body, a.Source, a.CategoryID, a.Status, updatedBy, a.ID)
	if err != nil {
		return wrapPg("update article", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update article: %w", ErrNotFound)
	}

	if _, err := tx.Exec(`DELETE FROM article_tags WHERE article_id = $1`, a.ID); err != nil {
		return fmt.Errorf("update article: clear tags: %w", err)
	}
	if err := insertTags(tx, a.ID, tagIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update article: commit: %w", err)
	}
	return nil
}

// SetTags replaces an article's entire tag set in one transaction.
// Duplicate ids in the input are collapsed; an empty set detaches all tags.
func (s *ArticleStore) SetTags(articleID string, tagIDs []int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("set tags: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM article_tags WHERE article_id = $1`, articleID); err != nil {
		return fmt.Errorf("set tags: clear: %w", err)
	}
	if err := insertTags(tx, articleID, tagIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set tags: commit: %w", err)
	}
	return nil
}

// RemoveAllTags detaches every tag from an article.
func (s *ArticleStore) RemoveAllTags(articleID string) error {
	if _, err := s.db.Exec(`DELETE FROM article_tags WHERE article_id = $1`, articleID); err != nil {
		return fmt.Errorf("remove tags: %w", err)
	}
	return nil
}

// insertTags attaches the deduplicated tag set within a transaction.
// An unknown tag id trips the foreign key and surfaces as ErrConflict.
func insertTags(tx *sql.Tx, articleID string, tagIDs []int) error {
	seen := make(map[int]bool, len(tagIDs))
	for _, tagID := range tagIDs {
		if seen[tagID] {
			continue
		}
		seen[tagID] = true
		if _, err := tx.Exec(`
			INSERT INTO article_tags (article_id, tag_id) VALUES ($1, $2)
		`, articleID, tagID); err != nil {
			return wrapPg("attach tag", err)
		}
	}
	return nil
}

// Delete removes an article and its tag associations in one transaction.
// The association rows are removed explicitly even though the schema also
// cascades them.
func (s *ArticleStore) Delete(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("delete article: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM article_tags WHERE article_id = $1`, id); err != nil {
		return fmt.Errorf("delete article: tags: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return wrapPg("delete article", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete article: %w", ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete article: commit: %w", err)
	}
	return nil
}

// Duplicate copies an article, including its tag set, as a fresh
// unpublished article owned by the given account.
func (s *ArticleStore) Duplicate(sourceID string, createdBy int16) (*models.Article, error) {
	src, err := s.FindByID(sourceID)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("duplicate article: %w", ErrNotFound)
	}

	copyTitle := "(Copy)"
	if src.Title != nil {
		copyTitle = *src.Title + " (Copy)"
	}

	tagIDs := make([]int, 0, len(src.Tags))
	for _, t := range src.Tags {
		tagIDs = append(tagIDs, t.ID)
	}

	dup := &models.Article{
		Title:       &copyTitle,
		Headline:    src.Headline,
		Body:        src.Body,
		Source:      src.Source,
		CategoryID:  src.CategoryID,
		Status:      models.FlagInactive,
		CreatedByID: &createdBy,
	}
	return s.Create(dup, tagIDs)
}
