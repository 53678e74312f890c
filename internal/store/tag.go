package store

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"newsroom/internal/models"
)

const (
	maxTagNameLen = 50
	maxTagNoteLen = 400
)

// TagStore manages tags in the database. Tag identifiers are supplied by
// the caller, never generated.
type TagStore struct {
	db *sql.DB
}

// NewTagStore returns a new TagStore.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

// validateTag checks required fields and length limits.
func validateTag(t *models.Tag) error {
	if t.ID <= 0 {
		return invalid("tag id must be a positive integer")
	}
	if strings.TrimSpace(t.Name) == "" {
		return invalid("tag name is required")
	}
	if utf8.RuneCountInString(t.Name) > maxTagNameLen {
		return invalid("tag name is too long (max 50 characters)")
	}
	if t.Note != nil && utf8.RuneCountInString(*t.Note) > maxTagNoteLen {
		return invalid("tag note is too long (max 400 characters)")
	}
	return nil
}

// Search returns tags whose name or note contains the term, ordered by
// name, with per-tag article counts. An empty term returns all tags.
func (s *TagStore) Search(term string) ([]models.Tag, error) {
	query := `
		SELECT t.id, t.name, t.note, COUNT(at.article_id) AS article_count
		FROM tags t
		LEFT JOIN article_tags at ON at.tag_id = t.id`
	var args []any
	if term != "" {
		query += `
		WHERE t.name LIKE $1 OR t.note LIKE $1`
		args = append(args, likePattern(term))
	}
	query += `
		GROUP BY t.id
		ORDER BY t.name ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search tags: %w", err)
	}
	defer rows.Close()

	var items []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Note, &t.ArticleCount); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// List returns all tags ordered by name.
func (s *TagStore) List() ([]models.Tag, error) {
	return s.Search("")
}

// FindByID retrieves a tag by ID. Returns nil if not found.
func (s *TagStore) FindByID(id int) (*models.Tag, error) {
	var t models.Tag
	err := s.db.QueryRow(`
		SELECT t.id, t.name, t.note, COUNT(at.article_id)
		FROM tags t
		LEFT JOIN article_tags at ON at.tag_id = t.id
		WHERE t.id = $1
		GROUP BY t.id
	`, id).Scan(&t.ID, &t.Name, &t.Note, &t.ArticleCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by id: %w", err)
	}
	return &t, nil
}

// ListByArticle returns the tags attached to an article, ordered by name.
func (s *TagStore) ListByArticle(articleID string) ([]models.Tag, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.note
		FROM tags t
		JOIN article_tags at ON at.tag_id = t.id
		WHERE at.article_id = $1
		ORDER BY t.name ASC
	`, articleID)
	if err != nil {
		return nil, fmt.Errorf("list tags by article: %w", err)
	}
	defer rows.Close()

	var items []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Note); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// Create inserts a new tag. Duplicate names are rejected before the
// insert; the unique index backstops concurrent creates.
func (s *TagStore) Create(t *models.Tag) (*models.Tag, error) {
	if err := validateTag(t); err != nil {
		return nil, err
	}
	taken, err := s.NameExists(t.Name, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, conflict("tag name already exists")
	}

	result := &models.Tag{}
	err = s.db.QueryRow(`
		INSERT INTO tags (id, name, note)
		VALUES ($1, $2, $3)
		RETURNING id, name, note
	`, t.ID, t.Name, t.Note).Scan(&result.ID, &result.Name, &result.Note)
	if err != nil {
		return nil, wrapPg("create tag", err)
	}
	return result, nil
}

// Update modifies an existing tag. The identity is immutable.
func (s *TagStore) Update(t *models.Tag) error {
	if err := validateTag(t); err != nil {
		return err
	}
	taken, err := s.NameExists(t.Name, &t.ID)
	if err != nil {
		return err
	}
	if taken {
		return conflict("tag name already exists")
	}

	res, err := s.db.Exec(`
		UPDATE tags SET name = $1, note = $2 WHERE id = $3
	`, t.Name, t.Note, t.ID)
	if err != nil {
		return wrapPg("update tag", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update tag: %w", ErrNotFound)
	}
	return nil
}

// Delete removes a tag. Fails with ErrConflict while any article still
// carries it.
func (s *TagStore) Delete(id int) error {
	used, err := s.InUse(id)
	if err != nil {
		return err
	}
	if used {
		return conflict("tag is attached to articles")
	}

	res, err := s.db.Exec(`DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return wrapPg("delete tag", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete tag: %w", ErrNotFound)
	}
	return nil
}

// InUse reports whether any article carries the tag.
func (s *TagStore) InUse(id int) (bool, error) {
	var used bool
	err := s.db.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM article_tags WHERE tag_id = $1)`, id,
	).Scan(&used)
	if err != nil {
		return false, fmt.Errorf("tag in use: %w", err)
	}
	return used, nil
}

// NameExists reports whether another tag already uses the name.
// excludeID skips the tag being updated.
func (s *TagStore) NameExists(name string, excludeID *int) (bool, error) {
	var exists bool
	var err error
	if excludeID == nil {
		err = s.db.QueryRow(
			`SELECT EXISTS (SELECT 1 FROM tags WHERE name = $1)`, name,
		).Scan(&exists)
	} else {
		err = s.db.QueryRow(
			`SELECT EXISTS (SELECT 1 FROM tags WHERE name = $1 AND id <> $2)`,
			name, *excludeID,
		).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("tag name exists: %w", err)
	}
	return exists, nil
}
