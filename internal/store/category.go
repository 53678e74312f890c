package store

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"newsroom/internal/models"
)

// Field limits enforced before any category mutation.
const (
	maxCategoryNameLen = 100
	maxCategoryDescLen = 250
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, description, parent_id, is_active, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Description, &c.ParentID,
		&c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// validateCategory checks required fields and length limits.
func validateCategory(c *models.Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("category name is required")
	}
	if utf8.RuneCountInString(c.Name) > maxCategoryNameLen {
		return invalid("category name is too long (max 100 characters)")
	}
	if strings.TrimSpace(c.Description) == "" {
		return invalid("category description is required")
	}
	if utf8.RuneCountInString(c.Description) > maxCategoryDescLen {
		return invalid("category description is too long (max 250 characters)")
	}
	return nil
}

// Search returns categories whose name or description contains the term,
// ordered by name. An empty term returns all categories. Results carry
// the parent category name and the count of articles in each category.
func (s *CategoryStore) Search(term string) ([]models.Category, error) {
	query := `
		SELECT c.id, c.name, c.description, c.parent_id, c.is_active,
		       c.created_at, c.updated_at,
		       p.name AS parent_name,
		       COUNT(a.id) AS article_count
		FROM categories c
		LEFT JOIN categories p ON p.id = c.parent_id
		LEFT JOIN articles a ON a.category_id = c.id`
	var args []any
	if term != "" {
		query += `
		WHERE c.name LIKE $1 OR c.description LIKE $1`
		args = append(args, likePattern(term))
	}
	query += `
		GROUP BY c.id, p.name
		ORDER BY c.name ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(
			&c.ID, &c.Name, &c.Description, &c.ParentID, &c.Active,
			&c.CreatedAt, &c.UpdatedAt, &c.ParentName, &c.ArticleCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// List returns all categories ordered by name.
func (s *CategoryStore) List() ([]models.Category, error) {
	return s.Search("")
}

// ListActive returns categories that are explicitly active, ordered by name.
// Used for public navigation and article forms.
func (s *CategoryStore) ListActive() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT ` + categoryColumns + `
		FROM categories WHERE is_active = TRUE
		ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// ListRoots returns categories without a parent, ordered by name.
func (s *CategoryStore) ListRoots() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT ` + categoryColumns + `
		FROM categories WHERE parent_id IS NULL
		ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list root categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id int16) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it. The active flag defaults
// to true when unset.
func (s *CategoryStore) Create(c *models.Category) (*models.Category, error) {
	if err := validateCategory(c); err != nil {
		return nil, err
	}
	if c.Active == models.FlagUnset {
		c.Active = models.FlagActive
	}

	row := s.db.QueryRow(`
		INSERT INTO categories (name, description, parent_id, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING `+categoryColumns,
		c.Name, c.Description, c.ParentID, c.Active,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, wrapPg("create category", err)
	}
	return result, nil
}

// Update modifies an existing category. The identity is immutable.
func (s *CategoryStore) Update(c *models.Category) error {
	if err := validateCategory(c); err != nil {
		return err
	}

	res, err := s.db.Exec(`
		UPDATE categories SET
			name = $1, description = $2, parent_id = $3, is_active = $4,
			updated_at = NOW()
		WHERE id = $5
	`, c.Name, c.Description, c.ParentID, c.Active, c.ID)
	if err != nil {
		return wrapPg("update category", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update category: %w", ErrNotFound)
	}
	return nil
}

// Delete removes a category. Fails with ErrConflict while any article
// or child category still references it.
func (s *CategoryStore) Delete(id int16) error {
	used, err := s.InUse(id)
	if err != nil {
		return err
	}
	if used {
		return conflict("category is referenced by articles")
	}

	res, err := s.db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return wrapPg("delete category", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete category: %w", ErrNotFound)
	}
	return nil
}

// InUse reports whether any article references the category.
func (s *CategoryStore) InUse(id int16) (bool, error) {
	var used bool
	err := s.db.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM articles WHERE category_id = $1)`, id,
	).Scan(&used)
	if err != nil {
		return false, fmt.Errorf("category in use: %w", err)
	}
	return used, nil
}

// ArticleCount returns the number of articles in the category.
func (s *CategoryStore) ArticleCount(id int16) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM articles WHERE category_id = $1`, id,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("category article count: %w", err)
	}
	return count, nil
}

// ToggleActive flips the active flag. An unset flag becomes false, since
// unset is displayed as active-by-default.
func (s *CategoryStore) ToggleActive(id int16) error {
	res, err := s.db.Exec(`
		UPDATE categories SET
			is_active = NOT COALESCE(is_active, TRUE),
			updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("toggle category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("toggle category: %w", ErrNotFound)
	}
	return nil
}
