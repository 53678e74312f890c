package models

import "time"

// Category is a hierarchical grouping for articles. Root categories have
// no parent. A category referenced by any article cannot be deleted.
type Category struct {
	ID          int16     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ParentID    *int16    `json:"parent_id"`
	Active      Flag      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Virtual fields populated by list queries.
	ParentName   *string `json:"parent_name,omitempty"`
	ArticleCount int     `json:"article_count"`
}
