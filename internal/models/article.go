package models

import "time"

// Article is a news article. The identifier is a caller-visible decimal
// string allocated sequentially by the article store, not a surrogate key.
type Article struct {
	ID          string     `json:"id"`
	Title       *string    `json:"title,omitempty"`
	Headline    string     `json:"headline"`
	Body        *string    `json:"body,omitempty"`
	Source      *string    `json:"source,omitempty"`
	CategoryID  *int16     `json:"category_id"`
	Status      Flag       `json:"status"`
	CreatedByID *int16     `json:"created_by_id"`
	UpdatedByID *int16     `json:"updated_by_id"`
	CreatedAt   time.Time  `json:"created_at"`
	ModifiedAt  *time.Time `json:"modified_at,omitempty"`

	// Virtual fields populated by detail and list queries.
	CategoryName  *string `json:"category_name,omitempty"`
	CreatedByName *string `json:"created_by_name,omitempty"`
	UpdatedByName *string `json:"updated_by_name,omitempty"`
	Tags          []Tag   `json:"tags,omitempty"`
}

// IsPublished reports whether the article is publicly visible.
func (a *Article) IsPublished() bool {
	return a.Status.IsActive()
}
