package models

// Tag labels articles for discovery. Tag identifiers are supplied by the
// caller and names are unique. A tag attached to any article cannot be
// deleted.
type Tag struct {
	ID   int     `json:"id"`
	Name string  `json:"name"`
	Note *string `json:"note,omitempty"`

	// Virtual field populated by list queries.
	ArticleCount int `json:"article_count"`
}
