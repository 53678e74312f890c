// Package report computes per-category and per-author article statistics
// over a date window. The aggregation runs in memory on the article
// listing so the counting rules live in one place.
package report

import (
	"sort"
	"time"

	"newsroom/internal/models"
)

const (
	// Sentinel group labels for articles without a category or creator.
	uncategorizedLabel = "Uncategorized"
	unknownAuthorLabel = "Unknown"
)

// ArticleLister is the slice of the article store the generator needs.
type ArticleLister interface {
	ListByDateRange(start, end time.Time) ([]models.Article, error)
}

// CategoryStat holds article counts for one category group.
type CategoryStat struct {
	CategoryID   int16  `json:"category_id"`
	CategoryName string `json:"category_name"`
	Total        int    `json:"total"`
	Active       int    `json:"active"`
	Inactive     int    `json:"inactive"`
}

// AuthorStat holds article counts for one creator group.
type AuthorStat struct {
	AccountID   int16  `json:"account_id"`
	AccountName string `json:"account_name"`
	Total       int    `json:"total"`
	Active      int    `json:"active"`
	Inactive    int    `json:"inactive"`
}

// Report is the aggregate over all articles created inside the window.
// Total = Active + Inactive holds at every level, and the group totals
// sum to the report total.
type Report struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`

	Categories []CategoryStat   `json:"categories"`
	Authors    []AuthorStat     `json:"authors"`
	Articles   []models.Article `json:"articles"`
}

// Generator produces reports from the article store.
type Generator struct {
	articles ArticleLister
	now      func() time.Time
}

// NewGenerator returns a report generator backed by the given lister.
func NewGenerator(articles ArticleLister) *Generator {
	return &Generator{articles: articles, now: time.Now}
}

// Generate aggregates articles created in [start 00:00:00, end 23:59:59].
// A nil start defaults to one month ago, a nil end to today, both taken
// from the wall clock at call time.
func (g *Generator) Generate(start, end *time.Time) (*Report, error) {
	today := dateOnly(g.now())

	startDate := today.AddDate(0, -1, 0)
	if start != nil {
		startDate = dateOnly(*start)
	}
	endDate := today
	if end != nil {
		endDate = dateOnly(*end)
	}
	// End of the closing day, inclusive.
	endOfWindow := endDate.AddDate(0, 0, 1).Add(-time.Second)

	articles, err := g.articles.ListByDateRange(startDate, endOfWindow)
	if err != nil {
		return nil, err
	}

	r := &Report{
		StartDate: startDate,
		EndDate:   endDate,
		Total:     len(articles),
		Articles:  articles,
	}

	catStats := make(map[int16]*CategoryStat)
	authStats := make(map[int16]*AuthorStat)
	for _, a := range articles {
		if a.Status.IsActive() {
			r.Active++
		} else {
			r.Inactive++
		}

		cs := groupCategory(catStats, &a)
		as := groupAuthor(authStats, &a)
		cs.Total++
		as.Total++
		if a.Status.IsActive() {
			cs.Active++
			as.Active++
		} else {
			cs.Inactive++
			as.Inactive++
		}
	}

	for _, cs := range catStats {
		r.Categories = append(r.Categories, *cs)
	}
	for _, as := range authStats {
		r.Authors = append(r.Authors, *as)
	}

	// Largest groups first; names break ties so the order is stable.
	sort.Slice(r.Categories, func(i, j int) bool {
		if r.Categories[i].Total != r.Categories[j].Total {
			return r.Categories[i].Total > r.Categories[j].Total
		}
		return r.Categories[i].CategoryName < r.Categories[j].CategoryName
	})
	sort.Slice(r.Authors, func(i, j int) bool {
		if r.Authors[i].Total != r.Authors[j].Total {
			return r.Authors[i].Total > r.Authors[j].Total
		}
		return r.Authors[i].AccountName < r.Authors[j].AccountName
	})

	// The store already orders by creation date descending; keep the
	// guarantee even for custom listers.
	sort.SliceStable(r.Articles, func(i, j int) bool {
		return r.Articles[i].CreatedAt.After(r.Articles[j].CreatedAt)
	})

	return r, nil
}

// groupCategory finds or creates the stat bucket for an article's
// category. Uncategorized articles share the zero-id bucket.
func groupCategory(stats map[int16]*CategoryStat, a *models.Article) *CategoryStat {
	var id int16
	name := uncategorizedLabel
	if a.CategoryID != nil {
		id = *a.CategoryID
		if a.CategoryName != nil {
			name = *a.CategoryName
		}
	}
	cs, ok := stats[id]
	if !ok {
		cs = &CategoryStat{CategoryID: id, CategoryName: name}
		stats[id] = cs
	}
	return cs
}

// groupAuthor finds or creates the stat bucket for an article's creator.
// Articles without a creator share the zero-id bucket.
func groupAuthor(stats map[int16]*AuthorStat, a *models.Article) *AuthorStat {
	var id int16
	name := unknownAuthorLabel
	if a.CreatedByID != nil {
		id = *a.CreatedByID
		if a.CreatedByName != nil {
			name = *a.CreatedByName
		}
	}
	as, ok := stats[id]
	if !ok {
		as = &AuthorStat{AccountID: id, AccountName: name}
		stats[id] = as
	}
	return as
}

// dateOnly truncates a timestamp to midnight in its location.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
