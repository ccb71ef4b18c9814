package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civictrack-be/geo"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

// NewPage clamps page and limit into their legal ranges.
func NewPage(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Page: page, Limit: limit}
}

func (p Page) Skip() int64 {
	return int64((p.Page - 1) * p.Limit)
}

type Paged[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

func NewPaged[T any](items []T, total int64, p Page) Paged[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Paged[T]{Items: items, Total: total, Page: p.Page, Limit: p.Limit, TotalPages: pages}
}

// IssueFilter narrows an issue query. Zero values mean "no constraint".
type IssueFilter struct {
	Category       Category
	Status         Status
	Box            *geo.Box
	CreatedBy      primitive.ObjectID
	ExcludeHidden  bool
	ExcludeAuthors []primitive.ObjectID
	Search         string
	Since          time.Time
}

type FlagFilter struct {
	ReviewStatus ReviewStatus
}

type DayCount struct {
	Day   string `bson:"_id" json:"day"`
	Count int64  `bson:"count" json:"count"`
}
