package models

import "fmt"

// Category enum
type Category string

const (
	CategoryPothole     Category = "pothole"
	CategoryGarbage     Category = "garbage"
	CategoryStreetlight Category = "streetlight"
	CategoryTraffic     Category = "traffic"
	CategoryParks       Category = "parks"
	CategoryOther       Category = "other"
)

var Categories = []Category{
	CategoryPothole, CategoryGarbage, CategoryStreetlight,
	CategoryTraffic, CategoryParks, CategoryOther,
}

func (c Category) Valid() bool {
	switch c {
	case CategoryPothole, CategoryGarbage, CategoryStreetlight,
		CategoryTraffic, CategoryParks, CategoryOther:
		return true
	}
	return false
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("invalid category %q", s)
	}
	return c, nil
}

// Status enum
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusResolved   Status = "resolved"
	StatusRejected   Status = "rejected"
)

var Statuses = []Status{StatusPending, StatusInProgress, StatusResolved, StatusRejected}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid status %q", s)
	}
	return st, nil
}

// Terminal reports whether no further transition is expected from s.
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusRejected
}

// expectedTransitions is the intended moderation flow. Admins may override
// it unless strict transitions are enabled.
var expectedTransitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusRejected},
	StatusInProgress: {StatusResolved, StatusRejected},
}

// CanTransition reports whether from -> to is on the expected path.
func CanTransition(from, to Status) bool {
	for _, next := range expectedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// FlagReason enum
type FlagReason string

const (
	FlagInappropriate FlagReason = "inappropriate"
	FlagSpam          FlagReason = "spam"
	FlagDuplicate     FlagReason = "duplicate"
	FlagOther         FlagReason = "other"
)

func (r FlagReason) Valid() bool {
	switch r {
	case FlagInappropriate, FlagSpam, FlagDuplicate, FlagOther:
		return true
	}
	return false
}

// ReviewStatus enum
type ReviewStatus string

const (
	ReviewPending ReviewStatus = "pending"
	ReviewValid   ReviewStatus = "valid"
	ReviewSpam    ReviewStatus = "spam"
)

func (r ReviewStatus) Valid() bool {
	switch r {
	case ReviewPending, ReviewValid, ReviewSpam:
		return true
	}
	return false
}

// Outcome reports whether r is a legal result of an admin review.
func (r ReviewStatus) Outcome() bool {
	return r == ReviewValid || r == ReviewSpam
}

// Role enum
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)
