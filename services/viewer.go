package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civictrack-be/models"
)

// Viewer is the caller of an operation. The zero value is an anonymous
// visitor.
type Viewer struct {
	ID     primitive.ObjectID
	Role   models.Role
	Banned bool
}

func ViewerFromUser(u *models.User) Viewer {
	if u == nil {
		return Viewer{}
	}
	return Viewer{ID: u.ID, Role: u.Role, Banned: u.Banned}
}

func (v Viewer) Authenticated() bool { return !v.ID.IsZero() }

func (v Viewer) IsAdmin() bool { return v.Role == models.RoleAdmin }

// canSeeAuthor decides whether the author identity is rendered for issue.
func (v Viewer) canSeeAuthor(issue *models.Issue) bool {
	return !issue.Anonymous || v.IsAdmin() || issue.AuthoredBy(v.ID)
}

type Author struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
}

// IssueView is an issue as rendered for a particular viewer.
type IssueView struct {
	models.Issue
	CreatedBy *Author  `json:"createdBy,omitempty"`
	Distance  *float64 `json:"distance,omitempty"`
}

type IssueDetail struct {
	Issue    IssueView          `json:"issue"`
	Timeline []models.StatusLog `json:"timeline"`
}

// projector renders issues for a viewer, resolving author names in one
// lookup.
type projector struct {
	users UserStore
}

func (p projector) project(ctx context.Context, viewer Viewer, issues []models.Issue, distances []float64) ([]IssueView, error) {
	var ids []primitive.ObjectID
	seen := make(map[primitive.ObjectID]bool)
	for i := range issues {
		if viewer.canSeeAuthor(&issues[i]) && !seen[issues[i].CreatedBy] {
			seen[issues[i].CreatedBy] = true
			ids = append(ids, issues[i].CreatedBy)
		}
	}

	names, err := p.users.FindNames(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]IssueView, len(issues))
	for i := range issues {
		views[i] = IssueView{Issue: issues[i]}
		if seen[issues[i].CreatedBy] && viewer.canSeeAuthor(&issues[i]) {
			views[i].CreatedBy = &Author{ID: issues[i].CreatedBy, Name: names[issues[i].CreatedBy]}
		}
		if distances != nil {
			d := distances[i]
			views[i].Distance = &d
		}
	}
	return views, nil
}

func (p projector) projectOne(ctx context.Context, viewer Viewer, issue *models.Issue) (*IssueView, error) {
	views, err := p.project(ctx, viewer, []models.Issue{*issue}, nil)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}
