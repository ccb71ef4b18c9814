package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civictrack-be/apperrors"
	"civictrack-be/models"
)

const (
	DefaultAnalyticsDays = 7
	MaxAnalyticsDays     = 90
	recentIssuesLimit    = 5
)

type AdminService struct {
	deps Deps
	projector
}

func NewAdminService(deps Deps) *AdminService {
	deps = deps.withDefaults()
	return &AdminService{deps: deps, projector: projector{users: deps.Users}}
}

type Dashboard struct {
	TotalUsers       int64                     `json:"totalUsers"`
	BannedUsers      int64                     `json:"bannedUsers"`
	TotalIssues      int64                     `json:"totalIssues"`
	IssuesByStatus   map[models.Status]int64   `json:"issuesByStatus"`
	IssuesByCategory map[models.Category]int64 `json:"issuesByCategory"`
	PendingFlags     int64                     `json:"pendingFlags"`
	RecentIssues     []IssueView               `json:"recentIssues"`
}

func (s *AdminService) Dashboard(ctx context.Context, actor Viewer) (*Dashboard, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("Admin access required")
	}

	var (
		d   Dashboard
		err error
	)
	if d.TotalUsers, err = s.deps.Users.Count(ctx, false); err != nil {
		return nil, err
	}
	if d.BannedUsers, err = s.deps.Users.Count(ctx, true); err != nil {
		return nil, err
	}
	if d.IssuesByStatus, err = s.deps.Issues.CountByStatus(ctx); err != nil {
		return nil, err
	}
	for _, n := range d.IssuesByStatus {
		d.TotalIssues += n
	}
	if d.IssuesByCategory, err = s.deps.Issues.CountByCategory(ctx, time.Time{}); err != nil {
		return nil, err
	}
	if d.PendingFlags, err = s.deps.Flags.Count(ctx, models.FlagFilter{ReviewStatus: models.ReviewPending}); err != nil {
		return nil, err
	}

	recent, err := s.deps.Issues.Find(ctx, models.IssueFilter{}, models.Page{Page: 1, Limit: recentIssuesLimit})
	if err != nil {
		return nil, err
	}
	if d.RecentIssues, err = s.project(ctx, actor, recent, nil); err != nil {
		return nil, err
	}
	return &d, nil
}

type Analytics struct {
	Days             int                       `json:"days"`
	Since            time.Time                 `json:"since"`
	IssuesPerDay     []models.DayCount         `json:"issuesPerDay"`
	IssuesByCategory map[models.Category]int64 `json:"issuesByCategory"`
}

// Analytics reports issue creation over the last days days, one bucket per
// UTC day including empty ones.
func (s *AdminService) Analytics(ctx context.Context, actor Viewer, days int) (*Analytics, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("Admin access required")
	}
	if days == 0 {
		days = DefaultAnalyticsDays
	}
	if days < 1 || days > MaxAnalyticsDays {
		return nil, apperrors.InvalidArgument("days must be between 1 and 90")
	}

	today := s.deps.Now().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(days - 1))

	counts, err := s.deps.Issues.CountByDay(ctx, since)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.deps.Issues.CountByCategory(ctx, since)
	if err != nil {
		return nil, err
	}

	return &Analytics{
		Days:             days,
		Since:            since,
		IssuesPerDay:     fillDays(counts, since, days),
		IssuesByCategory: byCategory,
	}, nil
}

func fillDays(counts []models.DayCount, since time.Time, days int) []models.DayCount {
	byDay := make(map[string]int64, len(counts))
	for _, c := range counts {
		byDay[c.Day] = c.Count
	}

	out := make([]models.DayCount, days)
	for i := range out {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		out[i] = models.DayCount{Day: day, Count: byDay[day]}
	}
	return out
}

func (s *AdminService) ListUsers(ctx context.Context, actor Viewer, search string, page models.Page) (models.Paged[models.User], error) {
	if !actor.IsAdmin() {
		return models.Paged[models.User]{}, apperrors.Forbidden("Admin access required")
	}
	users, total, err := s.deps.Users.List(ctx, strings.TrimSpace(search), page)
	if err != nil {
		return models.Paged[models.User]{}, err
	}
	return models.NewPaged(users, total, page), nil
}

func (s *AdminService) ListFlags(ctx context.Context, actor Viewer, reviewStatus string, page models.Page) (models.Paged[models.FlagWithIssue], error) {
	if !actor.IsAdmin() {
		return models.Paged[models.FlagWithIssue]{}, apperrors.Forbidden("Admin access required")
	}

	var filter models.FlagFilter
	if reviewStatus != "" {
		rs := models.ReviewStatus(reviewStatus)
		if !rs.Valid() {
			return models.Paged[models.FlagWithIssue]{}, apperrors.InvalidArgument("reviewStatus must be one of pending, valid, spam")
		}
		filter.ReviewStatus = rs
	}

	flags, total, err := s.deps.Flags.ListWithIssue(ctx, filter, page)
	if err != nil {
		return models.Paged[models.FlagWithIssue]{}, err
	}
	return models.NewPaged(flags, total, page), nil
}

// SetBan bans or unbans a user. Admins cannot ban themselves or other admins.
func (s *AdminService) SetBan(ctx context.Context, actor Viewer, userID primitive.ObjectID, banned bool) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("Admin access required")
	}
	if actor.ID == userID {
		return nil, apperrors.Forbidden("You cannot change your own ban status")
	}

	target, err := s.deps.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if target.IsAdmin() {
		return nil, apperrors.Forbidden("Admins cannot be banned")
	}

	user, err := s.deps.Users.SetBanned(ctx, userID, banned, s.deps.Now())
	if err != nil {
		return nil, err
	}

	s.deps.Logger.Info("user ban status changed",
		zap.String("user_id", userID.Hex()),
		zap.Bool("banned", banned),
		zap.String("actor", actor.ID.Hex()),
	)
	return user, nil
}
