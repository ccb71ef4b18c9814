package services

import (
	"context"
	"io"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civictrack-be/apperrors"
	"civictrack-be/events"
	"civictrack-be/geo"
	"civictrack-be/models"
)

type GeoSettings struct {
	DefaultRadiusKm float64
	MaxRadiusKm     float64
}

type IssueService struct {
	deps Deps
	geo  GeoSettings
	projector
}

func NewIssueService(deps Deps, settings GeoSettings) *IssueService {
	deps = deps.withDefaults()
	return &IssueService{deps: deps, geo: settings, projector: projector{users: deps.Users}}
}

type CreateIssueInput struct {
	Title       string
	Description string
	Category    string
	Location    models.Location
	Photos      []string
	Anonymous   bool
}

func (in CreateIssueInput) validate() error {
	f := fieldErrors{}
	f.length("title", in.Title, 5, 100)
	f.length("description", in.Description, 10, 1000)
	f.check(models.Category(in.Category).Valid(), "category", "category must be one of pothole, garbage, streetlight, traffic, parks, other")
	f.check(in.Location.Lat >= -90 && in.Location.Lat <= 90, "location.lat", "latitude must be between -90 and 90")
	f.check(in.Location.Lng >= -180 && in.Location.Lng <= 180, "location.lng", "longitude must be between -180 and 180")
	f.check(strings.TrimSpace(in.Location.Address) != "", "location.address", "address is required")
	f.check(len(in.Photos) <= models.MaxPhotos, "photos", "at most 5 photos are allowed")
	return f.err()
}

// Create stores the issue together with its initial pending log entry.
func (s *IssueService) Create(ctx context.Context, viewer Viewer, in CreateIssueInput) (*IssueView, error) {
	if !viewer.Authenticated() {
		return nil, apperrors.Unauthenticated("User not authenticated")
	}
	if viewer.Banned {
		return nil, apperrors.Forbidden("Your account has been banned")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkPhotoOwnership(viewer, in.Photos); err != nil {
		return nil, err
	}

	now := s.deps.Now()
	photos := in.Photos
	if photos == nil {
		photos = []string{}
	}
	issue := &models.Issue{
		ID:          primitive.NewObjectID(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Photos:      photos,
		Location: models.Location{
			Lat:     in.Location.Lat,
			Lng:     in.Location.Lng,
			Address: strings.TrimSpace(in.Location.Address),
		},
		Category:  models.Category(in.Category),
		Status:    models.StatusPending,
		Anonymous: in.Anonymous,
		CreatedBy: viewer.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	entry := models.NewStatusLog(issue.ID, models.StatusPending, "Issue reported", viewer.ID, now)

	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.deps.Issues.Create(ctx, issue); err != nil {
			return err
		}
		if err := s.deps.Logs.Append(ctx, entry); err != nil {
			if !s.deps.Tx.Enabled() {
				s.rollbackCreate(ctx, issue.ID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.Logger.Info("issue created",
		zap.String("issue_id", issue.ID.Hex()),
		zap.String("category", string(issue.Category)),
	)
	s.deps.Metrics.IssueCreated(issue.Category)
	s.deps.publish(ctx, events.IssueCreated, map[string]any{
		"issueId":  issue.ID.Hex(),
		"category": issue.Category,
		"location": issue.Location,
	})

	return s.projectOne(ctx, viewer, issue)
}

// checkPhotoOwnership only admits photos the viewer uploaded through
// UploadPhoto, since deleting the issue later destroys them.
func (s *IssueService) checkPhotoOwnership(viewer Viewer, photos []string) error {
	if s.deps.Photos == nil {
		return nil
	}
	f := fieldErrors{}
	for _, url := range photos {
		f.check(s.deps.Photos.Owns(url, viewer.ID.Hex()), "photos", "photos must be uploaded through /api/issues/photos by the reporter")
	}
	return f.err()
}

func (s *IssueService) rollbackCreate(ctx context.Context, id primitive.ObjectID) {
	if _, err := s.deps.Issues.Delete(ctx, id); err != nil {
		s.deps.Logger.Error("failed to roll back issue without log entry",
			zap.String("issue_id", id.Hex()), zap.Error(err))
	}
}

// Get returns an issue with its timeline, newest entry first. Hidden issues
// are only visible to their author and admins.
func (s *IssueService) Get(ctx context.Context, viewer Viewer, id primitive.ObjectID) (*IssueDetail, error) {
	issue, err := s.deps.Issues.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if issue.Hidden && !viewer.IsAdmin() && !issue.AuthoredBy(viewer.ID) {
		return nil, apperrors.NotFound("Issue")
	}

	timeline, err := s.deps.Logs.ListByIssue(ctx, id)
	if err != nil {
		return nil, err
	}

	view, err := s.projectOne(ctx, viewer, issue)
	if err != nil {
		return nil, err
	}
	return &IssueDetail{Issue: *view, Timeline: timeline}, nil
}

type ListIssuesQuery struct {
	Category string
	Status   string
	Center   *geo.Point
	RadiusKm *float64
}

// List is the public issue feed. Without a center it returns issues newest
// first. With a center it keeps issues within the radius, nearest first.
func (s *IssueService) List(ctx context.Context, viewer Viewer, q ListIssuesQuery) ([]IssueView, error) {
	filter, err := s.publicFilter(ctx, q.Category, q.Status)
	if err != nil {
		return nil, err
	}

	if q.Center == nil {
		issues, err := s.deps.Issues.Find(ctx, filter, models.Page{})
		if err != nil {
			return nil, err
		}
		return s.project(ctx, viewer, issues, nil)
	}

	if !q.Center.Valid() {
		return nil, apperrors.InvalidArgument("lat must be between -90 and 90 and lng between -180 and 180")
	}
	radius := s.geo.DefaultRadiusKm
	if q.RadiusKm != nil {
		radius = *q.RadiusKm
	}
	if radius < 0 || (s.geo.MaxRadiusKm > 0 && radius > s.geo.MaxRadiusKm) {
		return nil, apperrors.InvalidArgument("radius is out of range")
	}

	box := geo.BoundingBox(*q.Center, radius)
	filter.Box = &box

	candidates, err := s.deps.Issues.Find(ctx, filter, models.Page{})
	if err != nil {
		return nil, err
	}

	ranked := geo.WithinRadius(candidates, *q.Center, radius, func(i models.Issue) geo.Point {
		return geo.Point{Lat: i.Location.Lat, Lng: i.Location.Lng}
	})

	issues := make([]models.Issue, len(ranked))
	distances := make([]float64, len(ranked))
	for i, r := range ranked {
		issues[i] = r.Item
		distances[i] = r.Distance
	}
	return s.project(ctx, viewer, issues, distances)
}

func (s *IssueService) publicFilter(ctx context.Context, category, status string) (models.IssueFilter, error) {
	filter := models.IssueFilter{ExcludeHidden: true}
	if category != "" {
		c, err := models.ParseCategory(category)
		if err != nil {
			return filter, apperrors.InvalidArgument(err.Error())
		}
		filter.Category = c
	}
	if status != "" {
		st, err := models.ParseStatus(status)
		if err != nil {
			return filter, apperrors.InvalidArgument(err.Error())
		}
		filter.Status = st
	}

	banned, err := s.deps.Users.BannedIDs(ctx)
	if err != nil {
		return filter, err
	}
	filter.ExcludeAuthors = banned
	return filter, nil
}

// ListMine returns the caller's own issues, newest first, hidden ones
// included.
func (s *IssueService) ListMine(ctx context.Context, viewer Viewer) ([]IssueView, error) {
	if !viewer.Authenticated() {
		return nil, apperrors.Unauthenticated("User not authenticated")
	}
	issues, err := s.deps.Issues.Find(ctx, models.IssueFilter{CreatedBy: viewer.ID}, models.Page{})
	if err != nil {
		return nil, err
	}
	return s.project(ctx, viewer, issues, nil)
}

// Delete removes an issue with its status log and flags. Only the author or
// an admin may delete.
func (s *IssueService) Delete(ctx context.Context, viewer Viewer, id primitive.ObjectID) error {
	issue, err := s.deps.Issues.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !viewer.IsAdmin() && !issue.AuthoredBy(viewer.ID) {
		return apperrors.Forbidden("You are not allowed to delete this issue")
	}

	var logs, flags int64
	err = s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		// the issue goes first so a partial failure leaves only rows that
		// nothing can reach
		if _, err := s.deps.Issues.Delete(ctx, id); err != nil {
			return err
		}
		var err error
		if logs, err = s.deps.Logs.DeleteByIssue(ctx, id); err != nil {
			return err
		}
		flags, err = s.deps.Flags.DeleteByIssue(ctx, id)
		return err
	})
	if err != nil {
		return err
	}

	s.deps.Logger.Info("issue deleted",
		zap.String("issue_id", id.Hex()),
		zap.String("actor", viewer.ID.Hex()),
		zap.Int64("status_logs", logs),
		zap.Int64("flags", flags),
	)
	s.deps.Metrics.IssueDeleted()
	s.destroyPhotos(ctx, issue)
	s.deps.publish(ctx, events.IssueDeleted, map[string]any{
		"issueId": id.Hex(),
		"actor":   viewer.ID.Hex(),
	})
	return nil
}

func (s *IssueService) destroyPhotos(ctx context.Context, issue *models.Issue) {
	if s.deps.Photos == nil {
		return
	}
	for _, url := range issue.Photos {
		if err := s.deps.Photos.Destroy(ctx, url, issue.CreatedBy.Hex()); err != nil {
			s.deps.Logger.Warn("failed to destroy issue photo",
				zap.String("issue_id", issue.ID.Hex()),
				zap.String("url", url),
				zap.Error(err),
			)
		}
	}
}

type AdminIssueQuery struct {
	Category string
	Status   string
	Search   string
	Page     models.Page
}

// ListAll pages through every issue, hidden and banned authors included.
func (s *IssueService) ListAll(ctx context.Context, viewer Viewer, q AdminIssueQuery) (models.Paged[IssueView], error) {
	var filter models.IssueFilter
	if q.Category != "" {
		c, err := models.ParseCategory(q.Category)
		if err != nil {
			return models.Paged[IssueView]{}, apperrors.InvalidArgument(err.Error())
		}
		filter.Category = c
	}
	if q.Status != "" {
		st, err := models.ParseStatus(q.Status)
		if err != nil {
			return models.Paged[IssueView]{}, apperrors.InvalidArgument(err.Error())
		}
		filter.Status = st
	}
	filter.Search = strings.TrimSpace(q.Search)

	total, err := s.deps.Issues.Count(ctx, filter)
	if err != nil {
		return models.Paged[IssueView]{}, err
	}
	issues, err := s.deps.Issues.Find(ctx, filter, q.Page)
	if err != nil {
		return models.Paged[IssueView]{}, err
	}
	views, err := s.project(ctx, viewer, issues, nil)
	if err != nil {
		return models.Paged[IssueView]{}, err
	}
	return models.NewPaged(views, total, q.Page), nil
}

// UploadPhoto stores a photo for a future issue and returns its URL.
func (s *IssueService) UploadPhoto(ctx context.Context, viewer Viewer, file io.Reader) (string, error) {
	if s.deps.Photos == nil {
		return "", apperrors.Unavailable("Photo uploads are not configured", nil)
	}
	if viewer.Banned {
		return "", apperrors.Forbidden("Your account has been banned")
	}
	url, err := s.deps.Photos.Upload(ctx, file, viewer.ID.Hex())
	if err != nil {
		return "", apperrors.Unavailable("Photo upload failed", err)
	}
	return url, nil
}
