package controllers

import (
	"context"
	"io"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civictrack-be/models"
	"civictrack-be/services"
)

type stubIssues struct {
	created  services.CreateIssueInput
	listed   services.ListIssuesQuery
	adminQ   services.AdminIssueQuery
	deleted  primitive.ObjectID
	uploaded []byte
	err      error
}

func (s *stubIssues) Create(_ context.Context, viewer services.Viewer, in services.CreateIssueInput) (*services.IssueView, error) {
	s.created = in
	if s.err != nil {
		return nil, s.err
	}
	return &services.IssueView{Issue: models.Issue{
		ID:       primitive.NewObjectID(),
		Title:    in.Title,
		Category: models.Category(in.Category),
		Status:   models.StatusPending,
		Location: in.Location,
	}, CreatedBy: &services.Author{ID: viewer.ID}}, nil
}

func (s *stubIssues) Get(_ context.Context, _ services.Viewer, id primitive.ObjectID) (*services.IssueDetail, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &services.IssueDetail{Issue: services.IssueView{Issue: models.Issue{ID: id}}}, nil
}

func (s *stubIssues) List(_ context.Context, _ services.Viewer, q services.ListIssuesQuery) ([]services.IssueView, error) {
	s.listed = q
	if s.err != nil {
		return nil, s.err
	}
	return []services.IssueView{{Issue: models.Issue{ID: primitive.NewObjectID()}}}, nil
}

func (s *stubIssues) ListMine(context.Context, services.Viewer) ([]services.IssueView, error) {
	return nil, s.err
}

func (s *stubIssues) ListAll(_ context.Context, _ services.Viewer, q services.AdminIssueQuery) (models.Paged[services.IssueView], error) {
	s.adminQ = q
	return models.NewPaged([]services.IssueView{}, 0, q.Page), s.err
}

func (s *stubIssues) Delete(_ context.Context, _ services.Viewer, id primitive.ObjectID) error {
	s.deleted = id
	return s.err
}

func (s *stubIssues) UploadPhoto(_ context.Context, _ services.Viewer, file io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	s.uploaded = data
	return "https://res.cloudinary.com/demo/image/upload/v1/civictrack/issues/photo.png", nil
}

type stubModeration struct {
	status  string
	comment string
	flag    services.FileFlagInput
	review  services.ReviewFlagInput
	err     error
}

func (s *stubModeration) UpdateStatus(_ context.Context, _ services.Viewer, issueID primitive.ObjectID, status, comment string) (*models.Issue, error) {
	s.status, s.comment = status, comment
	if s.err != nil {
		return nil, s.err
	}
	return &models.Issue{ID: issueID, Status: models.Status(status)}, nil
}

func (s *stubModeration) FileFlag(_ context.Context, actor services.Viewer, issueID primitive.ObjectID, in services.FileFlagInput) (*models.Flag, error) {
	s.flag = in
	if s.err != nil {
		return nil, s.err
	}
	return &models.Flag{ID: primitive.NewObjectID(), UserID: actor.ID, IssueID: issueID, Reason: models.FlagReason(in.Reason), ReviewStatus: models.ReviewPending}, nil
}

func (s *stubModeration) ReviewFlag(_ context.Context, _ services.Viewer, flagID primitive.ObjectID, in services.ReviewFlagInput) (*models.Flag, error) {
	s.review = in
	if s.err != nil {
		return nil, s.err
	}
	return &models.Flag{ID: flagID, ReviewStatus: models.ReviewStatus(in.Outcome), AdminNote: in.AdminNote}, nil
}

func (s *stubModeration) DeleteFlag(context.Context, services.Viewer, primitive.ObjectID) error {
	return s.err
}

type stubAdmin struct {
	days   int
	search string
	page   models.Page
	banned *bool
	err    error
}

func (s *stubAdmin) Dashboard(context.Context, services.Viewer) (*services.Dashboard, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &services.Dashboard{TotalUsers: 3}, nil
}

func (s *stubAdmin) Analytics(_ context.Context, _ services.Viewer, days int) (*services.Analytics, error) {
	s.days = days
	if s.err != nil {
		return nil, s.err
	}
	return &services.Analytics{Days: days}, nil
}

func (s *stubAdmin) ListUsers(_ context.Context, _ services.Viewer, search string, page models.Page) (models.Paged[models.User], error) {
	s.search, s.page = search, page
	return models.NewPaged([]models.User{}, 0, page), s.err
}

func (s *stubAdmin) ListFlags(_ context.Context, _ services.Viewer, _ string, page models.Page) (models.Paged[models.FlagWithIssue], error) {
	s.page = page
	return models.NewPaged([]models.FlagWithIssue{}, 0, page), s.err
}

func (s *stubAdmin) SetBan(_ context.Context, _ services.Viewer, userID primitive.ObjectID, banned bool) (*models.User, error) {
	s.banned = &banned
	if s.err != nil {
		return nil, s.err
	}
	return &models.User{ID: userID, Banned: banned}, nil
}

type stubAuth struct {
	registered services.RegisterInput
	err        error
}

func (s *stubAuth) Register(_ context.Context, in services.RegisterInput) (*services.AuthResult, error) {
	s.registered = in
	if s.err != nil {
		return nil, s.err
	}
	return &services.AuthResult{Token: "token", User: &models.User{Name: in.Name, Email: in.Email}}, nil
}

func (s *stubAuth) Login(context.Context, string, string) (*services.AuthResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &services.AuthResult{Token: "token", User: &models.User{}}, nil
}

func (s *stubAuth) Me(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.User{ID: id}, nil
}
