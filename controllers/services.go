package controllers

import (
	"context"
	"io"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civictrack-be/models"
	"civictrack-be/services"
)

type IssueService interface {
	Create(ctx context.Context, viewer services.Viewer, in services.CreateIssueInput) (*services.IssueView, error)
	Get(ctx context.Context, viewer services.Viewer, id primitive.ObjectID) (*services.IssueDetail, error)
	List(ctx context.Context, viewer services.Viewer, q services.ListIssuesQuery) ([]services.IssueView, error)
	ListMine(ctx context.Context, viewer services.Viewer) ([]services.IssueView, error)
	ListAll(ctx context.Context, viewer services.Viewer, q services.AdminIssueQuery) (models.Paged[services.IssueView], error)
	Delete(ctx context.Context, viewer services.Viewer, id primitive.ObjectID) error
	UploadPhoto(ctx context.Context, viewer services.Viewer, file io.Reader) (string, error)
}

type ModerationService interface {
	UpdateStatus(ctx context.Context, actor services.Viewer, issueID primitive.ObjectID, status, comment string) (*models.Issue, error)
	FileFlag(ctx context.Context, actor services.Viewer, issueID primitive.ObjectID, in services.FileFlagInput) (*models.Flag, error)
	ReviewFlag(ctx context.Context, actor services.Viewer, flagID primitive.ObjectID, in services.ReviewFlagInput) (*models.Flag, error)
	DeleteFlag(ctx context.Context, actor services.Viewer, flagID primitive.ObjectID) error
}

type AdminService interface {
	Dashboard(ctx context.Context, actor services.Viewer) (*services.Dashboard, error)
	Analytics(ctx context.Context, actor services.Viewer, days int) (*services.Analytics, error)
	ListUsers(ctx context.Context, actor services.Viewer, search string, page models.Page) (models.Paged[models.User], error)
	ListFlags(ctx context.Context, actor services.Viewer, reviewStatus string, page models.Page) (models.Paged[models.FlagWithIssue], error)
	SetBan(ctx context.Context, actor services.Viewer, userID primitive.ObjectID, banned bool) (*models.User, error)
}

type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Me(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}
