package services

import (
	"context"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civictrack-be/models"
)

type IssueStore interface {
	Create(ctx context.Context, issue *models.Issue) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	Find(ctx context.Context, filter models.IssueFilter, page models.Page) ([]models.Issue, error)
	Count(ctx context.Context, filter models.IssueFilter) (int64, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.Status, at time.Time) (models.Status, error)
	SetHidden(ctx context.Context, id primitive.ObjectID, hidden bool) error
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	CountByStatus(ctx context.Context) (map[models.Status]int64, error)
	CountByCategory(ctx context.Context, since time.Time) (map[models.Category]int64, error)
	CountByDay(ctx context.Context, since time.Time) ([]models.DayCount, error)
}

type StatusLogStore interface {
	Append(ctx context.Context, entry *models.StatusLog) error
	ListByIssue(ctx context.Context, issueID primitive.ObjectID) ([]models.StatusLog, error)
	DeleteByIssue(ctx context.Context, issueID primitive.ObjectID) (int64, error)
}

type FlagStore interface {
	Create(ctx context.Context, flag *models.Flag) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Flag, error)
	Review(ctx context.Context, id primitive.ObjectID, outcome models.ReviewStatus, note string, reviewer primitive.ObjectID, at time.Time) (*models.Flag, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Flag, error)
	DeleteByIssue(ctx context.Context, issueID primitive.ObjectID) (int64, error)
	CountActive(ctx context.Context, issueID primitive.ObjectID) (int64, error)
	Count(ctx context.Context, filter models.FlagFilter) (int64, error)
	ListWithIssue(ctx context.Context, filter models.FlagFilter, page models.Page) ([]models.FlagWithIssue, int64, error)
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, search string, page models.Page) ([]models.User, int64, error)
	SetBanned(ctx context.Context, id primitive.ObjectID, banned bool, at time.Time) (*models.User, error)
	BannedIDs(ctx context.Context) ([]primitive.ObjectID, error)
	FindNames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error)
	Count(ctx context.Context, bannedOnly bool) (int64, error)
}

// TxRunner groups writes into one unit. Stores must be called with the ctx
// passed to fn.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	Enabled() bool
}

type PhotoStore interface {
	Upload(ctx context.Context, file io.Reader, ownerID string) (string, error)
	// Owns reports whether photoURL was uploaded by ownerID.
	Owns(photoURL, ownerID string) bool
	Destroy(ctx context.Context, photoURL, ownerID string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type Recorder interface {
	IssueCreated(category models.Category)
	StatusChanged(from, to models.Status)
	FlagFiled(reason models.FlagReason)
	IssueDeleted()
}
