package repositories

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civictrack-be/models"
)

type StatusLogRepository struct {
	collection *mongo.Collection
}

func NewStatusLogRepository(db *mongo.Database) *StatusLogRepository {
	return &StatusLogRepository{collection: db.Collection(StatusLogsCollection)}
}

func (r *StatusLogRepository) Append(ctx context.Context, entry *models.StatusLog) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, entry)
	return errors.Wrap(err, "append status log")
}

// ListByIssue returns the issue's timeline, newest first.
func (r *StatusLogRepository) ListByIssue(ctx context.Context, issueID primitive.ObjectID) ([]models.StatusLog, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: -1},
	})

	cursor, err := r.collection.Find(ctx, bson.M{"issueId": issueID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find status logs")
	}
	defer cursor.Close(ctx)

	logs := []models.StatusLog{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, errors.Wrap(err, "decode status logs")
	}
	return logs, nil
}

func (r *StatusLogRepository) DeleteByIssue(ctx context.Context, issueID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"issueId": issueID})
	if err != nil {
		return 0, errors.Wrap(err, "delete status logs")
	}
	return res.DeletedCount, nil
}

func (r *StatusLogRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "issueId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return errors.Wrap(err, "create status log indexes")
}
