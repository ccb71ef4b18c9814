package repositories

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civictrack-be/apperrors"
	"civictrack-be/models"
)

type FlagRepository struct {
	collection *mongo.Collection
}

func NewFlagRepository(db *mongo.Database) *FlagRepository {
	return &FlagRepository{collection: db.Collection(FlagsCollection)}
}

// Create relies on the unique (userId, issueId) index; a second flag from
// the same user is reported as Conflict.
func (r *FlagRepository) Create(ctx context.Context, flag *models.Flag) error {
	if flag.ID.IsZero() {
		flag.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, flag)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.Conflict("You have already flagged this issue")
	}
	return errors.Wrap(err, "insert flag")
}

func (r *FlagRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Flag, error) {
	var flag models.Flag
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&flag); err != nil {
		return nil, mapErr(err, "Flag", "find")
	}
	return &flag, nil
}

// Review moves a pending flag to its outcome. Reviewed flags are terminal.
func (r *FlagRepository) Review(ctx context.Context, id primitive.ObjectID, outcome models.ReviewStatus, note string, reviewer primitive.ObjectID, at time.Time) (*models.Flag, error) {
	var flag models.Flag
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "reviewStatus": models.ReviewPending},
		bson.M{"$set": bson.M{
			"reviewStatus": outcome,
			"adminNote":    note,
			"reviewedBy":   reviewer,
			"reviewedAt":   at,
			"updatedAt":    at,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&flag)

	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return nil, findErr
		}
		return nil, apperrors.Conflict("Flag has already been reviewed")
	}
	if err != nil {
		return nil, errors.Wrap(err, "review flag")
	}
	return &flag, nil
}

func (r *FlagRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.Flag, error) {
	var flag models.Flag
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&flag); err != nil {
		return nil, mapErr(err, "Flag", "delete")
	}
	return &flag, nil
}

func (r *FlagRepository) DeleteByIssue(ctx context.Context, issueID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"issueId": issueID})
	if err != nil {
		return 0, errors.Wrap(err, "delete flags")
	}
	return res.DeletedCount, nil
}

// CountActive counts the issue's flags that were not dismissed as spam.
func (r *FlagRepository) CountActive(ctx context.Context, issueID primitive.ObjectID) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{
		"issueId":      issueID,
		"reviewStatus": bson.M{"$ne": models.ReviewSpam},
	})
	return n, errors.Wrap(err, "count flags")
}

func (r *FlagRepository) Count(ctx context.Context, filter models.FlagFilter) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, flagFilter(filter))
	return n, errors.Wrap(err, "count flags")
}

// ListWithIssue pages flags joined with their issue, newest first. Flags
// whose issue no longer exists are skipped.
func (r *FlagRepository) ListWithIssue(ctx context.Context, filter models.FlagFilter, page models.Page) ([]models.FlagWithIssue, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: flagFilter(filter)}},
		{{Key: "$lookup", Value: bson.M{
			"from":         IssuesCollection,
			"localField":   "issueId",
			"foreignField": "_id",
			"as":           "issue",
		}}},
		{{Key: "$unwind", Value: "$issue"}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$facet", Value: bson.M{
			"items": bson.A{
				bson.M{"$skip": page.Skip()},
				bson.M{"$limit": page.Limit},
				bson.M{"$project": bson.M{
					"issue.description": 0,
					"issue.photos":      0,
					"issue.location":    0,
				}},
			},
			"total": bson.A{bson.M{"$count": "n"}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, errors.Wrap(err, "aggregate flags")
	}
	defer cursor.Close(ctx)

	var result []struct {
		Items []models.FlagWithIssue `bson:"items"`
		Total []struct {
			N int64 `bson:"n"`
		} `bson:"total"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, 0, errors.Wrap(err, "decode flags")
	}

	if len(result) == 0 {
		return []models.FlagWithIssue{}, 0, nil
	}
	var total int64
	if len(result[0].Total) > 0 {
		total = result[0].Total[0].N
	}
	return result[0].Items, total, nil
}

func (r *FlagRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "issueId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "issueId", Value: 1}}},
		{Keys: bson.D{{Key: "reviewStatus", Value: 1}, {Key: "createdAt", Value: -1}}},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return errors.Wrap(err, "create flag indexes")
}
