package repositories

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civictrack-be/models"
)

type IssueRepository struct {
	collection *mongo.Collection
}

func NewIssueRepository(db *mongo.Database) *IssueRepository {
	return &IssueRepository{collection: db.Collection(IssuesCollection)}
}

func (r *IssueRepository) Create(ctx context.Context, issue *models.Issue) error {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, issue)
	return errors.Wrap(err, "insert issue")
}

func (r *IssueRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if err != nil {
		return nil, mapErr(err, "Issue", "find")
	}
	return &issue, nil
}

// Find returns matching issues newest first. A zero page returns everything.
func (r *IssueRepository) Find(ctx context.Context, filter models.IssueFilter, page models.Page) ([]models.Issue, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if page.Limit > 0 {
		opts.SetSkip(page.Skip()).SetLimit(int64(page.Limit))
	}

	cursor, err := r.collection.Find(ctx, issueFilter(filter), opts)
	if err != nil {
		return nil, errors.Wrap(err, "find issues")
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, errors.Wrap(err, "decode issues")
	}
	return issues, nil
}

func (r *IssueRepository) Count(ctx context.Context, filter models.IssueFilter) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, issueFilter(filter))
	return n, errors.Wrap(err, "count issues")
}

// UpdateStatus sets the status and returns the status it replaced.
func (r *IssueRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.Status, at time.Time) (models.Status, error) {
	var before models.Issue
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": at}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.Before).
			SetProjection(bson.M{"status": 1}),
	).Decode(&before)
	if err != nil {
		return "", mapErr(err, "Issue", "update status of")
	}
	return before.Status, nil
}

func (r *IssueRepository) SetHidden(ctx context.Context, id primitive.ObjectID, hidden bool) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"hidden": hidden}},
	)
	if err != nil {
		return errors.Wrap(err, "update issue visibility")
	}
	if res.MatchedCount == 0 {
		return mapErr(mongo.ErrNoDocuments, "Issue", "update")
	}
	return nil
}

// Delete removes the issue and returns the removed document.
func (r *IssueRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&issue)
	if err != nil {
		return nil, mapErr(err, "Issue", "delete")
	}
	return &issue, nil
}

func (r *IssueRepository) CountByStatus(ctx context.Context) (map[models.Status]int64, error) {
	rows, err := r.groupCount(ctx, bson.M{}, "$status")
	if err != nil {
		return nil, err
	}
	out := make(map[models.Status]int64, len(models.Statuses))
	for _, s := range models.Statuses {
		out[s] = 0
	}
	for _, row := range rows {
		out[models.Status(row.Key)] = row.Count
	}
	return out, nil
}

func (r *IssueRepository) CountByCategory(ctx context.Context, since time.Time) (map[models.Category]int64, error) {
	match := bson.M{}
	if !since.IsZero() {
		match["createdAt"] = bson.M{"$gte": since}
	}
	rows, err := r.groupCount(ctx, match, "$category")
	if err != nil {
		return nil, err
	}
	out := make(map[models.Category]int64, len(models.Categories))
	for _, c := range models.Categories {
		out[c] = 0
	}
	for _, row := range rows {
		out[models.Category(row.Key)] = row.Count
	}
	return out, nil
}

// CountByDay buckets issues created since the given time by UTC day.
func (r *IssueRepository) CountByDay(ctx context.Context, since time.Time) ([]models.DayCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$createdAt"}},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "aggregate issues by day")
	}
	defer cursor.Close(ctx)

	days := []models.DayCount{}
	if err := cursor.All(ctx, &days); err != nil {
		return nil, errors.Wrap(err, "decode daily counts")
	}
	return days, nil
}

type keyCount struct {
	Key   string `bson:"_id"`
	Count int64  `bson:"count"`
}

func (r *IssueRepository) groupCount(ctx context.Context, match bson.M, field string) ([]keyCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": field, "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrapf(err, "aggregate issues by %s", field)
	}
	defer cursor.Close(ctx)

	var rows []keyCount
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, errors.Wrap(err, "decode issue counts")
	}
	return rows, nil
}

func (r *IssueRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "location.lat", Value: 1}, {Key: "location.lng", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "createdBy", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return errors.Wrap(err, "create issue indexes")
}
