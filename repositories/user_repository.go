package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civictrack-be/apperrors"
	"civictrack-be/models"
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{collection: db.Collection(UsersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.Email = strings.ToLower(user.Email)

	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.Conflict("User already exists")
	}
	return errors.Wrap(err, "insert user")
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, mapErr(err, "User", "find")
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&user)
	if err != nil {
		return nil, mapErr(err, "User", "find")
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context, search string, page models.Page) ([]models.User, int64, error) {
	filter := bson.M{}
	if search != "" {
		filter = searchClause(search, "name", "email")
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count users")
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit)).
		SetProjection(bson.M{"password": 0})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "find users")
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, errors.Wrap(err, "decode users")
	}
	return users, total, nil
}

func (r *UserRepository) SetBanned(ctx context.Context, id primitive.ObjectID, banned bool, at time.Time) (*models.User, error) {
	update := bson.M{"$set": bson.M{"banned": banned, "bannedAt": at, "updatedAt": at}}
	if !banned {
		update = bson.M{
			"$set":   bson.M{"banned": false, "updatedAt": at},
			"$unset": bson.M{"bannedAt": ""},
		}
	}

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"password": 0}),
	).Decode(&user)
	if err != nil {
		return nil, mapErr(err, "User", "update")
	}
	return &user, nil
}

func (r *UserRepository) BannedIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"banned": true},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, errors.Wrap(err, "find banned users")
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, errors.Wrap(err, "decode banned users")
	}

	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// FindNames resolves display names for the given ids.
func (r *UserRepository) FindNames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	names := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"name": 1}))
	if err != nil {
		return nil, errors.Wrap(err, "find user names")
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID   primitive.ObjectID `bson:"_id"`
		Name string             `bson:"name"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, errors.Wrap(err, "decode user names")
	}
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}

func (r *UserRepository) Count(ctx context.Context, bannedOnly bool) (int64, error) {
	filter := bson.M{}
	if bannedOnly {
		filter["banned"] = true
	}
	n, err := r.collection.CountDocuments(ctx, filter)
	return n, errors.Wrap(err, "count users")
}

func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "banned", Value: 1}}},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return errors.Wrap(err, "create user indexes")
}
