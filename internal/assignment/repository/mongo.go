package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/smallbiznis/quotation/internal/assignment/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "userPackageAssignments"

type mongoStore struct {
	c *mongo.Collection
}

// NewMongo returns an assignment store over the userPackageAssignments collection.
func NewMongo(db *mongo.Database) domain.Repository {
	return &mongoStore{c: db.Collection(collectionName)}
}

// EnsureIndexes creates the lookup index used by ListByUser.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(collectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "assignedDate", Value: -1}},
	})
	return err
}

func (s *mongoStore) Insert(ctx context.Context, a *domain.Assignment) error {
	if a == nil {
		return mongo.ErrNilDocument
	}
	if a.Version == 0 {
		a.Version = 1
	}
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", a.ID, domain.ErrAssignmentExists)
		}
		return err
	}
	return nil
}

func (s *mongoStore) FindByID(ctx context.Context, id string) (*domain.Assignment, error) {
	var a domain.Assignment
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Update replaces the document only while its stored version still matches.
func (s *mongoStore) Update(ctx context.Context, a *domain.Assignment) error {
	if a == nil {
		return mongo.ErrNilDocument
	}

	expected := a.Version
	next := *a
	next.Version = expected + 1

	res, err := s.c.ReplaceOne(ctx, versionFilter(a.ID, expected), next)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrVersionConflict
	}
	a.Version = next.Version
	return nil
}

// versionFilter matches the document at version expected. Documents written
// before versioning have no version field and decode as version 0.
func versionFilter(id string, expected int64) bson.M {
	if expected == 0 {
		return bson.M{
			"_id": id,
			"$or": bson.A{
				bson.M{"version": int64(0)},
				bson.M{"version": bson.M{"$exists": false}},
			},
		}
	}
	return bson.M{"_id": id, "version": expected}
}

func (s *mongoStore) ListByUser(ctx context.Context, userID string) ([]domain.Assignment, error) {
	return s.find(ctx, bson.M{"userId": userID})
}

func (s *mongoStore) ListAll(ctx context.Context) ([]domain.Assignment, error) {
	return s.find(ctx, bson.M{})
}

func (s *mongoStore) find(ctx context.Context, filter bson.M) ([]domain.Assignment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "assignedDate", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []domain.Assignment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
