package mongo

import (
	"context"
	"errors"
	"time"

	"gymflow/gym-app/internal/domain"
	"gymflow/gym-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const splitCollectionName = "weekly_splits"

// mongoSplitRepository implements repository.SplitRepository
type mongoSplitRepository struct {
	collection *mongo.Collection
}

// NewMongoSplitRepository creates a new WeeklySplit repository.
func NewMongoSplitRepository(db *mongo.Database) repository.SplitRepository {
	return &mongoSplitRepository{
		collection: db.Collection(splitCollectionName),
	}
}

// Create inserts a new split template. The schedule is persisted in the
// normalized map shape regardless of the shape it was submitted in.
func (r *mongoSplitRepository) Create(ctx context.Context, split *domain.WeeklySplit) (primitive.ObjectID, error) {
	if split.Name == "" {
		return primitive.NilObjectID, errors.New("split requires a name")
	}
	split.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	split.CreatedAt = now
	split.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, split)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted split ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single split by its ID.
func (r *mongoSplitRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WeeklySplit, error) {
	var split domain.WeeklySplit
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&split)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &split, nil
}

// ListGlobal retrieves the shared split catalog.
func (r *mongoSplitRepository) ListGlobal(ctx context.Context) ([]domain.WeeklySplit, error) {
	return r.list(ctx, bson.M{"ownerId": nil})
}

// ListByOwner retrieves a trainer's personal splits.
func (r *mongoSplitRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.WeeklySplit, error) {
	return r.list(ctx, bson.M{"ownerId": ownerID})
}

func (r *mongoSplitRepository) list(ctx context.Context, filter bson.M) ([]domain.WeeklySplit, error) {
	var splits []domain.WeeklySplit
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &splits); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return splits, nil
}

// Delete removes a personal split owned by the given trainer.
func (r *mongoSplitRepository) Delete(ctx context.Context, id, ownerID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "ownerId": ownerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CountGlobal returns the number of shared splits, for the seed step.
func (r *mongoSplitRepository) CountGlobal(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"ownerId": nil})
}

// EnsureSplitIndexes creates necessary indexes. Call during startup.
func EnsureSplitIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Non-fatal, see EnsureUserIndexes.
	}
}
