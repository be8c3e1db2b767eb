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

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout catalog repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Create inserts a new workout definition.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.Title == "" {
		return primitive.NilObjectID, errors.New("workout requires a title")
	}
	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// GetByTitleForOwner retrieves the personal workout a trainer owns
// under the given title. Used for the shadowing check: a personal
// definition wins over a global one of the same title.
func (r *mongoWorkoutRepository) GetByTitleForOwner(ctx context.Context, title string, ownerID primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	filter := bson.M{"title": title, "ownerId": ownerID}
	err := r.collection.FindOne(ctx, filter).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// ListGlobal retrieves the shared catalog (workouts with no owner).
func (r *mongoWorkoutRepository) ListGlobal(ctx context.Context) ([]domain.Workout, error) {
	return r.list(ctx, bson.M{"ownerId": nil})
}

// ListByOwner retrieves a trainer's personal workout definitions.
func (r *mongoWorkoutRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Workout, error) {
	return r.list(ctx, bson.M{"ownerId": ownerID})
}

func (r *mongoWorkoutRepository) list(ctx context.Context, filter bson.M) ([]domain.Workout, error) {
	var workouts []domain.Workout
	findOptions := options.Find().SetSort(bson.D{{Key: "title", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return workouts, nil
}

// Update rewrites the mutable fields of a workout definition.
func (r *mongoWorkoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	if workout.ID == primitive.NilObjectID {
		return errors.New("workout ID is required for update")
	}

	filter := bson.M{"_id": workout.ID}
	updateDoc := bson.M{
		"$set": bson.M{
			"title":      workout.Title,
			"duration":   workout.Duration,
			"difficulty": workout.Difficulty,
			"exercises":  workout.Exercises,
			"updatedAt":  time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a personal workout. The filter ensures the workout
// exists AND belongs to the given trainer; global definitions cannot
// be deleted through this path.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, id, ownerID primitive.ObjectID) error {
	filter := bson.M{
		"_id":     id,
		"ownerId": ownerID,
	}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CountGlobal returns the number of shared catalog workouts. The seed
// step uses it to decide whether seeding is needed.
func (r *mongoWorkoutRepository) CountGlobal(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"ownerId": nil})
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Shadow lookup: personal definition by (owner, title).
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "title", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Non-fatal, see EnsureUserIndexes.
	}
}
