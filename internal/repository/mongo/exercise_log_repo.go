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

const exerciseLogCollectionName = "exercise_logs"

// mongoExerciseLogRepository implements repository.ExerciseLogRepository
type mongoExerciseLogRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseLogRepository creates a new performance log repository.
func NewMongoExerciseLogRepository(db *mongo.Database) repository.ExerciseLogRepository {
	return &mongoExerciseLogRepository{
		collection: db.Collection(exerciseLogCollectionName),
	}
}

// Upsert writes one set row keyed by the natural key
// (owner, date, workout, exercise name, set number). Re-submitting the
// same set overwrites the previous values.
func (r *mongoExerciseLogRepository) Upsert(ctx context.Context, entry *domain.ExerciseLogEntry) error {
	if entry.OwnerID == primitive.NilObjectID || entry.WorkoutID == primitive.NilObjectID {
		return errors.New("log entry requires ownerId and workoutId")
	}
	if entry.ExerciseName == "" || entry.SetNumber < 1 {
		return errors.New("log entry requires exerciseName and a 1-based setNumber")
	}

	now := time.Now().UTC()
	date := domain.DayOf(entry.Date)

	filter := bson.M{
		"ownerId":      entry.OwnerID,
		"date":         date,
		"workoutId":    entry.WorkoutID,
		"exerciseName": entry.ExerciseName,
		"setNumber":    entry.SetNumber,
	}
	update := bson.M{
		"$set": bson.M{
			"reps":            entry.Reps,
			"weight":          entry.Weight,
			"durationSeconds": entry.DurationSeconds,
			"distanceMeters":  entry.DistanceMeters,
			"metric":          entry.Metric,
			"updatedAt":       now,
		},
		"$setOnInsert": bson.M{
			"_id":          primitive.NewObjectID(),
			"ownerId":      entry.OwnerID,
			"date":         date,
			"workoutId":    entry.WorkoutID,
			"exerciseName": entry.ExerciseName,
			"setNumber":    entry.SetNumber,
			"createdAt":    now,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// ListForWorkoutDay retrieves the logged sets of one workout on one
// day, ordered by exercise then set number.
func (r *mongoExerciseLogRepository) ListForWorkoutDay(ctx context.Context, ownerID, workoutID primitive.ObjectID, date time.Time) ([]domain.ExerciseLogEntry, error) {
	filter := bson.M{
		"ownerId":   ownerID,
		"workoutId": workoutID,
		"date":      domain.DayOf(date),
	}
	return r.list(ctx, filter)
}

// ListByOwnerAndDateRange retrieves an owner's sets over a date span.
func (r *mongoExerciseLogRepository) ListByOwnerAndDateRange(ctx context.Context, ownerID primitive.ObjectID, from, to time.Time) ([]domain.ExerciseLogEntry, error) {
	filter := bson.M{
		"ownerId": ownerID,
		"date": bson.M{
			"$gte": domain.DayOf(from),
			"$lte": domain.DayOf(to),
		},
	}
	return r.list(ctx, filter)
}

func (r *mongoExerciseLogRepository) list(ctx context.Context, filter bson.M) ([]domain.ExerciseLogEntry, error) {
	var entries []domain.ExerciseLogEntry
	findOptions := options.Find().SetSort(bson.D{
		{Key: "date", Value: 1},
		{Key: "exerciseName", Value: 1},
		{Key: "setNumber", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// EnsureExerciseLogIndexes creates necessary indexes. Call during startup.
func EnsureExerciseLogIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// The natural key. Unique so Upsert cannot fan out.
			Keys: bson.D{
				{Key: "ownerId", Value: 1},
				{Key: "date", Value: 1},
				{Key: "workoutId", Value: 1},
				{Key: "exerciseName", Value: 1},
				{Key: "setNumber", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Non-fatal, see EnsureUserIndexes.
	}
}
