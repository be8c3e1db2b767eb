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

const scheduleCollectionName = "schedule_entries"

// mongoScheduleRepository implements repository.ScheduleRepository.
// Client and trainer calendars share this one collection, partitioned
// by (ownerKind, ownerId).
type mongoScheduleRepository struct {
	collection *mongo.Collection
}

// NewMongoScheduleRepository creates a new schedule entry repository.
func NewMongoScheduleRepository(db *mongo.Database) repository.ScheduleRepository {
	return &mongoScheduleRepository{
		collection: db.Collection(scheduleCollectionName),
	}
}

// Insert stores one dated entry. The date is normalized to UTC midnight
// before writing so range queries stay exact.
func (r *mongoScheduleRepository) Insert(ctx context.Context, entry *domain.ScheduleEntry) (primitive.ObjectID, error) {
	if entry.OwnerID == primitive.NilObjectID || entry.OwnerKind == "" {
		return primitive.NilObjectID, errors.New("schedule entry requires ownerKind and ownerId")
	}
	entry.ID = primitive.NewObjectID()
	entry.Date = domain.DayOf(entry.Date)
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted entry ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single entry by its ID.
func (r *mongoScheduleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ScheduleEntry, error) {
	var entry domain.ScheduleEntry
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// Update rewrites the mutable fields of an entry (completion state and
// the details snapshot; identity fields never change).
func (r *mongoScheduleRepository) Update(ctx context.Context, entry *domain.ScheduleEntry) error {
	if entry.ID == primitive.NilObjectID {
		return errors.New("entry ID is required for update")
	}

	updateDoc := bson.M{
		"$set": bson.M{
			"title":     entry.Title,
			"completed": entry.Completed,
			"details":   entry.Details,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": entry.ID}, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes one entry, scoped to its owner partition.
func (r *mongoScheduleRepository) Delete(ctx context.Context, id primitive.ObjectID, kind domain.OwnerKind, ownerID primitive.ObjectID) error {
	filter := bson.M{
		"_id":       id,
		"ownerKind": kind,
		"ownerId":   ownerID,
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

// ListByOwnerAndDate retrieves every entry for one calendar day.
func (r *mongoScheduleRepository) ListByOwnerAndDate(ctx context.Context, kind domain.OwnerKind, ownerID primitive.ObjectID, date time.Time) ([]domain.ScheduleEntry, error) {
	filter := bson.M{
		"ownerKind": kind,
		"ownerId":   ownerID,
		"date":      domain.DayOf(date),
	}
	return r.list(ctx, filter)
}

// ListByOwnerAndDateRange retrieves entries with from <= date <= to,
// ordered by date then start time.
func (r *mongoScheduleRepository) ListByOwnerAndDateRange(ctx context.Context, kind domain.OwnerKind, ownerID primitive.ObjectID, from, to time.Time) ([]domain.ScheduleEntry, error) {
	filter := bson.M{
		"ownerKind": kind,
		"ownerId":   ownerID,
		"date": bson.M{
			"$gte": domain.DayOf(from),
			"$lte": domain.DayOf(to),
		},
	}
	return r.list(ctx, filter)
}

func (r *mongoScheduleRepository) list(ctx context.Context, filter bson.M) ([]domain.ScheduleEntry, error) {
	var entries []domain.ScheduleEntry
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "startMinute", Value: 1}})

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

// DeleteWorkoutEntries removes every workout-carrying entry for the
// owner and date. Paired with Insert it implements the replace-not-
// append rule: at most one workout entry per (owner, date).
func (r *mongoScheduleRepository) DeleteWorkoutEntries(ctx context.Context, kind domain.OwnerKind, ownerID primitive.ObjectID, date time.Time) (int64, error) {
	filter := bson.M{
		"ownerKind": kind,
		"ownerId":   ownerID,
		"date":      domain.DayOf(date),
		"workoutId": bson.M{"$ne": nil},
	}
	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// ListIncompleteWorkoutsForDate returns all owners' incomplete workout
// entries for one day. The reminder job is the only caller; it runs a
// handful of times per day, so the unpartitioned scan is acceptable.
func (r *mongoScheduleRepository) ListIncompleteWorkoutsForDate(ctx context.Context, date time.Time) ([]domain.ScheduleEntry, error) {
	filter := bson.M{
		"date":      domain.DayOf(date),
		"workoutId": bson.M{"$ne": nil},
		"completed": false,
	}
	return r.list(ctx, filter)
}

// EnsureScheduleIndexes creates necessary indexes. Call during startup.
func EnsureScheduleIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Partition + day lookup, the hot path for every read.
			Keys:    bson.D{{Key: "ownerKind", Value: 1}, {Key: "ownerId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Non-fatal, see EnsureUserIndexes.
	}
}
