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

const uploadCollectionName = "video_uploads"

// mongoVideoUploadRepository implements repository.VideoUploadRepository
type mongoVideoUploadRepository struct {
	collection *mongo.Collection
}

// NewMongoVideoUploadRepository creates a new demo video metadata repository.
func NewMongoVideoUploadRepository(db *mongo.Database) repository.VideoUploadRepository {
	return &mongoVideoUploadRepository{
		collection: db.Collection(uploadCollectionName),
	}
}

// Create inserts new upload metadata after the file landed in S3.
func (r *mongoVideoUploadRepository) Create(ctx context.Context, upload *domain.VideoUpload) (primitive.ObjectID, error) {
	if upload.TrainerID == primitive.NilObjectID || upload.S3ObjectKey == "" {
		return primitive.NilObjectID, errors.New("upload requires trainerId and s3ObjectKey")
	}
	upload.ID = primitive.NewObjectID()
	upload.UploadedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, upload)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted upload ID")
	}
	return insertedID, nil
}

// GetByID retrieves upload metadata by its ID.
func (r *mongoVideoUploadRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.VideoUpload, error) {
	var upload domain.VideoUpload
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&upload)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &upload, nil
}

// GetByWorkoutAndExercise retrieves the latest demo video for one
// exercise inside a workout.
func (r *mongoVideoUploadRepository) GetByWorkoutAndExercise(ctx context.Context, workoutID primitive.ObjectID, exerciseName string) (*domain.VideoUpload, error) {
	var upload domain.VideoUpload
	filter := bson.M{"workoutId": workoutID, "exerciseName": exerciseName}
	findOptions := options.FindOne().SetSort(bson.D{{Key: "uploadedAt", Value: -1}})

	err := r.collection.FindOne(ctx, filter, findOptions).Decode(&upload)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &upload, nil
}

// EnsureUploadIndexes creates necessary indexes. Call during startup.
func EnsureUploadIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workoutId", Value: 1}, {Key: "exerciseName", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Non-fatal, see EnsureUserIndexes.
	}
}
