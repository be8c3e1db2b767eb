package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VideoUpload stores metadata about an exercise demo video uploaded by
// a trainer. The actual file resides in S3; workouts reference it via
// the exercise's VideoKey.
type VideoUpload struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID    primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	WorkoutID    primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	ExerciseName string             `bson:"exerciseName" json:"exerciseName"`
	S3ObjectKey  string             `bson:"s3ObjectKey" json:"-"` // internal use
	FileName     string             `bson:"fileName" json:"fileName"`
	ContentType  string             `bson:"contentType" json:"contentType"` // e.g. "video/mp4"
	Size         int64              `bson:"size" json:"size"`
	UploadedAt   time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}
