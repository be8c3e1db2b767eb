package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseSpec is one exercise inside a workout definition: how many
// sets/reps to perform and how long to rest between sets. VideoKey is
// an optional S3 object key pointing at a demo video.
type ExerciseSpec struct {
	Name        string `bson:"name" json:"name"`
	Sets        int    `bson:"sets" json:"sets"`
	Reps        int    `bson:"reps" json:"reps"`
	RestSeconds int    `bson:"restSeconds,omitempty" json:"restSeconds,omitempty"`
	VideoKey    string `bson:"videoKey,omitempty" json:"videoKey,omitempty"`
}

// Workout is a reusable workout definition in the catalog.
//
// OwnerID == nil means the workout is global (shared by every trainer).
// A trainer-owned workout with the same title shadows the global one
// ("fork on edit"): editing a global workout as a trainer creates a
// personal copy instead of mutating the shared definition.
type Workout struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OwnerID    *primitive.ObjectID `bson:"ownerId,omitempty" json:"ownerId,omitempty"`
	Title      string              `bson:"title" json:"title"`
	Duration   string              `bson:"duration,omitempty" json:"duration,omitempty"` // e.g. "45 min"
	Difficulty string              `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	Exercises  []ExerciseSpec      `bson:"exercises" json:"exercises"` // ordered
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// IsGlobal reports whether the workout belongs to the shared catalog.
func (w *Workout) IsGlobal() bool {
	return w.OwnerID == nil || *w.OwnerID == primitive.NilObjectID
}
