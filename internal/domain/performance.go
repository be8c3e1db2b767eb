package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MetricType says how a logged set is measured.
type MetricType string

const (
	MetricRepsWeight MetricType = "reps_weight"
	MetricDuration   MetricType = "duration"
	MetricDistance   MetricType = "distance"
)

// FlexNumber is a float64 that tolerates sloppy client input: JSON
// numbers, numeric strings, null and outright garbage all decode, with
// anything unparseable coerced to zero. Performance logging prefers
// "always record something" over strict validation.
type FlexNumber float64

func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = FlexNumber(f)
	return nil
}

// SetPerformance is one performed set inside a submitted workout.
type SetPerformance struct {
	Reps      FlexNumber `bson:"reps" json:"reps"`
	Weight    FlexNumber `bson:"weight" json:"weight"`
	Completed bool       `bson:"completed" json:"completed"`
}

// ExerciseResult is one exercise of a submitted workout: the prescribed
// numbers plus the per-set performance the client reported.
type ExerciseResult struct {
	Name        string           `bson:"name" json:"name"`
	Sets        int              `bson:"sets" json:"sets"`
	Reps        int              `bson:"reps" json:"reps"`
	RestSeconds int              `bson:"restSeconds,omitempty" json:"restSeconds,omitempty"`
	Completed   bool             `bson:"completed" json:"completed"`
	Performance []SetPerformance `bson:"performance,omitempty" json:"performance,omitempty"`
}

// CoopDetails cross-references the partner of a co-op completion.
type CoopDetails struct {
	Partner          primitive.ObjectID `bson:"partner" json:"partner"`
	PartnerExercises []ExerciseResult   `bson:"partnerExercises,omitempty" json:"partner_exercises,omitempty"`
}

// WorkoutSnapshot is the frozen record of a workout at the moment it
// was completed. Once stored on a schedule entry it takes priority over
// the live catalog definition, so template edits never rewrite history.
//
// Two wire shapes exist and both must be accepted on read indefinitely:
// the legacy bare exercise array, and the co-op object
// {exercises: [...], coop: {partner, partner_exercises}}. Writes keep
// emitting the legacy array when there is no co-op data so old readers
// stay compatible.
type WorkoutSnapshot struct {
	Exercises []ExerciseResult `json:"exercises"`
	Coop      *CoopDetails     `json:"coop,omitempty"`
}

// snapshotDoc is the object wire shape of a snapshot.
type snapshotDoc struct {
	Exercises []ExerciseResult `bson:"exercises" json:"exercises"`
	Coop      *CoopDetails     `bson:"coop,omitempty" json:"coop,omitempty"`
}

func (s *WorkoutSnapshot) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*s = WorkoutSnapshot{}
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		// Legacy shape: bare exercise array.
		var exercises []ExerciseResult
		if err := json.Unmarshal(data, &exercises); err != nil {
			return err
		}
		*s = WorkoutSnapshot{Exercises: exercises}
		return nil
	}
	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*s = WorkoutSnapshot{Exercises: doc.Exercises, Coop: doc.Coop}
	return nil
}

func (s WorkoutSnapshot) MarshalJSON() ([]byte, error) {
	if s.Coop == nil {
		return json.Marshal(s.Exercises)
	}
	return json.Marshal(snapshotDoc{Exercises: s.Exercises, Coop: s.Coop})
}

func (s *WorkoutSnapshot) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeNull:
		*s = WorkoutSnapshot{}
		return nil
	case bson.TypeArray:
		var exercises []ExerciseResult
		if err := rv.Unmarshal(&exercises); err != nil {
			return err
		}
		*s = WorkoutSnapshot{Exercises: exercises}
		return nil
	case bson.TypeEmbeddedDocument:
		var doc snapshotDoc
		if err := rv.Unmarshal(&doc); err != nil {
			return err
		}
		*s = WorkoutSnapshot{Exercises: doc.Exercises, Coop: doc.Coop}
		return nil
	default:
		return ErrBadScheduleShape
	}
}

func (s WorkoutSnapshot) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if s.Coop == nil {
		return bson.MarshalValue(s.Exercises)
	}
	return bson.MarshalValue(snapshotDoc{Exercises: s.Exercises, Coop: s.Coop})
}

// ExerciseLogEntry is one completed set, keyed by the natural key
// (owner, date, workout, exercise name, set number). Rows are upserted
// by that key and never batch-deleted.
//
// SetNumber is 1-based and contiguous from 1 per exercise/date/workout.
// Gaps that appear anyway are backfilled with the last known value on
// read for display; storage is left untouched.
type ExerciseLogEntry struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID      primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Date         time.Time          `bson:"date" json:"date"` // UTC midnight
	WorkoutID    primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	ExerciseName string             `bson:"exerciseName" json:"exerciseName"`
	SetNumber    int                `bson:"setNumber" json:"setNumber"`

	Reps            int        `bson:"reps" json:"reps"`
	Weight          float64    `bson:"weight" json:"weight"`
	DurationSeconds float64    `bson:"durationSeconds,omitempty" json:"durationSeconds,omitempty"`
	DistanceMeters  float64    `bson:"distanceMeters,omitempty" json:"distanceMeters,omitempty"`
	Metric          MetricType `bson:"metric" json:"metric"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
