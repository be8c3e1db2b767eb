package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OwnerKind tags which schedule partition an entry belongs to. Client
// and trainer calendars share one entry type and one collection; the
// tag plus OwnerID is the partition key.
type OwnerKind string

const (
	OwnerClient  OwnerKind = "client"
	OwnerTrainer OwnerKind = "trainer"
)

// EntryType classifies a schedule entry.
type EntryType string

const (
	EntryWorkout         EntryType = "workout"
	EntryRest            EntryType = "rest"
	EntryAppointment     EntryType = "appointment"
	EntryFacilityBooking EntryType = "facility_booking"
	EntryEvent           EntryType = "event"
)

// ScheduleEntry is one dated calendar item for a client or trainer.
//
// Invariant: at most one entry with a non-nil WorkoutID exists per
// (owner kind, owner, date). Assigning a workout to a date replaces any
// existing workout entry for that date; it never appends a second one.
// Non-workout entries may coexist on the same date, but timed trainer
// events must not overlap each other.
type ScheduleEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerKind OwnerKind          `bson:"ownerKind" json:"ownerKind"`
	OwnerID   primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Date      time.Time          `bson:"date" json:"date"` // UTC midnight of the calendar day
	Title     string             `bson:"title" json:"title"`
	Type      EntryType          `bson:"type" json:"type"`
	Completed bool               `bson:"completed" json:"completed"`

	WorkoutID  *primitive.ObjectID `bson:"workoutId,omitempty" json:"workoutId,omitempty"`
	Difficulty string              `bson:"difficulty,omitempty" json:"difficulty,omitempty"`

	// Details holds the frozen exercise/performance snapshot once the
	// entry is completed. When present it wins over live catalog data.
	Details *WorkoutSnapshot `bson:"details,omitempty" json:"details,omitempty"`

	// Timed trainer events only: minutes since midnight. Date-only
	// client entries leave both at zero.
	StartMinute int `bson:"startMinute,omitempty" json:"startMinute,omitempty"`
	EndMinute   int `bson:"endMinute,omitempty" json:"endMinute,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsWorkout reports whether the entry carries a workout reference.
func (e *ScheduleEntry) IsWorkout() bool {
	return e.WorkoutID != nil && *e.WorkoutID != primitive.NilObjectID
}

// IsTimed reports whether the entry occupies a time range within its day.
func (e *ScheduleEntry) IsTimed() bool {
	return e.EndMinute > e.StartMinute
}

// Overlaps reports whether two timed entries on the same date collide.
func (e *ScheduleEntry) Overlaps(other *ScheduleEntry) bool {
	if !e.IsTimed() || !other.IsTimed() {
		return false
	}
	if !DayOf(e.Date).Equal(DayOf(other.Date)) {
		return false
	}
	return e.StartMinute < other.EndMinute && other.StartMinute < e.EndMinute
}

// DayOf truncates a timestamp to UTC midnight of its calendar day.
// All schedule entry dates are stored in this form.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
