package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RestSentinel marks a weekday with no workout in a split schedule.
const RestSentinel = "rest"

// ErrBadScheduleShape is returned when a split schedule cannot be
// normalized into the weekday -> workout mapping.
var ErrBadScheduleShape = errors.New("split schedule has an unrecognized shape")

// WeekSchedule is the normalized form of a split's weekly schedule:
// lowercase weekday name -> workout id, nil meaning a rest day.
//
// Historical data stores the schedule either as this mapping directly or
// as a list of {day, workout} records, with the workout reference being
// an id, a hex string, the "rest" sentinel or a nested workout object.
// All shapes are normalized here, at the decode boundary; nothing
// downstream ever branches on shape.
type WeekSchedule map[string]*primitive.ObjectID

// WeeklySplit is a recurring weekly workout template authored by a
// trainer (OwnerID set) or shared globally (OwnerID nil). Once assigned
// to a client the resolved workout ids are copied into dated schedule
// entries, so later edits to the split never rewrite an assignment.
type WeeklySplit struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OwnerID     *primitive.ObjectID `bson:"ownerId,omitempty" json:"ownerId,omitempty"`
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	DaysPerWeek int                 `bson:"daysPerWeek" json:"daysPerWeek"`
	Schedule    WeekSchedule        `bson:"schedule" json:"schedule"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Weekday names in storage order. Lowercase English names are the
// canonical keys of a WeekSchedule.
var WeekdayNames = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// WeekdayName returns the canonical schedule key for a calendar day.
func WeekdayName(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

// WorkoutFor returns the workout id mapped to the given calendar day,
// or nil for rest days and unknown weekday keys.
func (ws WeekSchedule) WorkoutFor(day time.Time) *primitive.ObjectID {
	return ws[WeekdayName(day)]
}

// WorkoutDays counts the non-rest days of the week.
func (ws WeekSchedule) WorkoutDays() int {
	days := 0
	for _, id := range ws {
		if id != nil && *id != primitive.NilObjectID {
			days++
		}
	}
	return days
}

// scheduleDayRecord is the legacy list-of-records schedule shape.
type scheduleDayRecord struct {
	Day     string          `bson:"day" json:"day"`
	Workout bson.RawValue   `bson:"workout,omitempty" json:"-"`
	RawJSON json.RawMessage `bson:"-" json:"workout,omitempty"`
}

// UnmarshalBSONValue accepts both the document (map) and the array
// (list of records) schedule shapes.
func (ws *WeekSchedule) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeNull:
		*ws = WeekSchedule{}
		return nil
	case bson.TypeEmbeddedDocument:
		var raw map[string]bson.RawValue
		if err := rv.Unmarshal(&raw); err != nil {
			return err
		}
		out := WeekSchedule{}
		for day, val := range raw {
			id, err := workoutRefFromBSON(val)
			if err != nil {
				return fmt.Errorf("schedule day %q: %w", day, err)
			}
			out[strings.ToLower(day)] = id
		}
		*ws = out
		return nil
	case bson.TypeArray:
		var records []scheduleDayRecord
		if err := rv.Unmarshal(&records); err != nil {
			return err
		}
		out := WeekSchedule{}
		for _, rec := range records {
			id, err := workoutRefFromBSON(rec.Workout)
			if err != nil {
				return fmt.Errorf("schedule day %q: %w", rec.Day, err)
			}
			out[strings.ToLower(rec.Day)] = id
		}
		*ws = out
		return nil
	default:
		return ErrBadScheduleShape
	}
}

// MarshalBSONValue always emits the normalized map shape.
func (ws WeekSchedule) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(map[string]*primitive.ObjectID(ws))
}

// UnmarshalJSON mirrors the BSON normalization for API payloads.
func (ws *WeekSchedule) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*ws = WeekSchedule{}
		return nil
	}
	if strings.HasPrefix(trimmed, "{") {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		out := WeekSchedule{}
		for day, val := range raw {
			id, err := workoutRefFromJSON(val)
			if err != nil {
				return fmt.Errorf("schedule day %q: %w", day, err)
			}
			out[strings.ToLower(day)] = id
		}
		*ws = out
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var records []scheduleDayRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return err
		}
		out := WeekSchedule{}
		for _, rec := range records {
			id, err := workoutRefFromJSON(rec.RawJSON)
			if err != nil {
				return fmt.Errorf("schedule day %q: %w", rec.Day, err)
			}
			out[strings.ToLower(rec.Day)] = id
		}
		*ws = out
		return nil
	}
	return ErrBadScheduleShape
}

// workoutRefFromBSON unwraps one stored workout reference into an id.
func workoutRefFromBSON(rv bson.RawValue) (*primitive.ObjectID, error) {
	switch rv.Type {
	case bsontype.Type(0), bson.TypeNull, bson.TypeUndefined:
		return nil, nil
	case bson.TypeObjectID:
		id := rv.ObjectID()
		return &id, nil
	case bson.TypeString:
		return workoutRefFromString(rv.StringValue())
	case bson.TypeEmbeddedDocument:
		// Nested workout object: unwrap to its id.
		var nested struct {
			ID primitive.ObjectID `bson:"_id,omitempty"`
		}
		if err := rv.Unmarshal(&nested); err != nil {
			return nil, err
		}
		if nested.ID == primitive.NilObjectID {
			return nil, ErrBadScheduleShape
		}
		return &nested.ID, nil
	default:
		return nil, ErrBadScheduleShape
	}
}

// workoutRefFromJSON unwraps one submitted workout reference into an id.
func workoutRefFromJSON(raw json.RawMessage) (*primitive.ObjectID, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return workoutRefFromString(s)
	}
	if strings.HasPrefix(trimmed, "{") {
		var nested struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &nested); err != nil {
			return nil, err
		}
		return workoutRefFromString(nested.ID)
	}
	return nil, ErrBadScheduleShape
}

func workoutRefFromString(s string) (*primitive.ObjectID, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, RestSentinel) {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return nil, fmt.Errorf("workout reference %q: %w", s, ErrBadScheduleShape)
	}
	return &id, nil
}
