package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFlexNumberCoercion(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{`12`, 12},
		{`12.5`, 12.5},
		{`"80"`, 80},
		{`"  7.25 "`, 7.25},
		{`null`, 0},
		{`"abc"`, 0},
		{`""`, 0},
	}
	for _, tc := range cases {
		var n FlexNumber
		require.NoError(t, json.Unmarshal([]byte(tc.in), &n), "input %s", tc.in)
		assert.Equal(t, tc.want, float64(n), "input %s", tc.in)
	}
}

func TestWorkoutSnapshotJSON_LegacyArray(t *testing.T) {
	payload := `[{"name": "Squat", "sets": 3, "reps": 8, "completed": true,
		"performance": [{"reps": 8, "weight": "80", "completed": true}]}]`

	var s WorkoutSnapshot
	require.NoError(t, json.Unmarshal([]byte(payload), &s))

	require.Len(t, s.Exercises, 1)
	assert.Nil(t, s.Coop)
	assert.Equal(t, "Squat", s.Exercises[0].Name)
	require.Len(t, s.Exercises[0].Performance, 1)
	assert.Equal(t, FlexNumber(80), s.Exercises[0].Performance[0].Weight)
}

func TestWorkoutSnapshotJSON_CoopObject(t *testing.T) {
	partner := primitive.NewObjectID()
	payload := `{
		"exercises": [{"name": "Bench Press", "completed": true}],
		"coop": {
			"partner": "` + partner.Hex() + `",
			"partner_exercises": [{"name": "Deadlift", "completed": true}]
		}
	}`

	var s WorkoutSnapshot
	require.NoError(t, json.Unmarshal([]byte(payload), &s))

	require.Len(t, s.Exercises, 1)
	require.NotNil(t, s.Coop)
	assert.Equal(t, partner, s.Coop.Partner)
	require.Len(t, s.Coop.PartnerExercises, 1)
	assert.Equal(t, "Deadlift", s.Coop.PartnerExercises[0].Name)
}

func TestWorkoutSnapshotJSON_MarshalShapes(t *testing.T) {
	// Without coop data the legacy bare array is emitted.
	plain := WorkoutSnapshot{Exercises: []ExerciseResult{{Name: "Row"}}}
	raw, err := json.Marshal(plain)
	require.NoError(t, err)
	assert.Equal(t, byte('['), raw[0])

	// With coop data the object shape is emitted.
	coop := WorkoutSnapshot{
		Exercises: []ExerciseResult{{Name: "Row"}},
		Coop:      &CoopDetails{Partner: primitive.NewObjectID()},
	}
	raw, err = json.Marshal(coop)
	require.NoError(t, err)
	assert.Equal(t, byte('{'), raw[0])

	// Both shapes roundtrip.
	var back WorkoutSnapshot
	require.NoError(t, json.Unmarshal(raw, &back))
	require.NotNil(t, back.Coop)
	assert.Equal(t, coop.Coop.Partner, back.Coop.Partner)
}

func TestWorkoutSnapshotBSONRoundTrip(t *testing.T) {
	type holder struct {
		Details *WorkoutSnapshot `bson:"details,omitempty"`
	}

	partner := primitive.NewObjectID()
	in := holder{Details: &WorkoutSnapshot{
		Exercises: []ExerciseResult{{Name: "Squat", Completed: true}},
		Coop:      &CoopDetails{Partner: partner},
	}}
	raw, err := bson.Marshal(in)
	require.NoError(t, err)

	var out holder
	require.NoError(t, bson.Unmarshal(raw, &out))
	require.NotNil(t, out.Details)
	require.NotNil(t, out.Details.Coop)
	assert.Equal(t, partner, out.Details.Coop.Partner)

	// Legacy documents store the bare array; it must still decode.
	legacy, err := bson.Marshal(bson.M{"details": bson.A{
		bson.M{"name": "Squat", "completed": true},
	}})
	require.NoError(t, err)

	var legacyOut holder
	require.NoError(t, bson.Unmarshal(legacy, &legacyOut))
	require.NotNil(t, legacyOut.Details)
	require.Len(t, legacyOut.Details.Exercises, 1)
	assert.Nil(t, legacyOut.Details.Coop)
	assert.Equal(t, "Squat", legacyOut.Details.Exercises[0].Name)
}

func TestScheduleEntryOverlaps(t *testing.T) {
	day := time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)
	a := &ScheduleEntry{Date: day, StartMinute: 600, EndMinute: 660}
	b := &ScheduleEntry{Date: day, StartMinute: 630, EndMinute: 690}
	c := &ScheduleEntry{Date: day, StartMinute: 660, EndMinute: 720}
	dateOnly := &ScheduleEntry{Date: day}

	assert.True(t, a.Overlaps(b))
	assert.True(t, b.Overlaps(a))
	assert.False(t, a.Overlaps(c), "touching ranges do not overlap")
	assert.False(t, a.Overlaps(dateOnly), "date-only entries never collide")

	otherDay := &ScheduleEntry{Date: day.AddDate(0, 0, 1), StartMinute: 600, EndMinute: 660}
	assert.False(t, a.Overlaps(otherDay))
}
