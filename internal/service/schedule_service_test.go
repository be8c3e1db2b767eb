package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gymflow/gym-app/internal/domain"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// testEnv bundles the fakes and services most schedule tests need.
type testEnv struct {
	users    *fakeUserRepo
	workouts *fakeWorkoutRepo
	splits   *fakeSplitRepo
	schedule *fakeScheduleRepo
	catalog  CatalogService
	svc      *scheduleService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		users:    newFakeUserRepo(),
		workouts: newFakeWorkoutRepo(),
		splits:   newFakeSplitRepo(),
		schedule: newFakeScheduleRepo(),
	}
	env.catalog = NewCatalogService(env.workouts, env.splits, newFakeVideoUploadRepo(), fakeFileStorage{})
	env.svc = NewScheduleService(env.users, env.schedule, env.catalog).(*scheduleService)
	env.svc.now = func() time.Time { return time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC) }
	return env
}

func (env *testEnv) addGlobalWorkout(title string) *domain.Workout {
	w := &domain.Workout{
		Title:      title,
		Difficulty: "intermediate",
		Exercises: []domain.ExerciseSpec{
			{Name: gofakeit.Noun() + " press", Sets: 3, Reps: 10, RestSeconds: 90},
		},
	}
	id, _ := env.workouts.Create(context.Background(), w)
	w.ID = id
	return w
}

func (env *testEnv) addSplit(schedule domain.WeekSchedule) *domain.WeeklySplit {
	s := &domain.WeeklySplit{Name: gofakeit.AppName(), Schedule: schedule}
	id, _ := env.splits.Create(context.Background(), s)
	s.ID = id
	return s
}

func (env *testEnv) addClient() *domain.User {
	return env.users.add(&domain.User{
		Name:  gofakeit.Name(),
		Email: gofakeit.Email(),
		Role:  domain.RoleClient,
	})
}

func TestAssignSplit_Fills28DayWindow(t *testing.T) {
	env := newTestEnv(t)
	trainer := primitive.NewObjectID()
	client := env.addClient()
	push := env.addGlobalWorkout("Push Day")
	pull := env.addGlobalWorkout("Pull Day")

	split := env.addSplit(domain.WeekSchedule{
		"monday":   &push.ID,
		"thursday": &pull.ID,
	})

	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC) // a Monday
	result, err := env.svc.AssignSplit(context.Background(), trainer, client.ID, split.ID, start)
	require.NoError(t, err)

	// 4 full weeks, 2 workout days each.
	assert.Equal(t, 8, result.AssignedDays)
	assert.False(t, result.Warnings)
	assert.Len(t, result.Logs, 8)

	for i := 0; i < 28; i++ {
		day := start.AddDate(0, 0, i)
		entries := env.schedule.workoutEntriesOn(domain.OwnerClient, client.ID, day)
		switch domain.WeekdayName(day) {
		case "monday":
			require.Len(t, entries, 1, "day %s", day)
			assert.Equal(t, "Push Day", entries[0].Title)
		case "thursday":
			require.Len(t, entries, 1, "day %s", day)
			assert.Equal(t, "Pull Day", entries[0].Title)
		default:
			assert.Empty(t, entries, "rest day %s must stay empty", day)
		}
	}
}

func TestAssignSplit_ReplacesNotAppends(t *testing.T) {
	env := newTestEnv(t)
	trainer := primitive.NewObjectID()
	client := env.addClient()
	push := env.addGlobalWorkout("Push Day")
	legs := env.addGlobalWorkout("Leg Day")

	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	first := env.addSplit(domain.WeekSchedule{"monday": &push.ID})
	second := env.addSplit(domain.WeekSchedule{"monday": &legs.ID})

	_, err := env.svc.AssignSplit(context.Background(), trainer, client.ID, first.ID, start)
	require.NoError(t, err)
	_, err = env.svc.AssignSplit(context.Background(), trainer, client.ID, second.ID, start)
	require.NoError(t, err)

	// Re-running never stacks entries: exactly one workout entry per
	// Monday, carrying the latest split's workout.
	for i := 0; i < 28; i += 7 {
		entries := env.schedule.workoutEntriesOn(domain.OwnerClient, client.ID, start.AddDate(0, 0, i))
		require.Len(t, entries, 1)
		assert.Equal(t, "Leg Day", entries[0].Title)
	}
}

func TestAssignSplit_RestDaysLeaveOtherEntriesAlone(t *testing.T) {
	env := newTestEnv(t)
	trainer := primitive.NewObjectID()
	client := env.addClient()
	push := env.addGlobalWorkout("Push Day")
	split := env.addSplit(domain.WeekSchedule{"monday": &push.ID})

	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	appointment := &domain.ScheduleEntry{
		OwnerKind: domain.OwnerClient,
		OwnerID:   client.ID,
		Date:      start.AddDate(0, 0, 1), // Tuesday, a rest day
		Title:     "Physio appointment",
		Type:      domain.EntryAppointment,
	}
	_, err := env.schedule.Insert(context.Background(), appointment)
	require.NoError(t, err)

	_, err = env.svc.AssignSplit(context.Background(), trainer, client.ID, split.ID, start)
	require.NoError(t, err)

	tuesday, _ := env.schedule.ListByOwnerAndDate(context.Background(), domain.OwnerClient, client.ID, start.AddDate(0, 0, 1))
	require.Len(t, tuesday, 1, "rest days are skipped, not cleared")
	assert.Equal(t, "Physio appointment", tuesday[0].Title)
}

func TestAssignSplit_SelfAssignmentUsesTrainerPartition(t *testing.T) {
	env := newTestEnv(t)
	trainer := env.users.add(&domain.User{Role: domain.RoleTrainer, Email: gofakeit.Email()})
	push := env.addGlobalWorkout("Push Day")
	split := env.addSplit(domain.WeekSchedule{"monday": &push.ID})

	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	_, err := env.svc.AssignSplit(context.Background(), trainer.ID, primitive.NilObjectID, split.ID, start)
	require.NoError(t, err)

	assert.Len(t, env.schedule.workoutEntriesOn(domain.OwnerTrainer, trainer.ID, start), 1)
	assert.Empty(t, env.schedule.workoutEntriesOn(domain.OwnerClient, trainer.ID, start))
}

func TestAssignSplit_PartialFailureIsDataNotError(t *testing.T) {
	env := newTestEnv(t)
	trainer := primitive.NewObjectID()
	client := env.addClient()
	push := env.addGlobalWorkout("Push Day")
	split := env.addSplit(domain.WeekSchedule{"monday": &push.ID})

	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	env.schedule.failInsertOn[start.AddDate(0, 0, 7)] = errors.New("write timeout")

	result, err := env.svc.AssignSplit(context.Background(), trainer, client.ID, split.ID, start)
	require.NoError(t, err, "one failed day must not fail the call")

	assert.Equal(t, 3, result.AssignedDays)
	assert.True(t, result.Warnings)

	failed := 0
	for _, l := range result.Logs {
		if l.Status == "failed" {
			failed++
			assert.Contains(t, l.Reason, "write timeout")
		}
	}
	assert.Equal(t, 1, failed)
}

func TestAssignSplit_AllDaysFailedIsHardError(t *testing.T) {
	env := newTestEnv(t)
	trainer := primitive.NewObjectID()
	client := env.addClient()

	// The split references a workout that no longer exists, so every
	// attempted day fails resolution.
	ghost := primitive.NewObjectID()
	split := env.addSplit(domain.WeekSchedule{"monday": &ghost})

	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	_, err := env.svc.AssignSplit(context.Background(), trainer, client.ID, split.ID, start)
	assert.ErrorIs(t, err, ErrNothingAssigned)
}

func TestAssignSplit_AllRestSplitIsNoOpSuccess(t *testing.T) {
	env := newTestEnv(t)
	trainer := primitive.NewObjectID()
	client := env.addClient()
	split := env.addSplit(domain.WeekSchedule{}) // every day rest

	result, err := env.svc.AssignSplit(context.Background(), trainer, client.ID, split.ID, time.Time{})
	require.NoError(t, err, "zero attempted days is fine; only zero of many is an error")
	assert.Equal(t, 0, result.AssignedDays)
	assert.False(t, result.Warnings)
}

func TestAssignSplit_UnknownSplitAbortsBeforeWrites(t *testing.T) {
	env := newTestEnv(t)
	trainer := primitive.NewObjectID()
	client := env.addClient()

	_, err := env.svc.AssignSplit(context.Background(), trainer, client.ID, primitive.NewObjectID(), time.Time{})
	assert.ErrorIs(t, err, ErrSplitNotFound)
	assert.Empty(t, env.schedule.entries)
}

func TestAssignSplit_UnknownTargetUser(t *testing.T) {
	env := newTestEnv(t)
	trainer := primitive.NewObjectID()
	push := env.addGlobalWorkout("Push Day")
	split := env.addSplit(domain.WeekSchedule{"monday": &push.ID})

	_, err := env.svc.AssignSplit(context.Background(), trainer, primitive.NewObjectID(), split.ID, time.Time{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAssignSplit_PersonalShadowWins(t *testing.T) {
	env := newTestEnv(t)
	client := env.addClient()
	global := env.addGlobalWorkout("Push Day")

	trainer := env.users.add(&domain.User{Role: domain.RoleTrainer, Email: gofakeit.Email()})
	personal := &domain.Workout{
		OwnerID:    &trainer.ID,
		Title:      "Push Day",
		Difficulty: "advanced",
		Exercises:  []domain.ExerciseSpec{{Name: "Weighted Dip", Sets: 5, Reps: 5}},
	}
	_, err := env.workouts.Create(context.Background(), personal)
	require.NoError(t, err)

	split := env.addSplit(domain.WeekSchedule{"monday": &global.ID})
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	_, err = env.svc.AssignSplit(context.Background(), trainer.ID, client.ID, split.ID, start)
	require.NoError(t, err)

	entries := env.schedule.workoutEntriesOn(domain.OwnerClient, client.ID, start)
	require.Len(t, entries, 1)
	// The trainer's personal definition shadows the global one.
	assert.Equal(t, personal.ID, *entries[0].WorkoutID)
	assert.Equal(t, "advanced", entries[0].Difficulty)
}

func TestGetDaySchedule_SnapshotWinsOverCatalog(t *testing.T) {
	env := newTestEnv(t)
	client := env.addClient()
	workout := env.addGlobalWorkout("Push Day")

	day := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	entry := &domain.ScheduleEntry{
		OwnerKind: domain.OwnerClient,
		OwnerID:   client.ID,
		Date:      day,
		Title:     workout.Title,
		Type:      domain.EntryWorkout,
		WorkoutID: &workout.ID,
		Completed: true,
		Details: &domain.WorkoutSnapshot{
			Exercises: []domain.ExerciseResult{{Name: "As done on the day", Completed: true}},
		},
	}
	_, err := env.schedule.Insert(context.Background(), entry)
	require.NoError(t, err)

	// Mutate the catalog definition after completion.
	workout.Exercises = []domain.ExerciseSpec{{Name: "Rewritten template", Sets: 9}}
	require.NoError(t, env.workouts.Update(context.Background(), workout))

	view, err := env.svc.GetDaySchedule(context.Background(), domain.OwnerClient, client.ID, day)
	require.NoError(t, err)
	require.Len(t, view.Events, 1)
	require.Len(t, view.Events[0].Exercises, 1)
	assert.Equal(t, "As done on the day", view.Events[0].Exercises[0].Name)
}

func TestGetDaySchedule_DanglingWorkoutRendersBare(t *testing.T) {
	env := newTestEnv(t)
	client := env.addClient()

	day := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	ghost := primitive.NewObjectID()
	entry := &domain.ScheduleEntry{
		OwnerKind: domain.OwnerClient,
		OwnerID:   client.ID,
		Date:      day,
		Title:     "Deleted workout",
		Type:      domain.EntryWorkout,
		WorkoutID: &ghost,
	}
	_, err := env.schedule.Insert(context.Background(), entry)
	require.NoError(t, err)

	view, err := env.svc.GetDaySchedule(context.Background(), domain.OwnerClient, client.ID, day)
	require.NoError(t, err)
	require.Len(t, view.Events, 1)
	assert.Empty(t, view.Events[0].Exercises)
}

func TestAddTimedEvent_ConflictIdentifiesBlocker(t *testing.T) {
	env := newTestEnv(t)
	trainer := primitive.NewObjectID()
	day := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)

	existing, err := env.svc.AddTimedEvent(context.Background(), trainer, day, "PT session", domain.EntryAppointment, 600, 660)
	require.NoError(t, err)

	_, err = env.svc.AddTimedEvent(context.Background(), trainer, day, "Sauna booking", domain.EntryFacilityBooking, 630, 700)
	var conflict *EventConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, existing.ID, conflict.ConflictingID)
	assert.Equal(t, "PT session", conflict.ConflictingTitle)

	// Nothing was written for the rejected event.
	entries, _ := env.schedule.ListByOwnerAndDate(context.Background(), domain.OwnerTrainer, trainer, day)
	assert.Len(t, entries, 1)

	// Touching ranges are allowed.
	_, err = env.svc.AddTimedEvent(context.Background(), trainer, day, "Sauna booking", domain.EntryFacilityBooking, 660, 700)
	assert.NoError(t, err)
}

func TestAddTimedEvent_InvalidRange(t *testing.T) {
	env := newTestEnv(t)
	trainer := primitive.NewObjectID()
	day := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)

	_, err := env.svc.AddTimedEvent(context.Background(), trainer, day, "Backwards", domain.EntryEvent, 300, 200)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = env.svc.AddTimedEvent(context.Background(), trainer, day, "Too long", domain.EntryEvent, 0, 24*60+1)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestAddClientEntry_RejectsWorkoutType(t *testing.T) {
	env := newTestEnv(t)
	client := env.addClient()

	_, err := env.svc.AddClientEntry(context.Background(), client.ID, time.Now(), "Sneaky workout", domain.EntryWorkout)
	assert.Error(t, err)
}

func TestDeleteEntry_ForeignEntryReadsAsNotFound(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addClient()
	other := env.addClient()

	entry := &domain.ScheduleEntry{
		OwnerKind: domain.OwnerClient,
		OwnerID:   owner.ID,
		Date:      time.Now(),
		Title:     "Massage",
		Type:      domain.EntryAppointment,
	}
	id, err := env.schedule.Insert(context.Background(), entry)
	require.NoError(t, err)

	err = env.svc.DeleteEntry(context.Background(), domain.OwnerClient, other.ID, id)
	assert.ErrorIs(t, err, ErrScheduleItemNotFound)

	require.NoError(t, env.svc.DeleteEntry(context.Background(), domain.OwnerClient, owner.ID, id))
}
