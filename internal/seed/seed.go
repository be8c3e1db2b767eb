// Package seed populates the shared catalog on first startup so a fresh
// deployment has workouts and splits to assign from day one. Seeding is
// skipped entirely once any global catalog entry exists.
package seed

import (
	"context"

	"gymflow/gym-app/internal/domain"
	"gymflow/gym-app/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Run seeds the global workout and split catalog when both are empty.
func Run(ctx context.Context, workoutRepo repository.WorkoutRepository, splitRepo repository.SplitRepository) error {
	count, err := workoutRepo.CountGlobal(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		log.Debug("global catalog already populated, skipping seed")
		return nil
	}

	workoutIDs := make(map[string]primitive.ObjectID, len(defaultWorkouts))
	for i := range defaultWorkouts {
		w := defaultWorkouts[i]
		id, err := workoutRepo.Create(ctx, &w)
		if err != nil {
			return err
		}
		workoutIDs[w.Title] = id
	}
	log.WithField("count", len(defaultWorkouts)).Info("seeded global workouts")

	splitCount, err := splitRepo.CountGlobal(ctx)
	if err != nil {
		return err
	}
	if splitCount > 0 {
		return nil
	}

	for _, def := range defaultSplits {
		schedule := domain.WeekSchedule{}
		for _, day := range domain.WeekdayNames {
			schedule[day] = nil
		}
		for day, title := range def.days {
			id := workoutIDs[title]
			schedule[day] = &id
		}
		split := &domain.WeeklySplit{
			Name:        def.name,
			Description: def.description,
			DaysPerWeek: schedule.WorkoutDays(),
			Schedule:    schedule,
		}
		if _, err := splitRepo.Create(ctx, split); err != nil {
			return err
		}
	}
	log.WithField("count", len(defaultSplits)).Info("seeded global splits")
	return nil
}

var defaultWorkouts = []domain.Workout{
	{
		Title:      "Push Day",
		Duration:   "60 min",
		Difficulty: "intermediate",
		Exercises: []domain.ExerciseSpec{
			{Name: "Bench Press", Sets: 4, Reps: 8, RestSeconds: 120},
			{Name: "Overhead Press", Sets: 3, Reps: 10, RestSeconds: 90},
			{Name: "Incline Dumbbell Press", Sets: 3, Reps: 10, RestSeconds: 90},
			{Name: "Tricep Pushdown", Sets: 3, Reps: 12, RestSeconds: 60},
		},
	},
	{
		Title:      "Pull Day",
		Duration:   "60 min",
		Difficulty: "intermediate",
		Exercises: []domain.ExerciseSpec{
			{Name: "Deadlift", Sets: 3, Reps: 5, RestSeconds: 180},
			{Name: "Pull Up", Sets: 4, Reps: 8, RestSeconds: 120},
			{Name: "Barbell Row", Sets: 3, Reps: 10, RestSeconds: 90},
			{Name: "Bicep Curl", Sets: 3, Reps: 12, RestSeconds: 60},
		},
	},
	{
		Title:      "Leg Day",
		Duration:   "60 min",
		Difficulty: "intermediate",
		Exercises: []domain.ExerciseSpec{
			{Name: "Squat", Sets: 4, Reps: 6, RestSeconds: 180},
			{Name: "Romanian Deadlift", Sets: 3, Reps: 10, RestSeconds: 120},
			{Name: "Leg Press", Sets: 3, Reps: 12, RestSeconds: 90},
			{Name: "Calf Raise", Sets: 4, Reps: 15, RestSeconds: 45},
		},
	},
	{
		Title:      "Full Body Basics",
		Duration:   "45 min",
		Difficulty: "beginner",
		Exercises: []domain.ExerciseSpec{
			{Name: "Goblet Squat", Sets: 3, Reps: 10, RestSeconds: 90},
			{Name: "Push Up", Sets: 3, Reps: 12, RestSeconds: 60},
			{Name: "Dumbbell Row", Sets: 3, Reps: 10, RestSeconds: 60},
			{Name: "Plank", Sets: 3, Reps: 1, RestSeconds: 60},
		},
	},
}

var defaultSplits = []struct {
	name        string
	description string
	days        map[string]string
}{
	{
		name:        "Push Pull Legs",
		description: "Classic three-day split with a mid-week rest.",
		days: map[string]string{
			"monday":    "Push Day",
			"wednesday": "Pull Day",
			"friday":    "Leg Day",
		},
	},
	{
		name:        "Beginner Full Body",
		description: "Two full-body sessions per week.",
		days: map[string]string{
			"tuesday":  "Full Body Basics",
			"saturday": "Full Body Basics",
		},
	},
}
