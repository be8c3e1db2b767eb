package service

import (
	"context"
	"testing"
	"time"

	"gymflow/gym-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type dietEnv struct {
	repo  *fakeDietRepo
	svc   *dietService
	today time.Time
}

func newDietEnv(t *testing.T) *dietEnv {
	t.Helper()
	env := &dietEnv{
		repo:  newFakeDietRepo(),
		today: time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC), // a Wednesday
	}
	env.svc = NewDietService(env.repo).(*dietService)
	env.svc.now = func() time.Time { return env.today }
	return env
}

func standardTargets() domain.MacroSet {
	return domain.MacroSet{Calories: 2000, Protein: 150, Carbs: 250, Fat: 70}
}

func TestHealthScore(t *testing.T) {
	targets := standardTargets()

	tests := []struct {
		name    string
		current domain.MacroSet
		target  domain.MacroSet
		want    int
	}{
		{
			name:    "all targets met",
			current: targets,
			target:  targets,
			want:    100,
		},
		{
			name:   "nothing eaten",
			target: targets,
			want:   0,
		},
		{
			name:    "half of everything",
			current: domain.MacroSet{Calories: 1000, Protein: 75, Carbs: 125, Fat: 35},
			target:  targets,
			want:    50,
		},
		{
			name:    "overeating is capped per component",
			current: domain.MacroSet{Calories: 4000, Protein: 300, Carbs: 500, Fat: 140},
			target:  targets,
			want:    100,
		},
		{
			name:    "surplus in one macro cannot cover a deficit in another",
			current: domain.MacroSet{Calories: 4000, Protein: 0, Carbs: 250, Fat: 70},
			target:  targets,
			want:    65, // 45 + 0 + 10 + 10
		},
		{
			name:    "zero target contributes nothing",
			current: domain.MacroSet{Calories: 2000, Protein: 150},
			target:  domain.MacroSet{Calories: 2000, Protein: 150},
			want:    80, // carbs and fat have no target
		},
		{
			name:    "no targets at all",
			current: domain.MacroSet{Calories: 1800},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HealthScore(tt.current, tt.target))
		})
	}
}

func TestAddIntake_AccumulatesCounters(t *testing.T) {
	env := newDietEnv(t)
	client := primitive.NewObjectID()

	_, err := env.svc.UpdateTargets(context.Background(), client, standardTargets())
	require.NoError(t, err)

	_, err = env.svc.AddIntake(context.Background(), client, domain.MacroSet{Calories: 600, Protein: 40, Carbs: 70, Fat: 20})
	require.NoError(t, err)
	settings, err := env.svc.AddIntake(context.Background(), client, domain.MacroSet{Calories: 400, Protein: 35, Carbs: 55, Fat: 15})
	require.NoError(t, err)

	assert.Equal(t, 1000.0, settings.Current.Calories)
	assert.Equal(t, 75.0, settings.Current.Protein)

	score, err := env.svc.GetHealthScore(context.Background(), client)
	require.NoError(t, err)
	assert.Equal(t, 50, score)
}

func TestRollover_ArchivesPreviousDayAndResets(t *testing.T) {
	env := newDietEnv(t)
	client := primitive.NewObjectID()

	_, err := env.svc.UpdateTargets(context.Background(), client, standardTargets())
	require.NoError(t, err)
	_, err = env.svc.AddIntake(context.Background(), client, standardTargets())
	require.NoError(t, err)

	yesterday := domain.DayOf(env.today)
	env.today = env.today.AddDate(0, 0, 1)

	// First access on the new day triggers the rollover.
	settings, err := env.svc.GetSettings(context.Background(), client)
	require.NoError(t, err)
	assert.Zero(t, settings.Current.Calories)
	assert.Equal(t, domain.DayOf(env.today), settings.LastResetDate)
	assert.Equal(t, standardTargets(), settings.Target, "targets survive the rollover")

	summary, err := env.repo.GetSummary(context.Background(), client, yesterday)
	require.NoError(t, err)
	assert.Equal(t, 100, summary.Score)
	assert.Equal(t, standardTargets(), summary.Current)
}

func TestRollover_SkipsDaysWithNothingTracked(t *testing.T) {
	env := newDietEnv(t)
	client := primitive.NewObjectID()

	_, err := env.svc.UpdateTargets(context.Background(), client, standardTargets())
	require.NoError(t, err)

	yesterday := domain.DayOf(env.today)
	env.today = env.today.AddDate(0, 0, 1)

	_, err = env.svc.GetSettings(context.Background(), client)
	require.NoError(t, err)

	_, err = env.repo.GetSummary(context.Background(), client, yesterday)
	assert.Error(t, err, "zero-calorie days leave no summary")
}

func TestRollover_IsIdempotentAcrossRaces(t *testing.T) {
	env := newDietEnv(t)
	client := primitive.NewObjectID()

	_, err := env.svc.UpdateTargets(context.Background(), client, standardTargets())
	require.NoError(t, err)
	_, err = env.svc.AddIntake(context.Background(), client, domain.MacroSet{Calories: 900, Protein: 60, Carbs: 100, Fat: 30})
	require.NoError(t, err)

	yesterday := domain.DayOf(env.today)
	env.today = env.today.AddDate(0, 0, 1)

	// Simulate a concurrent request that already archived the day.
	stale, err := env.repo.GetSettings(context.Background(), client)
	require.NoError(t, err)
	require.NoError(t, env.repo.InsertSummary(context.Background(), &domain.DailyDietSummary{
		ClientID: client,
		Date:     yesterday,
		Current:  stale.Current,
		Target:   stale.Target,
		Score:    HealthScore(stale.Current, stale.Target),
	}))

	// The duplicate insert is tolerated and the counters still reset.
	settings, err := env.svc.GetSettings(context.Background(), client)
	require.NoError(t, err)
	assert.Zero(t, settings.Current.Calories)

	summaries, err := env.repo.ListSummariesInRange(context.Background(), client, yesterday, yesterday)
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestGetWeeklyHealthScores(t *testing.T) {
	env := newDietEnv(t) // today is Wednesday 2025-03-12
	client := primitive.NewObjectID()

	_, err := env.svc.UpdateTargets(context.Background(), client, standardTargets())
	require.NoError(t, err)
	// Live intake for today: half of everything.
	_, err = env.svc.AddIntake(context.Background(), client, domain.MacroSet{Calories: 1000, Protein: 75, Carbs: 125, Fat: 35})
	require.NoError(t, err)

	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, env.repo.InsertSummary(context.Background(), &domain.DailyDietSummary{
		ClientID: client,
		Date:     monday,
		Score:    90,
	}))

	scores, err := env.svc.GetWeeklyHealthScores(context.Background(), client)
	require.NoError(t, err)
	require.Len(t, scores, 7)

	assert.Equal(t, monday, scores[0].Date)
	assert.Equal(t, 90, scores[0].Score)

	assert.Zero(t, scores[1].Score, "Tuesday has no summary")

	assert.True(t, scores[2].Today)
	assert.Equal(t, 50, scores[2].Score)

	for _, ds := range scores[3:] {
		assert.False(t, ds.Today)
		assert.Zero(t, ds.Score, "future days are zero")
	}
}
