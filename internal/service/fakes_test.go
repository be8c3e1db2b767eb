package service

import (
	"context"
	"time"

	"gymflow/gym-app/internal/domain"
	"gymflow/gym-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They mirror the Mongo implementations'
// observable behavior (sentinel errors, date normalization, unique
// keys) closely enough for service-level tests.

// --- users ---

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*domain.User{}}
}

func (r *fakeUserRepo) add(user *domain.User) *domain.User {
	if user.ID == primitive.NilObjectID {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = user
	return user
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	r.add(user)
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) AddClientIDToTrainer(_ context.Context, trainerID, clientID primitive.ObjectID) error {
	trainer, ok := r.users[trainerID]
	if !ok {
		return repository.ErrNotFound
	}
	trainer.ClientIDs = append(trainer.ClientIDs, clientID)
	return nil
}

func (r *fakeUserRepo) GetClientsByTrainerID(_ context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	trainer, ok := r.users[trainerID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	var out []domain.User
	for _, id := range trainer.ClientIDs {
		if c, ok := r.users[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) SetTrainerForClient(_ context.Context, clientID, trainerID primitive.ObjectID) error {
	client, ok := r.users[clientID]
	if !ok {
		return repository.ErrNotFound
	}
	client.TrainerID = &trainerID
	return nil
}

func (r *fakeUserRepo) SetMembershipActive(_ context.Context, userID primitive.ObjectID, active bool) error {
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.MembershipActive = active
	return nil
}

func (r *fakeUserRepo) AddPendingFriendRequest(_ context.Context, toUserID, fromUserID primitive.ObjectID) error {
	u, ok := r.users[toUserID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, p := range u.PendingFriendRequests {
		if p == fromUserID {
			return nil
		}
	}
	u.PendingFriendRequests = append(u.PendingFriendRequests, fromUserID)
	return nil
}

func (r *fakeUserRepo) RemovePendingFriendRequest(_ context.Context, userID, fromUserID primitive.ObjectID) error {
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	out := u.PendingFriendRequests[:0]
	for _, p := range u.PendingFriendRequests {
		if p != fromUserID {
			out = append(out, p)
		}
	}
	u.PendingFriendRequests = out
	return nil
}

func (r *fakeUserRepo) AddFriendEdge(_ context.Context, a, b primitive.ObjectID) error {
	ua, ok := r.users[a]
	if !ok {
		return repository.ErrNotFound
	}
	ub, ok := r.users[b]
	if !ok {
		return repository.ErrNotFound
	}
	if !ua.HasFriend(b) {
		ua.Friends = append(ua.Friends, b)
	}
	if !ub.HasFriend(a) {
		ub.Friends = append(ub.Friends, a)
	}
	return nil
}

func (r *fakeUserRepo) AddGems(_ context.Context, userID primitive.ObjectID, delta int) error {
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Gems += delta
	return nil
}

// --- workouts ---

type fakeWorkoutRepo struct {
	workouts map[primitive.ObjectID]*domain.Workout
}

func newFakeWorkoutRepo() *fakeWorkoutRepo {
	return &fakeWorkoutRepo{workouts: map[primitive.ObjectID]*domain.Workout{}}
}

func (r *fakeWorkoutRepo) Create(_ context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.ID == primitive.NilObjectID {
		workout.ID = primitive.NewObjectID()
	}
	cp := *workout
	r.workouts[workout.ID] = &cp
	return workout.ID, nil
}

func (r *fakeWorkoutRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	w, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *fakeWorkoutRepo) GetByTitleForOwner(_ context.Context, title string, ownerID primitive.ObjectID) (*domain.Workout, error) {
	for _, w := range r.workouts {
		if w.Title == title && w.OwnerID != nil && *w.OwnerID == ownerID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeWorkoutRepo) ListGlobal(_ context.Context) ([]domain.Workout, error) {
	var out []domain.Workout
	for _, w := range r.workouts {
		if w.IsGlobal() {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (r *fakeWorkoutRepo) ListByOwner(_ context.Context, ownerID primitive.ObjectID) ([]domain.Workout, error) {
	var out []domain.Workout
	for _, w := range r.workouts {
		if w.OwnerID != nil && *w.OwnerID == ownerID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (r *fakeWorkoutRepo) Update(_ context.Context, workout *domain.Workout) error {
	if _, ok := r.workouts[workout.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *workout
	r.workouts[workout.ID] = &cp
	return nil
}

func (r *fakeWorkoutRepo) Delete(_ context.Context, id, ownerID primitive.ObjectID) error {
	w, ok := r.workouts[id]
	if !ok || w.OwnerID == nil || *w.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(r.workouts, id)
	return nil
}

func (r *fakeWorkoutRepo) CountGlobal(ctx context.Context) (int64, error) {
	globals, _ := r.ListGlobal(ctx)
	return int64(len(globals)), nil
}

// --- splits ---

type fakeSplitRepo struct {
	splits map[primitive.ObjectID]*domain.WeeklySplit
}

func newFakeSplitRepo() *fakeSplitRepo {
	return &fakeSplitRepo{splits: map[primitive.ObjectID]*domain.WeeklySplit{}}
}

func (r *fakeSplitRepo) Create(_ context.Context, split *domain.WeeklySplit) (primitive.ObjectID, error) {
	if split.ID == primitive.NilObjectID {
		split.ID = primitive.NewObjectID()
	}
	cp := *split
	r.splits[split.ID] = &cp
	return split.ID, nil
}

func (r *fakeSplitRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WeeklySplit, error) {
	s, ok := r.splits[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSplitRepo) ListGlobal(_ context.Context) ([]domain.WeeklySplit, error) {
	var out []domain.WeeklySplit
	for _, s := range r.splits {
		if s.OwnerID == nil {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSplitRepo) ListByOwner(_ context.Context, ownerID primitive.ObjectID) ([]domain.WeeklySplit, error) {
	var out []domain.WeeklySplit
	for _, s := range r.splits {
		if s.OwnerID != nil && *s.OwnerID == ownerID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSplitRepo) Delete(_ context.Context, id, ownerID primitive.ObjectID) error {
	s, ok := r.splits[id]
	if !ok || s.OwnerID == nil || *s.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(r.splits, id)
	return nil
}

func (r *fakeSplitRepo) CountGlobal(ctx context.Context) (int64, error) {
	globals, _ := r.ListGlobal(ctx)
	return int64(len(globals)), nil
}

// --- schedule ---

type fakeScheduleRepo struct {
	entries map[primitive.ObjectID]*domain.ScheduleEntry

	// failInsertOn makes Insert fail for specific dates, to exercise
	// the per-day failure path of the assignment engine.
	failInsertOn map[time.Time]error
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{
		entries:      map[primitive.ObjectID]*domain.ScheduleEntry{},
		failInsertOn: map[time.Time]error{},
	}
}

func (r *fakeScheduleRepo) Insert(_ context.Context, entry *domain.ScheduleEntry) (primitive.ObjectID, error) {
	date := domain.DayOf(entry.Date)
	if err, ok := r.failInsertOn[date]; ok {
		return primitive.NilObjectID, err
	}
	entry.ID = primitive.NewObjectID()
	entry.Date = date
	cp := *entry
	r.entries[entry.ID] = &cp
	return entry.ID, nil
}

func (r *fakeScheduleRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ScheduleEntry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeScheduleRepo) Update(_ context.Context, entry *domain.ScheduleEntry) error {
	stored, ok := r.entries[entry.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Title = entry.Title
	stored.Completed = entry.Completed
	stored.Details = entry.Details
	return nil
}

func (r *fakeScheduleRepo) Delete(_ context.Context, id primitive.ObjectID, kind domain.OwnerKind, ownerID primitive.ObjectID) error {
	e, ok := r.entries[id]
	if !ok || e.OwnerKind != kind || e.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *fakeScheduleRepo) ListByOwnerAndDate(_ context.Context, kind domain.OwnerKind, ownerID primitive.ObjectID, date time.Time) ([]domain.ScheduleEntry, error) {
	day := domain.DayOf(date)
	var out []domain.ScheduleEntry
	for _, e := range r.entries {
		if e.OwnerKind == kind && e.OwnerID == ownerID && e.Date.Equal(day) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) ListByOwnerAndDateRange(_ context.Context, kind domain.OwnerKind, ownerID primitive.ObjectID, from, to time.Time) ([]domain.ScheduleEntry, error) {
	lo, hi := domain.DayOf(from), domain.DayOf(to)
	var out []domain.ScheduleEntry
	for _, e := range r.entries {
		if e.OwnerKind != kind || e.OwnerID != ownerID {
			continue
		}
		if !e.Date.Before(lo) && !e.Date.After(hi) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) DeleteWorkoutEntries(_ context.Context, kind domain.OwnerKind, ownerID primitive.ObjectID, date time.Time) (int64, error) {
	day := domain.DayOf(date)
	var removed int64
	for id, e := range r.entries {
		if e.OwnerKind == kind && e.OwnerID == ownerID && e.Date.Equal(day) && e.IsWorkout() {
			delete(r.entries, id)
			removed++
		}
	}
	return removed, nil
}

func (r *fakeScheduleRepo) ListIncompleteWorkoutsForDate(_ context.Context, date time.Time) ([]domain.ScheduleEntry, error) {
	day := domain.DayOf(date)
	var out []domain.ScheduleEntry
	for _, e := range r.entries {
		if e.Date.Equal(day) && e.IsWorkout() && !e.Completed {
			out = append(out, *e)
		}
	}
	return out, nil
}

// workoutEntriesOn is a test helper counting workout entries for one
// owner and date.
func (r *fakeScheduleRepo) workoutEntriesOn(kind domain.OwnerKind, ownerID primitive.ObjectID, date time.Time) []domain.ScheduleEntry {
	entries, _ := r.ListByOwnerAndDate(context.Background(), kind, ownerID, date)
	var out []domain.ScheduleEntry
	for _, e := range entries {
		if e.IsWorkout() {
			out = append(out, e)
		}
	}
	return out
}

// --- exercise logs ---

type logKey struct {
	owner    primitive.ObjectID
	date     time.Time
	workout  primitive.ObjectID
	exercise string
	set      int
}

type fakeExerciseLogRepo struct {
	rows map[logKey]*domain.ExerciseLogEntry
}

func newFakeExerciseLogRepo() *fakeExerciseLogRepo {
	return &fakeExerciseLogRepo{rows: map[logKey]*domain.ExerciseLogEntry{}}
}

func (r *fakeExerciseLogRepo) Upsert(_ context.Context, entry *domain.ExerciseLogEntry) error {
	key := logKey{
		owner:    entry.OwnerID,
		date:     domain.DayOf(entry.Date),
		workout:  entry.WorkoutID,
		exercise: entry.ExerciseName,
		set:      entry.SetNumber,
	}
	if existing, ok := r.rows[key]; ok {
		existing.Reps = entry.Reps
		existing.Weight = entry.Weight
		existing.Metric = entry.Metric
		return nil
	}
	cp := *entry
	cp.ID = primitive.NewObjectID()
	cp.Date = key.date
	r.rows[key] = &cp
	return nil
}

func (r *fakeExerciseLogRepo) ListForWorkoutDay(_ context.Context, ownerID, workoutID primitive.ObjectID, date time.Time) ([]domain.ExerciseLogEntry, error) {
	day := domain.DayOf(date)
	var out []domain.ExerciseLogEntry
	for _, row := range r.rows {
		if row.OwnerID == ownerID && row.WorkoutID == workoutID && row.Date.Equal(day) {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *fakeExerciseLogRepo) ListByOwnerAndDateRange(_ context.Context, ownerID primitive.ObjectID, from, to time.Time) ([]domain.ExerciseLogEntry, error) {
	lo, hi := domain.DayOf(from), domain.DayOf(to)
	var out []domain.ExerciseLogEntry
	for _, row := range r.rows {
		if row.OwnerID == ownerID && !row.Date.Before(lo) && !row.Date.After(hi) {
			out = append(out, *row)
		}
	}
	return out, nil
}

// --- diet ---

type summaryKey struct {
	client primitive.ObjectID
	date   time.Time
}

type fakeDietRepo struct {
	settings  map[primitive.ObjectID]*domain.DietSettings
	summaries map[summaryKey]*domain.DailyDietSummary
}

func newFakeDietRepo() *fakeDietRepo {
	return &fakeDietRepo{
		settings:  map[primitive.ObjectID]*domain.DietSettings{},
		summaries: map[summaryKey]*domain.DailyDietSummary{},
	}
}

func (r *fakeDietRepo) GetSettings(_ context.Context, clientID primitive.ObjectID) (*domain.DietSettings, error) {
	s, ok := r.settings[clientID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeDietRepo) SaveSettings(_ context.Context, settings *domain.DietSettings) error {
	if settings.ID == primitive.NilObjectID {
		settings.ID = primitive.NewObjectID()
	}
	cp := *settings
	r.settings[settings.ClientID] = &cp
	return nil
}

func (r *fakeDietRepo) InsertSummary(_ context.Context, summary *domain.DailyDietSummary) error {
	key := summaryKey{client: summary.ClientID, date: domain.DayOf(summary.Date)}
	if _, ok := r.summaries[key]; ok {
		return repository.ErrDuplicate
	}
	cp := *summary
	cp.ID = primitive.NewObjectID()
	cp.Date = key.date
	r.summaries[key] = &cp
	return nil
}

func (r *fakeDietRepo) GetSummary(_ context.Context, clientID primitive.ObjectID, date time.Time) (*domain.DailyDietSummary, error) {
	s, ok := r.summaries[summaryKey{client: clientID, date: domain.DayOf(date)}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeDietRepo) ListSummariesInRange(_ context.Context, clientID primitive.ObjectID, from, to time.Time) ([]domain.DailyDietSummary, error) {
	lo, hi := domain.DayOf(from), domain.DayOf(to)
	var out []domain.DailyDietSummary
	for _, s := range r.summaries {
		if s.ClientID == clientID && !s.Date.Before(lo) && !s.Date.After(hi) {
			out = append(out, *s)
		}
	}
	return out, nil
}

// --- uploads ---

type fakeVideoUploadRepo struct {
	uploads map[primitive.ObjectID]*domain.VideoUpload
}

func newFakeVideoUploadRepo() *fakeVideoUploadRepo {
	return &fakeVideoUploadRepo{uploads: map[primitive.ObjectID]*domain.VideoUpload{}}
}

func (r *fakeVideoUploadRepo) Create(_ context.Context, upload *domain.VideoUpload) (primitive.ObjectID, error) {
	if upload.ID == primitive.NilObjectID {
		upload.ID = primitive.NewObjectID()
	}
	cp := *upload
	r.uploads[upload.ID] = &cp
	return upload.ID, nil
}

func (r *fakeVideoUploadRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.VideoUpload, error) {
	u, ok := r.uploads[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeVideoUploadRepo) GetByWorkoutAndExercise(_ context.Context, workoutID primitive.ObjectID, exerciseName string) (*domain.VideoUpload, error) {
	for _, u := range r.uploads {
		if u.WorkoutID == workoutID && u.ExerciseName == exerciseName {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// --- storage ---

type fakeFileStorage struct{}

func (fakeFileStorage) GeneratePresignedUploadURL(_ context.Context, objectKey, _ string, _ time.Duration) (string, error) {
	return "https://storage.test/upload/" + objectKey, nil
}

func (fakeFileStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://storage.test/download/" + objectKey, nil
}

func (fakeFileStorage) DeleteObject(_ context.Context, _ string) error { return nil }
