package repository

import (
	"context"
	"time"

	"gymflow/gym-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddClientIDToTrainer(ctx context.Context, trainerID, clientID primitive.ObjectID) error
	GetClientsByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)
	SetTrainerForClient(ctx context.Context, clientID, trainerID primitive.ObjectID) error
	SetMembershipActive(ctx context.Context, userID primitive.ObjectID, active bool) error

	// Friendship edges. AddFriendEdge pushes each user into the other's
	// accepted list; the edge must end up symmetric.
	AddPendingFriendRequest(ctx context.Context, toUserID, fromUserID primitive.ObjectID) error
	RemovePendingFriendRequest(ctx context.Context, userID, fromUserID primitive.ObjectID) error
	AddFriendEdge(ctx context.Context, a, b primitive.ObjectID) error

	// AddGems atomically increments a user's gem balance.
	AddGems(ctx context.Context, userID primitive.ObjectID, delta int) error
}

// WorkoutRepository defines the interface for interacting with the
// workout catalog. Global workouts have no owner; trainer-owned
// definitions shadow global ones of the same title.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	GetByTitleForOwner(ctx context.Context, title string, ownerID primitive.ObjectID) (*domain.Workout, error)
	ListGlobal(ctx context.Context) ([]domain.Workout, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Workout, error)
	Update(ctx context.Context, workout *domain.Workout) error
	Delete(ctx context.Context, id, ownerID primitive.ObjectID) error
	CountGlobal(ctx context.Context) (int64, error)
}

// SplitRepository defines the interface for interacting with weekly
// split templates.
type SplitRepository interface {
	Create(ctx context.Context, split *domain.WeeklySplit) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WeeklySplit, error)
	ListGlobal(ctx context.Context) ([]domain.WeeklySplit, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.WeeklySplit, error)
	Delete(ctx context.Context, id, ownerID primitive.ObjectID) error
	CountGlobal(ctx context.Context) (int64, error)
}

// ScheduleRepository defines the interface for the per-owner calendar.
// Every query is scoped by (owner kind, owner id); dates are UTC
// midnights.
type ScheduleRepository interface {
	Insert(ctx context.Context, entry *domain.ScheduleEntry) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ScheduleEntry, error)
	Update(ctx context.Context, entry *domain.ScheduleEntry) error
	Delete(ctx context.Context, id primitive.ObjectID, kind domain.OwnerKind, ownerID primitive.ObjectID) error

	ListByOwnerAndDate(ctx context.Context, kind domain.OwnerKind, ownerID primitive.ObjectID, date time.Time) ([]domain.ScheduleEntry, error)
	ListByOwnerAndDateRange(ctx context.Context, kind domain.OwnerKind, ownerID primitive.ObjectID, from, to time.Time) ([]domain.ScheduleEntry, error)

	// DeleteWorkoutEntries removes every entry carrying a workout
	// reference for the given owner and date. It is the "replace"
	// half of replace-then-insert and returns the number removed.
	DeleteWorkoutEntries(ctx context.Context, kind domain.OwnerKind, ownerID primitive.ObjectID, date time.Time) (int64, error)

	// ListIncompleteWorkoutsForDate returns every owner's incomplete
	// workout entries for the date. Used by the reminder scan.
	ListIncompleteWorkoutsForDate(ctx context.Context, date time.Time) ([]domain.ScheduleEntry, error)
}

// ExerciseLogRepository stores per-set performance rows, upserted by
// their natural key and never batch-deleted.
type ExerciseLogRepository interface {
	Upsert(ctx context.Context, entry *domain.ExerciseLogEntry) error
	ListForWorkoutDay(ctx context.Context, ownerID, workoutID primitive.ObjectID, date time.Time) ([]domain.ExerciseLogEntry, error)
	ListByOwnerAndDateRange(ctx context.Context, ownerID primitive.ObjectID, from, to time.Time) ([]domain.ExerciseLogEntry, error)
}

// DietRepository stores running diet counters and archived daily
// summaries.
type DietRepository interface {
	GetSettings(ctx context.Context, clientID primitive.ObjectID) (*domain.DietSettings, error)
	SaveSettings(ctx context.Context, settings *domain.DietSettings) error

	// InsertSummary archives one finished day. A summary already
	// existing for (client, date) returns ErrDuplicate; the caller
	// treats that as "already archived", which makes rollover
	// idempotent.
	InsertSummary(ctx context.Context, summary *domain.DailyDietSummary) error
	GetSummary(ctx context.Context, clientID primitive.ObjectID, date time.Time) (*domain.DailyDietSummary, error)
	ListSummariesInRange(ctx context.Context, clientID primitive.ObjectID, from, to time.Time) ([]domain.DailyDietSummary, error)
}

// VideoUploadRepository defines the interface for exercise demo video
// upload metadata.
type VideoUploadRepository interface {
	Create(ctx context.Context, upload *domain.VideoUpload) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.VideoUpload, error)
	GetByWorkoutAndExercise(ctx context.Context, workoutID primitive.ObjectID, exerciseName string) (*domain.VideoUpload, error)
}
