package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"gymflow/gym-app/internal/domain"
	"gymflow/gym-app/internal/repository"
	"gymflow/gym-app/internal/storage"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound      = errors.New("workout not found")
	ErrSplitNotFound        = errors.New("split not found")
	ErrCatalogAccessDenied  = errors.New("access denied to this catalog entry")
	ErrUploadURLError       = errors.New("failed to generate upload URL")
	ErrUploadConfirmFailed  = errors.New("failed to confirm upload")
	ErrInvalidVideoType     = errors.New("invalid or missing video content type")
	ErrExerciseNotInWorkout = errors.New("exercise is not part of this workout")
)

// UploadURLResponse carries a pre-signed URL and the object key the
// trainer reports back on confirm.
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// CatalogService is the read-mostly lookup of workout and split
// definitions, with the personal-override-over-global resolution rule.
type CatalogService interface {
	// Resolution (consumed by the assignment engine and schedule reads).
	ResolveWorkout(ctx context.Context, workoutID primitive.ObjectID, contextOwnerID *primitive.ObjectID) (*domain.Workout, error)
	GetSplit(ctx context.Context, splitID primitive.ObjectID) (*domain.WeeklySplit, error)

	// Authoring.
	CreateWorkout(ctx context.Context, ownerID *primitive.ObjectID, workout domain.Workout) (*domain.Workout, error)
	UpdateWorkout(ctx context.Context, actorID primitive.ObjectID, workout domain.Workout) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, actorID, workoutID primitive.ObjectID) error
	ListWorkouts(ctx context.Context, ownerID *primitive.ObjectID) ([]domain.Workout, error)
	CreateSplit(ctx context.Context, ownerID *primitive.ObjectID, split domain.WeeklySplit) (*domain.WeeklySplit, error)
	ListSplits(ctx context.Context, ownerID *primitive.ObjectID) ([]domain.WeeklySplit, error)
	DeleteSplit(ctx context.Context, actorID, splitID primitive.ObjectID) error

	// Exercise demo videos (S3 presigned flow).
	RequestVideoUploadURL(ctx context.Context, trainerID, workoutID primitive.ObjectID, exerciseName, contentType string) (*UploadURLResponse, error)
	ConfirmVideoUpload(ctx context.Context, trainerID, workoutID primitive.ObjectID, exerciseName, objectKey, fileName string, fileSize int64, contentType string) (*domain.VideoUpload, error)
	GetVideoDownloadURL(ctx context.Context, workoutID primitive.ObjectID, exerciseName string) (string, error)
}

type catalogService struct {
	workoutRepo repository.WorkoutRepository
	splitRepo   repository.SplitRepository
	uploadRepo  repository.VideoUploadRepository
	fileStorage storage.FileStorage
}

// NewCatalogService creates a new instance of catalogService.
func NewCatalogService(
	workoutRepo repository.WorkoutRepository,
	splitRepo repository.SplitRepository,
	uploadRepo repository.VideoUploadRepository,
	fileStorage storage.FileStorage,
) CatalogService {
	return &catalogService{
		workoutRepo: workoutRepo,
		splitRepo:   splitRepo,
		uploadRepo:  uploadRepo,
		fileStorage: fileStorage,
	}
}

// === Resolution ===

// ResolveWorkout looks up a workout by id and applies the override
// rule: when the id points at a global definition and the context
// owner has a personal definition with the same title, the personal
// one is returned instead.
func (s *catalogService) ResolveWorkout(ctx context.Context, workoutID primitive.ObjectID, contextOwnerID *primitive.ObjectID) (*domain.Workout, error) {
	if workoutID == primitive.NilObjectID {
		return nil, ErrWorkoutNotFound
	}

	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}

	if workout.IsGlobal() && contextOwnerID != nil && *contextOwnerID != primitive.NilObjectID {
		personal, err := s.workoutRepo.GetByTitleForOwner(ctx, workout.Title, *contextOwnerID)
		if err == nil {
			log.WithFields(log.Fields{
				"workout": workoutID.Hex(),
				"owner":   contextOwnerID.Hex(),
			}).Debug("personal workout definition shadows global")
			return personal, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	return workout, nil
}

// GetSplit retrieves a split template by id. The schedule comes back
// already normalized by the domain decode boundary.
func (s *catalogService) GetSplit(ctx context.Context, splitID primitive.ObjectID) (*domain.WeeklySplit, error) {
	split, err := s.splitRepo.GetByID(ctx, splitID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSplitNotFound
		}
		return nil, err
	}
	return split, nil
}

// === Authoring ===

// CreateWorkout stores a new workout definition, personal when ownerID
// is set and global otherwise.
func (s *catalogService) CreateWorkout(ctx context.Context, ownerID *primitive.ObjectID, workout domain.Workout) (*domain.Workout, error) {
	if workout.Title == "" {
		return nil, errors.New("workout title is required")
	}
	workout.OwnerID = ownerID
	id, err := s.workoutRepo.Create(ctx, &workout)
	if err != nil {
		return nil, err
	}
	workout.ID = id
	return &workout, nil
}

// UpdateWorkout applies "fork on edit": a trainer editing a global
// definition receives a personal copy carrying the edits; the shared
// definition is never mutated. Editing an own definition updates it in
// place.
func (s *catalogService) UpdateWorkout(ctx context.Context, actorID primitive.ObjectID, workout domain.Workout) (*domain.Workout, error) {
	existing, err := s.workoutRepo.GetByID(ctx, workout.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}

	if existing.IsGlobal() {
		// Fork: same title, personal owner; it will shadow the global
		// definition from now on for this trainer.
		fork := workout
		fork.ID = primitive.NilObjectID
		fork.OwnerID = &actorID
		id, err := s.workoutRepo.Create(ctx, &fork)
		if err != nil {
			return nil, err
		}
		fork.ID = id
		log.WithFields(log.Fields{
			"global":  existing.ID.Hex(),
			"fork":    id.Hex(),
			"trainer": actorID.Hex(),
		}).Info("forked global workout on edit")
		return &fork, nil
	}

	if *existing.OwnerID != actorID {
		return nil, ErrCatalogAccessDenied
	}
	if err := s.workoutRepo.Update(ctx, &workout); err != nil {
		return nil, err
	}
	return &workout, nil
}

// DeleteWorkout removes a trainer's personal workout.
func (s *catalogService) DeleteWorkout(ctx context.Context, actorID, workoutID primitive.ObjectID) error {
	err := s.workoutRepo.Delete(ctx, workoutID, actorID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrWorkoutNotFound
	}
	return err
}

// ListWorkouts returns the shared catalog plus, when ownerID is set,
// the trainer's personal definitions with shadowed globals removed.
func (s *catalogService) ListWorkouts(ctx context.Context, ownerID *primitive.ObjectID) ([]domain.Workout, error) {
	global, err := s.workoutRepo.ListGlobal(ctx)
	if err != nil {
		return nil, err
	}
	if ownerID == nil || *ownerID == primitive.NilObjectID {
		return global, nil
	}

	personal, err := s.workoutRepo.ListByOwner(ctx, *ownerID)
	if err != nil {
		return nil, err
	}

	shadowed := make(map[string]bool, len(personal))
	for _, w := range personal {
		shadowed[strings.ToLower(w.Title)] = true
	}
	merged := make([]domain.Workout, 0, len(global)+len(personal))
	merged = append(merged, personal...)
	for _, w := range global {
		if !shadowed[strings.ToLower(w.Title)] {
			merged = append(merged, w)
		}
	}
	return merged, nil
}

// CreateSplit stores a new weekly split template.
func (s *catalogService) CreateSplit(ctx context.Context, ownerID *primitive.ObjectID, split domain.WeeklySplit) (*domain.WeeklySplit, error) {
	if split.Name == "" {
		return nil, errors.New("split name is required")
	}
	if split.Schedule == nil {
		split.Schedule = domain.WeekSchedule{}
	}
	// Verify every referenced workout resolves before the template can
	// be assigned to anyone.
	for day, workoutID := range split.Schedule {
		if workoutID == nil {
			continue
		}
		if _, err := s.ResolveWorkout(ctx, *workoutID, ownerID); err != nil {
			return nil, fmt.Errorf("schedule day %q: %w", day, err)
		}
	}
	split.OwnerID = ownerID
	split.DaysPerWeek = split.Schedule.WorkoutDays()
	id, err := s.splitRepo.Create(ctx, &split)
	if err != nil {
		return nil, err
	}
	split.ID = id
	return &split, nil
}

// ListSplits returns global splits plus the trainer's personal ones.
func (s *catalogService) ListSplits(ctx context.Context, ownerID *primitive.ObjectID) ([]domain.WeeklySplit, error) {
	global, err := s.splitRepo.ListGlobal(ctx)
	if err != nil {
		return nil, err
	}
	if ownerID == nil || *ownerID == primitive.NilObjectID {
		return global, nil
	}
	personal, err := s.splitRepo.ListByOwner(ctx, *ownerID)
	if err != nil {
		return nil, err
	}
	return append(personal, global...), nil
}

// DeleteSplit removes a trainer's personal split.
func (s *catalogService) DeleteSplit(ctx context.Context, actorID, splitID primitive.ObjectID) error {
	err := s.splitRepo.Delete(ctx, splitID, actorID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSplitNotFound
	}
	return err
}

// === Exercise demo videos ===

// RequestVideoUploadURL generates a pre-signed URL for a trainer to
// upload a demo video for one exercise of an owned workout.
func (s *catalogService) RequestVideoUploadURL(ctx context.Context, trainerID, workoutID primitive.ObjectID, exerciseName, contentType string) (*UploadURLResponse, error) {
	if trainerID == primitive.NilObjectID || workoutID == primitive.NilObjectID || exerciseName == "" {
		return nil, errors.New("trainer ID, workout ID and exercise name are required")
	}
	if contentType == "" || !strings.HasPrefix(strings.ToLower(contentType), "video/") {
		return nil, ErrInvalidVideoType
	}

	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if workout.IsGlobal() || *workout.OwnerID != trainerID {
		return nil, ErrCatalogAccessDenied
	}
	if !workoutHasExercise(workout, exerciseName) {
		return nil, ErrExerciseNotInWorkout
	}

	uniqueID := uuid.NewString()
	fileExtension := ""
	if parts := strings.Split(contentType, "/"); len(parts) == 2 {
		fileExtension = parts[1]
	}
	objectKey := path.Join("videos", trainerID.Hex(), workoutID.Hex(), fmt.Sprintf("%s.%s", uniqueID, fileExtension))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}
	return &UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ConfirmVideoUpload records the upload metadata and links the object
// key into the workout's exercise definition. Called AFTER the trainer
// uploaded the file to S3 using the pre-signed URL.
func (s *catalogService) ConfirmVideoUpload(ctx context.Context, trainerID, workoutID primitive.ObjectID, exerciseName, objectKey, fileName string, fileSize int64, contentType string) (*domain.VideoUpload, error) {
	if objectKey == "" {
		return nil, errors.New("object key is required")
	}

	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if workout.IsGlobal() || *workout.OwnerID != trainerID {
		return nil, ErrCatalogAccessDenied
	}

	upload := &domain.VideoUpload{
		TrainerID:    trainerID,
		WorkoutID:    workoutID,
		ExerciseName: exerciseName,
		S3ObjectKey:  objectKey,
		FileName:     fileName,
		ContentType:  contentType,
		Size:         fileSize,
	}
	uploadID, err := s.uploadRepo.Create(ctx, upload)
	if err != nil {
		return nil, ErrUploadConfirmFailed
	}
	upload.ID = uploadID

	linked := false
	for i := range workout.Exercises {
		if strings.EqualFold(workout.Exercises[i].Name, exerciseName) {
			workout.Exercises[i].VideoKey = objectKey
			linked = true
		}
	}
	if !linked {
		return nil, ErrExerciseNotInWorkout
	}
	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		return nil, ErrUploadConfirmFailed
	}
	return upload, nil
}

// GetVideoDownloadURL generates a temporary URL to view an exercise's
// demo video.
func (s *catalogService) GetVideoDownloadURL(ctx context.Context, workoutID primitive.ObjectID, exerciseName string) (string, error) {
	upload, err := s.uploadRepo.GetByWorkoutAndExercise(ctx, workoutID, exerciseName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrWorkoutNotFound
		}
		return "", err
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, upload.S3ObjectKey, storage.DefaultPresignedURLExpiry)
}

func workoutHasExercise(w *domain.Workout, name string) bool {
	for _, ex := range w.Exercises {
		if strings.EqualFold(ex.Name, name) {
			return true
		}
	}
	return false
}
