package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"gymflow/gym-app/internal/domain"
	"gymflow/gym-app/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrNotAWorkoutEntry = errors.New("schedule item does not carry a workout")
	ErrNotCompletedYet  = errors.New("schedule item has not been completed yet")
	ErrNotFriends       = errors.New("users are not friends")
	ErrCoopFailed       = errors.New("cooperative completion failed")
)

// Gem bonuses awarded on completion. Both co-op partners receive the
// same flat bonus.
const (
	completionGemBonus = 5
	coopGemBonus       = 10
)

// CompletionResult is returned by the completion operations.
type CompletionResult struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	GemsAwarded int    `json:"gemsAwarded,omitempty"`
}

// CompletionService records workout completions and per-set
// performance, and maintains the frozen completion snapshots.
type CompletionService interface {
	// CompleteScheduleItem marks an entry complete, logs the submitted
	// per-set performance and freezes the submitted exercise array as
	// the entry's snapshot.
	CompleteScheduleItem(ctx context.Context, kind domain.OwnerKind, ownerID, itemID primitive.ObjectID, date time.Time, exercises []domain.ExerciseResult) (*CompletionResult, error)

	// UpdateCompletedSet patches one (exercise, set) pair after the
	// fact, keeping the log row and the snapshot element consistent.
	UpdateCompletedSet(ctx context.Context, kind domain.OwnerKind, ownerID, itemID primitive.ObjectID, exerciseName string, setNumber int, performance domain.SetPerformance) (*CompletionResult, error)

	// CompleteCoopWorkout completes a workout for two friends at once,
	// cross-referencing each side's snapshot with the partner's.
	CompleteCoopWorkout(ctx context.Context, ownerID, partnerID primitive.ObjectID, date time.Time, exercises, partnerExercises []domain.ExerciseResult) (*CompletionResult, error)

	// GetWorkoutLog returns one workout day's logged sets with set
	// number gaps backfilled for display.
	GetWorkoutLog(ctx context.Context, ownerID, workoutID primitive.ObjectID, date time.Time) ([]domain.ExerciseLogEntry, error)
}

type completionService struct {
	userRepo     repository.UserRepository
	scheduleRepo repository.ScheduleRepository
	logRepo      repository.ExerciseLogRepository
	now          func() time.Time
}

// NewCompletionService creates a new instance of completionService.
func NewCompletionService(
	userRepo repository.UserRepository,
	scheduleRepo repository.ScheduleRepository,
	logRepo repository.ExerciseLogRepository,
) CompletionService {
	return &completionService{
		userRepo:     userRepo,
		scheduleRepo: scheduleRepo,
		logRepo:      logRepo,
		now:          time.Now,
	}
}

// CompleteScheduleItem implements the single-user completion path.
func (s *completionService) CompleteScheduleItem(ctx context.Context, kind domain.OwnerKind, ownerID, itemID primitive.ObjectID, date time.Time, exercises []domain.ExerciseResult) (*CompletionResult, error) {
	// 1. Locate the entry, scoped to the calling owner. A foreign
	// entry reads as not found so existence never leaks.
	entry, err := s.getOwnedEntry(ctx, kind, ownerID, itemID)
	if err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = entry.Date
	}
	date = domain.DayOf(date)

	// 2. Log every set flagged completed. Missing/garbage numbers were
	// already coerced to zero at the decode boundary.
	if entry.IsWorkout() {
		s.logPerformance(ctx, ownerID, *entry.WorkoutID, date, exercises)
	}

	// 3. Freeze the submitted array as the snapshot and mark complete.
	// From now on this snapshot wins over the live catalog definition.
	wasCompleted := entry.Completed
	entry.Completed = true
	entry.Details = &domain.WorkoutSnapshot{Exercises: exercises}
	if err := s.scheduleRepo.Update(ctx, entry); err != nil {
		return nil, err
	}

	result := &CompletionResult{Status: "success", Message: "workout completed"}
	if !wasCompleted {
		if err := s.userRepo.AddGems(ctx, ownerID, completionGemBonus); err != nil {
			// The completion itself stands; the bonus is best-effort.
			log.WithError(err).WithField("owner", ownerID.Hex()).Warn("failed to award completion gems")
		} else {
			result.GemsAwarded = completionGemBonus
		}
	}
	return result, nil
}

// UpdateCompletedSet patches one set of an already-completed entry.
func (s *completionService) UpdateCompletedSet(ctx context.Context, kind domain.OwnerKind, ownerID, itemID primitive.ObjectID, exerciseName string, setNumber int, performance domain.SetPerformance) (*CompletionResult, error) {
	if exerciseName == "" || setNumber < 1 {
		return nil, errors.New("exercise name and a 1-based set number are required")
	}

	entry, err := s.getOwnedEntry(ctx, kind, ownerID, itemID)
	if err != nil {
		return nil, err
	}
	if !entry.IsWorkout() {
		return nil, ErrNotAWorkoutEntry
	}
	if entry.Details == nil {
		return nil, ErrNotCompletedYet
	}

	// 1. Patch the log row.
	logEntry := &domain.ExerciseLogEntry{
		OwnerID:      ownerID,
		Date:         entry.Date,
		WorkoutID:    *entry.WorkoutID,
		ExerciseName: exerciseName,
		SetNumber:    setNumber,
		Reps:         int(performance.Reps),
		Weight:       float64(performance.Weight),
		Metric:       domain.MetricRepsWeight,
	}
	if err := s.logRepo.Upsert(ctx, logEntry); err != nil {
		return nil, err
	}

	// 2. Patch the same set inside the snapshot, padding the
	// performance array with empty placeholders when it is shorter
	// than the target set number.
	patched := false
	for i := range entry.Details.Exercises {
		ex := &entry.Details.Exercises[i]
		if !strings.EqualFold(ex.Name, exerciseName) {
			continue
		}
		for len(ex.Performance) < setNumber {
			ex.Performance = append(ex.Performance, domain.SetPerformance{})
		}
		ex.Performance[setNumber-1] = performance
		patched = true
		break
	}
	if !patched {
		// The set was logged but the snapshot knows nothing of this
		// exercise; append it so both records stay consistent.
		ex := domain.ExerciseResult{Name: exerciseName, Completed: true}
		for len(ex.Performance) < setNumber {
			ex.Performance = append(ex.Performance, domain.SetPerformance{})
		}
		ex.Performance[setNumber-1] = performance
		entry.Details.Exercises = append(entry.Details.Exercises, ex)
	}

	if err := s.scheduleRepo.Update(ctx, entry); err != nil {
		return nil, err
	}
	return &CompletionResult{Status: "success", Message: "set updated"}, nil
}

// CompleteCoopWorkout implements the paired completion path.
//
// The pair update is best-effort atomic: the caller's side is written
// first and reverted if the partner's side fails, so from the caller's
// perspective either both calendars update or neither. A crash between
// the two writes can still leave one side updated; a true two-owner
// transaction would need a replica-set deployment and is deliberately
// not required here.
func (s *completionService) CompleteCoopWorkout(ctx context.Context, ownerID, partnerID primitive.ObjectID, date time.Time, exercises, partnerExercises []domain.ExerciseResult) (*CompletionResult, error) {
	if ownerID == partnerID {
		return nil, errors.New("cannot complete a co-op workout with yourself")
	}
	if date.IsZero() {
		date = s.now()
	}
	date = domain.DayOf(date)

	// 1. Verify the friendship edge, both directions. A pending
	// request is not enough; the edge must be accepted and symmetric.
	ok, err := s.areFriends(ctx, ownerID, partnerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFriends
	}

	// 2. Update (or create) the caller's entry for the date.
	ownEntry, ownPrev, err := s.upsertCoopEntry(ctx, ownerID, date, exercises, partnerID, partnerExercises)
	if err != nil {
		return nil, err
	}

	// 3. Update (or create) the partner's entry. On failure, revert
	// the caller's side.
	partnerEntry, partnerPrev, err := s.upsertCoopEntry(ctx, partnerID, date, partnerExercises, ownerID, exercises)
	if err != nil {
		s.revertCoopEntry(ctx, ownEntry, ownPrev)
		log.WithError(err).WithFields(log.Fields{
			"owner":   ownerID.Hex(),
			"partner": partnerID.Hex(),
		}).Error("partner side of co-op completion failed, own side reverted")
		return nil, ErrCoopFailed
	}

	// 4. Log both sides' performance.
	if ownEntry.IsWorkout() {
		s.logPerformance(ctx, ownerID, *ownEntry.WorkoutID, date, exercises)
	}
	if partnerEntry.IsWorkout() {
		s.logPerformance(ctx, partnerID, *partnerEntry.WorkoutID, date, partnerExercises)
	}

	// 5. Award the flat bonus, but only to a side whose entry was not
	// already completed. Repeating the request must not farm gems.
	awarded := 0
	for _, side := range []struct {
		id   primitive.ObjectID
		prev *domain.ScheduleEntry
	}{
		{ownerID, ownPrev},
		{partnerID, partnerPrev},
	} {
		if side.prev != nil && side.prev.Completed {
			continue
		}
		if err := s.userRepo.AddGems(ctx, side.id, coopGemBonus); err != nil {
			log.WithError(err).WithField("user", side.id.Hex()).Warn("failed to award co-op gems")
			continue
		}
		if side.id == ownerID {
			awarded = coopGemBonus
		}
	}

	return &CompletionResult{
		Status:      "success",
		Message:     "co-op workout completed",
		GemsAwarded: awarded,
	}, nil
}

// GetWorkoutLog returns the logged sets with gaps backfilled.
func (s *completionService) GetWorkoutLog(ctx context.Context, ownerID, workoutID primitive.ObjectID, date time.Time) ([]domain.ExerciseLogEntry, error) {
	entries, err := s.logRepo.ListForWorkoutDay(ctx, ownerID, workoutID, date)
	if err != nil {
		return nil, err
	}
	return BackfillSets(entries), nil
}

// === helpers ===

// getOwnedEntry fetches an entry and masks ownership mismatches as
// not-found.
func (s *completionService) getOwnedEntry(ctx context.Context, kind domain.OwnerKind, ownerID, itemID primitive.ObjectID) (*domain.ScheduleEntry, error) {
	entry, err := s.scheduleRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrScheduleItemNotFound
		}
		return nil, err
	}
	if entry.OwnerKind != kind || entry.OwnerID != ownerID {
		return nil, ErrScheduleItemNotFound
	}
	return entry, nil
}

// logPerformance upserts one log row per completed set. Individual row
// failures are logged and skipped; recording the rest beats rejecting
// the whole submission.
func (s *completionService) logPerformance(ctx context.Context, ownerID, workoutID primitive.ObjectID, date time.Time, exercises []domain.ExerciseResult) {
	for _, ex := range exercises {
		if !ex.Completed {
			continue
		}
		for setIdx, set := range ex.Performance {
			if !set.Completed {
				continue
			}
			logEntry := &domain.ExerciseLogEntry{
				OwnerID:      ownerID,
				Date:         date,
				WorkoutID:    workoutID,
				ExerciseName: ex.Name,
				SetNumber:    setIdx + 1,
				Reps:         int(set.Reps),
				Weight:       float64(set.Weight),
				Metric:       domain.MetricRepsWeight,
			}
			if err := s.logRepo.Upsert(ctx, logEntry); err != nil {
				log.WithError(err).WithFields(log.Fields{
					"owner":    ownerID.Hex(),
					"exercise": ex.Name,
					"set":      setIdx + 1,
				}).Warn("failed to log set")
			}
		}
	}
}

// areFriends performs the normalized-pair friendship check: the edge
// must be present on both users.
func (s *completionService) areFriends(ctx context.Context, a, b primitive.ObjectID) (bool, error) {
	userA, err := s.userRepo.GetByID(ctx, a)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	userB, err := s.userRepo.GetByID(ctx, b)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	return userA.HasFriend(b) && userB.HasFriend(a), nil
}

// upsertCoopEntry marks one side's entry for the date complete with a
// co-op snapshot, creating the entry if the user had nothing scheduled.
// It returns the written entry and the pre-image (nil when created) for
// compensation.
func (s *completionService) upsertCoopEntry(ctx context.Context, userID primitive.ObjectID, date time.Time, exercises []domain.ExerciseResult, partnerID primitive.ObjectID, partnerExercises []domain.ExerciseResult) (*domain.ScheduleEntry, *domain.ScheduleEntry, error) {
	snapshot := &domain.WorkoutSnapshot{
		Exercises: exercises,
		Coop: &domain.CoopDetails{
			Partner:          partnerID,
			PartnerExercises: partnerExercises,
		},
	}

	entries, err := s.scheduleRepo.ListByOwnerAndDate(ctx, domain.OwnerClient, userID, date)
	if err != nil {
		return nil, nil, err
	}
	// Match on the entry type, not IsWorkout: an entry created by an
	// earlier co-op completion carries no workout reference but must be
	// reused on repeat, not duplicated.
	for i := range entries {
		if entries[i].Type != domain.EntryWorkout {
			continue
		}
		prev := entries[i] // pre-image for revert
		entry := entries[i]
		entry.Completed = true
		entry.Details = snapshot
		if err := s.scheduleRepo.Update(ctx, &entry); err != nil {
			return nil, nil, err
		}
		return &entry, &prev, nil
	}

	// Nothing scheduled: create a completed co-op entry.
	entry := &domain.ScheduleEntry{
		OwnerKind: domain.OwnerClient,
		OwnerID:   userID,
		Date:      date,
		Title:     "Co-op workout",
		Type:      domain.EntryWorkout,
		Completed: true,
		Details:   snapshot,
	}
	id, err := s.scheduleRepo.Insert(ctx, entry)
	if err != nil {
		return nil, nil, err
	}
	entry.ID = id
	return entry, nil, nil
}

// revertCoopEntry restores the caller's pre-image after the partner
// side failed. Created entries are deleted, updated ones rewritten.
func (s *completionService) revertCoopEntry(ctx context.Context, written *domain.ScheduleEntry, prev *domain.ScheduleEntry) {
	var err error
	if prev == nil {
		err = s.scheduleRepo.Delete(ctx, written.ID, written.OwnerKind, written.OwnerID)
	} else {
		err = s.scheduleRepo.Update(ctx, prev)
	}
	if err != nil {
		log.WithError(err).WithField("entry", written.ID.Hex()).Error("failed to revert co-op entry")
	}
}

// BackfillSets fills set-number gaps with the last known value so the
// display always shows contiguous sets from 1. Storage is untouched.
func BackfillSets(entries []domain.ExerciseLogEntry) []domain.ExerciseLogEntry {
	byExercise := make(map[string][]domain.ExerciseLogEntry)
	order := []string{}
	for _, e := range entries {
		if _, seen := byExercise[e.ExerciseName]; !seen {
			order = append(order, e.ExerciseName)
		}
		byExercise[e.ExerciseName] = append(byExercise[e.ExerciseName], e)
	}

	var out []domain.ExerciseLogEntry
	for _, name := range order {
		sets := byExercise[name]
		sort.Slice(sets, func(i, j int) bool { return sets[i].SetNumber < sets[j].SetNumber })

		maxSet := sets[len(sets)-1].SetNumber
		known := make(map[int]domain.ExerciseLogEntry, len(sets))
		for _, e := range sets {
			known[e.SetNumber] = e
		}

		last := sets[0]
		for n := 1; n <= maxSet; n++ {
			if e, ok := known[n]; ok {
				last = e
				out = append(out, e)
				continue
			}
			filler := last
			filler.ID = primitive.NilObjectID
			filler.SetNumber = n
			out = append(out, filler)
		}
	}
	return out
}
