package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gymflow/gym-app/internal/domain"
	"gymflow/gym-app/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrScheduleItemNotFound = errors.New("schedule item not found")
	ErrNothingAssigned      = errors.New("no days could be assigned from this split")
	ErrInvalidTimeRange     = errors.New("event end must be after its start")
)

// assignWindowDays is the rolling window a split is expanded over:
// 4 full weeks, always 28 iterations regardless of the start weekday.
const assignWindowDays = 28

// EventConflictError reports which existing timed event blocks a new
// one, so the caller can disambiguate.
type EventConflictError struct {
	ConflictingID    primitive.ObjectID
	ConflictingTitle string
}

func (e *EventConflictError) Error() string {
	return fmt.Sprintf("event overlaps existing entry %q (%s)", e.ConflictingTitle, e.ConflictingID.Hex())
}

// DayAssignmentLog is one per-day line of an assignment run.
type DayAssignmentLog struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Workout string `json:"workout,omitempty"`
	Status  string `json:"status"` // "success" or "failed"
	Reason  string `json:"reason,omitempty"`
}

// AssignmentResult is the outcome of one AssignSplit call. Per-day
// failures are data, not errors: the call only fails hard when zero
// days succeed.
type AssignmentResult struct {
	Status       string             `json:"status"`
	Message      string             `json:"message"`
	AssignedDays int                `json:"assignedDays"`
	Logs         []DayAssignmentLog `json:"logs"`
	Warnings     bool               `json:"warnings"`
}

// ScheduleEventView is one schedule entry prepared for display. For
// workout entries the exercises come from the completion snapshot when
// one exists, else from the live catalog definition.
type ScheduleEventView struct {
	Entry     domain.ScheduleEntry    `json:"entry"`
	Exercises []domain.ExerciseResult `json:"exercises,omitempty"`
	Partner   *primitive.ObjectID     `json:"partner,omitempty"`
}

// ScheduleDay is the one-day calendar view returned to callers.
type ScheduleDay struct {
	Date   string              `json:"date"`
	Events []ScheduleEventView `json:"events"`
}

// ScheduleService owns the split assignment engine and the calendar
// read/write surface.
type ScheduleService interface {
	// AssignSplit expands a weekly split into dated entries over the
	// 28-day window starting at startDate (today when zero). Passing
	// the trainer's own id as targetID assigns the trainer's personal
	// schedule instead of a client's.
	AssignSplit(ctx context.Context, actorID, targetID, splitID primitive.ObjectID, startDate time.Time) (*AssignmentResult, error)

	GetDaySchedule(ctx context.Context, kind domain.OwnerKind, ownerID primitive.ObjectID, date time.Time) (*ScheduleDay, error)
	GetRangeSchedule(ctx context.Context, kind domain.OwnerKind, ownerID primitive.ObjectID, from, to time.Time) ([]domain.ScheduleEntry, error)

	// AddTimedEvent adds a timed trainer event; overlapping an existing
	// timed entry on the same day is rejected with EventConflictError.
	AddTimedEvent(ctx context.Context, trainerID primitive.ObjectID, date time.Time, title string, entryType domain.EntryType, startMinute, endMinute int) (*domain.ScheduleEntry, error)

	// AddClientEntry adds a date-only entry (appointment, booking,
	// manual event) to a client's calendar.
	AddClientEntry(ctx context.Context, clientID primitive.ObjectID, date time.Time, title string, entryType domain.EntryType) (*domain.ScheduleEntry, error)

	DeleteEntry(ctx context.Context, kind domain.OwnerKind, ownerID, entryID primitive.ObjectID) error
}

type scheduleService struct {
	userRepo     repository.UserRepository
	scheduleRepo repository.ScheduleRepository
	catalog      CatalogService
	now          func() time.Time
}

// NewScheduleService creates a new instance of scheduleService.
func NewScheduleService(
	userRepo repository.UserRepository,
	scheduleRepo repository.ScheduleRepository,
	catalog CatalogService,
) ScheduleService {
	return &scheduleService{
		userRepo:     userRepo,
		scheduleRepo: scheduleRepo,
		catalog:      catalog,
		now:          time.Now,
	}
}

// === Split assignment engine ===

// AssignSplit implements the 28-day expansion.
//
// Each day is committed independently, in order: a failure on one day
// is logged and the loop continues, and a crash mid-loop leaves a
// prefix of days assigned with the rest untouched. There is no
// umbrella transaction around the window; re-running the assignment is
// safe because each day replaces rather than appends.
func (s *scheduleService) AssignSplit(ctx context.Context, actorID, targetID, splitID primitive.ObjectID, startDate time.Time) (*AssignmentResult, error) {
	// 1. Validate inputs
	if actorID == primitive.NilObjectID || splitID == primitive.NilObjectID {
		return nil, errors.New("actor ID and split ID are required")
	}
	if targetID == primitive.NilObjectID {
		targetID = actorID // omitted target means self-assignment
	}
	if startDate.IsZero() {
		startDate = s.now()
	}
	startDate = domain.DayOf(startDate)

	// 2. Resolve the split before any writes; unknown split aborts the
	// whole call.
	split, err := s.catalog.GetSplit(ctx, splitID)
	if err != nil {
		return nil, err
	}

	// 3. Resolve the target partition. Self-assignment writes the
	// trainer's own calendar; anything else must be a known user.
	kind := domain.OwnerClient
	if targetID == actorID {
		kind = domain.OwnerTrainer
	} else {
		if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
	}

	logger := log.WithFields(log.Fields{
		"split":  splitID.Hex(),
		"target": targetID.Hex(),
		"start":  startDate.Format("2006-01-02"),
	})
	logger.Info("assigning split")

	result := &AssignmentResult{Logs: []DayAssignmentLog{}}
	attempted := 0

	// 4. Walk exactly 28 consecutive calendar days. Rest days are
	// skipped without touching existing entries for that date.
	for i := 0; i < assignWindowDays; i++ {
		day := startDate.AddDate(0, 0, i)
		workoutID := split.Schedule.WorkoutFor(day)
		if workoutID == nil {
			continue
		}

		attempted++
		dayLog := DayAssignmentLog{
			Date:    day.Format("2006-01-02"),
			Weekday: domain.WeekdayName(day),
		}

		if err := s.assignDay(ctx, kind, targetID, actorID, day, *workoutID, &dayLog); err != nil {
			dayLog.Status = "failed"
			dayLog.Reason = err.Error()
			logger.WithField("date", dayLog.Date).WithError(err).Warn("day assignment failed")
		} else {
			dayLog.Status = "success"
			result.AssignedDays++
		}
		result.Logs = append(result.Logs, dayLog)
	}

	// 5. Zero successes out of at least one attempt is a hard failure,
	// never a silent no-op.
	if attempted > 0 && result.AssignedDays == 0 {
		return nil, fmt.Errorf("%w: %d days attempted", ErrNothingAssigned, attempted)
	}

	result.Status = "success"
	result.Warnings = result.AssignedDays < attempted
	result.Message = fmt.Sprintf("assigned %q: %d of %d workout days scheduled", split.Name, result.AssignedDays, attempted)
	logger.WithFields(log.Fields{
		"assigned":  result.AssignedDays,
		"attempted": attempted,
	}).Info("split assignment finished")
	return result, nil
}

// assignDay resolves one workout and performs the replace-then-insert
// for a single date. The delete and insert commit before the next day
// is processed.
func (s *scheduleService) assignDay(ctx context.Context, kind domain.OwnerKind, ownerID, actorID primitive.ObjectID, day time.Time, workoutID primitive.ObjectID, dayLog *DayAssignmentLog) error {
	workout, err := s.catalog.ResolveWorkout(ctx, workoutID, &actorID)
	if err != nil {
		return fmt.Errorf("resolve workout %s: %w", workoutID.Hex(), err)
	}
	dayLog.Workout = workout.Title

	// Replace, never append: at most one workout entry per (owner, date).
	if _, err := s.scheduleRepo.DeleteWorkoutEntries(ctx, kind, ownerID, day); err != nil {
		return fmt.Errorf("clear existing workout entry: %w", err)
	}

	entry := &domain.ScheduleEntry{
		OwnerKind:  kind,
		OwnerID:    ownerID,
		Date:       day,
		Title:      workout.Title,
		Type:       domain.EntryWorkout,
		WorkoutID:  &workout.ID,
		Difficulty: workout.Difficulty,
	}
	if _, err := s.scheduleRepo.Insert(ctx, entry); err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// === Calendar reads ===

// GetDaySchedule returns one day's entries prepared for display.
// Completed workout entries render from their frozen snapshot; live
// catalog data is only consulted when no snapshot exists, so template
// edits never rewrite a completed day.
func (s *scheduleService) GetDaySchedule(ctx context.Context, kind domain.OwnerKind, ownerID primitive.ObjectID, date time.Time) (*ScheduleDay, error) {
	if date.IsZero() {
		date = s.now()
	}
	date = domain.DayOf(date)

	entries, err := s.scheduleRepo.ListByOwnerAndDate(ctx, kind, ownerID, date)
	if err != nil {
		return nil, err
	}

	day := &ScheduleDay{
		Date:   date.Format("2006-01-02"),
		Events: make([]ScheduleEventView, 0, len(entries)),
	}
	for _, entry := range entries {
		view := ScheduleEventView{Entry: entry}
		switch {
		case entry.Details != nil:
			// Snapshot wins over the catalog.
			view.Exercises = entry.Details.Exercises
			if entry.Details.Coop != nil {
				partner := entry.Details.Coop.Partner
				view.Partner = &partner
			}
		case entry.IsWorkout():
			workout, err := s.catalog.ResolveWorkout(ctx, *entry.WorkoutID, nil)
			if err == nil {
				view.Exercises = prescribedResults(workout)
			} else if !errors.Is(err, ErrWorkoutNotFound) {
				return nil, err
			}
			// A dangling workout id renders as a bare entry.
		}
		day.Events = append(day.Events, view)
	}
	return day, nil
}

// GetRangeSchedule returns the raw entries of a date span.
func (s *scheduleService) GetRangeSchedule(ctx context.Context, kind domain.OwnerKind, ownerID primitive.ObjectID, from, to time.Time) ([]domain.ScheduleEntry, error) {
	return s.scheduleRepo.ListByOwnerAndDateRange(ctx, kind, ownerID, from, to)
}

// === Calendar writes ===

// AddTimedEvent inserts a timed trainer event after checking it does
// not overlap an existing timed entry on the same date. On conflict
// nothing is written and the blocking entry is identified.
func (s *scheduleService) AddTimedEvent(ctx context.Context, trainerID primitive.ObjectID, date time.Time, title string, entryType domain.EntryType, startMinute, endMinute int) (*domain.ScheduleEntry, error) {
	if title == "" {
		return nil, errors.New("event title is required")
	}
	if endMinute <= startMinute || startMinute < 0 || endMinute > 24*60 {
		return nil, ErrInvalidTimeRange
	}
	date = domain.DayOf(date)

	candidate := &domain.ScheduleEntry{
		OwnerKind:   domain.OwnerTrainer,
		OwnerID:     trainerID,
		Date:        date,
		Title:       title,
		Type:        entryType,
		StartMinute: startMinute,
		EndMinute:   endMinute,
	}

	existing, err := s.scheduleRepo.ListByOwnerAndDate(ctx, domain.OwnerTrainer, trainerID, date)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if candidate.Overlaps(&existing[i]) {
			return nil, &EventConflictError{
				ConflictingID:    existing[i].ID,
				ConflictingTitle: existing[i].Title,
			}
		}
	}

	id, err := s.scheduleRepo.Insert(ctx, candidate)
	if err != nil {
		return nil, err
	}
	candidate.ID = id
	return candidate, nil
}

// AddClientEntry inserts a date-only entry on a client's calendar.
// Client entries carry no time range, so there is no overlap check.
func (s *scheduleService) AddClientEntry(ctx context.Context, clientID primitive.ObjectID, date time.Time, title string, entryType domain.EntryType) (*domain.ScheduleEntry, error) {
	if title == "" {
		return nil, errors.New("entry title is required")
	}
	if entryType == domain.EntryWorkout {
		return nil, errors.New("workout entries are created via split assignment")
	}

	entry := &domain.ScheduleEntry{
		OwnerKind: domain.OwnerClient,
		OwnerID:   clientID,
		Date:      domain.DayOf(date),
		Title:     title,
		Type:      entryType,
	}
	id, err := s.scheduleRepo.Insert(ctx, entry)
	if err != nil {
		return nil, err
	}
	entry.ID = id
	return entry, nil
}

// DeleteEntry removes one entry, scoped to the owner partition so a
// foreign id reads as not found.
func (s *scheduleService) DeleteEntry(ctx context.Context, kind domain.OwnerKind, ownerID, entryID primitive.ObjectID) error {
	err := s.scheduleRepo.Delete(ctx, entryID, kind, ownerID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrScheduleItemNotFound
	}
	return err
}

// prescribedResults maps a catalog definition to display results with
// empty performance, for workout entries not yet completed.
func prescribedResults(w *domain.Workout) []domain.ExerciseResult {
	results := make([]domain.ExerciseResult, len(w.Exercises))
	for i, ex := range w.Exercises {
		results[i] = domain.ExerciseResult{
			Name:        ex.Name,
			Sets:        ex.Sets,
			Reps:        ex.Reps,
			RestSeconds: ex.RestSeconds,
		}
	}
	return results
}
