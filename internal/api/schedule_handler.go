package api

import (
	"errors"
	"net/http"
	"time"

	"gymflow/gym-app/internal/domain"
	"gymflow/gym-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const dateLayout = "2006-01-02"

// ScheduleHandler serves the calendar, assignment, completion and
// streak endpoints.
type ScheduleHandler struct {
	scheduleService   service.ScheduleService
	completionService service.CompletionService
	streakService     service.StreakService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(
	scheduleService service.ScheduleService,
	completionService service.CompletionService,
	streakService service.StreakService,
) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService:   scheduleService,
		completionService: completionService,
		streakService:     streakService,
	}
}

// --- DTOs ---

type AssignSplitRequest struct {
	// ClientID is optional; omitted or empty means self-assignment.
	ClientID  string `json:"clientId"`
	StartDate string `json:"startDate"` // YYYY-MM-DD, defaults to today
}

type CompleteItemRequest struct {
	Date      string                  `json:"date"`
	Exercises []domain.ExerciseResult `json:"exercises" binding:"required"`
}

type UpdateSetRequest struct {
	ExerciseName string            `json:"exerciseName" binding:"required"`
	SetNumber    int               `json:"setNumber" binding:"required,min=1"`
	Reps         domain.FlexNumber `json:"reps"`
	Weight       domain.FlexNumber `json:"weight"`
}

type CoopCompleteRequest struct {
	PartnerID        string                  `json:"partnerId" binding:"required"`
	Date             string                  `json:"date"`
	Exercises        []domain.ExerciseResult `json:"exercises" binding:"required"`
	PartnerExercises []domain.ExerciseResult `json:"partnerExercises" binding:"required"`
}

type AddEventRequest struct {
	Date        string           `json:"date" binding:"required"`
	Title       string           `json:"title" binding:"required"`
	Type        domain.EntryType `json:"type" binding:"required"`
	StartMinute int              `json:"startMinute"`
	EndMinute   int              `json:"endMinute"`
}

// --- Handlers ---

// AssignSplit expands a split over the calendar. Partial failure is a
// 200 with per-day logs and warnings=true; only zero assigned days out
// of at least one attempt is an error.
func (h *ScheduleHandler) AssignSplit(c *gin.Context) {
	actorID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	splitID, err := primitive.ObjectIDFromHex(c.Param("splitId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid split ID format")
		return
	}

	var req AssignSplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	targetID := primitive.NilObjectID
	if req.ClientID != "" {
		targetID, err = primitive.ObjectIDFromHex(req.ClientID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid client ID format")
			return
		}
	}

	var startDate time.Time
	if req.StartDate != "" {
		startDate, err = time.Parse(dateLayout, req.StartDate)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
			return
		}
	}

	result, err := h.scheduleService.AssignSplit(c.Request.Context(), actorID, targetID, splitID, startDate)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSplitNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNothingAssigned):
			abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to assign split")
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetDaySchedule returns the caller's calendar for one day
// (?date=YYYY-MM-DD, default today).
func (h *ScheduleHandler) GetDaySchedule(c *gin.Context) {
	ownerID, kind, ok := callerPartition(c)
	if !ok {
		return
	}

	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		var err error
		date, err = time.Parse(dateLayout, raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
	}

	day, err := h.scheduleService.GetDaySchedule(c.Request.Context(), kind, ownerID, date)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load schedule")
		return
	}
	c.JSON(http.StatusOK, day)
}

// GetRangeSchedule returns raw entries between ?from and ?to.
func (h *ScheduleHandler) GetRangeSchedule(c *gin.Context) {
	ownerID, kind, ok := callerPartition(c)
	if !ok {
		return
	}

	from, err := time.Parse(dateLayout, c.Query("from"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "from must be YYYY-MM-DD")
		return
	}
	to, err := time.Parse(dateLayout, c.Query("to"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "to must be YYYY-MM-DD")
		return
	}

	entries, err := h.scheduleService.GetRangeSchedule(c.Request.Context(), kind, ownerID, from, to)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load schedule")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// AddEvent creates a calendar entry: timed events for trainers,
// date-only entries for clients.
func (h *ScheduleHandler) AddEvent(c *gin.Context) {
	ownerID, kind, ok := callerPartition(c)
	if !ok {
		return
	}

	var req AddEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	var entry *domain.ScheduleEntry
	if kind == domain.OwnerTrainer {
		entry, err = h.scheduleService.AddTimedEvent(c.Request.Context(), ownerID, date, req.Title, req.Type, req.StartMinute, req.EndMinute)
	} else {
		entry, err = h.scheduleService.AddClientEntry(c.Request.Context(), ownerID, date, req.Title, req.Type)
	}
	if err != nil {
		var conflict *service.EventConflictError
		switch {
		case errors.As(err, &conflict):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error":            "event overlaps an existing entry",
				"conflictingId":    conflict.ConflictingID.Hex(),
				"conflictingTitle": conflict.ConflictingTitle,
			})
		case errors.Is(err, service.ErrInvalidTimeRange):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusBadRequest, err.Error())
		}
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// DeleteEntry removes one of the caller's calendar entries.
func (h *ScheduleHandler) DeleteEntry(c *gin.Context) {
	ownerID, kind, ok := callerPartition(c)
	if !ok {
		return
	}
	entryID, err := primitive.ObjectIDFromHex(c.Param("entryId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid entry ID format")
		return
	}

	if err := h.scheduleService.DeleteEntry(c.Request.Context(), kind, ownerID, entryID); err != nil {
		if errors.Is(err, service.ErrScheduleItemNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete entry")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// CompleteItem marks a schedule entry complete with per-set performance.
func (h *ScheduleHandler) CompleteItem(c *gin.Context) {
	ownerID, kind, ok := callerPartition(c)
	if !ok {
		return
	}
	itemID, err := primitive.ObjectIDFromHex(c.Param("itemId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	var req CompleteItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	var date time.Time
	if req.Date != "" {
		date, err = time.Parse(dateLayout, req.Date)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
	}

	result, err := h.completionService.CompleteScheduleItem(c.Request.Context(), kind, ownerID, itemID, date, req.Exercises)
	if err != nil {
		if errors.Is(err, service.ErrScheduleItemNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to complete item")
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateSet patches one (exercise, set) pair of a completed entry.
func (h *ScheduleHandler) UpdateSet(c *gin.Context) {
	ownerID, kind, ok := callerPartition(c)
	if !ok {
		return
	}
	itemID, err := primitive.ObjectIDFromHex(c.Param("itemId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	var req UpdateSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	performance := domain.SetPerformance{Reps: req.Reps, Weight: req.Weight, Completed: true}
	result, err := h.completionService.UpdateCompletedSet(c.Request.Context(), kind, ownerID, itemID, req.ExerciseName, req.SetNumber, performance)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrScheduleItemNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotCompletedYet), errors.Is(err, service.ErrNotAWorkoutEntry):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusBadRequest, err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// CompleteCoop completes a workout for the caller and a friend at once.
func (h *ScheduleHandler) CompleteCoop(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}

	var req CoopCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	partnerID, err := primitive.ObjectIDFromHex(req.PartnerID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid partner ID format")
		return
	}
	var date time.Time
	if req.Date != "" {
		date, err = time.Parse(dateLayout, req.Date)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
	}

	result, err := h.completionService.CompleteCoopWorkout(c.Request.Context(), ownerID, partnerID, date, req.Exercises, req.PartnerExercises)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFriends):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to complete co-op workout")
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetWorkoutLog returns the caller's logged sets for one workout day
// (?workoutId=...&date=YYYY-MM-DD).
func (h *ScheduleHandler) GetWorkoutLog(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	workoutID, err := primitive.ObjectIDFromHex(c.Query("workoutId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format")
		return
	}
	date, err := time.Parse(dateLayout, c.Query("date"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	entries, err := h.completionService.GetWorkoutLog(c.Request.Context(), ownerID, workoutID, date)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load workout log")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// GetStreak returns the caller's current workout streak.
func (h *ScheduleHandler) GetStreak(c *gin.Context) {
	ownerID, kind, ok := callerPartition(c)
	if !ok {
		return
	}

	result, err := h.streakService.GetStreak(c.Request.Context(), kind, ownerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to compute streak")
		return
	}
	c.JSON(http.StatusOK, result)
}

// callerPartition resolves the caller's id and calendar partition from
// the token, aborting the request on failure.
func callerPartition(c *gin.Context) (primitive.ObjectID, domain.OwnerKind, bool) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return primitive.NilObjectID, "", false
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify role from token")
		return primitive.NilObjectID, "", false
	}
	return ownerID, ownerKindForRole(role), true
}
